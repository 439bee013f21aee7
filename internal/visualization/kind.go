package visualization

// Kind is the presentation form of a visualization.
type Kind string

const (
	KindTable Kind = "table"
	KindChart Kind = "chart"
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	return string(k)
}

// Valid reports whether k is a member of the closed kind set.
func (k Kind) Valid() bool {
	switch k {
	case KindTable, KindChart:
		return true
	default:
		return false
	}
}

// ParseKind resolves an arbitrary value to a Kind. Only the exact string
// "chart" selects KindChart; every other value, including other strings,
// falls back to KindTable.
func ParseKind(v any) Kind {
	if s, ok := v.(string); ok && Kind(s) == KindChart {
		return KindChart
	}
	return KindTable
}

// SeriesKind is the series presentation of a chart.
type SeriesKind string

const (
	SeriesLine SeriesKind = "line"
	SeriesBar  SeriesKind = "bar"
)

// String returns the wire name of the series kind.
func (s SeriesKind) String() string {
	return string(s)
}

// ParseSeriesKind maps a chartType value to a SeriesKind. The second result
// is false when v is not a string, in which case no series kind applies.
// Any string other than "bar" collapses to SeriesLine.
func ParseSeriesKind(v any) (SeriesKind, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	if SeriesKind(s) == SeriesBar {
		return SeriesBar, true
	}
	return SeriesLine, true
}
