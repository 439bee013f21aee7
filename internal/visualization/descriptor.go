package visualization

import (
	"encoding/json"
)

// wire field names shared by raw payloads and encoded descriptors
const (
	fieldType       = "type"
	fieldData       = "data"
	fieldHeaders    = "headers"
	fieldChartType  = "chartType"
	fieldXKey       = "xKey"
	fieldYKeys      = "yKeys"
	fieldHeight     = "height"
	fieldTitle      = "title"
	fieldSubtitle   = "subtitle"
	fieldCollection = "visualizations"
)

// Descriptor is a normalized, render-ready visualization.
//
// Optional fields are nil (or empty SeriesKind) when the source payload did not
// carry them in the expected shape. A Descriptor encodes to JSON using the same
// field names as the raw payload, so decoding an encoded Descriptor yields an
// equal value.
type Descriptor struct {
	Kind          Kind
	Rows          []any
	ColumnHeaders []string
	SeriesKind    SeriesKind
	XField        *string
	YFields       []string
	HeightHint    *float64
	Title         *string
	Subtitle      *string
}

// Default returns the descriptor used for any input that is not an object.
func Default() Descriptor {
	return Descriptor{Kind: KindTable, Rows: []any{}}
}

// Map returns the descriptor in its wire form.
func (d Descriptor) Map() map[string]any {
	kind := d.Kind
	if !kind.Valid() {
		kind = KindTable
	}
	rows := make([]any, len(d.Rows))
	copy(rows, d.Rows)

	m := map[string]any{
		fieldType: string(kind),
		fieldData: rows,
	}
	if d.ColumnHeaders != nil {
		m[fieldHeaders] = stringsToAny(d.ColumnHeaders)
	}
	if d.SeriesKind != "" {
		m[fieldChartType] = string(d.SeriesKind)
	}
	if d.XField != nil {
		m[fieldXKey] = *d.XField
	}
	if d.YFields != nil {
		m[fieldYKeys] = stringsToAny(d.YFields)
	}
	if d.HeightHint != nil {
		m[fieldHeight] = *d.HeightHint
	}
	if d.Title != nil {
		m[fieldTitle] = *d.Title
	}
	if d.Subtitle != nil {
		m[fieldSubtitle] = *d.Subtitle
	}
	return m
}

// IsChart reports whether the descriptor renders as a chart.
func (d Descriptor) IsChart() bool {
	return d.Kind == KindChart
}

// MarshalJSON encodes the wire form.
func (d Descriptor) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Map())
}

// UnmarshalJSON decodes any JSON value and normalizes it. Only syntactically
// invalid JSON is reported as an error; malformed shapes degrade to defaults.
func (d *Descriptor) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*d = Normalize(raw)
	return nil
}

func stringsToAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
