package visualization

import (
	"encoding/json"
	"math"
)

// Normalize converts an arbitrary value, typically decoded from a backend JSON
// response, into a Descriptor. It never fails: values of the wrong shape are
// dropped or replaced by defaults.
//
// Accepted object forms are map[string]any, Descriptor and *Descriptor. Any
// other value yields Default().
func Normalize(v any) Descriptor {
	var obj map[string]any
	switch t := v.(type) {
	case map[string]any:
		obj = t
	case Descriptor:
		obj = t.Map()
	case *Descriptor:
		if t == nil {
			return Default()
		}
		obj = t.Map()
	default:
		return Default()
	}
	if obj == nil {
		return Default()
	}

	d := Descriptor{
		Kind: ParseKind(obj[fieldType]),
		Rows: []any{},
	}
	if rows, ok := asSequence(obj[fieldData]); ok {
		d.Rows = rows
	}
	if headers, ok := asStrings(obj[fieldHeaders]); ok {
		d.ColumnHeaders = headers
	}
	if d.IsChart() {
		if sk, ok := ParseSeriesKind(obj[fieldChartType]); ok {
			d.SeriesKind = sk
		}
	}
	if x, ok := obj[fieldXKey].(string); ok {
		d.XField = &x
	}
	if ys, ok := asStrings(obj[fieldYKeys]); ok {
		d.YFields = ys
	}
	// height is a rendering hint; no range or positivity check
	if h, ok := asNumber(obj[fieldHeight]); ok {
		d.HeightHint = &h
	}
	if s, ok := obj[fieldTitle].(string); ok {
		d.Title = &s
	}
	if s, ok := obj[fieldSubtitle].(string); ok {
		d.Subtitle = &s
	}
	return d
}

// NormalizeJSON decodes data and normalizes the result. Invalid JSON yields
// Default().
func NormalizeJSON(data []byte) Descriptor {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Default()
	}
	return Normalize(raw)
}

// NormalizeAll normalizes every element of the payload's "visualizations"
// sequence, preserving order and length. A payload without such a sequence
// yields an empty slice.
func NormalizeAll(payload any) []Descriptor {
	items := collection(payload)
	out := make([]Descriptor, 0, len(items))
	for _, item := range items {
		out = append(out, Normalize(item))
	}
	return out
}

func collection(payload any) []any {
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil
	}
	items, _ := asSequence(obj[fieldCollection])
	return items
}

// asSequence returns a shallow copy of v when it is a sequence.
func asSequence(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		copy(out, t)
		return out, true
	case []map[string]any:
		out := make([]any, len(t))
		for i, m := range t {
			out[i] = m
		}
		return out, true
	default:
		return nil, false
	}
}

// asStrings accepts a sequence whose elements are all strings. A single
// non-string element rejects the whole sequence.
func asStrings(v any) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out, true
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

// asNumber accepts any Go numeric type and json.Number. NaN and infinities
// are rejected since they have no JSON form.
func asNumber(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int8:
		f = float64(t)
	case int16:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case uint:
		f = float64(t)
	case uint8:
		f = float64(t)
	case uint16:
		f = float64(t)
	case uint32:
		f = float64(t)
	case uint64:
		f = float64(t)
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
