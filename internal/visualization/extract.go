package visualization

import (
	"math"
)

// Extract returns the payload's "visualizations" entries as loosely-typed
// maps for consumers that forward visualization data largely as-is.
//
// Every element yields exactly one map, in order. "type" is copied verbatim;
// "data" and "yKeys" only when they are sequences; "height" only when it is a
// number; "headers", "chartType", "xKey", "title" and "subtitle" whenever they
// are truthy. A present "type" is kept even when null. Non-object elements
// become empty maps.
func Extract(payload any) []map[string]any {
	items := collection(payload)
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		out = append(out, extractOne(item))
	}
	return out
}

func extractOne(item any) map[string]any {
	m := map[string]any{}
	obj, ok := item.(map[string]any)
	if !ok {
		return m
	}

	if v, ok := obj[fieldType]; ok {
		m[fieldType] = v
	}
	if rows, ok := asSequence(obj[fieldData]); ok {
		m[fieldData] = rows
	}
	for _, key := range []string{fieldHeaders, fieldChartType, fieldXKey, fieldTitle, fieldSubtitle} {
		if v := obj[key]; truthy(v) {
			m[key] = v
		}
	}
	if ys, ok := asSequence(obj[fieldYKeys]); ok {
		m[fieldYKeys] = ys
	}
	if h, ok := asNumber(obj[fieldHeight]); ok {
		m[fieldHeight] = h
	}
	return m
}

// truthy follows JavaScript truthiness for decoded JSON values.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	default:
		if f, ok := asNumber(v); ok {
			return f != 0
		}
		if f, ok := v.(float64); ok && math.IsNaN(f) {
			return false
		}
		return true
	}
}
