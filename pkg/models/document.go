package models

import (
	"time"

	"github.com/schwifty-labs/morty-pipeline/pkg/jsonutil"
)

// Document is a semi-structured payload as delivered by the API: a tree of
// objects, arrays, and scalars with no fixed shape. All access goes through
// presence-reporting lookups so flattening never assumes a leaf exists.
type Document map[string]any

// String returns the string value of a top-level leaf. Numeric and boolean
// leaves are coerced; absent or null leaves report false.
func (d Document) String(key string) (string, bool) {
	v, ok := d[key]
	if !ok || v == nil {
		return "", false
	}
	return jsonutil.FlexibleString(v), true
}

// Int returns the integer value of a top-level leaf. Whole-number floats and
// digit strings convert; anything else reports false.
func (d Document) Int(key string) (int, bool) {
	v, ok := d[key]
	if !ok || v == nil {
		return 0, false
	}
	return jsonutil.FlexibleInt(v)
}

// Object returns a nested object leaf as a Document.
func (d Document) Object(key string) (Document, bool) {
	v, ok := d[key]
	if !ok || v == nil {
		return nil, false
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	return Document(m), true
}

// Strings returns an array leaf as a string slice. Non-string elements are
// coerced; an absent or non-array leaf yields an empty slice.
func (d Document) Strings(key string) []string {
	v, ok := d[key]
	if !ok || v == nil {
		return nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, el := range arr {
		if el == nil {
			continue
		}
		out = append(out, jsonutil.FlexibleString(el))
	}
	return out
}

// Time parses a top-level leaf as an RFC3339 timestamp. Unparseable or absent
// leaves report false, never an error.
func (d Document) Time(key string) (time.Time, bool) {
	s, ok := d.String(key)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// StringAt returns the string value of a leaf inside a nested object, e.g.
// StringAt("origin", "name"). Absence at either level reports false.
func (d Document) StringAt(objKey, leafKey string) (string, bool) {
	obj, ok := d.Object(objKey)
	if !ok {
		return "", false
	}
	return obj.String(leafKey)
}
