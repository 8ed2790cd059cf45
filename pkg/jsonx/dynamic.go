// Package jsonx wraps goccy/go-json for the few dynamic JSON shapes EventDash handles.
package jsonx

import (
	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ToDynamicJSON round-trips val through JSON into a generic map.
func ToDynamicJSON(val any) (map[string]any, error) {
	b, err := json.Marshal(val)
	if err != nil {
		return nil, err
	}
	result := make(map[string]any)
	if err := json.Unmarshal(b, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// StringArg extracts a string argument from a JSON object. Non-string values are
// returned in their raw JSON form; a missing key yields "".
func StringArg(raw, key string) string {
	v := gjson.Get(raw, key)
	if !v.Exists() {
		return ""
	}
	if v.Type == gjson.String {
		return v.Str
	}
	return v.Raw
}

// Object builds a JSON object from alternating key/value pairs, skipping pairs whose
// key is empty.
func Object(pairs ...any) (string, error) {
	doc := "{}"
	for i := 0; i+1 < len(pairs); i += 2 {
		key, _ := pairs[i].(string)
		if key == "" {
			continue
		}
		var err error
		if doc, err = sjson.Set(doc, key, pairs[i+1]); err != nil {
			return "", err
		}
	}
	return doc, nil
}
