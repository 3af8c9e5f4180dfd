package reconciler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ResponseShape is the decoded form of a bulk-submit response.
type ResponseShape struct {
	// Name identifies the matcher that recognized the body.
	Name     string
	Accepted []any
	Rejected []any
}

type shapeMatcher struct {
	name        string
	acceptedKey string
	rejectedKey string
}

// shapeMatchers are probed in priority order.
var shapeMatchers = []shapeMatcher{
	{name: "categories", acceptedKey: "added_categories", rejectedKey: "rejected_categories"},
	{name: "assets", acceptedKey: "added_assets", rejectedKey: "rejected_assets"},
	{name: "asset_updates", acceptedKey: "updated_assets", rejectedKey: "rejected_assets"},
}

const (
	shapeBareArray  = "array"
	shapeFirstArray = "first_array_property"
	shapeNoItems    = "no_items"
)

var (
	errNotArray      = errors.New("value is not an array")
	errNonObjectItem = errors.New("array holds non-object items")
)

// FailureError is a 2xx body that reports the batch failed instead of
// listing any records.
type FailureError struct {
	Message string
}

func (e *FailureError) Error() string {
	return e.Message
}

// ProbeShape recognizes a response body. Known keyed shapes win, an accepted
// key before any rejected key. A body reporting failure returns a
// *FailureError. Otherwise a bare array or the first array-valued property
// holding objects is read as the accepted list.
func ProbeShape(body []byte) (ResponseShape, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ResponseShape{Name: shapeNoItems}, nil
	}

	if trimmed[0] == '[' {
		items, err := decodeArray(trimmed)
		if err != nil {
			return ResponseShape{}, fmt.Errorf("decoding response array: %w", err)
		}
		return ResponseShape{Name: shapeBareArray, Accepted: items}, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return ResponseShape{}, fmt.Errorf("decoding response object: %w", err)
	}

	if m, ok := matchShape(obj); ok {
		shape := ResponseShape{Name: m.name}
		var err error
		if shape.Accepted, err = optionalArray(obj, m.acceptedKey); err != nil {
			return ResponseShape{}, err
		}
		if shape.Rejected, err = optionalArray(obj, m.rejectedKey); err != nil {
			return ResponseShape{}, err
		}
		return shape, nil
	}

	if ferr := failureReport(obj); ferr != nil {
		return ResponseShape{}, ferr
	}

	raw, ok, err := firstArrayProperty(trimmed)
	if err != nil {
		return ResponseShape{}, err
	}
	if !ok {
		return ResponseShape{Name: shapeNoItems}, nil
	}
	items, err := decodeArray(raw)
	if err != nil {
		return ResponseShape{}, err
	}
	for _, item := range items {
		if _, isObj := item.(map[string]any); !isObj {
			return ResponseShape{}, errNonObjectItem
		}
	}
	return ResponseShape{Name: shapeFirstArray, Accepted: items}, nil
}

// failureReport recognizes {"success": false} and a top-level "errors" key.
func failureReport(obj map[string]json.RawMessage) *FailureError {
	var msgs []string
	if raw, ok := obj["errors"]; ok {
		var list []any
		var single string
		switch {
		case json.Unmarshal(raw, &list) == nil:
			for _, v := range list {
				msgs = append(msgs, stringify(v))
			}
		case json.Unmarshal(raw, &single) == nil && single != "":
			msgs = append(msgs, single)
		}
	}

	failed := len(msgs) > 0
	if raw, ok := obj["success"]; ok {
		var success bool
		if json.Unmarshal(raw, &success) == nil && !success {
			failed = true
		}
	}
	if !failed {
		return nil
	}

	if len(msgs) == 0 {
		for _, k := range []string{"message", "error", "detail"} {
			var s string
			if raw, ok := obj[k]; ok && json.Unmarshal(raw, &s) == nil && s != "" {
				msgs = append(msgs, s)
				break
			}
		}
	}
	if len(msgs) == 0 {
		msgs = append(msgs, "bulk submit reported failure")
	}
	return &FailureError{Message: strings.Join(msgs, "; ")}
}

func matchShape(obj map[string]json.RawMessage) (shapeMatcher, bool) {
	for _, m := range shapeMatchers {
		if _, ok := obj[m.acceptedKey]; ok {
			return m, true
		}
	}
	for _, m := range shapeMatchers {
		if _, ok := obj[m.rejectedKey]; ok {
			return m, true
		}
	}
	return shapeMatcher{}, false
}

func optionalArray(obj map[string]json.RawMessage, key string) ([]any, error) {
	raw, ok := obj[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}
	items, err := decodeArray(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", key, err)
	}
	return items, nil
}

func decodeArray(raw []byte) ([]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	items, ok := v.([]any)
	if !ok {
		return nil, errNotArray
	}
	return items, nil
}

// firstArrayProperty walks the top-level object in document order.
func firstArrayProperty(body []byte) (json.RawMessage, bool, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	if _, err := dec.Token(); err != nil {
		return nil, false, fmt.Errorf("decoding response object: %w", err)
	}
	for dec.More() {
		if _, err := dec.Token(); err != nil {
			return nil, false, fmt.Errorf("decoding response key: %w", err)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, false, fmt.Errorf("decoding response value: %w", err)
		}
		if len(raw) > 0 && raw[0] == '[' {
			return raw, true, nil
		}
	}
	return nil, false, nil
}
