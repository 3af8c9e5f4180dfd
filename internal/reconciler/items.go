package reconciler

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"assetimport/internal/schema"
)

// dataKeys hold the echoed record inside a response item, in lookup order.
var dataKeys = []string{"category_data", "asset_data", "data", "record"}

// responseItem is one accepted or rejected entry of a bulk response.
type responseItem struct {
	data   map[string]string
	id     string
	errors []string
}

func parseItem(v any) (responseItem, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return responseItem{}, false
	}

	data := obj
	for _, k := range dataKeys {
		if nested, ok := obj[k].(map[string]any); ok {
			data = nested
			break
		}
	}

	item := responseItem{data: make(map[string]string, len(data))}
	for k, val := range data {
		item.data[k] = stringify(val)
	}
	if item.data[schema.FieldNameEN] == "" {
		if name := stringify(obj["asset_name"]); name != "" {
			item.data[schema.FieldNameEN] = name
		}
	}

	item.id = stringify(obj["id"])
	if item.id == "" {
		item.id = item.data["id"]
	}

	item.errors = collectErrors(obj)
	return item, true
}

func collectErrors(obj map[string]any) []string {
	for _, k := range []string{"errors", "error", "message", "detail"} {
		if msgs := flattenErrors(obj[k]); len(msgs) > 0 {
			return msgs
		}
	}
	return nil
}

func flattenErrors(v any) []string {
	switch e := v.(type) {
	case nil:
		return nil
	case string:
		if strings.TrimSpace(e) == "" {
			return nil
		}
		return []string{e}
	case []any:
		var out []string
		for _, x := range e {
			out = append(out, flattenErrors(x)...)
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(e))
		for k := range e {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var out []string
		for _, k := range keys {
			out = append(out, flattenErrors(e[k])...)
		}
		return out
	default:
		return []string{stringify(e)}
	}
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case map[string]any, []any:
		return ""
	default:
		return fmt.Sprint(x)
	}
}
