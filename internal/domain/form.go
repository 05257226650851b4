package domain

import (
	"net/url"
	"sort"
	"strings"
)

// DecodeFormPayload turns url-encoded form values into a Payload. Bracketed
// keys nest: customer[email]=x becomes {"customer":{"email":"x"}} and a
// trailing [] or a repeated key yields a list.
func DecodeFormPayload(values url.Values) Payload {
	p := Payload{}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		path, list := formPath(key)
		if len(path) == 0 {
			continue
		}
		setFormValue(p, path, formValue(values[key], list))
	}
	return p
}

// formPath splits "a[b][c]" into [a b c]; list reports a trailing "[]".
func formPath(key string) (path []string, list bool) {
	head, rest, found := strings.Cut(key, "[")
	if head == "" {
		return nil, false
	}
	path = append(path, head)
	if !found {
		return path, false
	}

	rest = "[" + rest
	for strings.HasPrefix(rest, "[") {
		end := strings.Index(rest, "]")
		if end < 0 {
			// unbalanced bracket, keep the raw key
			return []string{key}, false
		}
		segment := rest[1:end]
		rest = rest[end+1:]
		if segment == "" {
			list = true
			break
		}
		path = append(path, segment)
	}
	return path, list
}

func formValue(vals []string, list bool) any {
	if len(vals) == 1 && !list {
		return vals[0]
	}
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = v
	}
	return out
}

func setFormValue(p map[string]any, path []string, value any) {
	node := p
	for _, segment := range path[:len(path)-1] {
		child, ok := node[segment].(map[string]any)
		if !ok {
			child = map[string]any{}
			node[segment] = child
		}
		node = child
	}
	node[path[len(path)-1]] = value
}
