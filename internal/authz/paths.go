package authz

import "strings"

// getPath reads a dotted path from nested maps.
func getPath(data map[string]any, path string) (any, bool) {
	parts := strings.Split(path, ".")
	cur := data

	for i, p := range parts {
		v, ok := cur[p]
		if !ok {
			return nil, false
		}

		if i == len(parts)-1 {
			return v, true
		}

		next, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}

		cur = next
	}

	return nil, false
}

// setPath writes a dotted path into nested maps, creating the intermediate maps.
// An intermediate value that is not a map is replaced.
func setPath(data map[string]any, path string, v any) {
	parts := strings.Split(path, ".")
	cur := data

	for _, p := range parts[:len(parts)-1] {
		next, ok := cur[p].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cur[p] = next
		}

		cur = next
	}

	cur[parts[len(parts)-1]] = v
}

// copyMap copies the top level of data.
func copyMap(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}

	return out
}
