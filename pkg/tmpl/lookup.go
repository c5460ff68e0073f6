package tmpl

import "strings"

// PathSeparator splits a dot-path into map keys.
const PathSeparator = "."

// Lookup resolves a dot-separated path against data.
// It returns nil as soon as a segment is missing or the current value
// is not a Map.
func Lookup(data Value, path string) Value {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}

	cur := data
	for seg := range strings.SplitSeq(path, PathSeparator) {
		m, ok := cur.(Map)
		if !ok {
			return nil
		}
		next, ok := m[seg]
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}

// scope is a stack of maps searched front to back.
// The first layer holding the head segment of a path owns the whole path.
type scope []Map

func (s scope) lookup(path string) Value {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}

	head, rest, nested := strings.Cut(path, PathSeparator)
	for _, layer := range s {
		v, ok := layer[head]
		if !ok {
			continue
		}
		if !nested {
			return v
		}
		return Lookup(v, rest)
	}
	return nil
}
