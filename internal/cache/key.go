package cache

import (
	"fmt"
	"strings"
)

// Key is a composite logical cache key: a resource name followed by its parameters,
// e.g. NewKey("searchMovies", "alien", 2).
type Key []string

// NewKey builds a Key, formatting every part with fmt.Sprint.
func NewKey(parts ...any) Key {
	k := make(Key, len(parts))
	for i, p := range parts {
		k[i] = fmt.Sprint(p)
	}
	return k
}

// String renders the key as "part:part:part".
func (k Key) String() string {
	return strings.Join(k, ":")
}

// HasPrefix reports whether the leading parts of k equal prefix, part by part.
// An empty prefix matches every key.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}

// id is the storage identity of k. Parts may contain ':' so String is not used.
func (k Key) id() string {
	return strings.Join(k, "\x00")
}
