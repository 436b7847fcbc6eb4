// Package pathutil holds the small string helpers shared by the compiler
// and the CLI: route-style placeholder substitution, URI segment extraction
// and the hash used to derive unique compilation prefixes.
package pathutil

import "strconv"

// Hash is the djb2 string hash (h = h*33 + c, seeded with 5381) over b.
// Arithmetic wraps at 64 bits.
func Hash(b []byte) uint64 {
	var h uint64 = 5381
	for _, c := range b {
		h = (h << 5) + h + uint64(c)
	}
	return h
}

// UniquePathKey derives an identifier-safe key from path: "v" followed by
// the decimal hash of the path bytes and a terminating NUL.
func UniquePathKey(path string) string {
	b := make([]byte, len(path)+1)
	copy(b, path)
	return "v" + strconv.FormatUint(Hash(b), 10)
}

// GetURI returns the text between the last two '/' or '\' separators of
// path, or "" when path has fewer than two separators.
//
//	GetURI("/foo/bar/baz.txt") == "bar"
func GetURI(path string) string {
	found, mark := 0, 0
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] != '/' && path[i] != '\\' {
			continue
		}
		found++
		if found == 1 {
			mark = i - 1
			continue
		}
		if n := mark - i; n > 0 {
			return path[i+1 : i+1+n]
		}
		return ""
	}
	return ""
}
