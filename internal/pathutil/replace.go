package pathutil

import "strings"

// ReplacePaths substitutes the placeholders of a route-style pattern.
//
// Three placeholder forms are recognised, each consuming the next slot of a
// 1-based position counter:
//
//	{name} or {name:regex}  replaced by replacements[name]
//	(regex)                 replaced by replacements[paths[pos]]
//	:word                   replaced by replacements[paths[pos]]
//
// A placeholder whose slot is missing from paths, or whose replacement is
// missing, is removed. A leading '/' is dropped. ok is false only for an
// empty pattern. With no paths the pattern is returned as is.
//
// EXAMPLE:
//
//	ReplacePaths("/{name}/profile", {1: "name"}, {"name": "john"}) == "john/profile"
func ReplacePaths(pattern string, paths map[int]any, replacements map[string]string) (string, bool) {
	if pattern == "" {
		return "", false
	}

	i := 0
	if pattern[0] == '/' {
		i = 1
	}
	if len(paths) == 0 {
		return pattern[i:], true
	}

	r := &replacer{paths: paths, replacements: replacements, position: 1}

	var (
		out          strings.Builder
		brackets     int
		parens       int
		placeholder  bool
		intermediate int
		marker       int
	)

	for ; i < len(pattern); i++ {
		ch := pattern[i]
		if ch == 0 {
			break
		}

		if parens == 0 && !placeholder {
			switch ch {
			case '{':
				if brackets == 0 {
					marker, intermediate = i, 0
				}
				brackets++
			case '}':
				brackets--
				if intermediate > 0 && brackets == 0 {
					out.WriteString(r.replace(true, pattern[marker+1:i]))
					continue
				}
			}
		}

		if brackets == 0 && !placeholder {
			switch ch {
			case '(':
				if parens == 0 {
					marker, intermediate = i, 0
				}
				parens++
			case ')':
				parens--
				if intermediate > 0 && parens == 0 {
					out.WriteString(r.replace(false, pattern[marker+1:i]))
					continue
				}
			}
		}

		if brackets == 0 && parens == 0 {
			if placeholder {
				if intermediate > 0 && (ch < 'a' || ch > 'z' || i == len(pattern)-1) {
					out.WriteString(r.replace(false, ""))
					placeholder = false
					continue
				}
			} else if ch == ':' {
				placeholder = true
				marker, intermediate = i, 0
			}
		}

		if brackets > 0 || parens > 0 || placeholder {
			intermediate++
		} else {
			out.WriteByte(ch)
		}
	}

	return out.String(), true
}

type replacer struct {
	paths        map[int]any
	replacements map[string]string
	position     int
}

// replace resolves one placeholder and advances the position counter when
// the placeholder is well formed.
func (r *replacer) replace(named bool, inner string) string {
	item := inner
	if named {
		name, ok := placeholderName(inner)
		if !ok {
			return ""
		}
		item = name
	}

	pos := r.position
	r.position++

	key, ok := r.paths[pos]
	if !ok {
		return ""
	}
	if !named {
		s, isString := key.(string)
		if !isString {
			return ""
		}
		item = s
	}
	return r.replacements[item]
}

// placeholderName validates the inside of {...} and strips a ":regex"
// suffix. A name starts with a letter and continues with letters, digits,
// '-' or '_'.
func placeholderName(inner string) (string, bool) {
	if inner == "" {
		return "", false
	}
	for j := 0; j < len(inner); j++ {
		ch := inner[j]
		alpha := (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
		if j == 0 && !alpha {
			return "", false
		}
		switch {
		case ch == ':':
			return inner[:j], true
		case alpha, ch >= '0' && ch <= '9', ch == '-', ch == '_':
		default:
			return "", false
		}
	}
	return inner, true
}
