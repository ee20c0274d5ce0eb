package gen

import (
	"strings"
)

// goName converts a schema identifier to an exported Go name:
// snake_case and dotted names become UpperCamelCase.
func goName(s string) string {
	if s == "" {
		return s
	}
	out := make([]byte, 0, len(s))
	upperNext := true
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '_' || c == '.' {
			upperNext = true
			continue
		}
		if upperNext {
			if c >= 'a' && c <= 'z' {
				c = c - 'a' + 'A'
			}
			upperNext = false
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return "X" + s
	}
	if out[0] >= '0' && out[0] <= '9' {
		return "X" + string(out)
	}
	return string(out)
}

// fieldName is goName with the generated method names kept free.
func fieldName(s string) string {
	n := goName(s)
	switch n {
	case "Read", "Write", "String":
		return n + "_"
	}
	return n
}

// enumConst names an enum member constant: Color_RED.
func enumConst(enum, member string) string {
	return goName(enum) + "_" + member
}

// packageName derives a Go package name from a namespace value such as
// "example.fortest" or "github.com/acme/fortest".
func packageName(ns string) string {
	if i := strings.LastIndexAny(ns, "./"); i >= 0 {
		ns = ns[i+1:]
	}
	ns = strings.ToLower(strings.ReplaceAll(ns, "-", "_"))
	if ns == "" {
		return defaultPackage
	}
	return ns
}
