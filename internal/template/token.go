// Package template renders script and submit-file templates by
// substituting $IDENTIFIER tokens from a keyword table. An identifier
// is letters, digits, and underscores, starting with a letter or
// underscore, matched longest-first and case-sensitively. A $ followed
// by anything else ($1, ${HOME}, $(cmd), $$) is literal text, so shell
// runtime syntax passes through untouched when written in those forms.
//
// Rendering is all-or-nothing: a token with no table entry fails the
// whole render, and no output file is produced.
package template

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// scanToken returns the identifier starting at s[i] (the byte after a
// $) and the index just past it. An empty name means the $ was literal.
func scanToken(s string, i int) (name string, end int) {
	if i >= len(s) || !isIdentStart(s[i]) {
		return "", i
	}
	j := i + 1
	for j < len(s) && isIdentChar(s[j]) {
		j++
	}
	return s[i:j], j
}

// Tokens returns the distinct token names referenced by s, in order of
// first appearance.
func Tokens(s string) []string {
	var names []string
	seen := make(map[string]bool)
	for i := 0; i < len(s); i++ {
		if s[i] != '$' {
			continue
		}
		name, end := scanToken(s, i+1)
		if name == "" {
			continue
		}
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
		i = end - 1
	}
	return names
}
