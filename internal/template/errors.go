package template

import "fmt"

// UnresolvedTokenError reports a template token with no entry in the
// keyword table. Rendering never substitutes a default and never leaves
// the token literal; it fails with this error instead.
type UnresolvedTokenError struct {
	// Token is the identifier without its $ prefix.
	Token string

	// TemplatePath is the template being rendered, empty when the
	// failure came from expanding an in-memory string.
	TemplatePath string
}

// Error implements the error interface.
func (e *UnresolvedTokenError) Error() string {
	if e.TemplatePath != "" {
		return fmt.Sprintf("unresolved token $%s in template %s", e.Token, e.TemplatePath)
	}
	return fmt.Sprintf("unresolved token $%s", e.Token)
}

var _ error = (*UnresolvedTokenError)(nil)
