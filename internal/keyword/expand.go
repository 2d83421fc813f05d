package keyword

import (
	"errors"
	"fmt"
	"os"

	"github.com/dagforge/dagforge/internal/template"
)

// UndefinedVariableError reports an environment variable referenced by
// a configuration value that is not set in the process environment.
type UndefinedVariableError struct {
	Name string
}

func (e *UndefinedVariableError) Error() string {
	return fmt.Sprintf("undefined environment variable $%s", e.Name)
}

var _ error = (*UndefinedVariableError)(nil)

// Expand substitutes the table's tokens inside a configuration-sourced
// string. The grammar is the template grammar, so shell runtime forms
// like ${HOME} pass through untouched.
func (t *Table) Expand(s string) (string, error) {
	return template.Expand(s, t)
}

type envLookup struct{}

func (envLookup) Lookup(name string) (string, bool) {
	return os.LookupEnv(name)
}

// ExpandEnv substitutes $VAR references in a configuration value from
// the process environment. Referencing an unset variable is an error,
// not an empty substitution.
func ExpandEnv(s string) (string, error) {
	out, err := template.Expand(s, envLookup{})
	if err != nil {
		var unresolved *template.UnresolvedTokenError
		if errors.As(err, &unresolved) {
			return "", &UndefinedVariableError{Name: unresolved.Token}
		}
		return "", err
	}
	return out, nil
}
