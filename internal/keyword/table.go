package keyword

import "sort"

// Table is an immutable token lookup table produced by Resolve. It is
// safe for concurrent readers; nothing mutates it after construction.
type Table struct {
	values map[string]string
}

// Resolve merges the given scopes into a Table. Later scopes override
// earlier ones on key collision. Nil scopes are skipped. The merge is a
// pure function of its inputs.
func Resolve(scopes ...Scope) *Table {
	values := make(map[string]string)
	for _, scope := range scopes {
		for name, value := range scope {
			values[name] = value
		}
	}
	return &Table{values: values}
}

// Lookup returns the resolved value for a token name.
func (t *Table) Lookup(name string) (string, bool) {
	v, ok := t.values[name]
	return v, ok
}

// Names returns all defined token names in sorted order.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.values))
	for name := range t.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of defined tokens.
func (t *Table) Len() int {
	return len(t.values)
}

// Extend returns a new Table with the additional scopes layered on top
// of this one. The receiver is not modified.
func (t *Table) Extend(scopes ...Scope) *Table {
	values := make(map[string]string, len(t.values))
	for name, value := range t.values {
		values[name] = value
	}
	for _, scope := range scopes {
		for name, value := range scope {
			values[name] = value
		}
	}
	return &Table{values: values}
}
