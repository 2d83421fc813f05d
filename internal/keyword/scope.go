// Package keyword assembles the substitution tables used to render
// workflow templates. A table is built by merging ordered scopes; later
// scopes win on key collision, which gives the precedence chain
// environment < platform < workflow < task < phase < overrides.
package keyword

import "os"

// Scope is one layer of keyword definitions. Keys are token names
// without the $ prefix.
type Scope map[string]string

// PassthroughNames is the fixed set of token names that may be seeded
// from the process environment. Values for these names flow into the
// lowest-precedence scope; any configuration scope overrides them.
var PassthroughNames = []string{
	"HOST_NAME",
	"USER_NAME",
	"USER_HOME",
	"LOCAL_SCRATCH",
	"DATA_DIRECTORY",
	"SEARCH_PATH",
	"COMMAND",
	"NODE_SET",
	"FILE_SYSTEM_DOMAIN",
	"NODE_COUNT",
	"CPU_COUNT",
	"QUEUE",
	"WALL_CLOCK",
	"IDS_PER_JOB",
}

// EnvScope materializes the passthrough set from the process
// environment. Names that are unset do not enter the scope.
func EnvScope() Scope {
	return EnvValues(PassthroughNames...)
}

// EnvValues builds a scope from the environment for the given names,
// skipping any that are unset.
func EnvValues(names ...string) Scope {
	scope := Scope{}
	for _, name := range names {
		if v, ok := os.LookupEnv(name); ok {
			scope[name] = v
		}
	}
	return scope
}
