package env

import "regexp"

// Compile-time variable names are convention-marked: an underscore prefix
// followed by uppercase letters, digits or underscores (e.g. __DEBUG, _VERSION).
var nameRegex = regexp.MustCompile(`^_[_0-9A-Z][_0-9A-Z]*$`)

// IsVarName reports whether name follows the compile-time variable convention.
func IsVarName(name string) bool {
	return nameRegex.MatchString(name)
}

// Environment is the mapping of compile-time variable names to values. It is
// owned by one preprocessor instance and mutated in place by #set/#unset, so
// changes made while processing one file are visible to later files processed
// by the same instance.
type Environment struct {
	vars map[string]Value
}

// New creates an environment seeded from initial. Values are normalized
// (integers widen to float64, nil becomes null).
func New(initial map[string]interface{}) *Environment {
	e := &Environment{vars: make(map[string]Value, len(initial))}
	for name, v := range initial {
		e.vars[name] = Normalize(v)
	}
	return e
}

// Get returns the value bound to name, or Undefined when the name is not set.
// Lookups never fail; an unknown name behaves like an undefined variable.
func (e *Environment) Get(name string) Value {
	if v, ok := e.vars[name]; ok {
		return v
	}
	return Undefined
}

// Has reports whether name is currently set. Note a name explicitly #set to
// undefined is still set; Has is what #ifset tests.
func (e *Environment) Has(name string) bool {
	_, ok := e.vars[name]
	return ok
}

// Set binds name to v without coercion; v keeps its evaluated type.
func (e *Environment) Set(name string, v Value) {
	e.vars[name] = v
}

// Unset removes name from the environment.
func (e *Environment) Unset(name string) {
	delete(e.vars, name)
}

// Names returns the currently defined variable names in unspecified order.
func (e *Environment) Names() []string {
	names := make([]string, 0, len(e.vars))
	for name := range e.vars {
		names = append(names, name)
	}
	return names
}
