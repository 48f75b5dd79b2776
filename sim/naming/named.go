// Package naming provides the naming conventions of simulation objects.
package naming

import (
	"fmt"
	"strings"
)

// Named describes an object that has a name.
type Named interface {
	// Name returns the name of the object.
	Name() string
}

// NamedBase is a base implementation of Named.
type NamedBase struct {
	name string
}

// Name returns the name of the object.
func (b NamedBase) Name() string {
	return b.name
}

// MakeNamedBase creates a new NamedBase. It panics if the name is not valid.
func MakeNamedBase(name string) NamedBase {
	NameMustBeValid(name)

	return NamedBase{name: name}
}

// NameMustBeValid panics if the name is empty or contains whitespace.
func NameMustBeValid(name string) {
	if name == "" {
		panic("name must not be empty")
	}

	if strings.ContainsAny(name, " \t\n") {
		panic(fmt.Sprintf("name %q must not contain whitespace", name))
	}
}

// NameOf returns the name of x if x is Named. Otherwise, a name derived from
// the address of x is returned.
func NameOf(x any) string {
	if n, ok := x.(Named); ok {
		return n.Name()
	}

	return fmt.Sprintf("%T@%p", x, x)
}
