package handler

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/samber/do/v2"
)

// ErrNotProvided is returned when a type was never provided to a Container.
var ErrNotProvided = errors.New("dependency not provided")

// Container holds service-wide dependencies that modules resolve at
// execution time. Values are keyed by their static type.
type Container struct {
	injector *do.RootScope
}

// NewContainer creates an empty container.
func NewContainer() *Container {
	return &Container{injector: do.New()}
}

// Provide stores v under type T, replacing any earlier value.
func Provide[T any](c *Container, v T) {
	do.OverrideValue(c.injector, v)
}

// Resolve returns the value stored under type T.
func Resolve[T any](c *Container) (T, error) {
	var zero T
	if c == nil {
		return zero, fmt.Errorf("%w: %s", ErrNotProvided, reflect.TypeFor[T]())
	}

	v, err := do.Invoke[T](c.injector)
	if err != nil {
		return zero, fmt.Errorf("%w: %s: %w", ErrNotProvided, reflect.TypeFor[T](), err)
	}
	return v, nil
}
