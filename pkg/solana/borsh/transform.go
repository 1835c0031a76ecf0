package borsh

import "fmt"

// Transform is a pure post-process step applied to a freshly decoded record.
// The record passed in is owned by the transform, which returns the record
// that is handed to the caller.
type Transform func(Record) Record

// transforms is populated during package initialization and only read afterwards.
var transforms = make(map[string]Transform)

// RegisterTransform adds a named transform and returns its name. It must only
// be called during package initialization, typically as the initializer of the
// package level variable that schema declarations reference, so that Go orders
// the registration before the schema is defined. Registering the same name
// twice panics.
func RegisterTransform(name string, fn Transform) string {
	if name == "" || fn == nil {
		panic("borsh: invalid transform registration")
	}
	if _, ok := transforms[name]; ok {
		panic(fmt.Sprintf("borsh: transform %q already registered", name))
	}
	transforms[name] = fn
	return name
}

func lookupTransform(name string) (Transform, bool) {
	fn, ok := transforms[name]
	return fn, ok
}
