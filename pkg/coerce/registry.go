// coerce/registry.go
package coerce

import (
	"fmt"
	"reflect"

	"github.com/tasklight/tasklight-core/pkg/codec"
)

// Binding ties a declared return type name to its codec and compile-time
// checked decode targets. The registry replaces runtime type switching: each
// entry carries dedicated constructors for the single and collection shapes.
type Binding struct {
	Name      string
	Codec     codec.Codec
	Zero      func() any // pointer to T
	ZeroSlice func() any // pointer to []T
	Elem      reflect.Type
}

var typeReg = map[string]Binding{}

// RegisterType binds a concrete entity type to a declared return type name.
func RegisterType[T any](name string, c codec.Codec) error {
	if name == "" || c == nil {
		return fmt.Errorf("type name and codec required")
	}
	if _, ok := typeReg[name]; ok {
		return fmt.Errorf("type %q already registered", name)
	}
	var probe T
	typeReg[name] = Binding{
		Name:      name,
		Codec:     c,
		Zero:      func() any { var x T; return &x },
		ZeroSlice: func() any { var xs []T; return &xs },
		Elem:      reflect.TypeOf(&probe).Elem(),
	}
	return nil
}

func MustRegisterType[T any](name string, c codec.Codec) {
	if err := RegisterType[T](name, c); err != nil {
		panic(err)
	}
}

// Registered reports whether a declared return type resolves. The dispatcher
// checks every endpoint's return type against this at build time.
func Registered(name string) bool {
	_, ok := typeReg[name]
	return ok
}

func binding(name string) (Binding, bool) {
	b, ok := typeReg[name]
	return b, ok
}
