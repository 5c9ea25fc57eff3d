// coerce/coerce.go
package coerce

import (
	"fmt"
	"reflect"

	"github.com/tasklight/tasklight-core/pkg/executor"
	"github.com/tasklight/tasklight-core/pkg/schema"
)

// Error reports a failed coercion, naming the declared type and the
// originating operation so the client response can say what went wrong.
type Error struct {
	Declared  string
	Operation string
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("coerce %s result into %s: %v", e.Operation, e.Declared, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Outcome is the coerced response shape. NoContent signals an empty-success
// response; otherwise Value carries the body.
type Outcome struct {
	NoContent bool
	Value     any
}

// Coerce converts a raw result into the endpoint's declared return shape.
//
//   - returns "none": zero records means no content; anything else passes the
//     raw records through untouched.
//   - raw already is the declared type (a specialized path produced it):
//     passed through unchanged.
//   - otherwise: structural re-encode of the records into the declared type,
//     or a collection of it when the endpoint says so.
func Coerce(raw any, ep schema.Endpoint) (Outcome, error) {
	if ep.Returns == schema.ReturnNone {
		res, ok := raw.(executor.Result)
		if ok && len(res.Records) == 0 {
			return Outcome{NoContent: true}, nil
		}
		if ok {
			return Outcome{Value: res.Records}, nil
		}
		return Outcome{Value: raw}, nil
	}

	b, ok := binding(ep.Returns)
	if !ok {
		return Outcome{}, &Error{Declared: ep.Returns, Operation: ep.Operation,
			Err: fmt.Errorf("return type not registered")}
	}

	// Specialized paths may hand over the declared type directly.
	if raw != nil && matchesDeclared(raw, b, ep.Collection) {
		return Outcome{Value: raw}, nil
	}

	res, ok := raw.(executor.Result)
	if !ok {
		return Outcome{}, &Error{Declared: ep.Returns, Operation: ep.Operation,
			Err: fmt.Errorf("unexpected result shape %T", raw)}
	}

	if ep.Collection {
		// A rowless result must still shape into an empty array, not null.
		records := res.Records
		if records == nil {
			records = []executor.Record{}
		}
		data, err := b.Codec.Marshal(records)
		if err != nil {
			return Outcome{}, &Error{Declared: ep.Returns, Operation: ep.Operation, Err: err}
		}
		dst := b.ZeroSlice()
		if err := b.Codec.Unmarshal(data, dst); err != nil {
			return Outcome{}, &Error{Declared: ep.Returns, Operation: ep.Operation, Err: err}
		}
		return Outcome{Value: reflect.ValueOf(dst).Elem().Interface()}, nil
	}

	// Single entity: an empty result set has nothing to shape.
	if len(res.Records) == 0 {
		return Outcome{NoContent: true}, nil
	}
	data, err := b.Codec.Marshal(res.Records[0])
	if err != nil {
		return Outcome{}, &Error{Declared: ep.Returns, Operation: ep.Operation, Err: err}
	}
	dst := b.Zero()
	if err := b.Codec.Unmarshal(data, dst); err != nil {
		return Outcome{}, &Error{Declared: ep.Returns, Operation: ep.Operation, Err: err}
	}
	return Outcome{Value: reflect.ValueOf(dst).Elem().Interface()}, nil
}

func matchesDeclared(raw any, b Binding, collection bool) bool {
	t := reflect.TypeOf(raw)
	if collection {
		return t.Kind() == reflect.Slice && t.Elem() == b.Elem
	}
	return t == b.Elem
}
