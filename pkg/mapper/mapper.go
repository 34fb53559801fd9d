// Package mapper provides the single-method transform contract used to move
// values between the domain and its transfer or persistence representations.
//
// Every Mapper obeys one law: Apply(nil) returns (nil, nil). For non-nil input
// the result depends only on the argument.
package mapper

// Mapper transforms an A into a B.
type Mapper[A, B any] interface {
	Apply(in *A) (*B, error)
}

// Func adapts a plain function to Mapper. The function is never called with
// nil input.
type Func[A, B any] func(in *A) (*B, error)

// Apply implements Mapper.
func (f Func[A, B]) Apply(in *A) (*B, error) {
	if in == nil {
		return nil, nil
	}
	return f(in)
}

// Total adapts an infallible function to Mapper.
func Total[A, B any](fn func(in *A) *B) Func[A, B] {
	return func(in *A) (*B, error) {
		return fn(in), nil
	}
}

// ApplyAll maps every element of in, stopping at the first error. Nil
// elements map to nil elements.
func ApplyAll[A, B any](m Mapper[A, B], in []*A) ([]*B, error) {
	out := make([]*B, 0, len(in))
	for _, a := range in {
		b, err := m.Apply(a)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}
