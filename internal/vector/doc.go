// Package vector provides a fixed-length numeric vector with two aliasing
// modes.
//
// A [Mutable] vector owns its buffer and is reused as the output of any
// transforming operation that does not request an explicit output mode.
// An [Immutable] vector's buffer is never written after construction; every
// operation on it allocates. Callers that must not alias a result with an
// operand pass an explicit output mutability:
//
//	k := f(x, t).ToImmutable()
//	next := k.MultScalar(h).Add(x)          // fresh Mutable, k untouched
//	snap := next.Add(x, vector.Immutable)   // always a new buffer
//
// Elementwise operations on vectors of different lengths panic with an
// error wrapping [dynamo.ErrDimensionMismatch], the way gonum reports shape
// misuse. Accessors and reductions return errors instead.
package vector
