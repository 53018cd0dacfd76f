package vector

import (
	"fmt"
	"math/rand"

	"github.com/san-kum/odesolve/internal/dynamo"
)

// Mutability tags a vector as owning (Mutable) or copy-on-write (Immutable).
type Mutability int

const (
	Mutable Mutability = iota
	Immutable
)

func (m Mutability) String() string {
	switch m {
	case Mutable:
		return "mutable"
	case Immutable:
		return "immutable"
	default:
		return fmt.Sprintf("Mutability(%d)", int(m))
	}
}

// Vector is a fixed-length array of float64 values.
type Vector struct {
	mut  Mutability
	data []float64
}

// New returns a zero-filled vector of length n.
func New(n int, m Mutability) *Vector {
	return &Vector{mut: m, data: make([]float64, n)}
}

// Filled returns a vector of length n with every element set to fill.
func Filled(n int, fill float64, m Mutability) *Vector {
	v := New(n, m)
	for i := range v.data {
		v.data[i] = fill
	}
	return v
}

// Random returns a vector of length n drawn uniformly from [0, 1).
// A nil rng uses the package-level source.
func Random(n int, m Mutability, rng *rand.Rand) *Vector {
	v := New(n, m)
	for i := range v.data {
		if rng != nil {
			v.data[i] = rng.Float64()
		} else {
			v.data[i] = rand.Float64()
		}
	}
	return v
}

// Of returns a vector holding a copy of values.
func Of(m Mutability, values ...float64) *Vector {
	data := make([]float64, len(values))
	copy(data, values)
	return &Vector{mut: m, data: data}
}

func MutableOf(values ...float64) *Vector { return Of(Mutable, values...) }
func ImmutableOf(values ...float64) *Vector { return Of(Immutable, values...) }

// ToImmutable returns v if it is already immutable, otherwise an immutable copy.
func (v *Vector) ToImmutable() *Vector {
	if v.mut == Immutable {
		return v
	}
	return v.clone(Immutable)
}

// ToMutable returns v if it is already mutable, otherwise a mutable copy.
func (v *Vector) ToMutable() *Vector {
	if v.mut == Mutable {
		return v
	}
	return v.clone(Mutable)
}

func (v *Vector) clone(m Mutability) *Vector {
	data := make([]float64, len(v.data))
	copy(data, v.data)
	return &Vector{mut: m, data: data}
}

func (v *Vector) Len() int { return len(v.data) }
func (v *Vector) Mutability() Mutability { return v.mut }
func (v *Vector) IsImmutable() bool { return v.mut == Immutable }

// Values returns a copy of the elements.
func (v *Vector) Values() []float64 {
	out := make([]float64, len(v.data))
	copy(out, v.data)
	return out
}

// Get returns element i.
func (v *Vector) Get(i int) (float64, error) {
	if i < 0 || i >= len(v.data) {
		return 0, fmt.Errorf("%w: %d not in [0, %d)", dynamo.ErrIndexOutOfRange, i, len(v.data))
	}
	return v.data[i], nil
}

// At returns element i and panics if i is out of range.
func (v *Vector) At(i int) float64 {
	x, err := v.Get(i)
	if err != nil {
		panic(err)
	}
	return x
}

// Set writes element i. Immutable vectors reject every write.
func (v *Vector) Set(i int, x float64) error {
	if v.mut == Immutable {
		return dynamo.ErrImmutable
	}
	if i < 0 || i >= len(v.data) {
		return fmt.Errorf("%w: %d not in [0, %d)", dynamo.ErrIndexOutOfRange, i, len(v.data))
	}
	v.data[i] = x
	return nil
}

func (v *Vector) String() string {
	return fmt.Sprintf("%s%v", v.mut, v.data)
}
