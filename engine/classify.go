package engine

import (
	"github.com/cockroachdb/errors"

	"github.com/rlch/javacomplete/model"
)

// ErrBoundCycle marks a type variable whose upper bounds loop back on
// themselves. Valid input never produces one.
var ErrBoundCycle = errors.New("cyclic type variable bound")

// Shape is the enumeration strategy chosen for a qualifier type.
type Shape int

// Qualifier shapes.
const (
	ShapeOther Shape = iota
	ShapeArray
	ShapeDeclared
)

func (s Shape) String() string {
	switch s {
	case ShapeArray:
		return "array"
	case ShapeDeclared:
		return "declared"
	default:
		return "other"
	}
}

// Target is the outcome of classifying a qualifier type.
type Target struct {
	Shape Shape
	// Declared is the type whose members are enumerated when Shape is
	// ShapeDeclared. For a type variable it is the resolved bound.
	Declared *model.DeclaredType
	// Array is the qualifier type when Shape is ShapeArray.
	Array *model.ArrayType
}

// Classify picks the enumeration strategy for t. Type variables are replaced
// by their upper bound, repeatedly; a bound that is neither declared nor a
// type variable yields ShapeOther. It performs no enumeration.
func Classify(t model.Type) (Target, error) {
	switch t := t.(type) {
	case *model.ArrayType:
		return Target{Shape: ShapeArray, Array: t}, nil
	case *model.DeclaredType:
		if t.Element == nil {
			return Target{Shape: ShapeOther}, nil
		}

		return Target{Shape: ShapeDeclared, Declared: t}, nil
	case *model.TypeVariable:
		bound, err := ResolveBound(t)
		if err != nil {
			return Target{}, err
		}

		if dt, ok := bound.(*model.DeclaredType); ok && dt.Element != nil {
			return Target{Shape: ShapeDeclared, Declared: dt}, nil
		}

		return Target{Shape: ShapeOther}, nil
	default:
		return Target{Shape: ShapeOther}, nil
	}
}

// ResolveBound follows the upper bounds of tv until it reaches a type that is
// not a type variable. A missing bound resolves to nil. A cycle is an
// assertion failure marked with ErrBoundCycle.
func ResolveBound(tv *model.TypeVariable) (model.Type, error) {
	seen := make(map[*model.TypeVariable]bool)

	var t model.Type = tv
	for {
		v, ok := t.(*model.TypeVariable)
		if !ok {
			return t, nil
		}

		if seen[v] {
			return nil, errors.Mark(
				errors.AssertionFailedf("type variable %s has a cyclic upper bound", errors.Safe(v.Name)),
				ErrBoundCycle,
			)
		}

		seen[v] = true

		if v.Upper == nil {
			return nil, nil
		}

		t = v.Upper
	}
}
