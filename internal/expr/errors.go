package expr

import "fmt"

// ShapeMismatchError indicates a value's shape disagrees with a node's fixed shape.
type ShapeMismatchError struct {
	Want Shape
	Got  Shape
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("shape mismatch: want %s, got %s", e.Want, e.Got)
}

func NewShapeMismatchError(want, got Shape) *ShapeMismatchError {
	return &ShapeMismatchError{Want: want, Got: got}
}

// ValueNotSetError indicates an evaluation of a node whose value was never assigned.
type ValueNotSetError struct {
	Node NodeID
}

func (e *ValueNotSetError) Error() string {
	return fmt.Sprintf("value not set for node %d", e.Node)
}

func NewValueNotSetError(id NodeID) *ValueNotSetError {
	return &ValueNotSetError{Node: id}
}

// InvalidShapeError indicates a constructor was given a shape it cannot accept,
// e.g. a non-square semidefinite variable.
type InvalidShapeError struct {
	Shape  Shape
	Reason string
}

func (e *InvalidShapeError) Error() string {
	return fmt.Sprintf("invalid shape %s: %s", e.Shape, e.Reason)
}

func NewInvalidShapeError(shape Shape, reason string) *InvalidShapeError {
	return &InvalidShapeError{Shape: shape, Reason: reason}
}

// TypeConversionError indicates a value cannot be represented in a node's
// element type, e.g. a complex value assigned to a real variable.
type TypeConversionError struct {
	Reason string
}

func (e *TypeConversionError) Error() string {
	return fmt.Sprintf("type conversion failed: %s", e.Reason)
}

func NewTypeConversionError(reason string) *TypeConversionError {
	return &TypeConversionError{Reason: reason}
}
