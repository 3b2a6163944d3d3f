package vexity

// Curvature classifies an expression for disciplined convex programming.
// Constant and Affine are the only curvatures reachable for a leaf node;
// Convex and Concave arise from atom composition rules.
type Curvature int

const (
	Constant Curvature = iota
	Affine
	Convex
	Concave
	Unknown // composition fell outside the DCP rules
)

func (c Curvature) String() string {
	switch c {
	case Constant:
		return "constant"
	case Affine:
		return "affine"
	case Convex:
		return "convex"
	case Concave:
		return "concave"
	default:
		return "unknown"
	}
}

// IsConstant reports whether the compiler may evaluate the node directly.
func (c Curvature) IsConstant() bool { return c == Constant }

// IsAffine reports whether the node is affine in the decision variables.
// Constant expressions are affine with a zero linear part.
func (c Curvature) IsAffine() bool { return c == Constant || c == Affine }

// IsConvex reports whether the node is convex (affine included).
func (c Curvature) IsConvex() bool { return c.IsAffine() || c == Convex }

// IsConcave reports whether the node is concave (affine included).
func (c Curvature) IsConcave() bool { return c.IsAffine() || c == Concave }

// Neg returns the curvature of the negated expression.
func (c Curvature) Neg() Curvature {
	switch c {
	case Convex:
		return Concave
	case Concave:
		return Convex
	default:
		return c
	}
}

// Add returns the curvature of a sum of two expressions.
// The sum of a convex and a concave expression has no DCP curvature.
func (c Curvature) Add(other Curvature) Curvature {
	if c == other {
		return c
	}
	if c == Constant {
		return other
	}
	if other == Constant {
		return c
	}
	if c == Affine {
		return other
	}
	if other == Affine {
		return c
	}
	return Unknown
}

// Sign classifies an expression's value domain.
type Sign int

const (
	NoSign Sign = iota
	Positive
	Negative
	ComplexSign
)

func (s Sign) String() string {
	switch s {
	case Positive:
		return "positive"
	case Negative:
		return "negative"
	case ComplexSign:
		return "complex"
	default:
		return "no sign"
	}
}

// IsComplex reports whether values of this sign carry an imaginary part.
func (s Sign) IsComplex() bool { return s == ComplexSign }

// Neg returns the sign of the negated expression.
func (s Sign) Neg() Sign {
	switch s {
	case Positive:
		return Negative
	case Negative:
		return Positive
	default:
		return s
	}
}

// Add returns the sign of a sum of two expressions.
func (s Sign) Add(other Sign) Sign {
	if s == ComplexSign || other == ComplexSign {
		return ComplexSign
	}
	if s == other {
		return s
	}
	return NoSign
}

// Mul returns the sign of a product of two expressions.
func (s Sign) Mul(other Sign) Sign {
	if s == ComplexSign || other == ComplexSign {
		return ComplexSign
	}
	if s == NoSign || other == NoSign {
		return NoSign
	}
	if s == other {
		return Positive
	}
	return Negative
}

// VarKind is the domain of a decision variable.
type VarKind int

const (
	Continuous VarKind = iota
	Integer
	Binary
)

func (k VarKind) String() string {
	switch k {
	case Integer:
		return "integer"
	case Binary:
		return "binary"
	default:
		return "continuous"
	}
}
