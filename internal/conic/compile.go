package conic

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/cvxgo/cvxgo/internal/expr"
	"github.com/cvxgo/cvxgo/internal/sparse"
)

// signConstrained is implemented by nodes that derive a cone constraint from
// their sign (Positive/Negative variables). The derived constraint is
// compiled ahead of the node's attached constraints.
type signConstrained interface {
	SignConstraint() expr.Constraint
}

// sessionTagged is implemented by nodes that know which modeling session
// constructed them. The arena leaves (Variable, Constant) all do.
type sessionTagged interface {
	Session() uuid.UUID
}

// SessionMismatchError indicates a node was compiled through a cache tagged
// with a different session. Node identities are only unique within one
// arena, so honoring the foreign cache could alias unrelated nodes.
type SessionMismatchError struct {
	Node expr.NodeID
	Want uuid.UUID
	Got  uuid.UUID
}

func (e *SessionMismatchError) Error() string {
	return fmt.Sprintf("node %d belongs to session %s, cache to %s", e.Node, e.Got, e.Want)
}

func NewSessionMismatchError(node expr.NodeID, want, got uuid.UUID) *SessionMismatchError {
	return &SessionMismatchError{Node: node, Want: want, Got: got}
}

// Compile returns x's conic objective, computing it at most once per cache
// lifetime. Shared subexpressions hit the memo table, so total work is one
// visit per distinct node rather than per path.
func Compile(x expr.Node, cache *Cache) (*Objective, error) {
	if tagged, ok := x.(sessionTagged); ok && tagged.Session() != cache.Session() {
		return nil, NewSessionMismatchError(x.ID(), cache.Session(), tagged.Session())
	}
	if obj, ok := cache.Lookup(x.ID()); ok {
		return obj, nil
	}

	if x.Vexity().IsConstant() {
		return compileConstant(x, cache)
	}

	n := x.Shape().Len()
	obj := NewObjective(n)
	im := sparse.New(n, n)
	if x.Sign().IsComplex() {
		// Identity scaled by the imaginary unit: the coefficient's
		// imaginary component is the identity.
		im = sparse.Identity(n)
	}
	obj.Set(x.ID(), Entry{Re: sparse.Identity(n), Im: im})
	obj.Set(expr.ConstantID, Entry{Re: sparse.New(n, 1), Im: sparse.New(n, 1)})

	// The entry must be cached before any recursion below: the node's own
	// constraints reference the node, and without the memo hit the walk
	// would never terminate.
	cache.put(x.ID(), obj)

	if sc, ok := x.(signConstrained); ok {
		if derived := sc.SignConstraint(); derived != nil {
			if err := CompileConstraint(derived, cache); err != nil {
				return nil, err
			}
		}
	}
	for _, c := range x.Constraints() {
		if err := CompileConstraint(c, cache); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

func compileConstant(x expr.Node, cache *Cache) (*Objective, error) {
	// The curvature model guarantees Evaluate only fails here when the
	// node's value was never assigned; that error is surfaced as-is.
	val, err := x.Evaluate()
	if err != nil {
		return nil, err
	}
	obj := NewObjective(x.Shape().Len())
	obj.Set(expr.ConstantID, Entry{
		Re: sparse.FromColumn(val.FlattenRe()),
		Im: sparse.FromColumn(val.FlattenIm()),
	})
	cache.put(x.ID(), obj)
	return obj, nil
}

// CompileConstraint lowers a constraint into the cache's side list. Each
// constraint identity is lowered at most once per pass; the lowering does
// not alter any node's objective.
func CompileConstraint(c expr.Constraint, cache *Cache) error {
	if cache.hasConstraint(c.ID()) {
		return nil
	}
	cache.markConstraint(c.ID())

	obj, err := Compile(c.Expr(), cache)
	if err != nil {
		return err
	}

	// Constraining a provably constant expression is legal but vacuous for
	// sign cones derived from variables that were fixed after construction;
	// the side entry is still recorded so problem assembly can verify it.
	cache.addConstraint(&ConicConstraint{
		Objective: obj,
		Cone:      c.Cone(),
		Shape:     c.Expr().Shape(),
	})
	return nil
}
