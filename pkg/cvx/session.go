// Package cvx is the public modeling surface: sessions own variables, verify
// expression trees against the disciplined-convexity rules, and lower them to
// cone programs for an external solver.
package cvx

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/cvxgo/cvxgo/internal/expr"
	"github.com/cvxgo/cvxgo/internal/vexity"
)

// Re-exported core types, so callers never import the internal packages.
type (
	Variable   = expr.Variable
	Constraint = expr.Constraint
	Node       = expr.Node
	NodeID     = expr.NodeID
	Shape      = expr.Shape
	Value      = expr.Value
)

// NewValue builds a column-major value with the given shape.
func NewValue(shape Shape, data []complex128) (*Value, error) {
	return expr.NewValue(shape, data)
}

// Session is a caller-owned modeling context: it holds the node arena and
// the identity→variable registry for one independent problem-building
// session. Construction is safe from multiple goroutines; compiling is one
// single-threaded pass per Compile call.
//
// Registry entries live until Clear, so a solver layer can scatter solution
// slices back onto variables that went out of scope in user code.
type Session struct {
	id uuid.UUID

	mu    sync.RWMutex
	arena *expr.Arena
	vars  map[expr.NodeID]*expr.Variable
}

func NewSession() *Session {
	// The arena owns the session identity; nodes capture it at construction
	// and the compiler refuses caches tagged with any other session.
	arena := expr.NewArena()
	return &Session{
		id:    arena.Session(),
		arena: arena,
		vars:  make(map[expr.NodeID]*expr.Variable),
	}
}

// ID returns the session's unique identity. Caches and cone programs carry
// it so cross-session mixups fail loudly instead of corrupting results.
func (s *Session) ID() uuid.UUID { return s.id }

// Variable constructs a rows×cols decision variable.
func (s *Session) Variable(rows, cols int, opts ...VarOption) *Variable {
	cfg := applyOptions(opts)
	v := expr.NewVariable(s.arena, Shape{Rows: rows, Cols: cols}, cfg.sign, cfg.kind, cfg.builders...)
	s.register(v)
	return v
}

// Scalar constructs a 1×1 decision variable.
func (s *Session) Scalar(opts ...VarOption) *Variable {
	return s.Variable(1, 1, opts...)
}

// Semidefinite constructs a square variable carrying a positive-semidefinite
// side constraint. Fails with InvalidShape for non-square requests.
func (s *Session) Semidefinite(rows, cols int) (*Variable, error) {
	v, err := expr.NewSemidefinite(s.arena, rows, cols)
	if err != nil {
		return nil, err
	}
	s.register(v)
	return v, nil
}

// HermitianSemidefinite constructs an n×n complex variable constrained to
// the Hermitian positive-semidefinite cone.
func (s *Session) HermitianSemidefinite(n int) (*Variable, error) {
	v, err := expr.NewHermitianSemidefinite(s.arena, n)
	if err != nil {
		return nil, err
	}
	s.register(v)
	return v, nil
}

// Constant registers a literal leaf.
func (s *Session) Constant(val any) (Node, error) {
	v, err := expr.Convert(val)
	if err != nil {
		return nil, err
	}
	return expr.NewConstant(s.arena, v), nil
}

// NonNegative returns an explicit x ⪰ 0 constraint.
func (s *Session) NonNegative(x Node) Constraint {
	return expr.NewSignConstraint(s.arena, x, expr.ConeNonNegative)
}

// NonPositive returns an explicit x ⪯ 0 constraint.
func (s *Session) NonPositive(x Node) Constraint {
	return expr.NewSignConstraint(s.arena, x, expr.ConeNonPositive)
}

// EqualZero returns an explicit x = 0 constraint.
func (s *Session) EqualZero(x Node) Constraint {
	return expr.NewZeroConstraint(s.arena, x)
}

// PSD returns an explicit positive-semidefinite constraint on a square node.
func (s *Session) PSD(x Node) (Constraint, error) {
	if !x.Shape().IsSquare() {
		return nil, expr.NewInvalidShapeError(x.Shape(), "psd constraint needs a square expression")
	}
	return expr.NewSemidefiniteConstraint(s.arena, x), nil
}

func (s *Session) register(v *expr.Variable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vars[v.ID()] = v
}

// Lookup resolves a variable identity through the registry. This is the hook
// the solver layer uses to scatter a solution back.
func (s *Session) Lookup(id NodeID) (*Variable, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vars[id]
	return v, ok
}

// Variables returns the registered variables in construction order.
func (s *Session) Variables() []*Variable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Variable, 0, len(s.vars))
	for _, v := range s.vars {
		out = append(out, v)
	}
	// Construction order is ID order.
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Clear empties the registry and the arena. Node identities are not reused.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.arena.Clear()
	s.vars = make(map[expr.NodeID]*expr.Variable)
}

// VarOption configures a variable under construction.
type VarOption func(*varConfig)

type varConfig struct {
	sign     vexity.Sign
	kind     vexity.VarKind
	builders []expr.ConstraintBuilder
}

func applyOptions(opts []VarOption) varConfig {
	cfg := varConfig{sign: vexity.NoSign, kind: vexity.Continuous}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Positive restricts the variable to non-negative values.
func Positive() VarOption { return func(c *varConfig) { c.sign = vexity.Positive } }

// Negative restricts the variable to non-positive values.
func Negative() VarOption { return func(c *varConfig) { c.sign = vexity.Negative } }

// Complex gives the variable complex elements.
func Complex() VarOption { return func(c *varConfig) { c.sign = vexity.ComplexSign } }

// Integer requires integral values.
func Integer() VarOption { return func(c *varConfig) { c.kind = vexity.Integer } }

// Binary requires values in {0, 1}.
func Binary() VarOption { return func(c *varConfig) { c.kind = vexity.Binary } }

// WithConstraint attaches a constraint built against the variable once its
// identity and shape are final.
func WithConstraint(build func(*Variable) Constraint) VarOption {
	return func(c *varConfig) {
		c.builders = append(c.builders, expr.ConstraintBuilder(build))
	}
}
