// Package model implements the declarative YAML description of a modeling
// session: variable declarations, fixes, explicit cone constraints, and the
// objective. A model file is the serializable face of the expression arena.
package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cvxgo/cvxgo/pkg/cvx"
	"github.com/cvxgo/cvxgo/pkg/solver"
)

// Model is the top-level document.
type Model struct {
	// Name identifies the model; it feeds the warm-start fingerprint.
	Name string `yaml:"name"`

	// Variables declares the decision variables.
	Variables []VariableSpec `yaml:"variables"`

	// Objective names the scalar variable to minimize.
	Objective ObjectiveSpec `yaml:"objective"`

	// Constraints lists explicit cone memberships beyond the constraints
	// variables carry themselves.
	Constraints []ConstraintSpec `yaml:"constraints,omitempty"`

	// Fix holds variables at given values before compilation.
	Fix []FixSpec `yaml:"fix,omitempty"`
}

// VariableSpec declares one variable.
type VariableSpec struct {
	// Name is the model-local identifier.
	Name string `yaml:"name"`

	// Rows and Cols give the shape; both default to 1.
	Rows int `yaml:"rows,omitempty"`
	Cols int `yaml:"cols,omitempty"`

	// Sign is "positive", "negative", "complex" or empty.
	Sign string `yaml:"sign,omitempty"`

	// Kind is "continuous" (default), "integer" or "binary".
	Kind string `yaml:"kind,omitempty"`

	// Semidefinite attaches a positive-semidefinite constraint; the shape
	// must be square. Hermitian additionally makes the elements complex.
	Semidefinite bool `yaml:"semidefinite,omitempty"`
	Hermitian    bool `yaml:"hermitian,omitempty"`
}

// ObjectiveSpec names the variable to minimize.
type ObjectiveSpec struct {
	Variable string `yaml:"variable"`
}

// ConstraintSpec restricts a declared variable to a cone.
type ConstraintSpec struct {
	Variable string `yaml:"variable"`
	// Cone is "nonneg", "nonpos", "zero" or "psd".
	Cone string `yaml:"cone"`
}

// FixSpec assigns and fixes a variable's value, column-major.
type FixSpec struct {
	Name  string    `yaml:"name"`
	Value []float64 `yaml:"value"`
}

// Load reads and validates a model file.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a model document.
func Parse(data []byte) (*Model, error) {
	var m Model
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing model: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks the document for internal consistency.
func (m *Model) Validate() error {
	if len(m.Variables) == 0 {
		return fmt.Errorf("model declares no variables")
	}
	names := make(map[string]bool, len(m.Variables))
	for i := range m.Variables {
		v := &m.Variables[i]
		if v.Name == "" {
			return fmt.Errorf("variable %d has no name", i)
		}
		if names[v.Name] {
			return fmt.Errorf("duplicate variable %q", v.Name)
		}
		names[v.Name] = true
		if v.Rows == 0 {
			v.Rows = 1
		}
		if v.Cols == 0 {
			v.Cols = 1
		}
		if v.Rows < 1 || v.Cols < 1 {
			return fmt.Errorf("variable %q has invalid shape %dx%d", v.Name, v.Rows, v.Cols)
		}
		switch v.Sign {
		case "", "positive", "negative", "complex":
		default:
			return fmt.Errorf("variable %q has unknown sign %q", v.Name, v.Sign)
		}
		switch v.Kind {
		case "", "continuous", "integer", "binary":
		default:
			return fmt.Errorf("variable %q has unknown kind %q", v.Name, v.Kind)
		}
		if v.Hermitian && v.Sign != "" && v.Sign != "complex" {
			return fmt.Errorf("variable %q cannot be hermitian and %s", v.Name, v.Sign)
		}
	}

	if m.Objective.Variable == "" {
		return fmt.Errorf("model declares no objective variable")
	}
	if !names[m.Objective.Variable] {
		return fmt.Errorf("objective references unknown variable %q", m.Objective.Variable)
	}
	for _, c := range m.Constraints {
		if !names[c.Variable] {
			return fmt.Errorf("constraint references unknown variable %q", c.Variable)
		}
		switch c.Cone {
		case "nonneg", "nonpos", "zero", "psd":
		default:
			return fmt.Errorf("constraint on %q has unknown cone %q", c.Variable, c.Cone)
		}
	}
	for _, f := range m.Fix {
		if !names[f.Name] {
			return fmt.Errorf("fix references unknown variable %q", f.Name)
		}
	}
	return nil
}

// Fingerprint is a stable key for the model's structure, used to index
// warm-start values across runs.
func (m *Model) Fingerprint() string {
	h := sha256.New()
	// Canonical re-marshal so map ordering and formatting don't leak in.
	data, err := yaml.Marshal(m)
	if err != nil {
		// Marshal of a validated model cannot fail; fall back to the name.
		data = []byte(m.Name)
	}
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// Built is the session-side realization of a model.
type Built struct {
	Session   *cvx.Session
	Objective *cvx.Variable
	Vars      map[string]*cvx.Variable
	// Constraints holds the explicit constraints, in declaration order.
	Constraints []cvx.Constraint
}

// Build realizes the model inside a fresh session.
func (m *Model) Build() (*Built, error) {
	s := cvx.NewSession()
	b := &Built{Session: s, Vars: make(map[string]*cvx.Variable, len(m.Variables))}

	for _, spec := range m.Variables {
		v, err := buildVariable(s, spec)
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", spec.Name, err)
		}
		b.Vars[spec.Name] = v
		// A declared semidefinite variable only reaches the program through
		// a constraint, so the cone membership is realized explicitly here
		// rather than as an attached constraint on an unreferenced node.
		if spec.Semidefinite && !spec.Hermitian {
			c, err := s.PSD(v)
			if err != nil {
				return nil, fmt.Errorf("variable %q: %w", spec.Name, err)
			}
			b.Constraints = append(b.Constraints, c)
		}
	}

	b.Objective = b.Vars[m.Objective.Variable]

	for _, spec := range m.Constraints {
		target := b.Vars[spec.Variable]
		var c cvx.Constraint
		var err error
		switch spec.Cone {
		case "nonneg":
			c = s.NonNegative(target)
		case "nonpos":
			c = s.NonPositive(target)
		case "zero":
			c = s.EqualZero(target)
		case "psd":
			c, err = s.PSD(target)
		}
		if err != nil {
			return nil, fmt.Errorf("constraint on %q: %w", spec.Variable, err)
		}
		b.Constraints = append(b.Constraints, c)
	}

	for _, f := range m.Fix {
		v := b.Vars[f.Name]
		if err := v.FixTo(f.Value); err != nil {
			return nil, fmt.Errorf("fixing %q: %w", f.Name, err)
		}
	}
	return b, nil
}

// Compile lowers the built model to a cone program.
func (b *Built) Compile() (*solver.ConeProgram, error) {
	return b.Session.Compile(b.Objective, b.Constraints...)
}

func buildVariable(s *cvx.Session, spec VariableSpec) (*cvx.Variable, error) {
	if spec.Hermitian {
		if spec.Rows != spec.Cols {
			return nil, fmt.Errorf("hermitian variable must be square, got %dx%d", spec.Rows, spec.Cols)
		}
		return s.HermitianSemidefinite(spec.Rows)
	}
	if spec.Semidefinite {
		if spec.Rows != spec.Cols {
			return nil, fmt.Errorf("semidefinite variable must be square, got %dx%d", spec.Rows, spec.Cols)
		}
		return s.Variable(spec.Rows, spec.Cols), nil
	}

	var opts []cvx.VarOption
	switch spec.Sign {
	case "positive":
		opts = append(opts, cvx.Positive())
	case "negative":
		opts = append(opts, cvx.Negative())
	case "complex":
		opts = append(opts, cvx.Complex())
	}
	switch spec.Kind {
	case "integer":
		opts = append(opts, cvx.Integer())
	case "binary":
		opts = append(opts, cvx.Binary())
	}
	return s.Variable(spec.Rows, spec.Cols, opts...), nil
}
