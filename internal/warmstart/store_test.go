package warmstart

import (
	"path/filepath"
	"testing"

	"github.com/cvxgo/cvxgo/pkg/cvx"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "warm.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestSaveLoadRoundTrip(t *testing.T) {
	st := openStore(t)

	s := cvx.NewSession()
	x := s.Variable(2, 1)
	y := s.Scalar()
	if err := x.SetValue([]float64{1.5, -2.0}); err != nil {
		t.Fatalf("SetValue x: %v", err)
	}
	if err := y.SetValue(3.0); err != nil {
		t.Fatalf("SetValue y: %v", err)
	}
	if err := st.Save("abc123", map[string]*cvx.Variable{"x": x, "y": y}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	fresh := cvx.NewSession()
	fx := fresh.Variable(2, 1)
	fy := fresh.Scalar()
	n, err := st.Load("abc123", map[string]*cvx.Variable{"x": fx, "y": fy})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if n != 2 {
		t.Fatalf("seeded %d variables, want 2", n)
	}
	val, ok := fx.Value()
	if !ok {
		t.Fatal("x not seeded")
	}
	got := val.ColumnMajor()
	if real(got[0]) != 1.5 || real(got[1]) != -2.0 {
		t.Errorf("x seeded as %v", got)
	}
	val, ok = fy.Value()
	if !ok {
		t.Fatal("y not seeded")
	}
	if real(val.ColumnMajor()[0]) != 3.0 {
		t.Errorf("y seeded as %v", val.ColumnMajor())
	}
}

func TestSaveSkipsUnsetVariables(t *testing.T) {
	st := openStore(t)

	s := cvx.NewSession()
	x := s.Scalar()
	if err := st.Save("fp", map[string]*cvx.Variable{"x": x}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	n, err := st.Load("fp", map[string]*cvx.Variable{"x": s.Scalar()})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if n != 0 {
		t.Fatalf("seeded %d, want 0", n)
	}
}

func TestLoadSkipsShapeMismatch(t *testing.T) {
	st := openStore(t)

	s := cvx.NewSession()
	x := s.Variable(3, 1)
	if err := x.SetValue([]float64{1, 2, 3}); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if err := st.Save("fp", map[string]*cvx.Variable{"x": x}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Redeclared with a different shape: the snapshot must not be applied.
	narrow := s.Variable(2, 1)
	n, err := st.Load("fp", map[string]*cvx.Variable{"x": narrow})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if n != 0 {
		t.Fatalf("seeded %d, want 0", n)
	}
	if _, ok := narrow.Value(); ok {
		t.Error("mismatched snapshot was applied")
	}
}

func TestSaveReplacesSnapshot(t *testing.T) {
	st := openStore(t)

	s := cvx.NewSession()
	x := s.Scalar()
	if err := x.SetValue(1.0); err != nil {
		t.Fatal(err)
	}
	if err := st.Save("fp", map[string]*cvx.Variable{"x": x}); err != nil {
		t.Fatal(err)
	}
	if err := x.SetValue(9.0); err != nil {
		t.Fatal(err)
	}
	if err := st.Save("fp", map[string]*cvx.Variable{"x": x}); err != nil {
		t.Fatal(err)
	}

	fx := s.Scalar()
	if _, err := st.Load("fp", map[string]*cvx.Variable{"x": fx}); err != nil {
		t.Fatal(err)
	}
	val, ok := fx.Value()
	if !ok {
		t.Fatal("x not seeded")
	}
	if real(val.ColumnMajor()[0]) != 9.0 {
		t.Errorf("got %v, want the latest snapshot", val.ColumnMajor())
	}
}

func TestComplexValuesRoundTrip(t *testing.T) {
	st := openStore(t)

	s := cvx.NewSession()
	z := s.Variable(2, 1, cvx.Complex())
	if err := z.SetValue([]complex128{1 + 2i, -3i}); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if err := st.Save("fp", map[string]*cvx.Variable{"z": z}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	fz := s.Variable(2, 1, cvx.Complex())
	n, err := st.Load("fp", map[string]*cvx.Variable{"z": fz})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if n != 1 {
		t.Fatalf("seeded %d, want 1", n)
	}
	val, _ := fz.Value()
	got := val.ColumnMajor()
	if got[0] != 1+2i || got[1] != -3i {
		t.Errorf("z seeded as %v", got)
	}
}
