package sparse

import (
	"testing"
)

func TestIdentity(t *testing.T) {
	m := Identity(3)
	if m.Rows() != 3 || m.Cols() != 3 {
		t.Fatalf("Identity(3) is %dx%d, want 3x3", m.Rows(), m.Cols())
	}
	d := m.Dense()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			if d[i][j] != want {
				t.Errorf("Identity(3)[%d][%d] = %v, want %v", i, j, d[i][j], want)
			}
		}
	}
}

func TestScaledIdentityZero(t *testing.T) {
	m := ScaledIdentity(4, 0)
	if !m.IsZero() {
		t.Errorf("ScaledIdentity(4, 0) should have no explicit entries, got %d", m.NNZ())
	}
	if m.Rows() != 4 || m.Cols() != 4 {
		t.Errorf("ScaledIdentity(4, 0) is %dx%d, want 4x4", m.Rows(), m.Cols())
	}
}

func TestFromColumn(t *testing.T) {
	m := FromColumn([]float64{1, 0, -2.5})
	if m.Rows() != 3 || m.Cols() != 1 {
		t.Fatalf("FromColumn shape %dx%d, want 3x1", m.Rows(), m.Cols())
	}
	if m.NNZ() != 2 {
		t.Errorf("FromColumn stored %d entries, want 2 (zeros elided)", m.NNZ())
	}
	d := m.Dense()
	if d[0][0] != 1 || d[1][0] != 0 || d[2][0] != -2.5 {
		t.Errorf("FromColumn dense = %v", d)
	}
}

func TestAddAndScale(t *testing.T) {
	a := Identity(2)
	b := ScaledIdentity(2, 2)
	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	d := sum.Dense()
	if d[0][0] != 3 || d[1][1] != 3 {
		t.Errorf("I + 2I diagonal = %v, %v, want 3, 3", d[0][0], d[1][1])
	}

	scaled := sum.Scale(-1)
	d = scaled.Dense()
	if d[0][0] != -3 || d[0][1] != 0 {
		t.Errorf("scaled dense = %v", d)
	}

	if _, err := a.Add(New(3, 3)); err == nil {
		t.Errorf("adding mismatched shapes should fail")
	}
}

func TestVStack(t *testing.T) {
	top := FromColumn([]float64{1, 2})
	bottom := FromColumn([]float64{3})
	m, err := VStack(top, bottom)
	if err != nil {
		t.Fatalf("VStack failed: %v", err)
	}
	if m.Rows() != 3 || m.Cols() != 1 {
		t.Fatalf("VStack shape %dx%d, want 3x1", m.Rows(), m.Cols())
	}
	d := m.Dense()
	if d[0][0] != 1 || d[1][0] != 2 || d[2][0] != 3 {
		t.Errorf("VStack dense = %v", d)
	}

	if _, err := VStack(top, Identity(2)); err == nil {
		t.Errorf("stacking mismatched column counts should fail")
	}
}

func TestMulVec(t *testing.T) {
	m := New(2, 3)
	m.Set(0, 0, 1)
	m.Set(0, 2, 2)
	m.Set(1, 1, -1)
	got, err := m.MulVec([]float64{1, 2, 3})
	if err != nil {
		t.Fatalf("MulVec failed: %v", err)
	}
	if got[0] != 7 || got[1] != -2 {
		t.Errorf("MulVec = %v, want [7 -2]", got)
	}

	if _, err := m.MulVec([]float64{1}); err == nil {
		t.Errorf("length mismatch should fail")
	}
}
