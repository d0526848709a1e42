package core

import (
	"fmt"
	"testing"
)

func TestTableErrorsWrapSentinels(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"degenerate", NewDegenerateTableError("a", "b", "no observations"), IsDegenerateTable},
		{"dimensionality", NewInsufficientDimensionalityError("a", "b", 1, 3), IsInsufficientDimensionality},
		{"missing", NewMissingAttributeError("a", 7), IsMissingAttribute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.check(tt.err) {
				t.Fatalf("expected %v to match its sentinel", tt.err)
			}
			if !IsTableError(fmt.Errorf("report: %w", tt.err)) {
				t.Fatalf("expected wrapped %v to be a table error", tt.err)
			}
		})
	}

	if IsTableError(NewValidationError("counts", "negative")) {
		t.Error("validation failures must not be classified as table errors")
	}
}

func TestComputeSnapshotHashSeparatesFields(t *testing.T) {
	a := ComputeSnapshotHash([]string{"x"}, [][]string{{"ab", "c"}})
	b := ComputeSnapshotHash([]string{"x"}, [][]string{{"a", "bc"}})
	if a == b {
		t.Fatal("expected different hashes for differently split fields")
	}
	if a != ComputeSnapshotHash([]string{"x"}, [][]string{{"ab", "c"}}) {
		t.Fatal("expected hash to be deterministic")
	}
	if len(a.Short()) != 12 {
		t.Errorf("expected 12-char short hash, got %q", a.Short())
	}
}
