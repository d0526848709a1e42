package testkit

import (
	"testing"
)

func TestGeneratePairDeterministic(t *testing.T) {
	cfg := DefaultPairConfig()
	a, err := GeneratePair(cfg)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	b, err := GeneratePair(cfg)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if a.Fingerprint() != b.Fingerprint() {
		t.Fatal("same seed must produce the same fixture")
	}
	if a.Len() != cfg.Rows {
		t.Fatalf("expected %d rows, got %d", cfg.Rows, a.Len())
	}
}

func TestGeneratePairFullCoupling(t *testing.T) {
	cfg := DefaultPairConfig()
	cfg.Coupling = 1
	ds, err := GeneratePair(cfg)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	want := map[string]string{"A": "X", "B": "Y", "C": "Z"}
	for i, rec := range ds.Records {
		if rec["col"] != want[rec["row"]] {
			t.Fatalf("record %d: %s mapped to %s", i, rec["row"], rec["col"])
		}
	}
}

func TestGeneratePairRejectsBadConfig(t *testing.T) {
	cfg := DefaultPairConfig()
	cfg.Coupling = 1.5
	if _, err := GeneratePair(cfg); err == nil {
		t.Fatal("expected error for coupling > 1")
	}
	cfg = DefaultPairConfig()
	cfg.RowCategories = nil
	if _, err := GeneratePair(cfg); err == nil {
		t.Fatal("expected error without categories")
	}
}

func TestBalanced(t *testing.T) {
	ds := Balanced(map[string]string{"B": "Y", "A": "X"}, 50)
	if ds.Len() != 100 {
		t.Fatalf("expected 100 records, got %d", ds.Len())
	}
	if ds.Records[0]["row"] != "A" || ds.Records[99]["row"] != "B" {
		t.Fatal("expected sorted row order")
	}
}

func TestGenerateShootings(t *testing.T) {
	cfg := DefaultShootingsConfig()
	cfg.Rows = 200
	ds, err := GenerateShootings(cfg)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if ds.Len() != 200 {
		t.Fatalf("expected 200 rows, got %d", ds.Len())
	}
	for i, rec := range ds.Records {
		for _, h := range ShootingsHeaders {
			if _, ok := rec[h]; !ok {
				t.Fatalf("record %d missing %s", i, h)
			}
		}
	}

	cfg.MissingRate = 1
	if _, err := GenerateShootings(cfg); err == nil {
		t.Fatal("expected error for missing rate 1")
	}
}
