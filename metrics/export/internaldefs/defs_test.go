package internaldefs

import (
	"strings"
	"testing"
)

func TestCounterNamesUniqueAndPrefixed(t *testing.T) {
	seen := map[string]bool{}
	for _, def := range CounterDefs {
		if !strings.HasPrefix(def.Name, "verifact_") || !strings.HasSuffix(def.Name, "_total") {
			t.Fatalf("bad counter name %q", def.Name)
		}
		if seen[def.Name] {
			t.Fatalf("duplicate counter name %q", def.Name)
		}
		seen[def.Name] = true
	}
}

func TestBucketTablesAligned(t *testing.T) {
	if len(HistogramBoundSuffix) != 8 || len(HistogramUpperBounds) != 7 {
		t.Fatal("bucket tables out of sync")
	}
}

func TestCumulativeBuckets(t *testing.T) {
	got := CumulativeBuckets(NormalizeBuckets([]uint64{1, 2, 3}))
	want := [8]uint64{1, 3, 6, 6, 6, 6, 6, 6}
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}
