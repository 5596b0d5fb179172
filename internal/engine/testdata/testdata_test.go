package testdata

import (
	"testing"

	"github.com/crimson-sun/velocity/internal/model"
)

func TestLoadActions(t *testing.T) {
	entries, err := LoadActions()
	if err != nil {
		t.Fatalf("LoadActions() error: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("corpus is empty")
	}
	t.Logf("Total entries: %d", len(entries))

	seen := make(map[string]bool)
	for i, e := range entries {
		if e.Description == "" {
			t.Errorf("entry[%d] has empty description", i)
		}
		if e.Raw.ID() == "" {
			t.Errorf("entry[%d] has empty id", i)
		}
		if seen[e.Raw.ID()] {
			t.Errorf("entry[%d] repeats id %q", i, e.Raw.ID())
		}
		seen[e.Raw.ID()] = true
		if e.ExpectedCategory == Rejected {
			continue
		}
		if _, err := model.ParseCategory(e.ExpectedCategory); err != nil {
			t.Errorf("entry[%d]: %v", i, err)
		}
	}
}

func TestCorpusCoverage(t *testing.T) {
	entries, err := LoadActions()
	if err != nil {
		t.Fatalf("LoadActions() error: %v", err)
	}

	labels := map[string]int{}
	for _, e := range entries {
		labels[e.ExpectedCategory]++
	}
	for _, c := range model.Categories() {
		if labels[c.String()] == 0 {
			t.Errorf("no entry labelled %q", c)
		}
	}
	if labels[Rejected] == 0 {
		t.Errorf("no entry labelled %q", Rejected)
	}
}
