package testdata

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/crimson-sun/velocity/internal/model"
)

//go:embed actions.json
var actionsJSON []byte

// Lists used when the corpus was labelled.
var (
	FinishedLists = []string{"Done"}
	ExcludedLists = []string{"Reference"}
)

// Rejected labels entries the pass filter must drop.
const Rejected = "rejected"

// ActionEntry is a labelled action document for classification validation.
type ActionEntry struct {
	Raw              model.RawAction `json:"raw"`
	ExpectedCategory string          `json:"expected_category"`
	Description      string          `json:"description"`
}

// LoadActions parses the embedded actions.json and returns all entries.
func LoadActions() ([]ActionEntry, error) {
	var entries []ActionEntry
	if err := json.Unmarshal(actionsJSON, &entries); err != nil {
		return nil, fmt.Errorf("parse actions.json: %w", err)
	}
	return entries, nil
}

// Raws returns just the documents, in corpus order.
func Raws(entries []ActionEntry) []model.RawAction {
	out := make([]model.RawAction, len(entries))
	for i, e := range entries {
		out[i] = e.Raw
	}
	return out
}
