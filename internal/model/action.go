package model

// RawAction is one action document as delivered by a connector. The shape is
// the board service's: a "type", a "date" timestamp, and a nested "data"
// object carrying "card", "list" and "listAfter" sub-documents.
type RawAction map[string]any

// ID returns the document's "id" field, or "" when absent.
func (r RawAction) ID() string {
	id, _ := r["id"].(string)
	return id
}

// Action is the normalized form of a RawAction. All fields are derived from
// Raw alone; Raw is kept for diagnostics only.
type Action struct {
	Date Date
	Kind string // action type as reported, e.g. "createCard"
	Card string // card name, or card id when the name is missing
	List string // list the action is associated with, "" when unknown
	Raw  RawAction
}

// Observation is a classified action.
type Observation struct {
	Date     Date
	Category Category
	Action   Action
}
