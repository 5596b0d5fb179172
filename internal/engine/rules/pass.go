package rules

import (
	"fmt"
	"slices"

	"github.com/crimson-sun/velocity/internal/model"
)

// PassRule admits actions. Only the list-based kinds are meaningful here,
// though any Kind compiles.
type PassRule struct {
	Kind       Kind
	ActionKind string
	Lists      []string
}

// Compile binds the rule's configuration and returns its predicate.
func (r PassRule) Compile() (Predicate, error) {
	return build(r.Kind, r.ActionKind, slices.Clone(r.Lists))
}

// DefaultPassRules rejects actions on any of the excluded lists.
func DefaultPassRules(excluded []string) []PassRule {
	return []PassRule{
		{Kind: NotInLists, Lists: excluded},
	}
}

// PassFilter admits an action only when every rule admits it.
type PassFilter struct {
	preds []Predicate
}

// NewPassFilter compiles rules. An empty rule set admits everything.
func NewPassFilter(rules []PassRule) (*PassFilter, error) {
	preds := make([]Predicate, 0, len(rules))
	for i, r := range rules {
		p, err := r.Compile()
		if err != nil {
			return nil, fmt.Errorf("pass rule %d: %w", i, err)
		}
		preds = append(preds, p)
	}
	return &PassFilter{preds: preds}, nil
}

// Pass reports whether a satisfies all rules.
func (f *PassFilter) Pass(a model.Action) bool {
	for _, p := range f.preds {
		if !p(a) {
			return false
		}
	}
	return true
}
