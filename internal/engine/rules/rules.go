// Package rules holds the declarative match rules used to filter and
// classify actions.
//
// A rule is data: a Kind naming the predicate builder, the builder's
// configuration, and (for classification) the resulting category. Builders
// are curried. The first application binds configuration and returns a
// Predicate; the second binds the action. Compile performs the first
// application once so that evaluation never revisits configuration.
package rules

import (
	"fmt"
	"slices"
	"strings"

	"github.com/crimson-sun/velocity/internal/model"
)

// Predicate decides whether an action matches.
type Predicate func(model.Action) bool

// Kind names a predicate builder.
type Kind int

const (
	ActionKind Kind = iota
	InLists
	NotInLists
	ActionKindInLists
	ActionKindNotInLists
)

var kindNames = [...]string{"action", "in-lists", "not-in-lists", "action-in-lists", "action-not-in-lists"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseActionKind strips a qualifier: "updateCard:closed" -> "updateCard".
func ParseActionKind(kind string) string {
	base, _, _ := strings.Cut(kind, ":")
	return base
}

// MatchActionKind matches actions whose unqualified kind equals kind.
func MatchActionKind(kind string) Predicate {
	return func(a model.Action) bool {
		return ParseActionKind(a.Kind) == kind
	}
}

// MatchInLists matches actions on one of lists.
func MatchInLists(lists []string) Predicate {
	set := listSet(lists)
	return func(a model.Action) bool {
		_, ok := set[a.List]
		return ok
	}
}

// MatchNotInLists matches actions on none of lists.
func MatchNotInLists(lists []string) Predicate {
	in := MatchInLists(lists)
	return func(a model.Action) bool {
		return !in(a)
	}
}

// MatchActionKindInLists matches on the unqualified kind and list
// membership. A qualifier on kind ("updateCard:idList") is ignored.
func MatchActionKindInLists(kind string, lists []string) Predicate {
	base := ParseActionKind(kind)
	in := MatchInLists(lists)
	return func(a model.Action) bool {
		return ParseActionKind(a.Kind) == base && in(a)
	}
}

// MatchActionKindNotInLists is MatchActionKindInLists with list exclusion.
func MatchActionKindNotInLists(kind string, lists []string) Predicate {
	base := ParseActionKind(kind)
	in := MatchInLists(lists)
	return func(a model.Action) bool {
		return ParseActionKind(a.Kind) == base && !in(a)
	}
}

// listSet copies lists so later mutation by the caller has no effect.
func listSet(lists []string) map[string]struct{} {
	set := make(map[string]struct{}, len(lists))
	for _, l := range lists {
		set[l] = struct{}{}
	}
	return set
}

// build applies the builder named by kind to its configuration.
func build(kind Kind, actionKind string, lists []string) (Predicate, error) {
	switch kind {
	case ActionKind:
		return MatchActionKind(actionKind), nil
	case InLists:
		return MatchInLists(lists), nil
	case NotInLists:
		return MatchNotInLists(lists), nil
	case ActionKindInLists:
		return MatchActionKindInLists(actionKind, lists), nil
	case ActionKindNotInLists:
		return MatchActionKindNotInLists(actionKind, lists), nil
	default:
		return nil, fmt.Errorf("rules: unknown rule kind %v", kind)
	}
}

// Rule maps matching actions to Category.
type Rule struct {
	Kind       Kind
	ActionKind string   // may carry a qualifier, e.g. "updateCard:closed"
	Lists      []string // list names for the list-based kinds
	Category   model.Category
}

// Compile binds the rule's configuration and returns its predicate.
func (r Rule) Compile() (Predicate, error) {
	return build(r.Kind, r.ActionKind, slices.Clone(r.Lists))
}

func (r Rule) String() string {
	switch r.Kind {
	case ActionKind:
		return fmt.Sprintf("%s -> %s", r.ActionKind, r.Category)
	case InLists, NotInLists:
		return fmt.Sprintf("%s%v -> %s", r.Kind, r.Lists, r.Category)
	default:
		return fmt.Sprintf("%s %s%v -> %s", r.ActionKind, r.Kind, r.Lists, r.Category)
	}
}

// DefaultRules returns the standard classification table. Order matters:
// the first matching rule decides.
func DefaultRules(finished []string) []Rule {
	return []Rule{
		{Kind: ActionKind, ActionKind: "copyCard", Category: model.Create},
		{Kind: ActionKind, ActionKind: "createCard", Category: model.Create},
		{Kind: ActionKind, ActionKind: "moveCardToBoard", Category: model.Create},
		{Kind: ActionKind, ActionKind: "convertToCardFromCheckItem", Category: model.Create},

		{Kind: ActionKind, ActionKind: "deleteCard", Category: model.Remove},
		{Kind: ActionKind, ActionKind: "moveCardFromBoard", Category: model.Remove},

		{Kind: ActionKindInLists, ActionKind: "updateCard:closed", Lists: finished, Category: model.Finish},
		{Kind: ActionKindInLists, ActionKind: "updateCard:idList", Lists: finished, Category: model.Finish},

		{Kind: ActionKindNotInLists, ActionKind: "updateCard:idList", Lists: finished, Category: model.Ignore},
	}
}

// QueryKinds returns the distinct action-kind literals named by rules, in
// rule order and with qualifiers kept. The board service accepts these as
// an action filter.
func QueryKinds(rules []Rule) []string {
	var kinds []string
	for _, r := range rules {
		if r.ActionKind == "" || slices.Contains(kinds, r.ActionKind) {
			continue
		}
		kinds = append(kinds, r.ActionKind)
	}
	return kinds
}
