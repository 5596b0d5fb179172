package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/velocity/internal/model"
)

func action(kind, list string) model.Action {
	return model.Action{Kind: kind, Card: "card", List: list}
}

func TestParseActionKind(t *testing.T) {
	assert.Equal(t, "updateCard", ParseActionKind("updateCard:closed"))
	assert.Equal(t, "updateCard", ParseActionKind("updateCard"))
	assert.Equal(t, "", ParseActionKind(""))
	assert.Equal(t, "a", ParseActionKind("a:b:c"))
}

func TestBuilders(t *testing.T) {
	lists := []string{"Done", "Shipped"}
	tests := []struct {
		name string
		pred Predicate
		in   model.Action
		want bool
	}{
		{"action kind equal", MatchActionKind("copyCard"), action("copyCard", "x"), true},
		{"action kind differs", MatchActionKind("copyCard"), action("createCard", "x"), false},
		{"action kind ignores record qualifier", MatchActionKind("updateCard"), action("updateCard:closed", "x"), true},
		{"in lists", MatchInLists(lists), action("any", "Done"), true},
		{"not in lists", MatchInLists(lists), action("any", "Doing"), false},
		{"exclusion", MatchNotInLists(lists), action("any", "Doing"), true},
		{"exclusion rejects", MatchNotInLists(lists), action("any", "Shipped"), false},
		{"kind+in, qualifier ignored", MatchActionKindInLists("updateCard:closed", lists), action("updateCard", "Done"), true},
		{"kind+in, wrong list", MatchActionKindInLists("updateCard:closed", lists), action("updateCard", "Doing"), false},
		{"kind+in, wrong kind", MatchActionKindInLists("updateCard:closed", lists), action("createCard", "Done"), false},
		{"kind+not-in", MatchActionKindNotInLists("updateCard:idList", lists), action("updateCard", "Doing"), true},
		{"kind+not-in, finished list", MatchActionKindNotInLists("updateCard:idList", lists), action("updateCard", "Done"), false},
		{"empty list set never contains", MatchInLists(nil), action("any", ""), false},
		{"empty exclusion admits", MatchNotInLists(nil), action("any", ""), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pred(tt.in))
		})
	}
}

func TestCompile_ConfigurationIsBoundOnce(t *testing.T) {
	lists := []string{"Done"}
	r := Rule{Kind: ActionKindInLists, ActionKind: "updateCard:closed", Lists: lists, Category: model.Finish}
	pred, err := r.Compile()
	require.NoError(t, err)

	lists[0] = "Doing"
	assert.True(t, pred(action("updateCard", "Done")), "predicate must not observe later mutation")
	assert.False(t, pred(action("updateCard", "Doing")))
}

func TestCompile_UnknownKind(t *testing.T) {
	_, err := Rule{Kind: Kind(99)}.Compile()
	assert.Error(t, err)
}

func TestDefaultRules_Table(t *testing.T) {
	got := DefaultRules([]string{"Done"})
	want := []struct {
		kind     Kind
		action   string
		category model.Category
	}{
		{ActionKind, "copyCard", model.Create},
		{ActionKind, "createCard", model.Create},
		{ActionKind, "moveCardToBoard", model.Create},
		{ActionKind, "convertToCardFromCheckItem", model.Create},
		{ActionKind, "deleteCard", model.Remove},
		{ActionKind, "moveCardFromBoard", model.Remove},
		{ActionKindInLists, "updateCard:closed", model.Finish},
		{ActionKindInLists, "updateCard:idList", model.Finish},
		{ActionKindNotInLists, "updateCard:idList", model.Ignore},
	}
	require.Len(t, got, len(want))
	for i, w := range want {
		assert.Equal(t, w.kind, got[i].Kind, "rule %d", i)
		assert.Equal(t, w.action, got[i].ActionKind, "rule %d", i)
		assert.Equal(t, w.category, got[i].Category, "rule %d", i)
	}
}

func TestQueryKinds(t *testing.T) {
	assert.Equal(t, []string{
		"copyCard",
		"createCard",
		"moveCardToBoard",
		"convertToCardFromCheckItem",
		"deleteCard",
		"moveCardFromBoard",
		"updateCard:closed",
		"updateCard:idList",
	}, QueryKinds(DefaultRules(nil)))
}

func TestRuleString(t *testing.T) {
	assert.Equal(t, "copyCard -> create", Rule{Kind: ActionKind, ActionKind: "copyCard", Category: model.Create}.String())
	assert.Equal(t, "updateCard:closed action-in-lists[Done] -> finish",
		Rule{Kind: ActionKindInLists, ActionKind: "updateCard:closed", Lists: []string{"Done"}, Category: model.Finish}.String())
}

func TestPassFilter(t *testing.T) {
	f, err := NewPassFilter(DefaultPassRules([]string{"Reference Material"}))
	require.NoError(t, err)

	assert.False(t, f.Pass(action("createCard", "Reference Material")))
	assert.True(t, f.Pass(action("createCard", "Another List")))
	assert.True(t, f.Pass(action("deleteCard", "")))
}

func TestPassFilter_IndependentOfOtherFields(t *testing.T) {
	f, err := NewPassFilter(DefaultPassRules([]string{"Excluded"}))
	require.NoError(t, err)

	for _, kind := range []string{"createCard", "deleteCard", "updateCard", "whatever"} {
		a := model.Action{Kind: kind, Card: kind, List: "Excluded"}
		assert.False(t, f.Pass(a), kind)
		a.List = "Kept"
		assert.True(t, f.Pass(a), kind)
	}
}

func TestPassFilter_Conjunction(t *testing.T) {
	f, err := NewPassFilter([]PassRule{
		{Kind: NotInLists, Lists: []string{"Archive"}},
		{Kind: NotInLists, Lists: []string{"Ideas"}},
	})
	require.NoError(t, err)

	assert.False(t, f.Pass(action("createCard", "Archive")))
	assert.False(t, f.Pass(action("createCard", "Ideas")))
	assert.True(t, f.Pass(action("createCard", "Doing")))
}

func TestPassFilter_Empty(t *testing.T) {
	f, err := NewPassFilter(nil)
	require.NoError(t, err)
	assert.True(t, f.Pass(action("createCard", "anything")))
}
