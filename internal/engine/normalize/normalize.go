// Package normalize maps raw board action documents to model.Action values.
package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/crimson-sun/velocity/internal/model"
)

var (
	// ErrMalformedTimestamp is returned when an action's date does not match
	// YYYY-MM-DDTHH:MM:SS[.ffffff]Z.
	ErrMalformedTimestamp = errors.New("malformed timestamp")

	// ErrMissingField is returned when a mandatory field is absent.
	ErrMissingField = errors.New("missing field")
)

// The board service reports UTC with a literal Z and millisecond precision.
// Whole seconds and fractions up to nanoseconds are also accepted; more than
// nine digits is not representable in time.Time.
var timestampPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d{1,9})?Z$`)

const timestampLayout = "2006-01-02T15:04:05.999999999Z"

// Normalize builds an Action from one raw document. Each field is derived
// independently from raw; no state is shared between calls.
func Normalize(raw model.RawAction) (model.Action, error) {
	date, err := actionDate(raw)
	if err != nil {
		return model.Action{}, err
	}
	kind, err := actionKind(raw)
	if err != nil {
		return model.Action{}, err
	}
	card, err := actionCard(raw)
	if err != nil {
		return model.Action{}, err
	}
	return model.Action{
		Date: date,
		Kind: kind,
		Card: card,
		List: actionList(raw),
		Raw:  raw,
	}, nil
}

// ParseTimestamp parses a board-service UTC timestamp and returns its date.
func ParseTimestamp(s string) (model.Date, error) {
	if !timestampPattern.MatchString(s) {
		return model.Date{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, s)
	}
	t, err := time.ParseInLocation(timestampLayout, s, time.UTC)
	if err != nil {
		return model.Date{}, fmt.Errorf("%w: %q: %v", ErrMalformedTimestamp, s, err)
	}
	return model.DateOf(t), nil
}

func actionDate(raw model.RawAction) (model.Date, error) {
	v, ok := raw["date"]
	if !ok {
		return model.Date{}, fmt.Errorf("%w: date", ErrMissingField)
	}
	s, ok := v.(string)
	if !ok {
		return model.Date{}, fmt.Errorf("%w: %v", ErrMalformedTimestamp, v)
	}
	return ParseTimestamp(s)
}

func actionKind(raw model.RawAction) (string, error) {
	kind, ok := raw["type"].(string)
	if !ok {
		return "", fmt.Errorf("%w: type", ErrMissingField)
	}
	return kind, nil
}

// actionCard prefers the card name. Deletions carry only the id.
func actionCard(raw model.RawAction) (string, error) {
	data, ok := object(raw, "data")
	if !ok {
		return "", fmt.Errorf("%w: data", ErrMissingField)
	}
	card, ok := object(data, "card")
	if !ok {
		return "", fmt.Errorf("%w: data.card", ErrMissingField)
	}
	if name, ok := card["name"].(string); ok {
		return name, nil
	}
	if id, ok := card["id"].(string); ok {
		return id, nil
	}
	return "", fmt.Errorf("%w: data.card.id", ErrMissingField)
}

// actionList looks in data.list (creates, deletes) then data.listAfter
// (moves). Anything else resolves to "".
func actionList(raw model.RawAction) string {
	data, ok := object(raw, "data")
	if !ok {
		return ""
	}
	for _, key := range []string{"list", "listAfter"} {
		if l, ok := object(data, key); ok {
			name, _ := l["name"].(string)
			return name
		}
	}
	return ""
}

// object returns m[key] as a nested document. JSON decoding yields
// map[string]any; fixtures built in Go may use model.RawAction.
func object(m map[string]any, key string) (map[string]any, bool) {
	switch v := m[key].(type) {
	case map[string]any:
		return v, true
	case model.RawAction:
		return v, true
	default:
		return nil, false
	}
}
