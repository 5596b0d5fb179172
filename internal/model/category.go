package model

import "fmt"

// Category is the semantic class of an action.
type Category int

// Ignore is the default for anything no rule claims.
const (
	Ignore Category = iota
	Create
	Remove
	Finish
)

var categoryNames = [...]string{"ignore", "create", "remove", "finish"}

// Categories returns every category in declaration order.
func Categories() []Category {
	return []Category{Ignore, Create, Remove, Finish}
}

// Reported returns the categories that appear as table columns: all but Ignore.
func Reported() []Category {
	return []Category{Create, Remove, Finish}
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryNames[c]
}

// ParseCategory maps a name back to its Category.
func ParseCategory(s string) (Category, error) {
	for i, name := range categoryNames {
		if name == s {
			return Category(i), nil
		}
	}
	return Ignore, fmt.Errorf("unknown category %q", s)
}

// MarshalText renders the category name.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
