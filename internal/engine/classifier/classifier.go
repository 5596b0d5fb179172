package classifier

import (
	"fmt"

	"github.com/crimson-sun/velocity/internal/engine/rules"
	"github.com/crimson-sun/velocity/internal/model"
)

type compiled struct {
	pred     rules.Predicate
	category model.Category
}

// Classifier assigns a category to each action from an ordered rule list.
type Classifier struct {
	rules []compiled
}

// New compiles rules once. Rule order is preserved and significant.
func New(rs []rules.Rule) (*Classifier, error) {
	c := &Classifier{rules: make([]compiled, 0, len(rs))}
	for i, r := range rs {
		p, err := r.Compile()
		if err != nil {
			return nil, fmt.Errorf("classifier: rule %d: %w", i, err)
		}
		c.rules = append(c.rules, compiled{pred: p, category: r.Category})
	}
	return c, nil
}

// Classify returns the category of the first rule a satisfies, or
// model.Ignore when none does.
func (c *Classifier) Classify(a model.Action) model.Category {
	for _, r := range c.rules {
		if r.pred(a) {
			return r.category
		}
	}
	return model.Ignore
}

// Observe classifies a and wraps the result.
func (c *Classifier) Observe(a model.Action) model.Observation {
	return model.Observation{Date: a.Date, Category: c.Classify(a), Action: a}
}

// Matches returns the category of every rule a satisfies, in rule order.
func (c *Classifier) Matches(a model.Action) []model.Category {
	var out []model.Category
	for _, r := range c.rules {
		if r.pred(a) {
			out = append(out, r.category)
		}
	}
	return out
}

// Ambiguous reports whether rules satisfied by a disagree on its category.
func (c *Classifier) Ambiguous(a model.Action) bool {
	m := c.Matches(a)
	for _, cat := range m[min(1, len(m)):] {
		if cat != m[0] {
			return true
		}
	}
	return false
}
