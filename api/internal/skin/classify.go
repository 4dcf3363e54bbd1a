package skin

import "strings"

// Rule maps a keyword to a label. Keywords are matched case-insensitively.
type Rule struct {
	Keyword string
	Type    SkinType
}

// DefaultRules is evaluated top to bottom; the first keyword found wins.
// An answer mentioning both "dry" and "oily" is therefore Oily.
var DefaultRules = []Rule{
	{Keyword: "oily", Type: Oily},
	{Keyword: "dry", Type: Dry},
	{Keyword: "normal", Type: Normal},
}

// Classifier turns free model text into a SkinType.
type Classifier struct {
	Rules []Rule
}

// NewClassifier returns a classifier over a copy of rules with lower-cased,
// trimmed keywords.
func NewClassifier(rules []Rule) Classifier {
	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		out = append(out, Rule{Keyword: strings.ToLower(strings.TrimSpace(r.Keyword)), Type: r.Type})
	}
	return Classifier{Rules: out}
}

// Classify returns the label of the first matching rule, or Uncertain.
func (c Classifier) Classify(text string) SkinType {
	lower := strings.ToLower(text)
	for _, r := range c.Rules {
		kw := strings.ToLower(r.Keyword)
		if kw != "" && strings.Contains(lower, kw) {
			return r.Type
		}
	}
	return Uncertain
}

// Classify applies DefaultRules.
func Classify(text string) SkinType {
	return NewClassifier(DefaultRules).Classify(text)
}
