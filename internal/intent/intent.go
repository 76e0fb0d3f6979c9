// Package intent routes a chat message to an answer path using a fixed,
// ordered list of patterns. The first pattern that matches wins.
package intent

import (
	"regexp"
	"strings"
)

type Kind string

const (
	Remaining     Kind = "remaining"
	Weekend       Kind = "weekend"
	CategorySpend Kind = "category_spend"
	Waste         Kind = "waste"
	Fallback      Kind = "fallback"
)

// FoodCategory is the only category the category pattern recognizes.
const FoodCategory = "food"

// Intent is the classification of one message. Category is set for
// CategorySpend only.
type Intent struct {
	Kind     Kind
	Category string
}

func (i Intent) String() string {
	if i.Category != "" {
		return string(i.Kind) + ":" + i.Category
	}
	return string(i.Kind)
}

type pattern struct {
	re     *regexp.Regexp
	intent Intent
}

// Classifier is stateless and safe for concurrent use.
type Classifier struct {
	patterns []pattern
}

func NewClassifier() *Classifier {
	return &Classifier{patterns: defaultPatterns()}
}

// Order matters: "how much left for food" is a Remaining question.
func defaultPatterns() []pattern {
	return []pattern{
		{regexp.MustCompile(`(?i)(expense left|remaining this month|how much left)`), Intent{Kind: Remaining}},
		{regexp.MustCompile(`(?i)(weekend|this weekend|spend this weekend)`), Intent{Kind: Weekend}},
		{regexp.MustCompile(`(?i)how much.*food|spend.*food|food budget`), Intent{Kind: CategorySpend, Category: FoodCategory}},
		{regexp.MustCompile(`(?i)(waste|wasted|wasting)`), Intent{Kind: Waste}},
	}
}

// Classify returns the intent of message, or Fallback when no pattern
// matches.
func (c *Classifier) Classify(message string) Intent {
	m := strings.ToLower(message)
	for _, p := range c.patterns {
		if p.re.MatchString(m) {
			return p.intent
		}
	}
	return Intent{Kind: Fallback}
}
