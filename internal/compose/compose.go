// Package compose renders fact results into answer text and builds the
// fact sheet sent to the language model.
package compose

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"finchat/internal/core"
	"finchat/internal/facts"
)

// DefaultCurrencySymbol is prefixed to every amount.
const DefaultCurrencySymbol = "₹"

const instructions = "Answer concisely. When providing numeric suggestions verify numbers against the facts above. Use short bullets or 1-2 sentence suggestions."

type Composer struct {
	symbol   string
	amountRe *regexp.Regexp
}

// New returns a Composer using symbol, or DefaultCurrencySymbol when empty.
func New(symbol string) *Composer {
	if symbol == "" {
		symbol = DefaultCurrencySymbol
	}
	return &Composer{
		symbol:   symbol,
		amountRe: regexp.MustCompile(regexp.QuoteMeta(symbol) + `\s?(\d[\d,]*(?:\.\d+)?)`),
	}
}

func (c *Composer) money(d decimal.Decimal) string {
	return c.symbol + core.FormatAmount(d)
}

func (c *Composer) Remaining(r facts.RemainingResult) string {
	return fmt.Sprintf("You have %s left out of %s this month. You've spent %s.",
		c.money(r.Remaining), c.money(r.MonthlyBudget), c.money(r.Spent))
}

func (c *Composer) Weekend(r facts.RemainingResult, w facts.WeekendResult) string {
	return fmt.Sprintf("Based on your remaining %s, you can safely spend about %s this weekend (safety factor %s%%).",
		c.money(r.Remaining), c.money(w.WeekendBudget), w.SafetyFactor.Mul(decimal.NewFromInt(100)).String())
}

func (c *Composer) Category(r facts.CategoryResult) string {
	return fmt.Sprintf("Your %s budget this month is %s. You have spent %s. You can still spend %s on %s.",
		r.Category, c.money(r.CatBudget), c.money(r.Spent), c.money(r.Remaining), r.Category)
}

func (c *Composer) Waste(w facts.WasteResult) string {
	return fmt.Sprintf("Approximately %d%% of your spending may be 'possible waste' (small purchases under %s). Total spent: %s.",
		w.Pct, c.money(w.Threshold), c.money(w.TotalSpent))
}

// Context builds the prompt for the fallback path: the question, the fact
// sheet and the answering instructions.
func (c *Composer) Context(question string, s facts.Snapshot) string {
	var b strings.Builder
	b.WriteString("\nUser question: ")
	b.WriteString(question)
	b.WriteString("\n\nFacts:\n")
	fmt.Fprintf(&b, "- Monthly budget: %s\n", c.money(s.Remaining.MonthlyBudget))
	fmt.Fprintf(&b, "- Spent this month: %s\n", c.money(s.Remaining.Spent))
	fmt.Fprintf(&b, "- Remaining this month: %s\n", c.money(s.Remaining.Remaining))
	fmt.Fprintf(&b, "- Waste percentage estimate: %d%%\n", s.Waste.Pct)
	b.WriteString("\nInstructions:\n")
	b.WriteString(instructions)
	b.WriteString("\n")
	return b.String()
}

// UnverifiedAmounts returns the currency amounts quoted in answer that match
// none of the snapshot figures, in order of appearance.
func (c *Composer) UnverifiedAmounts(answer string, s facts.Snapshot) []string {
	known := []decimal.Decimal{
		s.Remaining.MonthlyBudget,
		s.Remaining.Spent,
		s.Remaining.Remaining,
		s.Waste.TotalSpent,
		s.Waste.PossibleWaste,
		s.Waste.Threshold,
	}

	var out []string
	for _, m := range c.amountRe.FindAllStringSubmatch(answer, -1) {
		d, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ""))
		if err != nil {
			continue
		}
		if !containsAmount(known, d) {
			out = append(out, m[0])
		}
	}
	return out
}

func containsAmount(known []decimal.Decimal, d decimal.Decimal) bool {
	for _, k := range known {
		if k.Equal(d) {
			return true
		}
	}
	return false
}
