package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"finchat/internal/core"
)

// Fixture is the JSON seed format shared by the memory store and the
// `finchat seed` command. Amounts may be JSON numbers or strings.
type Fixture struct {
	Users map[string]FixtureUser `json:"users"`
}

type FixtureUser struct {
	MonthlyBudget   decimal.Decimal            `json:"monthlyBudget"`
	CategoryBudgets map[string]decimal.Decimal `json:"categoryBudgets"`
	Transactions    []FixtureTransaction       `json:"transactions"`
}

type FixtureTransaction struct {
	Amount   decimal.Decimal `json:"amount"`
	Date     time.Time       `json:"date"`
	Category string          `json:"category,omitempty"`
}

// LoadFixture reads and decodes a fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode fixture %s: %w", path, err)
	}
	return &f, nil
}

// Profile converts the fixture entry into a domain profile.
func (u FixtureUser) Profile(userID string) core.UserProfile {
	budgets := make(map[string]decimal.Decimal, len(u.CategoryBudgets))
	for k, v := range u.CategoryBudgets {
		budgets[k] = v
	}
	return core.UserProfile{
		UserID:          userID,
		MonthlyBudget:   u.MonthlyBudget,
		CategoryBudgets: budgets,
	}
}

// Records converts the fixture transactions into domain transactions.
func (u FixtureUser) Records() []core.Transaction {
	out := make([]core.Transaction, len(u.Transactions))
	for i, t := range u.Transactions {
		out[i] = core.Transaction{Amount: t.Amount, Date: t.Date, Category: t.Category}
	}
	return out
}
