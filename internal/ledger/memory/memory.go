package memory

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/shopspring/decimal"

	"finchat/internal/core"
	"finchat/internal/ledger"
)

// FixtureFile is the seed file looked up inside the data directory.
const FixtureFile = "ledger.json"

var (
	_ ledger.Store  = (*Store)(nil)
	_ ledger.Pinger = (*Store)(nil)
)

type Store struct {
	mu       sync.RWMutex
	profiles map[string]core.UserProfile
	txs      map[string][]core.Transaction
}

func New() *Store {
	return &Store{
		profiles: map[string]core.UserProfile{},
		txs:      map[string][]core.Transaction{},
	}
}

// NewFromFiles seeds the store from base/ledger.json when present. A missing
// file yields an empty store; a malformed one is logged and ignored.
func NewFromFiles(base string) *Store {
	s := New()
	path := filepath.Join(base, FixtureFile)
	f, err := ledger.LoadFixture(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("Ignoring unreadable ledger fixture", "path", path, "error", err)
		}
		return s
	}
	s.Seed(f)
	return s
}

// Seed loads every user of the fixture into the store.
func (s *Store) Seed(f *ledger.Fixture) {
	for id, u := range f.Users {
		s.PutProfile(u.Profile(id))
		for _, tx := range u.Records() {
			s.AddTransaction(id, tx)
		}
	}
}

// PutProfile replaces the profile stored for p.UserID.
func (s *Store) PutProfile(p core.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.UserID] = p
}

// AddTransaction appends a transaction to the user's ledger.
func (s *Store) AddTransaction(userID string, tx core.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs[userID] = append(s.txs[userID], tx)
}

func (s *Store) ReadProfile(_ context.Context, userID string) (core.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return core.UserProfile{UserID: userID}, nil
	}
	budgets := make(map[string]decimal.Decimal, len(p.CategoryBudgets))
	for k, v := range p.CategoryBudgets {
		budgets[k] = v
	}
	p.CategoryBudgets = budgets
	return p, nil
}

func (s *Store) ListTransactions(_ context.Context, userID string, w core.Window) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Transaction
	for _, tx := range s.txs[userID] {
		if w.Contains(tx.Date) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (s *Store) Ping(context.Context) error { return nil }
