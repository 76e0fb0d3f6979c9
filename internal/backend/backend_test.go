package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"finchat/internal/config"
	"finchat/internal/ledger/memory"
	"finchat/internal/storage"
)

func TestFromAppConfig(t *testing.T) {
	app := config.Defaults()
	app.DataBackend = "sqlite"
	app.SQLiteDBPath = "/tmp/x.db"

	cfg, err := FromAppConfig(app)
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.Type != SQLiteBackend || cfg.SQLiteDBPath != "/tmp/x.db" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.BudgetsSheet != "Budgets" || cfg.TransactionsSheet != "Transactions" {
		t.Fatalf("sheet names not carried over: %+v", cfg)
	}

	app.DataBackend = "postgres"
	if _, err := FromAppConfig(app); err == nil {
		t.Fatal("expected error for unknown backend")
	}
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"sqlite ok", Config{Type: SQLiteBackend, SQLiteDBPath: "a.db"}, false},
		{"sqlite no path", Config{Type: SQLiteBackend}, true},
		{"sheets no id", Config{Type: SheetsBackend}, true},
		{"unknown", Config{Type: "mongo"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetBackendTypeStrings(t *testing.T) {
	got := GetBackendTypeStrings()
	if len(got) != 3 || got[0] != "sqlite" || got[1] != "sheets" || got[2] != "memory" {
		t.Fatalf("unexpected types %v", got)
	}
}

func TestCreateMemoryBackend(t *testing.T) {
	dir := t.TempDir()
	fixture := `{"users":{"u1":{"monthlyBudget":1000,"transactions":[{"amount":-10,"date":"2025-03-02T10:00:00Z"}]}}}`
	if err := os.WriteFile(filepath.Join(dir, memory.FixtureFile), []byte(fixture), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := NewFactory(nil, time.UTC).CreateBackend(context.Background(), Config{Type: MemoryBackend, DataDirectory: dir})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	defer res.Close()

	if _, ok := res.Store.(*memory.Store); !ok {
		t.Fatalf("expected memory store, got %T", res.Store)
	}
	if res.Repository != nil {
		t.Fatal("memory backend must not expose a repository")
	}
	p, err := res.Store.ReadProfile(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ReadProfile: %v", err)
	}
	if p.MonthlyBudget.IntPart() != 1000 {
		t.Fatalf("budget: got %s", p.MonthlyBudget)
	}
}

func TestCreateSQLiteBackend(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "finchat.db")

	res, err := NewFactory(nil, time.UTC).CreateBackend(context.Background(), Config{Type: SQLiteBackend, SQLiteDBPath: dbPath})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	if _, ok := res.Store.(*storage.SQLiteRepository); !ok {
		t.Fatalf("expected sqlite repository, got %T", res.Store)
	}
	if res.Repository == nil {
		t.Fatal("expected repository to be exposed")
	}
	if err := res.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestCreateSheetsBackendRequiresCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err := NewFactory(nil, time.UTC).CreateBackend(context.Background(), Config{Type: SheetsBackend, GoogleSpreadsheetID: "abc"})
	if err == nil {
		t.Fatal("expected error without credentials")
	}
}
