package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"finchat/internal/core"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{})
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err := New(context.Background(), Config{SpreadsheetID: "sheet"})
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(ts.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(ts.Client()))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return newWithService(svc, Config{SpreadsheetID: "sheet", Location: time.UTC})
}

func TestClientReadsLedger(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var values [][]interface{}
		switch {
		case strings.Contains(r.URL.Path, "Budgets"):
			values = [][]interface{}{{"u1", "", 1000}, {"u1", "food", 300}}
		case strings.Contains(r.URL.Path, "Transactions"):
			values = [][]interface{}{{"u1", "2025-03-05", -200}, {"u1", "2025-02-05", -50}}
		default:
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"values": values})
	})

	p, err := c.ReadProfile(context.Background(), "u1")
	if err != nil {
		t.Fatalf("read profile: %v", err)
	}
	if !p.MonthlyBudget.Equal(decimal.NewFromInt(1000)) || !p.CategoryBudget("food").Equal(decimal.NewFromInt(300)) {
		t.Fatalf("unexpected profile: %+v", p)
	}

	w := core.MonthWindow(time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), time.UTC)
	txs, err := c.ListTransactions(context.Background(), "u1", w)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(txs) != 1 || !txs[0].Amount.Equal(decimal.NewFromInt(-200)) {
		t.Fatalf("unexpected transactions: %+v", txs)
	}
}

func TestClientPropagatesAPIErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":400,"message":"bad range"}}`, http.StatusBadRequest)
	})
	if _, err := c.ListTransactions(context.Background(), "u1", core.Window{}); err == nil {
		t.Fatal("expected error from failing API")
	}
}

func TestNilServiceFails(t *testing.T) {
	c := &Client{spreadsheetID: "sheet"}
	if _, err := c.ReadProfile(context.Background(), "u1"); err == nil {
		t.Fatal("expected error with nil service")
	}
	if err := c.Ping(context.Background()); err == nil {
		t.Fatal("expected ping error with nil service")
	}
}
