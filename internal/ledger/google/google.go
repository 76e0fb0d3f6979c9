package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"finchat/internal/core"
	"finchat/internal/ledger"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Config describes where the ledger lives inside a spreadsheet and how to
// authenticate against it.
type Config struct {
	SpreadsheetID     string
	BudgetsSheet      string // default "Budgets"
	TransactionsSheet string // default "Transactions"

	// Service-account credential blob, inline or as a file path.
	CredentialsJSON string
	CredentialsFile string

	// Location used for dates written without a zone.
	Location *time.Location
}

type Client struct {
	svc               *gsheet.Service
	spreadsheetID     string
	budgetsSheet      string
	transactionsSheet string
	loc               *time.Location
}

// Ensure interface conformance
var (
	_ ledger.Store  = (*Client)(nil)
	_ ledger.Pinger = (*Client)(nil)
)

// New creates a read-only Sheets ledger client using service-account
// credentials. GOOGLE_APPLICATION_CREDENTIALS is honoured when neither
// credential field is set.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx, cfg.CredentialsJSON, cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return newWithService(svc, cfg), nil
}

func newWithService(svc *gsheet.Service, cfg Config) *Client {
	budgets := strings.TrimSpace(cfg.BudgetsSheet)
	if budgets == "" {
		budgets = "Budgets"
	}
	txs := strings.TrimSpace(cfg.TransactionsSheet)
	if txs == "" {
		txs = "Transactions"
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	return &Client{
		svc:               svc,
		spreadsheetID:     cfg.SpreadsheetID,
		budgetsSheet:      budgets,
		transactionsSheet: txs,
		loc:               loc,
	}
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context, credentialsJSON, credentialsFile string) (*gsheet.Service, error) {
	credentialsJSON = strings.TrimSpace(credentialsJSON)
	credentialsFile = strings.TrimSpace(credentialsFile)

	// Also check the standard Google Cloud environment variable
	if credentialsJSON == "" && credentialsFile == "" {
		credentialsFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var blob []byte
	switch {
	case credentialsJSON != "":
		slog.InfoContext(ctx, "Using inline service account credentials", "size", len(credentialsJSON))
		blob = []byte(credentialsJSON)
	case credentialsFile != "":
		slog.InfoContext(ctx, "Reading service account credentials from file", "path", credentialsFile)
		data, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		blob = data
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(blob),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// ReadProfile implements ledger.ProfileReader.
func (c *Client) ReadProfile(ctx context.Context, userID string) (core.UserProfile, error) {
	values, err := c.readRange(ctx, c.budgetsSheet+"!A:C")
	if err != nil {
		return core.UserProfile{}, err
	}
	p, skipped := parseBudgets(values, userID)
	if skipped > 0 {
		slog.WarnContext(ctx, "Skipped malformed budget rows", "sheet", c.budgetsSheet, "count", skipped)
	}
	return p, nil
}

// ListTransactions implements ledger.TransactionLister.
func (c *Client) ListTransactions(ctx context.Context, userID string, w core.Window) ([]core.Transaction, error) {
	values, err := c.readRange(ctx, c.transactionsSheet+"!A:D")
	if err != nil {
		return nil, err
	}
	txs, skipped := parseTransactions(values, userID, w, c.loc)
	if skipped > 0 {
		slog.WarnContext(ctx, "Skipped malformed transaction rows", "sheet", c.transactionsSheet, "count", skipped)
	}
	return txs, nil
}

// Ping checks that the spreadsheet metadata is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	_, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("spreadsheetId").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet: %w", err)
	}
	return nil
}

func (c *Client) readRange(ctx context.Context, rng string) ([][]interface{}, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("SERIAL_NUMBER").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", rng, err)
	}
	return resp.Values, nil
}
