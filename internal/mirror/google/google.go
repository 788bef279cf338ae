// Package google mirrors the household document to a Google Sheets
// spreadsheet: one tab per field group, rewritten on every sync. The sheet
// is a human-readable backup, never read back by the application.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"spokoj/internal/core"
	"spokoj/internal/mirror"
)

const (
	categoriesSheet   = "Categories"
	configsSheet      = "Months"
	transactionsSheet = "Transactions"
	merchantsSheet    = "Merchants"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
}

var _ mirror.DocumentMirror = (*Client)(nil)

// NewFromEnv creates a mirror client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID.
// Credentials: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	credentialsJSON, err := credentialsFromEnv()
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{svc: svc, spreadsheetID: spreadsheetID}, nil
}

func credentialsFromEnv() ([]byte, error) {
	if inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")); inline != "" {
		return []byte(inline), nil
	}
	file := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if file == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
	credentialsJSON, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return credentialsJSON, nil
}

// WriteSnapshot implements mirror.DocumentMirror. Each tab is cleared and
// rewritten so the sheet always shows exactly one revision.
func (c *Client) WriteSnapshot(ctx context.Context, doc core.Document, revision int64) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	tabs := map[string][][]any{
		categoriesSheet:   categoryRows(doc.Categories, revision),
		configsSheet:      configRows(doc.Configs),
		transactionsSheet: transactionRows(doc.Transactions),
		merchantsSheet:    merchantRows(doc.MerchantMappings),
	}

	for sheet, rows := range tabs {
		if err := c.rewriteSheet(ctx, sheet, rows); err != nil {
			return fmt.Errorf("mirror %s: %w", sheet, err)
		}
	}
	return nil
}

func (c *Client) rewriteSheet(ctx context.Context, sheet string, rows [][]any) error {
	clearRange := fmt.Sprintf("%s!A:Z", sheet)
	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear %s: %w", clearRange, err)
	}

	writeRange := fmt.Sprintf("%s!A1", sheet)
	vr := &gsheet.ValueRange{Values: rows}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, writeRange, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write %s: %w", writeRange, err)
	}
	return nil
}

func categoryRows(categories []core.Category, revision int64) [][]any {
	rows := [][]any{{"id", "name", "limit", "icon", "system", "revision", "mirrored_at"}}
	stamp := time.Now().UTC().Format(time.RFC3339)
	for _, c := range categories {
		rows = append(rows, []any{c.ID, c.Name, c.Limit, c.Icon, c.IsSystem, revision, stamp})
	}
	return rows
}

func configRows(configs map[string]core.MonthConfig) [][]any {
	rows := [][]any{{"month", "total_income"}}
	ids := make([]string, 0, len(configs))
	for id := range configs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		rows = append(rows, []any{id, configs[id].TotalIncome})
	}
	return rows
}

func transactionRows(transactions []core.Transaction) [][]any {
	rows := [][]any{{"id", "date", "amount", "category_id", "note", "created_by", "timestamp"}}
	for _, t := range transactions {
		rows = append(rows, []any{t.ID, t.Date, t.Amount, t.CategoryID, t.Note, string(t.CreatedBy), t.Timestamp})
	}
	return rows
}

func merchantRows(mappings []core.MerchantMapping) [][]any {
	rows := [][]any{{"pattern", "category_id", "merchant_name"}}
	for _, m := range mappings {
		rows = append(rows, []any{m.Pattern, m.CategoryID, m.MerchantName})
	}
	return rows
}
