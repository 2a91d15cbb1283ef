package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"presupuesto/internal/analytics"
	"presupuesto/internal/core"
	ports "presupuesto/internal/sheets"
)

const dateLayout = "2006-01-02 15:04"

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	// Base names without year; the year of the row is prefixed.
	expensesBase string
	summaryBase  string
	loc          *time.Location
	logger       *slog.Logger
}

var _ ports.LedgerWriter = (*Client)(nil)

// Config configures the ledger client. Options replace the service account
// credentials when set.
type Config struct {
	SpreadsheetID      string
	ExpensesSheet      string
	SummarySheet       string
	ServiceAccountJSON string
	ServiceAccountFile string
	Location           *time.Location
	Options            []goption.ClientOption
	Logger             *slog.Logger
}

func New(ctx context.Context, cfg Config) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "sheets")

	opts := cfg.Options
	if len(opts) == 0 {
		creds, err := serviceAccountCredentials(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		opts = []goption.ClientOption{
			goption.WithCredentialsJSON(creds),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		}
	}
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	c := &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		expensesBase:  defaultString(cfg.ExpensesSheet, "Gastos"),
		summaryBase:   defaultString(cfg.SummarySheet, "Resumen"),
		loc:           loc,
		logger:        logger,
	}
	logger.InfoContext(ctx, "Google Sheets ledger ready", "spreadsheet_id", spreadsheetID)
	return c, nil
}

// serviceAccountCredentials reads inline JSON, the configured file or
// GOOGLE_APPLICATION_CREDENTIALS, in that order.
func serviceAccountCredentials(ctx context.Context, cfg Config, logger *slog.Logger) ([]byte, error) {
	inline := strings.TrimSpace(cfg.ServiceAccountJSON)
	file := strings.TrimSpace(cfg.ServiceAccountFile)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case inline != "":
		logger.InfoContext(ctx, "Using inline service account credentials")
		return []byte(inline), nil
	case file != "":
		logger.InfoContext(ctx, "Reading service account credentials", "path", file)
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// AppendExpense appends one row to "<year> <expenses sheet>".
func (c *Client) AppendExpense(ctx context.Context, e core.Expense, categoryName string) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	sheet := yearPrefixedName(c.expensesBase, e.Date.In(c.loc).Year())
	ref, err := c.append(ctx, sheet+"!A:F", [][]interface{}{expenseRow(e, categoryName, c.loc)})
	if err != nil {
		return "", err
	}
	c.logger.InfoContext(ctx, "Expense appended to ledger", "expense_id", e.ID, "ledger_ref", ref)
	return ref, nil
}

// AppendMonthSummary appends one row per category and a total row to
// "<year> <summary sheet>".
func (c *Client) AppendMonthSummary(ctx context.Context, s core.MonthSummary) (string, error) {
	sheet := yearPrefixedName(c.summaryBase, s.Year)
	ref, err := c.append(ctx, sheet+"!A:E", summaryRows(s))
	if err != nil {
		return "", err
	}
	c.logger.InfoContext(ctx, "Month summary appended to ledger",
		"year", s.Year, "month", s.Month, "ledger_ref", ref)
	return ref, nil
}

func (c *Client) append(ctx context.Context, rng string, rows [][]interface{}) (string, error) {
	vr := &gsheet.ValueRange{Values: rows}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to %s: %w", rng, err)
	}
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		return resp.Updates.UpdatedRange, nil
	}
	return rng, nil
}

// expenseRow is: date, description, category, amount, member, id.
func expenseRow(e core.Expense, categoryName string, loc *time.Location) []interface{} {
	return []interface{}{
		e.Date.In(loc).Format(dateLayout),
		e.Description,
		categoryName,
		int64(e.Amount),
		e.UserName,
		e.ID,
	}
}

// summaryRows is: month, category, budget, spent, available.
func summaryRows(s core.MonthSummary) [][]interface{} {
	month := fmt.Sprintf("%04d-%02d", s.Year, s.Month)
	rows := make([][]interface{}, 0, len(s.ByCategory)+1)
	for _, c := range s.ByCategory {
		rows = append(rows, []interface{}{month, c.Name, int64(c.Budget), int64(c.Spent), int64(analytics.Available(c.Budget, c.Spent))})
	}
	rows = append(rows, []interface{}{month, "TOTAL", int64(s.TotalBudget), int64(s.TotalSpent), int64(analytics.Available(s.TotalBudget, s.TotalSpent))})
	return rows
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}

func defaultString(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}
