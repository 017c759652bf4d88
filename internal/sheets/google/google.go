// Package google exports transaction rows to a Google Sheets spreadsheet.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"carteira/internal/log"
	"carteira/internal/sheets"
)

const lastColumn = "I"

type Config struct {
	SpreadsheetID string
	// SheetName is the tab rows are written to.
	SheetName string
	// CredentialsJSON takes precedence over CredentialsFile.
	CredentialsJSON string
	CredentialsFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheet         string
	logger        *log.Logger
}

var _ sheets.Sink = (*Client)(nil)

// New creates a Sheets client from service account credentials. Extra
// options replace the credentials, which tests use to point the client at
// a local server.
func New(ctx context.Context, cfg Config, logger *log.Logger, opts ...goption.ClientOption) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if cfg.SheetName == "" {
		cfg.SheetName = "Transactions"
	}
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentSheets)

	if len(opts) == 0 {
		creds, err := credentials(ctx, cfg, logger)
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
	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheet:         cfg.SheetName,
		logger:        logger,
	}, nil
}

func credentials(ctx context.Context, cfg Config, logger *log.Logger) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		logger.InfoContext(ctx, "Using inline service account credentials")
		return []byte(cfg.CredentialsJSON), nil
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		logger.InfoContext(ctx, "Reading service account credentials", "path", cfg.CredentialsFile)
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// a1 builds an A1 range on the export sheet. The sheet name is always
// quoted so names with spaces work.
func (c *Client) a1(rng string) string {
	return "'" + strings.ReplaceAll(c.sheet, "'", "''") + "'!" + rng
}

// EnsureHeader writes the header row when the sheet is empty.
func (c *Client) EnsureHeader(ctx context.Context) error {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.a1("A1:"+lastColumn+"1")).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read header of %s: %w", c.sheet, err)
	}
	if len(resp.Values) > 0 && len(resp.Values[0]) > 0 {
		return nil
	}

	header := make([]any, len(sheets.Header))
	for i, h := range sheets.Header {
		header[i] = h
	}
	vr := &gsheet.ValueRange{Values: [][]any{header}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, c.a1("A1:"+lastColumn+"1"), vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write header of %s: %w", c.sheet, err)
	}
	c.logger.InfoContext(ctx, "Wrote export header", "sheet", c.sheet)
	return nil
}

func (c *Client) AppendRows(ctx context.Context, rows []sheets.Row) error {
	if len(rows) == 0 {
		return nil
	}
	values := make([][]any, 0, len(rows))
	for _, r := range rows {
		values = append(values, r.Values())
	}

	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, c.a1("A:"+lastColumn), &gsheet.ValueRange{Values: values}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append %d rows to %s: %w", len(rows), c.sheet, err)
	}
	c.logger.DebugContext(ctx, "Appended rows",
		log.FieldOperation, log.OpAppend,
		log.FieldCount, len(rows))
	return nil
}

// DeleteRows clears the rows whose column A holds one of ids. Rows are
// cleared rather than removed so concurrent appends keep their positions.
func (c *Client) DeleteRows(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.a1("A:A")).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read ids of %s: %w", c.sheet, err)
	}

	var ranges []string
	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if _, ok := want[strings.TrimSpace(fmt.Sprint(row[0]))]; ok {
			n := i + 1
			ranges = append(ranges, c.a1(fmt.Sprintf("A%d:%s%d", n, lastColumn, n)))
		}
	}
	if len(ranges) == 0 {
		return 0, nil
	}

	_, err = c.svc.Spreadsheets.Values.BatchClear(c.spreadsheetID, &gsheet.BatchClearValuesRequest{Ranges: ranges}).
		Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("clear %d rows of %s: %w", len(ranges), c.sheet, err)
	}
	return len(ranges), nil
}
