package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"cashflow/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// SourcePrefix marks a source string as a Google spreadsheet reference:
// gsheet:<spreadsheet-id>[/<sheet name>].
const SourcePrefix = "gsheet:"

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	layout        sheets.Layout
}

// Ensure interface conformance
var _ sheets.RecordReader = (*Client)(nil)

// Options configures a Sheets client. SpreadsheetID and SheetName are the
// defaults used when a source does not name them.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
	Layout          sheets.Layout
	// ClientOptions are appended after the credential options.
	ClientOptions []goption.ClientOption
}

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, opts Options) (*Client, error) {
	var clientOpts []goption.ClientOption
	if len(opts.ClientOptions) == 0 {
		creds, err := loadCredentials(ctx, opts.CredentialsJSON, opts.CredentialsFile)
		if err != nil {
			return nil, err
		}
		clientOpts = append(clientOpts,
			goption.WithCredentialsJSON(creds),
			goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	}
	clientOpts = append(clientOpts, opts.ClientOptions...)

	svc, err := gsheet.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return NewWithService(svc, opts.SpreadsheetID, opts.SheetName, opts.Layout), nil
}

// NewWithService wraps an existing Sheets service.
func NewWithService(svc *gsheet.Service, spreadsheetID, sheetName string, layout sheets.Layout) *Client {
	if strings.TrimSpace(sheetName) == "" {
		sheetName = "Transactions"
	}
	return &Client{
		svc:           svc,
		spreadsheetID: strings.TrimSpace(spreadsheetID),
		sheetName:     strings.TrimSpace(sheetName),
		layout:        layout,
	}
}

// loadCredentials resolves service account credentials from inline JSON or a
// key file.
func loadCredentials(ctx context.Context, inline, file string) ([]byte, error) {
	inline = strings.TrimSpace(inline)
	file = strings.TrimSpace(file)
	switch {
	case inline != "":
		slog.DebugContext(ctx, "Using inline JSON credentials", "json_length", len(inline))
		return []byte(inline), nil
	case file != "":
		slog.DebugContext(ctx, "Reading credentials from file", "path", file)
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// ParseSource splits "gsheet:<id>[/<sheet>]" into its parts. The sheet name
// may itself contain slashes.
func ParseSource(source string) (spreadsheetID, sheetName string, ok bool) {
	rest, found := strings.CutPrefix(strings.TrimSpace(source), SourcePrefix)
	if !found {
		return "", "", false
	}
	spreadsheetID, sheetName, _ = strings.Cut(rest, "/")
	return strings.TrimSpace(spreadsheetID), strings.TrimSpace(sheetName), true
}

// ReadRecords reads the credit and debit columns of the referenced sheet.
// An empty source reads the client's default spreadsheet and sheet.
func (c *Client) ReadRecords(ctx context.Context, source string) (sheets.Records, error) {
	if c.svc == nil {
		return sheets.Records{}, errors.New("sheets service not initialized")
	}
	id, sheet := c.spreadsheetID, c.sheetName
	if strings.TrimSpace(source) != "" {
		sid, sname, ok := ParseSource(source)
		if !ok {
			return sheets.Records{}, fmt.Errorf("%w: %q", sheets.ErrUnsupportedSource, source)
		}
		if sid != "" {
			id = sid
		}
		if sname != "" {
			sheet = sname
		}
	}
	if id == "" {
		return sheets.Records{}, errors.New("missing spreadsheet id")
	}

	rng := fmt.Sprintf("%s!A1:%s", quoteSheet(sheet), c.layout.LastColumn())
	resp, err := c.svc.Spreadsheets.Values.Get(id, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).Do()
	if err != nil {
		return sheets.Records{}, fmt.Errorf("read range %s: %w", rng, err)
	}

	rows := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		rows[i] = sheets.ToStrings(row)
	}
	recs, err := sheets.ParseGrid(rows, c.layout)
	if err != nil {
		return sheets.Records{}, fmt.Errorf("sheet %q: %w", sheet, err)
	}
	return recs, nil
}

// quoteSheet wraps sheet names containing spaces or punctuation in single
// quotes as A1 notation requires.
func quoteSheet(name string) string {
	if strings.IndexFunc(name, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_')
	}) < 0 {
		return name
	}
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
