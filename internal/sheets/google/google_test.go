package google

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"cashflow/internal/core"
	"cashflow/internal/sheets"

	goption "google.golang.org/api/option"
)

type fakeSheets struct {
	mu     sync.Mutex
	paths  []string
	render string
	values [][]interface{}
	status int
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.paths = append(f.paths, r.URL.Path)
	f.render = r.URL.Query().Get("valueRenderOption")
	f.mu.Unlock()
	if f.status != 0 {
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(`{"error":{"code":404,"message":"not found"}}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"majorDimension": "ROWS",
		"values":         f.values,
	})
}

func newTestClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	c, err := New(context.Background(), Options{
		SpreadsheetID: "default-id",
		Layout:        sheets.DefaultLayout(),
		ClientOptions: []goption.ClientOption{
			goption.WithEndpoint(srv.URL + "/"),
			goption.WithoutAuthentication(),
		},
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestReadRecords(t *testing.T) {
	fake := &fakeSheets{values: [][]interface{}{
		{"June"},
		{"Item", "Date", "Amount", "Item", "Date", "Amount"},
		{"Paycheck", 1, 1000, "Rent", 5, 800.25},
		{"", "", "", "Phone", 12, 45},
	}}
	c := newTestClient(t, fake)

	recs, err := c.ReadRecords(context.Background(), "gsheet:abc/June 2025")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(recs.Credits) != 1 || len(recs.Debits) != 2 {
		t.Fatalf("got %d credits, %d debits", len(recs.Credits), len(recs.Debits))
	}
	if recs.Debits[0].Amount.String() != "800.25" || *recs.Debits[0].Day != 5 {
		t.Fatalf("unexpected rent: %+v", recs.Debits[0])
	}
	if fake.render != "UNFORMATTED_VALUE" {
		t.Fatalf("render option = %q", fake.render)
	}
	if len(fake.paths) != 1 || !strings.Contains(fake.paths[0], "/spreadsheets/abc/values/'June 2025'!A1:F") {
		t.Fatalf("unexpected request path: %v", fake.paths)
	}
}

func TestReadRecordsDefaults(t *testing.T) {
	fake := &fakeSheets{values: [][]interface{}{{"t"}, {"h"}}}
	c := newTestClient(t, fake)

	recs, err := c.ReadRecords(context.Background(), "")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(recs.Credits) != 0 || len(recs.Debits) != 0 {
		t.Fatalf("expected no records: %+v", recs)
	}
	if !strings.Contains(fake.paths[0], "/spreadsheets/default-id/values/Transactions!A1:F") {
		t.Fatalf("unexpected request path: %v", fake.paths)
	}
}

func TestReadRecordsErrors(t *testing.T) {
	c := newTestClient(t, &fakeSheets{status: http.StatusNotFound})
	if _, err := c.ReadRecords(context.Background(), "gsheet:missing"); err == nil {
		t.Fatal("expected API error")
	}

	if _, err := c.ReadRecords(context.Background(), "budget.xlsx"); !errors.Is(err, sheets.ErrUnsupportedSource) {
		t.Fatalf("expected ErrUnsupportedSource, got %v", err)
	}

	bad := newTestClient(t, &fakeSheets{values: [][]interface{}{{"t"}, {"h"}, {"Pay", "soon", 10}}})
	if _, err := bad.ReadRecords(context.Background(), ""); !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}

	var nilSvc Client
	if _, err := nilSvc.ReadRecords(context.Background(), ""); err == nil {
		t.Fatal("expected error for uninitialized service")
	}
}

func TestParseSource(t *testing.T) {
	tests := []struct {
		in        string
		id, sheet string
		ok        bool
	}{
		{"gsheet:abc", "abc", "", true},
		{"gsheet:abc/Budget", "abc", "Budget", true},
		{"gsheet:abc/2025/June", "abc", "2025/June", true},
		{"budget.xlsx", "", "", false},
	}
	for _, tt := range tests {
		id, sheet, ok := ParseSource(tt.in)
		if id != tt.id || sheet != tt.sheet || ok != tt.ok {
			t.Errorf("ParseSource(%q) = %q, %q, %v", tt.in, id, sheet, ok)
		}
	}
}

func TestNewMissingCredentials(t *testing.T) {
	_, err := New(context.Background(), Options{SpreadsheetID: "x", Layout: sheets.DefaultLayout()})
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("expected credentials error, got %v", err)
	}
	_, err = New(context.Background(), Options{CredentialsFile: "/nonexistent/key.json"})
	if err == nil {
		t.Fatal("expected error for unreadable key file")
	}
}

func TestQuoteSheet(t *testing.T) {
	cases := map[string]string{
		"Transactions": "Transactions",
		"June 2025":    "'June 2025'",
		"Bob's":        "'Bob''s'",
	}
	for in, want := range cases {
		if got := quoteSheet(in); got != want {
			t.Errorf("quoteSheet(%q) = %q, want %q", in, got, want)
		}
	}
}
