package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cashflow/internal/config"
	"cashflow/internal/log"
)

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupLogger("warn", &buf)
	logger.Info("hidden")
	logger.Warn("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("unexpected output: %s", out)
	}
	if !strings.Contains(out, "component=app") {
		t.Fatalf("component missing: %s", out)
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("CASHFLOW_TEST_VALUE=42\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CASHFLOW_TEST_VALUE", "")
	os.Unsetenv("CASHFLOW_TEST_VALUE")

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := os.Getenv("CASHFLOW_TEST_VALUE"); got != "42" {
		t.Fatalf("value = %q", got)
	}
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatal("expected error for explicit missing file")
	}
}

func TestNewResolver(t *testing.T) {
	cfg := &config.Config{}
	r, err := NewResolver(context.Background(), cfg, log.Discard())
	if err != nil {
		t.Fatalf("resolver: %v", err)
	}
	recs, err := r.ReadRecords(context.Background(), "mem:sample")
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if len(recs.Credits) == 0 || len(recs.Debits) == 0 {
		t.Fatalf("sample dataset empty: %+v", recs)
	}
	if _, err := r.ReadRecords(context.Background(), "gsheet:abc"); err == nil {
		t.Fatal("Google sources should be unsupported without credentials")
	}
}

func TestNewResolverLayoutFile(t *testing.T) {
	dir := t.TempDir()
	layout := filepath.Join(dir, "layout.yaml")
	if err := os.WriteFile(layout, []byte("header_row: 1\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	csvPath := filepath.Join(dir, "june.csv")
	if err := os.WriteFile(csvPath, []byte("Item,Date,Amount\nPaycheck,1,100\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	r, err := NewResolver(context.Background(), &config.Config{LayoutFile: layout}, log.Discard())
	if err != nil {
		t.Fatalf("resolver: %v", err)
	}
	recs, err := r.ReadRecords(context.Background(), csvPath)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(recs.Credits) != 1 || recs.Credits[0].Item != "Paycheck" {
		t.Fatalf("layout override not applied: %+v", recs)
	}

	if _, err := NewResolver(context.Background(), &config.Config{LayoutFile: filepath.Join(dir, "nope.yaml")}, log.Discard()); err == nil {
		t.Fatal("expected error for missing layout file")
	}
}

func TestOpenRecorders(t *testing.T) {
	cfg := &config.Config{SQLiteDBPath: filepath.Join(t.TempDir(), "runs.db")}
	r, err := OpenRecorders(cfg, log.Discard())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer r.Close()
	if r.Repo == nil || r.Events != nil {
		t.Fatalf("unexpected recorders: %+v", r)
	}
	if len(r.Options()) != 1 {
		t.Fatalf("options = %d", len(r.Options()))
	}

	none, err := OpenRecorders(&config.Config{}, log.Discard())
	if err != nil || none.Repo != nil || len(none.Options()) != 0 {
		t.Fatalf("expected no recorders: %+v %v", none, err)
	}
	if err := none.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
