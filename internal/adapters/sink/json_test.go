package sink_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"trustwatch/internal/adapters/sink"
	"trustwatch/internal/domain"
)

func sampleReport() domain.WeeklyReport {
	var r domain.WeeklyReport
	r.Company.Domain = "simple-life-app.com"
	r.Company.BrandName = "Simple Life App"
	r.Metadata.ISOWeek = "2026-W04"
	r.Stats.Volume.TotalThisWeek = 12
	return r
}

func TestPublish_WritesNamedFile(t *testing.T) {
	dir := t.TempDir()
	s := sink.NewJSON(dir, zerolog.Nop())

	if err := s.Publish(context.Background(), sampleReport()); err != nil {
		t.Fatalf("publish: %v", err)
	}

	path := filepath.Join(dir, "weekly_report_simple-life-app_com_2026-W04.json")
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.HasPrefix(string(raw), "{\n  \"") {
		t.Fatalf("report is not indented: %q", raw[:12])
	}

	var back domain.WeeklyReport
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back.Company.BrandName != "Simple Life App" || back.Stats.Volume.TotalThisWeek != 12 {
		t.Fatalf("round trip: %+v", back.Company)
	}
}

func TestPublish_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "reports")
	s := sink.NewJSON(dir, zerolog.Nop())

	if err := s.Publish(context.Background(), sampleReport()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("dir listing: %v %v", entries, err)
	}
}
