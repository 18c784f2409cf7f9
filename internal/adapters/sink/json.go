package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"trustwatch/internal/domain"
)

// JSONSink writes one indented JSON file per brand-week, named the way
// downstream tooling expects: weekly_report_<domain>_<week>.json with dots
// in the domain replaced by underscores. An empty directory writes to
// stdout instead.
type JSONSink struct {
	dir string
	log zerolog.Logger
}

func NewJSON(dir string, log zerolog.Logger) *JSONSink {
	return &JSONSink{dir: dir, log: log}
}

func (s *JSONSink) Publish(ctx context.Context, r domain.WeeklyReport) error {
	body, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	if s.dir == "" {
		_, err := os.Stdout.Write(append(body, '\n'))
		return err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create reports dir: %w", err)
	}
	name := fmt.Sprintf("weekly_report_%s_%s.json",
		strings.ReplaceAll(r.Company.Domain, ".", "_"), r.Metadata.ISOWeek)
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	s.log.Info().Str("path", path).Msg("report saved")
	return nil
}
