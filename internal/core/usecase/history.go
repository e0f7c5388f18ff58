package usecase

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/kirillkom/blood-insights/internal/core/domain"
	"github.com/kirillkom/blood-insights/internal/core/ports"
	"github.com/kirillkom/blood-insights/internal/core/render"
)

// HistoryRow is one history list entry with its risk badge.
type HistoryRow struct {
	domain.HistoryEntry
	Badge render.Badge `json:"badge"`
}

type HistoryService struct {
	reports  ports.ReportBackend
	exporter ports.HistoryExporter
}

func NewHistoryService(reports ports.ReportBackend, exporter ports.HistoryExporter) *HistoryService {
	return &HistoryService{
		reports:  reports,
		exporter: exporter,
	}
}

// List returns entries in backend order.
func (s *HistoryService) List(ctx context.Context) ([]domain.HistoryEntry, error) {
	entries, err := s.reports.History(ctx)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	return entries, nil
}

func (s *HistoryService) Rows(ctx context.Context) ([]HistoryRow, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return HistoryRows(entries), nil
}

func HistoryRows(entries []domain.HistoryEntry) []HistoryRow {
	rows := make([]HistoryRow, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, HistoryRow{
			HistoryEntry: entry,
			Badge:        render.RiskBadge(entry.RiskScore),
		})
	}
	return rows
}

func (s *HistoryService) Open(ctx context.Context, id string) (*domain.Report, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "open report", fmt.Errorf("report id is required"))
	}
	report, err := s.reports.Report(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("open report %s: %w", id, err)
	}
	return report, nil
}

func (s *HistoryService) Export(ctx context.Context, w io.Writer) error {
	if s.exporter == nil {
		return domain.WrapError(domain.ErrUnsupported, "export history", fmt.Errorf("no exporter configured"))
	}
	entries, err := s.List(ctx)
	if err != nil {
		return err
	}
	if err := s.exporter.Export(w, entries); err != nil {
		return fmt.Errorf("export history: %w", err)
	}
	return nil
}
