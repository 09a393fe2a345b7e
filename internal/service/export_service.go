package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"

	"github.com/Zachary2562/recordables-ticketquest/internal/config"
	"github.com/Zachary2562/recordables-ticketquest/internal/domain"
	"github.com/Zachary2562/recordables-ticketquest/pkg/util"
)

const csvHeader = "Ticket_ID,Priority,Title,Submitted By,Date,Replies,Category,Status,Assigned,URL\n"

// ExportService renders the current filtered/sorted ticket listing as a CSV
// dump or a tabular PDF report. Row order always follows the listing sort.
type ExportService struct {
	queries *TicketQueryService
	cfg     config.HelpdeskConfig
	logger  *zap.Logger
}

// NewExportService constructs the service.
func NewExportService(queries *TicketQueryService, cfg config.HelpdeskConfig, logger *zap.Logger) *ExportService {
	return &ExportService{queries: queries, cfg: cfg, logger: logger}
}

// WriteCSV streams the export to w. A row that fails to render is logged and
// skipped; the export keeps going.
func (s *ExportService) WriteCSV(ctx context.Context, actor domain.Actor, filter TicketFilter, w io.Writer) error {
	tickets, err := s.queries.ListForExport(ctx, actor, filter)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, csvHeader); err != nil {
		return util.NewInternalError(err)
	}
	for i := range tickets {
		row, err := s.csvRow(&tickets[i])
		if err != nil {
			s.logger.Warn("skipping malformed export row",
				zap.Int64("ticket_id", tickets[i].ID),
				zap.Error(err))
			continue
		}
		if _, err := io.WriteString(w, row); err != nil {
			return util.NewInternalError(err)
		}
	}
	return nil
}

func (s *ExportService) csvRow(t *domain.TicketDetail) (string, error) {
	if t.ID <= 0 {
		return "", fmt.Errorf("ticket without identifier")
	}
	// Embedded double quotes would break the quoting scheme, so they become
	// single quotes. Matches the documented export format.
	title := strings.ReplaceAll(t.Title, `"`, `'`)
	url := fmt.Sprintf("%s/flicket/ticket_view/%d/", strings.TrimSuffix(s.cfg.BaseURL, "/"), t.ID)
	return fmt.Sprintf("%s,%s,\"%s\",%s,%s,%d,%s,%s,%s,%s\n",
		t.ZFill(),
		t.PriorityLabel,
		title,
		t.SubmitterName,
		t.DateAdded.Format("2006-01-02"),
		t.ReplyCount,
		t.DepartmentCategory(),
		t.StatusLabel,
		t.AssignedDisplay(),
		url,
	), nil
}

// WritePDF renders the same sequence as a landscape table, CSV columns minus
// the URL.
func (s *ExportService) WritePDF(ctx context.Context, actor domain.Actor, filter TicketFilter, w io.Writer) error {
	tickets, err := s.queries.ListForExport(ctx, actor, filter)
	if err != nil {
		return err
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Ticket report", false)
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, "Ticket report")
	pdf.Ln(12)

	headers := []string{"ID", "Priority", "Title", "Submitted By", "Date", "Replies", "Category", "Status", "Assigned"}
	widths := []float64{18, 22, 70, 35, 24, 18, 45, 22, 35}

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for i := range tickets {
		t := &tickets[i]
		cells := []string{
			t.ZFill(),
			t.PriorityLabel,
			truncateCell(t.Title, 48),
			t.SubmitterName,
			t.DateAdded.Format("2006-01-02"),
			fmt.Sprintf("%d", t.ReplyCount),
			truncateCell(t.DepartmentCategory(), 32),
			t.StatusLabel,
			t.AssignedDisplay(),
		}
		for j, cell := range cells {
			pdf.CellFormat(widths[j], 6, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return util.NewInternalError(err)
	}
	return nil
}

func truncateCell(val string, max int) string {
	if len(val) <= max {
		return val
	}
	return val[:max-3] + "..."
}
