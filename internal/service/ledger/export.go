package ledger

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"payja-lending/internal/pkg/consts"
	"payja-lending/internal/pkg/log_messages"
	"payja-lending/internal/pkg/logger"
	"payja-lending/internal/pkg/store/models"
	"payja-lending/internal/service/interfaces"

	"go.uber.org/zap"
)

// Uploader is satisfied by *sftp.Uploader.
type Uploader interface {
	Upload(ctx context.Context, name string, r io.Reader) (string, error)
}

var header = []string{
	"loan_id", "sequence", "type", "from", "to", "amount",
	"external_reference", "status", "attempts", "created_at", "completed_at",
}

type Export struct {
	Day        string `json:"day"`
	Entries    int    `json:"entries"`
	RemotePath string `json:"remotePath"`
}

type ExportService struct {
	transactions interfaces.TransactionRepositoryInterface
	uploader     Uploader
	location     *time.Location
}

// NewExportService builds an exporter whose days are calendar days in loc
// (UTC when nil).
func NewExportService(transactions interfaces.TransactionRepositoryInterface, uploader Uploader, loc *time.Location) *ExportService {
	if loc == nil {
		loc = time.UTC
	}
	return &ExportService{transactions: transactions, uploader: uploader, location: loc}
}

// ExportDay writes every ledger entry created on day (YYYY-MM-DD) to
// ledger-<day>.csv on the finance drop. Re-running a day replaces the file.
func (s *ExportService) ExportDay(ctx context.Context, day string) (*Export, error) {
	start, err := time.ParseInLocation(consts.DateFormat, day, s.location)
	if err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", consts.ErrorInvalidRequest)
	}
	end := start.AddDate(0, 0, 1)

	entries, err := s.transactions.FindCreatedBetween(ctx, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := writeCSV(&buf, entries); err != nil {
		return nil, err
	}

	name := "ledger-" + day + ".csv"
	remote, err := s.uploader.Upload(ctx, name, &buf)
	if err != nil {
		logger.CtxError(ctx, log_messages.LedgerExportFailed, err, zap.String("day", day))
		return nil, err
	}
	logger.CtxInfo(ctx, log_messages.LedgerExported,
		zap.String("day", day),
		zap.Int("entries", len(entries)),
		zap.String("path", remote),
	)
	return &Export{Day: day, Entries: len(entries), RemotePath: remote}, nil
}

func writeCSV(w io.Writer, entries []models.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, e := range entries {
		completed := ""
		if e.CompletedAt != nil {
			completed = e.CompletedAt.UTC().Format(time.RFC3339)
		}
		row := []string{
			e.LoanID.Hex(),
			strconv.Itoa(e.Sequence),
			string(e.Type),
			string(e.From),
			string(e.To),
			strconv.FormatFloat(e.Amount, 'f', 2, 64),
			e.ExternalReference,
			string(e.Status),
			strconv.Itoa(e.Attempts),
			e.CreatedAt.UTC().Format(time.RFC3339),
			completed,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
