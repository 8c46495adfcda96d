package services

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ashmitsharp/vendlens-api/internal/logger"
	"github.com/ashmitsharp/vendlens-api/internal/models"
)

// FileInput is one uploaded spreadsheet. Err marks a file that was rejected
// before parsing (failed validation, missing upload); it keeps its place in
// the batch report.
type FileInput struct {
	Name   string
	Reader io.Reader
	Err    error
}

// Importer parses a set of spreadsheet files into one staged batch
type Importer struct {
	parser  *Parser
	matcher *CostMatcher
	now     func() time.Time
}

// NewImporter creates an importer. matcher may be nil when profit is not computed.
func NewImporter(parser *Parser, matcher *CostMatcher) *Importer {
	return &Importer{
		parser:  parser,
		matcher: matcher,
		now:     time.Now,
	}
}

// ParseFiles parses files one after another in the given order. A file that cannot
// be read is recorded in its FileReport and the rest of the batch still runs.
func (i *Importer) ParseFiles(ctx context.Context, files []FileInput, manualDate string) *models.ImportBatch {
	log := logger.FromContext(ctx)
	now := i.now()

	batch := &models.ImportBatch{
		ID:          uuid.New(),
		CreatedAt:   now,
		TotalAmount: decimal.Zero,
	}

	costs := i.costIndex(ctx)

	for _, file := range files {
		report := models.FileReport{
			Name:         file.Name,
			FallbackDate: ResolveFallbackDate(manualDate, file.Name, now),
		}
		fileLog := log.With().Str("file", file.Name).Logger()

		if file.Err != nil {
			fileLog.Warn().Err(file.Err).Msg("file rejected")
			report.Error = file.Err.Error()
			batch.Files = append(batch.Files, report)
			continue
		}

		sheet, err := ReadSheet(file.Reader, file.Name)
		if err != nil {
			fileLog.Warn().Err(err).Msg("file processing error")
			report.Error = err.Error()
			batch.Files = append(batch.Files, report)
			continue
		}

		result := i.parser.ParseSheet(fileLog, sheet.Headers, sheet.Rows, report.FallbackDate, costs)
		for idx := range result.Transactions {
			result.Transactions[idx].SourceFile = file.Name
			batch.TotalAmount = batch.TotalAmount.Add(result.Transactions[idx].Amount)
		}

		report.Headers = result.Headers
		report.Rows = result.Rows
		report.Accepted = len(result.Transactions)
		report.Rejected = result.Rejected
		report.Footers = result.Footers

		fileLog.Info().
			Int("accepted", report.Accepted).
			Int("rejected", report.Rejected).
			Int("footers", report.Footers).
			Msg("parsed file")

		batch.Transactions = append(batch.Transactions, result.Transactions...)
		batch.Files = append(batch.Files, report)
	}

	batch.TotalRows = len(batch.Transactions)
	return batch
}

// costIndex loads the master list once per batch. Without it every cost is zero.
func (i *Importer) costIndex(ctx context.Context) *CostIndex {
	if i.matcher == nil || !i.parser.Config().EnableProfitCalc {
		return nil
	}
	ix, err := i.matcher.Index(ctx)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Msg("master cost list unavailable, profit defaults to amount")
		return nil
	}
	return ix
}
