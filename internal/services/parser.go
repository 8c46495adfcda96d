package services

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ashmitsharp/vendlens-api/internal/models"
)

// DateTimeMode selects where a row's time of day comes from
type DateTimeMode string

const (
	// DateTimeAuto reads the time column and falls back to a time carried in the date cell
	DateTimeAuto DateTimeMode = "auto"
	// DateTimeSeparate reads the time only from the time column
	DateTimeSeparate DateTimeMode = "separate"
	// DateTimeCombined reads date and time from the date cell
	DateTimeCombined DateTimeMode = "combined"
)

// ParseDateTimeMode validates a mode name; empty means auto
func ParseDateTimeMode(s string) (DateTimeMode, error) {
	switch mode := DateTimeMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case "", DateTimeAuto:
		return DateTimeAuto, nil
	case DateTimeSeparate, DateTimeCombined:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown datetime mode %q", s)
	}
}

// ParserConfig enumerates which row heuristics are active
type ParserConfig struct {
	DateTimeMode     DateTimeMode
	EnableProfitCalc bool
	Currency         string
}

// DefaultParserConfig returns the configuration used when none is given
func DefaultParserConfig() ParserConfig {
	return ParserConfig{
		DateTimeMode:     DateTimeAuto,
		EnableProfitCalc: true,
		Currency:         "MYR",
	}
}

// RowOutcome tells the caller what happened to a row
type RowOutcome int

const (
	RowAccepted RowOutcome = iota
	RowRejected
	RowFooter
	RowEmpty
)

// literal header names tried when the header mapper left a field unmapped
var fallbackHeaders = map[models.Field][]string{
	models.FieldID:      {"TransId", "No"},
	models.FieldMachine: {"User Name", "Username"},
	models.FieldProduct: {"ProdDesc", "Product"},
	models.FieldAmount:  {"Original Amount", "Amount"},
	models.FieldPayment: {"Payment Method"},
	models.FieldDate:    {"Date"},
	models.FieldTime:    {"Time"},
}

const paymentIDHeader = "Merchant RefNo"

var footerKeywords = []string{"total", "jumlah"}

// Parser turns spreadsheet rows into canonical transactions
type Parser struct {
	config   ParserConfig
	machines *MachineResolver
}

// NewParser creates a new parser instance
func NewParser(config ParserConfig, machines *MachineResolver) *Parser {
	if config.DateTimeMode == "" {
		config.DateTimeMode = DateTimeAuto
	}
	if config.Currency == "" {
		config.Currency = "MYR"
	}
	if machines == nil {
		machines = NewMachineResolver(nil)
	}
	return &Parser{config: config, machines: machines}
}

// Config returns the active configuration
func (p *Parser) Config() ParserConfig {
	return p.config
}

// SheetResult is the outcome of parsing every row of one sheet
type SheetResult struct {
	Headers      models.HeaderMap
	Transactions []models.Transaction
	Rows         int
	Rejected     int
	Footers      int
}

// ParseSheet maps the header row once and parses every data row in order.
// costs may be nil, in which case no profit is computed.
func (p *Parser) ParseSheet(log zerolog.Logger, headers []string, rows []models.RawRow, fallbackDate string, costs *CostIndex) SheetResult {
	result := SheetResult{Headers: DetectHeaders(headers)}
	generated := make(map[string]int)

	for i, row := range rows {
		txn, outcome := p.ParseRow(row, result.Headers, fallbackDate, costs)
		switch outcome {
		case RowEmpty:
			continue
		case RowFooter:
			result.Footers++
			log.Debug().Int("row", i+2).Msg("skipping footer row")
			continue
		}

		result.Rows++
		if outcome == RowRejected {
			result.Rejected++
			log.Debug().Int("row", i+2).Msg("skipping row without a sale")
			continue
		}

		if txn.PaymentID == "" {
			txn.PaymentID = fmt.Sprintf("XL-%d", i)
		}
		if txn.RefNo == Fingerprint(txn.MachineID, txn.Timestamp, txn.Amount) {
			// Repeats of a fingerprint within one sheet are separate sales
			generated[txn.RefNo]++
			if n := generated[txn.RefNo]; n > 1 {
				txn.RefNo = fmt.Sprintf("%s-%d", txn.RefNo, n)
				txn.ID = "IMP-" + txn.RefNo
			}
		}
		result.Transactions = append(result.Transactions, txn)
	}

	return result
}

// ParseRow parses a single row. Footer and blank rows are reported separately from
// rejected rows; only RowAccepted carries a transaction.
func (p *Parser) ParseRow(row models.RawRow, hm models.HeaderMap, fallbackDate string, costs *CostIndex) (models.Transaction, RowOutcome) {
	var txn models.Transaction

	// Skip empty rows
	if isEmptyRow(row) {
		return txn, RowEmpty
	}

	// Skip footer rows
	if isFooterRow(row) {
		return txn, RowFooter
	}

	// 1. Amount, non-sales rows are dropped
	amount := CleanAmount(p.cell(row, hm, models.FieldAmount))
	if !amount.IsPositive() {
		return txn, RowRejected
	}

	// 2. Product
	product := p.cell(row, hm, models.FieldProduct).Text()
	if product == "" {
		return txn, RowRejected
	}

	// 3. Timestamp
	dateCell, timeCell := p.dateTimeCells(row, hm)
	timestamp := MergeDateTime(dateCell, timeCell, fallbackDate)

	// 4. Machine and payment
	machine := p.machines.Resolve(p.cell(row, hm, models.FieldMachine).Text())
	payment := p.cell(row, hm, models.FieldPayment).Text()
	if payment == "" {
		payment = models.DefaultPaymentMethod
	}

	// 5. Reference number
	refNo := p.cell(row, hm, models.FieldID).Text()
	if refNo == "" {
		refNo = Fingerprint(machine, timestamp, amount)
	}

	txn = models.Transaction{
		ID:            "IMP-" + refNo,
		RefNo:         refNo,
		ProductName:   product,
		Amount:        amount,
		Currency:      p.config.Currency,
		Status:        models.StatusSuccess,
		PaymentMethod: payment,
		Timestamp:     timestamp,
		MachineID:     machine,
		SlotID:        models.UnknownSlot,
	}
	if c, ok := row.Get(paymentIDHeader); ok {
		txn.PaymentID = c.Text()
	}

	// 6. Cost and profit
	if p.config.EnableProfitCalc {
		ApplyCost(&txn, costs)
	}

	return txn, RowAccepted
}

// ApplyCost sets cost and profit from the best master list match. Unmatched
// products cost zero, so profit equals the amount.
func ApplyCost(txn *models.Transaction, costs *CostIndex) {
	cost := decimal.Zero
	if match, ok := costs.Match(txn.ProductName); ok {
		cost = match.Entry.CostPrice
	}
	profit := txn.Amount.Sub(cost)
	txn.Cost = &cost
	txn.Profit = &profit
}

// Fingerprint builds a deterministic reference for rows without a transaction id
func Fingerprint(machine, timestamp string, amount decimal.Decimal) string {
	return "GEN-" + sanitizeRef(machine) + "-" + sanitizeRef(timestamp) + "-" + amount.StringFixed(2)
}

// cell resolves a logical field through the header map, then the literal fallbacks
func (p *Parser) cell(row models.RawRow, hm models.HeaderMap, f models.Field) models.Cell {
	if idx := hm.Index(f); idx != models.NotFound {
		c, _ := row.At(idx)
		return c
	}
	for _, name := range fallbackHeaders[f] {
		if c, ok := row.Get(name); ok && !c.IsEmpty() {
			return c
		}
	}
	return models.Cell{}
}

// dateTimeCells picks the date and time cells according to the configured mode
func (p *Parser) dateTimeCells(row models.RawRow, hm models.HeaderMap) (models.Cell, models.Cell) {
	dateCell := p.cell(row, hm, models.FieldDate)
	timeCell := p.cell(row, hm, models.FieldTime)

	mode := p.config.DateTimeMode
	if hm.CombinedDateTime && mode == DateTimeAuto {
		mode = DateTimeCombined
	}

	switch mode {
	case DateTimeSeparate:
		return dateCell, timeCell
	case DateTimeCombined:
		return SplitDateTimeCell(dateCell)
	default:
		datePart, embedded := SplitDateTimeCell(dateCell)
		if timeCell.IsEmpty() {
			timeCell = embedded
		}
		return datePart, timeCell
	}
}

// isEmptyRow checks if all fields in a row are empty
func isEmptyRow(row models.RawRow) bool {
	for _, c := range row.Cells {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

// isFooterRow checks if a row is a totals row
func isFooterRow(row models.RawRow) bool {
	first := row.First()
	if first.Numeric {
		return false
	}

	firstField := strings.ToLower(first.Text())
	for _, keyword := range footerKeywords {
		if strings.Contains(firstField, keyword) {
			return true
		}
	}
	return false
}

func sanitizeRef(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
