package services

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ashmitsharp/vendlens-api/internal/models"
)

// DefaultCategory is used for master list rows without a category
const DefaultCategory = "General"

// master cost sheet columns; column 0 is a running number
const (
	costColName     = 1
	costColCategory = 2
	costColCost     = 3
	costColSale     = 4
)

// ParseMasterCostSheet reads a master cost workbook. The first row is a header;
// rows without a product name or a parseable cost price are dropped.
func ParseMasterCostSheet(r io.Reader, filename string) ([]models.ProductCost, error) {
	sheet, err := ReadSheet(r, filename)
	if err != nil {
		return nil, err
	}

	costs := make([]models.ProductCost, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		nameCell, _ := row.At(costColName)
		name := nameCell.Text()
		if name == "" {
			continue
		}

		costCell, _ := row.At(costColCost)
		cost, ok := parsePrice(costCell)
		if !ok {
			continue
		}

		categoryCell, _ := row.At(costColCategory)
		category := categoryCell.Text()
		if category == "" {
			category = DefaultCategory
		}

		saleCell, _ := row.At(costColSale)
		sale, ok := parsePrice(saleCell)
		if !ok {
			sale = decimal.Zero
		}

		costs = append(costs, models.ProductCost{
			ID:        newProductID(),
			Name:      name,
			Category:  category,
			CostPrice: cost,
			SalePrice: sale,
		})
	}

	if len(costs) == 0 {
		return nil, fmt.Errorf("no products found in %s", filename)
	}
	return costs, nil
}

// parsePrice reads a price cell such as 1.2, "1.20" or "RM 1.20"
func parsePrice(c models.Cell) (decimal.Decimal, bool) {
	if c.Numeric {
		return decimal.NewFromFloat(c.Num), true
	}

	text := strings.ToUpper(c.Text())
	text = strings.TrimPrefix(text, "RM")
	text = strings.ReplaceAll(text, ",", "")
	text = strings.TrimSpace(text)
	if text == "" {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func newProductID() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "PROD-" + strings.ToUpper(id[:6])
}
