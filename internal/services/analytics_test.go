package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashmitsharp/vendlens-api/internal/models"
)

func withProfit(tx models.Transaction, costPrice string) models.Transaction {
	c := decimal.RequireFromString(costPrice)
	p := tx.Amount.Sub(c)
	tx.Cost = &c
	tx.Profit = &p
	return tx
}

func TestBuildSummary(t *testing.T) {
	now := time.Date(2026, time.January, 9, 20, 0, 0, 0, time.UTC)

	txs := []models.Transaction{
		withProfit(sale("T1", "Cola", "2.50", "2026-01-09T09:10:00"), "1.20"),
		withProfit(sale("T2", "Cola", "2.50", "2026-01-09T09:40:00"), "1.20"),
		sale("T3", "Kopi Ais", "1.80", "2026-01-08T13:00:00"),
		sale("T4", "Teh Tarik", "2.20", "2025-12-01T09:00:00"),
	}
	txs[2].PaymentMethod = "DuitNow QR"
	txs[2].MachineID = "Rozita HQ - Pantry"
	txs[3].PaymentMethod = ""

	s := BuildSummary(txs, SummaryOptions{Days: 3, Now: now})

	assert.True(t, s.KPIs.TotalSales.Equal(decimal.RequireFromString("9.00")))
	assert.True(t, s.KPIs.TotalCost.Equal(decimal.RequireFromString("2.40")))
	// Rows without a profit count their whole amount
	assert.True(t, s.KPIs.TotalProfit.Equal(decimal.RequireFromString("6.60")))
	assert.Equal(t, 4, s.KPIs.TotalTransactions)
	assert.True(t, s.KPIs.AvgTransactionValue.Equal(decimal.RequireFromString("2.25")))

	assert.Equal(t, []models.NamedCount{
		{Name: "Cash", Count: 2},
		{Name: "DuitNow QR", Count: 1},
		{Name: "Other", Count: 1},
	}, s.PaymentMethods)

	require.NotEmpty(t, s.TopProducts)
	assert.Equal(t, models.NamedCount{Name: "Cola", Count: 2}, s.TopProducts[0])

	require.Len(t, s.Machines, 2)
	assert.Equal(t, "VM UPTM CHERAS TINGKAT 5", s.Machines[0].Machine)
	assert.Equal(t, 3, s.Machines[0].Count)

	require.Len(t, s.SalesTrend, 3)
	assert.Equal(t, "2026-01-07", s.SalesTrend[0].Date)
	assert.True(t, s.SalesTrend[0].Amount.IsZero())
	assert.Equal(t, "2026-01-08", s.SalesTrend[1].Date)
	assert.True(t, s.SalesTrend[1].Amount.Equal(decimal.RequireFromString("1.80")))
	assert.Equal(t, "2026-01-09", s.SalesTrend[2].Date)
	assert.True(t, s.SalesTrend[2].Amount.Equal(decimal.RequireFromString("5.00")))

	require.Len(t, s.HourlyTraffic, 24)
	assert.Equal(t, models.HourBucket{Hour: "9:00", Count: 3}, s.HourlyTraffic[9])
	assert.Equal(t, "9:00", s.PeakHour)
	assert.True(t, s.Forecast.Equal(decimal.RequireFromString("5.50")))
}

func TestBuildSummary_DateRange(t *testing.T) {
	txs := []models.Transaction{
		sale("T1", "Cola", "2.50", "2026-01-09T09:10:00"),
		sale("T2", "Cola", "2.50", "2026-01-08T09:40:00"),
		sale("T3", "Cola", "2.50", "2026-01-07T09:40:00"),
	}

	s := BuildSummary(txs, SummaryOptions{From: "2026-01-08", To: "2026-01-08", Now: time.Date(2026, time.January, 9, 0, 0, 0, 0, time.UTC)})

	assert.Equal(t, 1, s.KPIs.TotalTransactions)
	assert.Equal(t, "2026-01-08", s.From)
	assert.Len(t, s.SalesTrend, 7)
}

func TestBuildSummary_Empty(t *testing.T) {
	s := BuildSummary(nil, SummaryOptions{Now: time.Date(2026, time.January, 9, 0, 0, 0, 0, time.UTC)})

	assert.Equal(t, 0, s.KPIs.TotalTransactions)
	assert.True(t, s.KPIs.AvgTransactionValue.IsZero())
	assert.Empty(t, s.PaymentMethods)
	assert.Empty(t, s.Machines)
	assert.Equal(t, "0:00", s.PeakHour)
	assert.True(t, s.Forecast.IsZero())
}

func TestBuildSummary_TopProductsLimit(t *testing.T) {
	var txs []models.Transaction
	for i, name := range []string{"A", "B", "C", "D", "E", "F", "A"} {
		txs = append(txs, sale("T"+string(rune('0'+i)), name, "1.00", "2026-01-09T10:00:00"))
	}

	s := BuildSummary(txs, SummaryOptions{Now: time.Date(2026, time.January, 9, 0, 0, 0, 0, time.UTC)})

	require.Len(t, s.TopProducts, 5)
	assert.Equal(t, "A", s.TopProducts[0].Name)
	assert.Equal(t, "B", s.TopProducts[1].Name)
}
