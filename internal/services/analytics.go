package services

import (
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ashmitsharp/vendlens-api/internal/models"
)

const (
	defaultTrendDays = 7
	topProductLimit  = 5
)

var forecastGrowth = decimal.NewFromFloat(1.1)

// SummaryOptions bounds the transactions a summary covers
type SummaryOptions struct {
	// From and To are inclusive YYYY-MM-DD bounds; empty means unbounded
	From string
	To   string
	// Days is the length of the daily sales trend ending at Now
	Days int
	Now  time.Time
}

// BuildSummary aggregates transactions for the dashboard
func BuildSummary(txs []models.Transaction, opts SummaryOptions) models.Summary {
	if opts.Days <= 0 {
		opts.Days = defaultTrendDays
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	summary := models.Summary{
		From: opts.From,
		To:   opts.To,
		KPIs: models.KPIs{
			TotalSales:          decimal.Zero,
			TotalCost:           decimal.Zero,
			TotalProfit:         decimal.Zero,
			AvgTransactionValue: decimal.Zero,
		},
	}

	payments := newCounter()
	products := newCounter()
	machines := make(map[string]*models.MachineTotal)
	var machineOrder []string
	hours := make([]int, 24)

	// Trend window, oldest day first
	trend := make([]models.TrendPoint, opts.Days)
	trendIndex := make(map[string]int, opts.Days)
	for i := 0; i < opts.Days; i++ {
		day := opts.Now.AddDate(0, 0, i-opts.Days+1).Format("2006-01-02")
		trend[i] = models.TrendPoint{Date: day, Amount: decimal.Zero}
		trendIndex[day] = i
	}

	for _, t := range txs {
		day := datePart(t.Timestamp)
		if opts.From != "" && day < opts.From {
			continue
		}
		if opts.To != "" && day > opts.To {
			continue
		}

		k := &summary.KPIs
		k.TotalSales = k.TotalSales.Add(t.Amount)
		k.TotalTransactions++
		if t.Cost != nil {
			k.TotalCost = k.TotalCost.Add(*t.Cost)
		}
		if t.Profit != nil {
			k.TotalProfit = k.TotalProfit.Add(*t.Profit)
		} else {
			k.TotalProfit = k.TotalProfit.Add(t.Amount)
		}

		method := t.PaymentMethod
		if method == "" {
			method = "Other"
		}
		payments.add(method)
		products.add(t.ProductName)

		m, ok := machines[t.MachineID]
		if !ok {
			m = &models.MachineTotal{Machine: t.MachineID, Sales: decimal.Zero}
			machines[t.MachineID] = m
			machineOrder = append(machineOrder, t.MachineID)
		}
		m.Sales = m.Sales.Add(t.Amount)
		m.Count++

		if i, ok := trendIndex[day]; ok {
			trend[i].Amount = trend[i].Amount.Add(t.Amount)
		}
		if ts, err := ParseTimestamp(t.Timestamp); err == nil {
			hours[ts.Hour()]++
		}
	}

	if n := summary.KPIs.TotalTransactions; n > 0 {
		summary.KPIs.AvgTransactionValue = summary.KPIs.TotalSales.Div(decimal.NewFromInt(int64(n))).Round(2)
	}

	summary.PaymentMethods = payments.sorted(0)
	summary.TopProducts = products.sorted(topProductLimit)
	summary.SalesTrend = trend

	summary.Machines = make([]models.MachineTotal, 0, len(machineOrder))
	for _, id := range machineOrder {
		summary.Machines = append(summary.Machines, *machines[id])
	}
	sort.SliceStable(summary.Machines, func(i, j int) bool {
		return summary.Machines[i].Sales.GreaterThan(summary.Machines[j].Sales)
	})

	summary.HourlyTraffic = make([]models.HourBucket, 24)
	peak := 0
	for h, count := range hours {
		summary.HourlyTraffic[h] = models.HourBucket{Hour: strconv.Itoa(h) + ":00", Count: count}
		if count > hours[peak] {
			peak = h
		}
	}
	summary.PeakHour = summary.HourlyTraffic[peak].Hour
	summary.Forecast = trend[len(trend)-1].Amount.Mul(forecastGrowth).Round(2)

	return summary
}

func datePart(ts string) string {
	if len(ts) >= 10 {
		return ts[:10]
	}
	return ts
}

// counter counts names and remembers first-seen order for tie breaks
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(name string) {
	if _, ok := c.counts[name]; !ok {
		c.order = append(c.order, name)
	}
	c.counts[name]++
}

// sorted returns names by descending count; limit 0 keeps all
func (c *counter) sorted(limit int) []models.NamedCount {
	out := make([]models.NamedCount, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, models.NamedCount{Name: name, Count: c.counts[name]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
