package models

import "github.com/shopspring/decimal"

// Summary is the dashboard's aggregate view over a set of transactions
type Summary struct {
	From           string          `json:"from,omitempty"`
	To             string          `json:"to,omitempty"`
	KPIs           KPIs            `json:"kpis"`
	PaymentMethods []NamedCount    `json:"paymentMethods"`
	SalesTrend     []TrendPoint    `json:"salesTrend"`
	HourlyTraffic  []HourBucket    `json:"hourlyTraffic"`
	TopProducts    []NamedCount    `json:"topProducts"`
	Machines       []MachineTotal  `json:"machines"`
	PeakHour       string          `json:"peakHour"`
	Forecast       decimal.Decimal `json:"forecast"`
}

// KPIs are the headline figures
type KPIs struct {
	TotalSales          decimal.Decimal `json:"totalSales"`
	TotalCost           decimal.Decimal `json:"totalCost"`
	TotalProfit         decimal.Decimal `json:"totalProfit"`
	TotalTransactions   int             `json:"totalTransactions"`
	AvgTransactionValue decimal.Decimal `json:"avgTransactionValue"`
}

// NamedCount counts occurrences of a name
type NamedCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// TrendPoint is the sales total of one day
type TrendPoint struct {
	Date   string          `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// HourBucket counts transactions in one hour of the day
type HourBucket struct {
	Hour  string `json:"hour"`
	Count int    `json:"count"`
}

// MachineTotal is the sales total of one machine
type MachineTotal struct {
	Machine string          `json:"machine"`
	Sales   decimal.Decimal `json:"sales"`
	Count   int             `json:"count"`
}
