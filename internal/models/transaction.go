package models

import (
	"github.com/shopspring/decimal"
)

const (
	// StatusSuccess is the only status an imported sale can carry
	StatusSuccess = "success"
	// UnknownSlot marks a transaction not yet attributed to an inventory slot
	UnknownSlot = "unknown"
	// DefaultPaymentMethod is used when the source row has no payment method
	DefaultPaymentMethod = "Cash"
	// UnknownMachine labels rows without a machine identifier
	UnknownMachine = "Unknown Machine"
)

// Transaction is the canonical sale record produced by the row parser
type Transaction struct {
	ID            string           `json:"id"`
	RefNo         string           `json:"refNo"`
	PaymentID     string           `json:"paymentId,omitempty"`
	ProductName   string           `json:"productName"`
	Amount        decimal.Decimal  `json:"amount"`
	Cost          *decimal.Decimal `json:"cost,omitempty"`
	Profit        *decimal.Decimal `json:"profit,omitempty"`
	Currency      string           `json:"currency"`
	Status        string           `json:"status"`
	PaymentMethod string           `json:"paymentMethod"`
	Timestamp     string           `json:"timestamp"` // YYYY-MM-DDTHH:MM:SS, naive local time
	MachineID     string           `json:"machineId"`
	SlotID        string           `json:"slotId"`
	SourceFile    string           `json:"sourceFile,omitempty"`
}

// ProductCost is one entry of the master cost list
type ProductCost struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	CostPrice decimal.Decimal `json:"costPrice"`
	SalePrice decimal.Decimal `json:"salePrice"`
}

// InventorySlot is a vending machine slot as seen by the commit engine
type InventorySlot struct {
	ID           string          `json:"id"`
	ProductName  string          `json:"productName"`
	Price        decimal.Decimal `json:"price"`
	MaxCapacity  int             `json:"maxCapacity"`
	CurrentStock int             `json:"currentStock"`
	ExpiryDate   string          `json:"expiryDate,omitempty"`
}

// CommitResult reports the outcome of committing a staged batch
type CommitResult struct {
	Accepted     int            `json:"accepted"`
	Skipped      int            `json:"skipped"`
	StockUpdates map[string]int `json:"stockUpdates"`
	Transactions []Transaction  `json:"-"`
}
