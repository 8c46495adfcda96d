package services

import (
	"strings"

	"github.com/ashmitsharp/vendlens-api/internal/models"
)

// DefaultMachineNames maps terminal identifiers found in POS exports to display names
var DefaultMachineNames = map[string]string{
	"VMCHERAS-T4/iskandar": "VM UPTM CHERAS TINGKAT 4",
	"VMCHERAS-5":           "VM UPTM CHERAS TINGKAT 5",
	"test":                 "KPTM Bangi",
	"HQ-Pantry":            "Rozita HQ - Pantry",
	"LRT-KLCC":             "LRT Station - KLCC",
}

// MachineResolver turns raw terminal identifiers into display names
type MachineResolver struct {
	names map[string]string
}

// NewMachineResolver creates a resolver over a lookup table. A nil table uses
// DefaultMachineNames.
func NewMachineResolver(names map[string]string) *MachineResolver {
	if names == nil {
		names = DefaultMachineNames
	}
	table := make(map[string]string, len(names))
	for k, v := range names {
		table[strings.TrimSpace(k)] = v
	}
	return &MachineResolver{names: table}
}

// Resolve returns the display name for raw; unknown identifiers pass through trimmed
func (r *MachineResolver) Resolve(raw string) string {
	clean := strings.TrimSpace(raw)
	if clean == "" {
		return models.UnknownMachine
	}
	if name, ok := r.names[clean]; ok {
		return name
	}
	return clean
}
