package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// Writes workbook fixtures matching the CSV samples in testdata/:
//
//	go run ./scripts -out testdata
func main() {
	out := flag.String("out", "testdata", "output directory")
	flag.Parse()

	generatePOSFixture(*out)
	generateMasterCostFixture(*out)
	fmt.Println("\nAll XLSX fixtures generated")
}

// generatePOSFixture writes a terminal export with a combined date-time column,
// numeric amounts and a grand total footer
func generatePOSFixture(dir string) {
	f := excelize.NewFile()
	sheet := "Sheet1"

	headers := []interface{}{"No", "TransId", "User Name", "ProdDesc", "Original Amount", "Payment Method", "Transaction Date"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		log.Fatal(err)
	}

	data := [][]interface{}{
		{1, "TX-2001", "VMCHERAS-5", "Coca-Cola 500ML", 2.50, "Cash", "07/01/2026 07:38:00"},
		{2, "TX-2002", "VMCHERAS-5", "Kopi Ais", 1.80, "DuitNow QR", "07/01/2026 09:15:10"},
		{3, "TX-2003", "LRT-KLCC", "Mineral Water", 1.20, "Card", "08/01/2026 13:02:00"},
		{4, "TX-2004", "LRT-KLCC", "100 Plus", 2.80, "Cash", "08/01/2026 18:45:30"},
		{"Grand Total", "", "", "", 8.30, "", ""},
	}
	for i, row := range data {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			log.Fatal(err)
		}
	}

	save(f, filepath.Join(dir, "terminal_export_combined.xlsx"))
}

// generateMasterCostFixture writes the workbook form of master_cost.csv
func generateMasterCostFixture(dir string) {
	f := excelize.NewFile()
	sheet := "Sheet1"

	headers := []interface{}{"No", "Product Name", "Category", "Cost Price", "Sale Price"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		log.Fatal(err)
	}

	data := [][]interface{}{
		{1, "Coca-Cola 500ML", "Drinks", 1.20, 2.50},
		{2, "Kopi Ais", "Drinks", "RM 0.90", "RM 1.80"},
		{3, "Mineral Water", "", 0.50, ""},
		{4, "100 Plus", "Drinks", 1.30, 2.80},
	}
	for i, row := range data {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			log.Fatal(err)
		}
	}

	save(f, filepath.Join(dir, "master_cost.xlsx"))
}

func save(f *excelize.File, path string) {
	if err := f.SaveAs(path); err != nil {
		log.Fatal(err)
	}
	fmt.Println("Generated", path)
}
