// Package spreadsheet exports invoice summaries as an xlsx workbook.
package spreadsheet

import (
	"fmt"

	"github.com/sangkips/quickbill-api/internal/domain/entity"
	"github.com/sangkips/quickbill-api/pkg/format"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	SheetName   = "Facturas"
	FileName    = "facturas.xlsx"
)

var headers = []interface{}{
	"Número", "Fecha de emisión", "Fecha de vencimiento", "Cliente", "NIF cliente",
	"Subtotal", "IVA %", "IVA", "Total",
}

// amountFormat shows two decimals with grouping; the viewer applies its own
// locale separators.
const amountFormat = "#,##0.00"

// Invoices builds a workbook with one row per invoice and a totals row.
func Invoices(invoices []entity.Invoice) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	numFmt := amountFormat
	money, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return nil, err
	}
	boldMoney, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, CustomNumFmt: &numFmt})
	if err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(SheetName, "A1", &headers); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(SheetName, "A1", "I1", bold); err != nil {
		return nil, err
	}

	sum := struct{ subtotal, tax, total decimal.Decimal }{decimal.Zero, decimal.Zero, decimal.Zero}
	for i, inv := range invoices {
		t := inv.Totals()
		sum.subtotal = sum.subtotal.Add(t.Subtotal)
		sum.tax = sum.tax.Add(t.TaxAmount)
		sum.total = sum.total.Add(t.Total)

		row := []interface{}{
			inv.InvoiceNumber,
			format.Date(inv.IssueDate.Time),
			format.Date(inv.DueDate.Time),
			inv.Recipient.Name,
			inv.Recipient.TaxID,
			t.Subtotal.Round(2).InexactFloat64(),
			inv.TaxRatePercent.InexactFloat64(),
			t.TaxAmount.Round(2).InexactFloat64(),
			t.Total.Round(2).InexactFloat64(),
		}
		if err := f.SetSheetRow(SheetName, cell(1, i+2), &row); err != nil {
			return nil, err
		}
	}

	first, last := 2, len(invoices)+1
	if len(invoices) > 0 {
		if err := f.SetCellStyle(SheetName, cell(6, first), cell(6, last), money); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(SheetName, cell(8, first), cell(9, last), money); err != nil {
			return nil, err
		}
	}

	totalRow := last + 1
	totals := []interface{}{
		"Total", nil, nil, nil, nil,
		sum.subtotal.Round(2).InexactFloat64(),
		nil,
		sum.tax.Round(2).InexactFloat64(),
		sum.total.Round(2).InexactFloat64(),
	}
	if err := f.SetSheetRow(SheetName, cell(1, totalRow), &totals); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(SheetName, cell(1, totalRow), cell(9, totalRow), boldMoney); err != nil {
		return nil, err
	}

	if err := f.SetColWidth(SheetName, "A", "C", 18); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(SheetName, "D", "D", 32); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(SheetName, "E", "I", 14); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("spreadsheet: failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
