package statement

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const dateFormat = "2006-01-02"

// WriteWorkbook saves the parsed statement as an xlsx with an "msi"
// sheet for installment purchases and a "compras" sheet for regular
// charges, matching the layout the import pipeline consumes.
func WriteWorkbook(st *Statement, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSheet(f, "msi",
		[]string{"Fecha operación", "Descripción", "Monto original", "Saldo pendiente", "Pago requerido", "Núm. de pago", "Tasa de interés aplicable"},
		len(st.MSI),
		func(i int) []any {
			c := st.MSI[i]
			return []any{c.OperationDate.Format(dateFormat), c.Description, c.OriginalAmount, c.PendingBalance, c.RequiredPayment, c.PaymentNumber, c.InterestRate}
		}); err != nil {
		return err
	}

	if err := writeSheet(f, "compras",
		[]string{"Fecha de la operación", "Fecha de cargo", "Pago requerido", "Descripción"},
		len(st.Regular),
		func(i int) []any {
			c := st.Regular[i]
			chargeDate := ""
			if !c.ChargeDate.IsZero() {
				chargeDate = c.ChargeDate.Format(dateFormat)
			}
			return []any{c.OperationDate.Format(dateFormat), chargeDate, c.Amount, c.Description}
		}); err != nil {
		return err
	}

	// Drop the default sheet so only the two data sheets remain.
	if idx, _ := f.GetSheetIndex("msi"); idx != -1 {
		f.SetActiveSheet(idx)
	}
	_ = f.DeleteSheet("Sheet1")

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, n int, rowAt func(int) []any) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	for col, h := range headers {
		cellName, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cellName, h); err != nil {
			return err
		}
	}
	for i := 0; i < n; i++ {
		for col, v := range rowAt(i) {
			cellName, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cellName, v); err != nil {
				return err
			}
		}
	}
	return nil
}
