// Package ingest reads the purchase workbooks and keeps the intake
// directories tidy.
package ingest

import (
	"fmt"

	"stockflow-importer/internal/models"
	"stockflow-importer/internal/util"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Sheet and column names of the real exports.
const (
	SheetPurchases = "Compras"
	SheetPrices    = "Precios"

	colDescription   = "Descripción"
	colQuantity      = "Cant"
	colUnitPrice     = "C. Unit"
	colUnitPriceUSD  = "C. Unit US"
	colDiscountPct   = "% Desc"
	colPieces        = "Pzs"
	colFinalCost     = "Costo Final"
	colTotal         = "Total Cmpr"
	colPurchaseDate  = "Fch Cmpr"
	colDeliveryDate  = "Fch Entrga"
	colExchangeRate  = "Dólar"
	colShipping      = "Envio"
	colDiscount      = "Desct"
	colLink          = "Liga"
	colStorePrice    = "P. Tienda"
	colSalePrice     = "P. Venta"
	colOfferPrice    = "P. Oferta"
	colBrand         = "Marca"
	colCategory      = "Categoria"
	colImagePreview  = "Preview"
)

// Workbook is the cleaned content of one export file.
type Workbook struct {
	Purchases []models.PurchaseRow
	Prices    []models.PriceRow
}

// ReadWorkbook loads the Compras and Precios sheets, extracts the image
// hyperlinks of the Preview column and joins brand and category onto
// purchase rows by exact description.
func ReadWorkbook(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	for _, sheet := range []string{SheetPurchases, SheetPrices} {
		if idx, _ := f.GetSheetIndex(sheet); idx == -1 {
			return nil, fmt.Errorf("workbook is missing sheet %q", sheet)
		}
	}

	prices, err := readPrices(f)
	if err != nil {
		return nil, err
	}
	purchases, err := readPurchases(f)
	if err != nil {
		return nil, err
	}

	// Image links live in the price sheet's Preview column, aligned by
	// row position with the purchase sheet.
	imageURLs := extractHyperlinks(f, SheetPrices, colImagePreview)
	for i := range purchases {
		if i < len(imageURLs) {
			purchases[i].ImageURL = imageURLs[i]
		}
	}

	byDescription := make(map[string]models.PriceRow, len(prices))
	for _, p := range prices {
		if _, ok := byDescription[p.Description]; !ok {
			byDescription[p.Description] = p
		}
	}
	for i := range purchases {
		if p, ok := byDescription[purchases[i].Description]; ok {
			purchases[i].Brand = p.Brand
			purchases[i].Category = p.Category
		}
	}

	return &Workbook{Purchases: purchases, Prices: prices}, nil
}

func readPurchases(f *excelize.File) ([]models.PurchaseRow, error) {
	rows, err := f.GetRows(SheetPurchases)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", SheetPurchases, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	idx := headerIndex(rows[0])
	if _, ok := idx[colDescription]; !ok {
		return nil, fmt.Errorf("%s sheet is missing column %q", SheetPurchases, colDescription)
	}

	out := make([]models.PurchaseRow, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if emptyRow(row) {
			continue
		}
		out = append(out, models.PurchaseRow{
			Description:        cell(row, idx, colDescription),
			Quantity:           anyCell(row, idx, colQuantity),
			UnitPrice:          anyCell(row, idx, colUnitPrice),
			UnitPriceUSD:       anyCell(row, idx, colUnitPriceUSD),
			DiscountPercentage: anyCell(row, idx, colDiscountPct),
			PiecesPerUnit:      anyCell(row, idx, colPieces),
			FinalCost:          anyCell(row, idx, colFinalCost),
			Total:              anyCell(row, idx, colTotal),
			PurchaseDate:       anyCell(row, idx, colPurchaseDate),
			DeliveryDate:       anyCell(row, idx, colDeliveryDate),
			ExchangeRate:       anyCell(row, idx, colExchangeRate),
			ShippingCost:       anyCell(row, idx, colShipping),
			Discount:           anyCell(row, idx, colDiscount),
			SourceURL:          cell(row, idx, colLink),
		})
	}
	return out, nil
}

func readPrices(f *excelize.File) ([]models.PriceRow, error) {
	rows, err := f.GetRows(SheetPrices)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", SheetPrices, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	idx := headerIndex(rows[0])

	out := make([]models.PriceRow, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if emptyRow(row) {
			continue
		}
		out = append(out, models.PriceRow{
			Description: cell(row, idx, colDescription),
			StorePrice:  anyCell(row, idx, colStorePrice),
			SalePrice:   anyCell(row, idx, colSalePrice),
			OfferPrice:  anyCell(row, idx, colOfferPrice),
			Brand:       cell(row, idx, colBrand),
			Category:    cell(row, idx, colCategory),
		})
	}
	return out, nil
}

// extractHyperlinks returns the hyperlink target of every data cell in
// the named column, empty string where a cell has none.
func extractHyperlinks(f *excelize.File, sheet, column string) []string {
	rows, err := f.GetRows(sheet)
	if err != nil || len(rows) == 0 {
		return nil
	}
	idx := headerIndex(rows[0])
	col, ok := idx[column]
	if !ok {
		util.GetLogger().Warn("hyperlink column not found",
			zap.String("sheet", sheet),
			zap.String("column", column))
		return make([]string, len(rows)-1)
	}

	out := make([]string, 0, len(rows)-1)
	for r := 2; r <= len(rows); r++ {
		cellName, err := excelize.CoordinatesToCellName(col+1, r)
		if err != nil {
			out = append(out, "")
			continue
		}
		ok, target, err := f.GetCellHyperLink(sheet, cellName)
		if err != nil || !ok {
			out = append(out, "")
			continue
		}
		out = append(out, target)
	}
	return out
}

func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[h] = i
	}
	return idx
}

func cell(row []string, idx map[string]int, column string) string {
	i, ok := idx[column]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// anyCell returns nil for an absent cell so coercion treats it as a
// missing value rather than an empty string.
func anyCell(row []string, idx map[string]int, column string) any {
	i, ok := idx[column]
	if !ok || i >= len(row) || row[i] == "" {
		return nil
	}
	return row[i]
}

func emptyRow(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}
