package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/e4rthen/storefront-backend/internal/app/model"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var requiredColumns = []string{"name", "price"}

type importResult struct {
	Products []model.Product
	Skipped  int
	Problems []string
}

// readProducts parses the first sheet of a workbook whose header row names
// the columns name, description, price and image_url in any order.
func readProducts(r io.Reader) (*importResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	columns := make(map[string]int)
	for i, header := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("missing column %q in header row", name)
		}
	}

	cell := func(row []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	result := &importResult{}
	for i, row := range rows[1:] {
		line := i + 2
		if len(strings.Join(row, "")) == 0 {
			continue
		}

		name := cell(row, "name")
		if name == "" {
			result.skip(line, "blank name")
			continue
		}
		price, err := decimal.NewFromString(cell(row, "price"))
		if err != nil || price.IsNegative() {
			result.skip(line, fmt.Sprintf("invalid price %q", cell(row, "price")))
			continue
		}

		result.Products = append(result.Products, model.Product{
			Name:        name,
			Description: cell(row, "description"),
			Price:       price.Round(2),
			ImageURL:    cell(row, "image_url"),
		})
	}
	return result, nil
}

func (r *importResult) skip(line int, reason string) {
	r.Skipped++
	r.Problems = append(r.Problems, fmt.Sprintf("row %d: %s", line, reason))
}
