package dataprocessing

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"flowplate/pkg/contracts/domain"
)

// orderColumn is the 0-based index of the designated ordering column in an
// annotation grid (the 14th spreadsheet column).
const orderColumn = 13

// maxPlateRows bounds plate rows to single letters A–Z.
const maxPlateRows = 26

// ParsePlateGrid turns a raw annotation grid into a plate map plus an
// optional declared label ordering.
//
// Column 0 holds row labels and is ignored; grid row 0 is plate row "A" (no
// header is skipped here). Trailing rows whose cells in columns 1..end are all
// blank are ignored. Every non-blank cell becomes one well assignment, keyed
// by row letter plus zero-padded column number. The declared ordering is read
// top-to-bottom from the designated order column, dropping blanks; it is nil
// when the grid never reaches that column or the column is entirely blank.
func ParsePlateGrid(grid [][]string) (*domain.PlateMap, []string, error) {
	lastRow := -1
	for r := len(grid) - 1; r >= 0; r-- {
		if rowHasData(grid[r]) {
			lastRow = r
			break
		}
	}

	if lastRow >= maxPlateRows {
		return nil, nil, fmt.Errorf("plate grid has %d active rows, beyond plate row Z", lastRow+1)
	}

	plate := domain.NewPlateMap()
	for r := 0; r <= lastRow; r++ {
		for c := 1; c < len(grid[r]); c++ {
			cell := strings.TrimSpace(grid[r][c])
			if cell == "" {
				continue
			}
			plate.Set(domain.WellIDForCell(r, c), cell)
		}
	}

	var order []string
	for _, row := range grid {
		if orderColumn >= len(row) {
			continue
		}
		if v := strings.TrimSpace(row[orderColumn]); v != "" {
			order = append(order, v)
		}
	}

	return plate, order, nil
}

// LoadPlateMap reads an annotation spreadsheet and parses its first sheet
// into a plate map and declared ordering. The single physical header row is
// skipped before parsing, so the first data row maps to plate row "A". On any
// failure no partial map is returned.
func LoadPlateMap(path string) (*domain.PlateMap, []string, error) {
	grid, err := readFirstSheet(path)
	if err != nil {
		return nil, nil, err
	}
	if len(grid) > 0 {
		grid = grid[1:]
	}
	plate, order, err := ParsePlateGrid(grid)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse plate map %s: %w", path, err)
	}
	return plate, order, nil
}

// readFirstSheet decodes the first worksheet of an .xlsx file into a raw cell
// grid.
func readFirstSheet(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no worksheets in %s", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func rowHasData(row []string) bool {
	for c := 1; c < len(row); c++ {
		if strings.TrimSpace(row[c]) != "" {
			return true
		}
	}
	return false
}
