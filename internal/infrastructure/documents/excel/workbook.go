package excel

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ContentType type MIME des classeurs générés
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sheet une feuille: en-têtes puis lignes
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]interface{}
	Widths  map[int]float64
}

// WriteWorkbook construit un classeur contenant les feuilles données, dans l'ordre
func WriteWorkbook(sheets ...Sheet) ([]byte, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("classeur sans feuille")
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#1F4E79"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("style en-tête: %w", err)
	}

	defaultSheet := f.GetSheetName(0)
	for i, sheet := range sheets {
		name := SafeSheetName(sheet.Name)
		if i == 0 {
			f.SetSheetName(defaultSheet, name)
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("création feuille %s: %w", name, err)
		}

		if err := writeSheet(f, name, sheet, headerStyle); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("écriture classeur: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, name string, sheet Sheet, headerStyle int) error {
	if len(sheet.Headers) > 0 {
		headers := make([]interface{}, len(sheet.Headers))
		for i, h := range sheet.Headers {
			headers[i] = h
		}
		if err := f.SetSheetRow(name, "A1", &headers); err != nil {
			return fmt.Errorf("en-têtes %s: %w", name, err)
		}
		last, _ := excelize.CoordinatesToCellName(len(headers), 1)
		if err := f.SetCellStyle(name, "A1", last, headerStyle); err != nil {
			return fmt.Errorf("style %s: %w", name, err)
		}
		for col := 1; col <= len(headers); col++ {
			width, ok := sheet.Widths[col-1]
			if !ok {
				width = 18
			}
			colName, _ := excelize.ColumnNumberToName(col)
			if err := f.SetColWidth(name, colName, colName, width); err != nil {
				return err
			}
		}
	}

	start := 1
	if len(sheet.Headers) > 0 {
		start = 2
	}
	for i, row := range sheet.Rows {
		cell, _ := excelize.CoordinatesToCellName(1, start+i)
		values := row
		if err := f.SetSheetRow(name, cell, &values); err != nil {
			return fmt.Errorf("ligne %d de %s: %w", start+i, name, err)
		}
	}
	return nil
}

// ReadFirstSheet lit toutes les lignes de la première feuille. Les valeurs sont
// brutes: une cellule date arrive sous forme de numéro de série.
func ReadFirstSheet(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("classeur illisible: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("classeur vide")
	}
	return f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
}

// SafeSheetName respecte les contraintes Excel: 31 caractères, sans []:*?/\
func SafeSheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', ':', '*', '?', '/', '\\':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" {
		name = "Feuille"
	}
	if runes := []rune(name); len(runes) > 31 {
		name = string(runes[:31])
	}
	return name
}
