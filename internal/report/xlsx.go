package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

// moneyFormat is the Excel built-in "#,##0.00" number format.
const moneyFormat = 4

// WriteXLSX writes one sheet per section to path.
func WriteXLSX(r Report, path string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEEEE"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: moneyFormat})
	if err != nil {
		return fmt.Errorf("creating money style: %w", err)
	}

	for i, sec := range r.Sections {
		sheet := sheetName(sec.Title)
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("adding sheet %q: %w", sheet, err)
		}

		if err := writeSection(f, sheet, sec, headerStyle, moneyStyle); err != nil {
			return fmt.Errorf("writing %q: %w", sheet, err)
		}
	}

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:       r.Title,
		Identifier:  r.RunID,
		Created:     r.GeneratedAt.UTC().Format(time.RFC3339),
		Creator:     "runway",
		Description: "Rolling cash flow forecast",
	}); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

func writeSection(f *excelize.File, sheet string, sec Section, headerStyle, moneyStyle int) error {
	for c, col := range sec.Columns {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, col.Header); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return err
		}
		width := float64(max(len(col.Header)+2, 14))
		if c == 0 {
			width = 26
		}
		colName, _ := excelize.ColumnNumberToName(c + 1)
		if err := f.SetColWidth(sheet, colName, colName, width); err != nil {
			return err
		}
	}

	for r, row := range sec.Rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			kind := Text
			if c < len(sec.Columns) {
				kind = sec.Columns[c].Kind
			}
			if t, ok := v.(Typed); ok {
				v, kind = t.Value, t.Kind
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
			if _, isNum := v.(float64); isNum && kind == Money {
				if err := f.SetCellStyle(sheet, cell, cell, moneyStyle); err != nil {
					return err
				}
			}
		}
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// sheetName trims a title to Excel's 31-character sheet name limit.
func sheetName(title string) string {
	if len(title) > 31 {
		return title[:31]
	}
	return title
}
