package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

func extractExcel(content []byte, limit int) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("open Excel: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.Rows(sheet)
		if err != nil {
			return "", fmt.Errorf("rows for sheet %q: %w", sheet, err)
		}
		for rows.Next() && !enough(&b, limit) {
			cols, err := rows.Columns()
			if err != nil {
				_ = rows.Close()
				return "", fmt.Errorf("read row in sheet %q: %w", sheet, err)
			}
			if line := strings.TrimSpace(strings.Join(cols, "\t")); line != "" {
				b.WriteString(line)
				b.WriteByte('\n')
			}
		}
		if err := rows.Close(); err != nil {
			return "", fmt.Errorf("close rows for sheet %q: %w", sheet, err)
		}
		if enough(&b, limit) {
			break
		}
	}
	return strings.TrimSpace(b.String()), nil
}
