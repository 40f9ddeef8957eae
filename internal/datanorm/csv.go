// Package datanorm turns spreadsheet exports into rows and fields the rest of
// the service can reason about: a quote-aware CSV tokenizer, header alias
// resolution, and the free-text predicates spreadsheet users type into
// status columns.
package datanorm

import "strings"

// ParseCSV splits CSV text into rows of trimmed cells.
//
// Quoted fields may contain commas, line breaks and doubled quotes. Rows whose
// cells are all empty are dropped. Malformed quoting never fails: an
// unterminated quote consumes the rest of the input as one field.
func ParseCSV(text string) [][]string {
	var (
		rows     [][]string
		row      []string
		cell     strings.Builder
		inQuotes bool
	)

	endCell := func() {
		row = append(row, strings.TrimSpace(cell.String()))
		cell.Reset()
	}
	endRow := func() {
		endCell()
		if !blankRow(row) {
			rows = append(rows, row)
		}
		row = nil
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(text) && text[i+1] == '"' {
				cell.WriteByte('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case inQuotes:
			cell.WriteByte(c)
		case c == ',':
			endCell()
		case c == '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			endRow()
		case c == '\n':
			endRow()
		default:
			cell.WriteByte(c)
		}
	}

	if cell.Len() > 0 || len(row) > 0 {
		endRow()
	}
	return rows
}

func blankRow(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}
