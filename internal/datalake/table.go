package datalake

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/scoutlabs/retail-pulse/internal/source"
)

// parseTable turns a delimited-text blob into ordered records validated
// against the declared schema. The first line is the header; a blob with
// fewer than two lines yields an empty table, never an error.
//
// The format is the lake's export convention: comma-delimited, optional
// surrounding double quotes per field, no embedded delimiters.
func parseTable(data []byte, schema Schema) ([]Record, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	lines := splitNonEmptyLines(text)
	if len(lines) < 2 {
		return []Record{}, nil
	}

	header := splitFields(lines[0])
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	records := make([]Record, 0, len(lines)-1)
	for lineNo, line := range lines[1:] {
		fields := splitFields(line)
		if len(fields) != len(header) {
			return nil, &source.ParseError{
				Table: schema.Table,
				Line:  lineNo + 1,
				Cause: fmt.Errorf("row has %d fields, header has %d", len(fields), len(header)),
			}
		}

		rec := make(Record, len(fields))
		for i, cell := range fields {
			name := header[i]
			col, declared := schema.column(name)
			if !declared {
				// Extra columns the schema does not know are carried as text
				// so a lake-side export change does not break parsing.
				rec[name] = cell
				continue
			}
			switch col.Kind {
			case KindNumber:
				n, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
				if err != nil {
					return nil, &source.ParseError{
						Table:  schema.Table,
						Line:   lineNo + 1,
						Column: name,
						Cause:  fmt.Errorf("%q is not a number", cell),
					}
				}
				rec[name] = n
			default:
				rec[name] = cell
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func splitNonEmptyLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// splitFields splits one line on the field delimiter and strips surrounding
// quote characters from each cell.
func splitFields(line string) []string {
	fields := strings.Split(line, ",")
	for i, f := range fields {
		f = strings.TrimSpace(f)
		if len(f) >= 2 && f[0] == '"' && f[len(f)-1] == '"' {
			f = f[1 : len(f)-1]
		}
		fields[i] = f
	}
	return fields
}
