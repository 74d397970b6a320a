package export

// Dataset is a table whose rows are keyed by header name.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// Records lays the rows out in header order. Cells a row does not carry are empty.
func (d Dataset) Records() [][]string {
	records := make([][]string, 0, len(d.Rows))
	for _, row := range d.Rows {
		record := make([]string, len(d.Headers))
		for i, header := range d.Headers {
			record[i] = row[header]
		}
		records = append(records, record)
	}
	return records
}
