package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/aimanagement-dev/archipielago-production-sub001/pkg/model"
)

// ParseCSV reads a spreadsheet export into candidate rows. The first
// record is a header; columns are matched by name, case-insensitively:
// title, month, area, week, status, date, time, responsible.
// Responsible cells hold semicolon-separated emails. Rows with no
// title are dropped.
func ParseCSV(r io.Reader) ([]model.Candidate, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := cols["title"]; !ok {
		return nil, fmt.Errorf("header row has no 'title' column")
	}

	field := func(record []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var candidates []model.Candidate
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}

		c := model.Candidate{
			Title:         field(record, "title"),
			Month:         field(record, "month"),
			Area:          field(record, "area"),
			Week:          field(record, "week"),
			Status:        field(record, "status"),
			ScheduledDate: field(record, "date"),
			ScheduledTime: field(record, "time"),
		}
		if c.Title == "" {
			continue
		}
		if raw := field(record, "responsible"); raw != "" {
			for _, email := range strings.Split(raw, ";") {
				if email = strings.TrimSpace(email); email != "" {
					c.Responsible = append(c.Responsible, email)
				}
			}
		}
		candidates = append(candidates, c)
	}

	return candidates, nil
}
