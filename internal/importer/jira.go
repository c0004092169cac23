package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Jira export column headers, matched case-insensitively.
const (
	colSummary     = "summary"
	colIssueKey    = "issue key"
	colIssueID     = "issue id"
	colIssueType   = "issue type"
	colParent      = "parent"
	colStoryPoints = "custom field (story point estimate)"
)

// ParseJiraCSV reads a Jira issue export. Story points become hours, and a
// blank estimate defaults to one hour.
func ParseJiraCSV(r io.Reader) ([]TaskImport, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("jira csv: empty file")
		}
		return nil, fmt.Errorf("jira csv: reading header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := cols[h]; !dup {
			cols[h] = i
		}
	}
	for _, required := range []string{colSummary, colIssueID} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("jira csv: missing %q column", required)
		}
	}

	field := func(rec []string, col string) string {
		i, ok := cols[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var tasks []TaskImport
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("jira csv: %w", err)
		}
		if isBlank(rec) {
			continue
		}

		t := TaskImport{
			ID:     field(rec, colIssueID),
			Key:    field(rec, colIssueKey),
			Title:  field(rec, colSummary),
			Type:   field(rec, colIssueType),
			Parent: field(rec, colParent),
		}
		if raw := field(rec, colStoryPoints); raw != "" {
			h, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("jira csv line %d: story point estimate %q is not a number", line, raw)
			}
			t.Hours = &h
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
