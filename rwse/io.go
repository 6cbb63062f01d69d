package rwse

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// ParseConfusionSetsFile reads confusion-set groups from a CSV-like file: one
// group per non-empty row, members separated by commas. Lines starting with
// '#' are skipped. Validation (minimum members, cross-group duplicates)
// happens when the groups are passed to Configure.
func ParseConfusionSetsFile(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open confusion sets: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.Comment = '#'
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse confusion sets: %w", err)
	}

	groups := make([][]string, 0, len(records))
	for _, record := range records {
		group := make([]string, 0, len(record))
		for _, field := range record {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			group = append(group, field)
		}
		if len(group) == 0 {
			continue
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// ParseConfusionSets converts raw text into groups, one per line, members
// separated by commas or semicolons.
func ParseConfusionSets(data string) [][]string {
	data = strings.ReplaceAll(data, "\r\n", "\n")
	var groups [][]string
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		tokens := strings.FieldsFunc(line, func(r rune) bool {
			return r == ',' || r == ';'
		})
		group := make([]string, 0, len(tokens))
		for _, token := range tokens {
			token = strings.TrimSpace(token)
			if token == "" {
				continue
			}
			group = append(group, token)
		}
		if len(group) > 0 {
			groups = append(groups, group)
		}
	}
	return groups
}
