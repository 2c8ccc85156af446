package yamnet

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// loadClassMap reads the class map file. The standard YAMNet format is a CSV
// with an "index,mid,display_name" header; a plain one-name-per-line file is
// also accepted.
func loadClassMap(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = file.Close()
	}()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing class map %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("class map %s is empty", path)
	}

	var names []string
	for i, record := range records {
		switch {
		case len(record) >= 3:
			// CSV format, skip the header row
			if i == 0 && strings.EqualFold(record[2], "display_name") {
				continue
			}
			names = append(names, record[2])
		case len(record) == 1:
			name := strings.TrimSpace(record[0])
			if name != "" {
				names = append(names, name)
			}
		}
	}

	if len(names) == 0 {
		return nil, fmt.Errorf("class map %s contains no class names", path)
	}

	return names, nil
}
