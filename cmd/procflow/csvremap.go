package main

import (
	"bufio"
	"io"
	"strings"
)

// remapCSVHeader rewrites the first line of a CSV stream, renaming mapped
// columns to their canonical names. The rest of the stream passes through
// untouched. Keys in mapping must be lowercase.
func remapCSVHeader(r io.Reader, mapping map[string]string) (io.Reader, error) {
	if len(mapping) == 0 {
		return r, nil
	}

	br := bufio.NewReader(r)
	header, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, err
	}

	line := strings.TrimRight(header, "\r\n")
	fields := splitCSVLine(line)
	for i, field := range fields {
		if canonical, ok := mapping[strings.ToLower(strings.TrimSpace(field))]; ok {
			fields[i] = canonical
		}
	}

	rewritten := strings.Join(fields, ",") + header[len(line):]
	return io.MultiReader(strings.NewReader(rewritten), br), nil
}

// splitCSVLine splits one CSV line honoring quoted fields. Quotes are kept
// verbatim so unmapped fields survive the round trip.
func splitCSVLine(line string) []string {
	var fields []string
	var field strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			inQuotes = !inQuotes
			field.WriteByte(c)
		case c == ',' && !inQuotes:
			fields = append(fields, field.String())
			field.Reset()
		default:
			field.WriteByte(c)
		}
	}
	fields = append(fields, field.String())
	return fields
}
