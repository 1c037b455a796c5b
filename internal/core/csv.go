package core

// csv.go implements the recipient CSV format.
//
// The format is deliberately minimal: lines are split on '\n' and fields on
// ',' with surrounding whitespace trimmed. There is no quoting, so a field
// value can never contain a literal comma. Encode writes the same dialect,
// which keeps Decode(Encode(x)) lossless for comma-free data.

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// DecodeResult holds the records accepted by DecodeReport together with the
// rows it excluded.
type DecodeResult struct {
	Headers    []string
	Recipients []Recipient
	Skipped    []RowSkipped
}

// Decode parses recipient CSV text.
//
// It fails only with *MissingHeadersError. Malformed rows are dropped and
// logged; an input without valid rows yields an empty slice, not an error.
func Decode(text string) ([]Recipient, error) {
	res, err := DecodeReport(text)
	if err != nil {
		return nil, err
	}
	return res.Recipients, nil
}

// DecodeReport is Decode with the per-row diagnostics exposed.
func DecodeReport(text string) (*DecodeResult, error) {
	return decodeAt(text, time.Now())
}

func decodeAt(text string, now time.Time) (*DecodeResult, error) {
	lines := strings.Split(text, "\n")
	headers := splitFields(lines[0])

	if missing := missingHeaders(headers); len(missing) > 0 {
		return nil, &MissingHeadersError{Missing: missing}
	}

	res := &DecodeResult{
		Headers:    headers,
		Recipients: make([]Recipient, 0, len(lines)-1),
	}
	stamp := now.UnixMilli()

	for i := 1; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}

		values := splitFields(line)
		if len(values) != len(headers) {
			res.skip(RowSkipped{
				Line:   i + 1,
				Got:    len(values),
				Want:   len(headers),
				Reason: fmt.Sprintf("row has %d fields, expected %d", len(values), len(headers)),
			})
			continue
		}

		row := make(map[string]string, len(headers))
		for j, h := range headers {
			row[h] = values[j]
		}

		rec, err := recipientFromRow(row)
		if err != nil {
			res.skip(RowSkipped{
				Line:   i + 1,
				Got:    len(values),
				Want:   len(headers),
				Reason: err.Error(),
			})
			continue
		}
		rec.ID = fmt.Sprintf("rec_%d_%d", stamp, i)
		res.Recipients = append(res.Recipients, rec)
	}

	return res, nil
}

func (r *DecodeResult) skip(s RowSkipped) {
	slog.Warn("skipping csv row", "line", s.Line, "fields", s.Got, "expected", s.Want, "reason", s.Reason)
	r.Skipped = append(r.Skipped, s)
}

// recipientFromRow builds a Recipient from a header->value map.
// Keys other than the known columns are kept in Extra.
func recipientFromRow(row map[string]string) (Recipient, error) {
	for _, h := range RequiredHeaders {
		if row[h] == "" {
			return Recipient{}, fmt.Errorf("empty required field %q", h)
		}
	}

	rec := Recipient{
		Name:         row[ColName],
		Email:        row[ColEmail],
		Organization: row[ColOrganization],
		Role:         row[ColRole],
		Achievement:  row[ColAchievement],
		Status:       StatusPending,
	}
	if s, ok := ParseStatus(row[ColStatus]); ok {
		rec.Status = s
	}

	for k, v := range row {
		switch k {
		case ColName, ColEmail, ColOrganization, ColRole, ColAchievement, ColStatus:
			continue
		}
		if rec.Extra == nil {
			rec.Extra = make(map[string]string)
		}
		rec.Extra[k] = v
	}

	return rec, nil
}

func missingHeaders(headers []string) []string {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}

	var missing []string
	for _, h := range RequiredHeaders {
		if !present[h] {
			missing = append(missing, h)
		}
	}
	return missing
}

func splitFields(line string) []string {
	fields := strings.Split(line, ",")
	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
	}
	return fields
}

// Encode serializes recipients in ExportColumns order.
// An absent status is written as an empty field.
func Encode(recipients []Recipient) string {
	lines := make([]string, 0, len(recipients)+1)
	lines = append(lines, strings.Join(ExportColumns, ","))

	values := make([]string, len(ExportColumns))
	for _, r := range recipients {
		for i, col := range ExportColumns {
			values[i] = r.Field(col)
		}
		lines = append(lines, strings.Join(values, ","))
	}

	return strings.Join(lines, "\n")
}

// SampleCSV returns the example recipient file offered for download.
func SampleCSV() string {
	return `name,email,organization,role,achievement
John Doe,john@example.com,Acme Corp,CTO,Led digital transformation
Jane Smith,jane@example.com,Tech Innovators,Research Director,Published groundbreaking AI research
Michael Johnson,michael@example.com,Global Solutions,VP Marketing,Increased market share by 35%
Sarah Brown,sarah@example.com,Future Institute,Professor,Awarded prestigious fellowship`
}
