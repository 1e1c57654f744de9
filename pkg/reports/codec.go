package reports

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	worklog_api "worklog/worklog-api"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrInvalidFile       = errors.New("invalid file")
)

// exportRecord is the wire shape shared by all export formats: the report
// without its owner and internal ID.
type exportRecord struct {
	Date    string `json:"date" xml:"date"`
	Minutes int    `json:"minutes" xml:"minutes"`
	Module  string `json:"module" xml:"module"`
	Content string `json:"content" xml:"content"`
}

type exportDocument struct {
	XMLName xml.Name       `xml:"reports"`
	Reports []exportRecord `xml:"report"`
}

// Export serializes records as "json", "csv" or "xml". JSON is an indented
// array, CSV carries a header row in fixed column order, XML wraps one
// <report> element per record under a <reports> root with a UTF-8
// declaration.
func Export(records []worklog_api.Report, format string) ([]byte, error) {
	rows := make([]exportRecord, 0, len(records))
	for _, r := range records {
		rows = append(rows, exportRecord{
			Date:    r.Date,
			Minutes: r.Minutes,
			Module:  r.Module,
			Content: r.Content,
		})
	}

	switch strings.ToLower(format) {
	case "json":
		b, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return nil, errors.Wrap(err, "encode json")
		}
		return b, nil
	case "csv":
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		_ = w.Write([]string{"date", "minutes", "module", "content"})
		for _, r := range rows {
			_ = w.Write([]string{r.Date, strconv.Itoa(r.Minutes), r.Module, r.Content})
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, errors.Wrap(err, "encode csv")
		}
		return buf.Bytes(), nil
	case "xml":
		b, err := xml.MarshalIndent(exportDocument{Reports: rows}, "", "  ")
		if err != nil {
			return nil, errors.Wrap(err, "encode xml")
		}
		return append([]byte(xml.Header), b...), nil
	}

	return nil, ErrUnsupportedFormat
}

// ImportCSV parses uploaded CSV text into report records, one per data row
// in file order. Header names match case-insensitively; a missing column
// falls back to empty, missing or unparseable minutes to 0. Unparseable CSV
// fails with ErrInvalidFile.
func ImportCSV(text string) ([]worklog_api.Report, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, ErrInvalidFile
	}
	if len(rows) == 0 {
		return []worklog_api.Report{}, nil
	}

	cols := map[string]int{}
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	out := make([]worklog_api.Report, 0, len(rows)-1)
	for _, row := range rows[1:] {
		minutes, err := strconv.Atoi(strings.TrimSpace(field(row, "minutes")))
		if err != nil {
			minutes = 0
		}
		out = append(out, worklog_api.Report{
			Date:    field(row, "date"),
			Minutes: minutes,
			Module:  field(row, "module"),
			Content: field(row, "content"),
		})
	}
	return out, nil
}
