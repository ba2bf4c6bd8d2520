package importers

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

// Sheet is a decoded grid of cells. Rows may have different lengths.
type Sheet struct {
	Name string
	Rows [][]string
}

// DecodeFile picks a decoder from the file extension. sheetName is only used
// for workbooks; empty selects the first sheet.
func DecodeFile(filename string, r io.Reader, sheetName string) (*Sheet, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".tsv", ".txt":
		return ReadCSV(r)
	case ".xlsx", ".xlsm":
		return ReadXLSX(r, sheetName)
	case ".json":
		return ReadJSONRows(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// ReadCSV decodes delimited text. The delimiter is sniffed from the first
// non-empty line; input that is not valid UTF-8 is read as Windows-1252.
func ReadCSV(r io.Reader) (*Sheet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode CSV as Windows-1252: %w", err)
		}
		data = decoded
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading line %d: %w", len(rows)+1, err)
		}
		rows = append(rows, record)
	}

	return &Sheet{Name: "csv", Rows: rows}, nil
}

// sniffLines is how many non-empty lines vote on the delimiter, so a title
// line above the table does not decide it alone.
const sniffLines = 10

func sniffDelimiter(data []byte) rune {
	counts := map[rune]int{}
	seen := 0
	for _, l := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(l) == "" {
			continue
		}
		for _, candidate := range []rune{',', ';', '\t'} {
			counts[candidate] += countOutsideQuotes(l, candidate)
		}
		if seen++; seen == sniffLines {
			break
		}
	}

	best, bestCount := ',', 0
	for _, candidate := range []rune{',', ';', '\t'} {
		if counts[candidate] > bestCount {
			best, bestCount = candidate, counts[candidate]
		}
	}
	return best
}

func countOutsideQuotes(line string, sep rune) int {
	count := 0
	quoted := false
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
		case r == sep && !quoted:
			count++
		}
	}
	return count
}

// ReadXLSX decodes one worksheet of a workbook. Cell values are read raw so
// that number formats cannot turn a 13-digit ISBN into "9.79E+12".
func ReadXLSX(r io.Reader, sheetName string) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in Excel file")
	}

	name := sheets[0]
	if sheetName != "" {
		name = ""
		for _, s := range sheets {
			if strings.EqualFold(s, sheetName) {
				name = s
				break
			}
		}
		if name == "" {
			return nil, fmt.Errorf("sheet %q not found in workbook", sheetName)
		}
	}

	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", name, err)
	}

	return &Sheet{Name: name, Rows: rows}, nil
}

// ReadJSONRows accepts either an array of arrays or an array of objects. For
// objects the sorted union of keys becomes the first row. Numbers keep their
// literal text.
func ReadJSONRows(r io.Reader) (*Sheet, error) {
	decoder := json.NewDecoder(r)
	decoder.UseNumber()

	var raw []json.RawMessage
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode JSON rows: %w", err)
	}
	if len(raw) == 0 {
		return &Sheet{Name: "json"}, nil
	}

	if bytes.HasPrefix(bytes.TrimSpace(raw[0]), []byte("{")) {
		return jsonObjectRows(raw)
	}

	rows := make([][]string, 0, len(raw))
	for i, msg := range raw {
		var cells []interface{}
		if err := unmarshalNumbers(msg, &cells); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		row := make([]string, len(cells))
		for j, v := range cells {
			row[j] = jsonCellString(v)
		}
		rows = append(rows, row)
	}
	return &Sheet{Name: "json", Rows: rows}, nil
}

func jsonObjectRows(raw []json.RawMessage) (*Sheet, error) {
	objects := make([]map[string]interface{}, 0, len(raw))
	keySet := make(map[string]struct{})
	for i, msg := range raw {
		var obj map[string]interface{}
		if err := unmarshalNumbers(msg, &obj); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		for k := range obj {
			keySet[k] = struct{}{}
		}
		objects = append(objects, obj)
	}

	keys := make([]string, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(objects)+1)
	rows = append(rows, keys)
	for _, obj := range objects {
		row := make([]string, len(keys))
		for j, k := range keys {
			row[j] = jsonCellString(obj[k])
		}
		rows = append(rows, row)
	}
	return &Sheet{Name: "json", Rows: rows}, nil
}

func unmarshalNumbers(msg json.RawMessage, v interface{}) error {
	d := json.NewDecoder(bytes.NewReader(msg))
	d.UseNumber()
	return d.Decode(v)
}

func jsonCellString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(val)
	}
}
