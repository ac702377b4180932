package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// LoadOptions controls how raw tabular text becomes a Dataset.
type LoadOptions struct {
	// Delimiter for CSV. If 0, picked from the file extension (',' or '\t').
	Delimiter rune
	// Numeric parsing locale. If DecimalSeparator is 0, auto-detect per value.
	DecimalSeparator   rune
	ThousandsSeparator rune // optional; if 0, auto-detect common separators (',' '.' space)
	// MaxRows limits rows read; 0 means unlimited.
	MaxRows int
	// NullValues are cell tokens read as missing (compared after trimming).
	NullValues []string
}

// DefaultLoadOptions returns the null tokens pandas recognises by default.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		NullValues: []string{"", "NA", "N/A", "n/a", "NaN", "nan", "null", "NULL", "None", "<NA>"},
	}
}

// ReadFile loads a CSV, TSV or XLSX file, choosing the reader by extension.
func ReadFile(path string, opt LoadOptions) (*Dataset, error) {
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return ReadXLSXFile(path, opt, "", 1)
	}
	return ReadCSVFile(path, opt)
}

// ReadCSVFile loads a delimited text file.
func ReadCSVFile(path string, opt LoadOptions) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	if opt.Delimiter == 0 {
		opt.Delimiter = sniffDelimiter(path)
	}
	return ReadCSV(f, opt)
}

// ReadCSV loads delimited text with a header row from r.
func ReadCSV(r io.Reader, opt LoadOptions) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	if opt.Delimiter != 0 {
		cr.Comma = opt.Delimiter
	}
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Empty(0), nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	header = append([]string(nil), header...)
	var rows [][]string
	for {
		if opt.MaxRows > 0 && len(rows) >= opt.MaxRows {
			break
		}
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, rec)
	}
	return FromRecords(header, rows, opt)
}

// FromRecords infers a kind for every column and builds a Dataset.
// A column is boolean when every present cell is true/false, numeric when
// every present cell parses as a number (an all-missing column is numeric),
// and categorical otherwise.
func FromRecords(header []string, rows [][]string, opt LoadOptions) (*Dataset, error) {
	ncol := len(header)
	if ncol == 0 {
		return Empty(0), nil
	}
	nulls := make(map[string]struct{}, len(opt.NullValues))
	for _, v := range opt.NullValues {
		nulls[strings.TrimSpace(v)] = struct{}{}
	}
	names := uniqueNames(header)
	cols := make([]*Column, ncol)
	cells := make([]string, len(rows))
	missing := make([]bool, len(rows))
	for j := 0; j < ncol; j++ {
		for i, rec := range rows {
			v := ""
			if j < len(rec) {
				v = strings.TrimSpace(rec[j])
			}
			_, isNull := nulls[v]
			cells[i], missing[i] = v, isNull
		}
		cols[j] = inferColumn(names[j], cells, missing, opt)
	}
	return build(len(rows), cols)
}

func inferColumn(name string, cells []string, missing []bool, opt LoadOptions) *Column {
	isBool, isNum := true, true
	present := 0
	for i, v := range cells {
		if missing[i] {
			continue
		}
		present++
		if isBool {
			if _, ok := parseBool(v); !ok {
				isBool = false
			}
		}
		if isNum {
			if _, ok := parseNumeric(v, opt); !ok {
				isNum = false
			}
		}
		if !isBool && !isNum {
			break
		}
	}
	switch {
	case present > 0 && isBool:
		vals := make([]bool, len(cells))
		for i, v := range cells {
			if !missing[i] {
				vals[i], _ = parseBool(v)
			}
		}
		return NewBoolean(name, vals, missing)
	case isNum:
		vals := make([]float64, len(cells))
		for i, v := range cells {
			if missing[i] {
				vals[i] = math.NaN()
				continue
			}
			vals[i], _ = parseNumeric(v, opt)
		}
		return NewNumeric(name, vals)
	default:
		return NewCategorical(name, cells, missing)
	}
}

// uniqueNames fills blank headers and suffixes repeats (a, a.1, a.2).
func uniqueNames(header []string) []string {
	out := make([]string, len(header))
	seen := map[string]int{}
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if _, dup := seen[name]; dup {
			base, k := name, seen[name]
			for {
				k++
				cand := fmt.Sprintf("%s.%d", base, k)
				if _, taken := seen[cand]; !taken {
					name = cand
					break
				}
			}
			seen[base] = k
		}
		seen[name] = 0
		out[i] = name
	}
	return out
}

func parseBool(s string) (bool, bool) {
	switch s {
	case "true", "True", "TRUE":
		return true, true
	case "false", "False", "FALSE":
		return false, true
	}
	return false, false
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

func parseNumeric(s string, opt LoadOptions) (float64, bool) {
	raw := strings.TrimSpace(s)
	if strings.Contains(raw, "%") {
		raw = strings.ReplaceAll(raw, "%", "")
	}
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	dec := opt.DecimalSeparator
	thou := opt.ThousandsSeparator
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		switch {
		case cpos >= 0 && dpos >= 0:
			if cpos > dpos {
				dec, thou = ',', '.'
			} else {
				dec, thou = '.', ','
			}
		case cpos >= 0:
			dec = ','
		default:
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
