package dataset

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ReadXLSXFile loads one worksheet of a .xlsx workbook. The first row is the
// header. If sheetName is empty the sheet is picked by its 1-based
// sheetIndex (values <= 0 mean the first sheet).
func ReadXLSXFile(p string, opt LoadOptions, sheetName string, sheetIndex int) (*Dataset, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read xlsx: %w", err)
	}
	wb, err := openWorkbook(b)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	target, err := wb.sheetPath(sheetName, sheetIndex)
	if err != nil {
		return nil, fmt.Errorf("%w in workbook '%s'", err, filepath.Base(p))
	}
	rr := newSheetRowReader(wb.file(target), wb.shared)
	header, ok := rr.Next()
	if !ok || len(header) == 0 {
		return Empty(0), nil
	}
	var rows [][]string
	for {
		if opt.MaxRows > 0 && len(rows) >= opt.MaxRows {
			break
		}
		row, ok := rr.Next()
		if !ok {
			break
		}
		rows = append(rows, row)
	}
	return FromRecords(header, rows, opt)
}

type workbook struct {
	zr     *zip.Reader
	sheets []wbSheet
	rels   map[string]string // relationship id -> target
	shared []string
}

type wbSheet struct {
	Name    string
	SheetID int
	RID     string
}

func openWorkbook(b []byte) (*workbook, error) {
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, err
	}
	wb := &workbook{zr: zr}
	wb.sheets = parseWorkbook(wb.file("xl/workbook.xml"))
	wb.rels = parseRelationships(wb.file("xl/_rels/workbook.xml.rels"))
	wb.shared = parseSharedStrings(wb.file("xl/sharedStrings.xml"))
	return wb, nil
}

// file returns the contents of a zip entry, or nil when absent.
func (wb *workbook) file(name string) []byte {
	for _, f := range wb.zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil
		}
		defer rc.Close()
		b, _ := io.ReadAll(rc)
		return b
	}
	return nil
}

func (wb *workbook) sheetPath(name string, index int) (string, error) {
	if name != "" {
		for _, s := range wb.sheets {
			if strings.EqualFold(s.Name, name) {
				if rel, ok := wb.rels[s.RID]; ok {
					return normalizeRelPath(rel), nil
				}
			}
		}
		avail := make([]string, len(wb.sheets))
		for i, s := range wb.sheets {
			avail[i] = s.Name
		}
		return "", fmt.Errorf("sheet '%s' not found (available: %s)", name, strings.Join(avail, ", "))
	}
	if index <= 0 {
		index = 1
	}
	for _, s := range wb.sheets {
		if s.SheetID == index {
			if rel, ok := wb.rels[s.RID]; ok {
				return normalizeRelPath(rel), nil
			}
		}
	}
	return fmt.Sprintf("xl/worksheets/sheet%d.xml", index), nil
}

// forEachStart calls fn for every start element in the document.
func forEachStart(data []byte, fn func(xml.StartElement)) {
	if len(data) == 0 {
		return
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return
		}
		if se, ok := tok.(xml.StartElement); ok {
			fn(se)
		}
	}
}

func parseWorkbook(data []byte) []wbSheet {
	var sheets []wbSheet
	forEachStart(data, func(se xml.StartElement) {
		if se.Name.Local != "sheet" {
			return
		}
		var s wbSheet
		for _, a := range se.Attr {
			switch a.Name.Local {
			case "name":
				s.Name = a.Value
			case "sheetId":
				s.SheetID = atoiSafe(a.Value)
			case "id":
				s.RID = a.Value
			}
		}
		sheets = append(sheets, s)
	})
	return sheets
}

func parseRelationships(data []byte) map[string]string {
	out := map[string]string{}
	forEachStart(data, func(se xml.StartElement) {
		if se.Name.Local != "Relationship" {
			return
		}
		var id, target string
		for _, a := range se.Attr {
			switch a.Name.Local {
			case "Id":
				id = a.Value
			case "Target":
				target = a.Value
			}
		}
		if id != "" && target != "" {
			out[id] = target
		}
	})
	return out
}

func parseSharedStrings(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	var out []string
	var buf strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		switch se := tok.(type) {
		case xml.StartElement:
			switch se.Name.Local {
			case "si":
				buf.Reset()
			case "t":
				inText = true
			}
		case xml.EndElement:
			switch se.Name.Local {
			case "t":
				inText = false
			case "si":
				out = append(out, buf.String())
			}
		case xml.CharData:
			if inText {
				buf.Write(se)
			}
		}
	}
}

// sheetRowReader streams rows of a worksheet as string cells.
type sheetRowReader struct {
	dec    *xml.Decoder
	shared []string
}

func newSheetRowReader(data []byte, shared []string) *sheetRowReader {
	return &sheetRowReader{dec: xml.NewDecoder(bytes.NewReader(data)), shared: shared}
}

// Next returns the next row, padded to its right-most referenced cell.
func (r *sheetRowReader) Next() ([]string, bool) {
	var row []string
	inRow := false
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return nil, false
		}
		switch se := tok.(type) {
		case xml.StartElement:
			switch {
			case se.Name.Local == "row":
				inRow, row = true, nil
			case inRow && se.Name.Local == "c":
				var ref, typ string
				for _, a := range se.Attr {
					switch a.Name.Local {
					case "r":
						ref = a.Value
					case "t":
						typ = a.Value
					}
				}
				col := colIndexFromRef(ref)
				if col < 0 {
					col = len(row)
				}
				for len(row) <= col {
					row = append(row, "")
				}
				row[col] = r.cellValue(typ)
			}
		case xml.EndElement:
			if se.Name.Local == "row" && inRow {
				return row, true
			}
		}
	}
}

// cellValue consumes tokens up to the end of the current <c> element.
func (r *sheetRowReader) cellValue(typ string) string {
	var val string
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return val
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "v" || se.Name.Local == "t" {
				var text struct {
					Body string `xml:",chardata"`
				}
				if err := r.dec.DecodeElement(&text, &se); err == nil {
					val = text.Body
				}
			}
		case xml.EndElement:
			if se.Name.Local != "c" {
				continue
			}
			if typ == "s" {
				idx := atoiSafe(val)
				if idx >= 0 && idx < len(r.shared) {
					return r.shared[idx]
				}
				return ""
			}
			return val
		}
	}
}

// colIndexFromRef maps a cell reference like "C12" to a 0-based column.
func colIndexFromRef(ref string) int {
	idx := 0
	for i := 0; i < len(ref); i++ {
		c := ref[i]
		switch {
		case c >= 'A' && c <= 'Z':
			idx = idx*26 + int(c-'A'+1)
		case c >= 'a' && c <= 'z':
			idx = idx*26 + int(c-'a'+1)
		default:
			return idx - 1
		}
	}
	return idx - 1
}

func atoiSafe(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
	}
	return n
}

// normalizeRelPath converts relationship targets ("/xl/worksheets/sheet1.xml",
// "worksheets/sheet1.xml") to zip entry names.
func normalizeRelPath(rel string) string {
	rel = strings.TrimPrefix(rel, "/")
	if strings.HasPrefix(rel, "xl/") {
		return rel
	}
	return path.Join("xl", rel)
}
