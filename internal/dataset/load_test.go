package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var csvRows = []string{
	"Group;Concentration (g/L);Temp (°F);Score;LocaleNumber;Category;Note",
	"A;0,5;70;10,0;1.000,0;alpha;first",
	"A;0,6;71;11,0;1.100,0;alpha;second",
	"A;0,55;69;9,5;0.900,0;beta;third",
	"B;0,7;75;10,5;1.050,0;alpha;fourth",
	"B;0,65;74;9,8;0.980,0;beta;fifth",
}

func TestReadCSVFileLocaleNumbers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.csv")
	if err := os.WriteFile(path, []byte(strings.Join(csvRows, "\n")), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	opt := DefaultLoadOptions()
	opt.Delimiter = ';'
	opt.DecimalSeparator = ','
	opt.ThousandsSeparator = '.'
	ds, err := ReadFile(path, opt)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if ds.NumRows() != 5 || ds.NumCols() != 7 {
		t.Fatalf("shape = %dx%d", ds.NumRows(), ds.NumCols())
	}
	locale, _ := ds.Column("LocaleNumber")
	want := []float64{1000, 1100, 900, 1050, 980}
	for i, w := range want {
		if locale.Float(i) != w {
			t.Fatalf("locale[%d] = %v, want %v", i, locale.Float(i), w)
		}
	}
	score, _ := ds.Column("Score")
	if score.Kind() != Numeric || score.Float(2) != 9.5 {
		t.Fatalf("score[2] = %v", score.Float(2))
	}
}

func TestReadCSVInfersKindsAndNulls(t *testing.T) {
	in := "age,city,member,empty\n25,NY,true,\nNA,LA,False,\n31,,TRUE,\n"
	ds, err := ReadCSV(strings.NewReader(in), DefaultLoadOptions())
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	checks := map[string]Kind{"age": Numeric, "city": Categorical, "member": Boolean, "empty": Numeric}
	for name, k := range checks {
		c, ok := ds.Column(name)
		if !ok || c.Kind() != k {
			t.Fatalf("%s kind mismatch", name)
		}
	}
	age, _ := ds.Column("age")
	if !age.IsNull(1) || age.Float(2) != 31 {
		t.Fatalf("age = %v", age.Floats())
	}
	city, _ := ds.Column("city")
	if !city.IsNull(2) {
		t.Fatalf("blank city should be null")
	}
	member, _ := ds.Column("member")
	if !member.Bool(0) || member.Bool(1) || !member.Bool(2) {
		t.Fatalf("member parse mismatch")
	}
	empty, _ := ds.Column("empty")
	if empty.NullCount() != 3 {
		t.Fatalf("empty nulls = %d", empty.NullCount())
	}
}

func TestReadCSVMaxRowsAndEmptyInput(t *testing.T) {
	opt := DefaultLoadOptions()
	opt.MaxRows = 2
	ds, err := ReadCSV(strings.NewReader("x\n1\n2\n3\n"), opt)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if ds.NumRows() != 2 {
		t.Fatalf("rows = %d, want 2", ds.NumRows())
	}
	empty, err := ReadCSV(strings.NewReader(""), opt)
	if err != nil || empty.NumCols() != 0 || empty.NumRows() != 0 {
		t.Fatalf("empty input: %v", err)
	}
	headerOnly, err := ReadCSV(strings.NewReader("a,b\n"), opt)
	if err != nil || headerOnly.NumCols() != 2 || headerOnly.NumRows() != 0 {
		t.Fatalf("header only: %v", err)
	}
}

func TestUniqueNames(t *testing.T) {
	got := uniqueNames([]string{"a", "a", "", "a.1", "a"})
	want := []string{"a", "a.1", "Unnamed: 2", "a.1.1", "a.2"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("uniqueNames = %#v, want %#v", got, want)
	}
}

func TestParseNumericAutoDetect(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1,234.5", 1234.5, true},
		{"1.234,5", 1234.5, true},
		{"0,25", 0.25, true},
		{"12%", 12, true},
		{"-3e2", -300, true},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, ok := parseNumeric(c.in, LoadOptions{})
		if ok != c.ok || (ok && got != c.want) {
			t.Errorf("parseNumeric(%q) = %v,%v want %v,%v", c.in, got, ok, c.want, c.ok)
		}
	}
}
