package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabloom-cli/internal/dataset"
)

// loadFlags holds the input flags shared by every command that reads a file.
type loadFlags struct {
	delimiter  string
	decimal    string
	thousands  string
	maxRows    int
	sheetName  string
	sheetIndex int
}

func (lf *loadFlags) register(c *cobra.Command) {
	c.Flags().StringVar(&lf.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab'")
	c.Flags().StringVar(&lf.decimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (auto-detect if omitted)")
	c.Flags().StringVar(&lf.thousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space' (auto-detect if omitted)")
	c.Flags().IntVar(&lf.maxRows, "max-rows", 0, "maximum rows to read (0 = unlimited)")
	c.Flags().StringVar(&lf.sheetName, "sheet-name", "", "XLSX: sheet name to read")
	c.Flags().IntVar(&lf.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
}

// options merges flags over the configured defaults.
func (lf *loadFlags) options(c *cobra.Command) (dataset.LoadOptions, error) {
	opt := dataset.DefaultLoadOptions()
	delim, decimal, thousands, maxRows := lf.delimiter, lf.decimal, lf.thousands, lf.maxRows
	if cfg != nil {
		if !c.Flags().Changed("delimiter") && delim == "" {
			delim = cfg.Delimiter
		}
		if !c.Flags().Changed("decimal") && decimal == "" {
			decimal = cfg.DecimalSeparator
		}
		if !c.Flags().Changed("thousands") && thousands == "" {
			thousands = cfg.ThousandsSeparator
		}
		if !c.Flags().Changed("max-rows") && maxRows == 0 {
			maxRows = cfg.MaxRows
		}
	}
	switch delim {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", delim)
	}
	switch strings.ToLower(strings.TrimSpace(decimal)) {
	case ",", "comma":
		opt.DecimalSeparator = ','
	case ".", "dot":
		opt.DecimalSeparator = '.'
	case "":
	default:
		return opt, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", decimal)
	}
	switch strings.ToLower(strings.TrimSpace(thousands)) {
	case ",":
		opt.ThousandsSeparator = ','
	case ".":
		opt.ThousandsSeparator = '.'
	case "space", " ":
		opt.ThousandsSeparator = ' '
	case "":
	default:
		return opt, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", thousands)
	}
	if maxRows < 0 {
		return opt, fmt.Errorf("--max-rows must be >= 0")
	}
	opt.MaxRows = maxRows
	return opt, nil
}

// read loads path by extension, honouring the XLSX sheet selection.
func (lf *loadFlags) read(c *cobra.Command, path string) (*dataset.Dataset, error) {
	opt, err := lf.options(c)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return dataset.ReadXLSXFile(path, opt, lf.sheetName, lf.sheetIndex)
	}
	return dataset.ReadCSVFile(path, opt)
}
