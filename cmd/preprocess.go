package cmd

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabloom-cli/internal/dataset"
	"github.com/KaramelBytes/tabloom-cli/internal/export"
	"github.com/KaramelBytes/tabloom-cli/internal/logger"
	"github.com/KaramelBytes/tabloom-cli/internal/prep"
	"github.com/KaramelBytes/tabloom-cli/internal/runlog"
	"github.com/KaramelBytes/tabloom-cli/internal/utils"
)

var (
	ppLoad       loadFlags
	ppClean      []string
	ppScale      string
	ppOutputPath string
	ppManifest   bool
	ppQuiet      bool
)

var preprocessCmd = &cobra.Command{
	Use:   "preprocess <file>",
	Short: "Clean, scale and one-hot encode a dataset and export it as CSV",
	Long: `Runs the preprocessing pipeline on one file:

  1. classify columns as numeric (numbers, booleans) or categorical
  2. drop rows per --clean (none, drop-null-rows, drop-duplicate-rows, drop-outlier-rows)
  3. scale numeric columns per --scale (none, min-max, standard, robust, normalizer, max-abs)
  4. one-hot encode categorical columns and append them

The processed CSV goes to --output (or output_dir from config). Without
either it is written to stdout and the report to stderr.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return track("preprocess", func() error {
			cleaning, scaling, err := pipelineConfig(cmd, ppClean, ppScale)
			if err != nil {
				return err
			}
			path := args[0]
			ds, err := ppLoad.read(cmd, path)
			if err != nil {
				return err
			}

			outPath := ppOutputPath
			if outPath == "" && cfg != nil && cfg.OutputDir != "" {
				if err := utils.EnsureDir(cfg.OutputDir); err != nil {
					return fmt.Errorf("ensure output dir: %w", err)
				}
				if outPath, err = utils.UniquePath(cfg.OutputDir, outputBase(path, ppLoad.sheetName), ".csv"); err != nil {
					return err
				}
			}
			if ppManifest && outPath == "" {
				return errors.New("--manifest requires --output or output_dir in config")
			}
			report := cmd.OutOrStdout()
			if outPath == "" {
				report = cmd.ErrOrStderr()
			}
			if ppQuiet {
				report = io.Discard
			}

			m := runlog.New("preprocess", path)
			res, err := runPipeline(ds, cleaning, scaling)
			if err != nil {
				return err
			}
			writeReport(report, ds, res)

			if outPath == "" {
				return export.WriteCSV(cmd.OutOrStdout(), res.Dataset)
			}
			if err := export.WriteCSVFile(outPath, res.Dataset); err != nil {
				return err
			}
			fmt.Fprintf(report, "✓ Wrote %d rows × %d columns to %s\n", res.Dataset.NumRows(), res.Dataset.NumCols(), outPath)
			if ppManifest {
				m.Output = outPath
				m.SetPreprocess(cleaning, scaling, res.Diagnostics)
				m.Finish()
				mp := runlog.PathFor(outPath)
				if err := m.Save(mp); err != nil {
					return err
				}
				fmt.Fprintf(report, "✓ Wrote run manifest to %s\n", mp)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(preprocessCmd)
	ppLoad.register(preprocessCmd)
	preprocessCmd.Flags().StringSliceVar(&ppClean, "clean", nil, "cleaning methods, comma-separated (default from config)")
	preprocessCmd.Flags().StringVar(&ppScale, "scale", "", "scaling strategy (default from config, else none)")
	preprocessCmd.Flags().StringVarP(&ppOutputPath, "output", "o", "", "path to write the processed CSV")
	preprocessCmd.Flags().BoolVar(&ppManifest, "manifest", false, "write a run manifest (YAML) next to the output")
	preprocessCmd.Flags().BoolVar(&ppQuiet, "quiet", false, "suppress the report")
}

// pipelineConfig resolves --clean/--scale, falling back to the configured defaults.
func pipelineConfig(cmd *cobra.Command, clean []string, scale string) (prep.CleaningConfig, prep.Strategy, error) {
	if !cmd.Flags().Changed("clean") && cfg != nil {
		clean = cfg.DefaultCleaning
	}
	cleaning, err := prep.ParseCleaningConfig(clean...)
	if err != nil {
		return nil, 0, err
	}
	if !cmd.Flags().Changed("scale") && scale == "" && cfg != nil {
		scale = cfg.DefaultScaling
	}
	if scale == "" {
		scale = prep.ScaleNone.String()
	}
	scaling, err := prep.ParseStrategy(scale)
	if err != nil {
		return nil, 0, err
	}
	return cleaning, scaling, nil
}

// runPipeline preprocesses ds with the global logger and records metrics.
func runPipeline(ds *dataset.Dataset, cleaning prep.CleaningConfig, scaling prep.Strategy) (*prep.Result, error) {
	start := time.Now()
	p := prep.NewPreprocessor(prep.WithLogger(logger.Get()))
	res, err := p.Preprocess(ds, cleaning, scaling)
	if err != nil {
		return nil, err
	}
	recorder.ObservePreprocess(res.Diagnostics, time.Since(start))
	return res, nil
}

// outputBase names the processed file after the input, plus the sheet when set.
func outputBase(path, sheet string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if sheet != "" {
		base += "__sheet-" + utils.Slug(sheet, "sheet")
	}
	return base + ".prep"
}

func writeReport(w io.Writer, before *dataset.Dataset, res *prep.Result) {
	d := res.Diagnostics
	writeCounts(w, "BEFORE", before)
	fmt.Fprintf(w, "\n[COLUMNS]\nNumeric (%d): %s\nCategorical (%d): %s\n",
		len(d.Numeric), strings.Join(d.Numeric, ", "), len(d.Categorical), strings.Join(d.Categorical, ", "))
	if len(d.Cleaning.Steps) > 0 {
		fmt.Fprintln(w, "\n[CLEANING]")
		for _, s := range d.Cleaning.Steps {
			fmt.Fprintf(w, "- %s: removed %d row(s)", s.Method, s.Removed())
			if len(s.Columns) > 0 {
				parts := make([]string, 0, len(s.Columns))
				for _, cc := range s.Columns {
					parts = append(parts, fmt.Sprintf("%s %d", cc.Column, cc.Count))
				}
				fmt.Fprintf(w, " (%s)", strings.Join(parts, ", "))
			}
			fmt.Fprintln(w)
		}
	}
	fmt.Fprintf(w, "\n[SCALING]\n%s: %s\n", d.Scaling.Strategy, strings.Join(d.Scaling.Columns, ", "))
	if len(d.Encoding.Source) > 0 {
		fmt.Fprintf(w, "\n[ENCODING]\n%s → %s\n", strings.Join(d.Encoding.Source, ", "), strings.Join(d.Encoding.Columns, ", "))
	}
	fmt.Fprintln(w)
	writeCounts(w, "AFTER", res.Dataset)
	if len(d.Notes) > 0 {
		fmt.Fprintln(w, "\n[NOTES]")
		for _, n := range d.Notes {
			fmt.Fprintf(w, "- %s\n", n)
		}
	}
	fmt.Fprintln(w)
}

// writeCounts lists non-null counts per column.
func writeCounts(w io.Writer, title string, ds *dataset.Dataset) {
	fmt.Fprintf(w, "[%s] rows %d, columns %d\n", title, ds.NumRows(), ds.NumCols())
	for _, c := range ds.Columns() {
		fmt.Fprintf(w, "- %s: %s, non-null %d\n", c.Name(), c.Kind(), c.Len()-c.NullCount())
	}
}
