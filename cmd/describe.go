package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabloom-cli/internal/analysis"
)

var (
	descLoad       loadFlags
	descOutputPath string
	descSampleRows int
	descTopValues  int
	descGroupBy    []string
	descCorr       bool
	descOutliers   bool
	descOutlierThr float64
)

var describeCmd = &cobra.Command{
	Use:   "describe <file>",
	Short: "Summarise a CSV/TSV/XLSX dataset as Markdown",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return track("describe", func() error {
			path := args[0]
			ds, err := descLoad.read(cmd, path)
			if err != nil {
				return err
			}
			opt := analysis.DefaultOptions()
			if cmd.Flags().Changed("sample-rows") {
				opt.SampleRows = descSampleRows
			} else if cfg != nil {
				opt.SampleRows = cfg.SampleRows
			}
			if descTopValues > 0 {
				opt.TopValues = descTopValues
			}
			opt.GroupBy = descGroupBy
			opt.Correlations = descCorr
			opt.Outliers = descOutliers
			if descOutlierThr > 0 {
				opt.OutlierThreshold = descOutlierThr
			}
			md := analysis.Describe(filepath.Base(path), ds, opt).Markdown()

			if descOutputPath != "" {
				if err := os.WriteFile(descOutputPath, []byte(md), 0o644); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote description to %s\n", descOutputPath)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), md)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	descLoad.register(describeCmd)
	describeCmd.Flags().StringVarP(&descOutputPath, "output", "o", "", "optional path to write the description (Markdown)")
	describeCmd.Flags().IntVar(&descSampleRows, "sample-rows", 5, "number of head rows to include (0 disables)")
	describeCmd.Flags().IntVar(&descTopValues, "top-values", 8, "value counts listed per categorical column")
	describeCmd.Flags().StringSliceVar(&descGroupBy, "group-by", nil, "comma-separated column names to group by (repeatable)")
	describeCmd.Flags().BoolVar(&descCorr, "correlations", false, "compute Pearson correlations among numeric columns")
	describeCmd.Flags().BoolVar(&descOutliers, "outliers", false, "compute robust outlier counts (MAD)")
	describeCmd.Flags().Float64Var(&descOutlierThr, "outlier-threshold", 3.5, "robust |z| threshold for outliers (MAD-based)")
}
