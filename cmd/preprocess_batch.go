package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabloom-cli/internal/export"
	"github.com/KaramelBytes/tabloom-cli/internal/runlog"
	"github.com/KaramelBytes/tabloom-cli/internal/utils"
)

var (
	pbLoad     loadFlags
	pbClean    []string
	pbScale    string
	pbOutDir   string
	pbManifest bool
	pbQuiet    bool
)

var preprocessBatchCmd = &cobra.Command{
	Use:   "preprocess-batch <files...>",
	Short: "Preprocess multiple CSV/TSV/XLSX files into an output directory",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return track("preprocess-batch", func() error {
			files := expandInputs(args)
			if len(files) == 0 {
				return fmt.Errorf("no input files matched")
			}
			cleaning, scaling, err := pipelineConfig(cmd, pbClean, pbScale)
			if err != nil {
				return err
			}
			outDir := pbOutDir
			if outDir == "" && cfg != nil {
				outDir = cfg.OutputDir
			}
			if outDir == "" {
				return fmt.Errorf("--out-dir is required (or set output_dir in config)")
			}
			if err := utils.EnsureDir(outDir); err != nil {
				return fmt.Errorf("ensure output dir: %w", err)
			}

			out := cmd.OutOrStdout()
			if pbQuiet {
				out = io.Discard
			}
			total := len(files)
			for i, path := range files {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
				ds, err := pbLoad.read(cmd, path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				m := runlog.New("preprocess-batch", path)
				res, err := runPipeline(ds, cleaning, scaling)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				base := outputBase(path, pbLoad.sheetName)
				outFile, err := utils.UniquePath(outDir, base, ".csv")
				if err != nil {
					return err
				}
				if filepath.Base(outFile) != base+".csv" {
					fmt.Fprintf(out, "⚠ Detected existing output, writing to %s to avoid overwrite.\n", filepath.Base(outFile))
				}
				if err := export.WriteCSVFile(outFile, res.Dataset); err != nil {
					return err
				}
				d := res.Diagnostics
				fmt.Fprintf(out, "✓ %s: rows %d → %d, columns %d → %d\n", filepath.Base(outFile), d.RowsIn, d.RowsOut, d.ColsIn, d.ColsOut)
				if pbManifest {
					m.Output = outFile
					m.SetPreprocess(cleaning, scaling, d)
					m.Finish()
					if err := m.Save(runlog.PathFor(outFile)); err != nil {
						return err
					}
				}
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(preprocessBatchCmd)
	pbLoad.register(preprocessBatchCmd)
	preprocessBatchCmd.Flags().StringSliceVar(&pbClean, "clean", nil, "cleaning methods, comma-separated (default from config)")
	preprocessBatchCmd.Flags().StringVar(&pbScale, "scale", "", "scaling strategy (default from config, else none)")
	preprocessBatchCmd.Flags().StringVar(&pbOutDir, "out-dir", "", "directory for processed CSV files (default output_dir from config)")
	preprocessBatchCmd.Flags().BoolVar(&pbManifest, "manifest", false, "write a run manifest (YAML) next to each output")
	preprocessBatchCmd.Flags().BoolVar(&pbQuiet, "quiet", false, "suppress progress output")
}

// expandInputs resolves globs, keeps literal paths that exist and returns a
// sorted, de-duplicated list.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}
