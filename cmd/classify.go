package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabloom-cli/internal/prep"
	"github.com/KaramelBytes/tabloom-cli/internal/utils"
)

var (
	clsLoad loadFlags
	clsJSON bool
)

var classifyCmd = &cobra.Command{
	Use:   "classify <file>",
	Short: "List numeric and categorical columns of a dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return track("classify", func() error {
			ds, err := clsLoad.read(cmd, args[0])
			if err != nil {
				return err
			}
			numeric, categorical := prep.ClassifyColumns(ds)
			out := cmd.OutOrStdout()
			if clsJSON {
				b, err := utils.PrettyJSON(map[string][]string{"numeric": numeric, "categorical": categorical})
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(b))
				return nil
			}
			fmt.Fprintf(out, "Numeric (%d): %s\n", len(numeric), strings.Join(numeric, ", "))
			fmt.Fprintf(out, "Categorical (%d): %s\n", len(categorical), strings.Join(categorical, ", "))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	clsLoad.register(classifyCmd)
	classifyCmd.Flags().BoolVar(&clsJSON, "json", false, "print the classification as JSON")
}
