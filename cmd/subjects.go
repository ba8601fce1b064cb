package cmd

import (
	"fmt"

	"github.com/KaramelBytes/markboard-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	subSheetName string
	subDelimiter string
	subInput     string
	subJSON      bool
)

var subjectsCmd = &cobra.Command{
	Use:   "subjects <file>",
	Short: "List the subjects present for the configured course",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := loadSession(cmd, args[0], subInput, subSheetName, subDelimiter)
		if err != nil {
			return err
		}
		snap := sess.Snapshot()
		w := cmd.OutOrStdout()
		if subJSON {
			b, err := utils.PrettyJSON(snap.Subjects)
			if err != nil {
				return err
			}
			_, err = w.Write(b)
			return err
		}
		if len(snap.Subjects) == 0 {
			fmt.Fprintln(w, "No subjects found")
			return nil
		}
		for _, s := range snap.Subjects {
			fmt.Fprintf(w, "- %s\n", s)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(subjectsCmd)
	subjectsCmd.Flags().StringVar(&subSheetName, "sheet", "", "XLSX: sheet name (default first sheet)")
	subjectsCmd.Flags().StringVar(&subDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (sniffed if omitted)")
	subjectsCmd.Flags().StringVar(&subInput, "input-format", "", "force input format: csv|xlsx (by extension if omitted)")
	subjectsCmd.Flags().BoolVar(&subJSON, "json", false, "print subjects as a JSON array")
}
