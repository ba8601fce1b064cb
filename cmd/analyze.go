package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/markboard-cli/internal/analysis"
	"github.com/KaramelBytes/markboard-cli/internal/parser"
	"github.com/KaramelBytes/markboard-cli/internal/pipeline"
	"github.com/KaramelBytes/markboard-cli/internal/utils"
)

var (
	anaSubject    string
	anaFormat     string
	anaOutputPath string
	anaSheetName  string
	anaDelimiter  string
	anaInput      string
	anaSampleRows int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Load a marks export and summarize one subject",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format := strings.ToLower(strings.TrimSpace(anaFormat))
		switch format {
		case "table", "markdown", "md", "json", "yaml", "yml":
		default:
			return fmt.Errorf("unsupported --format: %s (use table|markdown|json|yaml)", anaFormat)
		}
		sess, err := loadSession(cmd, args[0], anaInput, anaSheetName, anaDelimiter)
		if err != nil {
			return err
		}
		sess.Select(anaSubject)
		rep := sess.Report(anaSampleRows)

		var out []byte
		switch format {
		case "table":
			var sb strings.Builder
			renderTables(&sb, rep)
			out = []byte(sb.String())
		case "markdown", "md":
			out = []byte(rep.Markdown())
		case "json":
			out, err = utils.PrettyJSON(rep)
		case "yaml", "yml":
			out, err = yaml.Marshal(rep)
		}
		if err != nil {
			return err
		}

		if anaOutputPath != "" {
			if err := utils.SafeWriteFile(anaOutputPath, out); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote analysis to %s\n", anaOutputPath)
			return nil
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaSubject, "subject", "s", "", "subject to summarize (empty shows the placeholder and subject list)")
	analyzeCmd.Flags().StringVarP(&anaFormat, "format", "f", "table", "output format: table|markdown|json|yaml")
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the analysis")
	analyzeCmd.Flags().StringVar(&anaSheetName, "sheet", "", "XLSX: sheet name (default first sheet)")
	analyzeCmd.Flags().StringVar(&anaDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (sniffed if omitted)")
	analyzeCmd.Flags().StringVar(&anaInput, "input-format", "", "force input format: csv|xlsx (by extension if omitted)")
	analyzeCmd.Flags().IntVar(&anaSampleRows, "sample-rows", 5, "number of sample rows to include")
}

// loadSession reads path and runs it through a fresh session, printing the
// upload status to stderr. A failed upload is returned as an error.
func loadSession(cmd *cobra.Command, path, input, sheet, delimiter string) (*pipeline.Session, error) {
	c, err := effectiveConfig()
	if err != nil {
		return nil, err
	}
	local := *c
	if sheet != "" {
		local.SheetName = sheet
	}
	if delimiter != "" {
		local.Delimiter = delimiter
	}
	gopt, err := local.GradeOptions()
	if err != nil {
		return nil, err
	}
	popt, err := local.ParserOptions()
	if err != nil {
		return nil, err
	}
	hint, err := parser.ParseFormat(input)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	sess := pipeline.New(gopt, popt, newLogger(&local))
	st := sess.Load(pipeline.Upload{Filename: filepath.Base(path), Format: hint, Data: data})
	printStatus(cmd.ErrOrStderr(), st)
	if !st.OK() {
		return nil, errors.New(st.Message)
	}
	return sess, nil
}

func printStatus(w io.Writer, st pipeline.Status) {
	switch st.Kind {
	case pipeline.StatusOK:
		color.New(color.FgGreen).Fprintf(w, "✓ %s\n", st.Message)
	case pipeline.StatusSchema:
		color.New(color.FgYellow).Fprintf(w, "⚠ %s\n", st.Message)
	default:
		color.New(color.FgRed).Fprintf(w, "✗ %s\n", st.Message)
	}
}

func renderTables(w io.Writer, rep *analysis.Report) {
	heading := color.New(color.FgCyan, color.Bold)
	res := rep.Result

	title := "Subject: " + res.Subject
	if res.Placeholder {
		title = "No subject selected"
	}
	heading.Fprintln(w, title)
	kpi := tablewriter.NewWriter(w)
	kpi.SetHeader([]string{"Metric", "Value"})
	for _, k := range res.KPIs() {
		kpi.Append([]string{k.Title, k.Value})
	}
	kpi.Render()

	if res.Placeholder {
		heading.Fprintln(w, "\nSubjects")
		subj := tablewriter.NewWriter(w)
		subj.SetHeader([]string{"Subject"})
		for _, s := range rep.Subjects {
			subj.Append([]string{s})
		}
		subj.Render()
		return
	}

	heading.Fprintln(w, "\nMark ranges")
	ranges := tablewriter.NewWriter(w)
	ranges.SetHeader([]string{"Range", "Students"})
	for _, b := range res.MarkRanges {
		ranges.Append([]string{b.Label, strconv.Itoa(b.Count)})
	}
	ranges.Render()

	heading.Fprintln(w, "\nPass vs fail")
	header := []string{"Result", "Total"}
	for _, g := range res.Genders {
		header = append(header, string(g.Gender))
	}
	pf := tablewriter.NewWriter(w)
	pf.SetHeader(header)
	for _, rg := range res.ResultByGender {
		row := []string{string(rg.Result), strconv.Itoa(res.CountResult(rg.Result))}
		for _, g := range rg.Genders {
			row = append(row, strconv.Itoa(g.Count))
		}
		pf.Append(row)
	}
	pf.Render()

	if len(rep.Warnings) > 0 {
		warn := color.New(color.FgYellow)
		for _, msg := range rep.Warnings {
			warn.Fprintf(w, "⚠ %s\n", msg)
		}
	}
}
