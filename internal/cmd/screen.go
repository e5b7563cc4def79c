package cmd

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aveekpatra/Domain-AI/internal/output"
	"github.com/aveekpatra/Domain-AI/internal/security"
)

var screenFormat string

var screenCmd = &cobra.Command{
	Use:   "screen <prompt...>",
	Short: "Run the prompt security analyzer",
	Long: `Screen a prompt with the same analyzer the API uses and show which rules
fired. Arguments are joined with spaces. Exits non-zero only on usage errors;
the verdict is in the output.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(screenFormat)
		if err != nil {
			return err
		}
		return runScreen(cmd.OutOrStdout(), format, strings.Join(args, " "))
	},
}

func runScreen(w io.Writer, format output.Format, prompt string) error {
	res, hits := security.NewAnalyzer().Explain(prompt)
	return output.Render(w, format, output.ScreenReport{Prompt: prompt, Result: res, Hits: hits})
}

func init() {
	rootCmd.AddCommand(screenCmd)
	screenCmd.Flags().StringVar(&screenFormat, "output-format", string(output.FormatTable), "Output format: table|json|markdown")
}
