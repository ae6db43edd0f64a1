package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ibranibeny/text2sql"
	"github.com/ibranibeny/text2sql/internal/synth"
)

var askCmd = &cobra.Command{
	Use:   "ask [question...]",
	Short: "Run the pipeline once for a single question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		question := strings.Join(args, " ")
		result, err := rt.agent.ProcessQuestion(cmd.Context(), text2sql.QuestionRequest{Question: question})
		if err != nil {
			return err
		}
		if result.Failed() {
			fmt.Printf("SQL:\n%s\n\nError: %s\n", result.SQL, result.Error)
			return nil
		}

		if result.SQL != "" {
			fmt.Printf("SQL:\n%s\n\n", result.SQL)
		}
		if result.Result != nil {
			fmt.Printf("Results: %d rows\n%s\n\n", result.Result.RowCount(), synth.RenderResult(result.Result, 25))
		}
		fmt.Printf("Answer:\n%s\n", result.Answer)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}
