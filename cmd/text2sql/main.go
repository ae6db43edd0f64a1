package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "text2sql",
	Short: "Natural-language-to-SQL agent with REST, A2A, and MCP front-ends",
	Long: `text2sql answers natural language questions about a relational database.

It discovers the database schema, generates a read-only SQL query with a
language model, executes it, and synthesizes a natural language answer.
The pipeline is exposed through three protocol servers (REST, A2A JSON-RPC,
MCP) and a one-shot CLI.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a YAML config file (optional)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
