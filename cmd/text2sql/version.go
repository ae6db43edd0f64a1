package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const appVersion = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the text2sql version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("text2sql " + appVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
