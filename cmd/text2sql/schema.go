package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var schemaRefresh bool

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the discovered database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		if schemaRefresh {
			if _, err := rt.agent.RefreshSchema(cmd.Context()); err != nil {
				return err
			}
		}
		snapshot, err := rt.agent.DescribeSchema(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(snapshot.Describe())
		return nil
	},
}

func init() {
	schemaCmd.Flags().BoolVar(&schemaRefresh, "refresh", false, "force a fresh introspection before printing")
	rootCmd.AddCommand(schemaCmd)
}
