package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ibranibeny/text2sql/internal/restapi"
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Serve the stateless REST API",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		srv := restapi.New(rt.agent, rt.cfg.API.Key, rt.log)
		addr := fmt.Sprintf(":%d", rt.cfg.API.Port)
		return serveHTTP(cmd.Context(), rt.log, addr, srv.Handler())
	},
}

func init() {
	rootCmd.AddCommand(apiCmd)
}
