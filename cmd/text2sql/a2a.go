package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ibranibeny/text2sql/internal/a2a"
)

var a2aCmd = &cobra.Command{
	Use:   "a2a",
	Short: "Serve the agent-to-agent JSON-RPC task endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		card, err := a2a.BuildCard(rt.cfg.A2A.HostURL, rt.cfg.A2A.SkillsFile)
		if err != nil {
			return err
		}
		handler := a2a.NewHandler(rt.agent, a2a.NewStore(), rt.log)
		srv := a2a.NewServer(handler, card, rt.cfg.API.Key, rt.log)

		addr := fmt.Sprintf(":%d", rt.cfg.A2A.Port)
		return serveHTTP(cmd.Context(), rt.log, addr, srv.Handler())
	},
}

func init() {
	rootCmd.AddCommand(a2aCmd)
}
