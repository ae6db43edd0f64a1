package main

import (
	"fmt"

	mcpserverlib "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/ibranibeny/text2sql/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the MCP tool endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		s := mcpserver.New(rt.agent, rt.log)

		if rt.cfg.MCP.Transport == "stdio" {
			return mcpserverlib.ServeStdio(s)
		}
		addr := fmt.Sprintf(":%d", rt.cfg.MCP.Port)
		rt.log.WithField("addr", addr).Info("MCP endpoint at /mcp")
		httpServer := mcpserverlib.NewStreamableHTTPServer(s,
			mcpserverlib.WithEndpointPath("/mcp"),
		)
		return httpServer.Start(addr)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
