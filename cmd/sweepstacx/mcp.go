package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/sweepstacx/internal/mcpserver"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Description: `Starts an MCP server over stdio transport that exposes the scanner and
patch previewer as tools that LLMs can invoke.

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "sweepstacx": {
        "command": "sweepstacx",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - scan_unused_imports   Find unused imports and record the scan
  - preview_patch         Build patch artifacts without touching sources

Each tool keeps its scan cache and patches under the scanned directory.`,
		Action: func(c *cli.Context) error {
			return mcpserver.NewServer(version).Run(c.Context)
		},
		Subcommands: []*cli.Command{
			{
				Name:  "manifest",
				Usage: "Print the MCP server manifest (server.json)",
				Action: func(c *cli.Context) error {
					data, err := mcpserver.GenerateManifest(version)
					if err != nil {
						return err
					}
					fmt.Println(string(data))
					return nil
				},
			},
		},
	}
}
