package main

import (
	"context"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
)

var version = "dev"

func main() {
	cmd := &cli.Command{
		Name:    "collabeat",
		Usage:   "Metadata resolver for collaboratively owned beats",
		Version: version,
		Action:  serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the HTTP API (default)",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the MCP tools over stdio",
				Action: serveMCP,
			},
			{
				Name:   "execute",
				Usage:  "Resolve an execute call read as JSON and print the result",
				Flags:  []cli.Flag{inputFlag()},
				Action: execute,
			},
			{
				Name:   "mint",
				Usage:  "Resolve a mint call read as JSON and print the result",
				Flags:  []cli.Flag{inputFlag()},
				Action: mint,
			},
			{
				Name:   "clone",
				Usage:  "Acknowledge a clone",
				Action: clone,
			},
			{
				Name:  "encode",
				Usage: "Print the hex ABI encoding of a mint payload",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "Beat name"},
					&cli.StringFlag{Name: "address", Usage: "IPFS API multiaddress"},
					&cli.StringFlag{Name: "cid", Usage: "CID of the ownership records"},
				},
				Action: encode,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func inputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "input",
		Aliases: []string{"i"},
		Usage:   "JSON call file, or - for stdin",
		Value:   "-",
	}
}
