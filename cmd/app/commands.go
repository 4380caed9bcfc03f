package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/starford/collabeat/internal"
	"github.com/starford/collabeat/internal/beatservice"
	"github.com/starford/collabeat/internal/models"
	"github.com/starford/collabeat/internal/payload"
	pkgconfig "github.com/starford/collabeat/pkg/config"
)

// loadConfig reads the --config file. One-shot commands fall back to the
// built-in defaults when the default path does not exist.
func loadConfig(cmd *cli.Command, allowMissing bool) (*internal.Config, string, error) {
	path := cmd.String("config")
	cfg := internal.NewDefaultConfig()

	if allowMissing && !cmd.IsSet("config") {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return cfg, "", cfg.Validate()
		}
	}
	if err := pkgconfig.Load(path, cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, path, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, path, err := loadConfig(cmd, false)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithConfigPath(path),
		internal.WithVersion(version),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, _, err := loadConfig(cmd, true)
	if err != nil {
		return err
	}
	if err := internal.RunMCP(ctx, internal.WithConfig(cfg), internal.WithVersion(version)); err != nil {
		return fmt.Errorf("mcp run error: %w", err)
	}
	return nil
}

// oneShotService builds a service that logs to stderr, keeping stdout for the result.
func oneShotService(cmd *cli.Command) (*beatservice.Service, error) {
	cfg, _, err := loadConfig(cmd, true)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.App.LogLevel}))
	rt, err := internal.NewRuntime(cfg, logger)
	if err != nil {
		return nil, err
	}
	return rt.Service, nil
}

func execute(ctx context.Context, cmd *cli.Command) error {
	var call models.ExecuteCall
	if err := readInput(cmd.String("input"), os.Stdin, &call); err != nil {
		return err
	}
	svc, err := oneShotService(cmd)
	if err != nil {
		return err
	}
	return writeResult(os.Stdout, svc.Execute(ctx, call.Contract, call.Metadatas, call.Transaction))
}

func mint(ctx context.Context, cmd *cli.Command) error {
	var call models.MintCall
	if err := readInput(cmd.String("input"), os.Stdin, &call); err != nil {
		return err
	}
	svc, err := oneShotService(cmd)
	if err != nil {
		return err
	}
	return writeResult(os.Stdout, svc.Mint(ctx, call.Contract, beatservice.NewMintRequest(call)))
}

func clone(_ context.Context, _ *cli.Command) error {
	svc := beatservice.NewService(nil, nil)
	return writeResult(os.Stdout, map[string]bool{"result": svc.Clone()})
}

func encode(_ context.Context, cmd *cli.Command) error {
	out, err := payload.Encode(payload.Payload{
		Name:       cmd.String("name"),
		Address:    cmd.String("address"),
		Identifier: cmd.String("cid"),
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, out)
	return err
}

// readInput decodes a JSON call from path, or from stdin when path is "-".
func readInput(path string, stdin io.Reader, v any) error {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("decode input: %w", err)
	}
	return nil
}

func writeResult(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
