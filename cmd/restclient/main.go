package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/tjfontaine/polyglot-rest-client/internal/client"
	"github.com/tjfontaine/polyglot-rest-client/internal/config"
	"github.com/tjfontaine/polyglot-rest-client/internal/core/domain"
	"github.com/tjfontaine/polyglot-rest-client/internal/core/ports"
	"github.com/tjfontaine/polyglot-rest-client/internal/runtime"
	"github.com/tjfontaine/polyglot-rest-client/internal/telemetry"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand(os.Stdout).Run(ctx, os.Args); err != nil {
		log.Fatalf("restclient: %v", err)
	}
}

func newCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "restclient",
		Usage: "invoke configured REST operations and decode their responses",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: config.DefaultPath, Usage: "path to config.yaml"},
			&cli.StringFlag{Name: "log-level", Value: "warn", Usage: "debug, info, warn or error"},
		},
		Commands: []*cli.Command{
			{
				Name:      "invoke",
				Usage:     "invoke an operation and print the decoded response",
				ArgsUsage: "<operation>",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "param", Aliases: []string{"p"}, Usage: "path parameter name=value"},
					&cli.StringSliceFlag{Name: "query", Aliases: []string{"q"}, Usage: "query parameter name=value"},
					&cli.StringSliceFlag{Name: "header", Aliases: []string{"H"}, Usage: "request header name=value"},
					&cli.StringFlag{Name: "body", Aliases: []string{"d"}, Usage: "request body; @file reads it from a file"},
					&cli.StringFlag{Name: "content-type", Usage: "request body content type"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runInvoke(ctx, cmd, out)
				},
			},
			{
				Name:  "operations",
				Usage: "list configured operations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runOperations(ctx, cmd, out)
				},
			},
			{
				Name:  "history",
				Usage: "list recorded invocations, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "operation", Usage: "only show this operation"},
					&cli.IntFlag{Name: "limit", Value: 20},
					&cli.IntFlag{Name: "offset"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runHistory(ctx, cmd, out)
				},
			},
		},
	}
}

// setup builds the logger, tracer and runtime shared by every command.
func setup(cmd *cli.Command) (*runtime.Runtime, func(), error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cmd.String("log-level"))); err != nil {
		return nil, nil, fmt.Errorf("invalid log level: %w", err)
	}

	// Logs go to stderr; stdout carries command output
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	shutdown, err := telemetry.Setup(cfg.Telemetry, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}

	rt, err := runtime.New(runtime.WithConfig(cfg), runtime.WithLogger(logger))
	if err != nil {
		shutdown(context.Background())
		return nil, nil, err
	}

	cleanup := func() {
		if err := rt.Close(); err != nil {
			logger.Error("failed to close storage", slog.String("error", err.Error()))
		}
		if err := shutdown(context.Background()); err != nil {
			logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
		}
	}
	return rt, cleanup, nil
}

func runInvoke(ctx context.Context, cmd *cli.Command, out io.Writer) error {
	name := cmd.Args().First()
	if name == "" {
		return fmt.Errorf("operation name is required")
	}

	args, err := buildArgs(cmd)
	if err != nil {
		return err
	}

	rt, cleanup, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	resp, err := rt.Invoke(ctx, name, args)
	if err != nil {
		return err
	}

	if err := writeJSON(out, responseViewOf(resp)); err != nil {
		return err
	}
	if resp.IsFailed() {
		return cli.Exit("", 1)
	}
	return nil
}

func runOperations(ctx context.Context, cmd *cli.Command, out io.Writer) error {
	rt, cleanup, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tMETHOD\tPATH\tPRODUCES")
	for _, op := range rt.Operations() {
		rest := op.RestOperation()
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", op.Name(), rest.Method(), rest.AbsolutePath(), strings.Join(rest.Produces(), ","))
	}
	return w.Flush()
}

func runHistory(ctx context.Context, cmd *cli.Command, out io.Writer) error {
	rt, cleanup, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	records, err := rt.History(ctx, ports.ListOptions{
		Operation: cmd.String("operation"),
		Limit:     int(cmd.Int("limit")),
		Offset:    int(cmd.Int("offset")),
	})
	if err != nil {
		return err
	}
	return writeJSON(out, records)
}

func buildArgs(cmd *cli.Command) (client.Args, error) {
	args := client.Args{
		Path:        map[string]string{},
		Query:       url.Values{},
		Header:      http.Header{},
		ContentType: cmd.String("content-type"),
	}

	for _, kv := range cmd.StringSlice("param") {
		k, v, err := splitPair(kv)
		if err != nil {
			return args, err
		}
		args.Path[k] = v
	}
	for _, kv := range cmd.StringSlice("query") {
		k, v, err := splitPair(kv)
		if err != nil {
			return args, err
		}
		args.Query.Add(k, v)
	}
	for _, kv := range cmd.StringSlice("header") {
		k, v, err := splitPair(kv)
		if err != nil {
			return args, err
		}
		args.Header.Add(k, v)
	}

	if body := cmd.String("body"); body != "" {
		if path, ok := strings.CutPrefix(body, "@"); ok {
			data, err := os.ReadFile(path)
			if err != nil {
				return args, fmt.Errorf("read body: %w", err)
			}
			args.Body = data
		} else {
			args.Body = []byte(body)
		}
	}

	return args, nil
}

func splitPair(kv string) (string, string, error) {
	k, v, ok := strings.Cut(kv, "=")
	if !ok || k == "" {
		return "", "", fmt.Errorf("expected name=value, got %q", kv)
	}
	return k, v, nil
}

// responseView is the printed form of a Response.
type responseView struct {
	Status  int                     `json:"status"`
	Reason  string                  `json:"reason,omitempty"`
	Result  any                     `json:"result,omitempty"`
	Headers map[string][]string     `json:"headers,omitempty"`
	Error   *domain.InvocationError `json:"error,omitempty"`
}

func responseViewOf(resp *domain.Response) responseView {
	return responseView{
		Status:  resp.Status,
		Reason:  resp.Reason,
		Result:  printable(resp.Result),
		Headers: resp.Headers.HeaderMap(),
		Error:   resp.Err,
	}
}

// printable keeps raw bodies readable in JSON output.
func printable(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
