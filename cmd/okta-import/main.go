package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/spec-kit/okta-import/internal/app"
	"github.com/spec-kit/okta-import/internal/config"
	"github.com/spec-kit/okta-import/internal/domain"
	"github.com/spec-kit/okta-import/internal/observability"
	"github.com/spec-kit/okta-import/internal/policy"
	"github.com/spec-kit/okta-import/internal/service"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	cliApp := cli.NewApp()
	cliApp.Name = "okta-import"
	cliApp.Usage = "Create Okta accounts for a list of email addresses"
	cliApp.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "emails-file",
			Usage: "File with one email address per line, - for stdin",
		},
		cli.StringFlag{
			Name:   "password",
			Usage:  "Shared password for the new accounts",
			EnvVar: "OKTA_IMPORT_PASSWORD",
		},
		cli.StringFlag{
			Name:  "question",
			Usage: "Recovery question",
		},
		cli.StringFlag{
			Name:   "answer",
			Usage:  "Recovery answer",
			EnvVar: "OKTA_IMPORT_ANSWER",
		},
	}
	cliApp.Action = runImport
	return cliApp
}

func runImport(c *cli.Context) error {
	path := c.String("emails-file")
	if path == "" {
		return cli.NewExitError("--emails-file is required", 2)
	}
	emails, err := readEmails(path)
	if err != nil {
		return cli.NewExitError(err.Error(), 2)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	components, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer components.Close()

	run, err := components.Imports.Import(ctx, "", service.ImportInput{
		EmailsList: emails,
		Password:   c.String("password"),
		Question:   c.String("question"),
		Answer:     c.String("answer"),
	})
	var pwErr *policy.PasswordError
	if errors.As(err, &pwErr) {
		return cli.NewExitError(pwErr.Message, 1)
	}
	if run != nil {
		if printErr := printResult(c.App.Writer, run); printErr != nil {
			return printErr
		}
	}
	if err != nil {
		logger.Error("import failed", zap.Error(err))
		return cli.NewExitError(err.Error(), 1)
	}
	return nil
}

func readEmails(path string) (string, error) {
	if path == "-" {
		raw, err := io.ReadAll(os.Stdin)
		return string(raw), err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read emails file: %w", err)
	}
	return string(raw), nil
}

func printResult(w io.Writer, run *domain.ImportRun) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(domain.BatchResult{
		Total:   run.Total,
		Created: run.Created,
		Failed:  run.Failed,
		Skipped: run.Skipped,
		Results: run.Results,
	})
}
