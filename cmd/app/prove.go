package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"

	"github.com/starford/modalk/internal"
	"github.com/starford/modalk/internal/apperr"
	"github.com/starford/modalk/internal/formula"
	"github.com/starford/modalk/internal/kripke"
	"github.com/starford/modalk/internal/prover"
	pkgconfig "github.com/starford/modalk/pkg/config"
)

// Exit statuses of the prove command.
const (
	exitValid        = 0
	exitInvalid      = 1
	exitUnrecognized = 2
)

var (
	validStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2CD7C7"))
	invalidStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E74C3C"))
)

func proveCommand() *cli.Command {
	return &cli.Command{
		Name:      "prove",
		Usage:     "Decide a formula and print the derivation and counter-model",
		ArgsUsage: "<formula...>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "ascii", Usage: "Print formulas with ASCII operators"},
			&cli.BoolFlag{Name: "unicode", Usage: "Print formulas with symbolic operators"},
			&cli.BoolFlag{Name: "dot", Usage: "Print the counter-model as Graphviz DOT"},
			&cli.StringFlag{
				Name:    "successors",
				Usage:   "Counter-model successor policy: shallowest or all",
				Sources: cli.EnvVars("MODALK_SUCCESSORS"),
			},
		},
		Action: prove,
	}
}

func prove(ctx context.Context, cmd *cli.Command) error {
	// The config file is optional here; it only supplies defaults.
	cfg := internal.NewDefaultConfig()
	if _, err := pkgconfig.LoadIfExists(cmd.String("config"), cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	notation := cfg.Prover.NotationValue()
	switch {
	case cmd.Bool("ascii"):
		notation = formula.ASCII
	case cmd.Bool("unicode"):
		notation = formula.Symbolic
	}
	succ := cfg.Prover.SuccessorPolicy()
	if s := cmd.String("successors"); s != "" {
		var err error
		if succ, err = kripke.ParseSuccessors(s); err != nil {
			return cli.Exit(err.Error(), exitUnrecognized)
		}
	}

	text := strings.Join(cmd.Args().Slice(), " ")
	if strings.TrimSpace(text) == "" {
		return cli.Exit("prove: missing formula", exitUnrecognized)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.App.LogLevel}))
	svc := prover.NewService(
		prover.WithLogger(logger),
		prover.WithNotation(notation),
		prover.WithSuccessors(succ),
	)

	rep, err := svc.Prove(ctx, prover.Request{Formula: text, Source: prover.SourceCLI})
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidInput) {
			return cli.Exit(err.Error(), exitUnrecognized)
		}
		return err
	}

	out := cmd.Root().Writer
	if out == nil {
		out = os.Stdout
	}
	if err := rep.WriteText(out, prover.TextOptions{
		DOT:     cmd.Bool("dot"),
		Verdict: verdictStyle(out),
	}); err != nil {
		return err
	}
	if !rep.Valid {
		return cli.Exit("", exitInvalid)
	}
	return nil
}

// verdictStyle colours the verdict when w is a terminal.
func verdictStyle(w io.Writer) func(string) string {
	f, ok := w.(*os.File)
	if !ok || (!isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd())) {
		return nil
	}
	return func(v string) string {
		if v == "VALID" {
			return validStyle.Render(v)
		}
		return invalidStyle.Render(v)
	}
}
