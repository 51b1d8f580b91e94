// Command lox is the CLI entry point for the lox-lang toolchain.
//
// Usage:
//
//	lox tokens <file> [--json]     Print tokens
//	lox parse  <file> [--pn]       Print AST as JSON or in prefix notation
//	lox check  <files...>          Statically check files
//	lox run    <file>              Run a source file
//	lox repl                       Start interactive REPL
//
// Common flags: --config <path>, --log-level <level>.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"lox-lang/internal/ast"
	"lox-lang/internal/config"
	"lox-lang/internal/diag"
	"lox-lang/internal/driver"
	"lox-lang/internal/lexer"
	"lox-lang/internal/parser"
	"os"
	"os/signal"
	"slices"

	"github.com/spf13/pflag"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// app carries what every command needs.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := pflag.NewFlagSet("lox", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.String("config", "", "path to a config file (default ./"+config.DefaultFile+" if present)")
	logLevel := flags.String("log-level", "", "log level: debug, info, warn or error (overrides config)")
	jsonMode := flags.Bool("json", false, "print tokens as JSON")
	pnMode := flags.Bool("pn", false, "print the AST in prefix notation instead of JSON")
	flags.Usage = func() { usage(stderr, flags) }

	if err := flags.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		return 2
	}
	rest := flags.Args()
	if len(rest) == 0 {
		usage(stderr, flags)
		return 2
	}

	a, err := setup(*configPath, *logLevel, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	command, files := rest[0], rest[1:]
	switch command {
	case "tokens", "parse", "run":
		if len(files) != 1 {
			fmt.Fprintf(stderr, "error: %s expects exactly one file argument\n", command)
			return 2
		}
		source, err := os.ReadFile(files[0])
		if err != nil {
			fmt.Fprintf(stderr, "error: cannot read file %s: %v\n", files[0], err)
			return 1
		}
		switch command {
		case "tokens":
			return a.cmdTokens(string(source), files[0], *jsonMode)
		case "parse":
			return a.cmdParse(string(source), files[0], *pnMode)
		default:
			return a.cmdRun(string(source), files[0])
		}
	case "check":
		if len(files) == 0 {
			fmt.Fprintln(stderr, "error: check expects at least one file argument")
			return 2
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		return a.cmdCheck(ctx, files)
	case "repl":
		return a.cmdRepl()
	default:
		fmt.Fprintf(stderr, "error: unknown command '%s'\n", command)
		usage(stderr, flags)
		return 2
	}
}

func usage(w io.Writer, flags *pflag.FlagSet) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  lox tokens <file> [--json]   Tokenize and print tokens")
	fmt.Fprintln(w, "  lox parse  <file> [--pn]     Parse and print AST (JSON or prefix notation)")
	fmt.Fprintln(w, "  lox check  <files...>        Lex, parse and resolve without running")
	fmt.Fprintln(w, "  lox run    <file>            Run a source file")
	fmt.Fprintln(w, "  lox repl                     Start interactive REPL")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprint(w, flags.FlagUsages())
}

// setup builds the logger and loads the config. An explicit --log-level
// wins over the config file and is already in effect while loading it.
func setup(configPath, logLevel string, stdout, stderr io.Writer) (*app, error) {
	level := new(slog.LevelVar)
	if err := setLevel(level, config.Default().LogLevel); err != nil {
		return nil, err
	}
	if logLevel != "" {
		if err := setLevel(level, logLevel); err != nil {
			return nil, err
		}
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load(configPath, logger)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	} else if err := setLevel(level, cfg.LogLevel); err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, stdout: stdout, stderr: stderr}, nil
}

func setLevel(level *slog.LevelVar, name string) error {
	l, err := config.ParseLevel(name)
	if err != nil {
		return err
	}
	level.Set(l)
	return nil
}

// ---- tokens command ----

func (a *app) cmdTokens(source, filename string, jsonMode bool) int {
	tokens, diags := lexer.New(source, filename).Tokenize()

	if jsonMode {
		printJSON(a.stdout, jsonReport{Tokens: tokens, Diagnostics: diags})
	} else {
		printTokensText(a.stdout, tokens)
		printDiags(a.stderr, source, filename, diags)
	}

	if len(diags) > 0 {
		return 1
	}
	return 0
}

// ---- parse command ----

func (a *app) cmdParse(source, filename string, pnMode bool) int {
	tokens, lexDiags := lexer.New(source, filename).Tokenize()
	file, parseDiags := parser.New(tokens).ParseFile()

	allDiags := slices.Concat(lexDiags, parseDiags)

	if pnMode {
		fmt.Fprintln(a.stdout, ast.Polish(file))
		printDiags(a.stderr, source, filename, allDiags)
		if diag.HasErrors(allDiags) {
			return 1
		}
		return 0
	}

	printJSON(a.stdout, jsonReport{AST: ast.NodeToMap(file), Diagnostics: allDiags})

	if diag.HasErrors(allDiags) {
		return 1
	}
	return 0
}

// ---- check command ----

func (a *app) cmdCheck(ctx context.Context, files []string) int {
	reports, err := driver.Check(ctx, files, a.logger)
	if err != nil {
		fmt.Fprintf(a.stderr, "error: %v\n", err)
		return 1
	}

	code := 0
	for _, r := range reports {
		printDiags(a.stderr, r.Source, r.File, r.Diags)
		if r.Failed() {
			code = 1
		}
	}
	return code
}

// ---- run command ----

func (a *app) cmdRun(source, filename string) int {
	session := driver.NewSession(a.stdout,
		driver.WithLogger(a.logger),
		driver.WithMaxDepth(a.cfg.MaxCallDepth),
	)
	diags, err := session.Run(source, filename)
	printDiags(a.stderr, source, filename, diags)
	if err != nil {
		if _, ok := err.(*driver.Error); !ok {
			fmt.Fprintf(a.stderr, "error: %v\n", err)
		}
		return 1
	}
	return 0
}
