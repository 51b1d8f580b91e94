// Package driver runs source text through the lexer, parser, resolver and
// interpreter, turning every failure into diagnostics.
package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"lox-lang/internal/ast"
	"lox-lang/internal/diag"
	"lox-lang/internal/lexer"
	"lox-lang/internal/parser"
	"lox-lang/internal/resolver"
	"lox-lang/internal/runtime"
	"os"
	goruntime "runtime"
	"time"

	"golang.org/x/sync/errgroup"
)

// RuntimeCode is the diagnostic code given to runtime errors.
const RuntimeCode = "E4001"

// Phase names the stage a run failed in.
type Phase string

const (
	PhaseLex     Phase = "lex"
	PhaseParse   Phase = "parse"
	PhaseResolve Phase = "resolve"
	PhaseRuntime Phase = "runtime"
)

// Error reports a failed run. Diags holds every diagnostic produced up to
// and including the failing phase.
type Error struct {
	Phase Phase
	Diags []diag.Diagnostic
}

func (e *Error) Error() string {
	var first diag.Diagnostic
	count := 0
	for _, d := range e.Diags {
		if d.Severity != diag.Error {
			continue
		}
		if count == 0 {
			first = d
		}
		count++
	}
	if count == 0 {
		return fmt.Sprintf("%s failed", e.Phase)
	}
	if count == 1 {
		return fmt.Sprintf("%s failed: %s", e.Phase, first)
	}
	return fmt.Sprintf("%s failed: %s (and %d more)", e.Phase, first, count-1)
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger used for phase tracing. It is also handed to
// the interpreter.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// WithMaxDepth sets the interpreter's call depth limit.
func WithMaxDepth(n int) Option {
	return func(s *Session) { s.maxDepth = n }
}

// Session keeps resolver and interpreter state across runs, so a
// declaration made by one input is visible to the next.
type Session struct {
	resolver *resolver.Resolver
	interp   *runtime.Interpreter
	logger   *slog.Logger
	maxDepth int
}

// NewSession creates a session whose program output goes to out.
func NewSession(out io.Writer, opts ...Option) *Session {
	s := &Session{
		logger:   slog.New(slog.DiscardHandler),
		maxDepth: runtime.DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.interp = runtime.New(out,
		runtime.WithLogger(s.logger),
		runtime.WithMaxDepth(s.maxDepth),
	)
	s.resolver = resolver.New(s.interp.Globals().Names())
	return s
}

// Run executes source. It returns all diagnostics, warnings included. On
// failure the error is an *Error, and the resolver is realigned with the
// globals the interpreter actually holds.
func (s *Session) Run(source, filename string) ([]diag.Diagnostic, error) {
	file, diags, phase := analyze(s.resolver, source, filename, s.logger)
	if diag.HasErrors(diags) {
		s.sync()
		return diags, &Error{Phase: phase, Diags: diags}
	}

	start := time.Now()
	err := s.interp.Interpret(file)
	s.logger.Debug("executed",
		slog.String("file", filename),
		slog.Duration("elapsed", time.Since(start)),
		slog.Bool("ok", err == nil),
	)
	if err != nil {
		s.sync()
		var rerr *runtime.RuntimeError
		if !errors.As(err, &rerr) {
			return diags, err
		}
		diags = append(diags, diag.Errorf(RuntimeCode, rerr.Token.Span, "%s", rerr.Message))
		return diags, &Error{Phase: PhaseRuntime, Diags: diags}
	}
	return diags, nil
}

// sync drops resolver declarations the interpreter never made.
func (s *Session) sync() {
	s.resolver.Sync(s.interp.Globals().Names())
}

// Analyze lexes, parses and resolves source against a fresh top level
// holding only the natives.
func Analyze(source, filename string, logger *slog.Logger) (*ast.File, []diag.Diagnostic) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	file, diags, _ := analyze(resolver.New(runtime.NativeNames()), source, filename, logger)
	return file, diags
}

// analyze stops at the first phase that reports an error and returns it.
func analyze(res *resolver.Resolver, source, filename string, logger *slog.Logger) (*ast.File, []diag.Diagnostic, Phase) {
	start := time.Now()
	tokens, diags := lexer.New(source, filename).Tokenize()
	logger.Debug("lexed",
		slog.String("file", filename),
		slog.Int("tokens", len(tokens)),
		slog.Int("diagnostics", len(diags)),
		slog.Duration("elapsed", time.Since(start)),
	)
	if diag.HasErrors(diags) {
		return nil, diags, PhaseLex
	}

	start = time.Now()
	file, parseDiags := parser.New(tokens).ParseFile()
	diags = append(diags, parseDiags...)
	logger.Debug("parsed",
		slog.String("file", filename),
		slog.Int("statements", len(file.Body)),
		slog.Int("diagnostics", len(parseDiags)),
		slog.Duration("elapsed", time.Since(start)),
	)
	if diag.HasErrors(parseDiags) {
		return file, diags, PhaseParse
	}

	start = time.Now()
	err := res.Resolve(file)
	logger.Debug("resolved",
		slog.String("file", filename),
		slog.Bool("ok", err == nil),
		slog.Duration("elapsed", time.Since(start)),
	)
	if err != nil {
		var rerr *resolver.Error
		if !errors.As(err, &rerr) {
			// Resolve only fails with *resolver.Error
			panic(fmt.Sprintf("driver: unexpected resolve error %T: %v", err, err))
		}
		diags = append(diags, diag.Errorf(rerr.Code, rerr.Token.Span, "%s", rerr.Message))
		return file, diags, PhaseResolve
	}
	return file, diags, ""
}

// Report is the static check result for one file.
type Report struct {
	File   string
	Source string
	Diags  []diag.Diagnostic
}

// Failed reports whether the file has any diagnostic, warnings included.
func (r Report) Failed() bool {
	return len(r.Diags) > 0
}

// Check analyzes files concurrently, each against its own top level.
// Reports come back in input order. The error is non-nil only when a file
// cannot be read or ctx is cancelled.
func Check(ctx context.Context, files []string, logger *slog.Logger) ([]Report, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	reports := make([]Report, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(goruntime.NumCPU())

	for i, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			source, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("check: %w", err)
			}
			_, diags := Analyze(string(source), path, logger)
			logger.DebugContext(ctx, "checked",
				slog.String("file", path),
				slog.Int("diagnostics", len(diags)),
			)
			reports[i] = Report{File: path, Source: string(source), Diags: diags}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
