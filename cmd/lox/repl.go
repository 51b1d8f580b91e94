package main

import (
	"errors"
	"fmt"
	"io"
	"lox-lang/internal/diag"
	"lox-lang/internal/driver"
	"strings"

	"github.com/chzyer/readline"
)

// ---- ANSI colors ----

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

// palette paints text unless colors are turned off.
type palette bool

func (p palette) paint(color, s string) string {
	if !p {
		return s
	}
	return color + s + colorReset
}

// ---- repl command ----

func (a *app) cmdRepl() int {
	colors := palette(a.cfg.REPL.Color)
	prompt := colors.paint(colorGreen, a.cfg.REPL.Prompt)
	more := colors.paint(colorGray, "...   ")

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            prompt,
		HistoryFile:       a.cfg.REPL.HistoryPath(),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		fmt.Fprintf(a.stderr, "readline init failed: %v\n", err)
		return 1
	}
	defer rl.Close()

	fmt.Fprintf(rl.Stdout(), "%s %s\n\n",
		colors.paint(colorBold+colorCyan, "lox-lang REPL"),
		colors.paint(colorGray, "(type 'exit' or Ctrl+D to quit)"))

	session := driver.NewSession(rl.Stdout(),
		driver.WithLogger(a.logger),
		driver.WithMaxDepth(a.cfg.MaxCallDepth),
	)
	var input multiline

	for {
		if input.pending() {
			rl.SetPrompt(more)
		} else {
			rl.SetPrompt(prompt)
		}

		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if input.pending() {
					input.reset()
					continue
				}
				fmt.Fprintf(rl.Stdout(), "\n%s\n", colors.paint(colorGray, "(use 'exit' or Ctrl+D to quit)"))
				continue
			}
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(rl.Stdout())
			}
			return 0
		}

		if !input.pending() && strings.TrimSpace(line) == "exit" {
			return 0
		}

		source, ready := input.add(line)
		if !ready || strings.TrimSpace(source) == "" {
			continue
		}

		diags, err := session.Run(source, "<repl>")
		printDiagsColored(rl.Stderr(), colors, source, diags)
		if err != nil {
			var derr *driver.Error
			if !errors.As(err, &derr) {
				fmt.Fprintln(rl.Stderr(), colors.paint(colorRed, "error: "+err.Error()))
			}
		}
	}
}

// multiline accumulates lines until braces balance.
type multiline struct {
	buf   strings.Builder
	depth int
}

func (m *multiline) pending() bool { return m.depth > 0 }

func (m *multiline) reset() {
	m.buf.Reset()
	m.depth = 0
}

// add appends line and reports whether the accumulated input is complete.
// Braces inside string literals are not counted.
func (m *multiline) add(line string) (string, bool) {
	inString := false
	for _, ch := range line {
		switch {
		case ch == '"':
			inString = !inString
		case inString:
		case ch == '{':
			m.depth++
		case ch == '}':
			m.depth--
		}
	}
	m.buf.WriteString(line)
	m.buf.WriteString("\n")

	if m.depth > 0 {
		return "", false
	}
	source := m.buf.String()
	m.reset()
	return source, true
}

// printDiagsColored prints errors in red and warnings in yellow.
func printDiagsColored(w io.Writer, colors palette, source string, diags []diag.Diagnostic) {
	for _, d := range diags {
		color := colorRed
		if d.Severity == diag.Warning {
			color = colorYellow
		}
		fmt.Fprintln(w, colors.paint(color, d.String()))
		fmt.Fprintln(w, diag.Snippet(source, "<repl>", d))
	}
}
