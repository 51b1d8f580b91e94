package main

import (
	"encoding/json"
	"fmt"
	"io"
	"lox-lang/internal/diag"
	"lox-lang/internal/token"
)

// jsonReport is the document printed by `tokens --json` and `parse`.
type jsonReport struct {
	Tokens      []token.Token          `json:"tokens,omitempty"`
	AST         map[string]interface{} `json:"ast,omitempty"`
	Diagnostics []diag.Diagnostic      `json:"diagnostics"`
}

func printJSON(w io.Writer, report jsonReport) {
	if report.Diagnostics == nil {
		report.Diagnostics = []diag.Diagnostic{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		// every field is plain data, so this cannot fail
		panic(fmt.Sprintf("lox: JSON encoding failed: %v", err))
	}
}

// printDiags writes each diagnostic followed by the offending source line.
func printDiags(w io.Writer, source, filename string, diags []diag.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(w, d.String())
		fmt.Fprintln(w, diag.Snippet(source, filename, d))
	}
}

func printTokensText(w io.Writer, tokens []token.Token) {
	for _, tok := range tokens {
		fmt.Fprintf(w, "%-12s %-20s %s\n", tok.Kind, tok.Lexeme, tok.Span.Start)
	}
}
