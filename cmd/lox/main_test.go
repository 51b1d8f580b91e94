package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// runCLI runs the CLI in an empty working directory so no lox.yaml is
// picked up by accident.
func runCLI(t *testing.T, files map[string]string, args ...string) (int, string, string) {
	t.Helper()
	dir := t.TempDir()
	for name, src := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644))
	}
	t.Chdir(dir)

	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunCommand(t *testing.T) {
	code, out, errOut := runCLI(t, map[string]string{"main.lox": `print "hi";`}, "run", "main.lox")
	require.Equal(t, 0, code, errOut)
	require.Equal(t, "hi\n", out)
}

func TestRunCommandRuntimeError(t *testing.T) {
	code, out, errOut := runCLI(t, map[string]string{"main.lox": "print 1;\nprint 1 / 0;"}, "run", "main.lox")
	require.Equal(t, 1, code)
	require.Equal(t, "1\n", out)
	require.Contains(t, errOut, "[E4001] error at 2:9: division by zero")
	require.Contains(t, errOut, " 2 | print 1 / 0;")
}

func TestRunUsesConfigDepth(t *testing.T) {
	files := map[string]string{
		"main.lox": `fun f() { return f(); } f();`,
		"lox.yaml": "max_call_depth: 5\n",
	}
	code, _, errOut := runCLI(t, files, "run", "main.lox")
	require.Equal(t, 1, code)
	require.Contains(t, errOut, "more than 5 nested calls")
}

func TestLogLevelFlagCoversConfigLoad(t *testing.T) {
	files := map[string]string{
		"main.lox": `print 1;`,
		"lox.yaml": "max_call_depth: 50\n",
	}
	code, out, errOut := runCLI(t, files, "--log-level", "debug", "run", "main.lox")
	require.Equal(t, 0, code, errOut)
	require.Equal(t, "1\n", out)
	require.Equal(t, 1, strings.Count(errOut, "config loaded"), errOut)
	require.Contains(t, errOut, "lox.yaml")

	// the default level hides it
	_, _, errOut = runCLI(t, files, "run", "main.lox")
	require.NotContains(t, errOut, "config loaded")
}

func TestCheckCommand(t *testing.T) {
	files := map[string]string{
		"good.lox": `let a = 1;`,
		"bad.lox":  `print nope;`,
	}
	code, out, errOut := runCLI(t, files, "check", "good.lox", "bad.lox")
	require.Equal(t, 1, code)
	require.Empty(t, out)
	require.Contains(t, errOut, "[E3001]")
	require.Contains(t, errOut, "bad.lox:1:7")
}

func TestTokensJSON(t *testing.T) {
	code, out, _ := runCLI(t, map[string]string{"main.lox": `let x;`}, "tokens", "main.lox", "--json")
	require.Equal(t, 0, code)

	var got struct {
		Tokens []struct {
			Kind   string `json:"kind"`
			Lexeme string `json:"lexeme"`
		} `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Tokens, 4)
	require.Equal(t, "x", got.Tokens[1].Lexeme)
}

func TestParseCommand(t *testing.T) {
	code, out, _ := runCLI(t, map[string]string{"main.lox": `print 1;`}, "parse", "main.lox")
	require.Equal(t, 0, code)
	require.Contains(t, out, `"kind": "PrintStmt"`)
}

func TestParsePolish(t *testing.T) {
	code, out, _ := runCLI(t, map[string]string{"main.lox": "print 1 + 2 * 3;\nlet x;"}, "parse", "--pn", "main.lox")
	require.Equal(t, 0, code)
	require.Equal(t, "(print (+ 1 (* 2 3)))\n(let x)\n", out)
}

func TestUsageErrors(t *testing.T) {
	code, _, errOut := runCLI(t, nil)
	require.Equal(t, 2, code)
	require.Contains(t, errOut, "Usage:")

	code, _, errOut = runCLI(t, nil, "frobnicate")
	require.Equal(t, 2, code)
	require.Contains(t, errOut, "unknown command 'frobnicate'")

	code, _, _ = runCLI(t, nil, "run")
	require.Equal(t, 2, code)

	code, _, errOut = runCLI(t, nil, "--log-level", "loud", "run", "x.lox")
	require.Equal(t, 1, code)
	require.Contains(t, errOut, "log_level")
}
