package driver

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func runErr(t *testing.T, s *Session, source string) *Error {
	t.Helper()
	_, err := s.Run(source, "test.lox")
	var derr *Error
	require.True(t, errors.As(err, &derr), "expected *driver.Error, got %v", err)
	return derr
}

func TestRunPrintsOutput(t *testing.T) {
	var out bytes.Buffer
	s := NewSession(&out)

	diags, err := s.Run(`print 1 + 2;`, "test.lox")
	require.NoError(t, err)
	require.Empty(t, diags)
	require.Equal(t, "3\n", out.String())
}

func TestRunKeepsState(t *testing.T) {
	var out bytes.Buffer
	s := NewSession(&out)

	_, err := s.Run(`let greeting = "hi";`, "<repl>")
	require.NoError(t, err)
	_, err = s.Run(`fun shout(x) { return x + "!"; }`, "<repl>")
	require.NoError(t, err)
	_, err = s.Run(`print shout(greeting);`, "<repl>")
	require.NoError(t, err)
	require.Equal(t, "hi!\n", out.String())
}

func TestRunPhases(t *testing.T) {
	tests := []struct {
		name   string
		source string
		phase  Phase
		code   string
	}{
		{"lex", `print "open;`, PhaseLex, "E1001"},
		{"parse", `print (1;`, PhaseParse, "E2001"},
		{"resolve", `print missing;`, PhaseResolve, "E3001"},
		{"runtime", `print 1 / 0;`, PhaseRuntime, RuntimeCode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			derr := runErr(t, NewSession(&bytes.Buffer{}), tt.source)
			require.Equal(t, tt.phase, derr.Phase)
			require.NotEmpty(t, derr.Diags)
			require.Equal(t, tt.code, derr.Diags[0].Code)
			require.Contains(t, derr.Error(), string(tt.phase)+" failed")
		})
	}
}

func TestRuntimeErrorSpan(t *testing.T) {
	derr := runErr(t, NewSession(&bytes.Buffer{}), "let x = 1;\nx();")
	d := derr.Diags[0]
	require.Equal(t, RuntimeCode, d.Code)
	require.Equal(t, 2, d.Span.Start.Line)
	require.Contains(t, d.Message, "can only call functions and classes")
}

func TestRunReturnsWarnings(t *testing.T) {
	var out bytes.Buffer
	diags, err := NewSession(&out).Run(`fun f() { return 1; print 2; } print f();`, "test.lox")
	require.NoError(t, err)
	require.Len(t, diags, 1)
	require.Equal(t, "W2001", diags[0].Code)
	require.Equal(t, "1\n", out.String())
}

// A declaration that precedes a runtime error is kept, one after it is
// dropped from the resolver as well as the runtime.
func TestRunResyncsAfterRuntimeError(t *testing.T) {
	var out bytes.Buffer
	s := NewSession(&out)

	derr := runErr(t, s, `let before = 1; print 1 / 0; let after = 2;`)
	require.Equal(t, PhaseRuntime, derr.Phase)

	_, err := s.Run(`print before;`, "<repl>")
	require.NoError(t, err)

	derr = runErr(t, s, `print after;`)
	require.Equal(t, PhaseResolve, derr.Phase)

	// the name is free to declare again
	_, err = s.Run(`let after = 3; print after;`, "<repl>")
	require.NoError(t, err)
	require.Equal(t, "1\n3\n", out.String())
}

func TestRunResyncsAfterResolveError(t *testing.T) {
	var out bytes.Buffer
	s := NewSession(&out)

	derr := runErr(t, s, `let a = 1; print nope;`)
	require.Equal(t, PhaseResolve, derr.Phase)

	// nothing ran, so 'a' was never declared
	_, err := s.Run(`let a = 2; print a;`, "<repl>")
	require.NoError(t, err)
	require.Equal(t, "2\n", out.String())
}

func TestRejectedSuperclassKeepsClassNameFree(t *testing.T) {
	var out bytes.Buffer
	s := NewSession(&out)

	derr := runErr(t, s, `let n = 1; class B extends n {}`)
	require.Equal(t, PhaseRuntime, derr.Phase)
	require.Equal(t, RuntimeCode, derr.Diags[0].Code)
	require.Contains(t, derr.Diags[0].Message, "Cannot inherit from number")

	_, err := s.Run(`class B {} print B;`, "<repl>")
	require.NoError(t, err)
	require.Equal(t, "<class B>\n", out.String())
}

func TestWithMaxDepth(t *testing.T) {
	s := NewSession(&bytes.Buffer{}, WithMaxDepth(10))
	derr := runErr(t, s, `fun f() { return f(); } f();`)
	require.Contains(t, derr.Diags[0].Message, "more than 10 nested calls")
}

func TestWithLoggerTracesPhases(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := NewSession(&bytes.Buffer{}, WithLogger(logger)).Run(`print 1;`, "trace.lox")
	require.NoError(t, err)
	for _, msg := range []string{"msg=lexed", "msg=parsed", "msg=resolved", "msg=executed"} {
		require.Contains(t, logs.String(), msg)
	}
	require.Contains(t, logs.String(), "file=trace.lox")
}

func TestAnalyzeDoesNotExecute(t *testing.T) {
	file, diags := Analyze(`print 1 / 0;`, "test.lox", nil)
	require.NotNil(t, file)
	require.Empty(t, diags)
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	write := func(name, src string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
		return path
	}
	good := write("good.lox", `let a = 1; print a;`)
	bad := write("bad.lox", `print b;`)
	// each file gets its own top level
	again := write("again.lox", `let a = 2;`)

	reports, err := Check(context.Background(), []string{good, bad, again}, nil)
	require.NoError(t, err)
	require.Len(t, reports, 3)

	require.Equal(t, good, reports[0].File)
	require.False(t, reports[0].Failed())

	require.True(t, reports[1].Failed())
	require.Equal(t, "E3001", reports[1].Diags[0].Code)
	require.Equal(t, `print b;`, reports[1].Source)

	require.False(t, reports[2].Failed())
}

func TestCheckMissingFile(t *testing.T) {
	_, err := Check(context.Background(), []string{filepath.Join(t.TempDir(), "missing.lox")}, nil)
	require.Error(t, err)
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func TestCheckCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Check(ctx, []string{"whatever.lox"}, nil)
	require.ErrorIs(t, err, context.Canceled)
}
