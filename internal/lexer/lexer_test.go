package lexer

import (
	"lox-lang/internal/token"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func kinds(tokens []token.Token) []token.Kind {
	out := make([]token.Kind, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Kind
	}
	return out
}

func TestTokenizeKinds(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []token.Kind
	}{
		{
			name:   "simple",
			source: `let x = 1 + 2;`,
			want: []token.Kind{
				token.KW_LET, token.IDENT, token.ASSIGN,
				token.NUMBER, token.PLUS, token.NUMBER, token.SEMICOLON, token.EOF,
			},
		},
		{
			name:   "keywords",
			source: `and or if else while for fun return break continue let const class extends this super print true false nil`,
			want: []token.Kind{
				token.KW_AND, token.KW_OR, token.KW_IF, token.KW_ELSE, token.KW_WHILE,
				token.KW_FOR, token.KW_FUN, token.KW_RETURN, token.KW_BREAK, token.KW_CONTINUE,
				token.KW_LET, token.KW_CONST, token.KW_CLASS, token.KW_EXTENDS, token.KW_THIS,
				token.KW_SUPER, token.KW_PRINT, token.KW_TRUE, token.KW_FALSE, token.KW_NIL,
				token.EOF,
			},
		},
		{
			name:   "operators",
			source: `= == != < <= > >= + - * / !`,
			want: []token.Kind{
				token.ASSIGN, token.EQ, token.NEQ,
				token.LT, token.LTE, token.GT, token.GTE,
				token.PLUS, token.MINUS, token.STAR, token.SLASH, token.BANG,
				token.EOF,
			},
		},
		{
			name:   "delimiters",
			source: `( ) { } [ ] , . ;`,
			want: []token.Kind{
				token.LPAREN, token.RPAREN, token.LBRACE, token.RBRACE,
				token.LBRACKET, token.RBRACKET, token.COMMA, token.DOT,
				token.SEMICOLON, token.EOF,
			},
		},
		{
			name:   "newlines and comments are trivia",
			source: "x // this is a comment\ny\n",
			want:   []token.Kind{token.IDENT, token.IDENT, token.EOF},
		},
		{
			name:   "constructor is an identifier",
			source: `constructor`,
			want:   []token.Kind{token.IDENT, token.EOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, diags := New(tt.source, "test.lox").Tokenize()
			if len(diags) > 0 {
				t.Fatalf("unexpected diagnostics: %v", diags)
			}
			if diff := cmp.Diff(tt.want, kinds(tokens)); diff != "" {
				t.Errorf("token kinds mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTokenizeString(t *testing.T) {
	source := `"hello" "line1\nline2" "say \"hi\""`
	tokens, diags := New(source, "test.lox").Tokenize()

	if len(diags) > 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}

	want := []string{"hello", "line1\nline2", `say "hi"`}
	for i, w := range want {
		if tokens[i].Kind != token.STRING || tokens[i].Lexeme != w {
			t.Errorf("token[%d]: expected STRING %q, got %s %q", i, w, tokens[i].Kind, tokens[i].Lexeme)
		}
	}
	// span covers the quotes
	if got := tokens[0].Len(); got != 7 {
		t.Errorf("token[0] length: expected 7, got %d", got)
	}
}

func TestTokenizeNumbers(t *testing.T) {
	source := `123 3.14 0 7.`
	tokens, diags := New(source, "test.lox").Tokenize()

	if len(diags) > 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}

	if tokens[0].Kind != token.NUMBER || tokens[0].Lexeme != "123" {
		t.Errorf("token[0]: expected NUMBER '123', got %s %q", tokens[0].Kind, tokens[0].Lexeme)
	}
	if tokens[1].Kind != token.NUMBER || tokens[1].Lexeme != "3.14" {
		t.Errorf("token[1]: expected NUMBER '3.14', got %s %q", tokens[1].Kind, tokens[1].Lexeme)
	}
	// a trailing dot is not part of the number
	if tokens[3].Lexeme != "7" || tokens[4].Kind != token.DOT {
		t.Errorf("expected NUMBER '7' followed by DOT, got %q then %s", tokens[3].Lexeme, tokens[4].Kind)
	}
}

func TestTokenizeErrors(t *testing.T) {
	tests := []struct {
		source string
		code   string
	}{
		{`"open`, "E1001"},
		{`"bad \q escape"`, "E1002"},
		{`a & b`, "E1003"},
		{`@`, "E1003"},
	}

	for _, tt := range tests {
		_, diags := New(tt.source, "test.lox").Tokenize()
		if len(diags) == 0 {
			t.Errorf("%q: expected diagnostic %s, got none", tt.source, tt.code)
			continue
		}
		if diags[0].Code != tt.code {
			t.Errorf("%q: expected code %s, got %s", tt.source, tt.code, diags[0].Code)
		}
	}
}

func TestTokenizePositions(t *testing.T) {
	source := "let x = 1;\n  print x;"
	tokens, _ := New(source, "test.lox").Tokenize()

	// "let" starts at line 1, col 1
	if tokens[0].Span.Start.Line != 1 || tokens[0].Span.Start.Column != 1 {
		t.Errorf("'let' position: expected 1:1, got %s", tokens[0].Span.Start)
	}
	// "x" starts at line 1, col 5
	if tokens[1].Span.Start.Line != 1 || tokens[1].Span.Start.Column != 5 {
		t.Errorf("'x' position: expected 1:5, got %s", tokens[1].Span.Start)
	}
	// "print" starts at line 2, col 3, byte offset 13
	p := tokens[5]
	if p.Kind != token.KW_PRINT || p.Span.Start.Line != 2 || p.Span.Start.Column != 3 || p.Offset() != 13 {
		t.Errorf("'print' position: expected 2:3 @13, got %s @%d", p.Span.Start, p.Offset())
	}
}
