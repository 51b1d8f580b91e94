// Package lexer implements the lexical analysis (tokenization) for lox-lang.
package lexer

import (
	"fmt"
	"lox-lang/internal/diag"
	"lox-lang/internal/span"
	"lox-lang/internal/token"
)

// Lexer tokenizes source code into a sequence of tokens.
type Lexer struct {
	source   string
	filename string

	pos  int // current read position in source
	line int // current line (1-based)
	col  int // current column (1-based)

	diags []diag.Diagnostic
}

// New creates a new Lexer for the given source text.
func New(source, filename string) *Lexer {
	return &Lexer{
		source:   source,
		filename: filename,
		pos:      0,
		line:     1,
		col:      1,
	}
}

// Tokenize scans the entire source and returns all tokens and diagnostics.
// The last token is always EOF.
func (l *Lexer) Tokenize() ([]token.Token, []diag.Diagnostic) {
	var tokens []token.Token
	for {
		tok := l.nextToken()
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return tokens, l.diags
}

// ---- internal helpers ----

// peek returns the current character without advancing, or 0 if at end.
func (l *Lexer) peek() byte {
	if l.pos >= len(l.source) {
		return 0
	}
	return l.source[l.pos]
}

// peekNext returns the character after current, or 0 if at end.
func (l *Lexer) peekNext() byte {
	if l.pos+1 >= len(l.source) {
		return 0
	}
	return l.source[l.pos+1]
}

// advance consumes the current character and returns it.
func (l *Lexer) advance() byte {
	ch := l.source[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

func (l *Lexer) curPos() span.Position {
	return span.Position{Offset: l.pos, Line: l.line, Column: l.col}
}

func (l *Lexer) makeSpan(start span.Position) span.Span {
	return span.Span{Start: start, End: l.curPos()}
}

func (l *Lexer) makeToken(kind token.Kind, lexeme string, start span.Position) token.Token {
	return token.Token{Kind: kind, Lexeme: lexeme, Span: l.makeSpan(start)}
}

// skipTrivia skips whitespace, newlines and // comments.
func (l *Lexer) skipTrivia() {
	for l.pos < len(l.source) {
		ch := l.source[l.pos]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			l.advance()
		case ch == '/' && l.peekNext() == '/':
			for l.pos < len(l.source) && l.source[l.pos] != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

func (l *Lexer) addError(code string, s span.Span, msg string) {
	l.diags = append(l.diags, diag.Errorf(code, s, "%s", msg))
}

// ---- token reading ----

func (l *Lexer) nextToken() token.Token {
	l.skipTrivia()

	start := l.curPos()
	if l.pos >= len(l.source) {
		return l.makeToken(token.EOF, "", start)
	}

	ch := l.peek()
	switch {
	case ch == '"':
		return l.readString(start)
	case isDigit(ch):
		return l.readNumber(start)
	case isIdentStart(ch):
		return l.readIdentifier(start)
	default:
		return l.readOperator(start)
	}
}

// readString reads a double-quoted string literal. The token lexeme is the
// unescaped contents; the span covers the quotes.
func (l *Lexer) readString(start span.Position) token.Token {
	l.advance() // skip opening "
	var value []byte

	for l.pos < len(l.source) {
		ch := l.peek()
		if ch == '"' {
			l.advance() // skip closing "
			return l.makeToken(token.STRING, string(value), start)
		}
		if ch == '\\' {
			l.advance()
			if l.pos >= len(l.source) {
				break
			}
			esc := l.peek()
			switch esc {
			case 'n':
				value = append(value, '\n')
			case 't':
				value = append(value, '\t')
			case '\\':
				value = append(value, '\\')
			case '"':
				value = append(value, '"')
			case '0':
				value = append(value, 0)
			default:
				l.addError("E1002", l.makeSpan(start), fmt.Sprintf("unknown escape sequence: \\%c", esc))
				value = append(value, esc)
			}
			l.advance()
			continue
		}
		value = append(value, ch)
		l.advance()
	}

	l.addError("E1001", l.makeSpan(start), "unterminated string literal")
	return l.makeToken(token.STRING, string(value), start)
}

// readNumber reads digits with an optional fractional part.
func (l *Lexer) readNumber(start span.Position) token.Token {
	numStart := l.pos

	for l.pos < len(l.source) && isDigit(l.peek()) {
		l.advance()
	}

	if l.peek() == '.' && isDigit(l.peekNext()) {
		l.advance() // skip '.'
		for l.pos < len(l.source) && isDigit(l.peek()) {
			l.advance()
		}
	}

	return l.makeToken(token.NUMBER, l.source[numStart:l.pos], start)
}

// readIdentifier reads an identifier or keyword.
func (l *Lexer) readIdentifier(start span.Position) token.Token {
	identStart := l.pos

	for l.pos < len(l.source) && isIdentPart(l.peek()) {
		l.advance()
	}

	lexeme := l.source[identStart:l.pos]
	return l.makeToken(token.LookupIdent(lexeme), lexeme, start)
}

// readOperator reads an operator or delimiter token.
func (l *Lexer) readOperator(start span.Position) token.Token {
	ch := l.advance()

	// two-character operators share a '=' suffix
	withEq := func(single, double token.Kind) token.Token {
		if l.peek() == '=' {
			l.advance()
			return l.makeToken(double, double.String(), start)
		}
		return l.makeToken(single, single.String(), start)
	}

	switch ch {
	case '(':
		return l.makeToken(token.LPAREN, "(", start)
	case ')':
		return l.makeToken(token.RPAREN, ")", start)
	case '{':
		return l.makeToken(token.LBRACE, "{", start)
	case '}':
		return l.makeToken(token.RBRACE, "}", start)
	case '[':
		return l.makeToken(token.LBRACKET, "[", start)
	case ']':
		return l.makeToken(token.RBRACKET, "]", start)
	case ',':
		return l.makeToken(token.COMMA, ",", start)
	case '.':
		return l.makeToken(token.DOT, ".", start)
	case ';':
		return l.makeToken(token.SEMICOLON, ";", start)
	case '+':
		return l.makeToken(token.PLUS, "+", start)
	case '-':
		return l.makeToken(token.MINUS, "-", start)
	case '*':
		return l.makeToken(token.STAR, "*", start)
	case '/':
		return l.makeToken(token.SLASH, "/", start)
	case '!':
		return withEq(token.BANG, token.NEQ)
	case '=':
		return withEq(token.ASSIGN, token.EQ)
	case '<':
		return withEq(token.LT, token.LTE)
	case '>':
		return withEq(token.GT, token.GTE)
	case '&':
		l.addError("E1003", l.makeSpan(start), "unexpected character: '&', did you mean 'and'?")
		return l.makeToken(token.ILLEGAL, "&", start)
	case '|':
		l.addError("E1003", l.makeSpan(start), "unexpected character: '|', did you mean 'or'?")
		return l.makeToken(token.ILLEGAL, "|", start)
	default:
		l.addError("E1003", l.makeSpan(start), fmt.Sprintf("unexpected character: '%c'", ch))
		return l.makeToken(token.ILLEGAL, string(ch), start)
	}
}

// ---- character classification ----

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}
