// Package token defines the token types produced by the lexer.
package token

import (
	"fmt"
	"lox-lang/internal/span"
)

// Kind represents the type of a token.
type Kind int

const (
	// Special tokens
	ILLEGAL Kind = iota
	EOF

	// Literals
	IDENT  // identifiers: x, foo, myVar
	NUMBER // number literals: 123, 3.14
	STRING // string literals: "hello"

	// Operators
	ASSIGN // =
	PLUS   // +
	MINUS  // -
	STAR   // *
	SLASH  // /
	BANG   // !

	EQ  // ==
	NEQ // !=
	LT  // <
	LTE // <=
	GT  // >
	GTE // >=

	// Delimiters
	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }
	LBRACKET  // [
	RBRACKET  // ]
	COMMA     // ,
	DOT       // .
	SEMICOLON // ;

	// Keywords
	KW_AND
	KW_OR
	KW_IF
	KW_ELSE
	KW_WHILE
	KW_FOR
	KW_FUN
	KW_RETURN
	KW_BREAK
	KW_CONTINUE
	KW_LET
	KW_CONST
	KW_CLASS
	KW_EXTENDS
	KW_THIS
	KW_SUPER
	KW_PRINT
	KW_TRUE
	KW_FALSE
	KW_NIL
)

var kindNames = map[Kind]string{
	ILLEGAL: "ILLEGAL",
	EOF:     "EOF",

	IDENT:  "IDENT",
	NUMBER: "NUMBER",
	STRING: "STRING",

	ASSIGN: "=",
	PLUS:   "+",
	MINUS:  "-",
	STAR:   "*",
	SLASH:  "/",
	BANG:   "!",
	EQ:     "==",
	NEQ:    "!=",
	LT:     "<",
	LTE:    "<=",
	GT:     ">",
	GTE:    ">=",

	LPAREN:    "(",
	RPAREN:    ")",
	LBRACE:    "{",
	RBRACE:    "}",
	LBRACKET:  "[",
	RBRACKET:  "]",
	COMMA:     ",",
	DOT:       ".",
	SEMICOLON: ";",

	KW_AND:      "and",
	KW_OR:       "or",
	KW_IF:       "if",
	KW_ELSE:     "else",
	KW_WHILE:    "while",
	KW_FOR:      "for",
	KW_FUN:      "fun",
	KW_RETURN:   "return",
	KW_BREAK:    "break",
	KW_CONTINUE: "continue",
	KW_LET:      "let",
	KW_CONST:    "const",
	KW_CLASS:    "class",
	KW_EXTENDS:  "extends",
	KW_THIS:     "this",
	KW_SUPER:    "super",
	KW_PRINT:    "print",
	KW_TRUE:     "true",
	KW_FALSE:    "false",
	KW_NIL:      "nil",
}

// String returns the human-readable name for a token kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MarshalText encodes the kind by name in JSON output.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// IsKeyword returns true if the kind is a keyword.
func (k Kind) IsKeyword() bool {
	return k >= KW_AND && k <= KW_NIL
}

// IsLiteral returns true if the kind is a literal (ident/number/string).
func (k Kind) IsLiteral() bool {
	return k >= IDENT && k <= STRING
}

var keywords = map[string]Kind{
	"and":      KW_AND,
	"or":       KW_OR,
	"if":       KW_IF,
	"else":     KW_ELSE,
	"while":    KW_WHILE,
	"for":      KW_FOR,
	"fun":      KW_FUN,
	"return":   KW_RETURN,
	"break":    KW_BREAK,
	"continue": KW_CONTINUE,
	"let":      KW_LET,
	"const":    KW_CONST,
	"class":    KW_CLASS,
	"extends":  KW_EXTENDS,
	"this":     KW_THIS,
	"super":    KW_SUPER,
	"print":    KW_PRINT,
	"true":     KW_TRUE,
	"false":    KW_FALSE,
	"nil":      KW_NIL,
}

// LookupIdent returns the keyword Kind for ident, or IDENT if it is not a keyword.
func LookupIdent(ident string) Kind {
	if kind, ok := keywords[ident]; ok {
		return kind
	}
	return IDENT
}

// Token represents a lexical token with its kind, text, and source location.
// For STRING tokens Lexeme holds the unescaped contents.
type Token struct {
	Kind   Kind      `json:"kind"`
	Lexeme string    `json:"lexeme"`
	Span   span.Span `json:"span"`
}

// Offset returns the byte offset of the token in its source.
func (t Token) Offset() int { return t.Span.Start.Offset }

// Len returns the byte length of the token in its source.
func (t Token) Len() int { return t.Span.Len() }

// String returns a human-readable representation of the token.
func (t Token) String() string {
	return fmt.Sprintf("%s %q %s", t.Kind, t.Lexeme, t.Span.Start)
}
