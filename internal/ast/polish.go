package ast

import (
	"strconv"
	"strings"
)

// Polish renders a node in parenthesized prefix notation, e.g.
// `1 + 2 * x` becomes `(+ 1 (* 2 x))`. It is meant for debugging and
// tests, so spans and slots are left out.
func Polish(node Node) string {
	var b strings.Builder
	writePolish(&b, node)
	return b.String()
}

func writePolish(b *strings.Builder, node Node) {
	switch n := node.(type) {
	case *File:
		for i, s := range n.Body {
			if i > 0 {
				b.WriteByte('\n')
			}
			writePolish(b, s)
		}

	// ---- Expressions ----
	case *NumberLiteral:
		b.WriteString(strconv.FormatFloat(n.Value, 'f', -1, 64))
	case *StringLiteral:
		b.WriteString(strconv.Quote(n.Value))
	case *BoolLiteral:
		b.WriteString(strconv.FormatBool(n.Value))
	case *NilLiteral:
		b.WriteString("nil")
	case *IdentExpr:
		b.WriteString(n.Name.Lexeme)
	case *ThisExpr:
		b.WriteString("this")
	case *ListLiteral:
		group(b, "list", exprNodes(n.Elements)...)
	case *AssignExpr:
		group(b, "= "+n.Name.Lexeme, n.Value)
	case *UnaryExpr:
		group(b, n.Op.Lexeme, n.Operand)
	case *BinaryExpr:
		group(b, n.Op.Lexeme, n.Left, n.Right)
	case *GroupingExpr:
		group(b, "group", n.Inner)
	case *CallExpr:
		group(b, "call "+Polish(n.Callee), exprNodes(n.Args)...)
	case *GetExpr:
		group(b, ". "+n.Name.Lexeme, n.Object)
	case *SetExpr:
		group(b, ".= "+n.Name.Lexeme, n.Object, n.Value)
	case *IndexExpr:
		group(b, "[]", n.Object, n.Index)
	case *SuperExpr:
		b.WriteString("(super " + n.Method.Lexeme + ")")
	case *FuncExpr:
		head := "fun"
		if n.Name != nil {
			head += " " + n.Name.Lexeme
		}
		params := make([]string, len(n.Params))
		for i, p := range n.Params {
			params[i] = p.Lexeme
		}
		head += " (" + strings.Join(params, " ") + ")"
		group(b, head, stmtNodes(n.Body)...)

	// ---- Statements ----
	case *ExprStmt:
		writePolish(b, n.Expr)
	case *PrintStmt:
		group(b, "print", n.Expr)
	case *VarDeclStmt:
		head := "let " + n.Name.Lexeme
		if n.IsConst {
			head = "const " + n.Name.Lexeme
		}
		if n.Init == nil {
			group(b, head)
		} else {
			group(b, head, n.Init)
		}
	case *BlockStmt:
		group(b, "block", stmtNodes(n.Stmts)...)
	case *IfStmt:
		if n.Else == nil {
			group(b, "if", n.Condition, n.Then)
		} else {
			group(b, "if", n.Condition, n.Then, n.Else)
		}
	case *ForStmt:
		kids := []Node{n.Body}
		if n.Condition != nil {
			kids = append([]Node{n.Condition}, kids...)
		}
		if n.Closer != nil {
			kids = append(kids, n.Closer)
		}
		group(b, "for", kids...)
	case *ReturnStmt:
		if n.Value == nil {
			group(b, "return")
		} else {
			group(b, "return", n.Value)
		}
	case *BreakStmt:
		b.WriteString("(break)")
	case *ContinueStmt:
		b.WriteString("(continue)")
	case *ClassStmt:
		head := "class " + n.Name.Lexeme
		if n.Superclass != nil {
			head += " < " + n.Superclass.Name.Lexeme
		}
		methods := make([]Node, len(n.Methods))
		for i, md := range n.Methods {
			methods[i] = md
		}
		group(b, head, methods...)

	default:
		b.WriteString("?")
	}
}

func group(b *strings.Builder, head string, kids ...Node) {
	b.WriteByte('(')
	b.WriteString(head)
	for _, k := range kids {
		b.WriteByte(' ')
		writePolish(b, k)
	}
	b.WriteByte(')')
}

func exprNodes(exprs []Expr) []Node {
	out := make([]Node, len(exprs))
	for i, e := range exprs {
		out[i] = e
	}
	return out
}

func stmtNodes(stmts []Stmt) []Node {
	out := make([]Node, len(stmts))
	for i, s := range stmts {
		out[i] = s
	}
	return out
}
