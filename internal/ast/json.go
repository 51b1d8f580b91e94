package ast

import (
	"lox-lang/internal/span"
	"lox-lang/internal/token"
)

// NodeToMap converts an AST node to a map suitable for JSON serialization.
// This produces a tagged-union structure: every node has a "kind" field.
// Nodes carrying a resolved Slot also get a "distance" field.
func NodeToMap(node Node) map[string]interface{} {
	if node == nil {
		return nil
	}

	switch n := node.(type) {
	case *File:
		return m("File", n.Span, "body", stmtSlice(n.Body))

	// ---- Expressions ----
	case *NumberLiteral:
		return m("NumberLiteral", n.Span, "value", n.Value)
	case *StringLiteral:
		return m("StringLiteral", n.Span, "value", n.Value)
	case *BoolLiteral:
		return m("BoolLiteral", n.Span, "value", n.Value)
	case *NilLiteral:
		return m("NilLiteral", n.Span)
	case *ListLiteral:
		return m("ListLiteral", n.Span, "elements", exprSlice(n.Elements))
	case *IdentExpr:
		return withSlot(m("IdentExpr", n.Span, "name", n.Name.Lexeme), &n.Slot)
	case *AssignExpr:
		return withSlot(m("AssignExpr", n.Span,
			"name", n.Name.Lexeme,
			"value", NodeToMap(n.Value)), &n.Slot)
	case *UnaryExpr:
		return m("UnaryExpr", n.Span, "op", opStr(n.Op.Kind), "operand", NodeToMap(n.Operand))
	case *BinaryExpr:
		return m("BinaryExpr", n.Span,
			"op", opStr(n.Op.Kind),
			"left", NodeToMap(n.Left),
			"right", NodeToMap(n.Right))
	case *GroupingExpr:
		return m("GroupingExpr", n.Span, "inner", NodeToMap(n.Inner))
	case *CallExpr:
		return m("CallExpr", n.Span,
			"callee", NodeToMap(n.Callee),
			"args", exprSlice(n.Args))
	case *GetExpr:
		return m("GetExpr", n.Span,
			"object", NodeToMap(n.Object),
			"name", n.Name.Lexeme)
	case *SetExpr:
		return m("SetExpr", n.Span,
			"object", NodeToMap(n.Object),
			"name", n.Name.Lexeme,
			"value", NodeToMap(n.Value))
	case *IndexExpr:
		return m("IndexExpr", n.Span,
			"object", NodeToMap(n.Object),
			"index", NodeToMap(n.Index))
	case *ThisExpr:
		return withSlot(m("ThisExpr", n.Span), &n.Slot)
	case *SuperExpr:
		return withSlot(m("SuperExpr", n.Span, "method", n.Method.Lexeme), &n.Slot)
	case *FuncExpr:
		return funcToMap("FuncExpr", n)

	// ---- Statements ----
	case *ExprStmt:
		return m("ExprStmt", n.Span, "expr", NodeToMap(n.Expr))
	case *PrintStmt:
		return m("PrintStmt", n.Span, "expr", NodeToMap(n.Expr))
	case *VarDeclStmt:
		result := m("VarDeclStmt", n.Span, "name", n.Name.Lexeme, "isConst", n.IsConst)
		if n.Init != nil {
			result["init"] = NodeToMap(n.Init)
		}
		return result
	case *BlockStmt:
		return m("BlockStmt", n.Span, "stmts", stmtSlice(n.Stmts))
	case *IfStmt:
		result := m("IfStmt", n.Span,
			"condition", NodeToMap(n.Condition),
			"then", NodeToMap(n.Then))
		if n.Else != nil {
			result["else"] = NodeToMap(n.Else)
		}
		return result
	case *ForStmt:
		result := m("ForStmt", n.Span, "body", NodeToMap(n.Body))
		if n.Condition != nil {
			result["condition"] = NodeToMap(n.Condition)
		}
		if n.Closer != nil {
			result["closer"] = NodeToMap(n.Closer)
		}
		return result
	case *ReturnStmt:
		result := m("ReturnStmt", n.Span)
		if n.Value != nil {
			result["value"] = NodeToMap(n.Value)
		}
		return result
	case *BreakStmt:
		return m("BreakStmt", n.Span)
	case *ContinueStmt:
		return m("ContinueStmt", n.Span)
	case *ClassStmt:
		result := m("ClassStmt", n.Span, "name", n.Name.Lexeme)
		if n.Superclass != nil {
			result["superclass"] = NodeToMap(n.Superclass)
		}
		methods := make([]interface{}, len(n.Methods))
		for i, md := range n.Methods {
			methods[i] = funcToMap("Method", md)
		}
		result["methods"] = methods
		return result

	default:
		return map[string]interface{}{"kind": "Unknown"}
	}
}

// ---- helpers ----

// m builds a map with kind, span, and extra key-value pairs.
func m(kind string, s span.Span, kvs ...interface{}) map[string]interface{} {
	result := map[string]interface{}{
		"kind": kind,
		"span": spanToMap(s),
	}
	for i := 0; i+1 < len(kvs); i += 2 {
		key := kvs[i].(string)
		result[key] = kvs[i+1]
	}
	return result
}

func withSlot(result map[string]interface{}, slot *Slot) map[string]interface{} {
	if d, ok := slot.Distance(); ok {
		result["distance"] = d
	}
	return result
}

func funcToMap(kind string, f *FuncExpr) map[string]interface{} {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Lexeme
	}
	result := m(kind, f.Span, "params", params, "body", stmtSlice(f.Body))
	if f.Name != nil {
		result["name"] = f.Name.Lexeme
	}
	return result
}

func spanToMap(s span.Span) map[string]interface{} {
	return map[string]interface{}{
		"start": map[string]interface{}{
			"offset": s.Start.Offset,
			"line":   s.Start.Line,
			"column": s.Start.Column,
		},
		"end": map[string]interface{}{
			"offset": s.End.Offset,
			"line":   s.End.Line,
			"column": s.End.Column,
		},
	}
}

func stmtSlice(stmts []Stmt) []interface{} {
	result := make([]interface{}, len(stmts))
	for i, s := range stmts {
		result[i] = NodeToMap(s)
	}
	return result
}

func exprSlice(exprs []Expr) []interface{} {
	result := make([]interface{}, len(exprs))
	for i, e := range exprs {
		result[i] = NodeToMap(e)
	}
	return result
}

func opStr(kind token.Kind) string {
	return kind.String()
}
