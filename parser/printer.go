package parser

import (
	"encoding/json"
	"fmt"
	"os"

	"orus/ast"
)

const (
	colorYellow = "\033[33m"
	colorReset  = "\033[0m"
)

// astPrinter implements the Visitor interfaces and builds a JSON-friendly
// representation of the AST using maps and slices. Each Visit method
// returns an object that can be marshaled to JSON.
type astPrinter struct{}

func (p astPrinter) VisitExpressionStmt(n *ast.ExpressionStmt) any {
	return map[string]any{"type": "ExpressionStmt", "expression": n.Expression.Accept(p)}
}

func (p astPrinter) VisitPrintStmt(n *ast.PrintStmt) any {
	return map[string]any{"type": "PrintStmt", "expression": n.Expression.Accept(p)}
}

func (p astPrinter) VisitVarStmt(n *ast.VarStmt) any {
	return map[string]any{
		"type":        "VarStmt",
		"name":        n.Name.Lexeme,
		"typeName":    n.TypeName,
		"mutable":     n.Mutable,
		"initializer": nilOrAccept(n.Initializer, p),
	}
}

func (p astPrinter) VisitBlockStmt(n *ast.BlockStmt) any {
	stmts := make([]any, 0, len(n.Statements))
	for _, stmt := range n.Statements {
		stmts = append(stmts, stmt.Accept(p))
	}
	return map[string]any{"type": "BlockStmt", "statements": stmts}
}

func (p astPrinter) VisitWhileStmt(n *ast.WhileStmt) any {
	return map[string]any{"type": "WhileStmt", "condition": n.Condition.Accept(p), "body": n.Body.Accept(p)}
}

func (p astPrinter) VisitIfStmt(n *ast.IfStmt) any {
	var elseVal any
	if n.Else != nil {
		elseVal = n.Else.Accept(p)
	}
	return map[string]any{
		"type":      "IfStmt",
		"condition": n.Condition.Accept(p),
		"then":      n.Then.Accept(p),
		"else":      elseVal,
	}
}

func (p astPrinter) VisitForRangeStmt(n *ast.ForRangeStmt) any {
	var step any
	if n.Step != nil {
		step = n.Step.Accept(p)
	}
	return map[string]any{
		"type":      "ForRangeStmt",
		"name":      n.Name.Lexeme,
		"start":     n.Start.Accept(p),
		"end":       n.End.Accept(p),
		"step":      step,
		"inclusive": n.Inclusive,
		"body":      n.Body.Accept(p),
	}
}

func (p astPrinter) VisitForIterStmt(n *ast.ForIterStmt) any {
	return map[string]any{
		"type":     "ForIterStmt",
		"name":     n.Name.Lexeme,
		"iterable": n.Iterable.Accept(p),
		"body":     n.Body.Accept(p),
	}
}

func (p astPrinter) VisitBreakStmt(n *ast.BreakStmt) any    { return map[string]any{"type": "BreakStmt"} }
func (p astPrinter) VisitContinueStmt(n *ast.ContinueStmt) any {
	return map[string]any{"type": "ContinueStmt"}
}

func (p astPrinter) VisitReturnStmt(n *ast.ReturnStmt) any {
	return map[string]any{"type": "ReturnStmt", "value": nilOrAccept(n.Value, p)}
}

func (p astPrinter) VisitFunctionDecl(n *ast.FunctionDecl) any {
	params := make([]any, 0, len(n.Params))
	for _, param := range n.Params {
		params = append(params, map[string]any{"name": param.Name.Lexeme, "typeName": param.TypeName})
	}
	return map[string]any{
		"type":       "FunctionDecl",
		"name":       n.Name.Lexeme,
		"params":     params,
		"returnType": n.ReturnType,
		"exported":   n.Exported,
		"body":       n.Body.Accept(p),
	}
}

func (p astPrinter) VisitStructDecl(n *ast.StructDecl) any {
	fields := make([]any, 0, len(n.Fields))
	for _, f := range n.Fields {
		fields = append(fields, map[string]any{"name": f.Name.Lexeme, "typeName": f.TypeName})
	}
	return map[string]any{"type": "StructDecl", "name": n.Name.Lexeme, "fields": fields, "exported": n.Exported}
}

func (p astPrinter) VisitImportStmt(n *ast.ImportStmt) any {
	return map[string]any{"type": "ImportStmt", "module": n.Module, "names": n.Names, "aliases": n.Aliases}
}

func (p astPrinter) VisitExportStmt(n *ast.ExportStmt) any {
	return map[string]any{"type": "ExportStmt", "names": n.Names}
}

func (p astPrinter) VisitTryStmt(n *ast.TryStmt) any {
	return map[string]any{
		"type":      "TryStmt",
		"body":      n.Body.Accept(p),
		"errorName": n.ErrorName.Lexeme,
		"handler":   n.Handler.Accept(p),
	}
}

func (p astPrinter) VisitLogicalExpression(n *ast.Logical) any {
	return map[string]any{"type": "Logical", "operator": n.Operator.Lexeme, "left": n.Left.Accept(p), "right": n.Right.Accept(p)}
}

func (p astPrinter) VisitAssignExpression(n *ast.Assign) any {
	return map[string]any{"type": "Assign", "name": n.Name.Lexeme, "op": string(n.Op), "value": n.Value.Accept(p)}
}

func (p astPrinter) VisitVariableExpression(n *ast.Variable) any {
	return map[string]any{"type": "Variable", "name": n.Name.Lexeme}
}

func (p astPrinter) VisitBinary(n *ast.Binary) any {
	return map[string]any{"type": "Binary", "operator": n.Operator.Lexeme, "left": n.Left.Accept(p), "right": n.Right.Accept(p)}
}

func (p astPrinter) VisitUnary(n *ast.Unary) any {
	return map[string]any{"type": "Unary", "operator": n.Operator.Lexeme, "right": n.Right.Accept(p)}
}

func (p astPrinter) VisitLiteral(n *ast.Literal) any { return n.Value }

func (p astPrinter) VisitGrouping(n *ast.Grouping) any {
	return map[string]any{"type": "Grouping", "expression": n.Expression.Accept(p)}
}

func (p astPrinter) VisitCall(n *ast.Call) any {
	args := make([]any, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		args = append(args, a.Accept(p))
	}
	return map[string]any{"type": "Call", "callee": n.Callee.Accept(p), "arguments": args}
}

func (p astPrinter) VisitFieldAccess(n *ast.FieldAccess) any {
	return map[string]any{"type": "FieldAccess", "target": n.Target.Accept(p), "field": n.Field.Lexeme}
}

func (p astPrinter) VisitIndex(n *ast.Index) any {
	return map[string]any{"type": "Index", "target": n.Target.Accept(p), "index": n.Index.Accept(p)}
}

func (p astPrinter) VisitCast(n *ast.Cast) any {
	return map[string]any{"type": "Cast", "value": n.Value.Accept(p), "typeName": n.TypeName}
}

func (p astPrinter) VisitTernary(n *ast.Ternary) any {
	return map[string]any{
		"type":      "Ternary",
		"condition": n.Condition.Accept(p),
		"then":      n.Then.Accept(p),
		"else":      n.Else.Accept(p),
	}
}

func (p astPrinter) VisitArrayLiteral(n *ast.ArrayLiteral) any {
	elems := make([]any, 0, len(n.Elements))
	for _, e := range n.Elements {
		elems = append(elems, e.Accept(p))
	}
	return map[string]any{"type": "ArrayLiteral", "elements": elems}
}

func (p astPrinter) VisitStructLiteral(n *ast.StructLiteral) any {
	values := make([]any, 0, len(n.Values))
	for _, v := range n.Values {
		values = append(values, v.Accept(p))
	}
	return map[string]any{"type": "StructLiteral", "typeName": n.TypeName, "fields": n.Fields, "values": values}
}

// nilOrAccept returns nil if expr is nil, otherwise it continues
// processing the expression and returns the result.
func nilOrAccept(expr ast.Expression, p ast.ExpressionVisitor) any {
	if expr == nil {
		return nil
	}
	return expr.Accept(p)
}

// PrintASTJSON converts a slice of statements into a prettified JSON string.
func PrintASTJSON(statements []ast.Stmt) (string, error) {
	printer := astPrinter{}
	out := make([]any, 0, len(statements))
	for _, s := range statements {
		out = append(out, s.Accept(printer))
	}
	bytes, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}

	jsonStr := string(bytes)
	fmt.Println(colorYellow + "----- AST JSON -----")
	fmt.Println(colorYellow + jsonStr)
	fmt.Println(colorYellow + "-----" + colorReset)
	fmt.Println("")
	return jsonStr, nil
}

// WriteASTJSONToFile writes the prettified AST JSON to the given file path.
func WriteASTJSONToFile(statements []ast.Stmt, path string) error {
	s, err := PrintASTJSON(statements)
	if err != nil {
		return err
	}
	fDescriptor, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating AST file: %s", err.Error())
	}
	defer fDescriptor.Close()

	if _, err := fDescriptor.Write([]byte(s)); err != nil {
		return fmt.Errorf("error writing AST to file: %s", err.Error())
	}
	return nil
}
