// Recursive descent parser
// https://en.wikipedia.org/wiki/Recursive_descent_parser
//
// A recursive descent parser is a top-down parser: it starts from the top
// grammar rule and works its way down into nested sub-expressions before
// reaching the leaves of the syntax tree (terminal rules). Block structure
// is indentation-sensitive: a trailing ':' opens a suite, which the lexer
// has already turned into an INDENT ... DEDENT token pair.
package parser

import (
	"fmt"

	"orus/ast"
	"orus/diagnostics"
	"orus/token"
)

var comparisonTokenTypes = []token.TokenType{
	token.LARGER,
	token.LARGER_EQUAL,
	token.LESS,
	token.LESS_EQUAL,
}

var equalityTokenTypes = []token.TokenType{
	token.NOT_EQUAL,
	token.EQUAL_EQUAL,
}

var termTokenTypes = []token.TokenType{
	token.SUB,
	token.ADD,
}

var factorExpressionTypes = []token.TokenType{
	token.MULT,
	token.DIV,
	token.MOD,
}

var assignOpTokenTypes = []token.TokenType{
	token.ASSIGN,
	token.PLUS_EQUAL,
	token.MINUS_EQUAL,
	token.STAR_EQUAL,
	token.SLASH_EQUAL,
}

type Parser struct {
	tokens   []token.Token
	position int
}

// NOTE: The parser's position always points at the current, not-yet
// consumed token.

// Make initializes and returns a new Parser instance over the given token
// stream.
func Make(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens, position: 0}
}

// Print prints the AST as prettified JSON to standard output.
func (parser *Parser) Print(statements []ast.Stmt) {
	if _, err := PrintASTJSON(statements); err != nil {
		fmt.Println("error producing AST JSON:", err)
	}
}

// PrintToFile writes the AST for the provided statements to a .json file.
func (parser *Parser) PrintToFile(statements []ast.Stmt, path string) error {
	return WriteASTJSONToFile(statements, path)
}

func (parser *Parser) peek() token.Token {
	return parser.tokens[parser.position]
}

func (parser *Parser) previous() token.Token {
	return parser.tokens[parser.position-1]
}

func (parser *Parser) advance() token.Token {
	if !parser.isFinished() {
		parser.position++
	}
	return parser.previous()
}

func (parser *Parser) isFinished() bool {
	return parser.peek().TokenType == token.EOF
}

func (parser *Parser) checkType(tokenType token.TokenType) bool {
	if parser.isFinished() {
		return tokenType == token.EOF
	}
	return parser.peek().TokenType == tokenType
}

func (parser *Parser) isMatch(tokenTypes []token.TokenType) bool {
	for _, tokenType := range tokenTypes {
		if parser.checkType(tokenType) {
			parser.advance()
			return true
		}
	}
	return false
}

// skipNewlines consumes any run of blank NEWLINE tokens between
// statements; blank lines between declarations are not significant.
func (parser *Parser) skipNewlines() {
	for parser.checkType(token.NEWLINE) {
		parser.advance()
	}
}

func (parser *Parser) span() diagnostics.Span {
	tok := parser.peek()
	return diagnostics.Span{Line: tok.Line, Column: tok.Column}
}

func (parser *Parser) syntaxErr(format string, args ...any) error {
	return diagnostics.New(diagnostics.ParseError, diagnostics.PhaseParser, parser.span(), format, args...)
}

// Parse parses the entire token stream into a slice of Stmt nodes,
// continuing until EOF. Errors during parsing are collected but parsing
// continues, via panic-mode recovery at the next NEWLINE, to surface as
// many diagnostics as possible in one pass.
func (parser *Parser) Parse() ([]ast.Stmt, []error) {
	statements := []ast.Stmt{}
	errors := []error{}

	parser.skipNewlines()
	for !parser.isFinished() {
		statement, err := parser.declaration()
		if err != nil {
			errors = append(errors, err)
			parser.synchronize()
			continue
		}
		statements = append(statements, statement)
		parser.skipNewlines()
	}

	return statements, errors
}

// synchronize discards tokens until the next statement boundary so that a
// single parse error does not cascade into dozens of spurious ones.
func (parser *Parser) synchronize() {
	parser.advance()
	for !parser.isFinished() {
		if parser.previous().TokenType == token.NEWLINE || parser.previous().TokenType == token.DEDENT {
			return
		}
		switch parser.peek().TokenType {
		case token.FUNC, token.STRUCT, token.VAR, token.IF, token.WHILE, token.FOR, token.RETURN, token.IMPORT:
			return
		}
		parser.advance()
	}
}

// declaration parses top-level and suite-level declarations: struct/fn
// definitions, imports, variable bindings, or a plain statement.
func (parser *Parser) declaration() (ast.Stmt, error) {
	start := parser.span()
	exported := false
	if parser.isMatch([]token.TokenType{token.EXPORT}) {
		exported = true
	}

	switch {
	case parser.isMatch([]token.TokenType{token.VAR}):
		return parser.variableDeclaration(start, false)
	case parser.isMatch([]token.TokenType{token.MUT}):
		return parser.variableDeclaration(start, true)
	case parser.isMatch([]token.TokenType{token.STRUCT}):
		return parser.structDeclaration(start, exported)
	case parser.isMatch([]token.TokenType{token.FUNC}):
		return parser.functionDeclaration(start, exported)
	case parser.isMatch([]token.TokenType{token.IMPORT, token.FROM}):
		return parser.importDeclaration(start)
	}

	if exported {
		return nil, parser.syntaxErr("'export' must be followed by a function or struct declaration")
	}
	return parser.statement()
}

func (parser *Parser) typeAnnotation() (string, error) {
	if !parser.isMatch([]token.TokenType{token.COLON}) {
		return "", nil
	}
	tok, err := parser.consume(token.IDENTIFIER, "expected a type name after ':'")
	if err != nil {
		return "", err
	}
	return tok.Lexeme, nil
}

func (parser *Parser) variableDeclaration(start diagnostics.Span, mutable bool) (ast.Stmt, error) {
	name, err := parser.consume(token.IDENTIFIER, "expected variable name")
	if err != nil {
		return nil, err
	}

	typeName, err := parser.typeAnnotation()
	if err != nil {
		return nil, err
	}

	var initializer ast.Expression
	if parser.isMatch([]token.TokenType{token.ASSIGN}) {
		initializer, err = parser.expression()
		if err != nil {
			return nil, err
		}
	}

	if err := parser.expectStatementEnd(); err != nil {
		return nil, err
	}

	stmt := &ast.VarStmt{Name: name, TypeName: typeName, Mutable: mutable, Initializer: initializer}
	stmt.Span = start
	return stmt, nil
}

func (parser *Parser) structDeclaration(start diagnostics.Span, exported bool) (ast.Stmt, error) {
	name, err := parser.consume(token.IDENTIFIER, "expected struct name")
	if err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.COLON, "expected ':' after struct name"); err != nil {
		return nil, err
	}
	if err := parser.expectStatementEnd(); err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.INDENT, "expected an indented struct body"); err != nil {
		return nil, err
	}

	fields := []ast.FieldDecl{}
	for !parser.checkType(token.DEDENT) && !parser.isFinished() {
		fieldName, err := parser.consume(token.IDENTIFIER, "expected a field name")
		if err != nil {
			return nil, err
		}
		if _, err := parser.consume(token.COLON, "expected ':' after field name"); err != nil {
			return nil, err
		}
		fieldType, err := parser.consume(token.IDENTIFIER, "expected a field type")
		if err != nil {
			return nil, err
		}
		fields = append(fields, ast.FieldDecl{Name: fieldName, TypeName: fieldType.Lexeme})
		if err := parser.expectStatementEnd(); err != nil {
			return nil, err
		}
	}
	if _, err := parser.consume(token.DEDENT, "expected end of struct body"); err != nil {
		return nil, err
	}

	stmt := &ast.StructDecl{Name: name, Fields: fields, Exported: exported}
	stmt.Span = start
	return stmt, nil
}

func (parser *Parser) functionDeclaration(start diagnostics.Span, exported bool) (ast.Stmt, error) {
	name, err := parser.consume(token.IDENTIFIER, "expected function name")
	if err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.LPA, "expected '(' after function name"); err != nil {
		return nil, err
	}

	params := []ast.Param{}
	if !parser.checkType(token.RPA) {
		for {
			pName, err := parser.consume(token.IDENTIFIER, "expected a parameter name")
			if err != nil {
				return nil, err
			}
			typeName, err := parser.typeAnnotation()
			if err != nil {
				return nil, err
			}
			params = append(params, ast.Param{Name: pName, TypeName: typeName})
			if !parser.isMatch([]token.TokenType{token.COMMA}) {
				break
			}
		}
	}
	if _, err := parser.consume(token.RPA, "expected ')' after parameter list"); err != nil {
		return nil, err
	}

	returnType := ""
	if parser.isMatch([]token.TokenType{token.ARROW}) {
		tok, err := parser.consume(token.IDENTIFIER, "expected a return type after '->'")
		if err != nil {
			return nil, err
		}
		returnType = tok.Lexeme
	}

	body, err := parser.suite()
	if err != nil {
		return nil, err
	}

	stmt := &ast.FunctionDecl{Name: name, Params: params, ReturnType: returnType, Body: body, Exported: exported}
	stmt.Span = start
	return stmt, nil
}

// importDeclaration parses "import module [as alias]" or
// "from module import a, b as c, ...".
func (parser *Parser) importDeclaration(start diagnostics.Span) (ast.Stmt, error) {
	if parser.previous().TokenType == token.FROM {
		moduleTok, err := parser.consume(token.IDENTIFIER, "expected a module name after 'from'")
		if err != nil {
			return nil, err
		}
		if _, err := parser.consume(token.IMPORT, "expected 'import' after module name"); err != nil {
			return nil, err
		}
		names := []string{}
		aliases := []string{}
		for {
			nameTok, err := parser.consume(token.IDENTIFIER, "expected an imported name")
			if err != nil {
				return nil, err
			}
			alias := ""
			if parser.isMatch([]token.TokenType{token.AS}) {
				aliasTok, err := parser.consume(token.IDENTIFIER, "expected an alias after 'as'")
				if err != nil {
					return nil, err
				}
				alias = aliasTok.Lexeme
			}
			names = append(names, nameTok.Lexeme)
			aliases = append(aliases, alias)
			if !parser.isMatch([]token.TokenType{token.COMMA}) {
				break
			}
		}
		if err := parser.expectStatementEnd(); err != nil {
			return nil, err
		}
		stmt := &ast.ImportStmt{Module: moduleTok.Lexeme, Names: names, Aliases: aliases}
		stmt.Span = start
		return stmt, nil
	}

	moduleTok, err := parser.consume(token.IDENTIFIER, "expected a module name after 'import'")
	if err != nil {
		return nil, err
	}
	if err := parser.expectStatementEnd(); err != nil {
		return nil, err
	}
	stmt := &ast.ImportStmt{Module: moduleTok.Lexeme}
	stmt.Span = start
	return stmt, nil
}

// suite parses ": NEWLINE INDENT statement+ DEDENT", the shared shape of
// every block-bodied construct (if/while/for/fn/struct/try).
func (parser *Parser) suite() (*ast.BlockStmt, error) {
	start := parser.span()
	if _, err := parser.consume(token.COLON, "expected ':' to open a block"); err != nil {
		return nil, err
	}
	if err := parser.expectStatementEnd(); err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.INDENT, "expected an indented block"); err != nil {
		return nil, err
	}

	statements := []ast.Stmt{}
	for !parser.checkType(token.DEDENT) && !parser.isFinished() {
		stmt, err := parser.declaration()
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
		parser.skipNewlines()
	}
	if _, err := parser.consume(token.DEDENT, "expected end of block"); err != nil {
		return nil, err
	}

	block := &ast.BlockStmt{Statements: statements}
	block.Span = start
	return block, nil
}

// expectStatementEnd consumes the NEWLINE terminating a simple statement,
// tolerating EOF as an implicit terminator.
func (parser *Parser) expectStatementEnd() error {
	if parser.checkType(token.NEWLINE) {
		parser.advance()
		return nil
	}
	if parser.isFinished() || parser.checkType(token.DEDENT) {
		return nil
	}
	return parser.syntaxErr("expected end of statement, found %q", parser.peek().Lexeme)
}

// statement parses a single statement: control flow, print, break,
// continue, return, try, or a plain expression statement.
func (parser *Parser) statement() (ast.Stmt, error) {
	start := parser.span()

	switch {
	case parser.isMatch([]token.TokenType{token.PRINT}):
		return parser.printStatement(start)
	case parser.isMatch([]token.TokenType{token.IF}):
		return parser.ifStatement(start)
	case parser.isMatch([]token.TokenType{token.WHILE}):
		return parser.whileStatement(start)
	case parser.isMatch([]token.TokenType{token.FOR}):
		return parser.forStatement(start)
	case parser.isMatch([]token.TokenType{token.TRY}):
		return parser.tryStatement(start)
	case parser.isMatch([]token.TokenType{token.BREAK}):
		if err := parser.expectStatementEnd(); err != nil {
			return nil, err
		}
		stmt := &ast.BreakStmt{}
		stmt.Span = start
		return stmt, nil
	case parser.isMatch([]token.TokenType{token.CONTINUE}):
		if err := parser.expectStatementEnd(); err != nil {
			return nil, err
		}
		stmt := &ast.ContinueStmt{}
		stmt.Span = start
		return stmt, nil
	case parser.isMatch([]token.TokenType{token.RETURN}):
		return parser.returnStatement(start)
	}

	expr, err := parser.expression()
	if err != nil {
		return nil, err
	}
	if err := parser.expectStatementEnd(); err != nil {
		return nil, err
	}
	stmt := &ast.ExpressionStmt{Expression: expr}
	stmt.Span = start
	return stmt, nil
}

func (parser *Parser) printStatement(start diagnostics.Span) (ast.Stmt, error) {
	expr, err := parser.expression()
	if err != nil {
		return nil, err
	}
	if err := parser.expectStatementEnd(); err != nil {
		return nil, err
	}
	stmt := &ast.PrintStmt{Expression: expr}
	stmt.Span = start
	return stmt, nil
}

func (parser *Parser) returnStatement(start diagnostics.Span) (ast.Stmt, error) {
	var value ast.Expression
	if !parser.checkType(token.NEWLINE) && !parser.isFinished() {
		var err error
		value, err = parser.expression()
		if err != nil {
			return nil, err
		}
	}
	if err := parser.expectStatementEnd(); err != nil {
		return nil, err
	}
	stmt := &ast.ReturnStmt{Value: value}
	stmt.Span = start
	return stmt, nil
}

func (parser *Parser) whileStatement(start diagnostics.Span) (ast.Stmt, error) {
	condition, err := parser.expression()
	if err != nil {
		return nil, err
	}
	body, err := parser.suite()
	if err != nil {
		return nil, err
	}
	stmt := &ast.WhileStmt{Condition: condition, Body: body}
	stmt.Span = start
	return stmt, nil
}

// forStatement parses either the arithmetic-range form
// "for name in start..end [..step]:" or the iterator form
// "for name in iterable:".
func (parser *Parser) forStatement(start diagnostics.Span) (ast.Stmt, error) {
	name, err := parser.consume(token.IDENTIFIER, "expected a loop variable name")
	if err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.IN, "expected 'in' after loop variable"); err != nil {
		return nil, err
	}

	first, err := parser.or()
	if err != nil {
		return nil, err
	}

	if parser.isMatch([]token.TokenType{token.RANGE, token.RANGE_EQ}) {
		inclusive := parser.previous().TokenType == token.RANGE_EQ
		end, err := parser.or()
		if err != nil {
			return nil, err
		}
		var step ast.Expression
		if parser.isMatch([]token.TokenType{token.RANGE}) {
			step, err = parser.or()
			if err != nil {
				return nil, err
			}
		}
		body, err := parser.suite()
		if err != nil {
			return nil, err
		}
		stmt := &ast.ForRangeStmt{Name: name, Start: first, End: end, Step: step, Inclusive: inclusive, Body: body}
		stmt.Span = start
		return stmt, nil
	}

	if parser.checkType(token.COLON) {
		body, err := parser.suite()
		if err != nil {
			return nil, err
		}
		stmt := &ast.ForIterStmt{Name: name, Iterable: first, Body: body}
		stmt.Span = start
		return stmt, nil
	}

	return nil, parser.syntaxErr("expected ':' after for-loop iterable")
}

func (parser *Parser) tryStatement(start diagnostics.Span) (ast.Stmt, error) {
	body, err := parser.suite()
	if err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.CATCH, "expected 'catch' after a try block"); err != nil {
		return nil, err
	}
	errName, err := parser.consume(token.IDENTIFIER, "expected a name to bind the caught error")
	if err != nil {
		return nil, err
	}
	handler, err := parser.suite()
	if err != nil {
		return nil, err
	}
	stmt := &ast.TryStmt{Body: body, ErrorName: errName, Handler: handler}
	stmt.Span = start
	return stmt, nil
}

func (parser *Parser) ifStatement(start diagnostics.Span) (ast.Stmt, error) {
	condition, err := parser.expression()
	if err != nil {
		return nil, err
	}
	then, err := parser.suite()
	if err != nil {
		return nil, err
	}

	var elseStmt ast.Stmt
	switch {
	case parser.isMatch([]token.TokenType{token.ELIF}):
		elseStmt, err = parser.ifStatement(parser.span())
		if err != nil {
			return nil, err
		}
	case parser.isMatch([]token.TokenType{token.ELSE}):
		elseStmt, err = parser.suite()
		if err != nil {
			return nil, err
		}
	}

	stmt := &ast.IfStmt{Condition: condition, Then: then, Else: elseStmt}
	stmt.Span = start
	return stmt, nil
}

// expression is the entry point for parsing expressions.
func (parser *Parser) expression() (ast.Expression, error) {
	return parser.assignment()
}

// assignment parses "target = value" and the compound-assignment
// operators, which desugar to Assign nodes carrying the original operator
// so the compiler can emit a read-modify-write sequence.
func (parser *Parser) assignment() (ast.Expression, error) {
	expr, err := parser.ternary()
	if err != nil {
		return nil, err
	}
	if parser.isMatch(assignOpTokenTypes) {
		opTok := parser.previous()
		value, err := parser.assignment()
		if err != nil {
			return nil, err
		}
		variable, ok := expr.(*ast.Variable)
		if !ok {
			return nil, parser.syntaxErr("invalid assignment target")
		}
		node := &ast.Assign{Name: variable.Name, Op: opTok.TokenType, Value: value}
		node.Span = variable.Span
		return node, nil
	}
	return expr, nil
}

// ternary parses "cond ? then : else", sitting above "or" in precedence.
func (parser *Parser) ternary() (ast.Expression, error) {
	expr, err := parser.or()
	if err != nil {
		return nil, err
	}
	if parser.isMatch([]token.TokenType{token.QUESTION}) {
		thenExpr, err := parser.expression()
		if err != nil {
			return nil, err
		}
		if _, err := parser.consume(token.COLON, "expected ':' in ternary expression"); err != nil {
			return nil, err
		}
		elseExpr, err := parser.ternary()
		if err != nil {
			return nil, err
		}
		node := &ast.Ternary{Condition: expr, Then: thenExpr, Else: elseExpr}
		return node, nil
	}
	return expr, nil
}

func (parser *Parser) or() (ast.Expression, error) {
	expr, err := parser.and()
	if err != nil {
		return nil, err
	}
	for parser.isMatch([]token.TokenType{token.OR}) {
		op := parser.previous()
		right, err := parser.and()
		if err != nil {
			return nil, err
		}
		expr = &ast.Logical{Left: expr, Operator: op, Right: right}
	}
	return expr, nil
}

func (parser *Parser) and() (ast.Expression, error) {
	expr, err := parser.notExpr()
	if err != nil {
		return nil, err
	}
	for parser.isMatch([]token.TokenType{token.AND}) {
		op := parser.previous()
		right, err := parser.notExpr()
		if err != nil {
			return nil, err
		}
		expr = &ast.Logical{Left: expr, Operator: op, Right: right}
	}
	return expr, nil
}

func (parser *Parser) notExpr() (ast.Expression, error) {
	if parser.isMatch([]token.TokenType{token.NOT}) {
		op := parser.previous()
		right, err := parser.notExpr()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Operator: op, Right: right}, nil
	}
	return parser.equality()
}

func (parser *Parser) equality() (ast.Expression, error) {
	exp, err := parser.comparison()
	if err != nil {
		return nil, err
	}
	for parser.isMatch(equalityTokenTypes) {
		operator := parser.previous()
		right, err := parser.comparison()
		if err != nil {
			return nil, err
		}
		exp = &ast.Binary{Left: exp, Operator: operator, Right: right}
	}
	return exp, nil
}

func (parser *Parser) comparison() (ast.Expression, error) {
	exp, err := parser.term()
	if err != nil {
		return nil, err
	}
	for parser.isMatch(comparisonTokenTypes) {
		operator := parser.previous()
		right, err := parser.term()
		if err != nil {
			return nil, err
		}
		exp = &ast.Binary{Left: exp, Operator: operator, Right: right}
	}
	return exp, nil
}

func (parser *Parser) term() (ast.Expression, error) {
	exp, err := parser.factor()
	if err != nil {
		return nil, err
	}
	for parser.isMatch(termTokenTypes) {
		operator := parser.previous()
		right, err := parser.factor()
		if err != nil {
			return nil, err
		}
		exp = &ast.Binary{Left: exp, Operator: operator, Right: right}
	}
	return exp, nil
}

func (parser *Parser) factor() (ast.Expression, error) {
	exp, err := parser.cast()
	if err != nil {
		return nil, err
	}
	for parser.isMatch(factorExpressionTypes) {
		operator := parser.previous()
		right, err := parser.cast()
		if err != nil {
			return nil, err
		}
		exp = &ast.Binary{Left: exp, Operator: operator, Right: right}
	}
	return exp, nil
}

// cast parses "expr as Type", Orus's only implicit-conversion escape
// hatch, binding tighter than the arithmetic operators but looser than
// unary so that "-x as i64" casts the negated value.
func (parser *Parser) cast() (ast.Expression, error) {
	exp, err := parser.unary()
	if err != nil {
		return nil, err
	}
	for parser.isMatch([]token.TokenType{token.AS}) {
		typeTok, err := parser.consume(token.IDENTIFIER, "expected a type name after 'as'")
		if err != nil {
			return nil, err
		}
		exp = &ast.Cast{Value: exp, TypeName: typeTok.Lexeme}
	}
	return exp, nil
}

func (parser *Parser) unary() (ast.Expression, error) {
	if parser.isMatch([]token.TokenType{token.BANG, token.SUB}) {
		operator := parser.previous()
		right, err := parser.unary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Operator: operator, Right: right}, nil
	}
	return parser.call()
}

// call parses postfix call/index/field-access chains binding tighter than
// any operator: "f(x).field[0]".
func (parser *Parser) call() (ast.Expression, error) {
	expr, err := parser.primary()
	if err != nil {
		return nil, err
	}

	for {
		switch {
		case parser.isMatch([]token.TokenType{token.LPA}):
			args := []ast.Expression{}
			if !parser.checkType(token.RPA) {
				for {
					arg, err := parser.expression()
					if err != nil {
						return nil, err
					}
					args = append(args, arg)
					if !parser.isMatch([]token.TokenType{token.COMMA}) {
						break
					}
				}
			}
			if _, err := parser.consume(token.RPA, "expected ')' after call arguments"); err != nil {
				return nil, err
			}
			expr = &ast.Call{Callee: expr, Arguments: args}
		case parser.isMatch([]token.TokenType{token.DOT}):
			field, err := parser.consume(token.IDENTIFIER, "expected a field name after '.'")
			if err != nil {
				return nil, err
			}
			expr = &ast.FieldAccess{Target: expr, Field: field}
		case parser.isMatch([]token.TokenType{token.LBRACKET}):
			idx, err := parser.expression()
			if err != nil {
				return nil, err
			}
			if _, err := parser.consume(token.RBRACKET, "expected ']' after index expression"); err != nil {
				return nil, err
			}
			expr = &ast.Index{Target: expr, Index: idx}
		default:
			return expr, nil
		}
	}
}

// primary parses the most basic forms of expressions: literals, grouping,
// identifiers, array literals, and struct literals.
func (parser *Parser) primary() (ast.Expression, error) {
	start := parser.span()

	switch {
	case parser.isMatch([]token.TokenType{token.FALSE}):
		return &ast.Literal{Value: false, Meta: ast.Meta{Span: start}}, nil
	case parser.isMatch([]token.TokenType{token.TRUE}):
		return &ast.Literal{Value: true, Meta: ast.Meta{Span: start}}, nil
	case parser.isMatch([]token.TokenType{token.NULL}):
		return &ast.Literal{Value: nil, Meta: ast.Meta{Span: start}}, nil
	case parser.isMatch([]token.TokenType{token.FLOAT, token.INT, token.STRING}):
		return &ast.Literal{Value: parser.previous().Literal, Meta: ast.Meta{Span: start}}, nil
	case parser.isMatch([]token.TokenType{token.LBRACKET}):
		elements := []ast.Expression{}
		if !parser.checkType(token.RBRACKET) {
			for {
				el, err := parser.expression()
				if err != nil {
					return nil, err
				}
				elements = append(elements, el)
				if !parser.isMatch([]token.TokenType{token.COMMA}) {
					break
				}
			}
		}
		if _, err := parser.consume(token.RBRACKET, "expected ']' after array literal"); err != nil {
			return nil, err
		}
		return &ast.ArrayLiteral{Elements: elements, Meta: ast.Meta{Span: start}}, nil
	case parser.isMatch([]token.TokenType{token.IDENTIFIER}):
		name := parser.previous()
		if parser.checkType(token.LCUR) {
			return parser.structLiteral(name, start)
		}
		return &ast.Variable{Name: name, Meta: ast.Meta{Span: start}}, nil
	case parser.isMatch([]token.TokenType{token.LPA}):
		expr, err := parser.expression()
		if err != nil {
			return nil, err
		}
		if _, err := parser.consume(token.RPA, "expected ')' to close grouping"); err != nil {
			return nil, err
		}
		return &ast.Grouping{Expression: expr, Meta: ast.Meta{Span: start}}, nil
	}

	return nil, parser.syntaxErr("unrecognised expression near %q", parser.peek().Lexeme)
}

func (parser *Parser) structLiteral(name token.Token, start diagnostics.Span) (ast.Expression, error) {
	if _, err := parser.consume(token.LCUR, "expected '{' to open a struct literal"); err != nil {
		return nil, err
	}
	fields := []string{}
	values := []ast.Expression{}
	if !parser.checkType(token.RCUR) {
		for {
			fieldTok, err := parser.consume(token.IDENTIFIER, "expected a field name")
			if err != nil {
				return nil, err
			}
			if _, err := parser.consume(token.COLON, "expected ':' after field name"); err != nil {
				return nil, err
			}
			value, err := parser.expression()
			if err != nil {
				return nil, err
			}
			fields = append(fields, fieldTok.Lexeme)
			values = append(values, value)
			if !parser.isMatch([]token.TokenType{token.COMMA}) {
				break
			}
		}
	}
	if _, err := parser.consume(token.RCUR, "expected '}' to close a struct literal"); err != nil {
		return nil, err
	}
	return &ast.StructLiteral{TypeName: name.Lexeme, Fields: fields, Values: values, Meta: ast.Meta{Span: start}}, nil
}

// consume advances past the current token if it matches tokenType,
// otherwise it reports a parse-error diagnostic.
func (parser *Parser) consume(tokenType token.TokenType, errorMessage string) (token.Token, error) {
	if parser.checkType(tokenType) {
		return parser.advance(), nil
	}
	return token.Token{}, parser.syntaxErr("%s (found %q)", errorMessage, parser.peek().Lexeme)
}

