package optimizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orus/ast"
	"orus/optimizer"
	"orus/token"
)

func i32Lit(v int64) *ast.Literal {
	lit := &ast.Literal{Value: v}
	lit.Meta.Type = "i32"
	return lit
}

func TestFoldProgramCollapsesConstantArithmetic(t *testing.T) {
	bin := &ast.Binary{
		Left:     i32Lit(2),
		Operator: token.Token{TokenType: token.ADD, Lexeme: "+"},
		Right:    i32Lit(3),
	}
	bin.Meta.Type = "i32"
	stmt := &ast.ExpressionStmt{Expression: bin}

	optimizer.Run([]ast.Stmt{stmt}, optimizer.Options{FoldConstants: true}, nil)

	lit, ok := stmt.Expression.(*ast.Literal)
	require.True(t, ok, "expected the binary expression to fold into a literal")
	assert.Equal(t, int64(5), lit.Value)
}

func TestFoldProgramLeavesNonConstantExpressionAlone(t *testing.T) {
	bin := &ast.Binary{
		Left:     &ast.Variable{Name: token.Token{TokenType: token.IDENTIFIER, Lexeme: "x"}},
		Operator: token.Token{TokenType: token.ADD, Lexeme: "+"},
		Right:    i32Lit(3),
	}
	bin.Meta.Type = "i32"
	stmt := &ast.ExpressionStmt{Expression: bin}

	optimizer.Run([]ast.Stmt{stmt}, optimizer.Options{FoldConstants: true}, nil)

	_, stillBinary := stmt.Expression.(*ast.Binary)
	assert.True(t, stillBinary, "an expression referencing a variable must not be folded")
}

func TestFoldProgramShortCircuitsLogicalAnd(t *testing.T) {
	falseLit := &ast.Literal{Value: false}
	falseLit.Meta.Type = "bool"
	logical := &ast.Logical{
		Left:     falseLit,
		Operator: token.Token{TokenType: token.AND, Lexeme: "and"},
		Right:    &ast.Variable{Name: token.Token{TokenType: token.IDENTIFIER, Lexeme: "sideEffecting"}},
	}
	stmt := &ast.ExpressionStmt{Expression: logical}

	optimizer.Run([]ast.Stmt{stmt}, optimizer.Options{FoldConstants: true}, nil)

	lit, ok := stmt.Expression.(*ast.Literal)
	require.True(t, ok, "false and x must fold away the right operand")
	assert.Equal(t, false, lit.Value)
}
