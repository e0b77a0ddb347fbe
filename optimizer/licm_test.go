package optimizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orus/ast"
	"orus/optimizer"
	"orus/token"
)

func ident(name string) token.Token {
	return token.Token{TokenType: token.IDENTIFIER, Lexeme: name}
}

// TestLICMHoistsInvariantSubexpressionFromWhileCondition builds
// "while y + 1 < x: x = x - 1" and checks that the loop-invariant "y + 1"
// is lifted into a preheader local ahead of the loop, leaving the
// condition comparing that local against the loop-varying x.
func TestLICMHoistsInvariantSubexpressionFromWhileCondition(t *testing.T) {
	invariantPart := &ast.Binary{
		Left:     &ast.Variable{Name: ident("y")},
		Operator: token.Token{TokenType: token.ADD, Lexeme: "+"},
		Right:    i32Lit(1),
	}
	condition := &ast.Binary{
		Left:     invariantPart,
		Operator: token.Token{TokenType: token.LESS, Lexeme: "<"},
		Right:    &ast.Variable{Name: ident("x")},
	}
	assign := &ast.Assign{
		Name: ident("x"),
		Op:   token.ASSIGN,
		Value: &ast.Binary{
			Left:     &ast.Variable{Name: ident("x")},
			Operator: token.Token{TokenType: token.SUB, Lexeme: "-"},
			Right:    i32Lit(1),
		},
	}
	whileStmt := &ast.WhileStmt{
		Condition: condition,
		Body: &ast.BlockStmt{
			Statements: []ast.Stmt{&ast.ExpressionStmt{Expression: assign}},
		},
	}

	rewritten, ctx := optimizer.Run([]ast.Stmt{whileStmt}, optimizer.Options{LICM: true}, nil)

	require.Equal(t, 1, ctx.Hoisted)
	require.Len(t, rewritten, 2, "expected a preheader declaration ahead of the while loop")

	preheader, ok := rewritten[0].(*ast.VarStmt)
	require.True(t, ok, "preheader statement must be a VarStmt")
	assert.Same(t, invariantPart, preheader.Initializer)

	loop, ok := rewritten[1].(*ast.WhileStmt)
	require.True(t, ok)
	newCond, ok := loop.Condition.(*ast.Binary)
	require.True(t, ok)
	ref, ok := newCond.Left.(*ast.Variable)
	require.True(t, ok, "the invariant left operand must be replaced with a reference to the preheader local")
	assert.Equal(t, preheader.Name.Lexeme, ref.Name.Lexeme)
}
