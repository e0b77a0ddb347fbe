package lexer

import (
	"testing"

	"orus/token"
)

// tokenKinds extracts just the TokenType sequence from a scan, since exact
// line/column bookkeeping is exercised separately and most tests here only
// care about which tokens were produced and in what order.
func tokenKinds(toks []token.Token) []token.TokenType {
	kinds := make([]token.TokenType, len(toks))
	for i, tok := range toks {
		kinds[i] = tok.TokenType
	}
	return kinds
}

func assertKinds(t *testing.T, got []token.TokenType, want []token.TokenType) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("token count = %d, want %d\ngot:  %v\nwant: %v", len(got), len(want), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token[%d] = %s, want %s\ngot:  %v\nwant: %v", i, got[i], want[i], got, want)
		}
	}
}

func TestOperatorsSuccess(t *testing.T) {
	scanner := CreateLexer("== / = * + > - < != <= >= !")
	got, err := scanner.Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}
	want := []token.TokenType{
		token.EQUAL_EQUAL, token.DIV, token.ASSIGN, token.MULT, token.ADD,
		token.LARGER, token.SUB, token.LESS, token.NOT_EQUAL, token.LESS_EQUAL,
		token.LARGER_EQUAL, token.BANG, token.NEWLINE, token.EOF,
	}
	assertKinds(t, tokenKinds(got), want)
}

func TestScanSuccess(t *testing.T) {
	scanner := CreateLexer("(){}**+!=<=")
	got, err := scanner.Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}
	want := []token.TokenType{
		token.LPA, token.RPA, token.LCUR, token.RCUR, token.MULT, token.MULT,
		token.ADD, token.NOT_EQUAL, token.LESS_EQUAL, token.NEWLINE, token.EOF,
	}
	assertKinds(t, tokenKinds(got), want)
}

func TestIndentationEmitsIndentAndDedent(t *testing.T) {
	src := "if true:\n    x = 1\n    y = 2\nz = 3\n"
	scanner := CreateLexer(src)
	got, err := scanner.Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}
	want := []token.TokenType{
		token.IF, token.TRUE, token.COLON, token.NEWLINE,
		token.INDENT,
		token.IDENTIFIER, token.ASSIGN, token.INT, token.NEWLINE,
		token.IDENTIFIER, token.ASSIGN, token.INT, token.NEWLINE,
		token.DEDENT,
		token.IDENTIFIER, token.ASSIGN, token.INT, token.NEWLINE,
		token.EOF,
	}
	assertKinds(t, tokenKinds(got), want)
}

func TestBlankAndCommentLinesDoNotAffectIndentation(t *testing.T) {
	src := "if true:\n    x = 1\n\n    # a comment\n    y = 2\n"
	scanner := CreateLexer(src)
	got, err := scanner.Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}
	want := []token.TokenType{
		token.IF, token.TRUE, token.COLON, token.NEWLINE,
		token.INDENT,
		token.IDENTIFIER, token.ASSIGN, token.INT, token.NEWLINE,
		token.IDENTIFIER, token.ASSIGN, token.INT, token.NEWLINE,
		token.DEDENT,
		token.EOF,
	}
	assertKinds(t, tokenKinds(got), want)
}

func TestNumericSuffixes(t *testing.T) {
	scanner := CreateLexer("1i64 2u32 3.5f64 7")
	got, err := scanner.Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}
	want := []token.TokenType{token.INT, token.INT, token.FLOAT, token.INT, token.NEWLINE, token.EOF}
	assertKinds(t, tokenKinds(got), want)

	if got[2].Literal.(float64) != 3.5 {
		t.Errorf("third literal = %v, want 3.5", got[2].Literal)
	}
}

func TestUnterminatedStringReportsError(t *testing.T) {
	scanner := CreateLexer(`"unterminated`)
	_, err := scanner.Scan()
	if err == nil {
		t.Fatal("expected an error for an unterminated string literal")
	}
}

func TestBlockComment(t *testing.T) {
	scanner := CreateLexer("1 /* ignored /* nested */ still ignored */ 2")
	got, err := scanner.Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}
	want := []token.TokenType{token.INT, token.INT, token.NEWLINE, token.EOF}
	assertKinds(t, tokenKinds(got), want)
}

func TestParenSuppressesNewline(t *testing.T) {
	scanner := CreateLexer("f(1,\n2)\n")
	got, err := scanner.Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}
	want := []token.TokenType{
		token.IDENTIFIER, token.LPA, token.INT, token.COMMA, token.INT, token.RPA,
		token.NEWLINE, token.EOF,
	}
	assertKinds(t, tokenKinds(got), want)
}
