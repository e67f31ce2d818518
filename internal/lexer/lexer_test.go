package lexer

import "testing"

func TestNextToken(t *testing.T) {
	input := `define main = {} \u {} -> plus# {2, 3}`

	tests := []struct {
		expectedLiteral string
		expectedType    TokenType
	}{
		{"define", DEFINE},
		{"main", IDENT},
		{"=", ASSIGN},
		{"{", LBRACE},
		{"}", RBRACE},
		{"\\u", UPDATE},
		{"{", LBRACE},
		{"}", RBRACE},
		{"->", ARROW},
		{"plus#", IDENT},
		{"{", LBRACE},
		{"2", INT},
		{",", COMMA},
		{"3", INT},
		{"}", RBRACE},
		{"", EOF},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (literal=%q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestKeywords(t *testing.T) {
	input := `let letrec in case of define`

	tests := []struct {
		expectedLiteral string
		expectedType    TokenType
	}{
		{"let", LET},
		{"letrec", LETREC},
		{"in", IN},
		{"case", CASE},
		{"of", OF},
		{"define", DEFINE},
		{"", EOF},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q", i, tt.expectedType, tok.Type)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestUpdateMarkers(t *testing.T) {
	l := New(`\u \n \x`)

	tok := l.NextToken()
	if tok.Type != UPDATE || tok.Literal != "\\u" {
		t.Fatalf("expected UPDATE \\u, got %q %q", tok.Type, tok.Literal)
	}

	tok = l.NextToken()
	if tok.Type != NOUPDATE || tok.Literal != "\\n" {
		t.Fatalf("expected NOUPDATE \\n, got %q %q", tok.Type, tok.Literal)
	}

	tok = l.NextToken()
	if tok.Type != ILLEGAL {
		t.Fatalf("expected ILLEGAL for \\x, got %q %q", tok.Type, tok.Literal)
	}
	if len(l.Errors()) != 1 {
		t.Fatalf("expected 1 lexer error, got %d", len(l.Errors()))
	}
}

func TestGlyphs(t *testing.T) {
	input := `-> => = ; , { } ( ) + - * /`

	tests := []TokenType{
		ARROW, FATARROW, ASSIGN, SEMICOLON, COMMA,
		LBRACE, RBRACE, LPAREN, RPAREN,
		PLUS, MINUS, STAR, SLASH, EOF,
	}

	l := New(input)
	for i, want := range tests {
		tok := l.NextToken()
		if tok.Type != want {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (literal=%q)", i, want, tok.Type, tok.Literal)
		}
	}
}

func TestIdentifierCharacters(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"even?", "even?"},
		{"my-func", "my-func"},
		{"snake_case", "snake_case"},
		{"x2", "x2"},
		{"plus#", "plus#"},
	}

	for _, tt := range tests {
		l := New(tt.input)
		tok := l.NextToken()
		if tok.Type != IDENT || tok.Literal != tt.want {
			t.Errorf("New(%q).NextToken() = %q %q, want IDENT %q", tt.input, tok.Type, tok.Literal, tt.want)
		}
	}
}

func TestComments(t *testing.T) {
	input := "-- a comment line\ndefine -- trailing\nx"

	l := New(input)

	tok := l.NextToken()
	if tok.Type != DEFINE {
		t.Fatalf("expected DEFINE after comment, got %q %q", tok.Type, tok.Literal)
	}
	if tok.Pos.Line != 2 {
		t.Errorf("expected DEFINE on line 2, got line %d", tok.Pos.Line)
	}

	tok = l.NextToken()
	if tok.Type != IDENT || tok.Literal != "x" {
		t.Fatalf("expected IDENT x after trailing comment, got %q %q", tok.Type, tok.Literal)
	}
	if tok.Pos.Line != 3 {
		t.Errorf("expected x on line 3, got line %d", tok.Pos.Line)
	}
}

func TestPositions(t *testing.T) {
	input := "define x\n  = y"

	tests := []struct {
		literal string
		line    int
		column  int
	}{
		{"define", 1, 1},
		{"x", 1, 8},
		{"=", 2, 3},
		{"y", 2, 5},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Literal != tt.literal {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q", i, tt.literal, tok.Literal)
		}
		if tok.Pos.Line != tt.line || tok.Pos.Column != tt.column {
			t.Errorf("tests[%d] - position wrong for %q. expected=%d:%d, got=%d:%d",
				i, tt.literal, tt.line, tt.column, tok.Pos.Line, tok.Pos.Column)
		}
	}
}

func TestNumberWithPrimitiveMarker(t *testing.T) {
	l := New("42# 7")

	tok := l.NextToken()
	if tok.Type != INT || tok.Literal != "42" {
		t.Fatalf("expected INT \"42\", got %q %q", tok.Type, tok.Literal)
	}

	tok = l.NextToken()
	if tok.Type != INT || tok.Literal != "7" {
		t.Fatalf("expected INT \"7\", got %q %q", tok.Type, tok.Literal)
	}
}
