package lexer

import "testing"

func TestNextToken(t *testing.T) {
	input := `PROGRAM main
VAR
	x : INT := 5;
END_VAR
	x := x + 10;
END_PROGRAM`

	tests := []struct {
		expectedLiteral string
		expectedType    TokenType
	}{
		{"PROGRAM", PROGRAM},
		{"main", IDENT},
		{"VAR", VAR},
		{"x", IDENT},
		{":", COLON},
		{"INT", IDENT},
		{":=", ASSIGN},
		{"5", INT},
		{";", SEMICOLON},
		{"END_VAR", END_VAR},
		{"x", IDENT},
		{":=", ASSIGN},
		{"x", IDENT},
		{"+", PLUS},
		{"10", INT},
		{";", SEMICOLON},
		{"END_PROGRAM", END_PROGRAM},
		{"", EOF},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%s, got=%s (literal=%q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestKeywordsAreCaseInsensitive(t *testing.T) {
	tests := []struct {
		input    string
		expected TokenType
	}{
		{"program", PROGRAM},
		{"Program", PROGRAM},
		{"PROGRAM", PROGRAM},
		{"function_block", FUNCTION_BLOCK},
		{"Function_Block", FUNCTION_BLOCK},
		{"var_in_out", VAR_IN_OUT},
		{"end_var", END_VAR},
	}

	for _, tt := range tests {
		if got := LookupIdent(tt.input); got != tt.expected {
			t.Errorf("LookupIdent(%q) = %s, want %s", tt.input, got, tt.expected)
		}
	}
}

func TestNumberLiterals(t *testing.T) {
	tests := []struct {
		input        string
		expectedType TokenType
	}{
		{"123", INT},
		{"16#FF", INT},
		{"2#1010", INT},
		{"123.45", REAL},
		{"1.5e10", REAL},
		{"1_000_000", INT},
	}

	for _, tt := range tests {
		l := New(tt.input)
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Errorf("New(%q).NextToken() type = %s, want %s", tt.input, tok.Type, tt.expectedType)
		}
		if tok.Literal != tt.input {
			t.Errorf("New(%q).NextToken() literal = %q, want %q", tt.input, tok.Literal, tt.input)
		}
	}
}

func TestTimeLiteral(t *testing.T) {
	l := New("T#5s")
	tok := l.NextToken()
	if tok.Type != TIME {
		t.Fatalf("type = %s, want TIME", tok.Type)
	}
	if tok.Literal != "T#5s" {
		t.Fatalf("literal = %q, want %q", tok.Literal, "T#5s")
	}
}

func TestStringEscapes(t *testing.T) {
	l := New(`'it''s $t tabbed'`)
	tok := l.NextToken()
	if tok.Type != STRING {
		t.Fatalf("type = %s, want STRING", tok.Type)
	}
	want := "it's \t tabbed"
	if tok.Literal != want {
		t.Fatalf("literal = %q, want %q", tok.Literal, want)
	}
}

func TestComments(t *testing.T) {
	input := `(* a block comment *)
x; // a line comment
y;`
	l := New(input)

	var got []string
	for {
		tok := l.NextToken()
		if tok.Type == EOF {
			break
		}
		got = append(got, tok.Literal)
	}

	want := []string{"x", ";", "y", ";"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestUnterminatedCommentReportsError(t *testing.T) {
	l := New("(* never closed")
	tok := l.NextToken()
	if tok.Type != EOF {
		t.Fatalf("type = %s, want EOF", tok.Type)
	}
	if len(l.Errors()) != 1 {
		t.Fatalf("errors = %v, want 1 unterminated-comment error", l.Errors())
	}
}

func TestIllegalCharacter(t *testing.T) {
	l := New("x := @;")
	l.NextToken() // x
	l.NextToken() // :=
	tok := l.NextToken()
	if tok.Type != ILLEGAL {
		t.Fatalf("type = %s, want ILLEGAL", tok.Type)
	}
	if len(l.Errors()) != 1 {
		t.Fatalf("errors = %v, want 1 illegal-character error", l.Errors())
	}
}
