package lexer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmofishsauce/zcc/internal/lexer"
	"github.com/gmofishsauce/zcc/internal/token"
)

func lexAll(src string) *token.List {
	l := lexer.New(strings.NewReader(src), "test.c")
	return l.Lex()
}

func kinds(list *token.List) []token.Kind {
	var out []token.Kind
	for _, t := range list.Slice() {
		out = append(out, t.Kind)
	}
	return out
}

func TestRoundTrip(t *testing.T) {
	srcs := []string{
		"int f(void){return 1;}\n",
		"struct S{int x:3; int y:5;};\n",
		"long l;\nvoid f(void){l=l+1;}\n",
		"/* block */ // line\n#pragma once\n\"str\\n\" 'c' L\"wide\"\n",
		"a->b.c[1] += 2;\n",
		"x = 1 \\\n    + 2;\n",
	}
	for _, src := range srcs {
		list := lexAll(src)
		assert.Equal(t, src, list.Text(), "token text must reproduce source byte-for-byte")
	}
}

func TestKeywordsVsIdentifiers(t *testing.T) {
	list := lexAll("struct myStruct int16x { }")
	toks := list.Slice()
	require.True(t, len(toks) >= 3)
	assert.Equal(t, token.Keyword, toks[0].Kind)
	// whitespace then identifier "myStruct"
	var identSeen, sawMyStruct bool
	for _, tk := range toks {
		if tk.Kind == token.Identifier && tk.Text == "myStruct" {
			identSeen = true
			sawMyStruct = true
		}
	}
	assert.True(t, identSeen)
	assert.True(t, sawMyStruct)
}

func TestIntegerLiteralForms(t *testing.T) {
	cases := []string{"123", "0x1F", "0X1f", "010", "123ULL", "123ull", "0xFFL", "123LLU"}
	for _, c := range cases {
		list := lexAll(c)
		toks := list.Slice()
		require.GreaterOrEqual(t, len(toks), 1)
		assert.Equal(t, token.IntLiteral, toks[0].Kind, "literal %q", c)
		assert.Equal(t, c, toks[0].Text)
	}
}

func TestEOFTerminates(t *testing.T) {
	list := lexAll("")
	toks := list.Slice()
	require.Len(t, toks, 1)
	assert.Equal(t, token.EOF, toks[0].Kind)
}

func TestUnterminatedStringIsLexError(t *testing.T) {
	list := lexAll("\"abc")
	ks := kinds(list)
	assert.Contains(t, ks, token.LexError)
}

func TestWhitespaceAndCommentsPreserved(t *testing.T) {
	list := lexAll("int  x;\t// trailing\n")
	found := map[token.Kind]bool{}
	for _, k := range kinds(list) {
		found[k] = true
	}
	assert.True(t, found[token.WhitespaceSpace])
	assert.True(t, found[token.WhitespaceTab])
	assert.True(t, found[token.CommentLine])
}

func TestMultiCharPunctuatorGreedy(t *testing.T) {
	list := lexAll("a<<=1;")
	toks := list.Slice()
	var sawShiftAssign bool
	for _, tk := range toks {
		if tk.Kind == token.Punctuation && tk.Text == "<<=" {
			sawShiftAssign = true
		}
	}
	assert.True(t, sawShiftAssign, "expected greedy match of <<= over < and <<")
}

func TestDoublyLinkedNavigation(t *testing.T) {
	list := lexAll("a b")
	first := list.First()
	require.NotNil(t, first)
	last := list.Last()
	require.NotNil(t, last)
	assert.Nil(t, first.Prev())
	assert.Nil(t, last.Next())
	// walking forward from first then back from last should meet.
	n := 0
	for tk := first; tk != nil; tk = tk.Next() {
		n++
	}
	back := 0
	for tk := last; tk != nil; tk = tk.Prev() {
		back++
	}
	assert.Equal(t, n, back)
}
