package parser_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmofishsauce/zcc/internal/ast"
	"github.com/gmofishsauce/zcc/internal/diagnostic"
	"github.com/gmofishsauce/zcc/internal/lexer"
	"github.com/gmofishsauce/zcc/internal/parser"
	"github.com/gmofishsauce/zcc/internal/token"
)

func parseSrc(t *testing.T, src string) (*ast.Module, *diagnostic.Log) {
	t.Helper()
	list := lexer.New(strings.NewReader(src), "test.c").Lex()
	log := diagnostic.NewLog()
	mod := parser.ParseModule(list, "test.c", log)
	return mod, log
}

// filteredSemanticTokens mirrors the trivia-skipping view Parser.New
// builds, so tests can check that CollectTokens recovers exactly this
// sequence in order.
func filteredSemanticTokens(list *token.List) []*token.Token {
	var out []*token.Token
	for t := list.First(); t != nil; t = t.Next() {
		if t.Kind.IsTrivia() || t.Kind == token.PreprocessorLine || t.Kind == token.EOF {
			continue
		}
		out = append(out, t)
	}
	return out
}

func TestParseSimpleFunction(t *testing.T) {
	mod, log := parseSrc(t, "int add(int a, int b) { return a + b; }\n")
	require.Empty(t, log.Messages())
	require.Len(t, mod.Decls, 1)
	fd, ok := mod.Decls[0].(*ast.FuncDecl)
	require.True(t, ok, "expected *ast.FuncDecl, got %T", mod.Decls[0])
	assert.Equal(t, "add", fd.Declarator.Ident())
	require.NotNil(t, fd.Body)
	require.Len(t, fd.Body.Items, 1)
	ret, ok := fd.Body.Items[0].(*ast.ReturnStmt)
	require.True(t, ok)
	bin, ok := ret.Value.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, ast.OpAdd, bin.Op)
}

func TestParseGlobalVarWithInitializer(t *testing.T) {
	mod, log := parseSrc(t, "static const int x = 1, y = 2;\n")
	require.Empty(t, log.Messages())
	require.Len(t, mod.Decls, 1)
	vd, ok := mod.Decls[0].(*ast.VarDecl)
	require.True(t, ok)
	assert.Equal(t, ast.SCStatic, vd.Storage)
	require.Len(t, vd.Declarators, 2)
	assert.Equal(t, "x", vd.Declarators[0].Declarator.Ident())
	assert.Equal(t, "y", vd.Declarators[1].Declarator.Ident())
}

func TestParseTypedefDisambiguation(t *testing.T) {
	mod, log := parseSrc(t, "typedef int myint_t;\nmyint_t *p;\n")
	require.Empty(t, log.Messages())
	require.Len(t, mod.Decls, 2)
	_, ok := mod.Decls[0].(*ast.TypedefDecl)
	require.True(t, ok)
	vd, ok := mod.Decls[1].(*ast.VarDecl)
	require.True(t, ok, "expected typedef name to introduce a declaration, got %T", mod.Decls[1])
	require.Len(t, vd.Declarators, 1)
	ptr, ok := vd.Declarators[0].Declarator.(*ast.PointerDeclarator)
	require.True(t, ok)
	assert.Equal(t, "p", ptr.Ident())
}

func TestParseStructWithBitFields(t *testing.T) {
	mod, log := parseSrc(t, "struct flags { unsigned x:3; unsigned y:5, z:1; };\n")
	require.Empty(t, log.Messages())
	require.Len(t, mod.Decls, 1)
	rd, ok := mod.Decls[0].(*ast.RecordDecl)
	require.True(t, ok)
	require.Len(t, rd.Spec.Members, 3)
	assert.Equal(t, "x", rd.Spec.Members[0].Declarator.Ident())
	assert.Equal(t, "y", rd.Spec.Members[1].Declarator.Ident())
	assert.Equal(t, "z", rd.Spec.Members[2].Declarator.Ident())
	require.NotNil(t, rd.Spec.Members[2].BitWidth)
}

func TestParseCastVsParenExpr(t *testing.T) {
	mod, log := parseSrc(t, "typedef long size_t;\nvoid f(void) { long a; a = (size_t)1; a = (a); }\n")
	require.Empty(t, log.Messages())
	require.Len(t, mod.Decls, 2)
	fd := mod.Decls[1].(*ast.FuncDecl)
	require.Len(t, fd.Body.Items, 3)

	assign1 := fd.Body.Items[1].(*ast.ExprStmt).Expr.(*ast.BinaryExpr)
	_, isCast := assign1.Right.(*ast.CastExpr)
	assert.True(t, isCast, "expected (size_t)1 to parse as a cast, got %T", assign1.Right)

	assign2 := fd.Body.Items[2].(*ast.ExprStmt).Expr.(*ast.BinaryExpr)
	_, isParen := assign2.Right.(*ast.ParenExpr)
	assert.True(t, isParen, "expected (a) to parse as a parenthesised expression, got %T", assign2.Right)
}

func TestParseForLoopAndCompoundLiteral(t *testing.T) {
	mod, log := parseSrc(t, "struct pt { int x; int y; };\nvoid f(void) {\n"+
		"for (int i = 0; i < 10; i++) { }\n"+
		"struct pt p = (struct pt){.x = 1, .y = 2};\n}\n")
	require.Empty(t, log.Messages())
	fd := mod.Decls[1].(*ast.FuncDecl)
	require.Len(t, fd.Body.Items, 2)

	forStmt, ok := fd.Body.Items[0].(*ast.ForStmt)
	require.True(t, ok)
	require.NotNil(t, forStmt.Init)
	require.NotNil(t, forStmt.Cond)
	require.NotNil(t, forStmt.Post)

	decl := fd.Body.Items[1].(*ast.DeclStmt).Decl.(*ast.VarDecl)
	init := decl.Declarators[0].Init
	cl, ok := init.(*ast.CompoundLiteralExpr)
	require.True(t, ok)
	require.Len(t, cl.Init.Elements, 2)
	assert.Equal(t, "x", cl.Init.Elements[0].Designator[0].Field)
	assert.Equal(t, "y", cl.Init.Elements[1].Designator[0].Field)
}

func TestCollectTokensRecoversSourceOrder(t *testing.T) {
	src := "int f(int a) { if (a) return a; else return 0; }\n"
	list := lexer.New(strings.NewReader(src), "test.c").Lex()
	log := diagnostic.NewLog()
	mod := parser.ParseModule(list, "test.c", log)
	require.Empty(t, log.Messages())

	want := filteredSemanticTokens(list)
	got := ast.CollectTokens(mod)
	require.Equal(t, len(want), len(got), "CollectTokens must recover every semantic token exactly once")
	for i := range want {
		assert.Same(t, want[i], got[i], "token %d out of order: want %q got %q", i, want[i].Text, got[i].Text)
	}
}

func TestExternCBlock(t *testing.T) {
	mod, log := parseSrc(t, `extern "C" {
int f(void);
int g(void);
}
`)
	require.Empty(t, log.Messages())
	require.Len(t, mod.Decls, 1)
	ec, ok := mod.Decls[0].(*ast.ExternCDecl)
	require.True(t, ok)
	require.Len(t, ec.Decls, 2)
}
