package style_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmofishsauce/zcc/internal/diagnostic"
	"github.com/gmofishsauce/zcc/internal/lexer"
	"github.com/gmofishsauce/zcc/internal/parser"
	"github.com/gmofishsauce/zcc/internal/style"
	"github.com/gmofishsauce/zcc/internal/token"
)

func annotate(t *testing.T, src string) (*token.List, map[*token.Token]*style.Annotation) {
	t.Helper()
	list := lexer.New(strings.NewReader(src), "test.c").Lex()
	log := diagnostic.NewLog()
	mod := parser.ParseModule(list, "test.c", log)
	require.Empty(t, log.Messages())
	return list, style.Annotate(mod)
}

func TestCheckFlagsWrongIndentation(t *testing.T) {
	src := "int f(void)\n{\n  return 1;\n}\n"
	list, ann := annotate(t, src)
	log := diagnostic.NewLog()
	style.Check(list, ann, style.DefaultOptions(), log)
	require.NotEmpty(t, log.Messages())
	assert.Equal(t, diagnostic.StageStyle, log.Messages()[0].Stage)
}

func TestCheckAcceptsTabIndentedBody(t *testing.T) {
	src := "int f(void)\n{\n\treturn 1;\n}\n"
	list, ann := annotate(t, src)
	log := diagnostic.NewLog()
	style.Check(list, ann, style.DefaultOptions(), log)
	assert.Empty(t, log.Messages())
}

func TestCheckFlagsTrailingWhitespace(t *testing.T) {
	src := "int f(void)\n{  \n\treturn 1;\n}\n"
	list, ann := annotate(t, src)
	log := diagnostic.NewLog()
	style.Check(list, ann, style.DefaultOptions(), log)
	found := false
	for _, m := range log.Messages() {
		if strings.Contains(m.Text, "trailing whitespace") {
			found = true
		}
	}
	assert.True(t, found, "expected a trailing-whitespace violation, got %v", log.Messages())
}

func TestFixCorrectsIndentationAndStripsTrailingWhitespace(t *testing.T) {
	src := "int f(void){\n  return 1;  \n}\n"
	list, ann := annotate(t, src)
	fixed := style.Fix(list, ann, style.DefaultOptions())
	assert.Equal(t, "int f(void){\n\treturn 1;\n}\n", fixed)
}

func TestFixIsIdempotent(t *testing.T) {
	src := "int f(void){\n  return 1;  \n}\n"
	list, ann := annotate(t, src)
	once := style.Fix(list, ann, style.DefaultOptions())

	list2, ann2 := annotate(t, once)
	twice := style.Fix(list2, ann2, style.DefaultOptions())
	assert.Equal(t, once, twice)
}

func TestCheckIsQuietAfterFix(t *testing.T) {
	src := "int f(void){\n  return 1;  \n}\n"
	list, ann := annotate(t, src)
	fixed := style.Fix(list, ann, style.DefaultOptions())

	list2, ann2 := annotate(t, fixed)
	log := diagnostic.NewLog()
	style.Check(list2, ann2, style.DefaultOptions(), log)
	assert.Empty(t, log.Messages())
}

func TestFixLeavesCommentIndentationAlone(t *testing.T) {
	src := "int f(void)\n{\n    // odd indent, not a real statement\n\treturn 1;\n}\n"
	list, ann := annotate(t, src)
	fixed := style.Fix(list, ann, style.DefaultOptions())
	assert.Contains(t, fixed, "    // odd indent, not a real statement\n")
}
