package style

import (
	"github.com/gmofishsauce/zcc/internal/diagnostic"
	"github.com/gmofishsauce/zcc/internal/token"
)

// Check walks every physical line in list and records a warning in log
// for each whitespace-rule violation: wrong indentation on a line-begin
// token, trailing whitespace, a tab following a space in a line's
// indentation, or a line past opts.MaxLineLength. A line whose first
// token has no entry in ann (a comment or a raw preprocessor line,
// neither of which the parser attaches to any AST node) is left out of
// the indentation check entirely; trailing-whitespace and line-length
// checks still apply to it.
func Check(list *token.List, ann map[*token.Token]*Annotation, opts Options, log *diagnostic.Log) {
	for _, li := range partitionLines(list) {
		checkLine(li, ann, opts, log)
	}
}

func checkLine(li lineInfo, ann map[*token.Token]*Annotation, opts Options, log *diagnostic.Log) {
	width := 0
	for _, t := range li.tokens {
		if t == li.newline {
			continue
		}
		width += len(t.Text)
	}
	if width > opts.MaxLineLength {
		loc := li.tokens[0].Range
		log.AddWarning(diagnostic.StageStyle, loc, "line is %d columns, exceeds limit of %d", width, opts.MaxLineLength)
	}

	if len(li.trailing) > 0 {
		log.AddWarning(diagnostic.StageStyle, li.trailing[0].Range, "trailing whitespace")
	}

	if t := firstTabAfterSpace(li.leading); t != nil {
		log.AddWarning(diagnostic.StageStyle, t.Range, "tab follows space in indentation")
	}

	if li.content == nil {
		return
	}
	a, ok := ann[li.content]
	if !ok || !a.LineBegin {
		return
	}
	want := expectedLeading(a, opts)
	got := leadingText(li.leading)
	if got != want {
		log.AddWarning(diagnostic.StageStyle, li.content.Range, "expected %s, found %d leading whitespace byte(s)", describeLeading(a), len(got))
	}
}
