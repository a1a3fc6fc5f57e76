package style

import (
	"strings"

	"github.com/gmofishsauce/zcc/internal/token"
)

// Fix reconstructs list's source text with every whitespace violation
// corrected: a line-begin token's leading run is replaced by
// expectedLeading's answer, trailing whitespace before the newline is
// dropped, and everything else - every non-whitespace token, and the
// interior spacing between tokens on the same line - is copied through
// unchanged. A line led by a token absent from ann (comment or
// preprocessor text) keeps its original leading whitespace verbatim.
//
// Running Fix again on its own output is a no-op: the corrected text
// re-lexes and re-parses to the same AST shape, so Annotate assigns the
// same levels and continuations, and the leading/trailing whitespace
// Fix already wrote already matches what it would write again.
func Fix(list *token.List, ann map[*token.Token]*Annotation, opts Options) string {
	var sb strings.Builder
	for _, li := range partitionLines(list) {
		writeFixedLine(&sb, li, ann, opts)
	}
	return sb.String()
}

func writeFixedLine(sb *strings.Builder, li lineInfo, ann map[*token.Token]*Annotation, opts Options) {
	if li.content == nil {
		if li.newline != nil {
			sb.WriteString(li.newline.Text)
		}
		return
	}

	leadingSet := make(map[*token.Token]bool, len(li.leading))
	for _, t := range li.leading {
		leadingSet[t] = true
	}
	trailingSet := make(map[*token.Token]bool, len(li.trailing))
	for _, t := range li.trailing {
		trailingSet[t] = true
	}

	if a, ok := ann[li.content]; ok && a.LineBegin {
		sb.WriteString(expectedLeading(a, opts))
	} else {
		sb.WriteString(leadingText(li.leading))
	}

	for _, t := range li.tokens {
		if leadingSet[t] || trailingSet[t] || t == li.newline {
			continue
		}
		sb.WriteString(t.Text)
	}
	if li.newline != nil {
		sb.WriteString(li.newline.Text)
	}
}
