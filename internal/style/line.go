package style

import "github.com/gmofishsauce/zcc/internal/token"

// lineInfo is one physical line's tokens, already split into the parts
// Check and Fix both care about. lexNewline never coalesces more than
// one line terminator into a token, so partitioning on WhitespaceNewline
// tokens always yields exactly one group per physical line, including
// an empty group for each blank line in a run of several.
type lineInfo struct {
	tokens   []*token.Token
	leading  []*token.Token // leading whitespace, possibly empty
	content  *token.Token   // first non-whitespace token, nil if the line is blank
	trailing []*token.Token // whitespace run immediately before newline/EOF
	newline  *token.Token   // nil for a final line with no terminator
}

func partitionLines(list *token.List) []lineInfo {
	var out []lineInfo
	var cur []*token.Token
	flush := func() {
		if cur == nil {
			return
		}
		out = append(out, buildLineInfo(cur))
		cur = nil
	}
	for t := list.First(); t != nil; t = t.Next() {
		if t.Kind == token.EOF {
			continue
		}
		cur = append(cur, t)
		if t.Kind == token.WhitespaceNewline {
			flush()
		}
	}
	flush()
	return out
}

func buildLineInfo(toks []*token.Token) lineInfo {
	li := lineInfo{tokens: toks}
	i := 0
	for i < len(toks) && isWS(toks[i].Kind) {
		li.leading = append(li.leading, toks[i])
		i++
	}
	if i < len(toks) && toks[i].Kind == token.WhitespaceNewline {
		li.newline = toks[i]
		return li
	}
	j := len(toks) - 1
	if j >= 0 && toks[j].Kind == token.WhitespaceNewline {
		li.newline = toks[j]
		j--
	}
	k := j
	for k >= i && isWS(toks[k].Kind) {
		k--
	}
	if k+1 <= j {
		li.trailing = toks[k+1 : j+1]
	}
	if i < len(toks) {
		li.content = toks[i]
	}
	return li
}

func isWS(k token.Kind) bool {
	return k == token.WhitespaceSpace || k == token.WhitespaceTab
}

func leadingText(toks []*token.Token) string {
	total := 0
	for _, t := range toks {
		total += len(t.Text)
	}
	buf := make([]byte, 0, total)
	for _, t := range toks {
		buf = append(buf, t.Text...)
	}
	return string(buf)
}

func hasTabAfterSpace(leading []*token.Token) bool {
	return firstTabAfterSpace(leading) != nil
}

func firstTabAfterSpace(leading []*token.Token) *token.Token {
	seenSpace := false
	for _, t := range leading {
		switch t.Kind {
		case token.WhitespaceSpace:
			seenSpace = true
		case token.WhitespaceTab:
			if seenSpace {
				return t
			}
		}
	}
	return nil
}
