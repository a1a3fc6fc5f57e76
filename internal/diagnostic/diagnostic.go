// Package diagnostic collects and renders compiler error messages. A
// single Log accumulates diagnostics from every pipeline stage instead
// of each stage writing to stderr directly, so a driver can format,
// filter or count them uniformly regardless of which stage raised them.
package diagnostic

import (
	"fmt"
	"io"
	"sort"

	"github.com/gmofishsauce/zcc/internal/sourcepos"
)

// Kind is the closed set of error categories.
type Kind int

const (
	KindOOM Kind = iota
	KindIO
	KindNotFound
	KindAlreadyExists
	KindInvalidInput
	KindUnsupported
)

func (k Kind) String() string {
	switch k {
	case KindOOM:
		return "out-of-memory"
	case KindIO:
		return "i/o failure"
	case KindNotFound:
		return "not found"
	case KindAlreadyExists:
		return "already exists"
	case KindInvalidInput:
		return "invalid input"
	case KindUnsupported:
		return "unsupported"
	default:
		return "error"
	}
}

// Severity distinguishes a diagnostic that should abort the current
// translation unit from one that merely gets reported.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

// Stage names the pipeline stage that raised a diagnostic, used only for
// grouping/labeling, not as a dispatch key.
type Stage string

const (
	StageLex   Stage = "lex"
	StageParse Stage = "parse"
	StageSema  Stage = "sema"
	StageBackend Stage = "backend"
	StageStyle Stage = "style"
)

// Msg is one diagnostic. It implements error so it can be returned,
// wrapped and matched on with errors.As like any other Go error.
type Msg struct {
	Stage    Stage
	Kind     Kind
	Severity Severity
	Loc      sourcepos.Range
	Text     string
}

func (m *Msg) Error() string {
	return fmt.Sprintf("%s: %s", m.Loc.Begin, m.Text)
}

// Log accumulates diagnostics for one compiler invocation. It is not
// safe for concurrent use; the whole pipeline runs single-threaded.
type Log struct {
	msgs []*Msg
}

// NewLog returns an empty Log.
func NewLog() *Log {
	return &Log{}
}

// Add appends msg and returns it as an error, so call sites can write
// `return nil, log.Add(...)`.
func (l *Log) Add(msg *Msg) error {
	l.msgs = append(l.msgs, msg)
	return msg
}

// AddError is a convenience wrapper for the common case of a fatal,
// position-tagged error.
func (l *Log) AddError(stage Stage, kind Kind, loc sourcepos.Range, format string, args ...interface{}) error {
	return l.Add(&Msg{
		Stage:    stage,
		Kind:     kind,
		Severity: SeverityError,
		Loc:      loc,
		Text:     fmt.Sprintf(format, args...),
	})
}

// AddWarning records a non-fatal diagnostic (used by the style
// checker's check mode, which reports violations without aborting).
func (l *Log) AddWarning(stage Stage, loc sourcepos.Range, format string, args ...interface{}) {
	l.Add(&Msg{
		Stage:    stage,
		Kind:     KindInvalidInput,
		Severity: SeverityWarning,
		Loc:      loc,
		Text:     fmt.Sprintf(format, args...),
	})
}

// HasErrors reports whether any SeverityError message was recorded.
// Stages check this before proceeding to the next pipeline stage, since
// each stage aborts its translation unit on the first hard error rather
// than attempting to recover and keep going.
func (l *Log) HasErrors() bool {
	for _, m := range l.msgs {
		if m.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Messages returns all recorded diagnostics in the order they were
// added.
func (l *Log) Messages() []*Msg {
	return l.msgs
}

// Sorted returns the recorded diagnostics ordered by source position,
// so output is stable across repeated compilations regardless of the
// order stages happened to raise diagnostics in.
func (l *Log) Sorted() []*Msg {
	out := make([]*Msg, len(l.msgs))
	copy(out, l.msgs)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Loc.Begin, out[j].Loc.Begin
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
	return out
}

// Print renders every message as "<file>:<line>:<col>: <text>" to w,
// one per line, in the compiler-conventional format editors and build
// tools parse for jump-to-error.
func (l *Log) Print(w io.Writer) {
	for _, m := range l.Sorted() {
		fmt.Fprintf(w, "%s: %s\n", m.Loc.Begin, m.Text)
	}
}
