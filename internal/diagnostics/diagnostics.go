// Package diagnostics models type-checker and backend errors/warnings as
// a batch of located, renderable records, generalizing the teacher's
// internal/errors.SentraError (same shape: type, message, location, call
// stack, source line) to the needs of a two-pass type checker that must
// keep going after a single bad declaration.
package diagnostics

import (
	"fmt"
	"strings"
)

// Kind distinguishes a hard error (counted against compilation success)
// from a warning (never counted).
type Kind string

const (
	Error   Kind = "error"
	Warning Kind = "warning"
)

// Category further classifies a Diagnostic
type Category string

const (
	CategoryStructural Category = "structural"
	CategoryType       Category = "type"
	CategoryResource   Category = "resource"
	CategoryBackend    Category = "backend"
)

// Location is a source position, when known.
type Location struct {
	File   string
	Line   int
	Column int
}

func (l Location) String() string {
	if l.File == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Diagnostic is one located error or warning, optionally carrying a trail
// of enclosing context (e.g. "in return-type inference for f", "in class C")
// analogous to the teacher's CallStack frames.
type Diagnostic struct {
	Kind     Kind
	Category Category
	Message  string
	Location Location
	Source   string // the source line text, if available
	Trail    []string
}

func (d *Diagnostic) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", strings.ToUpper(string(d.Kind)), d.Message)
	if loc := d.Location.String(); loc != "" {
		fmt.Fprintf(&b, " (at %s)", loc)
	}
	return b.String()
}

func NewError(category Category, message string, loc Location) *Diagnostic {
	return &Diagnostic{Kind: Error, Category: category, Message: message, Location: loc}
}

func NewWarning(category Category, message string, loc Location) *Diagnostic {
	return &Diagnostic{Kind: Warning, Category: category, Message: message, Location: loc}
}

// WithTrail returns a copy of d with an extra trail frame appended,
// innermost first — used when a diagnostic surfaces during a nested
// re-check (e.g. return-type inference revisiting a function body).
func (d *Diagnostic) WithTrail(frame string) *Diagnostic {
	cp := *d
	cp.Trail = append(append([]string{}, d.Trail...), frame)
	return &cp
}

// Batch is an ordered collection of diagnostics accumulated across a
// compilation. The type checker never stops at the first one.
type Batch []*Diagnostic

func (b *Batch) Add(d *Diagnostic) { *b = append(*b, d) }

func (b *Batch) Errorf(category Category, loc Location, format string, args ...interface{}) {
	b.Add(NewError(category, fmt.Sprintf(format, args...), loc))
}

func (b *Batch) Warnf(category Category, loc Location, format string, args ...interface{}) {
	b.Add(NewWarning(category, fmt.Sprintf(format, args...), loc))
}

// ErrorCount/WarningCount partition a batch; ErrorCount==0 is exactly
// the compilation-success predicate.
func ErrorCount(b Batch) int {
	n := 0
	for _, d := range b {
		if d.Kind == Error {
			n++
		}
	}
	return n
}

func WarningCount(b Batch) int {
	n := 0
	for _, d := range b {
		if d.Kind == Warning {
			n++
		}
	}
	return n
}

func Success(b Batch) bool { return ErrorCount(b) == 0 }
