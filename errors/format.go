package errors

import (
	goerrors "errors"
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/clanmills/ChaiScript/boxed"
)

// Formatter renders kernel errors as multi-line diagnostics for a terminal.
type Formatter struct {
	// UseColor enables ANSI color codes in output.
	UseColor bool
}

// NewFormatter creates a new error formatter.
func NewFormatter(useColor bool) *Formatter {
	return &Formatter{UseColor: useColor}
}

var (
	colorHeader = color.New(color.FgRed, color.Bold)
	colorLabel  = color.New(color.FgHiBlack)
	colorType   = color.New(color.FgCyan)
	colorNote   = color.New(color.FgHiBlue)
	colorHint   = color.New(color.FgHiYellow)
)

func (f *Formatter) paint(c *color.Color, s string) string {
	if !f.UseColor {
		return s
	}
	// Force color even when stdout is not a terminal; the caller asked for it.
	c.EnableColor()
	return c.Sprint(s)
}

// Format renders err. Errors from this package get a structured layout;
// anything else is printed as a plain "error: ..." line.
//
//	bad cast: cannot convert value
//	  from: int
//	    to: string
func (f *Formatter) Format(err error) string {
	if err == nil {
		return ""
	}
	var b strings.Builder

	var dispatchErr *DispatchError
	var castErr *BadCastError
	var guardErr *GuardError
	var arityErr *ArityError
	switch {
	case goerrors.As(err, &dispatchErr):
		f.writeDispatch(&b, dispatchErr)
	case goerrors.As(err, &guardErr):
		f.writeHeader(&b, KindGuard, guardErr.Function+" invoked with non-matching arguments")
		if guardErr.Err != nil {
			f.writeNote(&b, guardErr.Err.Error())
		}
	case goerrors.As(err, &castErr):
		f.writeCast(&b, castErr)
	case goerrors.As(err, &arityErr):
		f.writeHeader(&b, KindArity, fmt.Sprintf("%s() expects %d arguments, %d given",
			arityErr.Function, arityErr.Expected, arityErr.Given))
	default:
		b.WriteString(f.paint(colorHeader, "error"))
		b.WriteString(": ")
		b.WriteString(err.Error())
		b.WriteString("\n")
	}
	return b.String()
}

func (f *Formatter) writeHeader(b *strings.Builder, kind Kind, msg string) {
	b.WriteString(f.paint(colorHeader, kind.String()))
	b.WriteString(": ")
	b.WriteString(msg)
	b.WriteString("\n")
}

func (f *Formatter) writeCast(b *strings.Builder, e *BadCastError) {
	f.writeHeader(b, KindCast, e.Message)
	if e.From.IsUndefined() && e.To.IsUndefined() {
		return
	}
	b.WriteString(f.paint(colorLabel, "  from: "))
	b.WriteString(f.paint(colorType, e.From.String()))
	b.WriteString("\n")
	b.WriteString(f.paint(colorLabel, "    to: "))
	b.WriteString(f.paint(colorType, e.To.String()))
	b.WriteString("\n")
}

func (f *Formatter) writeDispatch(b *strings.Builder, e *DispatchError) {
	name := e.Name
	if name == "" {
		name = "<anonymous>"
	}
	f.writeHeader(b, KindDispatch, "no matching function for "+name)
	b.WriteString(f.paint(colorLabel, "  args: "))
	b.WriteString(f.paint(colorType, "("+strings.Join(boxed.Names(e.ArgTypes), ", ")+")"))
	b.WriteString("\n")
	b.WriteString(f.paint(colorLabel, "  candidates: "))
	b.WriteString(fmt.Sprint(e.Candidates))
	b.WriteString("\n")
	if e.Reasons != nil {
		for _, reason := range e.Reasons.Errors {
			f.writeNote(b, reason.Error())
		}
	}
	if e.Hint != "" {
		b.WriteString(f.paint(colorLabel, "  = "))
		b.WriteString(f.paint(colorHint, "hint: "))
		b.WriteString(e.Hint)
		b.WriteString("\n")
	}
}

func (f *Formatter) writeNote(b *strings.Builder, note string) {
	b.WriteString(f.paint(colorLabel, "  = "))
	b.WriteString(f.paint(colorNote, "note: "))
	b.WriteString(note)
	b.WriteString("\n")
}
