// Package filter evaluates element predicates written as small lisp
// expressions, for example:
//
//	(or (== (tag) "Wall") (== (tag) "Column"))
//
// The accessors (tag), (name) and (id) return the candidate element's
// fields. Any result other than false or nil keeps the element.
package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/datarefinerylab/BatchPlan/pkg/model"
)

// Filter is a compiled element predicate. Every Match runs in a fresh
// sandboxed interpreter, so a Filter is safe to share across goroutines and
// expressions cannot touch the host beyond the accessors.
type Filter struct {
	src string
}

// CompileError reports a bad expression with its line when the interpreter
// provides one.
type CompileError struct {
	Line int
	Msg  string
}

func (e *CompileError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("filter line %d: %s", e.Line, e.Msg)
	}
	return "filter: " + e.Msg
}

// New compiles an expression. Syntax errors surface here, not at Match
// time, by probing the expression against a blank element.
func New(src string) (*Filter, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, &CompileError{Msg: "empty expression"}
	}
	f := &Filter{src: src}
	if _, err := f.eval(model.Element{}); err != nil {
		return nil, err
	}
	return f, nil
}

// Source returns the expression text.
func (f *Filter) Source() string {
	return f.src
}

// Match evaluates the predicate for one element.
func (f *Filter) Match(el model.Element) (bool, error) {
	sexp, err := f.eval(el)
	if err != nil {
		return false, err
	}
	return truthy(sexp), nil
}

// Keep filters a slice, preserving order. Evaluation errors drop the
// element and are returned together at the end.
func (f *Filter) Keep(elements []model.Element) ([]model.Element, error) {
	var kept []model.Element
	var firstErr error
	for _, el := range elements {
		ok, err := f.Match(el)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("element %s: %w", el.ID, err)
			}
			continue
		}
		if ok {
			kept = append(kept, el)
		}
	}
	return kept, firstErr
}

// EvalTimeout is the hard limit for evaluating the expression against one
// element. A filter that loops would otherwise hang the whole batch.
const EvalTimeout = 5 * time.Second

type evalOutcome struct {
	sexp zygo.Sexp
	err  error
}

// eval runs the expression in its own goroutine and waits at most
// EvalTimeout. On timeout the interpreter may still be running; its
// sandbox dies with the goroutine and the buffered channel lets it finish
// without a reader.
func (f *Filter) eval(el model.Element) (zygo.Sexp, error) {
	ch := make(chan evalOutcome, 1)
	go func() {
		ch <- runSandboxed(f.src, el)
	}()

	timer := time.NewTimer(EvalTimeout)
	defer timer.Stop()
	select {
	case out := <-ch:
		return out.sexp, out.err
	case <-timer.C:
		return zygo.SexpNull, fmt.Errorf("filter evaluation timed out after %s", EvalTimeout)
	}
}

func runSandboxed(src string, el model.Element) (out evalOutcome) {
	defer func() {
		if r := recover(); r != nil {
			out = evalOutcome{sexp: zygo.SexpNull, err: fmt.Errorf("filter evaluation panicked: %v", r)}
		}
	}()

	env := zygo.NewZlispSandbox()
	defer env.Stop()

	accessor := func(value string) func(*zygo.Zlisp, string, []zygo.Sexp) (zygo.Sexp, error) {
		return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			return &zygo.SexpStr{S: value}, nil
		}
	}
	env.AddFunction("tag", accessor(el.TypeTag))
	env.AddFunction("name", accessor(el.Name))
	env.AddFunction("id", accessor(el.ID))

	if err := env.LoadString(src); err != nil {
		return evalOutcome{sexp: zygo.SexpNull, err: asCompileError(err)}
	}
	result, err := env.Run()
	if err != nil {
		return evalOutcome{sexp: zygo.SexpNull, err: asCompileError(err)}
	}
	return evalOutcome{sexp: result}
}

// truthy follows lisp convention: false and nil reject, everything else
// keeps.
func truthy(s zygo.Sexp) bool {
	switch v := s.(type) {
	case *zygo.SexpBool:
		return v.Val
	case *zygo.SexpSentinel:
		return v != zygo.SexpNull
	case nil:
		return false
	default:
		return true
	}
}

var (
	onLineRe = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)
	atLineRe = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)
)

// asCompileError pulls the line number out of the interpreter's message
// when it carries one.
func asCompileError(err error) error {
	msg := err.Error()
	for _, re := range []*regexp.Regexp{onLineRe, atLineRe} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, convErr := strconv.Atoi(m[1])
			if convErr == nil {
				return &CompileError{Line: line, Msg: m[2]}
			}
		}
	}
	return &CompileError{Msg: msg}
}
