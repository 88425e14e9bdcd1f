package ir

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the variant of a Term node.
type Kind string

// Term variants. The wire representation uses the same lowercase tags.
const (
	KindVar  Kind = "var"
	KindLam  Kind = "lam"
	KindApp  Kind = "app"
	KindNum  Kind = "num"
	KindBool Kind = "bool"
	KindList Kind = "list"
)

// SentinelNil is the variable name used when a lens omits a subterm.
// An App with a nil argument is treated as applying to Var(SentinelNil).
const SentinelNil = "nil"

// Term is one node of the lambda IR. Terms are immutable value trees:
// canonicalization and substitution always allocate new nodes and never
// write through existing ones. Only the fields relevant to Kind are set;
// Validate enforces the per-variant shape.
type Term struct {
	Kind Kind

	// Name is the variable name for Var and the bound parameter for Lam.
	Name string

	// Body is the Lam body.
	Body *Term

	// Fn and Arg are the App function and argument.
	Fn  *Term
	Arg *Term

	// Num and Bool carry literal values.
	Num  float64
	Bool bool

	// Items are the List elements.
	Items []*Term
}

// Var constructs a variable reference.
func Var(name string) *Term { return &Term{Kind: KindVar, Name: name} }

// Lam constructs a lambda abstraction binding param over body.
func Lam(param string, body *Term) *Term {
	return &Term{Kind: KindLam, Name: param, Body: body}
}

// App constructs an application of fn to arg.
func App(fn, arg *Term) *Term { return &Term{Kind: KindApp, Fn: fn, Arg: arg} }

// Num constructs a numeric literal.
func Num(v float64) *Term { return &Term{Kind: KindNum, Num: v} }

// Bool constructs a boolean literal.
func Bool(v bool) *Term { return &Term{Kind: KindBool, Bool: v} }

// List constructs a list literal from the given items.
func List(items ...*Term) *Term { return &Term{Kind: KindList, Items: items} }

// ValidationError describes a structurally malformed term. Path points at
// the offending node with the same slash labels used by difference reports.
type ValidationError struct {
	Path   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("ir: malformed term at %s: %s", e.Path, e.Reason)
}

// Validate checks the per-variant shape of the tree. A Lam must carry a
// parameter and a body; an App must carry a function; List items must be
// non-nil. A nil App argument is permitted (the canonicalizer substitutes
// the sentinel), every other missing child is an error.
func (t *Term) Validate() error {
	return t.validate("/")
}

func (t *Term) validate(path string) error {
	if t == nil {
		return &ValidationError{Path: path, Reason: "nil node"}
	}
	switch t.Kind {
	case KindVar:
		if t.Name == "" {
			return &ValidationError{Path: path, Reason: "var with empty name"}
		}
	case KindLam:
		if t.Name == "" {
			return &ValidationError{Path: path, Reason: "lam with empty parameter"}
		}
		if t.Body == nil {
			return &ValidationError{Path: path, Reason: "lam without body"}
		}
		return t.Body.validate(childPath(path, "body"))
	case KindApp:
		if t.Fn == nil {
			return &ValidationError{Path: path, Reason: "app without fn"}
		}
		if err := t.Fn.validate(childPath(path, "fn")); err != nil {
			return err
		}
		if t.Arg != nil {
			return t.Arg.validate(childPath(path, "arg"))
		}
	case KindNum, KindBool:
		// Literals carry their value in the node itself.
	case KindList:
		for i, item := range t.Items {
			if item == nil {
				return &ValidationError{Path: childPath(path, "items/"+strconv.Itoa(i)), Reason: "nil list item"}
			}
			if err := item.validate(childPath(path, "items/"+strconv.Itoa(i))); err != nil {
				return err
			}
		}
	default:
		return &ValidationError{Path: path, Reason: fmt.Sprintf("unknown kind %q", t.Kind)}
	}
	return nil
}

func childPath(parent, label string) string {
	if parent == "/" {
		return "/" + label
	}
	return parent + "/" + label
}

// String renders the term as a compact s-expression, e.g. (lam v0 (var v0)).
// The rendering is canonical for canonical terms and is what the law
// battery compares probe results with.
func (t *Term) String() string {
	if t == nil {
		return "()"
	}
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t *Term) write(b *strings.Builder) {
	switch t.Kind {
	case KindVar:
		b.WriteString("(var ")
		b.WriteString(t.Name)
		b.WriteByte(')')
	case KindLam:
		b.WriteString("(lam ")
		b.WriteString(t.Name)
		b.WriteByte(' ')
		t.Body.write(b)
		b.WriteByte(')')
	case KindApp:
		b.WriteString("(app ")
		t.Fn.write(b)
		b.WriteByte(' ')
		if t.Arg != nil {
			t.Arg.write(b)
		} else {
			b.WriteString("(var " + SentinelNil + ")")
		}
		b.WriteByte(')')
	case KindNum:
		b.WriteString(FormatNum(t.Num))
	case KindBool:
		b.WriteString(strconv.FormatBool(t.Bool))
	case KindList:
		b.WriteByte('[')
		for i, item := range t.Items {
			if i > 0 {
				b.WriteByte(' ')
			}
			item.write(b)
		}
		b.WriteByte(']')
	}
}

// FormatNum renders a numeric literal the same way everywhere the engine
// serializes terms. Shortest round-trip formatting keeps integers free of
// a trailing fraction, which keeps hashes stable across producers.
func FormatNum(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// termWire is the JSON shape exchanged with lenses.
type termWire struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value,omitempty"`
	Param string          `json:"param,omitempty"`
	Body  *Term           `json:"body,omitempty"`
	Fn    *Term           `json:"fn,omitempty"`
	Arg   *Term           `json:"arg,omitempty"`
	Items []*Term         `json:"items,omitempty"`
}

// MarshalJSON renders the lens wire format, e.g. {"type":"lam","param":"x",...}.
func (t *Term) MarshalJSON() ([]byte, error) {
	w := termWire{Type: string(t.Kind)}
	switch t.Kind {
	case KindVar:
		v, err := json.Marshal(t.Name)
		if err != nil {
			return nil, err
		}
		w.Value = v
	case KindLam:
		w.Param = t.Name
		w.Body = t.Body
	case KindApp:
		w.Fn = t.Fn
		w.Arg = t.Arg
	case KindNum:
		w.Value = json.RawMessage(FormatNum(t.Num))
	case KindBool:
		w.Value = json.RawMessage(strconv.FormatBool(t.Bool))
	case KindList:
		w.Items = t.Items
	}
	return json.Marshal(w)
}

// UnmarshalJSON accepts the lens wire format. Unknown or missing tags are
// surfaced as errors; shape problems are left to Validate so the caller
// gets a path-qualified report.
func (t *Term) UnmarshalJSON(data []byte) error {
	var w termWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch Kind(w.Type) {
	case KindVar:
		t.Kind = KindVar
		if len(w.Value) > 0 {
			if err := json.Unmarshal(w.Value, &t.Name); err != nil {
				return fmt.Errorf("ir: var value: %w", err)
			}
		}
	case KindLam:
		t.Kind = KindLam
		t.Name = w.Param
		t.Body = w.Body
	case KindApp:
		t.Kind = KindApp
		t.Fn = w.Fn
		t.Arg = w.Arg
	case KindNum:
		t.Kind = KindNum
		if len(w.Value) > 0 {
			if err := json.Unmarshal(w.Value, &t.Num); err != nil {
				return fmt.Errorf("ir: num value: %w", err)
			}
		}
	case KindBool:
		t.Kind = KindBool
		if len(w.Value) > 0 {
			if err := json.Unmarshal(w.Value, &t.Bool); err != nil {
				return fmt.Errorf("ir: bool value: %w", err)
			}
		}
	case KindList:
		t.Kind = KindList
		t.Items = w.Items
	default:
		return fmt.Errorf("ir: unknown term type %q", w.Type)
	}
	return nil
}
