package ir

import (
	"fmt"
	"strconv"
)

// DefaultFuel is the default beta-reduction step budget. Each substitution
// of an argument into a lambda body consumes one unit.
const DefaultFuel = 10000

// DivergenceError reports a beta-reduction that exhausted its fuel budget.
// Partial holds the innermost redex at the point reduction stopped, which
// is usually enough to identify the looping combinator.
type DivergenceError struct {
	Fuel    int
	Partial *Term
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("ir: beta-reduction exceeded %d steps at %s", e.Fuel, e.Partial)
}

// Stats reports work done by a single Canonicalize call.
type Stats struct {
	// BetaSteps is the number of substitutions performed.
	BetaSteps int
}

// Option configures a Canonicalize call.
type Option func(*options)

type options struct {
	fuel  int
	stats *Stats
}

// WithFuel overrides the beta-reduction step budget.
func WithFuel(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.fuel = n
		}
	}
}

// WithStats records reduction statistics into dst.
func WithStats(dst *Stats) Option {
	return func(o *options) { o.stats = dst }
}

// Canonicalize reduces t to its canonical normal form: alpha-conversion,
// fuel-counted beta-reduction, eta-reduction, then a final renaming pass so
// binder numbering is contiguous again after beta has deleted binders.
// Without that last pass App(Lam("x", Lam("y", Var("y"))), Num(5)) would
// normalize to a tree spelled v1 and a second Canonicalize would respell it
// v0, breaking idempotence.
//
// The input tree is never mutated. Malformed terms return *ValidationError;
// exceeding the fuel budget returns *DivergenceError.
func Canonicalize(t *Term, opts ...Option) (*Term, error) {
	if t == nil {
		return nil, &ValidationError{Path: "/", Reason: "nil term"}
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	o := options{fuel: DefaultFuel}
	for _, opt := range opts {
		opt(&o)
	}

	counter := 0
	renamed := alpha(t, map[string]string{}, &counter)

	fuel := o.fuel
	reduced, err := betaReduce(renamed, &fuel, o.fuel)
	if o.stats != nil {
		o.stats.BetaSteps = o.fuel - fuel
	}
	if err != nil {
		return nil, err
	}

	counter = 0
	return alpha(etaReduce(reduced), map[string]string{}, &counter), nil
}

// alpha renames bound variables to v0, v1, ... in pre-order binder-encounter
// order. Free variables keep their original spelling. env maps original
// names to synthetic names in the current scope; entries are restored on
// the way out so sibling scopes see the enclosing binding.
func alpha(t *Term, env map[string]string, counter *int) *Term {
	switch t.Kind {
	case KindVar:
		if synth, ok := env[t.Name]; ok {
			return Var(synth)
		}
		return Var(t.Name)
	case KindLam:
		fresh := "v" + strconv.Itoa(*counter)
		*counter++
		prev, had := env[t.Name]
		env[t.Name] = fresh
		body := alpha(t.Body, env, counter)
		if had {
			env[t.Name] = prev
		} else {
			delete(env, t.Name)
		}
		return Lam(fresh, body)
	case KindApp:
		fn := alpha(t.Fn, env, counter)
		arg := t.Arg
		if arg == nil {
			// Missing argument: apply to the sentinel.
			return App(fn, Var(SentinelNil))
		}
		return App(fn, alpha(arg, env, counter))
	case KindList:
		items := make([]*Term, len(t.Items))
		for i, item := range t.Items {
			items[i] = alpha(item, env, counter)
		}
		return List(items...)
	case KindNum:
		return Num(t.Num)
	default: // KindBool
		return Bool(t.Bool)
	}
}

// betaReduce normalizes t, reducing innermost redexes on the function
// position first, left-to-right. fuel is shared across the whole call tree;
// every substitution consumes one unit. Alpha-conversion has already made
// binder names unique, so substitution cannot capture. Recursion depth is
// bounded by the term height, which Go's growable goroutine stacks handle
// without a separate work-list arena.
func betaReduce(t *Term, fuel *int, budget int) (*Term, error) {
	switch t.Kind {
	case KindVar, KindNum, KindBool:
		return t, nil
	case KindLam:
		body, err := betaReduce(t.Body, fuel, budget)
		if err != nil {
			return nil, err
		}
		return Lam(t.Name, body), nil
	case KindList:
		items := make([]*Term, len(t.Items))
		for i, item := range t.Items {
			reduced, err := betaReduce(item, fuel, budget)
			if err != nil {
				return nil, err
			}
			items[i] = reduced
		}
		return List(items...), nil
	default: // KindApp
		fn, err := betaReduce(t.Fn, fuel, budget)
		if err != nil {
			return nil, err
		}
		arg := t.Arg
		if arg == nil {
			arg = Var(SentinelNil)
		}
		arg, err = betaReduce(arg, fuel, budget)
		if err != nil {
			return nil, err
		}
		if fn.Kind != KindLam {
			return App(fn, arg), nil
		}
		if *fuel <= 0 {
			return nil, &DivergenceError{Fuel: budget, Partial: App(fn, arg)}
		}
		*fuel--
		return betaReduce(substitute(fn.Body, fn.Name, arg), fuel, budget)
	}
}

// substitute returns t with every free occurrence of name replaced by repl.
// Subtrees that cannot contain the variable are shared, not copied.
func substitute(t *Term, name string, repl *Term) *Term {
	switch t.Kind {
	case KindVar:
		if t.Name == name {
			return repl
		}
		return t
	case KindLam:
		if t.Name == name {
			// Shadowed; cannot occur after alpha-conversion but kept for safety.
			return t
		}
		return Lam(t.Name, substitute(t.Body, name, repl))
	case KindApp:
		arg := t.Arg
		if arg != nil {
			arg = substitute(arg, name, repl)
		}
		return App(substitute(t.Fn, name, repl), arg)
	case KindList:
		items := make([]*Term, len(t.Items))
		for i, item := range t.Items {
			items[i] = substitute(item, name, repl)
		}
		return List(items...)
	default:
		return t
	}
}

// etaReduce applies Lam(x, App(f, Var(x))) -> f bottom-up until no rewrite
// applies.
func etaReduce(t *Term) *Term {
	switch t.Kind {
	case KindLam:
		body := etaReduce(t.Body)
		if body.Kind == KindApp && body.Arg != nil &&
			body.Arg.Kind == KindVar && body.Arg.Name == t.Name &&
			!occursFree(body.Fn, t.Name) {
			return body.Fn
		}
		return Lam(t.Name, body)
	case KindApp:
		arg := t.Arg
		if arg != nil {
			arg = etaReduce(arg)
		}
		return App(etaReduce(t.Fn), arg)
	case KindList:
		items := make([]*Term, len(t.Items))
		for i, item := range t.Items {
			items[i] = etaReduce(item)
		}
		return List(items...)
	default:
		return t
	}
}

// occursFree reports whether name occurs free in t.
func occursFree(t *Term, name string) bool {
	switch t.Kind {
	case KindVar:
		return t.Name == name
	case KindLam:
		if t.Name == name {
			return false
		}
		return occursFree(t.Body, name)
	case KindApp:
		if occursFree(t.Fn, name) {
			return true
		}
		return t.Arg != nil && occursFree(t.Arg, name)
	case KindList:
		for _, item := range t.Items {
			if occursFree(item, name) {
				return true
			}
		}
	}
	return false
}
