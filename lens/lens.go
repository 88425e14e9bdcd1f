// Package lens defines the contract between lens adapters and the engine,
// and a runner that drives a pair of lenses through a full comparison.
//
// A lens turns one view of a source (its text, its code, its tables) into
// raw bridge material. Lens internals are out of scope here; the engine
// only consumes their output.
package lens

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lambda-foundation/bridge"
)

// Lens extracts raw bridge material from a source.
type Lens interface {
	// Name identifies the lens in logs and results.
	Name() string

	// Focus reads the source and produces a raw payload. Implementations
	// should honor ctx cancellation.
	Focus(ctx context.Context, source string) (*bridge.Raw, error)
}

// Func adapts a plain function to the Lens interface.
type Func struct {
	LensName string
	Fn       func(ctx context.Context, source string) (*bridge.Raw, error)
}

func (f Func) Name() string { return f.LensName }

func (f Func) Focus(ctx context.Context, source string) (*bridge.Raw, error) {
	return f.Fn(ctx, source)
}

// Comparison is the outcome of running two lenses over the same source.
type Comparison struct {
	Source    string                   `json:"source"`
	LensA     string                   `json:"lens_a"`
	LensB     string                   `json:"lens_b"`
	A         bridge.BridgeOut         `json:"a"`
	B         bridge.BridgeOut         `json:"b"`
	Agreement bridge.Agreement         `json:"agreement"`
	Accepted  bool                     `json:"accepted"`
	Diff      *bridge.DifferenceReport `json:"diff,omitempty"`
}

// Runner invokes lens pairs and scores their output through an engine.
type Runner struct {
	engine *bridge.Engine
	logger *slog.Logger
}

// NewRunner builds a Runner. A nil logger falls back to slog.Default().
func NewRunner(engine *bridge.Engine, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{engine: engine, logger: logger}
}

// Compare focuses both lenses on the source concurrently, canonicalizes
// the two payloads, and scores them. A difference report is attached only
// when the agreement misses the engine's threshold.
func (r *Runner) Compare(ctx context.Context, a, b Lens, source string) (*Comparison, error) {
	var (
		wg         sync.WaitGroup
		rawA, rawB *bridge.Raw
		errA, errB error
	)

	// The two lens calls are independent; only the engine needs both.
	wg.Add(2)
	go func() {
		defer wg.Done()
		rawA, errA = a.Focus(ctx, source)
	}()
	go func() {
		defer wg.Done()
		rawB, errB = b.Focus(ctx, source)
	}()
	wg.Wait()

	if errA != nil {
		return nil, lensError(a, errA)
	}
	if errB != nil {
		return nil, lensError(b, errB)
	}

	outA, err := r.canonicalize(ctx, a, rawA)
	if err != nil {
		return nil, err
	}
	outB, err := r.canonicalize(ctx, b, rawB)
	if err != nil {
		return nil, err
	}

	ag := r.engine.Agree(ctx, outA, outB)
	cmp := &Comparison{
		Source:    source,
		LensA:     a.Name(),
		LensB:     b.Name(),
		A:         outA,
		B:         outB,
		Agreement: ag,
		Accepted:  r.engine.Accept(ag),
	}
	if !cmp.Accepted {
		diff := r.engine.FindDifference(outA, outB)
		cmp.Diff = &diff
	}

	r.logger.Info("lens comparison complete",
		"source", source,
		"lens_a", a.Name(),
		"lens_b", b.Name(),
		"score", ag.Score,
		"accepted", cmp.Accepted)
	return cmp, nil
}

func (r *Runner) canonicalize(ctx context.Context, l Lens, raw *bridge.Raw) (bridge.BridgeOut, error) {
	payload := bridge.Raw{}
	if raw != nil {
		payload = *raw
	}
	out, err := r.engine.Canonicalize(ctx, payload)
	if err != nil {
		return bridge.BridgeOut{}, fmt.Errorf("canonicalize output of lens %s: %w", l.Name(), err)
	}
	return out, nil
}

func lensError(l Lens, err error) error {
	berr := bridge.NewExecutionError("Runner.Compare",
		fmt.Errorf("%w: %v", bridge.ErrLensFailed, err))
	return berr.WithContext(map[string]any{"lens": l.Name()})
}
