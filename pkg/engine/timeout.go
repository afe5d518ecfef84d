package engine

import (
	"errors"
	"fmt"
	"time"
)

// EvalTimeout is the default limit for a single evaluation.
const EvalTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when an evaluation outlives the engine timeout.
	ErrTimeout = errors.New("engine: evaluation timed out")
	// ErrSuperseded is returned to a caller whose evaluation finished after
	// a later Evaluate call started.
	ErrSuperseded = errors.New("engine: evaluation superseded by a newer request")
)

// evalResult carries the outcome of one sandboxed run back to Evaluate.
type evalResult struct {
	scene  *Scene
	errors []EvalError
	err    error
}

// await blocks until the run tagged gen reports on ch or the engine timeout
// elapses. A timed-out run keeps going in its goroutine; whatever it sends
// later lands in the buffered channel and is dropped.
func (e *Engine) await(ch <-chan evalResult, gen uint64) (*Scene, []EvalError, error) {
	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		if !e.isCurrent(gen) {
			return nil, nil, ErrSuperseded
		}
		return res.scene, res.errors, res.err
	case <-timer.C:
		return nil, nil, fmt.Errorf("%w after %s", ErrTimeout, e.timeout)
	}
}

// isCurrent reports whether gen is still the latest evaluation.
func (e *Engine) isCurrent(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return gen == e.generation
}
