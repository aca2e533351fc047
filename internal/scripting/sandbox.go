// Package scripting provides a sandboxed GopherLua execution environment for
// colony scripts. It has no dependency on the action engine; game state is
// exposed through snapshots and callbacks injected on the Manager.
package scripting

import (
	"context"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit is the maximum number of Lua opcodes allowed per
// call into a sandbox when no override is configured.
const DefaultInstructionLimit = 100_000

// countingContext cancels itself after Done() has been called limit times.
// GopherLua's mainLoopWithContext calls Done() once per opcode.
type countingContext struct {
	context.Context
	cancel    context.CancelFunc
	remaining *atomic.Int64
}

func (c *countingContext) Done() <-chan struct{} {
	if c.remaining.Add(-1) <= 0 {
		c.cancel()
	}
	return c.Context.Done()
}

// newCountingContext returns a context that cancels after limit calls to Done().
// Precondition: limit > 0.
func newCountingContext(limit int) (context.Context, context.CancelFunc) {
	base, cancel := context.WithCancel(context.Background())
	rem := &atomic.Int64{}
	rem.Store(int64(limit))
	return &countingContext{
		Context:   base,
		cancel:    cancel,
		remaining: rem,
	}, cancel
}

// Sandbox is a restricted LState together with its per-call opcode budget.
// A Sandbox is not safe for concurrent use.
type Sandbox struct {
	L     *lua.LState
	limit int
}

// NewSandbox creates a GopherLua state with:
//   - Only safe stdlib loaded: base, table, string, math
//   - Dangerous globals removed: dofile, loadfile, load, collectgarbage, require
//
// Every Do call may execute at most instLimit opcodes.
//
// Precondition: instLimit >= 0; 0 uses DefaultInstructionLimit.
// Postcondition: The caller owns the Sandbox and must Close it.
func NewSandbox(instLimit int) *Sandbox {
	limit := instLimit
	if limit <= 0 {
		limit = DefaultInstructionLimit
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	for _, name := range []string{"dofile", "loadfile", "load", "collectgarbage", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
	return &Sandbox{L: L, limit: limit}
}

// Do runs fn against the state with a fresh opcode budget. Lua code that
// exceeds the budget fails with a context cancellation error.
func (s *Sandbox) Do(fn func(L *lua.LState) error) error {
	ctx, cancel := newCountingContext(s.limit)
	defer cancel()
	s.L.SetContext(ctx)
	defer s.L.RemoveContext()
	return fn(s.L)
}

// DoString executes src within a single budget.
func (s *Sandbox) DoString(src string) error {
	return s.Do(func(L *lua.LState) error { return L.DoString(src) })
}

// Close releases the state.
func (s *Sandbox) Close() { s.L.Close() }
