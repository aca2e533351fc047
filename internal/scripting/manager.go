package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/colony/internal/game/dice"
)

// GlobalScope is the reserved key for shared scripts loaded via LoadGlobal.
// CallHook falls back to this VM when no scope VM is found.
const GlobalScope = "__global__"

// UnitInfo is a snapshot of a unit passed to Lua callbacks.
type UnitInfo struct {
	ID          string
	Name        string
	Side        string
	X, Y        int
	Movement    int
	Permissions []string
}

// Manager owns one sandboxed LState per scope and exposes hook dispatch. A
// scope is a named script set, such as a scenario, that overrides the global
// scripts.
//
// Each scope's sandbox is single-threaded; the mutex serializes calls.
type Manager struct {
	mu     sync.Mutex
	scopes map[string]*Sandbox
	roller *dice.Roller
	logger *zap.Logger
	// Scope selects the VM used by the typed hooks. Empty means GlobalScope.
	Scope string

	// Injected after construction. nil = no-op in engine.* modules.
	QueryUnit func(id string) *UnitInfo
	Money     func() int
	Opinion   func() int
}

// NewManager creates a Manager.
//
// Precondition: roller and logger must be non-nil.
// Postcondition: Returns a non-nil Manager with no VMs.
func NewManager(roller *dice.Roller, logger *zap.Logger) *Manager {
	if roller == nil {
		panic("scripting.NewManager: roller must not be nil")
	}
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	return &Manager{
		scopes: make(map[string]*Sandbox),
		roller: roller,
		logger: logger,
	}
}

// LoadScope creates a sandboxed VM for scope, registers the engine.* modules,
// then executes every *.lua file in scriptDir in lexicographic order.
//
// Precondition: scope must be non-empty; scriptDir must be a readable directory.
func (m *Manager) LoadScope(scope, scriptDir string, instLimit int) error {
	return m.loadInto(scope, scriptDir, instLimit)
}

// LoadGlobal creates the GlobalScope VM.
//
// Precondition: scriptDir must be a readable directory.
func (m *Manager) LoadGlobal(scriptDir string, instLimit int) error {
	return m.loadInto(GlobalScope, scriptDir, instLimit)
}

func (m *Manager) loadInto(key, scriptDir string, instLimit int) error {
	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", scriptDir, key, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	sb := NewSandbox(instLimit)
	m.RegisterModules(sb.L)
	for _, path := range luaFiles {
		if err := sb.Do(func(L *lua.LState) error { return L.DoFile(path) }); err != nil {
			sb.Close()
			return fmt.Errorf("scripting: loading %q for %q: %w", path, key, err)
		}
	}

	m.mu.Lock()
	if old, ok := m.scopes[key]; ok {
		old.Close()
	}
	m.scopes[key] = sb
	m.mu.Unlock()
	m.logger.Debug("scripts loaded", zap.String("scope", key), zap.Int("files", len(luaFiles)))
	return nil
}

// CallHook calls the named Lua global function in scope's VM. If the scope
// has no VM, the GlobalScope VM is tried as a fallback. Returns (LNil, nil) if
// the hook is not defined or no VM exists. Lua runtime errors are logged at
// Warn level and never propagated.
//
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(scope, hook string, args ...lua.LValue) (lua.LValue, error) {
	return m.call(scope, hook, func(*lua.LState) []lua.LValue { return args }), nil
}

// call runs hook with the arguments built by args inside the scope's sandbox.
// Arguments that are Lua tables must be created on the LState passed to args.
func (m *Manager) call(scope, hook string, args func(L *lua.LState) []lua.LValue) lua.LValue {
	m.mu.Lock()
	defer m.mu.Unlock()
	sb, ok := m.scopes[scope]
	if !ok {
		sb = m.scopes[GlobalScope]
	}
	if sb == nil {
		m.logger.Debug("scripting: no VM for scope",
			zap.String("scope", scope),
			zap.String("hook", hook),
		)
		return lua.LNil
	}

	ret := lua.LValue(lua.LNil)
	err := sb.Do(func(L *lua.LState) error {
		fn := L.GetGlobal(hook)
		if fn == lua.LNil {
			return nil
		}
		if err := L.CallByParam(lua.P{
			Fn:      fn,
			NRet:    1,
			Protect: true,
		}, args(L)...); err != nil {
			return err
		}
		ret = L.Get(-1)
		L.Pop(1)
		return nil
	})
	if err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("scope", scope),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil
	}
	return ret
}

// Close releases every VM.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sb := range m.scopes {
		sb.Close()
	}
	m.scopes = make(map[string]*Sandbox)
}

func (m *Manager) scope() string {
	if m.Scope == "" {
		return GlobalScope
	}
	return m.Scope
}
