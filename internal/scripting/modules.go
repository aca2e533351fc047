package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules registers the engine.log, engine.dice, engine.colony and
// engine.unit tables into L.
//
// Precondition: L must belong to a Sandbox.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()
	L.SetField(engine, "log", m.logModule(L))
	L.SetField(engine, "dice", m.diceModule(L))
	L.SetField(engine, "colony", m.colonyModule(L))
	L.SetField(engine, "unit", m.unitModule(L))
	L.SetGlobal("engine", engine)
}

func (m *Manager) logModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	levels := map[string]func(string, ...zap.Field){
		"debug": m.logger.Debug,
		"info":  m.logger.Info,
		"warn":  m.logger.Warn,
		"error": m.logger.Error,
	}
	for name, fn := range levels {
		fn := fn
		L.SetField(mod, name, L.NewFunction(func(L *lua.LState) int {
			fn(L.CheckString(1), zap.String("source", "lua"))
			return 0
		}))
	}
	return mod
}

func (m *Manager) diceModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	L.SetField(mod, "roll", L.NewFunction(func(L *lua.LState) int {
		result, err := m.roller.RollExpr(L.CheckString(1))
		if err != nil {
			L.RaiseError("engine.dice.roll: %s", err.Error())
			return 0
		}
		sum := 0
		for _, d := range result.Dice {
			sum += d
		}
		t := L.NewTable()
		t.RawSetString("dice", lua.LNumber(sum))
		t.RawSetString("modifier", lua.LNumber(result.Modifier))
		t.RawSetString("total", lua.LNumber(result.Total()))
		L.Push(t)
		return 1
	}))
	return mod
}

func (m *Manager) colonyModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	L.SetField(mod, "money", L.NewFunction(func(L *lua.LState) int {
		if m.Money == nil {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LNumber(m.Money()))
		return 1
	}))
	L.SetField(mod, "opinion", L.NewFunction(func(L *lua.LState) int {
		if m.Opinion == nil {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LNumber(m.Opinion()))
		return 1
	}))
	return mod
}

func (m *Manager) unitModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	L.SetField(mod, "get", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		if m.QueryUnit == nil {
			L.Push(lua.LNil)
			return 1
		}
		u := m.QueryUnit(id)
		if u == nil {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(unitTable(L, u))
		return 1
	}))
	return mod
}
