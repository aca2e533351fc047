package scripting

import lua "github.com/yuin/gopher-lua"

// RollModifier calls roll_modifier(kind, unit) and returns its integer result.
// A missing hook or a non-numeric result yields 0.
func (m *Manager) RollModifier(kind string, u UnitInfo) int {
	ret := m.call(m.scope(), "roll_modifier", func(L *lua.LState) []lua.LValue {
		return []lua.LValue{lua.LString(kind), unitTable(L, &u)}
	})
	if n, ok := ret.(lua.LNumber); ok {
		return int(n)
	}
	return 0
}

// OutcomeText calls outcome_text(kind, band). It reports false when the hook
// is missing or returns anything but a non-empty string.
func (m *Manager) OutcomeText(kind, band string) (string, bool) {
	ret := m.call(m.scope(), "outcome_text", func(*lua.LState) []lua.LValue {
		return []lua.LValue{lua.LString(kind), lua.LString(band)}
	})
	s, ok := ret.(lua.LString)
	if !ok || s == "" {
		return "", false
	}
	return string(s), true
}

func unitTable(L *lua.LState, u *UnitInfo) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("id", lua.LString(u.ID))
	t.RawSetString("name", lua.LString(u.Name))
	t.RawSetString("side", lua.LString(u.Side))
	t.RawSetString("x", lua.LNumber(u.X))
	t.RawSetString("y", lua.LNumber(u.Y))
	t.RawSetString("movement", lua.LNumber(u.Movement))
	perms := L.NewTable()
	for _, p := range u.Permissions {
		perms.RawSetString(p, lua.LTrue)
	}
	t.RawSetString("permissions", perms)
	return t
}
