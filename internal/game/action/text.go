package action

import (
	"fmt"
	"strconv"
	"strings"
)

// NotificationText returns the message for one step of the invocation.
// Modifiers, rolls and band are read from the cached resolution so the text
// never disagrees with the math.
func (b *base) NotificationText(step Step) string {
	switch step {
	case StepConfirm:
		if b.res.Price > 0 {
			return fmt.Sprintf("%s It will cost %d.", b.def.Prompt, b.res.Price)
		}
		return b.def.Prompt
	case StepInitial:
		return b.impl.describe()
	case StepModifiers:
		return b.modifierText()
	case StepRolling:
		return "Rolling the dice..."
	case StepResult:
		return b.resultText()
	case StepOutcome:
		return b.outcomeText()
	}
	return ""
}

func (b *base) modifierText() string {
	if b.def.Mode == ModeEvidence {
		return fmt.Sprintf("There are %d pieces of evidence. Each succeeds on a roll of %d or more.", b.res.Evidence, evidenceTarget)
	}
	text := fmt.Sprintf("Your roll modifier is %+d.", b.res.OwnModifier)
	if b.def.Mode == ModeOpposed {
		text += fmt.Sprintf(" The opposing roll modifier is %+d.", b.res.OpponentModifier)
	}
	return text
}

func (b *base) resultText() string {
	switch b.def.Mode {
	case ModeEvidence:
		return fmt.Sprintf("%d of %d pieces of evidence held up (%s).", b.res.Total, b.res.Evidence, b.res.Band)
	case ModeOpposed:
		return fmt.Sprintf("You rolled %s and the opponent rolled %d. The result is %d: %s.",
			joinRolls(b.res.Rolls), b.res.OpponentRoll, b.res.Total, b.res.Band)
	default:
		return fmt.Sprintf("You rolled %s. The result is %d: %s.", joinRolls(b.res.Rolls), b.res.Total, b.res.Band)
	}
}

func (b *base) outcomeText() string {
	text := ""
	if b.engine.Scripts != nil {
		if s, ok := b.engine.Scripts.OutcomeText(string(b.def.Kind), bandKey(b.res.Band)); ok {
			text = s
		}
	}
	if text == "" {
		text = b.def.outcome(b.res.Band, b.defending)
	}
	if d := b.impl.details(); d != "" {
		text = strings.TrimSpace(text + " " + d)
	}
	return text
}

func joinRolls(rolls []int) string {
	parts := make([]string, len(rolls))
	for i, r := range rolls {
		parts[i] = strconv.Itoa(r)
	}
	return strings.Join(parts, " and ")
}
