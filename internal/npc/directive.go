package npc

import (
	"strings"
	"unicode/utf8"
)

// Action is the coarse behaviour an advisor picks for an NPC.
type Action string

const (
	ActionNone     Action = "none"
	ActionFlee     Action = "flee"
	ActionApproach Action = "approach"
	ActionStay     Action = "stay"
)

// Directive is one advisory decision: what to do and what to say.
type Directive struct {
	Action Action
	Speech string
}

const maxSpeech = 120

var actionWords = []struct {
	action Action
	words  []string
}{
	{ActionFlee, []string{"flee", "run", "escape", "retreat", "hide"}},
	{ActionApproach, []string{"approach", "attack", "charge", "chase", "steal"}},
	{ActionStay, []string{"stay", "wait", "stand", "guard", "ignore"}},
}

// ParseDirective reads free text from an advisor. The first action word in
// the text wins; the first non-empty line becomes the speech.
func ParseDirective(text string) Directive {
	d := Directive{Action: ActionNone, Speech: firstLine(text)}
	lower := strings.ToLower(text)
	best := -1
	for _, aw := range actionWords {
		for _, w := range aw.words {
			if i := indexWord(lower, w); i >= 0 && (best < 0 || i < best) {
				best = i
				d.Action = aw.action
			}
		}
	}
	return d
}

// ParseAction maps an action name to an Action, defaulting to ActionNone.
func ParseAction(s string) Action {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionFlee, ActionApproach, ActionStay:
		return a
	}
	return ActionNone
}

func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if utf8.RuneCountInString(line) > maxSpeech {
			r := []rune(line)
			line = string(r[:maxSpeech])
		}
		return line
	}
	return ""
}

// indexWord finds w in s at a word boundary.
func indexWord(s, w string) int {
	off := 0
	for {
		i := strings.Index(s[off:], w)
		if i < 0 {
			return -1
		}
		i += off
		end := i + len(w)
		if (i == 0 || !isLetter(s[i-1])) && (end == len(s) || !isLetter(s[end]) || s[end] == 's') {
			return i
		}
		off = i + 1
	}
}

func isLetter(b byte) bool {
	return b >= 'a' && b <= 'z'
}
