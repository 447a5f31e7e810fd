package npc

import (
	"context"
	"fmt"
	"strings"
)

// Request is one situational report sent to an advisor.
type Request struct {
	Npc         string
	Personality string
	Situation   string
}

// Prompt renders the request as free text.
func (r Request) Prompt() string {
	var b strings.Builder
	if r.Personality != "" {
		b.WriteString(r.Personality)
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "Current situation: %s\n", r.Situation)
	b.WriteString("Reply with your next action in one short sentence.")
	return b.String()
}

// Advisor is the slow, external decision maker. Advise may block and must
// honour ctx.
type Advisor interface {
	Advise(ctx context.Context, req Request) (Directive, error)
}

// AdvisorFunc adapts a function to Advisor.
type AdvisorFunc func(ctx context.Context, req Request) (Directive, error)

func (f AdvisorFunc) Advise(ctx context.Context, req Request) (Directive, error) {
	return f(ctx, req)
}
