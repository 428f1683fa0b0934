package bots

import (
	"context"
	"fmt"
	"strings"
)

// Texts sent by the test command.
const DemoSingle = "**Test** This is a basic container message"

var DemoLines = []string{
	"**First line** of text",
	"**Second line** of text",
	"**Third line** of text",
}

// Processor answers prefix commands with container messages.
type Processor struct {
	prefix string
}

// NewProcessor creates a processor for commands starting with prefix.
func NewProcessor(prefix string) *Processor {
	return &Processor{prefix: prefix}
}

// HandleMessage parses a command from the message text:
//   - "test"          -> one single-text container, then one three-line container
//   - "say <text>"    -> one single-text container echoing text
//   - "lines a | b"   -> one container with a text display per segment
//   - "help" or ""    -> the command list
//
// Text without the prefix produces no replies.
func (p *Processor) HandleMessage(ctx context.Context, msg IncomingMessage) ([]OutgoingMessage, error) {
	text := strings.TrimSpace(msg.Text)
	if !strings.HasPrefix(text, p.prefix) {
		return nil, nil
	}

	name, args, _ := strings.Cut(strings.TrimPrefix(text, p.prefix), " ")
	name = strings.ToLower(strings.TrimSpace(name))
	args = strings.TrimSpace(args)

	single := func(s string) []OutgoingMessage {
		return []OutgoingMessage{{Channel: msg.Channel, Texts: []string{s}}}
	}

	switch name {
	case "test":
		return []OutgoingMessage{
			{Channel: msg.Channel, Texts: []string{DemoSingle}},
			{Channel: msg.Channel, Texts: append([]string(nil), DemoLines...), Multi: true},
		}, nil

	case "say":
		if args == "" {
			return single(fmt.Sprintf("Usage: `%ssay <text>`", p.prefix)), nil
		}
		return single(args), nil

	case "lines":
		lines := splitLines(args)
		if len(lines) == 0 {
			return single(fmt.Sprintf("Usage: `%slines first | second | ...`", p.prefix)), nil
		}
		return []OutgoingMessage{{Channel: msg.Channel, Texts: lines, Multi: true}}, nil

	case "help", "":
		return []OutgoingMessage{{Channel: msg.Channel, Texts: p.helpLines(), Multi: true}}, nil

	default:
		return single(fmt.Sprintf("Unknown command `%s%s`. Try `%shelp`.", p.prefix, name, p.prefix)), nil
	}
}

func (p *Processor) helpLines() []string {
	return []string{
		"**Commands**",
		fmt.Sprintf("`%stest` sends a sample single and multi-line container", p.prefix),
		fmt.Sprintf("`%ssay <text>` echoes text in a container", p.prefix),
		fmt.Sprintf("`%slines a | b | c` puts each segment in its own text block", p.prefix),
	}
}

// splitLines splits on "|" and drops blank segments.
func splitLines(s string) []string {
	var out []string
	for _, part := range strings.Split(s, "|") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
