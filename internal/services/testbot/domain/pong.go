package domain

import "strings"

// PongTrigger is the emoji that makes the bot answer.
const PongTrigger = "🏓"

// PongResult represents the result of evaluating a pong trigger.
type PongResult struct {
	ShouldRespond bool
	Response      string
}

// NewPongResult evaluates the content of a message. Messages written by
// bots never trigger a response.
func NewPongResult(content string, fromBot bool) *PongResult {
	if fromBot || !strings.Contains(content, PongTrigger) {
		return &PongResult{}
	}

	return &PongResult{
		ShouldRespond: true,
		Response:      "Pong " + PongTrigger,
	}
}
