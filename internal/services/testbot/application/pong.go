package application

import "github.com/sleepymaid/sleepymaid/internal/services/testbot/domain"

// PongInteractor handles the pong use case.
type PongInteractor struct{}

// NewPongInteractor creates a new PongInteractor.
func NewPongInteractor() *PongInteractor {
	return &PongInteractor{}
}

// Execute evaluates a message and returns the pong result.
func (p *PongInteractor) Execute(content string, fromBot bool) *domain.PongResult {
	return domain.NewPongResult(content, fromBot)
}
