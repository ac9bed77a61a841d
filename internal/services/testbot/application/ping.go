package application

import (
	"time"

	"github.com/sleepymaid/sleepymaid/internal/services/testbot/domain"
)

// LatencySource reports the gateway heartbeat latency.
// *discordgo.Session satisfies it.
type LatencySource interface {
	HeartbeatLatency() time.Duration
}

// PingInteractor handles the ping use case.
type PingInteractor struct{}

// NewPingInteractor creates a new PingInteractor.
func NewPingInteractor() *PingInteractor {
	return &PingInteractor{}
}

// Execute performs the ping operation. src may be nil.
func (p *PingInteractor) Execute(src LatencySource) *domain.PingResult {
	var latency time.Duration
	if src != nil {
		latency = src.HeartbeatLatency()
	}
	return domain.NewPingResult(latency)
}
