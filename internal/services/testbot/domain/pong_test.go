package domain

import "testing"

func TestNewPongResult(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		fromBot     bool
		wantRespond bool
	}{
		{"trigger", "Hello 🏓 world", false, true},
		{"only trigger", "🏓", false, true},
		{"no trigger", "Hello world", false, false},
		{"empty", "", false, false},
		{"from bot", "🏓", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewPongResult(tt.content, tt.fromBot)

			if result.ShouldRespond != tt.wantRespond {
				t.Errorf("expected ShouldRespond %v, got %v", tt.wantRespond, result.ShouldRespond)
			}
			if tt.wantRespond && result.Response != "Pong 🏓" {
				t.Errorf("expected response %q, got %q", "Pong 🏓", result.Response)
			}
			if !tt.wantRespond && result.Response != "" {
				t.Errorf("expected empty response, got %q", result.Response)
			}
		})
	}
}
