package metadata

import (
	"testing"
)

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		name     string
		from     MovementStatus
		to       MovementStatus
		expected bool
	}{
		{"draft to confirmed", StatusDraft, StatusConfirmed, true},
		{"confirmed to assigned", StatusConfirmed, StatusAssigned, true},
		{"assigned to done", StatusAssigned, StatusDone, true},
		{"draft to assigned skips confirm", StatusDraft, StatusAssigned, false},
		{"draft to done skips everything", StatusDraft, StatusDone, false},
		{"confirmed back to draft", StatusConfirmed, StatusDraft, false},
		{"draft to cancelled", StatusDraft, StatusCancelled, true},
		{"assigned to cancelled", StatusAssigned, StatusCancelled, true},
		{"done is terminal", StatusDone, StatusCancelled, false},
		{"cancelled is terminal", StatusCancelled, StatusConfirmed, false},
		{"done cannot reopen", StatusDone, StatusDraft, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.expected {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.expected)
			}
		})
	}
}

func TestNewMovementStatus(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid draft", "draft", false},
		{"valid done", "done", false},
		{"valid cancelled", "cancelled", false},
		{"unknown status", "shipped", true},
		{"empty status", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMovementStatus(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewMovementStatus() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
