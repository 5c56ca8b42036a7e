package metadata

import "fmt"

// MovementStatus is the movement lifecycle. Done is terminal and owned
// by the external ledger; the core never leaves it.
type MovementStatus string

const (
	StatusDraft     MovementStatus = "draft"
	StatusConfirmed MovementStatus = "confirmed"
	StatusAssigned  MovementStatus = "assigned"
	StatusDone      MovementStatus = "done"
	StatusCancelled MovementStatus = "cancelled"
)

func NewMovementStatus(value string) (MovementStatus, error) {
	status := MovementStatus(value)
	if !status.isValid() {
		return "", fmt.Errorf("invalid movement status: %s", value)
	}
	return status, nil
}

func (s MovementStatus) isValid() bool {
	switch s {
	case StatusDraft, StatusConfirmed, StatusAssigned, StatusDone, StatusCancelled:
		return true
	default:
		return false
	}
}

func (s MovementStatus) CanTransitionTo(next MovementStatus) bool {
	if s == StatusDone || s == StatusCancelled {
		return false
	}
	switch next {
	case StatusConfirmed:
		return s == StatusDraft
	case StatusAssigned:
		return s == StatusConfirmed
	case StatusDone:
		return s == StatusAssigned
	case StatusCancelled:
		return true
	default:
		return false
	}
}
