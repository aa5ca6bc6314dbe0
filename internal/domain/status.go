package domain

import "fmt"

// AccountStatus is the lifecycle state of an account. Each status carries
// fixed capability flags and a fixed set of legal successor states; the
// aggregate consults both before mutating anything.
type AccountStatus string

const (
	StatusActive  AccountStatus = "ACTIVE"
	StatusDormant AccountStatus = "DORMANT"
	StatusFrozen  AccountStatus = "FROZEN"
	// StatusClosed is terminal: no legal successors.
	StatusClosed AccountStatus = "CLOSED"
)

type statusPolicy struct {
	canDeposit  bool
	canWithdraw bool
	canClose    bool
	successors  []AccountStatus
}

var statusPolicies = map[AccountStatus]statusPolicy{
	StatusActive: {
		canDeposit:  true,
		canWithdraw: true,
		canClose:    true,
		successors:  []AccountStatus{StatusDormant, StatusFrozen, StatusClosed},
	},
	StatusDormant: {
		canDeposit:  true,
		canWithdraw: false,
		canClose:    true,
		successors:  []AccountStatus{StatusActive, StatusFrozen, StatusClosed},
	},
	StatusFrozen: {
		canDeposit:  false,
		canWithdraw: false,
		canClose:    false,
		successors:  []AccountStatus{StatusActive, StatusDormant},
	},
	StatusClosed: {
		canDeposit:  false,
		canWithdraw: false,
		canClose:    false,
		successors:  nil,
	},
}

// ParseAccountStatus validates a stored status string.
func ParseAccountStatus(s string) (AccountStatus, error) {
	status := AccountStatus(s)
	if _, ok := statusPolicies[status]; !ok {
		return "", fmt.Errorf("unknown account status %q", s)
	}
	return status, nil
}

func (s AccountStatus) IsValid() bool {
	_, ok := statusPolicies[s]
	return ok
}

func (s AccountStatus) IsActive() bool  { return s == StatusActive }
func (s AccountStatus) IsDormant() bool { return s == StatusDormant }
func (s AccountStatus) IsFrozen() bool  { return s == StatusFrozen }
func (s AccountStatus) IsClosed() bool  { return s == StatusClosed }

func (s AccountStatus) CanDeposit() bool  { return statusPolicies[s].canDeposit }
func (s AccountStatus) CanWithdraw() bool { return statusPolicies[s].canWithdraw }
func (s AccountStatus) CanClose() bool    { return statusPolicies[s].canClose }

// CanTransact reports whether any balance-affecting operation is possible.
func (s AccountStatus) CanTransact() bool {
	p := statusPolicies[s]
	return p.canDeposit || p.canWithdraw
}

// CanTransitionTo reports whether target is a legal successor of s.
// A transition to the same status is always illegal.
func (s AccountStatus) CanTransitionTo(target AccountStatus) bool {
	if s == target {
		return false
	}
	for _, next := range statusPolicies[s].successors {
		if next == target {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the legal successor statuses of s.
func (s AccountStatus) AllowedTransitions() []AccountStatus {
	succ := statusPolicies[s].successors
	out := make([]AccountStatus, len(succ))
	copy(out, succ)
	return out
}
