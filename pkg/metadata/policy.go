package metadata

import "fmt"

// AllocationPolicy selects how a received price is spread across
// exploded relation items.
type AllocationPolicy string

const (
	AllocationProrata    AllocationPolicy = "prorata_by_standard_cost"
	AllocationEqualSplit AllocationPolicy = "equal_split"
)

func NewAllocationPolicy(value string) (AllocationPolicy, error) {
	policy := AllocationPolicy(value)
	if !policy.isValid() {
		return "", fmt.Errorf("invalid allocation policy: %s", value)
	}
	return policy, nil
}

func (p AllocationPolicy) isValid() bool {
	switch p {
	case AllocationProrata, AllocationEqualSplit:
		return true
	default:
		return false
	}
}

// ParentValuation decides whether the principal line keeps the received
// price (full) or cedes it entirely to the exploded items (none).
type ParentValuation string

const (
	ValuationNone ParentValuation = "none"
	ValuationFull ParentValuation = "full"
)

func NewParentValuation(value string) (ParentValuation, error) {
	valuation := ParentValuation(value)
	if !valuation.isValid() {
		return "", fmt.Errorf("invalid parent valuation: %s", value)
	}
	return valuation, nil
}

func (v ParentValuation) isValid() bool {
	switch v {
	case ValuationNone, ValuationFull:
		return true
	default:
		return false
	}
}
