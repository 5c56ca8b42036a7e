package metadata

import "fmt"

// RelationKind classifies a bill-of-relations line.
type RelationKind string

const (
	KindComponent  RelationKind = "component"
	KindPeripheral RelationKind = "peripheral"
	KindComplement RelationKind = "complement"
)

func NewRelationKind(value string) (RelationKind, error) {
	kind := RelationKind(value)
	if !kind.isValid() {
		return "", fmt.Errorf("invalid relation kind: %s", value)
	}
	return kind, nil
}

func (k RelationKind) isValid() bool {
	switch k {
	case KindComponent, KindPeripheral, KindComplement:
		return true
	default:
		return false
	}
}

// SupplyKind tags movements and buffer lines. Monitor and UPS are
// operator-facing aliases that land in the peripheral list.
type SupplyKind string

const (
	SupplyParent     SupplyKind = "parent"
	SupplyComponent  SupplyKind = "component"
	SupplyPeripheral SupplyKind = "peripheral"
	SupplyComplement SupplyKind = "complement"
	SupplyMonitor    SupplyKind = "monitor"
	SupplyUPS        SupplyKind = "ups"
)

func NewSupplyKind(value string) (SupplyKind, error) {
	kind := SupplyKind(value)
	if !kind.isValid() {
		return "", fmt.Errorf("invalid supply kind: %s", value)
	}
	return kind, nil
}

func (k SupplyKind) isValid() bool {
	switch k {
	case SupplyParent, SupplyComponent, SupplyPeripheral, SupplyComplement, SupplyMonitor, SupplyUPS:
		return true
	default:
		return false
	}
}

// SupplyKind is the movement tag carrying this relation kind.
func (k RelationKind) SupplyKind() SupplyKind {
	switch k {
	case KindComponent:
		return SupplyComponent
	case KindPeripheral:
		return SupplyPeripheral
	case KindComplement:
		return SupplyComplement
	default:
		return ""
	}
}

// RelationKind folds a supply kind onto the bill-of-relations list it
// belongs to. Monitor and UPS fold into peripheral; parent has no list.
func (k SupplyKind) RelationKind() (RelationKind, bool) {
	switch k {
	case SupplyComponent:
		return KindComponent, true
	case SupplyPeripheral, SupplyMonitor, SupplyUPS:
		return KindPeripheral, true
	case SupplyComplement:
		return KindComplement, true
	default:
		return "", false
	}
}
