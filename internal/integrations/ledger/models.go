package ledger

import "errors"

// ErrDuplicateSerial is the ledger's rejection of a transfer whose
// lines contain the same serialized unit twice. Consolidation runs
// first precisely so this never happens; seeing it anyway is fatal for
// the transfer.
var ErrDuplicateSerial = errors.New("ledger rejected transfer: serial already assigned")

type createMovementRequest struct {
	ProductID        int    `json:"product_id"`
	PlannedQty       string `json:"planned_qty"`
	Unit             string `json:"unit"`
	SourceLocationID int    `json:"source_location_id"`
	DestLocationID   int    `json:"dest_location_id"`
	Reference        string `json:"reference,omitempty"`
}

type createMovementResponse struct {
	MovementID int `json:"movement_id"`
}

type commitTransferRequest struct {
	MovementIDs []int `json:"movement_ids"`
}

type errorResponse struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}
