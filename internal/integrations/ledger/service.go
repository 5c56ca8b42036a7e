package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"kitting/pkg/models"

	"github.com/joho/godotenv"
)

// LedgerService talks to the external transactional stock ledger over
// HTTP. The ledger owns finalization; this client only submits.
type LedgerService struct {
	baseURL string
	token   string
}

func NewLedgerService() *LedgerService {
	_ = godotenv.Load()

	return &LedgerService{
		baseURL: os.Getenv("LEDGER_BASE_URL"),
		token:   os.Getenv("LEDGER_API_TOKEN"),
	}
}

func (s *LedgerService) CreateMovement(movement models.Movement) (int, error) {
	payload := createMovementRequest{
		ProductID:        movement.ProductID,
		PlannedQty:       movement.PlannedQty.String(),
		Unit:             movement.Unit,
		SourceLocationID: movement.SourceLocationID,
		DestLocationID:   movement.DestLocationID,
		Reference:        fmt.Sprintf("KIT-%d", movement.ID),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}

	url := fmt.Sprintf("%s/api/v1/movements", s.baseURL)
	req, err := http.NewRequest("POST", url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return 0, fmt.Errorf("ledger returned %s", resp.Status)
	}

	var response createMovementResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return 0, err
	}

	return response.MovementID, nil
}

func (s *LedgerService) CommitTransfer(movementIDs []int) error {
	body, err := json.Marshal(commitTransferRequest{MovementIDs: movementIDs})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/api/v1/transfers/commit", s.baseURL)
	req, err := http.NewRequest("POST", url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return nil
	}

	var response errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("ledger returned %s", resp.Status)
	}

	if response.ErrorCode == "duplicate_serial" {
		return ErrDuplicateSerial
	}

	return fmt.Errorf("ledger rejected transfer: %s (%s)", response.Message, response.ErrorCode)
}
