package movements

import (
	"testing"

	"kitting/internal/explosion"
	custom_error "kitting/pkg/errors"
	"kitting/pkg/metadata"
	"kitting/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestExplodeMovementRejectsNonParent(t *testing.T) {
	mockRepo := new(MockMovementsRepository)
	mockRepo.On("GetMovement", 5).Return(&models.Movement{
		ID:         5,
		SupplyKind: metadata.SupplyComponent,
		Status:     metadata.StatusDraft,
	}, nil)

	generator := &Generator{movementsRepo: mockRepo}

	_, err := generator.ExplodeMovement(5, explosion.ExplosionOptions{})

	assert.Error(t, err)
	assert.True(t, custom_error.IsValidationError(err))
	mockRepo.AssertNotCalled(t, "ChildKinds", mock.Anything)
}

func TestExplodeMovementRejectsTerminalParent(t *testing.T) {
	mockRepo := new(MockMovementsRepository)
	mockRepo.On("GetMovement", 5).Return(&models.Movement{
		ID:         5,
		SupplyKind: metadata.SupplyParent,
		Status:     metadata.StatusDone,
	}, nil)

	generator := &Generator{movementsRepo: mockRepo}

	_, err := generator.ExplodeMovement(5, explosion.ExplosionOptions{})

	assert.Error(t, err)
	assert.True(t, custom_error.IsOperatorError(err))
	mockRepo.AssertNotCalled(t, "ChildKinds", mock.Anything)
}
