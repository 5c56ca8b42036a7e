package linkage

import (
	"errors"
	"testing"

	custom_error "kitting/pkg/errors"
	"kitting/pkg/metadata"
	"kitting/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type MockLinkageRepository struct {
	mock.Mock
}

func (m *MockLinkageRepository) GetUnit(id int) (*models.SerializedUnit, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SerializedUnit), args.Error(1)
}

func (m *MockLinkageRepository) GetUnitsBySerial(serial string) ([]models.SerializedUnit, error) {
	args := m.Called(serial)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SerializedUnit), args.Error(1)
}

func (m *MockLinkageRepository) CandidatePool(principal *models.SerializedUnit, targetProductID int) ([]models.SerializedUnit, error) {
	args := m.Called(principal, targetProductID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SerializedUnit), args.Error(1)
}

func (m *MockLinkageRepository) Insert(tx *goqu.TxDatabase, line models.SupplyLine, autoLinked bool) (*models.SupplyLine, error) {
	args := m.Called(tx, line, autoLinked)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SupplyLine), args.Error(1)
}

func (m *MockLinkageRepository) Delete(lineID int) error {
	args := m.Called(lineID)
	return args.Error(0)
}

func (m *MockLinkageRepository) ExistsPair(tx *goqu.TxDatabase, principalID, relatedID int) (bool, error) {
	args := m.Called(tx, principalID, relatedID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLinkageRepository) LinesByPrincipal(principalID int) ([]models.SupplyLine, error) {
	args := m.Called(principalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SupplyLine), args.Error(1)
}

func (m *MockLinkageRepository) LinkedSummary(principalID int) ([]models.LinkedItem, error) {
	args := m.Called(principalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LinkedItem), args.Error(1)
}

// stubTransactor runs the unit of work directly so transactional paths
// can be exercised against mocks.
type stubTransactor struct{}

func (stubTransactor) InTransaction(fn func(tx *goqu.TxDatabase) error) error {
	return fn(nil)
}

func TestLinkRejectsSelfLink(t *testing.T) {
	service := &LinkageService{logger: zap.NewNop()}

	_, err := service.Link(7, 7, metadata.SupplyComponent, decimal.NewFromInt(1), "pcs")

	assert.Error(t, err)
	assert.True(t, custom_error.IsValidationError(err))
}

func TestLinkRejectsNonPositiveQty(t *testing.T) {
	service := &LinkageService{logger: zap.NewNop()}

	_, err := service.Link(7, 8, metadata.SupplyComponent, decimal.Zero, "pcs")

	assert.Error(t, err)
	assert.True(t, custom_error.IsValidationError(err))
}

func TestLinkRejectsParentKind(t *testing.T) {
	service := &LinkageService{logger: zap.NewNop()}

	_, err := service.Link(7, 8, metadata.SupplyParent, decimal.NewFromInt(1), "pcs")

	assert.Error(t, err)
	assert.True(t, custom_error.IsValidationError(err))
}

func TestLinkRejectsUnknownRelatedUnit(t *testing.T) {
	mockRepo := new(MockLinkageRepository)
	mockRepo.On("GetUnit", 8).Return(nil, custom_error.NewOperatorError("serialized unit %d does not exist", 8))

	service := &LinkageService{linkageRepo: mockRepo, logger: zap.NewNop()}

	_, err := service.Link(7, 8, metadata.SupplyComponent, decimal.NewFromInt(1), "pcs")

	assert.Error(t, err)
	assert.True(t, custom_error.IsOperatorError(err))
	mockRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything)
}

func TestLinkStoresMonitorAsPeripheral(t *testing.T) {
	mockRepo := new(MockLinkageRepository)
	related := &models.SerializedUnit{ID: 8, Product: models.Product{ID: 2, Unit: "pcs"}}

	mockRepo.On("GetUnit", 8).Return(related, nil)
	mockRepo.On("Insert", mock.Anything, mock.MatchedBy(func(line models.SupplyLine) bool {
		return line.Kind == metadata.SupplyPeripheral && line.RelatedUnitID == 8
	}), false).Return(&models.SupplyLine{ID: 1, PrincipalUnitID: 7, RelatedUnitID: 8, Kind: metadata.SupplyPeripheral}, nil).Once()

	service := &LinkageService{linkageRepo: mockRepo, transactor: stubTransactor{}, logger: zap.NewNop()}

	line, err := service.Link(7, 8, metadata.SupplyMonitor, decimal.NewFromInt(1), "pcs")

	assert.NoError(t, err)
	assert.Equal(t, metadata.SupplyPeripheral, line.Kind)
	mockRepo.AssertExpectations(t)
}

func TestLinkDefaultsUnitToRelatedProductUnit(t *testing.T) {
	mockRepo := new(MockLinkageRepository)
	related := &models.SerializedUnit{ID: 8, Product: models.Product{ID: 2, Unit: "pcs"}}

	mockRepo.On("GetUnit", 8).Return(related, nil)
	mockRepo.On("Insert", mock.Anything, mock.MatchedBy(func(line models.SupplyLine) bool {
		return line.Unit == "pcs"
	}), false).Return(&models.SupplyLine{ID: 1, Unit: "pcs"}, nil).Once()

	service := &LinkageService{linkageRepo: mockRepo, transactor: stubTransactor{}, logger: zap.NewNop()}

	_, err := service.Link(7, 8, metadata.SupplyComponent, decimal.NewFromInt(1), "")

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestLinkNextCandidateEmptyPool(t *testing.T) {
	mockRepo := new(MockLinkageRepository)
	principal := &models.SerializedUnit{ID: 7, Location: models.Location{ID: 1}}

	mockRepo.On("GetUnit", 7).Return(principal, nil)
	mockRepo.On("CandidatePool", principal, 2).Return([]models.SerializedUnit{}, nil)

	service := &LinkageService{linkageRepo: mockRepo, logger: zap.NewNop()}

	_, err := service.LinkNextCandidate(7, 2, metadata.SupplyComponent)

	assert.Error(t, err)
	assert.True(t, custom_error.IsOperatorError(err))
}

func TestLinkNextCandidateRetriesAfterLostRace(t *testing.T) {
	mockRepo := new(MockLinkageRepository)
	principal := &models.SerializedUnit{ID: 7, Location: models.Location{ID: 1}}
	first := models.SerializedUnit{ID: 8, Product: models.Product{ID: 2, Unit: "pcs"}}
	second := models.SerializedUnit{ID: 9, Product: models.Product{ID: 2, Unit: "pcs"}}

	mockRepo.On("GetUnit", 7).Return(principal, nil)
	mockRepo.On("GetUnit", 8).Return(&first, nil)
	mockRepo.On("GetUnit", 9).Return(&second, nil)

	// A concurrent session consumes unit 8 between pool fetch and commit;
	// the refreshed pool offers unit 9 instead.
	mockRepo.On("CandidatePool", principal, 2).Return([]models.SerializedUnit{first}, nil).Once()
	mockRepo.On("CandidatePool", principal, 2).Return([]models.SerializedUnit{second}, nil).Once()
	mockRepo.On("Insert", mock.Anything, mock.MatchedBy(func(line models.SupplyLine) bool {
		return line.RelatedUnitID == 8
	}), false).Return(nil, &custom_error.DuplicateAssignmentError{RelatedUnitID: 8}).Once()
	mockRepo.On("Insert", mock.Anything, mock.MatchedBy(func(line models.SupplyLine) bool {
		return line.RelatedUnitID == 9
	}), false).Return(&models.SupplyLine{ID: 42, PrincipalUnitID: 7, RelatedUnitID: 9}, nil).Once()

	service := &LinkageService{linkageRepo: mockRepo, transactor: stubTransactor{}, logger: zap.NewNop()}

	line, err := service.LinkNextCandidate(7, 2, metadata.SupplyComponent)

	assert.NoError(t, err)
	assert.Equal(t, 9, line.RelatedUnitID)
	mockRepo.AssertExpectations(t)
}

func TestFullMeshLinksEveryOrderedPair(t *testing.T) {
	mockRepo := new(MockLinkageRepository)

	for _, id := range []int{5, 6, 7} {
		unit := &models.SerializedUnit{ID: id, Product: models.Product{ID: id * 10, Unit: "pcs"}}
		mockRepo.On("GetUnit", id).Return(unit, nil)
	}

	var edges []models.SupplyLine
	mockRepo.On("ExistsPair", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
	mockRepo.On("Insert", mock.Anything, mock.AnythingOfType("models.SupplyLine"), true).
		Run(func(args mock.Arguments) {
			edges = append(edges, args.Get(1).(models.SupplyLine))
		}).
		Return(&models.SupplyLine{}, nil)

	service := &LinkageService{linkageRepo: mockRepo, transactor: stubTransactor{}, logger: zap.NewNop()}

	created, err := service.FullMesh([]int{5, 6, 7})

	assert.NoError(t, err)
	assert.Len(t, created, 6)
	assert.Len(t, edges, 6)

	seen := make(map[[2]int]bool)
	for _, edge := range edges {
		assert.NotEqual(t, edge.PrincipalUnitID, edge.RelatedUnitID)
		assert.False(t, edge.HasCost)
		seen[[2]int{edge.PrincipalUnitID, edge.RelatedUnitID}] = true
	}
	for _, a := range []int{5, 6, 7} {
		for _, b := range []int{5, 6, 7} {
			if a != b {
				assert.True(t, seen[[2]int{a, b}], "missing edge %d -> %d", a, b)
			}
		}
	}
}

func TestFullMeshRequiresTwoUnits(t *testing.T) {
	service := &LinkageService{logger: zap.NewNop()}

	_, err := service.FullMesh([]int{5})

	assert.Error(t, err)
	assert.True(t, custom_error.IsValidationError(err))
}

func TestMeshBySerialRequiresTwoMatches(t *testing.T) {
	mockRepo := new(MockLinkageRepository)
	mockRepo.On("GetUnitsBySerial", "SN-1").Return([]models.SerializedUnit{{ID: 5, Serial: "SN-1"}}, nil)

	service := &LinkageService{linkageRepo: mockRepo, logger: zap.NewNop()}

	_, err := service.MeshBySerial("SN-1")

	assert.Error(t, err)
	assert.True(t, custom_error.IsOperatorError(err))
}

func TestLinkedSummaryDegradesToEmpty(t *testing.T) {
	mockRepo := new(MockLinkageRepository)
	mockRepo.On("LinkedSummary", 7).Return(nil, errors.New("relation does not exist"))

	service := &LinkageService{linkageRepo: mockRepo, logger: zap.NewNop()}

	items := service.LinkedSummary(7)

	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestIsDuplicateAssignment(t *testing.T) {
	err := &custom_error.DuplicateAssignmentError{RelatedUnitID: 8}

	assert.True(t, custom_error.IsDuplicateAssignment(err))
	assert.False(t, custom_error.IsDuplicateAssignment(errors.New("other")))
}
