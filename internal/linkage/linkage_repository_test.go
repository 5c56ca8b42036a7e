package linkage

import (
	"testing"

	"kitting/internal/repository"
	"kitting/pkg/models"

	"github.com/stretchr/testify/assert"
)

func TestCandidatePoolQueryExcludesTakenUnits(t *testing.T) {
	repo := NewRepository(repository.NewRepository(nil))
	principal := &models.SerializedUnit{ID: 7, Location: models.Location{ID: 3}}

	sqlQuery, _, err := repo.candidatePoolQuery(principal, 2).ToSQL()

	assert.NoError(t, err)
	assert.Contains(t, sqlQuery, "NOT IN")
	// Manual edges consume the related unit globally.
	assert.Contains(t, sqlQuery, `"auto_linked"`)
	// Any edge under this principal, mesh edges included, keeps the unit
	// out of this principal's pool.
	assert.Contains(t, sqlQuery, `"principal_unit_id" = 7`)
	assert.Contains(t, sqlQuery, " OR ")
}

func TestCandidatePoolQueryScopesToProductAndLocation(t *testing.T) {
	repo := NewRepository(repository.NewRepository(nil))
	principal := &models.SerializedUnit{ID: 7, Location: models.Location{ID: 3}}

	sqlQuery, _, err := repo.candidatePoolQuery(principal, 2).ToSQL()

	assert.NoError(t, err)
	assert.Contains(t, sqlQuery, `"u"."product_id" = 2`)
	assert.Contains(t, sqlQuery, `"u"."location_id" = 3`)
	assert.Contains(t, sqlQuery, `"u"."id" != 7`)
}
