package auditlog

import (
	"log"

	"kitting/internal/repository"
	"kitting/pkg/models"
)

type Auditlog struct {
	r *repository.Repository
}

// Auditable is implemented by records worth a trail entry: supply lines
// and movements.
type Auditable interface {
	CreateLogView() models.AuditLog
}

// Log is best-effort: a failed audit write is reported but never fails
// the operation it describes. A nil receiver disables the trail.
func (a *Auditlog) Log(action string, data interface{}, item Auditable) {
	if a == nil {
		return
	}
	auditLog := item.CreateLogView()
	auditLog.Action = action

	err := a.r.PersistLog(auditLog, data)

	if err != nil {
		log.Println("Unable to create AuditLog entry for id ", auditLog.ResourceID)
		return
	}

	log.Println("Created AuditLog entry for id ", auditLog.ResourceID)
}

func NewAuditLog(repository *repository.Repository) *Auditlog {
	a := Auditlog{r: repository}

	return &a
}
