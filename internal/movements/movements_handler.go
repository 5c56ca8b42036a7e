package movements

import (
	"log"
	"net/http"
	"strconv"

	"kitting/internal/catalog"
	"kitting/internal/explosion"
	"kitting/internal/integrations/ledger"
	"kitting/internal/relations"
	"kitting/internal/repository"
	"kitting/pkg/auditlog"
	custom_error "kitting/pkg/errors"
	"kitting/pkg/metadata"
	"kitting/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type MovementsHandler struct {
	Service   *MovementsService
	Generator *Generator
}

func NewHandler(r *repository.Repository, cat catalog.Catalog, auditLog *auditlog.Auditlog, logger *zap.Logger) *MovementsHandler {
	movementsRepo := NewRepository(r)
	billRepo := relations.NewRepository(r)
	engine := explosion.NewEngine(cat)
	generator := NewGenerator(movementsRepo, billRepo, engine, r)
	consolidator := NewConsolidator(movementsRepo, r)
	ledgerClient := ledger.NewLedgerService()

	return &MovementsHandler{
		Service:   NewMovementsService(movementsRepo, consolidator, generator, ledgerClient, r, auditLog, logger),
		Generator: generator,
	}
}

func (h *MovementsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/movements", h.ListMovements)
	router.GET("/movements/:id", h.GetMovement)
	router.POST("/movements", h.CreateMovement)
	router.POST("/movements/:id/lines", h.AddLine)
	router.POST("/movements/:id/explode", h.ExplodeMovement)
	router.POST("/movements/:id/consolidate", h.Consolidate)
	router.PATCH("/movements/:id/confirm", h.transition(metadata.StatusConfirmed))
	router.PATCH("/movements/:id/assign", h.transition(metadata.StatusAssigned))
	router.PATCH("/movements/:id/cancel", h.transition(metadata.StatusCancelled))
	router.POST("/transfers/commit", h.CommitTransfer)
}

func (h *MovementsHandler) ListMovements(c *gin.Context) {
	var query struct {
		ProductID        *int   `form:"product_id"`
		Status           string `form:"status"`
		SupplyKind       string `form:"supply_kind"`
		ParentMovementID *int   `form:"parent_movement_id"`
		DestLocationID   *int   `form:"dest_location_id"`
	}

	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	conditions := repository.NewQueryBuilder()

	if query.ProductID != nil {
		conditions.AddCondition("product_id", *query.ProductID)
	}
	if query.Status != "" {
		status, err := metadata.NewMovementStatus(query.Status)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		conditions.AddCondition("status", status)
	}
	if query.SupplyKind != "" {
		kind, err := metadata.NewSupplyKind(query.SupplyKind)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		conditions.AddCondition("supply_kind", kind)
	}
	if query.ParentMovementID != nil {
		conditions.AddCondition("parent_movement_id", *query.ParentMovementID)
	}
	if query.DestLocationID != nil {
		conditions.AddCondition("dest_location_id", *query.DestLocationID)
	}

	movements, err := h.Service.ListMovements(conditions)
	if err != nil {
		log.Println("Error executing SQL statement: ", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Unable to list movements", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, movements)
}

func (h *MovementsHandler) GetMovement(c *gin.Context) {
	movementID, err := strconv.Atoi(c.Param("id"))
	if err != nil || movementID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Movement ID is required"})
		return
	}

	movement, err := h.Service.GetMovement(movementID)
	if err != nil {
		if custom_error.IsOperatorError(err) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		log.Println("Error executing SQL statement: ", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Unable to get movement", "details": err.Error()})
		return
	}

	lines, err := h.Service.GetLines(movementID)
	if err != nil {
		log.Println("Error executing SQL statement: ", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Unable to get movement lines", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"movement": movement, "lines": lines})
}

type createMovementRequest struct {
	ProductID        int             `json:"product_id" binding:"required"`
	PlannedQty       decimal.Decimal `json:"planned_qty" binding:"required"`
	Unit             string          `json:"unit" binding:"required"`
	SourceLocationID int             `json:"source_location_id" binding:"required"`
	DestLocationID   int             `json:"dest_location_id" binding:"required"`
	SupplyKind       string          `json:"supply_kind"`
}

func (h *MovementsHandler) CreateMovement(c *gin.Context) {
	var req createMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		log.Println("Error binding JSON:", err)
		return
	}

	kind := metadata.SupplyParent
	if req.SupplyKind != "" {
		var err error
		kind, err = metadata.NewSupplyKind(req.SupplyKind)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	movementID, err := h.Service.CreateMovement(models.Movement{
		ProductID:        req.ProductID,
		PlannedQty:       req.PlannedQty,
		Unit:             req.Unit,
		SourceLocationID: req.SourceLocationID,
		DestLocationID:   req.DestLocationID,
		SupplyKind:       kind,
	})
	if err != nil {
		if custom_error.IsValidationError(err) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Println("Error creating movement: ", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Unable to create movement", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": movementID})
}

type movementLineRequest struct {
	ProductID        int             `json:"product_id" binding:"required"`
	SerializedUnitID *int            `json:"serialized_unit_id"`
	Quantity         decimal.Decimal `json:"quantity" binding:"required"`
}

func (h *MovementsHandler) AddLine(c *gin.Context) {
	movementID, err := strconv.Atoi(c.Param("id"))
	if err != nil || movementID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Movement ID is required"})
		return
	}

	var req movementLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		log.Println("Error binding JSON:", err)
		return
	}

	lineID, err := h.Service.AddLine(models.MovementLine{
		MovementID:       movementID,
		ProductID:        req.ProductID,
		SerializedUnitID: req.SerializedUnitID,
		Quantity:         req.Quantity,
	})
	if err != nil {
		switch {
		case custom_error.IsValidationError(err):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case custom_error.IsOperatorError(err):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			log.Println("Error adding movement line: ", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Unable to add movement line", "details": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": lineID})
}

type explodeRequest struct {
	SkipKinds []string `json:"skip_kinds"`
}

func (h *MovementsHandler) ExplodeMovement(c *gin.Context) {
	movementID, err := strconv.Atoi(c.Param("id"))
	if err != nil || movementID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Movement ID is required"})
		return
	}

	var req explodeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
			log.Println("Error binding JSON:", err)
			return
		}
	}

	opts := explosion.ExplosionOptions{}
	if len(req.SkipKinds) > 0 {
		opts.SkipKinds = make(map[metadata.RelationKind]bool)
		for _, raw := range req.SkipKinds {
			kind, err := metadata.NewRelationKind(raw)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			opts.SkipKinds[kind] = true
		}
	}

	children, err := h.Generator.ExplodeMovement(movementID, opts)
	if err != nil {
		switch {
		case custom_error.IsValidationError(err):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case custom_error.IsOperatorError(err):
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			log.Println("Error exploding movement: ", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Unable to explode movement", "details": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, children)
}

func (h *MovementsHandler) Consolidate(c *gin.Context) {
	movementID, err := strconv.Atoi(c.Param("id"))
	if err != nil || movementID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Movement ID is required"})
		return
	}

	removed, err := h.Service.Consolidate(movementID)
	if err != nil {
		if custom_error.IsOperatorError(err) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		log.Println("Error consolidating movement: ", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Unable to consolidate movement", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"lines_removed": removed})
}

func (h *MovementsHandler) transition(next metadata.MovementStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		movementID, err := strconv.Atoi(c.Param("id"))
		if err != nil || movementID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Movement ID is required"})
			return
		}

		if err := h.Service.Transition(movementID, next); err != nil {
			if custom_error.IsOperatorError(err) {
				c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			log.Println("Error transitioning movement: ", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Unable to update movement status", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": next})
	}
}

type commitTransferRequest struct {
	MovementIDs []int `json:"movement_ids" binding:"required"`
}

func (h *MovementsHandler) CommitTransfer(c *gin.Context) {
	var req commitTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		log.Println("Error binding JSON:", err)
		return
	}

	if len(req.MovementIDs) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Cannot commit empty transfer"})
		return
	}

	if err := h.Service.CommitTransfer(req.MovementIDs); err != nil {
		if custom_error.IsOperatorError(err) {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		log.Println("Error committing transfer: ", err)
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "Unable to commit transfer", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "committed"})
}
