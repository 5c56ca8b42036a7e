package linkage

import (
	"log"
	"net/http"
	"strconv"

	"kitting/internal/repository"
	"kitting/pkg/auditlog"
	custom_error "kitting/pkg/errors"
	"kitting/pkg/metadata"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type LinkageHandler struct {
	Service *LinkageService
}

func NewHandler(r *repository.Repository, auditLog *auditlog.Auditlog, logger *zap.Logger) *LinkageHandler {
	linkageRepo := NewRepository(r)

	return &LinkageHandler{
		Service: NewLinkageService(linkageRepo, r, auditLog, logger),
	}
}

func (h *LinkageHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/units/:id/candidates/:product_id", h.GetCandidatePool)
	router.GET("/units/:id/links", h.GetLinks)
	router.GET("/units/:id/summary", h.GetLinkedSummary)
	router.POST("/units/:id/links", h.Link)
	router.POST("/units/:id/links/auto", h.LinkNextCandidate)
	router.POST("/mesh", h.FullMesh)
	router.DELETE("/links/:line_id", h.Unlink)
}

func (h *LinkageHandler) GetCandidatePool(c *gin.Context) {
	principalID, err := strconv.Atoi(c.Param("id"))
	if err != nil || principalID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unit ID is required"})
		return
	}
	productID, err := strconv.Atoi(c.Param("product_id"))
	if err != nil || productID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product ID is required"})
		return
	}

	pool, err := h.Service.CandidatePool(principalID, productID)
	if err != nil {
		if custom_error.IsOperatorError(err) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		log.Println("Error executing SQL statement: ", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Unable to get candidate pool", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, pool)
}

func (h *LinkageHandler) GetLinks(c *gin.Context) {
	principalID, err := strconv.Atoi(c.Param("id"))
	if err != nil || principalID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unit ID is required"})
		return
	}

	lines, err := h.Service.Lines(principalID)
	if err != nil {
		log.Println("Error executing SQL statement: ", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Unable to get supply lines", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, lines)
}

func (h *LinkageHandler) GetLinkedSummary(c *gin.Context) {
	principalID, err := strconv.Atoi(c.Param("id"))
	if err != nil || principalID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unit ID is required"})
		return
	}

	c.JSON(http.StatusOK, h.Service.LinkedSummary(principalID))
}

type linkRequest struct {
	RelatedUnitID int             `json:"related_unit_id" binding:"required"`
	Kind          string          `json:"kind" binding:"required"`
	Qty           decimal.Decimal `json:"qty"`
	Unit          string          `json:"unit"`
}

func (h *LinkageHandler) Link(c *gin.Context) {
	principalID, err := strconv.Atoi(c.Param("id"))
	if err != nil || principalID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unit ID is required"})
		return
	}

	var req linkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		log.Println("Error binding JSON:", err)
		return
	}

	kind, err := metadata.NewSupplyKind(req.Kind)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	qty := req.Qty
	if qty.IsZero() {
		qty = decimal.NewFromInt(1)
	}

	line, err := h.Service.Link(principalID, req.RelatedUnitID, kind, qty, req.Unit)
	if err != nil {
		switch {
		case custom_error.IsDuplicateAssignment(err):
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "duplicate_assignment", "retryable": true})
		case custom_error.IsValidationError(err):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case custom_error.IsOperatorError(err):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			log.Println("Error linking units: ", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Unable to link units", "details": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, line)
}

type autoLinkRequest struct {
	TargetProductID int    `json:"target_product_id" binding:"required"`
	Kind            string `json:"kind" binding:"required"`
}

func (h *LinkageHandler) LinkNextCandidate(c *gin.Context) {
	principalID, err := strconv.Atoi(c.Param("id"))
	if err != nil || principalID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unit ID is required"})
		return
	}

	var req autoLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		log.Println("Error binding JSON:", err)
		return
	}

	kind, err := metadata.NewSupplyKind(req.Kind)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	line, err := h.Service.LinkNextCandidate(principalID, req.TargetProductID, kind)
	if err != nil {
		switch {
		case custom_error.IsOperatorError(err):
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
		case custom_error.IsValidationError(err):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			log.Println("Error auto-linking: ", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Unable to auto-link", "details": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, line)
}

type meshRequest struct {
	UnitIDs []int  `json:"unit_ids"`
	Serial  string `json:"serial"`
}

func (h *LinkageHandler) FullMesh(c *gin.Context) {
	var req meshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		log.Println("Error binding JSON:", err)
		return
	}

	var err error
	var created interface{}
	switch {
	case len(req.UnitIDs) > 0:
		created, err = h.Service.FullMesh(req.UnitIDs)
	case req.Serial != "":
		created, err = h.Service.MeshBySerial(req.Serial)
	default:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Either unit_ids or serial is required"})
		return
	}

	if err != nil {
		switch {
		case custom_error.IsValidationError(err):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case custom_error.IsOperatorError(err):
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			log.Println("Error building full mesh: ", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Unable to build full mesh", "details": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *LinkageHandler) Unlink(c *gin.Context) {
	lineID, err := strconv.Atoi(c.Param("line_id"))
	if err != nil || lineID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Supply line ID is required"})
		return
	}

	if err := h.Service.Unlink(lineID); err != nil {
		if custom_error.IsOperatorError(err) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		log.Println("Error unlinking: ", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Unable to unlink", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "unlinked"})
}
