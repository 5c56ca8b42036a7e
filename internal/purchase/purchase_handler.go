package purchase

import (
	"log"
	"net/http"
	"strconv"

	"kitting/internal/catalog"
	"kitting/internal/relations"
	"kitting/internal/repository"
	custom_error "kitting/pkg/errors"
	"kitting/pkg/metadata"
	"kitting/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type PurchaseHandler struct {
	BufferRepo *BufferRepository
	Service    *MergeService
}

func NewHandler(r *repository.Repository, cat catalog.Catalog) *PurchaseHandler {
	bufferRepo := NewRepository(r)
	billRepo := relations.NewRepository(r)

	return &PurchaseHandler{
		BufferRepo: bufferRepo,
		Service:    NewMergeService(bufferRepo, billRepo, r, cat),
	}
}

func (h *PurchaseHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/order-lines/:id/buffer", h.GetBuffer)
	router.POST("/order-lines/:id/buffer", h.CreateBuffer)
	router.POST("/order-lines/:id/confirm", h.ConfirmOrderLine)
}

func (h *PurchaseHandler) GetBuffer(c *gin.Context) {
	orderLineID, err := strconv.Atoi(c.Param("id"))
	if err != nil || orderLineID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order line ID is required"})
		return
	}

	buffer, err := h.BufferRepo.GetBuffer(orderLineID)
	if err != nil {
		if custom_error.IsOperatorError(err) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		log.Println("Error executing SQL statement: ", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Unable to get purchase buffer", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, buffer)
}

type bufferLineRequest struct {
	Kind            string          `json:"kind" binding:"required"`
	TargetProductID int             `json:"target_product_id" binding:"required"`
	Qty             decimal.Decimal `json:"qty" binding:"required"`
	Unit            string          `json:"unit" binding:"required"`
}

type createBufferRequest struct {
	ProductID int                 `json:"product_id" binding:"required"`
	Lines     []bufferLineRequest `json:"lines" binding:"required"`
}

func (h *PurchaseHandler) CreateBuffer(c *gin.Context) {
	orderLineID, err := strconv.Atoi(c.Param("id"))
	if err != nil || orderLineID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order line ID is required"})
		return
	}

	var req createBufferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		log.Println("Error binding JSON:", err)
		return
	}

	lines := make([]models.BufferLine, 0, len(req.Lines))
	for _, line := range req.Lines {
		kind, err := metadata.NewSupplyKind(line.Kind)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if kind == metadata.SupplyParent {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "parent is not a valid buffer line kind"})
			return
		}
		lines = append(lines, models.BufferLine{
			Kind:            kind,
			TargetProductID: line.TargetProductID,
			Qty:             line.Qty,
			Unit:            line.Unit,
		})
	}

	bufferID, err := h.BufferRepo.CreateBuffer(orderLineID, req.ProductID, lines)
	if err != nil {
		log.Println("Error creating purchase buffer: ", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Unable to create purchase buffer", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": bufferID})
}

func (h *PurchaseHandler) ConfirmOrderLine(c *gin.Context) {
	orderLineID, err := strconv.Atoi(c.Param("id"))
	if err != nil || orderLineID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order line ID is required"})
		return
	}

	if err := h.Service.ConfirmOrderLine(orderLineID); err != nil {
		switch {
		case custom_error.IsOperatorError(err):
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
		case custom_error.IsValidationError(err):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			log.Println("Error confirming order line: ", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Unable to confirm order line", "details": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "merged"})
}
