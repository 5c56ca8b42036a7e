package relations

import (
	"log"
	"net/http"
	"strconv"

	"kitting/internal/catalog"
	"kitting/internal/repository"
	custom_error "kitting/pkg/errors"
	"kitting/pkg/metadata"
	"kitting/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type RelationsHandler struct {
	Service *RelationsService
}

func NewHandler(r *repository.Repository, cat catalog.Catalog) *RelationsHandler {
	relationsRepo := NewRepository(r)

	return &RelationsHandler{
		Service: NewRelationsService(relationsRepo, r, cat),
	}
}

func (h *RelationsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/products/:id/relations", h.GetBill)
	router.POST("/products/:id/relations", h.AddLine)
	router.PUT("/products/:id/relations/flags", h.SetFlags)
	router.DELETE("/relations/:line_id", h.RemoveLine)
}

func (h *RelationsHandler) GetBill(c *gin.Context) {
	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil || productID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product ID is required"})
		return
	}

	bill, err := h.Service.GetBill(productID)
	if err != nil {
		log.Println("Error executing SQL statement: ", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Unable to get bill of relations", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, bill)
}

type relationLineRequest struct {
	Kind            string          `json:"kind" binding:"required"`
	TargetProductID int             `json:"target_product_id" binding:"required"`
	QtyPerUnit      decimal.Decimal `json:"qty_per_unit" binding:"required"`
	Unit            string          `json:"unit" binding:"required"`
}

func (h *RelationsHandler) AddLine(c *gin.Context) {
	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil || productID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product ID is required"})
		return
	}

	var req relationLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		log.Println("Error binding JSON:", err)
		return
	}

	kind, err := metadata.NewRelationKind(req.Kind)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lineID, err := h.Service.AddLine(models.RelationLine{
		PrincipalID:     productID,
		Kind:            kind,
		TargetProductID: req.TargetProductID,
		QtyPerUnit:      req.QtyPerUnit,
		Unit:            req.Unit,
	})
	if err != nil {
		if custom_error.IsValidationError(err) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Println("Error adding relation line: ", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Unable to add relation line", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": lineID})
}

type billFlagsRequest struct {
	IsComposite        bool   `json:"is_composite"`
	UsePeripherals     bool   `json:"use_peripherals"`
	UseComplements     bool   `json:"use_complements"`
	AllocationPolicy   string `json:"cost_allocation_policy" binding:"required"`
	ParentValuation    string `json:"parent_valuation_policy" binding:"required"`
	ReceiveParentStock bool   `json:"receive_parent_stock"`
}

func (h *RelationsHandler) SetFlags(c *gin.Context) {
	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil || productID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product ID is required"})
		return
	}

	var req billFlagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		log.Println("Error binding JSON:", err)
		return
	}

	policy, err := metadata.NewAllocationPolicy(req.AllocationPolicy)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	valuation, err := metadata.NewParentValuation(req.ParentValuation)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = h.Service.SetBillFlags(models.BillOfRelations{
		ProductID:          productID,
		IsComposite:        req.IsComposite,
		UsePeripherals:     req.UsePeripherals,
		UseComplements:     req.UseComplements,
		AllocationPolicy:   policy,
		ParentValuation:    valuation,
		ReceiveParentStock: req.ReceiveParentStock,
	})
	if err != nil {
		if custom_error.IsValidationError(err) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Println("Error updating bill flags: ", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Unable to update bill flags", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (h *RelationsHandler) RemoveLine(c *gin.Context) {
	lineID, err := strconv.Atoi(c.Param("line_id"))
	if err != nil || lineID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Relation line ID is required"})
		return
	}

	if err := h.Service.RemoveLine(lineID); err != nil {
		log.Println("Error removing relation line: ", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Unable to remove relation line", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}
