package explosion

import (
	"log"
	"net/http"
	"strconv"

	"kitting/internal/catalog"
	"kitting/internal/relations"
	"kitting/internal/repository"
	custom_error "kitting/pkg/errors"
	"kitting/pkg/metadata"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type ExplosionHandler struct {
	engine    *Engine
	allocator *Allocator
	billRepo  *relations.RelationsRepository
}

func NewHandler(r *repository.Repository, cat catalog.Catalog) *ExplosionHandler {
	return &ExplosionHandler{
		engine:    NewEngine(cat),
		allocator: NewAllocator(),
		billRepo:  relations.NewRepository(r),
	}
}

func (h *ExplosionHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/products/:id/explode", h.Explode)
}

type explodeRequest struct {
	Qty       decimal.Decimal  `json:"qty" binding:"required"`
	Unit      string           `json:"unit" binding:"required"`
	Price     *decimal.Decimal `json:"price"`
	SkipKinds []string         `json:"skip_kinds"`
}

// Explode previews the exploded set for a quantity of the principal
// product, with cost allocation when a received price is given.
func (h *ExplosionHandler) Explode(c *gin.Context) {
	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil || productID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product ID is required"})
		return
	}

	var req explodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		log.Println("Error binding JSON:", err)
		return
	}

	if !req.Qty.IsPositive() {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Quantity must be positive"})
		return
	}

	opts := ExplosionOptions{}
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

	bill, err := h.billRepo.GetBill(productID)
	if err != nil {
		log.Println("Error executing SQL statement: ", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Unable to load bill of relations", "details": err.Error()})
		return
	}

	items, err := h.engine.Explode(bill, req.Qty, req.Unit, opts)
	if err != nil {
		if custom_error.IsValidationError(err) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Println("Error exploding product: ", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Unable to explode product", "details": err.Error()})
		return
	}

	if req.Price == nil {
		c.JSON(http.StatusOK, gin.H{"items": items})
		return
	}

	allocation := h.allocator.Allocate(*req.Price, items, bill)
	c.JSON(http.StatusOK, gin.H{"items": items, "allocation": allocation})
}
