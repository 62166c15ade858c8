package handler

import (
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/jon4hz/recipebox/internal/api/models"
	"github.com/jon4hz/recipebox/internal/database"
	"github.com/samber/lo"
)

// MaxNameLength is the longest resource name accepted.
const MaxNameLength = 255

// ResourceHandler serves the list and create endpoints of one resource type.
// T is the stored record and R its API shape.
type ResourceHandler[T any, R any] struct {
	store     database.ResourceStore[T]
	serialize func(T) R
}

// NewResourceHandler creates a handler over store.
func NewResourceHandler[T any, R any](store database.ResourceStore[T], serialize func(T) R) *ResourceHandler[T, R] {
	return &ResourceHandler[T, R]{
		store:     store,
		serialize: serialize,
	}
}

// NewTagHandler serves /api/recipe/tags/.
func NewTagHandler(db database.DB) *ResourceHandler[database.Tag, models.Tag] {
	return NewResourceHandler(db.Tags(), models.ToTag)
}

// NewIngredientHandler serves /api/recipe/ingredients/.
func NewIngredientHandler(db database.DB) *ResourceHandler[database.Ingredient, models.Ingredient] {
	return NewResourceHandler(db.Ingredients(), models.ToIngredient)
}

type resourceRequest struct {
	Name string `json:"name" form:"name"`
}

// List returns the caller's records.
func (h *ResourceHandler[T, R]) List(c *gin.Context) {
	items, err := h.store.ListByOwner(c.Request.Context(), currentUserID(c))
	if err != nil {
		internalError(c, "failed to list resources", err)
		return
	}

	c.JSON(http.StatusOK, lo.Map(items, func(item T, _ int) R { return h.serialize(item) }))
}

// Create stores a new record owned by the caller.
func (h *ResourceHandler[T, R]) Create(c *gin.Context) {
	var req resourceRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	name, err := cleanName(req.Name)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "name"})
		return
	}

	item, err := h.store.Create(c.Request.Context(), currentUserID(c), name)
	if err != nil {
		internalError(c, "failed to create resource", err)
		return
	}
	c.JSON(http.StatusCreated, h.serialize(*item))
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("this field may not be blank")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", fmt.Errorf("ensure this field has no more than %d characters", MaxNameLength)
	}
	return name, nil
}
