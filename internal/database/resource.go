package database

import (
	"context"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

// Resource is the shared shape of every user-owned, named record.
type Resource struct {
	gorm.Model
	Name   string `gorm:"size:255;not null"`
	UserID uint   `gorm:"index;not null"`
}

// Assign sets the owner and name of the record.
func (r *Resource) Assign(userID uint, name string) {
	r.UserID = userID
	r.Name = name
}

// Base returns the embedded resource fields.
func (r *Resource) Base() *Resource {
	return r
}

// Tag is a user-owned label for recipes.
type Tag struct {
	Resource
}

// Ingredient is a user-owned recipe ingredient.
type Ingredient struct {
	Resource
}

// Ownable is satisfied by a pointer to any record embedding Resource.
type Ownable[T any] interface {
	*T
	Assign(userID uint, name string)
	Base() *Resource
}

// ResourceStore lists and creates records of a single resource type.
type ResourceStore[T any] interface {
	// ListByOwner returns the records owned by userID, ordered by name descending.
	ListByOwner(ctx context.Context, userID uint) ([]T, error)
	// ListAll returns every record, ordered by name descending.
	ListAll(ctx context.Context) ([]T, error)
	// Create stores a new record owned by userID.
	Create(ctx context.Context, userID uint, name string) (*T, error)
}

// GormResourceStore is the gorm backed ResourceStore.
type GormResourceStore[T any, P Ownable[T]] struct {
	db *gorm.DB
}

var (
	_ ResourceStore[Tag]        = (*GormResourceStore[Tag, *Tag])(nil)
	_ ResourceStore[Ingredient] = (*GormResourceStore[Ingredient, *Ingredient])(nil)
)

// NewResourceStore creates a store for the table backing T.
func NewResourceStore[T any, P Ownable[T]](db *gorm.DB) *GormResourceStore[T, P] {
	return &GormResourceStore[T, P]{db: db}
}

func (s *GormResourceStore[T, P]) ListByOwner(ctx context.Context, userID uint) ([]T, error) {
	items := make([]T, 0)
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&items).Error; err != nil {
		log.Error("failed to list resources", "user_id", userID, "error", err)
		return nil, err
	}
	SortByNameDesc[T, P](items)
	return items, nil
}

func (s *GormResourceStore[T, P]) ListAll(ctx context.Context) ([]T, error) {
	items := make([]T, 0)
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&items).Error; err != nil {
		log.Error("failed to list resources", "error", err)
		return nil, err
	}
	SortByNameDesc[T, P](items)
	return items, nil
}

func (s *GormResourceStore[T, P]) Create(ctx context.Context, userID uint, name string) (*T, error) {
	item := new(T)
	P(item).Assign(userID, name)
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		err = translateError(err)
		log.Error("failed to create resource", "user_id", userID, "error", err)
		return nil, err
	}
	return item, nil
}

// SortByNameDesc orders items by name, descending, comparing bytes. Equal
// names keep their relative order.
func SortByNameDesc[T any, P Ownable[T]](items []T) {
	slices.SortStableFunc(items, func(a, b T) int {
		return strings.Compare(P(&b).Base().Name, P(&a).Base().Name)
	})
}
