package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"carteira/internal/core"
	"carteira/internal/log"
	"carteira/internal/ports"
)

type CategoryPatch struct {
	Name  *string
	Color *string
}

type CategoryService struct {
	store  ports.CategoryStore
	cache  Invalidator
	logger *log.Logger
}

func NewCategoryService(store ports.CategoryStore, cache Invalidator, logger *log.Logger) *CategoryService {
	if logger == nil {
		logger = log.Discard()
	}
	return &CategoryService{store: store, cache: cache, logger: logger.WithComponent(log.ComponentCategory)}
}

func (s *CategoryService) List(ctx context.Context, householdID string) ([]core.Category, error) {
	cs, err := s.store.ListCategories(ctx, householdID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cs, nil
}

func (s *CategoryService) Create(ctx context.Context, householdID, name string, kind core.TransactionKind, color string) (core.Category, error) {
	c := core.Category{
		ID:          uuid.NewString(),
		HouseholdID: householdID,
		Name:        strings.TrimSpace(name),
		Kind:        kind,
		Color:       color,
	}
	if c.Color == "" {
		c.Color = core.DefaultColor
	}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	s.logger.InfoContext(ctx, "Created category",
		log.FieldOperation, log.OpCreate,
		log.FieldHouseholdID, householdID,
		log.FieldEntityID, c.ID)
	return c, nil
}

// Update renames or recolours a category. Its kind is fixed.
func (s *CategoryService) Update(ctx context.Context, householdID, id string, patch CategoryPatch) (core.Category, error) {
	c, err := s.store.GetCategory(ctx, householdID, id)
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	if patch.Name != nil {
		c.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Color != nil {
		c.Color = *patch.Color
	}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	if err := s.store.UpdateCategory(ctx, c); err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	s.invalidate(householdID)
	return c, nil
}

// Delete keeps the category's transactions, uncategorised.
func (s *CategoryService) Delete(ctx context.Context, householdID, id string) error {
	if err := s.store.DeleteCategory(ctx, householdID, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	s.invalidate(householdID)
	s.logger.InfoContext(ctx, "Deleted category",
		log.FieldOperation, log.OpDelete,
		log.FieldHouseholdID, householdID,
		log.FieldEntityID, id)
	return nil
}

func (s *CategoryService) invalidate(householdID string) {
	if s.cache != nil {
		s.cache.Invalidate(householdID)
	}
}
