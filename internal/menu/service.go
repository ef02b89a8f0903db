package menu

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/feastly/feastly-backend/pkg/db/models"
	pkgerrors "github.com/feastly/feastly-backend/pkg/errors"
	"github.com/feastly/feastly-backend/pkg/logger"
)

// Service exposes the storefront catalog and its admin management surface.
type Service struct {
	repo Repository
	logg *logger.Logger
}

// NewService wires the menu service.
func NewService(repo Repository, logg *logger.Logger) *Service {
	return &Service{repo: repo, logg: logg}
}

// Browse lists items for the storefront; only available items are shown.
func (s *Service) Browse(ctx context.Context, category string) ([]models.MenuItem, error) {
	items, err := s.repo.List(ctx, ListFilter{Category: strings.TrimSpace(category), AvailableOnly: true})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing menu")
	}
	return items, nil
}

// ListAll returns the full catalog for the back-office, unavailable items included.
func (s *Service) ListAll(ctx context.Context) ([]models.MenuItem, error) {
	items, err := s.repo.List(ctx, ListFilter{})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing menu")
	}
	return items, nil
}

// GetByID loads a single menu item.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading menu item")
	}
	return item, nil
}

// Create adds a catalog entry.
func (s *Service) Create(ctx context.Context, item *models.MenuItem) (*models.MenuItem, error) {
	if err := validateItem(item); err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, item)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating menu item")
	}
	return created, nil
}

// Update replaces a catalog entry.
func (s *Service) Update(ctx context.Context, id uuid.UUID, updated *models.MenuItem) (*models.MenuItem, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.Name = updated.Name
	existing.Description = updated.Description
	existing.Category = updated.Category
	existing.Price = updated.Price
	existing.DiscountedPrice = updated.DiscountedPrice
	existing.ImageURL = updated.ImageURL
	existing.Sizes = updated.Sizes
	existing.Extras = updated.Extras
	existing.Available = updated.Available

	if err := validateItem(existing); err != nil {
		return nil, err
	}
	saved, err := s.repo.Update(ctx, existing)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating menu item")
	}
	return saved, nil
}

// SetAvailable toggles storefront visibility without editing the item.
func (s *Service) SetAvailable(ctx context.Context, id uuid.UUID, available bool) error {
	ok, err := s.repo.SetAvailable(ctx, id, available)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "toggling menu item")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
	}
	return nil
}

// Delete removes a catalog entry. Past orders keep their own line-item
// snapshots, so deletion does not disturb order history.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting menu item")
	}
	return nil
}

func validateItem(item *models.MenuItem) error {
	if strings.TrimSpace(item.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "menu item name is required")
	}
	if strings.TrimSpace(item.Category) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "menu item category is required")
	}
	if item.Price < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "menu item price cannot be negative")
	}
	if item.DiscountedPrice != nil && *item.DiscountedPrice < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "discounted price cannot be negative")
	}
	seen := map[string]bool{}
	for _, size := range item.Sizes {
		if strings.TrimSpace(size.Name) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "size name is required")
		}
		if seen[size.Name] {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("duplicate size %q", size.Name))
		}
		seen[size.Name] = true
	}
	seen = map[string]bool{}
	for _, extra := range item.Extras {
		if strings.TrimSpace(extra.Name) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "extra name is required")
		}
		if seen[extra.Name] {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("duplicate extra %q", extra.Name))
		}
		seen[extra.Name] = true
	}
	return nil
}
