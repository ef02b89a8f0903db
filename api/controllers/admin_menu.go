package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/feastly/feastly-backend/api/responses"
	"github.com/feastly/feastly-backend/api/validators"
	menusvc "github.com/feastly/feastly-backend/internal/menu"
	"github.com/feastly/feastly-backend/pkg/db/models"
	pkgerrors "github.com/feastly/feastly-backend/pkg/errors"
	"github.com/feastly/feastly-backend/pkg/logger"
	"github.com/feastly/feastly-backend/pkg/types"
)

type menuItemRequest struct {
	Name            string            `json:"name" validate:"required,min=2,max=160"`
	Description     string            `json:"description" validate:"max=2000"`
	Category        string            `json:"category" validate:"required,min=2,max=80"`
	Price           int               `json:"price" validate:"required,min=1"`
	DiscountedPrice *int              `json:"discounted_price,omitempty" validate:"omitempty,min=0"`
	ImageURL        *string           `json:"image_url,omitempty" validate:"omitempty,url"`
	Sizes           []itemOptionInput `json:"sizes,omitempty" validate:"omitempty,dive"`
	Extras          []itemOptionInput `json:"extras,omitempty" validate:"omitempty,dive"`
	Available       *bool             `json:"available,omitempty"`
}

type itemOptionInput struct {
	Name       string `json:"name" validate:"required,min=1,max=80"`
	PriceDelta int    `json:"price_delta"`
}

func (req menuItemRequest) toModel() *models.MenuItem {
	item := &models.MenuItem{
		Name:            req.Name,
		Description:     req.Description,
		Category:        req.Category,
		Price:           req.Price,
		DiscountedPrice: req.DiscountedPrice,
		ImageURL:        req.ImageURL,
		Sizes:           toItemOptions(req.Sizes),
		Extras:          toItemOptions(req.Extras),
		Available:       true,
	}
	if req.Available != nil {
		item.Available = *req.Available
	}
	return item
}

func toItemOptions(inputs []itemOptionInput) types.ItemOptions {
	if len(inputs) == 0 {
		return nil
	}
	options := make(types.ItemOptions, 0, len(inputs))
	for _, input := range inputs {
		options = append(options, types.ItemOption{Name: input.Name, PriceDelta: input.PriceDelta})
	}
	return options
}

// AdminMenuList returns every menu item, unavailable ones included.
func AdminMenuList(svc *menusvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListAll(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// AdminMenuCreate adds a dish to the menu.
func AdminMenuCreate(svc *menusvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload menuItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Create(r.Context(), payload.toModel())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

// AdminMenuUpdate replaces a dish's attributes.
func AdminMenuUpdate(svc *menusvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "itemId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item id"))
			return
		}

		var payload menuItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Update(r.Context(), id, payload.toModel())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

type availabilityRequest struct {
	Available bool `json:"available"`
}

// AdminMenuSetAvailability toggles a dish on or off the storefront.
func AdminMenuSetAvailability(svc *menusvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "itemId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item id"))
			return
		}

		var payload availabilityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SetAvailable(r.Context(), id, payload.Available); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"available": payload.Available})
	}
}

// AdminMenuDelete removes a dish. Past orders keep their line-item snapshots.
func AdminMenuDelete(svc *menusvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "itemId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item id"))
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
