package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/feastly/feastly-backend/api/responses"
	"github.com/feastly/feastly-backend/api/validators"
	couponsvc "github.com/feastly/feastly-backend/internal/coupons"
	"github.com/feastly/feastly-backend/pkg/db/models"
	"github.com/feastly/feastly-backend/pkg/enums"
	pkgerrors "github.com/feastly/feastly-backend/pkg/errors"
	"github.com/feastly/feastly-backend/pkg/logger"
)

type couponRequest struct {
	Code         string     `json:"code" validate:"required,min=3,max=40"`
	DiscountType string     `json:"discount_type" validate:"required"`
	Value        int        `json:"value" validate:"required,min=1"`
	MinOrder     *int       `json:"min_order,omitempty" validate:"omitempty,min=1"`
	MaxDiscount  *int       `json:"max_discount,omitempty" validate:"omitempty,min=1"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	UsageLimit   *int       `json:"usage_limit,omitempty" validate:"omitempty,min=1"`
	Active       *bool      `json:"active,omitempty"`
}

func (req couponRequest) toModel() (*models.Coupon, error) {
	discountType, err := enums.ParseDiscountType(strings.TrimSpace(req.DiscountType))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid discount type")
	}
	coupon := &models.Coupon{
		Code:         couponsvc.NormalizeCode(req.Code),
		DiscountType: discountType,
		Value:        req.Value,
		MinOrder:     req.MinOrder,
		MaxDiscount:  req.MaxDiscount,
		ExpiresAt:    req.ExpiresAt,
		UsageLimit:   req.UsageLimit,
		Active:       true,
	}
	if req.Active != nil {
		coupon.Active = *req.Active
	}
	return coupon, nil
}

// AdminCouponList returns every coupon with its usage counters.
func AdminCouponList(svc *couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		coupons, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, coupons)
	}
}

// AdminCouponCreate defines a new discount code.
func AdminCouponCreate(svc *couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload couponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		coupon, err := payload.toModel()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), coupon)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// AdminCouponUpdate replaces a coupon's definition. Usage counters survive.
func AdminCouponUpdate(svc *couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "couponId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid coupon id"))
			return
		}

		var payload couponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		coupon, err := payload.toModel()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Update(r.Context(), id, coupon)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

type couponActiveRequest struct {
	Active bool `json:"active"`
}

// AdminCouponSetActive toggles a coupon without losing its counters.
func AdminCouponSetActive(svc *couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "couponId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid coupon id"))
			return
		}

		var payload couponActiveRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SetActive(r.Context(), id, payload.Active); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"active": payload.Active})
	}
}

// AdminCouponDelete removes a coupon outright.
func AdminCouponDelete(svc *couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "couponId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid coupon id"))
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
