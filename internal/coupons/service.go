package coupons

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/feastly/feastly-backend/pkg/db/models"
	"github.com/feastly/feastly-backend/pkg/enums"
	pkgerrors "github.com/feastly/feastly-backend/pkg/errors"
	"github.com/feastly/feastly-backend/pkg/logger"
)

// redemptionMarker is the slice of the orders repository the redeem flow
// needs: the conditional per-order marker flip.
type redemptionMarker interface {
	MarkCouponRedeemed(ctx context.Context, orderID uuid.UUID) (bool, error)
}

// Service validates, redeems, and administers coupons.
type Service struct {
	repo   Repository
	marker redemptionMarker
	logg   *logger.Logger
}

// NewService wires the coupons service.
func NewService(repo Repository, marker redemptionMarker, logg *logger.Logger) *Service {
	return &Service{repo: repo, marker: marker, logg: logg}
}

// NormalizeCode upper-cases and trims a client-submitted coupon code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate checks a coupon against the subtotal and returns the capped
// discount. Checks run in a fixed order and the first failure wins. Validation
// never touches the usage counter.
func (s *Service) Validate(ctx context.Context, code string, subtotal int) (int, *models.Coupon, error) {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return 0, nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}

	coupon, err := s.repo.FindByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return 0, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading coupon")
	}

	if !coupon.Active {
		return 0, nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon is not active")
	}
	if coupon.ExpiresAt != nil && !coupon.ExpiresAt.After(time.Now().UTC()) {
		return 0, nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon has expired")
	}
	if coupon.UsageLimit != nil && coupon.UsageCount >= *coupon.UsageLimit {
		return 0, nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon usage limit reached")
	}
	if coupon.MinOrder != nil && subtotal < *coupon.MinOrder {
		return 0, nil, pkgerrors.New(
			pkgerrors.CodeValidation,
			fmt.Sprintf("order must be at least %d to use this coupon", *coupon.MinOrder),
		)
	}

	return Discount(coupon, subtotal), coupon, nil
}

// Discount computes the capped discount a coupon grants on the subtotal.
func Discount(coupon *models.Coupon, subtotal int) int {
	switch coupon.DiscountType {
	case enums.DiscountTypePercentage:
		discount := decimal.NewFromInt(int64(subtotal)).
			Mul(decimal.NewFromInt(int64(coupon.Value))).
			Div(decimal.NewFromInt(100)).
			Round(0)
		value := int(discount.IntPart())
		if coupon.MaxDiscount != nil && value > *coupon.MaxDiscount {
			value = *coupon.MaxDiscount
		}
		return value
	case enums.DiscountTypeFixed:
		if coupon.Value > subtotal {
			return subtotal
		}
		return coupon.Value
	default:
		return 0
	}
}

// Redeem counts a coupon use for a confirmed order, at most once. The order's
// redemption marker is flipped conditionally; only the winning flip increments
// the shared usage counter, so duplicate confirmations and the opposite
// confirmation path are no-ops.
func (s *Service) Redeem(ctx context.Context, orderID uuid.UUID, code string) error {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return nil
	}

	won, err := s.marker.MarkCouponRedeemed(ctx, orderID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marking coupon redemption")
	}
	if !won {
		return nil
	}

	if err := s.repo.IncrementUsage(ctx, normalized); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "incrementing coupon usage")
	}

	ctx = s.logg.WithOrderID(ctx, orderID.String())
	s.logg.Info(s.logg.WithField(ctx, "coupon", normalized), "coupon redeemed")
	return nil
}

// Create registers a new coupon definition.
func (s *Service) Create(ctx context.Context, coupon *models.Coupon) (*models.Coupon, error) {
	coupon.Code = NormalizeCode(coupon.Code)
	if err := validateDefinition(coupon); err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, coupon)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating coupon")
	}
	return created, nil
}

// Update replaces a coupon definition.
func (s *Service) Update(ctx context.Context, id uuid.UUID, updated *models.Coupon) (*models.Coupon, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.Code = NormalizeCode(updated.Code)
	existing.DiscountType = updated.DiscountType
	existing.Value = updated.Value
	existing.MinOrder = updated.MinOrder
	existing.MaxDiscount = updated.MaxDiscount
	existing.ExpiresAt = updated.ExpiresAt
	existing.UsageLimit = updated.UsageLimit
	existing.Active = updated.Active

	if err := validateDefinition(existing); err != nil {
		return nil, err
	}
	saved, err := s.repo.Update(ctx, existing)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating coupon")
	}
	return saved, nil
}

// SetActive toggles a coupon on or off.
func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	ok, err := s.repo.SetActive(ctx, id, active)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "toggling coupon")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
	}
	return nil
}

// GetByID loads a single coupon.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	coupon, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading coupon")
	}
	return coupon, nil
}

// List returns all coupons for the back-office.
func (s *Service) List(ctx context.Context) ([]models.Coupon, error) {
	coupons, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing coupons")
	}
	return coupons, nil
}

// Delete removes a coupon definition.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting coupon")
	}
	return nil
}

func validateDefinition(coupon *models.Coupon) error {
	if coupon.Code == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}
	if !coupon.DiscountType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid discount type %q", coupon.DiscountType))
	}
	if coupon.Value <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "coupon value must be positive")
	}
	if coupon.DiscountType == enums.DiscountTypePercentage && coupon.Value > 100 {
		return pkgerrors.New(pkgerrors.CodeValidation, "percentage coupons cannot exceed 100")
	}
	if coupon.MinOrder != nil && *coupon.MinOrder < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "minimum order cannot be negative")
	}
	if coupon.MaxDiscount != nil && *coupon.MaxDiscount <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "maximum discount must be positive")
	}
	if coupon.UsageLimit != nil && *coupon.UsageLimit <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "usage limit must be positive")
	}
	return nil
}
