package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/feastly/feastly-backend/pkg/errors"
	"github.com/feastly/feastly-backend/pkg/db/models"
	"github.com/feastly/feastly-backend/pkg/enums"
	"github.com/feastly/feastly-backend/pkg/logger"
)

// Service exposes order queries and the fulfillment state machine.
type Service struct {
	repo Repository
	logg *logger.Logger
}

// NewService wires the orders service.
func NewService(repo Repository, logg *logger.Logger) *Service {
	return &Service{repo: repo, logg: logg}
}

// GetByID loads an order with its line items.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	return order, nil
}

// GetForUser loads an order only when it belongs to the given user. Orders of
// other users surface as not-found rather than forbidden.
func (s *Service) GetForUser(ctx context.Context, id, userID uuid.UUID) (*models.Order, error) {
	order, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID == nil || *order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

// ListForUser returns the user's order history, newest first.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders")
	}
	return orders, nil
}

// List returns orders for the admin back-office.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]models.Order, error) {
	orders, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders")
	}
	return orders, nil
}

// UpdateFulfillment moves an order to the target fulfillment status. The
// transition is validated against the state machine and applied with a
// compare-and-swap, so a concurrent update surfaces as a state conflict.
func (s *Service) UpdateFulfillment(ctx context.Context, id uuid.UUID, target enums.FulfillmentStatus) (*models.Order, error) {
	if !target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid fulfillment status %q", target))
	}

	order, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !CanTransition(order.FulfillmentStatus, target) {
		return nil, pkgerrors.New(
			pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move fulfillment from %s to %s", order.FulfillmentStatus, target),
		)
	}

	var canceledAt *time.Time
	if target == enums.FulfillmentStatusCanceled {
		now := time.Now().UTC()
		canceledAt = &now
	}

	ok, err := s.repo.UpdateFulfillment(ctx, id, order.FulfillmentStatus, target, canceledAt)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating fulfillment")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order fulfillment changed concurrently")
	}

	ctx = s.logg.WithOrderID(ctx, id.String())
	ctx = s.logg.WithFields(ctx, map[string]any{"from": order.FulfillmentStatus, "to": target})
	s.logg.Info(ctx, "fulfillment transition applied")

	if target == enums.FulfillmentStatusCanceled && order.PaymentStatus.IsConfirmed() {
		refunding, err := s.repo.MarkRefundInitiated(ctx, id)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marking refund initiated")
		}
		if refunding {
			s.logg.Warn(ctx, "paid order canceled, refund initiated")
		}
	}

	return s.GetByID(ctx, id)
}
