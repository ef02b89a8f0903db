package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/feastly/feastly-backend/internal/orders"
	"github.com/feastly/feastly-backend/pkg/db/models"
	"github.com/feastly/feastly-backend/pkg/enums"
	"github.com/feastly/feastly-backend/pkg/logger"
)

const defaultPendingPaymentTTL = 24 * time.Hour

// PendingPaymentJobParams configure the stale-payment sweep.
type PendingPaymentJobParams struct {
	Logger *logger.Logger
	Orders orders.Repository
	TTL    time.Duration
}

// NewPendingPaymentJob builds the job that expires orders whose payment never
// arrived. An order sitting in payment pending past the TTL is failed and its
// fulfillment canceled; anything already confirmed or terminal is left alone.
func NewPendingPaymentJob(params PendingPaymentJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = defaultPendingPaymentTTL
	}
	return &pendingPaymentJob{
		logg:   params.Logger,
		orders: params.Orders,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

type pendingPaymentJob struct {
	logg   *logger.Logger
	orders orders.Repository
	ttl    time.Duration
	now    func() time.Time
}

func (j *pendingPaymentJob) Name() string { return "pending-payment-expiry" }

func (j *pendingPaymentJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.ttl)
	stale, err := j.orders.FindPendingBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("query stale pending orders: %w", err)
	}

	var errs []error
	expired := 0
	for _, order := range stale {
		ok, err := j.expireOrder(ctx, order)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			expired++
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{"candidates": len(stale), "expired": expired})
	j.logg.Info(logCtx, "pending payment sweep complete")
	return multierr.Combine(errs...)
}

func (j *pendingPaymentJob) expireOrder(ctx context.Context, order models.Order) (bool, error) {
	// The guarded update is the authority: a payment confirmed between the
	// query and this call leaves zero rows affected and the order untouched.
	failed, err := j.orders.ExpirePending(ctx, order.ID)
	if err != nil {
		return false, fmt.Errorf("expire order %s: %w", order.ID, err)
	}
	if !failed {
		return false, nil
	}

	canceledAt := j.now().UTC()
	if _, err := j.orders.UpdateFulfillment(ctx, order.ID, order.FulfillmentStatus, enums.FulfillmentStatusCanceled, &canceledAt); err != nil {
		return false, fmt.Errorf("cancel fulfillment for order %s: %w", order.ID, err)
	}

	j.logg.Info(j.logg.WithOrderID(ctx, order.ID.String()), "pending order expired")
	return true, nil
}
