package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/feastly/feastly-backend/pkg/db/models"
	"github.com/feastly/feastly-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("gateway_order_id = ?", gatewayOrderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.Order, error) {
	query := r.db.WithContext(ctx).Preload("Items").Order("created_at DESC")
	if filter.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *filter.PaymentStatus)
	}
	if filter.FulfillmentStatus != nil {
		query = query.Where("fulfillment_status = ?", *filter.FulfillmentStatus)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) FindPendingBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("payment_status = ? AND created_at < ?", enums.PaymentStatusPending, cutoff).
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// MarkVerified flips the order to verified unless a confirmation already
// landed. Duplicate callbacks and webhook-first interleavings fall through
// with no rows affected.
func (r *repository) MarkVerified(ctx context.Context, id uuid.UUID, gatewayPaymentID string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND payment_status NOT IN ?", id, []enums.PaymentStatus{
			enums.PaymentStatusVerified,
			enums.PaymentStatusCompleted,
			enums.PaymentStatusRefundInitiated,
		}).
		Updates(map[string]any{
			"payment_status":     enums.PaymentStatusVerified,
			"gateway_payment_id": gatewayPaymentID,
			"verified_at":        at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// MarkCompleted records the authoritative webhook capture. It upgrades
// pending/verified/failed orders and always sets the webhook-received flag.
func (r *repository) MarkCompleted(ctx context.Context, id uuid.UUID, gatewayPaymentID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND payment_status IN ?", id, []enums.PaymentStatus{
			enums.PaymentStatusPending,
			enums.PaymentStatusVerified,
			enums.PaymentStatusFailed,
		}).
		Updates(map[string]any{
			"payment_status":     enums.PaymentStatusCompleted,
			"gateway_payment_id": gatewayPaymentID,
			"webhook_received":   true,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// MarkFailed records a failed capture but never demotes a confirmed order.
func (r *repository) MarkFailed(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", id, enums.PaymentStatusPending).
		Updates(map[string]any{
			"payment_status":   enums.PaymentStatusFailed,
			"webhook_received": true,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ExpirePending fails a stale pending payment without claiming a gateway
// webhook arrived. Used by the scheduled expiry sweep.
func (r *repository) ExpirePending(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", id, enums.PaymentStatusPending).
		Update("payment_status", enums.PaymentStatusFailed)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// MarkRefundInitiated moves a confirmed order into the refund pipeline when an
// admin cancels it after payment.
func (r *repository) MarkRefundInitiated(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND payment_status IN ?", id, []enums.PaymentStatus{
			enums.PaymentStatusVerified,
			enums.PaymentStatusCompleted,
		}).
		Update("payment_status", enums.PaymentStatusRefundInitiated)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// MarkCouponRedeemed flips the per-order redemption marker. The first caller
// wins; every retry and the opposite confirmation path see zero rows.
func (r *repository) MarkCouponRedeemed(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND coupon_redeemed = ?", id, false).
		Update("coupon_redeemed", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// UpdateFulfillment performs a compare-and-swap on the fulfillment column so
// concurrent admin updates cannot double-apply a transition.
func (r *repository) UpdateFulfillment(ctx context.Context, id uuid.UUID, from, to enums.FulfillmentStatus, canceledAt *time.Time) (bool, error) {
	updates := map[string]any{"fulfillment_status": to}
	if canceledAt != nil {
		updates["canceled_at"] = *canceledAt
	}
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND fulfillment_status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
