package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/feastly/feastly-backend/pkg/db/models"
	"github.com/feastly/feastly-backend/pkg/enums"
)

// ListFilter narrows admin order listings.
type ListFilter struct {
	PaymentStatus     *enums.PaymentStatus
	FulfillmentStatus *enums.FulfillmentStatus
	Limit             int
	Offset            int
}

// Repository persists orders and performs the conditional single-row updates
// the confirmation flow relies on. Every Mark* method reports whether the
// guarded update actually landed.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	List(ctx context.Context, filter ListFilter) ([]models.Order, error)
	FindPendingBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error)

	MarkVerified(ctx context.Context, id uuid.UUID, gatewayPaymentID string, at time.Time) (bool, error)
	MarkCompleted(ctx context.Context, id uuid.UUID, gatewayPaymentID string) (bool, error)
	MarkFailed(ctx context.Context, id uuid.UUID) (bool, error)
	ExpirePending(ctx context.Context, id uuid.UUID) (bool, error)
	MarkRefundInitiated(ctx context.Context, id uuid.UUID) (bool, error)
	MarkCouponRedeemed(ctx context.Context, id uuid.UUID) (bool, error)
	UpdateFulfillment(ctx context.Context, id uuid.UUID, from, to enums.FulfillmentStatus, canceledAt *time.Time) (bool, error)
}
