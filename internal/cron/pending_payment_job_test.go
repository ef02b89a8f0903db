package cron

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/feastly/feastly-backend/internal/orders"
	"github.com/feastly/feastly-backend/pkg/db/models"
	"github.com/feastly/feastly-backend/pkg/enums"
	"github.com/feastly/feastly-backend/pkg/logger"
)

func setupJobFixture(t *testing.T) (Job, orders.Repository, *gorm.DB) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&models.Order{}, &models.OrderLineItem{}))

	repo := orders.NewRepository(gdb)
	job, err := NewPendingPaymentJob(PendingPaymentJobParams{
		Logger: logger.New(logger.Options{ServiceName: "cron-test", Output: io.Discard}),
		Orders: repo,
		TTL:    24 * time.Hour,
	})
	require.NoError(t, err)
	return job, repo, gdb
}

func seedPendingOrder(t *testing.T, repo orders.Repository, gdb *gorm.DB, gatewayOrderID string, age time.Duration) *models.Order {
	t.Helper()

	order := &models.Order{
		GatewayOrderID:    gatewayOrderID,
		BuyerName:         "Asha Rao",
		BuyerEmail:        "asha@example.com",
		DeliveryAddress:   "14 Lake View Road",
		Subtotal:          380,
		Tax:               19,
		DeliveryFee:       50,
		Total:             449,
		IntegrityToken:    "token",
		PaymentStatus:     enums.PaymentStatusPending,
		FulfillmentStatus: enums.FulfillmentStatusPlaced,
	}
	created, err := repo.Create(context.Background(), order)
	require.NoError(t, err)

	backdated := time.Now().UTC().Add(-age)
	require.NoError(t, gdb.Model(&models.Order{}).
		Where("id = ?", created.ID).
		Update("created_at", backdated).Error)
	return created
}

func TestPendingPaymentJobExpiresStaleOrders(t *testing.T) {
	job, repo, gdb := setupJobFixture(t)
	ctx := context.Background()

	stale := seedPendingOrder(t, repo, gdb, "order_stale", 48*time.Hour)
	fresh := seedPendingOrder(t, repo, gdb, "order_fresh", time.Hour)

	require.NoError(t, job.Run(ctx))

	expired, err := repo.FindByID(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusFailed, expired.PaymentStatus)
	assert.Equal(t, enums.FulfillmentStatusCanceled, expired.FulfillmentStatus)
	require.NotNil(t, expired.CanceledAt)
	assert.False(t, expired.WebhookReceived)

	untouched, err := repo.FindByID(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusPending, untouched.PaymentStatus)
	assert.Equal(t, enums.FulfillmentStatusPlaced, untouched.FulfillmentStatus)
}

func TestPendingPaymentJobLeavesPaidOrdersAlone(t *testing.T) {
	job, repo, gdb := setupJobFixture(t)
	ctx := context.Background()

	paid := seedPendingOrder(t, repo, gdb, "order_paid", 48*time.Hour)
	applied, err := repo.MarkCompleted(ctx, paid.ID, "pay_123")
	require.NoError(t, err)
	require.True(t, applied)

	require.NoError(t, job.Run(ctx))

	reloaded, err := repo.FindByID(ctx, paid.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusCompleted, reloaded.PaymentStatus)
	assert.Equal(t, enums.FulfillmentStatusPlaced, reloaded.FulfillmentStatus)
	assert.Nil(t, reloaded.CanceledAt)
}

func TestPendingPaymentJobIsIdempotent(t *testing.T) {
	job, repo, gdb := setupJobFixture(t)
	ctx := context.Background()

	stale := seedPendingOrder(t, repo, gdb, "order_stale", 48*time.Hour)

	require.NoError(t, job.Run(ctx))
	require.NoError(t, job.Run(ctx))

	expired, err := repo.FindByID(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusFailed, expired.PaymentStatus)
	assert.Equal(t, enums.FulfillmentStatusCanceled, expired.FulfillmentStatus)
}
