package coupons

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/feastly/feastly-backend/pkg/db/models"
	"github.com/feastly/feastly-backend/pkg/enums"
	pkgerrors "github.com/feastly/feastly-backend/pkg/errors"
	"github.com/feastly/feastly-backend/pkg/logger"
)

type stubMarker struct {
	won   bool
	err   error
	calls int
}

func (s *stubMarker) MarkCouponRedeemed(context.Context, uuid.UUID) (bool, error) {
	s.calls++
	return s.won, s.err
}

func setupCouponsTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Coupon{}))
	return db
}

func testService(t *testing.T, marker *stubMarker) (*Service, Repository) {
	t.Helper()
	repo := NewRepository(setupCouponsTestDB(t))
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	return NewService(repo, marker, logg), repo
}

func intPtr(v int) *int { return &v }

func timePtr(v time.Time) *time.Time { return &v }

func seedCoupon(t *testing.T, repo Repository, coupon models.Coupon) *models.Coupon {
	t.Helper()
	created, err := repo.Create(context.Background(), &coupon)
	require.NoError(t, err)
	return created
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, code, appErr.Code())
}

func TestValidateChecksInOrder(t *testing.T) {
	svc, repo := testService(t, &stubMarker{})
	ctx := context.Background()

	_, _, err := svc.Validate(ctx, "NOPE", 500)
	requireCode(t, err, pkgerrors.CodeNotFound)

	seedCoupon(t, repo, models.Coupon{
		Code: "INACTIVE", DiscountType: enums.DiscountTypeFixed, Value: 50, Active: false,
	})
	_, _, err = svc.Validate(ctx, "INACTIVE", 500)
	requireCode(t, err, pkgerrors.CodeValidation)

	seedCoupon(t, repo, models.Coupon{
		Code: "EXPIRED", DiscountType: enums.DiscountTypeFixed, Value: 50, Active: true,
		ExpiresAt: timePtr(time.Now().UTC().Add(-time.Hour)),
	})
	_, _, err = svc.Validate(ctx, "EXPIRED", 500)
	requireCode(t, err, pkgerrors.CodeValidation)

	seedCoupon(t, repo, models.Coupon{
		Code: "SPENT", DiscountType: enums.DiscountTypeFixed, Value: 50, Active: true,
		UsageLimit: intPtr(3), UsageCount: 3,
	})
	_, _, err = svc.Validate(ctx, "SPENT", 500)
	requireCode(t, err, pkgerrors.CodeValidation)

	seedCoupon(t, repo, models.Coupon{
		Code: "BIGCART", DiscountType: enums.DiscountTypeFixed, Value: 50, Active: true,
		MinOrder: intPtr(600),
	})
	_, _, err = svc.Validate(ctx, "BIGCART", 500)
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestValidateNormalizesCode(t *testing.T) {
	svc, repo := testService(t, &stubMarker{})
	seedCoupon(t, repo, models.Coupon{
		Code: "SAVE10", DiscountType: enums.DiscountTypePercentage, Value: 10, Active: true,
	})

	discount, coupon, err := svc.Validate(context.Background(), "  save10 ", 500)
	require.NoError(t, err)
	assert.Equal(t, 50, discount)
	assert.Equal(t, "SAVE10", coupon.Code)
}

func TestDiscountPercentageCappedByMax(t *testing.T) {
	coupon := &models.Coupon{
		DiscountType: enums.DiscountTypePercentage,
		Value:        20,
		MaxDiscount:  intPtr(75),
	}
	assert.Equal(t, 60, Discount(coupon, 300))
	assert.Equal(t, 75, Discount(coupon, 1000))
}

func TestDiscountPercentageRounds(t *testing.T) {
	coupon := &models.Coupon{DiscountType: enums.DiscountTypePercentage, Value: 15}
	// 15% of 370 = 55.5 rounds up
	assert.Equal(t, 56, Discount(coupon, 370))
	// 15% of 369 = 55.35 rounds down
	assert.Equal(t, 55, Discount(coupon, 369))
}

func TestDiscountFixedCappedBySubtotal(t *testing.T) {
	coupon := &models.Coupon{DiscountType: enums.DiscountTypeFixed, Value: 100}
	assert.Equal(t, 100, Discount(coupon, 500))
	assert.Equal(t, 80, Discount(coupon, 80))
}

func TestValidateNeverIncrementsUsage(t *testing.T) {
	svc, repo := testService(t, &stubMarker{})
	seeded := seedCoupon(t, repo, models.Coupon{
		Code: "SAVE10", DiscountType: enums.DiscountTypePercentage, Value: 10, Active: true,
	})

	for i := 0; i < 3; i++ {
		_, _, err := svc.Validate(context.Background(), "SAVE10", 500)
		require.NoError(t, err)
	}

	found, err := repo.FindByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, found.UsageCount)
}

func TestRedeemIncrementsOnceViaMarker(t *testing.T) {
	marker := &stubMarker{won: true}
	svc, repo := testService(t, marker)
	seeded := seedCoupon(t, repo, models.Coupon{
		Code: "SAVE10", DiscountType: enums.DiscountTypePercentage, Value: 10, Active: true,
	})
	ctx := context.Background()
	orderID := uuid.New()

	require.NoError(t, svc.Redeem(ctx, orderID, "SAVE10"))

	// marker already flipped: the retry must not increment again
	marker.won = false
	require.NoError(t, svc.Redeem(ctx, orderID, "SAVE10"))

	found, err := repo.FindByID(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, found.UsageCount)
	assert.Equal(t, 2, marker.calls)
}

func TestRedeemWithoutCouponIsNoOp(t *testing.T) {
	marker := &stubMarker{won: true}
	svc, _ := testService(t, marker)

	require.NoError(t, svc.Redeem(context.Background(), uuid.New(), "  "))
	assert.Equal(t, 0, marker.calls)
}

func TestCreateValidatesDefinition(t *testing.T) {
	svc, _ := testService(t, &stubMarker{})
	ctx := context.Background()

	_, err := svc.Create(ctx, &models.Coupon{Code: "X", DiscountType: enums.DiscountTypePercentage, Value: 150})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.Create(ctx, &models.Coupon{Code: "X", DiscountType: enums.DiscountType("bogo"), Value: 10})
	requireCode(t, err, pkgerrors.CodeValidation)

	created, err := svc.Create(ctx, &models.Coupon{
		Code: "fresh50", DiscountType: enums.DiscountTypeFixed, Value: 50, Active: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "FRESH50", created.Code)
}

func TestSetActiveAndDelete(t *testing.T) {
	svc, repo := testService(t, &stubMarker{})
	ctx := context.Background()
	seeded := seedCoupon(t, repo, models.Coupon{
		Code: "SAVE10", DiscountType: enums.DiscountTypePercentage, Value: 10, Active: true,
	})

	require.NoError(t, svc.SetActive(ctx, seeded.ID, false))
	_, _, err := svc.Validate(ctx, "SAVE10", 500)
	requireCode(t, err, pkgerrors.CodeValidation)

	require.NoError(t, svc.Delete(ctx, seeded.ID))
	err = svc.Delete(ctx, seeded.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)

	err = svc.SetActive(ctx, uuid.New(), true)
	requireCode(t, err, pkgerrors.CodeNotFound)
}
