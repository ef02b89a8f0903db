package menu

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/feastly/feastly-backend/pkg/db/models"
	pkgerrors "github.com/feastly/feastly-backend/pkg/errors"
	"github.com/feastly/feastly-backend/pkg/logger"
	"github.com/feastly/feastly-backend/pkg/types"
)

func testService(t *testing.T) (*Service, Repository) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.MenuItem{}))
	repo := NewRepository(db)
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	return NewService(repo, logg), repo
}

func seedItem(t *testing.T, svc *Service, item models.MenuItem) *models.MenuItem {
	t.Helper()
	created, err := svc.Create(context.Background(), &item)
	require.NoError(t, err)
	return created
}

func TestBrowseShowsOnlyAvailableItems(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	seedItem(t, svc, models.MenuItem{Name: "Margherita", Category: "pizza", Price: 150, Available: true})
	seedItem(t, svc, models.MenuItem{Name: "Calzone", Category: "pizza", Price: 180, Available: false})
	seedItem(t, svc, models.MenuItem{Name: "Masala Chai", Category: "drinks", Price: 20, Available: true})

	items, err := svc.Browse(ctx, "")
	require.NoError(t, err)
	require.Len(t, items, 2)

	items, err = svc.Browse(ctx, "pizza")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Margherita", items[0].Name)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestCreateValidatesItem(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, &models.MenuItem{Category: "pizza", Price: 100})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.Create(ctx, &models.MenuItem{Name: "Margherita", Category: "pizza", Price: -1})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.Create(ctx, &models.MenuItem{
		Name: "Margherita", Category: "pizza", Price: 150,
		Sizes: types.ItemOptions{{Name: "Large", PriceDelta: 60}, {Name: "Large", PriceDelta: 80}},
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestUpdateAndToggle(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	created := seedItem(t, svc, models.MenuItem{Name: "Margherita", Category: "pizza", Price: 150, Available: true})

	updated, err := svc.Update(ctx, created.ID, &models.MenuItem{
		Name: "Margherita", Category: "pizza", Price: 170, Available: true,
		Extras: types.ItemOptions{{Name: "Olives", PriceDelta: 20}},
	})
	require.NoError(t, err)
	assert.Equal(t, 170, updated.Price)
	require.Len(t, updated.Extras, 1)

	require.NoError(t, svc.SetAvailable(ctx, created.ID, false))
	items, err := svc.Browse(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, items)

	err = svc.SetAvailable(ctx, uuid.New(), true)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestDelete(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	created := seedItem(t, svc, models.MenuItem{Name: "Margherita", Category: "pizza", Price: 150})
	require.NoError(t, svc.Delete(ctx, created.ID))

	err := svc.Delete(ctx, created.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}
