package contact

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/feastly/feastly-backend/pkg/db/models"
	pkgerrors "github.com/feastly/feastly-backend/pkg/errors"
	"github.com/feastly/feastly-backend/pkg/logger"
)

func testContactService(t *testing.T) *Service {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&models.ContactMessage{}))

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	return NewService(NewRepository(gdb), logg)
}

func TestSubmitStoresMessage(t *testing.T) {
	svc := testContactService(t)
	ctx := context.Background()

	stored, err := svc.Submit(ctx, SubmitRequest{
		Name:    "  Arjun  ",
		Email:   " Arjun@Example.com ",
		Message: "My order arrived cold, please advise.",
	})
	require.NoError(t, err)
	assert.Equal(t, "Arjun", stored.Name)
	assert.Equal(t, "arjun@example.com", stored.Email)
	assert.NotEqual(t, stored.ID.String(), "00000000-0000-0000-0000-000000000000")

	messages, err := svc.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, stored.ID, messages[0].ID)
}

func TestSubmitRejectsBlankFields(t *testing.T) {
	svc := testContactService(t)

	_, err := svc.Submit(context.Background(), SubmitRequest{Name: "  ", Email: "a@b.com", Message: "hello there friend"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestListNewestFirstAndDelete(t *testing.T) {
	svc := testContactService(t)
	ctx := context.Background()

	var last *models.ContactMessage
	for i := 0; i < 3; i++ {
		stored, err := svc.Submit(ctx, SubmitRequest{
			Name:    "Customer",
			Email:   "c@example.com",
			Message: fmt.Sprintf("message number %d with enough text", i),
		})
		require.NoError(t, err)
		last = stored
	}

	messages, err := svc.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, messages, 3)

	require.NoError(t, svc.Delete(ctx, last.ID))
	messages, err = svc.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, messages, 2)
}
