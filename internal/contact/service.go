package contact

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/feastly/feastly-backend/pkg/db/models"
	pkgerrors "github.com/feastly/feastly-backend/pkg/errors"
	"github.com/feastly/feastly-backend/pkg/logger"
)

// SubmitRequest is a contact-form submission.
type SubmitRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,min=10,max=4000"`
}

// Repository persists contact-form messages.
type Repository interface {
	Create(ctx context.Context, msg *models.ContactMessage) (*models.ContactMessage, error)
	List(ctx context.Context, limit, offset int) ([]models.ContactMessage, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a contact repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, msg *models.ContactMessage) (*models.ContactMessage, error) {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, err
	}
	return msg, nil
}

func (r *repository) List(ctx context.Context, limit, offset int) ([]models.ContactMessage, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	var messages []models.ContactMessage
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	return messages, err
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ContactMessage{}).Error
}

// Service records support-queue messages submitted through the storefront.
type Service struct {
	repo Repository
	logg *logger.Logger
}

// NewService constructs the contact service.
func NewService(repo Repository, logg *logger.Logger) *Service {
	return &Service{repo: repo, logg: logg}
}

// Submit validates and stores a contact-form message.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*models.ContactMessage, error) {
	name := strings.TrimSpace(req.Name)
	message := strings.TrimSpace(req.Message)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" || email == "" || message == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name, email, and message are required")
	}

	stored, err := s.repo.Create(ctx, &models.ContactMessage{
		Name:    name,
		Email:   email,
		Message: message,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "storing contact message")
	}

	s.logg.Info(s.logg.WithField(ctx, "contact_message_id", stored.ID.String()), "contact message received")
	return stored, nil
}

// List returns recent messages for the back office, newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]models.ContactMessage, error) {
	messages, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing contact messages")
	}
	return messages, nil
}

// Delete removes a handled message from the queue.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting contact message")
	}
	return nil
}
