//go:generate go run go.uber.org/mock/mockgen -source=service.go -destination=mocks/mock_store.go -package=mocks

// Package service validates chat requests and delegates them to the message store.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"pollchat/internal/model"
)

// MaxListed caps a single list response
const MaxListed = 100

// Store is the persistence contract the service relies on
type Store interface {
	Create(ctx context.Context, name, content string) (model.Message, error)
	ListRecent(ctx context.Context, limit int) ([]model.Message, error)
	DeleteByID(ctx context.Context, id string) error
}

// Publisher receives change events after successful writes
type Publisher interface {
	Publish(event model.ChangeEvent)
}

// ValidationError reports a missing or blank required field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	return v
}

type postInput struct {
	Name    string `validate:"required"`
	Content string `validate:"required"`
}

// ID is an opaque key and is passed to the store as given
type deleteInput struct {
	ID string `validate:"notblank"`
}

type Service struct {
	log       *slog.Logger
	store     Store
	publisher Publisher
}

// New builds the service. publisher may be nil.
func New(log *slog.Logger, store Store, publisher Publisher) *Service {
	return &Service{log: log, store: store, publisher: publisher}
}

// ListMessages returns at most MaxListed messages, newest first.
func (s *Service) ListMessages(ctx context.Context) ([]model.Message, error) {
	const op = "Service.ListMessages"

	msgs, err := s.store.ListRecent(ctx, MaxListed)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if msgs == nil {
		msgs = []model.Message{}
	}
	return msgs, nil
}

// PostMessage stores a new message. The created message is not returned;
// callers observe it through the next ListMessages.
func (s *Service) PostMessage(ctx context.Context, name, content string) error {
	const op = "Service.PostMessage"

	in := postInput{
		Name:    strings.TrimSpace(name),
		Content: strings.TrimSpace(content),
	}
	if err := validate.Struct(in); err != nil {
		s.log.Debug("message rejected", "op", op, "error", err)
		return toValidationError(err, "Name and content are required")
	}

	msg, err := s.store.Create(ctx, in.Name, in.Content)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.publish(model.ChangeEvent{Type: model.EventMessageCreated, ID: msg.ID, Message: &msg})
	return nil
}

// DeleteMessage removes a message by id. Unknown ids succeed.
func (s *Service) DeleteMessage(ctx context.Context, id string) error {
	const op = "Service.DeleteMessage"

	in := deleteInput{ID: id}
	if err := validate.Struct(in); err != nil {
		s.log.Debug("delete rejected", "op", op, "error", err)
		return toValidationError(err, "Missing ID parameter")
	}

	if err := s.store.DeleteByID(ctx, in.ID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	deletedAt := time.Now().UTC()
	s.publish(model.ChangeEvent{Type: model.EventMessageDeleted, ID: in.ID, DeletedAt: &deletedAt})
	return nil
}

func (s *Service) publish(event model.ChangeEvent) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(event)
}

func toValidationError(err error, message string) error {
	field := ""
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		field = strings.ToLower(fieldErrs[0].Field())
	}
	return &ValidationError{Field: field, Message: message}
}
