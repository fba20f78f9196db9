// Package store persists chat messages in the relational messages table.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"pollchat/internal/database"
	"pollchat/internal/model"
)

// StorageError reports an engine failure or a rejected statement.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// MessageStore is the GORM-backed message table
type MessageStore struct {
	db  *gorm.DB
	log *slog.Logger
}

// New wraps an open database handle. The caller owns the handle's lifecycle.
func New(db *gorm.DB, log *slog.Logger) *MessageStore {
	return &MessageStore{db: db, log: log}
}

// Migrate creates or updates the messages table
func (s *MessageStore) Migrate(ctx context.Context) error {
	const op = "MessageStore.Migrate"
	if err := s.db.WithContext(ctx).AutoMigrate(&model.Message{}); err != nil {
		return s.fail(op, err)
	}
	return nil
}

// Create inserts a message; id and created_at are assigned here.
func (s *MessageStore) Create(ctx context.Context, name, content string) (model.Message, error) {
	const op = "MessageStore.Create"

	msg := model.Message{Name: name, Content: content}
	if err := s.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return model.Message{}, s.fail(op, err)
	}

	s.log.Debug("message stored", "op", op, "id", msg.ID, "created_at", msg.CreatedAt)
	return msg, nil
}

// ListRecent returns up to limit messages, newest first.
func (s *MessageStore) ListRecent(ctx context.Context, limit int) ([]model.Message, error) {
	const op = "MessageStore.ListRecent"

	msgs := []model.Message{}
	if limit <= 0 {
		return msgs, nil
	}

	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, s.fail(op, err)
	}
	return msgs, nil
}

// DeleteByID removes the message with id. A missing id is not an error.
func (s *MessageStore) DeleteByID(ctx context.Context, id string) error {
	const op = "MessageStore.DeleteByID"

	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Message{})
	if result.Error != nil {
		return s.fail(op, result.Error)
	}

	s.log.Debug("message delete", "op", op, "id", id, "rows", result.RowsAffected)
	return nil
}

// Ping checks the engine is reachable
func (s *MessageStore) Ping(ctx context.Context) error {
	const op = "MessageStore.Ping"
	if err := database.Ping(ctx, s.db); err != nil {
		return s.fail(op, err)
	}
	return nil
}

func (s *MessageStore) fail(op string, err error) error {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		s.log.Error("statement rejected", "op", op, "code", myErr.Number, "error", myErr.Message)
	} else {
		s.log.Error("storage failure", "op", op, "error", err)
	}
	return &StorageError{Op: op, Err: err}
}
