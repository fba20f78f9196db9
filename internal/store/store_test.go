package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"

	"pollchat/internal/database"
	"pollchat/internal/model"
)

// stepClock advances one second per reading so every insert gets a distinct created_at
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func newTestStore(t *testing.T) (*MessageStore, *stepClock) {
	t.Helper()

	clock := &stepClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "chat.db"), clock.Now)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	s := New(db, slog.Default())
	require.NoError(t, s.Migrate(context.Background()))
	return s, clock
}

func names(msgs []model.Message) []string {
	return lo.Map(msgs, func(m model.Message, _ int) string { return m.Name })
}

func Test_Create_Assigns_Id_And_Timestamp(t *testing.T) {
	req := require.New(t)
	s, _ := newTestStore(t)
	ctx := context.Background()

	first, err := s.Create(ctx, "Alice", "hello")
	req.NoError(err)
	second, err := s.Create(ctx, "Bob", "hi")
	req.NoError(err)

	_, err = uuid.Parse(first.ID)
	req.NoError(err)
	req.NotEqual(first.ID, second.ID)
	req.Equal("Alice", first.Name)
	req.Equal("hello", first.Content)
	req.True(second.CreatedAt.After(first.CreatedAt))
}

func Test_ListRecent_Newest_First_And_Delete(t *testing.T) {
	req := require.New(t)
	s, _ := newTestStore(t)
	ctx := context.Background()

	var b model.Message
	for _, name := range []string{"A", "B", "C"} {
		msg, err := s.Create(ctx, name, "content "+name)
		req.NoError(err)
		if name == "B" {
			b = msg
		}
	}

	msgs, err := s.ListRecent(ctx, 100)
	req.NoError(err)
	req.Equal([]string{"C", "B", "A"}, names(msgs))

	req.NoError(s.DeleteByID(ctx, b.ID))

	msgs, err = s.ListRecent(ctx, 100)
	req.NoError(err)
	req.Equal([]string{"C", "A"}, names(msgs))
}

func Test_ListRecent_Respects_Limit(t *testing.T) {
	req := require.New(t)
	s, _ := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		_, err := s.Create(ctx, fmt.Sprintf("user-%02d", i), "msg")
		req.NoError(err)
	}

	msgs, err := s.ListRecent(ctx, 10)
	req.NoError(err)
	req.Len(msgs, 10)
	req.Equal("user-14", msgs[0].Name)
	req.Equal("user-05", msgs[9].Name)
	for i := 1; i < len(msgs); i++ {
		req.True(msgs[i-1].CreatedAt.After(msgs[i].CreatedAt))
	}
}

func Test_ListRecent_Empty(t *testing.T) {
	req := require.New(t)
	s, _ := newTestStore(t)

	msgs, err := s.ListRecent(context.Background(), 100)
	req.NoError(err)
	req.NotNil(msgs)
	req.Empty(msgs)

	msgs, err = s.ListRecent(context.Background(), 0)
	req.NoError(err)
	req.NotNil(msgs)
	req.Empty(msgs)
}

func Test_DeleteByID_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	s, _ := newTestStore(t)
	ctx := context.Background()

	kept, err := s.Create(ctx, "Alice", "keep me")
	req.NoError(err)
	gone, err := s.Create(ctx, "Bob", "delete me")
	req.NoError(err)

	req.NoError(s.DeleteByID(ctx, gone.ID))
	req.NoError(s.DeleteByID(ctx, gone.ID))
	req.NoError(s.DeleteByID(ctx, uuid.NewString()))

	msgs, err := s.ListRecent(ctx, 100)
	req.NoError(err)
	req.Len(msgs, 1)
	req.Equal(kept.ID, msgs[0].ID)
}

func Test_Closed_Engine_Returns_StorageError(t *testing.T) {
	req := require.New(t)
	s, _ := newTestStore(t)
	ctx := context.Background()
	req.NoError(database.Close(s.db))

	var storageErr *StorageError

	_, err := s.Create(ctx, "Alice", "hello")
	req.True(errors.As(err, &storageErr))
	req.Equal("MessageStore.Create", storageErr.Op)

	_, err = s.ListRecent(ctx, 100)
	req.True(errors.As(err, &storageErr))

	err = s.DeleteByID(ctx, uuid.NewString())
	req.True(errors.As(err, &storageErr))

	err = s.Ping(ctx)
	req.True(errors.As(err, &storageErr))
}

func Test_Name_Column_Width(t *testing.T) {
	sch, err := schema.Parse(&model.Message{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	field := sch.LookUpField("name")
	require.NotNil(t, field)
	require.Equal(t, model.NameMaxLength, field.Size)
}

func Test_Rejected_Statement_Returns_StorageError(t *testing.T) {
	req := require.New(t)
	s, _ := newTestStore(t)

	tooLong := &mysql.MySQLError{Number: 1406, Message: "Data too long for column 'name' at row 1"}
	err := s.fail("MessageStore.Create", fmt.Errorf("insert: %w", tooLong))

	var storageErr *StorageError
	req.True(errors.As(err, &storageErr))
	req.Equal("MessageStore.Create", storageErr.Op)

	var myErr *mysql.MySQLError
	req.True(errors.As(err, &myErr))
	req.Equal(uint16(1406), myErr.Number)
}
