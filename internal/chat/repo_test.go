package chat

import (
	"context"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(gormsqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Session{}, &Message{}, &Job{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestCreateSession_FreshTimestampsAndNoMessages(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	ctx := context.Background()

	prompt := "You are terse."
	sess, err := repo.CreateSession(ctx, &prompt)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if sess.ID == "" {
		t.Fatal("expected server-side id")
	}
	if sess.SystemPrompt == nil || *sess.SystemPrompt != prompt {
		t.Fatalf("unexpected system prompt: %v", sess.SystemPrompt)
	}
	if !sess.UpdatedAt.Equal(sess.CreatedAt) {
		t.Fatalf("expected created_at == updated_at, got %v / %v", sess.CreatedAt, sess.UpdatedAt)
	}

	got, err := repo.GetSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got == nil || got.ID != sess.ID {
		t.Fatalf("expected session back, got %v", got)
	}

	msgs, err := repo.GetMessages(ctx, sess.ID)
	if err != nil {
		t.Fatalf("get messages: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("expected empty history, got %d messages", len(msgs))
	}
}

func TestGetSession_AbsenceIsNotAnError(t *testing.T) {
	repo := NewRepo(openTestDB(t))

	sess, err := repo.GetSession(context.Background(), "00000000-0000-0000-0000-000000000000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess != nil {
		t.Fatalf("expected nil session, got %v", sess)
	}
}

func TestAppendMessage_OrderAndUpdatedAtBump(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	ctx := context.Background()

	sess, err := repo.CreateSession(ctx, nil)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	turns := []struct{ role, content string }{
		{"user", "2+2?"},
		{"assistant", "4"},
		{"user", "and times 3?"},
		{"assistant", "12"},
	}
	for _, turn := range turns {
		m, err := repo.AppendMessage(ctx, sess.ID, turn.role, turn.content)
		if err != nil {
			t.Fatalf("append %s: %v", turn.role, err)
		}

		got, err := repo.GetSession(ctx, sess.ID)
		if err != nil {
			t.Fatalf("get session: %v", err)
		}
		if got.UpdatedAt.Before(m.CreatedAt) {
			t.Fatalf("updated_at %v behind message created_at %v", got.UpdatedAt, m.CreatedAt)
		}
		if got.UpdatedAt.Before(got.CreatedAt) {
			t.Fatalf("updated_at %v behind created_at %v", got.UpdatedAt, got.CreatedAt)
		}
	}

	msgs, err := repo.GetMessages(ctx, sess.ID)
	if err != nil {
		t.Fatalf("get messages: %v", err)
	}
	if len(msgs) != len(turns) {
		t.Fatalf("expected %d messages, got %d", len(turns), len(msgs))
	}
	for i, turn := range turns {
		if msgs[i].Role != turn.role || msgs[i].Content != turn.content {
			t.Fatalf("message %d out of order: role=%q content=%q", i, msgs[i].Role, msgs[i].Content)
		}
	}
	for i := 1; i < len(msgs); i++ {
		if msgs[i].CreatedAt.Before(msgs[i-1].CreatedAt) {
			t.Fatalf("messages not in non-decreasing created_at order at %d", i)
		}
	}
}

func TestAppendMessage_MissingSessionCreatesNoOrphan(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	const ghost = "11111111-1111-1111-1111-111111111111"
	if _, err := repo.AppendMessage(ctx, ghost, "user", "hello?"); err == nil {
		t.Fatal("expected error appending to missing session")
	}

	msgs, err := repo.GetMessages(ctx, ghost)
	if err != nil {
		t.Fatalf("get messages: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("orphan rows created: %d", len(msgs))
	}
}

func TestDeleteSession_CascadesAtomically(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	ctx := context.Background()

	sess, err := repo.CreateSession(ctx, nil)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if _, err := repo.AppendMessage(ctx, sess.ID, "user", "hi"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := repo.AppendMessage(ctx, sess.ID, "assistant", "hello"); err != nil {
		t.Fatalf("append: %v", err)
	}

	deleted, err := repo.DeleteSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !deleted {
		t.Fatal("expected a row to be removed")
	}

	got, err := repo.GetSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got != nil {
		t.Fatalf("session still present after delete: %v", got)
	}
}

// Pinned contract: reading messages for a deleted id yields an empty slice,
// not an error.
func TestGetMessagesAfterDelete_ReturnsEmptySlice(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	ctx := context.Background()

	sess, err := repo.CreateSession(ctx, nil)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if _, err := repo.AppendMessage(ctx, sess.ID, "user", "hi"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := repo.DeleteSession(ctx, sess.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	msgs, err := repo.GetMessages(ctx, sess.ID)
	if err != nil {
		t.Fatalf("get messages after delete: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("expected empty history after cascade, got %d messages", len(msgs))
	}
}

func TestDeleteSession_MissingIDReportsNoRow(t *testing.T) {
	repo := NewRepo(openTestDB(t))

	deleted, err := repo.DeleteSession(context.Background(), "22222222-2222-2222-2222-222222222222")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted {
		t.Fatal("expected no row to be removed")
	}
}
