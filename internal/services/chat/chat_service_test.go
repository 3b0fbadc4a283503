package chat

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/rajivgeraev/skillswap-api/internal/apperrors"
	"github.com/rajivgeraev/skillswap-api/internal/db"
	"github.com/rajivgeraev/skillswap-api/internal/logger"
	"github.com/rajivgeraev/skillswap-api/internal/models"
)

func newTestService(t *testing.T) (*ChatService, db.Store) {
	t.Helper()

	ctx := context.Background()
	store, err := db.NewSQLiteStore(ctx, filepath.Join(t.TempDir(), "chat.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(store.Close)
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return NewChatService(store, nil, nil, logger.Nop()), store
}

func newUser(t *testing.T, store db.Store, name string, role models.Role) *models.User {
	t.Helper()

	user := &models.User{
		Email:        name + "@example.com",
		PasswordHash: "hash",
		Name:         name,
		IsPublic:     true,
		Role:         role,
	}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser(%s): %v", name, err)
	}
	return user
}

func newRequest(t *testing.T, store db.Store, from, to *models.User, status models.RequestStatus) *models.SwapRequest {
	t.Helper()

	ctx := context.Background()
	req := &models.SwapRequest{
		FromUserID:   from.ID,
		ToUserID:     to.ID,
		SkillOffered: "Guitar",
		SkillWanted:  "Spanish",
	}
	if err := store.CreateSwapRequest(ctx, req); err != nil {
		t.Fatalf("CreateSwapRequest: %v", err)
	}
	if status != models.StatusPending {
		updated, _, err := store.TransitionSwapRequest(ctx, req.ID, models.StatusPending, status)
		if err != nil {
			t.Fatalf("TransitionSwapRequest: %v", err)
		}
		req = updated
	}
	return req
}

func assertKind(t *testing.T, err error, kind apperrors.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error of kind %d, got nil", kind)
	}
	if got := apperrors.KindOf(err); got != kind {
		t.Fatalf("error kind = %d, want %d (%v)", got, kind, err)
	}
}

// Alice предлагает обмен Бобу, Боб принимает, оба попадают в один чат,
// а посторонняя Кэрол не видит ни чат, ни сообщения
func TestAcceptedSwapConversation(t *testing.T) {
	s, store := newTestService(t)
	ctx := context.Background()
	alice := newUser(t, store, "alice", models.RoleUser)
	bob := newUser(t, store, "bob", models.RoleUser)
	carol := newUser(t, store, "carol", models.RoleUser)

	req := newRequest(t, store, alice, bob, models.StatusAccepted)

	aliceView, err := s.Room(ctx, alice, req.ID)
	if err != nil {
		t.Fatalf("Room as alice: %v", err)
	}
	bobView, err := s.Room(ctx, bob, req.ID)
	if err != nil {
		t.Fatalf("Room as bob: %v", err)
	}
	if aliceView.ChatRoom.ID != bobView.ChatRoom.ID {
		t.Fatalf("participants see different rooms: %s vs %s", aliceView.ChatRoom.ID, bobView.ChatRoom.ID)
	}
	if aliceView.SwapRequest.FromUser == nil || aliceView.SwapRequest.FromUser.Name != "alice" {
		t.Errorf("swap request participants not filled: %+v", aliceView.SwapRequest)
	}

	_, err = s.Room(ctx, carol, req.ID)
	assertKind(t, err, apperrors.KindForbidden)

	roomID := aliceView.ChatRoom.ID
	if _, err := s.PostMessage(ctx, alice, roomID, "Hi Bob!"); err != nil {
		t.Fatalf("PostMessage alice: %v", err)
	}
	reply, err := s.PostMessage(ctx, bob, roomID, "Hi Alice!")
	if err != nil {
		t.Fatalf("PostMessage bob: %v", err)
	}
	if reply.Sender == nil || reply.Sender.Name != "bob" {
		t.Errorf("sender = %+v", reply.Sender)
	}

	_, err = s.PostMessage(ctx, carol, roomID, "let me in")
	assertKind(t, err, apperrors.KindForbidden)
	_, err = s.ListMessages(ctx, carol, roomID, 0, 0)
	assertKind(t, err, apperrors.KindForbidden)

	msgs, err := s.ListMessages(ctx, bob, roomID, 0, 0)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Text != "Hi Bob!" || msgs[1].Text != "Hi Alice!" {
		t.Fatalf("messages = %+v", msgs)
	}
	if msgs[0].Sender == nil || msgs[0].Sender.Name != "alice" {
		t.Errorf("first sender = %+v", msgs[0].Sender)
	}

	view, err := s.Room(ctx, alice, req.ID)
	if err != nil {
		t.Fatalf("Room: %v", err)
	}
	if len(view.Messages) != 2 {
		t.Errorf("room view has %d messages, want 2", len(view.Messages))
	}
}

func TestRoomRequiresAcceptedRequest(t *testing.T) {
	s, store := newTestService(t)
	ctx := context.Background()
	alice := newUser(t, store, "alice", models.RoleUser)
	bob := newUser(t, store, "bob", models.RoleUser)

	for _, status := range []models.RequestStatus{models.StatusPending, models.StatusRejected} {
		req := newRequest(t, store, alice, bob, status)
		_, _, err := s.ResolveOrCreate(ctx, bob, req.ID)
		assertKind(t, err, apperrors.KindInvalidOperation)
	}

	_, _, err := s.ResolveOrCreate(ctx, alice, uuid.New())
	assertKind(t, err, apperrors.KindNotFound)
}

func TestAdminCanOpenAnyRoom(t *testing.T) {
	s, store := newTestService(t)
	ctx := context.Background()
	alice := newUser(t, store, "alice", models.RoleUser)
	bob := newUser(t, store, "bob", models.RoleUser)
	root := newUser(t, store, "root", models.RoleAdmin)

	req := newRequest(t, store, alice, bob, models.StatusAccepted)

	room, _, err := s.ResolveOrCreate(ctx, root, req.ID)
	if err != nil {
		t.Fatalf("ResolveOrCreate as admin: %v", err)
	}
	if _, err := s.PostMessage(ctx, root, room.ID, "moderator here"); err != nil {
		t.Fatalf("PostMessage as admin: %v", err)
	}
}

func TestConcurrentResolveReturnsSameRoom(t *testing.T) {
	s, store := newTestService(t)
	ctx := context.Background()
	alice := newUser(t, store, "alice", models.RoleUser)
	bob := newUser(t, store, "bob", models.RoleUser)

	req := newRequest(t, store, alice, bob, models.StatusAccepted)

	const workers = 10
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = make(map[uuid.UUID]int)
	)
	for i := 0; i < workers; i++ {
		caller := alice
		if i%2 == 1 {
			caller = bob
		}
		wg.Add(1)
		go func(caller *models.User) {
			defer wg.Done()
			room, _, err := s.ResolveOrCreate(ctx, caller, req.ID)
			if err != nil {
				t.Errorf("ResolveOrCreate: %v", err)
				return
			}
			mu.Lock()
			ids[room.ID]++
			mu.Unlock()
		}(caller)
	}
	wg.Wait()

	if len(ids) != 1 {
		t.Fatalf("expected one room, got %v", ids)
	}
}

func TestPostMessageValidation(t *testing.T) {
	s, store := newTestService(t)
	ctx := context.Background()
	alice := newUser(t, store, "alice", models.RoleUser)
	bob := newUser(t, store, "bob", models.RoleUser)

	req := newRequest(t, store, alice, bob, models.StatusAccepted)
	room, _, err := s.ResolveOrCreate(ctx, alice, req.ID)
	if err != nil {
		t.Fatalf("ResolveOrCreate: %v", err)
	}

	_, err = s.PostMessage(ctx, alice, room.ID, "   ")
	assertKind(t, err, apperrors.KindValidation)

	_, err = s.PostMessage(ctx, alice, room.ID, strings.Repeat("я", MaxMessageLength+1))
	assertKind(t, err, apperrors.KindValidation)

	if _, err := s.PostMessage(ctx, alice, room.ID, strings.Repeat("я", MaxMessageLength)); err != nil {
		t.Errorf("message of max length rejected: %v", err)
	}

	_, err = s.PostMessage(ctx, alice, uuid.New(), "hello")
	assertKind(t, err, apperrors.KindNotFound)
}

func TestListMessagesAfterCursor(t *testing.T) {
	s, store := newTestService(t)
	ctx := context.Background()
	alice := newUser(t, store, "alice", models.RoleUser)
	bob := newUser(t, store, "bob", models.RoleUser)

	req := newRequest(t, store, alice, bob, models.StatusAccepted)
	room, _, err := s.ResolveOrCreate(ctx, alice, req.ID)
	if err != nil {
		t.Fatalf("ResolveOrCreate: %v", err)
	}

	var posted []*models.Message
	for _, text := range []string{"one", "two", "three"} {
		msg, err := s.PostMessage(ctx, alice, room.ID, text)
		if err != nil {
			t.Fatalf("PostMessage: %v", err)
		}
		posted = append(posted, msg)
	}

	msgs, err := s.ListMessages(ctx, bob, room.ID, posted[0].Seq, 1)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Text != "two" {
		t.Fatalf("messages after first = %+v, want [two]", msgs)
	}
}

func TestListConversations(t *testing.T) {
	s, store := newTestService(t)
	ctx := context.Background()
	alice := newUser(t, store, "alice", models.RoleUser)
	bob := newUser(t, store, "bob", models.RoleUser)
	carol := newUser(t, store, "carol", models.RoleUser)
	root := newUser(t, store, "root", models.RoleAdmin)

	newRequest(t, store, alice, bob, models.StatusAccepted)
	newRequest(t, store, carol, alice, models.StatusAccepted)
	newRequest(t, store, bob, carol, models.StatusAccepted)
	newRequest(t, store, alice, carol, models.StatusPending)

	rooms, err := s.ListConversations(ctx, alice, alice.ID)
	if err != nil {
		t.Fatalf("ListConversations: %v", err)
	}
	if len(rooms) != 2 {
		t.Fatalf("alice has %d conversations, want 2", len(rooms))
	}
	for _, room := range rooms {
		if room.SwapRequest.FromUser == nil || room.SwapRequest.ToUser == nil {
			t.Errorf("conversation %s has no participants", room.ID)
		}
	}

	_, err = s.ListConversations(ctx, bob, alice.ID)
	assertKind(t, err, apperrors.KindForbidden)

	if _, err := s.ListConversations(ctx, root, alice.ID); err != nil {
		t.Errorf("admin ListConversations: %v", err)
	}
}
