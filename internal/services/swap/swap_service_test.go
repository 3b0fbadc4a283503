package swap

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/rajivgeraev/skillswap-api/internal/apperrors"
	"github.com/rajivgeraev/skillswap-api/internal/db"
	"github.com/rajivgeraev/skillswap-api/internal/logger"
	"github.com/rajivgeraev/skillswap-api/internal/models"
)

func newTestService(t *testing.T) (*SwapService, db.Store) {
	t.Helper()

	ctx := context.Background()
	store, err := db.NewSQLiteStore(ctx, filepath.Join(t.TempDir(), "swap.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(store.Close)
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return NewSwapService(store, nil, logger.Nop()), store
}

func newUser(t *testing.T, store db.Store, name string, role models.Role) *models.User {
	t.Helper()

	user := &models.User{
		Email:         name + "@example.com",
		PasswordHash:  "hash",
		Name:          name,
		IsPublic:      true,
		Role:          role,
		SkillsOffered: []string{"Guitar"},
		SkillsWanted:  []string{"Spanish"},
	}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser(%s): %v", name, err)
	}
	return user
}

func mustCreate(t *testing.T, s *SwapService, from, to *models.User) *models.SwapRequest {
	t.Helper()

	req, err := s.Create(context.Background(), from, CreateInput{
		ToUser:       to.ID.String(),
		SkillOffered: "Guitar",
		SkillWanted:  "Spanish",
		Message:      "Let's swap",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
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

func TestCreate(t *testing.T) {
	s, store := newTestService(t)
	ctx := context.Background()
	alice := newUser(t, store, "alice", models.RoleUser)
	bob := newUser(t, store, "bob", models.RoleUser)

	req := mustCreate(t, s, alice, bob)

	if req.Status != models.StatusPending {
		t.Errorf("status = %q, want pending", req.Status)
	}
	if req.FromUser == nil || req.FromUser.Name != "alice" || req.ToUser == nil || req.ToUser.Name != "bob" {
		t.Errorf("participants not filled: from=%+v to=%+v", req.FromUser, req.ToUser)
	}

	// Чат до принятия не существует
	if _, err := store.GetChatRoomByRequest(ctx, req.ID); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("expected no chat room for pending request, got %v", err)
	}
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	s, store := newTestService(t)
	ctx := context.Background()
	alice := newUser(t, store, "alice", models.RoleUser)
	bob := newUser(t, store, "bob", models.RoleUser)

	tests := []struct {
		name string
		in   CreateInput
		kind apperrors.Kind
	}{
		{"missing target", CreateInput{SkillOffered: "Go", SkillWanted: "Art"}, apperrors.KindValidation},
		{"missing offered", CreateInput{ToUser: bob.ID.String(), SkillWanted: "Art"}, apperrors.KindValidation},
		{"blank wanted", CreateInput{ToUser: bob.ID.String(), SkillOffered: "Go", SkillWanted: "  "}, apperrors.KindValidation},
		{"unknown target", CreateInput{ToUser: uuid.NewString(), SkillOffered: "Go", SkillWanted: "Art"}, apperrors.KindNotFound},
		{"malformed target", CreateInput{ToUser: "nope", SkillOffered: "Go", SkillWanted: "Art"}, apperrors.KindNotFound},
		{"self", CreateInput{ToUser: alice.ID.String(), SkillOffered: "Go", SkillWanted: "Art"}, apperrors.KindInvalidOperation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Create(ctx, alice, tt.in)
			assertKind(t, err, tt.kind)
		})
	}
}

func TestGetVisibility(t *testing.T) {
	s, store := newTestService(t)
	ctx := context.Background()
	alice := newUser(t, store, "alice", models.RoleUser)
	bob := newUser(t, store, "bob", models.RoleUser)
	carol := newUser(t, store, "carol", models.RoleUser)
	root := newUser(t, store, "root", models.RoleAdmin)

	req := mustCreate(t, s, alice, bob)

	for _, caller := range []*models.User{alice, bob, root} {
		if _, err := s.Get(ctx, caller, req.ID); err != nil {
			t.Errorf("Get as %s: %v", caller.Name, err)
		}
	}

	_, err := s.Get(ctx, carol, req.ID)
	assertKind(t, err, apperrors.KindForbidden)

	_, err = s.Get(ctx, alice, uuid.New())
	assertKind(t, err, apperrors.KindNotFound)
}

func TestList(t *testing.T) {
	s, store := newTestService(t)
	ctx := context.Background()
	alice := newUser(t, store, "alice", models.RoleUser)
	bob := newUser(t, store, "bob", models.RoleUser)
	carol := newUser(t, store, "carol", models.RoleUser)

	toBob := mustCreate(t, s, alice, bob)
	mustCreate(t, s, carol, alice)
	mustCreate(t, s, bob, carol)

	if _, _, err := s.Transition(ctx, bob, toBob.ID, "accepted"); err != nil {
		t.Fatalf("Transition: %v", err)
	}

	tests := []struct {
		filter ListFilter
		want   int
	}{
		{ListFilter{}, 2},
		{ListFilter{Type: "all"}, 2},
		{ListFilter{Type: "outgoing"}, 1},
		{ListFilter{Type: "incoming"}, 1},
		{ListFilter{Status: "accepted"}, 1},
		{ListFilter{Type: "incoming", Status: "accepted"}, 0},
	}
	for _, tt := range tests {
		reqs, err := s.List(ctx, alice, tt.filter)
		if err != nil {
			t.Fatalf("List(%+v): %v", tt.filter, err)
		}
		if len(reqs) != tt.want {
			t.Errorf("List(%+v) returned %d requests, want %d", tt.filter, len(reqs), tt.want)
		}
	}

	_, err := s.List(ctx, alice, ListFilter{Type: "sideways"})
	assertKind(t, err, apperrors.KindValidation)
	_, err = s.List(ctx, alice, ListFilter{Status: "done"})
	assertKind(t, err, apperrors.KindValidation)
}

func TestTransitionAccept(t *testing.T) {
	s, store := newTestService(t)
	ctx := context.Background()
	alice := newUser(t, store, "alice", models.RoleUser)
	bob := newUser(t, store, "bob", models.RoleUser)

	req := mustCreate(t, s, alice, bob)

	updated, room, err := s.Transition(ctx, bob, req.ID, "accepted")
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if updated.Status != models.StatusAccepted {
		t.Errorf("status = %q, want accepted", updated.Status)
	}
	if room == nil || room.RequestID != req.ID {
		t.Fatalf("expected chat room for accepted request, got %+v", room)
	}
	if !room.HasParticipant(alice.ID) || !room.HasParticipant(bob.ID) {
		t.Errorf("room participants = %s, %s", room.User1ID, room.User2ID)
	}

	stored, err := store.GetChatRoomByRequest(ctx, req.ID)
	if err != nil || stored.ID != room.ID {
		t.Errorf("stored room = %+v, %v", stored, err)
	}
}

func TestTransitionReject(t *testing.T) {
	s, store := newTestService(t)
	ctx := context.Background()
	alice := newUser(t, store, "alice", models.RoleUser)
	bob := newUser(t, store, "bob", models.RoleUser)

	req := mustCreate(t, s, alice, bob)

	updated, room, err := s.Transition(ctx, bob, req.ID, "rejected")
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if updated.Status != models.StatusRejected || room != nil {
		t.Fatalf("status = %q room = %+v", updated.Status, room)
	}
	if _, err := store.GetChatRoomByRequest(ctx, req.ID); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("rejected request must not have a chat room, got %v", err)
	}
}

func TestTransitionRules(t *testing.T) {
	s, store := newTestService(t)
	ctx := context.Background()
	alice := newUser(t, store, "alice", models.RoleUser)
	bob := newUser(t, store, "bob", models.RoleUser)
	carol := newUser(t, store, "carol", models.RoleUser)

	req := mustCreate(t, s, alice, bob)

	// Отправитель не может сам принять своё предложение
	_, _, err := s.Transition(ctx, alice, req.ID, "accepted")
	assertKind(t, err, apperrors.KindForbidden)

	// Права проверяются раньше, чем статус
	_, _, err = s.Transition(ctx, carol, req.ID, "bogus")
	assertKind(t, err, apperrors.KindForbidden)

	_, _, err = s.Transition(ctx, bob, req.ID, "pending")
	assertKind(t, err, apperrors.KindValidation)

	_, _, err = s.Transition(ctx, bob, uuid.New(), "accepted")
	assertKind(t, err, apperrors.KindNotFound)

	if _, _, err := s.Transition(ctx, bob, req.ID, "accepted"); err != nil {
		t.Fatalf("accept: %v", err)
	}

	// Завершённое предложение больше не меняется
	_, _, err = s.Transition(ctx, bob, req.ID, "rejected")
	assertKind(t, err, apperrors.KindInvalidOperation)
	_, _, err = s.Transition(ctx, bob, req.ID, "accepted")
	assertKind(t, err, apperrors.KindInvalidOperation)

	got, err := s.Get(ctx, bob, req.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != models.StatusAccepted {
		t.Errorf("status = %q, want accepted", got.Status)
	}
}

func TestAdminCanTransition(t *testing.T) {
	s, store := newTestService(t)
	ctx := context.Background()
	alice := newUser(t, store, "alice", models.RoleUser)
	bob := newUser(t, store, "bob", models.RoleUser)
	root := newUser(t, store, "root", models.RoleAdmin)

	req := mustCreate(t, s, alice, bob)

	updated, _, err := s.Transition(ctx, root, req.ID, "rejected")
	if err != nil {
		t.Fatalf("Transition as admin: %v", err)
	}
	if updated.Status != models.StatusRejected {
		t.Errorf("status = %q, want rejected", updated.Status)
	}
}

func TestConcurrentTransitions(t *testing.T) {
	s, store := newTestService(t)
	ctx := context.Background()
	alice := newUser(t, store, "alice", models.RoleUser)
	bob := newUser(t, store, "bob", models.RoleUser)

	req := mustCreate(t, s, alice, bob)

	const workers = 10
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		winners  []models.RequestStatus
		failures int
	)
	for i := 0; i < workers; i++ {
		status := "accepted"
		if i%2 == 1 {
			status = "rejected"
		}
		wg.Add(1)
		go func(status string) {
			defer wg.Done()
			updated, _, err := s.Transition(ctx, bob, req.ID, status)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if apperrors.KindOf(err) != apperrors.KindInvalidOperation {
					t.Errorf("unexpected error: %v", err)
				}
				failures++
				return
			}
			winners = append(winners, updated.Status)
		}(status)
	}
	wg.Wait()

	if len(winners) != 1 || failures != workers-1 {
		t.Fatalf("winners = %v failures = %d, want exactly one winner", winners, failures)
	}

	_, err := store.GetChatRoomByRequest(ctx, req.ID)
	switch winners[0] {
	case models.StatusAccepted:
		if err != nil {
			t.Errorf("accepted request must have a chat room: %v", err)
		}
	case models.StatusRejected:
		if !errors.Is(err, db.ErrNotFound) {
			t.Errorf("rejected request must not have a chat room: %v", err)
		}
	}
}

func TestDelete(t *testing.T) {
	s, store := newTestService(t)
	ctx := context.Background()
	alice := newUser(t, store, "alice", models.RoleUser)
	bob := newUser(t, store, "bob", models.RoleUser)
	root := newUser(t, store, "root", models.RoleAdmin)

	pending := mustCreate(t, s, alice, bob)

	// Получатель не может удалить чужое предложение
	assertKind(t, s.Delete(ctx, bob, pending.ID), apperrors.KindForbidden)

	if err := s.Delete(ctx, alice, pending.ID); err != nil {
		t.Fatalf("Delete pending: %v", err)
	}
	_, err := s.Get(ctx, alice, pending.ID)
	assertKind(t, err, apperrors.KindNotFound)

	accepted := mustCreate(t, s, alice, bob)
	_, room, err := s.Transition(ctx, bob, accepted.ID, "accepted")
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}

	assertKind(t, s.Delete(ctx, alice, accepted.ID), apperrors.KindInvalidOperation)

	if err := s.Delete(ctx, root, accepted.ID); err != nil {
		t.Fatalf("Delete as admin: %v", err)
	}
	if _, err := store.GetChatRoom(ctx, room.ID); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("chat room should be deleted with the request, got %v", err)
	}

	assertKind(t, s.Delete(ctx, root, uuid.New()), apperrors.KindNotFound)
}
