package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"testing"
	"time"

	"gigwork-service/internal/contract"
	"gigwork-service/internal/models"

	"github.com/google/uuid"
)

type fakeChatRepo struct {
	messages map[uuid.UUID]*models.Message
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{messages: make(map[uuid.UUID]*models.Message)}
}

func (r *fakeChatRepo) Insert(_ context.Context, msg *models.Message) error {
	copied := *msg
	r.messages[msg.ID] = &copied
	return nil
}

func (r *fakeChatRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Message, error) {
	m, ok := r.messages[id]
	if !ok {
		return nil, nil
	}
	copied := *m
	return &copied, nil
}

func (r *fakeChatRepo) FindByContract(_ context.Context, contractID uuid.UUID, limit int, cursorCreatedAt *time.Time, cursorID *uuid.UUID) ([]*models.Message, error) {
	var msgs []*models.Message
	for _, m := range r.messages {
		if m.ContractID != contractID {
			continue
		}
		if cursorCreatedAt != nil && cursorID != nil {
			if !(m.CreatedAt.Before(*cursorCreatedAt) ||
				(m.CreatedAt.Equal(*cursorCreatedAt) && m.ID.String() < cursorID.String())) {
				continue
			}
		}
		copied := *m
		msgs = append(msgs, &copied)
	}
	sort.Slice(msgs, func(i, j int) bool {
		if !msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].CreatedAt.After(msgs[j].CreatedAt)
		}
		return msgs[i].ID.String() > msgs[j].ID.String()
	})
	if len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return msgs, nil
}

func (r *fakeChatRepo) MarkRead(_ context.Context, id uuid.UUID) (*models.Message, error) {
	m, ok := r.messages[id]
	if !ok {
		return nil, nil
	}
	m.IsRead = true
	copied := *m
	return &copied, nil
}

func (r *fakeChatRepo) MarkAllRead(_ context.Context, contractID, readerID uuid.UUID) (int64, error) {
	var n int64
	for _, m := range r.messages {
		if m.ContractID == contractID && m.SenderID != readerID && !m.IsRead {
			m.IsRead = true
			n++
		}
	}
	return n, nil
}

func (r *fakeChatRepo) CountUnread(_ context.Context, contractID, userID uuid.UUID) (int64, error) {
	var n int64
	for _, m := range r.messages {
		if m.ContractID == contractID && m.SenderID != userID && !m.IsRead {
			n++
		}
	}
	return n, nil
}

func (r *fakeChatRepo) CountUnreadForContracts(_ context.Context, contractIDs []uuid.UUID, userID uuid.UUID) (map[uuid.UUID]int64, error) {
	out := make(map[uuid.UUID]int64)
	for _, id := range contractIDs {
		n, _ := r.CountUnread(context.Background(), id, userID)
		if n > 0 {
			out[id] = n
		}
	}
	return out, nil
}

func (r *fakeChatRepo) LatestForContracts(_ context.Context, contractIDs []uuid.UUID) (map[uuid.UUID]*models.Message, error) {
	out := make(map[uuid.UUID]*models.Message)
	for _, id := range contractIDs {
		msgs, _ := r.FindByContract(context.Background(), id, 1, nil, nil)
		if len(msgs) > 0 {
			out[id] = msgs[0]
		}
	}
	return out, nil
}

// fakeDirectory plays the contract side: every contract here is accepted
// and authorized for both parties.
type fakeDirectory struct {
	contracts map[uuid.UUID]*models.Contract
	gigs      map[uuid.UUID]*models.Gig
	users     map[uuid.UUID]*models.User
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		contracts: make(map[uuid.UUID]*models.Contract),
		gigs:      make(map[uuid.UUID]*models.Gig),
		users:     make(map[uuid.UUID]*models.User),
	}
}

func (d *fakeDirectory) addContract(clientID, freelancerID uuid.UUID, status models.ContractStatus) *models.Contract {
	gig := &models.Gig{ID: uuid.New(), UserID: freelancerID}
	d.gigs[gig.ID] = gig
	c := &models.Contract{ID: uuid.New(), GigID: gig.ID, UserID: clientID, Status: status}
	d.contracts[c.ID] = c
	return c
}

func (d *fakeDirectory) addUser(name string) uuid.UUID {
	u := &models.User{ID: uuid.New(), DisplayName: &name}
	d.users[u.ID] = u
	return u.ID
}

func (d *fakeDirectory) AuthorizeChat(ctx context.Context, contractID, userID uuid.UUID) error {
	c, ok := d.contracts[contractID]
	if !ok {
		return contract.ErrContractNotFound
	}
	if c.Status != models.ContractAccepted {
		return contract.ErrChatNotAvailable
	}
	if c.UserID != userID && d.gigs[c.GigID].UserID != userID {
		return contract.ErrNotParticipant
	}
	return nil
}

func (d *fakeDirectory) ContractParties(_ context.Context, contractID uuid.UUID) (uuid.UUID, uuid.UUID, error) {
	c, ok := d.contracts[contractID]
	if !ok {
		return uuid.Nil, uuid.Nil, contract.ErrContractNotFound
	}
	return c.UserID, d.gigs[c.GigID].UserID, nil
}

func (d *fakeDirectory) GetContractsForUser(_ context.Context, userID uuid.UUID) ([]*models.Contract, error) {
	var out []*models.Contract
	for _, c := range d.contracts {
		if c.UserID == userID || d.gigs[c.GigID].UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (d *fakeDirectory) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*models.Gig, error) {
	var out []*models.Gig
	for _, id := range ids {
		if g, ok := d.gigs[id]; ok {
			out = append(out, g)
		}
	}
	return out, nil
}

func (d *fakeDirectory) GetUsersByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.User, error) {
	out := make(map[uuid.UUID]*models.User)
	for _, id := range ids {
		if u, ok := d.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

type capturedEvent struct {
	topic string
	key   string
	value []byte
}

type fakePublisher struct {
	events []capturedEvent
}

func (p *fakePublisher) Publish(topic, key string, value []byte) error {
	p.events = append(p.events, capturedEvent{topic: topic, key: key, value: value})
	return nil
}

func newTestService(dir *fakeDirectory, repo *fakeChatRepo, events EventPublisher) ChatService {
	return NewChatService(repo, dir, dir, dir, nil, events, slog.Default())
}

func TestInsertPublishesEvent(t *testing.T) {
	ctx := context.Background()
	dir, repo := newFakeDirectory(), newFakeChatRepo()
	client, freelancer := dir.addUser("client"), dir.addUser("freelancer")
	c := dir.addContract(client, freelancer, models.ContractAccepted)

	pub := &fakePublisher{}
	svc := newTestService(dir, repo, pub)

	stored, err := svc.Insert(ctx, c.ID, client, "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.ID == uuid.Nil || stored.SenderID != client || stored.Content != "hello" {
		t.Fatalf("stored = %+v", stored)
	}
	if _, ok := repo.messages[stored.ID]; !ok {
		t.Fatal("message not persisted")
	}

	if len(pub.events) != 1 {
		t.Fatalf("published %d events, want 1", len(pub.events))
	}
	ev := pub.events[0]
	if ev.topic != MessageCreatedTopic {
		t.Fatalf("topic = %q", ev.topic)
	}
	if ev.key != c.ID.String() {
		t.Fatalf("key = %q, want contract id", ev.key)
	}
	var payload MessageCreatedEvent
	if err := json.Unmarshal(ev.value, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.MessageID != stored.ID || payload.ContractID != c.ID || payload.SenderID != client {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestInsertWithoutPublisher(t *testing.T) {
	ctx := context.Background()
	dir, repo := newFakeDirectory(), newFakeChatRepo()
	client, freelancer := dir.addUser("client"), dir.addUser("freelancer")
	c := dir.addContract(client, freelancer, models.ContractAccepted)

	svc := newTestService(dir, repo, nil)
	if _, err := svc.Insert(ctx, c.ID, client, "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGetMessages(t *testing.T) {
	ctx := context.Background()
	dir, repo := newFakeDirectory(), newFakeChatRepo()
	client, freelancer := dir.addUser("client"), dir.addUser("freelancer")
	c := dir.addContract(client, freelancer, models.ContractAccepted)
	svc := newTestService(dir, repo, nil)

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		repo.Insert(ctx, &models.Message{
			ID:         uuid.New(),
			ContractID: c.ID,
			SenderID:   client,
			Content:    "msg",
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		})
	}

	t.Run("newest first with limit", func(t *testing.T) {
		limit := 3
		got, err := svc.GetMessages(ctx, c.ID, client, &models.MessageQuery{Limit: &limit})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("got %d messages, want 3", len(got))
		}
		for i := 1; i < len(got); i++ {
			if got[i].CreatedAt.After(got[i-1].CreatedAt) {
				t.Fatal("messages not in newest-first order")
			}
		}
	})

	t.Run("cursor continues past first page", func(t *testing.T) {
		limit := 3
		first, err := svc.GetMessages(ctx, c.ID, client, &models.MessageQuery{Limit: &limit})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		last := first[len(first)-1]
		second, err := svc.GetMessages(ctx, c.ID, client, &models.MessageQuery{
			Limit:           &limit,
			CursorCreatedAt: &last.CreatedAt,
			CursorID:        &last.ID,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(second) != 2 {
			t.Fatalf("second page has %d messages, want 2", len(second))
		}
		for _, m := range second {
			if !m.CreatedAt.Before(last.CreatedAt) {
				t.Fatalf("second page message %s not older than cursor", m.ID)
			}
		}
	})

	t.Run("stranger rejected", func(t *testing.T) {
		_, err := svc.GetMessages(ctx, c.ID, uuid.New(), &models.MessageQuery{})
		if !errors.Is(err, contract.ErrNotParticipant) {
			t.Fatalf("err = %v, want ErrNotParticipant", err)
		}
	})
}

func TestMarkMessageRead(t *testing.T) {
	ctx := context.Background()
	dir, repo := newFakeDirectory(), newFakeChatRepo()
	client, freelancer := dir.addUser("client"), dir.addUser("freelancer")
	c := dir.addContract(client, freelancer, models.ContractAccepted)
	svc := newTestService(dir, repo, nil)

	msg := &models.Message{ID: uuid.New(), ContractID: c.ID, SenderID: client, Content: "hi", CreatedAt: time.Now().UTC()}
	repo.Insert(ctx, msg)

	t.Run("sender cannot read own message", func(t *testing.T) {
		_, err := svc.MarkMessageRead(ctx, msg.ID, client)
		if !errors.Is(err, ErrOwnMessageRead) {
			t.Fatalf("err = %v, want ErrOwnMessageRead", err)
		}
	})

	t.Run("recipient marks read", func(t *testing.T) {
		got, err := svc.MarkMessageRead(ctx, msg.ID, freelancer)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got.IsRead {
			t.Fatal("message not marked read")
		}
	})

	t.Run("unknown message", func(t *testing.T) {
		_, err := svc.MarkMessageRead(ctx, uuid.New(), freelancer)
		if !errors.Is(err, ErrMessageNotFound) {
			t.Fatalf("err = %v, want ErrMessageNotFound", err)
		}
	})
}

func TestMarkAllRead(t *testing.T) {
	ctx := context.Background()
	dir, repo := newFakeDirectory(), newFakeChatRepo()
	client, freelancer := dir.addUser("client"), dir.addUser("freelancer")
	c := dir.addContract(client, freelancer, models.ContractAccepted)
	svc := newTestService(dir, repo, nil)

	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		repo.Insert(ctx, &models.Message{ID: uuid.New(), ContractID: c.ID, SenderID: client, Content: "hi", CreatedAt: now})
	}
	// The reader's own message must not count.
	repo.Insert(ctx, &models.Message{ID: uuid.New(), ContractID: c.ID, SenderID: freelancer, Content: "yo", CreatedAt: now})

	n, err := svc.MarkAllRead(ctx, c.ID, freelancer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Fatalf("marked %d messages, want 3", n)
	}

	n, err = svc.MarkAllRead(ctx, c.ID, freelancer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Fatalf("second pass marked %d messages, want 0", n)
	}
}

func TestGetConversations(t *testing.T) {
	ctx := context.Background()
	dir, repo := newFakeDirectory(), newFakeChatRepo()
	me := dir.addUser("me")
	alice := dir.addUser("alice")
	bob := dir.addUser("bob")
	carol := dir.addUser("carol")

	// Me as client of alice's gig, me as freelancer for bob, and a pending
	// contract with carol that must not show up.
	withAlice := dir.addContract(me, alice, models.ContractAccepted)
	withBob := dir.addContract(bob, me, models.ContractAccepted)
	dir.addContract(me, carol, models.ContractPending)

	now := time.Now().UTC()
	repo.Insert(ctx, &models.Message{ID: uuid.New(), ContractID: withAlice.ID, SenderID: alice, Content: "older", CreatedAt: now.Add(-time.Hour)})
	repo.Insert(ctx, &models.Message{ID: uuid.New(), ContractID: withBob.ID, SenderID: bob, Content: "newer", CreatedAt: now})
	repo.Insert(ctx, &models.Message{ID: uuid.New(), ContractID: withBob.ID, SenderID: me, Content: "mine", CreatedAt: now.Add(-time.Minute)})

	svc := newTestService(dir, repo, nil)
	got, err := svc.GetConversations(ctx, me)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d conversations, want 2", len(got))
	}

	if got[0].ContractID != withBob.ID {
		t.Fatalf("first conversation = %s, want the one with the newest message", got[0].ContractID)
	}
	if got[0].OtherUserID != bob {
		t.Fatalf("other party = %s, want bob", got[0].OtherUserID)
	}
	if got[0].OtherUserName == nil || *got[0].OtherUserName != "bob" {
		t.Fatalf("other party name = %v", got[0].OtherUserName)
	}
	if got[0].LastMessage == nil || *got[0].LastMessage != "newer" {
		t.Fatalf("last message = %v", got[0].LastMessage)
	}
	if got[0].UnreadCount != 1 {
		t.Fatalf("unread = %d, want 1", got[0].UnreadCount)
	}

	if got[1].ContractID != withAlice.ID || got[1].OtherUserID != alice {
		t.Fatalf("second conversation = %+v", got[1])
	}
}
