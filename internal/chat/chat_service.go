package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"gigwork-service/internal/cache"
	"gigwork-service/internal/contract"
	"gigwork-service/internal/models"
	"gigwork-service/internal/ws"

	"github.com/google/uuid"
)

var (
	ErrMessageNotFound = errors.New("message not found")
	ErrOwnMessageRead  = errors.New("you cannot mark your own message as read")
)

// MessageCreatedTopic receives one event per persisted chat message, for
// downstream consumers such as notification workers.
const MessageCreatedTopic = "chat.message.created"

// MessageCreatedEvent is the payload published to MessageCreatedTopic.
type MessageCreatedEvent struct {
	MessageID  uuid.UUID `json:"message_id"`
	ContractID uuid.UUID `json:"contract_id"`
	SenderID   uuid.UUID `json:"sender_id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// EventPublisher abstracts the message broker.
type EventPublisher interface {
	Publish(topic, key string, value []byte) error
}

// ContractDirectory is the slice of the contract service the chat layer
// needs: the chat gate, party resolution, and the user's contract list.
type ContractDirectory interface {
	AuthorizeChat(ctx context.Context, contractID, userID uuid.UUID) error
	ContractParties(ctx context.Context, contractID uuid.UUID) (clientID, freelancerID uuid.UUID, err error)
	GetContractsForUser(ctx context.Context, userID uuid.UUID) ([]*models.Contract, error)
}

// GigDirectory resolves gig ownership for conversation assembly.
type GigDirectory interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Gig, error)
}

// UserDirectory resolves display names for conversation summaries.
type UserDirectory interface {
	GetUsersByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.User, error)
}

type ChatService interface {
	// Insert and MarkRead are the durable half of the websocket session.
	Insert(ctx context.Context, contractID, senderID uuid.UUID, content string) (ws.StoredMessage, error)
	MarkRead(ctx context.Context, messageID uuid.UUID) error

	GetMessages(ctx context.Context, contractID, userID uuid.UUID, query *models.MessageQuery) ([]models.MessageResponse, error)
	MarkMessageRead(ctx context.Context, messageID, userID uuid.UUID) (*models.MessageResponse, error)
	MarkAllRead(ctx context.Context, contractID, userID uuid.UUID) (int64, error)
	GetConversations(ctx context.Context, userID uuid.UUID) ([]models.ConversationSummary, error)
}

type chatService struct {
	repo      ChatRepository
	contracts ContractDirectory
	gigs      GigDirectory
	users     UserDirectory
	cache     *cache.Cache
	events    EventPublisher
	logger    *slog.Logger
}

func NewChatService(repo ChatRepository, contracts ContractDirectory, gigs GigDirectory, users UserDirectory, c *cache.Cache, events EventPublisher, logger *slog.Logger) ChatService {
	return &chatService{
		repo:      repo,
		contracts: contracts,
		gigs:      gigs,
		users:     users,
		cache:     c,
		events:    events,
		logger:    logger,
	}
}

func (s *chatService) Insert(ctx context.Context, contractID, senderID uuid.UUID, content string) (ws.StoredMessage, error) {
	msg := &models.Message{
		ID:         uuid.New(),
		ContractID: contractID,
		SenderID:   senderID,
		Content:    content,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, msg); err != nil {
		return ws.StoredMessage{}, err
	}

	s.invalidateMessageCaches(ctx, contractID)
	s.publishMessageCreated(msg)

	return ws.StoredMessage{
		ID:        msg.ID,
		SenderID:  msg.SenderID,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}, nil
}

func (s *chatService) MarkRead(ctx context.Context, messageID uuid.UUID) error {
	msg, err := s.repo.MarkRead(ctx, messageID)
	if err != nil {
		return err
	}
	if msg == nil {
		return ErrMessageNotFound
	}
	s.invalidateConversationCaches(ctx, msg.ContractID)
	return nil
}

func (s *chatService) GetMessages(ctx context.Context, contractID, userID uuid.UUID, query *models.MessageQuery) ([]models.MessageResponse, error) {
	if err := s.requireParty(ctx, contractID, userID); err != nil {
		return nil, err
	}

	limit := query.PageLimit()
	cursor := "start"
	if query.CursorCreatedAt != nil && query.CursorID != nil {
		cursor = fmt.Sprintf("c%s:%s", query.CursorCreatedAt.UTC().Format(time.RFC3339Nano), query.CursorID)
	}
	key := cache.MessagesKey(contractID, fmt.Sprintf("%d:%s", limit, cursor))

	if s.cache != nil {
		var cached []models.MessageResponse
		if ok, err := s.cache.Get(ctx, key, &cached); err != nil {
			s.logger.Warn("message cache read failed", "key", key, "error", err)
		} else if ok {
			return cached, nil
		}
	}

	msgs, err := s.repo.FindByContract(ctx, contractID, limit, query.CursorCreatedAt, query.CursorID)
	if err != nil {
		return nil, err
	}
	out := make([]models.MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.ToResponse())
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, out, cache.MessagesTTL); err != nil {
			s.logger.Warn("message cache write failed", "key", key, "error", err)
		}
	}
	return out, nil
}

func (s *chatService) MarkMessageRead(ctx context.Context, messageID, userID uuid.UUID) (*models.MessageResponse, error) {
	msg, err := s.repo.FindByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, ErrMessageNotFound
	}

	if err := s.requireParty(ctx, msg.ContractID, userID); err != nil {
		return nil, err
	}
	if msg.SenderID == userID {
		return nil, ErrOwnMessageRead
	}

	updated, err := s.repo.MarkRead(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrMessageNotFound
	}

	s.invalidateConversationCaches(ctx, msg.ContractID)
	resp := updated.ToResponse()
	return &resp, nil
}

func (s *chatService) MarkAllRead(ctx context.Context, contractID, userID uuid.UUID) (int64, error) {
	if err := s.requireParty(ctx, contractID, userID); err != nil {
		return 0, err
	}
	n, err := s.repo.MarkAllRead(ctx, contractID, userID)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.invalidateConversationCaches(ctx, contractID)
	}
	return n, nil
}

// GetConversations lists the user's accepted contracts with the other
// party, the newest message, and the unread count, newest activity first.
func (s *chatService) GetConversations(ctx context.Context, userID uuid.UUID) ([]models.ConversationSummary, error) {
	key := cache.ConversationsKey(userID)
	if s.cache != nil {
		var cached []models.ConversationSummary
		if ok, err := s.cache.Get(ctx, key, &cached); err != nil {
			s.logger.Warn("conversations cache read failed", "key", key, "error", err)
		} else if ok {
			return cached, nil
		}
	}

	contracts, err := s.contracts.GetContractsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	accepted := contracts[:0:0]
	for _, c := range contracts {
		if c.Status == models.ContractAccepted {
			accepted = append(accepted, c)
		}
	}

	gigIDs := make([]uuid.UUID, 0, len(accepted))
	seenGigs := make(map[uuid.UUID]bool, len(accepted))
	for _, c := range accepted {
		if !seenGigs[c.GigID] {
			seenGigs[c.GigID] = true
			gigIDs = append(gigIDs, c.GigID)
		}
	}
	gigs, err := s.gigs.FindByIDs(ctx, gigIDs)
	if err != nil {
		return nil, err
	}
	gigOwner := make(map[uuid.UUID]uuid.UUID, len(gigs))
	for _, g := range gigs {
		gigOwner[g.ID] = g.UserID
	}

	otherIDs := make([]uuid.UUID, 0, len(accepted))
	seenUsers := make(map[uuid.UUID]bool, len(accepted))
	for _, c := range accepted {
		other, ok := s.otherParty(c, userID, gigOwner)
		if ok && !seenUsers[other] {
			seenUsers[other] = true
			otherIDs = append(otherIDs, other)
		}
	}
	users, err := s.users.GetUsersByIDs(ctx, otherIDs)
	if err != nil {
		return nil, err
	}

	contractIDs := make([]uuid.UUID, 0, len(accepted))
	for _, c := range accepted {
		contractIDs = append(contractIDs, c.ID)
	}
	latest, err := s.repo.LatestForContracts(ctx, contractIDs)
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.CountUnreadForContracts(ctx, contractIDs, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.ConversationSummary, 0, len(accepted))
	for _, c := range accepted {
		other, ok := s.otherParty(c, userID, gigOwner)
		if !ok {
			continue
		}

		summary := models.ConversationSummary{
			ContractID:  c.ID,
			OtherUserID: other,
			UnreadCount: unread[c.ID],
		}
		if u, ok := users[other]; ok {
			summary.OtherUserName = u.DisplayName
		}
		if m, ok := latest[c.ID]; ok {
			summary.LastMessage = &m.Content
			summary.LastMessageAt = &m.CreatedAt
		}
		summaries = append(summaries, summary)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		var ti, tj time.Time
		if summaries[i].LastMessageAt != nil {
			ti = *summaries[i].LastMessageAt
		}
		if summaries[j].LastMessageAt != nil {
			tj = *summaries[j].LastMessageAt
		}
		return ti.After(tj)
	})

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, summaries, cache.ConversationsTTL); err != nil {
			s.logger.Warn("conversations cache write failed", "key", key, "error", err)
		}
	}
	return summaries, nil
}

// otherParty returns the counterpart of userID on the contract: the gig
// owner when the user is the client, the client otherwise.
func (s *chatService) otherParty(c *models.Contract, userID uuid.UUID, gigOwner map[uuid.UUID]uuid.UUID) (uuid.UUID, bool) {
	if c.UserID == userID {
		owner, ok := gigOwner[c.GigID]
		return owner, ok
	}
	return c.UserID, true
}

func (s *chatService) requireParty(ctx context.Context, contractID, userID uuid.UUID) error {
	clientID, freelancerID, err := s.contracts.ContractParties(ctx, contractID)
	if err != nil {
		return err
	}
	if userID != clientID && userID != freelancerID {
		return contract.ErrNotParticipant
	}
	return nil
}

func (s *chatService) publishMessageCreated(msg *models.Message) {
	if s.events == nil {
		return
	}
	payload, err := json.Marshal(MessageCreatedEvent{
		MessageID:  msg.ID,
		ContractID: msg.ContractID,
		SenderID:   msg.SenderID,
		Content:    msg.Content,
		CreatedAt:  msg.CreatedAt,
	})
	if err != nil {
		s.logger.Error("failed to encode message event", "message_id", msg.ID, "error", err)
		return
	}
	if err := s.events.Publish(MessageCreatedTopic, msg.ContractID.String(), payload); err != nil {
		s.logger.Warn("failed to publish message event", "message_id", msg.ID, "error", err)
	}
}

func (s *chatService) invalidateMessageCaches(ctx context.Context, contractID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, cache.MessagesPattern(contractID)); err != nil {
		s.logger.Warn("message cache invalidation failed", "contract_id", contractID, "error", err)
	}
	s.invalidateConversationCaches(ctx, contractID)
}

// invalidateConversationCaches drops both parties' conversation lists.
func (s *chatService) invalidateConversationCaches(ctx context.Context, contractID uuid.UUID) {
	if s.cache == nil {
		return
	}
	clientID, freelancerID, err := s.contracts.ContractParties(ctx, contractID)
	if err != nil {
		s.logger.Warn("could not resolve contract parties for cache invalidation",
			"contract_id", contractID, "error", err)
		return
	}
	if err := s.cache.Delete(ctx, cache.ConversationsKey(clientID), cache.ConversationsKey(freelancerID)); err != nil {
		s.logger.Warn("conversations cache invalidation failed", "contract_id", contractID, "error", err)
	}
}
