package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/stride-app/stride-server/internal/database"
	"github.com/stride-app/stride-server/internal/stats"
	"github.com/stride-app/stride-server/internal/token"
)

// ChatServer is the realtime gateway: it owns the room registry and the set
// of live connections, verifies the credential carried by each event, and
// coordinates the message log with broadcast fan-out.
type ChatServer struct {
	log         *log.Logger
	db          database.StrideRepository
	stats       stats.StatsProvider
	tokens      *token.Manager
	registry    *Registry
	clients     map[*Client]struct{}
	clientsLock sync.Mutex
}

func NewChatServer(logger *log.Logger, db database.StrideRepository, tokens *token.Manager, su stats.StatsProvider) (*ChatServer, error) {
	if tokens == nil {
		return nil, fmt.Errorf("token manager is required")
	}

	cs := &ChatServer{
		log:      logger,
		db:       db,
		stats:    su,
		tokens:   tokens,
		registry: NewRegistry(),
		clients:  make(map[*Client]struct{}),
	}

	for _, metric := range []string{
		stats.ActiveConnections,
		stats.ActiveSubscriptions,
		stats.MessagesSent,
		stats.MessagesDropped,
	} {
		su.RegisterMetric(metric)
	}

	return cs, nil
}

func (cs *ChatServer) RegisterClient(c *Client) {
	cs.clientsLock.Lock()
	defer cs.clientsLock.Unlock()

	cs.clients[c] = struct{}{}
	cs.stats.Incr(stats.ActiveConnections)
}

func (cs *ChatServer) deregisterClient(c *Client) {
	cs.clientsLock.Lock()
	if _, ok := cs.clients[c]; !ok {
		cs.clientsLock.Unlock()
		return
	}
	delete(cs.clients, c)
	cs.clientsLock.Unlock()

	dropped := cs.registry.UnsubscribeAll(c)
	for i := 0; i < dropped; i++ {
		cs.stats.Decr(stats.ActiveSubscriptions)
	}
	cs.stats.Decr(stats.ActiveConnections)
}

// handleJoin processes a join_chat event: verify the credential, check the
// chat exists and the user is a member, subscribe the connection, then
// announce the join to the room's current subscriber set, the joiner
// included.
func (cs *ChatServer) handleJoin(c *Client, ev *ClientEvent) error {
	userId, err := cs.tokens.Verify(ev.Token)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	if _, err := cs.db.GetChat(ev.ChatId); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrChatNotFound
		}
		return fmt.Errorf("get chat: %w", err)
	}

	member, err := cs.db.IsMember(userId, ev.ChatId)
	if err != nil {
		return fmt.Errorf("membership check: %w", err)
	}
	if !member {
		return ErrNotMember
	}

	name := cs.displayName(userId)

	e := cs.registry.entry(ev.ChatId)
	e.sendMu.Lock()
	defer e.sendMu.Unlock()

	if cs.registry.Subscribe(ev.ChatId, c) {
		cs.stats.Incr(stats.ActiveSubscriptions)
	}
	cs.broadcast(ev.ChatId, newJoinedEvent(name))

	return nil
}

// handleSend processes a send_message event. The append must be durable
// before any session observes the message; the room's sendMu keeps delivery
// order identical to append order within the room.
func (cs *ChatServer) handleSend(c *Client, ev *ClientEvent) error {
	userId, err := cs.tokens.Verify(ev.Token)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	if ev.Content == "" {
		return ErrEmptyContent
	}

	member, err := cs.db.IsMember(userId, ev.ChatId)
	if err != nil {
		return fmt.Errorf("membership check: %w", err)
	}
	if !member {
		return ErrNotMember
	}

	name := cs.displayName(userId)

	e := cs.registry.entry(ev.ChatId)
	e.sendMu.Lock()
	defer e.sendMu.Unlock()

	msg, err := cs.db.CreateMessage(ev.ChatId, userId, ev.Content)
	if err != nil {
		return fmt.Errorf("save message: %w", err)
	}
	cs.stats.Incr(stats.MessagesSent)

	cs.broadcast(ev.ChatId, newMessageEvent(msg, name))

	return nil
}

// broadcast delivers ev to every session subscribed to chatId at this
// moment, the originating session included.
func (cs *ChatServer) broadcast(chatId int, ev *ServerEvent) {
	for _, client := range cs.registry.MembersOf(chatId) {
		client.queueEvent(ev)
	}
}

func (cs *ChatServer) displayName(userId int) string {
	name, err := cs.db.DisplayName(userId)
	if err != nil {
		cs.log.Printf("display name for user %d: %v", userId, err)
		return fmt.Sprintf("User %d", userId)
	}
	return name
}

// Shutdown closes every live connection. Durable state is untouched; the
// registry dies with the process.
func (cs *ChatServer) Shutdown(ctx context.Context) error {
	cs.log.Println("closing client connections")

	cs.clientsLock.Lock()
	clients := make([]*Client, 0, len(cs.clients))
	for c := range cs.clients {
		clients = append(clients, c)
	}
	cs.clientsLock.Unlock()

	for _, c := range clients {
		c.stopClient()
		c.conn.Close()
	}

	return ctx.Err()
}
