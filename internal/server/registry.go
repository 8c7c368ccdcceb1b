package server

import (
	"sync"
)

// Registry tracks which live connections are subscribed to which chats. It
// is owned by the ChatServer, starts empty, and is never persisted: after a
// restart clients must reconnect and rejoin.
type Registry struct {
	mu sync.RWMutex
	// rooms maps chat id to the set of subscribed clients. Entries are
	// retained once created so that a room's sendMu stays stable for the
	// lifetime of the process.
	rooms map[int]*roomEntry
	// sessions is the reverse index used on disconnect.
	sessions map[*Client]map[int]struct{}
}

type roomEntry struct {
	// sendMu serializes the append-then-broadcast sequence for this room,
	// so delivery order always matches durable append order. Different
	// rooms are fully independent.
	sendMu  sync.Mutex
	clients map[*Client]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		rooms:    make(map[int]*roomEntry),
		sessions: make(map[*Client]map[int]struct{}),
	}
}

// entry returns the room entry for chatId, creating it if needed.
func (reg *Registry) entry(chatId int) *roomEntry {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	e, ok := reg.rooms[chatId]
	if !ok {
		e = &roomEntry{clients: make(map[*Client]struct{})}
		reg.rooms[chatId] = e
	}
	return e
}

// Subscribe adds c to the chat's client set. It reports whether the
// subscription is new; subscribing twice is a no-op.
func (reg *Registry) Subscribe(chatId int, c *Client) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	e, ok := reg.rooms[chatId]
	if !ok {
		e = &roomEntry{clients: make(map[*Client]struct{})}
		reg.rooms[chatId] = e
	}

	if _, ok := e.clients[c]; ok {
		return false
	}
	e.clients[c] = struct{}{}

	if reg.sessions[c] == nil {
		reg.sessions[c] = make(map[int]struct{})
	}
	reg.sessions[c][chatId] = struct{}{}

	return true
}

// UnsubscribeAll removes c from every chat it joined and returns the number
// of subscriptions dropped.
func (reg *Registry) UnsubscribeAll(c *Client) int {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	chats := reg.sessions[c]
	for chatId := range chats {
		if e, ok := reg.rooms[chatId]; ok {
			delete(e.clients, c)
		}
	}
	delete(reg.sessions, c)

	return len(chats)
}

// MembersOf returns a snapshot of the clients currently subscribed to
// chatId. A broadcast delivers to every client in the snapshot or none.
func (reg *Registry) MembersOf(chatId int) []*Client {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	e, ok := reg.rooms[chatId]
	if !ok {
		return nil
	}

	clients := make([]*Client, 0, len(e.clients))
	for c := range e.clients {
		clients = append(clients, c)
	}
	return clients
}
