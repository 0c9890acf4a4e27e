// Package collab реализует канал присутствия: рассылку эфемерных событий
// редактирования участникам, открывшим один и тот же файл. Доставка
// best-effort, не более одного раза, без порядка и без персистентности;
// никакого разрешения конфликтов — у получателя побеждает последняя
// пришедшая рассылка.
package collab

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"workspace-server/internal/model"
)

// sendBuffer размер буфера исходящих событий клиента; при переполнении
// события отбрасываются
const sendBuffer = 64

// Hub держит комнаты по файлам и раздаёт события участникам
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]bool
}

// Client один подключённый участник сессии редактирования
type Client struct {
	hub      *Hub
	fileID   string
	userID   string
	userName string

	mu       sync.Mutex
	cursor   int
	lastSeen time.Time

	send chan Event
	once sync.Once
}

// NewHub создаёт пустой хаб
func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[*Client]bool),
	}
}

// Join подключает участника к комнате файла. Новому участнику отправляется
// полный список активных, остальным — user-joined.
func (h *Hub) Join(fileID string, userID uuid.UUID, userName string) *Client {
	c := &Client{
		hub:      h,
		fileID:   fileID,
		userID:   userID.String(),
		userName: userName,
		lastSeen: time.Now(),
		send:     make(chan Event, sendBuffer),
	}

	h.mu.Lock()
	room := h.rooms[fileID]
	if room == nil {
		room = make(map[*Client]bool)
		h.rooms[fileID] = room
	}
	room[c] = true
	h.mu.Unlock()

	// Полный состав — только подключившемуся
	c.deliver(Event{
		Type:   EventActiveUsers,
		FileID: fileID,
		Users:  h.Roster(fileID),
	})

	h.broadcast(fileID, Event{
		Type:     EventUserJoined,
		FileID:   fileID,
		UserID:   c.userID,
		UserName: c.userName,
	}, c)

	log.Printf("collab: user %s joined file %s", c.userID, fileID)
	return c
}

// Leave отключает участника: убирает из комнаты и оповещает остальных.
// Повторный вызов безопасен.
func (h *Hub) Leave(c *Client) {
	c.once.Do(func() {
		h.mu.Lock()
		if room, ok := h.rooms[c.fileID]; ok {
			delete(room, c)
			if len(room) == 0 {
				delete(h.rooms, c.fileID)
			}
		}
		h.mu.Unlock()
		close(c.send)

		h.broadcast(c.fileID, Event{
			Type:   EventUserLeft,
			FileID: c.fileID,
			UserID: c.userID,
		}, c)

		log.Printf("collab: user %s left file %s", c.userID, c.fileID)
	})
}

// Handle обрабатывает входящее событие участника. События веером уходят
// остальным в комнате; отправителю никогда не возвращаются.
func (h *Hub) Handle(c *Client, ev Event) {
	c.mu.Lock()
	c.lastSeen = time.Now()
	c.mu.Unlock()

	switch ev.Type {
	case EventContentChange:
		h.broadcast(c.fileID, Event{
			Type:    EventContentUpdated,
			FileID:  c.fileID,
			UserID:  c.userID,
			Content: ev.Content,
		}, c)
	case EventCursorMove:
		c.mu.Lock()
		c.cursor = ev.Position
		c.mu.Unlock()
		h.broadcast(c.fileID, Event{
			Type:     EventCursorUpdated,
			FileID:   c.fileID,
			UserID:   c.userID,
			UserName: c.userName,
			Position: ev.Position,
		}, c)
	case EventTyping:
		h.broadcast(c.fileID, Event{
			Type:     EventTyping,
			FileID:   c.fileID,
			UserID:   c.userID,
			UserName: c.userName,
			IsTyping: ev.IsTyping,
		}, c)
	case EventLeaveFile:
		h.Leave(c)
	}
}

// Roster текущий состав комнаты файла
func (h *Hub) Roster(fileID string) []model.FileCollaborator {
	h.mu.RLock()
	defer h.mu.RUnlock()

	room := h.rooms[fileID]
	roster := make([]model.FileCollaborator, 0, len(room))
	for c := range room {
		uid, err := uuid.Parse(c.userID)
		if err != nil {
			continue
		}
		fid, _ := uuid.Parse(fileID)
		c.mu.Lock()
		roster = append(roster, model.FileCollaborator{
			FileID:    fid,
			UserID:    uid,
			UserName:  c.userName,
			CursorPos: c.cursor,
			IsActive:  true,
			LastSeen:  c.lastSeen,
		})
		c.mu.Unlock()
	}
	return roster
}

// broadcast рассылает событие всем в комнате, кроме except
func (h *Hub) broadcast(fileID string, ev Event, except *Client) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.rooms[fileID] {
		if c == except {
			continue
		}
		c.deliver(ev)
	}
}

// deliver неблокирующая отправка: при переполненном буфере событие
// отбрасывается
func (c *Client) deliver(ev Event) {
	select {
	case c.send <- ev:
	default:
		log.Printf("collab: dropping %s event for slow client %s", ev.Type, c.userID)
	}
}

// Events канал исходящих событий клиента; закрывается при Leave
func (c *Client) Events() <-chan Event {
	return c.send
}
