package app

import (
	"sort"
	"sync"

	"github.com/dkeye/callroom/internal/core"
	"github.com/dkeye/callroom/internal/domain"
	"github.com/dkeye/callroom/internal/metrics"
	"github.com/rs/zerolog/log"
)

// Registry maps room names to their joined connections.
// A room exists only while it has members; a connection is in at most one room.
type Registry struct {
	mu     sync.RWMutex
	rooms  map[domain.RoomName]map[core.SessionID]core.Connection
	roomOf map[core.SessionID]domain.RoomName
}

func NewRegistry() *Registry {
	return &Registry{
		rooms:  make(map[domain.RoomName]map[core.SessionID]core.Connection),
		roomOf: make(map[core.SessionID]domain.RoomName),
	}
}

// Join adds c to the room, creating the room on first join. Joining the same
// room twice is a no-op; joining another room moves c out of the previous one.
func (r *Registry) Join(name domain.RoomName, c core.Connection) error {
	if c.Closed() {
		return core.ErrInvalidState
	}
	sid := c.ID()

	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.roomOf[sid]; ok {
		if prev == name {
			return nil
		}
		r.removeLocked(prev, sid)
		log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(prev)).Msg("moved out of room")
	}

	members, ok := r.rooms[name]
	if !ok {
		members = make(map[core.SessionID]core.Connection)
		r.rooms[name] = members
		metrics.ActiveRooms.Inc()
		log.Info().Str("module", "app.registry").Str("room", string(name)).Msg("room created")
	}
	members[sid] = c
	r.roomOf[sid] = name
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(name)).Int("members", len(members)).Msg("joined")
	return nil
}

// Leave removes c from the room and drops the room once empty. It reports
// whether c was a member; absent rooms and repeated calls are no-ops.
func (r *Registry) Leave(name domain.RoomName, c core.Connection) bool {
	sid := c.ID()
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.roomOf[sid]; !ok || cur != name {
		return false
	}
	r.removeLocked(name, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(name)).Msg("left")
	return true
}

func (r *Registry) removeLocked(name domain.RoomName, sid core.SessionID) {
	delete(r.roomOf, sid)
	members, ok := r.rooms[name]
	if !ok {
		return
	}
	delete(members, sid)
	if len(members) == 0 {
		delete(r.rooms, name)
		metrics.ActiveRooms.Dec()
		log.Info().Str("module", "app.registry").Str("room", string(name)).Msg("room removed")
	}
}

// Members returns a point-in-time copy of the room's members without exclude.
// The caller may iterate it while the registry keeps changing.
func (r *Registry) Members(name domain.RoomName, exclude core.Connection) []core.Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := r.rooms[name]
	out := make([]core.Connection, 0, len(members))
	for sid, c := range members {
		if exclude != nil && sid == exclude.ID() {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (r *Registry) RoomOf(sid core.SessionID) (domain.RoomName, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.roomOf[sid]
	return name, ok
}

func (r *Registry) Room(name domain.RoomName) (domain.RoomInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members, ok := r.rooms[name]
	if !ok {
		return domain.RoomInfo{}, false
	}
	return domain.RoomInfo{Name: name, MemberCount: len(members)}, true
}

func (r *Registry) List() []domain.RoomInfo {
	r.mu.RLock()
	out := make([]domain.RoomInfo, 0, len(r.rooms))
	for name, members := range r.rooms {
		out = append(out, domain.RoomInfo{Name: name, MemberCount: len(members)})
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
