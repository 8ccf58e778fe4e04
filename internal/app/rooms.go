package app

import (
	"sync"

	"github.com/codehuddle/codehuddle/internal/core"
	"github.com/codehuddle/codehuddle/internal/domain"
)

// Directory maps room ids to their live room entries. Rooms are created
// lazily on the first successful join and are independent lockable units;
// the directory lock only guards the map itself.
type Directory struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]*Room
}

func NewDirectory() *Directory {
	return &Directory{rooms: make(map[domain.RoomID]*Room)}
}

func (d *Directory) GetOrCreate(id domain.RoomID) *Room {
	d.mu.RLock()
	room, ok := d.rooms[id]
	d.mu.RUnlock()
	if ok {
		return room
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if room, ok = d.rooms[id]; ok {
		return room
	}
	room = NewRoom(id)
	d.rooms[id] = room
	return room
}

func (d *Directory) Get(id domain.RoomID) (*Room, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	room, ok := d.rooms[id]
	return room, ok
}

func (d *Directory) Remove(id domain.RoomID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.rooms, id)
}

func (d *Directory) All() []*Room {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*Room, 0, len(d.rooms))
	for _, r := range d.rooms {
		out = append(out, r)
	}
	return out
}

// RoomsOf scans for every room the connection is a member of. A connection
// should belong to at most one, but stale multi-membership is tolerated.
func (d *Directory) RoomsOf(id domain.ConnID) []*Room {
	var out []*Room
	for _, r := range d.All() {
		if r.HasMember(id) {
			out = append(out, r)
		}
	}
	return out
}

func (d *Directory) List() []core.RoomInfo {
	all := d.All()
	out := make([]core.RoomInfo, 0, len(all))
	for _, r := range all {
		_, hasHost := r.Host()
		out = append(out, core.RoomInfo{
			RoomID:      r.ID(),
			MemberCount: r.MemberCount(),
			HasHost:     hasHost,
			Pending:     r.PendingCount(),
		})
	}
	return out
}
