package registry

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/ashchv/grubswipe/internal/model"
	"github.com/ashchv/grubswipe/internal/room"
)

var ErrNoFreeCodes = errors.New("no available room codes")

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLen      = 4
	allocRetries = 3

	// reclaimGrace covers the window between a join being admitted here
	// and the member's socket showing up in the transport counts. Within
	// it, a room that still has ledger members is not reclaimed on a
	// zero connection count.
	reclaimGrace = time.Minute
)

// ConnCounter reports how many live transport connections a room has.
// Reclamation trusts it over the registry's own bookkeeping: a disconnect
// notification can be missed, the transport's view cannot.
type ConnCounter interface {
	LiveMembers(id model.RoomID) int
}

// CodeReserver owns the set of codes already handed out. Reserve must be
// atomic so two concurrent allocations cannot claim the same code.
//
//go:generate mockery --name=CodeReserver --output=./mocks/reserver --filename=reserver.go
type CodeReserver interface {
	Reserve(ctx context.Context, id model.RoomID) (bool, error)
	Release(ctx context.Context, id model.RoomID) error
}

// FetchFunc produces the candidate list for a new room. It may block on
// network I/O for seconds; the registry runs it outside its lock. The
// bool result marks an upstream rate limit (room opens degraded).
type FetchFunc func(ctx context.Context) ([]model.Restaurant, bool, error)

// entry is either a live room or a creation in flight. ready is closed
// once rm is set, so concurrent joiners for the same identifier queue
// behind a single fetch and a single shuffle.
type entry struct {
	ready chan struct{}
	rm    *room.Room

	// Last time a join was admitted, guarded by the registry lock.
	touched time.Time
}

type Registry struct {
	mu       sync.Mutex
	rooms    map[model.RoomID]*entry
	reserver CodeReserver
}

func New(reserver CodeReserver) *Registry {
	return &Registry{
		rooms:    make(map[model.RoomID]*entry),
		reserver: reserver,
	}
}

// Allocate hands out a code that collides with no live room and no other
// allocation. Check-then-reserve, with the reserve step atomic; retries a
// few times before giving up, like any short-code scheme must.
func (r *Registry) Allocate(ctx context.Context) (model.RoomID, error) {
	for attempt := 0; attempt < allocRetries; attempt++ {
		id := buildCode()

		r.mu.Lock()
		_, live := r.rooms[id]
		r.mu.Unlock()
		if live {
			continue
		}

		ok, err := r.reserver.Reserve(ctx, id)
		if err != nil {
			return model.EmptyRoomID, err
		}
		if ok {
			return id, nil
		}
	}
	return model.EmptyRoomID, ErrNoFreeCodes
}

func buildCode() model.RoomID {
	var builder strings.Builder
	builder.Grow(codeLen)
	for i := 0; i < codeLen; i++ {
		builder.WriteByte(codeAlphabet[rand.Intn(len(codeAlphabet))])
	}
	return model.RoomID(builder.String())
}

// Exists reports whether the identifier maps to a room that the transport
// still considers populated. A creation in flight counts as live.
func (r *Registry) Exists(id model.RoomID, conns ConnCounter) bool {
	r.mu.Lock()
	e, ok := r.rooms[id]
	r.mu.Unlock()
	if !ok {
		return false
	}
	select {
	case <-e.ready:
	default:
		return true
	}
	return conns.LiveMembers(id) > 0
}

// JoinOrCreate resolves the identifier to its room, creating it when it
// is unknown. The first caller inserts a pending entry and runs fetch;
// everyone else waits on that entry, so one identifier never gets two
// fetches or two shuffle orders. A failed fetch still yields a room, just
// an empty one flagged limited, rather than hanging the join.
func (r *Registry) JoinOrCreate(ctx context.Context, id model.RoomID, member string, fetch FetchFunc) (*room.Room, bool, error) {
	r.mu.Lock()
	if e, ok := r.rooms[id]; ok {
		e.touched = time.Now()
		r.mu.Unlock()
		select {
		case <-e.ready:
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
		e.rm.Join(member)
		return e.rm, false, nil
	}

	e := &entry{ready: make(chan struct{}), touched: time.Now()}
	r.rooms[id] = e
	r.mu.Unlock()

	restaurants, limited, err := fetch(ctx)
	if err != nil {
		restaurants, limited = nil, true
	}
	e.rm = room.New(id, member, restaurants, limited)
	close(e.ready)
	return e.rm, true, nil
}

// Lookup returns the room for id, if its creation has completed.
func (r *Registry) Lookup(id model.RoomID) (*room.Room, bool) {
	r.mu.Lock()
	e, ok := r.rooms[id]
	r.mu.Unlock()
	if !ok {
		return nil, false
	}
	select {
	case <-e.ready:
		return e.rm, true
	default:
		return nil, false
	}
}

// Leave removes the member's votes-denominator entry from the room. The
// room itself is reclaimed by Reconcile, not here.
func (r *Registry) Leave(id model.RoomID, member string) {
	if rm, ok := r.Lookup(id); ok {
		rm.Leave(member)
	}
}

// Reconcile drops every room whose live connection count has reached zero
// and releases its reserved code. Pending creations are skipped. A room
// that still has ledger members keeps a short grace window: a member can
// be admitted moments before their socket is bound, and a concurrent
// disconnect elsewhere must not reclaim the room under them. A room that
// emptied through leaves goes at once.
func (r *Registry) Reconcile(ctx context.Context, conns ConnCounter) {
	now := time.Now()

	r.mu.Lock()
	var dead []model.RoomID
	for id, e := range r.rooms {
		select {
		case <-e.ready:
		default:
			continue
		}
		if conns.LiveMembers(id) > 0 {
			continue
		}
		if e.rm.MemberCount() > 0 && now.Sub(e.touched) < reclaimGrace {
			continue
		}
		dead = append(dead, id)
		delete(r.rooms, id)
	}
	r.mu.Unlock()

	for _, id := range dead {
		_ = r.reserver.Release(ctx, id)
	}
}
