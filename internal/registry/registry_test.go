package registry

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashchv/grubswipe/internal/model"
)

type fakeReserver struct {
	mu       sync.Mutex
	reserved map[model.RoomID]bool
	released []model.RoomID
	rejects  int
	fail     error
}

func newFakeReserver() *fakeReserver {
	return &fakeReserver{reserved: make(map[model.RoomID]bool)}
}

func (f *fakeReserver) Reserve(_ context.Context, id model.RoomID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return false, f.fail
	}
	if f.rejects > 0 {
		f.rejects--
		return false, nil
	}
	if f.reserved[id] {
		return false, nil
	}
	f.reserved[id] = true
	return true, nil
}

func (f *fakeReserver) Release(_ context.Context, id model.RoomID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.reserved, id)
	f.released = append(f.released, id)
	return nil
}

type fakeConns map[model.RoomID]int

func (f fakeConns) LiveMembers(id model.RoomID) int { return f[id] }

func fetchOf(list []model.Restaurant) FetchFunc {
	return func(context.Context) ([]model.Restaurant, bool, error) {
		return list, false, nil
	}
}

func TestAllocateReservesCode(t *testing.T) {
	reserver := newFakeReserver()
	r := New(reserver)

	id, err := r.Allocate(context.Background())
	require.NoError(t, err)
	assert.Len(t, string(id), 4)
	assert.Equal(t, id, model.NormalizeRoomID(string(id)))
	assert.True(t, reserver.reserved[id])
}

func TestAllocateRetriesAfterCollision(t *testing.T) {
	reserver := newFakeReserver()
	reserver.rejects = 2
	r := New(reserver)

	id, err := r.Allocate(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, model.EmptyRoomID, id)
}

func TestAllocateGivesUp(t *testing.T) {
	reserver := newFakeReserver()
	reserver.rejects = allocRetries
	r := New(reserver)

	_, err := r.Allocate(context.Background())
	assert.ErrorIs(t, err, ErrNoFreeCodes)
}

func TestAllocatePropagatesReserverError(t *testing.T) {
	reserver := newFakeReserver()
	reserver.fail = errors.New("conn refused")
	r := New(reserver)

	_, err := r.Allocate(context.Background())
	assert.ErrorIs(t, err, reserver.fail)
}

func TestJoinOrCreateFetchesOnce(t *testing.T) {
	r := New(newFakeReserver())

	var fetches atomic.Int32
	fetch := func(context.Context) ([]model.Restaurant, bool, error) {
		fetches.Add(1)
		return []model.Restaurant{{PlaceID: "p1"}, {PlaceID: "p2"}}, false, nil
	}

	const joiners = 16
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		orders  = make(map[string]bool)
	)
	for i := 0; i < joiners; i++ {
		wg.Add(1)
		go func(member string) {
			defer wg.Done()
			rm, isNew, err := r.JoinOrCreate(context.Background(), "AB12", member, fetch)
			assert.NoError(t, err)
			snap, _, _ := rm.Snapshot()
			key := ""
			for _, c := range snap {
				key += c.PlaceID
			}
			mu.Lock()
			if isNew {
				created++
			}
			orders[key] = true
			mu.Unlock()
		}("member-" + string(rune('a'+i)))
	}
	wg.Wait()

	assert.Equal(t, int32(1), fetches.Load(), "identifier must be fetched exactly once")
	assert.Equal(t, 1, created)
	assert.Len(t, orders, 1, "every joiner must see the same shuffle order")

	rm, ok := r.Lookup("AB12")
	require.True(t, ok)
	assert.Equal(t, joiners, rm.MemberCount())
}

func TestJoinOrCreateDegradesOnFetchError(t *testing.T) {
	r := New(newFakeReserver())

	fetch := func(context.Context) ([]model.Restaurant, bool, error) {
		return nil, false, errors.New("upstream down")
	}

	rm, isNew, err := r.JoinOrCreate(context.Background(), "AB12", "m1", fetch)
	require.NoError(t, err)
	assert.True(t, isNew)

	snap, _, limited := rm.Snapshot()
	assert.Empty(t, snap)
	assert.True(t, limited)
}

func TestJoinOrCreateRespectsContext(t *testing.T) {
	r := New(newFakeReserver())

	blocked := make(chan struct{})
	go func() {
		_, _, _ = r.JoinOrCreate(context.Background(), "AB12", "m1",
			func(ctx context.Context) ([]model.Restaurant, bool, error) {
				<-blocked
				return nil, false, nil
			})
	}()

	// Wait for the pending entry to appear.
	for {
		r.mu.Lock()
		_, ok := r.rooms["AB12"]
		r.mu.Unlock()
		if ok {
			break
		}
		time.Sleep(time.Millisecond)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := r.JoinOrCreate(ctx, "AB12", "m2", fetchOf(nil))
	assert.ErrorIs(t, err, context.Canceled)

	close(blocked)
}

func TestLookupHidesPendingRooms(t *testing.T) {
	r := New(newFakeReserver())

	_, ok := r.Lookup("AB12")
	assert.False(t, ok)

	_, _, err := r.JoinOrCreate(context.Background(), "AB12", "m1", fetchOf(nil))
	require.NoError(t, err)

	rm, ok := r.Lookup("AB12")
	assert.True(t, ok)
	assert.Equal(t, model.RoomID("AB12"), rm.ID())
}

func TestExists(t *testing.T) {
	r := New(newFakeReserver())
	conns := fakeConns{"AB12": 1}

	assert.False(t, r.Exists("AB12", conns))

	_, _, err := r.JoinOrCreate(context.Background(), "AB12", "m1", fetchOf(nil))
	require.NoError(t, err)
	assert.True(t, r.Exists("AB12", conns))

	// Room known but every socket gone: it is no longer joinable.
	assert.False(t, r.Exists("AB12", fakeConns{}))
}

func TestReconcileReclaimsDeadRooms(t *testing.T) {
	reserver := newFakeReserver()
	r := New(reserver)

	_, _, err := r.JoinOrCreate(context.Background(), "AB12", "m1", fetchOf(nil))
	require.NoError(t, err)
	_, _, err = r.JoinOrCreate(context.Background(), "CD34", "m2", fetchOf(nil))
	require.NoError(t, err)
	r.Leave("CD34", "m2")

	r.Reconcile(context.Background(), fakeConns{"AB12": 2})

	_, ok := r.Lookup("AB12")
	assert.True(t, ok)
	_, ok = r.Lookup("CD34")
	assert.False(t, ok)
	assert.Equal(t, []model.RoomID{"CD34"}, reserver.released)
}

func TestReconcileSparesMidJoinRoom(t *testing.T) {
	reserver := newFakeReserver()
	r := New(reserver)

	// Member admitted, socket not yet counted by the transport.
	_, _, err := r.JoinOrCreate(context.Background(), "AB12", "m1",
		fetchOf([]model.Restaurant{{PlaceID: "p1"}}))
	require.NoError(t, err)

	r.Reconcile(context.Background(), fakeConns{})

	rm, ok := r.Lookup("AB12")
	require.True(t, ok, "room with a freshly admitted member must survive reconcile")
	assert.Empty(t, reserver.released)

	// The member's session keeps working after the sweep.
	_, err = rm.Swipe("m1", 0, model.DirectionLike)
	assert.NoError(t, err)
}

func TestReconcileReclaimsAfterGraceExpires(t *testing.T) {
	reserver := newFakeReserver()
	r := New(reserver)

	_, _, err := r.JoinOrCreate(context.Background(), "AB12", "m1", fetchOf(nil))
	require.NoError(t, err)

	// Simulate a missed disconnect: ledger still holds the member, the
	// transport stopped counting them long ago.
	r.mu.Lock()
	r.rooms["AB12"].touched = time.Now().Add(-2 * reclaimGrace)
	r.mu.Unlock()

	r.Reconcile(context.Background(), fakeConns{})

	_, ok := r.Lookup("AB12")
	assert.False(t, ok)
	assert.Equal(t, []model.RoomID{"AB12"}, reserver.released)
}

func TestLeaveUnknownRoomIsNoop(t *testing.T) {
	r := New(newFakeReserver())
	r.Leave("ZZ99", "ghost")
}
