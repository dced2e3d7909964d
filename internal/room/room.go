package room

import (
	"errors"
	"math/rand"
	"sync"

	"github.com/ashchv/grubswipe/internal/ledger"
	"github.com/ashchv/grubswipe/internal/model"
)

var (
	ErrAlreadyUpgraded = errors.New("details already applied")
	ErrUpgradeMismatch = errors.New("enriched list does not match room order")
)

// A lone member liking everything is not a match.
const matchThreshold = 2

// Room owns one shuffled restaurant snapshot, the vote ledger and the
// match bookkeeping for a single session. Every operation runs under mu,
// so a swipe and its match evaluation form one atomic unit.
type Room struct {
	id model.RoomID

	mu           sync.Mutex
	restaurants  []model.Restaurant
	detailsReady bool
	limited      bool
	ledger       *ledger.Ledger
	fired        []bool
}

type SwipeResult struct {
	Tallies []model.Tally
	Match   *model.Restaurant
}

// New shuffles the candidate list exactly once and seeds the ledger with
// the creating member. The order never changes afterwards; limited marks
// a room whose list is empty or short because the upstream source was
// rate limited at creation time.
func New(id model.RoomID, firstMember string, restaurants []model.Restaurant, limited bool) *Room {
	shuffled := make([]model.Restaurant, len(restaurants))
	copy(shuffled, restaurants)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	r := &Room{
		id:          id,
		restaurants: shuffled,
		limited:     limited,
		ledger:      ledger.New(len(shuffled)),
		fired:       make([]bool, len(shuffled)),
	}
	r.ledger.AddMember(firstMember)
	return r
}

func (r *Room) ID() model.RoomID {
	return r.id
}

// Join adds a member with an all-unvoted vector. A late joiner sees the
// room's existing order and tallies, never a replay of history.
func (r *Room) Join(member string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ledger.AddMember(member)
}

// Leave removes the member and reports whether the room is now empty and
// eligible for reclamation. Cast votes are retained (see ledger).
func (r *Room) Leave(member string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ledger.RemoveMember(member)
	return r.ledger.MemberCount() == 0
}

// Swipe records the vote and evaluates the match predicate inside the
// same critical section. A match fires at most once per item: the fired
// bit stays set until an undo drops the like count again, so neither a
// duplicate swipe nor a later membership change can re-fire it.
func (r *Room) Swipe(member string, index int, dir model.Direction) (SwipeResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tally, err := r.ledger.RecordSwipe(member, index, dir)
	if err != nil {
		return SwipeResult{}, err
	}

	res := SwipeResult{Tallies: r.ledger.Tallies()}

	members := r.ledger.MemberCount()
	if dir == model.DirectionLike && members >= matchThreshold &&
		tally.Likes == members && !r.fired[index] {
		r.fired[index] = true
		matched := r.restaurants[index]
		res.Match = &matched
	}
	return res, nil
}

// Undo retracts the member's vote at index. It never produces a match,
// but a retracted like reopens match detection for that index.
func (r *Room) Undo(member string, index int) ([]model.Tally, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tally, err := r.ledger.UndoSwipe(member, index)
	if err != nil {
		return nil, err
	}
	if r.fired[index] && tally.Likes < r.ledger.MemberCount() {
		r.fired[index] = false
	}
	return r.ledger.Tallies(), nil
}

// UpgradeRestaurants swaps in the enriched listing once the asynchronous
// pipeline completes. The enriched entry at index i must describe the
// same place as the original, otherwise in-flight vote indices would go
// stale; mismatches are rejected wholesale.
func (r *Room) UpgradeRestaurants(enriched []model.Restaurant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.detailsReady {
		return ErrAlreadyUpgraded
	}
	if len(enriched) != len(r.restaurants) {
		return ErrUpgradeMismatch
	}
	for i := range enriched {
		if enriched[i].PlaceID != r.restaurants[i].PlaceID {
			return ErrUpgradeMismatch
		}
	}

	r.restaurants = append([]model.Restaurant(nil), enriched...)
	r.detailsReady = true
	return nil
}

// Snapshot returns a copy of the current room order plus the
// detailsReady and limited flags.
func (r *Room) Snapshot() ([]model.Restaurant, bool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Restaurant, len(r.restaurants))
	copy(out, r.restaurants)
	return out, r.detailsReady, r.limited
}

func (r *Room) Tallies() []model.Tally {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ledger.Tallies()
}

func (r *Room) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ledger.MemberCount()
}

func (r *Room) HasMember(member string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ledger.HasMember(member)
}
