package ledger

import (
	"errors"

	"github.com/ashchv/grubswipe/internal/model"
)

var (
	ErrUnknownMember   = errors.New("unknown member")
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Ledger tracks each member's vote state per item index plus the derived
// like/dislike tally. Both views are mutated together, so the tally never
// drifts from the per-member state. The Ledger itself is not safe for
// concurrent use; the owning Room serializes access.
type Ledger struct {
	itemCount int
	votes     map[string][]model.VoteState
	tally     []model.Tally
}

func New(itemCount int) *Ledger {
	return &Ledger{
		itemCount: itemCount,
		votes:     make(map[string][]model.VoteState),
		tally:     make([]model.Tally, itemCount),
	}
}

func (l *Ledger) AddMember(member string) {
	if _, ok := l.votes[member]; ok {
		return
	}
	l.votes[member] = make([]model.VoteState, l.itemCount)
}

// RemoveMember drops the member's vote vector. Tallies stay as they are:
// votes already cast keep counting toward a match, the leaver only stops
// counting toward the member threshold.
func (l *Ledger) RemoveMember(member string) {
	delete(l.votes, member)
}

func (l *Ledger) HasMember(member string) bool {
	_, ok := l.votes[member]
	return ok
}

func (l *Ledger) MemberCount() int {
	return len(l.votes)
}

// RecordSwipe moves the member's state at index from Unvoted to the given
// direction and bumps the matching tally. A repeated swipe on an already
// voted index is ignored, so client retries cannot double-count.
func (l *Ledger) RecordSwipe(member string, index int, dir model.Direction) (model.Tally, error) {
	states, ok := l.votes[member]
	if !ok {
		return model.Tally{}, ErrUnknownMember
	}
	if index < 0 || index >= l.itemCount {
		return model.Tally{}, ErrIndexOutOfRange
	}

	if states[index] == model.Unvoted {
		if dir == model.DirectionLike {
			states[index] = model.Liked
			l.tally[index].Likes++
		} else {
			states[index] = model.Disliked
			l.tally[index].Dislikes++
		}
	}
	return l.tally[index], nil
}

// UndoSwipe returns the member's state at index to Unvoted and decrements
// the tally it contributed to. Undoing an unvoted index is a no-op.
func (l *Ledger) UndoSwipe(member string, index int) (model.Tally, error) {
	states, ok := l.votes[member]
	if !ok {
		return model.Tally{}, ErrUnknownMember
	}
	if index < 0 || index >= l.itemCount {
		return model.Tally{}, ErrIndexOutOfRange
	}

	switch states[index] {
	case model.Liked:
		states[index] = model.Unvoted
		l.tally[index].Likes--
	case model.Disliked:
		states[index] = model.Unvoted
		l.tally[index].Dislikes--
	}
	return l.tally[index], nil
}

func (l *Ledger) LikesAt(index int) int {
	return l.tally[index].Likes
}

// Tallies returns a copy of the aggregate counters for all indices.
func (l *Ledger) Tallies() []model.Tally {
	out := make([]model.Tally, len(l.tally))
	copy(out, l.tally)
	return out
}
