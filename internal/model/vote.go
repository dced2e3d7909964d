package model

import "time"

type Direction int

const (
	DirectionLike Direction = iota
	DirectionDislike
)

type VoteState int

const (
	Unvoted VoteState = iota
	Liked
	Disliked
)

// Tally is the aggregate like/dislike count for one item index.
type Tally struct {
	Likes    int
	Dislikes int
}

// Match records that every member of a room liked the same restaurant.
type Match struct {
	RoomID     RoomID
	Restaurant Restaurant
	Members    int
	MatchedAt  time.Time
}
