package model

import "strings"

type RoomID string

const EmptyRoomID RoomID = ""

// Room codes are case-insensitive on the wire; everything past the
// delivery boundary works with the normalized form.
func NormalizeRoomID(raw string) RoomID {
	return RoomID(strings.ToUpper(strings.TrimSpace(raw)))
}

type Location struct {
	Latitude  float64
	Longitude float64
}
