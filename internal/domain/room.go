// Package domain contains entities without logic, just meta-data
package domain

import "errors"

const MaxRoomNameLen = 64

var (
	ErrRoomNameEmpty   = errors.New("room name empty")
	ErrRoomNameTooLong = errors.New("room name too long")
)

type RoomName string

// ParseRoomName validates a room key taken from a request path.
func ParseRoomName(raw string) (RoomName, error) {
	if len(raw) == 0 {
		return "", ErrRoomNameEmpty
	}
	if len(raw) > MaxRoomNameLen {
		return "", ErrRoomNameTooLong
	}
	return RoomName(raw), nil
}

type RoomInfo struct {
	Name        RoomName `json:"name"`
	MemberCount int      `json:"client_count"`
}
