package bookingwidget

import "errors"

var (
	ErrNoAdult      = errors.New("bookingwidget: each room needs at least one adult")
	ErrRoomFull     = errors.New("bookingwidget: room occupancy exceeds the per-room limit")
	ErrTooManyRooms = errors.New("bookingwidget: room limit reached")
	ErrNoSuchRoom   = errors.New("bookingwidget: room index out of range")
)

// RoomConfig is one room's occupants as configured in the widget. Nothing
// here reaches the provider until the reservation is submitted.
type RoomConfig struct {
	Adults   int
	Children int
}

// Occupancy is the room's total guest count.
func (r RoomConfig) Occupancy() int {
	return r.Adults + r.Children
}

func validateRoom(r RoomConfig, maxPerRoom int) error {
	if r.Adults < 1 {
		return ErrNoAdult
	}
	if maxPerRoom > 0 && r.Occupancy() > maxPerRoom {
		return ErrRoomFull
	}
	return nil
}
