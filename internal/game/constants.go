package game

import "time"

// Mission timing
const (
	RoomDuration = 600 * time.Second
	TickRate     = 10 // ticks per second
	TickInterval = time.Second / TickRate
)
