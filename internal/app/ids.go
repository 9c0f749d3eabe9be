package app

import "github.com/google/uuid"

// ComputerSeat is the seat id held by the computer in AI modes.
const ComputerSeat = "computer"

// NewPlayerID returns a fresh player id for cookies and CLI sessions.
func NewPlayerID() string { return uuid.NewString() }

func newGameID() string { return uuid.NewString() }
