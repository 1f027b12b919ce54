package game

import "github.com/google/uuid"

func newGameID() string {
	return uuid.NewString()
}
