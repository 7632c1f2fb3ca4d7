// Package queue defines the favorites.saved message and the background
// consumer that records it.
package queue

import (
	"fmt"
	"strings"
)

// FavoritesSavedQueue is the durable queue favorites events travel on.
const FavoritesSavedQueue = "favorites.saved"

// FavoritesSavedEvent is published after a user stores one or more favorite
// venues.
type FavoritesSavedEvent struct {
	UserID   uint64   `json:"user_id"`
	Username string   `json:"username"`
	Count    int      `json:"count"`
	Venues   []string `json:"venues"`
	SavedAt  string   `json:"saved_at"`
}

// LogLine renders the event as the single line the consumer appends to
// favorites.log.
func (ev FavoritesSavedEvent) LogLine() string {
	quoted := make([]string, len(ev.Venues))
	for i, v := range ev.Venues {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return fmt.Sprintf("[%s] Favorites saved | user_id=%d | username=%q | count=%d | venues=[%s]\n",
		ev.SavedAt, ev.UserID, ev.Username, ev.Count, strings.Join(quoted, ","))
}
