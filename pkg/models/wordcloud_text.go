package models

import "time"

// GlobalWordcloudUser is the user id of the shared cumulative text document,
// used when a word-cloud request carries no user id.
const GlobalWordcloudUser = ""

// WordcloudText is the per-user cumulative free-text document that word
// clouds are rendered from. Text grows by appending up to a configured
// character cap; when the cap is exceeded the oldest prefix is discarded.
type WordcloudText struct {
	UserID    string    `db:"user_id"    json:"user_id"`
	Text      string    `db:"text"       json:"text"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
