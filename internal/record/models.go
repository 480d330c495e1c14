package record

import "time"

// Record is a stored unit of normalized content. Content is compared by exact
// string equality; ID and CreatedAt are assigned by the store.
type Record struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
