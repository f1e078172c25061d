package dtos

import "time"

type ActivityEntry struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Subject   string    `json:"subject"`
	Status    string    `json:"status"`
	Detail    string    `json:"detail,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type ActivityLog struct {
	Entries []ActivityEntry  `json:"entries"`
	Counts  map[string]int64 `json:"counts,omitempty"`
}
