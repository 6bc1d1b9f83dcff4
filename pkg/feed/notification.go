package feed

import "time"

// Notification is the client-side view of a server notification. IDs are
// opaque strings assigned by the server.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Link      string    `json:"link,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Pagination describes the position of a fetched page within the full result
// set. In infinite-scroll mode only HasMore is meaningful.
type Pagination struct {
	CurrentPage int  `json:"current_page"`
	TotalPages  int  `json:"total_pages"`
	TotalCount  int  `json:"total_count"`
	HasMore     bool `json:"has_more"`
	PageSize    int  `json:"page_size"`
}

// Page is the normalized result of a feed fetch.
type Page struct {
	Items      []Notification
	Pagination Pagination
}
