package dto

// UnreadCountResponse holds the number of unread notifications
type UnreadCountResponse struct {
	Count int64 `json:"count" example:"3"`
}

// MarkAllReadResponse holds how many notifications were marked read
type MarkAllReadResponse struct {
	Updated int64 `json:"updated" example:"3"`
}
