package dto

import "time"

// APIResponse is the envelope for successful responses
type APIResponse struct {
	Success   bool        `json:"success" example:"true"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp" example:"2025-04-23T12:01:05.123Z"`
}

// NewAPIResponse wraps data in a success envelope
func NewAPIResponse(data interface{}) APIResponse {
	return APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// SuccessResponse represents a standard success response for API endpoints
type SuccessResponse struct {
	Message string `json:"message"`
}

// PaginationInfo describes a page of an offset-paginated list
type PaginationInfo struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	PageSize    int   `json:"pageSize"`
	TotalItems  int64 `json:"totalItems"`
}

// PaginatedResponse represents a paginated list with metadata
type PaginatedResponse struct {
	Items      interface{}    `json:"items"`
	Pagination PaginationInfo `json:"pagination"`
}

// StreamResponse is a bounded slice read from a lazily paged listing.
// NextCursor is set when HasMore is true; pass it back as the before parameter.
type StreamResponse struct {
	Items      interface{} `json:"items"`
	Count      int         `json:"count"`
	HasMore    bool        `json:"hasMore"`
	NextCursor string      `json:"nextCursor,omitempty" example:"1745409665123000000_42"`
}
