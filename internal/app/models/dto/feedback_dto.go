package dto

// SubmitFeedbackRequest is a mentor's review
type SubmitFeedbackRequest struct {
	Rating  int    `json:"rating" example:"4"`
	Comment string `json:"comment" binding:"max=2000" example:"Good work"`
}
