package dto

// ApplyRequest is a student's application to a posting
type ApplyRequest struct {
	InternshipID int64   `json:"internshipId" binding:"required,min=1" example:"7"`
	CoverLetter  *string `json:"coverLetter,omitempty" binding:"omitempty,max=5000"`
	ResumeURL    *string `json:"resumeUrl,omitempty" binding:"omitempty,url,max=500"`
}

// DecideApplicationRequest carries the review outcome
type DecideApplicationRequest struct {
	Decision string `json:"decision" binding:"required,oneof=approved rejected" example:"approved"`
}

// ResumeUploadResponse is returned after storing a resume file
type ResumeUploadResponse struct {
	URL      string `json:"url" example:"http://localhost:8080/uploads/resumes/42/1a2b.pdf"`
	FileName string `json:"fileName" example:"cv.pdf"`
	Size     int64  `json:"size" example:"102400"`
}
