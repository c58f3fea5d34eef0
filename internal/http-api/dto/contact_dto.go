package dto

// ContactRequest: payload for the public contact form
type ContactRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=100"`
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject" binding:"max=200"`
	Body    string `json:"body" binding:"required,min=1,max=5000"`
}

// ContactResponse: acknowledgement for a submitted message
type ContactResponse struct {
	Message string `json:"message"`
}
