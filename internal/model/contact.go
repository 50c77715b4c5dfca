package model

import "time"

// ContactForm is the client-supplied body of POST /api/contact.
type ContactForm struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Service string `json:"service"`
	Message string `json:"message"`
}

// ContactSubmission is a validated, sanitized contact form ready for storage.
// It is never modified after it has been persisted.
type ContactSubmission struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	Service    string    `json:"service"`
	Message    string    `json:"message"`
	ClientKey  string    `json:"ip_address"`
	UserAgent  string    `json:"user_agent"`
	ReceivedAt time.Time `json:"timestamp"`
	Processed  bool      `json:"processed"`
}

// Reference is the short identifier handed back to the submitter.
func (c *ContactSubmission) Reference() string {
	if len(c.ID) < 8 {
		return c.ID
	}
	return c.ID[:8]
}

// ContactReceipt is the success response for a submission.
type ContactReceipt struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Reference string `json:"reference"`
}
