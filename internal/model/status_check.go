package model

import "time"

// StatusCheckInput is the body of POST /api/status.
type StatusCheckInput struct {
	ClientName string `json:"client_name"`
}

// StatusCheck records that a client pinged the API.
type StatusCheck struct {
	ID         string    `json:"id"`
	ClientName string    `json:"client_name"`
	Timestamp  time.Time `json:"timestamp"`
	ClientKey  string    `json:"ip_address,omitempty"`
}
