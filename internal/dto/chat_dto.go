package dto

import "time"

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	Response  string    `json:"response"`
	IsUrgent  bool      `json:"is_urgent"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}
