package entity

// ChatRequest is the POST /api/chat request body.
type ChatRequest struct {
	Prompt string `json:"prompt"`
}

// ChatResponse is the POST /api/chat response body.
type ChatResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// HealthResponse is the GET /health response body.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
