package api

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// MessageRequest is one non-streaming completion request.
type MessageRequest struct {
	Messages    []Message `json:"messages"`
	System      string    `json:"system,omitempty"`
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

// MessageResponse carries the generated text.
type MessageResponse struct {
	Content string `json:"content"`
}
