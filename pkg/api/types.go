package api

// ModelRecord is one entry of the backend model catalog.
type ModelRecord struct {
	ID       string `json:"id"`
	Provider string `json:"provider"`
}

// ModelListResponse is the body of GET /models.
type ModelListResponse struct {
	Models []ModelRecord `json:"models"`
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Model        string `json:"model"`
	SystemPrompt string `json:"system_prompt"`
	UserInput    string `json:"user_input"`
}

// ChatResponse is the body of POST /chat. Either field may be absent.
type ChatResponse struct {
	Response *string `json:"response,omitempty"`
	Error    *string `json:"error,omitempty"`
}

// Text returns the string shown to the user for this response: the model
// output when present, otherwise the backend error prefixed with "Error: ".
func (r *ChatResponse) Text() string {
	if r.Response != nil && *r.Response != "" {
		return *r.Response
	}
	msg := "unknown error"
	if r.Error != nil && *r.Error != "" {
		msg = *r.Error
	}
	return "Error: " + msg
}

// HistoryEntry is one interaction recorded by the backend.
type HistoryEntry struct {
	Model        string `json:"model"`
	SystemPrompt string `json:"system_prompt"`
	UserInput    string `json:"user_input"`
	Response     string `json:"response"`
}

// HistoryResponse is the body of GET /history.
type HistoryResponse struct {
	History []HistoryEntry `json:"history"`
}

// StatusResponse is the body of GET /.
type StatusResponse struct {
	Message string `json:"message"`
}
