package chessdto

// RenderRequest carries one chess tag occurrence.
type RenderRequest struct {
	Args string `json:"args"`
	Body string `json:"body,omitempty"`
	Page string `json:"page"`
}

// RenderResponse carries the markup for the tag. HTML holds the error block when Error is set.
type RenderResponse struct {
	RequestID string       `json:"request_id,omitempty"`
	HTML      string       `json:"html"`
	Error     *DomainError `json:"error,omitempty"`
}
