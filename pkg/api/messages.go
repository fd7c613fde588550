package api

type (
	// MessageLevel classifies a flash message
	MessageLevel string

	// Message is a one-shot notice shown on the next rendered page
	Message struct {
		Level MessageLevel `json:"level"`
		Text  string       `json:"text"`
	}

	// HealthResponse provides service health information
	HealthResponse struct {
		Service string `json:"service"`
		Version string `json:"version"`
		Status  string `json:"status"`
		Error   string `json:"error,omitempty"`
	}

	// MessageResponse contains a simple message string
	MessageResponse struct {
		Message string `json:"message"`
	}

	// ErrorResponse contains error details for failed requests
	ErrorResponse struct {
		Error  string `json:"error"`
		Status int    `json:"status,omitempty"`
	}
)

const (
	MessageSuccess MessageLevel = "success"
	MessageInfo    MessageLevel = "info"
	MessageWarning MessageLevel = "warning"
	MessageError   MessageLevel = "error"

	HealthHealthy   = "healthy"
	HealthUnhealthy = "unhealthy"
)
