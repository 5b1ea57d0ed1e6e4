package dto

// APIResponse is the standard success envelope returned by the API
type APIResponse struct {
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// NewAPIResponse wraps payload data in the standard envelope
func NewAPIResponse(data interface{}) APIResponse {
	return APIResponse{Data: data}
}

// NewMessageResponse returns an envelope carrying only a message
func NewMessageResponse(message string) APIResponse {
	return APIResponse{Message: message}
}
