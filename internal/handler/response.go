package handler

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error errorPayload `json:"error"`
}

func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: errorPayload{
			Code:    code,
			Message: message,
		},
	}
}

// AckResponse acknowledges operations that return no resource, such as
// deleting a conversation or marking it read.
type AckResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func NewAckResponse(message string) AckResponse {
	return AckResponse{Success: true, Message: message}
}
