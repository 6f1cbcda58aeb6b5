package accounts

// Message types used in response envelopes.
const (
	MessageTypeSuccess = "success"
	MessageTypeError   = "error"
)

// ResponseMessage is the message block carried by every envelope.
type ResponseMessage struct {
	Text string `json:"messageText"`
	Type string `json:"messageType"`
}

// ToResponse merges a payload with a message block and a status flag.
// Payload keys stay at the top level, next to "message" and "status".
// The input map is not mutated.
func ToResponse(data map[string]any, messageText, messageType string, status bool) map[string]any {
	out := make(map[string]any, len(data)+2)
	for k, v := range data {
		out[k] = v
	}
	out["message"] = ResponseMessage{Text: messageText, Type: messageType}
	out["status"] = status
	return out
}

// SuccessResponse is ToResponse with the success message type.
func SuccessResponse(data map[string]any, messageText string) map[string]any {
	return ToResponse(data, messageText, MessageTypeSuccess, true)
}

// ErrorResponse is ToResponse with the error message type.
func ErrorResponse(data map[string]any, messageText string) map[string]any {
	return ToResponse(data, messageText, MessageTypeError, false)
}
