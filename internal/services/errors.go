package services

import (
	"fmt"

	"github.com/desertthunder/moviex/internal/shared"
)

// NetworkMessage is reported when no response was received.
const NetworkMessage = "Network Error – Please check your internet connection."

var statusMessages = map[int]string{
	400: "Bad Request – The server could not understand your request.",
	401: "Unauthorized – Please check your credentials.",
	403: "Forbidden – You don't have access to this resource.",
	404: "Not Found – The requested resource doesn't exist.",
	408: "Request Timeout – The server timed out waiting for the request.",
	409: "Conflict – Duplicate or conflicting resource.",
	422: "Unprocessable Entity – Validation failed on submitted data.",
	429: "Too Many Requests – You're being rate limited.",
	500: "Internal Server Error – Something went wrong on the server.",
	502: "Bad Gateway – Invalid response from the upstream server.",
	503: "Service Unavailable – The server is temporarily unavailable.",
	504: "Gateway Timeout – The server didn't respond in time.",
}

// StatusMessage returns the fixed message for an HTTP status code.
func StatusMessage(code int) string {
	if msg, ok := statusMessages[code]; ok {
		return msg
	}
	return fmt.Sprintf("HTTP %d – Unexpected server error.", code)
}

// ClassifyStatus builds the failure for a non-success HTTP response.
func ClassifyStatus(code int, cause error) *shared.Failure {
	return &shared.Failure{Message: StatusMessage(code), Code: code, Cause: cause}
}

// NetworkFailure builds the failure for a request that never produced a response.
func NetworkFailure(cause error) *shared.Failure {
	return &shared.Failure{Message: NetworkMessage, Cause: cause}
}
