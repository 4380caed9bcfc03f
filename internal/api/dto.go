package api

import "github.com/starford/collabeat/internal/models"

// ExecuteRequest is the request body for POST /api/execute.
type ExecuteRequest = models.ExecuteCall

// MintRequest is the request body for POST /api/mint.
type MintRequest = models.MintCall

// CallResult is the response body of execute and mint.
type CallResult = models.CallResult

// CloneResponse is the response body of POST /api/clone.
type CloneResponse struct {
	Result bool `json:"result" example:"true" validate:"required"`
}
