// Package llm is the client for the generative-text collaborator. The
// provider is an explicit dependency injected wherever generated text is
// needed, so tests substitute a deterministic stub.
package llm

import (
	"context"
	"errors"
)

// ErrRequestTimeout reports that an upstream call exceeded its bound. Callers
// retry, then fall back; the error is never silently ignored.
var ErrRequestTimeout = errors.New("generative-text request timed out")

// Provider is a request/response text completion interface. Responses are
// unstructured or semi-structured text; callers must never assume
// well-formed output.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req *Request) (*Response, error)
}

// Request is a completion request.
type Request struct {
	System      string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// Message is one turn of a conversation.
type Message struct {
	Role    Role
	Content string
}

// Role identifies a message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Response is a completion response.
type Response struct {
	Content string
}

// UserPrompt builds a single-turn request, the common case outside hint
// conversations.
func UserPrompt(system, prompt string) *Request {
	return &Request{
		System:   system,
		Messages: []Message{{Role: RoleUser, Content: prompt}},
	}
}
