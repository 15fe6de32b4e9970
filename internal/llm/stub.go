package llm

import (
	"context"
	"errors"
	"sync"
)

// StubProvider returns queued responses in order and records every prompt it
// receives. It exists for tests and for running the game without an API key.
type StubProvider struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	calls     int

	// Prompts holds the user content of every request received.
	Prompts []string
}

// NewStubProvider queues the given responses. Once exhausted, further calls
// return an error.
func NewStubProvider(responses ...string) *StubProvider {
	return &StubProvider{responses: responses}
}

// FailWith queues an error to be returned before any remaining responses.
func (s *StubProvider) FailWith(errs ...error) *StubProvider {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, errs...)
	return s
}

func (s *StubProvider) Name() string {
	return "stub"
}

func (s *StubProvider) Generate(ctx context.Context, req *Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range req.Messages {
		if m.Role == RoleUser {
			s.Prompts = append(s.Prompts, m.Content)
		}
	}

	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		return nil, err
	}
	if s.calls >= len(s.responses) {
		return nil, errors.New("stub provider exhausted")
	}

	resp := s.responses[s.calls]
	s.calls++
	return &Response{Content: resp}, nil
}

// Calls reports how many successful responses were served.
func (s *StubProvider) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
