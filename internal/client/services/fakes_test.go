package services

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/dmitrijs2005/clouddrive/internal/client/client"
	"github.com/dmitrijs2005/clouddrive/internal/filex"
)

// fakeRequester records every request and answers from a queue.
type fakeRequester struct {
	mu        sync.Mutex
	calls     []client.Request
	bodies    [][]byte
	responses []*client.Response
	errs      []error
}

func (f *fakeRequester) reply(resp *client.Response, err error) *fakeRequester {
	f.responses = append(f.responses, resp)
	f.errs = append(f.errs, err)
	return f
}

func (f *fakeRequester) Do(ctx context.Context, r client.Request) (*client.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var body []byte
	if r.Body != nil {
		body, _ = io.ReadAll(r.Body)
	}
	f.calls = append(f.calls, r)
	f.bodies = append(f.bodies, body)

	i := len(f.calls) - 1
	if i >= len(f.responses) {
		return nil, errors.New("fakeRequester: unexpected call")
	}
	return f.responses[i], f.errs[i]
}

func jsonResponse(status int, body string) *client.Response {
	return &client.Response{StatusCode: status, Body: []byte(body)}
}

type failingStore struct {
	getErr, setErr, clearErr error
}

func (s *failingStore) Get(ctx context.Context) (string, bool, error) { return "", false, s.getErr }
func (s *failingStore) Set(ctx context.Context, token string) error  { return s.setErr }
func (s *failingStore) Clear(ctx context.Context) error              { return s.clearErr }

// fakeSaver counts acquisitions and releases; save decides what Save does.
type fakeSaver struct {
	mu         sync.Mutex
	acquireErr error
	save       func(ref filex.Ref, name string) (string, error)

	acquired []filex.Blob
	saved    []string
	released []filex.Ref
}

func (s *fakeSaver) Acquire(b filex.Blob) (filex.Ref, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.acquireErr != nil {
		return filex.Ref{}, s.acquireErr
	}
	s.acquired = append(s.acquired, b)
	return filex.Ref{}, nil
}

func (s *fakeSaver) Save(ref filex.Ref, name string) (string, error) {
	s.mu.Lock()
	s.saved = append(s.saved, name)
	save := s.save
	s.mu.Unlock()

	if save == nil {
		return "/downloads/" + name, nil
	}
	return save(ref, name)
}

func (s *fakeSaver) Release(ref filex.Ref) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.released = append(s.released, ref)
	return nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(ctx context.Context, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}
