// Package session owns the shared mutable state of the application:
// the in-flight upload flag and the two agent references. All
// transitions go through mutex-guarded methods; the UI only reads
// through accessors.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"grimoire/internal/agent"
	"grimoire/internal/discovery"
	"grimoire/internal/logging"
	"grimoire/internal/models"

	"github.com/google/uuid"
)

var (
	ErrEmptyQuery       = errors.New("please enter a query")
	ErrUploadInFlight   = errors.New("upload is already in progress")
	ErrBusy             = errors.New("system is busy performing the RAG operation, please wait")
	ErrNoKnowledge      = errors.New("no documents have been uploaded yet, please upload first")
	ErrNoDirectory      = errors.New("please select a directory first")
	ErrNoSupportedFiles = errors.New("no supported files (PDF, MD, TXT) found in the selected directory")
)

// UnknownModelError names the model that is absent from the
// discovered set.
type UnknownModelError struct {
	Model string
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("the model '%s' is not available in Ollama", e.Model)
}

// Starter is the single-method agent surface the dispatcher needs.
type Starter interface {
	Start(ctx context.Context, query string) (string, error)
}

// Factory abstracts agent construction for the session.
type Factory interface {
	ChatAgent(model string) (Starter, error)
	KnowledgeAgent(ctx context.Context, model string, files []string, userID string) (Starter, error)
}

// FactoryAdapter lets the concrete agent factory satisfy Factory.
type FactoryAdapter struct {
	F *agent.Factory
}

func (a FactoryAdapter) ChatAgent(model string) (Starter, error) {
	return a.F.ChatAgent(model)
}

func (a FactoryAdapter) KnowledgeAgent(ctx context.Context, model string, files []string, userID string) (Starter, error) {
	return a.F.KnowledgeAgent(ctx, model, files, userID)
}

// Session coordinates uploads and dispatches queries by mode.
type Session struct {
	factory      Factory
	userID       string
	queryTimeout time.Duration

	mu             sync.Mutex
	knownModels    []string
	uploadInFlight bool
	chatAgent      Starter
	chatModel      string // model the cached chat agent was built with
	knowledgeAgent Starter
}

func New(factory Factory, knownModels []string, queryTimeout time.Duration) *Session {
	return &Session{
		factory:      factory,
		userID:       uuid.NewString(),
		queryTimeout: queryTimeout,
		knownModels:  knownModels,
	}
}

// Models returns the discovered model names.
func (s *Session) Models() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.knownModels
}

// UploadInFlight reports whether an upload is currently running.
func (s *Session) UploadInFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploadInFlight
}

// HasKnowledgeAgent reports whether a successful upload has installed
// a knowledge agent.
func (s *Session) HasKnowledgeAgent() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.knowledgeAgent != nil
}

// BeginUpload validates preconditions and atomically takes the
// single-flight slot. A second in-flight request is rejected with no
// state change; validation failures leave the slot free.
func (s *Session) BeginUpload(dir string, files []string, model string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.uploadInFlight {
		return ErrUploadInFlight
	}
	if dir == "" {
		return ErrNoDirectory
	}
	if len(files) == 0 {
		return ErrNoSupportedFiles
	}
	if !discovery.Contains(s.knownModels, model) {
		return &UnknownModelError{Model: model}
	}

	s.uploadInFlight = true
	return nil
}

// RunUpload performs the indexing handed off by BeginUpload. It must
// only be called after BeginUpload succeeded, from a background
// goroutine. The slot is always released; on failure the previous
// knowledge agent is cleared so no stale agent survives.
func (s *Session) RunUpload(ctx context.Context, model string, files []string) (int, error) {
	logging.Info("upload started", "model", model, "files", len(files), "user_id", s.userID)

	a, err := s.factory.KnowledgeAgent(ctx, model, files, s.userID)

	s.mu.Lock()
	s.uploadInFlight = false
	if err != nil {
		s.knowledgeAgent = nil
	} else {
		s.knowledgeAgent = a
	}
	s.mu.Unlock()

	if err != nil {
		logging.Error("upload failed", "error", err)
		return 0, err
	}
	logging.Info("upload finished", "files", len(files))
	return len(files), nil
}

// Query dispatches one query according to the active mode. All
// failures come back as error values; nothing here panics or blocks
// the caller beyond the model round trip.
func (s *Session) Query(ctx context.Context, mode models.AppMode, model, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", ErrEmptyQuery
	}

	var target Starter
	switch mode {
	case models.ModeRAG:
		s.mu.Lock()
		if s.uploadInFlight {
			s.mu.Unlock()
			return "", ErrBusy
		}
		target = s.knowledgeAgent
		s.mu.Unlock()
		if target == nil {
			return "", ErrNoKnowledge
		}
	default:
		a, err := s.chatAgentFor(model)
		if err != nil {
			return "", err
		}
		target = a
	}

	if s.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.queryTimeout)
		defer cancel()
	}

	return target.Start(ctx, query)
}

// chatAgentFor returns the cached chat agent, rebuilding it when the
// selected model changed. A construction failure leaves the cache
// empty.
func (s *Session) chatAgentFor(model string) (Starter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !discovery.Contains(s.knownModels, model) {
		return nil, &UnknownModelError{Model: model}
	}
	if s.chatAgent != nil && s.chatModel == model {
		return s.chatAgent, nil
	}

	a, err := s.factory.ChatAgent(model)
	if err != nil {
		s.chatAgent = nil
		s.chatModel = ""
		return nil, err
	}
	s.chatAgent = a
	s.chatModel = model
	return a, nil
}
