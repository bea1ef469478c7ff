package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/shopassist/backend/internal/domain"
)

// CatalogProvider supplies the product snapshot the local classifier searches
type CatalogProvider interface {
	Snapshot(ctx context.Context) ([]domain.Product, error)
}

// AssistantServiceConfig holds configuration for the assistant service
type AssistantServiceConfig struct {
	// Timeout bounds the remote attempt. Zero leaves it to the caller's context.
	Timeout time.Duration
}

// AssistantService answers chat turns: remote assistant first, local
// classifier when the remote attempt fails for any reason
type AssistantService struct {
	remote     domain.AssistantClient
	catalog    CatalogProvider
	classifier *IntentClassifier
	timeout    time.Duration
	sessions   *sessionLocks
	now        func() time.Time
}

// NewAssistantService creates a new assistant service. remote may be nil, in
// which case every turn is answered locally.
func NewAssistantService(
	remote domain.AssistantClient,
	catalog CatalogProvider,
	classifier *IntentClassifier,
	config AssistantServiceConfig,
) *AssistantService {
	if classifier == nil {
		classifier = NewIntentClassifier(nil, nil, nil)
	}
	return &AssistantService{
		remote:     remote,
		catalog:    catalog,
		classifier: classifier,
		timeout:    config.Timeout,
		sessions:   newSessionLocks(),
		now:        time.Now,
	}
}

// Chat answers one user turn. Turns of the same session are handled one at
// a time; the reply always carries the session ID and chat type used.
func (s *AssistantService) Chat(ctx context.Context, request *domain.ChatRequest) (*domain.ChatResponse, error) {
	if request == nil || strings.TrimSpace(request.Message) == "" {
		return nil, domain.ErrInvalidRequest
	}

	start := s.now()

	sessionID := request.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	chatType := request.ChatType
	if chatType == "" {
		chatType = domain.ChatTypeText
	}

	unlock := s.sessions.lock(sessionID)
	defer unlock()

	reply, err := s.askRemote(ctx, request, sessionID, chatType)
	if err != nil {
		log.Info().Err(err).Str("component", "assistant").Str("session_id", sessionID).Msg("remote assistant failed, using local rules")
		reply, err = s.answerLocally(ctx, request)
		if err != nil {
			return nil, err
		}
	}

	return &domain.ChatResponse{
		Content:        reply.Content,
		Action:         reply.Action,
		SessionID:      sessionID,
		ChatType:       chatType,
		ModelUsed:      reply.ModelUsed,
		SystemUsed:     reply.SystemUsed,
		ResponseTimeMs: s.now().Sub(start).Milliseconds(),
	}, nil
}

// askRemote makes the single remote attempt and fills in default labels
func (s *AssistantService) askRemote(ctx context.Context, request *domain.ChatRequest, sessionID, chatType string) (*domain.AssistantReply, error) {
	if s.remote == nil {
		return nil, domain.ErrAssistantDisabled
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	messages := request.Messages
	if messages == nil {
		messages = []domain.ChatMessage{}
	}

	reply, err := s.remote.Complete(ctx, &domain.AssistantRequest{
		Message:   request.Message,
		SessionID: sessionID,
		ChatType:  chatType,
		Messages:  messages,
	})
	if err != nil {
		return nil, err
	}
	if reply == nil || strings.TrimSpace(reply.Content) == "" {
		return nil, errors.Join(domain.ErrAssistantUnavailable, errors.New("empty reply"))
	}

	if reply.ModelUsed == "" {
		reply.ModelUsed = domain.DefaultRemoteModel
	}
	if reply.SystemUsed == "" {
		reply.SystemUsed = domain.DefaultRemoteSystem
	}
	return reply, nil
}

// answerLocally runs the rule-based classifier over the current catalog
func (s *AssistantService) answerLocally(ctx context.Context, request *domain.ChatRequest) (*domain.AssistantReply, error) {
	var catalog []domain.Product
	if s.catalog != nil {
		products, err := s.catalog.Snapshot(ctx)
		if err != nil {
			return nil, err
		}
		catalog = products
	}

	reply := s.classifier.Classify(request.Message, catalog, request.ShoppingState)
	reply.ModelUsed = domain.LocalModel
	reply.SystemUsed = domain.LocalSystem
	return &reply, nil
}

// sessionLocks hands out one mutex per session ID. Entries are dropped once
// no turn holds or waits on them.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sessionLock)}
}

// lock blocks until the session is free and returns its release func
func (l *sessionLocks) lock(id string) func() {
	l.mu.Lock()
	entry, ok := l.locks[id]
	if !ok {
		entry = &sessionLock{}
		l.locks[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

// size reports how many sessions currently have a lock entry
func (l *sessionLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
