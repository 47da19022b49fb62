package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"retail-console/internal/adapters/persistence/repositories"
	"retail-console/internal/core/domain"
	"retail-console/internal/pkg/jwt"

	"github.com/robfig/cron/v3"
)

// KeepaliveService refreshes the access token shortly before it expires so
// the operator does not hit a 401 in the middle of a sale
type KeepaliveService struct {
	cron      *cron.Cron
	spec      string
	window    time.Duration
	sessions  *SessionManager
	tokens    repositories.TokenStore
	refresher RefreshAPI
	now       func() time.Time
}

// NewKeepaliveService creates a keepalive job running on spec
func NewKeepaliveService(
	spec string,
	window time.Duration,
	sessions *SessionManager,
	tokens repositories.TokenStore,
	refresher RefreshAPI,
) *KeepaliveService {
	return &KeepaliveService{
		cron:      cron.New(),
		spec:      spec,
		window:    window,
		sessions:  sessions,
		tokens:    tokens,
		refresher: refresher,
		now:       time.Now,
	}
}

// Start schedules the job
func (s *KeepaliveService) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.tick); err != nil {
		return fmt.Errorf("invalid keepalive schedule %q: %w", s.spec, err)
	}
	s.cron.Start()
	log.Printf("🚀 KeepaliveService started [%s]", s.spec)
	return nil
}

// Stop waits for a running tick to finish
func (s *KeepaliveService) Stop() {
	<-s.cron.Stop().Done()
	log.Println("🛑 KeepaliveService stopped")
}

func (s *KeepaliveService) tick() {
	if err := s.RunOnce(context.Background()); err != nil {
		log.Printf("❌ Keepalive refresh failed: %v", err)
	}
}

// RunOnce refreshes the access token if it expires within the window.
// Opaque (non-JWT) tokens are left to the 401 path.
func (s *KeepaliveService) RunOnce(ctx context.Context) error {
	if !s.sessions.Snapshot().Authenticated() {
		return nil
	}
	access, ok := s.tokens.Access(ctx)
	if !ok {
		return nil
	}

	soon, err := jwt.ExpiresWithin(access, s.window, s.now())
	if err != nil || !soon {
		return nil
	}

	if _, err := s.refresher.Refresh(ctx); err != nil {
		// A network blip is retried on the next tick; a rejection ends the session.
		if errors.Is(err, domain.ErrRefresh) && !errors.Is(err, domain.ErrNetwork) {
			s.sessions.HandleAuthFailure()
		}
		return err
	}
	return nil
}
