package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"retail-console/internal/core/domain"
)

// fakeResolver returns user and counts calls; gate, when set, blocks Resolve
type fakeResolver struct {
	mu    sync.Mutex
	user  *domain.CurrentUser
	calls atomic.Int32
	gate  chan struct{}
}

func (r *fakeResolver) Resolve(ctx context.Context) *domain.CurrentUser {
	r.calls.Add(1)
	if r.gate != nil {
		<-r.gate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.user
}

func (r *fakeResolver) setUser(u *domain.CurrentUser) {
	r.mu.Lock()
	r.user = u
	r.mu.Unlock()
}

type fakeProfile struct {
	user  *domain.CurrentUser
	err   error
	calls atomic.Int32
}

func (p *fakeProfile) Me(ctx context.Context) (*domain.CurrentUser, error) {
	p.calls.Add(1)
	return p.user, p.err
}

type fakeCredentials struct {
	pair domain.TokenPair
	err  error
}

func (c *fakeCredentials) Credentials(ctx context.Context, phoneNumber, password string) (domain.TokenPair, error) {
	if c.err != nil {
		return domain.TokenPair{}, c.err
	}
	return c.pair, nil
}

type fakeRefresher struct {
	err   error
	calls atomic.Int32
}

func (r *fakeRefresher) Refresh(ctx context.Context) (string, error) {
	r.calls.Add(1)
	if r.err != nil {
		return "", r.err
	}
	return "refreshed", nil
}

var errBackendDown = errors.New("backend down")
