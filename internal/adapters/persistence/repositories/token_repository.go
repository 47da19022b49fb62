package repositories

import (
	"context"
	"errors"
	"log"
	"sync"

	"retail-console/internal/adapters/persistence/models"
	"retail-console/internal/core/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// tokenRepository implements TokenStore on the terminal_tokens table.
// The last pair read or written is kept so a failed read does not log the
// operator out; only a missing row means no tokens.
type tokenRepository struct {
	db         *gorm.DB
	terminalID string

	mu   sync.RWMutex
	last domain.TokenPair
}

// NewTokenRepository creates a database-backed token store for one terminal
func NewTokenRepository(db *gorm.DB, terminalID string) TokenStore {
	return &tokenRepository{db: db, terminalID: terminalID}
}

// Save upserts both tokens in a single statement
func (r *tokenRepository) Save(ctx context.Context, tokens domain.TokenPair) error {
	row := &models.TerminalToken{
		TerminalID:   r.terminalID,
		AccessToken:  tokens.Access,
		RefreshToken: tokens.Refresh,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "terminal_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"access_token", "refresh_token", "updated_at"}),
		}).
		Create(row).Error
	if err != nil {
		return err
	}

	r.remember(tokens)
	return nil
}

func (r *tokenRepository) get(ctx context.Context) domain.TokenPair {
	var row models.TerminalToken
	err := r.db.WithContext(ctx).
		Where("terminal_id = ?", r.terminalID).
		First(&row).Error
	switch {
	case err == nil:
		pair := domain.TokenPair{Access: row.AccessToken, Refresh: row.RefreshToken}
		r.remember(pair)
		return pair
	case errors.Is(err, gorm.ErrRecordNotFound):
		r.remember(domain.TokenPair{})
		return domain.TokenPair{}
	default:
		log.Printf("⚠️ Failed to read tokens for terminal %s, using last known pair: %v", r.terminalID, err)
		r.mu.RLock()
		defer r.mu.RUnlock()
		return r.last
	}
}

func (r *tokenRepository) remember(tokens domain.TokenPair) {
	r.mu.Lock()
	r.last = tokens
	r.mu.Unlock()
}

func (r *tokenRepository) Access(ctx context.Context) (string, bool) {
	pair := r.get(ctx)
	return pair.Access, pair.Access != ""
}

func (r *tokenRepository) Refresh(ctx context.Context) (string, bool) {
	pair := r.get(ctx)
	return pair.Refresh, pair.Refresh != ""
}

// Clear deletes the terminal's row
func (r *tokenRepository) Clear(ctx context.Context) error {
	err := r.db.WithContext(ctx).
		Where("terminal_id = ?", r.terminalID).
		Delete(&models.TerminalToken{}).Error
	if err != nil {
		return err
	}

	r.remember(domain.TokenPair{})
	return nil
}
