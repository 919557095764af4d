package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/franciscosanchezn/fitbit-gateway/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TokenStore persists Fitbit tokens keyed by user id.
type TokenStore interface {
	// Upsert inserts the token or overwrites the existing row for its user id.
	Upsert(ctx context.Context, tok *models.Token) error
	// Get returns the token for userID or models.ErrNoTokenStored.
	Get(ctx context.Context, userID string) (*models.Token, error)
	// First returns any stored token or models.ErrNoTokenStored.
	First(ctx context.Context) (*models.Token, error)
}

type GormTokenStore struct {
	db *gorm.DB
}

func NewGormTokenStore(db *gorm.DB) *GormTokenStore {
	return &GormTokenStore{db: db}
}

// upsertColumns are overwritten in place when a row for the user already exists.
var upsertColumns = []string{"access_token", "refresh_token", "scope", "token_type", "expires_at", "updated_at"}

func (s *GormTokenStore) Upsert(ctx context.Context, tok *models.Token) error {
	if tok.UserID == "" {
		return errors.New("cannot store token without user id")
	}
	if tok.TokenType == "" {
		tok.TokenType = "Bearer"
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns(upsertColumns),
	}).Create(tok).Error
	if err != nil {
		return fmt.Errorf("failed to upsert token for user %s: %w", tok.UserID, err)
	}
	return nil
}

func (s *GormTokenStore) Get(ctx context.Context, userID string) (*models.Token, error) {
	var tok models.Token
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&tok).Error; err != nil {
		return nil, notFoundAsNoToken(err)
	}
	return &tok, nil
}

func (s *GormTokenStore) First(ctx context.Context) (*models.Token, error) {
	var tok models.Token
	if err := s.db.WithContext(ctx).Order("updated_at desc").First(&tok).Error; err != nil {
		return nil, notFoundAsNoToken(err)
	}
	return &tok, nil
}

func notFoundAsNoToken(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ErrNoTokenStored
	}
	return fmt.Errorf("failed to load token: %w", err)
}
