// Package session mantiene el Session Entry: user id -> snapshot sanitizado.
// Una sesión está viva mientras su entry exista; revocar es borrarla.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dropDatabas3/userhub/internal/cache"
	"github.com/dropDatabas3/userhub/internal/domain"
)

// ErrNotFound indica que no hay sesión para el usuario.
var ErrNotFound = errors.New("session: not found")

const keyPrefix = "session:"

// Store persiste snapshots en un cache.Client.
type Store struct {
	cache cache.Client
	ttl   time.Duration
}

// NewStore crea el store. ttl <= 0 => sin expiración.
func NewStore(c cache.Client, ttl time.Duration) *Store {
	return &Store{cache: c, ttl: ttl}
}

func key(userID string) string { return keyPrefix + userID }

// Put escribe (o sobrescribe) la sesión de u.
func (s *Store) Put(ctx context.Context, u *domain.User) error {
	if u == nil || u.ID == "" {
		return errors.New("session: user without id")
	}
	b, err := json.Marshal(u.Sanitized())
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}
	if err := s.cache.Set(ctx, key(u.ID), string(b), s.ttl); err != nil {
		return fmt.Errorf("session: write: %w", err)
	}
	return nil
}

// Get lee la sesión. ErrNotFound si no existe.
func (s *Store) Get(ctx context.Context, userID string) (*domain.User, error) {
	raw, err := s.cache.Get(ctx, key(userID))
	if err != nil {
		if cache.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("session: read: %w", err)
	}
	var u domain.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, fmt.Errorf("session: decode: %w", err)
	}
	return &u, nil
}

// Delete borra la sesión. Borrar una sesión inexistente no es error.
func (s *Store) Delete(ctx context.Context, userID string) error {
	if err := s.cache.Delete(ctx, key(userID)); err != nil {
		return fmt.Errorf("session: delete: %w", err)
	}
	return nil
}

// Refresh sobrescribe la sesión sólo si ya existe (ej: cambios hechos fuera de un request).
func (s *Store) Refresh(ctx context.Context, u *domain.User) (bool, error) {
	ok, err := s.cache.Exists(ctx, key(u.ID))
	if err != nil {
		return false, fmt.Errorf("session: exists: %w", err)
	}
	if !ok {
		return false, nil
	}
	return true, s.Put(ctx, u)
}
