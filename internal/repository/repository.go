// Package repository defines the storage contracts shared by every backend.
package repository

import (
	"context"
	"errors"

	"github.com/Houeta/gold-flow/internal/models"
)

// ErrStateNotFound is returned when no baseline has been stored yet.
var ErrStateNotFound = errors.New("state not found")

// StateRepository stores the last captured state.
type StateRepository interface {
	GetState(ctx context.Context) (*models.State, error)
	UpdateState(ctx context.Context, state *models.State) error
}

// SubscriptionRepository stores the chats subscribed to price updates.
type SubscriptionRepository interface {
	SubscribeChat(ctx context.Context, chatID int64) error
	UnsubscribeChat(ctx context.Context, chatID int64) error
	GetSubscribedChats(ctx context.Context) ([]int64, error)
}

// Repository is a complete storage backend.
type Repository interface {
	StateRepository
	SubscriptionRepository
	Close() error
}
