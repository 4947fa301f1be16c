package service

import (
	"context"

	"github.com/yndnr/jsonkv-go/internal/core/domain"
	"github.com/yndnr/jsonkv-go/internal/telemetry/logger"
)

//go:generate mockgen -destination=servicemock/executor.go -package=servicemock . Executor

// Executor runs commands against the store.
type Executor interface {
	Execute(ctx context.Context, cmd *domain.Command) (*domain.Result, error)
}

// Store is the storage dependency of KVService.
type Store interface {
	Apply(cmd *domain.Command) (*domain.Result, error)
	Len() int
}

// KVService executes commands against a shared Store.
type KVService struct {
	store Store
}

// NewKVService creates a KVService over store.
func NewKVService(store Store) *KVService {
	return &KVService{store: store}
}

// Execute applies cmd atomically and returns its result.
//
// Absence is reported through Result.Found, never as an error.
func (s *KVService) Execute(ctx context.Context, cmd *domain.Command) (*domain.Result, error) {
	if cmd == nil {
		return nil, domain.ErrUnknownMethod.WithDetails("nil command")
	}

	res, err := s.store.Apply(cmd)
	if err != nil {
		logger.L(ctx).Warn("command rejected",
			"method", cmd.Method.String(),
			"key", cmd.Key,
			"error", err)
		return nil, err
	}

	logger.L(ctx).Debug("command applied",
		"method", cmd.Method.String(),
		"key", cmd.Key,
		"found", res.Found)
	return res, nil
}

// Len returns the number of keys held by the underlying store.
func (s *KVService) Len() int {
	return s.store.Len()
}
