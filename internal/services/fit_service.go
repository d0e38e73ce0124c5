package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"caila-fit-action/internal/model"
	"caila-fit-action/internal/storage"
)

// StatePath is the blob name the model state is persisted under, relative to
// the configured storage root.
const StatePath = "model.json"

// Logger defines the logging interface compatible with the application logger.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// Info describes the current model lifecycle state.
type Info struct {
	Fitted   bool      `json:"fitted"`
	Texts    int       `json:"texts"`
	StateID  string    `json:"state_id,omitempty"`
	FittedAt time.Time `json:"fitted_at,omitempty"`
}

// FitService is a service for fitting and querying the demo model. It owns
// the single model instance and persists its state through the configured
// storage backend, so a fitted model survives restarts. A fit is the single
// writer; predicts are readers.
type FitService struct {
	mu     sync.RWMutex
	model  *model.Model
	store  storage.Storage
	logger Logger
}

// NewFitService creates a FitService and attempts to restore previously
// persisted state. A missing or unreadable state leaves the model unfitted,
// matching a fresh deployment.
func NewFitService(ctx context.Context, store storage.Storage, logger Logger) *FitService {
	s := &FitService{
		model:  model.New(),
		store:  store,
		logger: logger,
	}

	if err := s.loadState(ctx); err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			logger.Info("No saved model state found, starting unfitted")
		} else {
			logger.Error("Unable to load saved state", "error", err)
		}
	}

	return s
}

// Fit replaces the model state with the given texts and persists it. The
// in-memory model is only updated once the new state has been written, so a
// storage failure leaves the previous fit intact.
func (s *FitService) Fit(ctx context.Context, texts []string) (model.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := model.New()
	state := staged.Fit(texts)

	data, err := state.Encode()
	if err != nil {
		return model.State{}, fmt.Errorf("encode state: %w", err)
	}
	if err := s.store.Save(ctx, StatePath, data); err != nil {
		return model.State{}, fmt.Errorf("persist state: %w", err)
	}

	s.model = staged
	s.logger.Info("Model fitted", "texts", len(texts), "state_id", state.ID)
	return state, nil
}

// Predict returns the stored texts at the given indices, in request order.
func (s *FitService) Predict(_ context.Context, indices []int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.model.LookupAll(indices)
}

// Prune removes the persisted state and resets the model to unfitted. A
// store with no saved state is pruned to the same end result, so ErrNotExist
// is not treated as a failure.
func (s *FitService) Prune(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Remove(ctx, StatePath); err != nil && !errors.Is(err, storage.ErrNotExist) {
		return fmt.Errorf("remove state: %w", err)
	}
	s.model.Reset()
	s.logger.Info("Model state pruned")
	return nil
}

// Info returns the current model lifecycle state.
func (s *FitService) Info() Info {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info := Info{
		Fitted: s.model.IsFitted(),
		Texts:  s.model.Size(),
	}
	if info.Fitted {
		state := s.model.State()
		info.StateID = state.ID
		info.FittedAt = state.FittedAt
	}
	return info
}

func (s *FitService) loadState(ctx context.Context) error {
	data, err := s.store.Load(ctx, StatePath)
	if err != nil {
		return err
	}

	state, err := model.DecodeState(data)
	if err != nil {
		return err
	}

	s.model.Restore(state)
	s.logger.Info("Restored model state", "texts", len(state.Texts), "state_id", state.ID)
	return nil
}
