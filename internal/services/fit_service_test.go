package services

import (
	"context"
	"testing"

	"caila-fit-action/internal/logging"
	"caila-fit-action/internal/model"
	"caila-fit-action/internal/storage"

	"github.com/stretchr/testify/assert"
)

func newTestService(t *testing.T) (*FitService, storage.Storage) {
	t.Helper()

	store, err := storage.NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewFitService(context.Background(), store, logging.NewLogger()), store
}

func TestFitThenPredict(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	state, err := svc.Fit(ctx, []string{"a", "b"})
	assert.NoError(t, err)
	assert.NotEmpty(t, state.ID)

	got, err := svc.Predict(ctx, []int{0})
	assert.NoError(t, err)
	assert.Equal(t, []string{"a"}, got)

	got, err = svc.Predict(ctx, []int{1, 0})
	assert.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, got)
}

func TestRefitReplacesPriorState(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.Fit(ctx, []string{"a", "b"})
	assert.NoError(t, err)

	_, err = svc.Fit(ctx, []string{"x"})
	assert.NoError(t, err)

	got, err := svc.Predict(ctx, []int{0})
	assert.NoError(t, err)
	assert.Equal(t, []string{"x"}, got)

	_, err = svc.Predict(ctx, []int{1})
	assert.ErrorIs(t, err, model.ErrNoSuchIndex)
}

func TestPredictBeforeFit(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Predict(context.Background(), []int{0})
	assert.ErrorIs(t, err, model.ErrNotFitted)
}

func TestStateSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	fitted, err := svc.Fit(ctx, []string{"a", "b"})
	assert.NoError(t, err)

	// A new service over the same store stands in for a restarted process.
	restarted := NewFitService(ctx, store, logging.NewLogger())

	info := restarted.Info()
	assert.True(t, info.Fitted)
	assert.Equal(t, 2, info.Texts)
	assert.Equal(t, fitted.ID, info.StateID)

	got, err := restarted.Predict(ctx, []int{1})
	assert.NoError(t, err)
	assert.Equal(t, []string{"b"}, got)
}

func TestPruneResetsModel(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	_, err := svc.Fit(ctx, []string{"a"})
	assert.NoError(t, err)

	err = svc.Prune(ctx)
	assert.NoError(t, err)

	assert.False(t, svc.Info().Fitted)

	_, err = svc.Predict(ctx, []int{0})
	assert.ErrorIs(t, err, model.ErrNotFitted)

	// The persisted blob is gone too, so a restart stays unfitted.
	restarted := NewFitService(ctx, store, logging.NewLogger())
	assert.False(t, restarted.Info().Fitted)
}

func TestPruneUnfittedModel(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.Prune(context.Background())
	assert.NoError(t, err)
}

func TestCorruptStateLeavesModelUnfitted(t *testing.T) {
	ctx := context.Background()

	store, err := storage.NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	err = store.Save(ctx, StatePath, []byte("not json"))
	assert.NoError(t, err)

	svc := NewFitService(ctx, store, logging.NewLogger())
	assert.False(t, svc.Info().Fitted)
}
