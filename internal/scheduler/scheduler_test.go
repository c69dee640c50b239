package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/model"
)

type countingJob struct {
	name string
	runs int
	err  error
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run() error {
	j.runs++
	return j.err
}

func TestScheduler_AddJob(t *testing.T) {
	s := New(zerolog.Nop())

	require.NoError(t, s.AddJob("0 */15 * * * *", &countingJob{name: "a"}))
	require.NoError(t, s.AddJob("@every 30s", &countingJob{name: "b"}))
	assert.Equal(t, 2, s.Len())
}

func TestScheduler_AddJobInvalidSchedule(t *testing.T) {
	s := New(zerolog.Nop())

	// WHY: WithSeconds requires six fields, so a classic five-field expression is rejected
	err := s.AddJob("*/5 * * * *", &countingJob{name: "bad"})
	assert.Error(t, err)
	assert.Equal(t, 0, s.Len())
}

func TestScheduler_EmptyScheduleDisablesJob(t *testing.T) {
	s := New(zerolog.Nop())

	require.NoError(t, s.AddJob("", &countingJob{name: "off"}))
	assert.Equal(t, 0, s.Len())
}

func TestScheduler_RunNow(t *testing.T) {
	s := New(zerolog.Nop())
	boom := errors.New("boom")
	job := &countingJob{name: "now", err: boom}

	assert.ErrorIs(t, s.RunNow(job), boom)
	assert.Equal(t, 1, job.runs)
}

func TestScheduler_StartStop(t *testing.T) {
	s := New(zerolog.Nop())
	require.NoError(t, s.AddJob("@every 1h", &countingJob{name: "idle"}))

	s.Start()
	s.Stop()
}

type fakeRefresher struct {
	result   model.PriceRefreshResult
	err      error
	deadline bool
}

func (f *fakeRefresher) RefreshPrices(ctx context.Context) (model.PriceRefreshResult, error) {
	_, f.deadline = ctx.Deadline()
	return f.result, f.err
}

type fakeSyncer struct {
	results []model.PriceSyncResponse
	err     error
}

func (f *fakeSyncer) SyncAllPriceHistory(context.Context) ([]model.PriceSyncResponse, error) {
	return f.results, f.err
}

type fakeReinvestor struct {
	calls int
	err   error
}

func (f *fakeReinvestor) Reinvest(context.Context) ([]model.Reinvestment, error) {
	f.calls++
	return nil, f.err
}

func TestRefreshPricesJob(t *testing.T) {
	t.Run("per-asset failures do not fail the job", func(t *testing.T) {
		r := &fakeRefresher{result: model.PriceRefreshResult{
			Updated: []string{"AAPL"},
			Errors:  map[string]string{"MSFT": "timeout"},
		}}
		job := NewRefreshPricesJob(r, time.Second, zerolog.Nop())

		assert.Equal(t, "refresh_prices", job.Name())
		assert.NoError(t, job.Run())
		assert.True(t, r.deadline, "job should run with a deadline")
	})

	t.Run("refresh error is returned", func(t *testing.T) {
		r := &fakeRefresher{err: errors.New("db down")}
		job := NewRefreshPricesJob(r, time.Second, zerolog.Nop())

		assert.Error(t, job.Run())
	})
}

func TestSyncPriceHistoryJob(t *testing.T) {
	syncErr := errors.New("partial failure")
	job := NewSyncPriceHistoryJob(&fakeSyncer{err: syncErr}, time.Second, zerolog.Nop())

	assert.Equal(t, "sync_price_history", job.Name())
	assert.ErrorIs(t, job.Run(), syncErr)
}

func TestReinvestDividendsJob(t *testing.T) {
	r := &fakeReinvestor{}
	job := NewReinvestDividendsJob(r, time.Second, zerolog.Nop())

	assert.Equal(t, "reinvest_dividends", job.Name())
	assert.NoError(t, job.Run())
	assert.Equal(t, 1, r.calls)
}
