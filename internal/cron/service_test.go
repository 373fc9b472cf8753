package cron

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/prodataworld/prodata-backend/pkg/logger"
	"github.com/prodataworld/prodata-backend/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeLock struct {
	held     bool
	acquires int
	releases int
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	f.acquires++
	if f.held {
		return false, nil
	}
	f.held = true
	return true, nil
}

func (f *fakeLock) Release(context.Context) error {
	f.releases++
	f.held = false
	return nil
}

type testJob struct {
	name  string
	err   error
	panic bool
	runs  int
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(context.Context) error {
	t.runs++
	if t.panic {
		panic("boom")
	}
	return t.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test", Level: zerolog.Disabled, Output: io.Discard})
}

func newTestService(t *testing.T, lock Lock, m *metrics.CronJobMetrics, jobs ...Job) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(jobs...),
		Lock:     lock,
		Metrics:  m,
	})
	require.NoError(t, err)
	return svc
}

func TestRunCycleRunsEveryJobDespiteFailures(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewCronJobMetrics(reg)
	ok := &testJob{name: JobFosterStatusSync}
	failing := &testJob{name: JobCompleteOldOrders, err: errors.New("db down")}
	panicking := &testJob{name: JobFixPusherStatus, panic: true}
	lock := &fakeLock{}
	svc := newTestService(t, lock, m, ok, failing, panicking)

	ran, jobErrs, err := svc.runCycle(context.Background(), svc.registry.Jobs())
	require.NoError(t, err)
	require.True(t, ran)
	require.Error(t, jobErrs)
	require.Contains(t, jobErrs.Error(), "db down")
	require.Contains(t, jobErrs.Error(), "job panicked")

	require.Equal(t, 1, ok.runs)
	require.Equal(t, 1, failing.runs)
	require.Equal(t, 1, panicking.runs)
	require.False(t, lock.held)
	require.Equal(t, 1, lock.releases)

	require.Equal(t, float64(1), jobCounter(t, reg, "prodata_cron_job_success_total", JobFosterStatusSync))
	require.Equal(t, float64(1), jobCounter(t, reg, "prodata_cron_job_failure_total", JobCompleteOldOrders))
	require.Equal(t, float64(1), jobCounter(t, reg, "prodata_cron_job_failure_total", JobFixPusherStatus))
	require.Zero(t, jobCounter(t, reg, "prodata_cron_job_success_total", JobFixPusherStatus))
}

func jobCounter(t *testing.T, reg *prometheus.Registry, name, job string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "job" && label.GetValue() == job {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestRunCycleSkipsWhenLockHeld(t *testing.T) {
	job := &testJob{name: JobFosterStatusSync}
	lock := &fakeLock{held: true}
	svc := newTestService(t, lock, nil, job)

	ran, jobErrs, err := svc.runCycle(context.Background(), svc.registry.Jobs())
	require.NoError(t, err)
	require.NoError(t, jobErrs)
	require.False(t, ran)
	require.Zero(t, job.runs)
	require.Zero(t, lock.releases)

	require.EqualError(t, svc.RunOnce(context.Background(), ""), "cron lock held by another worker")
}

func TestRunOnceSelectsJobByName(t *testing.T) {
	sync := &testJob{name: JobFosterStatusSync}
	fix := &testJob{name: JobFixPusherStatus, err: errors.New("bad update")}
	svc := newTestService(t, &fakeLock{}, nil, sync, fix)
	ctx := context.Background()

	require.NoError(t, svc.RunOnce(ctx, JobFosterStatusSync))
	require.Equal(t, 1, sync.runs)
	require.Zero(t, fix.runs)

	err := svc.RunOnce(ctx, JobFixPusherStatus)
	require.ErrorContains(t, err, "fix-pusher-status: bad update")

	err = svc.RunOnce(ctx, "orders:sync")
	require.ErrorContains(t, err, `unknown cron job "orders:sync"`)

	require.Error(t, svc.RunOnce(ctx, ""))
	require.Equal(t, 2, sync.runs)
	require.Equal(t, 2, fix.runs)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	job := &testJob{name: JobFosterStatusSync}
	svc := newTestService(t, &fakeLock{}, nil, job)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := svc.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, job.runs)
}
