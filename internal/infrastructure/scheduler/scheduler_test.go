package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"cabinet-suite-core/internal/app/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestScheduler(t *testing.T, jobs ...Job) (*Scheduler, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	s, err := NewScheduler(Params{
		Config: &config.Config{Scheduler: config.SchedulerConfig{Enabled: false}},
		Logger: zap.New(core),
		Jobs:   jobs,
	})
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	t.Cleanup(s.Stop)
	return s, logs
}

func TestRegisterSkipsDisabledJobs(t *testing.T) {
	noop := func(context.Context) error { return nil }
	s, _ := newTestScheduler(t,
		Job{Name: "absences", Interval: time.Hour, Run: noop},
		Job{Name: "licences", Interval: 0, Run: noop},
	)
	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}
}

func TestRegisterRejectsJobWithoutFunc(t *testing.T) {
	_, err := NewScheduler(Params{
		Config: &config.Config{},
		Logger: zap.NewNop(),
		Jobs:   []Job{{Name: "vide", Interval: time.Minute}},
	})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestExecuteLogsFailure(t *testing.T) {
	s, logs := newTestScheduler(t)
	var got context.Context
	s.execute(Job{Name: "exports", Run: func(ctx context.Context) error {
		got = ctx
		return errors.New("disque plein")
	}})

	if _, ok := got.Deadline(); !ok {
		t.Fatal("job context must carry a deadline")
	}
	if logs.FilterMessage("échec tâche").Len() != 1 {
		t.Fatalf("expected failure log, got %v", logs.All())
	}
}
