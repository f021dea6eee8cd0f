package application

import (
	"context"
	"errors"
	"testing"
	"time"

	implementations "clientdesk/internal/implementations/domain"
)

type fakeTasks struct {
	dueToday      int
	completedOn   int
	completedWeek int
	dates         []time.Time

	dueTodayDay time.Time
	weekFrom    time.Time
	weekTo      time.Time
	windowFrom  time.Time
	windowTo    time.Time

	err error
}

func (f *fakeTasks) CountScheduledOn(_ context.Context, _ string, day time.Time) (int, error) {
	f.dueTodayDay = day
	return f.dueToday, f.err
}

func (f *fakeTasks) CountCompletedOn(_ context.Context, _ string, _ time.Time) (int, error) {
	return f.completedOn, f.err
}

func (f *fakeTasks) CountCompletedBetween(_ context.Context, _ string, from, to time.Time) (int, error) {
	f.weekFrom, f.weekTo = from, to
	return f.completedWeek, f.err
}

func (f *fakeTasks) CompletedDatesBetween(_ context.Context, _ string, from, to time.Time) ([]time.Time, error) {
	f.windowFrom, f.windowTo = from, to
	return f.dates, f.err
}

type fakeProspects struct {
	created   int
	converted int
	since     time.Time

	convertedErr error
}

func (f *fakeProspects) CountCreatedSince(_ context.Context, _ string, since time.Time) (int, error) {
	f.since = since
	return f.created, nil
}

func (f *fakeProspects) CountConverted(_ context.Context, _ string) (int, error) {
	return f.converted, f.convertedErr
}

type fakeImpls struct {
	list []implementations.Implementation
	err  error
}

func (f *fakeImpls) ListByOwner(_ context.Context, _ string) ([]implementations.Implementation, error) {
	return f.list, f.err
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func TestSnapshotAggregatesAllReads(t *testing.T) {
	amount := 200.0
	impl := implementations.Implementation{
		ID:              "impl-1",
		UserID:          "user-1",
		ClientName:      "Acme",
		RecurringAmount: amount,
		Status:          implementations.StatusActive,
		CreatedAt:       time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
	tasks := &fakeTasks{
		dueToday:      2,
		completedOn:   1,
		completedWeek: 4,
		dates:         []time.Time{time.Date(2024, time.May, 7, 0, 0, 0, 0, time.UTC)},
	}
	prospects := &fakeProspects{created: 10, converted: 3}

	// Wednesday 2024-05-08.
	clock := fixedClock(time.Date(2024, time.May, 8, 15, 4, 0, 0, time.UTC))
	service, err := NewService(tasks, prospects, &fakeImpls{list: []implementations.Implementation{impl}}, clock)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	snapshot, err := service.Snapshot(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	stats := snapshot.Stats
	if stats.TasksDueToday != 2 || stats.TasksCompletedToday != 1 || stats.TasksCompletedThisWeek != 4 {
		t.Fatalf("unexpected task stats: %+v", stats)
	}
	if stats.NewProspectsThisMonth != 10 || stats.ConvertedProspects != 3 || stats.ConversionRatePct != 30 {
		t.Fatalf("unexpected prospect stats: %+v", stats)
	}
	if stats.MonthlyRecurringTotal != amount {
		t.Fatalf("expected recurring total %v, got %v", amount, stats.MonthlyRecurringTotal)
	}
	if stats.DeliveriesPending != 1 {
		t.Fatalf("expected 1 pending delivery, got %d", stats.DeliveriesPending)
	}
	if len(snapshot.TaskCompletionSeries) != 7 || snapshot.TaskCompletionSeries[6].Count != 0 || snapshot.TaskCompletionSeries[5].Count != 1 {
		t.Fatalf("unexpected completion series: %+v", snapshot.TaskCompletionSeries)
	}
}

func TestSnapshotQueryWindows(t *testing.T) {
	tasks := &fakeTasks{}
	prospects := &fakeProspects{}

	// Wednesday 2024-05-08: week runs Mon 05-06 .. Sun 05-12, the
	// 7-day chart window runs 05-02 .. 05-08.
	clock := fixedClock(time.Date(2024, time.May, 8, 9, 0, 0, 0, time.UTC))
	service, _ := NewService(tasks, prospects, &fakeImpls{}, clock)

	if _, err := service.Snapshot(context.Background(), "user-1"); err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	day := func(d int) time.Time { return time.Date(2024, time.May, d, 0, 0, 0, 0, time.UTC) }
	if !tasks.dueTodayDay.Equal(day(8)) {
		t.Fatalf("expected today 05-08, got %s", tasks.dueTodayDay)
	}
	if !tasks.weekFrom.Equal(day(6)) || !tasks.weekTo.Equal(day(12)) {
		t.Fatalf("expected week 05-06..05-12, got %s..%s", tasks.weekFrom, tasks.weekTo)
	}
	if !tasks.windowFrom.Equal(day(2)) || !tasks.windowTo.Equal(day(8)) {
		t.Fatalf("expected chart window 05-02..05-08, got %s..%s", tasks.windowFrom, tasks.windowTo)
	}
	if !prospects.since.Equal(day(1)) {
		t.Fatalf("expected month start 05-01, got %s", prospects.since)
	}
}

func TestSnapshotFailFast(t *testing.T) {
	tasks := &fakeTasks{}
	prospects := &fakeProspects{convertedErr: errors.New("store offline")}

	service, _ := NewService(tasks, prospects, &fakeImpls{}, fixedClock(time.Date(2024, time.May, 8, 9, 0, 0, 0, time.UTC)))

	snapshot, err := service.Snapshot(context.Background(), "user-1")
	if err == nil {
		t.Fatal("expected error")
	}
	if snapshot != nil {
		t.Fatal("expected no partial snapshot")
	}
}

func TestSnapshotRequiresUserID(t *testing.T) {
	service, _ := NewService(&fakeTasks{}, &fakeProspects{}, &fakeImpls{}, nil)
	if _, err := service.Snapshot(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty user id")
	}
}
