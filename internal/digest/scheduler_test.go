package digest

import (
	"context"
	"testing"
	"time"
)

func TestSchedulerShouldRun(t *testing.T) {
	cases := []struct {
		dailyAt string
		now     time.Time
		want    bool
	}{
		{"07:30", time.Date(2024, time.May, 8, 7, 30, 12, 0, time.UTC), true},
		{"07:30", time.Date(2024, time.May, 8, 7, 31, 0, 0, time.UTC), false},
		{"07:30", time.Date(2024, time.May, 8, 8, 30, 0, 0, time.UTC), false},
		{"00:00", time.Date(2024, time.May, 8, 0, 0, 59, 0, time.UTC), true},
		{"25:00", time.Date(2024, time.May, 8, 7, 30, 0, 0, time.UTC), false},
		{"", time.Date(2024, time.May, 8, 7, 30, 0, 0, time.UTC), false},
	}
	for _, tc := range cases {
		s := &Scheduler{dailyAt: tc.dailyAt}
		if got := s.shouldRun(tc.now); got != tc.want {
			t.Fatalf("shouldRun(%q, %v): got %v want %v", tc.dailyAt, tc.now, got, tc.want)
		}
	}
}

func TestSchedulerRunOnceSkipsBlankUsers(t *testing.T) {
	tasks := &stubTasks{due: 1}
	impls := &stubImpls{}
	channel := &captureChannel{}
	runner, err := NewRunner(tasks, impls, channel, nil, nil)
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}

	cfg := Config{DailyAt: "07:00", WebhookURL: "https://x", Users: []string{"user-1", "", "user-2"}}
	scheduler := NewScheduler(runner, cfg, nil)

	now := time.Date(2024, time.May, 8, 7, 0, 3, 0, time.UTC)
	scheduler.runOnce(context.Background(), now)

	if len(channel.sent) != 2 {
		t.Fatalf("expected 2 digests, got %d", len(channel.sent))
	}
	wantDay := time.Date(2024, time.May, 8, 0, 0, 0, 0, time.UTC)
	if !tasks.day.Equal(wantDay) {
		t.Fatalf("digest day: got %v want %v", tasks.day, wantDay)
	}
}

func TestSchedulerRunOnceContinuesAfterFailure(t *testing.T) {
	tasks := &stubTasks{due: 1}
	channel := &captureChannel{err: context.DeadlineExceeded}
	runner, err := NewRunner(tasks, &stubImpls{}, channel, nil, nil)
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}

	cfg := Config{DailyAt: "07:00", WebhookURL: "https://x", Users: []string{"user-1", "user-2"}}
	scheduler := NewScheduler(runner, cfg, nil)
	scheduler.runOnce(context.Background(), time.Date(2024, time.May, 8, 7, 0, 0, 0, time.UTC))

	if len(channel.sent) != 2 {
		t.Fatalf("expected both users attempted, got %d sends", len(channel.sent))
	}
}
