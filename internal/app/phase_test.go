package app

import (
	"context"
	"testing"
	"time"

	"github.com/robfig/cron/v3"

	"us-screener/internal/provider/providertest"
)

func TestNextRunTime(t *testing.T) {
	sched, err := cron.ParseStandard("30 0 * * *")
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct{ now, want time.Time }{
		{time.Date(2024, 3, 15, 0, 10, 0, 0, time.UTC), time.Date(2024, 3, 15, 0, 30, 0, 0, time.UTC)},
		{time.Date(2024, 3, 15, 0, 30, 0, 0, time.UTC), time.Date(2024, 3, 16, 0, 30, 0, 0, time.UTC)},
		{time.Date(2024, 3, 15, 23, 0, 0, 0, time.FixedZone("EST", -5*3600)), time.Date(2024, 3, 17, 0, 30, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		if got := nextRunTime(sched, tc.now); !got.Equal(tc.want) {
			t.Errorf("nextRunTime(%v) = %v, want %v", tc.now, got, tc.want)
		}
	}
}

func TestRunFlowRunsNowAndStops(t *testing.T) {
	dp := providertest.New()
	a := newTestApp(t, dp, "AAPL")
	a.Config.Schedule = "0 0 1 1 *"

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- a.RunFlow(ctx, true) }()

	deadline := time.Now().Add(5 * time.Second)
	for len(dp.Calls()) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("RunFlow: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("RunFlow did not stop")
	}
	if len(dp.CallsFor("AAPL")) == 0 {
		t.Error("immediate run did not fetch")
	}
}

func TestRunFlowBadSchedule(t *testing.T) {
	a := newTestApp(t, providertest.New())
	a.Config.Schedule = "nope"
	if err := a.RunFlow(context.Background(), false); err == nil {
		t.Fatal("expected schedule parse error")
	}
}
