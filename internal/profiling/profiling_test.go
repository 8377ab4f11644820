package profiling

import (
	"testing"
	"time"
)

func TestTrackAndReset(t *testing.T) {
	ResetFrame()
	stop := Track("streaming.Tick")
	time.Sleep(time.Millisecond)
	stop()
	Track("streaming.Tick")()
	Track("graphics.Draw")()

	if got := Count("streaming.Tick"); got != 2 {
		t.Errorf("Count = %d, want 2", got)
	}
	if d := Snapshot()["streaming.Tick"]; d < time.Millisecond {
		t.Errorf("tracked %v, want at least 1ms", d)
	}
	if SumWithPrefix("streaming.") < time.Millisecond {
		t.Error("SumWithPrefix missed streaming totals")
	}

	ResetFrame()
	if len(Snapshot()) != 0 || Count("streaming.Tick") != 0 {
		t.Error("ResetFrame left totals behind")
	}
}

func TestTopN(t *testing.T) {
	ResetFrame()
	mu.Lock()
	frameTotals["a"] = 3 * time.Millisecond
	frameTotals["b"] = 1500 * time.Microsecond
	frameTotals["c"] = time.Microsecond
	mu.Unlock()
	defer ResetFrame()

	if got, want := TopN(2), "a:3ms, b:1.5ms"; got != want {
		t.Errorf("TopN(2) = %q, want %q", got, want)
	}
	if got := TopN(10); got != "a:3ms, b:1.5ms, c:0ms" {
		t.Errorf("TopN(10) = %q", got)
	}
}
