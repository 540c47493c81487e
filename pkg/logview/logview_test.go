package logview

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLog = "INFO start\nERROR fetch failed\ninfo done\nWARN slow"

func TestFilter(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		text   string
		shown  int
		status string
	}{
		{"empty query shows everything", "", sampleLog, 4, ""},
		{"case insensitive", "info", "INFO start\ninfo done", 2, "2 of 4 lines shown"},
		{"no match", "panic", "", 0, "0 of 4 lines shown"},
		{"substring", "fail", "ERROR fetch failed", 1, "1 of 4 lines shown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Filter(sampleLog, tt.query)
			assert.Equal(t, tt.text, r.Text)
			assert.Equal(t, tt.shown, r.Shown)
			assert.Equal(t, 4, r.Total)
			assert.Equal(t, tt.status, r.Status)
		})
	}
}

func TestViewer(t *testing.T) {
	v := NewViewer(sampleLog)
	v.SetQuery("warn")
	assert.Equal(t, "WARN slow", v.Result().Text)

	v.SetRaw("WARN a\nWARN b")
	assert.Equal(t, "2 of 2 lines shown", v.Result().Status)
	assert.Equal(t, "warn", v.Query())
}

func TestPollerEnableDisable(t *testing.T) {
	var calls atomic.Int32
	updates := make(chan string, 16)
	p := &Poller{
		Interval: 10 * time.Millisecond,
		Fetch: func(context.Context) (string, error) {
			if calls.Add(1) == 2 {
				return "", errors.New("temporary")
			}
			return "log text", nil
		},
		OnUpdate: func(raw string) {
			select {
			case updates <- raw:
			default:
			}
		},
	}

	assert.False(t, p.Enabled())
	assert.Equal(t, "", p.Status())

	p.Enable(context.Background())
	p.Enable(context.Background())
	assert.True(t, p.Enabled())
	assert.Equal(t, "Auto-refreshing every 10ms", p.Status())

	select {
	case raw := <-updates:
		assert.Equal(t, "log text", raw)
	case <-time.After(2 * time.Second):
		t.Fatal("no update received")
	}

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)

	p.Disable()
	assert.False(t, p.Enabled())
	stopped := calls.Load()
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, stopped, calls.Load(), "no fetches after Disable")

	p.Disable()
}

func TestPollerDefaultStatus(t *testing.T) {
	p := &Poller{Fetch: func(context.Context) (string, error) { return "", nil }}
	p.Enable(context.Background())
	defer p.Disable()
	assert.Equal(t, "Auto-refreshing every 5s", p.Status())
}

func TestPollerStopsWithParentContext(t *testing.T) {
	var calls atomic.Int32
	p := &Poller{
		Interval: 10 * time.Millisecond,
		Fetch: func(context.Context) (string, error) {
			calls.Add(1)
			return "log text", nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.Enable(ctx)
	require.True(t, p.Enabled())
	cancel()

	require.Eventually(t, func() bool { return !p.Enabled() }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, "", p.Status())

	// A fresh Enable after the parent went away starts a new run.
	before := calls.Load()
	p.Enable(context.Background())
	defer p.Disable()
	assert.True(t, p.Enabled())
	require.Eventually(t, func() bool { return calls.Load() > before }, 2*time.Second, 5*time.Millisecond)
}
