package monitoring

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/gymcrowd/config"
	coremon "github.com/kilianp07/gymcrowd/core/monitoring"
)

type memTransport struct {
	mu     sync.Mutex
	events []*sentry.Event
}

func (m *memTransport) Configure(sentry.ClientOptions) {}
func (m *memTransport) SendEvent(e *sentry.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
}
func (m *memTransport) Flush(time.Duration) bool { return true }
func (m *memTransport) FlushWithContext(context.Context) bool { return true }
func (m *memTransport) Close() {}

func TestNewSentryMonitor_EmptyDSN(t *testing.T) {
	m, err := NewSentryMonitor(config.SentryConfig{})
	require.NoError(t, err)
	assert.IsType(t, coremon.NopMonitor{}, m)
}

func TestSentryMonitor_CapturesWithTags(t *testing.T) {
	tr := &memTransport{}
	client, err := sentry.NewClient(sentry.ClientOptions{Dsn: "https://key@sentry.invalid/1", Transport: tr})
	require.NoError(t, err)
	m := newSentryMonitor(client)

	m.CaptureException(errors.New("inference failed"), map[string]string{"day": "Monday", "model_state": "ready"})
	m.CaptureException(nil, nil)
	m.Flush(time.Second)

	tr.mu.Lock()
	defer tr.mu.Unlock()
	require.Len(t, tr.events, 1)
	assert.Equal(t, "Monday", tr.events[0].Tags["day"])
	assert.Equal(t, "gymcrowd", tr.events[0].Tags["service"])
}
