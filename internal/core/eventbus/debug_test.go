package eventbus_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/colonyops/beacon/internal/core/eventbus"
	"github.com/colonyops/beacon/internal/core/eventbus/testbus"
	"github.com/colonyops/beacon/internal/core/notify"
	"github.com/colonyops/beacon/internal/core/toast"
)

func TestRegisterDebugLogger(t *testing.T) {
	tb := testbus.New(t)

	var buf bytes.Buffer
	eventbus.RegisterDebugLogger(tb.EventBus, zerolog.New(&buf).Level(zerolog.DebugLevel))

	tb.PublishNotificationChanged(eventbus.NotificationChangedPayload{Kind: notify.EventAdded, Unread: 3})
	tb.PublishToastChanged(eventbus.ToastChangedPayload{
		Kind:   toast.EventRemoved,
		Toast:  toast.Toast{ID: "t-1"},
		Reason: toast.ReasonExpired,
	})

	tb.AssertPublished(t, eventbus.EventToastChanged)

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, `"message":"event fired"`))
	assert.Contains(t, out, `"unread":3`)
	assert.Contains(t, out, `"reason":"expired"`)
}

func TestRegisterDebugLogger_drop(t *testing.T) {
	bus := eventbus.New(0)

	var buf bytes.Buffer
	eventbus.RegisterDebugLogger(bus, zerolog.New(&buf))

	// No consumer is running and the buffer is zero, so the event drops.
	bus.PublishToastChanged(eventbus.ToastChangedPayload{Kind: toast.EventCleared})

	assert.Contains(t, buf.String(), "event dropped")
}
