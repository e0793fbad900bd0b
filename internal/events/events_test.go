package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeEvent_StampsOriginAndTime(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	payload, err := encodeEvent(GroupEvent{GroupID: "g1", Action: ActionUpdated}, "instance-a", now)
	require.NoError(t, err)

	var event GroupEvent
	require.NoError(t, json.Unmarshal(payload, &event))
	assert.Equal(t, "g1", event.GroupID)
	assert.Equal(t, ActionUpdated, event.Action)
	assert.Equal(t, "instance-a", event.Origin)
	assert.True(t, now.Equal(event.Timestamp))
}

func TestEncodeEvent_KeepsExplicitOrigin(t *testing.T) {
	payload, err := encodeEvent(GroupEvent{GroupID: "g1", Origin: "cli"}, "instance-a", time.Now())
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"origin":"cli"`)
}

func TestConsumerProcess(t *testing.T) {
	c := &EventConsumer{origin: "instance-a"}
	ctx := context.Background()

	var handled []GroupEvent
	handle := func(_ context.Context, event GroupEvent) error {
		handled = append(handled, event)
		return nil
	}

	t.Run("event from another instance is handled", func(t *testing.T) {
		handled = nil
		err := c.process(ctx, []byte(`{"groupId":"g1","action":"updated","origin":"instance-b"}`), handle)
		require.NoError(t, err)
		require.Len(t, handled, 1)
		assert.Equal(t, "g1", handled[0].GroupID)
	})

	t.Run("own event is skipped", func(t *testing.T) {
		handled = nil
		err := c.process(ctx, []byte(`{"groupId":"g1","action":"updated","origin":"instance-a"}`), handle)
		require.NoError(t, err)
		assert.Empty(t, handled)
	})

	t.Run("malformed payload is dropped", func(t *testing.T) {
		handled = nil
		err := c.process(ctx, []byte(`not json`), handle)
		require.NoError(t, err)
		assert.Empty(t, handled)
	})

	t.Run("handler error is returned", func(t *testing.T) {
		err := c.process(ctx, []byte(`{"groupId":"g1","origin":"instance-b"}`), func(context.Context, GroupEvent) error {
			return errors.New("cache down")
		})
		assert.EqualError(t, err, "cache down")
	})
}

func TestNoopNotifier(t *testing.T) {
	var n Notifier = NoopNotifier{}
	assert.NoError(t, n.Publish(context.Background(), GroupEvent{GroupID: "g1"}))
	n.Close()
}
