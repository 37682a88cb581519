package bus

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicPublishSubscribe(t *testing.T) {
	b := New()
	var got []Event
	_, err := b.Subscribe("climber.contact.lost", func(e Event) error {
		got = append(got, e)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, b.Publish(NewEvent("climber.contact.lost", "spider", 7, 0.6)))
	require.NoError(t, b.Publish(NewEvent("climber.facing.changed", "spider", 8, nil)))

	require.Len(t, got, 1)
	assert.Equal(t, "spider", got[0].Source())
	assert.Equal(t, uint64(7), got[0].Tick())
	assert.Equal(t, 0.6, got[0].Data())
}

func TestDeliveryOrderFollowsSubscriptionOrder(t *testing.T) {
	b := New()
	var order []int
	for i := 0; i < 5; i++ {
		i := i
		_, err := b.Subscribe("x", func(Event) error {
			order = append(order, i)
			return nil
		})
		require.NoError(t, err)
	}
	_, err := b.Subscribe(Wildcard, func(Event) error {
		order = append(order, 99)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, b.Publish(NewEvent("x", "", 0, nil)))
	assert.Equal(t, []int{0, 1, 2, 3, 4, 99}, order)
}

func TestPublishAggregatesErrors(t *testing.T) {
	b := New()
	errA := errors.New("a")
	errB := errors.New("b")
	_, _ = b.Subscribe("x", func(Event) error { return errA })
	_, _ = b.Subscribe("x", func(Event) error { return errB })

	err := b.Publish(NewEvent("x", "", 0, nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.Equal(t, uint64(1), b.GetMetrics().Errors)
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	calls := 0
	sub, err := b.Subscribe("x", func(Event) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	require.True(t, sub.IsActive())
	require.NotEmpty(t, sub.ID())

	require.NoError(t, b.Unsubscribe(sub))
	require.NoError(t, sub.Cancel())
	require.NoError(t, b.Unsubscribe(nil))
	require.False(t, sub.IsActive())

	require.NoError(t, b.Publish(NewEvent("x", "", 0, nil)))
	assert.Zero(t, calls)
	assert.Zero(t, b.GetMetrics().SubscribersActive)
}

func TestFiltersAndBatch(t *testing.T) {
	b := New()
	calls := 0
	_, _ = b.Subscribe("x", func(Event) error {
		calls++
		return nil
	})

	drop := func(e Event) bool { return e.Tick()%2 == 0 }
	require.NoError(t, b.PublishWithFilters(NewEvent("x", "", 1, nil), drop))
	require.NoError(t, b.PublishWithFilters(NewEvent("x", "", 2, nil), drop))
	require.NoError(t, b.PublishBatch(NewEvent("x", "", 3, nil), NewEvent("x", "", 4, nil)))

	assert.Equal(t, 3, calls)
	m := b.GetMetrics()
	assert.Equal(t, uint64(1), m.DroppedByFilters)
	assert.Equal(t, uint64(3), m.Published)
}

func TestSubscribeNilHandler(t *testing.T) {
	_, err := New().Subscribe("x", nil)
	require.ErrorIs(t, err, ErrNilHandler)
}
