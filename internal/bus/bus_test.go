package bus_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zervos/desk/internal/bus"
)

func TestPublishDeliversInSubscriptionOrder(t *testing.T) {
	b := bus.New(nil)

	var order []string
	b.Subscribe("evt", func(any) { order = append(order, "first") })
	b.Subscribe("evt", func(any) { order = append(order, "second") })

	b.Publish("evt", nil)

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestPublishCarriesDetail(t *testing.T) {
	b := bus.New(nil)

	var got any
	b.Subscribe("evt", func(detail any) { got = detail })

	b.Publish("evt", 42)

	assert.Equal(t, 42, got)
}

func TestUnsubscribeRemovesExactlyOneHandler(t *testing.T) {
	b := bus.New(nil)

	calls := map[string]int{}
	unsub := b.Subscribe("evt", func(any) { calls["a"]++ })
	b.Subscribe("evt", func(any) { calls["b"]++ })

	unsub()
	unsub() // second call is a no-op

	b.Publish("evt", nil)

	assert.Equal(t, 0, calls["a"])
	assert.Equal(t, 1, calls["b"])
}

func TestPastEventsAreNotReplayed(t *testing.T) {
	b := bus.New(nil)

	b.Publish("evt", nil)

	called := false
	b.Subscribe("evt", func(any) { called = true })

	assert.False(t, called)
}

func TestPanickingHandlerIsIsolated(t *testing.T) {
	b := bus.New(nil)

	b.Subscribe("evt", func(any) { panic("boom") })

	called := false
	b.Subscribe("evt", func(any) { called = true })

	b.Publish("evt", nil)

	assert.True(t, called)
}

func TestEventNamesAreIndependent(t *testing.T) {
	b := bus.New(nil)

	called := false
	b.Subscribe("evt-a", func(any) { called = true })

	b.Publish("evt-b", nil)

	assert.False(t, called)
}
