package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusBus_PublishReachesAllSubscribers(t *testing.T) {
	bus := NewStatusBus()

	var first, second []Status
	bus.Subscribe(func(s Status) { first = append(first, s) })
	bus.Subscribe(func(s Status) { second = append(second, s) })

	bus.Publish(StatusDownloading)
	bus.Publish(StatusSuccess)

	assert.Equal(t, []Status{StatusDownloading, StatusSuccess}, first)
	assert.Equal(t, []Status{StatusDownloading, StatusSuccess}, second)
}

func TestStatusBus_UnsubscribeStopsDelivery(t *testing.T) {
	bus := NewStatusBus()

	var seen []Status
	unsubscribe := bus.Subscribe(func(s Status) { seen = append(seen, s) })

	bus.Publish(StatusSyncing)
	unsubscribe()
	bus.Publish(StatusError)

	assert.Equal(t, []Status{StatusSyncing}, seen)
}

func TestStatusBus_LastTracksMostRecent(t *testing.T) {
	bus := NewStatusBus()
	assert.Equal(t, StatusIdle, bus.Last())

	bus.Publish(StatusOffline)
	assert.Equal(t, StatusOffline, bus.Last())

	bus.Publish(StatusIdle)
	assert.Equal(t, StatusIdle, bus.Last())
}
