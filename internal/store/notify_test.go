package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifierDeliversToAllSubscribers(t *testing.T) {
	n := NewNotifier()

	var a, b []Change
	n.Subscribe(func(c Change) { a = append(a, c) })
	n.Subscribe(func(c Change) { b = append(b, c) })

	n.Publish(Change{Key: KeyHistory, Action: ActionAdded})

	require.Len(t, a, 1)
	require.Len(t, b, 1)
	assert.Equal(t, KeyHistory, a[0].Key)
	assert.Equal(t, ActionAdded, a[0].Action)
}

func TestNotifierCancelStopsDelivery(t *testing.T) {
	n := NewNotifier()

	var got []Change
	cancel := n.Subscribe(func(c Change) { got = append(got, c) })

	n.Publish(Change{Key: KeyBackground, Action: ActionSaved})
	cancel()
	n.Publish(Change{Key: KeyBackground, Action: ActionCleared})

	require.Len(t, got, 1)
	assert.Equal(t, ActionSaved, got[0].Action)
}

func TestNotifierNoSubscribers(t *testing.T) {
	n := NewNotifier()
	// must not panic
	n.Publish(Change{Key: KeyMindMap, Action: ActionUpdated})
}
