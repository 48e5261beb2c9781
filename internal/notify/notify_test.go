package notify_test

import (
	"sync"
	"testing"
	"time"

	"github.com/boddenberg/wallet-console-go/internal/notify"
	"github.com/boddenberg/wallet-console-go/internal/notify/notifytest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const unit = time.Second

func newManager(t *testing.T) (*notify.Manager, *notifytest.Clock) {
	t.Helper()
	clock := notifytest.NewClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	return notify.New(notify.WithClock(clock), notify.WithDelay(5*unit)), clock
}

func TestManager_ExpiresAfterDelay(t *testing.T) {
	m, clock := newManager(t)

	m.Error("Customer not found")
	clock.Advance(4 * unit)
	require.NotNil(t, m.Snapshot().Error)

	clock.Advance(1 * unit)
	snap := m.Snapshot()
	assert.Nil(t, snap.Error)
	assert.Nil(t, snap.Success)
}

func TestManager_NewMessageReplacesAndRestartsTimer(t *testing.T) {
	m, clock := newManager(t)

	m.Error("Insufficient balance")
	clock.Advance(3 * unit)
	m.Success("Transfer successful")

	clock.Advance(1 * unit) // t=4
	snap := m.Snapshot()
	assert.Nil(t, snap.Error)
	require.NotNil(t, snap.Success)
	assert.Equal(t, "Transfer successful", snap.Success.Message)

	clock.Advance(3 * unit) // t=7
	assert.NotNil(t, m.Snapshot().Success)

	clock.Advance(1 * unit) // t=8
	snap = m.Snapshot()
	assert.Nil(t, snap.Error)
	assert.Nil(t, snap.Success)
}

func TestManager_SameKindOverwrites(t *testing.T) {
	m, clock := newManager(t)

	m.Success("first")
	clock.Advance(2 * unit)
	m.Success("second")

	snap := m.Snapshot()
	require.NotNil(t, snap.Success)
	assert.Equal(t, "second", snap.Success.Message)
	assert.Equal(t, clock.Now(), snap.Success.At)
	assert.Equal(t, 1, clock.Pending(), "only one timer may be armed")
}

func TestManager_Clear(t *testing.T) {
	m, clock := newManager(t)

	m.Error("boom")
	m.Clear()

	assert.Nil(t, m.Snapshot().Error)
	assert.Zero(t, clock.Pending())
}

func TestManager_OnSetHook(t *testing.T) {
	var kinds []string
	m := notify.New(
		notify.WithClock(notifytest.NewClock(time.Now())),
		notify.OnSet(func(kind string) { kinds = append(kinds, kind) }),
	)

	m.Error("a")
	m.Success("b")

	assert.Equal(t, []string{notify.KindError, notify.KindSuccess}, kinds)
}

func TestManager_SystemClockExpires(t *testing.T) {
	m := notify.New(notify.WithDelay(20 * time.Millisecond))
	m.Success("saved")

	assert.Eventually(t, func() bool {
		s := m.Snapshot()
		return s.Success == nil && s.Error == nil
	}, time.Second, 5*time.Millisecond)
}

func TestManager_ConcurrentSets(t *testing.T) {
	m := notify.New(notify.WithDelay(time.Minute))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				m.Error("e")
			} else {
				m.Success("s")
			}
		}(i)
	}
	wg.Wait()

	snap := m.Snapshot()
	assert.True(t, (snap.Error == nil) != (snap.Success == nil), "exactly one slot is visible")
	m.Clear()
}
