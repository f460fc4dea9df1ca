package registry

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTool is a configurable Tool for tests.
type fakeTool struct {
	name     string
	desc     string
	initFunc func(ctx context.Context) error
	runFunc  func(ctx context.Context, args map[string]any) (any, error)
}

var _ Tool = (*fakeTool)(nil)

func (f *fakeTool) Name() string        { return f.name }
func (f *fakeTool) Description() string { return f.desc }

func (f *fakeTool) Initialize(ctx context.Context) error {
	if f.initFunc != nil {
		return f.initFunc(ctx)
	}
	return nil
}

func (f *fakeTool) Run(ctx context.Context, args map[string]any) (any, error) {
	if f.runFunc != nil {
		return f.runFunc(ctx, args)
	}
	return "ok", nil
}

func newTestRegistry(t *testing.T, opts ...Option) *Registry {
	t.Helper()
	r, err := New(opts...)
	require.NoError(t, err)
	t.Cleanup(r.Close)
	return r
}

func TestRegister(t *testing.T) {
	r := newTestRegistry(t)

	t.Run("unnamed tool rejected", func(t *testing.T) {
		assert.ErrorIs(t, r.Register(&fakeTool{}), ErrUnnamedTool)
		assert.ErrorIs(t, r.Register(nil), ErrUnnamedTool)
	})

	t.Run("last writer wins", func(t *testing.T) {
		require.NoError(t, r.Register(&fakeTool{name: "echo", desc: "first"}))
		require.NoError(t, r.Register(&fakeTool{name: "echo", desc: "second"}))

		infos := r.List()
		require.Len(t, infos, 1)
		assert.Equal(t, "second", infos[0].Description)
	})
}

func TestUnregister(t *testing.T) {
	r := newTestRegistry(t)

	require.NoError(t, r.Register(&fakeTool{name: "echo"}))
	assert.True(t, r.Unregister("echo"))
	assert.False(t, r.Unregister("echo"))

	_, err := r.Tool("echo")
	assert.ErrorIs(t, err, ErrToolNotFound)
}

func TestInitializeAll_AllSucceed(t *testing.T) {
	r := newTestRegistry(t)

	require.NoError(t, r.Register(&fakeTool{name: "a"}))
	require.NoError(t, r.Register(&fakeTool{name: "b"}))

	require.NoError(t, r.InitializeAll(context.Background(), time.Second))

	status := r.GetStatus()
	assert.True(t, status.AllReady)
	assert.Equal(t, StateReady, status.Tools["a"].State)
	assert.Equal(t, StateReady, status.Tools["b"].State)
}

func TestInitializeAll_FirstFailureCancelsPending(t *testing.T) {
	r := newTestRegistry(t)

	bErr := errors.New("b exploded")
	cCancelled := make(chan struct{})

	// a finishes before b fails; c blocks until cancelled.
	require.NoError(t, r.Register(&fakeTool{name: "a"}))
	require.NoError(t, r.Register(&fakeTool{name: "b", initFunc: func(ctx context.Context) error {
		time.Sleep(20 * time.Millisecond)
		return bErr
	}}))
	require.NoError(t, r.Register(&fakeTool{name: "c", initFunc: func(ctx context.Context) error {
		<-ctx.Done()
		close(cCancelled)
		return ctx.Err()
	}}))

	err := r.InitializeAll(context.Background(), 5*time.Second)
	require.ErrorIs(t, err, bErr)

	select {
	case <-cCancelled:
	case <-time.After(time.Second):
		t.Fatal("pending initializer was not cancelled")
	}

	status := r.GetStatus()
	assert.False(t, status.AllReady)
	assert.Equal(t, StateReady, status.Tools["a"].State, "already-finished tool stays ready")
	assert.Equal(t, StateFailed, status.Tools["b"].State)
	assert.Equal(t, bErr.Error(), status.Tools["b"].LastError)
	assert.Equal(t, StateFailed, status.Tools["c"].State)
}

func TestInitializeAll_Timeout(t *testing.T) {
	r := newTestRegistry(t)

	require.NoError(t, r.Register(&fakeTool{name: "slow", initFunc: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}}))

	err := r.InitializeAll(context.Background(), 30*time.Millisecond)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestWaitUntilReady(t *testing.T) {
	r := newTestRegistry(t)

	require.NoError(t, r.Register(&fakeTool{name: "a"}))
	require.NoError(t, r.Register(&fakeTool{name: "b", initFunc: func(ctx context.Context) error {
		time.Sleep(30 * time.Millisecond)
		return nil
	}}))

	go r.InitializeAll(context.Background(), time.Second)

	require.NoError(t, r.WaitUntilReady(context.Background(), time.Second, 5*time.Millisecond))
	assert.True(t, r.GetStatus().AllReady)
}

func TestWaitUntilReady_TimeoutListsNames(t *testing.T) {
	r := newTestRegistry(t)

	require.NoError(t, r.Register(&fakeTool{name: "never"}))

	err := r.WaitUntilReady(context.Background(), 20*time.Millisecond, 5*time.Millisecond)
	require.ErrorIs(t, err, ErrTimeout)
	assert.Contains(t, err.Error(), "never")
}

func TestAcquireSlot_UnknownTool(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.AcquireSlot(context.Background(), "ghost", "")
	assert.ErrorIs(t, err, ErrToolNotFound)
}

func TestAcquireSlot_GeneratesCallID(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Register(&fakeTool{name: "echo"}))

	slot, err := r.AcquireSlot(context.Background(), "echo", "")
	require.NoError(t, err)
	defer slot.Release()
	assert.NotEmpty(t, slot.CallID())

	named, err := r.AcquireSlot(context.Background(), "echo", "my-call")
	require.NoError(t, err)
	defer named.Release()
	assert.Equal(t, "my-call", named.CallID())
}

func TestAcquireSlot_ConcurrencyCeiling(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Register(&fakeTool{name: "bounded"}, WithConcurrencyLimit(2)))

	const callers = 5
	var (
		running atomic.Int32
		maxSeen atomic.Int32
		wg      sync.WaitGroup
	)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			slot, err := r.AcquireSlot(context.Background(), "bounded", "")
			assert.NoError(t, err)

			now := running.Add(1)
			for {
				seen := maxSeen.Load()
				if now <= seen || maxSeen.CompareAndSwap(seen, now) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			running.Add(-1)
			slot.Release()
		}()
	}
	wg.Wait()

	// All callers eventually got through, never more than 2 at once.
	assert.LessOrEqual(t, maxSeen.Load(), int32(2))
	assert.Zero(t, r.GetStatus().Tools["bounded"].RunningCount)
}

func TestAcquireSlot_DelayedNotRejected(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Register(&fakeTool{name: "solo"}, WithConcurrencyLimit(1)))

	ctx := context.Background()
	first, err := r.AcquireSlot(ctx, "solo", "")
	require.NoError(t, err)

	acquired := make(chan *Slot)
	go func() {
		slot, err := r.AcquireSlot(ctx, "solo", "")
		assert.NoError(t, err)
		acquired <- slot
	}()

	select {
	case <-acquired:
		t.Fatal("second caller admitted past the limit")
	case <-time.After(20 * time.Millisecond):
	}

	first.Release()
	select {
	case slot := <-acquired:
		slot.Release()
	case <-time.After(time.Second):
		t.Fatal("waiting caller was never admitted")
	}
}

func TestAcquireSlot_ContextCancelledWhileWaiting(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Register(&fakeTool{name: "solo"}, WithConcurrencyLimit(1)))

	first, err := r.AcquireSlot(context.Background(), "solo", "")
	require.NoError(t, err)
	defer first.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = r.AcquireSlot(ctx, "solo", "")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSetConcurrencyLimit(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Register(&fakeTool{name: "tool"}, WithConcurrencyLimit(1)))

	assert.ErrorIs(t, r.SetConcurrencyLimit("ghost", 1), ErrToolNotFound)

	ctx := context.Background()
	slot, err := r.AcquireSlot(ctx, "tool", "")
	require.NoError(t, err)

	// Raising the limit mid-flight admits one more caller: capacity is
	// max(limit - running, 0) = 1.
	require.NoError(t, r.SetConcurrencyLimit("tool", 2))
	second, err := r.AcquireSlot(ctx, "tool", "")
	require.NoError(t, err)

	blockedCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = r.AcquireSlot(blockedCtx, "tool", "")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// Finishing calls free the rebuilt limiter's reserved capacity.
	slot.Release()
	third, err := r.AcquireSlot(ctx, "tool", "")
	require.NoError(t, err)

	second.Release()
	third.Release()

	// Double release is swallowed, not fatal.
	third.Release()
}

func TestSetConcurrencyLimit_WaiterSurvivesRebuild(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Register(&fakeTool{name: "solo"}, WithConcurrencyLimit(1)))

	ctx := context.Background()
	first, err := r.AcquireSlot(ctx, "solo", "")
	require.NoError(t, err)

	acquired := make(chan *Slot)
	go func() {
		slot, err := r.AcquireSlot(ctx, "solo", "")
		assert.NoError(t, err)
		acquired <- slot
	}()

	select {
	case <-acquired:
		t.Fatal("second caller admitted past the limit")
	case <-time.After(20 * time.Millisecond):
	}

	// Same limit, fresh limiter: the waiter must re-queue against the
	// rebuilt channel and be admitted once the first call finishes.
	require.NoError(t, r.SetConcurrencyLimit("solo", 1))
	first.Release()

	select {
	case slot := <-acquired:
		slot.Release()
	case <-time.After(time.Second):
		t.Fatal("waiter was never admitted after the limiter rebuild")
	}
}

func TestSetConcurrencyLimit_RaiseWakesBlockedWaiter(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Register(&fakeTool{name: "solo"}, WithConcurrencyLimit(1)))

	ctx := context.Background()
	first, err := r.AcquireSlot(ctx, "solo", "")
	require.NoError(t, err)

	acquired := make(chan *Slot)
	go func() {
		slot, err := r.AcquireSlot(ctx, "solo", "")
		assert.NoError(t, err)
		acquired <- slot
	}()

	select {
	case <-acquired:
		t.Fatal("second caller admitted past the limit")
	case <-time.After(20 * time.Millisecond):
	}

	// Raising the limit admits the waiter without any release.
	require.NoError(t, r.SetConcurrencyLimit("solo", 2))
	select {
	case slot := <-acquired:
		slot.Release()
	case <-time.After(time.Second):
		t.Fatal("waiter was not admitted after the limit was raised")
	}
	first.Release()
}

func TestUnregister_WakesBlockedWaiter(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Register(&fakeTool{name: "solo"}, WithConcurrencyLimit(1)))

	first, err := r.AcquireSlot(context.Background(), "solo", "")
	require.NoError(t, err)
	defer first.Release()

	errs := make(chan error, 1)
	go func() {
		_, err := r.AcquireSlot(context.Background(), "solo", "")
		errs <- err
	}()

	time.Sleep(20 * time.Millisecond)
	require.True(t, r.Unregister("solo"))

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, ErrToolNotFound)
	case <-time.After(time.Second):
		t.Fatal("waiter did not observe the unregistration")
	}
}

func TestSetConcurrencyLimit_Unbounded(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Register(&fakeTool{name: "tool"}, WithConcurrencyLimit(1)))
	require.NoError(t, r.SetConcurrencyLimit("tool", 0))

	ctx := context.Background()
	var slots []*Slot
	for i := 0; i < 10; i++ {
		slot, err := r.AcquireSlot(ctx, "tool", "")
		require.NoError(t, err)
		slots = append(slots, slot)
	}
	for _, slot := range slots {
		slot.Release()
	}
}

func TestEnforceReadiness(t *testing.T) {
	r := newTestRegistry(t, WithEnforceReadiness())
	require.NoError(t, r.Register(&fakeTool{name: "tool"}))

	_, err := r.AcquireSlot(context.Background(), "tool", "")
	assert.ErrorIs(t, err, ErrToolNotReady)

	require.NoError(t, r.InitializeAll(context.Background(), time.Second))
	slot, err := r.AcquireSlot(context.Background(), "tool", "")
	require.NoError(t, err)
	slot.Release()
}

func TestAdvisoryReadinessByDefault(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Register(&fakeTool{name: "tool"}))

	// No InitializeAll: invocation is the caller's choice.
	slot, err := r.AcquireSlot(context.Background(), "tool", "")
	require.NoError(t, err)
	slot.Release()
}

func TestRegisterAndCancelCall(t *testing.T) {
	r := newTestRegistry(t, WithCancelWait(100*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		<-ctx.Done()
		close(done)
	}()

	callID := r.RegisterCall("", cancel, done)
	require.NotEmpty(t, callID)

	assert.True(t, r.CancelCall(context.Background(), callID))
	select {
	case <-done:
	default:
		t.Fatal("cancel was not delivered")
	}

	// The association is removed.
	assert.False(t, r.CancelCall(context.Background(), callID))
	assert.False(t, r.CancelCall(context.Background(), "unknown"))
}

func TestCompleteCall(t *testing.T) {
	r := newTestRegistry(t)

	_, cancel := context.WithCancel(context.Background())
	callID := r.RegisterCall("job-1", cancel, nil)
	assert.Equal(t, "job-1", callID)

	r.CompleteCall(callID)
	assert.False(t, r.CancelCall(context.Background(), callID))
}

func TestListeners(t *testing.T) {
	r := newTestRegistry(t)

	assert.ErrorIs(t, r.AddListener(nil), ErrNilListener)

	var mu sync.Mutex
	events := make(map[string]int)
	ready := make(chan struct{}, 16)
	require.NoError(t, r.AddListener(func(event string, payload map[string]any) {
		mu.Lock()
		events[event]++
		mu.Unlock()
		ready <- struct{}{}
	}))

	// A panicking listener never breaks the emitting operation.
	require.NoError(t, r.AddListener(func(event string, payload map[string]any) {
		panic("listener bug")
	}))

	require.NoError(t, r.Register(&fakeTool{name: "tool"}))
	slot, err := r.AcquireSlot(context.Background(), "tool", "")
	require.NoError(t, err)
	slot.Release()

	for i := 0; i < 3; i++ {
		select {
		case <-ready:
		case <-time.After(time.Second):
			t.Fatal("listener never ran")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, events[EventToolRegistered])
	assert.Equal(t, 1, events[EventCallStarted])
	assert.Equal(t, 1, events[EventCallFinished])
}

func TestGetStatus(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Register(&fakeTool{name: "a"}, WithConcurrencyLimit(3)))
	require.NoError(t, r.Register(&fakeTool{name: "b"}))

	status := r.GetStatus()
	assert.False(t, status.AllReady)
	assert.Equal(t, StateRegistered, status.Tools["a"].State)
	assert.Equal(t, 3, status.Tools["a"].ConcurrencyLimit)
	assert.Equal(t, 0, status.Tools["b"].ConcurrencyLimit)

	require.NoError(t, r.InitializeAll(context.Background(), time.Second))

	slot, err := r.AcquireSlot(context.Background(), "a", "")
	require.NoError(t, err)

	status = r.GetStatus()
	assert.True(t, status.AllReady)
	assert.Equal(t, 1, status.Tools["a"].RunningCount)
	slot.Release()
}
