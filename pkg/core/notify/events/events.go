package events

import (
	"context"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/panjf2000/ants/v2"
	"github.com/scienceol/chemdash/pkg/common/code"
	"github.com/scienceol/chemdash/pkg/core/notify"
	"github.com/scienceol/chemdash/pkg/middleware/logger"
)

/*
	In-process publish/subscribe. Handlers run on an ants pool so a slow
	consumer (a websocket write) never blocks the dashboard that published.
	Delivery order between two messages is not guaranteed; messages carry
	enough data (notification ids) for consumers to reconcile.
*/

type Events struct {
	actions sync.Map
	pool    *ants.Pool
	wait    sync.WaitGroup
	// mu orders wait.Add against Close.
	mu     sync.Mutex
	closed bool
}

func NewEvents(poolSize int) notify.MsgCenter {
	pool, err := ants.NewPool(poolSize, ants.WithExpiryDuration(10*time.Second))
	if err != nil {
		pool, _ = ants.NewPool(ants.DefaultAntsPoolSize)
	}
	return &Events{pool: pool}
}

func (e *Events) Registry(_ context.Context, msgName notify.Action, handleFunc notify.HandleFunc) error {
	if _, ok := e.actions.LoadOrStore(msgName, handleFunc); ok {
		return code.NotifyActionAlreadyRegistryErr.WithMsg(string(msgName))
	}
	return nil
}

func (e *Events) Broadcast(ctx context.Context, msg *notify.SendMsg) error {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return code.NotifyClosedErr
	}
	msg.Timestamp = time.Now().Unix()
	if msg.UUID.IsNil() {
		msg.UUID = uuid.Must(uuid.NewV4())
	}

	h, ok := e.actions.Load(msg.Channel)
	if !ok {
		return nil
	}
	handle := h.(notify.HandleFunc)

	// The publishing request may finish before the handler runs.
	hctx := context.WithoutCancel(ctx)
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return code.NotifyClosedErr
	}
	e.wait.Add(1)
	e.mu.Unlock()
	if err := e.pool.Submit(func() {
		defer e.wait.Done()
		if err := handle(hctx, msg); err != nil {
			logger.Errorf(hctx, "handle msg fail action: %s, err: %+v", msg.Channel, err)
		}
	}); err != nil {
		e.wait.Done()
		logger.Errorf(ctx, "send msg fail action: %s, err: %+v", msg.Channel, err)
		return code.NotifySendMsgErr.WithErr(err)
	}
	return nil
}

// Close waits for in-flight handlers and releases the pool.
func (e *Events) Close(_ context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	e.wait.Wait()
	e.pool.Release()
	return nil
}
