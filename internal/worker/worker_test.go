package worker

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"printkit/internal/config"
	"printkit/internal/events"
	"printkit/internal/logger"
)

type fakeProcessor struct {
	seen      []events.Type
	fail      bool
	refreshes int32

	// When set, RefreshAll signals started and waits for release.
	started chan struct{}
	release chan struct{}
}

func (f *fakeProcessor) Process(_ context.Context, event events.Event) error {
	f.seen = append(f.seen, event.Type)
	if f.fail {
		return errors.New("boom")
	}
	return nil
}

func (f *fakeProcessor) RefreshAll(context.Context) error {
	atomic.AddInt32(&f.refreshes, 1)
	if f.started != nil {
		f.started <- struct{}{}
		<-f.release
	}
	return nil
}

func newWorker(p Processor) *Worker {
	return New(&config.Config{KafkaRequestsTopic: config.DefaultRequestsTopic}, logger.NewWithOutput("error", &bytes.Buffer{}), p)
}

func TestHandle(t *testing.T) {
	p := &fakeProcessor{}
	w := newWorker(p)

	assert.True(t, w.Handle(context.Background(), []byte(`{"type":"template.generate","data":{"blueprint_id":5}}`)))
	assert.False(t, w.Handle(context.Background(), []byte(`garbage`)))
	assert.False(t, w.Handle(context.Background(), []byte(`{"data":{}}`)))

	p.fail = true
	assert.False(t, w.Handle(context.Background(), []byte(`{"type":"product.create"}`)))
	assert.Equal(t, []events.Type{events.TemplateGenerate, events.ProductCreate}, p.seen)
}

func TestWithoutBrokersStartWaitsForCancel(t *testing.T) {
	w := newWorker(&fakeProcessor{})
	assert.Nil(t, w.reader)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()
	cancel()
	<-done
	w.Stop()
}

func TestSchedule(t *testing.T) {
	w := newWorker(&fakeProcessor{})
	require.NoError(t, w.Schedule(""))
	assert.Nil(t, w.scheduler)

	assert.Error(t, w.Schedule("not a cron spec"))

	require.NoError(t, w.Schedule("@every 1h"))
	assert.Len(t, w.scheduler.Entries(), 1)
	w.Stop()
}

func TestScheduledRefreshSkipsWhileRunning(t *testing.T) {
	p := &fakeProcessor{started: make(chan struct{}), release: make(chan struct{})}
	w := newWorker(p)

	done := make(chan struct{})
	go func() {
		w.refresh.Run()
		close(done)
	}()
	<-p.started

	// Overlapping ticks return without calling the processor.
	w.refresh.Run()
	w.refresh.Run()
	assert.Equal(t, int32(1), atomic.LoadInt32(&p.refreshes))

	close(p.release)
	<-done

	p.started = nil
	w.refresh.Run()
	assert.Equal(t, int32(2), atomic.LoadInt32(&p.refreshes))
}
