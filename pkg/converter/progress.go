package converter

import "log/slog"

// ProgressEvent reports the unit currently being converted. The last event of
// a batch has Done set, Current == Total and Label == FinishedLabel.
type ProgressEvent struct {
	Current int
	Total   int
	Label   string
	Done    bool
}

// ProgressFunc consumes progress events. It runs on its own goroutine, never on
// the one doing the conversion, and receives events strictly in order.
type ProgressFunc func(ProgressEvent)

// progressPump carries events from the batch to the consumer through a bounded
// channel. A full channel blocks the producer; nothing is dropped.
type progressPump struct {
	events chan ProgressEvent
	done   chan struct{}
	logger *slog.Logger
}

func newProgressPump(size int, fn ProgressFunc, logger *slog.Logger) *progressPump {
	if size <= 0 {
		size = DefaultProgressBuffer
	}
	p := &progressPump{
		events: make(chan ProgressEvent, size),
		done:   make(chan struct{}),
		logger: logger,
	}
	go p.run(fn)
	return p
}

func (p *progressPump) run(fn ProgressFunc) {
	defer close(p.done)
	for ev := range p.events {
		if fn != nil {
			p.deliver(fn, ev)
		}
	}
}

// deliver shields the pump from a panicking consumer so the producer never
// blocks on a dead channel.
func (p *progressPump) deliver(fn ProgressFunc, ev ProgressEvent) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Panic recovered in progress consumer", "panicValue", r, slog.Int("current", ev.Current))
		}
	}()
	fn(ev)
}

func (p *progressPump) emit(ev ProgressEvent) { p.events <- ev }

// finish sends the final event, closes the channel and waits until the
// consumer has seen everything.
func (p *progressPump) finish(total int) {
	p.events <- ProgressEvent{Current: total, Total: total, Label: FinishedLabel, Done: true}
	close(p.events)
	<-p.done
}
