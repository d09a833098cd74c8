// Package instance enforces the single-window model: the first process owns
// the shell, and every later invocation hands its argument vector to the
// owner and exits. The coordinator is the owner-side half; forward.go is the
// client-side half.
package instance

import (
	"log/slog"

	"github.com/starford/mudkip/internal/history"
	"github.com/starford/mudkip/internal/launch"
	"github.com/starford/mudkip/internal/pending"
	"github.com/starford/mudkip/internal/sse"
)

// Coordinator routes externally arriving open requests into the pending
// queue and onto the event stream, and records them in history.
type Coordinator struct {
	queue   *pending.Queue
	broker  *sse.Broker
	history history.Store
	logger  *slog.Logger
}

// NewCoordinator wires the coordinator. store may be nil when history is
// disabled.
func NewCoordinator(queue *pending.Queue, broker *sse.Broker, store history.Store, logger *slog.Logger) *Coordinator {
	return &Coordinator{queue: queue, broker: broker, history: store, logger: logger}
}

// SeedLaunchTarget enqueues the cold-start target, if any, so the shell's
// first consume finds it regardless of when the event stream connects.
func (c *Coordinator) SeedLaunchTarget(parsed launch.Parsed) {
	if parsed.Target == nil {
		return
	}
	c.record(*parsed.Target)
	payload := parsed.Target.Payload()
	c.queue.Push(payload)
	// The queue entry is what the shell's first consume finds; the event only
	// reaches shells that happen to be connected already.
	c.broker.Publish(sse.Event{Type: sse.EventOpenOnLaunch, Data: payload})
	c.logger.Info("instance: launch target queued",
		slog.String("kind", parsed.Target.Kind.String()),
		slog.String("path", parsed.Target.Path))
}

// HandleArgs processes an argument vector forwarded by a later invocation.
// It re-parses with the same grammar as cold start, so a forwarded --help is
// a no-op, as is a vector carrying neither a target nor options. Options are
// broadcast before the target so connected shells apply them first, and the
// shell takes focus only when there was something to deliver.
func (c *Coordinator) HandleArgs(args []string) {
	parsed := launch.ParseArgs(args)
	if parsed.ExitAfterPrint {
		return
	}
	if parsed.Target == nil && parsed.Options.IsEmpty() {
		return
	}

	if !parsed.Options.IsEmpty() {
		c.broker.Publish(sse.Event{Type: sse.EventStartupOptions, Data: parsed.Options})
	}
	if parsed.Target != nil {
		c.QueueExternalOpen(*parsed.Target)
	}
	c.broker.Publish(sse.Event{Type: sse.EventWindowFocus, Data: struct{}{}})
}

// QueueExternalOpen records the target, queues it for consumption, and
// notifies connected shells. The queue entry is authoritative; the event is
// only a nudge, so a shell that misses it still finds the target on its next
// consume.
func (c *Coordinator) QueueExternalOpen(target launch.Target) {
	c.record(target)
	payload := target.Payload()
	c.queue.Push(payload)
	c.broker.Publish(sse.Event{Type: sse.EventOpenedExternal, Data: payload})
	c.logger.Info("instance: external open queued",
		slog.String("kind", payload.TargetType),
		slog.String("path", payload.Path))
}

func (c *Coordinator) record(target launch.Target) {
	if c.history == nil {
		return
	}
	if err := c.history.RecordOpen(target); err != nil {
		c.logger.Warn("instance: record open failed",
			slog.String("path", target.Path),
			slog.String("error", err.Error()))
	}
}
