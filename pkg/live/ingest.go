package live

import (
	"context"
	"errors"

	"cdr.dev/slog"

	"github.com/recera/netviz/pkg/debug"
	"github.com/recera/netviz/pkg/netgraph"
)

// Sink receives the events produced from inbound frames.
type Sink interface {
	Dispatch(ctx context.Context, ev netgraph.Event) error
}

// HandlerFunc turns a frame of a registered type into an event.
// Returning a nil event drops the frame.
type HandlerFunc func(frame []byte) (netgraph.Event, error)

// Ingestor turns publisher frames into controller events.
// It is meant to be driven by a single reader goroutine.
type Ingestor struct {
	sink     Sink
	handlers map[string]HandlerFunc

	created int
	dropped int
}

// NewIngestor creates an ingestor feeding sink.
func NewIngestor(sink Sink) *Ingestor {
	return &Ingestor{sink: sink, handlers: make(map[string]HandlerFunc)}
}

// Register routes frames of msgType to h instead of treating them as creations.
// This is where a future delete or update message would plug in.
func (in *Ingestor) Register(msgType string, h HandlerFunc) {
	in.handlers[msgType] = h
}

// Created returns the number of creation events the sink accepted.
func (in *Ingestor) Created() int { return in.created }

// Dropped returns the number of malformed frames discarded.
func (in *Ingestor) Dropped() int { return in.dropped }

// Handle processes one text frame. Malformed frames are logged and dropped;
// the returned error is informational and never needs to stop the reader.
func (in *Ingestor) Handle(ctx context.Context, frame []byte) error {
	typ, err := PeekType(frame)
	if err != nil {
		return in.drop(ctx, frame, err)
	}
	if typ == TypeConn {
		debug.Debug(ctx, "handshake received")
		return nil
	}

	if h, ok := in.handlers[typ]; ok {
		ev, err := h(frame)
		if err != nil {
			if !errors.Is(err, ErrProtocol) {
				err = errors.Join(ErrProtocol, err)
			}
			return in.drop(ctx, frame, err)
		}
		if ev == nil {
			return nil
		}
		return in.sink.Dispatch(ctx, ev)
	}

	m, err := DecodeMessage(frame)
	if err == nil {
		err = m.Validate()
	}
	if err != nil {
		return in.drop(ctx, frame, err)
	}
	if err := in.sink.Dispatch(ctx, netgraph.Create{Info: m.Info()}); err != nil {
		return err
	}
	in.created++
	return nil
}

func (in *Ingestor) drop(ctx context.Context, frame []byte, err error) error {
	in.dropped++
	debug.Warn(ctx, "dropping malformed frame", slog.F("frame", truncate(frame, 256)), slog.Error(err))
	return err
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
