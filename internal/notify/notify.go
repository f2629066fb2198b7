// Package notify delivers rendered reports through operator-configured
// channels.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

// Notifier delivers one rendered report over a single channel.
type Notifier interface {
	Kind() string
	Deliver(ctx context.Context, text string) error
}

// ChannelConfig is one entry of the notify_channels setting, stored as a
// JSON array. Type selects the channel kind; the remaining fields are
// kind-specific.
type ChannelConfig struct {
	Type string `json:"type"`
	To   string `json:"to,omitempty"`
}

// Factory builds a channel from its config entry.
type Factory func(cfg ChannelConfig) (Notifier, error)

// Registry maps channel kind tags to factories. An unknown kind is a
// configuration error surfaced to the caller, never a crash.
type Registry struct {
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

func (r *Registry) Register(kind string, f Factory) {
	r.factories[kind] = f
}

// Build instantiates the channels named by the raw notify_channels JSON.
// Entries with unknown kinds or broken configs are collected into the
// returned error while the valid channels still come back usable.
func (r *Registry) Build(raw string) ([]Notifier, error) {
	if raw == "" {
		return nil, nil
	}
	var cfgs []ChannelConfig
	if err := json.Unmarshal([]byte(raw), &cfgs); err != nil {
		return nil, fmt.Errorf("parse notify_channels: %w", err)
	}

	var (
		channels []Notifier
		errs     []error
	)
	for _, cfg := range cfgs {
		factory, ok := r.factories[cfg.Type]
		if !ok {
			errs = append(errs, fmt.Errorf("unknown channel type %q", cfg.Type))
			continue
		}
		ch, err := factory(cfg)
		if err != nil {
			errs = append(errs, fmt.Errorf("build %s channel: %w", cfg.Type, err))
			continue
		}
		channels = append(channels, ch)
	}
	return channels, errors.Join(errs...)
}

// Dispatcher fans a report out to every configured channel.
type Dispatcher struct {
	channels []Notifier
}

func NewDispatcher(channels ...Notifier) *Dispatcher {
	return &Dispatcher{channels: channels}
}

// Send delivers text through all channels and reports whether at least one
// delivery succeeded. Per-channel failures are logged, never fatal.
func (d *Dispatcher) Send(ctx context.Context, text string) bool {
	if len(d.channels) == 0 {
		slog.InfoContext(ctx, "No notification channels configured, skipping delivery")
		return false
	}
	delivered := false
	for _, ch := range d.channels {
		if err := ch.Deliver(ctx, text); err != nil {
			slog.ErrorContext(ctx, "Notification delivery failed",
				"channel", ch.Kind(),
				"error", err,
			)
			continue
		}
		slog.InfoContext(ctx, "Report delivered", "channel", ch.Kind())
		delivered = true
	}
	return delivered
}

// Close releases any channels holding open connections.
func (d *Dispatcher) Close() {
	for _, ch := range d.channels {
		if closer, ok := ch.(interface{ Close() error }); ok {
			closer.Close()
		}
	}
}
