// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package contact

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// DefaultDelay is the placeholder interval of a submission.
const DefaultDelay = time.Second

var (
	// ErrIncomplete is returned when a draft with empty required fields
	// reaches Send. Handlers validate first, so this signals a caller bug.
	ErrIncomplete = errors.New("contact: draft has empty required fields")

	// ErrInFlight is returned when the same browser already has a
	// submission waiting on its delay.
	ErrInFlight = errors.New("contact: submission already in progress")
)

// Notification is a toast shown to the visitor.
type Notification struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Variant     string `json:"variant"`
}

// Sent is the single notification a submission produces.
var Sent = Notification{
	Title:       "Message sent successfully!",
	Description: "We'll get back to you as soon as possible.",
	Variant:     "success",
}

// Service runs simulated submissions. Nothing is delivered anywhere: a
// submission is one timer that always fires with Sent unless the request
// context ends first.
type Service struct {
	gate  Gate
	delay time.Duration
}

// NewService creates a Service with the given gate and delay. A nil gate
// means an in-memory one.
func NewService(gate Gate, delay time.Duration) *Service {
	if gate == nil {
		gate = NewMemoryGate()
	}
	if delay < 0 {
		delay = 0
	}
	return &Service{gate: gate, delay: delay}
}

// Delay returns the configured placeholder interval.
func (s *Service) Delay() time.Duration {
	return s.delay
}

// Busy reports whether key has a submission in progress.
func (s *Service) Busy(ctx context.Context, key string) bool {
	busy, err := s.gate.Busy(ctx, key)
	if err != nil {
		slog.Warn("contact gate lookup failed", "error", err)
		return false
	}
	return busy
}

// Send performs one simulated submission for the browser identified by key.
// It holds the gate for key for the whole delay, then returns Sent.
func (s *Service) Send(ctx context.Context, key string, d Draft) (Notification, error) {
	if !d.Complete() {
		return Notification{}, ErrIncomplete
	}

	ok, err := s.gate.Acquire(ctx, key, s.delay)
	if err != nil {
		return Notification{}, err
	}
	if !ok {
		return Notification{}, ErrInFlight
	}
	defer func() {
		// The request context may already be done; release regardless.
		if err := s.gate.Release(context.WithoutCancel(ctx), key); err != nil {
			slog.Warn("contact gate release failed", "error", err)
		}
	}()

	id := uuid.New()
	slog.Info("contact submission started",
		"id", id,
		"name_len", len(d.Name),
		"email_len", len(d.Email),
		"subject_len", len(d.Subject),
		"message_len", len(d.Message),
	)

	if err := wait(ctx, s.delay); err != nil {
		slog.Info("contact submission abandoned", "id", id, "error", err)
		return Notification{}, err
	}

	slog.Info("contact submission completed", "id", id)
	return Sent, nil
}

// wait blocks for d or until ctx is done, whichever comes first.
func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
