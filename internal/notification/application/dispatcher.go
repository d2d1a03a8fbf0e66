package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cristianortiz/bidmaster/internal/notification/domain"
	"github.com/cristianortiz/bidmaster/internal/shared/logger"
	userdomain "github.com/cristianortiz/bidmaster/internal/user/domain"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// Dispatcher turns auction events into in-app notifications and emails.
// Every emission is independent: failures are logged and collected, never
// allowed to stop the remaining emissions.
type Dispatcher struct {
	store   domain.NotificationStore
	mailer  domain.Mailer
	users   userdomain.UserRepository
	timeout time.Duration

	inflight sync.WaitGroup
}

func NewDispatcher(store domain.NotificationStore, mailer domain.Mailer, users userdomain.UserRepository, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		store:   store,
		mailer:  mailer,
		users:   users,
		timeout: timeout,
	}
}

// Dispatch emits every event and returns the combined failures, if any.
func (d *Dispatcher) Dispatch(ctx context.Context, events ...domain.Event) error {
	var errs error
	for _, ev := range events {
		if err := d.dispatchOne(ctx, ev); err != nil {
			log.Warn("Notification dispatch failed",
				zap.String("event", fmt.Sprintf("%T", ev)),
				zap.String("recipient", ev.Recipient().String()),
				zap.Error(err),
			)
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// DispatchWithin runs Dispatch detached from ctx cancellation and gives up
// waiting after the dispatcher timeout. Emissions still running at that point
// finish in the background.
func (d *Dispatcher) DispatchWithin(ctx context.Context, events ...domain.Event) error {
	tctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	done := make(chan error, 1)

	d.inflight.Add(1)
	go func() {
		defer d.inflight.Done()
		defer cancel()
		done <- d.Dispatch(tctx, events...)
	}()

	select {
	case err := <-done:
		return err
	case <-tctx.Done():
		return fmt.Errorf("notification dispatch: %w", tctx.Err())
	}
}

// DispatchAsync is fire-and-forget; failures are only logged.
func (d *Dispatcher) DispatchAsync(events ...domain.Event) {
	if len(events) == 0 {
		return
	}
	d.inflight.Add(1)
	go func() {
		defer d.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := d.Dispatch(ctx, events...); err != nil {
			log.Warn("Async notification dispatch finished with errors",
				zap.Int("failures", len(multierr.Errors(err))),
			)
		}
	}()
}

// Wait blocks until every background dispatch has returned.
func (d *Dispatcher) Wait() {
	d.inflight.Wait()
}

func (d *Dispatcher) dispatchOne(ctx context.Context, ev domain.Event) error {
	msg, err := d.render(ctx, ev)
	if err != nil {
		return err
	}

	var errs error
	n := &domain.Notification{
		ID:        uuid.New(),
		UserID:    ev.Recipient(),
		Type:      msg.kind,
		Message:   msg.text,
		Link:      msg.link,
		CreatedAt: time.Now().UTC(),
	}
	if err := d.store.Create(ctx, n); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("create %s notification: %w", msg.kind, err))
	}

	if msg.email != "" {
		if err := d.sendEmail(ctx, ev.Recipient(), msg); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("send %s email: %w", msg.email, err))
		}
	}
	return errs
}

func (d *Dispatcher) sendEmail(ctx context.Context, userID uuid.UUID, msg rendered) error {
	user, err := d.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("resolve recipient %s: %w", userID, err)
	}
	return d.mailer.Send(ctx, domain.Email{
		Kind:    msg.email,
		To:      user.Email,
		Name:    user.Name,
		Subject: msg.subject,
		Body:    fmt.Sprintf("Hi %s,\n\n%s\n\n%s", user.Name, msg.text, msg.link),
	})
}

// displayName resolves a user's name for message text; lookup failures fall
// back to a placeholder because the message is still worth sending.
func (d *Dispatcher) displayName(ctx context.Context, id uuid.UUID) string {
	user, err := d.users.GetByID(ctx, id)
	if err != nil {
		log.Debug("Display name lookup failed", zap.String("userID", id.String()), zap.Error(err))
		return "Unknown"
	}
	return user.Name
}
