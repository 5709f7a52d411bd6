package notifications

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"

	"github.com/brightpath-crm/notify-backend/internal/senders"
	"github.com/brightpath-crm/notify-backend/pkg/db/models"
	"github.com/brightpath-crm/notify-backend/pkg/enums"
	pkgerrors "github.com/brightpath-crm/notify-backend/pkg/errors"
	"github.com/brightpath-crm/notify-backend/pkg/logger"
	"github.com/brightpath-crm/notify-backend/pkg/metrics"
)

const (
	// DefaultInterval paces the polling loop when no interval is supplied.
	DefaultInterval = 30 * time.Second
	// DefaultBatchSize caps how many due records one pass picks up.
	DefaultBatchSize = 100
)

// EmailDispatcher delivers one rendered email.
type EmailDispatcher interface {
	Send(ctx context.Context, to string, payload senders.EmailMessage) (string, error)
}

// ChatDispatcher delivers one plain-text chat message.
type ChatDispatcher interface {
	Send(ctx context.Context, to string, body string) (string, error)
}

// BrowserDispatcher satisfies the browser channel server-side.
type BrowserDispatcher interface {
	Send(ctx context.Context, recipientID string, title string) (string, error)
}

// ReminderConverter turns due follow-up reminders into notification records.
// The processor runs it at the start of every pass so reminder conversion
// shares the polling cadence.
type ReminderConverter interface {
	ConvertDue(ctx context.Context) (int, error)
}

type renderFunc func(enums.Channel, *models.Notification) (*Rendered, bool)

// ProcessorParams wires a Processor.
type ProcessorParams struct {
	Repository Repository
	Email      EmailDispatcher
	Chat       ChatDispatcher
	Browser    BrowserDispatcher
	Reminders  ReminderConverter // optional
	Logger     *logger.Logger
	Metrics    *metrics.DispatchMetrics // optional
	Render     renderFunc               // optional, defaults to Render
	BatchSize  int
	Now        func() time.Time // optional, defaults to time.Now UTC
}

// Processor drains due pending notifications, one channel at a time, and
// settles each record's lifecycle state. A single Processor serializes its
// own passes; the busy guard makes overlapping triggers cheap no-ops.
type Processor struct {
	repo      Repository
	email     EmailDispatcher
	chat      ChatDispatcher
	browser   BrowserDispatcher
	reminders ReminderConverter
	logg      *logger.Logger
	met       *metrics.DispatchMetrics
	render    renderFunc
	batchSize int
	now       func() time.Time

	busy atomic.Bool

	mu       sync.Mutex
	cancel   context.CancelFunc
	interval time.Duration
}

// ProcessResult summarizes one processing pass.
type ProcessResult struct {
	Skipped   bool
	Processed int
	Sent      int
	Failed    int
}

// NewProcessor validates dependencies and builds a Processor.
func NewProcessor(params ProcessorParams) (*Processor, error) {
	if params.Repository == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	if params.Email == nil || params.Chat == nil || params.Browser == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "channel senders required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	if params.Render == nil {
		params.Render = Render
	}
	if params.BatchSize <= 0 {
		params.BatchSize = DefaultBatchSize
	}
	if params.Now == nil {
		params.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Processor{
		repo:      params.Repository,
		email:     params.Email,
		chat:      params.Chat,
		browser:   params.Browser,
		reminders: params.Reminders,
		logg:      params.Logger,
		met:       params.Metrics,
		render:    params.Render,
		batchSize: params.BatchSize,
		now:       params.Now,
	}, nil
}

// ProcessOnce runs a single pass: convert due reminders, fetch due pending
// records and work each one. When another pass is still running the call
// returns immediately with Skipped set. Failures on individual records are
// logged and absorbed; only a storage failure fetching the batch surfaces.
func (p *Processor) ProcessOnce(ctx context.Context) (ProcessResult, error) {
	if !p.busy.CompareAndSwap(false, true) {
		p.met.IncSkippedTick()
		p.logg.Info(ctx, "processing pass already running, skipping")
		return ProcessResult{Skipped: true}, nil
	}
	defer p.busy.Store(false)

	started := p.now()
	defer func() {
		p.met.ObserveTick(p.now().Sub(started))
	}()

	if p.reminders != nil {
		converted, err := p.reminders.ConvertDue(ctx)
		if err != nil {
			p.logg.Error(ctx, "reminder conversion failed", err)
		} else if converted > 0 {
			p.logg.Info(p.logg.WithField(ctx, "converted", converted), "due reminders converted to notifications")
		}
	}

	records, err := p.repo.FindPending(ctx, p.now(), p.batchSize)
	if err != nil {
		return ProcessResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch pending notifications")
	}

	result := ProcessResult{Processed: len(records)}
	var recordErrs error
	for i := range records {
		record := &records[i]
		outcome, err := p.processRecord(ctx, record)
		if err != nil {
			recordErrs = multierr.Append(recordErrs, fmt.Errorf("notification %s: %w", record.ID, err))
			continue
		}
		switch outcome {
		case recordSent:
			result.Sent++
		case recordFailed:
			result.Failed++
		}
	}
	if recordErrs != nil {
		p.logg.Error(ctx, "some notifications could not be processed", recordErrs)
	}
	return result, nil
}

type recordOutcome int

const (
	recordPending recordOutcome = iota
	recordSent
	recordFailed
)

func (p *Processor) processRecord(ctx context.Context, record *models.Notification) (recordOutcome, error) {
	logCtx := p.logg.WithFields(ctx, map[string]any{
		"notification_id": record.ID.String(),
		"type":            string(record.Type),
		"attempt":         record.Attempts + 1,
	})

	now := p.now()
	for _, channel := range record.Channels {
		// The attempt budget is shared across channels; once spent, remaining
		// channels must wait for the record to settle as failed.
		if record.AttemptsExhausted() {
			break
		}
		if record.ChannelSent(channel) {
			continue
		}

		rendered, ok := p.render(channel, record)
		if !ok {
			p.logg.Info(p.logg.WithChannel(logCtx, string(channel)), "no template for channel, skipping")
			continue
		}

		channelCtx := p.logg.WithChannel(logCtx, string(channel))
		messageID, err := p.dispatch(ctx, channel, record, rendered)
		if err != nil {
			p.met.IncFailed(string(channel))
			p.logg.Warn(p.logg.WithField(channelCtx, "reason", err.Error()), "channel delivery failed")
			if rerr := p.repo.RecordFailure(ctx, record.ID, fmt.Sprintf("%s: %s", channel, err.Error()), now); rerr != nil {
				return recordPending, fmt.Errorf("record delivery failure: %w", rerr)
			}
			record.Attempts++
			continue
		}

		p.met.IncSent(string(channel))
		p.logg.Info(p.logg.WithField(channelCtx, "message_id", messageID), "channel delivered")
		if err := p.repo.MarkChannelSent(ctx, record.ID, channel, now); err != nil {
			return recordPending, fmt.Errorf("mark channel sent: %w", err)
		}
		record.SetChannelSent(channel, now)
	}

	if record.AllChannelsSent() {
		if err := p.repo.MarkSent(ctx, record.ID, now); err != nil {
			return recordPending, fmt.Errorf("mark sent: %w", err)
		}
		p.logg.Info(logCtx, "notification delivered on all channels")
		return recordSent, nil
	}
	if record.AttemptsExhausted() {
		if err := p.repo.MarkFailed(ctx, record.ID, now); err != nil {
			return recordPending, fmt.Errorf("mark failed: %w", err)
		}
		p.logg.Warn(logCtx, "retry budget exhausted, notification failed")
		return recordFailed, nil
	}
	return recordPending, nil
}

func (p *Processor) dispatch(ctx context.Context, channel enums.Channel, record *models.Notification, rendered *Rendered) (string, error) {
	switch channel {
	case enums.ChannelEmail:
		return p.email.Send(ctx, record.RecipientEmail, senders.EmailMessage{
			Subject: rendered.Subject,
			HTML:    rendered.HTML,
			Text:    rendered.Text,
		})
	case enums.ChannelWhatsApp:
		if record.RecipientPhone == nil || *record.RecipientPhone == "" {
			return "", fmt.Errorf("recipient phone missing")
		}
		return p.chat.Send(ctx, *record.RecipientPhone, rendered.Text)
	case enums.ChannelBrowser:
		return p.browser.Send(ctx, record.RecipientID, record.Title)
	}
	return "", fmt.Errorf("no sender for channel %q", channel)
}

// Start launches the polling loop. Calling Start while a loop is running
// replaces it with the new interval.
func (p *Processor) Start(interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.interval = interval

	go p.loop(ctx, interval)
	p.logg.Info(p.logg.WithField(ctx, "interval", interval.String()), "notification processor started")
}

func (p *Processor) loop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := p.ProcessOnce(ctx); err != nil {
				p.logg.Error(ctx, "scheduled processing pass failed", err)
			}
		}
	}
}

// Stop halts the polling loop. Safe to call when no loop is running.
func (p *Processor) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel == nil {
		return
	}
	p.cancel()
	p.cancel = nil
	p.logg.Info(context.Background(), "notification processor stopped")
}

// Running reports whether the polling loop is active.
func (p *Processor) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

// Interval returns the interval of the most recent Start call.
func (p *Processor) Interval() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.interval
}
