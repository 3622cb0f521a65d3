// Package reminder announces upcoming course meetings on a cron schedule.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/javiermolinar/coursetable/internal/course"
	"github.com/javiermolinar/coursetable/internal/occurrence"
)

// ErrAlreadyRunning is returned by Start on a running watcher.
var ErrAlreadyRunning = errors.New("reminder watcher already running")

// Notifier delivers a due reminder.
type Notifier interface {
	Notify(ctx context.Context, r occurrence.Reminder) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, r occurrence.Reminder) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, r occurrence.Reminder) error { return f(ctx, r) }

// Source lists courses. course.Repository satisfies it.
type Source interface {
	ListCourses(ctx context.Context, f course.Filter) ([]*course.Entry, error)
}

// Watcher checks reminder-enabled courses and notifies each meeting once,
// when it is no more than Advance away.
type Watcher struct {
	source   Source
	resolver *occurrence.Resolver
	notifier Notifier
	advance  time.Duration
	log      *zap.Logger

	// Now is injectable for testing.
	Now func() time.Time

	mu    sync.Mutex
	fired map[string]time.Time // entry ID + start -> start
	cron  *cron.Cron
}

// New creates a Watcher.
func New(src Source, r *occurrence.Resolver, n Notifier, advance time.Duration, log *zap.Logger) *Watcher {
	if log == nil {
		log = zap.NewNop()
	}
	if advance < 0 {
		advance = 0
	}
	return &Watcher{
		source:   src,
		resolver: r,
		notifier: n,
		advance:  advance,
		log:      log,
		Now:      time.Now,
		fired:    make(map[string]time.Time),
	}
}

// Due returns the reminders of entries whose meeting has not started and
// starts within the advance window of now. Entries that cannot be resolved
// are skipped.
func (w *Watcher) Due(entries []*course.Entry, now time.Time) ([]occurrence.Reminder, []occurrence.Skipped) {
	var (
		due     []occurrence.Reminder
		skipped []occurrence.Skipped
	)
	for _, e := range entries {
		occ, err := w.resolver.Next(e, now)
		if err != nil {
			skipped = append(skipped, occurrence.Skipped{Entry: e, Err: err})
			continue
		}
		remindAt := occ.Start.Add(-w.advance)
		if remindAt.After(now) {
			continue
		}
		due = append(due, occurrence.Reminder{Occurrence: occ, RemindAt: remindAt})
	}
	return due, skipped
}

// Check runs one pass: it loads reminder-enabled courses, notifies every due
// meeting not notified before, and forgets meetings that have started.
// It returns the number of notifications sent.
func (w *Watcher) Check(ctx context.Context) (int, error) {
	entries, err := w.source.ListCourses(ctx, course.Filter{ReminderOnly: true})
	if err != nil {
		return 0, fmt.Errorf("listing courses: %w", err)
	}

	now := w.Now()
	due, skipped := w.Due(entries, now)
	for _, s := range skipped {
		w.log.Debug("reminder skipped", zap.String("title", s.Entry.Title), zap.Error(s.Err))
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	for key, start := range w.fired {
		if start.Before(now) {
			delete(w.fired, key)
		}
	}

	sent := 0
	var errs []error
	for _, r := range due {
		key := firedKey(r.Occurrence)
		if _, ok := w.fired[key]; ok {
			continue
		}
		if err := w.notifier.Notify(ctx, r); err != nil {
			errs = append(errs, fmt.Errorf("notifying %q: %w", r.Entry.Title, err))
			continue
		}
		w.fired[key] = r.Start
		sent++
		w.log.Info("reminder sent",
			zap.String("title", r.Entry.Title),
			zap.Int("week", r.Week),
			zap.Time("start", r.Start))
	}
	return sent, errors.Join(errs...)
}

func firedKey(o occurrence.Occurrence) string {
	return o.Entry.ID + "@" + o.Start.Format(time.RFC3339)
}

// Start runs Check on the cron schedule until Stop is called.
func (w *Watcher) Start(ctx context.Context, schedule string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cron != nil {
		return ErrAlreadyRunning
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(schedule, func() {
		if _, err := w.Check(ctx); err != nil {
			w.log.Warn("reminder check failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}
	c.Start()
	w.cron = c
	w.log.Info("reminder watcher started", zap.String("schedule", schedule), zap.Duration("advance", w.advance))
	return nil
}

// Stop halts the schedule and waits for a running check to finish.
func (w *Watcher) Stop() {
	w.mu.Lock()
	c := w.cron
	w.cron = nil
	w.mu.Unlock()
	if c == nil {
		return
	}
	<-c.Stop().Done()
	w.log.Info("reminder watcher stopped")
}

// WriterNotifier prints reminders as one line each.
type WriterNotifier struct {
	W io.Writer
}

// Notify writes r to the writer.
func (n WriterNotifier) Notify(_ context.Context, r occurrence.Reminder) error {
	where := ""
	if r.Entry.Location != "" {
		where = " @ " + r.Entry.Location
	}
	_, err := fmt.Fprintf(n.W, "%s  第%d周 %s %s-%s%s\n",
		r.Entry.Title, r.Week, course.DayName(r.Entry.DayOfWeek),
		r.Start.Format("15:04"), r.End.Format("15:04"), where)
	return err
}
