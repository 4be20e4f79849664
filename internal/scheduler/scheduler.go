package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/hray3182/coursebot/internal/course"
	"github.com/hray3182/coursebot/internal/models"
	"github.com/hray3182/coursebot/internal/reminder"
	"github.com/hray3182/coursebot/internal/rrule"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultTestInterval is the tick period in test mode
const DefaultTestInterval = 15 * time.Second

// Sender delivers messages to Telegram. *tgbotapi.BotAPI satisfies it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Options struct {
	Location     *time.Location
	Rule         string // RRULE for the daily digest
	TestMode     bool
	TestInterval time.Duration
	Now          func() time.Time
}

// Scheduler owns one reminder job per chat
type Scheduler struct {
	api          Sender
	cron         *cron.Cron
	logger       *zap.Logger
	cronLog      cronLogger
	loc          *time.Location
	rule         string
	testMode     bool
	testInterval time.Duration
	now          func() time.Time

	mu   sync.Mutex
	jobs map[int64]*job // chatID -> job
	ctx  context.Context
}

type job struct {
	entryID cron.EntryID
	path    string
	mode    models.ReminderMode
	spec    string
	lastRun *time.Time
}

func New(api Sender, logger *zap.Logger, opts Options) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Rule == "" {
		opts.Rule = rrule.DailyAt(10, 0)
	}
	if opts.TestInterval <= 0 {
		opts.TestInterval = DefaultTestInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	cl := newCronLogger(logger)
	return &Scheduler{
		api:          api,
		cron:         cron.New(cron.WithLocation(opts.Location), cron.WithLogger(cl), cron.WithChain(cron.Recover(cl))),
		logger:       logger,
		cronLog:      cl,
		loc:          opts.Location,
		rule:         opts.Rule,
		testMode:     opts.TestMode,
		testInterval: opts.TestInterval,
		now:          opts.Now,
		jobs:         make(map[int64]*job),
		ctx:          context.Background(),
	}
}

// Start runs the cron engine until ctx is cancelled, then waits for running
// ticks to finish.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	count := len(s.jobs)
	s.mu.Unlock()

	s.logger.Info("Scheduler started", zap.Int("jobs", count), zap.Bool("test_mode", s.testMode))
	s.cron.Start()

	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

// Schedule registers the reminder job for a chat, replacing only that chat's
// previous job.
func (s *Scheduler) Schedule(chatID int64, path string) (*models.ReminderJob, error) {
	sched, mode, spec, err := s.schedule()
	if err != nil {
		return nil, fmt.Errorf("failed to build schedule: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.jobs[chatID]; ok {
		s.cron.Remove(old.entryID)
	}

	j := &job{path: path, mode: mode, spec: spec}
	run := cron.NewChain(cron.SkipIfStillRunning(s.cronLog)).Then(cron.FuncJob(func() {
		s.run(chatID, j)
	}))
	j.entryID = s.cron.Schedule(sched, run)
	s.jobs[chatID] = j

	s.logger.Info("Scheduled reminders",
		zap.Int64("chat_id", chatID),
		zap.String("mode", string(mode)),
		zap.String("schedule", spec),
	)
	return s.view(chatID, j), nil
}

func (s *Scheduler) schedule() (cron.Schedule, models.ReminderMode, string, error) {
	if s.testMode {
		return &firstRun{every: cron.Every(s.testInterval)}, models.ReminderTest, "@every " + s.testInterval.String(), nil
	}
	sched, err := rrule.NewSchedule(s.rule, s.now(), s.loc)
	if err != nil {
		return nil, "", "", err
	}
	return sched, models.ReminderDaily, rrule.Describe(s.rule), nil
}

// cancelJob removes j only while it is still the chat's current job, so a
// job registered by a newer upload survives.
func (s *Scheduler) cancelJob(chatID int64, j *job) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.jobs[chatID] != j {
		return false
	}
	s.cron.Remove(j.entryID)
	delete(s.jobs, chatID)
	return true
}

// Job returns the chat's reminder job
func (s *Scheduler) Job(chatID int64) (*models.ReminderJob, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[chatID]
	if !ok {
		return nil, false
	}
	return s.view(chatID, j), true
}

// Jobs returns all registered jobs ordered by chat id
func (s *Scheduler) Jobs() []*models.ReminderJob {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs := make([]*models.ReminderJob, 0, len(s.jobs))
	for chatID, j := range s.jobs {
		jobs = append(jobs, s.view(chatID, j))
	}
	sort.Slice(jobs, func(i, k int) bool { return jobs[i].ChatID < jobs[k].ChatID })
	return jobs
}

// s.mu must be held
func (s *Scheduler) view(chatID int64, j *job) *models.ReminderJob {
	rj := &models.ReminderJob{
		ChatID:   chatID,
		Path:     j.path,
		Mode:     j.mode,
		EntryID:  int(j.entryID),
		Schedule: j.spec,
	}
	if j.mode == models.ReminderTest {
		rj.Interval = s.testInterval
	}
	if next := s.cron.Entry(j.entryID).Next; !next.IsZero() {
		rj.NextRun = &next
	}
	if j.lastRun != nil {
		last := *j.lastRun
		rj.LastRun = &last
	}
	return rj
}

func (s *Scheduler) run(chatID int64, j *job) {
	s.mu.Lock()
	ctx := s.ctx
	now := s.now()
	j.lastRun = &now
	s.mu.Unlock()

	err := s.Tick(ctx, chatID, j.path)
	if errors.Is(err, fs.ErrNotExist) {
		if s.cancelJob(chatID, j) {
			s.logger.Warn("Workbook is gone, cancelled reminders", zap.Int64("chat_id", chatID), zap.String("path", j.path))
		}
		return
	}
	if err != nil {
		s.logger.Warn("Reminder tick failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// Tick re-reads the chat's workbook and sends the week and day reminders,
// in that order. A failed send is logged and does not stop the next one.
func (s *Scheduler) Tick(ctx context.Context, chatID int64, path string) error {
	res, err := course.LoadAssignments(path, s.loc)
	if err != nil {
		return fmt.Errorf("failed to read assignments: %w", err)
	}
	for _, skipped := range res.Skipped {
		s.logger.Debug("Skipped row", zap.Int64("chat_id", chatID), zap.Stringer("row", skipped))
	}

	plan := reminder.Build(s.now(), res.Assignments, s.loc)
	for _, m := range plan.Messages() {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := tgbotapi.NewMessage(chatID, m.Text)
		msg.ParseMode = tgbotapi.ModeHTML
		msg.DisableWebPagePreview = true
		if _, err := s.api.Send(msg); err != nil {
			s.logger.Error("Failed to send reminder",
				zap.Int64("chat_id", chatID),
				zap.String("window", string(m.Window)),
				zap.Error(err),
			)
			continue
		}
		s.logger.Info("Sent reminder",
			zap.Int64("chat_id", chatID),
			zap.String("window", string(m.Window)),
			zap.Int("items", len(m.Assignments)),
		)
	}
	return nil
}

// firstRun fires as soon as it is registered, then on a fixed interval.
// Next is only called from the cron goroutine.
type firstRun struct {
	every cron.ConstantDelaySchedule
	fired bool
}

func (f *firstRun) Next(t time.Time) time.Time {
	if !f.fired {
		f.fired = true
		return t
	}
	return f.every.Next(t)
}
