package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"PriceBox/internal/chart"
	"PriceBox/internal/export"
	"PriceBox/internal/metrics"
	"PriceBox/internal/model"
	"PriceBox/internal/notifier"
	"PriceBox/internal/pipeline"
	"PriceBox/internal/recorder"

	"github.com/robfig/cron/v3"
)

// historyLimit is how many runs /history lists.
const historyLimit = 10

// Sender delivers a message, retrying on failure.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Options configures the archive job and command replies.
type Options struct {
	Dir       string
	Formats   []string
	BatchSize int
	Start     model.Clock
	End       model.Clock
	Chart     chart.Options
	PublicURL string
}

// Scheduler runs the archive job on a cron schedule and answers bot commands.
type Scheduler struct {
	Cron     *cron.Cron
	Dataset  *model.Dataset
	Opts     Options
	Notifier Sender // nil disables notifications
	Recorder recorder.Recorder
	Metrics  *metrics.Metrics
	Ctx      context.Context

	archiveMu sync.Mutex
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, ds *model.Dataset, opts Options, sender Sender, rec recorder.Recorder, m *metrics.Metrics) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Dataset:  ds,
		Opts:     opts,
		Notifier: sender,
		Recorder: rec,
		Metrics:  m,
		Ctx:      ctx,
	}
}

// RegisterAll registers the archive task.
func (s *Scheduler) RegisterAll(archiveCron string) error {
	if _, err := s.Cron.AddFunc(archiveCron, func() { s.RunArchiveNow() }); err != nil {
		return fmt.Errorf("register archive task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunArchiveNow archives the next batch of pending dates (for manual trigger / RUN_ON_START).
// Batches never overlap.
func (s *Scheduler) RunArchiveNow() []recorder.ExportRun {
	s.archiveMu.Lock()
	defer s.archiveMu.Unlock()

	log.Println("[INFO] running archive task")
	pending, err := s.pendingDates()
	if err != nil {
		log.Printf("[ERROR] archive: list archived dates: %v", err)
		s.trySend(fmt.Sprintf("❌ 归档任务读取历史失败: %v", err))
		return nil
	}
	if len(pending) == 0 {
		log.Println("[INFO] archive: nothing to do")
		return nil
	}

	batch := pending[:min(s.Opts.BatchSize, len(pending))]
	runs := make([]recorder.ExportRun, 0, len(batch))
	for _, date := range batch {
		if s.Ctx.Err() != nil {
			log.Println("[WARN] archive interrupted by shutdown")
			break
		}
		run := s.archiveDate(date)
		if err := s.Recorder.RecordExport(run); err != nil {
			log.Printf("[ERROR] record export %s: %v", run.Date, err)
		}
		if s.Metrics != nil {
			s.Metrics.ArchiveExports.WithLabelValues(run.Status).Inc()
		}
		runs = append(runs, *run)
	}

	remaining := len(pending) - len(runs)
	log.Printf("[INFO] archive: %d dates processed, %d pending", len(runs), remaining)
	s.trySend(notifier.FormatArchiveSummary(runs, remaining))
	return runs
}

// pendingDates returns dataset dates without a final export, oldest first.
func (s *Scheduler) pendingDates() ([]time.Time, error) {
	done, err := s.Recorder.ArchivedDates()
	if err != nil {
		return nil, err
	}
	var pending []time.Time
	for _, d := range s.Dataset.Dates() {
		if !done[d.Format(model.DateLayout)] {
			pending = append(pending, d)
		}
	}
	return pending, nil
}

func (s *Scheduler) archiveDate(date time.Time) *recorder.ExportRun {
	sel := model.Selection{Date: date, Start: s.Opts.Start, End: s.Opts.End}
	run := &recorder.ExportRun{
		Date:  date.Format(model.DateLayout),
		Start: sel.Start.String(),
		End:   sel.End.String(),
	}

	res, err := s.run("archive", sel)
	switch {
	case pipeline.IsWarning(err):
		run.Status = recorder.StatusEmpty
		run.Note = pipeline.UserMessage(err, run.Date)
		log.Printf("[WARN] archive %s: %v", run.Date, err)
		return run
	case err != nil:
		run.Status = recorder.StatusError
		run.Note = err.Error()
		log.Printf("[ERROR] archive %s: %v", run.Date, err)
		return run
	}

	run.Series, run.Up, run.Down, run.Records = len(res.Series), res.Up(), res.Down(), res.Records
	rep := export.NewReport(res, s.Opts.Chart)
	files, err := export.SaveAll(rep, s.Opts.Dir, s.Opts.Formats, s.Opts.Chart.PNGFont)
	run.Files = files
	if err != nil {
		run.Status = recorder.StatusError
		run.Note = err.Error()
		log.Printf("[ERROR] archive %s: %v", run.Date, err)
		return run
	}
	run.Status = recorder.StatusOK
	log.Printf("[INFO] archive %s: %d series, %d files", run.Date, run.Series, len(files))
	return run
}

func (s *Scheduler) run(surface string, sel model.Selection) (*pipeline.Result, error) {
	started := time.Now()
	res, err := pipeline.Run(s.Dataset, sel)
	if s.Metrics != nil {
		s.Metrics.ObserveRun(surface, time.Since(started), res, err)
	}
	return res, err
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.HelpText
	}
	// "/chart@SomeBot" in group chats
	name, _, _ := strings.Cut(fields[0], "@")
	args := fields[1:]

	switch name {
	case "/chart", "查看图表":
		return s.chartCommand(args)
	case "/dates", "查看日期":
		return notifier.FormatDates(s.Dataset)
	case "/history", "查看归档":
		runs, err := s.Recorder.RecentExports(historyLimit)
		if err != nil {
			log.Printf("[ERROR] recent exports: %v", err)
			return fmt.Sprintf("❌ 读取归档记录失败: %v", err)
		}
		return notifier.FormatHistory(runs)
	case "/archive", "立即归档":
		if len(s.RunArchiveNow()) == 0 {
			return "没有待归档的日期。"
		}
		return ""
	default:
		return notifier.HelpText
	}
}

func (s *Scheduler) chartCommand(args []string) string {
	if len(args) == 0 {
		return notifier.HelpText
	}
	start, end := s.Opts.Start.String(), s.Opts.End.String()
	if len(args) >= 2 {
		start = args[1]
	}
	if len(args) >= 3 {
		end = args[2]
	}

	sel, err := pipeline.ParseSelection(args[0], start, end)
	if err != nil {
		log.Printf("[WARN] /chart: %v", err)
		if s.Metrics != nil {
			s.Metrics.PipelineRuns.WithLabelValues("telegram", metrics.OutcomeOf(err)).Inc()
		}
		return pipeline.UserMessage(err, args[0])
	}
	res, err := s.run("telegram", sel)
	if err != nil {
		log.Printf("[WARN] /chart: %v", err)
		return pipeline.UserMessage(err, args[0])
	}
	return notifier.FormatChartSummary(res, s.Opts.Chart.Instrument, s.Opts.PublicURL)
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
