package job

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const runTimeout = 2 * time.Minute

// AbsenceMarker writes absent rows for students with no row on a date.
// An empty date means today.
type AbsenceMarker interface {
	MarkAbsent(ctx context.Context, date string) (int64, error)
}

// AbsenceJob runs the end-of-day absence sweep on a cron schedule.
type AbsenceJob struct {
	cron   *cron.Cron
	marker AbsenceMarker
	logger *zap.Logger
}

// NewAbsenceJob parses spec (standard five-field cron) in loc. Overlapping
// runs are skipped.
func NewAbsenceJob(spec string, loc *time.Location, marker AbsenceMarker, logger *zap.Logger) (*AbsenceJob, error) {
	if loc == nil {
		loc = time.Local
	}
	cl := cronLogger{logger.Sugar()}
	j := &AbsenceJob{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		marker: marker,
		logger: logger,
	}
	if _, err := j.cron.AddFunc(spec, func() { j.Run(context.Background()) }); err != nil {
		return nil, err
	}
	return j, nil
}

// Start schedules the job in its own goroutine.
func (j *AbsenceJob) Start() {
	j.cron.Start()
	j.logger.Info("absence job started")
}

// Stop prevents further runs and waits for a running one to finish or ctx
// to end.
func (j *AbsenceJob) Stop(ctx context.Context) {
	select {
	case <-j.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// Run performs one sweep for today.
func (j *AbsenceJob) Run(ctx context.Context) int64 {
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	n, err := j.marker.MarkAbsent(ctx, "")
	if err != nil {
		j.logger.Error("absence job failed", zap.Error(err))
		return 0
	}
	j.logger.Info("absence job finished", zap.Int64("marked", n))
	return n
}

// cronLogger routes cron's own logging through zap.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
