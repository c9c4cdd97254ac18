package scheduler

import (
	"context"
	"time"

	"github.com/e4rthen/storefront-backend/pkg/logger"
	"github.com/e4rthen/storefront-backend/pkg/metrics"
	"github.com/robfig/cron/v3"
)

const (
	DefaultReportSpec = "5 0 * * *"
	reportJobName     = "daily_order_report"
	reportJobTimeout  = 5 * time.Minute
)

// ReportUploader is satisfied by service.ReportService.
type ReportUploader interface {
	UploadDailyOrderReport(ctx context.Context, day time.Time) (string, error)
}

// ReportScheduler uploads the previous UTC day's order report every night.
type ReportScheduler struct {
	cron    *cron.Cron
	spec    string
	reports ReportUploader
	metrics *metrics.JobMetrics
	now     func() time.Time
}

func NewReportScheduler(spec string, reports ReportUploader, jobMetrics *metrics.JobMetrics) *ReportScheduler {
	if spec == "" {
		spec = DefaultReportSpec
	}
	return &ReportScheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		spec:    spec,
		reports: reports,
		metrics: jobMetrics,
		now:     time.Now,
	}
}

func (s *ReportScheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), reportJobTimeout)
		defer cancel()
		_ = s.RunOnce(ctx)
	})
	if err != nil {
		logger.Error("Failed to add cron job for order report", err, map[string]interface{}{
			"spec": s.spec,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Order report scheduler started", map[string]interface{}{
		"spec": s.spec,
	})
	return nil
}

// RunOnce uploads yesterday's report.
func (s *ReportScheduler) RunOnce(ctx context.Context) error {
	started := time.Now()
	day := s.now().UTC().AddDate(0, 0, -1)

	logger.Info("Starting scheduled order report upload", map[string]interface{}{
		"day": day.Format("2006-01-02"),
	})

	url, err := s.reports.UploadDailyOrderReport(ctx, day)
	s.metrics.Track(reportJobName, started, err)
	if err != nil {
		logger.Error("Scheduled order report upload failed", err, map[string]interface{}{
			"day": day.Format("2006-01-02"),
		})
		return err
	}

	logger.Info("Scheduled order report uploaded", map[string]interface{}{
		"day": day.Format("2006-01-02"),
		"url": url,
	})
	return nil
}

// Stop waits for a running job to finish.
func (s *ReportScheduler) Stop() {
	logger.Info("Stopping order report scheduler...")
	<-s.cron.Stop().Done()
	logger.Info("Order report scheduler stopped")
}
