package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"paperdash/internal/collector"
	"paperdash/internal/model"
	"paperdash/internal/notifier"
	"paperdash/internal/recorder"
	"paperdash/internal/render"
)

// Scheduler runs the refresh cycle on a cron schedule: collect a frame,
// record diagnostics, render, notify on degradation.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Renderer  render.Renderer
	Notifier  *notifier.TelegramNotifier
	Recorder  recorder.Recorder
	Ctx       context.Context
}

// NewScheduler creates a new Scheduler. A refresh cycle can outlast the
// cron interval when sources retry, so overlapping firings are skipped
// rather than run concurrently.
func NewScheduler(ctx context.Context, col *collector.Collector, r render.Renderer, tn *notifier.TelegramNotifier, rec recorder.Recorder) *Scheduler {
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(log.Default()))),
		),
		Collector: col,
		Renderer:  r,
		Notifier:  tn,
		Recorder:  rec,
		Ctx:       ctx,
	}
}

// Register adds the refresh task under the given cron expression.
func (s *Scheduler) Register(refreshCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes the refresh task immediately (manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.refreshTask()
}

func (s *Scheduler) refreshTask() {
	log.Println("[INFO] running refresh cycle")
	start := time.Now()

	frame := s.Collector.Collect()
	s.recordFrame(frame)

	rendered := true
	if err := s.Renderer.Render(frame); err != nil {
		log.Printf("[ERROR] render frame: %v", err)
		rendered = false
	}

	if err := s.Recorder.RecordCycle(&recorder.CycleRecord{
		DurationMs: time.Since(start).Milliseconds(),
		Degraded:   frame.Degraded(),
		Rendered:   rendered,
	}); err != nil {
		log.Printf("[WARN] record cycle: %v", err)
	}

	if frame.Degraded() {
		s.trySend(notifier.FormatDegraded(frame))
	}
	if msg := notifier.FormatAlerts(&frame.Weather); msg != "" {
		s.trySend(msg)
	}

	log.Printf("[INFO] refresh cycle done in %.1fs (degraded=%v)",
		time.Since(start).Seconds(), frame.Degraded())
}

func (s *Scheduler) recordFrame(frame *model.Frame) {
	results := []recorder.FetchResult{
		{Source: "onecall", Status: frame.WeatherStatus, ValidCount: boolCount(frame.WeatherValid())},
		{Source: "air_pollution", Status: frame.AirStatus, ValidCount: boolCount(frame.AirValid())},
		{Source: "coingecko", Status: frame.CryptoStatus, ValidCount: pageValidCount(&frame.Crypto)},
		{Source: "indices", Status: pageStatus(&frame.Indices), ValidCount: pageValidCount(&frame.Indices)},
		{Source: "commodities", Status: pageStatus(&frame.Commodities), ValidCount: pageValidCount(&frame.Commodities)},
		{Source: "forex", Status: pageStatus(&frame.Forex), ValidCount: pageValidCount(&frame.Forex)},
	}
	for i := range results {
		if err := s.Recorder.RecordFetch(&results[i]); err != nil {
			log.Printf("[WARN] record fetch %s: %v", results[i].Source, err)
		}
	}
}

func (s *Scheduler) trySend(msg string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, msg, 2); err != nil {
		log.Printf("[WARN] notify: %v", err)
	}
}

func boolCount(ok bool) int {
	if ok {
		return 1
	}
	return 0
}

func pageValidCount(page *model.PageData) int {
	n := 0
	for i := range page.Assets {
		if page.Assets[i].Valid {
			n++
		}
	}
	return n
}

// pageStatus collapses a fan-out page to a single status for the log:
// 200 when anything succeeded, 0 otherwise (per-symbol codes are logged
// by the collector as they happen).
func pageStatus(page *model.PageData) int {
	if page.Valid {
		return 200
	}
	return 0
}
