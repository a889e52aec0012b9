package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"smartattendance/internal/attendance"
	"smartattendance/internal/config"
	"smartattendance/internal/mailer"
	"smartattendance/internal/reconcile"
	"smartattendance/internal/store"
	"smartattendance/internal/student"
)

// Worker runs the daily absentee reconciliation on a cron schedule.
func main() {
	cfg := config.Load()

	db, err := store.NewDB(cfg.MongoURI, cfg.MongoDatabase, cfg.ConnectTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	defer func() {
		_ = db.Close(context.Background())
	}()

	studentRepo := student.NewRepository(db.Database)
	ledger := attendance.NewRepository(db.Database)

	mail := mailer.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailUser, cfg.EmailPass)
	if !cfg.MailConfigured() {
		log.Warn().Msg("email credentials not configured, absence emails will be skipped")
	}

	job := reconcile.NewJob(studentRepo, ledger, mail)
	sched, err := reconcile.NewScheduler(job, cfg.AbsenteeCron)
	if err != nil {
		log.Fatal().Err(err).Str("spec", cfg.AbsenteeCron).Msg("invalid cron spec")
	}

	sched.Start()
	log.Info().Str("spec", cfg.AbsenteeCron).Msg("worker started, absentee job scheduled")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info().Msg("shutdown signal received")

	// Wait for any in-flight run to finish.
	<-sched.Stop().Done()
	log.Info().Msg("worker stopped")
}
