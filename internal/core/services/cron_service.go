package services

import (
	"context"
	"log"
	"time"

	"helpbridge/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// Grace period before an expired open application is swept
const expiredSweepGrace = 30 * 24 * time.Hour

// CronService runs periodic maintenance jobs
type CronService struct {
	applicationRepo  repositories.ApplicationRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	scheduler        *cron.Cron
}

// NewCronService creates a new cron service
func NewCronService(
	applicationRepo repositories.ApplicationRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
) *CronService {
	return &CronService{
		applicationRepo:  applicationRepo,
		refreshTokenRepo: refreshTokenRepo,
		scheduler:        cron.New(),
	}
}

// Start registers the maintenance jobs and starts the scheduler
func (s *CronService) Start() error {
	// Nightly purge of expired refresh tokens
	if _, err := s.scheduler.AddFunc("0 3 * * *", s.purgeExpiredTokens); err != nil {
		return err
	}

	// Nightly sweep of open applications whose deadline passed long ago
	if _, err := s.scheduler.AddFunc("30 3 * * *", s.sweepExpiredApplications); err != nil {
		return err
	}

	s.scheduler.Start()
	log.Println("✅ Cron jobs scheduled")
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	ctx := s.scheduler.Stop()
	<-ctx.Done()
}

func (s *CronService) purgeExpiredTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := s.refreshTokenRepo.DeleteExpired(ctx); err != nil {
		log.Printf("⚠️ Expired token purge failed: %v", err)
		return
	}
	log.Println("✅ Expired refresh tokens purged")
}

func (s *CronService) sweepExpiredApplications() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-expiredSweepGrace)
	affected, err := s.applicationRepo.DeactivateExpiredBefore(ctx, cutoff)
	if err != nil {
		log.Printf("⚠️ Expired application sweep failed: %v", err)
		return
	}
	if affected > 0 {
		log.Printf("✅ Swept %d long-expired applications", affected)
	}
}
