package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/reminder/repository"
	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/shared/sms"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Sweeper periodically scans active reminders and notifies the admin
// phone once per (reminder, date). A redis lock keeps overlapping
// instances from double-firing; the triggered date is persisted before
// the notification attempt so a crash errs on the side of not re-sending.
type Sweeper struct {
	repo     *repository.ReminderRepository
	rdb      *redis.Client
	sms      *sms.Client
	logger   *zap.Logger
	interval time.Duration
}

func NewSweeper(repo *repository.ReminderRepository, rdb *redis.Client, smsClient *sms.Client, logger *zap.Logger, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{
		repo:     repo,
		rdb:      rdb,
		sms:      smsClient,
		logger:   logger,
		interval: interval,
	}
}

// Run blocks, sweeping on a ticker until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("reminder sweeper started", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("reminder sweeper stopped")
			return
		case <-ticker.C:
			if err := s.SweepOnce(ctx); err != nil {
				s.logger.Error("reminder sweep failed", zap.Error(err))
			}
		}
	}
}

// SweepOnce fires every reminder due today that has not fired yet.
func (s *Sweeper) SweepOnce(ctx context.Context) error {
	today := time.Now().Format("2006-01-02")

	reminders, err := s.repo.FindActive(ctx)
	if err != nil {
		return err
	}

	for i := range reminders {
		rem := &reminders[i]
		if !rem.DueOn(today) {
			continue
		}

		// Cross-instance guard; the lock outlives the sweep interval so
		// a slow notification cannot be raced by the next tick.
		lockKey := fmt.Sprintf("reminder:fired:%s:%s", rem.ID, today)
		if s.rdb != nil {
			ok, err := s.rdb.SetNX(ctx, lockKey, "1", 48*time.Hour).Result()
			if err != nil {
				s.logger.Warn("reminder lock failed, skipping",
					zap.String("reminder_id", rem.ID), zap.Error(err))
				continue
			}
			if !ok {
				continue
			}
		}

		// Persist the trigger before notifying: at-most-once beats
		// at-least-once for reminder texts.
		rem.TriggeredDates = append(rem.TriggeredDates, today)
		if err := s.repo.Update(ctx, rem); err != nil {
			s.logger.Error("persist triggered date failed",
				zap.String("reminder_id", rem.ID), zap.Error(err))
			continue
		}

		s.sms.NotifyAdmin(fmt.Sprintf("Reminder: %s. %s", rem.Title, rem.Message))
		s.logger.Info("reminder fired",
			zap.String("reminder_id", rem.ID),
			zap.String("date", today))
	}
	return nil
}
