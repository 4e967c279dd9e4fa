package cron

import (
	"time"

	"hive/config"
	service "hive/services/service"
	"hive/utils"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// StartExpirySweep schedules the deadline sweep on the configured cron spec
// and returns the running scheduler so main can stop it on shutdown.
func StartExpirySweep(services service.ServiceService) *cron.Cron {
	logger := utils.GetLogger()
	schedule := config.AppConfig.ExpirySweepSchedule
	if schedule == "" {
		schedule = "@every 15m"
	}

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		expired, err := services.SweepExpired(time.Now())
		if err != nil {
			logger.Error("expiry sweep failed", zap.Error(err))
			return
		}
		if expired > 0 {
			logger.Info("expiry sweep finished", zap.Int64("expired", expired))
		}
	})
	if err != nil {
		logger.Fatal("invalid expiry sweep schedule", zap.String("schedule", schedule), zap.Error(err))
	}

	c.Start()
	logger.Info("expiry sweep scheduled", zap.String("schedule", schedule))
	return c
}
