// services/maintenance.go - Scheduled background jobs
package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	broadcastTrimSchedule = "@every 10m"
	jobTimeout            = 2 * time.Minute
)

type MaintenanceConfig struct {
	BackupDir      string
	BackupSchedule string // cron spec; empty disables scheduled backups
	Location       *time.Location
}

// MaintenanceService runs the nightly backup and keeps the broadcast feed
// trimmed.
type MaintenanceService struct {
	admin *AdminService
	cfg   MaintenanceConfig
	cron  *cron.Cron
}

var maintenanceService *MaintenanceService

// InitMaintenanceService registers the jobs on a new scheduler. Start must be
// called to run them.
func InitMaintenanceService(admin *AdminService, cfg MaintenanceConfig) (*MaintenanceService, error) {
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	s := &MaintenanceService{
		admin: admin,
		cfg:   cfg,
		cron:  cron.New(cron.WithLocation(loc)),
	}

	if cfg.BackupSchedule != "" {
		if _, err := s.cron.AddFunc(cfg.BackupSchedule, s.RunBackup); err != nil {
			return nil, err
		}
	}
	if _, err := s.cron.AddFunc(broadcastTrimSchedule, s.RunTrim); err != nil {
		return nil, err
	}

	maintenanceService = s
	return s, nil
}

// GetMaintenanceService returns the initialized maintenance service.
func GetMaintenanceService() *MaintenanceService {
	return maintenanceService
}

func (s *MaintenanceService) Start() {
	s.cron.Start()
	zap.L().Info("maintenance jobs started",
		zap.String("backup_schedule", s.cfg.BackupSchedule),
		zap.String("backup_dir", s.cfg.BackupDir))
}

// Stop waits for running jobs to finish.
func (s *MaintenanceService) Stop() {
	<-s.cron.Stop().Done()
}

// Jobs returns the number of registered jobs.
func (s *MaintenanceService) Jobs() int {
	return len(s.cron.Entries())
}

func (s *MaintenanceService) RunBackup() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if _, err := s.admin.Backup(ctx, s.cfg.BackupDir); err != nil {
		zap.L().Error("scheduled backup failed", zap.Error(err))
	}
}

func (s *MaintenanceService) RunTrim() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.admin.TrimBroadcasts(ctx); err != nil {
		zap.L().Error("broadcast trim failed", zap.Error(err))
	}
}
