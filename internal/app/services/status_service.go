package services

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/campuspay/studentbank/internal/app/models/dto"
	"github.com/campuspay/studentbank/internal/db"
	"github.com/campuspay/studentbank/internal/pkg/logger"
)

// StatusService reports host and database health for the admin dashboard
type StatusService interface {
	Status(ctx context.Context) (*dto.SystemStatusResponse, error)
}

type statusService struct {
	db     *db.PostgresDB
	dbName string
}

// NewStatusService creates a StatusService
func NewStatusService(database *db.PostgresDB, dbName string) StatusService {
	return &statusService{db: database, dbName: dbName}
}

// Status collects host metrics and the database size. Individual probe
// failures degrade to zero values rather than failing the whole call.
func (s *statusService) Status(ctx context.Context) (*dto.SystemStatusResponse, error) {
	resp := &dto.SystemStatusResponse{
		GoVersion:     runtime.Version(),
		NumGoroutines: runtime.NumGoroutine(),
	}

	if info, err := host.InfoWithContext(ctx); err == nil {
		resp.Hostname = info.Hostname
		resp.UptimeSeconds = info.Uptime
	} else {
		logger.Warn().Err(err).Msg("Failed to read host info")
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		resp.MemoryUsedMB = vm.Used / (1024 * 1024)
		resp.MemoryTotalMB = vm.Total / (1024 * 1024)
		resp.MemoryPercent = vm.UsedPercent
	} else {
		logger.Warn().Err(err).Msg("Failed to read memory stats")
	}

	if percents, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(percents) > 0 {
		resp.CPUPercent = percents[0]
	} else if err != nil {
		logger.Warn().Err(err).Msg("Failed to read CPU stats")
	}

	var size int64
	if err := s.db.Pool.QueryRow(ctx,
		`SELECT pg_database_size($1)`, s.dbName,
	).Scan(&size); err != nil {
		logger.Warn().Err(err).Msg("Failed to read database size")
	} else {
		resp.DBSizeBytes = size
		resp.DBSizePretty = prettyBytes(size)
	}

	return resp, nil
}

func prettyBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
