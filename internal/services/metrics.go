package services

import (
	"context"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"

	"hoctap-backend/internal/models"
)

type SystemSnapshot struct {
	CapturedAt        time.Time            `json:"capturedAt"`
	ProcessRSSBytes   int64                `json:"processRssBytes"`
	ProcessCpuLoad    float64              `json:"processCpuLoad"`
	SystemMemoryTotal int64                `json:"systemMemoryTotalBytes"`
	SystemMemoryUsed  int64                `json:"systemMemoryUsedBytes"`
	DiskTotalBytes    int64                `json:"diskTotalBytes"`
	DiskUsedBytes     int64                `json:"diskUsedBytes"`
	SystemCpuLoad     float64              `json:"systemCpuLoad"`
	Content           models.ContentCounts `json:"content"`
}

type ContentCounter interface {
	ContentCounts(ctx context.Context) (models.ContentCounts, error)
}

func CaptureSystemSnapshot(ctx context.Context, counter ContentCounter, diskPath string) (SystemSnapshot, error) {
	counts, err := counter.ContentCounts(ctx)
	if err != nil {
		return SystemSnapshot{}, err
	}
	snap := SystemSnapshot{CapturedAt: time.Now().UTC(), Content: counts}

	if proc, err := process.NewProcessWithContext(ctx, int32(os.Getpid())); err == nil {
		if rss, _ := proc.MemoryInfoWithContext(ctx); rss != nil {
			snap.ProcessRSSBytes = int64(rss.RSS)
		}
		if cpuPerc, err := proc.CPUPercentWithContext(ctx); err == nil {
			snap.ProcessCpuLoad = cpuPerc / 100.0
		}
	}
	if memStat, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		snap.SystemMemoryTotal = int64(memStat.Total)
		snap.SystemMemoryUsed = int64(memStat.Total - memStat.Available)
	}
	diskStat, err := disk.UsageWithContext(ctx, diskPath)
	if err != nil {
		diskStat, err = disk.UsageWithContext(ctx, "/")
	}
	if err == nil && diskStat != nil {
		snap.DiskTotalBytes = int64(diskStat.Total)
		snap.DiskUsedBytes = int64(diskStat.Used)
	}
	if sysCPU, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(sysCPU) > 0 {
		snap.SystemCpuLoad = sysCPU[0] / 100.0
	}
	return snap, nil
}
