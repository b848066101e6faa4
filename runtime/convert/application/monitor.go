package application

import (
	"context"
	"runtime"
	"sync"
	"time"

	"convlog/common/log"
	"convlog/runtime/convert/application/service"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// RequestCounter nats worker 的请求计数
type RequestCounter interface {
	Stats() (handled, rejected int64)
}

// Monitor 定期采集负载信息并输出日志
type Monitor struct {
	stats          *service.Stats
	requests       RequestCounter
	updateInterval time.Duration
	stopCh         chan struct{}
	stopOnce       sync.Once
}

// NewMonitor requests 可以为空
func NewMonitor(stats *service.Stats, requests RequestCounter, updateInterval time.Duration) *Monitor {
	return &Monitor{
		stats:          stats,
		requests:       requests,
		updateInterval: updateInterval,
		stopCh:         make(chan struct{}),
	}
}

// Start 阻塞运行，直到 ctx 结束或调用 Stop
func (m *Monitor) Start(ctx context.Context) {
	ticker := time.NewTicker(m.updateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Monitor 收到停止信号，退出监控")
			return
		case <-m.stopCh:
			log.Info("Monitor 收到停止信号，退出监控")
			return
		case <-ticker.C:
			m.reportLoad()
		}
	}
}

// Stop 可以多次调用
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
	})
}

func (m *Monitor) reportLoad() {
	li := m.collectLoadInfo()
	log.Info("Monitor 负载: Load=%.2f, Converted=%d, CacheHit=%.1f%%, Failed=%d, Skipped=%d, Rejected=%d, CPU=%.2f%%, Mem=%.2f%%, Heap=%.1fMB",
		li.CalculateLoad(), li.Converted, li.HitRate(), li.Failed, li.SkippedKyokus, li.Rejected, li.CPUUsage, li.MemUsage, li.HeapMB)
}

func (m *Monitor) collectLoadInfo() *LoadInfo {
	li := &LoadInfo{
		Converted:     m.stats.Converted.Load(),
		CacheHits:     m.stats.CacheHits.Load(),
		Failed:        m.stats.Failed.Load(),
		SkippedKyokus: m.stats.SkippedKyokus.Load(),
		CPUUsage:      getCPUUsage(),
		MemUsage:      getMemoryUsage(),
	}
	if m.requests != nil {
		li.Handled, li.Rejected = m.requests.Stats()
	}

	var mStats runtime.MemStats
	runtime.ReadMemStats(&mStats)
	li.HeapMB = float64(mStats.HeapAlloc) / (1 << 20)
	return li
}

// getCPUUsage 与上次调用之间的整机 CPU 使用率
func getCPUUsage() float64 {
	percents, err := cpu.Percent(0, false)
	if err != nil || len(percents) == 0 {
		log.Debug("获取 CPU 使用率失败: %v", err)
		return 0
	}
	return percents[0]
}

func getMemoryUsage() float64 {
	vm, err := mem.VirtualMemory()
	if err != nil {
		log.Debug("获取内存使用率失败: %v", err)
		return 0
	}
	return vm.UsedPercent
}
