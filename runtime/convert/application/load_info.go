package application

// LoadInfo 负载信息，由 Monitor 周期性采集
type LoadInfo struct {
	Converted     int64   // 累计转换次数
	CacheHits     int64   // 累计缓存命中
	Failed        int64   // 累计失败
	SkippedKyokus int64   // 累计跳过的局
	Handled       int64   // nats 已处理请求
	Rejected      int64   // nats 被限流请求
	CPUUsage      float64 // CPU 使用率（0-100）
	MemUsage      float64 // 系统内存使用率（0-100）
	HeapMB        float64 // 本进程堆内存
}

// HitRate 缓存命中率，没有请求时为 0
func (li *LoadInfo) HitRate() float64 {
	total := li.Converted + li.CacheHits
	if total == 0 {
		return 0
	}
	return float64(li.CacheHits) / float64(total) * 100
}

// CalculateLoad 综合负载评分，返回值越小表示负载越低
// 权重：CPU 50%、内存 30%、限流比例 20%
func (li *LoadInfo) CalculateLoad() float64 {
	rejectRate := 0.0
	if total := li.Handled + li.Rejected; total > 0 {
		rejectRate = float64(li.Rejected) / float64(total) * 100
	}
	return li.CPUUsage*0.5 + li.MemUsage*0.3 + rejectRate*0.2
}
