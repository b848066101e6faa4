package service

import (
	"context"
	"sync/atomic"

	"convlog/core/infrastructure/message/transfer"
)

type ConvertService interface {
	// Convert 转换 tenhou.net/6 牌谱，结果按牌谱内容去重缓存
	Convert(ctx context.Context, req *transfer.ConvertReq) (*transfer.ConvertResp, error)
	// Show 读取已保存的转换结果
	Show(ctx context.Context, recordID string) (*transfer.ConvertResp, error)
	Stats() *Stats
}

// Stats 转换计数，由 Monitor 定期输出
type Stats struct {
	Converted     atomic.Int64 // 实际执行转换的次数
	CacheHits     atomic.Int64
	Failed        atomic.Int64
	SkippedKyokus atomic.Int64
	Events        atomic.Int64
}
