package repository

import (
	"context"

	"convlog/core/domain/entity"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ConversionRepository 转换记录仓储接口
type ConversionRepository interface {
	// SaveConversion 保存转换记录（元数据）
	SaveConversion(ctx context.Context, record *entity.ConversionRecord) error

	// FindConversion 根据ID查找转换记录
	FindConversion(ctx context.Context, id primitive.ObjectID) (*entity.ConversionRecord, error)

	// FindConversionByHash 根据原始牌谱摘要查找，用于去重
	FindConversionByHash(ctx context.Context, sourceHash string) (*entity.ConversionRecord, error)

	// SaveKyokuRecords 批量保存局记录
	SaveKyokuRecords(ctx context.Context, kyokus []*entity.KyokuRecord) error

	// FindKyokuRecords 查找转换的所有局记录（按顺序排序）
	FindKyokuRecords(ctx context.Context, conversionID primitive.ObjectID) ([]*entity.KyokuRecord, error)
}

// ConversionCacheRepository 摘要 -> 转换记录ID 的共享缓存
type ConversionCacheRepository interface {
	GetRecordID(ctx context.Context, sourceHash string) (string, error)
	SetRecordID(ctx context.Context, sourceHash, recordID string) error
	IncrConverted(ctx context.Context) (int64, error)
}
