package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ConversionCompleted = "completed" // 所有局都转换成功
	ConversionPartial   = "partial"   // 跳过了部分局
)

// ConversionRecord 一次牌谱转换的元数据（聚合根）
// 每局的事件单独存放在 KyokuRecord 中
type ConversionRecord struct {
	ID         primitive.ObjectID `bson:"_id"`
	RequestID  string             `bson:"request_id"`
	SourceHash string             `bson:"source_hash"` // 原始牌谱 + 转换选项的摘要，用作缓存键
	Names      [4]string          `bson:"names"`
	GameLength int                `bson:"game_length"` // 0 半庄，4 东风
	AkaFlag    bool               `bson:"aka_flag"`
	KyokuCount int                `bson:"kyoku_count"` // 成功转换的局数
	EventCount int                `bson:"event_count"` // 含 start_game / end_game
	Skipped    []string           `bson:"skipped"`     // 被跳过的局的错误信息
	Status     string             `bson:"status"`
	CreatedAt  time.Time          `bson:"created_at"`
}

func NewConversionRecord(requestID, sourceHash string, names [4]string, gameLength int, aka bool) *ConversionRecord {
	return &ConversionRecord{
		ID:         primitive.NewObjectID(),
		RequestID:  requestID,
		SourceHash: sourceHash,
		Names:      names,
		GameLength: gameLength,
		AkaFlag:    aka,
		Status:     ConversionCompleted,
		CreatedAt:  time.Now(),
	}
}

// AddKyoku 统计一局成功转换的结果
func (cr *ConversionRecord) AddKyoku(kyoku *KyokuRecord) {
	cr.KyokuCount++
	cr.EventCount += len(kyoku.Events)
}

// Skip 记录被跳过的局
func (cr *ConversionRecord) Skip(err error) {
	cr.Skipped = append(cr.Skipped, err.Error())
	cr.Status = ConversionPartial
}
