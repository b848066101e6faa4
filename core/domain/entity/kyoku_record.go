package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// KyokuRecord 局记录（每局一个文档）
// 保存该局从 start_kyoku 到 end_kyoku 的 mjai 事件
type KyokuRecord struct {
	ID           primitive.ObjectID `bson:"_id"`
	ConversionID primitive.ObjectID `bson:"conversion_id"`
	Sequence     int                `bson:"sequence"`  // 在牌谱中的顺序（从0开始，跳过的局不占位）
	KyokuNum     int                `bson:"kyoku_num"` // tenhou 局号，0 为东一局
	Honba        int                `bson:"honba"`
	Kyotaku      int                `bson:"kyotaku"`
	Bakaze       string             `bson:"bakaze"` // "E", "S", "W", "N"
	Oya          int                `bson:"oya"`
	EndType      string             `bson:"end_type"` // "hora", "ryukyoku"
	Events       []KyokuEvent       `bson:"events"`
	CreatedAt    time.Time          `bson:"created_at"`
}

// KyokuEvent 一条 mjai 事件，Line 为序列化后的 json
type KyokuEvent struct {
	Sequence  int    `bson:"sequence"`
	EventType string `bson:"event_type"`
	Actor     int    `bson:"actor"` // -1 表示系统事件
	Line      string `bson:"line"`
}

func NewKyokuRecord(conversionID primitive.ObjectID, sequence, kyokuNum, honba, kyotaku int) *KyokuRecord {
	return &KyokuRecord{
		ID:           primitive.NewObjectID(),
		ConversionID: conversionID,
		Sequence:     sequence,
		KyokuNum:     kyokuNum,
		Honba:        honba,
		Kyotaku:      kyotaku,
		Events:       make([]KyokuEvent, 0, 160),
		CreatedAt:    time.Now(),
	}
}

// AddEvent 按顺序追加事件
func (kr *KyokuRecord) AddEvent(eventType string, actor int, line string) {
	kr.Events = append(kr.Events, KyokuEvent{
		Sequence:  len(kr.Events),
		EventType: eventType,
		Actor:     actor,
		Line:      line,
	})
}
