package persistence

import (
	"context"
	"errors"

	"convlog/common/database"
	"convlog/common/log"
	"convlog/common/utils"
	"convlog/core/domain/entity"
	"convlog/core/domain/repository"
	"convlog/core/infrastructure/message/transfer"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	conversionCollection = "conversion_records"
	kyokuCollection      = "kyoku_records"
)

type ConversionRepository struct {
	mongo *database.MongoManager
}

func NewConversionRepository(mongo *database.MongoManager) *ConversionRepository {
	return &ConversionRepository{mongo: mongo}
}

// EnsureIndexes source_hash 用于去重查询，kyoku_records 按转换记录聚合
func (r *ConversionRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.mongo.Db.Collection(conversionCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "source_hash", Value: 1}},
	})
	if err != nil {
		return err
	}
	_, err = r.mongo.Db.Collection(kyokuCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "conversion_id", Value: 1}, {Key: "sequence", Value: 1}},
	})
	return err
}

// SaveConversion 保存转换记录（元数据）
func (r *ConversionRepository) SaveConversion(ctx context.Context, record *entity.ConversionRecord) error {
	collection := r.mongo.Db.Collection(conversionCollection)

	_, err := collection.InsertOne(ctx, conversionToBson(record))
	if err != nil {
		log.Error("保存转换记录失败: %v", err)
		return transfer.ErrMongodb
	}
	return nil
}

func (r *ConversionRepository) FindConversion(ctx context.Context, id primitive.ObjectID) (*entity.ConversionRecord, error) {
	return r.findConversion(ctx, bson.M{"_id": id})
}

// FindConversionByHash 同一摘要有多条记录时取最新的一条
func (r *ConversionRepository) FindConversionByHash(ctx context.Context, sourceHash string) (*entity.ConversionRecord, error) {
	return r.findConversion(ctx, bson.M{"source_hash": sourceHash},
		options.FindOne().SetSort(bson.D{{Key: "_id", Value: -1}}))
}

func (r *ConversionRepository) findConversion(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*entity.ConversionRecord, error) {
	collection := r.mongo.Db.Collection(conversionCollection)

	var doc bson.M
	err := collection.FindOne(ctx, filter, opts...).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrConversionNotFound
		}
		log.Error("查询转换记录失败: %v", err)
		return nil, transfer.ErrMongodb
	}
	return docToConversion(doc), nil
}

// SaveKyokuRecords 批量保存局记录（使用 MongoDB InsertMany）
func (r *ConversionRepository) SaveKyokuRecords(ctx context.Context, kyokus []*entity.KyokuRecord) error {
	docs := make([]any, 0, len(kyokus))
	for _, kyoku := range kyokus {
		if kyoku == nil {
			continue
		}
		docs = append(docs, kyokuToBson(kyoku))
	}
	if len(docs) == 0 {
		return nil
	}

	_, err := r.mongo.Db.Collection(kyokuCollection).InsertMany(ctx, docs)
	if err != nil {
		log.Error("批量保存局记录失败: %v", err)
		return transfer.ErrMongodb
	}
	log.Debug("批量保存局记录成功: count=%d", len(docs))
	return nil
}

// FindKyokuRecords 查找转换的所有局记录（按顺序排序）
func (r *ConversionRepository) FindKyokuRecords(ctx context.Context, conversionID primitive.ObjectID) ([]*entity.KyokuRecord, error) {
	collection := r.mongo.Db.Collection(kyokuCollection)

	opts := options.Find().SetSort(bson.M{"sequence": 1})
	cursor, err := collection.Find(ctx, bson.M{"conversion_id": conversionID}, opts)
	if err != nil {
		log.Error("查询局记录失败: %v", err)
		return nil, transfer.ErrMongodb
	}
	defer cursor.Close(ctx)

	var result []*entity.KyokuRecord
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			log.Warn("局记录解析失败: %v", err)
			continue
		}
		result = append(result, docToKyoku(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, transfer.ErrMongodb
	}
	return result, nil
}

// ==================== 转换辅助方法 ====================

func conversionToBson(record *entity.ConversionRecord) bson.M {
	skipped := record.Skipped
	if skipped == nil {
		skipped = []string{}
	}
	return bson.M{
		"_id":         record.ID,
		"request_id":  record.RequestID,
		"source_hash": record.SourceHash,
		"names":       record.Names[:],
		"game_length": record.GameLength,
		"aka_flag":    record.AkaFlag,
		"kyoku_count": record.KyokuCount,
		"event_count": record.EventCount,
		"skipped":     skipped,
		"status":      record.Status,
		"created_at":  record.CreatedAt,
	}
}

func kyokuToBson(kyoku *entity.KyokuRecord) bson.M {
	events := make([]bson.M, len(kyoku.Events))
	for i, e := range kyoku.Events {
		events[i] = bson.M{
			"sequence":   e.Sequence,
			"event_type": e.EventType,
			"actor":      e.Actor,
			"line":       e.Line,
		}
	}
	return bson.M{
		"_id":           kyoku.ID,
		"conversion_id": kyoku.ConversionID,
		"sequence":      kyoku.Sequence,
		"kyoku_num":     kyoku.KyokuNum,
		"honba":         kyoku.Honba,
		"kyotaku":       kyoku.Kyotaku,
		"bakaze":        kyoku.Bakaze,
		"oya":           kyoku.Oya,
		"end_type":      kyoku.EndType,
		"events":        events,
		"created_at":    kyoku.CreatedAt,
	}
}

func docToConversion(doc bson.M) *entity.ConversionRecord {
	var skipped []string
	if arr, ok := doc["skipped"].(bson.A); ok {
		for _, s := range arr {
			skipped = append(skipped, utils.ToString(s))
		}
	}
	id, _ := doc["_id"].(primitive.ObjectID)
	return &entity.ConversionRecord{
		ID:         id,
		RequestID:  utils.ToString(doc["request_id"]),
		SourceHash: utils.ToString(doc["source_hash"]),
		Names:      utils.ToStringArray(doc["names"]),
		GameLength: utils.ToInt(doc["game_length"]),
		AkaFlag:    utils.ToBool(doc["aka_flag"]),
		KyokuCount: utils.ToInt(doc["kyoku_count"]),
		EventCount: utils.ToInt(doc["event_count"]),
		Skipped:    skipped,
		Status:     utils.ToString(doc["status"]),
		CreatedAt:  utils.ToTime(doc["created_at"]),
	}
}

func docToKyoku(doc bson.M) *entity.KyokuRecord {
	var events []entity.KyokuEvent
	if arr, ok := doc["events"].(bson.A); ok {
		events = make([]entity.KyokuEvent, 0, len(arr))
		for _, e := range arr {
			eMap, ok := e.(bson.M)
			if !ok {
				continue
			}
			events = append(events, entity.KyokuEvent{
				Sequence:  utils.ToInt(eMap["sequence"]),
				EventType: utils.ToString(eMap["event_type"]),
				Actor:     utils.ToInt(eMap["actor"]),
				Line:      utils.ToString(eMap["line"]),
			})
		}
	}
	id, _ := doc["_id"].(primitive.ObjectID)
	conversionID, _ := doc["conversion_id"].(primitive.ObjectID)
	return &entity.KyokuRecord{
		ID:           id,
		ConversionID: conversionID,
		Sequence:     utils.ToInt(doc["sequence"]),
		KyokuNum:     utils.ToInt(doc["kyoku_num"]),
		Honba:        utils.ToInt(doc["honba"]),
		Kyotaku:      utils.ToInt(doc["kyotaku"]),
		Bakaze:       utils.ToString(doc["bakaze"]),
		Oya:          utils.ToInt(doc["oya"]),
		EndType:      utils.ToString(doc["end_type"]),
		Events:       events,
		CreatedAt:    utils.ToTime(doc["created_at"]),
	}
}
