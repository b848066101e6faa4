package impl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"convlog/common/log"
	"convlog/core/domain/entity"
	"convlog/core/domain/repository"
	"convlog/core/infrastructure/cache"
	"convlog/core/infrastructure/message/transfer"
	"convlog/runtime/convert"
	"convlog/runtime/convert/application/service"
	"convlog/runtime/mjai"
	"convlog/runtime/tenhou"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ConvertServiceImpl struct {
	repo       repository.ConversionRepository
	remote     repository.ConversionCacheRepository
	local      *cache.ConversionCache
	skipBroken atomic.Bool
	stats      service.Stats
}

type Option func(*ConvertServiceImpl)

// WithRepository 转换结果写入 mongo，Show 依赖它
func WithRepository(repo repository.ConversionRepository) Option {
	return func(s *ConvertServiceImpl) { s.repo = repo }
}

// WithRemoteCache 多节点共享 摘要 -> 记录ID
func WithRemoteCache(remote repository.ConversionCacheRepository) Option {
	return func(s *ConvertServiceImpl) { s.remote = remote }
}

func WithLocalCache(local *cache.ConversionCache) Option {
	return func(s *ConvertServiceImpl) { s.local = local }
}

// NewConvertService 所有依赖都是可选的，离线转换时全部为空
func NewConvertService(skipBrokenKyoku bool, opts ...Option) *ConvertServiceImpl {
	s := &ConvertServiceImpl{}
	s.skipBroken.Store(skipBrokenKyoku)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetSkipBrokenKyoku 配置热更新时调用
func (s *ConvertServiceImpl) SetSkipBrokenKyoku(skip bool) {
	s.skipBroken.Store(skip)
}

func (s *ConvertServiceImpl) Stats() *service.Stats {
	return &s.stats
}

// SourceHash 牌谱内容与失败策略共同决定转换结果
func SourceHash(raw []byte, skipBrokenKyoku bool) string {
	d := xxhash.New()
	_, _ = d.Write(raw)
	if skipBrokenKyoku {
		_, _ = d.WriteString(":skip")
	}
	return fmt.Sprintf("%016x", d.Sum64())
}

func (s *ConvertServiceImpl) Convert(ctx context.Context, req *transfer.ConvertReq) (*transfer.ConvertResp, error) {
	if req == nil || len(bytes.TrimSpace(req.Log)) == 0 {
		return nil, fmt.Errorf("%w: 牌谱不能为空", transfer.ErrArgument)
	}
	skip := s.skipBroken.Load()
	if req.SkipBrokenKyoku != nil {
		skip = *req.SkipBrokenKyoku
	}
	hash := SourceHash(req.Log, skip)

	if resp, ok := s.cached(ctx, hash, req.Persist); ok {
		s.stats.CacheHits.Add(1)
		log.Debug("ConvertService 命中缓存, hash=%s", hash)
		return resp, nil
	}

	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}

	resp, err := s.convert(ctx, requestID, hash, req, skip)
	if err != nil {
		s.stats.Failed.Add(1)
		log.Warn("ConvertService 转换失败, requestId=%s, err=%v", requestID, err)
		return nil, err
	}
	s.stats.Converted.Add(1)
	s.stats.Events.Add(int64(resp.Events))
	s.stats.SkippedKyokus.Add(int64(len(resp.Skipped)))
	s.remember(hash, resp)

	log.Info("ConvertService 转换完成, requestId=%s, kyokus=%d, events=%d, skipped=%d",
		requestID, resp.Kyokus, resp.Events, len(resp.Skipped))
	return resp, nil
}

func (s *ConvertServiceImpl) convert(ctx context.Context, requestID, hash string, req *transfer.ConvertReq, skip bool) (*transfer.ConvertResp, error) {
	tl, err := tenhou.Parse(req.Log)
	if err != nil {
		return nil, err
	}
	res, err := convert.TenhouToMjaiWithOptions(tl, convert.Options{SkipBrokenKyoku: skip})
	if err != nil {
		return nil, err
	}

	record := entity.NewConversionRecord(requestID, hash, tl.Names, int(tl.GameLength), tl.HasAka)
	for _, skipped := range res.Skipped {
		record.Skip(skipped)
	}
	kyokus := make([]*entity.KyokuRecord, 0, len(res.Kyokus))
	for i, kyoku := range res.Kyokus {
		kr, err := newKyokuRecord(record.ID, i, kyoku)
		if err != nil {
			return nil, err
		}
		record.AddKyoku(kr)
		kyokus = append(kyokus, kr)
	}
	record.EventCount += 2

	lines, err := mjai.MarshalLines(res.Events)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", transfer.ErrMessageMarshal, err)
	}
	resp := &transfer.ConvertResp{
		Lines:   string(lines),
		Kyokus:  record.KyokuCount,
		Events:  len(res.Events),
		Skipped: record.Skipped,
	}

	if req.Persist && s.repo != nil {
		if err := s.persist(ctx, record, kyokus); err != nil {
			return nil, err
		}
		resp.RecordID = record.ID.Hex()
	}
	return resp, nil
}

func (s *ConvertServiceImpl) persist(ctx context.Context, record *entity.ConversionRecord, kyokus []*entity.KyokuRecord) error {
	// 转换记录最后写入，按摘要能查到的记录一定带着全部局记录
	if err := s.repo.SaveKyokuRecords(ctx, kyokus); err != nil {
		return err
	}
	if err := s.repo.SaveConversion(ctx, record); err != nil {
		return err
	}
	if s.remote == nil {
		return nil
	}
	if err := s.remote.SetRecordID(ctx, record.SourceHash, record.ID.Hex()); err != nil {
		log.Warn("ConvertService 写入共享缓存失败: %v", err)
	}
	if total, err := s.remote.IncrConverted(ctx); err == nil {
		log.Debug("ConvertService 全局转换计数: %d", total)
	}
	return nil
}

// cached 先查本地缓存，再查共享缓存（或 mongo）指向的已保存记录
// 需要落库的请求不接受没有记录ID的本地结果
func (s *ConvertServiceImpl) cached(ctx context.Context, hash string, persist bool) (*transfer.ConvertResp, bool) {
	if s.local != nil {
		if data, ok := s.local.GetResult(hash); ok {
			var resp transfer.ConvertResp
			if err := json.Unmarshal(data, &resp); err != nil {
				s.local.Delete(hash)
			} else if !persist || s.repo == nil || resp.RecordID != "" {
				resp.Cached = true
				return &resp, true
			}
		}
	}
	if s.repo == nil {
		return nil, false
	}

	recordID, err := s.storedRecordID(ctx, hash, persist)
	if err != nil {
		if !errors.Is(err, repository.ErrCacheMiss) && !errors.Is(err, repository.ErrConversionNotFound) {
			log.Warn("ConvertService 查询已保存记录失败: %v", err)
		}
		return nil, false
	}
	resp, err := s.Show(ctx, recordID)
	if err != nil {
		log.Warn("ConvertService 缓存指向的记录不可用, id=%s, err=%v", recordID, err)
		return nil, false
	}
	s.remember(hash, resp)
	resp.Cached = true
	return resp, true
}

func (s *ConvertServiceImpl) storedRecordID(ctx context.Context, hash string, persist bool) (string, error) {
	if s.remote != nil {
		recordID, err := s.remote.GetRecordID(ctx, hash)
		if err == nil || !persist {
			return recordID, err
		}
	}
	if !persist {
		return "", repository.ErrCacheMiss
	}
	record, err := s.repo.FindConversionByHash(ctx, hash)
	if err != nil {
		return "", err
	}
	return record.ID.Hex(), nil
}

func (s *ConvertServiceImpl) remember(hash string, resp *transfer.ConvertResp) {
	if s.local == nil {
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	s.local.SetResult(hash, data)
}

func (s *ConvertServiceImpl) Show(ctx context.Context, recordID string) (*transfer.ConvertResp, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("%w: 未配置存储", transfer.ErrService)
	}
	id, err := primitive.ObjectIDFromHex(recordID)
	if err != nil {
		return nil, fmt.Errorf("%w: 记录ID格式错误 %q", transfer.ErrArgument, recordID)
	}
	record, err := s.repo.FindConversion(ctx, id)
	if err != nil {
		return nil, err
	}
	kyokus, err := s.repo.FindKyokuRecords(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(kyokus) != record.KyokuCount {
		return nil, fmt.Errorf("%w: id=%s, want %d kyokus, found %d",
			repository.ErrConversionIncomplete, recordID, record.KyokuCount, len(kyokus))
	}

	lines, events, err := restoreLines(record, kyokus)
	if err != nil {
		return nil, err
	}
	return &transfer.ConvertResp{
		RecordID: recordID,
		Lines:    lines,
		Kyokus:   len(kyokus),
		Events:   events,
		Skipped:  record.Skipped,
	}, nil
}

func newKyokuRecord(conversionID primitive.ObjectID, sequence int, kyoku convert.KyokuEvents) (*entity.KyokuRecord, error) {
	kr := entity.NewKyokuRecord(conversionID, sequence,
		int(kyoku.Meta.KyokuNum), int(kyoku.Meta.Honba), int(kyoku.Meta.Kyotaku))
	kr.EndType = mjai.TypeRyukyoku
	for _, ev := range kyoku.Events {
		switch e := ev.(type) {
		case mjai.StartKyoku:
			kr.Bakaze = e.Bakaze.String()
			kr.Oya = int(e.Oya)
		case mjai.Hora:
			kr.EndType = mjai.TypeHora
		}
		line, err := mjai.Marshal(ev)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", transfer.ErrMessageMarshal, err)
		}
		kr.AddEvent(ev.Type(), mjai.ActorOf(ev), string(line))
	}
	return kr, nil
}

// restoreLines start_game / end_game 不落库，按元数据重新生成
func restoreLines(record *entity.ConversionRecord, kyokus []*entity.KyokuRecord) (string, int, error) {
	var buf bytes.Buffer
	start, err := mjai.Marshal(mjai.StartGame{
		Names:      record.Names,
		KyokuFirst: uint8(record.GameLength),
		AkaFlag:    record.AkaFlag,
	})
	if err != nil {
		return "", 0, err
	}
	buf.Write(start)
	buf.WriteByte('\n')

	events := 1
	for _, kyoku := range kyokus {
		for _, ev := range kyoku.Events {
			buf.WriteString(ev.Line)
			buf.WriteByte('\n')
			events++
		}
	}

	end, err := mjai.Marshal(mjai.EndGame{})
	if err != nil {
		return "", 0, err
	}
	buf.Write(end)
	buf.WriteByte('\n')
	return buf.String(), events + 1, nil
}
