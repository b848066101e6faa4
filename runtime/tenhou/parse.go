package tenhou

import (
	"errors"
	"fmt"
	"strings"

	"convlog/runtime/pai"

	"github.com/tidwall/gjson"
)

var ErrInvalidLog = errors.New("invalid tenhou log")

const (
	tsumogiriCode = 60
	horaTag       = "和了"
)

// Parse 解析 tenhou.net/6 格式的 json 牌谱
//
// 牌谱的每一局是一个 17 元素的异构数组：
//
//	[kyoku, honba, kyotaku], [分数 x4], [宝牌指示牌], [里宝牌指示牌],
//	(配牌, 摸牌, 切牌) x4, [结束信息]
func Parse(data []byte) (*Log, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed json", ErrInvalidLog)
	}
	root := gjson.ParseBytes(data)

	log := &Log{
		GameLength: Tonpuu,
		HasAka:     parseAkaFlag(root.Get("rule")),
	}
	if strings.Contains(root.Get("rule.disp").String(), "南") {
		log.GameLength = Hanchan
	}

	names := root.Get("name").Array()
	for i := 0; i < 4 && i < len(names); i++ {
		log.Names[i] = names[i].String()
	}

	kyokus := root.Get("log")
	if !kyokus.IsArray() {
		return nil, fmt.Errorf("%w: missing log array", ErrInvalidLog)
	}
	for idx, raw := range kyokus.Array() {
		kyoku, err := parseKyoku(raw)
		if err != nil {
			return nil, fmt.Errorf("kyoku #%d: %w", idx, err)
		}
		log.Kyokus = append(log.Kyokus, *kyoku)
	}

	return log, nil
}

func parseAkaFlag(rule gjson.Result) bool {
	if rule.Get("aka").Int() != 0 {
		return true
	}
	return rule.Get("aka51").Int()+rule.Get("aka52").Int()+rule.Get("aka53").Int() != 0
}

func parseKyoku(raw gjson.Result) (*Kyoku, error) {
	parts := raw.Array()
	if len(parts) != 17 {
		return nil, fmt.Errorf("%w: kyoku has %d parts, want 17", ErrInvalidLog, len(parts))
	}

	meta := parts[0].Array()
	if len(meta) != 3 {
		return nil, fmt.Errorf("%w: kyoku meta %s", ErrInvalidLog, parts[0].Raw)
	}
	kyoku := &Kyoku{
		Meta: KyokuMeta{
			KyokuNum: uint8(meta[0].Int()),
			Honba:    uint8(meta[1].Int()),
			Kyotaku:  uint8(meta[2].Int()),
		},
	}

	scores := parts[1].Array()
	if len(scores) != 4 {
		return nil, fmt.Errorf("%w: scoreboard %s", ErrInvalidLog, parts[1].Raw)
	}
	for i := range scores {
		kyoku.Scoreboard[i] = int32(scores[i].Int())
	}

	var err error
	if kyoku.DoraIndicators, err = parsePais(parts[2]); err != nil {
		return nil, err
	}
	if kyoku.UraIndicators, err = parsePais(parts[3]); err != nil {
		return nil, err
	}

	for seat := 0; seat < 4; seat++ {
		base := 4 + seat*3
		haipai, err := parsePais(parts[base])
		if err != nil {
			return nil, err
		}
		if len(haipai) != 13 {
			return nil, fmt.Errorf("%w: seat %d haipai has %d pais", ErrInvalidLog, seat, len(haipai))
		}
		table := &kyoku.ActionTables[seat]
		copy(table.Haipai[:], haipai)

		if table.Takes, err = parseActionItems(parts[base+1]); err != nil {
			return nil, err
		}
		if table.Discards, err = parseActionItems(parts[base+2]); err != nil {
			return nil, err
		}
	}

	if kyoku.EndStatus, err = parseEndStatus(parts[16]); err != nil {
		return nil, err
	}
	return kyoku, nil
}

func parsePais(raw gjson.Result) ([]pai.Pai, error) {
	items := raw.Array()
	ret := make([]pai.Pai, 0, len(items))
	for _, item := range items {
		if item.Type != gjson.Number {
			return nil, fmt.Errorf("%w: expected pai number, got %s", ErrInvalidLog, item.Raw)
		}
		code := item.Int()
		if code < 0 || code > 255 {
			return nil, fmt.Errorf("%w: pai code %d", ErrInvalidLog, code)
		}
		p, err := pai.FromU8(uint8(code))
		if err != nil {
			return nil, err
		}
		ret = append(ret, p)
	}
	return ret, nil
}

func parseActionItems(raw gjson.Result) ([]ActionItem, error) {
	items := raw.Array()
	ret := make([]ActionItem, 0, len(items))
	for _, item := range items {
		switch item.Type {
		case gjson.String:
			ret = append(ret, NakiItem{Raw: item.String()})
		case gjson.Number:
			code := item.Int()
			if code == tsumogiriCode {
				ret = append(ret, TsumogiriItem{})
				continue
			}
			if code < 0 || code > 255 {
				return nil, fmt.Errorf("%w: pai code %d", ErrInvalidLog, code)
			}
			p, err := pai.FromU8(uint8(code))
			if err != nil {
				return nil, err
			}
			ret = append(ret, PaiItem{Pai: p})
		default:
			return nil, fmt.Errorf("%w: unexpected action item %s", ErrInvalidLog, item.Raw)
		}
	}
	return ret, nil
}

// parseEndStatus 和了：["和了", [分数变动], [who, target, pao, ...], ...]（双响时成对重复）
// 流局：["流局", [分数变动]] 或 ["九種九牌"] 等，分数变动可能缺省
func parseEndStatus(raw gjson.Result) (EndStatus, error) {
	parts := raw.Array()
	if len(parts) == 0 || parts[0].Type != gjson.String {
		return nil, fmt.Errorf("%w: end status %s", ErrInvalidLog, raw.Raw)
	}

	tag := parts[0].String()
	if tag != horaTag {
		ryukyoku := Ryukyoku{Reason: tag}
		if len(parts) > 1 {
			deltas, err := parseDeltas(parts[1])
			if err != nil {
				return nil, err
			}
			ryukyoku.ScoreDeltas = deltas
		}
		return ryukyoku, nil
	}

	hora := Hora{}
	for i := 1; i+1 < len(parts); i += 2 {
		deltas, err := parseDeltas(parts[i])
		if err != nil {
			return nil, err
		}
		detail := parts[i+1].Array()
		if len(detail) < 2 {
			return nil, fmt.Errorf("%w: hora detail %s", ErrInvalidLog, parts[i+1].Raw)
		}
		hora.Details = append(hora.Details, HoraDetail{
			Who:         uint8(detail[0].Int()),
			Target:      uint8(detail[1].Int()),
			ScoreDeltas: deltas,
		})
	}
	if len(hora.Details) == 0 {
		return nil, fmt.Errorf("%w: hora without detail", ErrInvalidLog)
	}
	return hora, nil
}

func parseDeltas(raw gjson.Result) ([4]int32, error) {
	var deltas [4]int32
	items := raw.Array()
	if len(items) != 4 {
		return deltas, fmt.Errorf("%w: score deltas %s", ErrInvalidLog, raw.Raw)
	}
	for i := range items {
		deltas[i] = int32(items[i].Int())
	}
	return deltas, nil
}
