package cache

import (
	"fmt"
	"time"

	"convlog/common/cache"
)

// ConversionCache 处理 sourceHash -> 序列化后的转换结果 的本地缓存
type ConversionCache struct {
	cache     *cache.GeneralCache
	resultKey string
}

func NewConversionCache(maxCost int64, ttl time.Duration) (*ConversionCache, error) {
	generalCache, err := cache.NewGeneralCache(maxCost, ttl)
	if err != nil {
		return nil, fmt.Errorf("创建转换结果缓存失败: %w", err)
	}
	return &ConversionCache{cache: generalCache, resultKey: "conv:result"}, nil
}

// SetResult 以字节数计成本，大牌谱会更早被淘汰
func (c *ConversionCache) SetResult(sourceHash string, result []byte) bool {
	if sourceHash == "" || len(result) == 0 {
		return false
	}
	return c.cache.SetBytes(fmt.Sprintf("%s:%s", c.resultKey, sourceHash), result)
}

func (c *ConversionCache) GetResult(sourceHash string) ([]byte, bool) {
	return c.cache.GetBytes(fmt.Sprintf("%s:%s", c.resultKey, sourceHash))
}

func (c *ConversionCache) Delete(sourceHash string) {
	c.cache.Delete(fmt.Sprintf("%s:%s", c.resultKey, sourceHash))
}

// Wait 等待异步写入完成
func (c *ConversionCache) Wait() {
	c.cache.Wait()
}

func (c *ConversionCache) Close() {
	c.cache.Close()
}
