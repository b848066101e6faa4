package repository

import "errors"

var (
	ErrConversionNotFound   = errors.New("conversion not found")
	ErrConversionIncomplete = errors.New("conversion incomplete") // 转换记录缺少局记录
	ErrCacheMiss            = errors.New("cache miss")
)
