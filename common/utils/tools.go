package utils

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 以下函数把 bson.M 中解出的弱类型值转成具体类型，类型不符时返回零值

func ToTime(value interface{}) time.Time {
	switch v := value.(type) {
	case primitive.DateTime:
		return v.Time()
	case primitive.Timestamp:
		return time.Unix(int64(v.T), 0)
	case time.Time:
		return v
	case *time.Time:
		if v != nil {
			return *v
		}
	}
	return time.Time{}
}

func ToInt(value interface{}) int {
	switch v := value.(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func ToBool(value interface{}) bool {
	b, _ := value.(bool)
	return b
}

func ToString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case *string:
		if v != nil {
			return *v
		}
	}
	return ""
}

func ToStringArray(value interface{}) [4]string {
	var result [4]string
	switch v := value.(type) {
	case primitive.A:
		for i := 0; i < 4 && i < len(v); i++ {
			result[i] = ToString(v[i])
		}
	case []interface{}:
		for i := 0; i < 4 && i < len(v); i++ {
			result[i] = ToString(v[i])
		}
	case []string:
		copy(result[:], v)
	}
	return result
}
