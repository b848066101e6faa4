package utils

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, 1)
	if !rl.Allow() || !rl.Allow() {
		t.Fatalf("桶满时应允许两次")
	}
	if rl.Allow() {
		t.Fatalf("令牌耗尽后应拒绝")
	}
	time.Sleep(600 * time.Millisecond)
	if !rl.Allow() {
		t.Fatalf("补充令牌后应允许")
	}
}

func TestRateLimiter_Unlimited(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	for i := 0; i < 100; i++ {
		if !rl.Allow() {
			t.Fatalf("rate 为 0 时不限流")
		}
	}
}

func TestToArrays(t *testing.T) {
	if ToInt(int32(-1000)) != -1000 || ToInt(int64(1000)) != 1000 || ToInt(float64(4)) != 4 {
		t.Fatalf("整数解析错误")
	}
	names := ToStringArray(primitive.A{"A", "B", "C", "D", "E"})
	if names != [4]string{"A", "B", "C", "D"} {
		t.Fatalf("名字解析错误: %v", names)
	}
	if ToInt("x") != 0 || ToBool(1) {
		t.Fatalf("类型不符时应返回零值")
	}
}
