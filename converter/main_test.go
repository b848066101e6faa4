package main

import (
	"testing"
	"time"
)

func TestTimeoutDefaults(t *testing.T) {
	if showTimeout != 10*time.Second {
		t.Fatalf("show 默认超时应为 10s: %v", showTimeout)
	}
	if submitTimeout != 30*time.Second {
		t.Fatalf("submit 默认超时应为 30s: %v", submitTimeout)
	}
	if err := showCmd.Flags().Set("timeout", "3s"); err != nil {
		t.Fatalf("设置参数失败: %v", err)
	}
	if showTimeout != 3*time.Second || submitTimeout != 30*time.Second {
		t.Fatalf("show 的参数不应影响 submit: show=%v submit=%v", showTimeout, submitTimeout)
	}
}
