package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.yml")
	content := `
serverType: converter
metricPort: 5858
log:
  level: debug
nats:
  url: nats://10.0.0.1:4222
convert:
  subject: convlog.test
  skipBrokenKyoku: true
`
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatalf("写入配置失败: %v", err)
	}
	t.Setenv("NODE_ID", "converter-1")

	if err := Load(file); err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}
	cfg := ConverterConfig
	if cfg.ID != "converter-1" || cfg.MetricPort != 5858 {
		t.Fatalf("基础配置错误: %+v", cfg.BaseConfig)
	}
	if cfg.LogConf.Level != "debug" || cfg.NatsConfig.URL != "nats://10.0.0.1:4222" {
		t.Fatalf("日志或 nats 配置错误: %+v %+v", cfg.LogConf, cfg.NatsConfig)
	}
	if cfg.Subject != "convlog.test" || !cfg.SkipBrokenKyoku {
		t.Fatalf("转换配置错误: %+v", cfg.ConvertConf)
	}
	// 未填写的字段沿用默认值
	if cfg.Workers != Default().Workers || cfg.MongoConf.Db != "convlog" {
		t.Fatalf("默认值丢失: %+v", cfg)
	}
}

func TestLoad_UnknownServerType(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.yml")
	if err := os.WriteFile(file, []byte("serverType: game\n"), 0o644); err != nil {
		t.Fatalf("写入配置失败: %v", err)
	}
	if err := Load(file); err == nil {
		t.Fatalf("未知的节点类型应当报错")
	}
}
