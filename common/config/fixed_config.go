package config

import (
	"sync"

	"convlog/common/log"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

var (
	listenersMu sync.Mutex
	listeners   []func(ConverterConfiguration)
)

// OnChange 注册配置热更新回调，回调在 fsnotify 的 goroutine 中执行
func OnChange(fn func(ConverterConfiguration)) {
	listenersMu.Lock()
	defer listenersMu.Unlock()
	listeners = append(listeners, fn)
}

func watch(v *viper.Viper) {
	v.OnConfigChange(func(in fsnotify.Event) {
		cfg, err := decode(v)
		if err != nil {
			log.Error("解析配置文件出错, file:%s, err:%v", in.Name, err)
			return
		}
		log.SetLevel(cfg.LogConf.Level)
		log.Info("配置已重新加载: %s", in.Name)

		listenersMu.Lock()
		fns := append([]func(ConverterConfiguration){}, listeners...)
		listenersMu.Unlock()
		for _, fn := range fns {
			fn(cfg)
		}
	})
	v.WatchConfig()
}
