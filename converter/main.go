package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"convlog/common/config"
	"convlog/common/log"
	"convlog/common/metrics"
	"convlog/converter/app"
	"convlog/core/container"
	"convlog/core/infrastructure/message/node"
	"convlog/core/infrastructure/message/transfer"
	"convlog/runtime/convert"
	"convlog/runtime/mjai"
	"convlog/runtime/tenhou"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// 离线转换：converter convert --input log.json --output log.mjson
// 服务模式：converter serve --configFile resource/application.yml

var (
	logLevel   string
	configFile string
	inputFile  string
	outputFile string
	skipBroken bool
	recordID   string
	persist    bool
)

// show 与 submit 的超时默认值不同，分开绑定
var (
	showTimeout   time.Duration
	submitTimeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "converter",
	Short: "tenhou.net/6 牌谱转换为 mjai 事件流",
	Long:  `tenhou.net/6 牌谱转换为 mjai 事件流，支持离线转换与 nats 服务两种模式`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetLevel(logLevel)
	},
}

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "离线转换单个牌谱文件",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readInput(inputFile)
		if err != nil {
			return err
		}
		tl, err := tenhou.Parse(raw)
		if err != nil {
			return err
		}
		res, err := convert.TenhouToMjaiWithOptions(tl, convert.Options{SkipBrokenKyoku: skipBroken})
		if err != nil {
			return err
		}

		out, closeOut, err := openOutput(outputFile)
		if err != nil {
			return err
		}
		defer closeOut()
		w := mjai.NewWriter(out)
		if err := w.WriteAll(res.Events); err != nil {
			return err
		}
		log.Info("转换完成: kyokus=%d, events=%d, skipped=%d", len(res.Kyokus), w.Count(), len(res.Skipped))
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "以 nats 服务的方式运行转换节点",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(configFile); err != nil {
			return fmt.Errorf("文件配置发生错误：%w", err)
		}
		conf := config.ConverterConfig
		log.InitLog(conf.ID, conf.LogConf.Level)
		log.Info("配置文件: %+v", conf)

		if conf.MetricPort > 0 {
			go func() {
				log.Info("启动监控..., URL: http://localhost:%d/debug/statsviz/", conf.MetricPort)
				if err := metrics.Serve(fmt.Sprintf("0.0.0.0:%d", conf.MetricPort)); err != nil {
					log.Error("监控服务退出: %v", err)
				}
			}()
		}
		return app.Run(context.Background(), conf)
	},
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "输出已保存的转换结果",
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadConfig()
		if err != nil {
			return err
		}
		svc, closeFn, err := container.NewShowService(conf)
		if err != nil {
			return err
		}
		defer closeFn()

		ctx, cancel := context.WithTimeout(context.Background(), showTimeout)
		defer cancel()
		resp, err := svc.Show(ctx, recordID)
		if err != nil {
			return err
		}
		return writeLines(resp)
	},
}

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "通过 nats 把牌谱提交给转换节点",
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadConfig()
		if err != nil {
			return err
		}
		raw, err := readInput(inputFile)
		if err != nil {
			return err
		}

		req := transfer.ConvertReq{Log: raw, Persist: persist}
		if cmd.Flags().Changed("skip-broken") {
			req.SkipBrokenKyoku = &skipBroken
		}
		data, err := json.Marshal(req)
		if err != nil {
			return err
		}
		packet, err := json.Marshal(transfer.ServicePacket{
			RequestID: uuid.NewString(),
			Type:      transfer.Request,
			Source:    "converter-cli",
			Route:     transfer.ConvertTenhou,
			Data:      data,
		})
		if err != nil {
			return err
		}

		cli := node.NewNatsClient(conf.Subject, "cli")
		if err := cli.Dial(conf.NatsConfig.URL); err != nil {
			return err
		}
		defer cli.Close()

		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()
		reply, err := cli.Request(ctx, conf.Subject, packet)
		if err != nil {
			return err
		}

		var respPacket transfer.ServicePacket
		if err := json.Unmarshal(reply, &respPacket); err != nil {
			return fmt.Errorf("%w: %v", transfer.ErrMessageUnmarshal, err)
		}
		if respPacket.Code != transfer.CodeOK {
			return fmt.Errorf("转换节点返回错误 [%s]: %s", respPacket.Code, respPacket.Error)
		}
		var resp transfer.ConvertResp
		if err := json.Unmarshal(respPacket.Data, &resp); err != nil {
			return fmt.Errorf("%w: %v", transfer.ErrMessageUnmarshal, err)
		}
		log.Info("转换完成: recordId=%s, kyokus=%d, events=%d, cached=%v", resp.RecordID, resp.Kyokus, resp.Events, resp.Cached)
		return writeLines(&resp)
	},
}

func loadConfig() (config.ConverterConfiguration, error) {
	if configFile == "" {
		return config.Default(), nil
	}
	if err := config.Load(configFile); err != nil {
		return config.ConverterConfiguration{}, fmt.Errorf("文件配置发生错误：%w", err)
	}
	return config.ConverterConfig, nil
}

// readInput "-" 表示标准输入
func readInput(path string) ([]byte, error) {
	if path == "" {
		return nil, errors.New("--input is required")
	}
	if path == "-" {
		return io.ReadAll(bufio.NewReader(os.Stdin))
	}
	return os.ReadFile(path)
}

// openOutput 为空或 "-" 时写到标准输出
func openOutput(path string) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() {
		if err := f.Close(); err != nil {
			log.Error("关闭输出文件失败: %v", err)
		}
	}, nil
}

func writeLines(resp *transfer.ConvertResp) error {
	out, closeOut, err := openOutput(outputFile)
	if err != nil {
		return err
	}
	defer closeOut()
	_, err = io.WriteString(out, resp.Lines)
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "logLevel", "info", "log level: debug, info, warn, error")

	convertCmd.Flags().StringVar(&inputFile, "input", "", "tenhou.net/6 json file, - for stdin")
	convertCmd.Flags().StringVar(&outputFile, "output", "", "mjai json lines file, stdout by default")
	convertCmd.Flags().BoolVar(&skipBroken, "skip-broken", false, "skip kyokus that cannot be converted")
	convertCmd.MarkFlagRequired("input")

	serveCmd.Flags().StringVar(&configFile, "configFile", "", "resource file")
	serveCmd.MarkFlagRequired("configFile")

	showCmd.Flags().StringVar(&configFile, "configFile", "", "resource file")
	showCmd.Flags().StringVar(&recordID, "id", "", "conversion record id")
	showCmd.Flags().StringVar(&outputFile, "output", "", "mjai json lines file, stdout by default")
	showCmd.Flags().DurationVar(&showTimeout, "timeout", 10*time.Second, "query timeout")
	showCmd.MarkFlagRequired("id")

	submitCmd.Flags().StringVar(&configFile, "configFile", "", "resource file")
	submitCmd.Flags().StringVar(&inputFile, "input", "", "tenhou.net/6 json file, - for stdin")
	submitCmd.Flags().StringVar(&outputFile, "output", "", "mjai json lines file, stdout by default")
	submitCmd.Flags().BoolVar(&skipBroken, "skip-broken", false, "skip kyokus that cannot be converted")
	submitCmd.Flags().BoolVar(&persist, "persist", false, "store the result in mongodb")
	submitCmd.Flags().DurationVar(&submitTimeout, "timeout", 30*time.Second, "request timeout")
	submitCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(convertCmd, serveCmd, showCmd, submitCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error("error happen: %v", err)
		os.Exit(1)
	}
}
