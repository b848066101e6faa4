package node

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"convlog/common/utils"
	"convlog/core/infrastructure/message/transfer"
)

type sent struct {
	subject string
	packet  transfer.ServicePacket
}

type fakeClient struct {
	readChan     chan<- *Inbound
	out          chan sent
	unsubscribed atomic.Bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{out: make(chan sent, 16)}
}

func (f *fakeClient) Run(_ string, readChan chan<- *Inbound) error {
	f.readChan = readChan
	return nil
}

func (f *fakeClient) SendMessage(subject string, data []byte) error {
	var packet transfer.ServicePacket
	if err := json.Unmarshal(data, &packet); err != nil {
		return err
	}
	f.out <- sent{subject: subject, packet: packet}
	return nil
}

func (f *fakeClient) Unsubscribe() error {
	f.unsubscribed.Store(true)
	return nil
}

func (f *fakeClient) Close() error { return nil }

func (f *fakeClient) push(t *testing.T, reply string, packet transfer.ServicePacket) {
	t.Helper()
	data, err := json.Marshal(packet)
	if err != nil {
		t.Fatalf("序列化失败: %v", err)
	}
	f.readChan <- &Inbound{Data: data, Reply: reply}
}

func (f *fakeClient) wait(t *testing.T) sent {
	t.Helper()
	select {
	case s := <-f.out:
		return s
	case <-time.After(2 * time.Second):
		t.Fatalf("等待响应超时")
	}
	return sent{}
}

func startWorker(t *testing.T, limiter *utils.RateLimiter) (*NatsWorker, *fakeClient) {
	t.Helper()
	cli := newFakeClient()
	worker := NewNatsWorker(cli, "converter-1", 2, limiter)
	worker.RegisterHandlers(SubscriberHandler{
		"echo": func(_ context.Context, packet *transfer.ServicePacket) (any, error) {
			return map[string]string{"requestId": packet.RequestID}, nil
		},
		"fail": func(_ context.Context, _ *transfer.ServicePacket) (any, error) {
			return nil, transfer.ErrArgument
		},
	})
	if err := worker.Run(context.Background(), "nats://fake"); err != nil {
		t.Fatalf("启动失败: %v", err)
	}
	t.Cleanup(func() { _ = worker.Close() })
	return worker, cli
}

func TestNatsWorker_Reply(t *testing.T) {
	worker, cli := startWorker(t, nil)

	cli.push(t, "_INBOX.1", transfer.ServicePacket{RequestID: "r1", Type: transfer.Request, Source: "cli", Route: "echo"})
	got := cli.wait(t)
	if got.subject != "_INBOX.1" {
		t.Fatalf("应回复到 reply 主题: %s", got.subject)
	}
	if got.packet.Type != transfer.Response || got.packet.Code != transfer.CodeOK || got.packet.Source != "converter-1" {
		t.Fatalf("响应错误: %+v", got.packet)
	}
	var body map[string]string
	if err := json.Unmarshal(got.packet.Data, &body); err != nil || body["requestId"] != "r1" {
		t.Fatalf("响应内容错误: %s", got.packet.Data)
	}

	// 没有 reply 主题时回到 Source，并自动生成 RequestID
	cli.push(t, "", transfer.ServicePacket{Type: transfer.Request, Source: "cli.topic", Route: "fail"})
	got = cli.wait(t)
	if got.subject != "cli.topic" || got.packet.Code != transfer.CodeInvalidArgument || got.packet.RequestID == "" {
		t.Fatalf("错误响应不正确: %s %+v", got.subject, got.packet)
	}

	if handled, _ := worker.Stats(); handled != 2 {
		t.Fatalf("处理计数错误: %d", handled)
	}
}

func TestNatsWorker_UnknownRoute(t *testing.T) {
	_, cli := startWorker(t, nil)

	cli.push(t, "_INBOX.2", transfer.ServicePacket{Type: transfer.Request, Route: "nope"})
	got := cli.wait(t)
	if got.packet.Code != transfer.CodeNotFound {
		t.Fatalf("未知路由应返回 not_found: %+v", got.packet)
	}
}

func TestNatsWorker_RateLimited(t *testing.T) {
	worker, cli := startWorker(t, utils.NewRateLimiter(1, 1))

	cli.push(t, "_INBOX.3", transfer.ServicePacket{Type: transfer.Request, Route: "echo"})
	if got := cli.wait(t); got.packet.Code != transfer.CodeOK {
		t.Fatalf("第一个请求应通过: %+v", got.packet)
	}
	cli.push(t, "_INBOX.3", transfer.ServicePacket{Type: transfer.Request, Route: "echo"})
	if got := cli.wait(t); got.packet.Code != transfer.CodeUnavailable {
		t.Fatalf("第二个请求应被限流: %+v", got.packet)
	}
	if _, rejected := worker.Stats(); rejected != 1 {
		t.Fatalf("限流计数错误: %d", rejected)
	}
}

func TestNatsWorker_CloseAnswersAccepted(t *testing.T) {
	cli := newFakeClient()
	worker := NewNatsWorker(cli, "converter-1", 1, nil)
	worker.RegisterHandlers(SubscriberHandler{
		"slow": func(ctx context.Context, packet *transfer.ServicePacket) (any, error) {
			time.Sleep(100 * time.Millisecond)
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return map[string]string{"requestId": packet.RequestID}, nil
		},
	})
	if err := worker.Run(context.Background(), "nats://fake"); err != nil {
		t.Fatalf("启动失败: %v", err)
	}

	// 只有一个处理槽，b 在 a 处理期间等待
	cli.push(t, "_INBOX.a", transfer.ServicePacket{RequestID: "a", Type: transfer.Request, Route: "slow"})
	cli.push(t, "_INBOX.b", transfer.ServicePacket{RequestID: "b", Type: transfer.Request, Route: "slow"})
	time.Sleep(20 * time.Millisecond)

	if err := worker.Close(); err != nil {
		t.Fatalf("关闭失败: %v", err)
	}
	if !cli.unsubscribed.Load() {
		t.Fatalf("关闭时应先取消订阅")
	}

	codes := make(map[string]transfer.Code)
	for len(codes) < 2 {
		select {
		case s := <-cli.out:
			codes[s.packet.RequestID] = s.packet.Code
		default:
			t.Fatalf("Close 返回后仍有请求没有回复: %v", codes)
		}
	}
	if codes["a"] != transfer.CodeOK {
		t.Fatalf("处理中的请求应正常完成: %v", codes)
	}
	if codes["b"] != transfer.CodeUnavailable {
		t.Fatalf("未开始处理的请求应回复 unavailable: %v", codes)
	}
	if err := worker.Close(); err != nil {
		t.Fatalf("重复关闭不应报错: %v", err)
	}
}
