package node

import (
	"context"
	"errors"
	"time"

	"convlog/common/log"
	"convlog/core/infrastructure/message/transfer"

	"github.com/nats-io/nats.go"
)

// Inbound 收到的原始消息，Reply 为 nats request 自带的回复主题
type Inbound struct {
	Data  []byte
	Reply string
}

type Client interface {
	Run(url string, readChan chan<- *Inbound) error
	SendMessage(subject string, data []byte) error
	// Unsubscribe 停止接收新消息，连接仍可用于发送
	Unsubscribe() error
	Close() error
}

// NatsClient 以队列组订阅 subject，同组的多个节点分摊请求
type NatsClient struct {
	subject string
	queue   string
	conn    *nats.Conn
	sub     *nats.Subscription
}

func NewNatsClient(subject, queue string) *NatsClient {
	return &NatsClient{
		subject: subject,
		queue:   queue,
	}
}

func (nc *NatsClient) IsConnected() bool {
	return nc.conn != nil && nc.conn.IsConnected()
}

func (nc *NatsClient) connect(url string) error {
	var err error
	nc.conn, err = nats.Connect(url,
		nats.Name("convlog-"+nc.queue),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("nats 连接断开: %v", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("nats 已重连: %s", c.ConnectedUrl())
		}),
	)
	if err != nil {
		log.Error("nats 连接错误,err:%v", err)
	}
	return err
}

func (nc *NatsClient) Run(url string, readChan chan<- *Inbound) error {
	log.Info("nats 服务正在启动, url:%s", url)
	if err := nc.connect(url); err != nil {
		return err
	}

	var err error
	nc.sub, err = nc.conn.QueueSubscribe(nc.subject, nc.queue, func(message *nats.Msg) {
		readChan <- &Inbound{Data: message.Data, Reply: message.Reply}
	})
	if err != nil {
		log.Error("nats sub err:%v", err)
		return err
	}

	log.Info("nats 服务启动成功, subject:%s queue:%s", nc.subject, nc.queue)
	return nil
}

// Dial 只连接不订阅，命令行提交任务时使用
func (nc *NatsClient) Dial(url string) error {
	return nc.connect(url)
}

// Request 发送请求并等待回复
func (nc *NatsClient) Request(ctx context.Context, subject string, data []byte) ([]byte, error) {
	if !nc.IsConnected() {
		return nil, transfer.ErrNotConnected
	}
	msg, err := nc.conn.RequestWithContext(ctx, subject, data)
	if err != nil {
		if ctx.Err() != nil {
			return nil, transfer.ErrRemoteTimeout
		}
		return nil, err
	}
	return msg.Data, nil
}

func (nc *NatsClient) SendMessage(subject string, data []byte) error {
	if !nc.IsConnected() {
		return transfer.ErrNotConnected
	}
	return nc.conn.Publish(subject, data)
}

func (nc *NatsClient) Unsubscribe() error {
	if nc.sub == nil {
		return nil
	}
	sub := nc.sub
	nc.sub = nil
	if err := sub.Unsubscribe(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
		return err
	}
	return nil
}

func (nc *NatsClient) Close() error {
	if nc.conn == nil {
		return nil
	}
	_ = nc.Unsubscribe()
	if err := nc.conn.Drain(); err != nil {
		nc.conn.Close()
	}
	log.Info("NATS 连接已关闭")
	return nil
}
