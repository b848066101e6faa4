package node

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"convlog/common/log"
	"convlog/common/utils"
	"convlog/core/infrastructure/message/transfer"

	"github.com/google/uuid"
)

// LogicFunc 处理一条请求，返回值会被序列化到响应的 Data 中
type LogicFunc func(ctx context.Context, packet *transfer.ServicePacket) (any, error)
type SubscriberHandler map[string]LogicFunc

type NatsWorker struct {
	NatsCli           Client
	nodeID            string
	readChan          chan *Inbound
	writeChan         chan *outbound
	subscriberHandler SubscriberHandler
	limiter           *utils.RateLimiter
	sem               chan struct{}
	wg                sync.WaitGroup
	cancel            context.CancelFunc
	stopReading       context.CancelFunc
	readDone          chan struct{}
	writeDone         chan struct{}
	closeOnce         sync.Once
	handled           atomic.Int64
	rejected          atomic.Int64
}

type outbound struct {
	subject string
	packet  *transfer.ServicePacket
}

// NewNatsWorker workers 为同时处理的请求上限，limiter 为空时不限流
func NewNatsWorker(cli Client, nodeID string, workers int, limiter *utils.RateLimiter) *NatsWorker {
	if workers < 1 {
		workers = 1
	}
	return &NatsWorker{
		NatsCli:           cli,
		nodeID:            nodeID,
		readChan:          make(chan *Inbound, 1024),
		writeChan:         make(chan *outbound, 1024),
		subscriberHandler: make(SubscriberHandler),
		limiter:           limiter,
		sem:               make(chan struct{}, workers),
	}
}

// Run
// url nats 服务的地址
func (worker *NatsWorker) Run(ctx context.Context, url string) error {
	if err := worker.NatsCli.Run(url, worker.readChan); err != nil {
		return err
	}
	ctx, worker.cancel = context.WithCancel(ctx)
	readCtx, stopReading := context.WithCancel(ctx)
	worker.stopReading = stopReading
	worker.readDone = make(chan struct{})
	worker.writeDone = make(chan struct{})

	go worker.readChanMessage(readCtx, ctx)
	go worker.writeChanMessage(ctx)
	return nil
}

// readChanMessage readCtx 控制读取，handlerCtx 传给处理器，关闭时读取先停
func (worker *NatsWorker) readChanMessage(readCtx, handlerCtx context.Context) {
	defer close(worker.readDone)
	for {
		select {
		case <-readCtx.Done():
			return
		case inbound := <-worker.readChan:
			packet, replyTo, ok := worker.decode(inbound)
			if !ok {
				continue
			}

			handler := worker.subscriberHandler[packet.Route]
			if handler == nil {
				log.Warn("NatsWorker-不支持的路由类型: %s", packet.Route)
				worker.reply(replyTo, packet, nil, fmt.Errorf("%w: %s", transfer.ErrHandlerNotFound, packet.Route))
				continue
			}
			if !worker.limiter.Allow() {
				worker.rejected.Add(1)
				log.Warn("NatsWorker-请求被限流, requestId=%s", packet.RequestID)
				worker.reply(replyTo, packet, nil, transfer.ErrRateLimited)
				continue
			}

			// 处理器可能涉及 IO 操作，新开一个协程去处理，并发数由 sem 控制
			select {
			case worker.sem <- struct{}{}:
			case <-readCtx.Done():
				worker.reply(replyTo, packet, nil, transfer.ErrNodeClosing)
				return
			}
			worker.wg.Add(1)
			go func(packet *transfer.ServicePacket) {
				defer func() {
					<-worker.sem
					worker.wg.Done()
				}()
				result, err := handler(handlerCtx, packet)
				worker.handled.Add(1)
				worker.reply(replyTo, packet, result, err)
			}(packet)
		}
	}
}

func (worker *NatsWorker) decode(inbound *Inbound) (*transfer.ServicePacket, string, bool) {
	var packet transfer.ServicePacket
	if err := json.Unmarshal(inbound.Data, &packet); err != nil {
		log.Warn("NatsWorker-节点通信 packet 解析错误: %v", err)
		return nil, "", false
	}
	if packet.RequestID == "" {
		packet.RequestID = uuid.NewString()
	}
	replyTo := inbound.Reply
	if replyTo == "" {
		replyTo = packet.Source
	}
	return &packet, replyTo, true
}

func (worker *NatsWorker) reply(subject string, req *transfer.ServicePacket, result any, err error) {
	if subject == "" || req.Type != transfer.Request {
		return
	}
	resp := &transfer.ServicePacket{
		RequestID:   req.RequestID,
		Type:        transfer.Response,
		Source:      worker.nodeID,
		Destination: req.Source,
		Route:       req.Route,
		Code:        transfer.MapError(err),
	}
	if err != nil {
		resp.Error = err.Error()
	} else if result != nil {
		data, marshalErr := json.Marshal(result)
		if marshalErr != nil {
			resp.Code = transfer.CodeInternal
			resp.Error = fmt.Errorf("%w: %v", transfer.ErrMessageMarshal, marshalErr).Error()
		} else {
			resp.Data = data
		}
	}

	select {
	case worker.writeChan <- &outbound{subject: subject, packet: resp}:
	default:
		log.Error("NatsWorker-writeChan 已满, requestId=%s", req.RequestID)
	}
}

func (worker *NatsWorker) writeChanMessage(ctx context.Context) {
	defer close(worker.writeDone)
	for {
		select {
		case <-ctx.Done():
			return
		case message := <-worker.writeChan:
			worker.send(message)
		}
	}
}

func (worker *NatsWorker) send(message *outbound) {
	marshal, _ := json.Marshal(message.packet)
	if err := worker.NatsCli.SendMessage(message.subject, marshal); err != nil {
		log.Error("nats 发送错误, requestId=%s, err=%v", message.packet.RequestID, err)
	}
}

func (worker *NatsWorker) RegisterHandlers(handlers SubscriberHandler) {
	worker.subscriberHandler = handlers
}

// Stats 已处理与被限流的请求数
func (worker *NatsWorker) Stats() (handled, rejected int64) {
	return worker.handled.Load(), worker.rejected.Load()
}

// Close 先停止订阅和读取，再等待处理中的请求结束，最后发完剩余响应并关闭连接
// 已收到但还未开始处理的请求回复 ErrNodeClosing，可以多次调用
func (worker *NatsWorker) Close() error {
	var err error
	worker.closeOnce.Do(func() {
		err = worker.close()
	})
	return err
}

func (worker *NatsWorker) close() error {
	if worker.NatsCli != nil {
		if err := worker.NatsCli.Unsubscribe(); err != nil {
			log.Warn("NatsWorker-取消订阅失败: %v", err)
		}
	}
	if worker.stopReading != nil {
		worker.stopReading()
		<-worker.readDone
	}
	worker.rejectPending()

	// 读协程已退出，之后不会再有 wg.Add
	worker.wg.Wait()
	if worker.cancel != nil {
		worker.cancel()
		<-worker.writeDone
	}
	for {
		select {
		case message := <-worker.writeChan:
			worker.send(message)
			continue
		default:
		}
		break
	}

	if worker.NatsCli == nil {
		return nil
	}
	if err := worker.NatsCli.Close(); err != nil && !errors.Is(err, transfer.ErrNotConnected) {
		return err
	}
	return nil
}

func (worker *NatsWorker) rejectPending() {
	for {
		select {
		case inbound := <-worker.readChan:
			if packet, replyTo, ok := worker.decode(inbound); ok {
				worker.reply(replyTo, packet, nil, transfer.ErrNodeClosing)
			}
		default:
			return
		}
	}
}
