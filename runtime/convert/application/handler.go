package application

import (
	"context"
	"encoding/json"
	"fmt"

	"convlog/core/infrastructure/message/node"
	"convlog/core/infrastructure/message/transfer"
	"convlog/runtime/convert/application/service"
)

// Handlers 转换节点在 nats 上提供的路由
func Handlers(svc service.ConvertService) node.SubscriberHandler {
	return node.SubscriberHandler{
		transfer.ConvertTenhou: func(ctx context.Context, packet *transfer.ServicePacket) (any, error) {
			var req transfer.ConvertReq
			if err := json.Unmarshal(packet.Data, &req); err != nil {
				return nil, fmt.Errorf("%w: %v", transfer.ErrMessageUnmarshal, err)
			}
			req.RequestID = packet.RequestID
			return svc.Convert(ctx, &req)
		},
		transfer.ShowConversion: func(ctx context.Context, packet *transfer.ServicePacket) (any, error) {
			var req transfer.ShowReq
			if err := json.Unmarshal(packet.Data, &req); err != nil {
				return nil, fmt.Errorf("%w: %v", transfer.ErrMessageUnmarshal, err)
			}
			return svc.Show(ctx, req.RecordID)
		},
	}
}
