package transfer

// 转换节点的路由
const (
	ConvertTenhou  = "convert.tenhou" // 提交 tenhou.net/6 牌谱，返回 mjai json lines
	ShowConversion = "convert.show"   // 按记录ID读取已保存的转换结果
)
