package models

// DashboardHealth 健康检查响应结构
// @Description 仪表盘就绪探针响应数据结构
type DashboardHealth struct {
	Version   string  `json:"version" example:"1.0.0"`
	StartTime string  `json:"startTime" example:"2024-01-01T10:00:00Z"`
	Status    string  `json:"status" example:"UP"`
	Uptime    string  `json:"uptime" example:"1h30m45s"`
	Metrics   Metrics `json:"metrics"`
}

// Metrics 关键指标结构
type Metrics struct {
	TotalRequests  int64  `json:"totalRequests" example:"1000"`
	ErrorRequests  int64  `json:"errorRequests" example:"5"`
	Rows           int    `json:"rows" example:"4"`
	Generation     uint64 `json:"generation" example:"12"`
	LastRefresh    string `json:"lastRefresh" example:"2024-01-01T10:00:00Z"`
	LastProbe      string `json:"lastProbe" example:"2024-01-01T10:00:10Z"`
	RefreshRunning bool   `json:"refreshRunning" example:"false"`
}
