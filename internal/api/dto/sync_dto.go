package dto

// ==================== 同步结果 ====================

// ImportResult 单租户全量导入结果
type ImportResult struct {
	StoreID int64  `json:"store_id"`
	Domain  string `json:"domain"`

	// 各实体处理计数（新增 + 更新）
	Customers int `json:"customers"`
	Products  int `json:"products"`
	Orders    int `json:"orders"`

	// 因源侧非 2xx 被跳过的阶段
	SkippedPhases []string `json:"skipped_phases,omitempty"`
	// 单条记录级错误（不中断批次）
	Errors []string `json:"errors,omitempty"`
}

// FleetSyncResult 全租户调度结果
type FleetSyncResult struct {
	Total      int `json:"total_stores"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}
