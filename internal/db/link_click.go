package db

import "time"

// LinkClickMonthly 汇总链接维度的跳转数据，按月分桶。
// Stats only: no visitor identity and no per-event log is retained.
type LinkClickMonthly struct {
	ID          uint   `gorm:"primaryKey"`
	LinkID      string `gorm:"size:36;uniqueIndex:idx_link_month"`
	Month       string `gorm:"size:7;uniqueIndex:idx_link_month"`
	HumanClicks uint64 `gorm:"default:0"`
	BotClicks   uint64 `gorm:"default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName 指定自定义表名，避免自动复数化导致的歧义。
func (LinkClickMonthly) TableName() string {
	return "link_clicks_monthly"
}
