package service

import (
	"errors"
	"time"

	"github.com/linkhub/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ClickService 负责处理链接跳转相关的统计逻辑。
// Counters are stats-only monthly buckets split into human and bot clicks;
// no visitor identity is ever stored.
type ClickService struct {
	db *gorm.DB
}

// NewClickService 创建 ClickService。
func NewClickService(gdb *gorm.DB) *ClickService {
	return &ClickService{db: gdb}
}

// Record increments the click counter for the link's current month bucket,
// creating the bucket on first use.
func (s *ClickService) Record(linkID string, isBot bool, now time.Time) error {
	if linkID == "" {
		return errors.New("invalid link id")
	}

	month := now.UTC().Format("2006-01")
	human, bot := uint64(1), uint64(0)
	if isBot {
		human, bot = 0, 1
	}

	row := db.LinkClickMonthly{
		LinkID:      linkID,
		Month:       month,
		HumanClicks: human,
		BotClicks:   bot,
	}

	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "link_id"}, {Name: "month"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"human_clicks": gorm.Expr("human_clicks + ?", human),
			"bot_clicks":   gorm.Expr("bot_clicks + ?", bot),
			"updated_at":   now.UTC(),
		}),
	}).Create(&row).Error
}

// MonthlyStats returns the monthly buckets of a link, newest first.
func (s *ClickService) MonthlyStats(linkID string) ([]db.LinkClickMonthly, error) {
	var rows []db.LinkClickMonthly
	if err := s.db.
		Where("link_id = ?", linkID).
		Order("month desc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
