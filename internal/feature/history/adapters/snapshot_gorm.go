package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dividend_backend/internal/feature/history/domain"
	"dividend_backend/internal/feature/history/usecase"
	"dividend_backend/internal/feature/projection/domain/entity"
	"dividend_backend/internal/shared/calendar"
)

type snapshotGorm struct {
	db *gorm.DB
}

var _ usecase.SnapshotRepository = (*snapshotGorm)(nil)

func NewSnapshotGormRepository(db *gorm.DB) *snapshotGorm {
	return &snapshotGorm{db: db}
}

// SnapshotModel は snapshots テーブルの 1 行です。
// 金額は精度を保つため文字列で保存し、ポジション一覧は JSON のまま保持します。
type SnapshotModel struct {
	ID                  uint                `gorm:"primaryKey"`
	Date                string              `gorm:"size:10;not null;uniqueIndex"`
	TotalValue          decimal.Decimal     `gorm:"type:text;not null"`
	TotalCost           decimal.NullDecimal `gorm:"type:text"`
	TotalAnnualDividend decimal.Decimal     `gorm:"type:text;not null"`
	Yield               decimal.NullDecimal `gorm:"type:text"`
	Positions           string              `gorm:"type:text;not null"`
	UpdatedAt           time.Time
}

func (SnapshotModel) TableName() string {
	return "snapshots"
}

func toSnapshotModel(s entity.Snapshot) (SnapshotModel, error) {
	positions := s.Positions
	if positions == nil {
		positions = []entity.PositionMetric{}
	}
	b, err := json.Marshal(positions)
	if err != nil {
		return SnapshotModel{}, err
	}
	return SnapshotModel{
		Date:                s.Date.String(),
		TotalValue:          s.TotalValue,
		TotalCost:           s.TotalCost,
		TotalAnnualDividend: s.TotalAnnualDividend,
		Yield:               s.Yield,
		Positions:           string(b),
	}, nil
}

func toSnapshotEntity(m SnapshotModel) (entity.Snapshot, error) {
	d, err := calendar.Parse(m.Date)
	if err != nil {
		return entity.Snapshot{}, err
	}
	var positions []entity.PositionMetric
	if err := json.Unmarshal([]byte(m.Positions), &positions); err != nil {
		return entity.Snapshot{}, fmt.Errorf("positions: %w", err)
	}
	return entity.Snapshot{
		Date:                d,
		TotalValue:          m.TotalValue,
		TotalCost:           m.TotalCost,
		TotalAnnualDividend: m.TotalAnnualDividend,
		Yield:               m.Yield,
		Positions:           positions,
	}, nil
}

// Save は date の一意制約で upsert します。
func (r *snapshotGorm) Save(ctx context.Context, s entity.Snapshot) error {
	if s.Date.IsZero() {
		return fmt.Errorf("%w: snapshot has no date", domain.ErrPersistence)
	}
	m, err := toSnapshotModel(s)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", domain.ErrPersistence, s.Date, err)
	}

	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_value", "total_cost", "total_annual_dividend", "yield", "positions", "updated_at",
		}),
	}).Create(&m).Error
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	return nil
}

func (r *snapshotGorm) Load(ctx context.Context, date calendar.Date) (entity.Snapshot, error) {
	var m SnapshotModel
	err := r.db.WithContext(ctx).Where("date = ?", date.String()).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entity.Snapshot{}, domain.ErrSnapshotNotFound
	}
	if err != nil {
		// decimal 列の Scan 失敗もここに来るが、接続エラーと区別できないためそのまま返す
		return entity.Snapshot{}, fmt.Errorf("load snapshot %s: %w", date, err)
	}

	s, err := toSnapshotEntity(m)
	if err != nil {
		return entity.Snapshot{}, fmt.Errorf("%w: %s: %v", domain.ErrMalformedRecord, date, err)
	}
	return s, nil
}

// Dates は保存済みの日付を昇順で返します。解釈できない日付の行は無視します。
func (r *snapshotGorm) Dates(ctx context.Context) ([]calendar.Date, error) {
	var raw []string
	if err := r.db.WithContext(ctx).
		Model(&SnapshotModel{}).
		Order("date ASC").
		Pluck("date", &raw).Error; err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	dates := make([]calendar.Date, 0, len(raw))
	for _, s := range raw {
		d, err := calendar.Parse(s)
		if err != nil {
			continue
		}
		dates = append(dates, d)
	}
	return dates, nil
}
