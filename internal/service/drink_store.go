package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/bobalog/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecordStore 是核心统计所依赖的记录存储，单机版与群组版都实现它。
type RecordStore interface {
	List(ctx context.Context) ([]db.DrinkRecord, error)
	Get(ctx context.Context, id string) (*db.DrinkRecord, error)
	Put(ctx context.Context, record db.DrinkRecord) error
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}

// ImportResult 汇总一次导入的结果。
type ImportResult struct {
	Added      int `json:"added"`
	Skipped    int `json:"skipped"`
	Duplicates int `json:"duplicates"`
	Total      int `json:"total"`
}

// DrinkStore 基于 gorm 的记录存储，按群组隔离；单机版群组为空字符串。
// 写入成功后会通知 ChangeNotifier，让订阅方重新加载完整列表。
type DrinkStore struct {
	db       *gorm.DB
	group    string
	notifier ChangeNotifier
}

// ChangeNotifier 接收 “某个群组的数据变了” 的信号。
type ChangeNotifier interface {
	Notify(group string)
}

// NewDrinkStore 构造指定群组的 DrinkStore，notifier 可为 nil。
func NewDrinkStore(gdb *gorm.DB, group string, notifier ChangeNotifier) *DrinkStore {
	return &DrinkStore{db: gdb, group: strings.TrimSpace(group), notifier: notifier}
}

// Group 返回存储所属的群组。
func (s *DrinkStore) Group() string {
	return s.group
}

// List 返回群组内全部记录，按日期、时间戳降序。
func (s *DrinkStore) List(ctx context.Context) ([]db.DrinkRecord, error) {
	var records []db.DrinkRecord
	if err := s.scoped(ctx).
		Order("date DESC").
		Order("timestamp DESC").
		Order("id ASC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list drink records: %w", err)
	}
	return records, nil
}

// Get 根据 ID 获取记录。
func (s *DrinkStore) Get(ctx context.Context, id string) (*db.DrinkRecord, error) {
	var record db.DrinkRecord
	if err := s.scoped(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("get drink record: %w", err)
	}
	return &record, nil
}

// Put 以 (ID, 群组) 幂等写入整条记录（存在则整体覆盖）。
func (s *DrinkStore) Put(ctx context.Context, record db.DrinkRecord) error {
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidRecord)
	}
	record.GroupID = s.group

	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}, {Name: "group_id"}},
		UpdateAll: true,
	}).Create(&record).Error; err != nil {
		return fmt.Errorf("save drink record: %w", err)
	}

	s.notify()
	return nil
}

// Delete 删除指定记录，记录不存在时视为成功。
func (s *DrinkStore) Delete(ctx context.Context, id string) error {
	result := s.scoped(ctx).Where("id = ?", id).Delete(&db.DrinkRecord{})
	if result.Error != nil {
		return fmt.Errorf("delete drink record: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		s.notify()
	}
	return nil
}

// Clear 清空群组内全部记录。
func (s *DrinkStore) Clear(ctx context.Context) error {
	if err := s.scoped(ctx).Delete(&db.DrinkRecord{}).Error; err != nil {
		return fmt.Errorf("clear drink records: %w", err)
	}
	s.notify()
	return nil
}

// ExportJSON 导出群组内全部记录为 JSON 数组。
func (s *DrinkStore) ExportJSON(ctx context.Context) ([]byte, error) {
	records, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return data, nil
}

// Import 合并备份数据：只写入 ID 未出现过的记录，并在同一事务内完成。
// Added 按实际写入的行数统计，Total 在写入后重新读取。
func (s *DrinkStore) Import(ctx context.Context, raw []byte) (ImportResult, error) {
	incoming, malformed, err := ParseImportPayload(raw)
	if err != nil {
		return ImportResult{}, err
	}

	existing, err := s.List(ctx)
	if err != nil {
		return ImportResult{}, err
	}

	merged := MergeRecords(existing, incoming)
	result := ImportResult{
		Skipped:    merged.Skipped + malformed,
		Duplicates: merged.Duplicates,
		Total:      len(existing),
	}
	if len(merged.Added) == 0 {
		return result, nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, record := range merged.Added {
			record.GroupID = s.group
			// 并发写入可能抢先插入同一 ID，冲突时保持原数据并计为重复。
			created := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&record)
			if created.Error != nil {
				return created.Error
			}
			if created.RowsAffected == 0 {
				result.Duplicates++
				continue
			}
			result.Added++
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, fmt.Errorf("import drink records: %w", err)
	}

	var total int64
	if err := s.scoped(ctx).Count(&total).Error; err != nil {
		return ImportResult{}, fmt.Errorf("count drink records: %w", err)
	}
	result.Total = int(total)

	if result.Added > 0 {
		s.notify()
	}
	return result, nil
}

func (s *DrinkStore) scoped(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Model(&db.DrinkRecord{}).Where("group_id = ?", s.group)
}

func (s *DrinkStore) notify() {
	if s.notifier != nil {
		s.notifier.Notify(s.group)
	}
}
