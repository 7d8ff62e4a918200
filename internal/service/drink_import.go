package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/bobalog/internal/db"
)

// ErrInvalidImportPayload 表示导入内容不是记录数组。
var ErrInvalidImportPayload = errors.New("import payload must be a json array of records")

// MergeResult 是合并导入数据后的结果。
// Skipped 是缺少 ID 的元素数，Duplicates 是因 ID 已存在而忽略的元素数。
type MergeResult struct {
	Records    []db.DrinkRecord
	Added      []db.DrinkRecord
	Skipped    int
	Duplicates int
}

// ParseImportPayload 解析备份文件内容；单个元素格式错误时跳过并计数，整体不是数组时返回 ErrInvalidImportPayload。
func ParseImportPayload(raw []byte) ([]db.DrinkRecord, int, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, 0, ErrInvalidImportPayload
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(trimmed, &elements); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrInvalidImportPayload, err)
	}

	records := make([]db.DrinkRecord, 0, len(elements))
	malformed := 0
	for _, element := range elements {
		var record db.DrinkRecord
		if err := json.Unmarshal(element, &record); err != nil {
			malformed++
			continue
		}
		records = append(records, record)
	}
	return records, malformed, nil
}

// MergeRecords 以 ID 合并导入记录：缺少 ID 的元素跳过，已存在（或同一批次中重复）的 ID 跳过，
// 不做字段级合并；结果按日期降序稳定排序。
func MergeRecords(existing, incoming []db.DrinkRecord) MergeResult {
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	merged := make([]db.DrinkRecord, 0, len(existing)+len(incoming))
	for _, record := range existing {
		seen[record.ID] = struct{}{}
		merged = append(merged, record)
	}

	result := MergeResult{Added: make([]db.DrinkRecord, 0)}
	for _, record := range incoming {
		id := strings.TrimSpace(record.ID)
		if id == "" {
			result.Skipped++
			continue
		}
		if _, dup := seen[id]; dup {
			result.Duplicates++
			continue
		}
		seen[id] = struct{}{}
		record.ID = id
		merged = append(merged, record)
		result.Added = append(result.Added, record)
	}

	SortRecords(merged)
	result.Records = merged
	return result
}

// SortRecords 按日期降序、时间戳降序稳定排序。
func SortRecords(records []db.DrinkRecord) {
	slices.SortStableFunc(records, func(a, b db.DrinkRecord) int {
		if c := strings.Compare(b.Date, a.Date); c != 0 {
			return c
		}
		switch {
		case a.Timestamp > b.Timestamp:
			return -1
		case a.Timestamp < b.Timestamp:
			return 1
		}
		return 0
	})
}
