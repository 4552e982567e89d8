/*
 * @module service/anomaly/duplicates
 * @description 重复检测器，检查标识列重复值和整行重复
 * @architecture 分层架构 - 检测引擎层
 * @documentReference ai_docs/anomaly_detection_design.md
 * @stateFlow 标识列分组统计 -> 整行元组比对 -> 汇总行索引集合
 * @rules 标识列重复标记该值的全部出现行；整行重复仅标记后续出现行，首次出现不标记
 * @dependencies sort, strings
 * @refs classifier.go, detector.go
 */

package anomaly

import (
	"sort"
	"strings"

	"dataquality-service/service/models"
)

// DetectDuplicates 检测重复记录
// 标识列缺失时跳过按标识列的检查并记录原因，整行重复检查始终执行
func DetectDuplicates(ds *models.Dataset, profile *models.ColumnProfile) (*models.DuplicateResult, []models.DetectionFinding) {
	result := &models.DuplicateResult{
		DuplicateIDRows:   models.NewIndexSet(),
		DuplicateFullRows: models.NewIndexSet(),
	}
	findings := make([]models.DetectionFinding, 0)

	if profile.IdentifierColumn == "" {
		result.Skipped = true
		result.SkipReason = "未识别出标识列，跳过按标识列的重复检查，仅执行整行重复检查"
	} else {
		result.IdentifierColumn = profile.IdentifierColumn
		valueRows := make(map[string][]int)
		for i, row := range ds.Rows {
			value := row[profile.IdentifierColumn]
			if models.IsNull(value) {
				continue
			}
			key := models.CellString(value)
			valueRows[key] = append(valueRows[key], i)
		}

		repeated := make([]string, 0)
		for value, rows := range valueRows {
			if len(rows) < 2 {
				continue
			}
			repeated = append(repeated, value)
			for _, idx := range rows {
				result.DuplicateIDRows.Add(idx)
			}
		}
		sort.Strings(repeated)
		result.RepeatedValues = repeated
		for _, value := range repeated {
			for _, idx := range valueRows[value] {
				findings = append(findings, models.DetectionFinding{
					RowIndex: idx,
					Category: models.CategoryDuplicate,
					Detail:   "标识值重复: " + value,
				})
			}
		}
	}

	// 整行重复：整行值元组与先前行完全一致时标记，首次出现不标记
	seen := make(map[string]int, ds.RowCount())
	for i, row := range ds.Rows {
		key := rowKey(ds.Columns, row)
		if _, ok := seen[key]; ok {
			result.DuplicateFullRows.Add(i)
			findings = append(findings, models.DetectionFinding{
				RowIndex: i,
				Category: models.CategoryDuplicate,
				Detail:   "整行重复",
			})
		} else {
			seen[key] = i
		}
	}

	result.DuplicateIDCount = result.DuplicateIDRows.Len()
	result.DuplicateRowCount = result.DuplicateFullRows.Len()
	return result, findings
}

// rowKey 按列顺序拼接整行值元组作为去重键
func rowKey(columns []string, row models.Row) string {
	var sb strings.Builder
	for _, col := range columns {
		sb.WriteString(models.CellString(row[col]))
		sb.WriteByte('\x1f')
	}
	return sb.String()
}
