/*
 * @module service/anomaly/missing
 * @description 缺失值检测器，按列统计缺失值并标记含缺失值的行
 * @architecture 分层架构 - 检测引擎层
 * @documentReference ai_docs/anomaly_detection_design.md
 * @stateFlow 逐行逐列判空 -> 按列累加计数 -> 汇总缺失行集合
 * @rules 零缺失的列也必须出现在按列计数中，保证报告完整性
 * @dependencies service/models
 * @refs detector.go
 */

package anomaly

import (
	"dataquality-service/service/models"
)

// DetectMissingValues 检测缺失值
// nil、空字符串和NaN均视为缺失；任一列缺失即标记该行
func DetectMissingValues(ds *models.Dataset) (*models.MissingValueResult, []models.DetectionFinding) {
	result := &models.MissingValueResult{
		PerColumn:   make(map[string]int, ds.ColumnCount()),
		MissingRows: models.NewIndexSet(),
	}
	findings := make([]models.DetectionFinding, 0)

	for _, col := range ds.Columns {
		result.PerColumn[col] = 0
	}

	for i, row := range ds.Rows {
		missing := false
		for _, col := range ds.Columns {
			if models.IsNull(row[col]) {
				result.PerColumn[col]++
				if !missing {
					missing = true
					findings = append(findings, models.DetectionFinding{
						RowIndex: i,
						Category: models.CategoryMissingValue,
						Detail:   "列 " + col + " 缺失",
					})
				}
			}
		}
		if missing {
			result.MissingRows.Add(i)
		}
	}

	result.RowCount = result.MissingRows.Len()
	return result, findings
}
