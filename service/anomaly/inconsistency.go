/*
 * @module service/anomaly/inconsistency
 * @description 不一致检测器，应用类型相关规则和跨列规则识别格式与逻辑错误
 * @architecture 分层架构 - 检测引擎层
 * @documentReference ai_docs/anomaly_detection_design.md
 * @stateFlow 按列顺序应用单列规则 -> 应用跨列日期规则 -> 汇总规则记录与行索引并集
 * @rules 规则仅作用于类型匹配的列，类型不符的列静默跳过；一行可同时命中多条规则，
 *        并集中计数一次，各规则自身计数相互独立
 * @dependencies regexp, time
 * @refs classifier.go, values.go, detector.go
 */

package anomaly

import (
	"fmt"
	"regexp"
	"time"

	"dataquality-service/service/models"
)

// 不一致规则名称
const (
	RuleInvalidDateFormat = "invalid_date_format"
	RuleFutureDateOfBirth = "future_date_of_birth"
	RuleEventBeforeBirth  = "event_before_birth"
	RuleInvalidZipFormat  = "invalid_zip_format"
	RuleMalformedName     = "malformed_name"
	RuleNegativeAmount    = "negative_amount"
)

var (
	zipPattern  = regexp.MustCompile(`^\d{5}$`)
	namePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z '\-]+$`)
)

// DetectInconsistencies 检测数据不一致
// now 为处理时刻，未来出生日期等规则以其为基准
func DetectInconsistencies(ds *models.Dataset, profile *models.ColumnProfile, now time.Time) (*models.InconsistencyResult, []models.DetectionFinding) {
	result := &models.InconsistencyResult{
		Records: make([]models.InconsistencyRecord, 0),
		Rows:    models.NewIndexSet(),
	}
	findings := make([]models.DetectionFinding, 0)

	addRecord := func(column, ruleType string, indices []int) {
		if len(indices) == 0 {
			return
		}
		result.Records = append(result.Records, models.InconsistencyRecord{
			Column:  column,
			Type:    ruleType,
			Count:   len(indices),
			Indices: indices,
		})
		for _, idx := range indices {
			result.Rows.Add(idx)
			findings = append(findings, models.DetectionFinding{
				RowIndex: idx,
				Category: models.CategoryInconsistency,
				Detail:   fmt.Sprintf("%s: %s", column, ruleType),
			})
		}
	}

	birthColumn := ""
	eventColumn := ""
	for _, col := range ds.Columns {
		if profile.Types[col] != models.ColumnTypeDate {
			continue
		}
		switch profile.Roles[col] {
		case models.RoleBirthDate:
			if birthColumn == "" {
				birthColumn = col
			}
		case models.RoleEventDate:
			if eventColumn == "" {
				eventColumn = col
			}
		}
	}

	for _, col := range ds.Columns {
		colType := profile.Types[col]
		role := profile.Roles[col]

		switch colType {
		case models.ColumnTypeDate:
			invalid := make([]int, 0)
			future := make([]int, 0)
			for i, row := range ds.Rows {
				value := row[col]
				if models.IsNull(value) {
					continue
				}
				if _, ok := ParseCanonicalDate(value); !ok {
					invalid = append(invalid, i)
				}
				if role == models.RoleBirthDate {
					if t, ok, _ := ParseDate(value); ok && t.After(now) {
						future = append(future, i)
					}
				}
			}
			addRecord(col, RuleInvalidDateFormat, invalid)
			if role == models.RoleBirthDate {
				addRecord(col, RuleFutureDateOfBirth, future)
			}

		case models.ColumnTypeText:
			switch role {
			case models.RoleZipCode:
				invalid := make([]int, 0)
				for i, row := range ds.Rows {
					value := row[col]
					if models.IsNull(value) {
						continue
					}
					if !zipPattern.MatchString(models.CellString(value)) {
						invalid = append(invalid, i)
					}
				}
				addRecord(col, RuleInvalidZipFormat, invalid)
			case models.RolePersonName:
				invalid := make([]int, 0)
				for i, row := range ds.Rows {
					value := row[col]
					if models.IsNull(value) {
						continue
					}
					if !namePattern.MatchString(models.CellString(value)) {
						invalid = append(invalid, i)
					}
				}
				addRecord(col, RuleMalformedName, invalid)
			}

		case models.ColumnTypeNumeric:
			if role == models.RoleAmount {
				negative := make([]int, 0)
				for i, row := range ds.Rows {
					if f, ok := ParseNumeric(row[col]); ok && f < 0 {
						negative = append(negative, i)
					}
				}
				addRecord(col, RuleNegativeAmount, negative)
			}
		}
	}

	// 跨列规则：事件日期早于出生日期
	if birthColumn != "" && eventColumn != "" {
		invalid := make([]int, 0)
		for i, row := range ds.Rows {
			birth, okBirth, _ := ParseDate(row[birthColumn])
			event, okEvent, _ := ParseDate(row[eventColumn])
			if okBirth && okEvent && event.Before(birth) {
				invalid = append(invalid, i)
			}
		}
		addRecord(eventColumn, RuleEventBeforeBirth, invalid)
	}

	return result, findings
}
