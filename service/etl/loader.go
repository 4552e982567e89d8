/*
 * @module service/etl/loader
 * @description 数据装载器，为检测分析准备数据集并生成数据概要
 * @architecture 分层架构 - 数据接入层
 * @documentReference ai_docs/anomaly_detection_design.md
 * @stateFlow 类型矫正（数值列字符串转数值）-> 概要统计 -> 交付检测引擎
 * @rules 无法矫正的单元格原样保留，由检测引擎按缺失处理；概要仅包含基础类型便于序列化
 * @dependencies github.com/spf13/cast, math
 * @refs extractor.go, service/anomaly
 */

package etl

import (
	"math"
	"strings"

	"github.com/spf13/cast"

	"dataquality-service/service/anomaly"
	"dataquality-service/service/models"
)

// ColumnStats 数值列的描述性统计
type ColumnStats struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// DatasetSummary 数据集概要
type DatasetSummary struct {
	TotalRows         int                    `json:"total_rows"`
	TotalColumns      int                    `json:"total_columns"`
	MissingValues     map[string]int         `json:"missing_values"`
	DuplicateRows     int                    `json:"duplicate_rows"`
	NumericStatistics map[string]ColumnStats `json:"numeric_statistics,omitempty"`
}

// Loader 数据装载器
type Loader struct{}

// NewLoader 创建数据装载器实例
func NewLoader() *Loader {
	return &Loader{}
}

// PrepareForAnalysis 为检测分析准备数据集
// 数值占比达到类型阈值的列中，可解析的字符串单元格统一转换为float64
func (l *Loader) PrepareForAnalysis(ds *models.Dataset) *models.Dataset {
	profile := anomaly.ClassifyColumns(ds, anomaly.DefaultTypeThreshold)

	out := models.NewDataset(ds.Columns)
	for _, row := range ds.Rows {
		newRow := make(models.Row, ds.ColumnCount())
		for _, col := range ds.Columns {
			value := row[col]
			if profile.Types[col] == models.ColumnTypeNumeric && !models.IsNull(value) {
				if s, ok := value.(string); ok {
					cleaned := strings.ReplaceAll(strings.TrimPrefix(strings.TrimSpace(s), "$"), ",", "")
					if f, err := cast.ToFloat64E(cleaned); err == nil {
						newRow[col] = f
						continue
					}
				}
			}
			newRow[col] = value
		}
		out.AppendRow(newRow)
	}
	return out
}

// Summary 生成数据集概要统计
func (l *Loader) Summary(ds *models.Dataset) *DatasetSummary {
	summary := &DatasetSummary{
		TotalRows:     ds.RowCount(),
		TotalColumns:  ds.ColumnCount(),
		MissingValues: make(map[string]int, ds.ColumnCount()),
	}

	for _, col := range ds.Columns {
		count := 0
		for _, row := range ds.Rows {
			if models.IsNull(row[col]) {
				count++
			}
		}
		summary.MissingValues[col] = count
	}

	seen := make(map[string]struct{}, ds.RowCount())
	for _, row := range ds.Rows {
		var sb strings.Builder
		for _, col := range ds.Columns {
			sb.WriteString(models.CellString(row[col]))
			sb.WriteByte('\x1f')
		}
		key := sb.String()
		if _, ok := seen[key]; ok {
			summary.DuplicateRows++
		} else {
			seen[key] = struct{}{}
		}
	}

	profile := anomaly.ClassifyColumns(ds, anomaly.DefaultTypeThreshold)
	if len(profile.NumericColumns) > 0 {
		summary.NumericStatistics = make(map[string]ColumnStats, len(profile.NumericColumns))
		for _, col := range profile.NumericColumns {
			summary.NumericStatistics[col] = describeColumn(ds, col)
		}
	}
	return summary
}

// describeColumn 计算单个数值列的描述性统计
func describeColumn(ds *models.Dataset, col string) ColumnStats {
	values := make([]float64, 0, ds.RowCount())
	for _, row := range ds.Rows {
		if f, ok := anomaly.ParseNumeric(row[col]); ok {
			values = append(values, f)
		}
	}
	stats := ColumnStats{Count: len(values)}
	if len(values) == 0 {
		return stats
	}

	sum := 0.0
	stats.Min = values[0]
	stats.Max = values[0]
	for _, v := range values {
		sum += v
		if v < stats.Min {
			stats.Min = v
		}
		if v > stats.Max {
			stats.Max = v
		}
	}
	stats.Mean = sum / float64(len(values))

	if len(values) > 1 {
		varSum := 0.0
		for _, v := range values {
			d := v - stats.Mean
			varSum += d * d
		}
		stats.Std = math.Sqrt(varSum / float64(len(values)-1))
	}
	return stats
}
