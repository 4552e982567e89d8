/*
 * @module service/models/dataset
 * @description 数据集核心模型，定义列有序的行式数据快照及单元格取值规则
 * @architecture 分层架构 - 数据模型层
 * @documentReference ai_docs/anomaly_detection_design.md
 * @stateFlow 外部加载器构建数据集 -> 检测引擎只读访问 -> 随检测调用结束释放
 * @rules 单元格仅允许 nil、string、float64 三种取值，检测器不得修改数据集
 * @dependencies math, strings
 * @refs service/etl, service/anomaly
 */

package models

import (
	"math"
	"strconv"
	"strings"
)

// Row 一行数据，列名到单元格值的映射
type Row map[string]interface{}

// Dataset 一次检测调用的数据快照，列顺序在生命周期内固定
type Dataset struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// NewDataset 创建指定列顺序的空数据集
func NewDataset(columns []string) *Dataset {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Dataset{
		Columns: cols,
		Rows:    make([]Row, 0),
	}
}

// RowCount 返回数据行数
func (d *Dataset) RowCount() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// ColumnCount 返回列数
func (d *Dataset) ColumnCount() int {
	if d == nil {
		return 0
	}
	return len(d.Columns)
}

// IsEmpty 判断数据集是否为空（无行或无列）
func (d *Dataset) IsEmpty() bool {
	return d.RowCount() == 0 || d.ColumnCount() == 0
}

// AppendRow 追加一行数据
func (d *Dataset) AppendRow(row Row) {
	d.Rows = append(d.Rows, row)
}

// Cell 返回指定行列的单元格值，越界返回nil
func (d *Dataset) Cell(rowIndex int, column string) interface{} {
	if rowIndex < 0 || rowIndex >= len(d.Rows) {
		return nil
	}
	return d.Rows[rowIndex][column]
}

// IsNull 判断单元格值是否为缺失值
// nil、去除空白后的空字符串和 NaN 均视为缺失
func IsNull(value interface{}) bool {
	if value == nil {
		return true
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v) == ""
	case float64:
		return math.IsNaN(v)
	}
	return false
}

// CellString 将单元格值转换为去除首尾空白的字符串，缺失值返回空串
func CellString(value interface{}) string {
	if IsNull(value) {
		return ""
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return FormatFloat(v)
	}
	return ""
}

// FormatFloat 数值转字符串，整数值不保留小数部分
func FormatFloat(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
