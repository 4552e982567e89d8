/*
 * @module service/etl/extractor
 * @description 数据抽取器，解析CSV文件为数据集并执行柔性格式校验
 * @architecture 分层架构 - 数据接入层
 * @documentReference ai_docs/anomaly_detection_design.md
 * @stateFlow 读取字节流 -> 字符集探测与转码 -> CSV解析 -> 柔性校验（警告而非报错）
 * @rules 仅空文件或不可解析的输入产生错误；列数异常、缺少数值列等情况以警告形式返回
 * @dependencies encoding/csv, golang.org/x/text
 * @refs transformer.go, loader.go, service/anomaly
 */

package etl

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"dataquality-service/service/anomaly"
	"dataquality-service/service/models"
)

// ValidationResult 柔性校验结果：致命问题进issues，可恢复问题进warnings
type ValidationResult struct {
	Valid             bool                         `json:"valid"`
	Issues            []string                     `json:"issues"`
	Warnings          []string                     `json:"warnings"`
	RowCount          int                          `json:"row_count"`
	ColumnCount       int                          `json:"column_count"`
	ColumnTypes       map[string]models.ColumnType `json:"column_types"`
	NumericColumns    []string                     `json:"numeric_columns"`
	IdentifierColumn  string                       `json:"identifier_column,omitempty"`
}

// Extractor 数据抽取器
type Extractor struct{}

// NewExtractor 创建数据抽取器实例
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractFromFile 从CSV文件抽取数据集
func (e *Extractor) ExtractFromFile(path string) (*models.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取CSV文件失败: %w", err)
	}
	return e.ExtractFromBytes(data, path)
}

// ExtractFromBytes 从上传的字节流抽取数据集
// 非UTF-8内容按GBK转码后解析
func (e *Extractor) ExtractFromBytes(data []byte, filename string) (*models.Dataset, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("CSV文件为空: %s", filename)
	}

	if !utf8.Valid(data) {
		decoded, _, err := transform.Bytes(simplifiedchinese.GBK.NewDecoder(), data)
		if err != nil {
			return nil, fmt.Errorf("文件编码无法识别: %s: %w", filename, err)
		}
		data = decoded
	}
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("解析CSV表头失败: %s: %w", filename, err)
	}
	ds := models.NewDataset(header)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("解析CSV数据行失败: %s: %w", filename, err)
		}
		row := make(models.Row, len(header))
		for i, col := range header {
			if i < len(record) && record[i] != "" {
				row[col] = record[i]
			} else {
				row[col] = nil
			}
		}
		ds.AppendRow(row)
	}

	if ds.RowCount() == 0 {
		return nil, fmt.Errorf("CSV文件没有数据行: %s", filename)
	}
	return ds, nil
}

// ValidateFormat 柔性格式校验
// 不强制要求特定列，通过警告提示可能影响检测效果的问题
func (e *Extractor) ValidateFormat(ds *models.Dataset) *ValidationResult {
	result := &ValidationResult{
		Issues:   make([]string, 0),
		Warnings: make([]string, 0),
	}
	if ds == nil || ds.IsEmpty() {
		result.Issues = append(result.Issues, "数据集为空")
		return result
	}

	result.Valid = true
	result.RowCount = ds.RowCount()
	result.ColumnCount = ds.ColumnCount()

	if ds.RowCount() < 10 {
		result.Warnings = append(result.Warnings, "数据行数过少（<10），检测结果可能不可靠")
	}

	profile := anomaly.ClassifyColumns(ds, anomaly.DefaultTypeThreshold)
	result.ColumnTypes = profile.Types
	result.NumericColumns = profile.NumericColumns
	result.IdentifierColumn = profile.IdentifierColumn

	if len(profile.NumericColumns) == 0 {
		result.Warnings = append(result.Warnings, "未检测到数值列，统计与机器学习检测将受限")
	}
	if profile.IdentifierColumn == "" {
		result.Warnings = append(result.Warnings, "未检测到标识列，重复检测将仅比对整行")
	}
	return result
}
