/*
 * @module service/etl/transformer
 * @description 数据转换器，清洗并标准化数据集：日期规范化、邮编修正、姓名清洗、数值标准化
 * @architecture 分层架构 - 数据接入层
 * @documentReference ai_docs/anomaly_detection_design.md
 * @stateFlow 复制数据集 -> 按列语义角色应用清洗规则 -> 输出标准化数据集
 * @rules 转换不修改输入数据集；无法标准化的值原样保留，交由检测引擎标记
 * @dependencies regexp, strings, time
 * @refs extractor.go, service/anomaly
 */

package etl

import (
	"regexp"
	"strings"
	"time"

	"dataquality-service/service/anomaly"
	"dataquality-service/service/models"
)

var (
	nonDigitPattern   = regexp.MustCompile(`\D`)
	illegalNameChars  = regexp.MustCompile(`[^A-Za-z \-']`)
	multiSpacePattern = regexp.MustCompile(`\s{2,}`)
)

// looseDateLayouts 转换器可规范化的日期格式
var looseDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"02/01/2006",
	"1/2/2006",
	"2006/01/02",
}

// Transformer 数据转换器
type Transformer struct{}

// NewTransformer 创建数据转换器实例
func NewTransformer() *Transformer {
	return &Transformer{}
}

// Transform 清洗并标准化数据集，返回新数据集，输入保持只读
func (t *Transformer) Transform(ds *models.Dataset) *models.Dataset {
	out := models.NewDataset(ds.Columns)
	roles := make(map[string]models.SemanticRole, ds.ColumnCount())
	for _, col := range ds.Columns {
		roles[col] = anomaly.MatchRole(col)
	}

	for _, row := range ds.Rows {
		newRow := make(models.Row, ds.ColumnCount())
		for _, col := range ds.Columns {
			newRow[col] = t.transformCell(row[col], roles[col])
		}
		out.AppendRow(newRow)
	}
	return out
}

// transformCell 按列语义角色清洗单元格
func (t *Transformer) transformCell(value interface{}, role models.SemanticRole) interface{} {
	if models.IsNull(value) {
		return nil
	}
	s, isString := value.(string)
	if isString {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
	}

	switch role {
	case models.RoleBirthDate, models.RoleEventDate:
		if isString {
			return t.standardizeDate(s)
		}
	case models.RoleZipCode:
		if isString {
			return t.standardizeZip(s)
		}
	case models.RolePersonName:
		if isString {
			return t.standardizeName(s)
		}
	case models.RoleAmount:
		if isString {
			if f, ok := anomaly.ParseNumeric(s); ok {
				return f
			}
		}
	}

	if isString {
		return s
	}
	return value
}

// standardizeDate 将可识别的日期格式规范化为 YYYY-MM-DD，无法识别的原样保留
func (t *Transformer) standardizeDate(s string) string {
	for _, layout := range looseDateLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed.Format("2006-01-02")
		}
	}
	return s
}

// standardizeZip 邮编修正：剥离非数字字符后截断或左侧补零到5位
// 无数字内容的值原样保留，交由不一致检测标记
func (t *Transformer) standardizeZip(s string) string {
	digits := nonDigitPattern.ReplaceAllString(s, "")
	if digits == "" {
		return s
	}
	if len(digits) > 5 {
		return digits[:5]
	}
	return strings.Repeat("0", 5-len(digits)) + digits
}

// standardizeName 姓名清洗：去除非法字符、折叠连续空格、词首大写
func (t *Transformer) standardizeName(s string) string {
	cleaned := illegalNameChars.ReplaceAllString(s, "")
	cleaned = multiSpacePattern.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return s
	}

	words := strings.Fields(strings.ToLower(cleaned))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
