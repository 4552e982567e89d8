/*
 * @module service/anomaly/values
 * @description 单元格取值解析工具，提供数值与日期的宽松解析能力
 * @architecture 分层架构 - 检测引擎层
 * @documentReference ai_docs/anomaly_detection_design.md
 * @stateFlow 无状态解析：单元格值 -> 解析结果
 * @rules 数值解析剥离货币符号与千分位分隔符；日期解析以 YYYY-MM-DD 为规范格式
 * @dependencies strconv, strings, time
 * @refs classifier.go, statistical.go, inconsistency.go
 */

package anomaly

import (
	"strconv"
	"strings"
	"time"

	"dataquality-service/service/models"
)

// CanonicalDateFormat 规范日期格式
const CanonicalDateFormat = "2006-01-02"

// looseDateFormats 可接受但非规范的日期格式，解析成功仍会被不一致检测标记
var looseDateFormats = []string{
	"2006-01-02 15:04:05",
	"01/02/2006",
	"02/01/2006",
	"1/2/2006",
	"2006/01/02",
}

// ParseNumeric 将单元格值解析为数值
// 字符串值先剥离货币符号、千分位分隔符和空白
func ParseNumeric(value interface{}) (float64, bool) {
	if models.IsNull(value) {
		return 0, false
	}
	switch v := value.(type) {
	case float64:
		return v, true
	case string:
		s := strings.TrimSpace(v)
		s = strings.TrimPrefix(s, "$")
		s = strings.TrimPrefix(s, "¥")
		s = strings.ReplaceAll(s, ",", "")
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// ParseCanonicalDate 仅按规范格式解析日期
func ParseCanonicalDate(value interface{}) (time.Time, bool) {
	s := models.CellString(value)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(CanonicalDateFormat, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseDate 按规范格式及宽松格式解析日期
// 第二个返回值表示是否解析成功，第三个返回值表示是否命中规范格式
func ParseDate(value interface{}) (time.Time, bool, bool) {
	s := models.CellString(value)
	if s == "" {
		return time.Time{}, false, false
	}
	if t, err := time.Parse(CanonicalDateFormat, s); err == nil {
		return t, true, true
	}
	for _, layout := range looseDateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true, false
		}
	}
	return time.Time{}, false, false
}
