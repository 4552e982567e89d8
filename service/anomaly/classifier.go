/*
 * @module service/anomaly/classifier
 * @description 列类型分类器，从原始值推断每列的语义类型，并按列名模式规则表判定业务语义角色
 * @architecture 分层架构 - 检测引擎层
 * @documentReference ai_docs/anomaly_detection_design.md
 * @stateFlow 逐列统计 -> 按优先级判定类型 -> 标识列回退判定 -> 角色规则表匹配
 * @rules 分类必须是输入的纯函数：相同输入始终产生相同输出，按数据集列顺序迭代
 * @dependencies strings
 * @refs values.go, detector.go
 */

package anomaly

import (
	"strings"

	"dataquality-service/service/models"
)

// DefaultTypeThreshold 类型判定所需的最低解析成功比例
const DefaultTypeThreshold = 0.8

// roleRules 列名模式到语义角色的规则表，按声明顺序匹配，先命中先生效
var roleRules = []struct {
	Role     models.SemanticRole
	Keywords []string
}{
	{models.RoleBirthDate, []string{"dob", "birth"}},
	{models.RoleZipCode, []string{"zip", "postal"}},
	{models.RolePersonName, []string{"name"}},
	{models.RoleAmount, []string{"amount", "price", "cost"}},
	{models.RoleEventDate, []string{"claim", "date"}},
}

// columnStats 单列的分类统计量
type columnStats struct {
	nonNull    int
	distinct   int
	numericOK  int
	dateOK     int
	allInteger bool
}

// ClassifyColumns 推断数据集每列的类型和语义角色
// 分类策略按优先级应用：标识列 -> 日期列 -> 数值列 -> 文本列；
// 全空列归为文本列；无列按名称命中标识列时，回退选取唯一性最高的整数/字符串列
func ClassifyColumns(ds *models.Dataset, threshold float64) *models.ColumnProfile {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultTypeThreshold
	}

	profile := &models.ColumnProfile{
		Types:          make(map[string]models.ColumnType),
		Roles:          make(map[string]models.SemanticRole),
		NumericColumns: make([]string, 0),
		DateColumns:    make([]string, 0),
	}
	if ds == nil || ds.ColumnCount() == 0 {
		return profile
	}

	stats := make(map[string]columnStats, ds.ColumnCount())
	for _, col := range ds.Columns {
		stats[col] = collectColumnStats(ds, col)
	}

	for _, col := range ds.Columns {
		st := stats[col]
		switch {
		case st.nonNull > 0 && st.distinct == st.nonNull && identifierNameMatch(col):
			profile.Types[col] = models.ColumnTypeIdentifier
		case st.nonNull > 0 && ratio(st.dateOK, st.nonNull) >= threshold:
			profile.Types[col] = models.ColumnTypeDate
		case st.nonNull > 0 && ratio(st.numericOK, st.nonNull) >= threshold:
			profile.Types[col] = models.ColumnTypeNumeric
		default:
			profile.Types[col] = models.ColumnTypeText
		}
	}

	// 标识列选取：优先取类型判定为标识列的列；
	// 其次取列名命中标识模式但唯一性不足的列（重复ID正是重复检测的对象）；
	// 最后回退到唯一性比例最高的整数/字符串列
	profile.IdentifierColumn = pickIdentifierColumn(ds, profile, stats)

	for _, col := range ds.Columns {
		if col == profile.IdentifierColumn || profile.Types[col] == models.ColumnTypeIdentifier {
			profile.Roles[col] = models.RoleIdentifier
		} else {
			profile.Roles[col] = MatchRole(col)
		}
		switch profile.Types[col] {
		case models.ColumnTypeNumeric:
			profile.NumericColumns = append(profile.NumericColumns, col)
		case models.ColumnTypeDate:
			profile.DateColumns = append(profile.DateColumns, col)
		}
	}

	return profile
}

// pickIdentifierColumn 选取重复检测使用的标识列，无合适列时返回空串
func pickIdentifierColumn(ds *models.Dataset, profile *models.ColumnProfile, stats map[string]columnStats) string {
	if col := firstIdentifier(ds, profile); col != "" {
		return col
	}
	for _, col := range ds.Columns {
		if stats[col].nonNull == 0 || profile.Types[col] == models.ColumnTypeDate {
			continue
		}
		if identifierNameMatch(col) {
			return col
		}
	}

	best := ""
	bestRatio := DefaultTypeThreshold
	for _, col := range ds.Columns {
		st := stats[col]
		if st.nonNull == 0 || MatchRole(col) != models.RoleNone {
			continue
		}
		switch profile.Types[col] {
		case models.ColumnTypeText:
		case models.ColumnTypeNumeric:
			if !st.allInteger {
				continue
			}
		default:
			continue
		}
		if r := ratio(st.distinct, st.nonNull); r > bestRatio {
			best = col
			bestRatio = r
		}
	}
	if best != "" {
		profile.Types[best] = models.ColumnTypeIdentifier
	}
	return best
}

// collectColumnStats 收集单列的统计量
func collectColumnStats(ds *models.Dataset, col string) columnStats {
	st := columnStats{allInteger: true}
	seen := make(map[string]struct{})

	for _, row := range ds.Rows {
		value := row[col]
		if models.IsNull(value) {
			continue
		}
		st.nonNull++
		key := models.CellString(value)
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			st.distinct++
		}
		if f, ok := ParseNumeric(value); ok {
			st.numericOK++
			if f != float64(int64(f)) {
				st.allInteger = false
			}
		}
		if _, ok, _ := ParseDate(value); ok {
			st.dateOK++
		}
	}
	return st
}

// identifierNameMatch 判断列名是否为标识列模式
// id/key 词元直接命中；code 词元仅在列名未命中任何语义角色时参与匹配，
// 否则 zip_code 这类角色列会被误判为标识列
func identifierNameMatch(name string) bool {
	tokens := splitNameTokens(name)
	for _, token := range tokens {
		if token == "id" || token == "key" {
			return true
		}
	}
	for _, token := range tokens {
		if token == "code" {
			return MatchRole(name) == models.RoleNone
		}
	}
	return false
}

// splitNameTokens 将列名按下划线和非字母数字字符切分为小写词元
func splitNameTokens(name string) []string {
	lower := strings.ToLower(name)
	return strings.FieldsFunc(lower, func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})
}

// MatchRole 按规则表匹配列名的语义角色
// 规则表集中维护列名到角色的映射，避免字符串匹配逻辑散落在各检测器中
func MatchRole(name string) models.SemanticRole {
	lower := strings.ToLower(name)
	for _, rule := range roleRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Role
			}
		}
	}
	return models.RoleNone
}

// firstIdentifier 返回列顺序中第一个标识列，不存在时返回空串
func firstIdentifier(ds *models.Dataset, profile *models.ColumnProfile) string {
	for _, col := range ds.Columns {
		if profile.Types[col] == models.ColumnTypeIdentifier {
			return col
		}
	}
	return ""
}

// ratio 比例计算，分母为零时返回0
func ratio(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total)
}
