/*
 * @module service/models/anomaly_models
 * @description 异常检测结果模型，定义列类型、语义角色、行索引集合与各检测类别的结果结构
 * @architecture 分层架构 - 数据模型层
 * @documentReference ai_docs/anomaly_detection_design.md
 * @stateFlow 检测调用内创建 -> 编排器合并 -> 序列化输出后丢弃
 * @rules 所有结果字段仅包含基础类型，保证JSON无损序列化；行索引集合保证按类别去重计数
 * @dependencies encoding/json, sort
 * @refs service/anomaly, api/controllers
 */

package models

import (
	"encoding/json"
	"sort"
)

// ColumnType 列语义类型
type ColumnType string

const (
	ColumnTypeIdentifier ColumnType = "identifier"
	ColumnTypeNumeric    ColumnType = "numeric"
	ColumnTypeDate       ColumnType = "date"
	ColumnTypeText       ColumnType = "text"
)

// SemanticRole 列的业务语义角色，由列名模式规则表在分类阶段一次性判定
type SemanticRole string

const (
	RoleNone       SemanticRole = "none"
	RoleIdentifier SemanticRole = "identifier"
	RoleBirthDate  SemanticRole = "birth_date"
	RoleEventDate  SemanticRole = "event_date"
	RoleZipCode    SemanticRole = "zip_code"
	RolePersonName SemanticRole = "person_name"
	RoleAmount     SemanticRole = "amount"
)

// AnomalyCategory 异常类别标签
type AnomalyCategory string

const (
	CategoryDuplicate          AnomalyCategory = "duplicate"
	CategoryMissingValue       AnomalyCategory = "missing_value"
	CategoryInconsistency      AnomalyCategory = "inconsistency"
	CategoryStatisticalOutlier AnomalyCategory = "statistical_outlier"
	CategoryMLOutlier          AnomalyCategory = "ml_outlier"
)

// ColumnProfile 列分类结果：每列的类型和语义角色
type ColumnProfile struct {
	Types            map[string]ColumnType   `json:"types"`
	Roles            map[string]SemanticRole `json:"roles"`
	IdentifierColumn string                  `json:"identifier_column,omitempty"`
	NumericColumns   []string                `json:"numeric_columns"`
	DateColumns      []string                `json:"date_columns"`
}

// IndexSet 行索引集合，按行去重，合并计数的机制性保证
type IndexSet map[int]struct{}

// NewIndexSet 创建行索引集合
func NewIndexSet(indices ...int) IndexSet {
	s := make(IndexSet)
	for _, i := range indices {
		s.Add(i)
	}
	return s
}

// Add 加入一个行索引
func (s IndexSet) Add(index int) {
	s[index] = struct{}{}
}

// Has 判断行索引是否存在
func (s IndexSet) Has(index int) bool {
	_, ok := s[index]
	return ok
}

// Len 返回集合大小
func (s IndexSet) Len() int {
	return len(s)
}

// Union 并入另一个集合
func (s IndexSet) Union(other IndexSet) {
	for i := range other {
		s[i] = struct{}{}
	}
}

// Sorted 返回升序排列的行索引切片
func (s IndexSet) Sorted() []int {
	out := make([]int, 0, len(s))
	for i := range s {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// MarshalJSON 序列化为升序的行索引数组，保证输出确定性
func (s IndexSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON 从行索引数组反序列化
func (s *IndexSet) UnmarshalJSON(data []byte) error {
	var indices []int
	if err := json.Unmarshal(data, &indices); err != nil {
		return err
	}
	*s = NewIndexSet(indices...)
	return nil
}

// DetectionFinding 一条检测证据：行索引、类别和触发详情
type DetectionFinding struct {
	RowIndex int             `json:"row_index"`
	Category AnomalyCategory `json:"category"`
	Detail   string          `json:"detail"`
}

// DuplicateResult 重复检测结果
type DuplicateResult struct {
	Skipped            bool     `json:"skipped"`
	SkipReason         string   `json:"skip_reason,omitempty"`
	IdentifierColumn   string   `json:"identifier_column,omitempty"`
	DuplicateIDRows    IndexSet `json:"duplicate_id_rows"`
	DuplicateIDCount   int      `json:"duplicate_id_count"`
	DuplicateFullRows  IndexSet `json:"duplicate_full_rows"`
	DuplicateRowCount  int      `json:"duplicate_row_count"`
	RepeatedValues     []string `json:"repeated_values,omitempty"`
}

// Rows 返回重复类别涉及的全部行索引
func (r *DuplicateResult) Rows() IndexSet {
	union := NewIndexSet()
	union.Union(r.DuplicateIDRows)
	union.Union(r.DuplicateFullRows)
	return union
}

// MissingValueResult 缺失值检测结果
type MissingValueResult struct {
	PerColumn   map[string]int `json:"per_column"`
	MissingRows IndexSet       `json:"missing_rows"`
	RowCount    int            `json:"row_count"`
}

// InconsistencyRecord 单条不一致规则的命中记录
type InconsistencyRecord struct {
	Column  string `json:"column"`
	Type    string `json:"type"`
	Count   int    `json:"count"`
	Indices []int  `json:"indices"`
}

// InconsistencyResult 不一致检测结果
type InconsistencyResult struct {
	Records []InconsistencyRecord `json:"records"`
	Rows    IndexSet              `json:"rows"`
}

// MethodDetail 单一方法在单列上的命中明细
type MethodDetail struct {
	ZScoreRows IndexSet `json:"z_score_rows"`
	IQRRows    IndexSet `json:"iqr_rows"`
}

// StatisticalResult 统计离群检测结果
type StatisticalResult struct {
	Skipped    bool                    `json:"skipped"`
	SkipReason string                  `json:"skip_reason,omitempty"`
	PerColumn  map[string]MethodDetail `json:"per_column"`
	Combined   map[int]bool            `json:"combined"`
	Rows       IndexSet                `json:"rows"`
}

// MLMethodResult 单一机器学习模型的检测明细
type MLMethodResult struct {
	Model string   `json:"model"`
	Rows  IndexSet `json:"rows"`
	Count int      `json:"count"`
}

// MLResult 机器学习离群检测结果
type MLResult struct {
	Skipped         bool           `json:"skipped"`
	SkipReason      string         `json:"skip_reason,omitempty"`
	FeatureColumns  []string       `json:"feature_columns,omitempty"`
	IsolationForest MLMethodResult `json:"isolation_forest"`
	LOF             MLMethodResult `json:"lof"`
	Combined        map[int]bool   `json:"combined"`
	Rows            IndexSet       `json:"rows"`
}

// DetectionSummary 检测汇总，每次运行基于报告重新计算
type DetectionSummary struct {
	TotalRows               int     `json:"total_rows"`
	TotalColumns            int     `json:"total_columns"`
	TotalAnomalies          int     `json:"total_anomalies"`
	AnomalyRate             float64 `json:"anomaly_rate"`
	AnomalyIndices          []int   `json:"anomaly_indices"`
	DuplicateCount          int     `json:"duplicate_count"`
	MissingValueCount       int     `json:"missing_value_count"`
	InconsistencyCount      int     `json:"inconsistency_count"`
	StatisticalOutlierCount int     `json:"statistical_outlier_count"`
	MLOutlierCount          int     `json:"ml_outlier_count"`
}

// AnomalyReport 一次检测调用的完整报告
type AnomalyReport struct {
	Duplicates      *DuplicateResult     `json:"duplicates"`
	MissingValues   *MissingValueResult  `json:"missing_values"`
	Inconsistencies *InconsistencyResult `json:"inconsistencies"`
	Statistical     *StatisticalResult   `json:"statistical"`
	ML              *MLResult            `json:"ml"`
	Findings        []DetectionFinding   `json:"findings"`
	Summary         DetectionSummary     `json:"summary"`
	Notes           []string             `json:"notes,omitempty"`
}
