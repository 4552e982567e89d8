/*
 * @module service/anomaly/statistical
 * @description 统计离群检测器，对数值列独立应用Z-score和IQR两种方法
 * @architecture 分层架构 - 检测引擎层
 * @documentReference ai_docs/anomaly_detection_design.md
 * @stateFlow 逐数值列解析 -> Z-score判定 -> IQR判定 -> 按方法合并行索引
 * @rules 标准差为零的列Z-score不标记任何行；无法解析的单元格按缺失处理不参与计算；
 *        任一方法在任一数值列命中即视为统计离群行
 * @dependencies math, sort
 * @refs values.go, detector.go
 */

package anomaly

import (
	"math"
	"sort"

	"dataquality-service/service/models"
)

// 统计检测默认阈值
const (
	DefaultZScoreThreshold = 3.0
	DefaultIQRMultiplier   = 1.5
)

// DetectStatistical 检测统计离群值
// 仅作用于数值列；无数值列时返回跳过结果而非错误
func DetectStatistical(ds *models.Dataset, profile *models.ColumnProfile, zThreshold, iqrMultiplier float64) (*models.StatisticalResult, []models.DetectionFinding) {
	result := &models.StatisticalResult{
		PerColumn: make(map[string]models.MethodDetail),
		Combined:  make(map[int]bool),
		Rows:      models.NewIndexSet(),
	}
	findings := make([]models.DetectionFinding, 0)

	if len(profile.NumericColumns) == 0 {
		result.Skipped = true
		result.SkipReason = "数据集中没有数值列，统计离群检测不适用"
		return result, findings
	}

	for _, col := range profile.NumericColumns {
		indices, values := numericColumn(ds, col)
		detail := models.MethodDetail{
			ZScoreRows: models.NewIndexSet(),
			IQRRows:    models.NewIndexSet(),
		}

		for _, idx := range zScoreOutliers(indices, values, zThreshold) {
			detail.ZScoreRows.Add(idx)
			findings = append(findings, models.DetectionFinding{
				RowIndex: idx,
				Category: models.CategoryStatisticalOutlier,
				Detail:   col + ": z_score",
			})
		}
		for _, idx := range iqrOutliers(indices, values, iqrMultiplier) {
			detail.IQRRows.Add(idx)
			findings = append(findings, models.DetectionFinding{
				RowIndex: idx,
				Category: models.CategoryStatisticalOutlier,
				Detail:   col + ": iqr",
			})
		}

		result.PerColumn[col] = detail
		result.Rows.Union(detail.ZScoreRows)
		result.Rows.Union(detail.IQRRows)
	}

	for i := 0; i < ds.RowCount(); i++ {
		result.Combined[i] = result.Rows.Has(i)
	}
	return result, findings
}

// numericColumn 提取某列可解析为数值的单元格，返回平行的行索引与数值切片
func numericColumn(ds *models.Dataset, col string) ([]int, []float64) {
	indices := make([]int, 0, ds.RowCount())
	values := make([]float64, 0, ds.RowCount())
	for i, row := range ds.Rows {
		if f, ok := ParseNumeric(row[col]); ok {
			indices = append(indices, i)
			values = append(values, f)
		}
	}
	return indices, values
}

// zScoreOutliers Z-score方法：|（值-均值）/样本标准差| 超过阈值即离群
// 标准差为零时不标记任何行，避免除零
func zScoreOutliers(indices []int, values []float64, threshold float64) []int {
	if len(values) < 2 {
		return nil
	}
	mean := meanOf(values)
	std := sampleStd(values, mean)
	if std == 0 {
		return nil
	}

	out := make([]int, 0)
	for i, v := range values {
		if math.Abs((v-mean)/std) > threshold {
			out = append(out, indices[i])
		}
	}
	return out
}

// iqrOutliers IQR方法：值落在 [Q1-k·IQR, Q3+k·IQR] 之外即离群
// 分位数采用Tukey hinges：排序后按中位数切分，奇数长度时中位数同属两半，
// Q1/Q3取两半各自的中位数
func iqrOutliers(indices []int, values []float64, multiplier float64) []int {
	if len(values) < 4 {
		return nil
	}
	q1, q3 := tukeyHinges(values)
	iqr := q3 - q1
	lower := q1 - multiplier*iqr
	upper := q3 + multiplier*iqr

	out := make([]int, 0)
	for i, v := range values {
		if v < lower || v > upper {
			out = append(out, indices[i])
		}
	}
	return out
}

// tukeyHinges 计算Q1和Q3
func tukeyHinges(values []float64) (float64, float64) {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	half := n / 2
	var lower, upper []float64
	if n%2 == 0 {
		lower = sorted[:half]
		upper = sorted[half:]
	} else {
		lower = sorted[:half+1]
		upper = sorted[half:]
	}
	return medianOf(lower), medianOf(upper)
}

// medianOf 有序切片的中位数
func medianOf(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// meanOf 均值
func meanOf(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStd 样本标准差（n-1）
func sampleStd(values []float64, mean float64) float64 {
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}
