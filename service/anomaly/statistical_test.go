/*
 * @module service/anomaly/statistical_test
 * @description 统计离群检测器的单元测试，覆盖z-score与IQR的边界行为
 * @architecture 单元测试
 */

package anomaly

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dataquality-service/testutil"
)

func TestDetectStatistical_ZScore(t *testing.T) {
	// 19个10加一个1000：均值59.5，样本标准差约221，1000的z约4.25
	values := make([]float64, 0, 20)
	for i := 0; i < 19; i++ {
		values = append(values, 10)
	}
	values = append(values, 1000)

	ds := testutil.NumericDataset("amount", values)
	profile := ClassifyColumns(ds, DefaultTypeThreshold)
	result, _ := DetectStatistical(ds, profile, DefaultZScoreThreshold, DefaultIQRMultiplier)

	detail := result.PerColumn["amount"]
	assert.Equal(t, []int{19}, detail.ZScoreRows.Sorted())
	assert.Equal(t, []int{19}, result.Rows.Sorted())
	assert.True(t, result.Combined[19])
	assert.False(t, result.Combined[0])
}

func TestDetectStatistical_ZeroStd(t *testing.T) {
	// 标准差为零时z-score应整体跳过而非除零
	ds := testutil.NumericDataset("amount", []float64{5, 5, 5, 5, 5})
	profile := ClassifyColumns(ds, DefaultTypeThreshold)
	result, _ := DetectStatistical(ds, profile, DefaultZScoreThreshold, DefaultIQRMultiplier)

	assert.Equal(t, 0, result.PerColumn["amount"].ZScoreRows.Len())
	assert.Equal(t, 0, result.PerColumn["amount"].IQRRows.Len())
}

func TestDetectStatistical_IQR(t *testing.T) {
	// 1..9加100：Q1=3，Q3=8，上界15.5，仅100超界；其z约2.84不触发z-score
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 100}
	ds := testutil.NumericDataset("amount", values)
	profile := ClassifyColumns(ds, DefaultTypeThreshold)
	result, _ := DetectStatistical(ds, profile, DefaultZScoreThreshold, DefaultIQRMultiplier)

	detail := result.PerColumn["amount"]
	assert.Equal(t, []int{9}, detail.IQRRows.Sorted())
	assert.Equal(t, 0, detail.ZScoreRows.Len())
	assert.Equal(t, []int{9}, result.Rows.Sorted())
}

func TestDetectStatistical_DegenerateIQR(t *testing.T) {
	// 四分位距为零时区间退化为[Q1,Q3]，极端值仍被IQR捕获
	// 此场景下n过小，z-score在数学上无法超过阈值3
	ds := testutil.NumericDataset("amount", []float64{10, 10, 10, 10, 1000})
	profile := ClassifyColumns(ds, DefaultTypeThreshold)
	result, _ := DetectStatistical(ds, profile, DefaultZScoreThreshold, DefaultIQRMultiplier)

	detail := result.PerColumn["amount"]
	assert.Equal(t, []int{4}, detail.IQRRows.Sorted())
	assert.Equal(t, 0, detail.ZScoreRows.Len())
}

func TestDetectStatistical_TooFewForIQR(t *testing.T) {
	// 少于4个数值时IQR不适用
	ds := testutil.NumericDataset("amount", []float64{1, 2, 1000})
	profile := ClassifyColumns(ds, DefaultTypeThreshold)
	result, _ := DetectStatistical(ds, profile, DefaultZScoreThreshold, DefaultIQRMultiplier)

	assert.Equal(t, 0, result.PerColumn["amount"].IQRRows.Len())
}

func TestDetectStatistical_NoNumericColumns(t *testing.T) {
	ds := testutil.MakeDataset([]string{"note"},
		[]interface{}{"hello"},
		[]interface{}{"world"},
	)
	profile := ClassifyColumns(ds, DefaultTypeThreshold)
	result, findings := DetectStatistical(ds, profile, DefaultZScoreThreshold, DefaultIQRMultiplier)

	assert.True(t, result.Skipped)
	assert.NotEmpty(t, result.SkipReason)
	assert.Empty(t, findings)
}

func TestTukeyHinges(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		q1     float64
		q3     float64
	}{
		{"奇数长度中位数同属两半", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 100}, 3, 8},
		{"偶数长度对半切分", []float64{1, 2, 3, 4}, 1.5, 3.5},
		{"五元素", []float64{10, 11, 12, 13, 500}, 11, 13},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q1, q3 := tukeyHinges(tt.values)
			assert.InDelta(t, tt.q1, q1, 1e-9)
			assert.InDelta(t, tt.q3, q3, 1e-9)
		})
	}
}

func TestDetectStatistical_NullCellsIgnored(t *testing.T) {
	// 空单元格不参与统计，行索引仍对应原始数据集
	ds := testutil.MakeDataset([]string{"rec_id", "amount"},
		[]interface{}{"R1", "10"},
		[]interface{}{"R2", nil},
		[]interface{}{"R3", "11"},
		[]interface{}{"R4", "12"},
		[]interface{}{"R5", "13"},
		[]interface{}{"R6", "500"},
	)
	profile := ClassifyColumns(ds, DefaultTypeThreshold)
	result, _ := DetectStatistical(ds, profile, DefaultZScoreThreshold, DefaultIQRMultiplier)

	assert.Equal(t, []int{5}, result.PerColumn["amount"].IQRRows.Sorted())
}
