/*
 * @module service/etl/etl_test
 * @description ETL三组件的单元测试：CSV抽取与校验、语义清洗、分析准备与概要
 * @architecture 单元测试
 */

package etl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"dataquality-service/testutil"
)

func TestExtractFromBytes(t *testing.T) {
	extractor := NewExtractor()

	t.Run("基本解析", func(t *testing.T) {
		csvData := []byte("claim_id,amount\nC1,100\nC2,200\n")
		ds, err := extractor.ExtractFromBytes(csvData, "test.csv")
		require.NoError(t, err)
		assert.Equal(t, []string{"claim_id", "amount"}, ds.Columns)
		assert.Equal(t, 2, ds.RowCount())
		assert.Equal(t, "C1", ds.Cell(0, "claim_id"))
	})

	t.Run("空单元格转nil", func(t *testing.T) {
		csvData := []byte("a,b\n1,\n,2\n")
		ds, err := extractor.ExtractFromBytes(csvData, "test.csv")
		require.NoError(t, err)
		assert.Nil(t, ds.Cell(0, "b"))
		assert.Nil(t, ds.Cell(1, "a"))
	})

	t.Run("BOM剥离", func(t *testing.T) {
		csvData := append([]byte{0xEF, 0xBB, 0xBF}, []byte("a,b\n1,2\n")...)
		ds, err := extractor.ExtractFromBytes(csvData, "bom.csv")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, ds.Columns)
	})

	t.Run("GBK转码", func(t *testing.T) {
		utf8Data := []byte("姓名,金额\n张三,100\n")
		gbkData, _, err := transform.Bytes(simplifiedchinese.GBK.NewEncoder(), utf8Data)
		require.NoError(t, err)

		ds, err := extractor.ExtractFromBytes(gbkData, "gbk.csv")
		require.NoError(t, err)
		assert.Equal(t, []string{"姓名", "金额"}, ds.Columns)
		assert.Equal(t, "张三", ds.Cell(0, "姓名"))
	})

	t.Run("行列数不齐不报错", func(t *testing.T) {
		csvData := []byte("a,b,c\n1,2\n1,2,3,4\n")
		ds, err := extractor.ExtractFromBytes(csvData, "ragged.csv")
		require.NoError(t, err)
		assert.Equal(t, 2, ds.RowCount())
		// 短行缺失列补nil
		assert.Nil(t, ds.Cell(0, "c"))
	})

	t.Run("空文件报错", func(t *testing.T) {
		_, err := extractor.ExtractFromBytes([]byte("  \n"), "empty.csv")
		assert.Error(t, err)
	})

	t.Run("仅表头报错", func(t *testing.T) {
		_, err := extractor.ExtractFromBytes([]byte("a,b\n"), "header.csv")
		assert.Error(t, err)
	})
}

func TestValidateFormat(t *testing.T) {
	extractor := NewExtractor()

	t.Run("小数据集警告", func(t *testing.T) {
		ds := testutil.NewClaimDataset()
		result := extractor.ValidateFormat(ds)

		assert.True(t, result.Valid)
		assert.Empty(t, result.Issues)
		assert.Equal(t, 5, result.RowCount)
		assert.Equal(t, "id", result.IdentifierColumn)
		assert.NotEmpty(t, result.Warnings)
	})

	t.Run("无数值列警告", func(t *testing.T) {
		ds := testutil.MakeDataset([]string{"note"},
			[]interface{}{"hello"},
			[]interface{}{"world"},
		)
		result := extractor.ValidateFormat(ds)
		assert.True(t, result.Valid)

		found := false
		for _, w := range result.Warnings {
			if w == "未检测到数值列，统计与机器学习检测将受限" {
				found = true
			}
		}
		assert.True(t, found)
	})

	t.Run("空数据集无效", func(t *testing.T) {
		result := extractor.ValidateFormat(nil)
		assert.False(t, result.Valid)
		assert.NotEmpty(t, result.Issues)
	})
}

func TestTransform(t *testing.T) {
	transformer := NewTransformer()

	t.Run("日期规范化", func(t *testing.T) {
		ds := testutil.MakeDataset([]string{"dob"},
			[]interface{}{"03/20/1975"},
			[]interface{}{"1980-01-01"},
			[]interface{}{"1990/05/15"},
			[]interface{}{"not-a-date"},
		)
		out := transformer.Transform(ds)
		assert.Equal(t, "1975-03-20", out.Cell(0, "dob"))
		assert.Equal(t, "1980-01-01", out.Cell(1, "dob"))
		assert.Equal(t, "1990-05-15", out.Cell(2, "dob"))
		// 无法识别的值原样保留，交由检测引擎标记
		assert.Equal(t, "not-a-date", out.Cell(3, "dob"))
	})

	t.Run("邮编修正", func(t *testing.T) {
		ds := testutil.MakeDataset([]string{"zip_code"},
			[]interface{}{"123"},
			[]interface{}{"123456789"},
			[]interface{}{"12-345"},
			[]interface{}{"ABCDE"},
		)
		out := transformer.Transform(ds)
		assert.Equal(t, "00123", out.Cell(0, "zip_code"))
		assert.Equal(t, "12345", out.Cell(1, "zip_code"))
		assert.Equal(t, "12345", out.Cell(2, "zip_code"))
		assert.Equal(t, "ABCDE", out.Cell(3, "zip_code"))
	})

	t.Run("姓名清洗", func(t *testing.T) {
		ds := testutil.MakeDataset([]string{"patient_name"},
			[]interface{}{"john  smith"},
			[]interface{}{"MARY O'BRIEN"},
			[]interface{}{"anne-marie  clark"},
			[]interface{}{"j0hn smith"},
		)
		out := transformer.Transform(ds)
		assert.Equal(t, "John Smith", out.Cell(0, "patient_name"))
		assert.Equal(t, "Mary O'brien", out.Cell(1, "patient_name"))
		assert.Equal(t, "Anne-marie Clark", out.Cell(2, "patient_name"))
		// 非法字符剥离后词首大写
		assert.Equal(t, "Jhn Smith", out.Cell(3, "patient_name"))
	})

	t.Run("金额转数值", func(t *testing.T) {
		ds := testutil.MakeDataset([]string{"claim_amount"},
			[]interface{}{"$1,234.50"},
			[]interface{}{"100"},
			[]interface{}{"free"},
		)
		out := transformer.Transform(ds)
		assert.Equal(t, 1234.5, out.Cell(0, "claim_amount"))
		assert.Equal(t, 100.0, out.Cell(1, "claim_amount"))
		assert.Equal(t, "free", out.Cell(2, "claim_amount"))
	})

	t.Run("无角色列原样保留", func(t *testing.T) {
		ds := testutil.MakeDataset([]string{"diagnosis"},
			[]interface{}{" ICD10.5 "},
		)
		out := transformer.Transform(ds)
		assert.Equal(t, "ICD10.5", out.Cell(0, "diagnosis"))
	})

	t.Run("输入数据集保持只读", func(t *testing.T) {
		ds := testutil.MakeDataset([]string{"zip_code"},
			[]interface{}{"123"},
		)
		_ = transformer.Transform(ds)
		assert.Equal(t, "123", ds.Cell(0, "zip_code"))
	})
}

func TestPrepareForAnalysis(t *testing.T) {
	loader := NewLoader()
	ds := testutil.MakeDataset([]string{"rec_id", "amount", "note"},
		[]interface{}{"R1", "100", "a"},
		[]interface{}{"R2", "$2,000", "b"},
		[]interface{}{"R3", "300.5", "c"},
	)
	out := loader.PrepareForAnalysis(ds)

	assert.Equal(t, 100.0, out.Cell(0, "amount"))
	assert.Equal(t, 2000.0, out.Cell(1, "amount"))
	assert.Equal(t, 300.5, out.Cell(2, "amount"))
	// 文本列不转换
	assert.Equal(t, "a", out.Cell(0, "note"))
}

func TestSummary(t *testing.T) {
	loader := NewLoader()
	ds := testutil.MakeDataset([]string{"rec_id", "amount"},
		[]interface{}{"R1", 10.0},
		[]interface{}{"R2", 20.0},
		[]interface{}{"R2", 20.0},
		[]interface{}{"R3", nil},
	)

	summary := loader.Summary(ds)
	assert.Equal(t, 4, summary.TotalRows)
	assert.Equal(t, 2, summary.TotalColumns)
	assert.Equal(t, 1, summary.MissingValues["amount"])
	assert.Equal(t, 0, summary.MissingValues["rec_id"])
	assert.Equal(t, 1, summary.DuplicateRows)

	stats, ok := summary.NumericStatistics["amount"]
	require.True(t, ok)
	assert.Equal(t, 3, stats.Count)
	assert.InDelta(t, 16.666666, stats.Mean, 1e-4)
	assert.Equal(t, 10.0, stats.Min)
	assert.Equal(t, 20.0, stats.Max)
}
