/*
 * @module service/anomaly/inconsistency_test
 * @description 不一致检测器的单元测试，覆盖单列规则、跨列规则和规则独立性
 * @architecture 单元测试
 */

package anomaly

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"dataquality-service/service/models"
	"dataquality-service/testutil"
)

var testNow = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func findRecord(result *models.InconsistencyResult, column, ruleType string) *models.InconsistencyRecord {
	for i := range result.Records {
		if result.Records[i].Column == column && result.Records[i].Type == ruleType {
			return &result.Records[i]
		}
	}
	return nil
}

func TestDetectInconsistencies_DateRules(t *testing.T) {
	ds := testutil.MakeDataset([]string{"dob"},
		[]interface{}{"1980-01-01"},
		[]interface{}{"01/15/1990"},
		[]interface{}{"2030-01-01"},
		[]interface{}{"1975-03-20"},
		[]interface{}{"1985-07-10"},
	)
	profile := ClassifyColumns(ds, DefaultTypeThreshold)
	assert.Equal(t, models.ColumnTypeDate, profile.Types["dob"])

	result, _ := DetectInconsistencies(ds, profile, testNow)

	t.Run("非规范日期格式", func(t *testing.T) {
		record := findRecord(result, "dob", RuleInvalidDateFormat)
		assert.NotNil(t, record)
		assert.Equal(t, []int{1}, record.Indices)
	})

	t.Run("未来出生日期", func(t *testing.T) {
		record := findRecord(result, "dob", RuleFutureDateOfBirth)
		assert.NotNil(t, record)
		assert.Equal(t, []int{2}, record.Indices)
	})

	t.Run("行并集去重", func(t *testing.T) {
		assert.Equal(t, []int{1, 2}, result.Rows.Sorted())
	})
}

func TestDetectInconsistencies_ZipAndName(t *testing.T) {
	ds := testutil.MakeDataset([]string{"zip_code", "patient_name"},
		[]interface{}{"12345", "John Smith"},
		[]interface{}{"ABCDE", "Mary O'Brien"},
		[]interface{}{"123", "12345"},
		[]interface{}{"123456789", "A"},
		[]interface{}{"1234a", "Anne-Marie Clark"},
	)
	profile := ClassifyColumns(ds, DefaultTypeThreshold)
	assert.Equal(t, models.ColumnTypeText, profile.Types["zip_code"])
	assert.Equal(t, models.ColumnTypeText, profile.Types["patient_name"])

	result, _ := DetectInconsistencies(ds, profile, testNow)

	t.Run("邮编格式", func(t *testing.T) {
		record := findRecord(result, "zip_code", RuleInvalidZipFormat)
		assert.NotNil(t, record)
		assert.Equal(t, []int{1, 2, 3, 4}, record.Indices)
	})

	t.Run("姓名格式", func(t *testing.T) {
		// 撇号、连字符和空格为合法字符，纯数字和单字符非法
		record := findRecord(result, "patient_name", RuleMalformedName)
		assert.NotNil(t, record)
		assert.Equal(t, []int{2, 3}, record.Indices)
	})
}

func TestDetectInconsistencies_NegativeAmount(t *testing.T) {
	ds := testutil.MakeDataset([]string{"amount"},
		[]interface{}{"100.5"},
		[]interface{}{"-20"},
		[]interface{}{"0"},
		[]interface{}{"-0.01"},
	)
	profile := ClassifyColumns(ds, DefaultTypeThreshold)
	result, _ := DetectInconsistencies(ds, profile, testNow)

	record := findRecord(result, "amount", RuleNegativeAmount)
	assert.NotNil(t, record)
	assert.Equal(t, []int{1, 3}, record.Indices)
	assert.Equal(t, 2, record.Count)
}

func TestDetectInconsistencies_EventBeforeBirth(t *testing.T) {
	ds := testutil.MakeDataset([]string{"dob", "claim_date"},
		[]interface{}{"1980-01-01", "2020-05-01"},
		[]interface{}{"1990-05-15", "1985-01-01"},
		[]interface{}{"1975-03-20", "1975-03-20"},
	)
	profile := ClassifyColumns(ds, DefaultTypeThreshold)
	result, _ := DetectInconsistencies(ds, profile, testNow)

	record := findRecord(result, "claim_date", RuleEventBeforeBirth)
	assert.NotNil(t, record)
	// 事件日期等于出生日期不算早于
	assert.Equal(t, []int{1}, record.Indices)
}

func TestDetectInconsistencies_RuleIndependence(t *testing.T) {
	// 同一行命中多条规则：各规则独立计数，行并集只计一次
	ds := testutil.MakeDataset([]string{"dob", "amount"},
		[]interface{}{"not-a-date", "-50"},
		[]interface{}{"1980-01-01", "100"},
		[]interface{}{"1981-02-02", "101"},
		[]interface{}{"1982-03-03", "102"},
		[]interface{}{"1983-04-04", "103"},
	)
	profile := ClassifyColumns(ds, DefaultTypeThreshold)
	result, findings := DetectInconsistencies(ds, profile, testNow)

	assert.NotNil(t, findRecord(result, "dob", RuleInvalidDateFormat))
	assert.NotNil(t, findRecord(result, "amount", RuleNegativeAmount))
	assert.Equal(t, []int{0}, result.Rows.Sorted())
	// 证据按规则各记一条
	assert.Len(t, findings, 2)
}

func TestDetectInconsistencies_TypeMismatchSkipped(t *testing.T) {
	// 数值类型的邮编列不应用文本邮编规则
	ds := testutil.MakeDataset([]string{"zip_code"},
		[]interface{}{"123"},
		[]interface{}{"456"},
		[]interface{}{"789"},
	)
	profile := ClassifyColumns(ds, DefaultTypeThreshold)
	assert.Equal(t, models.ColumnTypeNumeric, profile.Types["zip_code"])

	result, _ := DetectInconsistencies(ds, profile, testNow)
	assert.Nil(t, findRecord(result, "zip_code", RuleInvalidZipFormat))
	assert.Equal(t, 0, result.Rows.Len())
}
