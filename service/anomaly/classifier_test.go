/*
 * @module service/anomaly/classifier_test
 * @description 列类型分类器和语义角色规则表的单元测试
 * @architecture 单元测试
 */

package anomaly

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dataquality-service/service/models"
	"dataquality-service/testutil"
)

func TestClassifyColumns_ClaimDataset(t *testing.T) {
	ds := testutil.NewClaimDataset()
	profile := ClassifyColumns(ds, DefaultTypeThreshold)

	t.Run("类型判定", func(t *testing.T) {
		assert.Equal(t, models.ColumnTypeNumeric, profile.Types["id"])
		assert.Equal(t, models.ColumnTypeText, profile.Types["name"])
		assert.Equal(t, models.ColumnTypeDate, profile.Types["dob"])
		assert.Equal(t, models.ColumnTypeNumeric, profile.Types["zip"])
		assert.Equal(t, models.ColumnTypeNumeric, profile.Types["amount"])
	})

	t.Run("标识列选取", func(t *testing.T) {
		// id列含重复值，唯一性不足，但列名命中标识模式仍应被选取
		assert.Equal(t, "id", profile.IdentifierColumn)
		assert.Equal(t, models.RoleIdentifier, profile.Roles["id"])
	})

	t.Run("语义角色", func(t *testing.T) {
		assert.Equal(t, models.RolePersonName, profile.Roles["name"])
		assert.Equal(t, models.RoleBirthDate, profile.Roles["dob"])
		assert.Equal(t, models.RoleZipCode, profile.Roles["zip"])
		assert.Equal(t, models.RoleAmount, profile.Roles["amount"])
	})

	t.Run("列集合", func(t *testing.T) {
		assert.ElementsMatch(t, []string{"id", "zip", "amount"}, profile.NumericColumns)
		assert.Equal(t, []string{"dob"}, profile.DateColumns)
	})
}

func TestClassifyColumns_UniqueIdentifier(t *testing.T) {
	ds := testutil.MakeDataset([]string{"user_id", "score"},
		[]interface{}{"u1", "85"},
		[]interface{}{"u2", "90"},
		[]interface{}{"u3", "78"},
		[]interface{}{"u4", "92"},
	)
	profile := ClassifyColumns(ds, DefaultTypeThreshold)

	assert.Equal(t, models.ColumnTypeIdentifier, profile.Types["user_id"])
	assert.Equal(t, "user_id", profile.IdentifierColumn)
	// 标识列不参与数值列集合
	assert.Equal(t, []string{"score"}, profile.NumericColumns)
}

func TestClassifyColumns_FallbackIdentifier(t *testing.T) {
	// 无列名命中标识模式，回退选取唯一性最高的整数列并提升为标识列
	ds := testutil.MakeDataset([]string{"serial", "weight"},
		[]interface{}{"1", "1.5"},
		[]interface{}{"2", "2.5"},
		[]interface{}{"3", "3.5"},
		[]interface{}{"4", "4.5"},
		[]interface{}{"5", "5.5"},
	)
	profile := ClassifyColumns(ds, DefaultTypeThreshold)

	assert.Equal(t, "serial", profile.IdentifierColumn)
	assert.Equal(t, models.ColumnTypeIdentifier, profile.Types["serial"])
	// 非整数数值列不作为标识列候选
	assert.Equal(t, models.ColumnTypeNumeric, profile.Types["weight"])
}

func TestClassifyColumns_Threshold(t *testing.T) {
	// 数值解析成功比例 3/5 = 0.6，低于默认阈值0.8，应归为文本列
	ds := testutil.MakeDataset([]string{"mixed"},
		[]interface{}{"1"},
		[]interface{}{"2"},
		[]interface{}{"3"},
		[]interface{}{"abc"},
		[]interface{}{"def"},
	)
	profile := ClassifyColumns(ds, DefaultTypeThreshold)
	assert.Equal(t, models.ColumnTypeText, profile.Types["mixed"])

	// 阈值放宽到0.6后同一列应判为数值列
	profile = ClassifyColumns(ds, 0.6)
	assert.Equal(t, models.ColumnTypeNumeric, profile.Types["mixed"])
}

func TestClassifyColumns_AllNullColumn(t *testing.T) {
	ds := testutil.MakeDataset([]string{"empty", "value"},
		[]interface{}{nil, "1"},
		[]interface{}{"", "2"},
		[]interface{}{"  ", "3"},
	)
	profile := ClassifyColumns(ds, DefaultTypeThreshold)
	assert.Equal(t, models.ColumnTypeText, profile.Types["empty"])
}

func TestClassifyColumns_Deterministic(t *testing.T) {
	ds := testutil.NewClaimDataset()
	first := ClassifyColumns(ds, DefaultTypeThreshold)
	second := ClassifyColumns(ds, DefaultTypeThreshold)
	assert.Equal(t, first, second)
}

func TestMatchRole(t *testing.T) {
	tests := []struct {
		name     string
		column   string
		expected models.SemanticRole
	}{
		{"出生日期列", "date_of_birth", models.RoleBirthDate},
		{"dob缩写", "patient_dob", models.RoleBirthDate},
		{"邮编列", "zip_code", models.RoleZipCode},
		{"postal列", "postal", models.RoleZipCode},
		{"姓名列", "patient_name", models.RolePersonName},
		{"金额列", "claim_amount", models.RoleAmount},
		{"事件日期列", "claim_date", models.RoleEventDate},
		{"普通date列", "updated_date", models.RoleEventDate},
		{"无角色列", "diagnosis", models.RoleNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MatchRole(tt.column))
		})
	}
}

func TestMatchRole_Precedence(t *testing.T) {
	// birth规则先于date规则：出生日期列不应被泛化为事件日期
	assert.Equal(t, models.RoleBirthDate, MatchRole("birth_date"))
	// amount规则先于date规则无交集，但zip先于name无交集，此处验证声明顺序稳定
	assert.Equal(t, models.RoleZipCode, MatchRole("zip_name"))
}
