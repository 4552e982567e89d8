/*
 * @module testutil/test_helper
 * @description 测试辅助工具包，提供数据集构造工厂和HTTP测试辅助
 * @architecture 测试工具层
 * @documentReference ai_docs/anomaly_detection_design.md
 * @stateFlow 测试用例调用工厂构造数据集 -> 执行被测逻辑 -> 断言
 * @rules 工厂构造的数据集行为确定，便于断言具体行号
 * @dependencies net/http/httptest, github.com/stretchr/testify/assert
 * @refs service/models
 */

package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"dataquality-service/service/models"
)

// MakeDataset 按列名和单元格构造数据集，每个values为一行，顺序对应columns
func MakeDataset(columns []string, rows ...[]interface{}) *models.Dataset {
	ds := models.NewDataset(columns)
	for _, values := range rows {
		row := models.Row{}
		for i, col := range columns {
			if i < len(values) {
				row[col] = values[i]
			}
		}
		ds.AppendRow(row)
	}
	return ds
}

// NewClaimDataset 构造一个5行理赔数据集，覆盖重复、缺失、不一致和离群场景
// id=4重复两次；第3行zip缺失；第4行dob非法、zip过短；第4行amount为极端值
func NewClaimDataset() *models.Dataset {
	columns := []string{"id", "name", "dob", "zip", "amount"}
	return MakeDataset(columns,
		[]interface{}{"1", "John Smith", "1980-01-01", "12345", "10"},
		[]interface{}{"2", "Jane Doe", "1990-05-15", "23456", "12"},
		[]interface{}{"3", "Bob Jones", "1975-03-20", "34567", "11"},
		[]interface{}{"4", "Alice Brown", "invalid-date", "456", "500"},
		[]interface{}{"4", "Carol White", "1985-07-10", nil, "13"},
	)
}

// NumericDataset 构造带标识列的单数值列数据集
func NumericDataset(name string, values []float64) *models.Dataset {
	ds := models.NewDataset([]string{"record_id", name})
	for i, v := range values {
		ds.AppendRow(models.Row{
			"record_id": fmt.Sprintf("R%03d", i+1),
			name:        v,
		})
	}
	return ds
}

// HTTPTestHelper HTTP测试辅助工具
type HTTPTestHelper struct{}

// NewHTTPTestHelper 创建HTTP测试辅助工具
func NewHTTPTestHelper() *HTTPTestHelper {
	return &HTTPTestHelper{}
}

// CreateJSONRequest 创建JSON请求
func (h *HTTPTestHelper) CreateJSONRequest(method, url string, body interface{}) (*http.Request, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// CreateCSVUploadRequest 创建multipart文件上传请求，字段名为file
func (h *HTTPTestHelper) CreateCSVUploadRequest(url, filename string, content []byte) (*http.Request, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(content); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	req := httptest.NewRequest(http.MethodPost, url, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req, nil
}

// DecodeAPIResponse 解码统一响应结构并断言HTTP状态码
func (h *HTTPTestHelper) DecodeAPIResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int) map[string]interface{} {
	assert.Equal(t, expectedStatus, w.Code)
	var payload map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &payload)
	assert.NoError(t, err)
	return payload
}
