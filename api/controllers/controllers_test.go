/*
 * @module api/controllers/controllers_test
 * @description 控制器层的HTTP测试：上传、检测、结果查询与演示数据生成的完整链路
 * @architecture 集成测试
 */

package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataquality-service/testutil"
)

const sampleCSV = `claim_id,patient_name,dob,zip_code,claim_amount
C001,John Smith,1980-01-01,12345,100
C002,Jane Doe,1990-05-15,23456,110
C003,Bob Jones,1975-03-20,34567,105
C004,Alice Brown,1985-07-10,45678,95
C004,Carol White,1988-02-02,56789,5000
`

func uploadSample(t *testing.T) string {
	t.Helper()
	helper := testutil.NewHTTPTestHelper()
	req, err := helper.CreateCSVUploadRequest("/api/upload", "claims.csv", []byte(sampleCSV))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	NewDatasetController().Upload(w, req)

	payload := helper.DecodeAPIResponse(t, w, http.StatusOK)
	require.EqualValues(t, 0, payload["status"])
	data := payload["data"].(map[string]interface{})
	key := data["cache_key"].(string)
	require.NotEmpty(t, key)
	return key
}

func TestUpload(t *testing.T) {
	helper := testutil.NewHTTPTestHelper()

	t.Run("上传成功", func(t *testing.T) {
		req, err := helper.CreateCSVUploadRequest("/api/upload", "claims.csv", []byte(sampleCSV))
		require.NoError(t, err)

		w := httptest.NewRecorder()
		NewDatasetController().Upload(w, req)

		payload := helper.DecodeAPIResponse(t, w, http.StatusOK)
		assert.EqualValues(t, 0, payload["status"])
		data := payload["data"].(map[string]interface{})
		assert.EqualValues(t, 5, data["row_count"])
		assert.EqualValues(t, 5, data["column_count"])
		assert.NotNil(t, data["summary"])
	})

	t.Run("缺少文件字段", func(t *testing.T) {
		req, err := helper.CreateCSVUploadRequest("/api/upload", "claims.csv", []byte(sampleCSV))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "text/plain")

		w := httptest.NewRecorder()
		NewDatasetController().Upload(w, req)

		payload := helper.DecodeAPIResponse(t, w, http.StatusOK)
		assert.EqualValues(t, 400, payload["status"])
	})

	t.Run("空CSV返回400", func(t *testing.T) {
		req, err := helper.CreateCSVUploadRequest("/api/upload", "empty.csv", []byte("  "))
		require.NoError(t, err)

		w := httptest.NewRecorder()
		NewDatasetController().Upload(w, req)

		payload := helper.DecodeAPIResponse(t, w, http.StatusOK)
		assert.EqualValues(t, 400, payload["status"])
	})
}

func TestDetectAndResults(t *testing.T) {
	helper := testutil.NewHTTPTestHelper()
	key := uploadSample(t)

	t.Run("按键检测", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/detect?cache_key="+key, nil)
		w := httptest.NewRecorder()
		NewDetectionController().Detect(w, req)

		payload := helper.DecodeAPIResponse(t, w, http.StatusOK)
		require.EqualValues(t, 0, payload["status"])
		data := payload["data"].(map[string]interface{})
		assert.Equal(t, key, data["data_key"])

		report := data["report"].(map[string]interface{})
		summary := report["summary"].(map[string]interface{})
		// C004重复与5000离群至少涉及一行
		assert.Greater(t, summary["total_anomalies"].(float64), 0.0)
	})

	t.Run("缺省键使用最近上传", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/detect", nil)
		w := httptest.NewRecorder()
		NewDetectionController().Detect(w, req)

		payload := helper.DecodeAPIResponse(t, w, http.StatusOK)
		assert.EqualValues(t, 0, payload["status"])
	})

	t.Run("结果查询", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/results?cache_key="+key, nil)
		w := httptest.NewRecorder()
		NewDetectionController().GetResults(w, req)

		payload := helper.DecodeAPIResponse(t, w, http.StatusOK)
		require.EqualValues(t, 0, payload["status"])
		data := payload["data"].(map[string]interface{})
		assert.Equal(t, key, data["data_key"])
		assert.NotNil(t, data["report"])
	})

	t.Run("不存在的键返回404语义", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/detect?cache_key=data_missing", nil)
		w := httptest.NewRecorder()
		NewDetectionController().Detect(w, req)

		payload := helper.DecodeAPIResponse(t, w, http.StatusOK)
		assert.EqualValues(t, 404, payload["status"])
	})
}

func TestGenerateMockData(t *testing.T) {
	helper := testutil.NewHTTPTestHelper()
	t.Setenv("DATA_DIR", t.TempDir())

	req := httptest.NewRequest(http.MethodPost, "/api/generate-mock-data?num_rows=1200&error_rate=0.2", nil)
	w := httptest.NewRecorder()
	NewGeneratorController().Generate(w, req)

	payload := helper.DecodeAPIResponse(t, w, http.StatusOK)
	require.EqualValues(t, 0, payload["status"])
	data := payload["data"].(map[string]interface{})
	assert.EqualValues(t, 1200, data["row_count"])
	assert.InDelta(t, 0.2, data["error_rate"].(float64), 1e-9)
	assert.NotEmpty(t, data["cache_key"])
	assert.NotEmpty(t, data["file_path"])
}

func TestGenerateMockData_Clamped(t *testing.T) {
	helper := testutil.NewHTTPTestHelper()
	t.Setenv("DATA_DIR", t.TempDir())

	req := httptest.NewRequest(http.MethodPost, "/api/generate-mock-data?num_rows=99999&error_rate=5", nil)
	w := httptest.NewRecorder()
	NewGeneratorController().Generate(w, req)

	payload := helper.DecodeAPIResponse(t, w, http.StatusOK)
	require.EqualValues(t, 0, payload["status"])
	data := payload["data"].(map[string]interface{})
	assert.EqualValues(t, 5000, data["row_count"])
	assert.EqualValues(t, 1, data["error_rate"])
}

func TestHealthEndpoints(t *testing.T) {
	controller := NewHealthController()

	t.Run("健康检查", func(t *testing.T) {
		w := httptest.NewRecorder()
		controller.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"ok"`)
	})

	t.Run("就绪检查", func(t *testing.T) {
		w := httptest.NewRecorder()
		controller.Ready(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"ready"`)
	})
}
