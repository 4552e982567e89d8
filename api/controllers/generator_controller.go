/*
 * @module api/controllers/generator_controller
 * @description 演示数据控制器，生成带人为错误的保险理赔数据并写入缓存
 * @architecture MVC架构 - 控制器层
 * @documentReference ai_docs/anomaly_detection_design.md
 * @stateFlow 生成数据 -> 标准化 -> 摘要 -> 写入缓存 -> 可选落盘CSV
 * @rules num_rows限制在1000-5000之间，error_rate限制在0-1之间
 * @dependencies net/http, os, path/filepath
 * @refs service/generator, service/cache
 */

package controllers

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/render"
	"github.com/spf13/cast"

	"dataquality-service/service"
	"dataquality-service/service/cache"
	"dataquality-service/service/generator"
	"dataquality-service/service/models"
)

const (
	defaultMockRows = 3000
	minMockRows     = 1000
	maxMockRows     = 5000
)

// GeneratorController 演示数据控制器
type GeneratorController struct {
	cache     *cache.ResultCache
	generator *generator.Generator
}

// NewGeneratorController 创建演示数据控制器实例
func NewGeneratorController() *GeneratorController {
	return &GeneratorController{
		cache:     service.GlobalCache,
		generator: service.GlobalGenerator,
	}
}

// GenerateResponse 演示数据接口响应数据
type GenerateResponse struct {
	CacheKey  string      `json:"cache_key"`
	RowCount  int         `json:"row_count"`
	ErrorRate float64     `json:"error_rate"`
	FilePath  string      `json:"file_path,omitempty"`
	Summary   interface{} `json:"summary"`
}

// Generate 生成演示数据集
// @Summary 生成演示数据集
// @Description 生成带人为错误的保险理赔数据集并写入缓存，可直接用于检测演示
// @Tags 数据集
// @Produce json
// @Param num_rows query int false "行数，1000-5000" default(3000)
// @Param error_rate query number false "错误注入比例，0-1" default(0.15)
// @Success 200 {object} APIResponse{data=GenerateResponse}
// @Failure 500 {object} APIResponse
// @Router /api/generate-mock-data [post]
func (c *GeneratorController) Generate(w http.ResponseWriter, r *http.Request) {
	numRows := cast.ToInt(r.URL.Query().Get("num_rows"))
	if numRows == 0 {
		numRows = defaultMockRows
	}
	if numRows < minMockRows {
		numRows = minMockRows
	}
	if numRows > maxMockRows {
		numRows = maxMockRows
	}

	errorRate := 0.15
	if raw := r.URL.Query().Get("error_rate"); raw != "" {
		errorRate = cast.ToFloat64(raw)
		if errorRate < 0 {
			errorRate = 0
		}
		if errorRate > 1 {
			errorRate = 1
		}
	}

	ds := c.generator.Generate(numRows, errorRate)
	prepared := service.GlobalLoader.PrepareForAnalysis(ds)
	summary := service.GlobalLoader.Summary(prepared)
	validation := service.GlobalExtractor.ValidateFormat(prepared)

	entry := &cache.DatasetEntry{
		Dataset:     prepared,
		Summary:     summary,
		ColumnTypes: validation.ColumnTypes,
		Warnings:    validation.Warnings,
		CreatedAt:   time.Now(),
	}
	key, err := c.cache.PutDataset(r.Context(), entry)
	if err != nil {
		render.JSON(w, r, InternalErrorResponse("演示数据缓存写入失败", err))
		return
	}

	filePath := c.exportCSV(ds)

	slog.Info("演示数据生成成功", "cache_key", key, "rows", numRows, "error_rate", errorRate)

	render.JSON(w, r, SuccessResponse("演示数据生成成功", GenerateResponse{
		CacheKey:  key,
		RowCount:  numRows,
		ErrorRate: errorRate,
		FilePath:  filePath,
		Summary:   summary,
	}))
}

// exportCSV 将生成的数据落盘，失败只记录日志不影响接口结果
func (c *GeneratorController) exportCSV(ds *models.Dataset) string {
	dir := os.Getenv("DATA_DIR")
	if dir == "" {
		dir = "./data"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		slog.Warn("创建数据目录失败", "dir", dir, "error", err)
		return ""
	}

	path := filepath.Join(dir, "mock_data.csv")
	f, err := os.Create(path)
	if err != nil {
		slog.Warn("创建CSV文件失败", "path", path, "error", err)
		return ""
	}
	defer f.Close()

	if err := c.generator.WriteCSV(ds, f); err != nil {
		slog.Warn("写出CSV文件失败", "path", path, "error", err)
		return ""
	}
	return path
}
