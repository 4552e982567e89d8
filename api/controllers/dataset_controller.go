/*
 * @module api/controllers/dataset_controller
 * @description 数据集控制器，提供CSV文件上传、校验、标准化和缓存功能
 * @architecture MVC架构 - 控制器层
 * @documentReference ai_docs/anomaly_detection_design.md
 * @stateFlow 文件上传 -> 抽取 -> 校验 -> 标准化 -> 类型转换 -> 摘要 -> 写入缓存
 * @rules 上传失败返回400并附带校验问题列表；成功返回cache_key供后续检测使用
 * @dependencies net/http, mime/multipart
 * @refs service/etl, service/cache
 */

package controllers

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"dataquality-service/service"
	"dataquality-service/service/cache"
)

// 上传文件大小上限 50MB
const maxUploadSize = 50 << 20

// DatasetController 数据集控制器
type DatasetController struct {
	cache *cache.ResultCache
}

// NewDatasetController 创建数据集控制器实例
func NewDatasetController() *DatasetController {
	return &DatasetController{cache: service.GlobalCache}
}

// UploadResponse 上传接口响应数据
type UploadResponse struct {
	CacheKey    string      `json:"cache_key"`
	RowCount    int         `json:"row_count"`
	ColumnCount int         `json:"column_count"`
	Summary     interface{} `json:"summary"`
	ColumnTypes interface{} `json:"column_types"`
	Warnings    []string    `json:"warnings,omitempty"`
}

// Upload 上传CSV数据集
// @Summary 上传CSV数据集
// @Description 上传CSV文件，执行格式校验与标准化后写入缓存，返回cache_key
// @Tags 数据集
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV文件"
// @Success 200 {object} APIResponse{data=UploadResponse}
// @Failure 400 {object} APIResponse
// @Failure 500 {object} APIResponse
// @Router /api/upload [post]
func (c *DatasetController) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		render.JSON(w, r, BadRequestResponse("解析上传表单失败", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		render.JSON(w, r, BadRequestResponse("缺少上传文件字段file", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize+1))
	if err != nil {
		render.JSON(w, r, InternalErrorResponse("读取上传文件失败", err))
		return
	}
	if len(data) > maxUploadSize {
		render.JSON(w, r, BadRequestResponse("上传文件超过大小限制", nil))
		return
	}

	ds, err := service.GlobalExtractor.ExtractFromBytes(data, header.Filename)
	if err != nil {
		render.JSON(w, r, BadRequestResponse("CSV解析失败", err))
		return
	}

	validation := service.GlobalExtractor.ValidateFormat(ds)
	if !validation.Valid {
		render.JSON(w, r, BadRequestResponse("数据集校验失败", nil).withData(validation))
		return
	}

	transformed := service.GlobalTransformer.Transform(ds)
	prepared := service.GlobalLoader.PrepareForAnalysis(transformed)
	summary := service.GlobalLoader.Summary(prepared)

	entry := &cache.DatasetEntry{
		Dataset:     prepared,
		Summary:     summary,
		ColumnTypes: validation.ColumnTypes,
		Warnings:    validation.Warnings,
		CreatedAt:   time.Now(),
	}
	key, err := c.cache.PutDataset(r.Context(), entry)
	if err != nil {
		render.JSON(w, r, InternalErrorResponse("数据集缓存写入失败", err))
		return
	}

	slog.Info("数据集上传成功", "cache_key", key, "filename", header.Filename,
		"rows", prepared.RowCount(), "columns", prepared.ColumnCount())

	render.JSON(w, r, SuccessResponse("数据集上传成功", UploadResponse{
		CacheKey:    key,
		RowCount:    prepared.RowCount(),
		ColumnCount: prepared.ColumnCount(),
		Summary:     summary,
		ColumnTypes: validation.ColumnTypes,
		Warnings:    validation.Warnings,
	}))
}
