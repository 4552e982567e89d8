/*
 * @module api/controllers/detection_controller
 * @description 异常检测控制器，提供检测触发与结果查询功能
 * @architecture MVC架构 - 控制器层
 * @documentReference ai_docs/anomaly_detection_design.md
 * @stateFlow 读取缓存数据集 -> 执行五类检测 -> 结果写入缓存 -> 结果查询
 * @rules cache_key缺省时使用最近一次上传的数据集/最近一次检测结果
 * @dependencies net/http
 * @refs service/anomaly, service/cache
 */

package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"dataquality-service/service"
	"dataquality-service/service/anomaly"
	"dataquality-service/service/cache"
)

// DetectionController 异常检测控制器
type DetectionController struct {
	cache    *cache.ResultCache
	detector *anomaly.Detector
}

// NewDetectionController 创建异常检测控制器实例
func NewDetectionController() *DetectionController {
	return &DetectionController{
		cache:    service.GlobalCache,
		detector: service.GlobalDetector,
	}
}

// DetectResponse 检测接口响应数据
type DetectResponse struct {
	ResultKey string      `json:"result_key"`
	DataKey   string      `json:"data_key"`
	Report    interface{} `json:"report"`
}

// Detect 执行异常检测
// @Summary 执行异常检测
// @Description 对缓存中的数据集执行重复、缺失、不一致、统计离群与ML离群检测
// @Tags 异常检测
// @Produce json
// @Param cache_key query string false "数据集缓存键，缺省使用最近一次上传"
// @Success 200 {object} APIResponse{data=DetectResponse}
// @Failure 400 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Failure 500 {object} APIResponse
// @Router /api/detect [post]
func (c *DetectionController) Detect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	key := r.URL.Query().Get("cache_key")
	if key == "" {
		latest, ok, err := c.cache.LatestDatasetKey(ctx)
		if err != nil {
			render.JSON(w, r, InternalErrorResponse("读取最近数据集失败", err))
			return
		}
		if !ok {
			render.JSON(w, r, BadRequestResponse("尚无已上传的数据集，请先调用上传接口", nil))
			return
		}
		key = latest
	}

	entry, ok, err := c.cache.GetDataset(ctx, key)
	if err != nil {
		render.JSON(w, r, InternalErrorResponse("读取数据集缓存失败", err))
		return
	}
	if !ok {
		render.JSON(w, r, NotFoundResponse("数据集不存在或已过期", nil))
		return
	}

	report, err := c.detector.DetectAll(entry.Dataset, nil)
	if err != nil {
		render.JSON(w, r, InternalErrorResponse("异常检测执行失败", err))
		return
	}

	resultEntry := &cache.ResultEntry{
		DataKey:        key,
		Report:         report,
		AnomalyRecords: anomaly.AnomalyRows(entry.Dataset, report),
		CreatedAt:      time.Now(),
	}
	resultKey, err := c.cache.PutResult(ctx, resultEntry)
	if err != nil {
		render.JSON(w, r, InternalErrorResponse("检测结果缓存写入失败", err))
		return
	}

	slog.Info("异常检测完成", "data_key", key, "result_key", resultKey,
		"anomaly_rows", report.Summary.TotalAnomalies)

	render.JSON(w, r, SuccessResponse("异常检测完成", DetectResponse{
		ResultKey: resultKey,
		DataKey:   key,
		Report:    report,
	}))
}

// GetResults 查询检测结果
// @Summary 查询检测结果
// @Description 按缓存键查询检测结果，缺省返回最近一次检测结果；支持传入数据集键自动换算
// @Tags 异常检测
// @Produce json
// @Param cache_key query string false "结果缓存键或数据集缓存键，缺省使用最近一次检测"
// @Success 200 {object} APIResponse{data=cache.ResultEntry}
// @Failure 404 {object} APIResponse
// @Failure 500 {object} APIResponse
// @Router /api/results [get]
func (c *DetectionController) GetResults(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	key := r.URL.Query().Get("cache_key")
	if key == "" {
		latest, ok, err := c.cache.LatestResultKey(ctx)
		if err != nil {
			render.JSON(w, r, InternalErrorResponse("读取最近检测结果失败", err))
			return
		}
		if !ok {
			render.JSON(w, r, NotFoundResponse("尚无检测结果，请先调用检测接口", nil))
			return
		}
		key = latest
	}

	entry, ok, err := c.cache.GetResult(ctx, key)
	if err != nil {
		render.JSON(w, r, InternalErrorResponse("读取检测结果缓存失败", err))
		return
	}
	if !ok {
		render.JSON(w, r, NotFoundResponse("检测结果不存在或已过期", nil))
		return
	}

	render.JSON(w, r, SuccessResponse("获取检测结果成功", entry))
}
