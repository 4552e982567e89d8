/*
 * @module api/routes
 * @description API路由配置模块，负责初始化和配置所有HTTP路由
 * @architecture RESTful API架构
 * @documentReference ai_docs/anomaly_detection_design.md
 * @stateFlow 无状态HTTP请求处理
 * @rules 遵循RESTful API设计规范，统一错误处理和响应格式
 * @dependencies github.com/go-chi/chi/v5, github.com/go-chi/cors, github.com/go-chi/render
 * @refs api/controllers
 */

package api

import (
	"dataquality-service/api/controllers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
)

// InitRoute 初始化所有API路由
func InitRoute(r *chi.Mux) {
	// 基础中间件
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	// CORS配置
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 健康检查
	healthController := controllers.NewHealthController()
	r.Get("/", healthController.Root)
	r.Get("/health", healthController.Health)
	r.Get("/ready", healthController.Ready)

	// 数据集与检测接口
	r.Route("/api", func(r chi.Router) {
		datasetController := controllers.NewDatasetController()
		detectionController := controllers.NewDetectionController()
		generatorController := controllers.NewGeneratorController()

		// CSV上传
		r.Post("/upload", datasetController.Upload)

		// 异常检测
		r.Post("/detect", detectionController.Detect)

		// 检测结果查询
		r.Get("/results", detectionController.GetResults)

		// 演示数据生成
		r.Post("/generate-mock-data", generatorController.Generate)
	})
}
