/*
 * @module service/init
 * @description 服务初始化模块，负责缓存后端、检测引擎与ETL组件的初始化工作
 * @architecture 分层架构 - 服务层
 * @documentReference ai_docs/anomaly_detection_design.md
 * @stateFlow 应用启动时执行初始化流程，并启动缓存过期清理定时任务
 * @rules 确保所有依赖组件正常初始化后才提供API服务
 * @dependencies service/anomaly, service/cache, service/etl, service/generator
 * @refs api/controllers
 */

package service

import (
	"log"
	"os"
	"strconv"

	"dataquality-service/service/anomaly"
	"dataquality-service/service/cache"
	"dataquality-service/service/etl"
	"dataquality-service/service/generator"
)

var (
	GlobalCache       *cache.ResultCache
	GlobalDetector    *anomaly.Detector
	GlobalExtractor   *etl.Extractor
	GlobalTransformer *etl.Transformer
	GlobalLoader      *etl.Loader
	GlobalGenerator   *generator.Generator
)

func init() {
	initDetector()
	initETL()
	initCache()
	GlobalGenerator = generator.NewGenerator()
}

// initDetector 初始化检测引擎，支持环境变量覆盖阈值
func initDetector() {
	opts := anomaly.DefaultOptions()
	if val := os.Getenv("ZSCORE_THRESHOLD"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil && f > 0 {
			opts.ZScoreThreshold = f
		}
	}
	if val := os.Getenv("IQR_MULTIPLIER"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil && f > 0 {
			opts.IQRMultiplier = f
		}
	}
	if val := os.Getenv("ML_CONTAMINATION"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil && f > 0 && f < 1 {
			opts.ML.Contamination = f
		}
	}
	GlobalDetector = anomaly.NewDetector(opts)
	log.Println("检测引擎初始化成功")
}

// initETL 初始化ETL组件
func initETL() {
	GlobalExtractor = etl.NewExtractor()
	GlobalTransformer = etl.NewTransformer()
	GlobalLoader = etl.NewLoader()
}

// initCache 初始化结果缓存并启动过期清理任务
func initCache() {
	GlobalCache = cache.NewResultCache()
	if err := GlobalCache.StartCleanup(); err != nil {
		log.Fatalf("缓存清理任务启动失败: %v", err)
	}
	log.Println("结果缓存初始化成功")
}
