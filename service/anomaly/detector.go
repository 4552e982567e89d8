/*
 * @module service/anomaly/detector
 * @description 异常检测编排器，按依赖顺序调度各检测器并合并为统一报告
 * @architecture 分层架构 - 检测引擎层
 * @documentReference ai_docs/anomaly_detection_design.md
 * @stateFlow 列分类 -> 规则检测（重复/缺失/不一致）-> 离群检测（统计/机器学习并行）-> 按行索引合并汇总
 * @rules 引擎是不可变快照上的纯批量计算；子检测器不适用时记录跳过原因而非中止整个分析；
 *        仅调用方契约违例（类型映射与数据集列不一致）快速失败
 * @dependencies log/slog, sync, time
 * @refs classifier.go, duplicates.go, missing.go, inconsistency.go, statistical.go, ml_models.go
 */

package anomaly

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"dataquality-service/service/models"
)

// Options 检测引擎可覆盖的全部阈值参数
type Options struct {
	TypeThreshold   float64
	ZScoreThreshold float64
	IQRMultiplier   float64
	ML              MLOptions
}

// DefaultOptions 返回默认阈值参数
func DefaultOptions() Options {
	return Options{
		TypeThreshold:   DefaultTypeThreshold,
		ZScoreThreshold: DefaultZScoreThreshold,
		IQRMultiplier:   DefaultIQRMultiplier,
		ML:              DefaultMLOptions(),
	}
}

// Detector 异常检测编排器
type Detector struct {
	opts Options
	now  func() time.Time
}

// NewDetector 创建指定参数的检测编排器
func NewDetector(opts Options) *Detector {
	return &Detector{opts: opts, now: time.Now}
}

// NewDefaultDetector 创建默认参数的检测编排器
func NewDefaultDetector() *Detector {
	return NewDetector(DefaultOptions())
}

// Classify 对数据集执行列分类
func (d *Detector) Classify(ds *models.Dataset) *models.ColumnProfile {
	return ClassifyColumns(ds, d.opts.TypeThreshold)
}

// DetectAll 运行全部检测并合并为统一报告
// profile 为 nil 时自动执行列分类；profile 与数据集列不一致视为调用方契约违例
func (d *Detector) DetectAll(ds *models.Dataset, profile *models.ColumnProfile) (*models.AnomalyReport, error) {
	start := time.Now()
	defer func() {
		detectionRuns.Inc()
		detectionDuration.Observe(time.Since(start).Seconds())
	}()

	if ds == nil || ds.IsEmpty() {
		return emptyReport(ds), nil
	}
	if profile == nil {
		profile = d.Classify(ds)
	} else if err := validateProfile(ds, profile); err != nil {
		return nil, err
	}

	report := &models.AnomalyReport{
		Findings: make([]models.DetectionFinding, 0),
		Notes:    make([]string, 0),
	}

	var dupFindings, missFindings, inconFindings []models.DetectionFinding
	report.Duplicates, dupFindings = DetectDuplicates(ds, profile)
	report.MissingValues, missFindings = DetectMissingValues(ds)
	report.Inconsistencies, inconFindings = DetectInconsistencies(ds, profile, d.now())

	// 统计与机器学习检测仅依赖数值列集合，互不依赖，可并行执行
	var statFindings, mlFindings []models.DetectionFinding
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		report.Statistical, statFindings = DetectStatistical(ds, profile, d.opts.ZScoreThreshold, d.opts.IQRMultiplier)
	}()
	go func() {
		defer wg.Done()
		report.ML, mlFindings = DetectML(ds, profile, d.opts.ML)
	}()
	wg.Wait()

	report.Findings = append(report.Findings, dupFindings...)
	report.Findings = append(report.Findings, missFindings...)
	report.Findings = append(report.Findings, inconFindings...)
	report.Findings = append(report.Findings, statFindings...)
	report.Findings = append(report.Findings, mlFindings...)

	collectSkipNotes(report)
	mergeSummary(ds, report)
	observeCategories(report)

	slog.Info("异常检测完成",
		"total_rows", report.Summary.TotalRows,
		"total_anomalies", report.Summary.TotalAnomalies,
		"anomaly_rate", report.Summary.AnomalyRate,
		"duration_ms", time.Since(start).Milliseconds())
	return report, nil
}

// AnomalyRows 按报告提取异常行本身，供展示层渲染
func AnomalyRows(ds *models.Dataset, report *models.AnomalyReport) []models.Row {
	rows := make([]models.Row, 0, len(report.Summary.AnomalyIndices))
	for _, idx := range report.Summary.AnomalyIndices {
		if idx >= 0 && idx < ds.RowCount() {
			rows = append(rows, ds.Rows[idx])
		}
	}
	return rows
}

// validateProfile 校验调用方提供的列类型映射与数据集列一致
func validateProfile(ds *models.Dataset, profile *models.ColumnProfile) error {
	if len(profile.Types) != ds.ColumnCount() {
		return fmt.Errorf("列类型映射与数据集不一致: 映射含%d列, 数据集含%d列", len(profile.Types), ds.ColumnCount())
	}
	for _, col := range ds.Columns {
		if _, ok := profile.Types[col]; !ok {
			return fmt.Errorf("列类型映射缺少数据集列: %s", col)
		}
	}
	return nil
}

// emptyReport 空数据集的平凡报告：全部类别为空并附顶层说明
func emptyReport(ds *models.Dataset) *models.AnomalyReport {
	report := &models.AnomalyReport{
		Duplicates: &models.DuplicateResult{
			Skipped:           true,
			SkipReason:        "数据集为空",
			DuplicateIDRows:   models.NewIndexSet(),
			DuplicateFullRows: models.NewIndexSet(),
		},
		MissingValues: &models.MissingValueResult{
			PerColumn:   make(map[string]int),
			MissingRows: models.NewIndexSet(),
		},
		Inconsistencies: &models.InconsistencyResult{
			Records: make([]models.InconsistencyRecord, 0),
			Rows:    models.NewIndexSet(),
		},
		Statistical: &models.StatisticalResult{
			Skipped:    true,
			SkipReason: "数据集为空",
			PerColumn:  make(map[string]models.MethodDetail),
			Combined:   make(map[int]bool),
			Rows:       models.NewIndexSet(),
		},
		ML: &models.MLResult{
			Skipped:         true,
			SkipReason:      "数据集为空",
			IsolationForest: models.MLMethodResult{Model: "isolation_forest", Rows: models.NewIndexSet()},
			LOF:             models.MLMethodResult{Model: "lof", Rows: models.NewIndexSet()},
			Combined:        make(map[int]bool),
			Rows:            models.NewIndexSet(),
		},
		Findings: make([]models.DetectionFinding, 0),
		Notes:    []string{"数据集为空，所有检测均未执行"},
	}
	report.Summary = models.DetectionSummary{
		TotalRows:      ds.RowCount(),
		TotalColumns:   ds.ColumnCount(),
		AnomalyIndices: make([]int, 0),
	}
	return report
}

// collectSkipNotes 将各子检测器的跳过原因提升为报告的结构化说明
func collectSkipNotes(report *models.AnomalyReport) {
	if report.Duplicates.Skipped {
		report.Notes = append(report.Notes, "duplicates skipped: "+report.Duplicates.SkipReason)
	}
	if report.Statistical.Skipped {
		report.Notes = append(report.Notes, "statistical skipped: "+report.Statistical.SkipReason)
	}
	if report.ML.Skipped {
		report.Notes = append(report.Notes, "ml skipped: "+report.ML.SkipReason)
	}
}

// mergeSummary 汇总各类别的行索引并集并计算派生统计量
// 每个类别按去重后的行数计数，一行被同类别多次命中仅计一次
func mergeSummary(ds *models.Dataset, report *models.AnomalyReport) {
	union := models.NewIndexSet()
	dupRows := report.Duplicates.Rows()
	union.Union(dupRows)
	union.Union(report.MissingValues.MissingRows)
	union.Union(report.Inconsistencies.Rows)
	union.Union(report.Statistical.Rows)
	union.Union(report.ML.Rows)

	summary := models.DetectionSummary{
		TotalRows:               ds.RowCount(),
		TotalColumns:            ds.ColumnCount(),
		TotalAnomalies:          union.Len(),
		AnomalyIndices:          union.Sorted(),
		DuplicateCount:          dupRows.Len(),
		MissingValueCount:       report.MissingValues.MissingRows.Len(),
		InconsistencyCount:      report.Inconsistencies.Rows.Len(),
		StatisticalOutlierCount: report.Statistical.Rows.Len(),
		MLOutlierCount:          report.ML.Rows.Len(),
	}
	if ds.RowCount() > 0 {
		summary.AnomalyRate = float64(union.Len()) / float64(ds.RowCount())
	}
	report.Summary = summary
}

// observeCategories 按类别上报异常行计数指标
func observeCategories(report *models.AnomalyReport) {
	anomalyRowsDetected.WithLabelValues(string(models.CategoryDuplicate)).Add(float64(report.Summary.DuplicateCount))
	anomalyRowsDetected.WithLabelValues(string(models.CategoryMissingValue)).Add(float64(report.Summary.MissingValueCount))
	anomalyRowsDetected.WithLabelValues(string(models.CategoryInconsistency)).Add(float64(report.Summary.InconsistencyCount))
	anomalyRowsDetected.WithLabelValues(string(models.CategoryStatisticalOutlier)).Add(float64(report.Summary.StatisticalOutlierCount))
	anomalyRowsDetected.WithLabelValues(string(models.CategoryMLOutlier)).Add(float64(report.Summary.MLOutlierCount))
}
