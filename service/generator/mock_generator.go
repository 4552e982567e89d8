/*
 * @module service/generator/mock_generator
 * @description 演示数据生成器，生成带人为错误的保险理赔数据集用于检测演示
 * @architecture 分层架构 - 工具服务层
 * @documentReference ai_docs/anomaly_detection_design.md
 * @stateFlow 生成基础数据 -> 按错误率注入重复/缺失/不一致/离群 -> 输出数据集或CSV
 * @rules 默认以当前时间为随机种子（演示数据有意非确定），测试使用注入种子保证可重现；
 *        注入比例：重复30%、缺失40%、不一致30%、离群20%（相对错误总量）
 * @dependencies encoding/csv, math/rand
 * @refs service/etl, api/controllers
 */

package generator

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand"
	"time"

	"dataquality-service/service/models"
)

// Columns 演示数据集的列顺序
var Columns = []string{
	"claim_id", "patient_name", "dob", "zip_code",
	"claim_date", "claim_amount", "payer_id",
	"diagnosis_code", "procedure_code",
}

var firstNames = []string{
	"John", "Jane", "Michael", "Sarah", "David", "Emily", "Robert", "Jessica",
	"William", "Ashley", "James", "Amanda", "Christopher", "Melissa", "Daniel",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis",
	"Rodriguez", "Martinez", "Hernandez", "Lopez", "Wilson", "Anderson", "Thomas",
}

// Generator 演示数据生成器
type Generator struct {
	rng *rand.Rand
}

// NewGenerator 创建以当前时间为种子的生成器
func NewGenerator() *Generator {
	return NewGeneratorWithSeed(time.Now().UnixNano())
}

// NewGeneratorWithSeed 创建指定种子的生成器
func NewGeneratorWithSeed(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Generate 生成指定行数的数据集并按错误率注入异常
func (g *Generator) Generate(numRows int, errorRate float64) *models.Dataset {
	if numRows <= 0 {
		numRows = 3000
	}
	if errorRate < 0 {
		errorRate = 0
	}
	if errorRate > 1 {
		errorRate = 1
	}

	ds := models.NewDataset(Columns)
	baseDate := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < numRows; i++ {
		yearsAgo := 18 + g.rng.Intn(63)
		dob := baseDate.AddDate(0, 0, -(yearsAgo*365 + g.rng.Intn(365)))
		claimDate := baseDate.AddDate(0, 0, g.rng.Intn(730))

		amount := g.rng.NormFloat64()*2000 + 5000
		if amount < 100 {
			amount = 100
		}

		ds.AppendRow(models.Row{
			"claim_id":       fmt.Sprintf("CLM%06d", i+1),
			"patient_name":   g.pick(firstNames) + " " + g.pick(lastNames),
			"dob":            dob.Format("2006-01-02"),
			"zip_code":       fmt.Sprintf("%05d", 10000+g.rng.Intn(90000)),
			"claim_date":     claimDate.Format("2006-01-02"),
			"claim_amount":   math.Round(amount*100) / 100,
			"payer_id":       fmt.Sprintf("PAY%03d", 1+g.rng.Intn(10)),
			"diagnosis_code": fmt.Sprintf("ICD%d.%d", 10+g.rng.Intn(90), 10+g.rng.Intn(90)),
			"procedure_code": fmt.Sprintf("CPT%05d", 10000+g.rng.Intn(90000)),
		})
	}

	g.injectDuplicates(ds, int(float64(numRows)*errorRate*0.3))
	g.injectMissing(ds, int(float64(numRows)*errorRate*0.4))
	g.injectInconsistencies(ds, int(float64(numRows)*errorRate*0.3))
	g.injectOutliers(ds, int(float64(numRows)*errorRate*0.2))
	return ds
}

// WriteCSV 将数据集写出为CSV
func (g *Generator) WriteCSV(ds *models.Dataset, w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(ds.Columns); err != nil {
		return fmt.Errorf("写出CSV表头失败: %w", err)
	}
	record := make([]string, len(ds.Columns))
	for _, row := range ds.Rows {
		for i, col := range ds.Columns {
			record[i] = models.CellString(row[col])
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("写出CSV数据行失败: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// injectDuplicates 将随机行的claim_id替换为其他行的claim_id
func (g *Generator) injectDuplicates(ds *models.Dataset, count int) {
	n := ds.RowCount()
	for _, idx := range g.sampleIndices(n, count) {
		source := g.rng.Intn(n)
		ds.Rows[idx]["claim_id"] = ds.Rows[source]["claim_id"]
	}
}

// injectMissing 随机置空部分字段
func (g *Generator) injectMissing(ds *models.Dataset, count int) {
	fields := []string{"zip_code", "dob", "patient_name", "payer_id", "diagnosis_code"}
	for _, idx := range g.sampleIndices(ds.RowCount(), count) {
		ds.Rows[idx][g.pick(fields)] = nil
	}
}

// injectInconsistencies 注入格式错误与逻辑错误
func (g *Generator) injectInconsistencies(ds *models.Dataset, count int) {
	for _, idx := range g.sampleIndices(ds.RowCount(), count) {
		switch g.rng.Intn(4) {
		case 0:
			ds.Rows[idx]["dob"] = fmt.Sprintf("%d/%d/%d", 1+g.rng.Intn(12), 1+g.rng.Intn(31), 1900+g.rng.Intn(121))
		case 1:
			ds.Rows[idx]["zip_code"] = g.pick([]string{"123", "123456789", "ABCDE", "12-34"})
		case 2:
			ds.Rows[idx]["patient_name"] = g.pick([]string{"12345", "John@Doe", "A", ""})
		case 3:
			ds.Rows[idx]["dob"] = time.Now().AddDate(1, 0, 0).Format("2006-01-02")
		}
	}
}

// injectOutliers 注入极端理赔金额（超高或负值）
func (g *Generator) injectOutliers(ds *models.Dataset, count int) {
	for _, idx := range g.sampleIndices(ds.RowCount(), count) {
		if g.rng.Float64() > 0.5 {
			ds.Rows[idx]["claim_amount"] = 100000 + g.rng.Float64()*900000
		} else {
			ds.Rows[idx]["claim_amount"] = -100 - g.rng.Float64()*9900
		}
	}
}

// sampleIndices 无放回抽取count个行索引
func (g *Generator) sampleIndices(n, count int) []int {
	if count > n {
		count = n
	}
	if count <= 0 {
		return nil
	}
	return g.rng.Perm(n)[:count]
}

// pick 随机选取切片元素
func (g *Generator) pick(options []string) string {
	return options[g.rng.Intn(len(options))]
}
