/*
 * @module service/anomaly/ml_models
 * @description 机器学习离群检测器，实现隔离森林与局部离群因子（LOF）两种模型
 * @architecture 分层架构 - 检测引擎层
 * @documentReference ai_docs/anomaly_detection_design.md
 * @stateFlow 构建特征矩阵（列均值填补缺失）-> 标准化 -> 两模型独立评分 -> 合并行索引
 * @rules 至少需要2个数值列和最低行数，不满足时返回跳过结果；
 *        随机源由固定种子驱动，相同输入与配置下输出逐位一致
 * @dependencies math, math/rand, sort
 * @refs statistical.go, detector.go
 */

package anomaly

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"dataquality-service/service/models"
)

// 机器学习检测默认参数
const (
	DefaultContamination = 0.1
	DefaultLOFNeighbors  = 20
	DefaultLOFThreshold  = 1.5
	DefaultEstimators    = 100
	DefaultMinMLRows     = 10
	DefaultMinMLColumns  = 2
	DefaultSeed          = 42

	isolationSubsample = 256
)

// MLOptions 机器学习检测参数
type MLOptions struct {
	Contamination float64
	LOFNeighbors  int
	LOFThreshold  float64
	Estimators    int
	MinRows       int
	MinColumns    int
	Seed          int64
}

// DefaultMLOptions 返回默认参数
func DefaultMLOptions() MLOptions {
	return MLOptions{
		Contamination: DefaultContamination,
		LOFNeighbors:  DefaultLOFNeighbors,
		LOFThreshold:  DefaultLOFThreshold,
		Estimators:    DefaultEstimators,
		MinRows:       DefaultMinMLRows,
		MinColumns:    DefaultMinMLColumns,
		Seed:          DefaultSeed,
	}
}

// DetectML 运行两种机器学习模型检测离群行
// 特征矩阵覆盖全部数值列，缺失单元格以列均值填补以保持行索引对齐
func DetectML(ds *models.Dataset, profile *models.ColumnProfile, opts MLOptions) (*models.MLResult, []models.DetectionFinding) {
	result := &models.MLResult{
		IsolationForest: models.MLMethodResult{Model: "isolation_forest", Rows: models.NewIndexSet()},
		LOF:             models.MLMethodResult{Model: "lof", Rows: models.NewIndexSet()},
		Combined:        make(map[int]bool),
		Rows:            models.NewIndexSet(),
	}
	findings := make([]models.DetectionFinding, 0)

	if len(profile.NumericColumns) < opts.MinColumns {
		result.Skipped = true
		result.SkipReason = fmt.Sprintf("数值列不足（%d < %d），机器学习检测不适用", len(profile.NumericColumns), opts.MinColumns)
		return result, findings
	}
	if ds.RowCount() < opts.MinRows {
		result.Skipped = true
		result.SkipReason = fmt.Sprintf("数据行数不足（%d < %d），机器学习检测不适用", ds.RowCount(), opts.MinRows)
		return result, findings
	}

	matrix := buildFeatureMatrix(ds, profile.NumericColumns)
	standardize(matrix)
	result.FeatureColumns = profile.NumericColumns

	rng := rand.New(rand.NewSource(opts.Seed))
	for _, idx := range isolationForestOutliers(matrix, opts.Estimators, opts.Contamination, rng) {
		result.IsolationForest.Rows.Add(idx)
		findings = append(findings, models.DetectionFinding{
			RowIndex: idx,
			Category: models.CategoryMLOutlier,
			Detail:   "isolation_forest",
		})
	}
	for _, idx := range lofOutliers(matrix, opts.LOFNeighbors, opts.LOFThreshold) {
		result.LOF.Rows.Add(idx)
		findings = append(findings, models.DetectionFinding{
			RowIndex: idx,
			Category: models.CategoryMLOutlier,
			Detail:   "lof",
		})
	}

	result.IsolationForest.Count = result.IsolationForest.Rows.Len()
	result.LOF.Count = result.LOF.Rows.Len()
	result.Rows.Union(result.IsolationForest.Rows)
	result.Rows.Union(result.LOF.Rows)
	for i := 0; i < ds.RowCount(); i++ {
		result.Combined[i] = result.Rows.Has(i)
	}
	return result, findings
}

// buildFeatureMatrix 构建 n×d 特征矩阵，缺失或不可解析的单元格填列均值
func buildFeatureMatrix(ds *models.Dataset, columns []string) [][]float64 {
	n := ds.RowCount()
	d := len(columns)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, d)
	}

	for j, col := range columns {
		sum := 0.0
		count := 0
		parsed := make([]bool, n)
		for i, row := range ds.Rows {
			if f, ok := ParseNumeric(row[col]); ok {
				matrix[i][j] = f
				parsed[i] = true
				sum += f
				count++
			}
		}
		mean := 0.0
		if count > 0 {
			mean = sum / float64(count)
		}
		for i := 0; i < n; i++ {
			if !parsed[i] {
				matrix[i][j] = mean
			}
		}
	}
	return matrix
}

// standardize 逐列标准化（减均值除总体标准差），标准差为零的列置零
func standardize(matrix [][]float64) {
	if len(matrix) == 0 {
		return
	}
	n := len(matrix)
	d := len(matrix[0])
	for j := 0; j < d; j++ {
		sum := 0.0
		for i := 0; i < n; i++ {
			sum += matrix[i][j]
		}
		mean := sum / float64(n)
		varSum := 0.0
		for i := 0; i < n; i++ {
			diff := matrix[i][j] - mean
			varSum += diff * diff
		}
		std := math.Sqrt(varSum / float64(n))
		for i := 0; i < n; i++ {
			if std == 0 {
				matrix[i][j] = 0
			} else {
				matrix[i][j] = (matrix[i][j] - mean) / std
			}
		}
	}
}

// isoNode 隔离树节点
type isoNode struct {
	feature int
	split   float64
	left    *isoNode
	right   *isoNode
	size    int
}

// isolationForestOutliers 隔离森林：随机划分树的平均路径越短越异常
// 按污染率取评分最高的前若干行，评分并列时按行索引升序
func isolationForestOutliers(matrix [][]float64, estimators int, contamination float64, rng *rand.Rand) []int {
	n := len(matrix)
	flagCount := int(contamination * float64(n))
	if flagCount <= 0 || n == 0 {
		return nil
	}

	sampleSize := isolationSubsample
	if sampleSize > n {
		sampleSize = n
	}
	maxDepth := int(math.Ceil(math.Log2(float64(sampleSize))))

	trees := make([]*isoNode, estimators)
	for t := 0; t < estimators; t++ {
		sample := rng.Perm(n)[:sampleSize]
		trees[t] = buildIsoTree(matrix, sample, 0, maxDepth, rng)
	}

	norm := averagePathLength(sampleSize)
	scores := make([]float64, n)
	for i := 0; i < n; i++ {
		total := 0.0
		for _, tree := range trees {
			total += pathLength(tree, matrix[i], 0)
		}
		avg := total / float64(estimators)
		scores[i] = math.Pow(2, -avg/norm)
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		if scores[order[a]] != scores[order[b]] {
			return scores[order[a]] > scores[order[b]]
		}
		return order[a] < order[b]
	})

	out := make([]int, flagCount)
	copy(out, order[:flagCount])
	sort.Ints(out)
	return out
}

// buildIsoTree 递归构建隔离树，特征和切分点均随机选取
func buildIsoTree(matrix [][]float64, sample []int, depth, maxDepth int, rng *rand.Rand) *isoNode {
	if len(sample) <= 1 || depth >= maxDepth {
		return &isoNode{size: len(sample)}
	}

	d := len(matrix[0])
	feature := rng.Intn(d)
	minVal, maxVal := math.Inf(1), math.Inf(-1)
	for _, idx := range sample {
		v := matrix[idx][feature]
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if minVal == maxVal {
		return &isoNode{size: len(sample)}
	}

	split := minVal + rng.Float64()*(maxVal-minVal)
	left := make([]int, 0, len(sample))
	right := make([]int, 0, len(sample))
	for _, idx := range sample {
		if matrix[idx][feature] < split {
			left = append(left, idx)
		} else {
			right = append(right, idx)
		}
	}

	return &isoNode{
		feature: feature,
		split:   split,
		left:    buildIsoTree(matrix, left, depth+1, maxDepth, rng),
		right:   buildIsoTree(matrix, right, depth+1, maxDepth, rng),
		size:    len(sample),
	}
}

// pathLength 计算样本点在隔离树中的路径长度，叶节点按剩余样本数补偿
func pathLength(node *isoNode, point []float64, depth int) float64 {
	if node.left == nil && node.right == nil {
		return float64(depth) + averagePathLength(node.size)
	}
	if point[node.feature] < node.split {
		return pathLength(node.left, point, depth+1)
	}
	return pathLength(node.right, point, depth+1)
}

// averagePathLength 二叉搜索失败查找的平均路径长度 c(n)
func averagePathLength(n int) float64 {
	if n <= 1 {
		return 0
	}
	if n == 2 {
		return 1
	}
	h := math.Log(float64(n-1)) + 0.5772156649
	return 2*h - 2*float64(n-1)/float64(n)
}

// lofOutliers 局部离群因子：局部密度显著低于近邻密度的点视为离群
func lofOutliers(matrix [][]float64, neighbors int, threshold float64) []int {
	n := len(matrix)
	if n < 2 {
		return nil
	}
	k := neighbors
	if k > n-1 {
		k = n - 1
	}
	if k < 1 {
		k = 1
	}

	// 每个点的k近邻（按距离升序，距离相同按行索引升序，保证确定性）
	type neighborDist struct {
		index int
		dist  float64
	}
	knn := make([][]neighborDist, n)
	kDist := make([]float64, n)
	for i := 0; i < n; i++ {
		dists := make([]neighborDist, 0, n-1)
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			dists = append(dists, neighborDist{index: j, dist: euclidean(matrix[i], matrix[j])})
		}
		sort.SliceStable(dists, func(a, b int) bool {
			if dists[a].dist != dists[b].dist {
				return dists[a].dist < dists[b].dist
			}
			return dists[a].index < dists[b].index
		})
		knn[i] = dists[:k]
		kDist[i] = dists[k-1].dist
	}

	// 局部可达密度
	lrd := make([]float64, n)
	for i := 0; i < n; i++ {
		sum := 0.0
		for _, nb := range knn[i] {
			reach := nb.dist
			if kDist[nb.index] > reach {
				reach = kDist[nb.index]
			}
			sum += reach
		}
		if sum == 0 {
			lrd[i] = math.Inf(1)
		} else {
			lrd[i] = float64(k) / sum
		}
	}

	out := make([]int, 0)
	for i := 0; i < n; i++ {
		// 自身处于重合点簇（密度无穷大）的点不可能是局部离群点
		if math.IsInf(lrd[i], 1) {
			continue
		}
		sum := 0.0
		for _, nb := range knn[i] {
			sum += lrd[nb.index]
		}
		factor := sum / (float64(len(knn[i])) * lrd[i])
		if factor > threshold {
			out = append(out, i)
		}
	}
	return out
}

// euclidean 欧氏距离
func euclidean(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
