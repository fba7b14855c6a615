package recommend

import "github.com/KaramelBytes/dataloom-cli/internal/chart"

// rule maps a detected condition to the chart kinds it favours.
type rule struct {
	name  string
	kinds []chart.Kind
}

// Weights added per matching rule.
const (
	patternWeight        = 3
	intentWeight         = 2
	characteristicWeight = 1
)

var patternRules = []rule{
	{"single_numeric", []chart.Kind{chart.Histogram, chart.Distplot, chart.Box, chart.ECDF}},
	{"two_numeric", []chart.Kind{chart.Scatter, chart.Line, chart.DensityContour, chart.DensityHeatmap}},
	{"multiple_numeric", []chart.Kind{chart.Heatmap, chart.ParallelCoordinates, chart.Radar, chart.Scatter3D}},
	{"single_categorical", []chart.Kind{chart.Pie, chart.Bar, chart.Funnel, chart.Treemap}},
	{"cat_vs_numeric", []chart.Kind{chart.Bar, chart.Box, chart.Violin, chart.Strip}},
	{"time_series", []chart.Kind{chart.Line, chart.Area, chart.Candlestick, chart.Waterfall}},
	{"hierarchical", []chart.Kind{chart.Treemap, chart.Sunburst}},
	{"financial", []chart.Kind{chart.Candlestick, chart.OHLC, chart.Waterfall}},
}

// intentRule pairs question keywords with the kinds suited to that analysis.
type intentRule struct {
	rule
	keywords []string
}

var intentRules = []intentRule{
	{rule{"distribution", []chart.Kind{chart.Histogram, chart.Distplot, chart.Box, chart.Violin, chart.ECDF}},
		[]string{"분포", "distribution", "histogram", "spread", "범위"}},
	{rule{"comparison", []chart.Kind{chart.Bar, chart.Line, chart.Radar, chart.ParallelCoordinates}},
		[]string{"비교", "compare", "차이", "difference", "vs", "versus"}},
	{rule{"correlation", []chart.Kind{chart.Scatter, chart.Heatmap, chart.DensityContour}},
		[]string{"상관관계", "correlation", "관계", "relationship", "연관"}},
	{rule{"trend", []chart.Kind{chart.Line, chart.Area, chart.Waterfall}},
		[]string{"트렌드", "trend", "변화", "change", "시간", "time", "추이"}},
	{rule{"proportion", []chart.Kind{chart.Pie, chart.Treemap, chart.Sunburst, chart.Funnel}},
		[]string{"비율", "proportion", "percentage", "구성", "composition"}},
	{rule{"ranking", []chart.Kind{chart.Bar, chart.Funnel}},
		[]string{"순위", "rank", "top", "bottom", "highest", "lowest"}},
	{rule{"outlier", []chart.Kind{chart.Box, chart.Violin, chart.Scatter}},
		[]string{"이상치", "outlier", "이상", "특이", "extreme"}},
}

var characteristicRules = []rule{
	{"small_dataset", []chart.Kind{chart.Scatter, chart.Line, chart.Bar, chart.Box}},
	{"large_dataset", []chart.Kind{chart.Histogram, chart.Heatmap, chart.DensityHeatmap}},
	{"high_cardinality", []chart.Kind{chart.Histogram}},
	{"low_cardinality", []chart.Kind{chart.Pie, chart.Bar, chart.Funnel}},
	{"many_dimensions", []chart.Kind{chart.ParallelCoordinates, chart.Radar, chart.Heatmap}},
}

// Thresholds for data characteristics.
const (
	smallRows       = 100
	largeRows       = 10000
	highCardinality = 0.8
	lowCardinality  = 0.1
	manyDimensions  = 5
)

var (
	hierarchyKeywords = []string{"parent", "category", "group"}
	financeKeywords   = []string{"open", "high", "low", "close", "volume", "price"}
)

var rationales = map[chart.Kind]string{
	chart.Scatter: "두 수치형 변수 간의 상관관계를 시각화하기에 이상적",
	chart.Bar:     "카테고리별 비교 분석에 가장 직관적이고 효과적",
	chart.Line:    "시계열 데이터나 연속적인 변화 추이를 보기에 최적",
	chart.Pie:     "전체에서 각 부분이 차지하는 비율을 한눈에 파악하기 좋음",
	chart.Box:     "데이터의 분포, 중위값, 사분위수, 이상치를 한 번에 확인 가능",
	chart.Violin:  "박스플롯보다 더 상세한 분포 형태를 보여주는 고급 통계 차트",
	chart.Heatmap: "다수의 변수 간 상관관계를 색상으로 직관적으로 표현",
	chart.Treemap: "계층적 데이터를 면적으로 표현하여 비율과 구조를 동시에 파악",
	chart.Radar:   "다차원 데이터를 한 눈에 비교 분석하기에 적합",
}

var useCases = map[chart.Kind][]string{
	chart.Histogram:  {"데이터 분포 확인", "이상치 탐지", "정규성 검정"},
	chart.Scatter:    {"상관관계 분석", "회귀분석 시각화", "클러스터링 확인"},
	chart.Bar:        {"카테고리별 비교", "순위 분석", "집계 결과 표시"},
	chart.Line:       {"시계열 트렌드 분석", "성장률 추적", "예측 모델 결과"},
	chart.Pie:        {"구성 비율 분석", "시장 점유율", "예산 배분"},
	chart.Box:        {"통계 요약", "그룹간 분포 비교", "이상치 식별"},
	chart.Heatmap:    {"상관행렬 시각화", "패턴 탐지", "히트 분석"},
	chart.Treemap:    {"계층적 비율", "포트폴리오 분석", "조직도"},
	chart.Radar:      {"다차원 성능 비교", "프로필 분석", "균형도 평가"},
	chart.Choropleth: {"지역별 데이터 분포", "국가별 통계", "행정구역별 분석"},
	chart.ScatterGeo: {"위치 기반 분석", "지리적 클러스터링", "GPS 데이터 시각화"},
}

var defaultUseCases = []string{"데이터 시각화"}
