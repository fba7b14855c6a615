package recommend

import (
	"strings"

	"github.com/KaramelBytes/dataloom-cli/internal/chart"
	"github.com/KaramelBytes/dataloom-cli/internal/utils"
)

// MaxFollowUps caps the number of suggested follow-up questions.
const MaxFollowUps = 4

var (
	categoricalHints = []string{"country", "region", "type", "category", "status", "method"}
	numericHints     = []string{"amount", "value", "price", "count", "number", "rate"}

	regionTerms  = []string{"country", "국가", "region"}
	failureTerms = []string{"실패", "fail", "error", "problem"}
	revenueTerms = []string{"매출", "revenue", "sales", "amount"}
)

var chartFollowUps = map[chart.Kind][]string{
	chart.Pie: {
		"다른 카테고리별로도 분석해주세요",
		"이 데이터를 막대 차트로도 보여주세요",
		"상위 5개 항목만 따로 분석해주세요",
	},
	chart.Bar: {
		"이 데이터의 트렌드를 선 그래프로 보여주세요",
		"비율로 파이 차트를 만들어주세요",
		"평균값과 비교해서 분석해주세요",
	},
	chart.Line: {
		"이 트렌드의 원인을 분석해주세요",
		"다른 변수와의 상관관계를 확인해주세요",
		"계절성 패턴이 있는지 분석해주세요",
	},
	chart.Scatter: {
		"상관관계의 강도를 수치로 보여주세요",
		"이상치(outlier)를 식별해주세요",
		"회귀 분석을 수행해주세요",
	},
}

var genericFollowUps = []string{
	"이 결과에서 가장 중요한 인사이트는 무엇인가요?",
	"비즈니스 관점에서 어떤 액션을 취해야 할까요?",
	"이상 패턴이나 특이사항이 있나요?",
}

// FollowUps suggests up to MaxFollowUps questions to ask after a chart of
// kind was drawn for question. Column names are guessed as categorical or
// numeric from their wording.
func FollowUps(question string, columns []string, kind chart.Kind) []string {
	q := utils.NormalizeQuestion(question)
	var out []string
	out = append(out, chartFollowUps[kind]...)

	if containsSub(q, regionTerms) {
		out = append(out, "지역별 성과를 시간에 따라 분석해주세요", "가장 성과가 좋은/나쁜 지역은 어디인가요?")
	}
	if containsSub(q, failureTerms) {
		out = append(out, "실패 원인별로 분석해주세요", "실패율이 높은 시간대는 언제인가요?")
	}
	if containsSub(q, revenueTerms) {
		out = append(out, "월별 매출 성장률을 계산해주세요", "매출 구간별 고객 분포를 보여주세요")
	}

	var catCol, numCol string
	for _, c := range columns {
		lower := strings.ToLower(c)
		switch {
		case containsSub(lower, categoricalHints):
			if catCol == "" {
				catCol = c
			}
		case containsSub(lower, numericHints):
			if numCol == "" {
				numCol = c
			}
		}
	}
	if catCol != "" {
		out = append(out, catCol+" 별 상세 분석을 해주세요")
	}
	if numCol != "" {
		out = append(out, numCol+"의 통계적 분포를 분석해주세요")
	}
	out = append(out, genericFollowUps...)
	return dedupe(out, MaxFollowUps)
}

// containsSub matches plain substrings so "failed" counts as "fail".
func containsSub(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func dedupe(in []string, limit int) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, limit)
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
		if len(out) == limit {
			break
		}
	}
	return out
}
