package insight

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/dataloom-cli/internal/analysis"
	"github.com/KaramelBytes/dataloom-cli/internal/strategy"
	"github.com/KaramelBytes/dataloom-cli/internal/utils"
)

const systemPrompt = "You are a senior data analyst. Provide two distinct types of content: " +
	"1) 'summary': a brief, direct answer to the user's question (2-3 sentences, no bullet points, no markdown headers). " +
	"2) 'insights': detailed analysis using markdown headings (## ###) and bullet points (-) with specific findings, " +
	"statistics and recommendations. Do not repeat the summary inside the insights. Answer in the language of the question."

const responseFormat = `RESPONSE FORMAT (JSON only):
{
  "insights": ["## 핵심 발견사항\n- ...", "### 주요 통계\n- ...", "### 세부 분석\n- ...", "### 실행 가능한 인사이트\n- ..."],
  "summary": "short direct answer",
  "follow_up_questions": ["...", "...", "..."]
}`

// BuildPrompt renders the analyst prompt for question. The data section is
// cut to budget tokens; budget <= 0 means no limit.
func BuildPrompt(question string, schema *analysis.Schema, d strategy.Decision, budget int) string {
	var data strings.Builder
	fmt.Fprintf(&data, "DATASET: %d records, %d columns\n", schema.Rows, len(schema.Columns))
	data.WriteString("COLUMNS:\n")
	for _, c := range schema.Columns {
		data.WriteString("- " + describeColumn(c) + "\n")
	}
	if len(schema.Samples) > 0 {
		data.WriteString("SAMPLE ROWS:\n")
		data.WriteString(strings.Join(schema.Names(), " | ") + "\n")
		for _, row := range schema.Samples {
			data.WriteString(strings.Join(row, " | ") + "\n")
		}
	}
	section := data.String()
	if budget > 0 {
		section = utils.TruncateToTokenLimit(section, budget)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Data analyst task: answer %q using the dataset below.\n\n", question)
	b.WriteString(section)
	b.WriteString("\n")
	fmt.Fprintf(&b, "CHART: %s\n", d.Kind)
	fmt.Fprintf(&b, "ANALYSIS FOCUS: %s\n", d.Focus)
	fmt.Fprintf(&b, "KEY COLUMNS: x=%s, y=%s\n\n", d.Columns.X, d.Columns.Y)
	b.WriteString(responseFormat)
	return b.String()
}

func describeColumn(c analysis.ColumnProfile) string {
	s := fmt.Sprintf("%s (%s", c.Name, c.Type)
	if c.Unit != "" {
		s += ", unit " + c.Unit
	}
	s += fmt.Sprintf(", %d unique, %d null)", c.Unique, c.Nulls)
	switch {
	case c.IsNumeric() && c.Count > 0:
		s += fmt.Sprintf(": mean %.4g, std %.4g, min %.4g, max %.4g", c.Mean, c.Std, c.Min, c.Max)
	case len(c.TopValues) > 0:
		parts := make([]string, len(c.TopValues))
		for i, tv := range c.TopValues {
			parts[i] = fmt.Sprintf("%s=%d", tv.Value, tv.Count)
		}
		s += ": top " + strings.Join(parts, ", ")
	}
	return s
}
