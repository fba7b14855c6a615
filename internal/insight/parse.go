package insight

import (
	"encoding/json"
	"strings"
)

type modelReply struct {
	Insights  []string `json:"insights"`
	Summary   string   `json:"summary"`
	FollowUps []string `json:"follow_up_questions"`
}

// ParseReply extracts the JSON reply from model output. It accepts a bare
// object, a fenced ```json block, or an object embedded in prose. A reply
// with neither insights nor a summary is rejected.
func ParseReply(content string) (insights []string, summary string, followUps []string, ok bool) {
	for _, candidate := range jsonCandidates(content) {
		var r modelReply
		if err := json.Unmarshal([]byte(candidate), &r); err != nil {
			continue
		}
		r.Insights = nonEmpty(r.Insights)
		r.Summary = strings.TrimSpace(r.Summary)
		if len(r.Insights) == 0 && r.Summary == "" {
			continue
		}
		return r.Insights, r.Summary, nonEmpty(r.FollowUps), true
	}
	return nil, "", nil, false
}

func jsonCandidates(s string) []string {
	s = strings.TrimSpace(s)
	out := []string{s}
	if i := strings.Index(s, "```"); i >= 0 {
		rest := s[i+3:]
		rest = strings.TrimPrefix(rest, "json")
		if j := strings.Index(rest, "```"); j >= 0 {
			out = append(out, strings.TrimSpace(rest[:j]))
		}
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		out = append(out, s[start:end+1])
	}
	return out
}

func nonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
