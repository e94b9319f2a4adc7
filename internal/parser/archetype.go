package parser

import (
	"hash/fnv"
	"strings"
)

// archetype is a recognizable document shape with a canonical section order.
type archetype struct {
	name     string
	keywords []string
	sections []string
}

// Ordered so that ties resolve to the earlier entry.
var archetypes = []archetype{
	{
		name: "investor_pitch",
		keywords: []string{
			"investor", "funding", "pitch", "valuation", "runway",
			"term sheet", "cap table", "seed round", "series a",
		},
		sections: []string{
			"Problem", "Solution", "Market", "Product",
			"Traction", "Business Model", "Team", "Ask",
		},
	},
	{
		name: "sop",
		keywords: []string{
			"sop", "standard operating", "procedure", "checklist",
			"step-by-step", "safety", "protocol",
		},
		sections: []string{
			"Purpose", "Scope", "Prerequisites", "Steps",
			"Quality Checks", "Escalation",
		},
	},
	{
		name: "sales_deck",
		keywords: []string{
			"sales", "pricing", "discount", "proposal", "customer",
			"roi", "case study",
		},
		sections: []string{
			"Challenge", "Approach", "Benefits", "Proof",
			"Pricing", "Next Steps",
		},
	},
	{
		name: "research_talk",
		keywords: []string{
			"research", "study", "experiment", "hypothesis", "dataset",
			"results", "conclusion", "methodology",
		},
		sections: []string{
			"Background", "Methods", "Results", "Discussion",
			"Limitations", "Future Work",
		},
	},
	{
		name: "lesson",
		keywords: []string{
			"lesson", "curriculum", "learning objectives", "homework",
			"quiz", "students",
		},
		sections: []string{
			"Objectives", "Concepts", "Examples", "Practice", "Recap",
		},
	},
}

// sectionHints maps a lowercase section title to keywords that pull a
// sentence into that section during bucketing.
var sectionHints = map[string][]string{
	"problem":        {"problem", "pain", "challenge", "gap"},
	"solution":       {"solution", "solve", "approach", "product"},
	"market":         {"market", "tam", "customers", "segment", "demand"},
	"product":        {"product", "feature", "platform", "technology"},
	"traction":       {"traction", "growth", "users", "revenue", "metrics"},
	"business model": {"model", "pricing", "monetize", "revenue"},
	"team":           {"team", "founder", "experience", "advisor"},
	"ask":            {"ask", "raise", "funding", "invest", "use of funds"},

	"purpose":        {"purpose", "goal", "objective"},
	"scope":          {"scope", "applies", "cover"},
	"prerequisites":  {"prerequisite", "require", "before", "equipment"},
	"steps":          {"step", "first", "then", "next", "finally", "procedure"},
	"quality checks": {"check", "verify", "quality", "inspect", "confirm"},
	"escalation":     {"escalate", "contact", "supervisor", "emergency"},

	"challenge":  {"challenge", "problem", "pain", "struggle"},
	"approach":   {"approach", "solution", "how we", "method"},
	"benefits":   {"benefit", "value", "save", "improve", "gain"},
	"proof":      {"proof", "case study", "result", "testimonial", "evidence"},
	"pricing":    {"price", "pricing", "cost", "plan", "tier"},
	"next steps": {"next step", "timeline", "contact", "start"},

	"background":  {"background", "prior", "previous", "literature", "context"},
	"methods":     {"method", "approach", "design", "procedure", "dataset"},
	"results":     {"result", "finding", "show", "observe", "significant"},
	"discussion":  {"discussion", "implic", "interpret", "suggest"},
	"limitations": {"limitation", "caveat", "constraint", "weakness"},
	"future work": {"future", "next", "further", "extend"},

	"objectives": {"objective", "goal", "learn", "understand"},
	"concepts":   {"concept", "definition", "theory", "principle"},
	"examples":   {"example", "instance", "case", "illustration"},
	"practice":   {"practice", "exercise", "try", "activity"},
	"recap":      {"recap", "summary", "review", "takeaway"},
}

// detectArchetype scores each archetype by keyword hits against the caller's
// guidance. Document text is deliberately not consulted so unguided prose
// stays on the chunking path. Returns nil when nothing matches.
func detectArchetype(guidance string) *archetype {
	hay := strings.ToLower(guidance)

	var best *archetype
	bestScore := 0
	for i := range archetypes {
		score := 0
		for _, kw := range archetypes[i].keywords {
			if strings.Contains(hay, kw) {
				score++
			}
		}
		if score > bestScore {
			best = &archetypes[i]
			bestScore = score
		}
	}
	return best
}

// bucketSentence assigns a sentence to a section index. Keyword hints win;
// otherwise a stable hash spreads unmatched sentences across sections.
func bucketSentence(sentence string, sections []string) int {
	s := strings.ToLower(sentence)
	for i, sec := range sections {
		for _, kw := range sectionHints[strings.ToLower(sec)] {
			if strings.Contains(s, kw) {
				return i
			}
		}
	}
	h := fnv.New32a()
	h.Write([]byte(s))
	return int(h.Sum32() % uint32(len(sections)))
}
