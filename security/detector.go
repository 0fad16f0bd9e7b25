package security

import "regexp"

// Match is a detector hit: the rule tag that fired and its severity (1-10)
type Match struct {
	Type     string `json:"type"`
	Severity int    `json:"severity"`
}

type detectionRule struct {
	attackType string
	severity   int
	pattern    *regexp.Regexp
}

// Rules are checked in priority order and the first match wins. Multiple
// matches never aggregate into one record.
var detectionRules = []detectionRule{
	{
		attackType: "SQL_INJECTION:AUTH_BYPASS",
		severity:   10,
		pattern:    regexp.MustCompile(`(?i)('\s*or\s*'1'\s*=\s*'1|"\s*or\s*"1"\s*=\s*"1|\bor\s+1\s*=\s*1\b|\bor\s+'1'\s*=\s*'1')`),
	},
	{
		attackType: "SQL_INJECTION:DROP_TABLE",
		severity:   10,
		pattern:    regexp.MustCompile(`(?i)\bdrop\s+table\b`),
	},
	{
		attackType: "SQL_INJECTION:DELETE_FROM",
		severity:   9,
		pattern:    regexp.MustCompile(`(?i)\bdelete\s+from\b`),
	},
	{
		attackType: "SQL_INJECTION:UNION_SELECT",
		severity:   9,
		pattern:    regexp.MustCompile(`(?i)\bunion(\s|/\*.*?\*/)+(all(\s|/\*.*?\*/)+)?select\b`),
	},
	{
		// Block comments only count when adjacent to a quote or statement
		// terminator; bare /* */ pairs occur in browser Accept headers.
		attackType: "SQL_INJECTION:COMMENT",
		severity:   8,
		pattern:    regexp.MustCompile(`(?i)('\s*--|;\s*--|'\s*#|[';]\s*/\*.*?\*/|;\s*#)`),
	},
}

// Detect scans one input string against the rule table. It is pure and
// synchronous: no I/O, no state, and no panic on malformed or empty input.
// Absence of a match is the default, non-exceptional outcome.
func Detect(input string) (Match, bool) {
	if input == "" {
		return Match{}, false
	}
	for _, rule := range detectionRules {
		if rule.pattern.MatchString(input) {
			return Match{Type: rule.attackType, Severity: rule.severity}, true
		}
	}
	return Match{}, false
}

// DetectAny scans several inputs and returns the first hit in input order
func DetectAny(inputs ...string) (Match, bool) {
	for _, input := range inputs {
		if match, ok := Detect(input); ok {
			return match, true
		}
	}
	return Match{}, false
}
