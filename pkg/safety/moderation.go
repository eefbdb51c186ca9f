package safety

import (
	"regexp"
	"strings"
)

const (
	RulePhone       = "phone_number"
	RuleEmail       = "email_address"
	RuleBlockedWord = "blocked_word"
)

type rule struct {
	name string
	re   *regexp.Regexp
}

var builtinRules = []rule{
	{RuleEmail, regexp.MustCompile(`(?i)[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}`)},
	{RulePhone, regexp.MustCompile(`(?:\+?\d[\s.\-]?){8,14}\d`)},
}

// Moderator rejects text that leaks contact details or contains blocked words.
type Moderator struct {
	rules []rule
}

func NewModerator(blockedWords []string) *Moderator {
	m := &Moderator{rules: append([]rule{}, builtinRules...)}

	quoted := []string{}
	for _, w := range blockedWords {
		w = strings.TrimSpace(w)
		if w != "" {
			quoted = append(quoted, regexp.QuoteMeta(w))
		}
	}
	if len(quoted) > 0 {
		m.rules = append(m.rules, rule{
			RuleBlockedWord,
			regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`),
		})
	}

	return m
}

// CheckContent returns a *RejectedError matching ErrContentRejected for the
// first rule text breaks.
func (m *Moderator) CheckContent(text string) error {
	for _, r := range m.rules {
		if r.re.MatchString(text) {
			return &RejectedError{Rule: r.name}
		}
	}
	return nil
}
