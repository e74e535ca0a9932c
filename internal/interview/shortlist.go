package interview

import "github.com/ashureev/interview-coach/internal/domain"

// Shortlist ranks unasked pool questions as next-question candidates.
//
// Candidates are gathered in priority order (declared follow-ups, shallow
// probes, remediation, escalation) and, only if none were found, from the
// coverage fallback. The result is deduplicated by id in first-seen order and
// truncated to cfg.ShortlistSize. Returned pointers reference s.Questions and
// must not be mutated.
func Shortlist(s *domain.Session, current *domain.Question, sig Signals, cfg Settings) []*domain.Question {
	cfg = cfg.withDefaults()
	asked := s.AskedIDs()

	var unasked []*domain.Question
	for i := range s.Questions {
		if _, ok := asked[s.Questions[i].ID]; !ok {
			unasked = append(unasked, &s.Questions[i])
		}
	}
	if len(unasked) == 0 {
		return nil
	}

	var candidates []*domain.Question
	if current != nil {
		for _, q := range unasked {
			if current.IsDeclaredFollowup(q.ID) {
				candidates = append(candidates, q)
			}
		}

		sameTopic := func() {
			for _, q := range unasked {
				if current.SharesTag(q) {
					candidates = append(candidates, q)
				}
			}
		}
		if sig.IsShallow {
			sameTopic()
		}
		if sig.KeywordHits == 0 {
			sameTopic()
		}

		if sig.KeywordHits >= cfg.EscalationKeywordHits {
			for _, q := range unasked {
				if q.Difficulty > current.Difficulty && current.SharesTag(q) {
					candidates = append(candidates, q)
				}
			}
		}
	}

	if len(candidates) == 0 {
		covered := s.CoveredTags()
		for _, q := range unasked {
			for _, t := range q.Tags {
				if _, ok := covered[t]; !ok {
					candidates = append(candidates, q)
					break
				}
			}
		}
		if len(candidates) == 0 {
			candidates = unasked
		}
	}

	seen := make(map[string]struct{}, len(candidates))
	out := make([]*domain.Question, 0, cfg.ShortlistSize)
	for _, q := range candidates {
		if _, dup := seen[q.ID]; dup {
			continue
		}
		seen[q.ID] = struct{}{}
		out = append(out, q)
		if len(out) == cfg.ShortlistSize {
			break
		}
	}
	return out
}
