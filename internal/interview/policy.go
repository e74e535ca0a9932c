package interview

import "github.com/ashureev/interview-coach/internal/domain"

// Policy picks the next question after an answer.
type Policy struct {
	settings Settings
	sampler  *WeightedSampler
}

// NewPolicy creates a Policy drawing randomness from src.
func NewPolicy(settings Settings, src Source) *Policy {
	return &Policy{
		settings: settings.withDefaults(),
		sampler:  NewWeightedSampler(src),
	}
}

// ChooseNext returns the next question or nil when the caller should fall
// back to sequential advancement. The returned pointer references s.Questions.
func (p *Policy) ChooseNext(s *domain.Session, answer string, current *domain.Question) *domain.Question {
	sig := ExtractSignals(answer, current, p.settings.ShallowWordThreshold)
	candidates := Shortlist(s, current, sig, p.settings)
	if len(candidates) == 0 {
		return nil
	}

	if current != nil && s.FollowupCount(current.ID) >= p.settings.MaxFollowupsPerQuestion {
		kept := candidates[:0:0]
		for _, c := range candidates {
			if !current.IsDeclaredFollowup(c.ID) {
				kept = append(kept, c)
			}
		}
		candidates = kept
		if len(candidates) == 0 {
			return nil
		}
	}

	idx := p.sampler.Pick(p.weights(candidates, current, sig))
	if idx < 0 {
		return nil
	}
	return candidates[idx]
}

// weights computes the selection weight of each candidate.
func (p *Policy) weights(candidates []*domain.Question, current *domain.Question, sig Signals) []float64 {
	var currentDifficulty float64
	if current != nil {
		currentDifficulty = current.Difficulty
	}
	escalate := sig.KeywordHits >= p.settings.EscalationKeywordHits

	out := make([]float64, len(candidates))
	for i, c := range candidates {
		w := c.BaseWeight()
		if current.SharesTag(c) {
			w++
		}
		if escalate && c.Difficulty > currentDifficulty {
			w++
		}
		if w < 1 {
			w = 1
		}
		out[i] = w
	}
	return out
}
