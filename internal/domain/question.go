// Package domain contains core domain types for the interview service.
package domain

// DefaultQuestionWeight is the selection bias used when a question declares none.
const DefaultQuestionWeight = 1.0

// Question is a single interview prompt from a role/level pool.
// Questions are read-only once loaded.
type Question struct {
	ID            string   `json:"id" yaml:"id"`
	Prompt        string   `json:"question" yaml:"question"`
	Tags          []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Keywords      []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Difficulty    float64  `json:"difficulty,omitempty" yaml:"difficulty,omitempty"`
	Weight        *float64 `json:"weight,omitempty" yaml:"weight,omitempty"`
	FollowupIDs   []string `json:"followup_ids,omitempty" yaml:"followup_ids,omitempty"`
	FollowupFor   []string `json:"followup_for,omitempty" yaml:"followup_for,omitempty"` // legacy
	Competency    string   `json:"competency,omitempty" yaml:"competency,omitempty"`
	ExampleAnswer string   `json:"example_answer,omitempty" yaml:"example_answer,omitempty"`
}

// BaseWeight returns the declared weight, or DefaultQuestionWeight if absent.
func (q *Question) BaseWeight() float64 {
	if q.Weight == nil {
		return DefaultQuestionWeight
	}
	return *q.Weight
}

// DeclaredFollowups returns the explicit follow-up ids, falling back to the
// legacy followup_for list when followup_ids is empty.
func (q *Question) DeclaredFollowups() []string {
	if len(q.FollowupIDs) > 0 {
		return q.FollowupIDs
	}
	return q.FollowupFor
}

// IsDeclaredFollowup reports whether id is one of q's declared follow-ups.
func (q *Question) IsDeclaredFollowup(id string) bool {
	for _, f := range q.DeclaredFollowups() {
		if f == id {
			return true
		}
	}
	return false
}

// SharesTag reports whether q and other have at least one tag in common.
func (q *Question) SharesTag(other *Question) bool {
	if q == nil || other == nil {
		return false
	}
	for _, a := range q.Tags {
		for _, b := range other.Tags {
			if a == b {
				return true
			}
		}
	}
	return false
}

// Clone returns a deep copy of q.
func (q Question) Clone() Question {
	c := q
	c.Tags = cloneStrings(q.Tags)
	c.Keywords = cloneStrings(q.Keywords)
	c.FollowupIDs = cloneStrings(q.FollowupIDs)
	c.FollowupFor = cloneStrings(q.FollowupFor)
	if q.Weight != nil {
		w := *q.Weight
		c.Weight = &w
	}
	return c
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
