package donor

// RuleKey identifies one self-certification question.
type RuleKey string

const (
	RuleAgeRange       RuleKey = "ageRange"
	RuleWeight         RuleKey = "weight"
	RuleHealthy        RuleKey = "healthy"
	RuleDonated3Months RuleKey = "donated3Months"
	RuleRecentFever    RuleKey = "recentFever"
	RuleRecentTattoo   RuleKey = "recentTattoo"
)

// Rule is one row of the eligibility questionnaire. Checked answers always
// mean "passes"; StoredInverted marks the rules whose persisted flag holds
// the disqualifying condition instead.
type Rule struct {
	Key            RuleKey `json:"key"`
	Label          string  `json:"label"`
	Reason         string  `json:"reason"`
	StoredInverted bool    `json:"-"`
}

// Rules is the questionnaire in display order. Reasons are reported in this
// order too.
var Rules = []Rule{
	{Key: RuleAgeRange, Label: "Are you between 18 and 65 years old?", Reason: "Age must be between 18 and 65"},
	{Key: RuleWeight, Label: "Is your weight 50 kg or more?", Reason: "Weight must be at least 50kg"},
	{Key: RuleHealthy, Label: "Are you feeling healthy today?", Reason: "You must be feeling healthy today"},
	{Key: RuleDonated3Months, Label: "Have you NOT donated blood in the last 3 months?", Reason: "You must wait 3 months between donations", StoredInverted: true},
	{Key: RuleRecentFever, Label: "Have you NOT had fever, infection, or COVID in the last 14 days?", Reason: "You must be free from fever/infection/COVID for 14 days", StoredInverted: true},
	{Key: RuleRecentTattoo, Label: "Have you NOT had a tattoo or piercing in the last 6 months?", Reason: "You must wait 6 months after tattoo/piercing", StoredInverted: true},
}

// LookupRule returns the rule for key.
func LookupRule(key RuleKey) (Rule, bool) {
	for _, r := range Rules {
		if r.Key == key {
			return r, true
		}
	}
	return Rule{}, false
}

// Answers maps each rule to whether the respondent's answer passes it.
// Unanswered rules count as failing.
type Answers map[RuleKey]bool

// AllPassing returns answers that pass every rule.
func AllPassing() Answers {
	a := make(Answers, len(Rules))
	for _, r := range Rules {
		a[r.Key] = true
	}
	return a
}

// ParseAnswers builds Answers from raw key/checked pairs, rejecting keys
// that are not part of the questionnaire.
func ParseAnswers(raw map[string]bool) (Answers, error) {
	a := make(Answers, len(raw))
	for k, checked := range raw {
		if _, ok := LookupRule(RuleKey(k)); !ok {
			return nil, FieldErrors{FieldEligibility: MsgUnknownEligibility + ": " + k}
		}
		a[RuleKey(k)] = checked
	}
	return a, nil
}

// Verdict is a point-in-time eligibility outcome. Ineligibility is
// temporary and is recomputed on every submission.
type Verdict struct {
	Ineligible bool      `json:"ineligible"`
	Failing    []RuleKey `json:"failing,omitempty"`
	Reasons    []string  `json:"reasons,omitempty"`
}

// BlocksAvailabilitySelection reports whether available_now and
// emergency_only must be refused.
func (v Verdict) BlocksAvailabilitySelection() bool { return v.Ineligible }

// Evaluate applies every rule to a. It has no side effects.
func Evaluate(a Answers) Verdict {
	var v Verdict
	for _, r := range Rules {
		if a[r.Key] {
			continue
		}
		v.Ineligible = true
		v.Failing = append(v.Failing, r.Key)
		v.Reasons = append(v.Reasons, r.Reason)
	}
	return v
}

// PersistedEligibility is the stored eligibility sub-document. The last
// three fields are true when the disqualifying condition holds.
type PersistedEligibility struct {
	AgeRange       bool `json:"ageRange"`
	Weight         bool `json:"weight"`
	Healthy        bool `json:"healthy"`
	Donated3Months bool `json:"donated3Months"`
	RecentFever    bool `json:"recentFever"`
	RecentTattoo   bool `json:"recentTattoo"`
}

// Persisted converts answers to the stored shape. This is the only place the
// inversion is applied.
func (a Answers) Persisted() PersistedEligibility {
	return PersistedEligibility{
		AgeRange:       a[RuleAgeRange],
		Weight:         a[RuleWeight],
		Healthy:        a[RuleHealthy],
		Donated3Months: !a[RuleDonated3Months],
		RecentFever:    !a[RuleRecentFever],
		RecentTattoo:   !a[RuleRecentTattoo],
	}
}

// AnswersFromPersisted reverses Persisted.
func AnswersFromPersisted(p PersistedEligibility) Answers {
	return Answers{
		RuleAgeRange:       p.AgeRange,
		RuleWeight:         p.Weight,
		RuleHealthy:        p.Healthy,
		RuleDonated3Months: !p.Donated3Months,
		RuleRecentFever:    !p.RecentFever,
		RuleRecentTattoo:   !p.RecentTattoo,
	}
}
