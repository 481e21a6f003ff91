package donor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type EligibilitySuite struct {
	suite.Suite
}

func TestEligibilitySuite(t *testing.T) {
	suite.Run(t, new(EligibilitySuite))
}

func (s *EligibilitySuite) TestAllPassingIsEligible() {
	v := Evaluate(AllPassing())
	s.False(v.Ineligible)
	s.False(v.BlocksAvailabilitySelection())
	s.Empty(v.Reasons)
}

func (s *EligibilitySuite) TestAnySingleFailureIsIneligible() {
	for _, r := range Rules {
		s.Run(string(r.Key), func() {
			a := AllPassing()
			a[r.Key] = false

			v := Evaluate(a)
			s.True(v.Ineligible)
			s.True(v.BlocksAvailabilitySelection())
			s.Equal([]RuleKey{r.Key}, v.Failing)
			s.Equal([]string{r.Reason}, v.Reasons)
		})
	}
}

func (s *EligibilitySuite) TestEveryCombination() {
	for mask := 0; mask < 1<<len(Rules); mask++ {
		a := Answers{}
		failing := 0
		for i, r := range Rules {
			passes := mask&(1<<i) != 0
			a[r.Key] = passes
			if !passes {
				failing++
			}
		}
		v := Evaluate(a)
		s.Equal(failing > 0, v.Ineligible, "mask %06b", mask)
		s.Len(v.Reasons, failing)
	}
}

func (s *EligibilitySuite) TestMissingAnswersFail() {
	v := Evaluate(Answers{RuleAgeRange: true})
	s.True(v.Ineligible)
	s.Len(v.Failing, len(Rules)-1)
	s.Equal("Weight must be at least 50kg", v.Reasons[0])
}

func (s *EligibilitySuite) TestReasonsFollowRuleOrder() {
	v := Evaluate(Answers{})
	s.Equal([]string{
		"Age must be between 18 and 65",
		"Weight must be at least 50kg",
		"You must be feeling healthy today",
		"You must wait 3 months between donations",
		"You must be free from fever/infection/COVID for 14 days",
		"You must wait 6 months after tattoo/piercing",
	}, v.Reasons)
}

func TestPersistedInvertsOnlyDeferralRules(t *testing.T) {
	p := AllPassing().Persisted()
	assert.Equal(t, PersistedEligibility{
		AgeRange:       true,
		Weight:         true,
		Healthy:        true,
		Donated3Months: false,
		RecentFever:    false,
		RecentTattoo:   false,
	}, p)

	p = Answers{}.Persisted()
	assert.False(t, p.AgeRange)
	assert.True(t, p.Donated3Months)
	assert.True(t, p.RecentFever)
	assert.True(t, p.RecentTattoo)
}

func TestPersistedRoundTrip(t *testing.T) {
	a := Answers{RuleDonated3Months: true}
	p := a.Persisted()
	require.False(t, p.Donated3Months)

	back := AnswersFromPersisted(p)
	assert.True(t, back[RuleDonated3Months])
	assert.False(t, back[RuleAgeRange])

	full := AllPassing()
	assert.Equal(t, full, AnswersFromPersisted(full.Persisted()))
}

func TestParseAnswers(t *testing.T) {
	a, err := ParseAnswers(map[string]bool{"ageRange": true, "recentTattoo": false})
	require.NoError(t, err)
	assert.True(t, a[RuleAgeRange])
	assert.False(t, a[RuleRecentTattoo])

	_, err = ParseAnswers(map[string]bool{"smoker": true})
	var fe FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe[FieldEligibility], "smoker")
}
