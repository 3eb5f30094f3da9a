package identity

import (
	"strings"

	"meeting_sync/internal/domain"
)

// Candidates is the snapshot of users a descriptor is matched against. All
// lists are sorted by user ID so matching is deterministic.
type Candidates struct {
	Prior     *domain.User
	Organizer *domain.User
	OrgUnit   []domain.User
	ByEmail   map[string][]domain.User
	Threshold int
}

// Strategy is one step of the resolution chain. It must not touch storage.
type Strategy struct {
	Name  string
	Match func(n parsed, c *Candidates) (domain.Match, bool)
}

// Chain is the resolution order; the first unique match wins.
var Chain = []Strategy{
	{"prior_correlation", matchPrior},
	{"organizer_name", matchOrganizer},
	{"email", matchEmail},
	{"full_name", matchFullName},
	{"partial_name", matchPartialName},
	{"pattern_reversed", matchReversed},
	{"pattern_initial", matchInitial},
	{"pattern_parenthetical", matchParenthetical},
}

func matchPrior(_ parsed, c *Candidates) (domain.Match, bool) {
	if c.Prior == nil {
		return domain.Match{}, false
	}
	return found(c.Prior, domain.MatchPriorCorrelation, domain.ConfidenceExactID, 0), true
}

func matchOrganizer(n parsed, c *Candidates) (domain.Match, bool) {
	o := c.Organizer
	if o == nil || n.clean == "" {
		return domain.Match{}, false
	}
	for _, variant := range []string{o.FullName(), o.Username, o.FirstName, o.LastName} {
		if equalFold(variant, n.clean) {
			return found(o, domain.MatchOrganizerName, domain.ConfidenceExactName, 0), true
		}
	}
	return domain.Match{}, false
}

func matchEmail(n parsed, c *Candidates) (domain.Match, bool) {
	if u := byEmail(n.email, c); u != nil {
		return found(u, domain.MatchEmail, domain.ConfidenceExactEmail, 0), true
	}
	return domain.Match{}, false
}

func matchFullName(n parsed, c *Candidates) (domain.Match, bool) {
	if !n.simple {
		return domain.Match{}, false
	}
	if u := exactName(n.first, n.last, n.clean, c); u != nil {
		return found(u, domain.MatchFullName, domain.ConfidenceExactName, 0), true
	}
	return domain.Match{}, false
}

func matchPartialName(n parsed, c *Candidates) (domain.Match, bool) {
	if !n.simple {
		return domain.Match{}, false
	}
	u, score, scored := partialName(n.first, n.last, n.clean, n.email, c)
	if u == nil {
		return domain.Match{}, false
	}
	conf := domain.ConfidenceHigh
	if scored {
		conf = domain.ConfidenceScored
	}
	return found(u, domain.MatchPartialName, conf, score), true
}

func matchReversed(n parsed, c *Candidates) (domain.Match, bool) {
	if n.reversedFirst == "" || n.reversedLast == "" {
		return domain.Match{}, false
	}
	firsts := strings.Fields(strings.ToLower(n.reversedFirst))
	lasts := strings.Fields(strings.ToLower(n.reversedLast))
	first, last := firsts[0], lasts[len(lasts)-1]
	full := n.reversedFirst + " " + n.reversedLast

	return byNameRules(first, last, full, n.email, c, domain.MatchPatternReversed)
}

// matchInitial resolves "J. Smith" to the single learner with that last name
// and first initial.
func matchInitial(n parsed, c *Candidates) (domain.Match, bool) {
	if n.initial == "" {
		return domain.Match{}, false
	}
	var learners []*domain.User
	for i := range c.OrgUnit {
		u := &c.OrgUnit[i]
		if u.Role != domain.RoleLearner {
			continue
		}
		if strings.EqualFold(u.LastName, n.initialLast) && strings.HasPrefix(strings.ToLower(u.FirstName), n.initial) {
			learners = append(learners, u)
		}
	}
	if len(learners) != 1 {
		return domain.Match{}, false
	}
	return found(learners[0], domain.MatchPatternInitial, domain.ConfidencePattern, 0), true
}

func matchParenthetical(n parsed, c *Candidates) (domain.Match, bool) {
	if n.parenEmail == "" {
		return domain.Match{}, false
	}
	if u := byEmail(n.parenEmail, c); u != nil {
		return found(u, domain.MatchPatternParenthetical, domain.ConfidenceExactEmail, 0), true
	}
	first, last, ok := splitName(n.parenName)
	if !ok {
		return domain.Match{}, false
	}
	return byNameRules(first, last, n.parenName, n.parenEmail, c, domain.MatchPatternParenthetical)
}

// byNameRules applies the exact then partial name rules to a name recovered
// from a structural pattern.
func byNameRules(first, last, full, email string, c *Candidates, method domain.MatchMethod) (domain.Match, bool) {
	if u := exactName(first, last, full, c); u != nil {
		return found(u, method, domain.ConfidenceHigh, 0), true
	}
	if u, score, _ := partialName(first, last, full, email, c); u != nil {
		return found(u, method, domain.ConfidencePattern, score), true
	}
	return domain.Match{}, false
}

func byEmail(email string, c *Candidates) *domain.User {
	if email == "" {
		return nil
	}
	var inUnit []*domain.User
	for i := range c.OrgUnit {
		if strings.EqualFold(c.OrgUnit[i].Email, email) {
			inUnit = append(inUnit, &c.OrgUnit[i])
		}
	}
	if len(inUnit) == 1 {
		return inUnit[0]
	}
	if len(inUnit) > 1 {
		return nil
	}
	global := c.ByEmail[strings.ToLower(email)]
	if len(global) == 1 {
		return &global[0]
	}
	return nil
}

func exactName(first, last, full string, c *Candidates) *domain.User {
	var hits []*domain.User
	for i := range c.OrgUnit {
		u := &c.OrgUnit[i]
		if equalFold(u.FullName(), full) || (equalFold(u.FirstName, first) && equalFold(u.LastName, last)) {
			hits = append(hits, u)
		}
	}
	if len(hits) == 1 {
		return hits[0]
	}
	return nil
}

// partialName matches learners whose first and last names contain the given
// tokens. Several hits are ranked by score; only a unique top score at or
// above the threshold is accepted.
func partialName(first, last, full, email string, c *Candidates) (*domain.User, int, bool) {
	if !isToken(first) || !isToken(last) {
		return nil, 0, false
	}
	var hits []*domain.User
	for i := range c.OrgUnit {
		u := &c.OrgUnit[i]
		if u.Role != domain.RoleLearner {
			continue
		}
		if strings.Contains(strings.ToLower(u.FirstName), first) && strings.Contains(strings.ToLower(u.LastName), last) {
			hits = append(hits, u)
		}
	}
	switch len(hits) {
	case 0:
		return nil, 0, false
	case 1:
		return hits[0], Score(hits[0], first, last, full, email), false
	}

	var best *domain.User
	bestScore, tie := -1, false
	for _, u := range hits {
		s := Score(u, first, last, full, email)
		switch {
		case s > bestScore:
			best, bestScore, tie = u, s, false
		case s == bestScore:
			tie = true
		}
	}
	if tie || bestScore < c.Threshold {
		return nil, 0, false
	}
	return best, bestScore, true
}

// Score rates how well u fits a partially matching name.
func Score(u *domain.User, first, last, full, email string) int {
	score := 0
	if equalFold(u.FirstName, first) {
		score += 50
	}
	if equalFold(u.LastName, last) {
		score += 50
	}
	if email != "" && equalFold(u.Email, email) {
		score += 100
	}
	if equalFold(u.FullName(), full) {
		score += 75
	}
	return score
}

func found(u *domain.User, method domain.MatchMethod, conf domain.Confidence, score int) domain.Match {
	user := *u
	return domain.Match{User: &user, Method: method, Confidence: conf, Score: score}
}
