package identity

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"meeting_sync/internal/domain"
)

type fakeDirectory struct {
	users []domain.User
	calls int
}

func (f *fakeDirectory) UserByID(_ context.Context, id int64) (*domain.User, error) {
	f.calls++
	for _, u := range f.users {
		if u.ID == id {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakeDirectory) UsersByOrgUnit(_ context.Context, orgUnitID int64) ([]domain.User, error) {
	f.calls++
	var out []domain.User
	// reverse insertion order so sorting is exercised
	for i := len(f.users) - 1; i >= 0; i-- {
		if f.users[i].OrgUnitID == orgUnitID {
			out = append(out, f.users[i])
		}
	}
	return out, nil
}

func (f *fakeDirectory) UsersByEmail(_ context.Context, email string) ([]domain.User, error) {
	f.calls++
	var out []domain.User
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeCorrelations struct {
	links map[string]int64
}

func (f *fakeCorrelations) MatchedUserID(_ context.Context, _ int64, participantID, _ string) (int64, bool, error) {
	id, ok := f.links[participantID]
	return id, ok, nil
}

const unit = int64(10)

func learner(id int64, first, last, email string) domain.User {
	return domain.User{
		ID: id, FirstName: first, LastName: last, Email: email,
		Username: strings.ToLower(first + "." + last), Role: domain.RoleLearner, OrgUnitID: unit, IsActive: true,
	}
}

type ResolverTestSuite struct {
	suite.Suite
	ctx          context.Context
	directory    *fakeDirectory
	correlations *fakeCorrelations
	resolver     *Resolver
	mc           domain.MatchContext
}

func (s *ResolverTestSuite) SetupTest() {
	s.ctx = context.Background()

	organizer := domain.User{
		ID: 1, FirstName: "Robert", LastName: "Brown", Username: "rbrown",
		Email: "robert.brown@org.test", Role: domain.RoleInstructor, OrgUnitID: unit, IsActive: true,
	}
	s.directory = &fakeDirectory{users: []domain.User{
		organizer,
		learner(2, "Jane", "Smith", "jane.smith@org.test"),
		learner(3, "John", "Doe", "jdoe@org.test"),
		learner(4, "Roberta", "Browning", "roberta@org.test"),
		learner(5, "Alice", "Walker", "alice@org.test"),
		{ID: 6, FirstName: "Other", LastName: "Unit", Email: "other@elsewhere.test", Role: domain.RoleLearner, OrgUnitID: 99, IsActive: true},
		{ID: 7, FirstName: "Gone", LastName: "Away", Email: "gone@org.test", Role: domain.RoleLearner, OrgUnitID: unit, IsActive: false},
	}}
	s.correlations = &fakeCorrelations{links: map[string]int64{}}
	s.resolver = NewResolver(s.directory, s.correlations, Config{ScoreThreshold: 100}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.mc = domain.MatchContext{MeetingID: 42, OrgUnitID: unit, OrganizerID: 1}
}

func TestResolverTestSuite(t *testing.T) {
	suite.Run(t, new(ResolverTestSuite))
}

func (s *ResolverTestSuite) resolve(d domain.Descriptor) domain.Match {
	m, err := s.resolver.Resolve(s.ctx, d, s.mc)
	s.Require().NoError(err)
	return m
}

func (s *ResolverTestSuite) TestPriorCorrelationWinsOverEverything() {
	s.correlations.links["p-1"] = 3

	m := s.resolve(domain.Descriptor{Name: "Jane Smith", Email: "jane.smith@org.test", PlatformParticipantID: "p-1"})

	s.Equal(int64(3), m.User.ID)
	s.Equal(domain.MatchPriorCorrelation, m.Method)
	s.Equal(domain.ConfidenceExactID, m.Confidence)
}

func (s *ResolverTestSuite) TestOrganizerNameVariants() {
	for _, name := range []string{"Robert Brown", "rbrown", "ROBERT", "brown", "Robert Brown (Host)"} {
		m := s.resolve(domain.Descriptor{Name: name})
		s.Equal(int64(1), m.User.ID, name)
		s.Equal(domain.MatchOrganizerName, m.Method, name)
	}
}

func (s *ResolverTestSuite) TestOrganizerNeverMatchedBySubstring() {
	m := s.resolve(domain.Descriptor{Name: "Rob"})
	s.False(m.Matched())
}

func (s *ResolverTestSuite) TestOrganizerBeatsPartialLearnerMatch() {
	// "Robert Brown" is also contained in learner "Roberta Browning".
	m := s.resolve(domain.Descriptor{Name: "robert brown"})
	s.Equal(int64(1), m.User.ID)
	s.Equal(domain.MatchOrganizerName, m.Method)
}

func (s *ResolverTestSuite) TestExactEmailInOrgUnit() {
	m := s.resolve(domain.Descriptor{Name: "Jane Smith", Email: "jane.smith@org.test"})

	s.Equal(int64(2), m.User.ID)
	s.Equal(domain.MatchEmail, m.Method)
	s.Equal(domain.ConfidenceExactEmail, m.Confidence)
}

func (s *ResolverTestSuite) TestEmailFallsBackToGlobal() {
	m := s.resolve(domain.Descriptor{Name: "Someone", Email: "OTHER@elsewhere.test"})

	s.Equal(int64(6), m.User.ID)
	s.Equal(domain.MatchEmail, m.Method)
}

func (s *ResolverTestSuite) TestInactiveUsersAreIgnored() {
	m := s.resolve(domain.Descriptor{Name: "Gone Away", Email: "gone@org.test"})
	s.False(m.Matched())
}

func (s *ResolverTestSuite) TestExactFullName() {
	m := s.resolve(domain.Descriptor{Name: "john doe"})

	s.Equal(int64(3), m.User.ID)
	s.Equal(domain.MatchFullName, m.Method)
	s.Equal(domain.ConfidenceExactName, m.Confidence)
}

func (s *ResolverTestSuite) TestPartialNameSingleCandidate() {
	m := s.resolve(domain.Descriptor{Name: "Ali Walk"})

	s.Equal(int64(5), m.User.ID)
	s.Equal(domain.MatchPartialName, m.Method)
	s.Equal(domain.ConfidenceHigh, m.Confidence)
}

func (s *ResolverTestSuite) TestPartialNameTieIsRejected() {
	s.directory.users = append(s.directory.users,
		learner(20, "Chris", "Taylor", "c1@org.test"),
		learner(21, "Christine", "Taylor", "c2@org.test"),
	)

	m := s.resolve(domain.Descriptor{Name: "Chr Tay"})
	s.False(m.Matched())
	s.Equal(domain.MatchUnmatched, m.Method)
}

func (s *ResolverTestSuite) TestPartialNameScoredAboveThreshold() {
	s.directory.users = append(s.directory.users,
		learner(20, "Chris", "Taylor", "shared@org.test"),
		learner(21, "Christine", "Taylors", "shared@org.test"),
	)

	// The shared address defeats the email step. Scores: 50+100 against 100.
	m := s.resolve(domain.Descriptor{Name: "Chris Tay", Email: "shared@org.test"})
	s.Equal(int64(20), m.User.ID)
	s.Equal(domain.MatchPartialName, m.Method)
	s.Equal(domain.ConfidenceScored, m.Confidence)
	s.Equal(150, m.Score)
}

func (s *ResolverTestSuite) TestInitialPattern() {
	m := s.resolve(domain.Descriptor{Name: "J. Smith"})

	s.Equal(int64(2), m.User.ID)
	s.Equal(domain.MatchPatternInitial, m.Method)
	s.Equal(domain.ConfidencePattern, m.Confidence)
}

func (s *ResolverTestSuite) TestInitialPatternPrefersLearner() {
	staff := learner(31, "Julia", "Smith", "julia@org.test")
	staff.Role = domain.RoleInstructor
	s.directory.users = []domain.User{learner(30, "John", "Smith", "john@org.test"), staff}
	s.mc.OrganizerID = 0

	m := s.resolve(domain.Descriptor{Name: "J. Smith"})

	s.Equal(int64(30), m.User.ID)
	s.Equal(domain.MatchPatternInitial, m.Method)
}

func (s *ResolverTestSuite) TestInitialPatternIgnoresLoneInstructor() {
	staff := learner(31, "Julia", "Smith", "julia@org.test")
	staff.Role = domain.RoleInstructor
	s.directory.users = []domain.User{staff}
	s.mc.OrganizerID = 0

	m := s.resolve(domain.Descriptor{Name: "J. Smith"})

	s.False(m.Matched())
	s.Equal(domain.MatchUnmatched, m.Method)
}

func (s *ResolverTestSuite) TestReversedPattern() {
	m := s.resolve(domain.Descriptor{Name: "Doe, John"})

	s.Equal(int64(3), m.User.ID)
	s.Equal(domain.MatchPatternReversed, m.Method)
	s.Equal(domain.ConfidenceHigh, m.Confidence)
}

func (s *ResolverTestSuite) TestParentheticalEmailPattern() {
	m := s.resolve(domain.Descriptor{Name: "Whoever (alice@org.test)"})

	s.Equal(int64(5), m.User.ID)
	s.Equal(domain.MatchPatternParenthetical, m.Method)
	s.Equal(domain.ConfidenceExactEmail, m.Confidence)
}

func (s *ResolverTestSuite) TestParentheticalFallsBackToName() {
	m := s.resolve(domain.Descriptor{Name: "John Doe (personal@mail.test)"})

	s.Equal(int64(3), m.User.ID)
	s.Equal(domain.MatchPatternParenthetical, m.Method)
}

func (s *ResolverTestSuite) TestUnmatchedGuest() {
	m := s.resolve(domain.Descriptor{Name: "iPhone", PlatformParticipantID: "p-9"})

	s.Nil(m.User)
	s.Equal(domain.MatchUnmatched, m.Method)
	s.Equal(domain.ConfidenceNone, m.Confidence)
}

func (s *ResolverTestSuite) TestDeterministic() {
	s.directory.users = append(s.directory.users,
		learner(20, "Sam", "Lee", "s1@org.test"),
		learner(21, "Samuel", "Leeds", "s2@org.test"),
	)

	first := s.resolve(domain.Descriptor{Name: "Sam Lee"})
	for i := 0; i < 20; i++ {
		s.resolver.Invalidate()
		again := s.resolve(domain.Descriptor{Name: "Sam Lee"})
		s.Equal(first, again)
	}
}

func (s *ResolverTestSuite) TestCandidatesAreCachedUntilInvalidated() {
	s.resolve(domain.Descriptor{Name: "Nobody Here"})
	calls := s.directory.calls

	s.resolve(domain.Descriptor{Name: "Nobody Else"})
	s.Equal(calls, s.directory.calls)

	s.resolver.Invalidate()
	s.resolve(domain.Descriptor{Name: "Nobody Else"})
	s.Greater(s.directory.calls, calls)
}

func TestParseName(t *testing.T) {
	n := parseName("  Jane   Smith (Guest) ", "")
	if n.clean != "Jane Smith" || !n.simple || n.first != "jane" || n.last != "smith" {
		t.Fatalf("unexpected parse: %+v", n)
	}

	n = parseName("J Smith", "")
	if n.initial != "j" || n.initialLast != "smith" {
		t.Fatalf("unexpected initial parse: %+v", n)
	}
}
