package domain

type MatchMethod string

const (
	MatchPriorCorrelation     MatchMethod = "prior_correlation"
	MatchOrganizerName        MatchMethod = "organizer_name"
	MatchEmail                MatchMethod = "email"
	MatchFullName             MatchMethod = "full_name"
	MatchPartialName          MatchMethod = "partial_name"
	MatchPatternReversed      MatchMethod = "name_pattern_reversed"
	MatchPatternInitial       MatchMethod = "name_pattern_initial"
	MatchPatternParenthetical MatchMethod = "name_pattern_parenthetical"
	MatchUnmatched            MatchMethod = "unmatched"
)

type Confidence string

const (
	ConfidenceExactID    Confidence = "exact-id"
	ConfidenceExactEmail Confidence = "exact-email"
	ConfidenceExactName  Confidence = "exact-name"
	ConfidenceHigh       Confidence = "high"
	ConfidenceScored     Confidence = "scored"
	ConfidencePattern    Confidence = "pattern"
	ConfidenceNone       Confidence = "none"
)

// LowConfidence lists confidences the health checker reports for review.
var LowConfidence = []string{string(ConfidenceScored), string(ConfidencePattern)}

func (c Confidence) IsLow() bool {
	return c == ConfidenceScored || c == ConfidencePattern
}

// Descriptor is what a platform tells us about a participant.
type Descriptor struct {
	Name                  string
	Email                 string
	PlatformParticipantID string
	PlatformUserID        string
}

type MatchContext struct {
	MeetingID   int64
	OrgUnitID   int64
	OrganizerID int64
}

type Match struct {
	User       *User
	Method     MatchMethod
	Confidence Confidence
	Score      int
}

func (m Match) Matched() bool {
	return m.User != nil
}

// Annotate records the match in a metadata bag for later auditing.
func (m Match) Annotate(md Metadata) Metadata {
	if md == nil {
		md = Metadata{}
	}
	md["match_method"] = string(m.Method)
	md["match_confidence"] = string(m.Confidence)
	if m.Score > 0 {
		md["match_score"] = m.Score
	}
	return md
}

func Unmatched() Match {
	return Match{Method: MatchUnmatched, Confidence: ConfidenceNone}
}
