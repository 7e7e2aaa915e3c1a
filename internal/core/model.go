package core

import (
	"strings"
	"time"
)

// Attachment describes a MIME attachment on a message
type Attachment struct {
	Filename string
	MimeType string
	Size     int64
}

// Email represents an incoming email message handed to the pipeline.
// It is treated as immutable once constructed.
type Email struct {
	ID          string
	From        string
	FromName    string
	To          []string
	Subject     string
	Body        string
	Headers     map[string]string // lower-cased header names
	Attachments []Attachment
	ContentType string
	ReceivedAt  time.Time
}

// Header returns the value of a header, looked up case-insensitively
func (e *Email) Header(name string) string {
	if e.Headers == nil {
		return ""
	}
	return e.Headers[strings.ToLower(name)]
}

// HasHeader reports whether a header is present, regardless of value
func (e *Email) HasHeader(name string) bool {
	if e.Headers == nil {
		return false
	}
	_, ok := e.Headers[strings.ToLower(name)]
	return ok
}

// SenderLocalPart returns the part of the sender address before the @
func (e *Email) SenderLocalPart() string {
	parts := strings.SplitN(e.From, "@", 2)
	return strings.ToLower(parts[0])
}

// SenderDomain returns the sender address domain, or "" for malformed addresses
func (e *Email) SenderDomain() string {
	parts := strings.SplitN(e.From, "@", 2)
	if len(parts) != 2 {
		return ""
	}
	return strings.ToLower(parts[1])
}

// GateResult is the output of a single pattern gate
type GateResult struct {
	Matched    bool
	Confidence float64
	Reasons    []string
}

// CalendarEvent holds best-effort event details extracted from a calendar message
type CalendarEvent struct {
	Start       *time.Time
	End         *time.Time
	Title       string
	Location    string
	Organizer   string
	MeetingLink string
	Recurring   bool
}

// InteractionStats summarizes the interaction history between the user and a
// sender over a bounded lookback window. It is read from an external store
// and never written by the pipeline.
type InteractionStats struct {
	EmailsReceived  int
	EmailsSent      int
	UserReplies     int
	SenderReplies   int
	TwoWayExchanges int
	FirstContact    time.Time
	LastContact     time.Time
	AvgReplyMinutes float64
}

// IsEmpty reports whether there is no recorded interaction in either direction
func (s *InteractionStats) IsEmpty() bool {
	return s == nil || (s.EmailsReceived == 0 && s.EmailsSent == 0)
}

// RelationshipComponents are the individual signals behind a relationship score
type RelationshipComponents struct {
	ReplyFrequency  float64
	TwoWayExchanges float64
	Recency         float64
	Volume          float64
	ManualVIP       float64
}

// RelationshipScore is a 0..1 measure of sender importance
type RelationshipScore struct {
	Score      float64
	IsVIP      bool
	Components RelationshipComponents
}

// QuestionType classifies how a question is asked
type QuestionType string

const (
	QuestionDirect   QuestionType = "direct"
	QuestionImplicit QuestionType = "implicit"
	QuestionNone     QuestionType = "none"
)

// Intent is the coarse purpose of a message's content
type Intent string

const (
	IntentConfirm  Intent = "confirm"
	IntentRequest  Intent = "request"
	IntentSchedule Intent = "schedule"
	IntentInform   Intent = "inform"
)

// ContentAnalysis is the output of the content analyzer
type ContentAnalysis struct {
	HasQuestion       bool
	QuestionType      QuestionType
	Deadline          *time.Time
	MinutesToDeadline *int
	UrgencyLevel      int // 0..10
	UrgencySignals    []string
	ActionItems       []string
	Intent            Intent
}

// ThreadContext describes the state of the conversation a message belongs to.
// LastFromMe refers to the most recent message in the thread before the one
// being scored.
type ThreadContext struct {
	Length        int
	LastMessageAt time.Time
	LastFromMe    bool
}

// MessageFeatures is the canonical per-message feature record, the sole input
// to the priority scorer. It carries no references back to the raw message.
type MessageFeatures struct {
	IsNewsletter       bool
	IsAutoGenerated    bool
	HasListUnsubscribe bool
	HasListID          bool
	HasAutoSubmitted   bool

	HasCalendar   bool
	CalendarStart *time.Time

	OTPDetected   bool
	OTPAgeMinutes *int

	RelationshipScore float64 // 0..1
	IsVIPSender       bool

	ThreadYouOwe         bool
	ThreadRecencyMinutes *int
	ThreadLength         int // >= 1

	ExplicitAsk       bool
	Deadline          *time.Time
	MinutesToDeadline *int
	Intent            Intent // "" when no content signal

	ReplyNeedProbability float64 // 0..1
}

// Category is the coarse priority bucket assigned to a message
type Category string

const (
	CategoryUrgent    Category = "urgent"
	CategoryImportant Category = "important"
	CategoryNormal    Category = "normal"
	CategoryLow       Category = "low"
	CategorySpam      Category = "spam"
)

// Category thresholds on the 0..100 score scale
const (
	UrgentThreshold    = 90
	ImportantThreshold = 70
	NormalThreshold    = 50
	LowThreshold       = 30
)

// CategoryForScore maps a clamped score to its category
func CategoryForScore(score int) Category {
	switch {
	case score >= UrgentThreshold:
		return CategoryUrgent
	case score >= ImportantThreshold:
		return CategoryImportant
	case score >= NormalThreshold:
		return CategoryNormal
	case score >= LowThreshold:
		return CategoryLow
	default:
		return CategorySpam
	}
}

// PriorityScore is the final scoring result for one message
type PriorityScore struct {
	MessageID      string
	Score          int // 0..100
	Category       Category
	Confidence     float64 // 0..1
	Reasoning      []string
	FeatureWeights map[string]float64
	ScoredAt       time.Time
	ProcessingID   string
}

// Message log directions for the interaction history store
const (
	DirectionInbound  = "in"
	DirectionOutbound = "out"
)

// MessageLogEntry is one row of the interaction history the relationship
// aggregates are computed from. The hosting service records these; the
// scoring pipeline only ever reads the aggregates.
type MessageLogEntry struct {
	SenderEmail         string
	UserEmail           string
	Direction           string // DirectionInbound or DirectionOutbound
	IsReply             bool
	ReplyLatencyMinutes *float64
	OccurredAt          time.Time
}
