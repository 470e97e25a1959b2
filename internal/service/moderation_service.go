package service

import (
	"math"
	"strings"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/ctroy978/umadex-sub002/internal/models"
)

// FlagFinding is the outcome of one moderation category check.
type FlagFinding struct {
	Type       models.FlagType `json:"type"`
	Triggered  bool            `json:"triggered"`
	Confidence float64         `json:"confidence"`
	Reason     string          `json:"reason,omitempty"`
}

// ModerationResult is the full four-category analysis of one statement. Top
// is the highest-confidence triggered finding; the rest stay visible for
// audit.
type ModerationResult struct {
	ShouldFlag     bool          `json:"should_flag"`
	RequiresReview bool          `json:"requires_review"`
	Top            *FlagFinding  `json:"top,omitempty"`
	Findings       []FlagFinding `json:"findings"`
}

// ModerationService classifies student-authored text against the four flag
// categories. Analyze is a pure function of its inputs; persistence of flags
// is the orchestrator's concern. The heuristics here satisfy the capability
// contract and can be swapped for a learned classifier that returns the same
// shape.
type ModerationService interface {
	// Analyze classifies text against the debate topic. reviewThreshold is
	// the assignment's auto-flag tuning; a value outside (0, 1] falls back
	// to the service default.
	Analyze(text, topic string, reviewThreshold float64) ModerationResult
}

type moderationService struct {
	reviewThreshold float64
	logger          zerolog.Logger
}

// NewModerationService constructs the gate. Findings whose confidence exceeds
// the review threshold mark the result as requiring human review;
// reviewThreshold here is the default for assignments that do not tune their
// own.
func NewModerationService(reviewThreshold float64, logger zerolog.Logger) ModerationService {
	if reviewThreshold <= 0 || reviewThreshold > 1 {
		reviewThreshold = 0.7
	}
	return &moderationService{
		reviewThreshold: reviewThreshold,
		logger:          logger.With().Str("component", "moderation_service").Logger(),
	}
}

var profanityTerms = []string{
	"damn", "dammit", "hell", "crap", "piss", "bastard", "bitch",
	"shit", "bullshit", "fuck", "fucking", "asshole", "dick",
}

var attackPatterns = []string{
	"you are stupid", "you're stupid", "you are an idiot", "you're an idiot",
	"shut up", "you are dumb", "you're dumb", "i hate you", "you suck",
	"kill you", "hurt you", "beat you up", "you moron", "nobody likes you",
}

var offTopicIndicators = []string{
	"minecraft", "fortnite", "tiktok", "youtube", "homework answers",
	"subscribe", "follow me", "lol lol", "asdf", "qwerty",
}

var topicStopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "of": {},
	"in": {}, "on": {}, "to": {}, "for": {}, "is": {}, "are": {}, "be": {},
	"should": {}, "would": {}, "could": {}, "that": {}, "this": {}, "with": {},
	"it": {}, "as": {}, "at": {}, "by": {}, "not": {}, "we": {}, "our": {},
}

func (s *moderationService) Analyze(text, topic string, reviewThreshold float64) ModerationResult {
	threshold := s.reviewThreshold
	if reviewThreshold > 0 && reviewThreshold <= 1 {
		threshold = reviewThreshold
	}

	findings := []FlagFinding{
		checkProfanity(text),
		checkInappropriate(text),
		checkOffTopic(text, topic),
		checkSpam(text),
	}

	result := ModerationResult{Findings: findings}
	for i := range findings {
		f := findings[i]
		if !f.Triggered {
			continue
		}
		result.ShouldFlag = true
		if result.Top == nil || f.Confidence > result.Top.Confidence {
			result.Top = &findings[i]
		}
	}

	if result.Top != nil && result.Top.Confidence > threshold {
		result.RequiresReview = true
	}

	if result.ShouldFlag {
		s.logger.Debug().
			Str("flag_type", string(result.Top.Type)).
			Float64("confidence", result.Top.Confidence).
			Bool("requires_review", result.RequiresReview).
			Msg("content flagged")
	}

	return result
}

func checkProfanity(text string) FlagFinding {
	finding := FlagFinding{Type: models.FlagProfanity}
	words := tokenize(text)
	matches := 0
	for _, w := range words {
		for _, term := range profanityTerms {
			if w == term {
				matches++
				break
			}
		}
	}
	if matches == 0 {
		return finding
	}

	finding.Triggered = true
	finding.Confidence = math.Min(0.6+0.15*float64(matches), 0.98)
	finding.Reason = "statement contains profane language"
	return finding
}

func checkInappropriate(text string) FlagFinding {
	finding := FlagFinding{Type: models.FlagInappropriate}
	lower := strings.ToLower(text)
	matches := 0
	for _, pattern := range attackPatterns {
		if strings.Contains(lower, pattern) {
			matches++
		}
	}
	if matches == 0 {
		return finding
	}

	finding.Triggered = true
	finding.Confidence = math.Min(0.65+0.15*float64(matches), 0.98)
	finding.Reason = "statement contains a threat or personal attack"
	return finding
}

// offTopicOverlapFloor is the minimum share of topic keywords a statement
// must touch before it is considered on topic.
const offTopicOverlapFloor = 0.05

func checkOffTopic(text, topic string) FlagFinding {
	finding := FlagFinding{Type: models.FlagOffTopic}
	lower := strings.ToLower(text)

	for _, indicator := range offTopicIndicators {
		if strings.Contains(lower, indicator) {
			finding.Triggered = true
			finding.Confidence = 0.75
			finding.Reason = "statement contains off-topic indicators"
			return finding
		}
	}

	topicWords := contentWords(topic)
	if len(topicWords) == 0 {
		return finding
	}

	textWords := make(map[string]struct{})
	for _, w := range tokenize(text) {
		textWords[w] = struct{}{}
	}

	overlap := 0
	for w := range topicWords {
		if _, ok := textWords[w]; ok {
			overlap++
		}
	}

	ratio := float64(overlap) / float64(len(topicWords))
	if ratio < offTopicOverlapFloor {
		finding.Triggered = true
		finding.Confidence = 0.6 + 0.2*(offTopicOverlapFloor-ratio)/offTopicOverlapFloor
		finding.Reason = "statement shares almost no vocabulary with the debate topic"
	}
	return finding
}

func checkSpam(text string) FlagFinding {
	finding := FlagFinding{Type: models.FlagSpam}
	words := tokenize(text)
	if len(words) == 0 {
		return finding
	}

	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		unique[w] = struct{}{}
	}
	diversity := float64(len(unique)) / float64(len(words))

	var letters, uppers int
	for _, r := range text {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				uppers++
			}
		}
	}
	capsRatio := 0.0
	if letters > 0 {
		capsRatio = float64(uppers) / float64(letters)
	}

	urls := 0
	for _, w := range strings.Fields(strings.ToLower(text)) {
		if strings.HasPrefix(w, "http://") || strings.HasPrefix(w, "https://") ||
			strings.HasPrefix(w, "www.") || strings.Contains(w, ".com") {
			urls++
		}
	}

	switch {
	case urls >= 2:
		finding.Triggered = true
		finding.Confidence = 0.85
		finding.Reason = "statement contains multiple links"
	case len(words) >= 10 && diversity < 0.4:
		finding.Triggered = true
		finding.Confidence = 0.7 + 0.2*(0.4-diversity)
		finding.Reason = "statement repeats the same words excessively"
	case letters >= 40 && capsRatio > 0.5:
		finding.Triggered = true
		finding.Confidence = 0.65
		finding.Reason = "statement is mostly capitalized"
	}
	return finding
}

func tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		w := strings.TrimFunc(f, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsNumber(r) })
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}

func contentWords(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range tokenize(text) {
		if _, stop := topicStopwords[w]; stop {
			continue
		}
		set[w] = struct{}{}
	}
	return set
}
