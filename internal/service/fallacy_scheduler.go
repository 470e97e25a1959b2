package service

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"math/rand"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ctroy978/umadex-sub002/internal/models"
	"github.com/ctroy978/umadex-sub002/internal/repository"
)

// FallacyScheduler decides, once per debate, which round's AI turn carries an
// injected fallacy. The draw is a deterministic function of
// (studentDebateID, debateNumber) so schedules are reproducible.
type FallacyScheduler struct {
	templates repository.FallacyTemplateRepository
	logger    zerolog.Logger
}

// NewFallacyScheduler constructs the scheduler.
func NewFallacyScheduler(templates repository.FallacyTemplateRepository, logger zerolog.Logger) *FallacyScheduler {
	return &FallacyScheduler{
		templates: templates,
		logger:    logger.With().Str("component", "fallacy_scheduler").Logger(),
	}
}

// debateSeed derives a stable seed from the session and debate identifiers.
func debateSeed(studentDebateID uint, debateNumber int) int64 {
	h := fnv.New64a()
	var buf [16]byte
	v := uint64(studentDebateID)
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * i))
	}
	d := uint64(debateNumber)
	for i := 0; i < 8; i++ {
		buf[8+i] = byte(d >> (8 * i))
	}
	_, _ = h.Write(buf[:])
	return int64(h.Sum64())
}

// ScheduleForDebate draws the round that will carry the injected fallacy,
// clamped to the debate's round count. ok is false when injection is
// disabled. At most one slot is scheduled per debate.
func (s *FallacyScheduler) ScheduleForDebate(studentDebateID uint, debateNumber int, freq models.FallacyFrequency, roundsPerDebate int) (round int, ok bool) {
	lo, hi, ok := freq.Interval()
	if !ok {
		return 0, false
	}

	r := rand.New(rand.NewSource(debateSeed(studentDebateID, debateNumber)))
	round = lo + r.Intn(hi-lo+1)
	if round > roundsPerDebate {
		round = roundsPerDebate
	}
	if round < 1 {
		round = 1
	}
	return round, true
}

// EnterDebate lazily assigns the fallacy slot for a freshly entered debate.
// Called whenever the session moves into a new debate.
func (s *FallacyScheduler) EnterDebate(session *models.StudentDebate, freq models.FallacyFrequency, roundsPerDebate int) {
	round, ok := s.ScheduleForDebate(session.ID, session.CurrentDebate, freq, roundsPerDebate)
	if !ok {
		session.FallacyScheduledDebate = nil
		session.FallacyScheduledRound = nil
		return
	}

	debate := session.CurrentDebate
	session.FallacyScheduledDebate = &debate
	session.FallacyScheduledRound = &round

	s.logger.Debug().
		Uint("session_id", session.ID).
		Int("debate", debate).
		Int("round", round).
		Msg("fallacy slot scheduled")
}

// ShouldInject reports whether this AI turn is the scheduled fallacy slot.
// Called exactly once per AI turn, before generation. The first AI slot of
// the scheduled round fires; firing consumes the slot and resets the counter,
// so a debate never carries more than one injection.
func (s *FallacyScheduler) ShouldInject(session *models.StudentDebate, debateNumber, roundNumber, statementNumber int) bool {
	session.FallacyCounter++

	if session.FallacyScheduledDebate == nil || session.FallacyScheduledRound == nil {
		return false
	}
	if *session.FallacyScheduledDebate != debateNumber || *session.FallacyScheduledRound != roundNumber {
		return false
	}
	if statementNumber != 2 {
		return false
	}

	session.FallacyScheduledRound = nil
	session.FallacyScheduledDebate = nil
	session.FallacyCounter = 0
	return true
}

// PickFallacy selects the fallacy type for an injection: active templates
// filtered by difficulty, preferring ones whose keywords loosely match the
// topic, drawn with the same deterministic seed.
func (s *FallacyScheduler) PickFallacy(ctx context.Context, studentDebateID uint, debateNumber int, topic string, maxDifficulty int) (models.FallacyTemplate, error) {
	templates, err := s.templates.ListActive(ctx, maxDifficulty)
	if err != nil {
		return models.FallacyTemplate{}, err
	}
	if len(templates) == 0 {
		return models.FallacyTemplate{}, ErrNoFallacyTemplates
	}

	topicWords := keywordSet(topic)
	relevant := templates[:0:0]
	for _, tpl := range templates {
		if templateMatchesTopic(tpl, topicWords) {
			relevant = append(relevant, tpl)
		}
	}
	pool := templates
	if len(relevant) > 0 {
		pool = relevant
	}

	r := rand.New(rand.NewSource(debateSeed(studentDebateID, debateNumber)))
	return pool[r.Intn(len(pool))], nil
}

func templateMatchesTopic(tpl models.FallacyTemplate, topicWords map[string]struct{}) bool {
	if len(tpl.TopicKeywords) == 0 {
		return false
	}
	var keywords []string
	if err := json.Unmarshal(tpl.TopicKeywords, &keywords); err != nil {
		return false
	}
	for _, kw := range keywords {
		if _, ok := topicWords[strings.ToLower(strings.TrimSpace(kw))]; ok {
			return true
		}
	}
	return false
}

func keywordSet(text string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(text))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.Trim(w, ".,!?;:\"'()")] = struct{}{}
	}
	return set
}
