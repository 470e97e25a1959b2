package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ctroy978/umadex-sub002/internal/dto"
	"github.com/ctroy978/umadex-sub002/internal/models"
	"github.com/ctroy978/umadex-sub002/internal/repository"
)

type fakePostRepo struct {
	posts map[uint]models.DebatePost
}

func newFakePostRepo(posts ...models.DebatePost) *fakePostRepo {
	repo := &fakePostRepo{posts: make(map[uint]models.DebatePost)}
	for _, p := range posts {
		repo.posts[p.ID] = p
	}
	return repo
}

func (r *fakePostRepo) Create(ctx context.Context, post *models.DebatePost) error {
	post.ID = uint(len(r.posts) + 1)
	r.posts[post.ID] = *post
	return nil
}

func (r *fakePostRepo) GetByID(ctx context.Context, id uint) (models.DebatePost, error) {
	post, ok := r.posts[id]
	if !ok {
		return models.DebatePost{}, gorm.ErrRecordNotFound
	}
	return post, nil
}

func (r *fakePostRepo) ListBySession(ctx context.Context, studentDebateID uint) ([]models.DebatePost, error) {
	var out []models.DebatePost
	for _, p := range r.posts {
		if p.StudentDebateID == studentDebateID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePostRepo) ListByDebate(ctx context.Context, studentDebateID uint, debateNumber int) ([]models.DebatePost, error) {
	var out []models.DebatePost
	for _, p := range r.posts {
		if p.StudentDebateID == studentDebateID && p.DebateNumber == debateNumber {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePostRepo) LastInRound(ctx context.Context, studentDebateID uint, debateNumber, roundNumber int) (models.DebatePost, error) {
	var last models.DebatePost
	found := false
	for _, p := range r.posts {
		if p.StudentDebateID == studentDebateID && p.DebateNumber == debateNumber && p.RoundNumber == roundNumber {
			if !found || p.StatementNumber > last.StatementNumber {
				last = p
				found = true
			}
		}
	}
	if !found {
		return models.DebatePost{}, gorm.ErrRecordNotFound
	}
	return last, nil
}

func (r *fakePostRepo) Update(ctx context.Context, post *models.DebatePost) error {
	r.posts[post.ID] = *post
	return nil
}

type fakeChallengeRepo struct {
	challenges []models.DebateChallenge
}

func (r *fakeChallengeRepo) Create(ctx context.Context, challenge *models.DebateChallenge) error {
	challenge.ID = uint(len(r.challenges) + 1)
	r.challenges = append(r.challenges, *challenge)
	return nil
}

func (r *fakeChallengeRepo) ListBySession(ctx context.Context, studentDebateID uint) ([]models.DebateChallenge, error) {
	var out []models.DebateChallenge
	for _, c := range r.challenges {
		if c.StudentDebateID == studentDebateID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeChallengeRepo) HasCorrectForPost(ctx context.Context, postID, studentID uint) (bool, error) {
	for _, c := range r.challenges {
		if c.PostID == postID && c.StudentID == studentID && c.IsCorrect() {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeChallengeRepo) SumPointsForDebate(ctx context.Context, studentDebateID uint, debateNumber int) (float64, error) {
	var total float64
	for _, c := range r.challenges {
		if c.StudentDebateID == studentDebateID && c.DebateNumber == debateNumber {
			total += c.PointsAwarded
		}
	}
	return total, nil
}

func (r *fakeChallengeRepo) SumPointsForRound(ctx context.Context, studentDebateID uint, debateNumber, roundNumber int) (float64, error) {
	var total float64
	for _, c := range r.challenges {
		if c.StudentDebateID == studentDebateID && c.DebateNumber == debateNumber && c.RoundNumber == roundNumber {
			total += c.PointsAwarded
		}
	}
	return total, nil
}

type fakeSessionRepo struct {
	sessions    map[uint]models.StudentDebate
	updateCalls int
	staleOnce   bool
}

func newFakeSessionRepo(sessions ...models.StudentDebate) *fakeSessionRepo {
	repo := &fakeSessionRepo{sessions: make(map[uint]models.StudentDebate)}
	for _, s := range sessions {
		repo.sessions[s.ID] = s
	}
	return repo
}

func (r *fakeSessionRepo) GetByID(ctx context.Context, id uint) (models.StudentDebate, error) {
	session, ok := r.sessions[id]
	if !ok {
		return models.StudentDebate{}, gorm.ErrRecordNotFound
	}
	return session, nil
}

func (r *fakeSessionRepo) GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID uint) (models.StudentDebate, error) {
	for _, s := range r.sessions {
		if s.AssignmentID == assignmentID && s.StudentID == studentID {
			return s, nil
		}
	}
	return models.StudentDebate{}, gorm.ErrRecordNotFound
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *models.StudentDebate) error {
	session.ID = uint(len(r.sessions) + 1)
	r.sessions[session.ID] = *session
	return nil
}

func (r *fakeSessionRepo) UpdateVersioned(ctx context.Context, session *models.StudentDebate) error {
	if r.staleOnce {
		r.staleOnce = false
		return repository.ErrStaleSession
	}
	session.LockVersion++
	r.sessions[session.ID] = *session
	return nil
}

func (r *fakeSessionRepo) Update(ctx context.Context, session *models.StudentDebate) error {
	r.updateCalls++
	r.sessions[session.ID] = *session
	return nil
}

func scoredStudentPost(id uint, sessionID uint, debate, round, statement int, base float64) models.DebatePost {
	score := 4
	return models.DebatePost{
		ID:                  id,
		StudentDebateID:     sessionID,
		DebateNumber:        debate,
		RoundNumber:         round,
		StatementNumber:     statement,
		PostType:            models.PostTypeStudent,
		ModerationStatus:    models.ModerationStatusClean,
		ClarityScore:        &score,
		EvidenceScore:       &score,
		LogicScore:          &score,
		PersuasivenessScore: &score,
		RebuttalScore:       &score,
		BasePercentage:      &base,
	}
}

func newTestScoring(posts *fakePostRepo, challenges *fakeChallengeRepo, sessions *fakeSessionRepo) ScoringService {
	return NewScoringService(posts, challenges, sessions,
		validator.New(validator.WithRequiredStructEnabled()), testLogger())
}

func TestScorePostDerivesPercentages(t *testing.T) {
	posts := newFakePostRepo(models.DebatePost{
		ID:              1,
		StudentDebateID: 9,
		DebateNumber:    1,
		RoundNumber:     1,
		StatementNumber: 1,
		PostType:        models.PostTypeStudent,
	})
	challenges := &fakeChallengeRepo{challenges: []models.DebateChallenge{
		{StudentDebateID: 9, DebateNumber: 1, RoundNumber: 1, Verdict: models.VerdictCorrectFallacy, PointsAwarded: 3},
	}}
	sessions := newFakeSessionRepo(models.StudentDebate{ID: 9, Status: models.DebateStatusDebate1, CurrentDebate: 1})
	svc := newTestScoring(posts, challenges, sessions)

	result, err := svc.ScorePost(context.Background(), 1, dto.ScorePostRequest{
		Clarity: 4, Evidence: 4, Logic: 4, Persuasiveness: 4, Rebuttal: 4,
	})
	require.NoError(t, err)
	require.NotNil(t, result.BasePercentage)
	require.InDelta(t, 80.0, *result.BasePercentage, 0.001)
	require.NotNil(t, result.BonusPoints)
	require.InDelta(t, 3.0, *result.BonusPoints, 0.001)
	require.NotNil(t, result.FinalPercentage)
	require.InDelta(t, 83.0, *result.FinalPercentage, 0.001)
}

func TestScorePostRejectsOpponentStatement(t *testing.T) {
	posts := newFakePostRepo(models.DebatePost{ID: 2, StudentDebateID: 9, PostType: models.PostTypeAI})
	svc := newTestScoring(posts, &fakeChallengeRepo{}, newFakeSessionRepo())

	_, err := svc.ScorePost(context.Background(), 2, dto.ScorePostRequest{
		Clarity: 3, Evidence: 3, Logic: 3, Persuasiveness: 3, Rebuttal: 3,
	})
	require.ErrorIs(t, err, ErrNotStudentPost)
}

func TestScorePostImmutableOnceScored(t *testing.T) {
	posts := newFakePostRepo(scoredStudentPost(3, 9, 1, 1, 1, 80))
	sessions := newFakeSessionRepo(models.StudentDebate{ID: 9, Status: models.DebateStatusDebate1, CurrentDebate: 1})
	svc := newTestScoring(posts, &fakeChallengeRepo{}, sessions)

	_, err := svc.ScorePost(context.Background(), 3, dto.ScorePostRequest{
		Clarity: 5, Evidence: 5, Logic: 5, Persuasiveness: 5, Rebuttal: 5,
	})
	require.ErrorIs(t, err, ErrPostAlreadyScored)
}

func TestScorePostBlockedWhileHeld(t *testing.T) {
	posts := newFakePostRepo(models.DebatePost{
		ID: 4, StudentDebateID: 9, PostType: models.PostTypeStudent,
		ModerationStatus: models.ModerationStatusHeld,
	})
	svc := newTestScoring(posts, &fakeChallengeRepo{}, newFakeSessionRepo())

	_, err := svc.ScorePost(context.Background(), 4, dto.ScorePostRequest{
		Clarity: 3, Evidence: 3, Logic: 3, Persuasiveness: 3, Rebuttal: 3,
	})
	require.ErrorIs(t, err, ErrModerationHold)
}

func TestRollupDebateCapsBonusAndIsIdempotent(t *testing.T) {
	posts := newFakePostRepo(
		scoredStudentPost(1, 9, 1, 1, 1, 100),
		scoredStudentPost(2, 9, 1, 1, 3, 100),
	)
	challenges := &fakeChallengeRepo{challenges: []models.DebateChallenge{
		{StudentDebateID: 9, DebateNumber: 1, RoundNumber: 1, PointsAwarded: 3},
		{StudentDebateID: 9, DebateNumber: 1, RoundNumber: 2, PointsAwarded: 3},
		{StudentDebateID: 9, DebateNumber: 1, RoundNumber: 3, PointsAwarded: 1},
	}}
	sessions := newFakeSessionRepo()
	svc := newTestScoring(posts, challenges, sessions)

	session := models.StudentDebate{ID: 9}
	result, err := svc.RollupDebate(context.Background(), &session, 1)
	require.NoError(t, err)
	require.InDelta(t, 105.0, result, 0.001, "bonus cannot push a debate past the cap")
	require.NotNil(t, session.Debate1Percentage)

	again, err := svc.RollupDebate(context.Background(), &session, 1)
	require.NoError(t, err)
	require.Equal(t, result, again, "rollups recompute from scratch")
}

func TestRollupDebateIgnoresUnscoredPosts(t *testing.T) {
	posts := newFakePostRepo(
		scoredStudentPost(1, 9, 1, 1, 1, 80),
		models.DebatePost{ID: 2, StudentDebateID: 9, DebateNumber: 1, RoundNumber: 1, StatementNumber: 3, PostType: models.PostTypeStudent},
		models.DebatePost{ID: 3, StudentDebateID: 9, DebateNumber: 1, RoundNumber: 1, StatementNumber: 2, PostType: models.PostTypeAI},
	)
	svc := newTestScoring(posts, &fakeChallengeRepo{}, newFakeSessionRepo())

	session := models.StudentDebate{ID: 9}
	result, err := svc.RollupDebate(context.Background(), &session, 1)
	require.NoError(t, err)
	require.InDelta(t, 80.0, result, 0.001, "only scored student statements enter the average")
}

func TestRollupFinalBonuses(t *testing.T) {
	svc := newTestScoring(newFakePostRepo(), &fakeChallengeRepo{}, newFakeSessionRepo())

	improvementOnly := func(d1, d2, d3 float64) float64 {
		session := models.StudentDebate{ID: 1, Debate1Percentage: &d1, Debate2Percentage: &d2, Debate3Percentage: &d3}
		grade, err := svc.RollupFinal(context.Background(), &session)
		require.NoError(t, err)
		return grade
	}

	// Improvement without consistency: span 20 > 15.
	require.InDelta(t, 83.0, improvementOnly(70, 80, 90), 0.001)

	// Both bonuses: mean 82, improvement and a 4-point span.
	require.InDelta(t, 87.0, improvementOnly(80, 82, 84), 0.001)

	// Neither: debate three below the earlier mean, wide span.
	require.InDelta(t, 80.0, improvementOnly(90, 80, 70), 0.001)

	// Bonuses cannot break the cap.
	require.InDelta(t, 105.0, improvementOnly(104, 104, 105), 0.001)
}

func TestRollupFinalIncompleteDebates(t *testing.T) {
	svc := newTestScoring(newFakePostRepo(), &fakeChallengeRepo{}, newFakeSessionRepo())

	d1 := 80.0
	session := models.StudentDebate{ID: 1, Debate1Percentage: &d1}
	grade, err := svc.RollupFinal(context.Background(), &session)
	require.NoError(t, err)
	require.Zero(t, grade)
	require.NotNil(t, session.FinalPercentage)
	require.Zero(t, *session.FinalPercentage)
}

func TestScorePostRefreshesClosedDebateRollup(t *testing.T) {
	posts := newFakePostRepo(models.DebatePost{
		ID:              1,
		StudentDebateID: 9,
		DebateNumber:    1,
		RoundNumber:     3,
		StatementNumber: 5,
		PostType:        models.PostTypeStudent,
	})
	sessions := newFakeSessionRepo(models.StudentDebate{
		ID:            9,
		Status:        models.DebateStatusDebate2,
		CurrentDebate: 2,
	})
	svc := newTestScoring(posts, &fakeChallengeRepo{}, sessions)

	_, err := svc.ScorePost(context.Background(), 1, dto.ScorePostRequest{
		Clarity: 5, Evidence: 5, Logic: 5, Persuasiveness: 5, Rebuttal: 5,
	})
	require.NoError(t, err)

	require.Equal(t, 1, sessions.updateCalls, "late sub-scores re-roll the closed debate")
	stored := sessions.sessions[9]
	require.NotNil(t, stored.Debate1Percentage)
	require.InDelta(t, 100.0, *stored.Debate1Percentage, 0.001)
}
