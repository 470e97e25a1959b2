package service

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/ctroy978/umadex-sub002/internal/models"
	"github.com/ctroy978/umadex-sub002/internal/repository"
)

// defaultFallacyTemplates is the built-in catalog the scheduler draws from.
// Seeded idempotently at startup; teachers can deactivate entries later.
var defaultFallacyTemplates = []models.FallacyTemplate{
	{
		FallacyType: "ad_hominem",
		DisplayName: "Ad Hominem",
		Description: "Attacks the person making the argument instead of the argument itself.",
		Difficulty:  1,
		Active:      true,
	},
	{
		FallacyType: "strawman",
		DisplayName: "Strawman",
		Description: "Misrepresents the opponent's position as a weaker claim and refutes that instead.",
		Difficulty:  1,
		Active:      true,
	},
	{
		FallacyType: "false_dilemma",
		DisplayName: "False Dilemma",
		Description: "Presents only two options when more exist.",
		Difficulty:  2,
		Active:      true,
	},
	{
		FallacyType: "slippery_slope",
		DisplayName: "Slippery Slope",
		Description: "Claims a small first step inevitably leads to an extreme outcome without justification.",
		Difficulty:  2,
		Active:      true,
	},
	{
		FallacyType:   "hasty_generalization",
		DisplayName:   "Hasty Generalization",
		Description:   "Draws a broad conclusion from too few examples.",
		Difficulty:    2,
		TopicKeywords: datatypes.JSON(`["school", "students", "homework", "phones"]`),
		Active:        true,
	},
	{
		FallacyType: "appeal_to_popularity",
		DisplayName: "Appeal to Popularity",
		Description: "Argues a claim is true because many people believe it.",
		Difficulty:  1,
		Active:      true,
	},
	{
		FallacyType: "red_herring",
		DisplayName: "Red Herring",
		Description: "Introduces an irrelevant point to divert attention from the issue.",
		Difficulty:  3,
		Active:      true,
	},
	{
		FallacyType: "circular_reasoning",
		DisplayName: "Circular Reasoning",
		Description: "Uses the conclusion as one of its own premises.",
		Difficulty:  3,
		Active:      true,
	},
	{
		FallacyType: "false_cause",
		DisplayName: "False Cause",
		Description: "Treats correlation or sequence as proof of causation.",
		Difficulty:  2,
		Active:      true,
	},
	{
		FallacyType: "appeal_to_fear",
		DisplayName: "Appeal to Fear",
		Description: "Supports a claim by raising fear of the alternative rather than evidence.",
		Difficulty:  1,
		Active:      true,
	},
}

// SeedFallacyTemplates upserts the built-in fallacy catalog.
func SeedFallacyTemplates(ctx context.Context, templates repository.FallacyTemplateRepository, logger zerolog.Logger) error {
	affected, err := templates.UpsertBatch(ctx, defaultFallacyTemplates)
	if err != nil {
		return err
	}
	logger.Info().Int64("affected", affected).Msg("fallacy templates seeded")
	return nil
}
