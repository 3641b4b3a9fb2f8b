package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Marcos1701/finquest-backend/internal/dto"
	"github.com/Marcos1701/finquest-backend/internal/errs"
	"github.com/Marcos1701/finquest-backend/internal/models"
	"github.com/Marcos1701/finquest-backend/pkg/helpers"
	"github.com/Marcos1701/finquest-backend/pkg/logger"
	"github.com/Marcos1701/finquest-backend/pkg/similarity"
)

const (
	maxBatchSize = 20

	aiTemperature = float32(0.9)
	aiMaxTokens   = int32(4096)
)

type vertexClient interface {
	GenerateContent(ctx context.Context, req dto.VertexGenerateRequest) (dto.VertexGenerateResponse, error)
}

type generatorMissionStore interface {
	ListMissions(ctx context.Context) ([]models.Mission, error)
	CreateMission(ctx context.Context, m *models.Mission) error
}

// GeneratorConfig tunes the hybrid pipeline. Similarity thresholds gate the
// duplicate check against the existing catalog.
type GeneratorConfig struct {
	Model                 string
	AITimeout             time.Duration
	TitleSimilarity       float64
	DescriptionSimilarity float64
}

type generatorService struct {
	store    generatorMissionStore
	vertex   vertexClient
	cfg      GeneratorConfig
	clockNow func() time.Time
	newID    func() string
	randIntn func(int) int
}

func NewGeneratorService(store generatorMissionStore, vertex vertexClient, cfg GeneratorConfig) *generatorService {
	return &generatorService{
		store:    store,
		vertex:   vertex,
		cfg:      cfg,
		clockNow: time.Now,
		newID:    func() string { return uuid.New().String() },
		randIntn: rand.Intn,
	}
}

// GenerateBatch produces up to count new catalog missions for the tier, AI
// first when requested and the template expander for whatever quota remains.
// A failed or rejected candidate is recorded and skipped, never retried; the
// batch itself only errors on invalid input or a catalog read failure.
func (s *generatorService) GenerateBatch(ctx context.Context, tier dto.Tier, count int, useAI bool) (dto.GenerateBatchResult, error) {
	if count < 1 || count > maxBatchSize {
		return dto.GenerateBatchResult{}, errs.NewValidationError(fmt.Sprintf("count must be between 1 and %d", maxBatchSize))
	}
	switch tier {
	case dto.TierBeginner, dto.TierIntermediate, dto.TierAdvanced:
	default:
		return dto.GenerateBatchResult{}, errs.NewValidationError("unknown tier: " + string(tier))
	}

	existing, err := s.store.ListMissions(ctx)
	if err != nil {
		return dto.GenerateBatchResult{}, err
	}

	uctx := contextForTier(tier)
	result := dto.GenerateBatchResult{
		Failed:  []dto.GenerationFailure{},
		Summary: dto.GenerationSummary{Requested: count},
	}

	if useAI && s.vertex != nil {
		existing = s.runAIPass(ctx, tier, count, existing, &result)
	}

	// One template attempt per unfilled slot. A rejected expansion leaves
	// the quota short rather than looping forever.
	remaining := count - result.Summary.Created
	for slot := 0; slot < remaining; slot++ {
		candidate := expandTemplate(slot, tier, uctx, s.randIntn)
		if created := s.admit(ctx, candidate, uctx, &existing, &result); created {
			result.Summary.FromTemplates++
		}
	}

	logger.FromContext(ctx).Info("mission batch generated",
		"tier", tier,
		"requested", count,
		"created", result.Summary.Created,
		"from_ai", result.Summary.FromAI,
		"from_templates", result.Summary.FromTemplates,
		"rejected", result.Summary.Rejected)
	return result, nil
}

// runAIPass asks Vertex for the full batch and admits whatever survives
// validation. Any AI failure degrades to template-only generation.
func (s *generatorService) runAIPass(ctx context.Context, tier dto.Tier, count int, existing []models.Mission, result *dto.GenerateBatchResult) []models.Mission {
	log := logger.FromContext(ctx)
	uctx := contextForTier(tier)

	aiCtx, cancel := context.WithTimeout(ctx, s.cfg.AITimeout)
	defer cancel()

	resp, err := s.vertex.GenerateContent(aiCtx, dto.VertexGenerateRequest{
		Model:           s.cfg.Model,
		System:          generationSystemPrompt(tier),
		UserMessage:     generationUserPrompt(tier, count, existing),
		Temperature:     helpers.Ptr(aiTemperature),
		MaxOutputTokens: helpers.Ptr(aiMaxTokens),
	})
	if err != nil {
		log.Warn("ai generation failed, falling back to templates", "tier", tier, "error", err)
		return existing
	}

	candidates, err := parseAICandidates(resp.Text)
	if err != nil {
		log.Warn("ai response unparseable, falling back to templates", "error", err)
		result.Failed = append(result.Failed, dto.GenerationFailure{
			Reason: dto.ReasonUnparseable,
			Detail: err.Error(),
		})
		result.Summary.Rejected++
		return existing
	}

	for _, c := range candidates {
		if result.Summary.Created >= count {
			break
		}
		c.Source = models.SourceAI
		if created := s.admit(ctx, c, uctx, &existing, result); created {
			result.Summary.FromAI++
		}
	}
	return existing
}

// admit runs the full vetting pipeline on one candidate and persists it when
// it survives. The new mission is appended to existing so later candidates in
// the same batch are deduplicated against it.
func (s *generatorService) admit(ctx context.Context, c dto.MissionCandidate, uctx dto.UserContext, existing *[]models.Mission, result *dto.GenerateBatchResult) bool {
	reject := func(reason, detail string) bool {
		result.Failed = append(result.Failed, dto.GenerationFailure{
			Title:  c.Title,
			Reason: reason,
			Detail: detail,
		})
		result.Summary.Rejected++
		return false
	}

	if reason := checkBounds(c); reason != "" {
		return reject(reason, "")
	}
	if reason := checkViability(c, uctx); reason != "" {
		return reject(reason, "")
	}
	if reason, match := s.findDuplicate(c, *existing); reason != "" {
		return reject(reason, "matches "+match)
	}

	now := s.clockNow()
	mission := models.Mission{
		MissionID:       s.newID(),
		Title:           strings.TrimSpace(c.Title),
		Description:     strings.TrimSpace(c.Description),
		Type:            c.Type,
		ValidationType:  c.ValidationType,
		Targets:         c.Targets,
		DurationDays:    c.DurationDays,
		RewardPoints:    c.RewardPoints,
		Difficulty:      c.Difficulty,
		Priority:        1,
		Active:          true,
		SystemGenerated: true,
		GeneratedBy:     c.Source,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.CreateMission(ctx, &mission); err != nil {
		return reject(dto.ReasonPersistFailed, err.Error())
	}

	*existing = append(*existing, mission)
	result.Created = append(result.Created, mission)
	result.Summary.Created++
	return true
}

// findDuplicate compares a candidate against every active catalog mission.
// An exact title match (case-insensitive) always rejects; otherwise both the
// title and description similarity ratios must clear their thresholds.
func (s *generatorService) findDuplicate(c dto.MissionCandidate, existing []models.Mission) (reason, match string) {
	title := strings.TrimSpace(c.Title)
	for _, m := range existing {
		if !m.Active {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(m.Title), title) {
			return dto.ReasonDuplicateTitle, m.Title
		}
		if similarity.Ratio(m.Title, c.Title) >= s.cfg.TitleSimilarity &&
			similarity.Ratio(m.Description, c.Description) >= s.cfg.DescriptionSimilarity {
			return dto.ReasonDuplicateSimilar, m.Title
		}
	}
	return "", ""
}

// parseAICandidates extracts a JSON array of candidates from model output,
// tolerating markdown fences and surrounding prose.
func parseAICandidates(text string) ([]dto.MissionCandidate, error) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON array in model output")
	}
	var candidates []dto.MissionCandidate
	if err := json.Unmarshal([]byte(text[start:end+1]), &candidates); err != nil {
		return nil, fmt.Errorf("decode candidates: %w", err)
	}
	return candidates, nil
}

func generationSystemPrompt(tier dto.Tier) string {
	d := tierDefaults(tier)
	return fmt.Sprintf(`You design short gamified personal-finance missions for a %s-tier user.
Assume baseline indicators: savings rate %s%%, debt ratio %s%%, reserve coverage %s months.
Respond with ONLY a JSON array. Each element:
{"title": string, "description": string,
 "type": one of ["SAVINGS","DEBT_REDUCTION","RESERVE_BUILDING","EXPENSE_CONTROL","CONSISTENCY"],
 "validationType": one of ["SAVINGS_RATE","DEBT_RATIO","RESERVE_COVERAGE","TRANSACTION_COUNT","TRANSACTION_CONSISTENCY"],
 "targets": {"savingsRate"|"debtRatio"|"reserveMonths"|"transactionCount"|"weeklyFrequency": number},
 "durationDays": int, "rewardPoints": int,
 "difficulty": one of ["EASY","MEDIUM","HARD"]}
Targets must be achievable from the baseline within the duration but not already met.`,
		strings.ToLower(string(tier)),
		d.SavingsRate.StringFixed(0), d.DebtRatio.StringFixed(0), d.ReserveCoverage.StringFixed(1))
}

func generationUserPrompt(tier dto.Tier, count int, existing []models.Mission) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d distinct missions for the %s tier.", count, strings.ToLower(string(tier)))
	titles := activeTitles(existing, 30)
	if len(titles) > 0 {
		b.WriteString(" Avoid anything resembling these existing missions: ")
		b.WriteString(strings.Join(titles, "; "))
		b.WriteString(".")
	}
	return b.String()
}

func activeTitles(missions []models.Mission, limit int) []string {
	titles := make([]string, 0, limit)
	for _, m := range missions {
		if !m.Active {
			continue
		}
		titles = append(titles, m.Title)
		if len(titles) == limit {
			break
		}
	}
	return titles
}
