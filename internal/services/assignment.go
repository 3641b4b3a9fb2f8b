package services

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Marcos1701/finquest-backend/internal/dto"
	"github.com/Marcos1701/finquest-backend/internal/models"
	"github.com/Marcos1701/finquest-backend/pkg/logger"
)

// Scoring weights. Relevance to an at-risk indicator dominates; urgency
// signals, the curator priority and tier fit refine the ordering.
var (
	weightAtRisk       = decimal.NewFromInt(40)
	weightUrgency      = decimal.NewFromInt(25)
	weightSecondary    = decimal.NewFromInt(10)
	weightPriorityUnit = decimal.NewFromInt(5)
	weightTierExact    = decimal.NewFromInt(10)
	weightTierAdjacent = decimal.NewFromInt(5)
)

type assignmentMissionStore interface {
	ListActiveMissions(ctx context.Context) ([]models.Mission, error)
}

type assignmentProgressStore interface {
	ListProgress(ctx context.Context, uid string) ([]models.MissionProgress, error)
	CreateProgress(ctx context.Context, uid string, p *models.MissionProgress) error
}

type contextAnalyzer interface {
	Analyze(ctx context.Context, uid string) (dto.UserContext, error)
}

type assignmentService struct {
	missions assignmentMissionStore
	progress assignmentProgressStore
	analyzer contextAnalyzer
	clockNow func() time.Time
	newID    func() string
}

func NewAssignmentService(missions assignmentMissionStore, progress assignmentProgressStore, analyzer contextAnalyzer) *assignmentService {
	return &assignmentService{
		missions: missions,
		progress: progress,
		analyzer: analyzer,
		clockNow: time.Now,
		newID:    func() string { return uuid.New().String() },
	}
}

// AssignMissions fills the user's free mission slots up to maxActive and
// returns the resulting active set (existing non-terminal instances plus the
// ones just created), ordered by mission ID. A mission that is pending,
// active or already completed for the user is never re-assigned, so repeated
// calls with an unchanged ledger are idempotent.
func (s *assignmentService) AssignMissions(ctx context.Context, uid string, maxActive int) ([]models.MissionProgress, error) {
	log := logger.FromContext(ctx)

	existing, err := s.progress.ListProgress(ctx, uid)
	if err != nil {
		return nil, err
	}

	ineligible := map[string]bool{}
	var active []models.MissionProgress
	for _, p := range existing {
		switch p.Status {
		case models.StatusPending, models.StatusActive:
			ineligible[p.MissionID] = true
			active = append(active, p)
		case models.StatusCompleted:
			ineligible[p.MissionID] = true
		}
		// FAILED and SKIPPED missions may be offered again.
	}

	slots := maxActive - len(active)
	if slots <= 0 {
		sortProgressSet(active)
		return active, nil
	}

	uctx, err := s.analyzer.Analyze(ctx, uid)
	if err != nil {
		return nil, err
	}

	catalog, err := s.missions.ListActiveMissions(ctx)
	if err != nil {
		return nil, err
	}

	scored := s.rankCandidates(catalog, uctx, ineligible)

	now := s.clockNow()
	for _, cand := range scored {
		if slots == 0 {
			break
		}
		p := &models.MissionProgress{
			ProgressID: s.newID(),
			UID:        uid,
			MissionID:  cand.Mission.MissionID,
			Status:     models.StatusPending,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.progress.CreateProgress(ctx, uid, p); err != nil {
			return nil, err
		}
		log.Info("mission assigned", "mission_id", cand.Mission.MissionID, "score", cand.Score.String())
		active = append(active, *p)
		slots--
	}

	sortProgressSet(active)
	return active, nil
}

// rankCandidates scores every eligible catalog mission and orders them by
// score descending, with priority then title as deterministic tie-breakers.
func (s *assignmentService) rankCandidates(catalog []models.Mission, uctx dto.UserContext, ineligible map[string]bool) []dto.ScoredMission {
	scored := make([]dto.ScoredMission, 0, len(catalog))
	for _, m := range catalog {
		if !m.Active || ineligible[m.MissionID] {
			continue
		}
		// Goal missions are structurally pointless without active goals.
		if m.Type == models.MissionGoalAchievement && !uctx.HasActiveGoals {
			continue
		}
		scored = append(scored, dto.ScoredMission{
			Mission: m,
			Score:   scoreMission(m, uctx),
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if !scored[i].Score.Equal(scored[j].Score) {
			return scored[i].Score.GreaterThan(scored[j].Score)
		}
		if scored[i].Mission.Priority != scored[j].Mission.Priority {
			return scored[i].Mission.Priority > scored[j].Mission.Priority
		}
		return scored[i].Mission.Title < scored[j].Mission.Title
	})
	return scored
}

// scoreMission weighs a mission's relevance to the analyzed context.
func scoreMission(m models.Mission, uctx dto.UserContext) decimal.Decimal {
	score := decimal.Zero

	switch m.Type {
	case models.MissionSavings:
		if uctx.AtRisk(dto.RiskSavingsRate) {
			score = score.Add(weightAtRisk)
		}
	case models.MissionDebtReduction:
		if uctx.AtRisk(dto.RiskDebtRatio) {
			score = score.Add(weightAtRisk)
		}
	case models.MissionReserveBuilding:
		if uctx.AtRisk(dto.RiskReserveCoverage) {
			score = score.Add(weightAtRisk)
		}
	case models.MissionExpenseControl:
		if len(uctx.SpendingGrowth) > 0 {
			score = score.Add(weightUrgency)
			for _, g := range uctx.SpendingGrowth {
				if g.CategoryID == m.Targets.CategoryID {
					score = score.Add(weightSecondary)
					break
				}
			}
		}
	case models.MissionGoalAchievement:
		if len(uctx.GoalsNearingDeadline) > 0 {
			score = score.Add(weightUrgency)
		}
		if len(uctx.StagnantGoals) > 0 {
			score = score.Add(weightSecondary)
		}
	case models.MissionConsistency:
		if len(uctx.RecentTransactions) < 10 {
			score = score.Add(weightUrgency)
		}
	}

	score = score.Add(weightPriorityUnit.Mul(decimal.NewFromInt(int64(m.Priority))))
	score = score.Add(tierFit(m.Difficulty, uctx.Tier))
	return score
}

// tierFit rewards difficulty matching the user's tier; adjacent difficulty
// earns half credit, a two-step mismatch none.
func tierFit(d models.Difficulty, tier dto.Tier) decimal.Decimal {
	rank := map[models.Difficulty]int{
		models.DifficultyEasy:   0,
		models.DifficultyMedium: 1,
		models.DifficultyHard:   2,
	}
	tierRank := map[dto.Tier]int{
		dto.TierBeginner:     0,
		dto.TierIntermediate: 1,
		dto.TierAdvanced:     2,
	}

	diff := rank[d] - tierRank[tier]
	if diff < 0 {
		diff = -diff
	}
	switch diff {
	case 0:
		return weightTierExact
	case 1:
		return weightTierAdjacent
	default:
		return decimal.Zero
	}
}

func sortProgressSet(set []models.MissionProgress) {
	sort.Slice(set, func(i, j int) bool {
		return set[i].MissionID < set[j].MissionID
	})
}
