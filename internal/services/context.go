package services

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Marcos1701/finquest-backend/internal/dto"
	"github.com/Marcos1701/finquest-backend/internal/models"
)

const (
	contextWindowDays  = 30
	contextTxCap       = 50
	topCategoryCount   = 5
	deadlineSoonDays   = 14
	stagnantGoalDays   = 14
	tierIntermediateAt = 5
	tierAdvancedAt     = 15
)

// growthThreshold flags categories whose trailing-30-day spend grew more than
// this percentage over the preceding 30 days.
var growthThreshold = decimal.NewFromInt(20)

type contextProfileStore interface {
	GetProfile(ctx context.Context, uid string) (*models.UserProfile, error)
}

// contextService builds the analyzed user situation consumed by mission
// prioritization and generation viability checks.
type contextService struct {
	txs        indicatorTxStore
	cats       indicatorCategoryStore
	goals      validatorGoalStore
	profiles   contextProfileStore
	indicators indicatorProvider
	clockNow   func() time.Time
}

func NewContextService(txs indicatorTxStore, cats indicatorCategoryStore, goals validatorGoalStore, profiles contextProfileStore, indicators indicatorProvider) *contextService {
	return &contextService{
		txs:        txs,
		cats:       cats,
		goals:      goals,
		profiles:   profiles,
		indicators: indicators,
		clockNow:   time.Now,
	}
}

func (s *contextService) Analyze(ctx context.Context, uid string) (dto.UserContext, error) {
	now := s.clockNow()
	out := dto.UserContext{UID: uid, AnalyzedAt: now}

	profile, err := s.profiles.GetProfile(ctx, uid)
	if err != nil {
		return out, err
	}
	out.Level = profile.Level
	out.Tier = tierForLevel(profile.Level)

	snap, err := s.indicators.Get(ctx, uid)
	if err != nil {
		return out, err
	}
	out.Indicators = snap
	out.AtRiskIndicators = atRiskIndicators(profile, snap)

	names, groups, err := s.categoryIndex(ctx, uid)
	if err != nil {
		return out, err
	}

	currentSpend, recent, err := s.windowSpend(ctx, uid, now.AddDate(0, 0, -contextWindowDays), now, contextTxCap)
	if err != nil {
		return out, err
	}
	previousSpend, _, err := s.windowSpend(ctx, uid, now.AddDate(0, 0, -2*contextWindowDays), now.AddDate(0, 0, -contextWindowDays), 0)
	if err != nil {
		return out, err
	}

	out.RecentTransactions = recent
	out.TopCategories = topCategories(currentSpend, names, groups)
	out.SpendingGrowth = spendingGrowth(currentSpend, previousSpend, names)

	goals, err := s.goals.ListGoals(ctx, uid)
	if err != nil {
		return out, err
	}
	for _, g := range goals {
		if g.Achieved() {
			continue
		}
		out.HasActiveGoals = true
		if !g.Deadline.IsZero() && g.Deadline.Before(now.AddDate(0, 0, deadlineSoonDays)) {
			out.GoalsNearingDeadline = append(out.GoalsNearingDeadline, g)
		}
		if goalStagnant(g, now) {
			out.StagnantGoals = append(out.StagnantGoals, g)
		}
	}

	return out, nil
}

type categorySpendAgg struct {
	total decimal.Decimal
	count int
}

// windowSpend aggregates per-category expense totals over [from, to] and, when
// txLimit > 0, collects up to txLimit transactions from the window.
func (s *contextService) windowSpend(ctx context.Context, uid string, from, to time.Time, txLimit int) (map[string]categorySpendAgg, []models.Transaction, error) {
	spend := map[string]categorySpendAgg{}
	var recent []models.Transaction

	txCh, errCh := s.txs.Query(ctx, uid, dto.TransactionQuery{DateFrom: &from, DateTo: &to})
	err := streamTransactions(txCh, errCh, func(tx *models.Transaction) error {
		if tx.Deleted() {
			return nil
		}
		if txLimit > 0 && len(recent) < txLimit {
			recent = append(recent, *tx)
		}
		if tx.Type == models.TransactionExpense && tx.CategoryID != "" {
			agg := spend[tx.CategoryID]
			agg.total = agg.total.Add(tx.Amount)
			agg.count++
			spend[tx.CategoryID] = agg
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return spend, recent, nil
}

func (s *contextService) categoryIndex(ctx context.Context, uid string) (map[string]string, map[string]models.CategoryGroup, error) {
	cats, err := s.cats.ListCategories(ctx, uid)
	if err != nil {
		return nil, nil, err
	}
	names := make(map[string]string, len(cats))
	groups := make(map[string]models.CategoryGroup, len(cats))
	for _, c := range cats {
		names[c.CategoryID] = c.Name
		groups[c.CategoryID] = c.Group
	}
	return names, groups, nil
}

func topCategories(spend map[string]categorySpendAgg, names map[string]string, groups map[string]models.CategoryGroup) []dto.CategorySpend {
	out := make([]dto.CategorySpend, 0, len(spend))
	for id, agg := range spend {
		out = append(out, dto.CategorySpend{
			CategoryID: id,
			Name:       names[id],
			Group:      groups[id],
			Total:      agg.total,
			Count:      agg.count,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Total.Equal(out[j].Total) {
			return out[i].Total.GreaterThan(out[j].Total)
		}
		return out[i].CategoryID < out[j].CategoryID
	})
	if len(out) > topCategoryCount {
		out = out[:topCategoryCount]
	}
	return out
}

func spendingGrowth(current, previous map[string]categorySpendAgg, names map[string]string) []dto.CategoryGrowth {
	var out []dto.CategoryGrowth
	for id, cur := range current {
		prev, ok := previous[id]
		if !ok || !prev.total.IsPositive() {
			continue
		}
		growth := cur.total.Sub(prev.total).Div(prev.total).Mul(hundred).Round(2)
		if growth.GreaterThan(growthThreshold) {
			out = append(out, dto.CategoryGrowth{
				CategoryID:    id,
				Name:          names[id],
				Previous:      prev.total,
				Current:       cur.total,
				GrowthPercent: growth,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].GrowthPercent.Equal(out[j].GrowthPercent) {
			return out[i].GrowthPercent.GreaterThan(out[j].GrowthPercent)
		}
		return out[i].CategoryID < out[j].CategoryID
	})
	return out
}

func goalStagnant(g models.Goal, now time.Time) bool {
	cutoff := now.AddDate(0, 0, -stagnantGoalDays)
	if g.LastContributionAt != nil {
		return g.LastContributionAt.Before(cutoff)
	}
	return g.CreatedAt.Before(cutoff)
}

func atRiskIndicators(profile *models.UserProfile, snap dto.IndicatorSnapshot) []dto.AtRiskIndicator {
	var out []dto.AtRiskIndicator
	if profile.TargetSavingsRate.IsPositive() && snap.SavingsRate.LessThan(profile.TargetSavingsRate) {
		out = append(out, dto.RiskSavingsRate)
	}
	if profile.TargetDebtRatio.IsPositive() && snap.DebtRatio.GreaterThan(profile.TargetDebtRatio) {
		out = append(out, dto.RiskDebtRatio)
	}
	if profile.TargetReserveMonths.IsPositive() && snap.ReserveCoverage.LessThan(profile.TargetReserveMonths) {
		out = append(out, dto.RiskReserveCoverage)
	}
	return out
}

func tierForLevel(level int) dto.Tier {
	switch {
	case level < tierIntermediateAt:
		return dto.TierBeginner
	case level < tierAdvancedAt:
		return dto.TierIntermediate
	default:
		return dto.TierAdvanced
	}
}
