package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Marcos1701/finquest-backend/internal/dto"
	"github.com/Marcos1701/finquest-backend/internal/models"
	"github.com/Marcos1701/finquest-backend/pkg/logger"
)

// indicatorWindowDays is the trailing window for savings rate, debt ratio and
// the reserve-coverage denominator. The reserve-coverage numerator is
// deliberately lifetime-cumulative; see ComputeAt.
const indicatorWindowDays = 30

var hundred = decimal.NewFromInt(100)

type indicatorTxStore interface {
	Query(ctx context.Context, uid string, q dto.TransactionQuery) (<-chan *models.Transaction, <-chan error)
}

type indicatorLinkStore interface {
	ListLinks(ctx context.Context, uid string, from, to time.Time) ([]models.TransactionLink, error)
}

type indicatorCategoryStore interface {
	ListCategories(ctx context.Context, uid string) ([]models.Category, error)
}

type indicatorProfileStore interface {
	GetProfile(ctx context.Context, uid string) (*models.UserProfile, error)
	SaveIndicatorCache(ctx context.Context, uid string, snap dto.IndicatorSnapshot) error
	ClearIndicatorCache(ctx context.Context, uid string) error
}

type indicatorService struct {
	txs      indicatorTxStore
	links    indicatorLinkStore
	cats     indicatorCategoryStore
	profiles indicatorProfileStore
	clockNow func() time.Time
}

func NewIndicatorService(txs indicatorTxStore, links indicatorLinkStore, cats indicatorCategoryStore, profiles indicatorProfileStore) *indicatorService {
	return &indicatorService{
		txs:      txs,
		links:    links,
		cats:     cats,
		profiles: profiles,
		clockNow: time.Now,
	}
}

// ComputeAt derives the indicator snapshot from ledger state as of the given
// instant. It is pure aside from the ledger reads: safe to race, idempotent.
//
// Savings rate (TPS) and debt ratio (RDR) read the trailing 30 days. Reserve
// coverage (ILI) divides the lifetime net flow into SAVINGS/INVESTMENT
// categories by the trailing-30-day essential expense; the window asymmetry
// matches the regression-tested behavior of the original formula and must not
// be "fixed".
func (s *indicatorService) ComputeAt(ctx context.Context, uid string, asOf time.Time) (dto.IndicatorSnapshot, error) {
	snap := dto.IndicatorSnapshot{ComputedAt: asOf}

	groups, err := s.categoryGroups(ctx, uid)
	if err != nil {
		return snap, err
	}

	windowStart := asOf.AddDate(0, 0, -indicatorWindowDays)

	var income30, expense30, essential30, reserveNet decimal.Decimal

	// One scan bounded above by asOf: future-dated/scheduled entries never
	// count, the lifetime reserve flow needs no lower bound.
	txCh, errCh := s.txs.Query(ctx, uid, dto.TransactionQuery{DateTo: &asOf})
	err = streamTransactions(txCh, errCh, func(tx *models.Transaction) error {
		if tx.Deleted() {
			return nil
		}
		group := groups[tx.CategoryID]
		reserve := group == models.GroupSavings || group == models.GroupInvestment
		inWindow := !tx.Date.Before(windowStart)

		switch tx.Type {
		case models.TransactionIncome:
			if inWindow {
				income30 = income30.Add(tx.Amount)
			}
			if reserve {
				reserveNet = reserveNet.Add(tx.Amount)
			}
		case models.TransactionExpense:
			if inWindow {
				expense30 = expense30.Add(tx.Amount)
				if group == models.GroupEssentialExpense {
					essential30 = essential30.Add(tx.Amount)
				}
			}
			if reserve {
				reserveNet = reserveNet.Sub(tx.Amount)
			}
		}
		return nil
	})
	if err != nil {
		return snap, err
	}

	snap.TotalIncome = income30
	snap.TotalExpense = expense30

	if income30.IsPositive() {
		snap.SavingsRate = income30.Sub(expense30).Div(income30).Mul(hundred).Round(2)

		debt, err := s.debtSettled(ctx, uid, windowStart, asOf)
		if err != nil {
			return snap, err
		}
		snap.DebtRatio = debt.Div(income30).Mul(hundred).Round(2)
	}

	if essential30.IsPositive() {
		snap.ReserveCoverage = reserveNet.Div(essential30).Round(2)
	}

	return snap, nil
}

// Get serves the cached indicators when the cache is fresh, recomputing and
// writing the cache otherwise. Cached reads carry only the three ratios; the
// window totals are populated on fresh computation only.
func (s *indicatorService) Get(ctx context.Context, uid string) (dto.IndicatorSnapshot, error) {
	profile, err := s.profiles.GetProfile(ctx, uid)
	if err != nil {
		return dto.IndicatorSnapshot{}, err
	}

	if profile.IndicatorsCachedAt != nil {
		return dto.IndicatorSnapshot{
			SavingsRate:     profile.SavingsRate,
			DebtRatio:       profile.DebtRatio,
			ReserveCoverage: profile.ReserveCoverage,
			ComputedAt:      *profile.IndicatorsCachedAt,
			FromCache:       true,
		}, nil
	}

	snap, err := s.ComputeAt(ctx, uid, s.clockNow())
	if err != nil {
		return snap, err
	}

	// Last-writer-wins on the cache: inputs are read fresh each time, so a
	// racing recomputation is harmless.
	if err := s.profiles.SaveIndicatorCache(ctx, uid, snap); err != nil {
		logger.FromContext(ctx).Warn("indicator cache write failed", "error", err)
	}
	return snap, nil
}

// Invalidate marks the cached indicators stale. Called on every transaction
// or link mutation affecting the user.
func (s *indicatorService) Invalidate(ctx context.Context, uid string) error {
	return s.profiles.ClearIndicatorCache(ctx, uid)
}

func (s *indicatorService) debtSettled(ctx context.Context, uid string, from, to time.Time) (decimal.Decimal, error) {
	links, err := s.links.ListLinks(ctx, uid, from, to)
	if err != nil {
		return decimal.Zero, err
	}

	var total decimal.Decimal
	for _, l := range links {
		if l.Type == models.LinkDebtSettlement {
			total = total.Add(l.Amount)
		}
	}
	return total, nil
}

func (s *indicatorService) categoryGroups(ctx context.Context, uid string) (map[string]models.CategoryGroup, error) {
	cats, err := s.cats.ListCategories(ctx, uid)
	if err != nil {
		return nil, err
	}

	groups := make(map[string]models.CategoryGroup, len(cats))
	for _, c := range cats {
		groups[c.CategoryID] = c.Group
	}
	return groups, nil
}
