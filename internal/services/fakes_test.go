package services

import (
	"context"
	"time"

	"github.com/Marcos1701/finquest-backend/internal/dto"
	"github.com/Marcos1701/finquest-backend/internal/errs"
	"github.com/Marcos1701/finquest-backend/internal/models"
)

// fakeLedger backs the transaction/link/category store interfaces for every
// service test in this package. Query applies the same filter semantics as
// the Firestore store.
type fakeLedger struct {
	txs      []models.Transaction
	links    []models.TransactionLink
	cats     []models.Category
	queryErr error
	linksErr error
	catsErr  error
}

func (f *fakeLedger) Query(_ context.Context, _ string, q dto.TransactionQuery) (<-chan *models.Transaction, <-chan error) {
	txCh := make(chan *models.Transaction)
	errCh := make(chan error, 1)

	go func() {
		defer close(txCh)
		defer close(errCh)

		if f.queryErr != nil {
			errCh <- f.queryErr
			return
		}

		sent := 0
		for i := range f.txs {
			tx := f.txs[i]
			if tx.Deleted() && !q.IncludeDeleted {
				continue
			}
			if q.Type != nil && tx.Type != *q.Type {
				continue
			}
			if q.CategoryID != nil && tx.CategoryID != *q.CategoryID {
				continue
			}
			if q.DateFrom != nil && tx.Date.Before(*q.DateFrom) {
				continue
			}
			if q.DateTo != nil && tx.Date.After(*q.DateTo) {
				continue
			}
			txCh <- &tx
			sent++
			if q.Limit > 0 && sent >= q.Limit {
				return
			}
		}
	}()

	return txCh, errCh
}

func (f *fakeLedger) GetTransaction(_ context.Context, _ string, txID string) (*models.Transaction, error) {
	for i := range f.txs {
		if f.txs[i].TransactionID == txID {
			tx := f.txs[i]
			return &tx, nil
		}
	}
	return nil, errs.NewNotFoundError("transaction not found: " + txID)
}

func (f *fakeLedger) CreateTransaction(_ context.Context, _ string, tx *models.Transaction) error {
	f.txs = append(f.txs, *tx)
	return nil
}

func (f *fakeLedger) UpdateTransaction(_ context.Context, _ string, tx *models.Transaction) error {
	for i := range f.txs {
		if f.txs[i].TransactionID == tx.TransactionID {
			f.txs[i] = *tx
			return nil
		}
	}
	return errs.NewNotFoundError("transaction not found: " + tx.TransactionID)
}

func (f *fakeLedger) ListLinksByIncome(_ context.Context, _ string, incomeTxID string) ([]models.TransactionLink, error) {
	var out []models.TransactionLink
	for _, l := range f.links {
		if l.IncomeTxID == incomeTxID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeLedger) ListLinksByExpense(_ context.Context, _ string, expenseTxID string) ([]models.TransactionLink, error) {
	var out []models.TransactionLink
	for _, l := range f.links {
		if l.ExpenseTxID == expenseTxID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeLedger) CreateLink(_ context.Context, _ string, link *models.TransactionLink) error {
	f.links = append(f.links, *link)
	return nil
}

func (f *fakeLedger) GetCategory(_ context.Context, _ string, categoryID string) (*models.Category, error) {
	for i := range f.cats {
		if f.cats[i].CategoryID == categoryID {
			c := f.cats[i]
			return &c, nil
		}
	}
	return nil, errs.NewNotFoundError("category not found: " + categoryID)
}

func (f *fakeLedger) ListLinks(_ context.Context, _ string, from, to time.Time) ([]models.TransactionLink, error) {
	if f.linksErr != nil {
		return nil, f.linksErr
	}
	var out []models.TransactionLink
	for _, l := range f.links {
		if l.Date.Before(from) || l.Date.After(to) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (f *fakeLedger) ListCategories(_ context.Context, _ string) ([]models.Category, error) {
	if f.catsErr != nil {
		return nil, f.catsErr
	}
	return f.cats, nil
}

type fakeProfileStore struct {
	profile    *models.UserProfile
	savedSnap  *dto.IndicatorSnapshot
	saveCalls  int
	clearCalls int
	getErr     error
}

func (f *fakeProfileStore) GetProfile(_ context.Context, _ string) (*models.UserProfile, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.profile == nil {
		return nil, errs.NewNotFoundError("profile not found")
	}
	return f.profile, nil
}

func (f *fakeProfileStore) SaveIndicatorCache(_ context.Context, _ string, snap dto.IndicatorSnapshot) error {
	f.saveCalls++
	f.savedSnap = &snap
	if f.profile != nil {
		f.profile.SavingsRate = snap.SavingsRate
		f.profile.DebtRatio = snap.DebtRatio
		f.profile.ReserveCoverage = snap.ReserveCoverage
		at := snap.ComputedAt
		f.profile.IndicatorsCachedAt = &at
	}
	return nil
}

func (f *fakeProfileStore) CreateProfile(_ context.Context, profile *models.UserProfile) error {
	if f.profile != nil {
		return errs.NewConflictError("profile exists")
	}
	f.profile = profile
	return nil
}

func (f *fakeProfileStore) UpdateProfile(_ context.Context, profile *models.UserProfile) error {
	if f.profile == nil {
		return errs.NewNotFoundError("profile not found")
	}
	f.profile = profile
	return nil
}

func (f *fakeProfileStore) ClearIndicatorCache(_ context.Context, _ string) error {
	f.clearCalls++
	if f.profile != nil {
		f.profile.IndicatorsCachedAt = nil
	}
	return nil
}

func daysAgo(now time.Time, days int) time.Time {
	return now.AddDate(0, 0, -days)
}

// fakeMissionCatalog backs both the catalog-read interfaces and the
// generator's create path.
type fakeMissionCatalog struct {
	missions  []models.Mission
	createErr error
	listErr   error
}

func (f *fakeMissionCatalog) ListActiveMissions(_ context.Context) ([]models.Mission, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.Mission
	for _, m := range f.missions {
		if m.Active {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMissionCatalog) ListMissions(_ context.Context) ([]models.Mission, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.Mission(nil), f.missions...), nil
}

func (f *fakeMissionCatalog) GetMission(_ context.Context, missionID string) (*models.Mission, error) {
	for i := range f.missions {
		if f.missions[i].MissionID == missionID {
			m := f.missions[i]
			return &m, nil
		}
	}
	return nil, errs.NewNotFoundError("mission not found: " + missionID)
}

func (f *fakeMissionCatalog) CreateMission(_ context.Context, m *models.Mission) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.missions = append(f.missions, *m)
	return nil
}

type fakeProgressStore struct {
	items   []*models.MissionProgress
	creates int
	updates int
}

func (f *fakeProgressStore) GetProgress(_ context.Context, _ string, progressID string) (*models.MissionProgress, error) {
	for _, p := range f.items {
		if p.ProgressID == progressID {
			return p, nil
		}
	}
	return nil, errs.NewNotFoundError("mission progress not found: " + progressID)
}

func (f *fakeProgressStore) GetProgressByMission(_ context.Context, _ string, missionID string) (*models.MissionProgress, error) {
	// Prefer the live instance when the mission was assigned more than once.
	var terminal *models.MissionProgress
	for _, p := range f.items {
		if p.MissionID != missionID {
			continue
		}
		if !p.Status.Terminal() {
			return p, nil
		}
		terminal = p
	}
	if terminal != nil {
		return terminal, nil
	}
	return nil, errs.NewNotFoundError("no progress for mission: " + missionID)
}

func (f *fakeProgressStore) ListProgress(_ context.Context, _ string) ([]models.MissionProgress, error) {
	out := make([]models.MissionProgress, 0, len(f.items))
	for _, p := range f.items {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeProgressStore) CreateProgress(_ context.Context, _ string, p *models.MissionProgress) error {
	f.creates++
	cp := *p
	f.items = append(f.items, &cp)
	return nil
}

func (f *fakeProgressStore) UpdateProgress(_ context.Context, _ string, p *models.MissionProgress) error {
	f.updates++
	for i, existing := range f.items {
		if existing.ProgressID == p.ProgressID {
			cp := *p
			f.items[i] = &cp
			return nil
		}
	}
	return errs.NewNotFoundError("mission progress not found: " + p.ProgressID)
}

// fakeRewardStore mirrors the Firestore grant transaction: the audit record
// keyed by progress ID guards against double grants, and a successful grant
// applies XP to the held profile.
type fakeRewardStore struct {
	profile    *models.UserProfile
	records    map[string]*models.XPTransaction
	grantCalls int
	clockNow   func() time.Time
}

func newFakeRewardStore(profile *models.UserProfile) *fakeRewardStore {
	return &fakeRewardStore{
		profile:  profile,
		records:  map[string]*models.XPTransaction{},
		clockNow: func() time.Time { return testNow },
	}
}

func (f *fakeRewardStore) GetXPTransaction(_ context.Context, _ string, progressID string) (*models.XPTransaction, error) {
	if rec, ok := f.records[progressID]; ok {
		return rec, nil
	}
	return nil, errs.NewNotFoundError("xp transaction not found: " + progressID)
}

func (f *fakeRewardStore) Grant(_ context.Context, _ string, progress *models.MissionProgress, mission *models.Mission) (*models.XPTransaction, bool, error) {
	f.grantCalls++
	if rec, ok := f.records[progress.ProgressID]; ok {
		return rec, false, nil
	}

	rec := &models.XPTransaction{
		ProgressID:  progress.ProgressID,
		MissionID:   mission.MissionID,
		Points:      mission.RewardPoints,
		LevelBefore: f.profile.Level,
		XPBefore:    f.profile.XP,
		CreatedAt:   f.clockNow(),
	}
	f.profile.ApplyXP(mission.RewardPoints)
	rec.LevelAfter = f.profile.Level
	rec.XPAfter = f.profile.XP
	f.records[progress.ProgressID] = rec
	return rec, true, nil
}

func (f *fakeGoalStore) CreateGoal(_ context.Context, _ string, goal *models.Goal) error {
	f.goals = append(f.goals, *goal)
	return nil
}

func (f *fakeGoalStore) UpdateGoal(_ context.Context, _ string, goal *models.Goal) error {
	for i := range f.goals {
		if f.goals[i].GoalID == goal.GoalID {
			f.goals[i] = *goal
			return nil
		}
	}
	return errs.NewNotFoundError("goal not found: " + goal.GoalID)
}

type fakeUserStore struct {
	users map[string]*models.User
}

func (f *fakeUserStore) CreateUser(_ context.Context, user *models.User) error {
	if f.users == nil {
		f.users = map[string]*models.User{}
	}
	if _, ok := f.users[user.UID]; ok {
		return errs.NewConflictError("user exists: " + user.UID)
	}
	f.users[user.UID] = user
	return nil
}

func (f *fakeUserStore) GetUser(_ context.Context, uid string) (*models.User, error) {
	if u, ok := f.users[uid]; ok {
		return u, nil
	}
	return nil, errs.NewNotFoundError("user not found: " + uid)
}

type fakeInvalidator struct {
	calls int
}

func (f *fakeInvalidator) Invalidate(_ context.Context, _ string) error {
	f.calls++
	return nil
}

type fakeAnalyzer struct {
	uctx dto.UserContext
	err  error
}

func (f *fakeAnalyzer) Analyze(_ context.Context, _ string) (dto.UserContext, error) {
	return f.uctx, f.err
}
