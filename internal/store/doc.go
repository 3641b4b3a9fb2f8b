package store

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Marcos1701/finquest-backend/internal/errs"
	"github.com/Marcos1701/finquest-backend/internal/models"
)

// Firestore has no decimal type and float64 drifts on money, so every
// decimal field is persisted as its canonical string form. The doc structs
// below are the only place that conversion happens.

func decToDoc(d decimal.Decimal) string {
	return d.String()
}

func decFromDoc(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

type transactionDoc struct {
	TransactionID string     `firestore:"transactionId"`
	Description   string     `firestore:"description"`
	Amount        string     `firestore:"amount"`
	Type          string     `firestore:"type"`
	Date          time.Time  `firestore:"date"`
	CategoryID    string     `firestore:"categoryId"`
	Recurrence    string     `firestore:"recurrence"`
	CreatedAt     time.Time  `firestore:"createdAt"`
	UpdatedAt     time.Time  `firestore:"updatedAt"`
	DeletedAt     *time.Time `firestore:"deletedAt"`
}

func transactionToDoc(tx *models.Transaction) transactionDoc {
	return transactionDoc{
		TransactionID: tx.TransactionID,
		Description:   tx.Description,
		Amount:        decToDoc(tx.Amount),
		Type:          string(tx.Type),
		Date:          tx.Date,
		CategoryID:    tx.CategoryID,
		Recurrence:    string(tx.Recurrence),
		CreatedAt:     tx.CreatedAt,
		UpdatedAt:     tx.UpdatedAt,
		DeletedAt:     tx.DeletedAt,
	}
}

func (d transactionDoc) model() (*models.Transaction, error) {
	amount, err := decFromDoc(d.Amount)
	if err != nil {
		return nil, errs.NewDatabaseError("read", "invalid transaction amount", err)
	}
	return &models.Transaction{
		TransactionID: d.TransactionID,
		Description:   d.Description,
		Amount:        amount,
		Type:          models.TransactionType(d.Type),
		Date:          d.Date,
		CategoryID:    d.CategoryID,
		Recurrence:    models.Recurrence(d.Recurrence),
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
		DeletedAt:     d.DeletedAt,
	}, nil
}

type linkDoc struct {
	LinkID      string    `firestore:"linkId"`
	IncomeTxID  string    `firestore:"incomeTxId"`
	ExpenseTxID string    `firestore:"expenseTxId"`
	Amount      string    `firestore:"amount"`
	Type        string    `firestore:"type"`
	Date        time.Time `firestore:"date"`
	CreatedAt   time.Time `firestore:"createdAt"`
}

func linkToDoc(l *models.TransactionLink) linkDoc {
	return linkDoc{
		LinkID:      l.LinkID,
		IncomeTxID:  l.IncomeTxID,
		ExpenseTxID: l.ExpenseTxID,
		Amount:      decToDoc(l.Amount),
		Type:        string(l.Type),
		Date:        l.Date,
		CreatedAt:   l.CreatedAt,
	}
}

func (d linkDoc) model() (*models.TransactionLink, error) {
	amount, err := decFromDoc(d.Amount)
	if err != nil {
		return nil, errs.NewDatabaseError("read", "invalid link amount", err)
	}
	return &models.TransactionLink{
		LinkID:      d.LinkID,
		IncomeTxID:  d.IncomeTxID,
		ExpenseTxID: d.ExpenseTxID,
		Amount:      amount,
		Type:        models.LinkType(d.Type),
		Date:        d.Date,
		CreatedAt:   d.CreatedAt,
	}, nil
}

type profileDoc struct {
	UID                 string     `firestore:"uid"`
	Level               int        `firestore:"level"`
	XP                  int        `firestore:"xp"`
	SavingsRate         string     `firestore:"savingsRate"`
	DebtRatio           string     `firestore:"debtRatio"`
	ReserveCoverage     string     `firestore:"reserveCoverage"`
	IndicatorsCachedAt  *time.Time `firestore:"indicatorsCachedAt"`
	TargetSavingsRate   string     `firestore:"targetSavingsRate"`
	TargetDebtRatio     string     `firestore:"targetDebtRatio"`
	TargetReserveMonths string     `firestore:"targetReserveMonths"`
	FirstAccess         bool       `firestore:"firstAccess"`
	CreatedAt           time.Time  `firestore:"createdAt"`
	UpdatedAt           time.Time  `firestore:"updatedAt"`
}

func profileToDoc(p *models.UserProfile) profileDoc {
	return profileDoc{
		UID:                 p.UID,
		Level:               p.Level,
		XP:                  p.XP,
		SavingsRate:         decToDoc(p.SavingsRate),
		DebtRatio:           decToDoc(p.DebtRatio),
		ReserveCoverage:     decToDoc(p.ReserveCoverage),
		IndicatorsCachedAt:  p.IndicatorsCachedAt,
		TargetSavingsRate:   decToDoc(p.TargetSavingsRate),
		TargetDebtRatio:     decToDoc(p.TargetDebtRatio),
		TargetReserveMonths: decToDoc(p.TargetReserveMonths),
		FirstAccess:         p.FirstAccess,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

func (d profileDoc) model() (*models.UserProfile, error) {
	p := &models.UserProfile{
		UID:                d.UID,
		Level:              d.Level,
		XP:                 d.XP,
		IndicatorsCachedAt: d.IndicatorsCachedAt,
		FirstAccess:        d.FirstAccess,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
	var err error
	fields := []struct {
		dst *decimal.Decimal
		src string
	}{
		{&p.SavingsRate, d.SavingsRate},
		{&p.DebtRatio, d.DebtRatio},
		{&p.ReserveCoverage, d.ReserveCoverage},
		{&p.TargetSavingsRate, d.TargetSavingsRate},
		{&p.TargetDebtRatio, d.TargetDebtRatio},
		{&p.TargetReserveMonths, d.TargetReserveMonths},
	}
	for _, f := range fields {
		if *f.dst, err = decFromDoc(f.src); err != nil {
			return nil, errs.NewDatabaseError("read", "invalid profile decimal", err)
		}
	}
	return p, nil
}

type missionTargetsDoc struct {
	SavingsRate      string `firestore:"savingsRate"`
	DebtRatio        string `firestore:"debtRatio"`
	ReserveMonths    string `firestore:"reserveMonths"`
	ReductionPercent string `firestore:"reductionPercent"`
	SpendingLimit    string `firestore:"spendingLimit"`
	GoalPercent      string `firestore:"goalPercent"`
	TransactionCount int    `firestore:"transactionCount"`
	WeeklyFrequency  int    `firestore:"weeklyFrequency"`
	CategoryID       string `firestore:"categoryId"`
}

type missionDoc struct {
	MissionID       string            `firestore:"missionId"`
	Title           string            `firestore:"title"`
	Description     string            `firestore:"description"`
	Type            string            `firestore:"type"`
	ValidationType  string            `firestore:"validationType"`
	Targets         missionTargetsDoc `firestore:"targets"`
	DurationDays    int               `firestore:"durationDays"`
	RewardPoints    int               `firestore:"rewardPoints"`
	Difficulty      string            `firestore:"difficulty"`
	Priority        int               `firestore:"priority"`
	Active          bool              `firestore:"active"`
	SystemGenerated bool              `firestore:"systemGenerated"`
	GeneratedBy     string            `firestore:"generatedBy"`
	CreatedAt       time.Time         `firestore:"createdAt"`
	UpdatedAt       time.Time         `firestore:"updatedAt"`
}

func missionToDoc(m *models.Mission) missionDoc {
	return missionDoc{
		MissionID:      m.MissionID,
		Title:          m.Title,
		Description:    m.Description,
		Type:           string(m.Type),
		ValidationType: string(m.ValidationType),
		Targets: missionTargetsDoc{
			SavingsRate:      decToDoc(m.Targets.SavingsRate),
			DebtRatio:        decToDoc(m.Targets.DebtRatio),
			ReserveMonths:    decToDoc(m.Targets.ReserveMonths),
			ReductionPercent: decToDoc(m.Targets.ReductionPercent),
			SpendingLimit:    decToDoc(m.Targets.SpendingLimit),
			GoalPercent:      decToDoc(m.Targets.GoalPercent),
			TransactionCount: m.Targets.TransactionCount,
			WeeklyFrequency:  m.Targets.WeeklyFrequency,
			CategoryID:       m.Targets.CategoryID,
		},
		DurationDays:    m.DurationDays,
		RewardPoints:    m.RewardPoints,
		Difficulty:      string(m.Difficulty),
		Priority:        m.Priority,
		Active:          m.Active,
		SystemGenerated: m.SystemGenerated,
		GeneratedBy:     string(m.GeneratedBy),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func (d missionDoc) model() (*models.Mission, error) {
	m := &models.Mission{
		MissionID:       d.MissionID,
		Title:           d.Title,
		Description:     d.Description,
		Type:            models.MissionType(d.Type),
		ValidationType:  models.ValidationType(d.ValidationType),
		DurationDays:    d.DurationDays,
		RewardPoints:    d.RewardPoints,
		Difficulty:      models.Difficulty(d.Difficulty),
		Priority:        d.Priority,
		Active:          d.Active,
		SystemGenerated: d.SystemGenerated,
		GeneratedBy:     models.GenerationSource(d.GeneratedBy),
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
	m.Targets.TransactionCount = d.Targets.TransactionCount
	m.Targets.WeeklyFrequency = d.Targets.WeeklyFrequency
	m.Targets.CategoryID = d.Targets.CategoryID

	var err error
	fields := []struct {
		dst *decimal.Decimal
		src string
	}{
		{&m.Targets.SavingsRate, d.Targets.SavingsRate},
		{&m.Targets.DebtRatio, d.Targets.DebtRatio},
		{&m.Targets.ReserveMonths, d.Targets.ReserveMonths},
		{&m.Targets.ReductionPercent, d.Targets.ReductionPercent},
		{&m.Targets.SpendingLimit, d.Targets.SpendingLimit},
		{&m.Targets.GoalPercent, d.Targets.GoalPercent},
	}
	for _, f := range fields {
		if *f.dst, err = decFromDoc(f.src); err != nil {
			return nil, errs.NewDatabaseError("read", "invalid mission target", err)
		}
	}
	return m, nil
}

type baselineDoc struct {
	SavingsRate      string `firestore:"savingsRate"`
	DebtRatio        string `firestore:"debtRatio"`
	ReserveCoverage  string `firestore:"reserveCoverage"`
	TransactionCount int    `firestore:"transactionCount"`
	CategorySpend    string `firestore:"categorySpend"`
	PeriodDays       int    `firestore:"periodDays"`
}

type progressDoc struct {
	ProgressID  string      `firestore:"progressId"`
	UID         string      `firestore:"uid"`
	MissionID   string      `firestore:"missionId"`
	Status      string      `firestore:"status"`
	Progress    float64     `firestore:"progress"`
	StartedAt   *time.Time  `firestore:"startedAt"`
	CompletedAt *time.Time  `firestore:"completedAt"`
	Baseline    baselineDoc `firestore:"baseline"`
	CreatedAt   time.Time   `firestore:"createdAt"`
	UpdatedAt   time.Time   `firestore:"updatedAt"`
}

func progressToDoc(p *models.MissionProgress) progressDoc {
	return progressDoc{
		ProgressID:  p.ProgressID,
		UID:         p.UID,
		MissionID:   p.MissionID,
		Status:      string(p.Status),
		Progress:    p.Progress,
		StartedAt:   p.StartedAt,
		CompletedAt: p.CompletedAt,
		Baseline: baselineDoc{
			SavingsRate:      decToDoc(p.Baseline.SavingsRate),
			DebtRatio:        decToDoc(p.Baseline.DebtRatio),
			ReserveCoverage:  decToDoc(p.Baseline.ReserveCoverage),
			TransactionCount: p.Baseline.TransactionCount,
			CategorySpend:    decToDoc(p.Baseline.CategorySpend),
			PeriodDays:       p.Baseline.PeriodDays,
		},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (d progressDoc) model() (*models.MissionProgress, error) {
	p := &models.MissionProgress{
		ProgressID:  d.ProgressID,
		UID:         d.UID,
		MissionID:   d.MissionID,
		Status:      models.ProgressStatus(d.Status),
		Progress:    d.Progress,
		StartedAt:   d.StartedAt,
		CompletedAt: d.CompletedAt,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	p.Baseline.TransactionCount = d.Baseline.TransactionCount
	p.Baseline.PeriodDays = d.Baseline.PeriodDays

	var err error
	fields := []struct {
		dst *decimal.Decimal
		src string
	}{
		{&p.Baseline.SavingsRate, d.Baseline.SavingsRate},
		{&p.Baseline.DebtRatio, d.Baseline.DebtRatio},
		{&p.Baseline.ReserveCoverage, d.Baseline.ReserveCoverage},
		{&p.Baseline.CategorySpend, d.Baseline.CategorySpend},
	}
	for _, f := range fields {
		if *f.dst, err = decFromDoc(f.src); err != nil {
			return nil, errs.NewDatabaseError("read", "invalid baseline decimal", err)
		}
	}
	return p, nil
}

type goalDoc struct {
	GoalID             string     `firestore:"goalId"`
	UID                string     `firestore:"uid"`
	Title              string     `firestore:"title"`
	TargetAmount       string     `firestore:"targetAmount"`
	CurrentAmount      string     `firestore:"currentAmount"`
	CategoryIDs        []string   `firestore:"categoryIds"`
	Deadline           time.Time  `firestore:"deadline"`
	LastContributionAt *time.Time `firestore:"lastContributionAt"`
	CreatedAt          time.Time  `firestore:"createdAt"`
	UpdatedAt          time.Time  `firestore:"updatedAt"`
}

func goalToDoc(g *models.Goal) goalDoc {
	return goalDoc{
		GoalID:             g.GoalID,
		UID:                g.UID,
		Title:              g.Title,
		TargetAmount:       decToDoc(g.TargetAmount),
		CurrentAmount:      decToDoc(g.CurrentAmount),
		CategoryIDs:        g.CategoryIDs,
		Deadline:           g.Deadline,
		LastContributionAt: g.LastContributionAt,
		CreatedAt:          g.CreatedAt,
		UpdatedAt:          g.UpdatedAt,
	}
}

func (d goalDoc) model() (*models.Goal, error) {
	target, err := decFromDoc(d.TargetAmount)
	if err != nil {
		return nil, errs.NewDatabaseError("read", "invalid goal target amount", err)
	}
	current, err := decFromDoc(d.CurrentAmount)
	if err != nil {
		return nil, errs.NewDatabaseError("read", "invalid goal current amount", err)
	}
	return &models.Goal{
		GoalID:             d.GoalID,
		UID:                d.UID,
		Title:              d.Title,
		TargetAmount:       target,
		CurrentAmount:      current,
		CategoryIDs:        d.CategoryIDs,
		Deadline:           d.Deadline,
		LastContributionAt: d.LastContributionAt,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}, nil
}
