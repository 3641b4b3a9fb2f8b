package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Marcos1701/finquest-backend/internal/dto"
	"github.com/Marcos1701/finquest-backend/internal/errs"
	"github.com/Marcos1701/finquest-backend/internal/models"
	"github.com/Marcos1701/finquest-backend/pkg/logger"
)

type ledgerTxStore interface {
	indicatorTxStore
	GetTransaction(ctx context.Context, uid, txID string) (*models.Transaction, error)
	CreateTransaction(ctx context.Context, uid string, tx *models.Transaction) error
	UpdateTransaction(ctx context.Context, uid string, tx *models.Transaction) error
}

type ledgerLinkStore interface {
	indicatorLinkStore
	ListLinksByIncome(ctx context.Context, uid, incomeTxID string) ([]models.TransactionLink, error)
	ListLinksByExpense(ctx context.Context, uid, expenseTxID string) ([]models.TransactionLink, error)
	CreateLink(ctx context.Context, uid string, link *models.TransactionLink) error
}

type ledgerCategoryStore interface {
	GetCategory(ctx context.Context, uid, categoryID string) (*models.Category, error)
}

type ledgerGoalStore interface {
	ListGoals(ctx context.Context, uid string) ([]models.Goal, error)
	UpdateGoal(ctx context.Context, uid string, goal *models.Goal) error
}

// indicatorInvalidator is the cache hook every ledger mutation must hit; a
// stale indicator cache would feed validators outdated ratios.
type indicatorInvalidator interface {
	Invalidate(ctx context.Context, uid string) error
}

// transactionService owns ledger writes: transactions, soft deletes, and the
// income-to-expense links that feed the debt ratio.
type transactionService struct {
	txs        ledgerTxStore
	links      ledgerLinkStore
	cats       ledgerCategoryStore
	goals      ledgerGoalStore
	indicators indicatorInvalidator
	clockNow   func() time.Time
	newID      func() string
}

func NewTransactionService(txs ledgerTxStore, links ledgerLinkStore, cats ledgerCategoryStore, goals ledgerGoalStore, indicators indicatorInvalidator) *transactionService {
	return &transactionService{
		txs:        txs,
		links:      links,
		cats:       cats,
		goals:      goals,
		indicators: indicators,
		clockNow:   time.Now,
		newID:      func() string { return uuid.New().String() },
	}
}

func (s *transactionService) Create(ctx context.Context, uid string, req dto.CreateTransactionRequest) (*models.Transaction, error) {
	txType := models.TransactionType(req.Type)
	if txType != models.TransactionIncome && txType != models.TransactionExpense {
		return nil, errs.NewValidationError("type must be INCOME or EXPENSE")
	}
	if !req.Amount.IsPositive() {
		return nil, errs.NewValidationError("amount must be positive")
	}
	if req.Description == "" {
		return nil, errs.NewValidationError("description is required")
	}
	if req.Date.IsZero() {
		return nil, errs.NewValidationError("date is required")
	}

	recurrence := models.Recurrence(req.Recurrence)
	if req.Recurrence == "" {
		recurrence = models.RecurrenceNone
	}
	switch recurrence {
	case models.RecurrenceNone, models.RecurrenceDaily, models.RecurrenceWeekly, models.RecurrenceMonthly:
	default:
		return nil, errs.NewValidationError("unknown recurrence: " + req.Recurrence)
	}

	if req.CategoryID != "" {
		if _, err := s.cats.GetCategory(ctx, uid, req.CategoryID); err != nil {
			return nil, err
		}
	}

	now := s.clockNow()
	tx := &models.Transaction{
		TransactionID: s.newID(),
		Description:   req.Description,
		Amount:        req.Amount,
		Type:          txType,
		Date:          req.Date,
		CategoryID:    req.CategoryID,
		Recurrence:    recurrence,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.txs.CreateTransaction(ctx, uid, tx); err != nil {
		return nil, err
	}

	if err := s.contributeToGoals(ctx, uid, tx, false); err != nil {
		return nil, err
	}
	s.invalidate(ctx, uid)

	logger.FromContext(ctx).Info("transaction created",
		"transaction_id", tx.TransactionID, "type", tx.Type, "amount", tx.Amount.String())
	return tx, nil
}

func (s *transactionService) Update(ctx context.Context, uid, txID string, req dto.UpdateTransactionRequest) (*models.Transaction, error) {
	tx, err := s.txs.GetTransaction(ctx, uid, txID)
	if err != nil {
		return nil, err
	}
	if tx.Deleted() {
		return nil, errs.NewConflictError("transaction is deleted")
	}

	// Validate the whole patch before touching goal balances: once the old
	// contribution is retracted there is no undo on a later failure.
	if req.Description != nil && *req.Description == "" {
		return nil, errs.NewValidationError("description cannot be empty")
	}
	if req.Amount != nil && !req.Amount.IsPositive() {
		return nil, errs.NewValidationError("amount must be positive")
	}
	if req.CategoryID != nil && *req.CategoryID != "" {
		if _, err := s.cats.GetCategory(ctx, uid, *req.CategoryID); err != nil {
			return nil, err
		}
	}

	// Goal contributions follow the category/amount the row had, so retract
	// before mutating and re-apply after.
	if err := s.contributeToGoals(ctx, uid, tx, true); err != nil {
		return nil, err
	}

	if req.Description != nil {
		tx.Description = *req.Description
	}
	if req.Amount != nil {
		tx.Amount = *req.Amount
	}
	if req.Date != nil {
		tx.Date = *req.Date
	}
	if req.CategoryID != nil {
		tx.CategoryID = *req.CategoryID
	}
	tx.UpdatedAt = s.clockNow()

	if err := s.txs.UpdateTransaction(ctx, uid, tx); err != nil {
		return nil, err
	}
	if err := s.contributeToGoals(ctx, uid, tx, false); err != nil {
		return nil, err
	}
	s.invalidate(ctx, uid)
	return tx, nil
}

// Delete soft-deletes the transaction. Every aggregation filters on the
// marker, so the row drops out of indicators and validator windows at once.
func (s *transactionService) Delete(ctx context.Context, uid, txID string) error {
	tx, err := s.txs.GetTransaction(ctx, uid, txID)
	if err != nil {
		return err
	}
	if tx.Deleted() {
		return nil
	}

	now := s.clockNow()
	tx.DeletedAt = &now
	tx.UpdatedAt = now
	if err := s.txs.UpdateTransaction(ctx, uid, tx); err != nil {
		return err
	}

	if err := s.contributeToGoals(ctx, uid, tx, true); err != nil {
		return err
	}
	s.invalidate(ctx, uid)

	logger.FromContext(ctx).Info("transaction deleted", "transaction_id", txID)
	return nil
}

func (s *transactionService) Get(ctx context.Context, uid, txID string) (*models.Transaction, error) {
	tx, err := s.txs.GetTransaction(ctx, uid, txID)
	if err != nil {
		return nil, err
	}
	if tx.Deleted() {
		return nil, errs.NewNotFoundError("transaction not found: " + txID)
	}
	return tx, nil
}

func (s *transactionService) List(ctx context.Context, uid string, q dto.TransactionQuery) ([]models.Transaction, error) {
	txCh, errCh := s.txs.Query(ctx, uid, q)
	var out []models.Transaction
	err := streamTransactions(txCh, errCh, func(tx *models.Transaction) error {
		out = append(out, *tx)
		return nil
	})
	return out, err
}

// CreateLink ties an income transaction to the expense it funds. The sum of
// link amounts against either endpoint may never exceed that transaction's
// amount; an over-settled expense would inflate the debt ratio numerator.
func (s *transactionService) CreateLink(ctx context.Context, uid string, req dto.CreateLinkRequest) (*models.TransactionLink, error) {
	if !req.Amount.IsPositive() {
		return nil, errs.NewValidationError("link amount must be positive")
	}

	linkType := models.LinkType(req.Type)
	if req.Type == "" {
		linkType = models.LinkAllocation
	}
	if linkType != models.LinkDebtSettlement && linkType != models.LinkAllocation {
		return nil, errs.NewValidationError("unknown link type: " + req.Type)
	}

	income, err := s.txs.GetTransaction(ctx, uid, req.IncomeTxID)
	if err != nil {
		return nil, err
	}
	expense, err := s.txs.GetTransaction(ctx, uid, req.ExpenseTxID)
	if err != nil {
		return nil, err
	}
	if income.Deleted() || expense.Deleted() {
		return nil, errs.NewConflictError("cannot link deleted transactions")
	}
	if income.Type != models.TransactionIncome {
		return nil, errs.NewValidationError("incomeTxId must reference an INCOME transaction")
	}
	if expense.Type != models.TransactionExpense {
		return nil, errs.NewValidationError("expenseTxId must reference an EXPENSE transaction")
	}

	incomeLinks, err := s.links.ListLinksByIncome(ctx, uid, req.IncomeTxID)
	if err != nil {
		return nil, err
	}
	allocated := req.Amount
	for _, l := range incomeLinks {
		allocated = allocated.Add(l.Amount)
	}
	if allocated.GreaterThan(income.Amount) {
		return nil, errs.NewValidationError(fmt.Sprintf(
			"linked total %s exceeds income amount %s", allocated.String(), income.Amount.String()))
	}

	expenseLinks, err := s.links.ListLinksByExpense(ctx, uid, req.ExpenseTxID)
	if err != nil {
		return nil, err
	}
	settled := req.Amount
	for _, l := range expenseLinks {
		settled = settled.Add(l.Amount)
	}
	if settled.GreaterThan(expense.Amount) {
		return nil, errs.NewValidationError(fmt.Sprintf(
			"linked total %s exceeds expense amount %s", settled.String(), expense.Amount.String()))
	}

	link := &models.TransactionLink{
		LinkID:      s.newID(),
		IncomeTxID:  req.IncomeTxID,
		ExpenseTxID: req.ExpenseTxID,
		Amount:      req.Amount,
		Type:        linkType,
		Date:        expense.Date,
		CreatedAt:   s.clockNow(),
	}
	if err := s.links.CreateLink(ctx, uid, link); err != nil {
		return nil, err
	}
	s.invalidate(ctx, uid)

	logger.FromContext(ctx).Info("transaction link created",
		"link_id", link.LinkID, "type", link.Type, "amount", link.Amount.String())
	return link, nil
}

func (s *transactionService) invalidate(ctx context.Context, uid string) {
	if err := s.indicators.Invalidate(ctx, uid); err != nil {
		logger.FromContext(ctx).Warn("indicator cache invalidation failed", "error", err)
	}
}

// contributeToGoals moves an expense into every goal tracking its category.
// retract reverses a contribution when the row is edited or soft-deleted.
func (s *transactionService) contributeToGoals(ctx context.Context, uid string, tx *models.Transaction, retract bool) error {
	if tx.Type != models.TransactionExpense || tx.CategoryID == "" {
		return nil
	}

	goals, err := s.goals.ListGoals(ctx, uid)
	if err != nil {
		return err
	}

	now := s.clockNow()
	for i := range goals {
		goal := &goals[i]
		if !goalTracksCategory(goal, tx.CategoryID) {
			continue
		}
		if retract {
			goal.CurrentAmount = goal.CurrentAmount.Sub(tx.Amount)
		} else {
			goal.CurrentAmount = goal.CurrentAmount.Add(tx.Amount)
			goal.LastContributionAt = &now
		}
		goal.UpdatedAt = now
		if err := s.goals.UpdateGoal(ctx, uid, goal); err != nil {
			return err
		}
	}
	return nil
}

func goalTracksCategory(goal *models.Goal, categoryID string) bool {
	for _, id := range goal.CategoryIDs {
		if id == categoryID {
			return true
		}
	}
	return false
}
