package store

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Marcos1701/finquest-backend/internal/dto"
	"github.com/Marcos1701/finquest-backend/internal/errs"
	"github.com/Marcos1701/finquest-backend/internal/models"
)

type transactionStore struct {
	client *firestore.Client
}

func NewTransactionStore(client *firestore.Client) *transactionStore {
	return &transactionStore{client: client}
}

func (s *transactionStore) collection(uid string) *firestore.CollectionRef {
	return s.client.Collection("users").Doc(uid).Collection("transactions")
}

func (s *transactionStore) GetTransaction(ctx context.Context, uid, txID string) (*models.Transaction, error) {
	doc, err := s.collection(uid).Doc(txID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errs.NewNotFoundError("transaction not found")
		}
		return nil, errs.NewDatabaseError("read", "failed to get transaction", err)
	}
	var d transactionDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse transaction data", err)
	}
	return d.model()
}

func (s *transactionStore) CreateTransaction(ctx context.Context, uid string, tx *models.Transaction) error {
	_, err := s.collection(uid).Doc(tx.TransactionID).Create(ctx, transactionToDoc(tx))
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return errs.NewConflictError("transaction already exists")
		}
		return errs.NewDatabaseError("create", "failed to create transaction", err)
	}
	return nil
}

func (s *transactionStore) UpdateTransaction(ctx context.Context, uid string, tx *models.Transaction) error {
	_, err := s.collection(uid).Doc(tx.TransactionID).Set(ctx, transactionToDoc(tx))
	if err != nil {
		return errs.NewDatabaseError("update", "failed to update transaction", err)
	}
	return nil
}

// Query streams matching transactions over a channel so aggregations never
// hold the full ledger in memory. Soft-deleted rows are filtered here unless
// the caller asks for them; everything else is pushed down to Firestore.
func (s *transactionStore) Query(ctx context.Context, uid string, q dto.TransactionQuery) (<-chan *models.Transaction, <-chan error) {
	txCh := make(chan *models.Transaction)
	errCh := make(chan error, 1)

	go func() {
		defer close(txCh)
		defer close(errCh)

		query := s.collection(uid).Query
		if q.Type != nil {
			query = query.Where("type", "==", string(*q.Type))
		}
		if q.CategoryID != nil {
			query = query.Where("categoryId", "==", *q.CategoryID)
		}
		if q.DateFrom != nil {
			query = query.Where("date", ">=", *q.DateFrom)
		}
		if q.DateTo != nil {
			query = query.Where("date", "<=", *q.DateTo)
		}
		query = query.OrderBy("date", firestore.Asc)

		iter := query.Documents(ctx)
		defer iter.Stop()

		sent := 0
		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				return
			}
			if err != nil {
				errCh <- errs.NewDatabaseError("read", "failed to stream transactions", err)
				return
			}

			var d transactionDoc
			if err := doc.DataTo(&d); err != nil {
				errCh <- errs.NewDatabaseError("read", "failed to parse transaction data", err)
				return
			}
			tx, err := d.model()
			if err != nil {
				errCh <- err
				return
			}
			if tx.Deleted() && !q.IncludeDeleted {
				continue
			}

			select {
			case txCh <- tx:
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			}

			sent++
			if q.Limit > 0 && sent >= q.Limit {
				return
			}
		}
	}()

	return txCh, errCh
}
