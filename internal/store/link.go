package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Marcos1701/finquest-backend/internal/errs"
	"github.com/Marcos1701/finquest-backend/internal/models"
)

type linkStore struct {
	client *firestore.Client
}

func NewLinkStore(client *firestore.Client) *linkStore {
	return &linkStore{client: client}
}

func (s *linkStore) collection(uid string) *firestore.CollectionRef {
	return s.client.Collection("users").Doc(uid).Collection("links")
}

func (s *linkStore) CreateLink(ctx context.Context, uid string, link *models.TransactionLink) error {
	_, err := s.collection(uid).Doc(link.LinkID).Create(ctx, linkToDoc(link))
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return errs.NewConflictError("link already exists")
		}
		return errs.NewDatabaseError("create", "failed to create link", err)
	}
	return nil
}

func (s *linkStore) ListLinks(ctx context.Context, uid string, from, to time.Time) ([]models.TransactionLink, error) {
	query := s.collection(uid).
		Where("date", ">=", from).
		Where("date", "<=", to)
	return s.list(ctx, query)
}

func (s *linkStore) ListLinksByIncome(ctx context.Context, uid, incomeTxID string) ([]models.TransactionLink, error) {
	query := s.collection(uid).Where("incomeTxId", "==", incomeTxID)
	return s.list(ctx, query)
}

func (s *linkStore) ListLinksByExpense(ctx context.Context, uid, expenseTxID string) ([]models.TransactionLink, error) {
	query := s.collection(uid).Where("expenseTxId", "==", expenseTxID)
	return s.list(ctx, query)
}

func (s *linkStore) list(ctx context.Context, query firestore.Query) ([]models.TransactionLink, error) {
	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to list links", err)
	}
	links := make([]models.TransactionLink, 0, len(docs))
	for _, doc := range docs {
		var d linkDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, errs.NewDatabaseError("read", "failed to parse link data", err)
		}
		link, err := d.model()
		if err != nil {
			return nil, err
		}
		links = append(links, *link)
	}
	return links, nil
}
