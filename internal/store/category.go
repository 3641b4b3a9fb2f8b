package store

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Marcos1701/finquest-backend/internal/errs"
	"github.com/Marcos1701/finquest-backend/internal/models"
)

// categoryStore reads from two collections: the global catalog and the
// user's own categories, with the user's shadowing the global on ID clashes.
type categoryStore struct {
	client *firestore.Client
}

func NewCategoryStore(client *firestore.Client) *categoryStore {
	return &categoryStore{client: client}
}

func (s *categoryStore) globalCollection() *firestore.CollectionRef {
	return s.client.Collection("categories")
}

func (s *categoryStore) userCollection(uid string) *firestore.CollectionRef {
	return s.client.Collection("users").Doc(uid).Collection("categories")
}

func (s *categoryStore) GetCategory(ctx context.Context, uid, categoryID string) (*models.Category, error) {
	doc, err := s.userCollection(uid).Doc(categoryID).Get(ctx)
	if err != nil && status.Code(err) == codes.NotFound {
		doc, err = s.globalCollection().Doc(categoryID).Get(ctx)
	}
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errs.NewNotFoundError("category not found")
		}
		return nil, errs.NewDatabaseError("read", "failed to get category", err)
	}

	var c models.Category
	if err := doc.DataTo(&c); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse category data", err)
	}
	return &c, nil
}

func (s *categoryStore) ListCategories(ctx context.Context, uid string) ([]models.Category, error) {
	global, err := s.listFrom(ctx, s.globalCollection())
	if err != nil {
		return nil, err
	}
	own, err := s.listFrom(ctx, s.userCollection(uid))
	if err != nil {
		return nil, err
	}

	byID := make(map[string]models.Category, len(global)+len(own))
	for _, c := range global {
		byID[c.CategoryID] = c
	}
	for _, c := range own {
		byID[c.CategoryID] = c
	}

	out := make([]models.Category, 0, len(byID))
	for _, c := range byID {
		out = append(out, c)
	}
	return out, nil
}

func (s *categoryStore) CreateCategory(ctx context.Context, uid string, c *models.Category) error {
	_, err := s.userCollection(uid).Doc(c.CategoryID).Create(ctx, c)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return errs.NewConflictError("category already exists")
		}
		return errs.NewDatabaseError("create", "failed to create category", err)
	}
	return nil
}

func (s *categoryStore) listFrom(ctx context.Context, coll *firestore.CollectionRef) ([]models.Category, error) {
	docs, err := coll.Documents(ctx).GetAll()
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to list categories", err)
	}
	cats := make([]models.Category, 0, len(docs))
	for _, doc := range docs {
		var c models.Category
		if err := doc.DataTo(&c); err != nil {
			return nil, errs.NewDatabaseError("read", "failed to parse category data", err)
		}
		cats = append(cats, c)
	}
	return cats, nil
}
