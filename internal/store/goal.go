package store

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Marcos1701/finquest-backend/internal/errs"
	"github.com/Marcos1701/finquest-backend/internal/models"
)

type goalStore struct {
	client *firestore.Client
}

func NewGoalStore(client *firestore.Client) *goalStore {
	return &goalStore{client: client}
}

func (s *goalStore) collection(uid string) *firestore.CollectionRef {
	return s.client.Collection("users").Doc(uid).Collection("goals")
}

func (s *goalStore) ListGoals(ctx context.Context, uid string) ([]models.Goal, error) {
	docs, err := s.collection(uid).OrderBy("deadline", firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to list goals", err)
	}
	goals := make([]models.Goal, 0, len(docs))
	for _, doc := range docs {
		var d goalDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, errs.NewDatabaseError("read", "failed to parse goal data", err)
		}
		g, err := d.model()
		if err != nil {
			return nil, err
		}
		goals = append(goals, *g)
	}
	return goals, nil
}

func (s *goalStore) CreateGoal(ctx context.Context, uid string, goal *models.Goal) error {
	_, err := s.collection(uid).Doc(goal.GoalID).Create(ctx, goalToDoc(goal))
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return errs.NewConflictError("goal already exists")
		}
		return errs.NewDatabaseError("create", "failed to create goal", err)
	}
	return nil
}

func (s *goalStore) UpdateGoal(ctx context.Context, uid string, goal *models.Goal) error {
	_, err := s.collection(uid).Doc(goal.GoalID).Set(ctx, goalToDoc(goal))
	if err != nil {
		return errs.NewDatabaseError("update", "failed to update goal", err)
	}
	return nil
}
