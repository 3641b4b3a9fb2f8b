package store

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Marcos1701/finquest-backend/internal/errs"
	"github.com/Marcos1701/finquest-backend/internal/models"
)

// missionStore holds the global mission catalog. Per-user state lives in the
// progress store, never here.
type missionStore struct {
	client *firestore.Client
}

func NewMissionStore(client *firestore.Client) *missionStore {
	return &missionStore{client: client}
}

func (s *missionStore) collection() *firestore.CollectionRef {
	return s.client.Collection("missions")
}

func (s *missionStore) GetMission(ctx context.Context, missionID string) (*models.Mission, error) {
	doc, err := s.collection().Doc(missionID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errs.NewNotFoundError("mission not found")
		}
		return nil, errs.NewDatabaseError("read", "failed to get mission", err)
	}
	var d missionDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse mission data", err)
	}
	return d.model()
}

func (s *missionStore) CreateMission(ctx context.Context, m *models.Mission) error {
	_, err := s.collection().Doc(m.MissionID).Create(ctx, missionToDoc(m))
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return errs.NewConflictError("mission already exists")
		}
		return errs.NewDatabaseError("create", "failed to create mission", err)
	}
	return nil
}

func (s *missionStore) UpdateMission(ctx context.Context, m *models.Mission) error {
	_, err := s.collection().Doc(m.MissionID).Set(ctx, missionToDoc(m))
	if err != nil {
		return errs.NewDatabaseError("update", "failed to update mission", err)
	}
	return nil
}

func (s *missionStore) ListMissions(ctx context.Context) ([]models.Mission, error) {
	return s.list(ctx, s.collection().Query)
}

func (s *missionStore) ListActiveMissions(ctx context.Context) ([]models.Mission, error) {
	return s.list(ctx, s.collection().Where("active", "==", true))
}

func (s *missionStore) list(ctx context.Context, query firestore.Query) ([]models.Mission, error) {
	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to list missions", err)
	}
	missions := make([]models.Mission, 0, len(docs))
	for _, doc := range docs {
		var d missionDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, errs.NewDatabaseError("read", "failed to parse mission data", err)
		}
		m, err := d.model()
		if err != nil {
			return nil, err
		}
		missions = append(missions, *m)
	}
	return missions, nil
}
