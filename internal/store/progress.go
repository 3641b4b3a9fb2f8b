package store

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Marcos1701/finquest-backend/internal/errs"
	"github.com/Marcos1701/finquest-backend/internal/models"
)

type progressStore struct {
	client *firestore.Client
}

func NewProgressStore(client *firestore.Client) *progressStore {
	return &progressStore{client: client}
}

func (s *progressStore) collection(uid string) *firestore.CollectionRef {
	return s.client.Collection("users").Doc(uid).Collection("mission_progress")
}

func (s *progressStore) GetProgress(ctx context.Context, uid, progressID string) (*models.MissionProgress, error) {
	doc, err := s.collection(uid).Doc(progressID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errs.NewNotFoundError("mission progress not found")
		}
		return nil, errs.NewDatabaseError("read", "failed to get mission progress", err)
	}
	var d progressDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse mission progress data", err)
	}
	return d.model()
}

// GetProgressByMission returns the live instance for the mission if one
// exists, otherwise the most recently created terminal one.
func (s *progressStore) GetProgressByMission(ctx context.Context, uid, missionID string) (*models.MissionProgress, error) {
	iter := s.collection(uid).
		Where("missionId", "==", missionID).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var latest *models.MissionProgress
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errs.NewDatabaseError("read", "failed to query mission progress", err)
		}
		var d progressDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, errs.NewDatabaseError("read", "failed to parse mission progress data", err)
		}
		p, err := d.model()
		if err != nil {
			return nil, err
		}
		if !p.Status.Terminal() {
			return p, nil
		}
		if latest == nil {
			latest = p
		}
	}
	if latest == nil {
		return nil, errs.NewNotFoundError("no progress for mission")
	}
	return latest, nil
}

func (s *progressStore) ListProgress(ctx context.Context, uid string) ([]models.MissionProgress, error) {
	docs, err := s.collection(uid).OrderBy("createdAt", firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to list mission progress", err)
	}
	out := make([]models.MissionProgress, 0, len(docs))
	for _, doc := range docs {
		var d progressDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, errs.NewDatabaseError("read", "failed to parse mission progress data", err)
		}
		p, err := d.model()
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

func (s *progressStore) CreateProgress(ctx context.Context, uid string, p *models.MissionProgress) error {
	_, err := s.collection(uid).Doc(p.ProgressID).Create(ctx, progressToDoc(p))
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return errs.NewConflictError("mission progress already exists")
		}
		return errs.NewDatabaseError("create", "failed to create mission progress", err)
	}
	return nil
}

func (s *progressStore) UpdateProgress(ctx context.Context, uid string, p *models.MissionProgress) error {
	_, err := s.collection(uid).Doc(p.ProgressID).Set(ctx, progressToDoc(p))
	if err != nil {
		return errs.NewDatabaseError("update", "failed to update mission progress", err)
	}
	return nil
}
