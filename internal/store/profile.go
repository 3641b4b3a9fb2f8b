package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Marcos1701/finquest-backend/internal/dto"
	"github.com/Marcos1701/finquest-backend/internal/errs"
	"github.com/Marcos1701/finquest-backend/internal/models"
)

type profileStore struct {
	client *firestore.Client
}

func NewProfileStore(client *firestore.Client) *profileStore {
	return &profileStore{client: client}
}

func (s *profileStore) doc(uid string) *firestore.DocumentRef {
	return s.client.Collection("users").Doc(uid).Collection("profile").Doc("gamification")
}

func (s *profileStore) GetProfile(ctx context.Context, uid string) (*models.UserProfile, error) {
	doc, err := s.doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errs.NewNotFoundError("profile not found")
		}
		return nil, errs.NewDatabaseError("read", "failed to get profile", err)
	}
	var d profileDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse profile data", err)
	}
	return d.model()
}

func (s *profileStore) CreateProfile(ctx context.Context, profile *models.UserProfile) error {
	_, err := s.doc(profile.UID).Create(ctx, profileToDoc(profile))
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return errs.NewConflictError("profile already exists")
		}
		return errs.NewDatabaseError("create", "failed to create profile", err)
	}
	return nil
}

func (s *profileStore) UpdateProfile(ctx context.Context, profile *models.UserProfile) error {
	_, err := s.doc(profile.UID).Set(ctx, profileToDoc(profile))
	if err != nil {
		return errs.NewDatabaseError("update", "failed to update profile", err)
	}
	return nil
}

// SaveIndicatorCache writes only the cached ratios and the cache timestamp,
// leaving XP and targets untouched by concurrent writers.
func (s *profileStore) SaveIndicatorCache(ctx context.Context, uid string, snap dto.IndicatorSnapshot) error {
	_, err := s.doc(uid).Update(ctx, []firestore.Update{
		{Path: "savingsRate", Value: decToDoc(snap.SavingsRate)},
		{Path: "debtRatio", Value: decToDoc(snap.DebtRatio)},
		{Path: "reserveCoverage", Value: decToDoc(snap.ReserveCoverage)},
		{Path: "indicatorsCachedAt", Value: snap.ComputedAt},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		return errs.NewDatabaseError("update", "failed to cache indicators", err)
	}
	return nil
}

func (s *profileStore) ClearIndicatorCache(ctx context.Context, uid string) error {
	_, err := s.doc(uid).Update(ctx, []firestore.Update{
		{Path: "indicatorsCachedAt", Value: nil},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil
		}
		return errs.NewDatabaseError("update", "failed to clear indicator cache", err)
	}
	return nil
}
