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

// rewardStore grants mission rewards. The XP audit record shares its
// document ID with the progress instance, so creating it inside the same
// transaction that bumps the profile makes double-granting impossible even
// under concurrent completion calls.
type rewardStore struct {
	client *firestore.Client
}

func NewRewardStore(client *firestore.Client) *rewardStore {
	return &rewardStore{client: client}
}

func (s *rewardStore) xpDoc(uid, progressID string) *firestore.DocumentRef {
	return s.client.Collection("users").Doc(uid).Collection("xp_transactions").Doc(progressID)
}

func (s *rewardStore) profileDoc(uid string) *firestore.DocumentRef {
	return s.client.Collection("users").Doc(uid).Collection("profile").Doc("gamification")
}

func (s *rewardStore) GetXPTransaction(ctx context.Context, uid, progressID string) (*models.XPTransaction, error) {
	doc, err := s.xpDoc(uid, progressID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errs.NewNotFoundError("xp transaction not found")
		}
		return nil, errs.NewDatabaseError("read", "failed to get xp transaction", err)
	}
	var rec models.XPTransaction
	if err := doc.DataTo(&rec); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse xp transaction data", err)
	}
	return &rec, nil
}

func (s *rewardStore) ListXPTransactions(ctx context.Context, uid string) ([]models.XPTransaction, error) {
	docs, err := s.client.Collection("users").Doc(uid).Collection("xp_transactions").
		OrderBy("createdAt", firestore.Desc).Documents(ctx).GetAll()
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to list xp transactions", err)
	}
	out := make([]models.XPTransaction, 0, len(docs))
	for _, doc := range docs {
		var rec models.XPTransaction
		if err := doc.DataTo(&rec); err != nil {
			return nil, errs.NewDatabaseError("read", "failed to parse xp transaction data", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Grant applies the mission reward to the profile and writes the audit
// record in one transaction. Returns the record and whether this call
// created it; finding an existing record is a normal outcome, not an error.
func (s *rewardStore) Grant(ctx context.Context, uid string, progress *models.MissionProgress, mission *models.Mission) (*models.XPTransaction, bool, error) {
	var rec *models.XPTransaction
	var granted bool

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		rec, granted = nil, false

		xpRef := s.xpDoc(uid, progress.ProgressID)
		snap, err := tx.Get(xpRef)
		if err == nil {
			var existing models.XPTransaction
			if err := snap.DataTo(&existing); err != nil {
				return err
			}
			rec = &existing
			return nil
		}
		if status.Code(err) != codes.NotFound {
			return err
		}

		profileSnap, err := tx.Get(s.profileDoc(uid))
		if err != nil {
			return err
		}
		var pd profileDoc
		if err := profileSnap.DataTo(&pd); err != nil {
			return err
		}
		profile, err := pd.model()
		if err != nil {
			return err
		}

		record := models.XPTransaction{
			ProgressID:  progress.ProgressID,
			MissionID:   mission.MissionID,
			Points:      mission.RewardPoints,
			LevelBefore: profile.Level,
			XPBefore:    profile.XP,
			CreatedAt:   time.Now(),
		}
		profile.ApplyXP(mission.RewardPoints)
		record.LevelAfter = profile.Level
		record.XPAfter = profile.XP
		profile.UpdatedAt = record.CreatedAt

		if err := tx.Create(xpRef, record); err != nil {
			return err
		}
		if err := tx.Set(s.profileDoc(uid), profileToDoc(profile)); err != nil {
			return err
		}

		rec = &record
		granted = true
		return nil
	})
	if err != nil {
		return nil, false, errs.NewDatabaseError("update", "failed to grant reward", err)
	}
	return rec, granted, nil
}
