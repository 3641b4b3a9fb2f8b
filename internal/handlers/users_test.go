package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Marcos1701/finquest-backend/internal/dto"
	"github.com/Marcos1701/finquest-backend/internal/errs"
	"github.com/Marcos1701/finquest-backend/internal/middleware"
	"github.com/Marcos1701/finquest-backend/internal/models"
)

type stubUserService struct {
	registerProfile *models.UserProfile
	registerErr     error
	profileResp     dto.ProfileResponse
	profileErr      error
	updateProfile   *models.UserProfile
	updateErr       error
	goal            *models.Goal
	goalErr         error
	goals           []models.Goal
	listErr         error

	lastUID      string
	lastEmail    string
	lastRegister dto.RegisterRequest
	lastTargets  dto.UpdateTargetsRequest
}

func (s *stubUserService) Register(_ context.Context, uid, email string, req dto.RegisterRequest) (*models.UserProfile, error) {
	s.lastUID, s.lastEmail, s.lastRegister = uid, email, req
	return s.registerProfile, s.registerErr
}

func (s *stubUserService) GetProfile(_ context.Context, uid string) (dto.ProfileResponse, error) {
	s.lastUID = uid
	return s.profileResp, s.profileErr
}

func (s *stubUserService) UpdateTargets(_ context.Context, uid string, req dto.UpdateTargetsRequest) (*models.UserProfile, error) {
	s.lastUID, s.lastTargets = uid, req
	return s.updateProfile, s.updateErr
}

func (s *stubUserService) CreateGoal(_ context.Context, uid string, _ dto.CreateGoalRequest) (*models.Goal, error) {
	s.lastUID = uid
	return s.goal, s.goalErr
}

func (s *stubUserService) ListGoals(_ context.Context, uid string) ([]models.Goal, error) {
	s.lastUID = uid
	return s.goals, s.listErr
}

func TestRegister_OK(t *testing.T) {
	svc := &stubUserService{registerProfile: &models.UserProfile{UID: "uid1", Level: 1}}
	resp := &stubResponseHandler{}
	h := NewUserHandlers(&Deps{ResponseHandler: resp, UserSvc: svc})

	req := httptest.NewRequest(http.MethodPost, "/users/register",
		strings.NewReader(`{"firstname":"Ada","lastname":"Lovelace"}`))
	req = withUID(req, "uid1")
	ctx := context.WithValue(req.Context(), middleware.EmailKey, "ada@example.com")
	req = req.WithContext(ctx)
	rr := httptest.NewRecorder()
	h.Register(rr, req)

	if !resp.writeSuccessCalled || resp.writeSuccessStatus != http.StatusCreated {
		t.Fatalf("expected WriteSuccess with 201, got called=%v status=%d", resp.writeSuccessCalled, resp.writeSuccessStatus)
	}
	if svc.lastUID != "uid1" || svc.lastEmail != "ada@example.com" {
		t.Fatalf("service got uid=%q email=%q", svc.lastUID, svc.lastEmail)
	}
	if svc.lastRegister.FirstName != "Ada" {
		t.Fatalf("expected firstname Ada, got %q", svc.lastRegister.FirstName)
	}
}

func TestRegister_BadBody(t *testing.T) {
	resp := &stubResponseHandler{}
	h := NewUserHandlers(&Deps{ResponseHandler: resp, UserSvc: &stubUserService{}})

	req := httptest.NewRequest(http.MethodPost, "/users/register", strings.NewReader("{not json"))
	req = withUID(req, "uid1")
	rr := httptest.NewRecorder()
	h.Register(rr, req)

	if !resp.handleErrorCalled {
		t.Fatal("expected HandleError to be called")
	}
	if _, ok := resp.handleErrorErr.(*errs.ValidationError); !ok {
		t.Fatalf("expected ValidationError, got %T", resp.handleErrorErr)
	}
}

func TestRegister_Conflict(t *testing.T) {
	svc := &stubUserService{registerErr: errs.NewConflictError("profile already exists")}
	resp := &stubResponseHandler{}
	h := NewUserHandlers(&Deps{ResponseHandler: resp, UserSvc: svc})

	req := httptest.NewRequest(http.MethodPost, "/users/register", strings.NewReader(`{}`))
	req = withUID(req, "uid1")
	rr := httptest.NewRecorder()
	h.Register(rr, req)

	if _, ok := resp.handleErrorErr.(*errs.ConflictError); !ok {
		t.Fatalf("expected ConflictError, got %T", resp.handleErrorErr)
	}
}

func TestGetProfile_OK(t *testing.T) {
	svc := &stubUserService{profileResp: dto.ProfileResponse{
		Profile: models.UserProfile{UID: "uid1", Level: 3},
	}}
	resp := &stubResponseHandler{}
	h := NewUserHandlers(&Deps{ResponseHandler: resp, UserSvc: svc})

	req := httptest.NewRequest(http.MethodGet, "/users/profile", nil)
	req = withUID(req, "uid1")
	rr := httptest.NewRecorder()
	h.GetProfile(rr, req)

	if !resp.writeSuccessCalled || resp.writeSuccessStatus != http.StatusOK {
		t.Fatalf("expected WriteSuccess with 200, got called=%v status=%d", resp.writeSuccessCalled, resp.writeSuccessStatus)
	}
	got, ok := resp.writeSuccessData.(dto.ProfileResponse)
	if !ok || got.Profile.Level != 3 {
		t.Fatalf("unexpected payload %#v", resp.writeSuccessData)
	}
}

func TestUpdateTargets_PassesDecimals(t *testing.T) {
	svc := &stubUserService{updateProfile: &models.UserProfile{UID: "uid1"}}
	resp := &stubResponseHandler{}
	h := NewUserHandlers(&Deps{ResponseHandler: resp, UserSvc: svc})

	req := httptest.NewRequest(http.MethodPatch, "/users/profile/targets",
		strings.NewReader(`{"targetSavingsRate":"17.5"}`))
	req = withUID(req, "uid1")
	rr := httptest.NewRecorder()
	h.UpdateTargets(rr, req)

	if !resp.writeSuccessCalled {
		t.Fatal("expected WriteSuccess to be called")
	}
	if svc.lastTargets.TargetSavingsRate == nil ||
		!svc.lastTargets.TargetSavingsRate.Equal(decimal.RequireFromString("17.5")) {
		t.Fatalf("expected targetSavingsRate 17.5, got %v", svc.lastTargets.TargetSavingsRate)
	}
	if svc.lastTargets.TargetDebtRatio != nil {
		t.Fatal("expected nil targetDebtRatio for omitted field")
	}
}

func TestListGoals_OK(t *testing.T) {
	svc := &stubUserService{goals: []models.Goal{{GoalID: "g1"}, {GoalID: "g2"}}}
	resp := &stubResponseHandler{}
	h := NewUserHandlers(&Deps{ResponseHandler: resp, UserSvc: svc})

	req := httptest.NewRequest(http.MethodGet, "/users/goals", nil)
	req = withUID(req, "uid1")
	rr := httptest.NewRecorder()
	h.ListGoals(rr, req)

	goals, ok := resp.writeSuccessData.([]models.Goal)
	if !ok || len(goals) != 2 {
		t.Fatalf("unexpected payload %#v", resp.writeSuccessData)
	}
}
