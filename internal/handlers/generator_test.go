package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Marcos1701/finquest-backend/internal/dto"
	"github.com/Marcos1701/finquest-backend/internal/errs"
)

type stubGeneratorService struct {
	result dto.GenerateBatchResult
	err    error

	lastTier  dto.Tier
	lastCount int
	lastUseAI bool
}

func (s *stubGeneratorService) GenerateBatch(_ context.Context, tier dto.Tier, count int, useAI bool) (dto.GenerateBatchResult, error) {
	s.lastTier, s.lastCount, s.lastUseAI = tier, count, useAI
	return s.result, s.err
}

func TestGenerateBatch_OK(t *testing.T) {
	svc := &stubGeneratorService{result: dto.GenerateBatchResult{
		Summary: dto.GenerationSummary{Requested: 5, Created: 5, FromTemplates: 5},
	}}
	resp := &stubResponseHandler{}
	h := NewGeneratorHandlers(&Deps{ResponseHandler: resp, GeneratorSvc: svc})

	body := `{"tier":"BEGINNER","count":5,"useAi":true}`
	req := httptest.NewRequest(http.MethodPost, "/admin/missions/generate", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.GenerateBatch(rr, req)

	if svc.lastTier != dto.TierBeginner || svc.lastCount != 5 || !svc.lastUseAI {
		t.Fatalf("service got tier=%q count=%d useAI=%v", svc.lastTier, svc.lastCount, svc.lastUseAI)
	}
	got, ok := resp.writeSuccessData.(dto.GenerateBatchResult)
	if !ok || got.Summary.Created != 5 {
		t.Fatalf("unexpected payload %#v", resp.writeSuccessData)
	}
}

func TestGenerateBatch_BadBody(t *testing.T) {
	resp := &stubResponseHandler{}
	h := NewGeneratorHandlers(&Deps{ResponseHandler: resp, GeneratorSvc: &stubGeneratorService{}})

	req := httptest.NewRequest(http.MethodPost, "/admin/missions/generate", strings.NewReader("not json"))
	rr := httptest.NewRecorder()
	h.GenerateBatch(rr, req)

	if _, ok := resp.handleErrorErr.(*errs.ValidationError); !ok {
		t.Fatalf("expected ValidationError, got %T", resp.handleErrorErr)
	}
}

func TestGenerateBatch_ValidationErrorPassthrough(t *testing.T) {
	svc := &stubGeneratorService{err: errs.NewValidationError("count must be between 1 and 20")}
	resp := &stubResponseHandler{}
	h := NewGeneratorHandlers(&Deps{ResponseHandler: resp, GeneratorSvc: svc})

	req := httptest.NewRequest(http.MethodPost, "/admin/missions/generate",
		strings.NewReader(`{"tier":"BEGINNER","count":0}`))
	rr := httptest.NewRecorder()
	h.GenerateBatch(rr, req)

	if _, ok := resp.handleErrorErr.(*errs.ValidationError); !ok {
		t.Fatalf("expected ValidationError, got %T", resp.handleErrorErr)
	}
}
