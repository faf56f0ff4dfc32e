package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	server "github.com/obligo-lab/obligo/pkg/controller/http"
	"github.com/obligo-lab/obligo/pkg/domain/interfaces"
	"github.com/obligo-lab/obligo/pkg/domain/model"
	"github.com/obligo-lab/obligo/pkg/domain/model/auth"
	"github.com/obligo-lab/obligo/pkg/domain/types"
	"github.com/obligo-lab/obligo/pkg/repository/memory"
	"github.com/obligo-lab/obligo/pkg/service/attachment"
	"github.com/obligo-lab/obligo/pkg/usecase"
)

func setupServer(t *testing.T) (*server.Server, interfaces.Repository) {
	t.Helper()
	ctx := context.Background()
	repo := memory.New()

	gt.NoError(t, repo.Area().Put(ctx, &model.Area{
		ID:        "area-eng",
		Name:      "Engineering",
		MemberIDs: []types.ResponsibleID{"resp-exec"},
	})).Required()
	gt.NoError(t, repo.Responsible().Put(ctx, &model.Responsible{
		ID:       "resp-exec",
		FullName: "Eva Executor",
		Role:     types.RoleExecutor,
		AreaIDs:  []types.AreaID{"area-eng"},
	})).Required()

	uc := usecase.New(repo,
		usecase.WithAuth(usecase.NewNoAuthnUseCase(repo, "resp-exec")),
		usecase.WithAttachmentStore(attachment.NewMemory()),
	)
	return server.New(uc), repo
}

func doJSON(t *testing.T, srv *server.Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		gt.NoError(t, json.NewEncoder(&buf).Encode(body)).Required()
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	gt.NoError(t, json.NewDecoder(rec.Body).Decode(&v)).Required()
	return v
}

func createObligationRequestBody() map[string]any {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return map[string]any{
		"code":             "OB-HTTP-001",
		"classification":   "REGULATORY",
		"periodicity":      "MONTHLY",
		"criticality":      "HIGH",
		"nature":           "REPORTING",
		"assigned_area_id": "area-eng",
		"start_date":       base,
		"end_date":         base.AddDate(0, 1, 0),
		"limit_date":       base.AddDate(0, 2, 0),
	}
}

func TestObligationLifecycle(t *testing.T) {
	srv, _ := setupServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/obligations", createObligationRequestBody())
	gt.Value(t, rec.Code).Equal(http.StatusCreated)
	created := decodeBody[map[string]any](t, rec)
	id := int64(created["id"].(float64))
	gt.Value(t, created["status"]).Equal("NOT_STARTED")

	rec = doJSON(t, srv, http.MethodGet, "/api/obligations", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	listed := decodeBody[struct {
		Obligations []map[string]any `json:"obligations"`
	}](t, rec)
	gt.Array(t, listed.Obligations).Length(1)

	rec = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/obligations/%d/route", id),
		map[string]any{"action": "START"})
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	routed := decodeBody[struct {
		Obligation map[string]any `json:"obligation"`
		Action     map[string]any `json:"action"`
	}](t, rec)
	gt.Value(t, routed.Obligation["status"]).Equal("IN_PROGRESS")
	gt.Value(t, routed.Action["level"]).Equal(float64(1))

	rec = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/obligations/%d/permissions", id), nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	perms := decodeBody[map[string]struct {
		Allowed bool   `json:"allowed"`
		Code    string `json:"code"`
	}](t, rec)
	gt.Value(t, len(perms)).Equal(len(types.AllActions()))
	gt.Bool(t, perms["START"].Allowed).False()
	gt.Value(t, perms["SUBMIT_FOR_AREA_APPROVAL"].Code).Equal("missing_evidence")

	uploadEvidence(t, srv, id)

	rec = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/obligations/%d/route", id),
		map[string]any{"action": "SUBMIT_FOR_AREA_APPROVAL"})
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	routed = decodeBody[struct {
		Obligation map[string]any `json:"obligation"`
		Action     map[string]any `json:"action"`
	}](t, rec)
	gt.Value(t, routed.Obligation["status"]).Equal("PENDING_AREA_APPROVAL")

	rec = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/obligations/%d/annotations", id),
		map[string]any{"text": "submitted to the area"})
	gt.Value(t, rec.Code).Equal(http.StatusCreated)
	annotation := decodeBody[map[string]any](t, rec)

	rec = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/obligations/%d/timeline", id), nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	timeline := decodeBody[struct {
		Events []struct {
			RoutingAction map[string]any `json:"routing_action"`
			Annotation    map[string]any `json:"annotation"`
		} `json:"events"`
	}](t, rec)

	// The level-1 start action is structural: two events remain, annotation
	// newest
	gt.Array(t, timeline.Events).Length(2)
	gt.Value(t, timeline.Events[0].Annotation).NotNil()
	gt.Value(t, timeline.Events[1].RoutingAction["level"]).Equal(float64(2))

	rec = doJSON(t, srv, http.MethodDelete,
		fmt.Sprintf("/api/obligations/%d/annotations/%s", id, annotation["id"]), nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
}

func uploadEvidence(t *testing.T, srv *server.Server, obligationID int64) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	gt.NoError(t, mw.WriteField("obligation_id", fmt.Sprintf("%d", obligationID))).Required()
	gt.NoError(t, mw.WriteField("kind", "compliance-evidence")).Required()
	fw, err := mw.CreateFormFile("file", "report.pdf")
	gt.NoError(t, err).Required()
	_, err = fw.Write([]byte("evidence bytes"))
	gt.NoError(t, err).Required()
	gt.NoError(t, mw.Close()).Required()

	req := httptest.NewRequest(http.MethodPost, "/api/attachments", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	gt.Value(t, rec.Code).Equal(http.StatusCreated)
	uploaded := decodeBody[map[string]any](t, rec)
	gt.Value(t, uploaded["kind"]).Equal("compliance-evidence")
	gt.Value(t, uploaded["uploader_id"]).Equal("resp-exec")
}

func TestDenialStatusMapping(t *testing.T) {
	srv, _ := setupServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/obligations", createObligationRequestBody())
	gt.Value(t, rec.Code).Equal(http.StatusCreated)
	created := decodeBody[map[string]any](t, rec)
	id := int64(created["id"].(float64))

	t.Run("role refusal is forbidden", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/obligations/%d/route", id),
			map[string]any{"action": "SUSPEND"})
		gt.Value(t, rec.Code).Equal(http.StatusForbidden)
		denial := decodeBody[map[string]any](t, rec)
		gt.Value(t, denial["code"]).Equal("role_not_allowed")
	})

	t.Run("unavailable action is unprocessable", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/obligations/%d/route", id),
			map[string]any{"action": "APPROVE", "approval_flag": "APPROVED"})
		gt.Value(t, rec.Code).Equal(http.StatusUnprocessableEntity)
		denial := decodeBody[map[string]any](t, rec)
		gt.Value(t, denial["code"]).Equal("action_not_available")
	})

	t.Run("late justification outside late status", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPut,
			fmt.Sprintf("/api/obligations/%d/late-justification", id),
			map[string]any{"text": "data source unavailable"})
		gt.Value(t, rec.Code).Equal(http.StatusUnprocessableEntity)
		denial := decodeBody[map[string]any](t, rec)
		gt.Value(t, denial["code"]).Equal("obligation_not_late")
	})
}

func TestRequestValidation(t *testing.T) {
	srv, _ := setupServer(t)

	t.Run("malformed obligation is rejected", func(t *testing.T) {
		body := createObligationRequestBody()
		body["assigned_area_id"] = ""
		rec := doJSON(t, srv, http.MethodPost, "/api/obligations", body)
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("unknown status filter is rejected", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/api/obligations?status=BOGUS", nil)
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("unknown routing action is rejected", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/obligations/1/route",
			map[string]any{"action": "FROBNICATE"})
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("unknown obligation is not found", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/api/obligations/999", nil)
		gt.Value(t, rec.Code).Equal(http.StatusNotFound)

		rec = doJSON(t, srv, http.MethodPost, "/api/obligations/999/route",
			map[string]any{"action": "START"})
		gt.Value(t, rec.Code).Equal(http.StatusNotFound)
	})
}

func TestAuthRequired(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	gt.NoError(t, repo.Responsible().Put(ctx, &model.Responsible{
		ID:       "resp-exec",
		FullName: "Eva Executor",
		Role:     types.RoleExecutor,
		AreaIDs:  []types.AreaID{"area-eng"},
	})).Required()

	authUC := usecase.NewAuthUseCase(repo, "http://127.0.0.1:0/jwks", "", "")
	uc := usecase.New(repo, usecase.WithAuth(authUC))
	srv := server.New(uc)

	t.Run("missing bearer token", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/api/obligations", nil)
		gt.Value(t, rec.Code).Equal(http.StatusUnauthorized)
	})

	t.Run("malformed bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/obligations", nil)
		req.Header.Set("Authorization", "Bearer nocolon")
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		gt.Value(t, rec.Code).Equal(http.StatusUnauthorized)
	})

	t.Run("valid session resolves the actor", func(t *testing.T) {
		token, secret, err := auth.NewToken("resp-exec")
		gt.NoError(t, err).Required()
		gt.NoError(t, repo.PutToken(ctx, token)).Required()

		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s:%s", token.ID, secret))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		gt.Value(t, rec.Code).Equal(http.StatusOK)
		me := decodeBody[map[string]any](t, rec)
		gt.Value(t, me["responsible_id"]).Equal("resp-exec")
	})

	t.Run("revoked session is rejected", func(t *testing.T) {
		token, secret, err := auth.NewToken("resp-exec")
		gt.NoError(t, err).Required()
		gt.NoError(t, repo.PutToken(ctx, token)).Required()
		gt.NoError(t, authUC.Logout(ctx, token.ID)).Required()

		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s:%s", token.ID, secret))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		gt.Value(t, rec.Code).Equal(http.StatusUnauthorized)
	})
}
