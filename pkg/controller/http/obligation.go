package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/obligo-lab/obligo/pkg/domain/interfaces"
	"github.com/obligo-lab/obligo/pkg/domain/model"
	"github.com/obligo-lab/obligo/pkg/domain/types"
	"github.com/obligo-lab/obligo/pkg/usecase"
	"github.com/obligo-lab/obligo/pkg/utils/errutil"
)

func obligationIDParam(r *http.Request) (types.ObligationID, error) {
	raw := chi.URLParam(r, "obligationID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, goerr.Wrap(err, "invalid obligation ID", goerr.V("id", raw))
	}
	return types.ObligationID(id), nil
}

type createObligationRequest struct {
	Code           string `json:"code"`
	Status         string `json:"status"`
	Classification string `json:"classification"`
	Periodicity    string `json:"periodicity"`
	Criticality    string `json:"criticality"`
	Nature         string `json:"nature"`

	AssignedAreaID      string   `json:"assigned_area_id"`
	ConditioningAreaIDs []string `json:"conditioning_area_ids"`
	ThemeID             string   `json:"theme_id"`

	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	LimitDate time.Time `json:"limit_date"`

	Exceptional       bool           `json:"exceptional"`
	DeadlineOverrides map[string]int `json:"deadline_overrides"`

	PrincipalObligationID *int64 `json:"principal_obligation_id"`
	RejectedObligationID  *int64 `json:"rejected_obligation_id"`
}

func (req *createObligationRequest) toModel() (*model.Obligation, error) {
	o := &model.Obligation{
		Code:           req.Code,
		Status:         types.ObligationStatus(req.Status),
		Classification: types.Classification(req.Classification),
		Periodicity:    types.Periodicity(req.Periodicity),
		Criticality:    types.Criticality(req.Criticality),
		Nature:         types.Nature(req.Nature),
		AssignedAreaID: types.AreaID(req.AssignedAreaID),
		ThemeID:        types.ThemeID(req.ThemeID),
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		LimitDate:      req.LimitDate,
		Exceptional:    req.Exceptional,
	}

	for _, id := range req.ConditioningAreaIDs {
		o.ConditioningAreaIDs = append(o.ConditioningAreaIDs, types.AreaID(id))
	}
	if len(req.DeadlineOverrides) > 0 {
		o.DeadlineOverrides = make(map[types.ObligationStatus]int, len(req.DeadlineOverrides))
		for raw, hours := range req.DeadlineOverrides {
			status, err := types.ParseObligationStatus(raw)
			if err != nil {
				return nil, goerr.Wrap(err, "invalid deadline override status")
			}
			o.DeadlineOverrides[status] = hours
		}
	}
	if req.PrincipalObligationID != nil {
		id := types.ObligationID(*req.PrincipalObligationID)
		o.PrincipalObligationID = &id
	}
	if req.RejectedObligationID != nil {
		id := types.ObligationID(*req.RejectedObligationID)
		o.RejectedObligationID = &id
	}
	return o, nil
}

func createObligationHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createObligationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
			return
		}

		o, err := req.toModel()
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
			return
		}

		created, err := uc.Obligation.Create(r.Context(), o)
		if err != nil {
			if errors.Is(err, usecase.ErrInvalidReference) {
				errutil.HandleHTTP(r.Context(), w, err, http.StatusUnprocessableEntity)
				return
			}
			errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
			return
		}

		writeJSON(r.Context(), w, http.StatusCreated, toObligationResponse(created))
	}
}

func listObligationsHandler(uc *usecase.UseCases) http.HandlerFunc {
	type response struct {
		Obligations []*obligationResponse `json:"obligations"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var opts interfaces.ListObligationOptions

		if raw := r.URL.Query().Get("status"); raw != "" {
			status, err := types.ParseObligationStatus(raw)
			if err != nil {
				errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
				return
			}
			opts.Status = status
		}
		opts.AreaID = types.AreaID(r.URL.Query().Get("area"))
		opts.IncludeInactive = r.URL.Query().Get("include_inactive") == "true"

		obligations, err := uc.Obligation.List(r.Context(), opts)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
			return
		}

		resp := response{Obligations: make([]*obligationResponse, len(obligations))}
		for i, o := range obligations {
			resp.Obligations[i] = toObligationResponse(o)
		}
		writeJSON(r.Context(), w, http.StatusOK, resp)
	}
}

func getObligationHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := obligationIDParam(r)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
			return
		}

		o, err := uc.Obligation.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, usecase.ErrObligationNotFound) {
				errutil.HandleHTTP(r.Context(), w, err, http.StatusNotFound)
				return
			}
			errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
			return
		}

		writeJSON(r.Context(), w, http.StatusOK, toObligationResponse(o))
	}
}

func deactivateObligationHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := obligationIDParam(r)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
			return
		}

		o, err := uc.Obligation.Deactivate(r.Context(), id)
		if err != nil {
			if errors.Is(err, usecase.ErrObligationNotFound) {
				errutil.HandleHTTP(r.Context(), w, err, http.StatusNotFound)
				return
			}
			errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
			return
		}

		writeJSON(r.Context(), w, http.StatusOK, toObligationResponse(o))
	}
}

func lateJustificationHandler(uc *usecase.UseCases) http.HandlerFunc {
	type request struct {
		Text string `json:"text"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		id, err := obligationIDParam(r)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
			return
		}

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
			return
		}
		if req.Text == "" {
			errutil.HandleHTTP(r.Context(), w, goerr.New("justification text is required"), http.StatusBadRequest)
			return
		}

		o, denial, err := uc.Obligation.SetLateJustification(r.Context(), id, req.Text)
		if err != nil {
			if errors.Is(err, usecase.ErrObligationNotFound) {
				errutil.HandleHTTP(r.Context(), w, err, http.StatusNotFound)
				return
			}
			errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
			return
		}
		if denial != nil {
			writeDenial(r.Context(), w, denial)
			return
		}

		writeJSON(r.Context(), w, http.StatusOK, toObligationResponse(o))
	}
}

func permissionsHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := obligationIDParam(r)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
			return
		}

		decisions, err := uc.Permission.EvaluateAll(r.Context(), id)
		if err != nil {
			if errors.Is(err, usecase.ErrObligationNotFound) {
				errutil.HandleHTTP(r.Context(), w, err, http.StatusNotFound)
				return
			}
			errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
			return
		}

		resp := make(map[string]decisionResponse, len(decisions))
		for action, d := range decisions {
			resp[string(action)] = decisionResponse{
				Allowed: d.Allowed,
				Code:    string(d.Code),
				Reason:  d.Reason,
			}
		}
		writeJSON(r.Context(), w, http.StatusOK, resp)
	}
}
