package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/obligo-lab/obligo/pkg/domain/types"
	"github.com/obligo-lab/obligo/pkg/usecase"
	"github.com/obligo-lab/obligo/pkg/utils/errutil"
)

type routeRequest struct {
	Action            string   `json:"action"`
	ApprovalFlag      string   `json:"approval_flag"`
	DestinationAreaID string   `json:"destination_area_id"`
	Note              string   `json:"note"`
	AttachmentIDs     []string `json:"attachment_ids"`
}

type routeResponse struct {
	Obligation *obligationResponse    `json:"obligation"`
	Action     *routingActionResponse `json:"action"`
}

func routeHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := obligationIDParam(r)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
			return
		}

		var req routeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
			return
		}

		action, err := types.ParseAction(req.Action)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
			return
		}
		flag := types.ApprovalFlag(req.ApprovalFlag).Normalize()
		if !flag.IsValid() {
			errutil.HandleHTTP(r.Context(), w, goerr.New("invalid approval flag", goerr.V("flag", req.ApprovalFlag)), http.StatusBadRequest)
			return
		}

		input := usecase.RouteInput{
			ObligationID:      id,
			Action:            action,
			ApprovalFlag:      flag,
			DestinationAreaID: types.AreaID(req.DestinationAreaID),
			Note:              req.Note,
		}
		for _, attID := range req.AttachmentIDs {
			input.AttachmentIDs = append(input.AttachmentIDs, types.AttachmentID(attID))
		}

		result, err := uc.Routing.Route(r.Context(), input)
		if err != nil {
			switch {
			case errors.Is(err, usecase.ErrObligationNotFound):
				errutil.HandleHTTP(r.Context(), w, err, http.StatusNotFound)
			case errors.Is(err, usecase.ErrNotRoutingAction):
				errutil.HandleHTTP(r.Context(), w, err, http.StatusUnprocessableEntity)
			default:
				errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
			}
			return
		}
		if result.Denial != nil {
			writeDenial(r.Context(), w, result.Denial)
			return
		}

		writeJSON(r.Context(), w, http.StatusOK, routeResponse{
			Obligation: toObligationResponse(result.Obligation),
			Action:     toRoutingActionResponse(result.Action),
		})
	}
}
