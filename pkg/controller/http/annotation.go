package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/obligo-lab/obligo/pkg/domain/types"
	"github.com/obligo-lab/obligo/pkg/usecase"
	"github.com/obligo-lab/obligo/pkg/utils/errutil"
)

type addAnnotationRequest struct {
	Text                  string   `json:"text"`
	InReplyToAnnotationID *string  `json:"in_reply_to_annotation_id"`
	InReplyToRoutingLevel *int     `json:"in_reply_to_routing_level"`
	AttachmentIDs         []string `json:"attachment_ids"`
}

func addAnnotationHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := obligationIDParam(r)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
			return
		}

		var req addAnnotationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
			return
		}
		if req.Text == "" {
			errutil.HandleHTTP(r.Context(), w, goerr.New("annotation text is required"), http.StatusBadRequest)
			return
		}

		input := usecase.AddAnnotationInput{
			ObligationID: id,
			Text:         req.Text,
		}
		if req.InReplyToAnnotationID != nil {
			annID := types.AnnotationID(*req.InReplyToAnnotationID)
			input.InReplyToAnnotationID = &annID
		}
		input.InReplyToRoutingLevel = req.InReplyToRoutingLevel
		for _, attID := range req.AttachmentIDs {
			input.AttachmentIDs = append(input.AttachmentIDs, types.AttachmentID(attID))
		}

		created, denial, err := uc.Annotation.Add(r.Context(), input)
		if err != nil {
			switch {
			case errors.Is(err, usecase.ErrObligationNotFound):
				errutil.HandleHTTP(r.Context(), w, err, http.StatusNotFound)
			case errors.Is(err, usecase.ErrReplyTargetNotFound):
				errutil.HandleHTTP(r.Context(), w, err, http.StatusUnprocessableEntity)
			default:
				errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
			}
			return
		}
		if denial != nil {
			writeDenial(r.Context(), w, denial)
			return
		}

		writeJSON(r.Context(), w, http.StatusCreated, toAnnotationResponse(created))
	}
}

func deleteAnnotationHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		annID := types.AnnotationID(chi.URLParam(r, "annotationID"))

		denial, err := uc.Annotation.Delete(r.Context(), annID)
		if err != nil {
			if errors.Is(err, usecase.ErrAnnotationNotFound) {
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

		writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true})
	}
}

func timelineHandler(uc *usecase.UseCases) http.HandlerFunc {
	type response struct {
		Events []timelineEventResponse `json:"events"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		id, err := obligationIDParam(r)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
			return
		}

		events, err := uc.Annotation.ListTimeline(r.Context(), id)
		if err != nil {
			if errors.Is(err, usecase.ErrObligationNotFound) {
				errutil.HandleHTTP(r.Context(), w, err, http.StatusNotFound)
				return
			}
			errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
			return
		}

		resp := response{Events: make([]timelineEventResponse, len(events))}
		for i, ev := range events {
			entry := timelineEventResponse{At: ev.At}
			if ev.RoutingAction != nil {
				entry.RoutingAction = toRoutingActionResponse(ev.RoutingAction)
			}
			if ev.Annotation != nil {
				entry.Annotation = toAnnotationResponse(ev.Annotation)
			}
			resp.Events[i] = entry
		}
		writeJSON(r.Context(), w, http.StatusOK, resp)
	}
}
