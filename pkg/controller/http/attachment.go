package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/obligo-lab/obligo/pkg/domain/model"
	"github.com/obligo-lab/obligo/pkg/domain/model/auth"
	"github.com/obligo-lab/obligo/pkg/domain/types"
	"github.com/obligo-lab/obligo/pkg/usecase"
	"github.com/obligo-lab/obligo/pkg/utils/errutil"
	"github.com/obligo-lab/obligo/pkg/utils/safe"
)

const maxUploadBytes = 32 << 20

// uploadAttachmentHandler accepts a multipart upload, stores the bytes in
// the attachment store, and registers the metadata against the obligation.
func uploadAttachmentHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store := uc.AttachmentStore()
		if store == nil {
			errutil.HandleHTTP(r.Context(), w, goerr.New("attachment store is not configured"), http.StatusServiceUnavailable)
			return
		}

		actor, err := auth.ActorFromContext(r.Context())
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusUnauthorized)
			return
		}

		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid multipart form"), http.StatusBadRequest)
			return
		}

		rawID := r.FormValue("obligation_id")
		obligationID, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid obligation ID", goerr.V("id", rawID)), http.StatusBadRequest)
			return
		}

		kind, err := types.ParseDocumentKind(r.FormValue("kind"))
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "file field is required"), http.StatusBadRequest)
			return
		}
		defer safe.Close(r.Context(), file)

		if _, err := uc.Obligation.Get(r.Context(), types.ObligationID(obligationID)); err != nil {
			if errors.Is(err, usecase.ErrObligationNotFound) {
				errutil.HandleHTTP(r.Context(), w, err, http.StatusNotFound)
				return
			}
			errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
			return
		}

		// Evidence uploads follow the stricter attach-evidence rule
		action := types.ActionAttachOther
		if kind == types.DocumentKindComplianceEvidence {
			action = types.ActionAttachEvidence
		}
		decision, err := uc.Permission.Evaluate(r.Context(), types.ObligationID(obligationID), action)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
			return
		}
		if !decision.Allowed {
			writeDenial(r.Context(), w, decision.Denial())
			return
		}

		contentType := header.Header.Get("Content-Type")
		ref, err := store.Put(r.Context(), header.Filename, contentType, file)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to store attachment"), http.StatusInternalServerError)
			return
		}

		attachment := &model.Attachment{
			ID:           ref,
			ObligationID: types.ObligationID(obligationID),
			FileName:     header.Filename,
			ContentType:  contentType,
			Kind:         kind,
			UploaderID:   actor.ResponsibleID,
			UploaderRole: actor.Role,
			UploadedAt:   time.Now().UTC(),
		}
		if err := uc.Repo().Attachment().Put(r.Context(), attachment); err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
			return
		}

		writeJSON(r.Context(), w, http.StatusCreated, toAttachmentResponse(attachment))
	}
}
