package http

import (
	"context"
	"net/http"
	"time"

	"github.com/obligo-lab/obligo/pkg/domain/model"
	"github.com/obligo-lab/obligo/pkg/domain/types"
)

type obligationResponse struct {
	ID             int64  `json:"id"`
	Code           string `json:"code"`
	Status         string `json:"status"`
	Classification string `json:"classification,omitempty"`
	Periodicity    string `json:"periodicity,omitempty"`
	Criticality    string `json:"criticality,omitempty"`
	Nature         string `json:"nature,omitempty"`

	AssignedAreaID      string   `json:"assigned_area_id"`
	ConditioningAreaIDs []string `json:"conditioning_area_ids,omitempty"`
	ThemeID             string   `json:"theme_id,omitempty"`

	StartDate      time.Time  `json:"start_date"`
	EndDate        time.Time  `json:"end_date"`
	LimitDate      time.Time  `json:"limit_date"`
	CompletionDate *time.Time `json:"completion_date,omitempty"`

	Exceptional       bool           `json:"exceptional,omitempty"`
	DeadlineOverrides map[string]int `json:"deadline_overrides,omitempty"`

	LateJustification *lateJustificationResponse `json:"late_justification,omitempty"`

	PrincipalObligationID *int64 `json:"principal_obligation_id,omitempty"`
	RejectedObligationID  *int64 `json:"rejected_obligation_id,omitempty"`

	Inactive  bool      `json:"inactive,omitempty"`
	Revision  int64     `json:"revision"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type lateJustificationResponse struct {
	Text     string    `json:"text"`
	AuthorID string    `json:"author_id"`
	At       time.Time `json:"at"`
}

type routingActionResponse struct {
	ObligationID      int64     `json:"obligation_id"`
	Level             int       `json:"level"`
	Action            string    `json:"action"`
	ApprovalFlag      string    `json:"approval_flag"`
	OriginAreaID      string    `json:"origin_area_id,omitempty"`
	DestinationAreaID string    `json:"destination_area_id,omitempty"`
	ResponsibleID     string    `json:"responsible_id"`
	FromStatus        string    `json:"from_status"`
	ToStatus          string    `json:"to_status"`
	Note              string    `json:"note,omitempty"`
	AttachmentIDs     []string  `json:"attachment_ids,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

type annotationResponse struct {
	ID           string `json:"id"`
	ObligationID int64  `json:"obligation_id"`
	AuthorID     string `json:"author_id"`
	StatusAtTime string `json:"status_at_time"`
	Text         string `json:"text"`

	MentionIDs []string `json:"mention_ids,omitempty"`

	InReplyToAnnotationID *string `json:"in_reply_to_annotation_id,omitempty"`
	InReplyToRoutingLevel *int    `json:"in_reply_to_routing_level,omitempty"`

	AttachmentIDs []string  `json:"attachment_ids,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type timelineEventResponse struct {
	At            time.Time              `json:"at"`
	RoutingAction *routingActionResponse `json:"routing_action,omitempty"`
	Annotation    *annotationResponse    `json:"annotation,omitempty"`
}

type denialResponse struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

type decisionResponse struct {
	Allowed bool   `json:"allowed"`
	Code    string `json:"code,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

type attachmentResponse struct {
	ID           string    `json:"id"`
	ObligationID int64     `json:"obligation_id"`
	FileName     string    `json:"file_name"`
	ContentType  string    `json:"content_type,omitempty"`
	Kind         string    `json:"kind"`
	UploaderID   string    `json:"uploader_id"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

func toObligationResponse(o *model.Obligation) *obligationResponse {
	resp := &obligationResponse{
		ID:             int64(o.ID),
		Code:           o.Code,
		Status:         string(o.Status),
		Classification: string(o.Classification),
		Periodicity:    string(o.Periodicity),
		Criticality:    string(o.Criticality),
		Nature:         string(o.Nature),
		AssignedAreaID: string(o.AssignedAreaID),
		ThemeID:        string(o.ThemeID),
		StartDate:      o.StartDate,
		EndDate:        o.EndDate,
		LimitDate:      o.LimitDate,
		CompletionDate: o.CompletionDate,
		Exceptional:    o.Exceptional,
		Inactive:       o.Inactive,
		Revision:       o.Revision,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}

	for _, id := range o.ConditioningAreaIDs {
		resp.ConditioningAreaIDs = append(resp.ConditioningAreaIDs, string(id))
	}
	if len(o.DeadlineOverrides) > 0 {
		resp.DeadlineOverrides = make(map[string]int, len(o.DeadlineOverrides))
		for status, hours := range o.DeadlineOverrides {
			resp.DeadlineOverrides[string(status)] = hours
		}
	}
	if o.LateJustification != nil {
		resp.LateJustification = &lateJustificationResponse{
			Text:     o.LateJustification.Text,
			AuthorID: string(o.LateJustification.AuthorID),
			At:       o.LateJustification.At,
		}
	}
	if o.PrincipalObligationID != nil {
		id := int64(*o.PrincipalObligationID)
		resp.PrincipalObligationID = &id
	}
	if o.RejectedObligationID != nil {
		id := int64(*o.RejectedObligationID)
		resp.RejectedObligationID = &id
	}
	return resp
}

func toRoutingActionResponse(a *model.RoutingAction) *routingActionResponse {
	resp := &routingActionResponse{
		ObligationID:      int64(a.ObligationID),
		Level:             a.Level,
		Action:            string(a.Action),
		ApprovalFlag:      string(a.ApprovalFlag),
		OriginAreaID:      string(a.OriginAreaID),
		DestinationAreaID: string(a.DestinationAreaID),
		ResponsibleID:     string(a.ResponsibleID),
		FromStatus:        string(a.FromStatus),
		ToStatus:          string(a.ToStatus),
		Note:              a.Note,
		CreatedAt:         a.CreatedAt,
	}
	for _, id := range a.AttachmentIDs {
		resp.AttachmentIDs = append(resp.AttachmentIDs, string(id))
	}
	return resp
}

func toAnnotationResponse(a *model.Annotation) *annotationResponse {
	resp := &annotationResponse{
		ID:           string(a.ID),
		ObligationID: int64(a.ObligationID),
		AuthorID:     string(a.AuthorID),
		StatusAtTime: string(a.StatusAtTime),
		Text:         a.Text,
		CreatedAt:    a.CreatedAt,
	}
	for _, id := range a.MentionIDs {
		resp.MentionIDs = append(resp.MentionIDs, string(id))
	}
	if a.InReplyToAnnotationID != nil {
		id := string(*a.InReplyToAnnotationID)
		resp.InReplyToAnnotationID = &id
	}
	if a.InReplyToRoutingLevel != nil {
		lvl := *a.InReplyToRoutingLevel
		resp.InReplyToRoutingLevel = &lvl
	}
	for _, id := range a.AttachmentIDs {
		resp.AttachmentIDs = append(resp.AttachmentIDs, string(id))
	}
	return resp
}

func toAttachmentResponse(a *model.Attachment) *attachmentResponse {
	return &attachmentResponse{
		ID:           string(a.ID),
		ObligationID: int64(a.ObligationID),
		FileName:     a.FileName,
		ContentType:  a.ContentType,
		Kind:         string(a.Kind),
		UploaderID:   string(a.UploaderID),
		UploadedAt:   a.UploadedAt,
	}
}

// denialStatus maps a refusal to its HTTP status: authorization refusals
// are 403, contention 409, everything else a state conflict at 422.
func denialStatus(code types.ReasonCode) int {
	switch code {
	case types.ReasonRoleNotAllowed,
		types.ReasonNotAreaMember,
		types.ReasonNotAssignedSigner,
		types.ReasonAlreadySigned:
		return http.StatusForbidden
	case types.ReasonRevisionConflict,
		types.ReasonDuplicateRouting:
		return http.StatusConflict
	default:
		return http.StatusUnprocessableEntity
	}
}

func writeDenial(ctx context.Context, w http.ResponseWriter, d *model.Denial) {
	writeJSON(ctx, w, denialStatus(d.Code), denialResponse{
		Code:   string(d.Code),
		Reason: d.Reason,
	})
}
