package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/formdeck/formd/internal/auditlog"
	"github.com/formdeck/formd/internal/util"
	pkgaudit "github.com/formdeck/formd/pkg/audit"
)

// AuditHandler exposes the change history written by the form handlers.
type AuditHandler struct {
	Repo *auditlog.Repo
}

type auditListInput struct {
	Action string `query:"action"`
	FormID int64  `query:"form_id"`
	Limit  int    `query:"limit"`
}

type auditListOutput struct {
	Body []auditlog.Record
}

type auditIDInput struct {
	ID int64 `path:"id"`
}

type auditDiffOutput struct {
	Body struct {
		ID      int64  `json:"id"`
		Actor   string `json:"actor"`
		Action  string `json:"action"`
		Diff    string `json:"diff"`
		Added   int    `json:"added"`
		Removed int    `json:"removed"`
	}
}

func RegisterAudit(api huma.API, h *AuditHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "listAuditLogs",
		Method:      http.MethodGet,
		Path:        "/v1/audit-logs",
		Summary:     "List audit log entries",
		Tags:        []string{"Audit"},
	}, h.list)
	huma.Register(api, huma.Operation{
		OperationID: "getAuditLogDiff",
		Method:      http.MethodGet,
		Path:        "/v1/audit-logs/{id}/diff",
		Summary:     "Unified diff for one audit entry",
		Tags:        []string{"Audit"},
		Errors:      []int{http.StatusNotFound},
	}, h.diff)
}

func (h *AuditHandler) list(ctx context.Context, in *auditListInput) (*auditListOutput, error) {
	recs, err := h.Repo.List(ctx, in.Action, in.FormID, util.SanitizeLimit(in.Limit))
	if err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []auditlog.Record{}
	}
	return &auditListOutput{Body: recs}, nil
}

func (h *AuditHandler) diff(ctx context.Context, in *auditIDInput) (*auditDiffOutput, error) {
	rec, err := h.Repo.FindByID(ctx, in.ID)
	if err != nil {
		if errors.Is(err, auditlog.ErrNotFound) {
			return nil, huma.Error404NotFound("audit log not found")
		}
		return nil, err
	}
	unified, added, removed := pkgaudit.UnifiedDiff([]byte(rec.BeforeJSON.String), []byte(rec.AfterJSON.String))
	out := &auditDiffOutput{}
	out.Body.ID = rec.ID
	out.Body.Actor = rec.Actor
	out.Body.Action = rec.Action
	out.Body.Diff = unified
	out.Body.Added = added
	out.Body.Removed = removed
	return out, nil
}
