package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gallandarakhneorg/labmanager-sub016/internal/duplicate"
	"github.com/gallandarakhneorg/labmanager-sub016/internal/lab/models"
	"github.com/gallandarakhneorg/labmanager-sub016/internal/membership"
	"github.com/gallandarakhneorg/labmanager-sub016/pkg/domain"
	dErrors "github.com/gallandarakhneorg/labmanager-sub016/pkg/domain-errors"
	"github.com/gallandarakhneorg/labmanager-sub016/pkg/platform/httputil"
	"github.com/gallandarakhneorg/labmanager-sub016/pkg/requestcontext"
)

// MembershipService defines the membership operations exposed over HTTP.
type MembershipService interface {
	Open(ctx context.Context, req membership.OpenRequest) (*membership.OpenResult, error)
	Update(ctx context.Context, id domain.MembershipID, req membership.UpdateRequest) (*models.Membership, error)
	Delete(ctx context.Context, id domain.MembershipID) error
	Get(ctx context.Context, id domain.MembershipID) (*models.Membership, error)
	ListByPerson(ctx context.Context, person domain.PersonID) ([]*models.Membership, error)
	ActiveAt(ctx context.Context, person domain.PersonID, day time.Time) ([]*models.Membership, error)
}

// DuplicateService computes duplicate clusters.
type DuplicateService interface {
	Clusters(ctx context.Context, kind domain.Kind) ([]duplicate.Cluster, error)
}

// MergeService folds duplicates into a target.
type MergeService interface {
	Merge(ctx context.Context, kind domain.Kind, sources []uuid.UUID, target uuid.UUID) error
}

// Handler wires lab endpoints to the membership, duplicate and merge services.
type Handler struct {
	memberships MembershipService
	duplicates  DuplicateService
	merges      MergeService
	logger      *slog.Logger
}

// New constructs a lab handler with its dependencies.
func New(memberships MembershipService, duplicates DuplicateService, merges MergeService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		memberships: memberships,
		duplicates:  duplicates,
		merges:      merges,
		logger:      logger,
	}
}

// Register mounts lab endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/memberships", h.HandleOpenMembership)
	r.Get("/memberships/{id}", h.HandleGetMembership)
	r.Patch("/memberships/{id}", h.HandleUpdateMembership)
	r.Delete("/memberships/{id}", h.HandleDeleteMembership)
	r.Get("/persons/{id}/memberships", h.HandleListPersonMemberships)
	r.Get("/duplicates/{kind}", h.HandleListDuplicates)
	r.Post("/merges/{kind}", h.HandleMerge)
}

// HandleOpenMembership handles POST /memberships.
func (h *Handler) HandleOpenMembership(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[OpenMembershipRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.memberships.Open(ctx, req.Parsed())
	if err != nil {
		h.fail(ctx, w, "open membership failed", err,
			"request_id", requestID,
			"person_id", req.PersonID,
			"organization_id", req.OrganizationID,
		)
		return
	}

	h.logger.InfoContext(ctx, "membership opened",
		"request_id", requestID,
		"membership_id", result.Membership.ID,
		"auto_closed", result.Closed != nil,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, FromOpenResult(result))
}

// HandleGetMembership handles GET /memberships/{id}.
func (h *Handler) HandleGetMembership(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseMembershipID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	m, err := h.memberships.Get(ctx, id)
	if err != nil {
		h.fail(ctx, w, "get membership failed", err,
			"request_id", requestcontext.RequestID(ctx),
			"membership_id", id,
		)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromMembership(m))
}

// HandleUpdateMembership handles PATCH /memberships/{id}.
func (h *Handler) HandleUpdateMembership(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	id, err := domain.ParseMembershipID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateMembershipRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	m, err := h.memberships.Update(ctx, id, req.Parsed())
	if err != nil {
		h.fail(ctx, w, "update membership failed", err,
			"request_id", requestID,
			"membership_id", id,
		)
		return
	}
	h.logger.InfoContext(ctx, "membership updated",
		"request_id", requestID,
		"membership_id", id,
		"interval", m.Interval().String(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromMembership(m))
}

// HandleDeleteMembership handles DELETE /memberships/{id}.
func (h *Handler) HandleDeleteMembership(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	id, err := domain.ParseMembershipID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.memberships.Delete(ctx, id); err != nil {
		h.fail(ctx, w, "delete membership failed", err,
			"request_id", requestID,
			"membership_id", id,
		)
		return
	}
	h.logger.InfoContext(ctx, "membership deleted",
		"request_id", requestID,
		"membership_id", id,
	)
	w.WriteHeader(http.StatusNoContent)
}

// HandleListPersonMemberships handles GET /persons/{id}/memberships. The
// optional active_at query parameter restricts the list to the memberships
// active on that day.
func (h *Handler) HandleListPersonMemberships(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	person, err := domain.ParsePersonID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var ms []*models.Membership
	if raw := strings.TrimSpace(r.URL.Query().Get("active_at")); raw != "" {
		day, perr := models.ParseDay(raw)
		if perr != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "active_at must be a date formatted as YYYY-MM-DD"))
			return
		}
		ms, err = h.memberships.ActiveAt(ctx, person, day)
	} else {
		ms, err = h.memberships.ListByPerson(ctx, person)
	}
	if err != nil {
		h.fail(ctx, w, "list memberships failed", err,
			"request_id", requestcontext.RequestID(ctx),
			"person_id", person,
		)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromMemberships(ms))
}

// HandleListDuplicates handles GET /duplicates/{kind}.
func (h *Handler) HandleListDuplicates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kind, err := domain.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	clusters, err := h.duplicates.Clusters(ctx, kind)
	if err != nil {
		h.fail(ctx, w, "duplicate detection failed", err,
			"request_id", requestcontext.RequestID(ctx),
			"kind", kind,
		)
		return
	}
	if clusters == nil {
		clusters = []duplicate.Cluster{}
	}
	httputil.WriteJSON(w, http.StatusOK, &ClusterListResponse{Kind: kind.String(), Clusters: clusters})
}

// HandleMerge handles POST /merges/{kind}.
func (h *Handler) HandleMerge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	kind, err := domain.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[MergeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.merges.Merge(ctx, kind, req.Sources(), req.Target()); err != nil {
		h.fail(ctx, w, "merge failed", err,
			"request_id", requestID,
			"kind", kind,
			"target_id", req.Target(),
		)
		return
	}

	sources := make([]string, len(req.Sources()))
	for i, id := range req.Sources() {
		sources[i] = id.String()
	}
	h.logger.InfoContext(ctx, "merge completed",
		"request_id", requestID,
		"kind", kind,
		"target_id", req.Target(),
		"sources", len(sources),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, &MergeResponse{
		Kind:    kind.String(),
		Target:  req.Target().String(),
		Sources: sources,
	})
}

// fail logs at error level for internal failures and warn level for
// rejected requests, then writes the error response.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error, attrs ...any) {
	attrs = append(attrs, "error", err)
	if httputil.StatusFor(dErrors.CodeOf(err)) >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg, attrs...)
	} else {
		h.logger.WarnContext(ctx, msg, attrs...)
	}
	httputil.WriteError(w, err)
}
