package catalog

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"fakie/cmd/identity/ids"
	"fakie/cmd/internal/auth/access"
	"fakie/cmd/internal/httpx"
)

// Kind names a catalog resource on the wire.
type Kind[T Record] struct {
	// Path is the collection route, e.g. "/api/spots".
	Path string
	// Noun is used in "<Noun> not found".
	Noun string

	CreatedMsg string
	UpdatedMsg string
	DeletedMsg string

	New func(id, owner string, at time.Time) T
}

// SpotKind describes /api/spots.
func SpotKind() Kind[Spot] {
	return Kind[Spot]{
		Path:       "/api/spots",
		Noun:       "Spot",
		CreatedMsg: "Spot created successfully",
		UpdatedMsg: "Spot updated successfully",
		DeletedMsg: "Spot deleted successfully",
		New:        NewSpot,
	}
}

// GearKind describes /api/gear.
func GearKind() Kind[Gear] {
	return Kind[Gear]{
		Path:       "/api/gear",
		Noun:       "Gear",
		CreatedMsg: "Gear review created successfully",
		UpdatedMsg: "Gear updated successfully",
		DeletedMsg: "Gear deleted successfully",
		New:        NewGear,
	}
}

// Response is the success body for catalog routes.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type handlerOptions struct {
	policy  access.Policy
	now     func() time.Time
	maxBody int64
}

// HandlerOption configures a catalog Handler.
type HandlerOption func(*handlerOptions)

// WithPolicy overrides the default owner/admin policy.
func WithPolicy(p access.Policy) HandlerOption {
	return func(o *handlerOptions) { o.policy = p }
}

// WithClock overrides the clock used for created_at and ids.
func WithClock(now func() time.Time) HandlerOption {
	return func(o *handlerOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// WithMaxBodyBytes caps request bodies.
func WithMaxBodyBytes(n int64) HandlerOption {
	return func(o *handlerOptions) {
		if n > 0 {
			o.maxBody = n
		}
	}
}

// Handler serves the CRUD routes of one catalog resource.
type Handler[T Record, I Input[T]] struct {
	log   *slog.Logger
	kind  Kind[T]
	store Store[T]
	gate  *access.Gate
	opts  handlerOptions
}

// NewHandler builds the handler for kind. gate guards every mutating route.
func NewHandler[T Record, I Input[T]](log *slog.Logger, kind Kind[T], store Store[T], gate *access.Gate, opts ...HandlerOption) (*Handler[T, I], error) {
	if store == nil {
		return nil, errors.New("catalog: nil store")
	}
	if gate == nil {
		return nil, errors.New("catalog: nil gate")
	}
	if kind.New == nil || kind.Path == "" {
		return nil, errors.New("catalog: incomplete kind")
	}
	if log == nil {
		log = slog.Default()
	}
	o := handlerOptions{
		policy:  access.DefaultPolicy(),
		now:     func() time.Time { return time.Now().UTC() },
		maxBody: httpx.DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return &Handler[T, I]{log: log, kind: kind, store: store, gate: gate, opts: o}, nil
}

// NewSpotHandler is NewHandler for spots.
func NewSpotHandler(log *slog.Logger, store Store[Spot], gate *access.Gate, opts ...HandlerOption) (*Handler[Spot, SpotInput], error) {
	return NewHandler[Spot, SpotInput](log, SpotKind(), store, gate, opts...)
}

// NewGearHandler is NewHandler for gear reviews.
func NewGearHandler(log *slog.Logger, store Store[Gear], gate *access.Gate, opts ...HandlerOption) (*Handler[Gear, GearInput], error) {
	return NewHandler[Gear, GearInput](log, GearKind(), store, gate, opts...)
}

// Register wires the resource routes onto mux.
func (h *Handler[T, I]) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	p := h.kind.Path
	mux.HandleFunc("GET "+p, h.handleList)
	mux.HandleFunc("GET "+p+"/{id}", h.handleGet)
	mux.Handle("POST "+p, h.gate.RequireFunc(h.handleCreate))
	mux.Handle("PUT "+p+"/{id}", h.gate.RequireFunc(h.handleUpdate))
	mux.Handle("DELETE "+p+"/{id}", h.gate.RequireFunc(h.handleDelete))
}

func (h *Handler[T, I]) handleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.List(r.Context())
	if err != nil {
		h.log.Error("catalog.list.fail", "resource", h.kind.Noun, "err", err)
		httpx.WriteInternal(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, Response{Success: true, Data: items})
}

func (h *Handler[T, I]) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	rec, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.storeError(w, "catalog.get.fail", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, Response{Success: true, Data: rec})
}

func (h *Handler[T, I]) handleCreate(w http.ResponseWriter, r *http.Request) {
	who, ok := access.IdentityFrom(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, httpx.CodeUnauthorized, "Unauthorized: No token provided")
		return
	}

	var in I
	if !h.decode(w, r, &in) {
		return
	}
	if fields := in.Validate(false); fields != nil {
		httpx.WriteValidation(w, fields)
		return
	}

	now := h.opts.now()
	id, err := ids.NewULID(now)
	if err != nil {
		h.log.Error("catalog.create.id.fail", "err", err)
		httpx.WriteInternal(w)
		return
	}
	rec := h.kind.New(id, who.AccountID, now)
	in.Apply(&rec)

	if err := h.store.Create(r.Context(), rec); err != nil {
		h.log.Error("catalog.create.fail", "resource", h.kind.Noun, "err", err)
		httpx.WriteInternal(w)
		return
	}

	h.log.Info("catalog.create", "resource", h.kind.Noun, "id", id, "account_id", who.AccountID)
	httpx.WriteJSON(w, http.StatusCreated, Response{Success: true, Message: h.kind.CreatedMsg, Data: rec})
}

func (h *Handler[T, I]) handleUpdate(w http.ResponseWriter, r *http.Request) {
	who, ok := access.IdentityFrom(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, httpx.CodeUnauthorized, "Unauthorized: No token provided")
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var in I
	if !h.decode(w, r, &in) {
		return
	}
	if fields := in.Validate(true); fields != nil {
		httpx.WriteValidation(w, fields)
		return
	}

	ctx := r.Context()
	rec, err := h.store.Get(ctx, id)
	if err != nil {
		h.storeError(w, "catalog.update.fail", err)
		return
	}
	if !h.opts.policy.CanMutate(who, rec.Owner(), access.ActionUpdate) {
		h.log.Warn("catalog.update.denied", "resource", h.kind.Noun, "id", id, "account_id", who.AccountID)
		httpx.WriteError(w, http.StatusForbidden, httpx.CodeForbidden, "Unauthorized")
		return
	}

	in.Apply(&rec)
	if err := h.store.Update(ctx, rec); err != nil {
		h.storeError(w, "catalog.update.fail", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, Response{Success: true, Message: h.kind.UpdatedMsg, Data: rec})
}

func (h *Handler[T, I]) handleDelete(w http.ResponseWriter, r *http.Request) {
	who, ok := access.IdentityFrom(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, httpx.CodeUnauthorized, "Unauthorized: No token provided")
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	// Deletes are role-gated, so ownership is never looked up.
	if !h.opts.policy.CanMutate(who, "", access.ActionDelete) {
		h.log.Warn("catalog.delete.denied", "resource", h.kind.Noun, "id", id, "account_id", who.AccountID)
		httpx.WriteError(w, http.StatusForbidden, httpx.CodeForbidden, "Unauthorized: Admin only")
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		h.storeError(w, "catalog.delete.fail", err)
		return
	}
	h.log.Info("catalog.delete", "resource", h.kind.Noun, "id", id, "account_id", who.AccountID)
	httpx.WriteJSON(w, http.StatusOK, Response{Success: true, Message: h.kind.DeletedMsg})
}

func (h *Handler[T, I]) pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(r.PathValue("id"))
	if !ids.ValidULID(id) {
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeInvalidRequest, "Invalid ID")
		return "", false
	}
	return id, true
}

func (h *Handler[T, I]) decode(w http.ResponseWriter, r *http.Request, dst *I) bool {
	if err := httpx.DecodeJSON(w, r, h.opts.maxBody, dst); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeInvalidJSON, "Invalid request body")
		return false
	}
	return true
}

func (h *Handler[T, I]) storeError(w http.ResponseWriter, event string, err error) {
	if IsNotFound(err) {
		httpx.WriteError(w, http.StatusNotFound, httpx.CodeNotFound, h.kind.Noun+" not found")
		return
	}
	h.log.Error(event, "resource", h.kind.Noun, "err", err)
	httpx.WriteInternal(w)
}
