package api

import (
	"net/http"

	"github.com/starford/collabeat/internal/beatservice"
	"github.com/starford/collabeat/internal/models"
)

// Publisher receives the outcome of every execute and mint call.
type Publisher interface {
	PublishCall(op string, contract models.Contract, res models.CallResult)
}

// Handler holds API route handlers.
type Handler struct {
	svc *beatservice.Service
	pub Publisher
}

// NewHandler creates a new Handler. pub may be nil.
func NewHandler(svc *beatservice.Service, pub Publisher) *Handler {
	return &Handler{svc: svc, pub: pub}
}

// Execute handles POST /api/execute.
//
//	@Summary		Resolve the metadata update for a transaction
//	@Tags			beats
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ExecuteRequest	true	"Contract, metadata history and transaction"
//	@Success		200		{object}	CallResult
//	@Failure		400		{object}	errResponse
//	@Failure		422		{object}	CallResult
//	@Security		BearerAuth
//	@Router			/execute [post]
func (h *Handler) Execute(w http.ResponseWriter, r *http.Request) {
	var req ExecuteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res := h.svc.Execute(r.Context(), req.Contract, req.Metadatas, req.Transaction)
	h.respond(w, "execute", req.Contract, res)
}

// Mint handles POST /api/mint.
//
//	@Summary		Resolve the initial metadata of a new beat
//	@Tags			beats
//	@Accept			json
//	@Produce		json
//	@Param			body	body		MintRequest	true	"Contract and mint parameters"
//	@Success		200		{object}	CallResult
//	@Failure		400		{object}	errResponse
//	@Failure		422		{object}	CallResult
//	@Security		BearerAuth
//	@Router			/mint [post]
func (h *Handler) Mint(w http.ResponseWriter, r *http.Request) {
	var req MintRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res := h.svc.Mint(r.Context(), req.Contract, beatservice.NewMintRequest(req))
	h.respond(w, "mint", req.Contract, res)
}

// Clone handles POST /api/clone.
//
//	@Summary		Acknowledge a contract clone
//	@Tags			beats
//	@Produce		json
//	@Success		200		{object}	CloneResponse
//	@Security		BearerAuth
//	@Router			/clone [post]
func (h *Handler) Clone(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, CloneResponse{Result: h.svc.Clone()})
}

func (h *Handler) respond(w http.ResponseWriter, op string, contract models.Contract, res models.CallResult) {
	if h.pub != nil {
		h.pub.PublishCall(op, contract, res)
	}
	if !res.Succeeded {
		writeJSON(w, http.StatusUnprocessableEntity, res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
