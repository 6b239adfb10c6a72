package server

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ashita-ai/knapsack/internal/ctxutil"
	"github.com/ashita-ai/knapsack/internal/model"
)

// HandleSolve handles POST /api/knapsack/solve.
func (h *Handlers) HandleSolve(w http.ResponseWriter, r *http.Request) {
	var req model.SolveRequest
	if err := decodeJSON(w, r, &req, h.maxRequestBodyBytes); err != nil {
		handleDecodeError(w, r, err)
		return
	}

	sol, err := h.problemSvc.Solve(r.Context(), req.Problem())
	if err != nil {
		h.writeServiceError(w, r, "solve", err)
		return
	}
	writeJSON(w, r, http.StatusOK, sol)
}

// HandleSave handles POST /api/knapsack/save. A request carrying an
// Idempotency-Key that already completed replays the stored response instead
// of saving again.
func (h *Handlers) HandleSave(w http.ResponseWriter, r *http.Request) {
	var req model.SolveRequest
	if err := decodeJSON(w, r, &req, h.maxRequestBodyBytes); err != nil {
		handleDecodeError(w, r, err)
		return
	}

	ownerID := ctxutil.UserIDFromContext(r.Context())
	idem, proceed := h.beginIdempotentWrite(w, r, ownerID, saveEndpoint, req)
	if !proceed {
		return
	}

	rec, err := h.problemSvc.Save(r.Context(), ownerID, req.Problem())
	if err != nil {
		h.clearIdempotentWrite(r, idem)
		h.writeServiceError(w, r, "save problem", err)
		return
	}
	resp := model.SaveResponse{ProblemID: rec.ID, Solution: rec.Solution}
	h.completeIdempotentWriteBestEffort(r, idem, http.StatusCreated, resp)
	writeJSON(w, r, http.StatusCreated, resp)
}

// HandleHistory handles GET /api/knapsack/history.
func (h *Handlers) HandleHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", model.DefaultHistoryLimit)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, err.Error())
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, err.Error())
		return
	}

	page, err := h.problemSvc.History(r.Context(), ctxutil.UserIDFromContext(r.Context()), limit, offset)
	if err != nil {
		h.writeServiceError(w, r, "list history", err)
		return
	}
	writeList(w, r, page.Records, page.Total, page.Limit, page.Offset, page.HasMore())
}

// HandleGetProblem handles GET /api/knapsack/history/{id}.
func (h *Handlers) HandleGetProblem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "invalid problem id")
		return
	}

	rec, err := h.problemSvc.Get(r.Context(), ctxutil.UserIDFromContext(r.Context()), id)
	if err != nil {
		h.writeServiceError(w, r, "get problem", err)
		return
	}
	writeJSON(w, r, http.StatusOK, rec)
}
