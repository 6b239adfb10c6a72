package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ashita-ai/knapsack/internal/ctxutil"
	"github.com/ashita-ai/knapsack/internal/model"
	"github.com/ashita-ai/knapsack/internal/storage"
)

const (
	saveEndpoint = "POST:/api/knapsack/save"

	maxIdempotencyKeyLen = 255
)

type idempotencyHandle struct {
	ownerID  uuid.UUID
	endpoint string
	key      string
}

func idempotencyKey(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("Idempotency-Key"))
}

func requestHash(payload any) (string, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// beginIdempotentWrite reserves the request's Idempotency-Key, or replays the
// stored response when the key already completed. Returns (nil, true) when no
// key is present and the caller should proceed normally. When it returns
// false the response has been written.
func (h *Handlers) beginIdempotentWrite(
	w http.ResponseWriter,
	r *http.Request,
	ownerID uuid.UUID,
	endpoint string,
	payload any,
) (*idempotencyHandle, bool) {
	key := idempotencyKey(r)
	if key == "" {
		return nil, true
	}
	if len(key) > maxIdempotencyKeyLen {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput,
			fmt.Sprintf("Idempotency-Key must be at most %d characters", maxIdempotencyKeyLen))
		return nil, false
	}

	hash, err := requestHash(payload)
	if err != nil {
		h.writeInternalError(w, r, "failed to hash idempotency payload", err)
		return nil, false
	}

	lookup, err := h.store.BeginIdempotency(r.Context(), ownerID, endpoint, key, hash)
	switch {
	case err == nil:
		if lookup.Completed {
			var replay any
			if len(lookup.ResponseData) > 0 {
				if uErr := json.Unmarshal(lookup.ResponseData, &replay); uErr != nil {
					h.writeInternalError(w, r, "failed to unmarshal idempotent replay payload", uErr)
					return nil, false
				}
			}
			status := lookup.StatusCode
			if status == 0 {
				status = http.StatusOK
			}
			writeJSON(w, r, status, replay)
			return nil, false
		}
		return &idempotencyHandle{ownerID: ownerID, endpoint: endpoint, key: key}, true
	case errors.Is(err, storage.ErrIdempotencyPayloadMismatch):
		writeError(w, r, http.StatusConflict, model.ErrCodeConflict, "idempotency key reused with different payload")
		return nil, false
	case errors.Is(err, storage.ErrIdempotencyInProgress):
		writeError(w, r, http.StatusConflict, model.ErrCodeConflict, "request with this idempotency key is already in progress")
		return nil, false
	default:
		h.writeInternalError(w, r, "idempotency lookup failed", err)
		return nil, false
	}
}

func (h *Handlers) completeIdempotentWrite(idem *idempotencyHandle, statusCode int, data any) error {
	if idem == nil {
		return nil
	}

	// Detached from the request: the mutation already committed, and a
	// cancelled client must not leave the key stuck in progress.
	writeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		err := h.store.CompleteIdempotency(writeCtx, idem.ownerID, idem.endpoint, idem.key, statusCode, data)
		if err == nil {
			return nil
		}
		lastErr = err
		h.logger.Warn("idempotency finalize attempt failed",
			"attempt", attempt,
			"error", err,
			"endpoint", idem.endpoint,
		)

		select {
		case <-time.After(time.Duration(attempt) * 50 * time.Millisecond):
		case <-writeCtx.Done():
			return fmt.Errorf("idempotency finalize context expired: %w", lastErr)
		}
	}
	return fmt.Errorf("failed to complete idempotency record after retries: %w", lastErr)
}

// completeIdempotentWriteBestEffort finalizes a key without failing the
// already committed response.
func (h *Handlers) completeIdempotentWriteBestEffort(r *http.Request, idem *idempotencyHandle, statusCode int, data any) {
	if err := h.completeIdempotentWrite(idem, statusCode, data); err != nil {
		h.logger.Error("failed to finalize idempotency record after committed save",
			"error", err,
			"owner_id", idem.ownerID,
			"request_id", ctxutil.RequestIDFromContext(r.Context()),
		)
	}
}

func (h *Handlers) clearIdempotentWrite(r *http.Request, idem *idempotencyHandle) {
	if idem == nil {
		return
	}
	if err := h.store.ClearInProgressIdempotency(r.Context(), idem.ownerID, idem.endpoint, idem.key); err != nil {
		h.logger.Error("failed to clear idempotency record",
			"error", err,
			"endpoint", idem.endpoint,
			"owner_id", idem.ownerID,
		)
	}
}
