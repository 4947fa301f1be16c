package handler

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/yndnr/jsonkv-go/internal/core/domain"
	"github.com/yndnr/jsonkv-go/internal/telemetry/logger"
	"github.com/yndnr/jsonkv-go/internal/telemetry/metric"
)

// keyFromRequest returns the unescaped {key} route variable.
func keyFromRequest(r *http.Request) (string, error) {
	raw := mux.Vars(r)["key"]
	key, err := url.PathUnescape(raw)
	if err != nil {
		return "", domain.ErrUnknownRoute.WithDetails("malformed key escape")
	}
	return key, nil
}

// Set handles POST /{key}.
func (h *Handler) Set(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	outcome := h.set(w, r)
	h.metrics.ObserveCommand(protocolName, domain.MethodSet.String(), outcome, time.Since(start))
}

func (h *Handler) set(w http.ResponseWriter, r *http.Request) string {
	key, err := keyFromRequest(r)
	if err != nil {
		WriteError(w, r, err)
		return metric.OutcomeClientError
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, r, domain.ErrBodyTooLarge.WithDetails("limit is "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes"))
		} else {
			WriteError(w, r, domain.ErrInvalidJSON.WithDetails("read body: "+err.Error()))
		}
		return metric.OutcomeClientError
	}

	value, err := domain.DecodeObject(body)
	if err != nil {
		WriteError(w, r, err)
		return metric.OutcomeClientError
	}
	cmd, err := domain.NewSetCommand(key, value)
	if err != nil {
		WriteError(w, r, err)
		return metric.OutcomeClientError
	}

	if _, err := h.exec.Execute(r.Context(), cmd); err != nil {
		return h.fail(w, r, err)
	}
	writeJSON(w, r, http.StatusOK, SetResponse{Key: key})
	return metric.OutcomeOK
}

// Get handles GET /{key}. A hit returns the stored object as the body.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	outcome := h.get(w, r)
	h.metrics.ObserveCommand(protocolName, domain.MethodGet.String(), outcome, time.Since(start))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) string {
	key, err := keyFromRequest(r)
	if err != nil {
		WriteError(w, r, err)
		return metric.OutcomeClientError
	}
	cmd, err := domain.NewGetCommand(key)
	if err != nil {
		WriteError(w, r, err)
		return metric.OutcomeClientError
	}

	res, err := h.exec.Execute(r.Context(), cmd)
	if err != nil {
		return h.fail(w, r, err)
	}
	if !res.Found {
		WriteError(w, r, domain.ErrKeyNotFound.WithDetails(key))
		return metric.OutcomeMiss
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Value.Bytes())
	return metric.OutcomeOK
}

// Delete handles DELETE /{key}. Deleting an absent key succeeds.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	outcome := h.delete(w, r)
	h.metrics.ObserveCommand(protocolName, domain.MethodDelete.String(), outcome, time.Since(start))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) string {
	key, err := keyFromRequest(r)
	if err != nil {
		WriteError(w, r, err)
		return metric.OutcomeClientError
	}
	cmd, err := domain.NewDeleteCommand(key)
	if err != nil {
		WriteError(w, r, err)
		return metric.OutcomeClientError
	}

	res, err := h.exec.Execute(r.Context(), cmd)
	if err != nil {
		return h.fail(w, r, err)
	}
	writeJSON(w, r, http.StatusOK, DeleteResponse{Key: key, Existed: res.Found})
	if !res.Found {
		return metric.OutcomeMiss
	}
	return metric.OutcomeOK
}

// fail reports an Execute error and returns its outcome.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) string {
	WriteError(w, r, err)
	if domain.IsClientError(err) {
		return metric.OutcomeClientError
	}
	logger.L(r.Context()).Error("command failed", "path", r.URL.Path, "error", err)
	return metric.OutcomeServerError
}
