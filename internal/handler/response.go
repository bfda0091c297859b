package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"teledrive-web/internal/authflow"
	"teledrive-web/internal/model"
	"teledrive-web/pkg/apierror"
)

func writeSuccess(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: true,
		Data:    data,
	})
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := &model.APIError{
		Code:    "INTERNAL_ERROR",
		Message: "Unexpected server error",
	}

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		status = apiErr.HTTPStatus
		body.Code = apiErr.Code
		body.Message = apiErr.Message
		body.Details = apiErr.Details
	} else if errors.Is(err, model.ErrUnauthenticated) {
		status = http.StatusUnauthorized
		body.Code = "UNAUTHENTICATED"
		body.Message = "Sign in to continue"
	} else if errors.Is(err, model.ErrNotFound) {
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "Item not found"
	} else if errors.Is(err, model.ErrInvalidTarget) {
		status = http.StatusBadRequest
		body.Code = "INVALID_TARGET"
		body.Message = "Cannot move an item into itself or its descendants"
	} else if errors.Is(err, model.ErrInvalidInput) {
		status = http.StatusBadRequest
		body.Code = "BAD_REQUEST"
		body.Message = "Invalid input"
		body.Details = err.Error()
	} else if errors.Is(err, model.ErrBackendUnavailable) {
		status = http.StatusBadGateway
		body.Code = "BACKEND_UNAVAILABLE"
		body.Message = "The drive backend is not reachable"
	} else if errors.Is(err, authflow.ErrBusy) {
		status = http.StatusConflict
		body.Code = "BUSY"
		body.Message = "A sign-in request is already in progress"
	} else {
		// Log unclassified errors so they are visible in container logs.
		slog.Error("unhandled error in writeError", "error", err.Error())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error:   body,
	})
}
