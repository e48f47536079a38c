package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/siadin-id/siadin/modules/agency/domain/aggregates/agency"
	"github.com/siadin-id/siadin/pkg/serrors"
)

func TestRespondServiceError_FieldValidation(t *testing.T) {
	rec := httptest.NewRecorder()
	respondServiceError(rec, serrors.ValidationErrors{
		"Name":         serrors.Validation("VALIDATION_required", "agency name is required"),
		"ProvinceCode": serrors.Validation("VALIDATION_len", "province code must be at most 2 characters"),
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var payload struct {
		Code   string            `json:"code"`
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, "VALIDATION_ERROR", payload.Code)
	require.Equal(t, "agency name is required", payload.Fields["Name"])
	require.Contains(t, payload.Fields, "ProvinceCode")
}

func TestRespondServiceError_CodedError(t *testing.T) {
	rec := httptest.NewRecorder()
	respondServiceError(rec, agency.ErrNotFound)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, agency.ErrNotFound.Code, payload["code"])
}
