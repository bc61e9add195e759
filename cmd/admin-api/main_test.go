package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/staffdesk/staffdesk/internal/models"
	"github.com/staffdesk/staffdesk/internal/services"
)

func TestWriteResultEncodesResponse(t *testing.T) {
	rec := httptest.NewRecorder()

	writeResult(rec, &models.AdminClaimResponse{Status: "success", UID: "uid-1"}, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var res models.AdminClaimResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.UID != "uid-1" || res.Status != "success" {
		t.Fatalf("unexpected response %+v", res)
	}
}

func TestWriteResultMapsErrorTaxonomy(t *testing.T) {
	cases := map[error]int{
		services.ErrPermissionDenied: http.StatusForbidden,
		services.ErrInvalidArgument:  http.StatusBadRequest,
		services.ErrNotFound:         http.StatusNotFound,
		services.ErrAlreadyExists:    http.StatusConflict,
	}
	for err, want := range cases {
		rec := httptest.NewRecorder()
		writeResult(rec, nil, err)
		if rec.Code != want {
			t.Fatalf("%v: status = %d, want %d", err, rec.Code, want)
		}
	}
}
