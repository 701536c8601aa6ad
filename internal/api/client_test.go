package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_ListAllocations(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/allocations", r.URL.Path)
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]allocationDTO{{
			ID:          7,
			SubjectID:   42,
			ProjectID:   3,
			Kind:        "project",
			StartDate:   "2024-03-05",
			EndDate:     "2024-03-07",
			DaysPerWeek: 5,
		}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	allocations, err := c.ListAllocations(context.Background(), RangeQuery{
		Start:     time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		End:       time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		SubjectID: 42,
	})
	require.NoError(t, err)
	require.Len(t, allocations, 1)

	assert.Equal(t, int64(7), allocations[0].ID)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), allocations[0].StartDate)
	assert.Contains(t, gotQuery, "start_date=2024-03-01")
	assert.Contains(t, gotQuery, "end_date=2024-03-31")
	assert.Contains(t, gotQuery, "subject_id=42")
	assert.NotContains(t, gotQuery, "project_id")
}

func TestClient_CreateAllocation_Warnings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		var params AllocationParams
		require.NoError(t, json.NewDecoder(r.Body).Decode(&params))
		assert.Equal(t, "project", params.Kind)
		assert.Equal(t, "2024-03-05", params.StartDate)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(allocationResponse{
			allocationDTO: allocationDTO{
				ID: 11, SubjectID: params.SubjectID, ProjectID: params.ProjectID,
				Kind: params.Kind, StartDate: params.StartDate, EndDate: params.EndDate,
				DaysPerWeek: params.DaysPerWeek,
			},
			Warnings: []string{"subject has approved leave overlapping this allocation"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	created, warnings, err := c.CreateAllocation(context.Background(), AllocationParams{
		SubjectID: 42, ProjectID: 3, Kind: "project",
		StartDate: "2024-03-05", EndDate: "2024-03-08", DaysPerWeek: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), created.ID)
	// Warnings accompany a successful write and never fail it.
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "overlapping")
}

func TestClient_ValidationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(errorPayload{
			Message: "validation failed",
			Errors: map[string][]string{
				"project_id": {"required when kind is project"},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, _, err := c.CreateAllocation(context.Background(), AllocationParams{
		SubjectID: 42, Kind: "project",
		StartDate: "2024-03-05", EndDate: "2024-03-08", DaysPerWeek: 5,
	})

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "validation failed", vErr.Message)
	assert.Equal(t, []string{"required when kind is project"}, vErr.FieldMessages("project_id"))
}

func TestClient_AuthorizationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(errorPayload{Message: "guests cannot modify the plan"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	err := c.DeleteAllocation(context.Background(), 7)

	var aErr *AuthorizationError
	require.ErrorAs(t, err, &aErr)
	assert.Equal(t, "guests cannot modify the plan", aErr.Message)
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse all connections

	c := NewClient(srv.URL)
	_, err := c.ListLeave(context.Background(), RangeQuery{
		Start: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
	})

	var nErr *NetworkError
	require.ErrorAs(t, err, &nErr)
}

func TestClient_HeaderInjection(t *testing.T) {
	var gotCSRF, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCSRF = r.Header.Get(CSRFHeader)
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(markerDTO{ID: 1, Date: "2024-03-05", Title: "release"})
	}))
	defer srv.Close()

	token := "tok-1"
	c := NewClient(srv.URL,
		WithHeaderInjector(CSRFToken(func() string { return token })),
		WithHeaderInjector(BearerToken("secret")),
	)

	_, err := c.CreateMarker(context.Background(), MarkerParams{Date: "2024-03-05", Title: "release"})
	require.NoError(t, err)
	assert.Equal(t, "tok-1", gotCSRF)
	assert.Equal(t, "Bearer secret", gotAuth)

	// The injector reads its source per request, so a rotated token is
	// picked up without rebuilding the client.
	token = "tok-2"
	_, err = c.CreateMarker(context.Background(), MarkerParams{Date: "2024-03-06", Title: "freeze"})
	require.NoError(t, err)
	assert.Equal(t, "tok-2", gotCSRF)
}

func TestClient_FetchToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/token", r.URL.Path)
		json.NewEncoder(w).Encode(tokenResponse{Token: "csrf-abc"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	token, err := c.FetchToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "csrf-abc", token)
}
