package remnawave_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aretw0/remnawizard/pkg/adapters/remnawave"
	"github.com/aretw0/remnawizard/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRequest() domain.CreateUserRequest {
	return domain.CreateUserRequest{
		Username:             "alice_01",
		ShortUUID:            "abcdefghijklmnop",
		ExpireAt:             time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC),
		HWIDDeviceLimit:      2,
		TrafficLimitBytes:    50 << 30,
		TrafficLimitStrategy: domain.StrategyMonth,
		ActiveInternalSquads: []string{},
	}
}

func TestClient_CreateUser(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/users", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "gate=open", r.Header.Get("Cookie"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		raw, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.NoError(t, json.Unmarshal(raw, &gotBody))

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"response":{
			"uuid":"0b7c3c1e-1111-2222-3333-444455556666",
			"shortUuid":"abcdefghijklmnop",
			"username":"alice_01",
			"expireAt":"2026-02-14T09:30:00.000Z",
			"subscriptionUrl":"https://sub.example.com/abcdefghijklmnop",
			"status":"ACTIVE"
		}}`)
	}))
	defer srv.Close()

	c := remnawave.NewClient(srv.URL+"/", "test-token", remnawave.WithCookie("gate=open"), remnawave.WithHTTPClient(srv.Client()))

	rec, err := c.CreateUser(context.Background(), sampleRequest())
	require.NoError(t, err)

	assert.Equal(t, "0b7c3c1e-1111-2222-3333-444455556666", rec.UUID)
	assert.Equal(t, "alice_01", rec.Username)
	assert.Equal(t, "https://sub.example.com/abcdefghijklmnop", rec.SubscriptionURL)
	assert.True(t, rec.ExpireAt.Equal(time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC)))

	assert.Equal(t, "alice_01", gotBody["username"])
	assert.Equal(t, "abcdefghijklmnop", gotBody["shortUuid"])
	assert.Equal(t, "MONTH", gotBody["trafficLimitStrategy"])
	assert.EqualValues(t, 2, gotBody["hwidDeviceLimit"])
	assert.EqualValues(t, 50<<30, gotBody["trafficLimitBytes"])
	assert.Equal(t, []any{}, gotBody["activeInternalSquads"])
	assert.NotContains(t, gotBody, "email")
	assert.NotContains(t, gotBody, "externalSquadUuid")
}

func TestClient_NoCookieByDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Cookie"))
		_, _ = io.WriteString(w, `{"response":{"uuid":"u","username":"alice_01"}}`)
	}))
	defer srv.Close()

	_, err := remnawave.NewClient(srv.URL, "t").CreateUser(context.Background(), sampleRequest())
	require.NoError(t, err)
}

func TestClient_APIErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode string
		wantMsg  string
	}{
		{"Structured", http.StatusBadRequest, `{"message":"User username already exists","errorCode":"A019","statusCode":400}`, "A019", "User username already exists"},
		{"No Code", http.StatusUnauthorized, `{"message":"Unauthorized"}`, "401", "Unauthorized"},
		{"Plain Body", http.StatusBadGateway, `upstream down`, "502", "upstream down"},
		{"Empty Body", http.StatusForbidden, ``, "403", "Forbidden"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := remnawave.NewClient(srv.URL, "t").CreateUser(context.Background(), sampleRequest())

			var apiErr *domain.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.wantCode, apiErr.Code)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
		})
	}
}

func TestClient_TransportErrors(t *testing.T) {
	t.Run("Malformed Success Body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `not json`)
		}))
		defer srv.Close()

		_, err := remnawave.NewClient(srv.URL, "t").CreateUser(context.Background(), sampleRequest())
		var tErr *domain.TransportError
		assert.ErrorAs(t, err, &tErr)
	})

	t.Run("Missing Envelope", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `{"uuid":"u"}`)
		}))
		defer srv.Close()

		_, err := remnawave.NewClient(srv.URL, "t").CreateUser(context.Background(), sampleRequest())
		var tErr *domain.TransportError
		assert.ErrorAs(t, err, &tErr)
	})

	for name, body := range map[string]string{
		"Empty Record":     `{"response":{}}`,
		"Missing UUID":     `{"response":{"username":"alice_01"}}`,
		"Missing Username": `{"response":{"uuid":"u"}}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusCreated)
				_, _ = io.WriteString(w, body)
			}))
			defer srv.Close()

			record, err := remnawave.NewClient(srv.URL, "t").CreateUser(context.Background(), sampleRequest())
			var tErr *domain.TransportError
			assert.ErrorAs(t, err, &tErr)
			assert.Nil(t, record)
		})
	}

	t.Run("Unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := remnawave.NewClient(url, "t").CreateUser(context.Background(), sampleRequest())
		var tErr *domain.TransportError
		assert.ErrorAs(t, err, &tErr)
	})

	t.Run("Cancelled Context", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `{"response":{}}`)
		}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := remnawave.NewClient(srv.URL, "t").CreateUser(ctx, sampleRequest())
		var tErr *domain.TransportError
		require.ErrorAs(t, err, &tErr)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
