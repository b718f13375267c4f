package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"shareit/internal/config"
	"shareit/internal/events"
	"shareit/internal/models"
	"shareit/internal/repository"
	"shareit/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	ts  *httptest.Server
	bus *events.EventBus
}

func newTestEnv(t *testing.T, cfg config.APIConfig, window *repository.MemoryRateLimiter, ready ReadinessCheck) *testEnv {
	t.Helper()
	logger := zerolog.Nop()
	store := repository.NewMemoryStore()
	bus := events.NewEventBus()

	services := Services{
		Bookings: service.NewBookingService(store, bus, &logger),
		Items:    service.NewItemService(store, bus, &logger),
		Users:    service.NewUserService(store, &logger),
		Requests: service.NewRequestService(store, &logger),
	}

	var srv *HTTPServer
	if window != nil {
		srv = NewHTTPServer(cfg, services, window, ready, &logger)
	} else {
		srv = NewHTTPServer(cfg, services, nil, ready, &logger)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &testEnv{ts: ts, bus: bus}
}

func (e *testEnv) do(t *testing.T, method, path string, actor int64, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, e.ts.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if actor != 0 {
		req.Header.Set(models.UserIDHeader, fmt.Sprint(actor))
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func (e *testEnv) createUser(t *testing.T, name, email string) UserDto {
	t.Helper()
	code, data := e.do(t, http.MethodPost, "/users", 0, map[string]string{"name": name, "email": email})
	require.Equal(t, http.StatusOK, code, string(data))
	return decode[UserDto](t, data)
}

func (e *testEnv) createItem(t *testing.T, owner int64, name string, available bool) ItemDto {
	t.Helper()
	code, data := e.do(t, http.MethodPost, "/items", owner, map[string]any{
		"name": name, "description": name + " for rent", "available": available,
	})
	require.Equal(t, http.StatusOK, code, string(data))
	return decode[ItemDto](t, data)
}

func wire(t time.Time) string {
	return t.UTC().Format(models.DateTimeLayout)
}

func TestBookingLifecycle(t *testing.T) {
	env := newTestEnv(t, config.APIConfig{}, nil, nil)

	owner := env.createUser(t, "Owner", "owner@example.com")
	booker := env.createUser(t, "Booker", "booker@example.com")
	stranger := env.createUser(t, "Stranger", "stranger@example.com")
	item := env.createItem(t, owner.ID, "Drill", true)

	start := time.Now().Add(24 * time.Hour).Truncate(time.Second)
	end := start.Add(24 * time.Hour)

	code, data := env.do(t, http.MethodPost, "/bookings", booker.ID, map[string]any{
		"itemId": item.ID, "start": wire(start), "end": wire(end),
	})
	require.Equal(t, http.StatusOK, code, string(data))
	booking := decode[BookingDto](t, data)
	assert.Equal(t, models.StatusWaiting, booking.Status)
	assert.Equal(t, item.ID, booking.Item.ID)
	assert.Equal(t, booker.ID, booking.Booker.ID)
	assert.True(t, booking.Start.Equal(start))

	path := fmt.Sprintf("/bookings/%d", booking.ID)

	t.Run("visible to booker and owner only", func(t *testing.T) {
		code, _ := env.do(t, http.MethodGet, path, booker.ID, nil)
		assert.Equal(t, http.StatusOK, code)
		code, _ = env.do(t, http.MethodGet, path, owner.ID, nil)
		assert.Equal(t, http.StatusOK, code)
		code, _ = env.do(t, http.MethodGet, path, stranger.ID, nil)
		assert.Equal(t, http.StatusForbidden, code)
	})

	t.Run("only owner reviews", func(t *testing.T) {
		code, _ := env.do(t, http.MethodPatch, path+"?approved=true", booker.ID, nil)
		assert.Equal(t, http.StatusForbidden, code)

		code, _ = env.do(t, http.MethodPatch, path+"?approved=maybe", owner.ID, nil)
		assert.Equal(t, http.StatusBadRequest, code)

		code, data := env.do(t, http.MethodPatch, path+"?approved=true", owner.ID, nil)
		require.Equal(t, http.StatusOK, code, string(data))
		assert.Equal(t, models.StatusApproved, decode[BookingDto](t, data).Status)
	})

	t.Run("lists by state", func(t *testing.T) {
		code, data := env.do(t, http.MethodGet, "/bookings?state=future", booker.ID, nil)
		require.Equal(t, http.StatusOK, code)
		assert.Len(t, decode[[]BookingDto](t, data), 1)

		code, data = env.do(t, http.MethodGet, "/bookings/owner?state=PAST", owner.ID, nil)
		require.Equal(t, http.StatusOK, code)
		assert.Empty(t, decode[[]BookingDto](t, data))

		code, data = env.do(t, http.MethodGet, "/bookings/owner", owner.ID, nil)
		require.Equal(t, http.StatusOK, code)
		assert.Len(t, decode[[]BookingDto](t, data), 1)

		code, data = env.do(t, http.MethodGet, "/bookings?state=UNSUPPORTED_STATUS", booker.ID, nil)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Contains(t, decode[errorResponse](t, data).Description, "UNSUPPORTED_STATUS")

		code, _ = env.do(t, http.MethodGet, "/bookings/owner", 999, nil)
		assert.Equal(t, http.StatusNotFound, code)
	})

	t.Run("missing actor header", func(t *testing.T) {
		code, data := env.do(t, http.MethodGet, "/bookings", 0, nil)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Contains(t, decode[errorResponse](t, data).Description, models.UserIDHeader)
	})
}

func TestCreateBooking_Rejections(t *testing.T) {
	env := newTestEnv(t, config.APIConfig{}, nil, nil)

	owner := env.createUser(t, "Owner", "owner@example.com")
	booker := env.createUser(t, "Booker", "booker@example.com")
	unavailable := env.createItem(t, owner.ID, "Tent", false)
	item := env.createItem(t, owner.ID, "Drill", true)

	start := time.Now().Add(time.Hour)

	tests := []struct {
		name  string
		actor int64
		body  map[string]any
		want  int
	}{
		{name: "unavailable item", actor: booker.ID, body: map[string]any{"itemId": unavailable.ID, "start": wire(start), "end": wire(start.Add(time.Hour))}, want: http.StatusBadRequest},
		{name: "unknown item", actor: booker.ID, body: map[string]any{"itemId": 999, "start": wire(start), "end": wire(start.Add(time.Hour))}, want: http.StatusNotFound},
		{name: "unknown booker", actor: 999, body: map[string]any{"itemId": item.ID, "start": wire(start), "end": wire(start.Add(time.Hour))}, want: http.StatusNotFound},
		{name: "end before start", actor: booker.ID, body: map[string]any{"itemId": item.ID, "start": wire(start), "end": wire(start.Add(-time.Hour))}, want: http.StatusBadRequest},
		{name: "missing dates", actor: booker.ID, body: map[string]any{"itemId": item.ID}, want: http.StatusBadRequest},
		{name: "bad date", actor: booker.ID, body: map[string]any{"itemId": item.ID, "start": "tomorrow", "end": wire(start)}, want: http.StatusBadRequest},
		{name: "rfc3339 accepted", actor: booker.ID, body: map[string]any{"itemId": item.ID, "start": start.Format(time.RFC3339), "end": start.Add(time.Hour).Format(time.RFC3339)}, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, data := env.do(t, http.MethodPost, "/bookings", tt.actor, tt.body)
			assert.Equal(t, tt.want, code, string(data))
		})
	}
}

func TestItemViewsAndComments(t *testing.T) {
	env := newTestEnv(t, config.APIConfig{}, nil, nil)

	owner := env.createUser(t, "Owner", "owner@example.com")
	booker := env.createUser(t, "Booker", "booker@example.com")
	item := env.createItem(t, owner.ID, "Drill", true)
	commentPath := fmt.Sprintf("/items/%d/comment", item.ID)

	code, _ := env.do(t, http.MethodPost, commentPath, booker.ID, map[string]string{"text": "Great"})
	assert.Equal(t, http.StatusForbidden, code)

	start := time.Date(2024, 9, 20, 10, 0, 0, 0, time.UTC)
	end := time.Date(2024, 9, 21, 10, 0, 0, 0, time.UTC)
	code, data := env.do(t, http.MethodPost, "/bookings", booker.ID, map[string]any{
		"itemId": item.ID, "start": wire(start), "end": wire(end),
	})
	require.Equal(t, http.StatusOK, code, string(data))

	received := make(chan string, 1)
	env.bus.Subscribe(events.EventCommentCreated, func(e *events.Event) error {
		received <- e.Type
		return nil
	})

	code, data = env.do(t, http.MethodPost, commentPath, booker.ID, map[string]string{"text": "Great drill"})
	require.Equal(t, http.StatusOK, code, string(data))
	comment := decode[CommentDto](t, data)
	assert.Equal(t, "Booker", comment.AuthorName)
	assert.Equal(t, "Great drill", comment.Text)
	assert.Equal(t, events.EventCommentCreated, <-received)

	itemPath := fmt.Sprintf("/items/%d", item.ID)

	t.Run("owner sees booking boundaries", func(t *testing.T) {
		code, data := env.do(t, http.MethodGet, itemPath, owner.ID, nil)
		require.Equal(t, http.StatusOK, code)
		view := decode[ItemWithCommentsDto](t, data)
		require.NotNil(t, view.LastBooking)
		require.NotNil(t, view.NextBooking)
		assert.True(t, view.LastBooking.Equal(start))
		assert.True(t, view.NextBooking.Equal(end))
		require.Len(t, view.Comments, 1)
		assert.Equal(t, "Great drill", view.Comments[0].Text)
	})

	t.Run("others do not", func(t *testing.T) {
		code, data := env.do(t, http.MethodGet, itemPath, booker.ID, nil)
		require.Equal(t, http.StatusOK, code)
		assert.Contains(t, string(data), `"lastBooking":null`)
		view := decode[ItemWithCommentsDto](t, data)
		assert.Nil(t, view.LastBooking)
		assert.Len(t, view.Comments, 1)
	})

	t.Run("owner list", func(t *testing.T) {
		code, data := env.do(t, http.MethodGet, "/items", owner.ID, nil)
		require.Equal(t, http.StatusOK, code)
		views := decode[[]ItemWithCommentsDto](t, data)
		require.Len(t, views, 1)
		assert.NotNil(t, views[0].LastBooking)
	})

	t.Run("blank comment", func(t *testing.T) {
		code, _ := env.do(t, http.MethodPost, commentPath, booker.ID, map[string]string{"text": "  "})
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("unknown item", func(t *testing.T) {
		code, _ := env.do(t, http.MethodGet, "/items/999", owner.ID, nil)
		assert.Equal(t, http.StatusNotFound, code)
	})
}

func TestItemCRUD(t *testing.T) {
	env := newTestEnv(t, config.APIConfig{}, nil, nil)

	owner := env.createUser(t, "Owner", "owner@example.com")
	other := env.createUser(t, "Other", "other@example.com")
	item := env.createItem(t, owner.ID, "Drill", true)
	path := fmt.Sprintf("/items/%d", item.ID)

	code, _ := env.do(t, http.MethodPost, "/items", owner.ID, map[string]any{"name": "Saw", "description": "Hand saw"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = env.do(t, http.MethodPatch, path, other.ID, map[string]any{"name": "Mine"})
	assert.Equal(t, http.StatusForbidden, code)

	code, data := env.do(t, http.MethodPatch, path, owner.ID, map[string]any{"available": false})
	require.Equal(t, http.StatusOK, code)
	updated := decode[ItemDto](t, data)
	assert.False(t, updated.Available)
	assert.Equal(t, "Drill", updated.Name)

	code, data = env.do(t, http.MethodGet, "/items/search?text=dRiLl", 0, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, decode[[]ItemDto](t, data))

	env.do(t, http.MethodPatch, path, owner.ID, map[string]any{"available": true})
	code, data = env.do(t, http.MethodGet, "/items/search?text=dRiLl", 0, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]ItemDto](t, data), 1)

	code, data = env.do(t, http.MethodGet, "/items/search?text=", 0, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(data))

	code, _ = env.do(t, http.MethodDelete, path, owner.ID, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = env.do(t, http.MethodDelete, path, owner.ID, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestUserCRUD(t *testing.T) {
	env := newTestEnv(t, config.APIConfig{}, nil, nil)

	user := env.createUser(t, "Ann", "ann@example.com")

	code, data := env.do(t, http.MethodPost, "/users", 0, map[string]string{"name": "Ann2", "email": "ann@example.com"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "conflict", decode[errorResponse](t, data).Error)

	code, _ = env.do(t, http.MethodPost, "/users", 0, map[string]string{"name": "Bob", "email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = env.do(t, http.MethodPost, "/users", 0, "{")
	assert.Equal(t, http.StatusBadRequest, code)

	path := fmt.Sprintf("/users/%d", user.ID)
	code, data = env.do(t, http.MethodPatch, path, 0, map[string]string{"name": "Anna"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, UserDto{ID: user.ID, Name: "Anna", Email: "ann@example.com"}, decode[UserDto](t, data))

	code, data = env.do(t, http.MethodGet, "/users", 0, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]UserDto](t, data), 1)

	code, _ = env.do(t, http.MethodDelete, path, 0, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = env.do(t, http.MethodGet, path, 0, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestItemRequests(t *testing.T) {
	env := newTestEnv(t, config.APIConfig{}, nil, nil)

	requestor := env.createUser(t, "Req", "req@example.com")
	owner := env.createUser(t, "Owner", "owner@example.com")

	code, data := env.do(t, http.MethodPost, "/requests", requestor.ID, map[string]string{"description": "Need a ladder"})
	require.Equal(t, http.StatusOK, code, string(data))
	request := decode[ItemRequestDto](t, data)
	assert.Equal(t, requestor.ID, request.RequestorID)
	assert.False(t, request.Created.IsZero())

	code, _ = env.do(t, http.MethodPost, "/requests", requestor.ID, map[string]string{"description": ""})
	assert.Equal(t, http.StatusBadRequest, code)

	code, data = env.do(t, http.MethodPost, "/items", owner.ID, map[string]any{
		"name": "Ladder", "description": "Three meters", "available": true, "requestId": request.ID,
	})
	require.Equal(t, http.StatusOK, code, string(data))
	item := decode[ItemDto](t, data)
	require.NotNil(t, item.RequestID)
	assert.Equal(t, request.ID, *item.RequestID)

	code, data = env.do(t, http.MethodGet, "/requests", requestor.ID, nil)
	require.Equal(t, http.StatusOK, code)
	own := decode[[]ItemRequestDto](t, data)
	require.Len(t, own, 1)
	require.Len(t, own[0].Items, 1)
	assert.Equal(t, "Ladder", own[0].Items[0].Name)

	code, data = env.do(t, http.MethodGet, "/requests/all", 0, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]ItemRequestDto](t, data), 1)

	code, data = env.do(t, http.MethodGet, fmt.Sprintf("/requests/%d", request.ID), 0, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[ItemRequestDto](t, data).Items, 1)

	code, _ = env.do(t, http.MethodGet, "/requests/999", 0, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestProbesAndRouting(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	env := newTestEnv(t, config.APIConfig{}, nil, func(context.Context) error {
		if healthy.Load() {
			return nil
		}
		return errors.New("database unreachable")
	})

	code, _ := env.do(t, http.MethodGet, "/healthz", 0, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = env.do(t, http.MethodGet, "/readyz", 0, nil)
	assert.Equal(t, http.StatusOK, code)

	healthy.Store(false)
	code, data := env.do(t, http.MethodGet, "/readyz", 0, nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Contains(t, string(data), "database unreachable")

	code, _ = env.do(t, http.MethodGet, "/nowhere", 0, nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = env.do(t, http.MethodPut, "/users", 0, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, code)
}

func TestRequestIDHeader(t *testing.T) {
	env := newTestEnv(t, config.APIConfig{}, nil, nil)

	resp, err := http.Get(env.ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.NotEmpty(t, resp.Header.Get(requestIDHeader))

	req, err := http.NewRequest(http.MethodGet, env.ts.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set(requestIDHeader, "abc")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "abc", resp.Header.Get(requestIDHeader))
}

func TestRateLimiting(t *testing.T) {
	t.Run("token bucket per actor", func(t *testing.T) {
		env := newTestEnv(t, config.APIConfig{RateLimit: config.APIRateLimitConfig{RPS: 0.001, Burst: 1}}, nil, nil)

		code, _ := env.do(t, http.MethodGet, "/users", 1, nil)
		assert.Equal(t, http.StatusOK, code)
		code, _ = env.do(t, http.MethodGet, "/users", 1, nil)
		assert.Equal(t, http.StatusTooManyRequests, code)
		code, _ = env.do(t, http.MethodGet, "/users", 2, nil)
		assert.Equal(t, http.StatusOK, code)

		code, _ = env.do(t, http.MethodGet, "/healthz", 1, nil)
		assert.Equal(t, http.StatusOK, code)
	})

	t.Run("shared window", func(t *testing.T) {
		cfg := config.APIConfig{RateLimit: config.APIRateLimitConfig{WindowLimit: 2, WindowSeconds: 60}}
		env := newTestEnv(t, cfg, repository.NewMemoryRateLimiter(), nil)

		for i := 0; i < 2; i++ {
			code, _ := env.do(t, http.MethodGet, "/users", 1, nil)
			assert.Equal(t, http.StatusOK, code)
		}
		code, _ := env.do(t, http.MethodGet, "/users", 1, nil)
		assert.Equal(t, http.StatusTooManyRequests, code)
	})
}

func TestLocalDateTime(t *testing.T) {
	ts := NewLocalDateTime(time.Date(2024, 9, 20, 10, 30, 0, 0, time.FixedZone("MSK", 3*3600)))
	raw, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2024-09-20T07:30:00"`, string(raw))

	raw, err = json.Marshal(LocalDateTime{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(raw))

	var parsed LocalDateTime
	require.NoError(t, json.Unmarshal([]byte(`"2024-09-20T07:30:00"`), &parsed))
	assert.True(t, parsed.Equal(ts.Time))

	require.NoError(t, json.Unmarshal([]byte(`"2024-09-20T10:30:00+03:00"`), &parsed))
	assert.True(t, parsed.Equal(ts.Time))
	assert.Equal(t, time.UTC, parsed.Location())

	assert.Error(t, json.Unmarshal([]byte(`"20.09.2024"`), &parsed))
}

func TestStatusFor(t *testing.T) {
	code, _ := statusFor(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, code)
}

func TestActorHeaderBoundary(t *testing.T) {
	env := newTestEnv(t, config.APIConfig{}, nil, nil)

	owner := env.createUser(t, "Owner", "owner@example.com")
	booker := env.createUser(t, "Booker", "booker@example.com")
	item := env.createItem(t, owner.ID, "Drill", true)

	start := time.Now().Add(time.Hour)
	code, data := env.do(t, http.MethodPost, "/bookings", booker.ID, map[string]any{
		"itemId": item.ID, "start": wire(start), "end": wire(start.Add(time.Hour)),
	})
	require.Equal(t, http.StatusOK, code, string(data))
	booking := decode[BookingDto](t, data)

	bookingPath := fmt.Sprintf("/bookings/%d", booking.ID)
	routes := []struct {
		method string
		path   string
	}{
		{method: http.MethodGet, path: "/bookings?state=ALL"},
		{method: http.MethodGet, path: "/bookings/owner?state=ALL"},
		{method: http.MethodGet, path: bookingPath},
		{method: http.MethodPatch, path: bookingPath + "?approved=true"},
	}

	for _, header := range []string{"0", "-1", "-42", "abc"} {
		for _, route := range routes {
			t.Run(header+" "+route.method+" "+route.path, func(t *testing.T) {
				req, err := http.NewRequest(route.method, env.ts.URL+route.path, nil)
				require.NoError(t, err)
				req.Header.Set(models.UserIDHeader, header)

				resp, err := http.DefaultClient.Do(req)
				require.NoError(t, err)
				defer resp.Body.Close()

				raw, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(raw))
				assert.NotContains(t, string(raw), `"booker"`)
			})
		}
	}

	code, data = env.do(t, http.MethodGet, bookingPath, booker.ID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, models.StatusWaiting, decode[BookingDto](t, data).Status)
}
