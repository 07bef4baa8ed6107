package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-places-api/internal/application"
	"github.com/oksasatya/go-places-api/internal/domain/entity"
	"github.com/oksasatya/go-places-api/internal/domain/repository"
	"github.com/oksasatya/go-places-api/internal/infrastructure/memory"
	"github.com/oksasatya/go-places-api/internal/interface/middleware"
	"github.com/oksasatya/go-places-api/pkg/apperror"
	"github.com/oksasatya/go-places-api/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Init()
}

type stubGeocoder struct {
	calls atomic.Int32
}

func (g *stubGeocoder) Resolve(_ context.Context, address string) (entity.Location, error) {
	g.calls.Add(1)
	return entity.Location{Lat: 1.5, Lng: 2.5}, nil
}

// writeCounter counts every write that reaches the place repository.
type writeCounter struct {
	repository.PlaceRepository
	writes atomic.Int32
}

func (w *writeCounter) Create(ctx context.Context, p *entity.Place) error {
	w.writes.Add(1)
	return w.PlaceRepository.Create(ctx, p)
}

func (w *writeCounter) Update(ctx context.Context, p *entity.Place) error {
	w.writes.Add(1)
	return w.PlaceRepository.Update(ctx, p)
}

func (w *writeCounter) Delete(ctx context.Context, id string) error {
	w.writes.Add(1)
	return w.PlaceRepository.Delete(ctx, id)
}

type testAPI struct {
	engine   *gin.Engine
	store    repository.Store
	places   *writeCounter
	geocoder *stubGeocoder
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	store := memory.NewStore().Bundle()
	counter := &writeCounter{PlaceRepository: store.Places}
	store.Places = counter
	geo := &stubGeocoder{}

	places := NewPlaceHandler(application.NewPlaceService(store, geo, nil, nil, nil))
	users := NewUserHandler(application.NewUserService(store.Users, nil))

	r := gin.New()
	r.Use(middleware.ErrorHandler(nil), middleware.Recovery())
	r.NoRoute(middleware.NoRoute)
	api := r.Group("/api")
	api.GET("/places/search", places.Search)
	api.GET("/places/user/:uid", places.GetPlacesByUser)
	api.GET("/places/:pid", places.GetPlace)
	api.POST("/places", places.CreatePlace)
	api.PATCH("/places/:pid", places.UpdatePlace)
	api.DELETE("/places/:pid", places.DeletePlace)
	api.GET("/users", users.ListUsers)
	api.POST("/users/signup", users.Signup)
	api.POST("/users/login", users.Login)

	return &testAPI{engine: r, store: store, places: counter, geocoder: geo}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return w.Code, out
}

func (a *testAPI) signup(t *testing.T, name, email string) string {
	t.Helper()
	code, body := a.do(t, http.MethodPost, "/api/users/signup", gin.H{"name": name, "email": email, "password": "secret1"})
	require.Equal(t, http.StatusCreated, code, body)
	return body["user"].(map[string]any)["id"].(string)
}

func (a *testAPI) createPlace(t *testing.T, creator string) string {
	t.Helper()
	code, body := a.do(t, http.MethodPost, "/api/places", gin.H{
		"title": "T", "description": "desc text", "address": "addr", "creator": creator,
	})
	require.Equal(t, http.StatusCreated, code, body)
	return body["place"].(map[string]any)["id"].(string)
}

func TestExampleFlow(t *testing.T) {
	a := newTestAPI(t)
	uid := a.signup(t, "A", "a@x.com")

	code, body := a.do(t, http.MethodPost, "/api/places", gin.H{
		"title": "T", "description": "desc text", "address": "addr", "creator": uid,
	})
	require.Equal(t, http.StatusCreated, code)
	place := body["place"].(map[string]any)
	pid := place["id"].(string)
	assert.Equal(t, uid, place["creator"])
	assert.Equal(t, map[string]any{"lat": 1.5, "lng": 2.5}, place["location"])

	code, body = a.do(t, http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusOK, code)
	users := body["users"].([]any)
	require.Len(t, users, 1)
	u := users[0].(map[string]any)
	assert.Equal(t, []any{pid}, u["places"])
	assert.NotContains(t, u, "password")

	code, body = a.do(t, http.MethodGet, "/api/places/"+pid, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "T", body["place"].(map[string]any)["title"])

	code, body = a.do(t, http.MethodGet, "/api/places/user/"+uid, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, body["places"], 1)

	code, body = a.do(t, http.MethodPatch, "/api/places/"+pid, gin.H{"title": "T2", "description": "new description"})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "T2", body["place"].(map[string]any)["title"])
	assert.Equal(t, "addr", body["place"].(map[string]any)["address"])

	code, body = a.do(t, http.MethodDelete, "/api/places/"+pid, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, MsgPlaceDeleted, body["message"])

	owner, err := a.store.Users.GetByID(context.Background(), uid)
	require.NoError(t, err)
	assert.Empty(t, owner.Places)

	code, body = a.do(t, http.MethodGet, "/api/places/user/"+uid, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, application.MsgUserPlacesNotFound, body["message"])
}

func TestCreatePlaceValidationNeverReachesStore(t *testing.T) {
	a := newTestAPI(t)
	uid := a.signup(t, "A", "a@x.com")

	code, body := a.do(t, http.MethodPost, "/api/places", gin.H{
		"title": "", "description": "abc", "address": "addr", "creator": uid,
	})

	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, apperror.MsgInvalidInputs, body["message"])
	details := body["details"].(map[string]any)
	assert.Contains(t, details, "title")
	assert.Contains(t, details, "description")
	assert.Zero(t, a.places.writes.Load())
	assert.Zero(t, a.geocoder.calls.Load())
}

func TestMalformedBodyIs422(t *testing.T) {
	a := newTestAPI(t)

	code, body := a.do(t, http.MethodPost, "/api/places", `{"title":`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, apperror.MsgInvalidInputs, body["message"])

	code, _ = a.do(t, http.MethodPatch, "/api/places/whatever", `{"title": 7, "description": "long enough"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
}

func TestCreatePlaceUnknownOwner(t *testing.T) {
	a := newTestAPI(t)

	code, body := a.do(t, http.MethodPost, "/api/places", gin.H{
		"title": "T", "description": "desc text", "address": "addr", "creator": "nobody",
	})

	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, application.MsgCreatorNotFound, body["message"])
	assert.Zero(t, a.places.writes.Load())
}

func TestDeleteUnknownPlaceTwice(t *testing.T) {
	a := newTestAPI(t)

	for i := 0; i < 2; i++ {
		code, body := a.do(t, http.MethodDelete, "/api/places/missing", nil)
		assert.Equal(t, http.StatusNotFound, code)
		assert.Equal(t, application.MsgPlaceNotFound, body["message"])
	}
}

func TestDeletePlaceTwice(t *testing.T) {
	a := newTestAPI(t)
	pid := a.createPlace(t, a.signup(t, "A", "a@x.com"))

	code, _ := a.do(t, http.MethodDelete, "/api/places/"+pid, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = a.do(t, http.MethodDelete, "/api/places/"+pid, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestUpdatePlace(t *testing.T) {
	a := newTestAPI(t)

	code, _ := a.do(t, http.MethodPatch, "/api/places/missing", gin.H{"title": "T", "description": "valid text"})
	assert.Equal(t, http.StatusNotFound, code)

	pid := a.createPlace(t, a.signup(t, "A", "a@x.com"))
	before := a.places.writes.Load()
	code, body := a.do(t, http.MethodPatch, "/api/places/"+pid, gin.H{"title": "T", "description": "shrt"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, body["details"], "description")
	assert.Equal(t, before, a.places.writes.Load())
}

func TestGetPlaceNotFound(t *testing.T) {
	a := newTestAPI(t)

	code, body := a.do(t, http.MethodGet, "/api/places/missing", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, application.MsgPlaceNotFound, body["message"])
}

func TestSearchWithoutIndex(t *testing.T) {
	a := newTestAPI(t)

	code, body := a.do(t, http.MethodGet, "/api/places/search?q=tower&size=5", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{}, body["places"])
}

func TestSignup(t *testing.T) {
	a := newTestAPI(t)

	code, body := a.do(t, http.MethodPost, "/api/users/signup", gin.H{"name": "", "email": "nope", "password": "123"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, map[string]any{
		"name":     "is required",
		"email":    "must be a valid email",
		"password": "must be at least 6 characters long",
	}, body["details"])

	a.signup(t, "A", "a@x.com")
	code, body = a.do(t, http.MethodPost, "/api/users/signup", gin.H{"name": "B", "email": "a@x.com", "password": "secret2"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, application.MsgUserExists, body["message"])
}

func TestSignupResponseHasNoPassword(t *testing.T) {
	a := newTestAPI(t)

	code, body := a.do(t, http.MethodPost, "/api/users/signup", gin.H{"name": "A", "email": "a@x.com", "password": "secret1"})
	require.Equal(t, http.StatusCreated, code)
	user := body["user"].(map[string]any)
	assert.NotContains(t, user, "password")
	assert.Equal(t, []any{}, user["places"])
}

func TestLogin(t *testing.T) {
	a := newTestAPI(t)
	a.signup(t, "A", "a@x.com")

	tests := []struct {
		name     string
		body     any
		wantCode int
		wantMsg  string
	}{
		{"ok", gin.H{"email": "a@x.com", "password": "secret1"}, http.StatusOK, MsgLoggedIn},
		{"wrong password", gin.H{"email": "a@x.com", "password": "wrong"}, http.StatusUnauthorized, "Invalid inputs."},
		{"unknown email", gin.H{"email": "b@x.com", "password": "secret1"}, http.StatusUnauthorized, "Invalid inputs."},
		{"empty", gin.H{}, http.StatusUnauthorized, "Invalid inputs."},
		{"no body", "", http.StatusUnauthorized, "Invalid inputs."},
		{"mistyped field", `{"email":5,"password":"secret1"}`, http.StatusUnauthorized, "Invalid inputs."},
		{"malformed json", `{"email":`, http.StatusUnauthorized, "Invalid inputs."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := a.do(t, http.MethodPost, "/api/users/login", tt.body)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantMsg, body["message"])
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	a := newTestAPI(t)

	code, body := a.do(t, http.MethodGet, "/api/nothing/here", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Could not find this route", body["message"])
}
