package application

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-places-api/internal/domain/entity"
	"github.com/oksasatya/go-places-api/pkg/apperror"
	"github.com/oksasatya/go-places-api/pkg/events"
)

func (f *fixture) signup(t *testing.T) *entity.User {
	t.Helper()
	u, err := f.userSvc.Signup(context.Background(), SignupInput{Name: "A", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	return u
}

func (f *fixture) create(t *testing.T, creator string) *entity.Place {
	t.Helper()
	p, err := f.svc.CreatePlace(context.Background(), CreatePlaceInput{Title: "T", Description: "desc text", Address: "addr", Creator: creator})
	require.NoError(t, err)
	return p
}

func assertStatus(t *testing.T, err error, want int) {
	t.Helper()
	require.Error(t, err)
	code, _ := apperror.StatusOf(err)
	assert.Equal(t, want, code)
}

func TestCreatePlaceLinksBothSides(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := f.signup(t)

	p := f.create(t, u.ID)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, u.ID, p.Creator)
	assert.Equal(t, entity.Location{Lat: 40.7484474, Lng: -73.9871516}, p.Location)

	owner, err := f.store.Users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{p.ID}, owner.Places)

	stored, err := f.store.Places.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, stored.Creator)

	assert.Equal(t, []string{p.ID}, f.index.indexed)
	require.Len(t, f.events.events, 1)
	assert.Equal(t, events.PlaceCreated, f.events.events[0].Type)
	assert.Equal(t, []int64{f.events.events[0].OccurredAt.UnixNano()}, f.index.versions)
	require.NotNil(t, f.events.events[0].Place)
	assert.Equal(t, "T", f.events.events[0].Place.Title)
}

func TestCreatePlaceUnknownOwnerLeavesStoreUnchanged(t *testing.T) {
	f := newFixture()

	_, err := f.svc.CreatePlace(context.Background(), CreatePlaceInput{Title: "T", Description: "desc text", Address: "addr", Creator: "nobody"})

	assertStatus(t, err, http.StatusNotFound)
	_, msg := apperror.StatusOf(err)
	assert.Equal(t, MsgCreatorNotFound, msg)
	assert.Zero(t, f.places.writes)
	assert.Empty(t, f.index.indexed)
	assert.Empty(t, f.events.events)
}

func TestCreatePlacePropagatesGeocodeErrorUnchanged(t *testing.T) {
	f := newFixture()
	u := f.signup(t)
	gerr := geocodeErr()
	f.geocoder.err = gerr
	f.users.failGet = errStoreDown

	_, err := f.svc.CreatePlace(context.Background(), CreatePlaceInput{Title: "T", Description: "desc text", Address: "nowhere", Creator: u.ID})

	assert.Same(t, gerr, err)
	assert.Zero(t, f.places.writes)
}

func TestCreatePlaceOwnerLookupFailure(t *testing.T) {
	f := newFixture()
	f.users.failGet = errStoreDown

	_, err := f.svc.CreatePlace(context.Background(), CreatePlaceInput{Title: "T", Description: "desc text", Address: "addr", Creator: "u1"})

	assertStatus(t, err, http.StatusInternalServerError)
	assert.ErrorIs(t, err, errStoreDown)
	assert.Zero(t, f.places.writes)
}

func TestCreatePlaceAbortsWhenOwnerUpdateFails(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := f.signup(t)
	f.users.failAppend = errStoreDown

	_, err := f.svc.CreatePlace(ctx, CreatePlaceInput{Title: "T", Description: "desc text", Address: "addr", Creator: u.ID})

	assertStatus(t, err, http.StatusInternalServerError)
	assert.Equal(t, 1, f.places.writes, "insert was attempted inside the transaction")

	places, err := f.store.Places.ListByCreator(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, places, "the inserted place must not survive the abort")
	owner, _ := f.store.Users.GetByID(ctx, u.ID)
	assert.Empty(t, owner.Places)
	assert.Empty(t, f.events.events)
}

func TestCreatePlaceAbortsWhenInsertFails(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := f.signup(t)
	f.places.failCreate = errStoreDown

	_, err := f.svc.CreatePlace(ctx, CreatePlaceInput{Title: "T", Description: "desc text", Address: "addr", Creator: u.ID})

	assertStatus(t, err, http.StatusInternalServerError)
	owner, _ := f.store.Users.GetByID(ctx, u.ID)
	assert.Empty(t, owner.Places)
}

func TestCreatePlaceSideEffectFailuresDoNotFailRequest(t *testing.T) {
	f := newFixture()
	u := f.signup(t)
	f.index.err = errStoreDown
	f.events.err = errStoreDown

	p := f.create(t, u.ID)
	assert.NotEmpty(t, p.ID)
}

func TestDeletePlaceDetachesFromOwner(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := f.signup(t)
	keep := f.create(t, u.ID)
	gone := f.create(t, u.ID)

	require.NoError(t, f.svc.DeletePlace(ctx, gone.ID))

	_, err := f.store.Places.GetByID(ctx, gone.ID)
	assert.Error(t, err)
	owner, _ := f.store.Users.GetByID(ctx, u.ID)
	assert.Equal(t, []string{keep.ID}, owner.Places)
	assert.Equal(t, []string{gone.ID}, f.index.deleted)

	last := f.events.events[len(f.events.events)-1]
	assert.Equal(t, events.PlaceDeleted, last.Type)
	assert.Nil(t, last.Place)
}

func TestDeletePlaceIsNotFoundTwice(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := f.signup(t)
	p := f.create(t, u.ID)

	require.NoError(t, f.svc.DeletePlace(ctx, p.ID))
	assertStatus(t, f.svc.DeletePlace(ctx, p.ID), http.StatusNotFound)

	assertStatus(t, f.svc.DeletePlace(ctx, "missing"), http.StatusNotFound)
	assertStatus(t, f.svc.DeletePlace(ctx, "missing"), http.StatusNotFound)
}

func TestDeletePlaceAbortsWhenOwnerUpdateFails(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := f.signup(t)
	p := f.create(t, u.ID)
	f.users.failRemove = errStoreDown

	err := f.svc.DeletePlace(ctx, p.ID)

	assertStatus(t, err, http.StatusInternalServerError)
	_, getErr := f.store.Places.GetByID(ctx, p.ID)
	assert.NoError(t, getErr, "place must survive an aborted delete")
	owner, _ := f.store.Users.GetByID(ctx, u.ID)
	assert.Equal(t, []string{p.ID}, owner.Places)
	assert.Empty(t, f.index.deleted)
}

func TestDeletePlaceLookupFailure(t *testing.T) {
	f := newFixture()
	f.places.failGet = errStoreDown

	assertStatus(t, f.svc.DeletePlace(context.Background(), "p1"), http.StatusInternalServerError)
}

func TestUpdatePlaceChangesTextOnly(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := f.signup(t)
	p := f.create(t, u.ID)

	updated, err := f.svc.UpdatePlace(ctx, p.ID, UpdatePlaceInput{Title: "New", Description: "new description"})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, "new description", updated.Description)
	assert.Equal(t, p.Address, updated.Address)
	assert.Equal(t, p.Location, updated.Location)
	assert.Equal(t, u.ID, updated.Creator)

	owner, _ := f.store.Users.GetByID(ctx, u.ID)
	assert.Equal(t, []string{p.ID}, owner.Places)
}

func TestUpdatePlaceErrors(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.UpdatePlace(ctx, "missing", UpdatePlaceInput{Title: "x", Description: "xxxxx"})
	assertStatus(t, err, http.StatusNotFound)

	u := f.signup(t)
	p := f.create(t, u.ID)
	f.places.failUpdate = errStoreDown
	_, err = f.svc.UpdatePlace(ctx, p.ID, UpdatePlaceInput{Title: "x", Description: "xxxxx"})
	assertStatus(t, err, http.StatusInternalServerError)
}

func TestGetPlaces(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := f.signup(t)

	_, err := f.svc.GetPlacesByUser(ctx, u.ID)
	assertStatus(t, err, http.StatusNotFound)

	p := f.create(t, u.ID)
	places, err := f.svc.GetPlacesByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, places, 1)

	got, err := f.svc.GetPlace(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = f.svc.GetPlace(ctx, "missing")
	assertStatus(t, err, http.StatusNotFound)
}

func TestSearchPlaces(t *testing.T) {
	f := newFixture()
	f.index.results = []*entity.Place{{ID: "p1", Title: "Empire"}}

	got, err := f.svc.SearchPlaces(context.Background(), "empire", 500)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, "empire", f.index.lastQ)
	assert.Equal(t, defaultSearchSize, f.index.lastN)

	f.index.err = errStoreDown
	_, err = f.svc.SearchPlaces(context.Background(), "empire", 5)
	assertStatus(t, err, http.StatusBadGateway)

	f.svc.Index = nil
	got, err = f.svc.SearchPlaces(context.Background(), "empire", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDocumentRoundTrip(t *testing.T) {
	p := &entity.Place{ID: "p1", Title: "T", Description: "d", Address: "a", Image: "i", Location: entity.Location{Lat: 1, Lng: 2}, Creator: "u1"}
	assert.Equal(t, p, FromDocument(ToDocument(p)))
}

func TestIndexVersionsFollowWriteOrder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.create(t, f.signup(t).ID)

	_, err := f.svc.UpdatePlace(ctx, p.ID, UpdatePlaceInput{Title: "T2", Description: "desc text"})
	require.NoError(t, err)
	require.NoError(t, f.svc.DeletePlace(ctx, p.ID))

	require.Len(t, f.index.versions, 3)
	assert.Less(t, f.index.versions[0], f.index.versions[1])
	assert.Less(t, f.index.versions[1], f.index.versions[2])
}

func TestNextVersionStrictlyIncreases(t *testing.T) {
	now := time.Now()
	a := nextVersion(now)
	b := nextVersion(now)
	c := nextVersion(now.Add(-time.Hour))

	assert.Less(t, a, b)
	assert.Less(t, b, c)
}
