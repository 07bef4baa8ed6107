package application

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/oksasatya/go-places-api/internal/domain/entity"
	repo "github.com/oksasatya/go-places-api/internal/domain/repository"
	"github.com/oksasatya/go-places-api/internal/infrastructure/memory"
	"github.com/oksasatya/go-places-api/pkg/apperror"
	"github.com/oksasatya/go-places-api/pkg/events"
)

var errStoreDown = errors.New("store down")

type fakeGeocoder struct {
	loc   entity.Location
	err   error
	calls int
}

func (g *fakeGeocoder) Resolve(_ context.Context, _ string) (entity.Location, error) {
	g.calls++
	return g.loc, g.err
}

// failingUsers wraps a user repository and fails selected operations.
type failingUsers struct {
	repo.UserRepository
	failGet    error
	failAppend error
	failRemove error
}

func (f *failingUsers) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if f.failGet != nil {
		return nil, f.failGet
	}
	return f.UserRepository.GetByID(ctx, id)
}

func (f *failingUsers) AppendPlace(ctx context.Context, userID, placeID string) error {
	if f.failAppend != nil {
		return f.failAppend
	}
	return f.UserRepository.AppendPlace(ctx, userID, placeID)
}

func (f *failingUsers) RemovePlace(ctx context.Context, userID, placeID string) error {
	if f.failRemove != nil {
		return f.failRemove
	}
	return f.UserRepository.RemovePlace(ctx, userID, placeID)
}

// countingPlaces wraps a place repository, counts writes and fails selected operations.
type countingPlaces struct {
	repo.PlaceRepository
	writes     int
	failCreate error
	failGet    error
	failUpdate error
}

func (c *countingPlaces) Create(ctx context.Context, p *entity.Place) error {
	c.writes++
	if c.failCreate != nil {
		return c.failCreate
	}
	return c.PlaceRepository.Create(ctx, p)
}

func (c *countingPlaces) GetByID(ctx context.Context, id string) (*entity.Place, error) {
	if c.failGet != nil {
		return nil, c.failGet
	}
	return c.PlaceRepository.GetByID(ctx, id)
}

func (c *countingPlaces) Update(ctx context.Context, p *entity.Place) error {
	c.writes++
	if c.failUpdate != nil {
		return c.failUpdate
	}
	return c.PlaceRepository.Update(ctx, p)
}

func (c *countingPlaces) Delete(ctx context.Context, id string) error {
	c.writes++
	return c.PlaceRepository.Delete(ctx, id)
}

type fakeIndex struct {
	mu       sync.Mutex
	indexed  []string
	deleted  []string
	versions []int64
	err      error
	results  []*entity.Place
	lastQ    string
	lastN    int
}

func (f *fakeIndex) IndexPlace(_ context.Context, p *entity.Place, version int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexed = append(f.indexed, p.ID)
	f.versions = append(f.versions, version)
	return f.err
}

func (f *fakeIndex) DeletePlace(_ context.Context, id string, version int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	f.versions = append(f.versions, version)
	return f.err
}

func (f *fakeIndex) SearchPlaces(_ context.Context, q string, size int) ([]*entity.Place, error) {
	f.lastQ, f.lastN = q, size
	return f.results, f.err
}

type fakePublisher struct {
	events []events.PlaceEvent
	err    error
}

func (f *fakePublisher) PublishJSON(_ context.Context, body any) error {
	if ev, ok := body.(events.PlaceEvent); ok {
		f.events = append(f.events, ev)
	}
	return f.err
}

type fixture struct {
	store    repo.Store
	users    *failingUsers
	places   *countingPlaces
	geocoder *fakeGeocoder
	index    *fakeIndex
	events   *fakePublisher
	svc      *PlaceService
	userSvc  *UserService
}

func newFixture() *fixture {
	store := memory.NewStore().Bundle()
	f := &fixture{
		store:    store,
		users:    &failingUsers{UserRepository: store.Users},
		places:   &countingPlaces{PlaceRepository: store.Places},
		geocoder: &fakeGeocoder{loc: entity.Location{Lat: 40.7484474, Lng: -73.9871516}},
		index:    &fakeIndex{},
		events:   &fakePublisher{},
	}
	f.svc = &PlaceService{
		Places:   f.places,
		Users:    f.users,
		Tx:       store.Tx,
		Geocoder: f.geocoder,
		Index:    f.index,
		Events:   f.events,
	}
	f.userSvc = NewUserService(store.Users, nil)
	return f
}

func geocodeErr() error {
	return apperror.Geocode(http.StatusUnprocessableEntity, "Could not find location for the specified address.", errors.New("zero results"))
}

// brokenUsers fails every call.
type brokenUsers struct{ repo.UserRepository }

func (brokenUsers) GetByEmail(context.Context, string) (*entity.User, error) { return nil, errStoreDown }
func (brokenUsers) List(context.Context) ([]*entity.User, error)            { return nil, errStoreDown }
