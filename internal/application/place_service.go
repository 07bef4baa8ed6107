package application

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-places-api/internal/domain/entity"
	repo "github.com/oksasatya/go-places-api/internal/domain/repository"
	"github.com/oksasatya/go-places-api/pkg/apperror"
	"github.com/oksasatya/go-places-api/pkg/events"
)

const (
	MsgPlaceNotFound      = "Could not find place for the provided id."
	MsgUserPlacesNotFound = "Could not find places for the provided user id."
	MsgCreatorNotFound    = "Could not find user for the provided id."
	MsgFetchPlaceFailed   = "Something went wrong, could not find a place."
	MsgFetchPlacesFailed  = "Fetching places failed, please try again later."
	MsgCreatePlaceFailed  = "Creating place failed, please try again."
	MsgUpdatePlaceFailed  = "Something went wrong, could not update place."
	MsgDeletePlaceFailed  = "Something went wrong, could not delete place."
	MsgSearchPlacesFailed = "Searching places failed, please try again later."
)

const (
	defaultSearchSize = 10
	maxSearchSize     = 50
	sideEffectTimeout = 3 * time.Second
)

// errPlaceGone marks a place that disappeared between lookup and delete.
var errPlaceGone = errors.New("place already deleted")

// PlaceService coordinates writes that touch both a place and its owner.
// Place.Creator and User.Places are only changed together, inside one
// transaction; indexing and events run after commit and never fail a request.
type PlaceService struct {
	Places   repo.PlaceRepository
	Users    repo.UserRepository
	Tx       repo.TxManager
	Geocoder Geocoder
	Index    PlaceIndexer
	Events   EventPublisher
	Logger   *logrus.Logger
}

func NewPlaceService(store repo.Store, geocoder Geocoder, index PlaceIndexer, pub EventPublisher, logger *logrus.Logger) *PlaceService {
	return &PlaceService{
		Places:   store.Places,
		Users:    store.Users,
		Tx:       store.Tx,
		Geocoder: geocoder,
		Index:    index,
		Events:   pub,
		Logger:   logger,
	}
}

type CreatePlaceInput struct {
	Title       string
	Description string
	Address     string
	Image       string
	Creator     string
}

type UpdatePlaceInput struct {
	Title       string
	Description string
}

func (s *PlaceService) GetPlace(ctx context.Context, id string) (*entity.Place, error) {
	p, err := s.Places.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperror.NotFound(MsgPlaceNotFound)
	}
	if err != nil {
		return nil, apperror.Store(MsgFetchPlaceFailed, err)
	}
	return p, nil
}

func (s *PlaceService) GetPlacesByUser(ctx context.Context, userID string) ([]*entity.Place, error) {
	places, err := s.Places.ListByCreator(ctx, userID)
	if err != nil {
		return nil, apperror.Store(MsgFetchPlacesFailed, err)
	}
	if len(places) == 0 {
		return nil, apperror.NotFound(MsgUserPlacesNotFound)
	}
	return places, nil
}

// CreatePlace resolves the address, verifies the owner, then inserts the
// place and appends it to the owner's places in one transaction.
func (s *PlaceService) CreatePlace(ctx context.Context, in CreatePlaceInput) (*entity.Place, error) {
	loc, err := s.Geocoder.Resolve(ctx, in.Address)
	if err != nil {
		return nil, err
	}

	owner, err := s.Users.GetByID(ctx, in.Creator)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperror.NotFound(MsgCreatorNotFound)
	}
	if err != nil {
		return nil, apperror.Store(MsgCreatePlaceFailed, err)
	}

	place := &entity.Place{
		Title:       in.Title,
		Description: in.Description,
		Address:     in.Address,
		Image:       in.Image,
		Location:    loc,
		Creator:     owner.ID,
	}
	err = s.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.Places.Create(ctx, place); err != nil {
			return err
		}
		return s.Users.AppendPlace(ctx, owner.ID, place.ID)
	})
	if err != nil {
		s.aborted("create place", err, logrus.Fields{"creator": owner.ID})
		return nil, apperror.Store(MsgCreatePlaceFailed, err)
	}

	placeStats.Add(statCreated, 1)
	s.afterCommit(ctx, events.PlaceCreated, place)
	return place, nil
}

// UpdatePlace changes title and description only; it never touches the owner.
func (s *PlaceService) UpdatePlace(ctx context.Context, id string, in UpdatePlaceInput) (*entity.Place, error) {
	place, err := s.GetPlace(ctx, id)
	if err != nil {
		return nil, err
	}
	place.Title = in.Title
	place.Description = in.Description

	if err := s.Places.Update(ctx, place); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.NotFound(MsgPlaceNotFound)
		}
		return nil, apperror.Store(MsgUpdatePlaceFailed, err)
	}

	placeStats.Add(statUpdated, 1)
	s.afterCommit(ctx, events.PlaceUpdated, place)
	return place, nil
}

// DeletePlace removes the place and detaches it from its owner in one transaction.
func (s *PlaceService) DeletePlace(ctx context.Context, id string) error {
	place, err := s.Places.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return apperror.NotFound(MsgPlaceNotFound)
	}
	if err != nil {
		return apperror.Store(MsgDeletePlaceFailed, err)
	}

	err = s.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.Places.Delete(ctx, place.ID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return errPlaceGone
			}
			return err
		}
		return s.Users.RemovePlace(ctx, place.Creator, place.ID)
	})
	if errors.Is(err, errPlaceGone) {
		return apperror.NotFound(MsgPlaceNotFound)
	}
	if err != nil {
		s.aborted("delete place", err, logrus.Fields{"place_id": place.ID, "creator": place.Creator})
		return apperror.Store(MsgDeletePlaceFailed, err)
	}

	placeStats.Add(statDeleted, 1)
	s.afterCommit(ctx, events.PlaceDeleted, place)
	return nil
}

// SearchPlaces queries the search index; without one it returns no results.
func (s *PlaceService) SearchPlaces(ctx context.Context, q string, size int) ([]*entity.Place, error) {
	if s.Index == nil {
		return []*entity.Place{}, nil
	}
	if size <= 0 || size > maxSearchSize {
		size = defaultSearchSize
	}
	places, err := s.Index.SearchPlaces(ctx, q, size)
	if err != nil {
		return nil, apperror.Wrap(http.StatusBadGateway, MsgSearchPlacesFailed, err)
	}
	return places, nil
}

func (s *PlaceService) aborted(op string, err error, fields logrus.Fields) {
	placeStats.Add(statTxAborted, 1)
	if s.Logger != nil {
		s.Logger.WithError(err).WithFields(fields).Errorf("%s: transaction aborted", op)
	}
}

var lastVersion atomic.Int64

// nextVersion returns now in Unix nanoseconds, bumped past the previous value
// so versions handed out by this process strictly increase.
func nextVersion(now time.Time) int64 {
	v := now.UnixNano()
	for {
		last := lastVersion.Load()
		if v <= last {
			v = last + 1
		}
		if lastVersion.CompareAndSwap(last, v) {
			return v
		}
	}
}

func (s *PlaceService) afterCommit(ctx context.Context, kind string, p *entity.Place) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	// the index and the event carry the same version, so the worker
	// replaying the event is a no-op
	version := nextVersion(time.Now())
	at := time.Unix(0, version).UTC()

	if s.Index != nil {
		var err error
		if kind == events.PlaceDeleted {
			err = s.Index.DeletePlace(ctx, p.ID, version)
		} else {
			err = s.Index.IndexPlace(ctx, p, version)
		}
		if err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("place_id", p.ID).Warn("search index update failed")
		}
	}

	if s.Events != nil {
		ev := events.PlaceEvent{Type: kind, PlaceID: p.ID, Creator: p.Creator, OccurredAt: at}
		if kind != events.PlaceDeleted {
			doc := ToDocument(p)
			ev.Place = &doc
		}
		if err := s.Events.PublishJSON(ctx, ev); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithFields(logrus.Fields{"place_id": p.ID, "type": kind}).Warn("publish place event failed")
		}
	}
}

// ToDocument converts a place into its public representation.
func ToDocument(p *entity.Place) events.PlaceDocument {
	return events.PlaceDocument{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Address:     p.Address,
		Image:       p.Image,
		Location:    events.Location{Lat: p.Location.Lat, Lng: p.Location.Lng},
		Creator:     p.Creator,
	}
}

// FromDocument is the inverse of ToDocument.
func FromDocument(d events.PlaceDocument) *entity.Place {
	return &entity.Place{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Address:     d.Address,
		Image:       d.Image,
		Location:    entity.Location{Lat: d.Location.Lat, Lng: d.Location.Lng},
		Creator:     d.Creator,
	}
}
