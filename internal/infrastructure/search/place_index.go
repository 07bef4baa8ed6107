package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/go-places-api/internal/application"
	"github.com/oksasatya/go-places-api/internal/domain/entity"
	"github.com/oksasatya/go-places-api/pkg/events"
)

// PlaceIndex stores place documents in Elasticsearch keyed by place id.
type PlaceIndex struct {
	ES    *elasticsearch.Client
	Index string
}

func NewPlaceIndex(es *elasticsearch.Client, index string) *PlaceIndex {
	return &PlaceIndex{ES: es, Index: index}
}

const placeMapping = `{
  "mappings": {
    "properties": {
      "id":          {"type": "keyword"},
      "title":       {"type": "text"},
      "description": {"type": "text"},
      "address":     {"type": "text"},
      "image":       {"type": "keyword", "index": false},
      "creator":     {"type": "keyword"},
      "location": {
        "properties": {
          "lat": {"type": "double"},
          "lng": {"type": "double"}
        }
      }
    }
  }
}`

// EnsureIndex creates the index with the place mapping if it does not exist.
func (x *PlaceIndex) EnsureIndex(ctx context.Context) error {
	exists, err := esapi.IndicesExistsRequest{Index: []string{x.Index}}.Do(ctx, x.ES)
	if err != nil {
		return err
	}
	_ = exists.Body.Close()
	if exists.StatusCode == http.StatusOK {
		return nil
	}
	res, err := esapi.IndicesCreateRequest{Index: x.Index, Body: strings.NewReader(placeMapping)}.Do(ctx, x.ES)
	if err != nil {
		return err
	}
	return checkResponse(res)
}

// IndexPlace writes p with external versioning. A version not above the
// stored one is rejected by Elasticsearch with 409 and treated as done.
func (x *PlaceIndex) IndexPlace(ctx context.Context, p *entity.Place, version int64) error {
	b, err := json.Marshal(application.ToDocument(p))
	if err != nil {
		return err
	}
	v := int(version)
	req := esapi.IndexRequest{
		Index:       x.Index,
		DocumentID:  p.ID,
		Body:        bytes.NewReader(b),
		Refresh:     "false",
		Version:     &v,
		VersionType: "external",
	}
	res, err := req.Do(ctx, x.ES)
	if err != nil {
		return err
	}
	return checkResponse(res, http.StatusConflict)
}

// DeletePlace removes the document unless a newer version is stored.
func (x *PlaceIndex) DeletePlace(ctx context.Context, id string, version int64) error {
	v := int(version)
	req := esapi.DeleteRequest{Index: x.Index, DocumentID: id, Version: &v, VersionType: "external"}
	res, err := req.Do(ctx, x.ES)
	if err != nil {
		return err
	}
	return checkResponse(res, http.StatusNotFound, http.StatusConflict)
}

// SearchPlaces performs a multi_match search on title, description and address.
func (x *PlaceIndex) SearchPlaces(ctx context.Context, q string, size int) ([]*entity.Place, error) {
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"title^3", "description", "address^2"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	res, err := x.ES.Search(
		x.ES.Search.WithContext(ctx),
		x.ES.Search.WithIndex(x.Index),
		x.ES.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = res.Body.Close()
	}()
	if res.IsError() {
		return nil, fmt.Errorf("search %s: %s", x.Index, res.Status())
	}
	return decodeHits(res.Body)
}

func decodeHits(r io.Reader) ([]*entity.Place, error) {
	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string               `json:"_id"`
				Source events.PlaceDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(r).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]*entity.Place, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		doc := h.Source
		if doc.ID == "" {
			doc.ID = h.ID
		}
		out = append(out, application.FromDocument(doc))
	}
	return out, nil
}

// checkResponse closes the body and turns an error status not in ok into an error.
func checkResponse(res *esapi.Response, ok ...int) error {
	defer func() { _ = res.Body.Close() }()
	if !res.IsError() || slices.Contains(ok, res.StatusCode) {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
	return fmt.Errorf("elasticsearch %s: %s", res.Status(), strings.TrimSpace(string(body)))
}

var _ application.PlaceIndexer = (*PlaceIndex)(nil)
