package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hubofallthings/hat-cli/internal/validation"
)

// DataQuery holds the listing options of the data API.
type DataQuery struct {
	Take     int
	Skip     int
	OrderBy  string
	Ordering string // "ascending" or "descending"
}

// Params converts the query to request parameters, omitting unset fields.
func (q DataQuery) Params() Params {
	var p Params
	if q.Take > 0 {
		p = append(p, Param{Key: "take", Value: q.Take})
	}
	if q.Skip > 0 {
		p = append(p, Param{Key: "skip", Value: q.Skip})
	}
	if q.OrderBy != "" {
		p = append(p, Param{Key: "orderBy", Value: q.OrderBy})
	}
	if q.Ordering != "" {
		p = append(p, Param{Key: "ordering", Value: q.Ordering})
	}
	return p
}

func dataPath(namespace, endpoint string) (string, error) {
	namespace = strings.TrimSpace(namespace)
	endpoint = strings.Trim(strings.TrimSpace(endpoint), "/")
	if err := validation.ValidateSegment("namespace", namespace, false); err != nil {
		return "", err
	}
	if err := validation.ValidateSegment("endpoint", endpoint, true); err != nil {
		return "", err
	}
	return "data/" + namespace + "/" + endpoint, nil
}

// Get lists records of namespace/endpoint.
func (s DataService) Get(
	ctx context.Context,
	domain, token, namespace, endpoint string,
	params Params,
	onSuccess func([]DataRecord, *string),
	onFailure func(*StructuredError),
) {
	call(ctx, s.Client, func() (Request, error) {
		path, err := dataPath(namespace, endpoint)
		if err != nil {
			return Request{Verb: VerbGet}, err
		}
		url, err := s.apiURL(domain, path, "")
		return Request{Verb: VerbGet, URL: url, Query: params, Headers: authHeaders(token)}, err
	}, DecodeList[DataRecord], onSuccess, onFailure)
}

// Create stores data as a new record of namespace/endpoint.
func (s DataService) Create(
	ctx context.Context,
	domain, token, namespace, endpoint string,
	data any,
	onSuccess func(DataRecord, *string),
	onFailure func(*StructuredError),
) {
	call(ctx, s.Client, func() (Request, error) {
		path, err := dataPath(namespace, endpoint)
		if err != nil {
			return Request{Verb: VerbPost}, err
		}
		body, err := marshalBody(data)
		if err != nil {
			return Request{Verb: VerbPost}, err
		}
		url, err := s.apiURL(domain, path, "")
		return Request{
			Verb:        VerbPost,
			URL:         url,
			Body:        body,
			ContentType: "application/json",
			Headers:     authHeaders(token),
		}, err
	}, DecodeObject[DataRecord], onSuccess, onFailure)
}

// Update replaces the data of existing records.
func (s DataService) Update(
	ctx context.Context,
	domain, token string,
	records []DataRecord,
	onSuccess func([]DataRecord, *string),
	onFailure func(*StructuredError),
) {
	call(ctx, s.Client, func() (Request, error) {
		if len(records) == 0 {
			return Request{Verb: VerbPut}, errors.New("no records to update")
		}
		body, err := marshalBody(records)
		if err != nil {
			return Request{Verb: VerbPut}, err
		}
		url, err := s.apiURL(domain, "data", "")
		return Request{
			Verb:        VerbPut,
			URL:         url,
			Body:        body,
			ContentType: "application/json",
			Headers:     authHeaders(token),
		}, err
	}, DecodeList[DataRecord], onSuccess, onFailure)
}

// Delete removes records by ID.
func (s DataService) Delete(
	ctx context.Context,
	domain, token string,
	recordIDs []string,
	onSuccess func(Ack, *string),
	onFailure func(*StructuredError),
) {
	call(ctx, s.Client, func() (Request, error) {
		if len(recordIDs) == 0 {
			return Request{Verb: VerbDelete}, errors.New("no record IDs given")
		}
		url, err := s.apiURL(domain, "data", "")
		return Request{
			Verb:    VerbDelete,
			URL:     url,
			Query:   Params{{Key: "records", Value: recordIDs}},
			Headers: authHeaders(token),
		}, err
	}, DecodeAck, onSuccess, onFailure)
}

func marshalBody(v any) ([]byte, error) {
	switch b := v.(type) {
	case json.RawMessage:
		if !json.Valid(b) {
			return nil, errors.New("request body is not valid JSON")
		}
		return b, nil
	case []byte:
		if !json.Valid(b) {
			return nil, errors.New("request body is not valid JSON")
		}
		return b, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return data, nil
}
