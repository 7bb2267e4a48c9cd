package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/MKhiriev/go-pass-sphere/models"
)

// httpRecordAdapter serves one collection. Records travel as flat JSON
// objects: {"id": 1, "<field>": "<envelope>", ...}.
type httpRecordAdapter struct {
	transport  *httpTransport
	collection string
	fields     []string
}

func newHTTPRecordAdapter(transport *httpTransport, collection string, fields []string) *httpRecordAdapter {
	return &httpRecordAdapter{
		transport:  transport,
		collection: collection,
		fields:     fields,
	}
}

func (h *httpRecordAdapter) path() string {
	return "/api/records/" + h.collection
}

func (h *httpRecordAdapter) itemPath(id uint64) string {
	return h.path() + "/" + strconv.FormatUint(id, 10)
}

// List implements [RecordAdapter]. A field missing from a listed record is
// returned as an empty envelope and fails later at decryption.
func (h *httpRecordAdapter) List(ctx context.Context) ([]models.RemoteRecord, error) {
	resp, err := h.transport.do(ctx, http.MethodGet, h.path(), nil, true)
	if err != nil {
		return nil, err
	}

	raw, err := decodeResult[[]map[string]json.RawMessage](resp)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", h.collection, err)
	}

	records := make([]models.RemoteRecord, 0, len(raw))
	for i, item := range raw {
		record, err := h.decodeRecord(item)
		if err != nil {
			return nil, fmt.Errorf("list %s: record #%d: %w", h.collection, i, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func (h *httpRecordAdapter) decodeRecord(item map[string]json.RawMessage) (models.RemoteRecord, error) {
	var record models.RemoteRecord

	rawID, ok := item["id"]
	if !ok {
		return record, fmt.Errorf("%w: record without id", ErrMalformedReply)
	}
	if err := json.Unmarshal(rawID, &record.ID); err != nil {
		return record, fmt.Errorf("%w: id: %v", ErrMalformedReply, err)
	}

	record.Fields = make([]models.Envelope, len(h.fields))
	for i, name := range h.fields {
		rawField, ok := item[name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(rawField, &record.Fields[i]); err != nil {
			return record, fmt.Errorf("%w: field %s: %v", ErrMalformedReply, name, err)
		}
	}
	return record, nil
}

func (h *httpRecordAdapter) encodeFields(fields []models.Envelope) (map[string]models.Envelope, error) {
	if len(fields) != len(h.fields) {
		return nil, fmt.Errorf("%s expects %d fields, got %d", h.collection, len(h.fields), len(fields))
	}
	body := make(map[string]models.Envelope, len(fields))
	for i, name := range h.fields {
		body[name] = fields[i]
	}
	return body, nil
}

// Create implements [RecordAdapter] and returns the id the remote assigned.
func (h *httpRecordAdapter) Create(ctx context.Context, fields []models.Envelope) (uint64, error) {
	body, err := h.encodeFields(fields)
	if err != nil {
		return 0, err
	}

	resp, err := h.transport.do(ctx, http.MethodPost, h.path(), body, true)
	if err != nil {
		return 0, err
	}

	id, err := decodeResult[uint64](resp)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", h.collection, err)
	}
	return id, nil
}

// Update implements [RecordAdapter].
func (h *httpRecordAdapter) Update(ctx context.Context, id uint64, fields []models.Envelope) error {
	body, err := h.encodeFields(fields)
	if err != nil {
		return err
	}

	resp, err := h.transport.do(ctx, http.MethodPut, h.itemPath(id), body, true)
	if err != nil {
		return err
	}
	if err = decodeUnit(resp); err != nil {
		return fmt.Errorf("update %s/%d: %w", h.collection, id, err)
	}
	return nil
}

// Delete implements [RecordAdapter].
func (h *httpRecordAdapter) Delete(ctx context.Context, id uint64) error {
	resp, err := h.transport.do(ctx, http.MethodDelete, h.itemPath(id), nil, true)
	if err != nil {
		return err
	}
	if err = decodeUnit(resp); err != nil {
		return fmt.Errorf("delete %s/%d: %w", h.collection, id, err)
	}
	return nil
}
