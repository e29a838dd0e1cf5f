package notes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	log "github.com/sirupsen/logrus"
)

// RemoteApi talks to a notes backend over its REST contract. Any
// transport fault or unexpected status makes that single call silently
// delegate to the owned local store instead of surfacing an error, so
// backend presence is invisible to callers. Only a genuine 404 is
// treated as a legitimate absent result rather than a fault.
type RemoteApi struct {
	baseURL    string
	httpClient *http.Client
	local      *LocalApi
}

func NewRemoteApi(baseURL string, httpClient *http.Client, local *LocalApi) *RemoteApi {
	return &RemoteApi{
		baseURL:    baseURL,
		httpClient: httpClient,
		local:      local,
	}
}

func (api *RemoteApi) notesURL(id string) string {
	if id == "" {
		return api.baseURL + "/notes"
	}
	return api.baseURL + "/notes/" + url.PathEscape(id)
}

// do sends the request and reads the whole response body; a non-nil
// error means a transport level fault (and thus fallback territory)
func (api *RemoteApi) do(req *http.Request) (status int, body []byte, err error) {
	resp, err := api.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response body: %w", err)
	}

	return resp.StatusCode, respBytes, nil
}

func (api *RemoteApi) List(ctx context.Context, query string) ([]Note, error) {
	listURL := api.notesURL("")
	if query != "" {
		listURL += "?query=" + url.QueryEscape(query)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listURL, nil)
	if err != nil {
		return nil, err
	}

	status, body, err := api.do(req)
	if err != nil {
		log.Warnf("remote notes: list failed, using local store: %s", err)
		return api.local.List(ctx, query)
	}
	if status != http.StatusOK {
		log.Warnf("remote notes: list failed with status %d, using local store", status)
		return api.local.List(ctx, query)
	}

	var listed []Note
	if err := json.Unmarshal(body, &listed); err != nil {
		log.Warnf("remote notes: unmarshal list response, using local store: %s", err)
		return api.local.List(ctx, query)
	}
	return listed, nil
}

func (api *RemoteApi) Get(ctx context.Context, id string) (*Note, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, api.notesURL(id), nil)
	if err != nil {
		return nil, err
	}

	status, body, err := api.do(req)
	if err != nil {
		log.Warnf("remote notes: get %s failed, using local store: %s", id, err)
		return api.local.Get(ctx, id)
	}

	switch {
	case status == http.StatusNotFound:
		// legitimate absent result, not a fault
		return nil, ErrNoteNotFound
	case status != http.StatusOK:
		log.Warnf("remote notes: get %s failed with status %d, using local store", id, status)
		return api.local.Get(ctx, id)
	}

	note := &Note{}
	if err := json.Unmarshal(body, note); err != nil {
		log.Warnf("remote notes: unmarshal get response, using local store: %s", err)
		return api.local.Get(ctx, id)
	}
	return note, nil
}

func (api *RemoteApi) Create(ctx context.Context, input CreateNoteInput) (*Note, error) {
	reqBytes, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("marshal create input: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, api.notesURL(""), bytes.NewReader(reqBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	status, body, err := api.do(req)
	if err != nil {
		log.Warnf("remote notes: create failed, using local store: %s", err)
		return api.local.Create(ctx, input)
	}
	if status != http.StatusOK && status != http.StatusCreated {
		log.Warnf("remote notes: create failed with status %d, using local store", status)
		return api.local.Create(ctx, input)
	}

	note := &Note{}
	if err := json.Unmarshal(body, note); err != nil {
		log.Warnf("remote notes: unmarshal create response, using local store: %s", err)
		return api.local.Create(ctx, input)
	}

	log.Debugf("remote notes: new note added: [%s] %s", note.Title, note.ID)

	return note, nil
}

func (api *RemoteApi) Update(ctx context.Context, id string, input UpdateNoteInput) (*Note, error) {
	reqBytes, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("marshal update input: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, api.notesURL(id), bytes.NewReader(reqBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	status, body, err := api.do(req)
	if err != nil {
		log.Warnf("remote notes: update %s failed, using local store: %s", id, err)
		return api.local.Update(ctx, id, input)
	}

	switch {
	case status == http.StatusNotFound:
		return nil, ErrNoteNotFound
	case status != http.StatusOK:
		log.Warnf("remote notes: update %s failed with status %d, using local store", id, status)
		return api.local.Update(ctx, id, input)
	}

	note := &Note{}
	if err := json.Unmarshal(body, note); err != nil {
		log.Warnf("remote notes: unmarshal update response, using local store: %s", err)
		return api.local.Update(ctx, id, input)
	}
	return note, nil
}

func (api *RemoteApi) Delete(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, api.notesURL(id), nil)
	if err != nil {
		return err
	}

	status, _, err := api.do(req)
	if err != nil {
		log.Warnf("remote notes: delete %s failed, using local store: %s", id, err)
		return api.local.Delete(ctx, id)
	}

	switch status {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		// 404 still counts: delete is idempotent
		return nil
	default:
		log.Warnf("remote notes: delete %s failed with status %d, using local store", id, status)
		return api.local.Delete(ctx, id)
	}
}
