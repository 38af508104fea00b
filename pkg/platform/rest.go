package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/opencontainers/go-digest"
	"mlship.io/mlship/pkg/errors"
	"mlship.io/mlship/pkg/types"
	"mlship.io/mlship/pkg/version"
)

var UserAgent = "mlship/" + version.Get().String()

// RestClient speaks the platform's HTTP API. Errors carried as JSON bodies
// are decoded back into errors.ErrorInfo so callers can match on codes.
type RestClient struct {
	Client        *http.Client
	Addr          string
	Authorization string
}

func (t *RestClient) GetWorkspace(ctx context.Context, workspace string) (*types.Workspace, error) {
	ws := &types.Workspace{}
	path := "/v1/workspaces/" + workspace
	if _, err := t.request(ctx, "GET", path, nil, nil, ws); err != nil {
		return nil, err
	}
	return ws, nil
}

func (t *RestClient) HeadBlob(ctx context.Context, workspace string, dgst digest.Digest) (bool, error) {
	path := "/v1/workspaces/" + workspace + "/blobs/" + dgst.String()
	resp, err := t.request(ctx, "HEAD", path, nil, nil, nil)
	if err != nil {
		return false, err
	}
	return resp.StatusCode == http.StatusOK, nil
}

func (t *RestClient) UploadBlob(ctx context.Context, workspace string, desc types.Descriptor, body io.Reader) error {
	header := map[string]string{
		"Content-Type": "application/octet-stream",
	}
	path := "/v1/workspaces/" + workspace + "/blobs/" + desc.Digest.String()
	if _, err := t.request(ctx, "PUT", path, header, body, nil); err != nil {
		return err
	}
	return nil
}

func (t *RestClient) GetBlob(ctx context.Context, workspace string, dgst digest.Digest) (io.ReadCloser, int64, error) {
	path := "/v1/workspaces/" + workspace + "/blobs/" + dgst.String()
	resp, err := t.request(ctx, "GET", path, nil, nil, nil)
	if err != nil {
		return nil, -1, err
	}
	return resp.Body, resp.ContentLength, nil
}

type RegisterModelRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Tags        map[string]string `json:"tags,omitempty"`
	Blob        types.Descriptor  `json:"blob"`
}

func (t *RestClient) PutModel(ctx context.Context, workspace string, req RegisterModelRequest) (*Model, error) {
	header := map[string]string{
		"Content-Type": "application/json",
	}
	model := &Model{}
	path := "/v1/workspaces/" + workspace + "/models"
	if _, err := t.request(ctx, "POST", path, header, req, model); err != nil {
		return nil, err
	}
	return model, nil
}

type ModelManifest struct {
	Name        string            `json:"name"`
	Version     int               `json:"version"`
	Tags        map[string]string `json:"tags,omitempty"`
	Description string            `json:"description,omitempty"`
	Blob        types.Descriptor  `json:"blob"`
}

func (t *RestClient) GetModel(ctx context.Context, workspace string, name string, ver int) (*ModelManifest, error) {
	manifest := &ModelManifest{}
	path := "/v1/workspaces/" + workspace + "/models/" + name + "/versions/" + strconv.Itoa(ver)
	if _, err := t.request(ctx, "GET", path, nil, nil, manifest); err != nil {
		return nil, err
	}
	return manifest, nil
}

type CreateImageRequest struct {
	Name   string            `json:"name"`
	Config types.ImageConfig `json:"config"`
}

type ImageManifest struct {
	Name        string            `json:"name"`
	Config      types.ImageConfig `json:"config"`
	OperationID string            `json:"operationID,omitempty"`
	State       string            `json:"state,omitempty"`
}

func (t *RestClient) PutImage(ctx context.Context, workspace string, req CreateImageRequest) (*ImageManifest, error) {
	header := map[string]string{
		"Content-Type": "application/json",
	}
	manifest := &ImageManifest{}
	path := "/v1/workspaces/" + workspace + "/images"
	if _, err := t.request(ctx, "POST", path, header, req, manifest); err != nil {
		return nil, err
	}
	return manifest, nil
}

func (t *RestClient) GetImage(ctx context.Context, workspace string, name string) (*ImageManifest, error) {
	manifest := &ImageManifest{}
	path := "/v1/workspaces/" + workspace + "/images/" + name
	if _, err := t.request(ctx, "GET", path, nil, nil, manifest); err != nil {
		return nil, err
	}
	return manifest, nil
}

func (t *RestClient) GetOperation(ctx context.Context, workspace string, id string) (*Operation, error) {
	operation := &Operation{}
	path := "/v1/workspaces/" + workspace + "/operations/" + id
	if _, err := t.request(ctx, "GET", path, nil, nil, operation); err != nil {
		return nil, err
	}
	return operation, nil
}

func (t *RestClient) request(ctx context.Context, method, url string, header map[string]string, body any, into any) (*http.Response, error) {
	url = t.Addr + url

	var reqbody io.Reader
	switch val := body.(type) {
	case io.Reader:
		reqbody = val
	case nil:
		reqbody = nil
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		reqbody = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reqbody)
	if err != nil {
		return nil, err
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	if t.Authorization != "" {
		req.Header.Set("Authorization", t.Authorization)
	}
	req.Header.Set("User-Agent", UserAgent)

	cli := t.Client
	if cli == nil {
		cli = http.DefaultClient
	}
	resp, err := cli.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 && req.Method != "HEAD" {
		var apierr errors.ErrorInfo
		if resp.Header.Get("Content-Type") == "application/json" {
			if err := json.NewDecoder(resp.Body).Decode(&apierr); err != nil {
				return nil, err
			}
		} else {
			bodystr, _ := io.ReadAll(resp.Body)
			apierr.Message = string(bodystr)
		}
		apierr.HttpStatus = resp.StatusCode
		return nil, apierr
	}
	if into != nil {
		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
			return nil, err
		}
	}
	return resp, nil
}
