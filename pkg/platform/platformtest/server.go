// Package platformtest provides an in-memory platform API server for tests.
package platformtest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/opencontainers/go-digest"
	"mlship.io/mlship/pkg/errors"
	"mlship.io/mlship/pkg/platform"
	"mlship.io/mlship/pkg/types"
)

type Server struct {
	*httptest.Server

	mu         sync.Mutex
	Workspace  string
	Blobs      map[digest.Digest][]byte
	Models     map[string]platform.ModelManifest
	Images     map[string]platform.ImageManifest
	Operations map[string]*platform.Operation
	Calls      map[string]int

	// OperationStates is consumed one state per poll; the last entry
	// repeats once the sequence is exhausted.
	OperationStates []string
}

func NewServer(workspace string) *Server {
	s := &Server{
		Workspace:       workspace,
		Blobs:           map[digest.Digest][]byte{},
		Models:          map[string]platform.ModelManifest{},
		Images:          map[string]platform.ImageManifest{},
		Operations:      map[string]*platform.Operation{},
		Calls:           map[string]int{},
		OperationStates: []string{platform.OperationStateSucceeded},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

func (s *Server) CallCount(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Calls[name]
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	// all routes live under /v1/workspaces/{ws}
	if len(parts) < 3 || parts[0] != "v1" || parts[1] != "workspaces" {
		writeError(w, errors.NewWorkspaceUnknownError(r.URL.Path))
		return
	}
	if parts[2] != s.Workspace {
		writeError(w, errors.NewWorkspaceUnknownError(parts[2]))
		return
	}
	rest := parts[3:]
	switch {
	case len(rest) == 0:
		s.Calls["GetWorkspace"]++
		writeJSON(w, types.Workspace{Name: s.Workspace})
	case rest[0] == "blobs" && len(rest) == 2:
		s.handleBlob(w, r, digest.Digest(rest[1]))
	case rest[0] == "models" && len(rest) == 1 && r.Method == http.MethodPost:
		s.handleRegisterModel(w, r)
	case rest[0] == "models" && len(rest) == 4 && rest[2] == "versions":
		s.Calls["GetModel"]++
		manifest, ok := s.Models[rest[1]+"@"+rest[3]]
		if !ok {
			ver, _ := strconv.Atoi(rest[3])
			writeError(w, errors.NewModelUnknownError(rest[1], ver))
			return
		}
		writeJSON(w, manifest)
	case rest[0] == "images" && len(rest) == 1 && r.Method == http.MethodPost:
		s.handleCreateImage(w, r)
	case rest[0] == "images" && len(rest) == 2:
		s.Calls["GetImage"]++
		manifest, ok := s.Images[rest[1]]
		if !ok {
			writeError(w, errors.NewImageUnknownError(rest[1]))
			return
		}
		writeJSON(w, manifest)
	case rest[0] == "operations" && len(rest) == 2:
		s.handleOperation(w, rest[1])
	default:
		writeError(w, errors.NewUnsupportedError(r.URL.Path))
	}
}

func (s *Server) handleBlob(w http.ResponseWriter, r *http.Request, dgst digest.Digest) {
	switch r.Method {
	case http.MethodHead:
		s.Calls["HeadBlob"]++
		if _, ok := s.Blobs[dgst]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
	case http.MethodPut:
		s.Calls["UploadBlob"]++
		content, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, errors.NewInternalError(err))
			return
		}
		if digest.FromBytes(content) != dgst {
			writeError(w, errors.NewDigestInvalidError(dgst.String()))
			return
		}
		s.Blobs[dgst] = content
		w.WriteHeader(http.StatusCreated)
	case http.MethodGet:
		s.Calls["GetBlob"]++
		content, ok := s.Blobs[dgst]
		if !ok {
			writeError(w, errors.NewDigestInvalidError(dgst.String()))
			return
		}
		w.Write(content)
	}
}

func (s *Server) handleRegisterModel(w http.ResponseWriter, r *http.Request) {
	s.Calls["RegisterModel"]++
	req := platform.RegisterModelRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewInternalError(err))
		return
	}
	version := 1
	for key := range s.Models {
		if strings.HasPrefix(key, req.Name+"@") {
			version++
		}
	}
	manifest := platform.ModelManifest{
		Name:        req.Name,
		Version:     version,
		Tags:        req.Tags,
		Description: req.Description,
		Blob:        req.Blob,
	}
	s.Models[req.Name+"@"+strconv.Itoa(version)] = manifest
	writeJSON(w, platform.Model{Name: req.Name, Version: version})
}

func (s *Server) handleCreateImage(w http.ResponseWriter, r *http.Request) {
	s.Calls["CreateImage"]++
	req := platform.CreateImageRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewInternalError(err))
		return
	}
	id := "op-" + strconv.Itoa(len(s.Operations)+1)
	s.Operations[id] = &platform.Operation{ID: id, State: platform.OperationStatePending}
	manifest := platform.ImageManifest{Name: req.Name, Config: req.Config, OperationID: id}
	s.Images[req.Name] = manifest
	writeJSON(w, manifest)
}

func (s *Server) handleOperation(w http.ResponseWriter, id string) {
	s.Calls["GetOperation"]++
	operation, ok := s.Operations[id]
	if !ok {
		writeError(w, errors.NewOperationUnknownError(id))
		return
	}
	operation.State = s.OperationStates[0]
	if len(s.OperationStates) > 1 {
		s.OperationStates = s.OperationStates[1:]
	}
	writeJSON(w, operation)
}

func writeJSON(w http.ResponseWriter, val any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(val)
}

func writeError(w http.ResponseWriter, info errors.ErrorInfo) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(info.HttpStatus)
	json.NewEncoder(w).Encode(info)
}
