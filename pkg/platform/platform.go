package platform

import (
	"context"
)

// Platform is the remote ML platform surface exercised by an image build.
// The HTTP Client implements it against a real deployment; tests substitute
// a recording fake.
type Platform interface {
	RegisterModel(ctx context.Context, opts RegisterModelOptions) (Model, error)
	CreateImage(ctx context.Context, opts CreateImageOptions) (Image, error)
}

// Model is the platform handle for a registered model.
type Model struct {
	Name    string `json:"name"`
	Version int    `json:"version"`
}

// Image is the platform handle for a requested container image. Creation is
// asynchronous on the platform side; WaitForCreation blocks until the remote
// build finishes.
type Image interface {
	Name() string
	WaitForCreation(ctx context.Context) error
}

type RegisterModelOptions struct {
	// ModelPath is a local directory holding the model artifact.
	ModelPath   string
	ModelName   string
	Tags        map[string]string
	Description string
}

// ImageConfig mirrors the platform's image configuration call signature.
// Dependencies are local file paths staged into the image build.
type ImageConfig struct {
	ExecutionScript string
	CondaFile       string
	RuntimeVersion  string
	Tags            map[string]string
	Description     string
	Dependencies    []string
}

type CreateImageOptions struct {
	Name   string
	Config ImageConfig
}

const (
	OperationStatePending   = "Pending"
	OperationStateRunning   = "Running"
	OperationStateSucceeded = "Succeeded"
	OperationStateFailed    = "Failed"
)

// Operation is the long-running creation operation tracked by the platform.
type Operation struct {
	ID      string `json:"id"`
	State   string `json:"state"`
	Message string `json:"message,omitempty"`
}
