package platform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-logr/logr"
	"github.com/opencontainers/go-digest"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
	"mlship.io/mlship/pkg/types"
)

const UploadConcurrency = 5

// Client implements Platform against the remote HTTP API. All blobs of a
// build request are content addressed; uploads of already known digests are
// skipped.
type Client struct {
	Remote    RestClient
	Workspace string
	CacheDir  string
}

var _ Platform = &Client{}

func NewClient(addr string, workspace string, auth string) *Client {
	cachedir := ""
	if home, err := os.UserHomeDir(); err == nil {
		cachedir = filepath.Join(home, ".mlship", "models")
	}
	return &Client{
		Remote:    RestClient{Addr: addr, Authorization: auth},
		Workspace: workspace,
		CacheDir:  cachedir,
	}
}

func (c *Client) LoadWorkspace(ctx context.Context) (*types.Workspace, error) {
	return c.Remote.GetWorkspace(ctx, c.Workspace)
}

func (c *Client) RegisterModel(ctx context.Context, opts RegisterModelOptions) (Model, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("model", opts.ModelName)

	tmpdir, err := os.MkdirTemp("", "mlship-register-")
	if err != nil {
		return Model{}, err
	}
	defer os.RemoveAll(tmpdir)

	tgzfile := filepath.Join(tmpdir, "model.tar.gz")
	dgst, err := TGZ(ctx, opts.ModelPath, tgzfile)
	if err != nil {
		return Model{}, err
	}
	fi, err := os.Stat(tgzfile)
	if err != nil {
		return Model{}, err
	}
	desc := types.Descriptor{
		Name:      "model.tar.gz",
		MediaType: types.MediaTypeModelDirectoryTarGz,
		Digest:    dgst,
		Size:      fi.Size(),
		Modified:  fi.ModTime(),
	}

	if err := c.uploadBlob(ctx, desc, tgzfile); err != nil {
		return Model{}, err
	}

	model, err := c.Remote.PutModel(ctx, c.Workspace, RegisterModelRequest{
		Name:        opts.ModelName,
		Description: opts.Description,
		Tags:        opts.Tags,
		Blob:        desc,
	})
	if err != nil {
		return Model{}, err
	}
	log.Info("registered model", "version", model.Version)
	return *model, nil
}

func (c *Client) CreateImage(ctx context.Context, opts CreateImageOptions) (Image, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("image", opts.Name)

	files := []string{opts.Config.ExecutionScript}
	if opts.Config.CondaFile != "" {
		files = append(files, opts.Config.CondaFile)
	}
	files = append(files, opts.Config.Dependencies...)

	descs := make([]types.Descriptor, len(files))
	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(UploadConcurrency)
	for i := range files {
		i := i
		eg.Go(func() error {
			desc, err := describeFile(files[i], c.mediaTypeFor(opts.Config, files[i]))
			if err != nil {
				return err
			}
			if err := c.uploadBlob(egctx, desc, files[i]); err != nil {
				return err
			}
			descs[i] = desc
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	slices.SortFunc(descs, types.SortDescriptorName)

	config := types.ImageConfig{
		ExecutionScript: filepath.Base(opts.Config.ExecutionScript),
		RuntimeVersion:  opts.Config.RuntimeVersion,
		Tags:            opts.Config.Tags,
		Description:     opts.Config.Description,
		Dependencies:    descs,
	}
	if opts.Config.CondaFile != "" {
		config.CondaFile = filepath.Base(opts.Config.CondaFile)
	}

	manifest, err := c.Remote.PutImage(ctx, c.Workspace, CreateImageRequest{Name: opts.Name, Config: config})
	if err != nil {
		return nil, err
	}
	log.Info("requested image creation", "operation", manifest.OperationID)
	return &remoteImage{client: c, name: manifest.Name, operation: manifest.OperationID}, nil
}

// ImageStatus reports the image manifest and, when the creation operation is
// still tracked, its state.
func (c *Client) ImageStatus(ctx context.Context, name string) (*ImageManifest, *Operation, error) {
	manifest, err := c.Remote.GetImage(ctx, c.Workspace, name)
	if err != nil {
		return nil, nil, err
	}
	if manifest.OperationID == "" {
		return manifest, nil, nil
	}
	operation, err := c.Remote.GetOperation(ctx, c.Workspace, manifest.OperationID)
	if err != nil {
		return nil, nil, err
	}
	return manifest, operation, nil
}

// GetModelPath downloads a registered model into the local cache and returns
// the directory holding the artifact. Lookups of an already cached
// name@version pair skip the download.
func (c *Client) GetModelPath(ctx context.Context, name string, ver int) (string, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("model", name, "version", ver)

	cachedir := c.CacheDir
	if cachedir == "" {
		tmp, err := os.MkdirTemp("", "mlship-models-")
		if err != nil {
			return "", err
		}
		cachedir = tmp
	}
	cache, err := openModelCache(filepath.Join(cachedir, "index.db"))
	if err != nil {
		return "", err
	}
	defer cache.Close()

	key := name + "@" + strconv.Itoa(ver)
	if cached, err := cache.Get(key); err != nil {
		return "", err
	} else if cached != "" {
		if _, err := os.Stat(cached); err == nil {
			log.V(1).Info("model cache hit", "path", cached)
			return cached, nil
		}
	}

	manifest, err := c.Remote.GetModel(ctx, c.Workspace, name, ver)
	if err != nil {
		return "", err
	}
	body, _, err := c.Remote.GetBlob(ctx, c.Workspace, manifest.Blob.Digest)
	if err != nil {
		return "", err
	}
	defer body.Close()

	into := filepath.Join(cachedir, name, strconv.Itoa(ver))
	if err := os.MkdirAll(into, 0o755); err != nil {
		return "", err
	}
	if err := UnTGZ(ctx, into, body); err != nil {
		return "", err
	}
	if err := cache.Set(key, into); err != nil {
		return "", err
	}
	log.Info("downloaded model", "path", into)
	return into, nil
}

func (c *Client) uploadBlob(ctx context.Context, desc types.Descriptor, filename string) error {
	exist, err := c.Remote.HeadBlob(ctx, c.Workspace, desc.Digest)
	if err != nil {
		return err
	}
	if exist {
		return nil
	}
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return c.Remote.UploadBlob(ctx, c.Workspace, desc, f)
}

func (c *Client) mediaTypeFor(config ImageConfig, filename string) string {
	switch filename {
	case config.ExecutionScript:
		return types.MediaTypeExecutionScript
	case config.CondaFile:
		return types.MediaTypeCondaEnvYaml
	}
	if strings.HasSuffix(filename, ".tar.gz") {
		return types.MediaTypeRuntimeTarGz
	}
	return types.MediaTypeModelFile
}

func describeFile(filename string, mediatype string) (types.Descriptor, error) {
	fi, err := os.Stat(filename)
	if err != nil {
		return types.Descriptor{}, fmt.Errorf("stat dependency:%s %w", filename, err)
	}
	f, err := os.Open(filename)
	if err != nil {
		return types.Descriptor{}, err
	}
	dgst, err := digest.FromReader(f)
	_ = f.Close()
	if err != nil {
		return types.Descriptor{}, err
	}
	return types.Descriptor{
		Name:      filepath.Base(filename),
		MediaType: mediatype,
		Digest:    dgst,
		Size:      fi.Size(),
		Modified:  fi.ModTime(),
	}, nil
}
