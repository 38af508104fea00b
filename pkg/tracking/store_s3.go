package tracking

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"
	"k8s.io/utils/pointer"
	"mlship.io/mlship/pkg/errors"
)

const DownloadConcurrency = 5

type S3Options struct {
	URL       string `json:"url,omitempty"`
	Region    string `json:"region,omitempty"`
	Bucket    string `json:"bucket,omitempty"`
	Prefix    string `json:"prefix,omitempty"`
	AccessKey string `json:"accessKey,omitempty"`
	SecretKey string `json:"secretKey,omitempty"`
	PathStyle bool   `json:"pathStyle,omitempty"`
}

func NewDefaultS3Options() *S3Options {
	return &S3Options{
		URL:       os.Getenv("MLSHIP_S3_ENDPOINT"),
		Region:    os.Getenv("MLSHIP_S3_REGION"),
		AccessKey: os.Getenv("MLSHIP_S3_ACCESS_KEY"),
		SecretKey: os.Getenv("MLSHIP_S3_SECRET_KEY"),
		PathStyle: true,
	}
}

// ParseURI fills bucket and prefix from an s3://bucket/prefix tracking URI.
func (o *S3Options) ParseURI(uri string) error {
	u, err := url.Parse(uri)
	if err != nil {
		return fmt.Errorf("invalid tracking uri: %s %w", uri, err)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid tracking uri: %s missing bucket", uri)
	}
	o.Bucket = u.Host
	o.Prefix = strings.Trim(u.Path, "/")
	return nil
}

// S3Store downloads run artifacts from object storage into a temporary
// directory, one object per file under
// <prefix>/<run id>/artifacts/<artifact path>.
type S3Store struct {
	Bucket string
	Prefix string
	Client *s3.Client
}

var _ ArtifactStore = &S3Store{}

func NewS3Store(ctx context.Context, options *S3Options) (*S3Store, error) {
	loadopts := []func(*config.LoadOptions) error{
		config.WithRegion(options.Region),
	}
	if options.AccessKey != "" {
		loadopts = append(loadopts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(options.AccessKey, options.SecretKey, ""),
		))
	}
	if options.URL != "" {
		loadopts = append(loadopts, config.WithEndpointResolverWithOptions(
			aws.EndpointResolverWithOptionsFunc(
				func(service, region string, _ ...interface{}) (aws.Endpoint, error) {
					return aws.Endpoint{URL: options.URL}, nil
				},
			),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadopts...)
	if err != nil {
		return nil, err
	}
	s3cli := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = options.PathStyle
	})
	return &S3Store{
		Bucket: options.Bucket,
		Prefix: options.Prefix,
		Client: s3cli,
	}, nil
}

func (s *S3Store) ResolveArtifact(ctx context.Context, runID string, artifactPath string) (string, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("run", runID, "artifact", artifactPath)

	prefix := path.Join(s.Prefix, runID, "artifacts", artifactPath)
	keys, err := s.listKeys(ctx, prefix)
	if err != nil {
		return "", err
	}
	if len(keys) == 0 {
		return "", errors.NewArtifactUnknownError(runID, artifactPath)
	}

	tmpdir, err := os.MkdirTemp("", "mlship-artifacts-")
	if err != nil {
		return "", err
	}

	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(DownloadConcurrency)
	for _, key := range keys {
		key := key
		eg.Go(func() error {
			return s.downloadKey(egctx, key, prefix, tmpdir)
		})
	}
	if err := eg.Wait(); err != nil {
		os.RemoveAll(tmpdir)
		return "", err
	}
	log.Info("resolved run artifact", "files", len(keys), "dir", tmpdir)
	return tmpdir, nil
}

func (s *S3Store) listKeys(ctx context.Context, prefix string) ([]string, error) {
	listinput := &s3.ListObjectsInput{
		Bucket: aws.String(s.Bucket),
		Prefix: aws.String(prefix + "/"),
	}
	var keys []string
	listobjout, err := s.Client.ListObjects(ctx, listinput)
	if err != nil {
		return nil, err
	}
	for {
		for _, obj := range listobjout.Contents {
			key := pointer.StringDeref(obj.Key, "")
			if key == "" || strings.HasSuffix(key, "/") {
				continue
			}
			keys = append(keys, key)
		}
		if !listobjout.IsTruncated {
			break
		}
		listinput.Marker = listobjout.NextMarker
		listobjout, err = s.Client.ListObjects(ctx, listinput)
		if err != nil {
			return nil, err
		}
	}
	return keys, nil
}

func (s *S3Store) downloadKey(ctx context.Context, key string, prefix string, intodir string) error {
	rel := strings.TrimPrefix(key, prefix+"/")
	filename := filepath.Join(intodir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return err
	}
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = manager.NewDownloader(s.Client).Download(ctx, f, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return errors.NewArtifactUnknownError("", key)
		}
		return err
	}
	return nil
}

func isS3NotFound(err error) bool {
	var apie *smithyhttp.ResponseError
	if stderrors.As(err, &apie) {
		return apie.HTTPStatusCode() == 404
	}
	return false
}
