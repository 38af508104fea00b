package platform

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/mholt/archiver/v4"
	"github.com/opencontainers/go-digest"
)

var tgz = archiver.CompressedArchive{
	Archival:    archiver.Tar{},
	Compression: archiver.Gz{},
}

// TGZ archives dir into intofile and returns the digest of the archive.
func TGZ(ctx context.Context, dir string, intofile string) (digest.Digest, error) {
	files, err := archiver.FilesFromDisk(
		&archiver.FromDiskOptions{ClearAttributes: true},
		map[string]string{dir + string(os.PathSeparator): ""},
	)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(intofile), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(intofile)
	if err != nil {
		return "", err
	}
	defer f.Close()

	d := digest.Canonical.Digester()
	if err := tgz.Archive(ctx, io.MultiWriter(f, d.Hash()), files); err != nil {
		return "", err
	}
	return d.Digest(), nil
}

// UnTGZ extracts a tar.gz stream into intodir.
func UnTGZ(ctx context.Context, intodir string, reader io.Reader) error {
	return tgz.Extract(ctx, reader, nil, func(ctx context.Context, f archiver.File) error {
		nameinlocal := filepath.Join(intodir, f.NameInArchive)
		if f.IsDir() {
			return os.MkdirAll(nameinlocal, f.Mode())
		}
		if err := os.MkdirAll(filepath.Dir(nameinlocal), 0o755); err != nil {
			return err
		}
		srcfile, err := f.Open()
		if err != nil {
			return err
		}
		defer srcfile.Close()

		intofile, err := os.OpenFile(nameinlocal, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, f.Mode())
		if err != nil {
			return err
		}
		defer intofile.Close()

		if _, err := io.Copy(intofile, srcfile); err != nil {
			return err
		}
		return nil
	})
}
