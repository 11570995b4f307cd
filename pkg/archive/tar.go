package archive

import (
	"archive/tar"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/arthur-debert/doapp/pkg/errors"
)

// writeTarball tars srcDir (its contents, not the directory itself)
// into dest, compressed with the given format.
func writeTarball(srcDir, dest, format string) (err error) {
	out, err := os.Create(dest)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot create %s", dest)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, errors.ErrFileWrite, "cannot finish %s", dest)
		}
	}()

	var compressor io.WriteCloser
	switch format {
	case FormatZstd:
		compressor, err = zstd.NewWriter(out)
		if err != nil {
			return errors.Wrap(err, errors.ErrInternal, "cannot init zstd writer")
		}
	case FormatGzip:
		compressor = gzip.NewWriter(out)
	default:
		return errors.Newf(errors.ErrUnsupportedArchiveFormat, "unknown format %q", format)
	}

	tw := tar.NewWriter(compressor)

	walkErr := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, werr error) error {
		if werr != nil {
			return werr
		}
		rel, rerr := filepath.Rel(srcDir, path)
		if rerr != nil {
			return rerr
		}
		if rel == "." {
			return nil
		}

		info, ierr := d.Info()
		if ierr != nil {
			return ierr
		}

		var link string
		if info.Mode()&fs.ModeSymlink != 0 {
			if link, ierr = os.Readlink(path); ierr != nil {
				return ierr
			}
		}

		header, herr := tar.FileInfoHeader(info, link)
		if herr != nil {
			return herr
		}
		header.Name = filepath.ToSlash(rel)
		if info.IsDir() {
			header.Name += "/"
		}

		if herr := tw.WriteHeader(header); herr != nil {
			return herr
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		file, ferr := os.Open(path)
		if ferr != nil {
			return ferr
		}
		defer file.Close()
		_, cerr := io.Copy(tw, file)
		return cerr
	})
	if walkErr != nil {
		return errors.Wrapf(walkErr, errors.ErrFileAccess, "cannot tar %s", srcDir)
	}

	if err := tw.Close(); err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "cannot finish tar stream")
	}
	return compressor.Close()
}

// extractTarball unpacks archivePath into destDir, dispatching the
// decompressor on the path's extension.
func extractTarball(archivePath, destDir string) error {
	format, err := formatFor(archivePath)
	if err != nil {
		return err
	}

	in, err := os.Open(archivePath)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot open %s", archivePath)
	}
	defer in.Close()

	var decompressor io.Reader
	switch format {
	case FormatZstd:
		zr, zerr := zstd.NewReader(in)
		if zerr != nil {
			return errors.Wrap(zerr, errors.ErrUnsupportedArchiveFormat, "not a zstd stream")
		}
		defer zr.Close()
		decompressor = zr
	case FormatGzip:
		gr, gerr := gzip.NewReader(in)
		if gerr != nil {
			return errors.Wrap(gerr, errors.ErrUnsupportedArchiveFormat, "not a gzip stream")
		}
		defer gr.Close()
		decompressor = gr
	}

	tr := tar.NewReader(decompressor)
	for {
		header, rerr := tr.Next()
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			return errors.Wrapf(rerr, errors.ErrFileAccess, "corrupt archive %s", archivePath)
		}

		// Reject entries escaping the destination
		name := filepath.FromSlash(header.Name)
		if strings.Contains(name, "..") {
			return errors.Newf(errors.ErrInvalidInput, "archive entry %q escapes destination", header.Name)
		}
		target := filepath.Join(destDir, name)

		switch header.Typeflag {
		case tar.TypeDir:
			if merr := os.MkdirAll(target, fs.FileMode(header.Mode)&0777|0700); merr != nil {
				return errors.Wrapf(merr, errors.ErrDirCreate, "cannot create %s", target)
			}
		case tar.TypeSymlink:
			_ = os.Remove(target)
			if merr := os.MkdirAll(filepath.Dir(target), 0755); merr != nil {
				return errors.Wrapf(merr, errors.ErrDirCreate, "cannot create parent of %s", target)
			}
			if serr := os.Symlink(header.Linkname, target); serr != nil {
				return errors.Wrapf(serr, errors.ErrFileWrite, "cannot link %s", target)
			}
		case tar.TypeReg:
			if merr := os.MkdirAll(filepath.Dir(target), 0755); merr != nil {
				return errors.Wrapf(merr, errors.ErrDirCreate, "cannot create parent of %s", target)
			}
			file, cerr := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, fs.FileMode(header.Mode)&0777)
			if cerr != nil {
				return errors.Wrapf(cerr, errors.ErrFileWrite, "cannot create %s", target)
			}
			if _, cerr = io.Copy(file, tr); cerr != nil {
				file.Close()
				return errors.Wrapf(cerr, errors.ErrFileWrite, "cannot extract %s", target)
			}
			if cerr = file.Close(); cerr != nil {
				return errors.Wrapf(cerr, errors.ErrFileWrite, "cannot finish %s", target)
			}
		default:
			// Other entry types (fifos, devices) have no business in
			// a doapp archive; skip them.
		}
	}
}
