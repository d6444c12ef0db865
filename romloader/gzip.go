package romloader

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// gzipArchive presents a plain .gz file as a single member archive named
// after the file without its .gz suffix, and a tar.gz as its tar members.
type gzipArchive struct {
	f    *os.File
	gr   *gzip.Reader
	tr   *tar.Reader
	name string
	done bool
}

func openGzip(path string) (archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	gr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	a := &gzipArchive{f: f, gr: gr}
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".tar.gz") || strings.HasSuffix(lower, ".tgz") {
		a.tr = tar.NewReader(gr)
	} else {
		a.name = filepath.Base(path)
		if strings.HasSuffix(strings.ToLower(a.name), ".gz") {
			a.name = a.name[:len(a.name)-3]
		}
	}
	return a, nil
}

func (a *gzipArchive) next() (string, io.Reader, error) {
	if a.tr == nil {
		if a.done {
			return "", nil, io.EOF
		}
		a.done = true
		return a.name, a.gr, nil
	}

	for {
		header, err := a.tr.Next()
		if err != nil {
			return "", nil, err
		}
		if header.Typeflag == tar.TypeReg {
			return header.Name, a.tr, nil
		}
	}
}

func (a *gzipArchive) Close() error {
	a.gr.Close()
	return a.f.Close()
}
