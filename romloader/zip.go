package romloader

import (
	"archive/zip"
	"io"
)

type zipArchive struct {
	r   *zip.ReadCloser
	idx int
	cur io.ReadCloser
}

func openZIP(path string) (archive, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	return &zipArchive{r: r}, nil
}

func (z *zipArchive) next() (string, io.Reader, error) {
	z.closeCurrent()
	for z.idx < len(z.r.File) {
		f := z.r.File[z.idx]
		z.idx++
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", nil, err
		}
		z.cur = rc
		return f.Name, rc, nil
	}
	return "", nil, io.EOF
}

func (z *zipArchive) closeCurrent() {
	if z.cur != nil {
		z.cur.Close()
		z.cur = nil
	}
}

func (z *zipArchive) Close() error {
	z.closeCurrent()
	return z.r.Close()
}
