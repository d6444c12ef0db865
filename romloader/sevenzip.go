package romloader

import (
	"io"

	"github.com/bodgit/sevenzip"
)

type sevenZipArchive struct {
	r   *sevenzip.ReadCloser
	idx int
	cur io.ReadCloser
}

func open7z(path string) (archive, error) {
	r, err := sevenzip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	return &sevenZipArchive{r: r}, nil
}

func (s *sevenZipArchive) next() (string, io.Reader, error) {
	if s.cur != nil {
		s.cur.Close()
		s.cur = nil
	}
	for s.idx < len(s.r.File) {
		f := s.r.File[s.idx]
		s.idx++
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", nil, err
		}
		s.cur = rc
		return f.Name, rc, nil
	}
	return "", nil, io.EOF
}

func (s *sevenZipArchive) Close() error {
	if s.cur != nil {
		s.cur.Close()
	}
	return s.r.Close()
}
