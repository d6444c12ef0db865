package romloader

import (
	"io"

	"github.com/nwaples/rardecode/v2"
)

type rarArchive struct {
	r *rardecode.ReadCloser
}

func openRAR(path string) (archive, error) {
	r, err := rardecode.OpenReader(path)
	if err != nil {
		return nil, err
	}
	return &rarArchive{r: r}, nil
}

func (a *rarArchive) next() (string, io.Reader, error) {
	for {
		header, err := a.r.Next()
		if err != nil {
			return "", nil, err
		}
		if header.IsDir {
			continue
		}
		return header.Name, a.r, nil
	}
}

func (a *rarArchive) Close() error {
	return a.r.Close()
}
