package httpwire

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// BodySource supplies the request body bytes. Sources are re-readable
// so the same body can be replayed on a 307/308 redirect hop.
type BodySource interface {
	Bytes() ([]byte, error)
}

// NewBodySource builds a source from an inline payload or a file path.
// The two are mutually exclusive; with neither, the body is empty.
func NewBodySource(body, bodyFile string) (BodySource, error) {
	bodyFile = strings.TrimSpace(bodyFile)
	if body != "" && bodyFile != "" {
		return nil, errors.New("body and body file cannot both be provided")
	}

	if body != "" {
		return &inlineBodySource{data: []byte(body)}, nil
	}

	if bodyFile != "" {
		info, err := os.Stat(bodyFile)
		if err != nil {
			return nil, fmt.Errorf("body file: %w", err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("body file %q is a directory", bodyFile)
		}
		return &fileBodySource{path: bodyFile}, nil
	}

	return emptyBodySource{}, nil
}

type inlineBodySource struct {
	data []byte
}

func (s *inlineBodySource) Bytes() ([]byte, error) {
	return s.data, nil
}

type fileBodySource struct {
	path string
}

func (s *fileBodySource) Bytes() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("body file: %w", err)
	}
	return data, nil
}

type emptyBodySource struct{}

func (emptyBodySource) Bytes() ([]byte, error) {
	return nil, nil
}
