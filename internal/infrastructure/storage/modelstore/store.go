// Package modelstore persists the two classifier artifacts as a pair.
package modelstore

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Graphyte-Intelligence/pkg/errors"
)

// Artifact file names.
const (
	VectorizerArtifact = "vectorizer.json"
	ModelArtifact      = "risk_model.json"
)

// ErrArtifactNotFound is returned by Load when either artifact is absent.
var ErrArtifactNotFound = errors.New(errors.ErrCodeArtifactNotFound, "model artifacts not found")

// Artifacts is the serialised vectorizer and model.
type Artifacts struct {
	Vectorizer []byte
	Model      []byte
}

// Store saves and loads the artifact pair.
type Store interface {
	Save(ctx context.Context, a Artifacts) error
	Load(ctx context.Context) (Artifacts, error)
	// Location describes where the artifacts live, for logs.
	Location() string
}

// ─────────────────────────────────────────────────────────────────────────────
// Filesystem
// ─────────────────────────────────────────────────────────────────────────────

// FSStore keeps artifacts in a directory.
type FSStore struct {
	dir    string
	logger logging.Logger
}

// NewFSStore returns a store rooted at dir. The directory is created on Save.
func NewFSStore(dir string, log logging.Logger) *FSStore {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &FSStore{dir: dir, logger: log}
}

// Location implements Store.
func (s *FSStore) Location() string {
	return s.dir
}

// Save writes both artifacts. Each file is written to a temp file and renamed
// so a concurrent Load never sees a partial file.
func (s *FSStore) Save(ctx context.Context, a Artifacts) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "create model directory")
	}
	if err := s.writeAtomic(VectorizerArtifact, a.Vectorizer); err != nil {
		return err
	}
	if err := s.writeAtomic(ModelArtifact, a.Model); err != nil {
		return err
	}
	s.logger.Debug("model artifacts saved", logging.String("dir", s.dir))
	return nil
}

func (s *FSStore) writeAtomic(name string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, "."+name+".*")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "create temp artifact")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, errors.ErrCodeStorageError, fmt.Sprintf("write %s", name))
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, fmt.Sprintf("close %s", name))
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, fmt.Sprintf("rename %s", name))
	}
	return nil
}

// Load reads both artifacts.
func (s *FSStore) Load(ctx context.Context) (Artifacts, error) {
	if err := ctx.Err(); err != nil {
		return Artifacts{}, err
	}
	vec, err := s.read(VectorizerArtifact)
	if err != nil {
		return Artifacts{}, err
	}
	mdl, err := s.read(ModelArtifact)
	if err != nil {
		return Artifacts{}, err
	}
	return Artifacts{Vectorizer: vec, Model: mdl}, nil
}

func (s *FSStore) read(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, ErrArtifactNotFound.WithDetail(name)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, fmt.Sprintf("read %s", name))
	}
	return data, nil
}

var _ Store = (*FSStore)(nil)

//Personal.AI order the ending
