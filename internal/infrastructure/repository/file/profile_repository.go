package file

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/copperpitch/youthrank/internal/domain/profile"
	"github.com/copperpitch/youthrank/internal/usecase"
)

// ProfileRepository persists the profile cache between runs as one JSON
// object per division. Keys are written sorted so reruns with an
// unchanged cache produce byte-identical files.
type ProfileRepository struct {
	dir string
}

func NewProfileRepository(dir string) *ProfileRepository {
	return &ProfileRepository{dir: dir}
}

func (r *ProfileRepository) Path(divisionKey string) string {
	return filepath.Join(r.dir, "profiles_"+divisionKey+".json")
}

func (r *ProfileRepository) Load(_ context.Context, divisionKey string) (map[string]profile.Entry, error) {
	path := r.Path(divisionKey)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]profile.Entry{}, nil
		}
		return nil, crerr.Wrapf(err, "read profile cache %s", path)
	}

	entries := make(map[string]profile.Entry)
	if err := sonic.Unmarshal(raw, &entries); err != nil {
		return nil, crerr.Mark(crerr.Wrapf(err, "parse profile cache %s", path), usecase.ErrMalformedInput)
	}
	return entries, nil
}

func (r *ProfileRepository) Save(_ context.Context, divisionKey string, entries map[string]profile.Entry) error {
	// ConfigStd sorts object keys, which keeps the snapshot stable
	// across runs regardless of map iteration order.
	raw, err := sonic.ConfigStd.MarshalIndent(entries, "", "  ")
	if err != nil {
		return crerr.Wrap(err, "marshal profile cache")
	}

	path := r.Path(divisionKey)
	if err := writeAtomic(path, func(w io.Writer) error {
		if _, err := w.Write(raw); err != nil {
			return err
		}
		_, err := w.Write([]byte("\n"))
		return err
	}); err != nil {
		return crerr.Wrapf(err, "write profile cache %s", path)
	}
	return nil
}
