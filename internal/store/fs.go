package store

import (
    "context"
    "errors"
    "fmt"
    "io/fs"
    "os"
    "path/filepath"

    "github.com/google/uuid"
    "github.com/jaminalder/super-tic-tac-toe/internal/domain"
)

// ErrInvalidID is returned for identifiers that are not UUIDs.
var ErrInvalidID = errors.New("invalid game id")

const ext = ".stt"

// FS keeps one binary snapshot file per game in a directory.
type FS struct{ dir string }

func NewFS(dir string) *FS { return &FS{dir: dir} }

func (s *FS) pathFor(id string) (string, error) {
    u, err := uuid.Parse(id)
    if err != nil {
        return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
    }
    return filepath.Join(s.dir, u.String()+ext), nil
}

// Save writes the snapshot of b, replacing any previous one atomically.
func (s *FS) Save(ctx context.Context, id string, b domain.Board) error {
    if err := ctx.Err(); err != nil {
        return err
    }
    target, err := s.pathFor(id)
    if err != nil {
        return err
    }
    if err := os.MkdirAll(s.dir, 0o755); err != nil {
        return err
    }
    raw, err := domain.Encode(b)
    if err != nil {
        return err
    }
    tmp, err := os.CreateTemp(s.dir, "."+filepath.Base(target)+".*")
    if err != nil {
        return err
    }
    defer os.Remove(tmp.Name())
    if _, err := tmp.Write(raw); err != nil {
        tmp.Close()
        return err
    }
    if err := tmp.Close(); err != nil {
        return err
    }
    return os.Rename(tmp.Name(), target)
}

// Load reads the snapshot of a game. Unknown games yield an error matching
// fs.ErrNotExist; corrupted files yield a *domain.DecodeError.
func (s *FS) Load(ctx context.Context, id string) (domain.Board, error) {
    if err := ctx.Err(); err != nil {
        return domain.Board{}, err
    }
    target, err := s.pathFor(id)
    if err != nil {
        return domain.Board{}, err
    }
    data, err := os.ReadFile(target)
    if err != nil {
        if errors.Is(err, fs.ErrNotExist) {
            return domain.Board{}, fmt.Errorf("load %s: %w", id, fs.ErrNotExist)
        }
        return domain.Board{}, err
    }
    b, err := domain.Decode(data)
    if err != nil {
        return domain.Board{}, fmt.Errorf("load %s: %w", id, err)
    }
    return b, nil
}
