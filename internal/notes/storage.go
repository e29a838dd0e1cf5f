package notes

import (
	"errors"
	"fmt"
	"os"
	"path"

	"github.com/beleske/beleske/pkg"

	log "github.com/sirupsen/logrus"
)

// notesFileName - json file name for the marshaled notes collection,
// saved within the data dir; bump the version on schema changes
// (there is no migration logic, old data is simply reseeded)
const notesFileName = "notes.v1.json"

var errNoStoredNotes = errors.New("no stored notes")

// storage is the raw persistence under LocalApi: one opaque value holding
// the whole serialized collection
type storage interface {
	Read() ([]byte, error)
	Write(data []byte) error
}

type fileStorage struct {
	dataDir string
}

func newFileStorage(dataDir string) (*fileStorage, error) {
	if dataDir == "" {
		return nil, errors.New("data dir cannot be empty")
	}
	exists, err := pkg.PathExists(dataDir, true)
	if err != nil {
		return nil, fmt.Errorf("check data dir %s: %w", dataDir, err)
	}
	if !exists {
		log.Debugf("data dir [%s] does not exist, creating it ...", dataDir)
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	return &fileStorage{dataDir: dataDir}, nil
}

func (fs *fileStorage) Read() ([]byte, error) {
	notesJsonPath := path.Join(fs.dataDir, notesFileName)

	exists, err := pkg.PathExists(notesJsonPath, false)
	if err != nil {
		return nil, fmt.Errorf("check notes file %s: %w", notesJsonPath, err)
	}
	if !exists {
		return nil, errNoStoredNotes
	}

	return os.ReadFile(notesJsonPath)
}

// Write saves via a temp file + rename, so a crash mid-write
// can never leave a half-written collection behind
func (fs *fileStorage) Write(data []byte) error {
	notesJsonPath := path.Join(fs.dataDir, notesFileName)
	log.Tracef("saving notes to: %s", notesJsonPath)

	tmpPath := notesJsonPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write notes tmp file: %w", err)
	}
	if err := os.Rename(tmpPath, notesJsonPath); err != nil {
		return fmt.Errorf("rename notes tmp file: %w", err)
	}

	return nil
}
