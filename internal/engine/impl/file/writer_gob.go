package file

import (
	"DumpSpectra/internal/model"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
)

// SnapshotFileName holds the gob-encoded counters of a run.
const SnapshotFileName = "counters.gob"

// Snapshot is the serializable form of the counters; entries keep insertion order.
type Snapshot struct {
	Source              string
	Generated           time.Time
	Frames              int
	BySource            []model.Entry
	ByDestination       []model.Entry
	ByAddress           []model.Entry
	ByProtocol          []model.Entry
	ByFlag              []model.Entry
	ByService           []model.Entry
	Pairs               []model.PairEntry
	FirstSeen           time.Time
	LastSeen            time.Time
	TimedFrames         int
	MalformedTimestamps int
}

// NewSnapshot copies the counters of a result into a Snapshot.
func NewSnapshot(result *model.Result) Snapshot {
	c := result.Counters
	return Snapshot{
		Source:              result.Source,
		Generated:           result.Generated,
		Frames:              c.Frames,
		BySource:            c.BySource.Entries(),
		ByDestination:       c.ByDestination.Entries(),
		ByAddress:           c.ByAddress.Entries(),
		ByProtocol:          c.ByProtocol.Entries(),
		ByFlag:              c.ByFlag.Entries(),
		ByService:           c.ByService.Entries(),
		Pairs:               c.Pairs.Entries(),
		FirstSeen:           c.FirstSeen,
		LastSeen:            c.LastSeen,
		TimedFrames:         c.TimedFrames,
		MalformedTimestamps: c.MalformedTimestamps,
	}
}

// GobWriter handles writing the counters of a run to disk in gob format.
type GobWriter struct {
	rootPath string
}

// NewGobWriter creates a new gob writer rooted at rootPath.
func NewGobWriter(rootPath string) model.Writer {
	return &GobWriter{rootPath: rootPath}
}

func (w *GobWriter) Name() string {
	return "gob"
}

func (w *GobWriter) Write(result *model.Result) (err error) {
	file, err := create(w.rootPath, SnapshotFileName)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close snapshot file: %w", cerr)
		}
	}()

	if err := gob.NewEncoder(file).Encode(NewSnapshot(result)); err != nil {
		return fmt.Errorf("failed to encode counters to gob: %w", err)
	}

	log.Debugf("Wrote counter snapshot to %s", filepath.Join(w.rootPath, SnapshotFileName))
	return nil
}

// ReadSnapshot decodes a snapshot written by GobWriter.
func ReadSnapshot(path string) (*Snapshot, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer file.Close()

	var snap Snapshot
	if err := gob.NewDecoder(file).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snap, nil
}
