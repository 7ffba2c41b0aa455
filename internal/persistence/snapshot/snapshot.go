// Package snapshot persists world snapshots as zstd-compressed gob with a
// one-line JSON header for cheap inspection (zstdcat | head -1).
package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"

	"tilecolony/internal/sim/world"
)

type Header struct {
	Version int    `json:"version"`
	WorldID string `json:"world_id"`
	Tick    uint64 `json:"tick"`
}

// PathFor names a snapshot file under dir.
func PathFor(dir string, tick uint64) string {
	return filepath.Join(dir, fmt.Sprintf("snap-%012d.zst", tick))
}

func Write(path string, snap *world.SnapshotV1) error {
	if snap == nil {
		return fmt.Errorf("nil snapshot")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
		_ = os.Remove(tmp)
	}()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)

	hdr, err := json.Marshal(Header{Version: snap.Version, WorldID: snap.WorldID, Tick: snap.Tick})
	if err != nil {
		return err
	}
	if _, err := bw.Write(append(hdr, '\n')); err != nil {
		return err
	}
	if err := gob.NewEncoder(bw).Encode(snap); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func Read(path string) (*world.SnapshotV1, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)
	// Header line is advisory; the gob body is authoritative.
	if _, err := br.ReadString('\n'); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	var snap world.SnapshotV1
	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return nil, fmt.Errorf("gob decode: %w", err)
	}
	return &snap, nil
}

// Latest returns the highest-tick snapshot path in dir, or "" when none.
func Latest(dir string) (string, uint64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", 0, nil
		}
		return "", 0, err
	}
	var names []string
	for _, e := range entries {
		n := e.Name()
		if strings.HasPrefix(n, "snap-") && strings.HasSuffix(n, ".zst") {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		return "", 0, nil
	}
	sort.Strings(names)
	last := names[len(names)-1]
	tickStr := strings.TrimSuffix(strings.TrimPrefix(last, "snap-"), ".zst")
	tick, err := strconv.ParseUint(tickStr, 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("snapshot name %q: %w", last, err)
	}
	return filepath.Join(dir, last), tick, nil
}
