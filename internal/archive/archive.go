// Package archive reads and writes generated maps as zstd-compressed files.
//
// An archive is one zstd stream holding a JSON header line followed by the
// JSON-encoded map. The header can be read without decoding the tiles.
package archive

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/talgya/hexmap/internal/world"
)

// Version is the archive format written by Encode.
const Version = 1

// ErrVersion is returned for archives written in an unknown format.
var ErrVersion = errors.New("unsupported archive version")

// Header is the first line of an archive. It describes the map that follows
// and lets callers list archives without decoding tiles.
type Header struct {
	Version int    `json:"version"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Seed    int64  `json:"seed"`
	Preset  string `json:"preset,omitempty"`
	Tiles   int    `json:"tiles"`
}

// Encode writes m to w as a compressed archive.
func Encode(w io.Writer, m *world.MapData) error {
	if m == nil {
		return errors.New("archive: nil map")
	}
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 64*1024)

	hdr := Header{
		Version: Version,
		Width:   m.Width,
		Height:  m.Height,
		Seed:    m.Seed,
		Preset:  m.Preset,
		Tiles:   len(m.Tiles),
	}
	je := json.NewEncoder(bw)
	if err := je.Encode(hdr); err != nil {
		enc.Close()
		return fmt.Errorf("encode header: %w", err)
	}
	if err := je.Encode(m); err != nil {
		enc.Close()
		return fmt.Errorf("encode map: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

func readHeader(jd *json.Decoder) (Header, error) {
	var hdr Header
	if err := jd.Decode(&hdr); err != nil {
		return Header{}, fmt.Errorf("decode header: %w", err)
	}
	if hdr.Version != Version {
		return hdr, fmt.Errorf("%w: %d", ErrVersion, hdr.Version)
	}
	return hdr, nil
}

// ReadHeader reads only the header of an archive; the tiles are not decoded.
func ReadHeader(r io.Reader) (Header, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return Header{}, err
	}
	defer dec.Close()
	return readHeader(json.NewDecoder(dec))
}

// Decode reads an archive written by Encode.
func Decode(r io.Reader) (Header, *world.MapData, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return Header{}, nil, err
	}
	defer dec.Close()

	jd := json.NewDecoder(bufio.NewReaderSize(dec, 64*1024))
	hdr, err := readHeader(jd)
	if err != nil {
		return hdr, nil, err
	}

	var m world.MapData
	if err := jd.Decode(&m); err != nil {
		return hdr, nil, fmt.Errorf("decode map: %w", err)
	}
	if len(m.Tiles) != hdr.Tiles {
		return hdr, nil, fmt.Errorf("archive: header lists %d tiles, body has %d", hdr.Tiles, len(m.Tiles))
	}
	return hdr, &m, nil
}

// WriteFile writes m to path, creating parent directories as needed. The file
// is written under a temporary name and renamed into place.
func WriteFile(path string, m *world.MapData) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := Encode(f, m); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// ReadFile reads an archive from path.
func ReadFile(path string) (Header, *world.MapData, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, nil, err
	}
	defer f.Close()
	return Decode(f)
}
