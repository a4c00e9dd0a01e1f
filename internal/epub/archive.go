package epub

import (
	"archive/zip"
	"bytes"
	"fmt"
	"hash/crc32"
	"io"
	"time"

	"github.com/hpungsan/spellbook/internal/errors"
)

// DefaultModified is the timestamp written on every entry, so identical
// input yields identical archives.
var DefaultModified = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Write streams entries as a zip archive in the given order. The mimetype
// entry is written stored, without extra fields or a data descriptor.
func Write(w io.Writer, entries []Entry, modified time.Time) error {
	date, clock := dosTime(modified)
	zw := zip.NewWriter(w)

	for _, e := range entries {
		fh := &zip.FileHeader{
			Name:         e.Name,
			Method:       e.Method,
			ModifiedDate: date,
			ModifiedTime: clock,
		}

		var (
			fw  io.Writer
			err error
		)
		if e.Method == zip.Store {
			fh.CRC32 = crc32.ChecksumIEEE(e.Data)
			fh.CompressedSize64 = uint64(len(e.Data))
			fh.UncompressedSize64 = uint64(len(e.Data))
			fw, err = zw.CreateRaw(fh)
		} else {
			fw, err = zw.CreateHeader(fh)
		}
		if err != nil {
			return fmt.Errorf("create %s: %w", e.Name, err)
		}
		if _, err := fw.Write(e.Data); err != nil {
			return fmt.Errorf("write %s: %w", e.Name, err)
		}
	}
	return zw.Close()
}

// Read loads every entry of an archive in stored order.
func Read(r io.ReaderAt, size int64) ([]Entry, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, errors.NewInvalidPackage([]string{fmt.Sprintf("not a zip archive: %v", err)})
	}

	entries := make([]Entry, 0, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		entries = append(entries, Entry{Name: f.Name, Data: data, Method: f.Method})
	}
	return entries, nil
}

// ReadBytes loads an archive held in memory.
func ReadBytes(data []byte) ([]Entry, error) {
	return Read(bytes.NewReader(data), int64(len(data)))
}

// dosTime converts t to MS-DOS date and time fields. Times before 1980
// clamp to the format's epoch.
func dosTime(t time.Time) (date, clock uint16) {
	t = t.UTC()
	if t.Year() < 1980 {
		t = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	date = uint16(t.Day() + int(t.Month())<<5 + (t.Year()-1980)<<9)
	clock = uint16(t.Second()/2 + t.Minute()<<5 + t.Hour()<<11)
	return date, clock
}
