package feed

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/ulikunitz/xz/lzma"

	"github.com/rustyeddy/chartkit/market"
)

// RecordSize is the length of one candle record in a decompressed .bi5 file.
const RecordSize = 24

// ErrShortRecord is returned when the decompressed payload is not a whole
// number of records.
var ErrShortRecord = errors.New("bi5: truncated record")

// LoadBI5 decodes a Dukascopy candle file. start is the period the file
// covers (day for minute candles, month for hour candles) and point is the
// price scale, 1e-5 for most FX pairs and 1e-3 for JPY crosses.
func LoadBI5(path string, start time.Time, point float64) ([]market.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bi5: %w", err)
	}
	defer f.Close()

	bars, err := ReadBI5(f, start, point)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return bars, nil
}

// ReadBI5 decompresses an LZMA candle stream. Records are big-endian:
// u32 seconds from start, u32 open, close, low, high in points, f32 volume.
// An empty stream (weekend files are zero length) yields no bars.
func ReadBI5(r io.Reader, start time.Time, point float64) ([]market.Bar, error) {
	if point <= 0 {
		return nil, fmt.Errorf("bi5: point must be positive, got %v", point)
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}

	zr, err := lzma.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("bi5: %w", err)
	}
	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("bi5: %w", err)
	}
	if len(data)%RecordSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrShortRecord, len(data))
	}

	base := start.Unix()
	bars := make([]market.Bar, 0, len(data)/RecordSize)
	for off := 0; off < len(data); off += RecordSize {
		rec := data[off : off+RecordSize]
		be := binary.BigEndian
		bars = append(bars, market.Bar{
			Time:   base + int64(be.Uint32(rec[0:4])),
			Open:   float64(be.Uint32(rec[4:8])) * point,
			Close:  float64(be.Uint32(rec[8:12])) * point,
			Low:    float64(be.Uint32(rec[12:16])) * point,
			High:   float64(be.Uint32(rec[16:20])) * point,
			Volume: float64(math.Float32frombits(be.Uint32(rec[20:24]))),
		})
	}
	return bars, nil
}
