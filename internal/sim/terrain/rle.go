package terrain

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"

	"github.com/Da-Krause/settlers-remake/internal/sim/landscape"
)

// EncodeLandscape encodes tiles row-major into base64(varint pairs). The
// pairs are (landscape type, run length) repeated.
func EncodeLandscape(tiles []landscape.Type) string {
	var buf bytes.Buffer
	var tmp [binary.MaxVarintLen64]byte

	i := 0
	for i < len(tiles) {
		t := tiles[i]
		run := 1
		for j := i + 1; j < len(tiles) && tiles[j] == t; j++ {
			run++
		}
		n := binary.PutUvarint(tmp[:], uint64(t))
		buf.Write(tmp[:n])
		n = binary.PutUvarint(tmp[:], uint64(run))
		buf.Write(tmp[:n])
		i += run
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// DecodeLandscape reverses EncodeLandscape. want bounds the decoded length
// so a corrupt run cannot allocate without limit.
func DecodeLandscape(b64 string, want int) ([]landscape.Type, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	out := make([]landscape.Type, 0, want)
	for i := 0; i < len(raw); {
		t, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		run, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		if t >= uint64(landscape.Count) {
			return nil, fmt.Errorf("landscape type out of range: %d", t)
		}
		if uint64(len(out))+run > uint64(want) {
			return nil, fmt.Errorf("landscape runs exceed %d tiles", want)
		}
		for k := uint64(0); k < run; k++ {
			out = append(out, landscape.Type(t))
		}
	}
	if len(out) != want {
		return nil, fmt.Errorf("landscape has %d tiles, want %d", len(out), want)
	}
	return out, nil
}
