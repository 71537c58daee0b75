package repository

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/magblast/magblast-server-go/internal/game/eventlog"
	"github.com/pierrec/lz4/v4"
	"lukechampine.com/blake3"
)

// ErrCorruptLog is returned when an archived log does not match its digest.
var ErrCorruptLog = errors.New("archived log is corrupt")

var bufferPool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

func compressLZ4(src []byte) ([]byte, error) {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufferPool.Put(buf)

	zw := lz4.NewWriter(buf)
	if _, err := zw.Write(src); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

func decompressLZ4(src []byte) ([]byte, error) {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufferPool.Put(buf)

	zr := lz4.NewReader(bytes.NewReader(src))
	if _, err := io.Copy(buf, zr); err != nil {
		return nil, err
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

func hashBLAKE3(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// encodeLog serializes and compresses a game log. The digest covers the
// uncompressed JSON.
func encodeLog(entries []eventlog.Entry) (payload []byte, digest string, err error) {
	raw, err := json.Marshal(entries)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode log: %w", err)
	}
	payload, err = compressLZ4(raw)
	if err != nil {
		return nil, "", fmt.Errorf("failed to compress log: %w", err)
	}
	return payload, hashBLAKE3(raw), nil
}

func decodeLog(payload []byte, digest string) ([]eventlog.Entry, error) {
	raw, err := decompressLZ4(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptLog, err)
	}
	if hashBLAKE3(raw) != digest {
		return nil, ErrCorruptLog
	}
	var entries []eventlog.Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode log: %w", err)
	}
	return entries, nil
}
