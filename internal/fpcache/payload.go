package fpcache

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/blake3"

	"celldump/internal/plugin"
)

// errCorruptPayload marks a stored payload that failed verification or decoding.
var errCorruptPayload = errors.New("corrupt payload")

var (
	// Core deterministic encoding: the same plugin always yields the same bytes.
	encMode cbor.EncMode
	decMode cbor.DecMode

	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("fpcache: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("fpcache: CBOR decoder initialization failed: " + err.Error())
	}
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("fpcache: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("fpcache: zstd decoder initialization failed: " + err.Error())
	}
}

func encodePayload(p *plugin.Plugin) (payload []byte, digest []byte, err error) {
	raw, err := encMode.Marshal(p)
	if err != nil {
		return nil, nil, fmt.Errorf("encode plugin: %w", err)
	}
	payload = zstdEncoder.EncodeAll(raw, nil)
	sum := blake3.Sum256(payload)
	return payload, sum[:], nil
}

func decodePayload(payload, digest []byte) (*plugin.Plugin, error) {
	sum := blake3.Sum256(payload)
	if !bytes.Equal(sum[:], digest) {
		return nil, fmt.Errorf("%w: digest mismatch", errCorruptPayload)
	}
	raw, err := zstdDecoder.DecodeAll(payload, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: decompress: %w", errCorruptPayload, err)
	}
	var p plugin.Plugin
	if err := decMode.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", errCorruptPayload, err)
	}
	return &p, nil
}
