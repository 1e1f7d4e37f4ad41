// Package codec encodes entity schema payloads for the UI layer and caches
// the encoded bytes per entity, locale and format.
package codec

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/cruddy"
	"github.com/syssam/cruddy/schema/entity"
)

// Codec encodes and decodes payloads in one wire format.
type Codec interface {
	// Name returns the short format name, e.g. "json".
	Name() string
	// ContentType returns the MIME type of the encoded payload.
	ContentType() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// JSON is the JSON codec.
var JSON Codec = jsonCodec{}

// Msgpack is the MessagePack codec. Map keys are sorted so that equal
// payloads encode to equal bytes.
var Msgpack Codec = msgpackCodec{}

// ByName returns the codec with the given name.
func ByName(name string) (Codec, error) {
	switch name {
	case "json", "":
		return JSON, nil
	case "msgpack":
		return Msgpack, nil
	}
	return nil, fmt.Errorf("codec: unknown format %q", name)
}

type jsonCodec struct{}

func (jsonCodec) Name() string        { return "json" }
func (jsonCodec) ContentType() string { return "application/json" }

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

type msgpackCodec struct{}

func (msgpackCodec) Name() string        { return "msgpack" }
func (msgpackCodec) ContentType() string { return "application/msgpack" }

func (msgpackCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (msgpackCodec) Unmarshal(data []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}

// Schema returns the encoded ToMap payload of ent. The payload is read from
// cache when present and stored without expiry otherwise. The locale only
// keys the cache: ent must already translate for it. A nil cache encodes
// every time.
func Schema(ctx context.Context, cache cruddy.Cache, ent *entity.Entity, locale string, c Codec) ([]byte, error) {
	return SchemaTTL(ctx, cache, ent, locale, c, 0)
}

// SchemaTTL is like Schema but stores the payload for ttl.
func SchemaTTL(ctx context.Context, cache cruddy.Cache, ent *entity.Entity, locale string, c Codec, ttl time.Duration) ([]byte, error) {
	if cache == nil {
		return encode(ent, c)
	}
	key := cruddy.CacheKey{Entity: ent.ID(), Locale: locale, Format: c.Name()}.String()
	b, err := cache.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("codec: cache get %s: %w", key, err)
	}
	if b != nil {
		return b, nil
	}
	if b, err = encode(ent, c); err != nil {
		return nil, err
	}
	if err := cache.Set(ctx, key, b, ttl); err != nil {
		return nil, fmt.Errorf("codec: cache set %s: %w", key, err)
	}
	return b, nil
}

// Invalidate drops the cached payloads of the entity in every locale and
// format. It is a no-op without a cache.
func Invalidate(ctx context.Context, cache cruddy.Cache, entityID string) error {
	if cache == nil {
		return nil
	}
	return cache.DeletePrefix(ctx, cruddy.CacheKey{Entity: entityID}.EntityPrefix())
}

func encode(ent *entity.Entity, c Codec) ([]byte, error) {
	b, err := c.Marshal(ent.ToMap())
	if err != nil {
		return nil, fmt.Errorf("codec: %s: encode %s: %w", c.Name(), ent.ID(), err)
	}
	return b, nil
}
