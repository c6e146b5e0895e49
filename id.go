// Package snowflake - id.go provides the ID type: a strongly-typed int64
// wrapper with eleven encoding formats, database/json/text/binary
// marshaling, and component extraction against a BitLayout.
package snowflake

import (
	"database/sql/driver"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// DefaultEpoch is the epoch, in seconds since the Unix epoch, that the
// package-level component-extraction methods on ID (Time, Components,
// IsValid) assume. It matches DefaultConfig's EpochPoint. Ids
// minted under a different epoch should use the *WithLayout variants,
// passing that generator's own epoch.
var DefaultEpoch = mustEpochSeconds("2024-01-01")

func mustEpochSeconds(date string) int64 {
	t, err := time.ParseInLocation("2006-01-02", date, time.UTC)
	if err != nil {
		panic(err)
	}
	return t.Unix()
}

// ID is a strongly-typed snowflake-style identifier.
//
// Using a distinct type instead of a raw int64 prevents accidentally
// mixing ids with unrelated integers, and lets the type carry the
// encoding and component-extraction methods below.
type ID int64

// Int64 returns the ID as an int64.
func (id ID) Int64() int64 { return int64(id) }

// Uint64 returns the ID as a uint64.
func (id ID) Uint64() uint64 { return uint64(id) }

// String returns the decimal representation. Implements fmt.Stringer.
func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Base2 returns a binary string representation, mainly useful for
// inspecting an id's field boundaries while debugging.
func (id ID) Base2() string {
	return strconv.FormatInt(int64(id), 2)
}

// Base32 returns a lowercase z-base-32 encoded string, whose alphabet
// omits 0, l, v and 2. ParseBase32 accepts lowercase input only.
func (id ID) Base32() string {
	return encodeBase32(int64(id))
}

// Base36 returns a base36 (0-9, a-z) encoded string.
func (id ID) Base36() string {
	return strconv.FormatInt(int64(id), 36)
}

// Base58 returns a Bitcoin-style base58 encoded string, excluding 0, O,
// I, and l to reduce transcription errors.
func (id ID) Base58() string {
	return encodeBase58(int64(id))
}

// Base62 returns a URL-safe base62 (0-9, a-z, A-Z) encoded string.
func (id ID) Base62() string {
	return encodeBase62(int64(id))
}

// Base64 returns a standard base64 encoded string.
func (id ID) Base64() string {
	return base64.StdEncoding.EncodeToString(id.Bytes())
}

// Base64URL returns a URL-safe base64 encoded string.
func (id ID) Base64URL() string {
	return base64.URLEncoding.EncodeToString(id.Bytes())
}

// Hex returns a lowercase hexadecimal representation.
func (id ID) Hex() string {
	return encodeHex(int64(id))
}

// Bytes returns the decimal string form as a byte slice. For a compact
// binary form, use IntBytes.
func (id ID) Bytes() []byte {
	return []byte(id.String())
}

// IntBytes returns the id as an 8-byte big-endian integer.
func (id ID) IntBytes() [8]byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(id))
	return b
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (id ID) MarshalBinary() ([]byte, error) {
	b := id.IntBytes()
	return b[:], nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (id *ID) UnmarshalBinary(data []byte) error {
	if len(data) != 8 {
		return fmt.Errorf("snowflake: invalid binary id length: %d", len(data))
	}
	*id = ID(int64(binary.BigEndian.Uint64(data)))
	return nil
}

// MarshalJSON implements json.Marshaler, encoding as a JSON string rather
// than a number: JavaScript's Number type cannot safely represent the
// full range of a 64-bit id.
func (id ID) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(`"%d"`, id)), nil
}

// UnmarshalJSON implements json.Unmarshaler, accepting either a quoted
// string or a bare number.
func (id *ID) UnmarshalJSON(data []byte) error {
	if len(data) < 1 {
		return fmt.Errorf("snowflake: invalid JSON id: %q", data)
	}
	str := string(data)
	if len(str) >= 2 && str[0] == '"' && str[len(str)-1] == '"' {
		str = str[1 : len(str)-1]
	}
	i, err := strconv.ParseInt(str, 10, 64)
	if err != nil {
		return fmt.Errorf("snowflake: invalid id: %w", err)
	}
	*id = ID(i)
	return nil
}

// MarshalText implements encoding.TextMarshaler, for XML/YAML/TOML/CSV.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(text []byte) error {
	i, err := strconv.ParseInt(string(text), 10, 64)
	if err != nil {
		return err
	}
	*id = ID(i)
	return nil
}

// Scan implements sql.Scanner, accepting int64, []byte, string, or nil.
func (id *ID) Scan(value interface{}) error {
	if value == nil {
		*id = 0
		return nil
	}
	switch v := value.(type) {
	case int64:
		*id = ID(v)
	case []byte:
		i, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return err
		}
		*id = ID(i)
	case string:
		i, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return err
		}
		*id = ID(i)
	default:
		return fmt.Errorf("snowflake: cannot scan %T into ID", value)
	}
	return nil
}

// Value implements driver.Valuer, storing the id as a plain int64 (BIGINT).
func (id ID) Value() (driver.Value, error) {
	return int64(id), nil
}

// ParseString parses a decimal string into an ID.
func ParseString(s string) (ID, error) {
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return ID(i), nil
}

// ParseInt64 converts a raw int64 into an ID.
func ParseInt64(i int64) ID { return ID(i) }

// ParseBase2 parses a binary string into an ID.
func ParseBase2(s string) (ID, error) {
	i, err := strconv.ParseInt(s, 2, 64)
	if err != nil {
		return 0, ErrInvalidBase2
	}
	return ID(i), nil
}

// ParseBase32 parses a z-base-32 string into an ID.
func ParseBase32(s string) (ID, error) {
	i, err := decodeBase32(s)
	if err != nil {
		return 0, err
	}
	return ID(i), nil
}

// ParseBase36 parses a base36 string into an ID.
func ParseBase36(s string) (ID, error) {
	i, err := strconv.ParseInt(s, 36, 64)
	if err != nil {
		return 0, ErrInvalidBase36
	}
	return ID(i), nil
}

// ParseBase58 parses a Bitcoin-style base58 string into an ID.
func ParseBase58(s string) (ID, error) {
	i, err := decodeBase58(s)
	if err != nil {
		return 0, err
	}
	return ID(i), nil
}

// ParseBase62 parses a URL-safe base62 string into an ID.
func ParseBase62(s string) (ID, error) {
	i, err := decodeBase62(s)
	if err != nil {
		return 0, err
	}
	return ID(i), nil
}

// ParseBase64 parses a standard base64 string into an ID.
func ParseBase64(s string) (ID, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return 0, ErrInvalidBase64
	}
	return ParseBytes(b)
}

// ParseBase64URL parses a URL-safe base64 string into an ID.
func ParseBase64URL(s string) (ID, error) {
	b, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return 0, ErrInvalidBase64
	}
	return ParseBytes(b)
}

// ParseHex parses a hexadecimal string (either case) into an ID.
func ParseHex(s string) (ID, error) {
	i, err := decodeHex(s)
	if err != nil {
		return 0, err
	}
	return ID(i), nil
}

// ParseBytes parses a decimal string given as bytes into an ID.
func ParseBytes(b []byte) (ID, error) {
	return ParseString(string(b))
}

// ParseIntBytes parses an 8-byte big-endian integer into an ID.
func ParseIntBytes(b [8]byte) ID {
	return ID(int64(binary.BigEndian.Uint64(b[:])))
}

// Time returns the generation time of the id, assuming DefaultLayout and
// DefaultEpoch. For ids minted under a different layout or epoch, use
// TimeWithLayout.
func (id ID) Time() time.Time {
	deltaSeconds, _, _, _ := DefaultLayout.Parse(int64(id))
	return time.Unix(DefaultEpoch+deltaSeconds, 0)
}

// TimeWithLayout returns the generation time of the id under the given
// layout and epoch (seconds since the Unix epoch).
func (id ID) TimeWithLayout(layout BitLayout, epochSeconds int64) time.Time {
	deltaSeconds, _, _, _ := layout.Parse(int64(id))
	return time.Unix(epochSeconds+deltaSeconds, 0)
}

// Worker returns the worker-id component, assuming DefaultLayout.
func (id ID) Worker() int64 {
	_, workerID, _, _ := DefaultLayout.Parse(int64(id))
	return workerID
}

// WorkerWithLayout returns the worker-id component under the given layout.
func (id ID) WorkerWithLayout(layout BitLayout) int64 {
	_, workerID, _, _ := layout.Parse(int64(id))
	return workerID
}

// Sequence returns the intra-second sequence component, assuming
// DefaultLayout.
func (id ID) Sequence() int64 {
	_, _, seq, _ := DefaultLayout.Parse(int64(id))
	return seq
}

// SequenceWithLayout returns the sequence component under the given layout.
func (id ID) SequenceWithLayout(layout BitLayout) int64 {
	_, _, seq, _ := layout.Parse(int64(id))
	return seq
}

// Components returns all three fields at once, assuming DefaultLayout and
// DefaultEpoch.
func (id ID) Components() (generatedAt time.Time, workerID int64, sequence int64) {
	deltaSeconds, worker, seq, _ := DefaultLayout.Parse(int64(id))
	return time.Unix(DefaultEpoch+deltaSeconds, 0), worker, seq
}

// ComponentsWithLayout returns all three fields at once under the given
// layout and epoch.
func (id ID) ComponentsWithLayout(layout BitLayout, epochSeconds int64) (generatedAt time.Time, workerID int64, sequence int64) {
	deltaSeconds, worker, seq, _ := layout.Parse(int64(id))
	return time.Unix(epochSeconds+deltaSeconds, 0), worker, seq
}

// IsValid reports whether the id has a structurally sound shape under
// DefaultLayout and DefaultEpoch: positive, not generated more than a
// minute in the future (clock skew allowance), and with a worker/sequence
// within the layout's fields. It cannot detect a forged id that happens
// to satisfy these bounds.
func (id ID) IsValid() bool {
	return id.IsValidWithLayout(DefaultLayout, DefaultEpoch)
}

// IsValidWithLayout is IsValid against an explicit layout and epoch.
func (id ID) IsValidWithLayout(layout BitLayout, epochSeconds int64) bool {
	deltaSeconds, worker, seq, ok := layout.Parse(int64(id))
	if !ok {
		return false
	}
	generatedAt := epochSeconds + deltaSeconds
	now := time.Now().Unix()
	if generatedAt > now+60 {
		return false
	}
	if worker < 0 || worker > layout.MaxWorkerID() {
		return false
	}
	if seq < 0 || seq > layout.MaxSequence() {
		return false
	}
	return true
}

// Age returns the duration since the id was generated, assuming
// DefaultLayout and DefaultEpoch.
func (id ID) Age() time.Duration {
	return time.Since(id.Time())
}

// Before reports whether id was generated before other. Snowflake-style
// ids are time-ordered, so this is a plain numeric comparison.
func (id ID) Before(other ID) bool { return id < other }

// After reports whether id was generated after other.
func (id ID) After(other ID) bool { return id > other }

// Equal reports whether id and other are identical.
func (id ID) Equal(other ID) bool { return id == other }

// Compare returns -1, 0, or 1 as id is less than, equal to, or greater
// than other.
func (id ID) Compare(other ID) int {
	switch {
	case id < other:
		return -1
	case id > other:
		return 1
	default:
		return 0
	}
}

// Shard returns id mod numShards, for simple even distribution across
// partitions. Does not preserve time-ordering within a shard.
func (id ID) Shard(numShards int64) int64 {
	if numShards <= 0 {
		return 0
	}
	return int64(id) % numShards
}

// ShardByWorker routes by the id's worker component (DefaultLayout),
// so every id from a given worker always lands on the same shard.
func (id ID) ShardByWorker(numShards int64) int64 {
	if numShards <= 0 {
		return 0
	}
	return id.Worker() % numShards
}

// ShardByTime buckets the id by generation time (DefaultLayout,
// DefaultEpoch) into fixed-size windows, for time-series partitioning.
func (id ID) ShardByTime(bucketSize time.Duration) int64 {
	if bucketSize <= 0 {
		return 0
	}
	return id.Time().Unix() / int64(bucketSize.Seconds())
}

// Format renders the id in the named encoding: "hex"/"x", "binary"/"bin"/"b",
// "base32"/"b32"/"32", "base36"/"b36"/"36", "base58"/"b58"/"58",
// "base62"/"b62"/"62", "base64"/"b64"/"64", or "decimal"/"dec"/"d"/"" (default).
func (id ID) Format(format string) string {
	switch format {
	case "hex", "x":
		return id.Hex()
	case "binary", "bin", "b":
		return id.Base2()
	case "base32", "b32", "32":
		return id.Base32()
	case "base36", "b36", "36":
		return id.Base36()
	case "base58", "b58", "58":
		return id.Base58()
	case "base62", "b62", "62":
		return id.Base62()
	case "base64", "b64", "64":
		return id.Base64()
	default:
		return id.String()
	}
}

// IDWithFormat wraps an ID so json.Marshal emits it in a chosen encoding
// instead of the default quoted-decimal form.
type IDWithFormat struct {
	ID     ID
	Format string
}

// MarshalJSON implements json.Marshaler using the wrapped Format.
func (idf IDWithFormat) MarshalJSON() ([]byte, error) {
	return json.Marshal(idf.ID.Format(idf.Format))
}
