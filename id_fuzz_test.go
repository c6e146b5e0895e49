package snowflake

import (
	"encoding/json"
	"testing"
	"time"
)

// FuzzIDComponents tests component extraction from random ID values.
func FuzzIDComponents(f *testing.F) {
	seeds := []int64{
		0,
		1,
		1 << 41,
		(1 << 22) - 1,
		(42 << 10) | 100,
		(1 << 41) | (42 << 10) | 100,
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, idVal int64) {
		id := ID(idVal)

		worker := id.Worker()
		sequence := id.Sequence()

		if worker < 0 || worker > DefaultLayout.MaxWorkerID() {
			t.Errorf("Worker() = %d, out of range [0, %d]", worker, DefaultLayout.MaxWorkerID())
		}
		if sequence < 0 || sequence > DefaultLayout.MaxSequence() {
			t.Errorf("Sequence() = %d, out of range [0, %d]", sequence, DefaultLayout.MaxSequence())
		}

		_, wid, seq := id.Components()
		if wid != worker || seq != sequence {
			t.Errorf("Components() mismatch: got (%d,%d), want (%d,%d)", wid, seq, worker, sequence)
		}
	})
}

// FuzzIDJSON tests JSON marshaling/unmarshaling round-trips.
func FuzzIDJSON(f *testing.F) {
	seeds := []int64{0, 1, 1 << 41, 9223372036854775807}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, original int64) {
		id := ID(original)

		data, err := json.Marshal(id)
		if err != nil {
			t.Errorf("json.Marshal() failed for ID %d: %v", original, err)
			return
		}

		var decoded ID
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Errorf("json.Unmarshal() failed for ID %d (JSON: %s): %v", original, string(data), err)
			return
		}

		if decoded != id {
			t.Errorf("JSON round-trip failed: original=%d, decoded=%d (JSON: %s)", id, decoded, string(data))
		}
	})
}

// FuzzIDTime tests time-related operations on IDs never panic.
func FuzzIDTime(f *testing.F) {
	seeds := []int64{0, 1, DefaultEpoch, 1 << 41, (1 << 41) | (1 << 10) | 1}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, idVal int64) {
		id := ID(idVal)

		idTime := id.Time()
		unixEpoch := time.Unix(0, 0)
		_ = idTime.Before(unixEpoch)
		_ = id.Age()
	})
}

// FuzzIDComparison tests comparison operations between IDs.
func FuzzIDComparison(f *testing.F) {
	seeds := [][2]int64{
		{0, 0},
		{0, 1},
		{1, 0},
		{100, 200},
		{1 << 41, 1 << 40},
		{9223372036854775807, 9223372036854775806},
	}
	for _, seed := range seeds {
		f.Add(seed[0], seed[1])
	}

	f.Fuzz(func(t *testing.T, id1Val, id2Val int64) {
		id1 := ID(id1Val)
		id2 := ID(id2Val)

		equal := id1.Equal(id2)
		if equal != (id1Val == id2Val) {
			t.Errorf("Equal() inconsistent: id1=%d, id2=%d, Equal()=%v, should be %v",
				id1Val, id2Val, equal, id1Val == id2Val)
		}

		before := id1.Before(id2)
		after := id1.After(id2)
		if id1Val < id2Val && !before {
			t.Errorf("Before() should be true: id1=%d < id2=%d", id1Val, id2Val)
		}
		if id1Val > id2Val && !after {
			t.Errorf("After() should be true: id1=%d > id2=%d", id1Val, id2Val)
		}
		if before && after {
			t.Errorf("Before() and After() both true: id1=%d, id2=%d", id1Val, id2Val)
		}

		cmp := id1.Compare(id2)
		if id1Val < id2Val && cmp >= 0 {
			t.Errorf("Compare() should be negative: id1=%d < id2=%d, got %d", id1Val, id2Val, cmp)
		}
		if id1Val > id2Val && cmp <= 0 {
			t.Errorf("Compare() should be positive: id1=%d > id2=%d, got %d", id1Val, id2Val, cmp)
		}
		if id1Val == id2Val && cmp != 0 {
			t.Errorf("Compare() should be zero: id1=%d == id2=%d, got %d", id1Val, id2Val, cmp)
		}
	})
}

// FuzzIDSharding tests sharding operations stay in range and are deterministic.
func FuzzIDSharding(f *testing.F) {
	seeds := []struct {
		id        int64
		numShards int64
	}{
		{1, 10},
		{100, 16},
		{1 << 41, 100},
		{9223372036854775807, 256},
	}
	for _, seed := range seeds {
		f.Add(seed.id, seed.numShards)
	}

	f.Fuzz(func(t *testing.T, idVal int64, numShards int64) {
		if numShards <= 0 {
			return
		}
		id := ID(idVal)

		shard := id.Shard(numShards)
		if shard < 0 || shard >= numShards {
			t.Errorf("Shard(%d) = %d, out of range [0, %d)", numShards, shard, numShards)
		}
		if shard2 := id.Shard(numShards); shard != shard2 {
			t.Errorf("Shard() not deterministic: first=%d, second=%d", shard, shard2)
		}

		shardByWorker := id.ShardByWorker(numShards)
		if shardByWorker < 0 || shardByWorker >= numShards {
			t.Errorf("ShardByWorker(%d) = %d, out of range [0, %d)", numShards, shardByWorker, numShards)
		}

		if shardByTime := id.ShardByTime(time.Hour); shardByTime < 0 {
			t.Errorf("ShardByTime() = %d, should be non-negative", shardByTime)
		}
	})
}

// FuzzIDConversions tests type conversions (Int64, Uint64, String).
func FuzzIDConversions(f *testing.F) {
	seeds := []int64{0, 1, -1, 9223372036854775807, -9223372036854775808}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, original int64) {
		id := ID(original)

		if i64 := id.Int64(); i64 != original {
			t.Errorf("Int64() = %d, want %d", i64, original)
		}

		u64 := id.Uint64()
		if original >= 0 && int64(u64) != original {
			t.Errorf("Uint64() = %d, want %d", u64, original)
		}

		str := id.String()
		if str == "" {
			t.Errorf("String() produced empty string for ID %d", original)
			return
		}
		parsed, err := ParseString(str)
		if err != nil {
			t.Errorf("ParseString(%q) failed: %v", str, err)
		} else if parsed != id {
			t.Errorf("String round-trip: original=%d, parsed=%d (str=%s)", id, parsed, str)
		}
	})
}

// FuzzIDFormat tests the Format method never panics for any format specifier.
func FuzzIDFormat(f *testing.F) {
	formats := []string{
		"hex", "x",
		"binary", "bin", "b",
		"base32", "b32", "32",
		"base58", "b58", "58",
		"base62", "b62", "62",
		"base64", "b64", "64",
		"decimal", "dec", "d",
		"", "unknown",
	}
	seeds := []int64{0, 1, 1 << 41, 9223372036854775807}
	for _, id := range seeds {
		for _, format := range formats {
			f.Add(id, format)
		}
	}

	f.Fuzz(func(t *testing.T, idVal int64, format string) {
		id := ID(idVal)
		result := id.Format(format)
		if idVal >= 0 && len(result) == 0 {
			t.Errorf("Format(%q) produced empty string for ID %d", format, idVal)
		}
	})
}

// FuzzIDValidation ensures IsValid never panics.
func FuzzIDValidation(f *testing.F) {
	seeds := []int64{0, 1, -1, 100, 1 << 41, 9223372036854775807, -9223372036854775808}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, idVal int64) {
		id := ID(idVal)
		_ = id.IsValid()
	})
}

// FuzzIntBytes tests the IntBytes conversion round-trips.
func FuzzIntBytes(f *testing.F) {
	seeds := []int64{0, 1, 255, 256, 65535, 65536, 1 << 41, 9223372036854775807}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, original int64) {
		id := ID(original)
		bytes := id.IntBytes()
		if len(bytes) != 8 {
			t.Errorf("IntBytes() returned %d bytes, want 8", len(bytes))
			return
		}
		if decoded := ParseIntBytes(bytes); decoded != id {
			t.Errorf("IntBytes round-trip failed: original=%d, decoded=%d", id, decoded)
		}
	})
}
