// Command snowflake is a CLI for generating and inspecting ids minted by
// this package.
//
// Usage:
//
//	snowflake generate [flags]       Generate ids
//	snowflake parse <id>             Parse and inspect an id
//	snowflake encode <id> <format>   Convert an id to a different format
//	snowflake validate <id>          Validate an id's structure
//	snowflake bench                  Run performance benchmarks
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/snowcore/idgen"
)

const version = "1.0.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "generate", "gen", "g":
		cmdGenerate(os.Args[2:])
	case "parse", "p":
		cmdParse(os.Args[2:])
	case "encode", "enc", "e":
		cmdEncode(os.Args[2:])
	case "validate", "val", "v":
		cmdValidate(os.Args[2:])
	case "bench", "benchmark", "b":
		cmdBench(os.Args[2:])
	case "version", "--version", "-v":
		fmt.Printf("snowflake CLI version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `snowflake - distributed unique id generator

Usage:
  snowflake <command> [flags]

Commands:
  generate, gen, g      Generate ids
  parse, p              Parse and inspect an id
  encode, enc, e        Convert an id between formats
  validate, val, v      Validate an id's structure
  bench, b              Run performance benchmarks
  version               Show version information
  help                  Show this help message

Examples:
  snowflake generate --worker 42
  snowflake generate --count 10 --format base62 --worker 42
  snowflake generate --config snowflake.yaml --worker 42
  snowflake parse 1234567890123456789
  snowflake encode 1234567890123456789 base62
  snowflake validate 1234567890123456789
  snowflake bench --duration 5s

generate and bench accept --config to load layout, epoch, and clock
regression policy from a config file's "snowflake" section instead of
the built-in defaults. A config with "enabled: false" exits with an
error rather than minting.
`)
}

func newMinter(workerID int64) (*snowflake.Minter, error) {
	return snowflake.NewMinter(context.Background(), snowflake.DefaultLayout, snowflake.DefaultEpoch,
		snowflake.StaticWorkerIDSource(workerID), snowflake.RegressionTolerant, 1)
}

// newConfiguredMinter builds a Minter from a config file at path, the same
// "snowflake" section a CachedGenerator would load via LoadConfig. Returns
// ErrDisabled if the config's enabled flag is false, matching the way
// NewCachedGenerator refuses to mint for a disabled config.
func newConfiguredMinter(path string, workerID int64) (*snowflake.Minter, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg, err := snowflake.LoadConfig(v)
	if err != nil {
		return nil, err
	}
	if !cfg.Enabled {
		return nil, snowflake.ErrDisabled
	}

	epoch, err := cfg.EpochSeconds()
	if err != nil {
		return nil, err
	}
	return snowflake.NewMinter(context.Background(), cfg.Layout(), epoch,
		snowflake.StaticWorkerIDSource(workerID), cfg.RegressionPolicy(), cfg.MaxBackwardSeconds)
}

// resolveMinter picks the configured-file path when configPath is non-empty,
// falling back to the hardcoded DefaultLayout/DefaultEpoch minter otherwise.
// Exits the process with a clear message if the config disables the
// subsystem, rather than silently minting anyway.
func resolveMinter(configPath string, workerID int64) *snowflake.Minter {
	if configPath == "" {
		minter, err := newMinter(workerID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating minter: %v\n", err)
			os.Exit(1)
		}
		return minter
	}

	minter, err := newConfiguredMinter(configPath, workerID)
	if err != nil {
		if errors.Is(err, snowflake.ErrDisabled) {
			fmt.Fprintf(os.Stderr, "snowflake subsystem is disabled by %s (enabled: false)\n", configPath)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Error creating minter from %s: %v\n", configPath, err)
		os.Exit(1)
	}
	return minter
}

func cmdGenerate(args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	count := fs.Int("count", 1, "Number of ids to generate")
	workerID := fs.Int64("worker", 0, "Worker id")
	format := fs.String("format", "decimal", "Output format: decimal, base32, base58, base62, hex, binary")
	jsonOutput := fs.Bool("json", false, "Output as JSON")
	configPath := fs.String("config", "", "Path to a config file with a \"snowflake\" section (overrides --worker's layout/epoch/regression policy, but not the worker id itself)")
	fs.Parse(args)

	minter := resolveMinter(*configPath, *workerID)

	var err error
	ctx := context.Background()
	ids := make([]snowflake.ID, *count)
	start := time.Now()
	for i := 0; i < *count; i++ {
		ids[i], err = minter.NextID(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating id: %v\n", err)
			os.Exit(1)
		}
	}
	duration := time.Since(start)

	if *jsonOutput {
		outputJSON(ids, duration, *workerID)
		return
	}
	for _, id := range ids {
		fmt.Println(formatID(id, *format))
	}
	if *count > 100 {
		fmt.Fprintf(os.Stderr, "\ngenerated %d ids in %v (%.0f ids/sec)\n",
			*count, duration, float64(*count)/duration.Seconds())
	}
}

func formatID(id snowflake.ID, format string) string {
	switch strings.ToLower(format) {
	case "base32", "b32":
		return id.Base32()
	case "base58", "b58":
		return id.Base58()
	case "base62", "b62":
		return id.Base62()
	case "hex", "x":
		return id.Hex()
	case "binary", "bin":
		return id.Base2()
	default:
		return id.String()
	}
}

func outputJSON(ids []snowflake.ID, duration time.Duration, workerID int64) {
	type idInfo struct {
		ID          string    `json:"id"`
		Base62      string    `json:"base62"`
		Hex         string    `json:"hex"`
		GeneratedAt time.Time `json:"generated_at"`
		Worker      int64     `json:"worker"`
		Sequence    int64     `json:"sequence"`
	}
	type output struct {
		Count      int      `json:"count"`
		WorkerID   int64    `json:"worker_id"`
		Duration   string   `json:"duration"`
		RatePerSec float64  `json:"rate_per_sec"`
		IDs        []idInfo `json:"ids"`
	}

	infos := make([]idInfo, len(ids))
	for i, id := range ids {
		generatedAt, worker, seq := id.Components()
		infos[i] = idInfo{
			ID: id.String(), Base62: id.Base62(), Hex: id.Hex(),
			GeneratedAt: generatedAt, Worker: worker, Sequence: seq,
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(output{
		Count: len(ids), WorkerID: workerID, Duration: duration.String(),
		RatePerSec: float64(len(ids)) / duration.Seconds(), IDs: infos,
	})
}

func parseIDFlexible(idStr string) (snowflake.ID, error) {
	if id, err := snowflake.ParseString(idStr); err == nil {
		return id, nil
	}
	if id, err := snowflake.ParseBase62(idStr); err == nil {
		return id, nil
	}
	if id, err := snowflake.ParseBase58(idStr); err == nil {
		return id, nil
	}
	if id, err := snowflake.ParseHex(idStr); err == nil {
		return id, nil
	}
	return snowflake.ParseBase32(idStr)
}

func cmdParse(args []string) {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "Usage: snowflake parse <id>\n")
		os.Exit(1)
	}

	id, err := parseIDFlexible(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: unable to parse id %q\n", args[0])
		os.Exit(1)
	}

	generatedAt, worker, seq := id.Components()
	fmt.Printf("id: %s\n\n", id)
	fmt.Printf("components:\n")
	fmt.Printf("  generated at: %s\n", generatedAt.Format(time.RFC3339))
	fmt.Printf("  worker id:    %d\n", worker)
	fmt.Printf("  sequence:     %d\n", seq)
	fmt.Printf("\nencodings:\n")
	fmt.Printf("  decimal: %s\n", id.String())
	fmt.Printf("  base62:  %s\n", id.Base62())
	fmt.Printf("  base58:  %s\n", id.Base58())
	fmt.Printf("  base32:  %s\n", id.Base32())
	fmt.Printf("  hex:     %s\n", id.Hex())
	fmt.Printf("\nage:   %v\n", id.Age().Round(time.Millisecond))
	fmt.Printf("valid: %v\n", id.IsValid())
}

func cmdEncode(args []string) {
	if len(args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: snowflake encode <id> <format>\n")
		os.Exit(1)
	}
	id, err := parseIDFlexible(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: unable to parse id %q: %v\n", args[0], err)
		os.Exit(1)
	}
	fmt.Println(formatID(id, args[1]))
}

func cmdValidate(args []string) {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "Usage: snowflake validate <id>\n")
		os.Exit(1)
	}

	id, err := parseIDFlexible(args[0])
	if err != nil {
		fmt.Printf("INVALID: unable to parse id %q: %v\n", args[0], err)
		os.Exit(1)
	}

	generatedAt, worker, seq := id.Components()
	if !id.IsValid() {
		fmt.Printf("INVALID: id structure is invalid\n\ncomponents:\n")
		fmt.Printf("  generated at: %d (delta seconds)\n", generatedAt.Unix()-snowflake.DefaultEpoch)
		fmt.Printf("  worker id:    %d (valid range: 0-%d)\n", worker, snowflake.DefaultLayout.MaxWorkerID())
		fmt.Printf("  sequence:     %d (valid range: 0-%d)\n", seq, snowflake.DefaultLayout.MaxSequence())
		os.Exit(1)
	}

	fmt.Printf("VALID: id structure is valid\n\ncomponents:\n")
	fmt.Printf("  generated at: %s\n", generatedAt.Format(time.RFC3339))
	fmt.Printf("  worker id:    %d\n", worker)
	fmt.Printf("  sequence:     %d\n", seq)
	fmt.Printf("  age:          %v\n", id.Age().Round(time.Millisecond))
}

func cmdBench(args []string) {
	fs := flag.NewFlagSet("bench", flag.ExitOnError)
	duration := fs.Duration("duration", 3*time.Second, "Benchmark duration")
	workerID := fs.Int64("worker", 0, "Worker id")
	configPath := fs.String("config", "", "Path to a config file with a \"snowflake\" section")
	fs.Parse(args)

	minter := resolveMinter(*configPath, *workerID)

	ctx := context.Background()
	fmt.Printf("running benchmarks (duration: %v, worker: %d)\n\n", *duration, *workerID)

	fmt.Printf("1. direct minting:\n")
	count := 0
	start := time.Now()
	deadline := start.Add(*duration)
	var lastErr error
	for time.Now().Before(deadline) {
		if _, err := minter.NextID(ctx); err != nil {
			lastErr = err
			break
		}
		count++
	}
	elapsed := time.Since(start)
	fmt.Printf("   generated: %d ids\n", count)
	fmt.Printf("   duration:  %v\n", elapsed)
	fmt.Printf("   rate:      %.0f ids/sec (%.0f ns/op)\n", float64(count)/elapsed.Seconds(),
		float64(elapsed.Nanoseconds())/float64(count))
	if lastErr != nil {
		fmt.Printf("   stopped early: %v\n", lastErr)
	}

	testID, err := minter.NextID(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating test id: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\n2. encoding performance (1000 ops):\n")
	for _, enc := range []struct {
		name string
		fn   func() string
	}{
		{"decimal", testID.String}, {"base62", testID.Base62},
		{"base58", testID.Base58}, {"base32", testID.Base32}, {"hex", testID.Hex},
	} {
		start := time.Now()
		for i := 0; i < 1000; i++ {
			_ = enc.fn()
		}
		fmt.Printf("   %-8s %6.0f ns/op\n", enc.name+":", float64(time.Since(start).Nanoseconds())/1000)
	}

	fmt.Printf("\nbenchmark complete\n")
}
