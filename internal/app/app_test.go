package app

import (
	"os"
	"path/filepath"
	"testing"

	crerr "github.com/cockroachdb/errors"

	"github.com/copperpitch/youthrank/internal/config"
	"github.com/copperpitch/youthrank/internal/platform/logging"
	"github.com/copperpitch/youthrank/internal/usecase"
)

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: ExitOK},
		{name: "invalid args", err: crerr.Mark(crerr.New("bad flag"), usecase.ErrInvalidArgument), want: ExitInvalidArgs},
		{name: "unknown division", err: crerr.Mark(crerr.New("nope"), usecase.ErrUnknownDivision), want: ExitUnknownDivision},
		{name: "threshold exceeded", err: crerr.Mark(crerr.New("too many"), usecase.ErrThresholdExceeded), want: ExitThresholdExceeded},
		{name: "malformed input", err: crerr.Mark(crerr.New("bad csv"), usecase.ErrMalformedInput), want: ExitMalformedInput},
		{name: "wrapped sentinel", err: crerr.Wrap(crerr.Mark(crerr.New("nope"), usecase.ErrUnknownDivision), "outer"), want: ExitUnknownDivision},
		{name: "anything else", err: crerr.New("boom"), want: ExitFailure},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ExitCode(tt.err); got != tt.want {
				t.Fatalf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBuildRegistryBuiltIn(t *testing.T) {
	t.Parallel()

	cfg := config.Config{BaseURL: "https://system.gotsport.com"}
	registry, err := buildRegistry(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("buildRegistry() error = %v", err)
	}
	if registry.Len() != 20 {
		t.Fatalf("built-in registry has %d divisions, want 20", registry.Len())
	}
	if _, ok := registry.Get("az_boys_u11"); !ok {
		t.Fatal("az_boys_u11 missing from built-in registry")
	}
}

func TestBuildRegistryFileCollapsesDuplicates(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "divisions.json")
	content := `[
		{"key":"az_boys_u11","name":"AZ Boys U11","state":"AZ","gender":"m","age":11,"roster_url":"https://example.com/first","active":true},
		{"key":"az_boys_u11","name":"AZ Boys U11 dup","state":"AZ","gender":"m","age":11,"roster_url":"https://example.com/second","active":true}
	]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Config{BaseURL: "https://system.gotsport.com", DivisionsFile: path}
	registry, err := buildRegistry(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("buildRegistry() error = %v", err)
	}
	if registry.Len() != 1 {
		t.Fatalf("registry has %d divisions, want 1", registry.Len())
	}
	d, _ := registry.Get("az_boys_u11")
	if d.RosterURL != "https://example.com/first" {
		t.Fatalf("duplicate collapse kept %q, want the first record", d.RosterURL)
	}
}

func TestBuildRegistryFileMalformed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "divisions.json")
	if err := os.WriteFile(path, []byte("{not an array"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Config{BaseURL: "https://system.gotsport.com", DivisionsFile: path}
	if _, err := buildRegistry(cfg, logging.NewNop()); !crerr.Is(err, usecase.ErrMalformedInput) {
		t.Fatalf("buildRegistry() error = %v, want ErrMalformedInput", err)
	}
}
