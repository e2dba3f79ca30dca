package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server_port: 8080
static_location: ./static
with_analyzer: true
mongo_endpoint: mongodb://localhost:27017
signature_length: 128
min_shingle_size: 1
max_shingle_size: 3
num_shingles_evaluated: 500
twitter_handles: ["alice", "bob"]
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ServerPort != 8080 || cfg.SignatureLength != 128 || len(cfg.TwitterHandles) != 2 {
		t.Fatalf("parsed config = %+v", cfg)
	}
}

func TestLoad_MissingFileIsError(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestHandleConfig_Projection(t *testing.T) {
	cfg := &Config{SignatureLength: 64, MinShingleSize: 2, MaxShingleSize: 4, NumShinglesEvaluated: 200}
	hc := cfg.HandleConfig()
	if hc.L != 64 || hc.SMin != 2 || hc.SMax != 4 || hc.K != 200 {
		t.Fatalf("HandleConfig() = %+v", hc)
	}
}
