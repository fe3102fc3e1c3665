package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"autoupgrader/internal/domain/bestiary"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.ProfileID != "default" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.PollInterval != 150*time.Millisecond || cfg.OpenPollAttempts != 20 || cfg.ConfirmPollAttempts != 40 {
		t.Fatalf("unexpected poll defaults %+v", cfg)
	}
	if cfg.SettleDelay != 200*time.Millisecond || cfg.Cooldown != 300*time.Millisecond || cfg.MaxFodder != 3 {
		t.Fatalf("unexpected sequencing defaults %+v", cfg)
	}
}

func TestLoad_ReadsEnv(t *testing.T) {
	t.Setenv("AUTOUPGRADER_HTTP_ADDR", ":9999")
	t.Setenv("AUTOUPGRADER_POLL_INTERVAL", "50ms")
	t.Setenv("AUTOUPGRADER_MAX_FODDER", "5")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.HTTPAddr != ":9999" || cfg.PollInterval != 50*time.Millisecond || cfg.MaxFodder != 5 {
		t.Fatalf("env not applied: %+v", cfg)
	}
}

func TestLoad_RejectsBadValues(t *testing.T) {
	t.Setenv("AUTOUPGRADER_MAX_FODDER", "0")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for zero fodder cap")
	}
}

func TestLoad_RejectsUnparseableDuration(t *testing.T) {
	t.Setenv("AUTOUPGRADER_COOLDOWN", "soon")
	if _, err := Load(); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoadPolicyFile_MergesOverBase(t *testing.T) {
	path := writeFile(t, "policy.yaml", "level_threshold: 60\ntarget_species_ids: [12, 4, 12]\n")
	got, err := LoadPolicyFile(path, bestiary.DefaultPolicy())
	if err != nil {
		t.Fatalf("LoadPolicyFile error: %v", err)
	}
	if got.LevelThreshold != 60 {
		t.Fatalf("expected threshold 60, got %d", got.LevelThreshold)
	}
	if got.ReserveCountPerSpecies != bestiary.DefaultReserveCountPerSpecies || got.MaxFodderTier != bestiary.DefaultMaxFodderTier {
		t.Fatalf("missing keys should keep defaults, got %+v", got)
	}
	if len(got.TargetSpeciesIDs) != 2 || got.TargetSpeciesIDs[0] != 4 {
		t.Fatalf("expected normalized targets [4 12], got %v", got.TargetSpeciesIDs)
	}
}

func TestLoadPolicyFile_EmptyPathReturnsBase(t *testing.T) {
	base := bestiary.DefaultPolicy()
	base.LevelThreshold = 42
	got, err := LoadPolicyFile("", base)
	if err != nil || got.LevelThreshold != 42 {
		t.Fatalf("expected base back, got %+v err=%v", got, err)
	}
}

func TestLoadPolicyFile_RejectsInvalidTargets(t *testing.T) {
	path := writeFile(t, "policy.yaml", "target_species_ids: [0]\n")
	if _, err := LoadPolicyFile(path, bestiary.DefaultPolicy()); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoadSeedFile(t *testing.T) {
	path := writeFile(t, "seed.yaml", `monsters:
  - instance_id: a
    species_id: 3
    tier: 2
    level: 55
  - species_id: 3
    level: 4
`)
	got, err := LoadSeedFile(path)
	if err != nil {
		t.Fatalf("LoadSeedFile error: %v", err)
	}
	if len(got) != 2 || got[0].InstanceID != "a" || got[0].Tier != 2 || got[1].EffectiveTier() != 1 {
		t.Fatalf("unexpected seed %+v", got)
	}
}

func TestLoadSeedFile_RejectsMissingSpecies(t *testing.T) {
	path := writeFile(t, "seed.yaml", "monsters:\n  - level: 4\n")
	if _, err := LoadSeedFile(path); err == nil {
		t.Fatalf("expected error for missing species")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}
