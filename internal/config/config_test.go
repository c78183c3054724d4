package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/julianstephens/thirty/internal/constants"
)

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load() = %+v, want defaults %+v", cfg, Default())
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Config
		wantErr bool
	}{
		{
			name:    "full file",
			content: "timezone: Asia/Tokyo\nbackup_on_write: false\ndata_path: /tmp/thirty.json\n",
			want:    Config{Timezone: "Asia/Tokyo", BackupOnWrite: false, DataPath: "/tmp/thirty.json"},
		},
		{
			name:    "partial file keeps defaults",
			content: "timezone: UTC\n",
			want:    Config{Timezone: "UTC", BackupOnWrite: true},
		},
		{
			name:    "empty timezone falls back to local",
			content: "timezone: \"\"\n",
			want:    Config{Timezone: constants.DefaultTimezone, BackupOnWrite: true},
		},
		{
			name:    "invalid timezone",
			content: "timezone: Mars/Olympus\n",
			wantErr: true,
		},
		{
			name:    "invalid yaml",
			content: "timezone: [unterminated\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(FilePath(dir), []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			got, err := Load(dir)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Load() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	cfg := Config{Timezone: "Europe/Berlin", BackupOnWrite: false, DataPath: "postgres"}

	if err := Save(dir, cfg); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	got, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if got != cfg {
		t.Errorf("round trip = %+v, want %+v", got, cfg)
	}
}

func TestSetAndGet(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		want    string
		wantErr bool
	}{
		{key: constants.SettingTimezone, value: "UTC", want: "UTC"},
		{key: constants.SettingTimezone, value: "Nowhere/Special", wantErr: true},
		{key: constants.SettingBackupOnWrite, value: "false", want: "false"},
		{key: constants.SettingBackupOnWrite, value: "sometimes", wantErr: true},
		{key: constants.SettingDataPath, value: " /data/thirty.db ", want: "/data/thirty.db"},
		{key: "color", value: "blue", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			cfg := Default()
			err := cfg.Set(tt.key, tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Set() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			got, err := cfg.Get(tt.key)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Get() = %q, want %q", got, tt.want)
			}
		})
	}

	var cfg Config
	if _, err := cfg.Get("color"); !errors.Is(err, ErrUnknownSetting) {
		t.Errorf("Get(unknown) error = %v, want ErrUnknownSetting", err)
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	if err := LoadEnv(dir); err != nil {
		t.Fatalf("LoadEnv() without a file failed: %v", err)
	}

	content := constants.ConnectionEnvVar + "=host=localhost dbname=thirty\n"
	if err := os.WriteFile(filepath.Join(dir, constants.EnvFileName), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	t.Setenv(constants.ConnectionEnvVar, "")
	os.Unsetenv(constants.ConnectionEnvVar)
	if err := LoadEnv(dir); err != nil {
		t.Fatalf("LoadEnv() failed: %v", err)
	}
	if got := os.Getenv(constants.ConnectionEnvVar); got != "host=localhost dbname=thirty" {
		t.Errorf("env = %q, want value from .env", got)
	}

	t.Setenv(constants.ConnectionEnvVar, "already-set")
	if err := LoadEnv(dir); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv(constants.ConnectionEnvVar); got != "already-set" {
		t.Errorf("LoadEnv() overrode an existing variable: %q", got)
	}
}

func TestResolveDataPath(t *testing.T) {
	dir := "/cfg"
	tests := []struct {
		name string
		flag string
		cfg  Config
		want string
	}{
		{name: "default", want: filepath.Join(dir, constants.DefaultDataFile)},
		{name: "config file", cfg: Config{DataPath: "/data/a.json"}, want: "/data/a.json"},
		{name: "flag wins", flag: "/flag.db", cfg: Config{DataPath: "/data/a.json"}, want: "/flag.db"},
		{name: "postgres keyword", flag: constants.PostgresDataPath, want: constants.PostgresDataPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveDataPath(tt.flag, tt.cfg, dir)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("ResolveDataPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err := ExpandPath("~/.config/thirty")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(home, ".config/thirty"); got != want {
		t.Errorf("ExpandPath() = %q, want %q", got, want)
	}
	if got, _ := ExpandPath("/abs/path"); got != "/abs/path" {
		t.Errorf("ExpandPath() changed an absolute path: %q", got)
	}
}
