package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDecodeOverlaysDefaults(t *testing.T) {
	t.Parallel()

	cfg := Default()
	err := Decode([]byte(`
storage:
  kind: mysql
  retry:
    max_elapsed: 45s
parser:
  comma: tab
schema:
  fold_accents: true
`), &cfg)
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.Storage.Kind)
	assert.Equal(t, 45*time.Second, cfg.Storage.Retry.MaxElapsed)
	assert.Equal(t, 500, cfg.Storage.BatchSize, "untouched keys keep defaults")
	assert.True(t, cfg.Storage.CreateDatabase)
	assert.True(t, cfg.Schema.FoldAccents)
	assert.Equal(t, "tab", cfg.Parser.Comma)
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	t.Parallel()

	cfg := Default()
	err := Decode([]byte("storage:\n  kinde: postgres\n"), &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kinde")
}

func TestDecodeEmpty(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, Decode(nil, &cfg))
	assert.Equal(t, Default(), cfg)
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	cfg := Default()
	err := ApplyEnv(&cfg, envMap(map[string]string{
		"TOSQL_STORAGE_KIND":              "sqlite",
		"TOSQL_STORAGE_BATCH_SIZE":        "50",
		"TOSQL_STORAGE_CREATE_DATABASE":   "false",
		"TOSQL_STORAGE_RETRY_MAX_ELAPSED": "1m",
		"TOSQL_RUNTIME_WORKERS":           "2",
		"TOSQL_SCHEMA_FOLD_ACCENTS":       "true",
		"TOSQL_DATABASE":                  "sales",
	}))
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Storage.Kind)
	assert.Equal(t, 50, cfg.Storage.BatchSize)
	assert.False(t, cfg.Storage.CreateDatabase)
	assert.Equal(t, time.Minute, cfg.Storage.Retry.MaxElapsed)
	assert.Equal(t, 2, cfg.Runtime.Workers)
	assert.True(t, cfg.Schema.FoldAccents)
	assert.Equal(t, "sales", cfg.Database)
}

func TestApplyEnvReportsEveryBadValue(t *testing.T) {
	t.Parallel()

	cfg := Default()
	err := ApplyEnv(&cfg, envMap(map[string]string{
		"TOSQL_STORAGE_BATCH_SIZE": "lots",
		"TOSQL_LOG_VERBOSE":        "sure",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TOSQL_STORAGE_BATCH_SIZE")
	assert.Contains(t, err.Error(), "TOSQL_LOG_VERBOSE")
	assert.Equal(t, 500, cfg.Storage.BatchSize)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "tosql.yaml")
	require.NoError(t, os.WriteFile(p, []byte("job: nightly\nstorage:\n  batch_size: 10\n"), 0o644))
	t.Setenv("TOSQL_STORAGE_BATCH_SIZE", "20")

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "nightly", cfg.Job)
	assert.Equal(t, 20, cfg.Storage.BatchSize, "environment beats the file")

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(p, []byte("TOSQL_TEST_DOTENV_A=file\nTOSQL_TEST_DOTENV_B=file\n"), 0o644))
	t.Setenv("TOSQL_TEST_DOTENV_A", "process")
	t.Cleanup(func() { os.Unsetenv("TOSQL_TEST_DOTENV_B") })

	require.NoError(t, LoadDotEnv(p))
	assert.Equal(t, "process", os.Getenv("TOSQL_TEST_DOTENV_A"))
	assert.Equal(t, "file", os.Getenv("TOSQL_TEST_DOTENV_B"))

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "absent.env")))
}

func TestResolveDatabase(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		want    string
		wantErr bool
	}{
		{name: "from first input", cfg: Config{Inputs: []string{"/data/Sales Report.xlsx", "b.csv"}}, want: "sales_report"},
		{name: "explicit wins", cfg: Config{Database: "Keep", Inputs: []string{"a.csv"}}, want: "Keep"},
		{name: "no inputs", cfg: Config{}, want: ""},
		{name: "unusable name", cfg: Config{Inputs: []string{"/data/***.csv"}}, wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.cfg.Resolve()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, tt.cfg.Database)
		})
	}
}

func TestCommaRune(t *testing.T) {
	t.Parallel()

	cases := map[string]rune{"": 0, "tab": '\t', "TAB": '\t', `\t`: '\t', ";": ';', "|": '|', "\t": '\t'}
	for in, want := range cases {
		got, err := Parser{Comma: in}.CommaRune()
		require.NoErrorf(t, err, "CommaRune(%q)", in)
		assert.Equalf(t, want, got, "CommaRune(%q)", in)
	}
	for _, bad := range []string{";;", `"`, "\n"} {
		_, err := Parser{Comma: bad}.CommaRune()
		assert.Errorf(t, err, "CommaRune(%q)", bad)
	}
}

func TestIsSpreadsheet(t *testing.T) {
	t.Parallel()

	assert.True(t, IsSpreadsheet("a.XLSX", ""))
	assert.False(t, IsSpreadsheet("a.csv", ""))
	assert.True(t, IsSpreadsheet("a.csv", "excel"))
	assert.False(t, IsSpreadsheet("a.xlsx", "sv"))
}
