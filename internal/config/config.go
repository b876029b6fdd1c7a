package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

const (
	KeyCatalogPath  = "catalog.path"
	KeyShellProgram = "shell.program"
	KeyShellArgs    = "shell.args"
	KeyOutputFormat = "output.format"

	KeyHistoryEnabled = "history.enabled"
	KeyHistoryPath    = "history.path"

	KeyDebug        = "debug"
	KeyDebugLogPath = "debug-log"

	KeyFortiEDRHost         = "fortiedr.host"
	KeyFortiEDRUser         = "fortiedr.user"
	KeyFortiEDRPassword     = "fortiedr.password"
	KeyFortiEDROrganization = "fortiedr.organization"
	KeyFortiEDRTimeout      = "fortiedr.timeout"
)

const (
	// DirName is the per-user and per-project configuration directory.
	DirName = ".mitremenu"

	envPrefix   = "MM"
	dotEnvFile  = ".env"
	historyFile = "history.db"
)

// legacyEnv maps keys to the unprefixed FORTIEDR_* names used in .env files.
var legacyEnv = map[string]string{
	KeyFortiEDRHost:         "FORTIEDR_HOST",
	KeyFortiEDRUser:         "FORTIEDR_USER",
	KeyFortiEDRPassword:     "FORTIEDR_PASS",
	KeyFortiEDROrganization: "FORTIEDR_ORG",
}

type initSettings struct {
	workingDir        string
	projectConfigPath string
	userConfigPath    string
}

// Option configures Initialize behaviour. Useful for tests to override paths.
type Option func(*initSettings)

// WithWorkingDir overrides the directory used for project config and .env discovery.
func WithWorkingDir(dir string) Option {
	return func(cfg *initSettings) {
		cfg.workingDir = dir
	}
}

// WithProjectConfig explicitly sets the project config path instead of discovery.
func WithProjectConfig(path string) Option {
	return func(cfg *initSettings) {
		cfg.projectConfigPath = path
	}
}

// WithUserConfig overrides the default user config path.
func WithUserConfig(path string) Option {
	return func(cfg *initSettings) {
		cfg.userConfigPath = path
	}
}

var (
	configOnce sync.Once
	configMu   sync.RWMutex
	configInst *viper.Viper
	initErr    error
)

// Initialize loads configuration using the precedence:
// defaults < .env < user config < project config < environment variables < overrides.
func Initialize(opts ...Option) error {
	configOnce.Do(func() {
		settings := initSettings{}
		for _, opt := range opts {
			opt(&settings)
		}
		initErr = configure(&settings)
	})
	return initErr
}

// ApplyOverrides injects values typically coming from CLI flags.
func ApplyOverrides(overrides map[string]any) error {
	if len(overrides) == 0 {
		return nil
	}
	if err := Initialize(); err != nil {
		return err
	}
	configMu.Lock()
	defer configMu.Unlock()
	if configInst == nil {
		return fmt.Errorf("configuration not initialized")
	}
	for k, v := range overrides {
		configInst.Set(k, v)
	}
	return nil
}

// GetString fetches a string configuration value, initializing on demand.
func GetString(key string) string {
	v, err := getViper()
	if err != nil {
		return ""
	}
	return v.GetString(key)
}

// GetStringSlice fetches a list value. A plain string is split on whitespace so
// that `MM_SHELL_ARGS="-NoProfile -Command"` works from the environment.
func GetStringSlice(key string) []string {
	v, err := getViper()
	if err != nil {
		return nil
	}
	if raw, ok := v.Get(key).(string); ok {
		return strings.Fields(raw)
	}
	return v.GetStringSlice(key)
}

// GetBool fetches a bool configuration value, initializing on demand.
func GetBool(key string) bool {
	v, err := getViper()
	if err != nil {
		return false
	}
	return v.GetBool(key)
}

// GetInt fetches an integer configuration value, initializing on demand.
func GetInt(key string) int {
	v, err := getViper()
	if err != nil {
		return 0
	}
	return v.GetInt(key)
}

// GetDuration fetches a duration configuration value, initializing on demand.
func GetDuration(key string) time.Duration {
	v, err := getViper()
	if err != nil {
		return 0
	}
	return v.GetDuration(key)
}

// Set updates a configuration key at runtime, initializing on demand.
func Set(key string, value any) error {
	if err := Initialize(); err != nil {
		return err
	}
	configMu.Lock()
	defer configMu.Unlock()
	if configInst == nil {
		return fmt.Errorf("configuration not initialized")
	}
	configInst.Set(key, value)
	return nil
}

func configure(settings *initSettings) error {
	workingDir := strings.TrimSpace(settings.workingDir)
	if workingDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("determine working directory: %w", err)
		}
		workingDir = wd
	}

	userConfigPath := strings.TrimSpace(settings.userConfigPath)
	if userConfigPath == "" {
		path, err := defaultUserConfigPath()
		if err != nil {
			return err
		}
		userConfigPath = path
	}

	projectConfigPath := strings.TrimSpace(settings.projectConfigPath)
	if projectConfigPath == "" {
		path, err := findProjectConfig(workingDir)
		if err != nil {
			return err
		}
		projectConfigPath = path
	}

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		if err := v.BindEnv(key, envPrefix+"_"+envKey(key), env); err != nil {
			return fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if err := mergeConfigFile(v, userConfigPath); err != nil {
		return fmt.Errorf("load user config: %w", err)
	}
	if err := mergeConfigFile(v, projectConfigPath); err != nil {
		return fmt.Errorf("load project config: %w", err)
	}
	if err := mergeDotEnv(v, filepath.Join(workingDir, dotEnvFile)); err != nil {
		return fmt.Errorf("load %s: %w", dotEnvFile, err)
	}

	configMu.Lock()
	defer configMu.Unlock()
	configInst = v
	return nil
}

func mergeConfigFile(v *viper.Viper, path string) error {
	data, err := readOptionalFile(path)
	if err != nil || data == nil {
		return err
	}
	if err := v.MergeConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// mergeDotEnv reads FORTIEDR_* credentials from a .env file. They only replace
// defaults, so config files and real environment variables still win.
func mergeDotEnv(v *viper.Viper, path string) error {
	data, err := readOptionalFile(path)
	if err != nil || data == nil {
		return err
	}
	env := viper.New()
	env.SetConfigType("env")
	if err := env.ReadConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	for key, name := range legacyEnv {
		// viper lower-cases keys read from env files.
		if val := env.GetString(strings.ToLower(name)); val != "" {
			v.SetDefault(key, val)
		}
	}
	return nil
}

func readOptionalFile(path string) ([]byte, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("config path %s is a directory", path)
	}
	//nolint:gosec // G304: Config loader intentionally reads user and project config files
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	return data, nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine user home: %w", err)
	}
	return filepath.Join(home, DirName, "config.yaml"), nil
}

func findProjectConfig(startDir string) (string, error) {
	if strings.TrimSpace(startDir) == "" {
		return "", nil
	}
	dir := startDir
	for {
		candidate := filepath.Join(dir, DirName, "config.yaml")
		info, err := os.Stat(candidate)
		if err == nil {
			if info.IsDir() {
				return "", fmt.Errorf("config path %s is a directory", candidate)
			}
			return candidate, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("stat %s: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func setDefaults(v *viper.Viper) {
	program, args := DefaultShell(runtime.GOOS)
	v.SetDefault(KeyCatalogPath, "")
	v.SetDefault(KeyShellProgram, program)
	v.SetDefault(KeyShellArgs, args)
	v.SetDefault(KeyOutputFormat, "rich")
	v.SetDefault(KeyHistoryEnabled, true)
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyDebugLogPath, "")
	v.SetDefault(KeyFortiEDRHost, "")
	v.SetDefault(KeyFortiEDRUser, "")
	v.SetDefault(KeyFortiEDRPassword, "")
	v.SetDefault(KeyFortiEDROrganization, "")
	v.SetDefault(KeyFortiEDRTimeout, 30*time.Second)

	historyPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyPath = filepath.Join(home, DirName, historyFile)
	}
	v.SetDefault(KeyHistoryPath, historyPath)
}

// DefaultShell returns the interpreter used for emulation commands on goos.
// The bundled catalog drives Atomic Red Team through PowerShell.
func DefaultShell(goos string) (string, []string) {
	if goos == "windows" {
		return "powershell", []string{"-ExecutionPolicy", "Bypass", "-NoProfile", "-Command"}
	}
	return "pwsh", []string{"-NoProfile", "-Command"}
}

func envKey(key string) string {
	replacer := strings.NewReplacer(".", "_", "-", "_")
	return strings.ToUpper(replacer.Replace(key))
}

func getViper() (*viper.Viper, error) {
	if err := Initialize(); err != nil {
		return nil, err
	}
	configMu.RLock()
	defer configMu.RUnlock()
	if configInst == nil {
		return nil, fmt.Errorf("configuration not initialized")
	}
	return configInst, nil
}

// reset clears package state for tests.
//
//nolint:unused // Used in config_test.go
func reset() {
	configMu.Lock()
	defer configMu.Unlock()
	configInst = nil
	initErr = nil
	configOnce = sync.Once{}
}

// ResetForTesting clears package state for tests in other packages.
// Returns a cleanup function that should be deferred.
func ResetForTesting(t interface{ TempDir() string }) func() {
	reset()
	tmp := t.TempDir()
	_ = Initialize(WithWorkingDir(tmp), WithUserConfig(filepath.Join(tmp, "user.yaml")))
	return reset
}
