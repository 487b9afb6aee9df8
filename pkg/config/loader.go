package config

import (
	_ "embed"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/bcforge/pkg/errors"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix prefixes every configuration environment variable.
	EnvPrefix = "BCFORGE_"
	// EnvConfig names the config file when --config is not given.
	EnvConfig = "BCFORGE_CONFIG"
	// DefaultFile is picked up from the current directory when present.
	DefaultFile = "bcforge.toml"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, stderrors.New("not implemented")
}

// DefaultContent returns the embedded defaults file.
func DefaultContent() string {
	return string(defaultConfig)
}

// Load builds the configuration from every layer. path may be empty.
// overrides use dotted keys ("tools.cmake", "jobs") and win over everything.
func Load(path string, overrides map[string]interface{}) (*Config, error) {
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}

	// 2. Config file
	configPath, explicit := resolveFile(path)
	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			if explicit || !os.IsNotExist(err) {
				return nil, errors.Wrapf(err, errors.ErrConfigLoad, "cannot read config file %s", configPath)
			}
		} else if err := loadFile(k, configPath); err != nil {
			return nil, err
		}
	}

	// 3. Environment
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment variables")
	}

	// 4. Overrides
	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply overrides")
		}
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration").
			WithDetail("hint", "check for misspelled or unknown keys")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// legacyTools maps the flat keys of the older config.json format to their
// place in the tools section.
var legacyTools = map[string]string{
	"original_cxx_executable": "tools.original_cxx",
	"original_cc_executable":  "tools.original_cc",
	"targeted_cxx_executable": "tools.targeted_cxx",
	"targeted_cc_executable":  "tools.targeted_cc",
	"llvm_link_executable":    "tools.llvm_link",
	"cmaker_executable":       "tools.cmaker",
	"cmake_executable":        "tools.cmake",
	"remake_executable":       "tools.remake",
}

// loadFile merges the config file at path into k, moving legacy flat tool
// keys into the tools section first.
func loadFile(k *koanf.Koanf, path string) error {
	fk := koanf.New(".")
	if err := fk.Load(file.Provider(path), parserFor(path)); err != nil {
		return errors.Wrapf(err, errors.ErrConfigParse, "failed to parse config file %s", path).
			WithDetail("path", path)
	}

	for legacy, key := range legacyTools {
		if !fk.Exists(legacy) {
			continue
		}
		if fk.Exists(key) {
			return errors.Newf(errors.ErrConfigValid, "config file %s sets both %s and %s", path, legacy, key).
				WithDetail("key", key)
		}
		value := fk.Get(legacy)
		fk.Delete(legacy)
		if err := fk.Set(key, value); err != nil {
			return errors.Wrapf(err, errors.ErrConfigParse, "failed to map %s", legacy)
		}
	}

	if err := k.Merge(fk); err != nil {
		return errors.Wrapf(err, errors.ErrConfigLoad, "failed to merge config file %s", path)
	}
	return nil
}

// resolveFile picks the config file and reports whether the user named it.
func resolveFile(path string) (string, bool) {
	if path != "" {
		return path, true
	}
	if p := os.Getenv(EnvConfig); p != "" {
		return p, true
	}
	return DefaultFile, false
}

func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return yaml.Parser()
	default:
		return toml.Parser()
	}
}

// envKey maps BCFORGE_TOOLS_LLVM_LINK to tools.llvm_link. Only the section
// separator becomes a dot, since key names contain underscores themselves.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	switch key {
	case "config", "root":
		return ""
	}
	for _, section := range []string{"tools", "layout"} {
		if strings.HasPrefix(key, section+"_") {
			return section + "." + strings.TrimPrefix(key, section+"_")
		}
	}
	return key
}
