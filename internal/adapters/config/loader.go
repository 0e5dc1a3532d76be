// Package config provides the configuration loader for javelin.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.trai.ch/javelin/internal/core/domain"
	"go.trai.ch/javelin/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// DotEnvFileName is the file next to javelin.yaml whose variables back the environment.
const DotEnvFileName = ".env"

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
	FS     FileSystem
	// Getenv looks up the process environment. Variables set there win over .env.
	Getenv func(string) string
}

var _ ports.ConfigLoader = (*Loader)(nil)

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{
		Logger: logger,
		FS:     NewOSFS(),
		Getenv: os.Getenv,
	}
}

// DiscoverRoot walks up from cwd to the directory holding javelin.yaml.
func (l *Loader) DiscoverRoot(cwd string) (string, error) {
	path, found := l.findConfiguration(cwd)
	if !found {
		return filepath.Clean(cwd), nil
	}
	return filepath.Dir(path), nil
}

// Load reads javelin.yaml from cwd or the nearest parent and returns the resolved
// configuration. Defaults are used when no file exists.
func (l *Loader) Load(cwd string) (*domain.Config, error) {
	root := filepath.Clean(cwd)
	var file Javelinfile

	configPath, found := l.findConfiguration(cwd)
	if found {
		root = filepath.Dir(configPath)
		if err := readAndUnmarshalYAML(l.FS, configPath, &file); err != nil {
			return nil, zerr.With(err, "path", configPath)
		}
	} else {
		l.Logger.Debug("no " + domain.ConfigFileName + " found, using defaults")
	}

	cfg, err := l.buildConfig(root, &file)
	if err != nil {
		return nil, zerr.With(err, "path", configPath)
	}

	env, err := l.environment(root)
	if err != nil {
		return nil, err
	}
	if err := applyEnvironment(cfg, env); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (l *Loader) findConfiguration(cwd string) (string, bool) {
	currentDir := filepath.Clean(cwd)

	for {
		candidate := filepath.Join(currentDir, domain.ConfigFileName)
		if info, err := l.FS.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			return "", false
		}
		currentDir = parentDir
	}
}

func (l *Loader) buildConfig(root string, file *Javelinfile) (*domain.Config, error) {
	cfg := &domain.Config{
		Root:             root,
		Javac:            domain.DefaultJavac,
		Strict:           file.Strict,
		DumpErrorSources: file.DumpErrorSources,
		SuppressMissing:  domain.DefaultSuppressMissing(),
		Cache: domain.CacheConfig{
			Persistent:           file.Cache.Persistent,
			Dir:                  filepath.Join(root, domain.DefaultUnitCachePath()),
			MemoryEntries:        domain.DefaultMemoryEntries,
			ConsolidateThreshold: domain.DefaultConsolidateThreshold,
		},
	}

	if file.Javac != "" {
		cfg.Javac = file.Javac
	}
	if file.Annotations.SuppressMissing != nil {
		cfg.SuppressMissing = file.Annotations.SuppressMissing
	}
	if file.Cache.Dir != "" {
		cfg.Cache.Dir = resolvePath(root, file.Cache.Dir)
	}

	if n := file.Cache.MemoryEntries; n != nil {
		if *n <= 0 {
			return nil, zerr.With(domain.ErrInvalidConfig, "cache.memoryEntries", *n)
		}
		cfg.Cache.MemoryEntries = *n
	}
	if n := file.Cache.ConsolidateThreshold; n != nil {
		if *n <= 0 {
			return nil, zerr.With(domain.ErrInvalidConfig, "cache.consolidateThreshold", *n)
		}
		cfg.Cache.ConsolidateThreshold = *n
	}

	sourceRoots := file.SourceRoots
	if len(sourceRoots) == 0 {
		sourceRoots = []string{"."}
	}
	for _, sr := range sourceRoots {
		abs := resolvePath(root, sr)
		info, err := l.FS.Stat(abs)
		if err != nil || !info.IsDir() {
			return nil, zerr.With(domain.ErrInvalidConfig, "source_root", sr)
		}
		cfg.SourceRoots = append(cfg.SourceRoots, abs)
	}
	cfg.SourceRoots = slices.Compact(cfg.SourceRoots)

	classpath, err := l.expandClasspath(root, file.Classpath)
	if err != nil {
		return nil, err
	}
	cfg.Classpath = classpath

	return cfg, nil
}

// expandClasspath resolves classpath entries against root. Entries holding glob
// characters are expanded and sorted; an expansion that matches nothing is logged.
func (l *Loader) expandClasspath(root string, entries []string) ([]string, error) {
	var out []string
	for _, entry := range entries {
		abs := resolvePath(root, entry)
		if !strings.ContainsAny(entry, "*?[") {
			out = append(out, abs)
			continue
		}
		matches, err := l.FS.Glob(abs)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrInvalidConfig.Error()), "classpath", entry)
		}
		if len(matches) == 0 {
			l.Logger.Warn("classpath entry " + entry + " matches no files")
			continue
		}
		slices.Sort(matches)
		out = append(out, matches...)
	}
	return out, nil
}

// environment returns a lookup over the process environment backed by the .env file
// next to javelin.yaml.
func (l *Loader) environment(root string) (func(string) string, error) {
	dotenv := map[string]string{}
	path := filepath.Join(root, DotEnvFileName)
	data, err := l.FS.ReadFile(path)
	switch {
	case err == nil:
		dotenv, err = godotenv.Unmarshal(string(data))
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "path", path)
		}
	case !errors.Is(err, fs.ErrNotExist):
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", path)
	}

	getenv := l.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	return func(key string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return dotenv[key]
	}, nil
}

// applyEnvironment lets the persistent cache knobs override the file. A cache directory
// on its own turns the persistent cache on.
func applyEnvironment(cfg *domain.Config, getenv func(string) string) error {
	dir := getenv(domain.EnvPersistentCacheDir)
	if dir != "" {
		cfg.Cache.Dir = resolvePath(cfg.Root, dir)
		cfg.Cache.Persistent = true
	}

	if raw := getenv(domain.EnvPersistentCache); raw != "" {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrInvalidConfig.Error()), domain.EnvPersistentCache, raw)
		}
		cfg.Cache.Persistent = enabled
	}
	return nil
}

func resolvePath(root, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Clean(filepath.Join(root, p))
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
func readAndUnmarshalYAML[T any](fsys FileSystem, configPath string, target *T) error {
	configFile, err := fsys.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	if parseErr := yaml.Unmarshal(configFile, target); parseErr != nil {
		return zerr.Wrap(parseErr, domain.ErrConfigParseFailed.Error())
	}

	return nil
}
