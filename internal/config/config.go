package config

import (
	"encoding/json"
	"errors"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DirName is the per-user and per-workspace configuration directory name.
const DirName = ".chronicle"

// Config holds application configuration.
// It is constructed once at startup and passed explicitly to each component.
type Config struct {
	// DiaryPath is where entries, archives and rendered documents live.
	// Relative paths are resolved against the workspace root.
	DiaryPath string `json:"diary_path"`

	// Theme is the default document theme ("velvet", "parchment", "midnight").
	Theme string `json:"theme"`

	// Format is the default output format ("pdf", "html", "markdown").
	Format string `json:"format"`

	// Title and Author appear on the cover page of exported documents.
	Title  string `json:"title"`
	Author string `json:"author,omitempty"`

	// PDFName is the file name of the full-diary export inside DiaryPath.
	PDFName string `json:"pdf_name"`

	// MaxTokens is forwarded to the generation facility as a length hint.
	MaxTokens int `json:"max_tokens"`

	// Context limits, in characters.
	TodayLogMaxChars  int `json:"today_log_max_chars"`
	RecentLogMaxChars int `json:"recent_log_max_chars"`
	ArchiveMaxChars   int `json:"archive_max_chars"`

	// RecentDays is how many days of session logs (including today) are gathered.
	RecentDays int `json:"recent_days"`

	// SectionsFile optionally points at a YAML file replacing the default section templates.
	SectionsFile string `json:"sections_file,omitempty"`

	Generation        GenerationConfig        `json:"generation"`
	MemoryIntegration MemoryIntegrationConfig `json:"memory_integration"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// GenerationConfig selects and configures the generation backend.
type GenerationConfig struct {
	// Backend is "exec" or "copilot". Empty means no live backend is configured.
	Backend string `json:"backend,omitempty"`

	// TimeoutSeconds bounds the generation call. 0 means no timeout.
	TimeoutSeconds int `json:"timeout_seconds,omitempty"`

	// Agent and Model are routing hints passed through to the invoked facility.
	Agent string `json:"agent,omitempty"`
	Model string `json:"model,omitempty"`

	// Options carries backend-specific settings, decoded by the backend itself.
	Options map[string]any `json:"options,omitempty"`
}

// Timeout returns the configured generation timeout (0 = none).
func (g GenerationConfig) Timeout() time.Duration {
	if g.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// MemoryIntegrationConfig controls appending a chronicle section to the daily memory log.
type MemoryIntegrationConfig struct {
	Enabled       bool   `json:"enabled,omitempty"`
	AppendToDaily bool   `json:"append_to_daily,omitempty"`
	Format        string `json:"format,omitempty"` // summary | link | full
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DiaryPath:         "memory/diary",
		Theme:             "velvet",
		Format:            "pdf",
		Title:             "Chronicle",
		PDFName:           "Chronicle.pdf",
		MaxTokens:         2000,
		TodayLogMaxChars:  15000,
		RecentLogMaxChars: 5000,
		ArchiveMaxChars:   2000,
		RecentDays:        2,
		MemoryIntegration: MemoryIntegrationConfig{
			Format: "summary",
		},
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithWorkspace loads configuration from both the global directory (~/.chronicle)
// and the nearest .chronicle/config.json found walking upward from startDir.
// Workspace config takes precedence for scalar values; arrays are merged (deduplicated);
// option maps are merged key by key.
// Either or both configs may be missing.
func LoadWithWorkspace(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	local, err := loadFileRaw(FindWorkspaceConfig(startDir))
	if err != nil {
		return nil, err
	}

	return Merge(Merge(DefaultConfig(), global), local), nil
}

// FindWorkspaceConfig walks upward from startDir to find the nearest .chronicle/config.json.
// Returns the path if found, or empty string if not found.
func FindWorkspaceConfig(startDir string) string {
	if startDir == "" {
		return ""
	}
	dir := startDir
	for {
		configPath := filepath.Join(dir, DirName, "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{
		DiaryPath:         pickString(base.DiaryPath, overlay.DiaryPath),
		Theme:             pickString(base.Theme, overlay.Theme),
		Format:            pickString(base.Format, overlay.Format),
		Title:             pickString(base.Title, overlay.Title),
		Author:            pickString(base.Author, overlay.Author),
		PDFName:           pickString(base.PDFName, overlay.PDFName),
		MaxTokens:         pickInt(base.MaxTokens, overlay.MaxTokens),
		TodayLogMaxChars:  pickInt(base.TodayLogMaxChars, overlay.TodayLogMaxChars),
		RecentLogMaxChars: pickInt(base.RecentLogMaxChars, overlay.RecentLogMaxChars),
		ArchiveMaxChars:   pickInt(base.ArchiveMaxChars, overlay.ArchiveMaxChars),
		RecentDays:        pickInt(base.RecentDays, overlay.RecentDays),
		SectionsFile:      pickString(base.SectionsFile, overlay.SectionsFile),
	}

	result.Generation = GenerationConfig{
		Backend:        pickString(base.Generation.Backend, overlay.Generation.Backend),
		TimeoutSeconds: pickInt(base.Generation.TimeoutSeconds, overlay.Generation.TimeoutSeconds),
		Agent:          pickString(base.Generation.Agent, overlay.Generation.Agent),
		Model:          pickString(base.Generation.Model, overlay.Generation.Model),
		Options:        mergeOptions(base.Generation.Options, overlay.Generation.Options),
	}

	// Booleans: overlay wins if true, else base
	result.MemoryIntegration = MemoryIntegrationConfig{
		Enabled:       base.MemoryIntegration.Enabled || overlay.MemoryIntegration.Enabled,
		AppendToDaily: base.MemoryIntegration.AppendToDaily || overlay.MemoryIntegration.AppendToDaily,
		Format:        pickString(base.MemoryIntegration.Format, overlay.MemoryIntegration.Format),
	}

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

func pickString(base, overlay string) string {
	if strings.TrimSpace(overlay) != "" {
		return overlay
	}
	return base
}

func pickInt(base, overlay int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

func mergeOptions(base, overlay map[string]any) map[string]any {
	if len(base) == 0 && len(overlay) == 0 {
		return nil
	}
	result := make(map[string]any, len(base)+len(overlay))
	maps.Copy(result, base)
	maps.Copy(result, overlay)
	return result
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}

// ResolveDiaryDir returns the absolute diary directory for a workspace root.
func (c *Config) ResolveDiaryDir(workspaceRoot string) string {
	p := c.DiaryPath
	if p == "" {
		p = DefaultConfig().DiaryPath
	}
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, p[2:])
		}
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(workspaceRoot, p)
}
