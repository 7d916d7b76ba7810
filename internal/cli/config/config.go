package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/stackvity/converty/internal/cli/prefs"
	"github.com/stackvity/converty/pkg/converter"
	"github.com/stackvity/converty/pkg/converter/engine"
)

const (
	EnvPrefix         = "CONVERTY"
	DefaultConfigName = "converty"
	// DotEnvFile is loaded from the working directory before env binding.
	DotEnvFile = ".env"
)

// flagKeys maps CLI flag names onto the config keys used by converter.Options.
var flagKeys = map[string]string{
	"direction":    "conversionType",
	"engine":       "pdfEngine",
	"mode":         "mode",
	"zip":          "zip",
	"concurrency":  "concurrency",
	"dpi":          "dpi",
	"slide-size":   "slideSize",
	"soffice":      "sofficePath",
	"history-file": "historyFile",
	"prefs-file":   "prefsFile",
	"metrics-file": "metricsFile",
	"lang":         "language",
	"theme":        "theme",
	"verbose":      "verbose",
}

// LoadAndValidate loads configuration from all sources (defaults, saved
// preferences, config file, profile, .env and environment, flags), validates
// the merged result and sets up the logger.
func LoadAndValidate(cfgFile, profileName, appVersion string, verbose bool, flags *pflag.FlagSet) (converter.Options, *slog.Logger, error) {
	var opts converter.Options
	v := viper.New()

	// Basic logger for errors raised before the final level is known.
	tempLogHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	tempLogger := slog.New(tempLogHandler)

	setDefaults(v)

	// --- Saved Preferences (above defaults, below everything else) ---
	if err := godotenvLoad(tempLogger); err != nil {
		return opts, tempLogger, err
	}
	prefsPath, err := resolvePrefsPath(flags)
	if err != nil {
		tempLogger.Warn("Cannot locate preferences file, using defaults", slog.Any("error", err))
	} else {
		saved, loadErr := prefs.NewJSONStore(prefsPath, tempLogHandler).Load()
		if loadErr != nil {
			tempLogger.Warn("Ignoring unreadable preferences file", slog.String("path", prefsPath), slog.Any("error", loadErr))
		}
		if mergeErr := v.MergeConfigMap(saved.ConfigMap()); mergeErr != nil {
			return opts, tempLogger, fmt.Errorf("error merging preferences: %w", mergeErr)
		}
		v.SetDefault("prefsFile", prefsPath)
	}

	// --- Load Config File ---
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			tempLogger.Error("Failed to get user home directory", slog.Any("error", err))
			return opts, tempLogger, fmt.Errorf("failed to get user home directory: %w", err)
		}
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join(home, ".config", DefaultConfigName))
		v.AddConfigPath(filepath.Join(home, "."+DefaultConfigName))
	}

	// MergeInConfig keeps the preference values for keys the file does not set.
	if err := v.MergeInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) && cfgFile == "" {
			tempLogger.Debug("No configuration file found, using defaults/env/flags.")
		} else {
			configFileUsed := cfgFile
			if configFileUsed == "" {
				configFileUsed = fmt.Sprintf("searched locations for %s.yaml", DefaultConfigName)
			}
			tempLogger.Error("Error reading configuration file", slog.String("path", configFileUsed), slog.Any("error", err))
			return opts, tempLogger, fmt.Errorf("error reading config file '%s': %w", configFileUsed, err)
		}
	} else {
		opts.ConfigFilePath = v.ConfigFileUsed()
		tempLogger.Debug("Using configuration file", slog.String("path", opts.ConfigFilePath))
	}

	// --- Apply Profile ---
	opts.ProfileName = profileName
	if profileName != "" {
		profileKey := "profiles." + profileName
		if !v.IsSet(profileKey) {
			configPath := v.ConfigFileUsed()
			if configPath == "" {
				configPath = "(no config file found)"
			}
			err := fmt.Errorf("%w: profile '%s' not found in config file '%s'", converter.ErrConfigValidation, profileName, configPath)
			tempLogger.Error(err.Error())
			return opts, tempLogger, err
		}
		profileSettings := v.Sub(profileKey)
		if profileSettings == nil {
			err := fmt.Errorf("failed to load profile '%s' settings from config file '%s'", profileName, v.ConfigFileUsed())
			tempLogger.Error(err.Error())
			return opts, tempLogger, err
		}
		if err := v.MergeConfigMap(profileSettings.AllSettings()); err != nil {
			tempLogger.Error("Error merging profile", slog.String("profile", profileName), slog.Any("error", err))
			return opts, tempLogger, fmt.Errorf("error merging profile '%s': %w", profileName, err)
		}
		tempLogger.Debug("Applied configuration profile", slog.String("profile", profileName))
	}

	// --- Bind Environment Variables ---
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// --- Bind Flags (Highest Priority) ---
	if flags != nil {
		for flagName, key := range flagKeys {
			flag := flags.Lookup(flagName)
			if flag == nil {
				continue // subcommands only define a subset
			}
			if err := v.BindPFlag(key, flag); err != nil {
				tempLogger.Error("Error binding flag", slog.String("flag", flagName), slog.Any("error", err))
				return opts, tempLogger, fmt.Errorf("error binding flag '--%s': %w", flagName, err)
			}
		}
	}

	// Enumerations may be written as names or legacy labels; normalize them
	// before decoding so the typed fields only ever see canonical values.
	if err := normalizeEnums(v); err != nil {
		tempLogger.Error(err.Error())
		return opts, tempLogger, err
	}

	// --- Unmarshal Final Configuration ---
	opts.AppVersion = appVersion
	if err := v.Unmarshal(&opts); err != nil {
		tempLogger.Error("Error unmarshalling configuration", slog.Any("error", err))
		return opts, tempLogger, fmt.Errorf("%w: error unmarshalling configuration: %w", converter.ErrConfigValidation, err)
	}

	// --- Invocation flags (not config keys) ---
	if flags != nil {
		if inputs, err := flags.GetStringArray("input"); err == nil {
			opts.InputPaths = inputs
		}
		if dir, err := flags.GetString("input-dir"); err == nil {
			opts.InputDir = dir
		}
		if out, err := flags.GetString("output"); err == nil {
			opts.OutputPath = out
		}
		if save, err := flags.GetBool("save-prefs"); err == nil {
			opts.SavePrefs = save
		}
	}
	if verbose {
		opts.Verbose = true
	}

	// --- Setup Final Logger ---
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(logHandler)
	opts.Logger = logHandler

	if err := validateAndDeriveOptions(&opts, logger, flags); err != nil {
		return opts, logger, err
	}

	logger.Debug("Configuration loading and validation complete",
		slog.String("configFile", opts.ConfigFilePath),
		slog.String("profile", opts.ProfileName),
		slog.String("prefsFile", opts.PrefsFile),
		slog.Bool("verbose", opts.Verbose),
		slog.String("logLevel", logLevel.String()),
	)
	return opts, logger, nil
}

// setDefaults establishes the default values for configuration options in Viper.
func setDefaults(v *viper.Viper) {
	// --- Conversion ---
	v.SetDefault("conversionType", string(converter.DefaultDirection))
	v.SetDefault("pdfEngine", string(converter.DefaultEngine))
	v.SetDefault("mode", int(converter.DefaultMode))
	v.SetDefault("zip", converter.DefaultZip)
	v.SetDefault("concurrency", converter.DefaultConcurrency)
	v.SetDefault("dpi", converter.DefaultDPI)
	v.SetDefault("slideSize", converter.DefaultSlideSize)
	v.SetDefault("sofficePath", converter.DefaultSofficePath)

	// --- Persistence (empty means the per-user default location) ---
	v.SetDefault("historyFile", "")
	v.SetDefault("prefsFile", "")
	v.SetDefault("metricsFile", "")

	// --- Presentation ---
	v.SetDefault("language", converter.DefaultLanguage)
	v.SetDefault("theme", string(converter.DefaultTheme))
	v.SetDefault("tuiEnabled", converter.DefaultTuiEnabled)
	v.SetDefault("verbose", converter.DefaultVerbose)
}

// godotenvLoad reads DotEnvFile into the process environment if present.
// Variables already set in the environment win.
func godotenvLoad(logger *slog.Logger) error {
	err := godotenv.Load(DotEnvFile)
	if err == nil {
		logger.Debug("Loaded environment file", slog.String("path", DotEnvFile))
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	logger.Error("Error reading environment file", slog.String("path", DotEnvFile), slog.Any("error", err))
	return fmt.Errorf("%w: error reading %s: %w", converter.ErrConfigValidation, DotEnvFile, err)
}

// resolvePrefsPath finds the preference file before the config layer is
// built: --prefs-file, then CONVERTY_PREFSFILE, then the per-user default.
func resolvePrefsPath(flags *pflag.FlagSet) (string, error) {
	if flags != nil {
		if p, err := flags.GetString("prefs-file"); err == nil && p != "" {
			return p, nil
		}
	}
	if p := os.Getenv(EnvPrefix + "_PREFSFILE"); p != "" {
		return p, nil
	}
	return prefs.DefaultPath()
}

// normalizeEnums rewrites enumerated keys to their canonical values.
func normalizeEnums(v *viper.Viper) error {
	mode, err := converter.ParseMode(v.GetString("mode"))
	if err != nil {
		return fmt.Errorf("%w: invalid value '%s' for key 'mode' (flag --mode). Allowed: 1-3 or single, multiple, folder", converter.ErrConfigValidation, v.GetString("mode"))
	}
	v.Set("mode", int(mode))

	id, err := engine.ParseEngine(v.GetString("pdfEngine"))
	if err != nil {
		return fmt.Errorf("%w: invalid value '%s' for key 'pdfEngine' (flag --engine). Allowed: %s, %s", converter.ErrConfigValidation, v.GetString("pdfEngine"), converter.EngineAutomation, converter.EngineHeadless)
	}
	v.Set("pdfEngine", string(id))

	v.Set("conversionType", strings.ToLower(strings.TrimSpace(v.GetString("conversionType"))))
	v.Set("language", strings.ToLower(strings.TrimSpace(v.GetString("language"))))
	v.Set("theme", prefs.Preferences{Theme: v.GetString("theme")}.Normalize().Theme)
	return nil
}

// isValidEnumValue checks if a given string value is present in a slice of allowed enum values.
// Case-sensitive comparison.
func isValidEnumValue[T ~string](value T, allowedValues []T) bool {
	return slices.Contains(allowedValues, value)
}

// validateAndDeriveOptions performs semantic validation on the populated
// Options struct and derives presentation settings from flags. It wraps errors
// with converter.ErrConfigValidation.
func validateAndDeriveOptions(opts *converter.Options, logger *slog.Logger, flags *pflag.FlagSet) error {
	// === Enum String Validations ===
	allowedDirections := []converter.Direction{converter.DirectionRasterToDeck, converter.DirectionDeckToRaster}
	if !isValidEnumValue(opts.Direction, allowedDirections) {
		err := fmt.Errorf("%w: invalid value '%s' for key 'conversionType' (flag --direction). Allowed: %v", converter.ErrConfigValidation, opts.Direction, allowedDirections)
		logger.Error(err.Error(), slog.String("key", "conversionType"), slog.String("value", string(opts.Direction)))
		return err
	}
	if !isValidEnumValue(opts.SlideSize, converter.ValidSlideSizes) {
		err := fmt.Errorf("%w: invalid value '%s' for key 'slideSize' (flag --slide-size). Allowed: %v", converter.ErrConfigValidation, opts.SlideSize, converter.ValidSlideSizes)
		logger.Error(err.Error(), slog.String("key", "slideSize"), slog.String("value", opts.SlideSize))
		return err
	}
	if !isValidEnumValue(opts.Language, converter.ValidLanguages) {
		err := fmt.Errorf("%w: invalid value '%s' for key 'language' (flag --lang). Allowed: %v", converter.ErrConfigValidation, opts.Language, converter.ValidLanguages)
		logger.Error(err.Error(), slog.String("key", "language"), slog.String("value", opts.Language))
		return err
	}

	// === Numeric Range Validations ===
	if opts.Concurrency < 0 {
		err := fmt.Errorf("%w: invalid value '%d' for key 'concurrency' (flag --concurrency). Must be >= 0", converter.ErrConfigValidation, opts.Concurrency)
		logger.Error(err.Error(), slog.String("key", "concurrency"), slog.Int("value", opts.Concurrency))
		return err
	}
	if opts.DPI <= 0 {
		err := fmt.Errorf("%w: invalid value '%g' for key 'dpi' (flag --dpi). Must be > 0", converter.ErrConfigValidation, opts.DPI)
		logger.Error(err.Error(), slog.String("key", "dpi"), slog.Float64("value", opts.DPI))
		return err
	}
	if strings.TrimSpace(opts.SofficePath) == "" {
		err := fmt.Errorf("%w: key 'sofficePath' (flag --soffice) cannot be empty", converter.ErrConfigValidation)
		logger.Error(err.Error(), slog.String("key", "sofficePath"))
		return err
	}

	// === Derive other options ===
	if opts.Concurrency == 0 {
		opts.Concurrency = converter.DefaultConcurrency
	}
	if opts.InputDir != "" && opts.Mode != converter.ModeFolder {
		logger.Debug("Input folder given, recording folder mode", slog.String("configuredMode", opts.Mode.String()))
		opts.Mode = converter.ModeFolder
	}

	// Verbose logging and the TUI share the terminal; verbose wins.
	if opts.Verbose {
		if opts.TuiEnabled && (flags == nil || !flags.Changed("no-tui")) {
			logger.Debug("Verbose mode enabled, TUI disabled")
		}
		opts.TuiEnabled = false
	} else if flags != nil && flags.Changed("no-tui") {
		if noTui, _ := flags.GetBool("no-tui"); noTui && opts.TuiEnabled {
			logger.Debug("TUI explicitly disabled via --no-tui flag")
			opts.TuiEnabled = false
		}
	}

	logger.Debug("Final derived settings validated",
		slog.String("direction", string(opts.Direction)),
		slog.String("engine", string(opts.Engine)),
		slog.String("mode", opts.Mode.String()),
		slog.Bool("zip", opts.Zip),
		slog.Int("concurrency", opts.Concurrency),
		slog.String("language", opts.Language),
		slog.String("theme", string(opts.Theme)),
		slog.Bool("tuiEnabledEffective", opts.TuiEnabled),
	)
	return nil
}
