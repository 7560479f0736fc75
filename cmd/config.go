package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	slogmulti "github.com/samber/slog-multi"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "sosie"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	outputFlagName      = "output"
	exclusionsFlagName  = "exclusions"
	syncWindowFlagName  = "sync-window"
	verboseFlagName     = "verbose"
	runParallelFlagName = "parallel"
	timeoutFlagName     = "timeout"
	strictFlagName      = "strict"
	shardFlagName       = "shard"

	syncWindowConfigKey  = "syncWindow"
	exclusionsConfigKey  = "exclusions"
	runParallelConfigKey = "run.parallel"
	compareTimeoutKey    = "compare.timeout"

	defaultCompareTimeout = time.Minute

	defaultReportsDir     = ".sosie-reports"
	defaultExclusionsFile = "exclusions.yaml"
	defaultSyncWindow     = 5
	defaultRunParallel    = 1

	envPrefix = "SOSIE"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".sosie.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var globalLogger *slog.Logger

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(outputFlagName, defaultReportsDir)
	viper.SetDefault(exclusionsConfigKey, defaultExclusionsFile)
	viper.SetDefault(syncWindowConfigKey, defaultSyncWindow)
	viper.SetDefault(runParallelConfigKey, defaultRunParallel)
	viper.SetDefault(compareTimeoutKey, int64(defaultCompareTimeout.Seconds()))

	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	if err := readConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "sosie: ignoring %s: %v\n", configFileName, err)
	}
}

// readConfig loads sosie.yaml. A missing file is not an error.
func readConfig() error {
	err := viper.ReadInConfig()

	var notFound viper.ConfigFileNotFoundError
	if err == nil || errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return err
}

// compareTimeout reads the per-comparison timeout, given in seconds.
// Zero or negative disables it.
func compareTimeout() time.Duration {
	seconds := viper.GetInt64(compareTimeoutKey)
	if seconds <= 0 {
		return 0
	}

	return time.Duration(seconds) * time.Second
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Allow numeric slog levels as well (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger configures the global slog logger.
//
// By default it logs at Info to a rotating file; if verbose is true it logs
// at Debug and mirrors every record to stderr.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	var logLevel slog.Level
	if verbose {
		logLevel = slog.LevelDebug
	} else {
		logLevel = parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	options := &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	}

	var handler slog.Handler = slog.NewTextHandler(logWriter, options)
	if verbose {
		handler = slogmulti.Fanout(
			handler,
			slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}),
		)
	}

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}
