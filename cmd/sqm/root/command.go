package root

import (
	"errors"
	"fmt"
	"strings"

	"github.com/brimdata/sqm/compiler"
	"github.com/brimdata/sqm/compiler/semantic"
	"github.com/brimdata/sqm/metamodel"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var Sqm = &cobra.Command{
	Use:   "sqm",
	Short: "resolve queries against a domain model",
	Long: `
The "sqm" command runs the semantic analysis of the query compiler.  It
binds the identification variables and paths of each statement to the
entities and attributes of a domain model, infers expression types,
creates the joins implied by path dereference, and collects parameters.

The domain model is a YAML file given with --model.  Every flag may also
be set in the environment with an SQM_ prefix (e.g., SQM_STRICT=true) or in
a YAML config file given with --config.
`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initConfig,
}

// Flag names double as viper keys.
const (
	ConfigFlag    = "config"
	ModelFlag     = "model"
	StrictFlag    = "strict"
	CacheSizeFlag = "cache-size"
	VerboseFlag   = "verbose"
	LogFileFlag   = "log-file"
)

var config = viper.New()

func init() {
	f := Sqm.PersistentFlags()
	f.String(ConfigFlag, "", "YAML file holding flag values")
	f.String(ModelFlag, "", "YAML file describing the domain model")
	f.Bool(StrictFlag, false, "reject constructs outside the standard query language")
	f.Int(CacheSizeFlag, 0, "size of the model lookup caches (0 disables caching)")
	f.BoolP(VerboseFlag, "v", false, "log compiler activity to stderr")
	f.String(LogFileFlag, "", "also log compiler activity as JSON to this file (rotated at 100 MB)")
	if err := config.BindPFlags(f); err != nil {
		panic(err)
	}
	config.SetEnvPrefix("sqm")
	config.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	config.AutomaticEnv()
}

func initConfig(*cobra.Command, []string) error {
	path := config.GetString(ConfigFlag)
	if path == "" {
		return nil
	}
	config.SetConfigFile(path)
	if err := config.ReadInConfig(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Env is what the subcommands share.
type Env struct {
	Logger   *zap.Logger
	Registry *prometheus.Registry
	Compiler *compiler.Compiler
}

// NewEnv builds a compiler from the bound configuration.  The caller should
// Sync the logger when done.
func NewEnv() (*Env, error) {
	logger, err := newLogger(config.GetBool(VerboseFlag), config.GetString(LogFileFlag))
	if err != nil {
		return nil, err
	}
	model, err := loadModel(config.GetString(ModelFlag), config.GetInt(CacheSizeFlag))
	if err != nil {
		return nil, err
	}
	reg := prometheus.NewRegistry()
	metrics, err := semantic.NewMetrics(reg)
	if err != nil {
		return nil, err
	}
	opts := semantic.Options{
		Strict:  config.GetBool(StrictFlag),
		Logger:  logger,
		Metrics: metrics,
	}
	logger.Debug("configured",
		zap.Bool("strict", opts.Strict),
		zap.String("model", config.GetString(ModelFlag)),
		zap.Int("cache_size", config.GetInt(CacheSizeFlag)))
	return &Env{
		Logger:   logger,
		Registry: reg,
		Compiler: compiler.New(model, opts),
	}, nil
}

func newLogger(verbose bool, path string) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
		logger, err = cfg.Build()
	}
	if err != nil || path == "" {
		return logger, err
	}
	file := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(&lumberjack.Logger{
			Filename: path,
			MaxSize:  100,
		}),
		zap.DebugLevel,
	)
	return logger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, file)
	})), nil
}

func loadModel(path string, cacheSize int) (metamodel.Model, error) {
	if path == "" {
		return nil, errors.New("no model specified (use --model)")
	}
	static, err := metamodel.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if cacheSize <= 0 {
		return static, nil
	}
	cached, err := metamodel.NewCached(static, cacheSize)
	if err != nil {
		return nil, err
	}
	return cached, nil
}
