package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/temirov/vcoctl/internal/registry"
	"github.com/temirov/vcoctl/internal/types"
	"github.com/temirov/vcoctl/internal/utils"
)

// Configuration keys shared by files, environment variables and flags.
const (
	KeyVCO              = "vco"
	KeyOutput           = "output"
	KeySessionDirectory = "session_directory"
	KeyVerifyTLS        = "verify_tls"
	KeyCopy             = "copy"
	KeyOperations       = "operations"
)

var environmentKeys = []string{KeyVCO, KeyOutput, KeySessionDirectory, KeyVerifyTLS, KeyCopy}

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
	// SkipEnvironment ignores VCOCTL_* environment variables.
	SkipEnvironment bool
}

// ApplicationConfiguration holds the defaults applied before command line flags.
type ApplicationConfiguration struct {
	VCO              string                   `mapstructure:"vco"`
	Output           string                   `mapstructure:"output"`
	SessionDirectory string                   `mapstructure:"session_directory"`
	VerifyTLS        *bool                    `mapstructure:"verify_tls"`
	Copy             *bool                    `mapstructure:"copy"`
	Operations       []OperationConfiguration `mapstructure:"operations"`
}

// OperationConfiguration declares an operation in configuration files.
type OperationConfiguration struct {
	Name      string                `mapstructure:"name"`
	Method    string                `mapstructure:"method"`
	Params    string                `mapstructure:"params"`
	Processor string                `mapstructure:"processor"`
	Summary   string                `mapstructure:"summary"`
	Options   []OptionConfiguration `mapstructure:"options"`
}

// OptionConfiguration declares one option of a configured operation.
type OptionConfiguration struct {
	Flag        string `mapstructure:"flag"`
	Kind        string `mapstructure:"kind"`
	Required    bool   `mapstructure:"required"`
	Default     any    `mapstructure:"default"`
	Destination string `mapstructure:"destination"`
	Usage       string `mapstructure:"usage"`
	Suppressed  bool   `mapstructure:"suppressed"`
}

// LoadApplicationConfiguration loads configuration from the global file, the local file and the
// environment, each overriding the previous source.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	if homeDirectory, err := os.UserHomeDir(); err == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.ConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(globalPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath, resolveErr := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveErr != nil {
		return ApplicationConfiguration{}, resolveErr
	}
	if localPath != "" {
		if options.ExplicitFilePath != "" {
			if _, statErr := os.Stat(localPath); statErr != nil {
				return ApplicationConfiguration{}, fmt.Errorf("configuration file %s: %w", localPath, statErr)
			}
		}
		localConfig, loadErr := loadConfigurationFromPath(localPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(localConfig)
	}

	if !options.SkipEnvironment {
		merged = merged.Merge(loadEnvironmentConfiguration())
	}
	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath, nil
		}
		if workingDirectory == "" {
			absolute, err := filepath.Abs(explicitPath)
			if err != nil {
				return "", fmt.Errorf("resolve configuration path %s: %w", explicitPath, err)
			}
			return absolute, nil
		}
		return filepath.Join(workingDirectory, explicitPath), nil
	}
	if workingDirectory == "" {
		return "", nil
	}
	return filepath.Join(workingDirectory, utils.LocalConfigFileName), nil
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	if path == "" {
		return ApplicationConfiguration{}, nil
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	reader.SetConfigType("yaml")
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	return config, nil
}

func loadEnvironmentConfiguration() ApplicationConfiguration {
	reader := viper.New()
	reader.SetEnvPrefix(utils.EnvironmentPrefix)
	for _, key := range environmentKeys {
		_ = reader.BindEnv(key)
	}

	var config ApplicationConfiguration
	if reader.IsSet(KeyVCO) {
		config.VCO = reader.GetString(KeyVCO)
	}
	if reader.IsSet(KeyOutput) {
		config.Output = reader.GetString(KeyOutput)
	}
	if reader.IsSet(KeySessionDirectory) {
		config.SessionDirectory = reader.GetString(KeySessionDirectory)
	}
	if reader.IsSet(KeyVerifyTLS) {
		verifyTLS := reader.GetBool(KeyVerifyTLS)
		config.VerifyTLS = &verifyTLS
	}
	if reader.IsSet(KeyCopy) {
		copyOutput := reader.GetBool(KeyCopy)
		config.Copy = &copyOutput
	}
	return config
}

// Merge overlays override onto the receiver returning the combined configuration. Operations are
// merged by name with the override winning.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	if override.VCO != "" {
		result.VCO = override.VCO
	}
	if override.Output != "" {
		result.Output = override.Output
	}
	if override.SessionDirectory != "" {
		result.SessionDirectory = override.SessionDirectory
	}
	if override.VerifyTLS != nil {
		result.VerifyTLS = cloneBool(override.VerifyTLS)
	}
	if override.Copy != nil {
		result.Copy = cloneBool(override.Copy)
	}
	result.Operations = mergeOperations(config.Operations, override.Operations)
	return result
}

func mergeOperations(base []OperationConfiguration, override []OperationConfiguration) []OperationConfiguration {
	if len(override) == 0 {
		return append([]OperationConfiguration(nil), base...)
	}
	overridden := map[string]struct{}{}
	for _, operation := range override {
		overridden[operation.Name] = struct{}{}
	}
	var merged []OperationConfiguration
	for _, operation := range base {
		if _, replaced := overridden[operation.Name]; !replaced {
			merged = append(merged, operation)
		}
	}
	return append(merged, override...)
}

// Declarations converts the configured operations into registry declarations.
func (config ApplicationConfiguration) Declarations() ([]registry.Declaration, error) {
	declarations := make([]registry.Declaration, 0, len(config.Operations))
	for _, operation := range config.Operations {
		processor, err := registry.ParseProcessor(operation.Processor)
		if err != nil {
			return nil, fmt.Errorf("operation %q: %w", operation.Name, err)
		}
		declaration := registry.Declaration{
			Name:      operation.Name,
			Method:    operation.Method,
			Template:  operation.Params,
			Processor: processor,
			Handler:   registry.HandlerCall,
			Summary:   operation.Summary,
		}
		for _, option := range operation.Options {
			kind, err := types.ParseValueKind(option.Kind)
			if err != nil {
				return nil, fmt.Errorf("operation %q option %q: %w", operation.Name, option.Flag, err)
			}
			declaration.Options = append(declaration.Options, registry.OptionSpec{
				Flag:        option.Flag,
				Kind:        kind,
				Required:    option.Required,
				Default:     option.Default,
				Destination: option.Destination,
				Usage:       option.Usage,
				Suppressed:  option.Suppressed,
			})
		}
		declarations = append(declarations, declaration)
	}
	return declarations, nil
}

// VerifyTLSEnabled reports whether TLS certificates are verified. Verification is off unless
// configured.
func (config ApplicationConfiguration) VerifyTLSEnabled() bool {
	return config.VerifyTLS != nil && *config.VerifyTLS
}

// CopyEnabled reports whether rendered output is copied to the clipboard by default.
func (config ApplicationConfiguration) CopyEnabled() bool {
	return config.Copy != nil && *config.Copy
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
