// Package cli provides the command line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/vcoctl/internal/config"
	"github.com/temirov/vcoctl/internal/dispatch"
	"github.com/temirov/vcoctl/internal/registry"
	"github.com/temirov/vcoctl/internal/rpc"
	"github.com/temirov/vcoctl/internal/services/clipboard"
	"github.com/temirov/vcoctl/internal/types"
	"github.com/temirov/vcoctl/internal/utils"
)

const (
	vcoFlagName          = "vco"
	outputFlagName       = "output"
	outputFlagShorthand  = "o"
	configFlagName       = "config"
	copyFlagName         = "copy"
	debugFlagName        = "debug"
	verifyTLSFlagName    = "verify-tls"
	versionFlagName      = "version"
	versionTemplate      = "vcoctl version: %s\n"
	rootUse              = "vcoctl"
	rootShortDescription = "VeloCloud Orchestrator command line client"
	rootLongDescription  = `vcoctl calls the VeloCloud Orchestrator JSON-RPC API and renders the results as tables.
Run "vcoctl login" once per orchestrator; later commands reuse the saved session.
Use --output to select table, json, csv or yaml output.`

	vcoFlagDescription       = "orchestrator host or URL"
	outputFlagDescription    = "output format (table, json, csv, yaml)"
	configFlagDescription    = "configuration file used instead of ./.vcoctl.yaml"
	copyFlagDescription      = "copy rendered output to the clipboard"
	debugFlagDescription     = "log requests and state changes"
	verifyTLSFlagDescription = "verify the orchestrator TLS certificate"
	versionFlagDescription   = "display application version"

	workingDirectoryErrorFormat = "unable to determine working directory: %w"
	loadConfigurationFormat     = "load configuration: %w"
	buildRegistryFormat         = "build operation registry: %w"
	reservedNameFormat          = "operation %q collides with the %s command"
)

var reservedCommandNames = []string{configCommandUse, "help", "completion"}

// ChannelFactory opens the transport to one orchestrator host.
type ChannelFactory func(host string, verifyTLS bool, logger *zap.Logger) (dispatch.Channel, error)

// Dependencies carries the collaborators a run needs. Zero values select the production defaults.
type Dependencies struct {
	Logger           *zap.Logger
	LogLevel         zap.AtomicLevel
	Output           io.Writer
	Copier           clipboard.Copier
	NewChannel       ChannelFactory
	ReadSecret       func(prompt string) (string, error)
	TerminalWidth    func() int
	WorkingDirectory string
}

func (dependencies Dependencies) withDefaults() (Dependencies, error) {
	if dependencies.Logger == nil {
		dependencies.Logger = zap.NewNop()
	}
	if dependencies.LogLevel == (zap.AtomicLevel{}) {
		dependencies.LogLevel = zap.NewAtomicLevel()
	}
	if dependencies.Output == nil {
		dependencies.Output = os.Stdout
	}
	if dependencies.Copier == nil {
		dependencies.Copier = clipboard.NewService()
	}
	if dependencies.NewChannel == nil {
		dependencies.NewChannel = newRPCChannel
	}
	if dependencies.ReadSecret == nil {
		dependencies.ReadSecret = promptSecret
	}
	if dependencies.TerminalWidth == nil {
		dependencies.TerminalWidth = terminalWidth
	}
	if dependencies.WorkingDirectory == "" {
		workingDirectory, err := os.Getwd()
		if err != nil {
			return dependencies, fmt.Errorf(workingDirectoryErrorFormat, err)
		}
		dependencies.WorkingDirectory = workingDirectory
	}
	return dependencies, nil
}

func newRPCChannel(host string, verifyTLS bool, logger *zap.Logger) (dispatch.Channel, error) {
	client, err := rpc.NewClient(host, rpc.Options{VerifyTLS: verifyTLS, Logger: logger})
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Execute runs the vcoctl application.
func Execute(logger *zap.Logger, logLevel zap.AtomicLevel) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return run(ctx, os.Args[1:], Dependencies{Logger: logger, LogLevel: logLevel})
}

func run(ctx context.Context, arguments []string, dependencies Dependencies) error {
	resolvedDependencies, err := dependencies.withDefaults()
	if err != nil {
		return err
	}
	configuration, err := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: resolvedDependencies.WorkingDirectory,
		ExplicitFilePath: scanConfigPath(arguments),
	})
	if err != nil {
		return fmt.Errorf(loadConfigurationFormat, err)
	}
	declarations, err := configuration.Declarations()
	if err != nil {
		return fmt.Errorf(loadConfigurationFormat, err)
	}
	operations, err := registry.New(append(registry.Builtin(), declarations...)...)
	if err != nil {
		return fmt.Errorf(buildRegistryFormat, err)
	}
	for _, reserved := range reservedCommandNames {
		if _, err := operations.Lookup(reserved); err == nil {
			return fmt.Errorf(buildRegistryFormat, fmt.Errorf(reservedNameFormat, reserved, reserved))
		}
	}

	rootCommand := createRootCommand(operations, configuration, resolvedDependencies)
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, arguments))
	return rootCommand.ExecuteContext(ctx)
}

// rootSettings holds the persistent flag values shared by every operation command.
type rootSettings struct {
	host          string
	output        string
	configPath    string
	copyOutput    bool
	debug         bool
	verifyTLS     bool
	configuration config.ApplicationConfiguration
}

func (settings *rootSettings) resolveHost() string {
	if strings.TrimSpace(settings.host) != "" {
		return strings.TrimSpace(settings.host)
	}
	return strings.TrimSpace(settings.configuration.VCO)
}

func (settings *rootSettings) resolveFormat() (types.OutputFormat, error) {
	if strings.TrimSpace(settings.output) != "" {
		return types.ParseOutputFormat(settings.output)
	}
	return types.ParseOutputFormat(settings.configuration.Output)
}

func (settings *rootSettings) resolveVerifyTLS(command *cobra.Command) bool {
	if command.Flags().Changed(verifyTLSFlagName) {
		return settings.verifyTLS
	}
	return settings.configuration.VerifyTLSEnabled()
}

func (settings *rootSettings) resolveCopy(command *cobra.Command) bool {
	if command.Flags().Changed(copyFlagName) {
		return settings.copyOutput
	}
	return settings.configuration.CopyEnabled()
}

// createRootCommand builds the root Cobra command with one subcommand per registered operation.
func createRootCommand(operations registry.Registry, configuration config.ApplicationConfiguration, dependencies Dependencies) *cobra.Command {
	var showVersion bool
	settings := &rootSettings{configuration: configuration}

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			if showVersion {
				_, err := fmt.Fprintf(command.OutOrStdout(), versionTemplate, utils.GetApplicationVersion())
				return err
			}
			return command.Help()
		},
		PersistentPreRun: func(command *cobra.Command, arguments []string) {
			if settings.debug {
				dependencies.LogLevel.SetLevel(zap.DebugLevel)
			}
		},
	}
	rootCommand.SetOut(dependencies.Output)

	persistentFlags := rootCommand.PersistentFlags()
	persistentFlags.StringVar(&settings.host, vcoFlagName, "", vcoFlagDescription)
	persistentFlags.StringVarP(&settings.output, outputFlagName, outputFlagShorthand, "", outputFlagDescription)
	persistentFlags.StringVar(&settings.configPath, configFlagName, "", configFlagDescription)
	registerBooleanFlag(persistentFlags, &settings.copyOutput, copyFlagName, false, copyFlagDescription)
	registerBooleanFlag(persistentFlags, &settings.debug, debugFlagName, false, debugFlagDescription)
	registerBooleanFlag(persistentFlags, &settings.verifyTLS, verifyTLSFlagName, false, verifyTLSFlagDescription)
	rootCommand.Flags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)

	for _, name := range operations.Names() {
		operation, err := operations.Lookup(name)
		if err != nil {
			continue
		}
		rootCommand.AddCommand(createOperationCommand(operation, operations, settings, dependencies))
	}
	rootCommand.AddCommand(createConfigCommand(dependencies))
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// scanConfigPath finds the --config value before Cobra parses flags, because the configuration
// decides which operation commands exist.
func scanConfigPath(arguments []string) string {
	flagPrefix := "--" + configFlagName
	for index := 0; index < len(arguments); index++ {
		argument := arguments[index]
		if argument == "--" {
			return ""
		}
		if value, found := strings.CutPrefix(argument, flagPrefix+"="); found {
			return value
		}
		if argument == flagPrefix && index+1 < len(arguments) {
			return arguments[index+1]
		}
	}
	return ""
}
