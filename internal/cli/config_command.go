package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/vcoctl/internal/config"
)

const (
	configCommandUse              = "config"
	configCommandShortDescription = "manage vcoctl configuration"
	configInitUse                 = "init"
	configInitShortDescription    = "write a commented configuration file"
	configInitLongDescription     = `Write a commented configuration file with a sample operation.
By default the file is ./.vcoctl.yaml; --global writes ~/.vcoctl/config.yaml instead.`
	globalFlagName        = "global"
	globalFlagDescription = "write the global configuration file"
	forceFlagName         = "force"
	forceFlagDescription  = "overwrite an existing configuration file"
	configWrittenFormat   = "configuration written to %s\n"
)

func createConfigCommand(dependencies Dependencies) *cobra.Command {
	configCommand := &cobra.Command{
		Use:   configCommandUse,
		Short: configCommandShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
	}
	configCommand.AddCommand(createConfigInitCommand(dependencies))
	return configCommand
}

func createConfigInitCommand(dependencies Dependencies) *cobra.Command {
	var global bool
	var force bool
	initCommand := &cobra.Command{
		Use:   configInitUse,
		Short: configInitShortDescription,
		Long:  configInitLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if global {
				target = config.InitTargetGlobal
			}
			destination, err := config.InitializeConfiguration(config.InitOptions{
				Target:           target,
				Force:            force,
				WorkingDirectory: dependencies.WorkingDirectory,
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(command.OutOrStdout(), configWrittenFormat, destination)
			return err
		},
	}
	registerBooleanFlag(initCommand.Flags(), &global, globalFlagName, false, globalFlagDescription)
	registerBooleanFlag(initCommand.Flags(), &force, forceFlagName, false, forceFlagDescription)
	return initCommand
}
