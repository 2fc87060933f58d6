package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/vcoctl/internal/dispatch"
	"github.com/temirov/vcoctl/internal/registry"
	"github.com/temirov/vcoctl/internal/session"
)

const (
	operationShortFormat   = "call %s"
	loginShortDescription  = "authenticate and save the session for the orchestrator"
	logoutShortDescription = "end the saved session for the orchestrator"
	openChannelFormat      = "connect to %s: %w"
	copyOutputFormat       = "copy output: %w"
	operationFlagsFormat   = "operation %s: %w"
)

var errMissingHost = errors.New("no orchestrator host configured, pass --vco or set vco in the configuration")

// createOperationCommand exposes one registered operation as a subcommand.
func createOperationCommand(operation registry.OperationSpec, operations registry.Registry, settings *rootSettings, dependencies Dependencies) *cobra.Command {
	var bindings optionBindings
	operationCommand := &cobra.Command{
		Use:   operation.Name,
		Short: operationSummary(operation),
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			host := settings.resolveHost()
			if host == "" {
				return errMissingHost
			}
			format, err := settings.resolveFormat()
			if err != nil {
				return err
			}
			collected, err := bindings.collect(command.Flags(), dependencies.ReadSecret)
			if err != nil {
				return err
			}

			logger := dependencies.Logger.Named(operation.Name)
			channel, err := dependencies.NewChannel(host, settings.resolveVerifyTLS(command), logger)
			if err != nil {
				return fmt.Errorf(openChannelFormat, host, err)
			}
			store := session.NewStore(settings.configuration.SessionDirectory)
			dispatcher := dispatch.New(operations, channel, store, host, logger).WithTableWidth(dependencies.TerminalWidth())

			rendered, err := dispatcher.Execute(command.Context(), operation.Name, collected, format)
			if err != nil {
				return err
			}
			if rendered == "" {
				return nil
			}
			if _, err := fmt.Fprintln(command.OutOrStdout(), rendered); err != nil {
				return err
			}
			if settings.resolveCopy(command) {
				if err := dependencies.Copier.Copy(rendered); err != nil {
					return fmt.Errorf(copyOutputFormat, err)
				}
			}
			return nil
		},
	}
	registered, err := bindOptionFlags(operationCommand, operation.Options)
	if err != nil {
		operationCommand.RunE = func(*cobra.Command, []string) error {
			return fmt.Errorf(operationFlagsFormat, operation.Name, err)
		}
		return operationCommand
	}
	bindings = registered
	return operationCommand
}

func operationSummary(operation registry.OperationSpec) string {
	if operation.Summary != "" {
		return operation.Summary
	}
	switch operation.Handler {
	case registry.HandlerLogin:
		return loginShortDescription
	case registry.HandlerLogout:
		return logoutShortDescription
	default:
		return fmt.Sprintf(operationShortFormat, operation.RemoteMethod)
	}
}
