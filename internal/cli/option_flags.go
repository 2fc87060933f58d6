package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/temirov/vcoctl/internal/binder"
	"github.com/temirov/vcoctl/internal/registry"
	"github.com/temirov/vcoctl/internal/types"
)

const (
	datetimeFlagTypeName       = "datetime"
	secretPromptFormat         = "%s: "
	invalidOptionDefaultFormat = "option --%s: invalid default %v: %w"
	readSecretFormat           = "option --%s: %w"
)

// datetimeFlagValue stores a date or epoch value as epoch milliseconds.
type datetimeFlagValue struct {
	milliseconds int64
}

func (value *datetimeFlagValue) Set(input string) error {
	milliseconds, err := binder.EpochMilliseconds(input)
	if err != nil {
		return err
	}
	value.milliseconds = milliseconds
	return nil
}

func (value *datetimeFlagValue) String() string {
	if value == nil {
		return ""
	}
	return strconv.FormatInt(value.milliseconds, 10)
}

func (value *datetimeFlagValue) Type() string {
	return datetimeFlagTypeName
}

// optionBinding ties one operation option to the flag that collects it.
type optionBinding struct {
	option     registry.OptionSpec
	hasDefault bool
	text       string
	number     int64
	flag       bool
	datetime   datetimeFlagValue
}

// optionBindings registers a flag per option and collects their values into Arguments.
type optionBindings []*optionBinding

func bindOptionFlags(command *cobra.Command, options []registry.OptionSpec) (optionBindings, error) {
	flagSet := command.Flags()
	bindings := make(optionBindings, 0, len(options))
	for _, option := range options {
		binding := &optionBinding{option: option, hasDefault: option.Default != nil}
		if err := binding.register(flagSet); err != nil {
			return nil, err
		}
		if option.Required && option.Kind != types.KindSecret && !binding.hasDefault {
			if err := command.MarkFlagRequired(option.Flag); err != nil {
				return nil, err
			}
		}
		bindings = append(bindings, binding)
	}
	return bindings, nil
}

func (binding *optionBinding) register(flagSet *pflag.FlagSet) error {
	option := binding.option
	switch option.Kind {
	case types.KindInt:
		var defaultValue int64
		if binding.hasDefault {
			converted, err := cast.ToInt64E(option.Default)
			if err != nil {
				return fmt.Errorf(invalidOptionDefaultFormat, option.Flag, option.Default, err)
			}
			defaultValue = converted
		}
		flagSet.Int64Var(&binding.number, option.Flag, defaultValue, option.Usage)
	case types.KindFlag:
		var defaultValue bool
		if binding.hasDefault {
			converted, err := cast.ToBoolE(option.Default)
			if err != nil {
				return fmt.Errorf(invalidOptionDefaultFormat, option.Flag, option.Default, err)
			}
			defaultValue = converted
		}
		registerBooleanFlag(flagSet, &binding.flag, option.Flag, defaultValue, option.Usage)
	case types.KindDatetime:
		if binding.hasDefault {
			converted, err := binder.EpochMilliseconds(option.Default)
			if err != nil {
				return fmt.Errorf(invalidOptionDefaultFormat, option.Flag, option.Default, err)
			}
			binding.datetime.milliseconds = converted
		}
		flagSet.Var(&binding.datetime, option.Flag, option.Usage)
	default:
		var defaultValue string
		if binding.hasDefault {
			converted, err := cast.ToStringE(option.Default)
			if err != nil {
				return fmt.Errorf(invalidOptionDefaultFormat, option.Flag, option.Default, err)
			}
			defaultValue = converted
		}
		flagSet.StringVar(&binding.text, option.Flag, defaultValue, option.Usage)
	}
	return nil
}

// collect returns the parsed option values. Options without a value and without a default are
// absent so optional template placeholders drop out; flags are always present. An absent secret
// is read with readSecret.
func (bindings optionBindings) collect(flagSet *pflag.FlagSet, readSecret func(prompt string) (string, error)) (types.Arguments, error) {
	arguments := types.Arguments{}
	for _, binding := range bindings {
		option := binding.option
		provided := flagSet.Changed(option.Flag) || binding.hasDefault
		switch option.Kind {
		case types.KindFlag:
			arguments[option.Key()] = binding.flag
		case types.KindInt:
			if provided {
				arguments[option.Key()] = binding.number
			}
		case types.KindDatetime:
			if provided {
				arguments[option.Key()] = binding.datetime.milliseconds
			}
		case types.KindSecret:
			if provided {
				arguments[option.Key()] = binding.text
				continue
			}
			if readSecret == nil {
				continue
			}
			secret, err := readSecret(fmt.Sprintf(secretPromptFormat, option.Flag))
			if err != nil {
				return nil, fmt.Errorf(readSecretFormat, option.Flag, err)
			}
			arguments[option.Key()] = secret
		default:
			if provided {
				arguments[option.Key()] = binding.text
			}
		}
	}
	return arguments, nil
}
