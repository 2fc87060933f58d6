package registry

import "github.com/temirov/vcoctl/internal/types"

const (
	OperationLogin  = "login"
	OperationLogout = "logout"

	defaultEnterpriseID int64 = 1
	defaultNetworkID    int64 = 1
)

const (
	edgesTemplate = `{
	"with": ["certificates", "configuration", "links", "recentLinks", "site"],
	"enterpriseId": "{{id:int}}"
}`
	networkEnterprisesTemplate = `{
	"networkId": "{{id:int}}",
	"with": ["edges", "edgeCount"]
}`
	networkGatewaysTemplate = `{
	"networkId": "{{id:int}}",
	"with": ["site", "roles", "pools", "dataCenters", "certificates", "enterprises", "handOffEdges", "enterpriseAssociationCounts"]
}`
	eventsTemplate = `{
	"enterpriseId": "{{id:int}}",
	"interval": {
		"start": "{{start:datetime?}}",
		"end": "{{end:datetime?}}"
	}
}`
	systemPropertyTemplate    = `{"name": "{{name}}"}`
	systemPropertySetTemplate = `{"name": "{{name}}", "value": "{{value}}"}`
	liveDataTemplate          = `{"token": "{{token}}"}`
)

// Builtin returns the operations shipped with vcoctl.
func Builtin() []Declaration {
	return []Declaration{
		{
			Name:    OperationLogin,
			Handler: HandlerLogin,
			Summary: "Log in to the orchestrator and store the session",
			Options: append([]OptionSpec{
				{Flag: "username", Kind: types.KindString, Required: true, Destination: types.ArgumentUsername, Usage: "username for authentication"},
				{Flag: "password", Kind: types.KindSecret, Destination: types.ArgumentPassword, Usage: "password for authentication, prompted when omitted"},
				{Flag: "operator", Kind: types.KindFlag, Default: true, Destination: types.ArgumentOperator, Usage: "log in as an operator; --operator=false logs in as an enterprise user"},
			}, SuppressAllCommon()...),
		},
		{
			Name:    OperationLogout,
			Handler: HandlerLogout,
			Summary: "Log out and delete the stored session",
			Options: SuppressAllCommon(),
		},
		{
			Name:      "edges_get",
			Method:    "enterprise/getEnterpriseEdges",
			Template:  edgesTemplate,
			Processor: ProcessorFormatByName,
			Summary:   "List the edges of an enterprise",
			Options: []OptionSpec{
				{Flag: "id", Kind: types.KindInt, Default: defaultEnterpriseID, Usage: "enterprise id"},
			},
		},
		{
			Name:      "enterprises_get",
			Method:    "network/getNetworkEnterprises",
			Template:  networkEnterprisesTemplate,
			Processor: ProcessorFormatByName,
			Summary:   "List the enterprises of a network",
			Options: []OptionSpec{
				{Flag: "id", Kind: types.KindInt, Default: defaultNetworkID, Usage: "network id"},
			},
		},
		{
			Name:      "gateways_get",
			Method:    "network/getNetworkGateways",
			Template:  networkGatewaysTemplate,
			Processor: ProcessorFormatByName,
			Summary:   "List the gateways of a network",
			Options: []OptionSpec{
				{Flag: "id", Kind: types.KindInt, Default: defaultNetworkID, Usage: "network id"},
			},
		},
		{
			Name:      "events_get",
			Method:    "event/getEnterpriseEvents",
			Template:  eventsTemplate,
			Processor: ProcessorFormatByName,
			Summary:   "List the events of an enterprise",
			Options: []OptionSpec{
				{Flag: "id", Kind: types.KindInt, Default: defaultEnterpriseID, Usage: "enterprise id"},
				{Flag: "start", Kind: types.KindDatetime, Usage: "interval start (epoch milliseconds or date)"},
				{Flag: "end", Kind: types.KindDatetime, Usage: "interval end (epoch milliseconds or date)"},
			},
		},
		{
			Name:      "sysprops_get",
			Method:    "systemProperty/getSystemProperties",
			Processor: ProcessorFormatByName,
			Summary:   "List the system properties",
		},
		{
			Name:      "sysprop_get",
			Method:    "systemProperty/getSystemProperty",
			Template:  systemPropertyTemplate,
			Processor: ProcessorFormatByName,
			Summary:   "Show one system property",
			Options: []OptionSpec{
				{Flag: "name", Kind: types.KindString, Required: true, Destination: types.ArgumentName, Usage: "system property name"},
			},
		},
		{
			Name:      "sysprop_set",
			Method:    "systemProperty/insertOrUpdateSystemProperty",
			Template:  systemPropertySetTemplate,
			Processor: ProcessorNone,
			Summary:   "Insert or update a system property",
			Options: append([]OptionSpec{
				{Flag: "name", Kind: types.KindString, Required: true, Destination: types.ArgumentName, Usage: "name of the new or edited system property"},
				{Flag: "value", Kind: types.KindString, Required: true, Usage: "new value of the system property"},
			}, Suppress(flagFilters, flagSearch, flagRowsName, flagStats)...),
		},
		{
			Name:      "livedata_read",
			Method:    "liveMode/readLiveData",
			Template:  liveDataTemplate,
			Processor: ProcessorFormatByName,
			Summary:   "Read live data for a live mode token",
			Options: []OptionSpec{
				{Flag: "token", Kind: types.KindString, Required: true, Usage: "live mode token"},
			},
		},
	}
}
