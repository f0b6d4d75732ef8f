package models

type VendorError struct {
	Vendor string `json:"vendor"`
	Error  string `json:"error"`
}

// ProviderDiagnostics summarises one gateway batch.
type ProviderDiagnostics struct {
	ResolvedIDs map[string]string        `json:"resolvedIds"`
	Errors      map[string][]VendorError `json:"errors"`
	Proxies     map[string]string        `json:"proxies"`
}

func NewProviderDiagnostics() ProviderDiagnostics {
	return ProviderDiagnostics{
		ResolvedIDs: map[string]string{},
		Errors:      map[string][]VendorError{},
		Proxies:     map[string]string{},
	}
}

const (
	CoreStatusOK      = "ok"
	CoreStatusMissing = "missing"
)

// Diagnostics is attached to every build outcome.
type Diagnostics struct {
	AsOfDateAttempted   Date                `json:"asof_date_attempted"`
	MissingCoreSymbols  []string            `json:"missing_core_symbols"`
	CoreSymbolStatus    map[string]string   `json:"core_symbol_status"`
	ProviderDiagnostics ProviderDiagnostics `json:"provider_diagnostics"`
}
