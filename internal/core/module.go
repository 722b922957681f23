package core

// ModuleID uniquely identifies a module, namespaced by kind
// (e.g. "store.sqlite", "tools.packages", "gateway.http").
type ModuleID string

// ModuleInfo describes a registered module.
type ModuleInfo struct {
	// ID is the unique module identifier.
	ID ModuleID

	// New constructs a fresh, unconfigured instance of the module.
	New func() Module
}

// Module is the minimal interface all modules implement. Lifecycle hooks
// (Configurable, Provisioner, Validator, Starter, Stopper) are optional
// and discovered by type assertion.
type Module interface {
	ModuleInfo() ModuleInfo
}
