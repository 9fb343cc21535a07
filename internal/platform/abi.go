package platform

import (
	"errors"
	"fmt"

	"github.com/vk/gdcore/internal/dynlib"
)

// ABIVersion is the plugin contract version this build understands.
const ABIVersion = 1

// Exported symbol names. A platform library must export both platform
// symbols and an extension library both extension symbols; a library missing
// either half is rejected whole.
const (
	CreatePlatformSymbol   = "CreateGDPlatform"
	DestroyPlatformSymbol  = "DestroyGDPlatform"
	CreateExtensionSymbol  = "CreateGDExtension"
	DestroyExtensionSymbol = "DestroyGDExtension"
	// ABIVersionSymbol is optional. When exported it must be an *int equal
	// to ABIVersion.
	ABIVersionSymbol = "GDPluginABIVersion"
)

// ErrABIVersion is returned for libraries built against another contract.
var ErrABIVersion = errors.New("plugin ABI version mismatch")

type (
	CreatePlatformFunc   func() Platform
	DestroyPlatformFunc  func(Platform)
	CreateExtensionFunc  func() *Extension
	DestroyExtensionFunc func(*Extension)
)

// CheckABI verifies the optional version symbol of lib.
func CheckABI(lib dynlib.Library) error {
	if _, err := lib.Lookup(ABIVersionSymbol); err != nil {
		if errors.Is(err, dynlib.ErrNotFound) {
			return nil
		}
		return err
	}
	v, err := dynlib.Resolve[*int](lib, ABIVersionSymbol)
	if err != nil {
		return err
	}
	if v == nil || *v != ABIVersion {
		got := "nil"
		if v != nil {
			got = fmt.Sprint(*v)
		}
		return fmt.Errorf("%w: library '%s' has %s, want %d", ErrABIVersion, lib.Path(), got, ABIVersion)
	}
	return nil
}

// PlatformEntryPoints resolves the factory and destructor of a platform
// library.
func PlatformEntryPoints(lib dynlib.Library) (CreatePlatformFunc, DestroyPlatformFunc, error) {
	create, err := dynlib.Resolve[CreatePlatformFunc](lib, CreatePlatformSymbol)
	if err != nil {
		return nil, nil, err
	}
	destroy, err := dynlib.Resolve[DestroyPlatformFunc](lib, DestroyPlatformSymbol)
	if err != nil {
		return nil, nil, err
	}
	return create, destroy, nil
}

// ExtensionEntryPoints resolves the factory and destructor of an extension
// library.
func ExtensionEntryPoints(lib dynlib.Library) (CreateExtensionFunc, DestroyExtensionFunc, error) {
	create, err := dynlib.Resolve[CreateExtensionFunc](lib, CreateExtensionSymbol)
	if err != nil {
		return nil, nil, err
	}
	destroy, err := dynlib.Resolve[DestroyExtensionFunc](lib, DestroyExtensionSymbol)
	if err != nil {
		return nil, nil, err
	}
	return create, destroy, nil
}

// Exports builds the symbol table of a compiled-in platform library.
func Exports(create CreatePlatformFunc, destroy DestroyPlatformFunc) dynlib.Symbols {
	version := ABIVersion
	return dynlib.Symbols{
		CreatePlatformSymbol:  create,
		DestroyPlatformSymbol: destroy,
		ABIVersionSymbol:      &version,
	}
}

// ExtensionExports builds the symbol table of a compiled-in extension
// library.
func ExtensionExports(create CreateExtensionFunc, destroy DestroyExtensionFunc) dynlib.Symbols {
	version := ABIVersion
	return dynlib.Symbols{
		CreateExtensionSymbol:  create,
		DestroyExtensionSymbol: destroy,
		ABIVersionSymbol:       &version,
	}
}
