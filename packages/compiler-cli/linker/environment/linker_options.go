package environment

import (
	"github.com/cockroachdb/errors"
)

// UnknownVersionHandling says what to do when a declaration's version matches
// none of the registered linker ranges.
type UnknownVersionHandling string

const (
	// UnknownVersionError fails the declaration
	UnknownVersionError UnknownVersionHandling = "error"
	// UnknownVersionWarn logs a warning and falls back to the newest linker
	UnknownVersionWarn UnknownVersionHandling = "warn"
	// UnknownVersionIgnore silently falls back to the newest linker
	UnknownVersionIgnore UnknownVersionHandling = "ignore"
)

// LinkerOptions are the fully resolved options of a linking session.
type LinkerOptions struct {
	// EnableI18nLegacyMessageIdFormat renders `$localize` messages with legacy
	// format ids.
	EnableI18nLegacyMessageIdFormat bool `mapstructure:"enableI18nLegacyMessageIdFormat"`
	// I18nNormalizeLineEndingsInICUs normalizes line endings inside ICU
	// expressions before computing message ids.
	I18nNormalizeLineEndingsInICUs bool `mapstructure:"i18nNormalizeLineEndingsInICUs"`
	// I18nUseExternalIds uses external message ids for i18n placeholders.
	I18nUseExternalIds bool `mapstructure:"i18nUseExternalIds"`
	// SourceMapping enables loading of source files and their maps so
	// templates can be mapped back to their original location.
	SourceMapping bool `mapstructure:"sourceMapping"`
	// LinkerJitMode emits NgModule scopes inline for JIT consumption.
	LinkerJitMode bool `mapstructure:"linkerJitMode"`
	// UnknownDeclarationVersionHandling is one of "error", "warn", "ignore".
	UnknownDeclarationVersionHandling UnknownVersionHandling `mapstructure:"unknownDeclarationVersionHandling"`
}

// LinkerPartialOptions is LinkerOptions with every field optional.
type LinkerPartialOptions struct {
	EnableI18nLegacyMessageIdFormat   *bool                   `mapstructure:"enableI18nLegacyMessageIdFormat"`
	I18nNormalizeLineEndingsInICUs    *bool                   `mapstructure:"i18nNormalizeLineEndingsInICUs"`
	I18nUseExternalIds                *bool                   `mapstructure:"i18nUseExternalIds"`
	SourceMapping                     *bool                   `mapstructure:"sourceMapping"`
	LinkerJitMode                     *bool                   `mapstructure:"linkerJitMode"`
	UnknownDeclarationVersionHandling *UnknownVersionHandling `mapstructure:"unknownDeclarationVersionHandling"`
}

// DefaultLinkerOptions are the options used for every field left unset.
var DefaultLinkerOptions = LinkerOptions{
	EnableI18nLegacyMessageIdFormat:   true,
	I18nNormalizeLineEndingsInICUs:    false,
	I18nUseExternalIds:                false,
	SourceMapping:                     true,
	LinkerJitMode:                     false,
	UnknownDeclarationVersionHandling: UnknownVersionError,
}

// Resolve fills every unset field from DefaultLinkerOptions.
func (o LinkerPartialOptions) Resolve() (LinkerOptions, error) {
	resolved := DefaultLinkerOptions
	if o.EnableI18nLegacyMessageIdFormat != nil {
		resolved.EnableI18nLegacyMessageIdFormat = *o.EnableI18nLegacyMessageIdFormat
	}
	if o.I18nNormalizeLineEndingsInICUs != nil {
		resolved.I18nNormalizeLineEndingsInICUs = *o.I18nNormalizeLineEndingsInICUs
	}
	if o.I18nUseExternalIds != nil {
		resolved.I18nUseExternalIds = *o.I18nUseExternalIds
	}
	if o.SourceMapping != nil {
		resolved.SourceMapping = *o.SourceMapping
	}
	if o.LinkerJitMode != nil {
		resolved.LinkerJitMode = *o.LinkerJitMode
	}
	if o.UnknownDeclarationVersionHandling != nil {
		switch h := *o.UnknownDeclarationVersionHandling; h {
		case UnknownVersionError, UnknownVersionWarn, UnknownVersionIgnore:
			resolved.UnknownDeclarationVersionHandling = h
		default:
			return LinkerOptions{}, errors.WithHint(
				errors.Newf("invalid unknownDeclarationVersionHandling %q", string(h)),
				`use one of "error", "warn" or "ignore"`,
			)
		}
	}
	return resolved, nil
}
