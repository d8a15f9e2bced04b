package core

import (
	"ngc-linker/packages/compiler/css"
)

// ViewEncapsulation represents the encapsulation strategy for component styles
type ViewEncapsulation int

const (
	ViewEncapsulationEmulated ViewEncapsulation = iota
	// Historically the 1 value was for Native encapsulation which has been removed as of v11.
	_
	ViewEncapsulationNone
	ViewEncapsulationShadowDom
)

// ChangeDetectionStrategy represents the change detection strategy
type ChangeDetectionStrategy int

const (
	ChangeDetectionStrategyOnPush ChangeDetectionStrategy = iota
	ChangeDetectionStrategyDefault
)

// InputFlags describes flags for an input
type InputFlags int

const (
	InputFlagsNone                       InputFlags = 0
	InputFlagsSignalBased                InputFlags = 1 << 0
	InputFlagsHasDecoratorInputTransform InputFlags = 1 << 1
)

// InjectFlags represents injection flags for dependency injection
type InjectFlags int

const (
	InjectFlagsDefault  InjectFlags = 0
	InjectFlagsHost     InjectFlags = 1 << 0
	InjectFlagsSelf     InjectFlags = 1 << 1
	InjectFlagsSkipSelf InjectFlags = 1 << 2
	InjectFlagsOptional InjectFlags = 1 << 3
	// InjectFlagsForPipe marks a dependency requested by a pipe
	InjectFlagsForPipe InjectFlags = 1 << 4
)

// FactoryTarget identifies what kind of class a factory builds
type FactoryTarget int

const (
	FactoryTargetDirective FactoryTarget = iota
	FactoryTargetComponent
	FactoryTargetInjectable
	FactoryTargetPipe
	FactoryTargetNgModule
)

// SelectorFlags are flags used to generate R3-style CSS Selectors
type SelectorFlags int

const (
	SelectorFlagsNOT       SelectorFlags = 0b0001 // Beginning of a new negative selector
	SelectorFlagsATTRIBUTE SelectorFlags = 0b0010 // Mode for matching attributes
	SelectorFlagsELEMENT   SelectorFlags = 0b0100 // Mode for matching tag names
	SelectorFlagsCLASS     SelectorFlags = 0b1000 // Mode for matching class names
)

// R3CssSelector represents an R3 CSS selector
type R3CssSelector []interface{} // string | SelectorFlags

// R3CssSelectorList represents a list of R3 CSS selectors
type R3CssSelectorList []R3CssSelector

// RenderFlags are flags passed into template functions to determine which blocks should be executed
type RenderFlags int

const (
	RenderFlagsCreate RenderFlags = 0b01
	RenderFlagsUpdate RenderFlags = 0b10
)

// AttributeMarker is a set of marker values to be used in the attributes arrays
type AttributeMarker int

const (
	AttributeMarkerNamespaceURI AttributeMarker = iota
	AttributeMarkerClasses
	AttributeMarkerStyles
	AttributeMarkerBindings
	AttributeMarkerTemplate
	AttributeMarkerProjectAs
	AttributeMarkerI18n
)

// EmitDistinctChangesOnlyDefaultValue stores the default value of emitDistinctChangesOnly
const EmitDistinctChangesOnlyDefaultValue = true

// ParseSelectorToR3Selector parses a selector string to R3 selector format
func ParseSelectorToR3Selector(selector string) (R3CssSelectorList, error) {
	if selector == "" {
		return R3CssSelectorList{}, nil
	}
	selectors, err := css.ParseCssSelector(selector)
	if err != nil {
		return nil, err
	}
	list := make(R3CssSelectorList, len(selectors))
	for i, sel := range selectors {
		list[i] = parserSelectorToR3Selector(sel)
	}
	return list, nil
}

func classesOf(selector *css.CssSelector) R3CssSelector {
	if len(selector.ClassNames) == 0 {
		return nil
	}
	classes := R3CssSelector{SelectorFlagsCLASS}
	for _, name := range selector.ClassNames {
		classes = append(classes, name)
	}
	return classes
}

func attrsOf(selector *css.CssSelector) R3CssSelector {
	attrs := make(R3CssSelector, len(selector.Attrs))
	for i, a := range selector.Attrs {
		attrs[i] = a
	}
	return attrs
}

func parserSelectorToSimpleSelector(selector *css.CssSelector) R3CssSelector {
	elementName := ""
	if selector.Element != "*" {
		elementName = selector.Element
	}
	result := R3CssSelector{elementName}
	result = append(result, attrsOf(selector)...)
	return append(result, classesOf(selector)...)
}

func parserSelectorToNegativeSelector(selector *css.CssSelector) R3CssSelector {
	switch {
	case selector.Element != "":
		result := R3CssSelector{SelectorFlagsNOT | SelectorFlagsELEMENT, selector.Element}
		result = append(result, attrsOf(selector)...)
		return append(result, classesOf(selector)...)
	case len(selector.Attrs) > 0:
		result := R3CssSelector{SelectorFlagsNOT | SelectorFlagsATTRIBUTE}
		result = append(result, attrsOf(selector)...)
		return append(result, classesOf(selector)...)
	case len(selector.ClassNames) > 0:
		result := R3CssSelector{SelectorFlagsNOT | SelectorFlagsCLASS}
		for _, name := range selector.ClassNames {
			result = append(result, name)
		}
		return result
	default:
		return R3CssSelector{}
	}
}

func parserSelectorToR3Selector(selector *css.CssSelector) R3CssSelector {
	result := parserSelectorToSimpleSelector(selector)
	for _, not := range selector.NotSelectors {
		result = append(result, parserSelectorToNegativeSelector(not)...)
	}
	return result
}
