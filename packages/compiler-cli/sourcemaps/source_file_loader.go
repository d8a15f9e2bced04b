// Package sourcemaps loads source files together with the chain of source maps
// that describe where their contents came from.
package sourcemaps

import (
	"encoding/base64"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"
	"github.com/spf13/afero"

	"ngc-linker/packages/compiler-cli/logging"
)

var (
	inlineMapRegexp   = regexp.MustCompile(`^\s*//[#@] sourceMappingURL=data:(?:application|text)/json;(?:charset[:=]\S+?;)?base64,(.*)$`)
	externalMapRegexp = regexp.MustCompile(`(?://[@#][ \t]+sourceMappingURL=([^\s'"]+?)[ \t]*$)|(?:/\*[@#][ \t]+sourceMappingURL=([^*]+?)[ \t]*(?:\*/)[ \t]*$)`)
	schemeRegexp      = regexp.MustCompile(`(?i)^([a-z][a-z0-9.-]*)://?/?([^/]+)`)
)

// ContentOrigin says where the contents of a file or map were obtained.
type ContentOrigin int

const (
	// ContentOriginProvided means the caller passed the contents in
	ContentOriginProvided ContentOrigin = iota
	// ContentOriginInline means the contents were embedded in another file
	ContentOriginInline
	// ContentOriginFileSystem means the contents were read from disk
	ContentOriginFileSystem
)

// RawSourceMap is the JSON form of a v3 source map.
type RawSourceMap struct {
	Version        int       `json:"version"`
	File           string    `json:"file,omitempty"`
	SourceRoot     string    `json:"sourceRoot,omitempty"`
	Sources        []string  `json:"sources"`
	SourcesContent []*string `json:"sourcesContent,omitempty"`
	Names          []string  `json:"names"`
	Mappings       string    `json:"mappings"`
}

// MapAndPath is a source map and the path it was loaded from, if any.
type MapAndPath struct {
	Map     *RawSourceMap
	MapPath string
}

// SourceMapInfo is a loaded map plus where it came from.
type SourceMapInfo struct {
	MapAndPath
	Origin ContentOrigin
}

// SourceFile is a loaded file with its source map and the files the map
// points at. Entries of Sources are nil when a source could not be loaded.
type SourceFile struct {
	SourcePath string
	Contents   string
	SourceMap  *SourceMapInfo
	Sources    []*SourceFile
}

// SourceFileLoader reads source files and, transitively, their source maps.
type SourceFileLoader struct {
	fs        afero.Fs
	logger    logging.Logger
	schemeMap map[string]string

	currentPaths []string
}

// NewSourceFileLoader creates a loader. schemeMap maps URL schemes found in
// source maps (e.g. "webpack") to file system paths.
func NewSourceFileLoader(fs afero.Fs, logger logging.Logger, schemeMap map[string]string) *SourceFileLoader {
	lowered := make(map[string]string, len(schemeMap))
	for scheme, path := range schemeMap {
		lowered[strings.ToLower(scheme)] = path
	}
	return &SourceFileLoader{fs: fs, logger: logger, schemeMap: lowered}
}

// LoadSourceFile loads sourcePath. When contents is nil the file is read from
// disk; when mapAndPath is nil the map is located from the file's trailing
// sourceMappingURL comment or a sibling `.map` file. Returns nil when the file
// does not exist or cannot be fully loaded.
func (l *SourceFileLoader) LoadSourceFile(sourcePath string, contents *string, mapAndPath *MapAndPath) *SourceFile {
	origin := ContentOriginFileSystem
	if contents != nil {
		origin = ContentOriginProvided
	}
	var info *SourceMapInfo
	if mapAndPath != nil {
		info = &SourceMapInfo{MapAndPath: *mapAndPath, Origin: ContentOriginProvided}
	}
	return l.loadSourceFileInternal(sourcePath, contents, origin, info)
}

func (l *SourceFileLoader) loadSourceFileInternal(
	sourcePath string,
	contents *string,
	origin ContentOrigin,
	info *SourceMapInfo,
) *SourceFile {
	previousPaths := append([]string(nil), l.currentPaths...)
	defer func() { l.currentPaths = previousPaths }()

	file, err := l.load(sourcePath, contents, origin, info)
	if err != nil {
		l.logger.Warn("Unable to fully load file for source-map flattening", "path", sourcePath, "error", err.Error())
		return nil
	}
	return file
}

func (l *SourceFileLoader) load(sourcePath string, contents *string, origin ContentOrigin, info *SourceMapInfo) (*SourceFile, error) {
	if contents == nil {
		exists, err := afero.Exists(l.fs, sourcePath)
		if err != nil {
			return nil, errors.Wrapf(err, "checking %s", sourcePath)
		}
		if !exists {
			return nil, nil
		}
		text, err := l.readSourceFile(sourcePath)
		if err != nil {
			return nil, err
		}
		contents = &text
	}

	if info == nil {
		var err error
		if info, err = l.loadSourceMap(sourcePath, *contents, origin); err != nil {
			return nil, err
		}
	}

	var sources []*SourceFile
	if info != nil {
		basePath := info.MapPath
		if basePath == "" {
			basePath = sourcePath
		}
		sources = l.processSources(basePath, info)
	}
	return &SourceFile{SourcePath: sourcePath, Contents: *contents, SourceMap: info, Sources: sources}, nil
}

func (l *SourceFileLoader) loadSourceMap(sourcePath, contents string, origin ContentOrigin) (*SourceMapInfo, error) {
	lastLine := lastNonEmptyLine(contents)
	if inline := inlineMapRegexp.FindStringSubmatch(lastLine); inline != nil {
		decoded, err := base64.StdEncoding.DecodeString(inline[1])
		if err != nil {
			return nil, errors.Wrapf(err, "decoding inline source map of %s", sourcePath)
		}
		raw := &RawSourceMap{}
		if err := json.Unmarshal(decoded, raw); err != nil {
			return nil, errors.Wrapf(err, "parsing inline source map of %s", sourcePath)
		}
		return &SourceMapInfo{MapAndPath: MapAndPath{Map: raw}, Origin: ContentOriginInline}, nil
	}

	if origin == ContentOriginInline {
		// Inline sources cannot refer to external maps.
		return nil, nil
	}

	if external := externalMapRegexp.FindStringSubmatch(lastLine); external != nil {
		fileName := external[1]
		if fileName == "" {
			fileName = external[2]
		}
		mapPath := resolvePath(filepath.Dir(sourcePath), fileName)
		raw, err := l.readRawSourceMap(mapPath)
		if err != nil {
			l.logger.Warn("Unable to fully load file for source-map flattening", "path", sourcePath, "error", err.Error())
			return nil, nil
		}
		return &SourceMapInfo{MapAndPath: MapAndPath{Map: raw, MapPath: mapPath}, Origin: ContentOriginFileSystem}, nil
	}

	impliedMapPath := sourcePath + ".map"
	if exists, _ := afero.Exists(l.fs, impliedMapPath); exists {
		raw, err := l.readRawSourceMap(impliedMapPath)
		if err != nil {
			return nil, err
		}
		return &SourceMapInfo{MapAndPath: MapAndPath{Map: raw, MapPath: impliedMapPath}, Origin: ContentOriginFileSystem}, nil
	}
	return nil, nil
}

func (l *SourceFileLoader) processSources(basePath string, info *SourceMapInfo) []*SourceFile {
	sourceRoot := resolvePath(filepath.Dir(basePath), l.replaceSchemeWithPath(info.Map.SourceRoot))
	sources := make([]*SourceFile, len(info.Map.Sources))
	for i, source := range info.Map.Sources {
		path := resolvePath(sourceRoot, l.replaceSchemeWithPath(source))
		var content *string
		if i < len(info.Map.SourcesContent) {
			content = info.Map.SourcesContent[i]
		}
		origin := ContentOriginFileSystem
		if content != nil && info.Origin != ContentOriginProvided {
			origin = ContentOriginInline
		}
		sources[i] = l.loadSourceFileInternal(path, content, origin, nil)
	}
	return sources
}

func (l *SourceFileLoader) readSourceFile(sourcePath string) (string, error) {
	if err := l.trackPath(sourcePath); err != nil {
		return "", err
	}
	data, err := afero.ReadFile(l.fs, sourcePath)
	if err != nil {
		return "", errors.Wrapf(err, "reading %s", sourcePath)
	}
	return string(data), nil
}

func (l *SourceFileLoader) readRawSourceMap(mapPath string) (*RawSourceMap, error) {
	if err := l.trackPath(mapPath); err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(l.fs, mapPath)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", mapPath)
	}
	raw := &RawSourceMap{}
	if err := json.Unmarshal(data, raw); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", mapPath)
	}
	return raw, nil
}

func (l *SourceFileLoader) trackPath(path string) error {
	for _, p := range l.currentPaths {
		if p == path {
			return errors.Newf(
				"Circular source file mapping dependency: %s -> %s",
				strings.Join(l.currentPaths, " -> "), path,
			)
		}
	}
	l.currentPaths = append(l.currentPaths, path)
	return nil
}

func (l *SourceFileLoader) replaceSchemeWithPath(path string) string {
	return schemeRegexp.ReplaceAllStringFunc(path, func(match string) string {
		parts := schemeRegexp.FindStringSubmatch(match)
		if mapped, ok := l.schemeMap[strings.ToLower(parts[1])]; ok {
			return mapped + "/" + parts[2]
		}
		return match
	})
}

// resolvePath resolves path against base unless it is already absolute.
func resolvePath(base, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}

func lastNonEmptyLine(contents string) string {
	trimmed := strings.TrimRight(contents, "\r\n\t ")
	if i := strings.LastIndexAny(trimmed, "\r\n"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}
