package asm

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// FileReader is the collaborator boundary through which the driver reads
// source and !binary files. Keeping it an interface, rather than importing
// os directly, lets tests substitute an in-memory filesystem.
type FileReader interface {
	ReadFile(path string) ([]byte, error)
	Exists(path string) bool
}

// osFileReader is the default FileReader, backed by the real filesystem.
type osFileReader struct{}

func (osFileReader) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

func (osFileReader) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// pathResolver implements §6's collaborator contract: given a filename and
// the file that is including it, try the sibling directory first, then each
// registered search path in insertion order, then the process's working
// directory.
type pathResolver struct {
	reader      FileReader
	searchPaths []string
}

func newPathResolver(r FileReader) *pathResolver {
	return &pathResolver{reader: r}
}

func (r *pathResolver) AddIncludePath(path string) {
	r.searchPaths = append(r.searchPaths, path)
}

func (r *pathResolver) AddIncludePathsFromEnv(varName, delimiter string) {
	v := os.Getenv(varName)
	if v == "" {
		return
	}
	for _, p := range strings.Split(v, delimiter) {
		if p != "" {
			r.AddIncludePath(p)
		}
	}
}

// Resolve returns the first existing candidate path for filename, tried
// relative to currentFile's directory, then every search path, then cwd.
func (r *pathResolver) Resolve(filename, currentFile string) (string, error) {
	if filepath.IsAbs(filename) && r.reader.Exists(filename) {
		return filename, nil
	}

	if currentFile != "" {
		candidate := filepath.Join(filepath.Dir(currentFile), filename)
		if r.reader.Exists(candidate) {
			return candidate, nil
		}
	}
	for _, dir := range r.searchPaths {
		candidate := filepath.Join(dir, filename)
		if r.reader.Exists(candidate) {
			return candidate, nil
		}
	}
	if r.reader.Exists(filename) {
		return filename, nil
	}
	return "", errFileNotFound
}

// ParseDefine implements the `-D NAME[=VALUE]` contract of §6: VALUE parses
// as hex when prefixed `$` or `0x`/`0X`, binary when prefixed `%`, else
// decimal; an absent value defaults to 1.
func ParseDefine(s string) (name string, value int32, err error) {
	eq := strings.IndexByte(s, '=')
	if eq < 0 {
		return s, 1, nil
	}
	name, raw := s[:eq], s[eq+1:]

	switch {
	case strings.HasPrefix(raw, "$"):
		v, perr := strconv.ParseInt(raw[1:], 16, 64)
		return name, int32(v), perr
	case strings.HasPrefix(raw, "0x") || strings.HasPrefix(raw, "0X"):
		v, perr := strconv.ParseInt(raw[2:], 16, 64)
		return name, int32(v), perr
	case strings.HasPrefix(raw, "%"):
		v, perr := strconv.ParseInt(raw[1:], 2, 64)
		return name, int32(v), perr
	default:
		v, perr := strconv.ParseInt(raw, 10, 64)
		return name, int32(v), perr
	}
}
