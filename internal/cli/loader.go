package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"cuelang.org/go/cue/token"

	"github.com/roach88/loom/internal/compiler"
)

// LoadError represents a file-level failure: a missing path, an unreadable
// or unparsable document, or an output that could not be written.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error code constants for file-level failures. Domain errors use the
// E1xx codes from compiler.CodeFor.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No harness documents found
	ErrCodeLoadFailed  = "E004" // Document or config unreadable
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // Document rejected by the schema
	ErrCodeWriteFailed = "E007" // Output or database write error
)

// documentExts are the file extensions treated as harness documents.
var documentExts = []string{".yml", ".yaml", ".cue"}

// IsDocument reports whether path has a harness document extension. The
// project config file is never a document.
func IsDocument(path string) bool {
	if filepath.Base(path) == DefaultConfigFile {
		return false
	}
	return slices.Contains(documentExts, strings.ToLower(filepath.Ext(path)))
}

// FindDocuments walks dir and returns every harness document in it, in
// lexical order.
func FindDocuments(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsDocument(path) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// ResolveInputs expands command arguments into document paths. A file is
// taken as given; a directory contributes every document inside it.
func ResolveInputs(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("path not found: %s", arg)}
		}
		if err != nil {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing %s: %v", arg, err)}
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		found, err := FindDocuments(arg)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
		}
		if len(found) == 0 {
			return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no harness documents found in %s", arg)}
		}
		paths = append(paths, found...)
	}
	return paths, nil
}

// LoadDocument reads and parses the document at path.
func LoadDocument(path string) (*compiler.Document, error) {
	doc, err := compiler.LoadFile(path)
	if err == nil {
		return doc, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("document not found: %s", path)}
	}
	return nil, convertCompileError(err, path)
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, path string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    ErrCodeBuildFailed,
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeLoadFailed,
		Message: fmt.Sprintf("%s: %v", path, err),
	}
}

// reportError writes err through the formatter and returns the ExitError
// for it. File-level failures exit 2 except schema rejections, which exit
// 1 like every other rejected document.
func reportError(f *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		exit := ExitCommandError
		if loadErr.Code == ErrCodeBuildFailed {
			exit = ExitFailure
		}
		msg := loadErr.Message
		if loadErr.Pos.IsValid() {
			msg = fmt.Sprintf("%s:%d:%d: %s", loadErr.Pos.Filename(), loadErr.Pos.Line(), loadErr.Pos.Column(), msg)
		}
		return f.Fail(exit, loadErr.Code, msg)
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	code := compiler.CodeFor(err)
	if code == compiler.ErrUnexpected {
		return f.Fail(ExitCommandError, ErrCodeGeneric, err.Error())
	}
	return f.Fail(ExitFailure, code, err.Error())
}
