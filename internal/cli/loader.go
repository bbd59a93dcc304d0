package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/roach88/rtinit/internal/ir"
	"github.com/roach88/rtinit/internal/parser"
)

// DeclExt is the file extension of declaration files.
const DeclExt = ".rtinit"

// LoadResult contains the declaration files loaded from a directory.
type LoadResult struct {
	Files     []*ir.File // parsed files, in sorted path order
	DeclCount int        // total clauses across all files
}

// LoadError represents an error that occurred while loading declarations.
type LoadError struct {
	Code    string
	Message string
	Pos     ir.Pos // source position if the error came from a clause
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// FindDeclFiles returns the .rtinit files directly inside dir, sorted so
// every run processes files in the same order.
func FindDeclFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), DeclExt) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// LoadDecls loads and parses every declaration file in dir. All errors
// are collected: syntax errors in one file do not stop the others from
// loading, so a single run reports everything that is wrong.
func LoadDecls(dir string) (*LoadResult, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("declarations directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing declarations directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	paths, err := FindDeclFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(paths) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no %s files found in %s", DeclExt, dir)}}
	}

	result := &LoadResult{}
	var errs []error
	for _, path := range paths {
		file, fileErrs := LoadDeclFile(path)
		errs = append(errs, fileErrs...)
		if file != nil {
			result.Files = append(result.Files, file)
			result.DeclCount += len(file.Decls)
		}
	}

	return result, errs
}

// LoadDeclFile reads and parses a single declaration file. Parse errors
// are converted to LoadErrors carrying the clause position. A partially
// parsed file is still returned so callers can report on what did parse.
func LoadDeclFile(path string) (*ir.File, []error) {
	src, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("declaration file not found: %s", path)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("reading %s: %v", path, err)}}
	}

	file, parseErrs := parser.Parse(path, src)
	errs := make([]error, 0, len(parseErrs))
	for _, perr := range parseErrs {
		errs = append(errs, convertParseError(perr))
	}
	return file, errs
}

// convertParseError maps a parser error to a LoadError with the syntax
// error code, preserving the clause position.
func convertParseError(err error) error {
	if perr, ok := err.(*parser.ParseError); ok {
		return &LoadError{
			Code:    ErrCodeSyntax,
			Message: perr.Message,
			Pos:     perr.Pos,
		}
	}
	return &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
}
