// Package confspec loads conference settings written in CUE.
//
// A settings file defines a top-level "conference" struct:
//
//	conference: {
//		name: "Example 2026"
//		decisions: [{id: 1, name: "Accepted"}, {id: -1, name: "Rejected"}]
//		named_searches: [{name: "graphs", q: "ti:graph"}]
//		tags: [{tag: "order", order: true}, {tag: "auto", automatic: "ti:graph"}]
//	}
//
// The struct is checked against the embedded #Conference schema, decoded
// into an ir.Conf and then validated for rules the schema cannot express.
package confspec

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/papersearch/internal/ir"
)

//go:embed schema.cue
var schemaCUE string

// rootField is the top-level field holding the settings.
const rootField = "conference"

// CompileError is a settings error with its CUE position, if known.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// LoadFile compiles the settings in one CUE file.
func LoadFile(path string) (*ir.Conf, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	v := cuecontext.New().CompileBytes(src, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return Compile(v.LookupPath(cue.ParsePath(rootField)))
}

// LoadDir compiles the settings of the CUE package in dir. The files of
// the package are unified, so settings may be split across files.
func LoadDir(dir string) (*ir.Conf, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("settings directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("settings directory: not a directory: %s", dir)
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("settings directory %s: no CUE instances loaded", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, formatCUEError(inst.Err)
	}

	v := cuecontext.New().BuildInstance(inst)
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return Compile(v.LookupPath(cue.ParsePath(rootField)))
}

// Compile checks v against the #Conference schema and decodes it. v is
// the conference struct itself, not the file around it.
func Compile(v cue.Value) (*ir.Conf, error) {
	if !v.Exists() {
		return nil, &CompileError{Field: rootField, Message: "conference is required"}
	}
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	schema := v.Context().CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile settings schema: %w", err)
	}
	unified := schema.LookupPath(cue.ParsePath("#Conference")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	conf := &ir.Conf{}
	if err := unified.Decode(conf); err != nil {
		return nil, formatCUEError(err)
	}
	if errs := Validate(conf); len(errs) > 0 {
		return nil, &CompileError{Field: errs[0].Field, Message: errs[0].Message, Pos: v.Pos()}
	}
	return conf, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
