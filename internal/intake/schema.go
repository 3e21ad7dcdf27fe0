package intake

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaSource string

// ValidationError reports one schema violation.
type ValidationError struct {
	// Path is the dotted location of the offending value (e.g. "claims.2.amount").
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors collects every violation in one document.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return strings.Join(msgs, "; ")
}

// validator holds the compiled schema. CUE values are not safe for
// concurrent use, so access is serialized.
type validator struct {
	mu     sync.Mutex
	ctx    *cue.Context
	schema cue.Value
}

var loadValidator = sync.OnceValues(func() (*validator, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile intake schema: %w", err)
	}
	return &validator{ctx: ctx, schema: schema}, nil
})

// validate checks doc against the named schema definition.
func validate(def string, doc any) error {
	v, err := loadValidator()
	if err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	schema := v.schema.LookupPath(cue.ParsePath(def))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("schema definition %s: %w", def, err)
	}
	value := v.ctx.Encode(doc)
	if err := value.Err(); err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return formatCUEError(schema.Unify(value).Validate(cue.Concrete(true)))
}

// formatCUEError flattens CUE's error list into ValidationErrors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	out := make(ValidationErrors, 0, len(errs))
	seen := make(map[string]bool)
	for _, e := range errs {
		path := strings.Join(e.Path(), ".")
		format, args := e.Msg()
		msg := fmt.Sprintf(format, args...)
		key := path + "\x00" + msg
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, &ValidationError{Path: path, Message: msg})
	}
	return out
}
