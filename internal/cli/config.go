package cli

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/sondalab/sonda/internal/sat"
)

// configSchema constrains option files. #Config is a definition, so the
// struct is closed: a misspelled field is a load error instead of a
// silently ignored knob.
const configSchema = `
#Config: {
	seed?: int
	probing?: {
		enabled?:        bool
		limit?:          int & >=0
		cache?:          bool
		cache_limit_mb?: int & >=0
		binary?:         bool
		equivalences?:   bool
	}
}
`

// fileConfig mirrors #Config. Pointer fields distinguish "absent" from
// a zero value so absent fields keep their defaults.
type fileConfig struct {
	Seed    *int64 `json:"seed"`
	Probing *struct {
		Enabled      *bool   `json:"enabled"`
		Limit        *int64  `json:"limit"`
		Cache        *bool   `json:"cache"`
		CacheLimitMB *uint64 `json:"cache_limit_mb"`
		Binary       *bool   `json:"binary"`
		Equivalences *bool   `json:"equivalences"`
	} `json:"probing"`
}

// LoadOptions reads a CUE options file and overlays it on the solver
// defaults.
func LoadOptions(path string) (sat.Options, error) {
	opts := sat.DefaultOptions()

	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("read config: %w", err)
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(configSchema).LookupPath(cue.ParsePath("#Config"))
	if err := schema.Err(); err != nil {
		return opts, fmt.Errorf("config schema: %w", err)
	}

	val := ctx.CompileString(string(data), cue.Filename(path))
	if err := val.Err(); err != nil {
		return opts, fmt.Errorf("parse config: %s", cueerrors.Details(err, nil))
	}

	unified := schema.Unify(val)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return opts, fmt.Errorf("validate config: %s", cueerrors.Details(err, nil))
	}

	var fc fileConfig
	if err := unified.Decode(&fc); err != nil {
		return opts, fmt.Errorf("decode config: %w", err)
	}

	if fc.Seed != nil {
		opts.Seed = *fc.Seed
	}
	if p := fc.Probing; p != nil {
		if p.Enabled != nil {
			opts.Probing.Enabled = *p.Enabled
		}
		if p.Limit != nil {
			opts.Probing.Limit = int(*p.Limit)
		}
		if p.Cache != nil {
			opts.Probing.Cache = *p.Cache
		}
		if p.CacheLimitMB != nil {
			opts.Probing.CacheLimit = *p.CacheLimitMB << 20
		}
		if p.Binary != nil {
			opts.Probing.Binary = *p.Binary
		}
		if p.Equivalences != nil {
			opts.Probing.Equivalences = *p.Equivalences
		}
	}
	return opts, nil
}
