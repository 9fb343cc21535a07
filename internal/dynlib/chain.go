package dynlib

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Chain tries each opener in turn and returns the first library opened.
func Chain(openers ...Opener) Opener {
	return OpenerFunc(func(path string) (Library, error) {
		errs := make([]error, 0, len(openers))
		for _, o := range openers {
			lib, err := o.Open(path)
			if err == nil {
				return lib, nil
			}
			errs = append(errs, err)
		}
		if len(errs) == 0 {
			return nil, &OpenError{Path: path, Err: fmt.Errorf("no opener: %w", errors.ErrUnsupported)}
		}
		return nil, &OpenError{Path: path, Err: errors.Join(errs...)}
	})
}

// ByExtension picks an opener from the file suffix of the path, e.g. ".so"
// or ".lua". The longest matching suffix wins, so ".plugin.so" takes
// precedence over ".so". Paths with no matching suffix go to fallback, if
// any.
func ByExtension(bySuffix map[string]Opener, fallback Opener) Opener {
	suffixes := make([]string, 0, len(bySuffix))
	for suffix := range bySuffix {
		suffixes = append(suffixes, suffix)
	}
	sort.Slice(suffixes, func(i, j int) bool {
		if len(suffixes[i]) != len(suffixes[j]) {
			return len(suffixes[i]) > len(suffixes[j])
		}
		return suffixes[i] < suffixes[j]
	})

	return OpenerFunc(func(path string) (Library, error) {
		lower := strings.ToLower(path)
		for _, suffix := range suffixes {
			if strings.HasSuffix(lower, strings.ToLower(suffix)) {
				return bySuffix[suffix].Open(path)
			}
		}
		if fallback != nil {
			return fallback.Open(path)
		}
		return nil, &OpenError{Path: path, Err: fmt.Errorf("unknown library type: %w", errors.ErrUnsupported)}
	})
}
