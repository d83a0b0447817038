package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"longbox/internal/library"
	"longbox/internal/store"
)

// resolveLookupLimit bounds the prefix scan; libraries larger than this
// must be addressed by full id.
const resolveLookupLimit = 1000

// resolveComicID accepts a full comic id or a unique id prefix.
func resolveComicID(ctx context.Context, svc *library.Service, arg string) (*store.Item, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return nil, errors.New("comic id is required")
	}

	item, err := svc.Item(ctx, arg)
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, library.ErrNotFound) {
		return nil, err
	}

	items, err := svc.ListRecent(ctx, resolveLookupLimit)
	if err != nil {
		return nil, err
	}
	var match *store.Item
	for _, candidate := range items {
		if !strings.HasPrefix(candidate.ID, arg) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("comic id prefix %q is ambiguous", arg)
		}
		match = candidate
	}
	if match == nil {
		return nil, fmt.Errorf("comic %s: %w", arg, library.ErrNotFound)
	}
	return match, nil
}
