package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrSiteConfigMissing indicates the singleton site configuration row is absent.
	ErrSiteConfigMissing = errors.New("repository: site configuration missing")
)
