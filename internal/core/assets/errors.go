package assets

import "errors"

var (
	ErrAssetNotFound = errors.New("asset not found")
	ErrWrongType     = errors.New("asset has unexpected type")
	ErrNilLoader     = errors.New("asset request has no loader")
)
