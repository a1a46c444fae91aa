package fsops

import "errors"

var (
	// ErrNotRegularFile reports a read target that resolved to something
	// other than a regular file.
	ErrNotRegularFile = errors.New("not a regular file")
	// ErrSizeLimit reports a file larger than the read ceiling.
	ErrSizeLimit = errors.New("file exceeds size limit")
	// ErrEncoding reports file content that is not valid UTF-8 text.
	ErrEncoding = errors.New("file content is not valid text")
	// ErrInvalidPattern reports a malformed search glob.
	ErrInvalidPattern = errors.New("invalid glob pattern")
)
