package types

import (
	"path/filepath"
	"strings"

	"github.com/MuhamedEssam/tinychain/pkg/tcerr"
)

// PathSegment is a single printable, non-empty identifier. It names a
// block within a TxnFile, a child directory within a TxnDir, or one
// component of a logical resource Path.
type PathSegment string

// ParseSegment validates s as a PathSegment: non-empty, no path
// separators, no ".." traversal.
func ParseSegment(s string) (PathSegment, error) {
	if s == "" {
		return "", tcerr.BadRequestf("path segment must not be empty")
	}
	if strings.ContainsAny(s, "/\\") {
		return "", tcerr.BadRequestf("path segment %q must not contain a path separator", s)
	}
	if s == "." || s == ".." {
		return "", tcerr.BadRequestf("path segment %q is not a valid identifier", s)
	}
	return PathSegment(s), nil
}

func (s PathSegment) String() string { return string(s) }

// Path is a sequence of PathSegments identifying a filesystem location
// or logical resource uniformly.
type Path []PathSegment

// ParsePath splits a slash-separated string into a Path, validating
// each segment.
func ParsePath(s string) (Path, error) {
	s = strings.Trim(s, "/")
	if s == "" {
		return Path{}, nil
	}

	parts := strings.Split(s, "/")
	path := make(Path, 0, len(parts))
	for _, part := range parts {
		seg, err := ParseSegment(part)
		if err != nil {
			return nil, err
		}
		path = append(path, seg)
	}
	return path, nil
}

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, seg := range p {
		parts[i] = string(seg)
	}
	return strings.Join(parts, "/")
}

// Append returns a new Path with the given segments appended.
func (p Path) Append(segs ...PathSegment) Path {
	out := make(Path, 0, len(p)+len(segs))
	out = append(out, p...)
	out = append(out, segs...)
	return out
}

// FSPath joins the Path's segments onto a filesystem root using the
// host's separator, for use as an on-disk directory path.
func (p Path) FSPath(root string) string {
	parts := make([]string, 0, len(p)+1)
	parts = append(parts, root)
	for _, seg := range p {
		parts = append(parts, string(seg))
	}
	return filepath.Join(parts...)
}

// BlockID is the stable name of a block within a TxnFile.
type BlockID = PathSegment
