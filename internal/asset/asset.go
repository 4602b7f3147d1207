// Package asset signs short-lived URLs for book assets kept in object storage.
package asset

import (
	"errors"
	"fmt"
	"path"
	"slices"
)

var (
	// ErrNoAsset is returned when the object for a Ref does not exist.
	ErrNoAsset = errors.New("asset not found")
	// ErrInvalidRef is returned for unknown kinds or out-of-range pages.
	ErrInvalidRef = errors.New("invalid asset reference")
)

type Kind string

const (
	KindCover Kind = "cover"
	KindModel Kind = "model"
	KindPage  Kind = "page"
)

const (
	MinPage = 1
	MaxPage = 100
)

// Rule limits what may be uploaded for a Kind.
type Rule struct {
	AllowedTypes []string
	MaxSizeMB    int64
}

var rules = map[Kind]Rule{
	KindCover: {AllowedTypes: []string{"image/jpeg", "image/png", "image/webp"}, MaxSizeMB: 10},
	KindModel: {AllowedTypes: []string{"model/gltf-binary", "application/octet-stream"}, MaxSizeMB: 100},
	KindPage:  {AllowedTypes: []string{"image/jpeg", "image/png", "image/webp"}, MaxSizeMB: 5},
}

// RuleFor returns the upload rule of k.
func RuleFor(k Kind) (Rule, bool) {
	r, ok := rules[k]
	return r, ok
}

// Allows reports whether contentType may be uploaded.
func (r Rule) Allows(contentType string) bool {
	return slices.Contains(r.AllowedTypes, contentType)
}

func (r Rule) MaxBytes() int64 {
	return r.MaxSizeMB << 20
}

// Ref identifies one asset of a book. Page is only used by KindPage.
type Ref struct {
	Kind   Kind
	BookID string
	Page   int
}

func (r Ref) Validate() error {
	if r.BookID == "" {
		return fmt.Errorf("%w: empty book id", ErrInvalidRef)
	}
	switch r.Kind {
	case KindCover, KindModel:
		return nil
	case KindPage:
		if r.Page < MinPage || r.Page > MaxPage {
			return fmt.Errorf("%w: page %d outside %d..%d", ErrInvalidRef, r.Page, MinPage, MaxPage)
		}
		return nil
	default:
		return fmt.Errorf("%w: kind %q", ErrInvalidRef, r.Kind)
	}
}

// Key is the object key: models/{id}.glb, covers/{id}.jpg or pages/{id}/{n}.jpg.
func (r Ref) Key() string {
	switch r.Kind {
	case KindModel:
		return path.Join("models", r.BookID+".glb")
	case KindCover:
		return path.Join("covers", r.BookID+".jpg")
	case KindPage:
		return path.Join("pages", r.BookID, fmt.Sprintf("%d.jpg", r.Page))
	default:
		return path.Join("assets", r.BookID)
	}
}
