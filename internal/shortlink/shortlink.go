// Package shortlink mints and resolves short shareable slugs for
// client-facing resources.
package shortlink

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	slugLength   = 8
	slugAlphabet = "abcdefghijkmnpqrstuvwxyz23456789"
	mintAttempts = 5
)

var (
	// ErrNotFound means no link exists for the namespace and slug.
	ErrNotFound = errors.New("short link not found")
	// ErrExhausted means minting could not find a free slug.
	ErrExhausted = errors.New("short link slug space exhausted")
)

// Link is one minted short link.
type Link struct {
	Namespace string    `json:"namespace"`
	Slug      string    `json:"slug"`
	Target    uuid.UUID `json:"target"`
	CreatedAt time.Time `json:"created_at"`
}

// Repository persists short links. Insert must fail with ErrSlugTaken when
// the namespace and slug pair already exists.
type Repository interface {
	Insert(ctx context.Context, link Link) error
	Find(ctx context.Context, namespace, slug string) (*Link, error)
}

// ErrSlugTaken signals a slug collision on insert.
var ErrSlugTaken = errors.New("slug already taken")

// newSlug returns a random slug over an unambiguous lowercase alphabet.
func newSlug() (string, error) {
	buf := make([]byte, slugLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = slugAlphabet[int(b)%len(slugAlphabet)]
	}
	return string(buf), nil
}
