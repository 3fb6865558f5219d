package quill

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// CursorFlavor discriminates what sort regime a cursor was issued under.
// A cursor minted by a search listing cannot resume a recency listing, and
// vice versa; decoding checks the flavor so a mismatch is a hard error
// instead of a silently wrong page.
type CursorFlavor string

const (
	FlavorRecency   CursorFlavor = "recency"
	FlavorRelevance CursorFlavor = "relevance"
	FlavorFeed      CursorFlavor = "feed"
)

// Cursor is the decoded position of the last row of a page. Exactly one of
// the concrete variants below implements it.
type Cursor interface {
	Flavor() CursorFlavor
}

type (
	// RecencyCursor resumes a plain article listing.
	RecencyCursor struct {
		PublishedAt *time.Time
		CreatedAt   time.Time
		ID          string
	}

	// RelevanceCursor resumes a search-ranked article listing.
	RelevanceCursor struct {
		Relevance   float64
		PublishedAt *time.Time
		CreatedAt   time.Time
		ID          string
	}

	// FeedCursor resumes a recency-ordered feed listing. Pinned records
	// whether the cursor row itself sat in the pinned block; the next
	// page's predicate depends on which block the boundary landed in.
	FeedCursor struct {
		Pinned      bool
		RefreshedAt *time.Time
		ID          string
	}
)

func (RecencyCursor) Flavor() CursorFlavor   { return FlavorRecency }
func (RelevanceCursor) Flavor() CursorFlavor { return FlavorRelevance }
func (FeedCursor) Flavor() CursorFlavor      { return FlavorFeed }

// cursorWire is the single serialized shape for every flavor. Which fields
// must be present depends on the flavor; decode enforces that.
type cursorWire struct {
	Flavor      CursorFlavor `json:"f"`
	ID          string       `json:"id"`
	PublishedAt *time.Time   `json:"p,omitempty"`
	CreatedAt   *time.Time   `json:"c,omitempty"`
	RefreshedAt *time.Time   `json:"r,omitempty"`
	Relevance   *float64     `json:"s,omitempty"`
	Pinned      bool         `json:"pn,omitempty"`
}

// EncodeCursor serializes a cursor into an opaque token. Tokens carry no
// meaning a client should parse; they only round-trip through DecodeCursor.
func EncodeCursor(c Cursor) (string, error) {
	wire := cursorWire{Flavor: c.Flavor()}
	switch c := c.(type) {
	case RecencyCursor:
		created := c.CreatedAt
		wire.ID = c.ID
		wire.PublishedAt = c.PublishedAt
		wire.CreatedAt = &created
	case RelevanceCursor:
		created := c.CreatedAt
		rel := c.Relevance
		wire.ID = c.ID
		wire.PublishedAt = c.PublishedAt
		wire.CreatedAt = &created
		wire.Relevance = &rel
	case FeedCursor:
		wire.ID = c.ID
		wire.RefreshedAt = c.RefreshedAt
		wire.Pinned = c.Pinned
	default:
		return "", fmt.Errorf("unknown cursor type %T", c)
	}

	byts, err := json.Marshal(wire)
	if err != nil {
		return "", fmt.Errorf("error encoding cursor: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(byts), nil
}

// DecodeCursor parses an opaque token back into its tagged variant.
//
// Any empty, corrupted, or incomplete token fails with ErrBadCursor; a
// damaged cursor must never silently resume from a wrong position.
func DecodeCursor(token string) (Cursor, error) {
	if token == "" {
		return nil, fmt.Errorf("empty cursor: %w", ErrBadCursor)
	}

	byts, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("undecodable cursor: %w", ErrBadCursor)
	}
	var wire cursorWire
	if err := json.Unmarshal(byts, &wire); err != nil {
		return nil, fmt.Errorf("malformed cursor: %w", ErrBadCursor)
	}
	if wire.ID == "" {
		return nil, fmt.Errorf("cursor missing row id: %w", ErrBadCursor)
	}

	switch wire.Flavor {
	case FlavorRecency:
		if wire.CreatedAt == nil {
			return nil, fmt.Errorf("recency cursor missing created_at: %w", ErrBadCursor)
		}
		return RecencyCursor{
			PublishedAt: wire.PublishedAt,
			CreatedAt:   *wire.CreatedAt,
			ID:          wire.ID,
		}, nil
	case FlavorRelevance:
		if wire.CreatedAt == nil || wire.Relevance == nil {
			return nil, fmt.Errorf("relevance cursor missing sort keys: %w", ErrBadCursor)
		}
		return RelevanceCursor{
			Relevance:   *wire.Relevance,
			PublishedAt: wire.PublishedAt,
			CreatedAt:   *wire.CreatedAt,
			ID:          wire.ID,
		}, nil
	case FlavorFeed:
		return FeedCursor{
			Pinned:      wire.Pinned,
			RefreshedAt: wire.RefreshedAt,
			ID:          wire.ID,
		}, nil
	default:
		return nil, fmt.Errorf("unknown cursor flavor %q: %w", wire.Flavor, ErrBadCursor)
	}
}
