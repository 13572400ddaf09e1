// Package entity defines the scrapbook record kinds and their per-kind
// storage conventions.
package entity

import (
	"strings"
	"time"

	"github.com/ourstory/scrapbook/internal/identity"
	"github.com/ourstory/scrapbook/internal/store"
)

// Kind tags an entity type. Notifications carry it in their type field.
type Kind string

const (
	KindMilestone     Kind = "milestone"
	KindMemory        Kind = "memory"
	KindRecipe        Kind = "recipe"
	KindLocation      Kind = "location"
	KindLoveLetter    Kind = "love_letter"
	KindJoke          Kind = "joke"
	KindDateIdea      Kind = "date_idea"
	KindCarePackage   Kind = "care_package"
	KindCountdown     Kind = "countdown"
	KindPlaylist      Kind = "playlist"
	KindCompliment    Kind = "compliment"
	KindReason        Kind = "reason"
	KindDailyMessage  Kind = "daily_message"
	KindLanguageEntry Kind = "language_entry"
)

func (k Kind) String() string { return string(k) }

const (
	TableNotifications = "notifications"
	FieldImage         = "image"
	FieldUserID        = "user_id"
	FieldDate          = "date"
	FieldRead          = "read"
)

// Meta holds the store-assigned fields. An empty ID means the entity has
// never been persisted.
type Meta struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

func (m Meta) Identifier() string { return m.ID }

// Entity is implemented by every kind.
type Entity interface {
	Identifier() string
	// Headline is the short text quoted in notifications.
	Headline() string
}

// Owned is implemented (on the pointer) by kinds tagged with their creator.
type Owned interface {
	Owner() identity.Role
	SetOwner(identity.Role)
}

// Imaged is implemented by kinds that reference an image asset.
type Imaged interface {
	ImageURL() string
}

// Descriptor carries the storage conventions of one kind.
type Descriptor struct {
	Kind  Kind
	Table string
	// Noun is the lower-case display name ("love letter").
	Noun  string
	Order store.Order

	// Shareable kinds notify the peer on create.
	Shareable bool
	HasImage  bool
	// ToggleField is the boolean flag flipped by ToggleField, if any.
	ToggleField string
}

// NotificationTitle is the title of the peer notification for a new entity.
func (d Descriptor) NotificationTitle() string {
	return "New " + titleCase(d.Noun) + " Added"
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

var (
	newestFirst = store.Order{Field: store.FieldCreatedAt, Desc: true}
	byDate      = store.Order{Field: FieldDate}
)

var (
	Milestones      = Descriptor{Kind: KindMilestone, Table: "milestones", Noun: "milestone", Order: newestFirst, Shareable: true, HasImage: true}
	Memories        = Descriptor{Kind: KindMemory, Table: "memories", Noun: "memory", Order: newestFirst, Shareable: true, HasImage: true}
	Recipes         = Descriptor{Kind: KindRecipe, Table: "recipes", Noun: "recipe", Order: newestFirst, Shareable: true, HasImage: true, ToggleField: "is_favorite"}
	Locations       = Descriptor{Kind: KindLocation, Table: "locations", Noun: "location", Order: newestFirst, Shareable: true, HasImage: true, ToggleField: "visited"}
	LoveLetters     = Descriptor{Kind: KindLoveLetter, Table: "love_letters", Noun: "love letter", Order: newestFirst}
	Jokes           = Descriptor{Kind: KindJoke, Table: "jokes", Noun: "joke", Order: newestFirst}
	DateIdeas       = Descriptor{Kind: KindDateIdea, Table: "date_ideas", Noun: "date idea", Order: newestFirst}
	CarePackages    = Descriptor{Kind: KindCarePackage, Table: "care_packages", Noun: "care package", Order: byDate}
	Countdowns      = Descriptor{Kind: KindCountdown, Table: "countdowns", Noun: "countdown", Order: byDate}
	Playlists       = Descriptor{Kind: KindPlaylist, Table: "playlists", Noun: "playlist", Order: newestFirst}
	Compliments     = Descriptor{Kind: KindCompliment, Table: "compliments", Noun: "compliment", Order: newestFirst}
	Reasons         = Descriptor{Kind: KindReason, Table: "reasons", Noun: "reason", Order: newestFirst}
	DailyMessages   = Descriptor{Kind: KindDailyMessage, Table: "daily_messages", Noun: "daily message", Order: byDate}
	LanguageEntries = Descriptor{Kind: KindLanguageEntry, Table: "language_entries", Noun: "language entry", Order: newestFirst}
)

// All lists every kind in a fixed order.
func All() []Descriptor {
	return []Descriptor{
		Milestones, Memories, Recipes, Locations, LoveLetters, Jokes, DateIdeas,
		CarePackages, Countdowns, Playlists, Compliments, Reasons, DailyMessages, LanguageEntries,
	}
}

func ByKind(k Kind) (Descriptor, bool) {
	for _, d := range All() {
		if d.Kind == k {
			return d, true
		}
	}
	return Descriptor{}, false
}

func ByTable(table string) (Descriptor, bool) {
	for _, d := range All() {
		if d.Table == table {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Indexes are the secondary indexes the table store should maintain.
func Indexes() map[string][]string {
	return map[string][]string{
		TableNotifications:    {FieldUserID, FieldRead},
		DailyMessages.Table:   {FieldDate},
		Countdowns.Table:      {FieldDate},
		CarePackages.Table:    {FieldDate},
		LanguageEntries.Table: {"language"},
	}
}
