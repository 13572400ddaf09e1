package entity

import (
	"time"

	"github.com/ourstory/scrapbook/internal/identity"
)

// Ownership is embedded by the shareable kinds.
type Ownership struct {
	UserID identity.Role `json:"user_id,omitempty"`
}

func (o Ownership) Owner() identity.Role       { return o.UserID }
func (o *Ownership) SetOwner(r identity.Role) { o.UserID = r }

type Milestone struct {
	Meta
	Ownership
	Date        string `json:"date" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

func (m Milestone) Headline() string { return m.Title }
func (m Milestone) ImageURL() string { return m.Image }

type MilestonePatch struct {
	Date        *string `json:"date" validate:"omitnil,min=1"`
	Title       *string `json:"title" validate:"omitnil,min=1"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
}

type Memory struct {
	Meta
	Ownership
	Title string  `json:"title" validate:"required"`
	Date  string  `json:"date" validate:"required"`
	Story string  `json:"story"`
	Quote string  `json:"quote"`
	Image string  `json:"image"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

func (m Memory) Headline() string { return m.Title }
func (m Memory) ImageURL() string { return m.Image }

type MemoryPatch struct {
	Title *string  `json:"title" validate:"omitnil,min=1"`
	Date  *string  `json:"date" validate:"omitnil,min=1"`
	Story *string  `json:"story"`
	Quote *string  `json:"quote"`
	Image *string  `json:"image"`
	X     *float64 `json:"x"`
	Y     *float64 `json:"y"`
}

type Recipe struct {
	Meta
	Ownership
	Title        string   `json:"title" validate:"required"`
	Category     string   `json:"category"`
	Image        string   `json:"image"`
	Ingredients  []string `json:"ingredients" validate:"min=1"`
	Instructions []string `json:"instructions" validate:"min=1"`
	Memory       string   `json:"memory"`
	IsFavorite   bool     `json:"is_favorite"`
}

func (r Recipe) Headline() string { return r.Title }
func (r Recipe) ImageURL() string { return r.Image }

type RecipePatch struct {
	Title        *string   `json:"title" validate:"omitnil,min=1"`
	Category     *string   `json:"category"`
	Image        *string   `json:"image"`
	Ingredients  *[]string `json:"ingredients" validate:"omitnil,min=1"`
	Instructions *[]string `json:"instructions" validate:"omitnil,min=1"`
	Memory       *string   `json:"memory"`
	IsFavorite   *bool     `json:"is_favorite"`
}

type Location struct {
	Meta
	Ownership
	Name    string  `json:"name" validate:"required"`
	Country string  `json:"country"`
	Visited bool    `json:"visited"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Image   string  `json:"image"`
	Memory  string  `json:"memory"`
}

func (l Location) Headline() string { return l.Name }
func (l Location) ImageURL() string { return l.Image }

type LocationPatch struct {
	Name    *string  `json:"name" validate:"omitnil,min=1"`
	Country *string  `json:"country"`
	Visited *bool    `json:"visited"`
	X       *float64 `json:"x"`
	Y       *float64 `json:"y"`
	Image   *string  `json:"image"`
	Memory  *string  `json:"memory"`
}

type LoveLetter struct {
	Meta
	Title   string `json:"title" validate:"required"`
	Date    string `json:"date"`
	Content string `json:"content" validate:"required"`
	Color   string `json:"color"`
}

func (l LoveLetter) Headline() string { return l.Title }

type LoveLetterPatch struct {
	Title   *string `json:"title" validate:"omitnil,min=1"`
	Date    *string `json:"date"`
	Content *string `json:"content" validate:"omitnil,min=1"`
	Color   *string `json:"color"`
}

type Joke struct {
	Meta
	Title  string `json:"title" validate:"required"`
	Origin string `json:"origin"`
	Story  string `json:"story"`
	Emoji  string `json:"emoji"`
}

func (j Joke) Headline() string { return j.Title }

type JokePatch struct {
	Title  *string `json:"title" validate:"omitnil,min=1"`
	Origin *string `json:"origin"`
	Story  *string `json:"story"`
	Emoji  *string `json:"emoji"`
}

type DateIdea struct {
	Meta
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Emoji       string `json:"emoji"`
}

func (d DateIdea) Headline() string { return d.Title }

type DateIdeaPatch struct {
	Title       *string `json:"title" validate:"omitnil,min=1"`
	Description *string `json:"description"`
	Emoji       *string `json:"emoji"`
}

type CarePackage struct {
	Meta
	Title  string   `json:"title" validate:"required"`
	Date   string   `json:"date" validate:"required"`
	Status string   `json:"status" validate:"oneof=sent received planned"`
	Items  []string `json:"items" validate:"min=1"`
	Note   string   `json:"note"`
	Color  string   `json:"color"`
}

func (c CarePackage) Headline() string { return c.Title }

type CarePackagePatch struct {
	Title  *string   `json:"title" validate:"omitnil,min=1"`
	Date   *string   `json:"date" validate:"omitnil,min=1"`
	Status *string   `json:"status" validate:"omitnil,oneof=sent received planned"`
	Items  *[]string `json:"items" validate:"omitnil,min=1"`
	Note   *string   `json:"note"`
	Color  *string   `json:"color"`
}

// Countdown targets an instant; the client recomputes the remaining time.
type Countdown struct {
	Meta
	Title string    `json:"title" validate:"required"`
	Date  time.Time `json:"date" validate:"required"`
	Emoji string    `json:"emoji"`
	Color string    `json:"color"`
}

func (c Countdown) Headline() string { return c.Title }

// Remaining is the time left until the target, zero once it has passed.
func (c Countdown) Remaining(now time.Time) time.Duration {
	if d := c.Date.Sub(now); d > 0 {
		return d
	}
	return 0
}

type CountdownPatch struct {
	Title *string    `json:"title" validate:"omitnil,min=1"`
	Date  *time.Time `json:"date"`
	Emoji *string    `json:"emoji"`
	Color *string    `json:"color"`
}

type Song struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Note   string `json:"note"`
	URL    string `json:"url,omitempty"`
}

type Playlist struct {
	Meta
	Title string `json:"title" validate:"required"`
	Color string `json:"color"`
	Songs []Song `json:"songs"`
}

func (p Playlist) Headline() string { return p.Title }

type PlaylistPatch struct {
	Title *string `json:"title" validate:"omitnil,min=1"`
	Color *string `json:"color"`
	Songs *[]Song `json:"songs"`
}

type Compliment struct {
	Meta
	Text string `json:"text" validate:"required"`
}

func (c Compliment) Headline() string { return c.Text }

type ComplimentPatch struct {
	Text *string `json:"text" validate:"omitnil,min=1"`
}

type Reason struct {
	Meta
	Text string `json:"text" validate:"required"`
}

func (r Reason) Headline() string { return r.Text }

type ReasonPatch struct {
	Text *string `json:"text" validate:"omitnil,min=1"`
}

// DailyMessage is keyed by calendar day (YYYY-MM-DD).
type DailyMessage struct {
	Meta
	Date    string `json:"date" validate:"required,datetime=2006-01-02"`
	Message string `json:"message" validate:"required"`
	Mood    string `json:"mood"`
}

func (d DailyMessage) Headline() string { return d.Message }

type DailyMessagePatch struct {
	Date    *string `json:"date" validate:"omitnil,datetime=2006-01-02"`
	Message *string `json:"message" validate:"omitnil,min=1"`
	Mood    *string `json:"mood"`
}

type LanguageEntry struct {
	Meta
	Language     string `json:"language" validate:"required"`
	WordOrPhrase string `json:"word_or_phrase" validate:"required"`
	Translation  string `json:"translation" validate:"required"`
	Notes        string `json:"notes,omitempty"`
}

func (l LanguageEntry) Headline() string { return l.WordOrPhrase }

type LanguageEntryPatch struct {
	Language     *string `json:"language" validate:"omitnil,min=1"`
	WordOrPhrase *string `json:"word_or_phrase" validate:"omitnil,min=1"`
	Translation  *string `json:"translation" validate:"omitnil,min=1"`
	Notes        *string `json:"notes"`
}

// Notification is addressed to one user and created only by the fanout.
type Notification struct {
	Meta
	UserID  identity.Role `json:"user_id"`
	Type    Kind          `json:"type"`
	Title   string        `json:"title"`
	Message string        `json:"message"`
	Read    bool          `json:"read"`
}

func (n Notification) Headline() string { return n.Title }
