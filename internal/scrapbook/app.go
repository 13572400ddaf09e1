// Package scrapbook wires the per-kind collection services, notifications
// and image assets into one explicitly constructed application context.
package scrapbook

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/ourstory/scrapbook/internal/apperr"
	"github.com/ourstory/scrapbook/internal/assets"
	"github.com/ourstory/scrapbook/internal/collection"
	"github.com/ourstory/scrapbook/internal/entity"
	"github.com/ourstory/scrapbook/internal/identity"
	"github.com/ourstory/scrapbook/internal/notify"
	"github.com/ourstory/scrapbook/internal/realtime"
	"github.com/ourstory/scrapbook/internal/storage"
	"github.com/ourstory/scrapbook/internal/store"
)

type (
	Milestones      = collection.Service[entity.Milestone, entity.MilestonePatch]
	Memories        = collection.Service[entity.Memory, entity.MemoryPatch]
	Recipes         = collection.Service[entity.Recipe, entity.RecipePatch]
	Locations       = collection.Service[entity.Location, entity.LocationPatch]
	LoveLetters     = collection.Service[entity.LoveLetter, entity.LoveLetterPatch]
	Jokes           = collection.Service[entity.Joke, entity.JokePatch]
	DateIdeas       = collection.Service[entity.DateIdea, entity.DateIdeaPatch]
	CarePackages    = collection.Service[entity.CarePackage, entity.CarePackagePatch]
	Countdowns      = collection.Service[entity.Countdown, entity.CountdownPatch]
	Playlists       = collection.Service[entity.Playlist, entity.PlaylistPatch]
	Compliments     = collection.Service[entity.Compliment, entity.ComplimentPatch]
	Reasons         = collection.Service[entity.Reason, entity.ReasonPatch]
	DailyMessages   = collection.Service[entity.DailyMessage, entity.DailyMessagePatch]
	LanguageEntries = collection.Service[entity.LanguageEntry, entity.LanguageEntryPatch]
)

// App is built once at startup and passed down; nothing here is global.
type App struct {
	Directory     *identity.Directory
	Notifications *notify.Service
	Fanout        *notify.Fanout
	Assets        *assets.Service
	Broker        realtime.Broker

	Milestones      *Milestones
	Memories        *Memories
	Recipes         *Recipes
	Locations       *Locations
	LoveLetters     *LoveLetters
	Jokes           *Jokes
	DateIdeas       *DateIdeas
	CarePackages    *CarePackages
	Countdowns      *Countdowns
	Playlists       *Playlists
	Compliments     *Compliments
	Reasons         *Reasons
	DailyMessages   *DailyMessages
	LanguageEntries *LanguageEntries
}

// New builds the application over the given collaborators. Inserts into the
// notifications table are pushed to broker.
func New(tables store.Tables, blobs storage.Blobs, broker realtime.Broker, dir *identity.Directory) *App {
	pushed := realtime.NewPublishing(tables, broker, entity.TableNotifications)
	notes := notify.NewService(pushed, broker)
	fanout := notify.NewFanout(notes, dir)
	as := assets.New(blobs)
	deps := collection.Deps{Images: as, Notifier: fanout, Validate: validator.New()}

	return &App{
		Directory:     dir,
		Notifications: notes,
		Fanout:        fanout,
		Assets:        as,
		Broker:        broker,

		Milestones:      collection.New[entity.Milestone, entity.MilestonePatch](entity.Milestones, tables, deps),
		Memories:        collection.New[entity.Memory, entity.MemoryPatch](entity.Memories, tables, deps),
		Recipes:         collection.New[entity.Recipe, entity.RecipePatch](entity.Recipes, tables, deps),
		Locations:       collection.New[entity.Location, entity.LocationPatch](entity.Locations, tables, deps),
		LoveLetters:     collection.New[entity.LoveLetter, entity.LoveLetterPatch](entity.LoveLetters, tables, deps),
		Jokes:           collection.New[entity.Joke, entity.JokePatch](entity.Jokes, tables, deps),
		DateIdeas:       collection.New[entity.DateIdea, entity.DateIdeaPatch](entity.DateIdeas, tables, deps),
		CarePackages:    collection.New[entity.CarePackage, entity.CarePackagePatch](entity.CarePackages, tables, deps),
		Countdowns:      collection.New[entity.Countdown, entity.CountdownPatch](entity.Countdowns, tables, deps),
		Playlists:       collection.New[entity.Playlist, entity.PlaylistPatch](entity.Playlists, tables, deps),
		Compliments:     collection.New[entity.Compliment, entity.ComplimentPatch](entity.Compliments, tables, deps),
		Reasons:         collection.New[entity.Reason, entity.ReasonPatch](entity.Reasons, tables, deps),
		DailyMessages:   collection.New[entity.DailyMessage, entity.DailyMessagePatch](entity.DailyMessages, tables, deps),
		LanguageEntries: collection.New[entity.LanguageEntry, entity.LanguageEntryPatch](entity.LanguageEntries, tables, deps),
	}
}

// List returns every row of table in its default order. The notifications
// table is listed for user only.
func (a *App) List(ctx context.Context, table string, user identity.Role) (any, error) {
	switch table {
	case entity.TableNotifications:
		return a.Notifications.GetAll(ctx, user)
	case entity.Milestones.Table:
		return a.Milestones.GetAll(ctx)
	case entity.Memories.Table:
		return a.Memories.GetAll(ctx)
	case entity.Recipes.Table:
		return a.Recipes.GetAll(ctx)
	case entity.Locations.Table:
		return a.Locations.GetAll(ctx)
	case entity.LoveLetters.Table:
		return a.LoveLetters.GetAll(ctx)
	case entity.Jokes.Table:
		return a.Jokes.GetAll(ctx)
	case entity.DateIdeas.Table:
		return a.DateIdeas.GetAll(ctx)
	case entity.CarePackages.Table:
		return a.CarePackages.GetAll(ctx)
	case entity.Countdowns.Table:
		return a.Countdowns.GetAll(ctx)
	case entity.Playlists.Table:
		return a.Playlists.GetAll(ctx)
	case entity.Compliments.Table:
		return a.Compliments.GetAll(ctx)
	case entity.Reasons.Table:
		return a.Reasons.GetAll(ctx)
	case entity.DailyMessages.Table:
		return a.DailyMessages.GetAll(ctx)
	case entity.LanguageEntries.Table:
		return a.LanguageEntries.GetAll(ctx)
	}
	return nil, apperr.Validation("unknown table %q", table)
}
