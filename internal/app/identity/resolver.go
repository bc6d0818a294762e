// internal/app/identity/resolver.go
package identity

import (
	"context"
	"time"

	"github.com/dalemusser/osprey/internal/app/system/apierr"
	"github.com/dalemusser/osprey/internal/app/system/fanout"
	"github.com/dalemusser/osprey/internal/app/system/normalize"
	"github.com/dalemusser/osprey/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ContentSource lists content tagged with an owner.
type ContentSource interface {
	ListByOwner(ctx context.Context, uqid, role string) ([]models.Content, error)
}

// EventSource lists events tagged with an owner.
type EventSource interface {
	ListByOwner(ctx context.Context, uqid, role string) ([]models.Event, error)
}

// Resolver turns a username into a profile view and serves username search.
type Resolver struct {
	Dir      *Directory
	Contents ContentSource
	Events   EventSource
	Timeout  time.Duration
	Log      *zap.Logger
}

func NewResolver(dir *Directory, contents ContentSource, events EventSource, timeout time.Duration, logger *zap.Logger) *Resolver {
	return &Resolver{Dir: dir, Contents: contents, Events: events, Timeout: timeout, Log: logger}
}

// ResolveProfile finds the partition holding username and returns its public
// summary with the content and events tagged to that identity.
func (r *Resolver) ResolveProfile(ctx context.Context, username string) (models.ProfileView, error) {
	username = normalize.Username(username)
	if username == "" {
		return models.ProfileView{}, apierr.New(apierr.BadInput, "username is required")
	}

	found, err := fanout.Gather(ctx, fanoutTimeout(r.Timeout), r.Dir.All(),
		func(ctx context.Context, p Partition) (models.Account, error) {
			return p.FindByUsername(ctx, username)
		})
	if err != nil {
		return models.ProfileView{}, apierr.Storage(err)
	}

	var acct models.Account
	for _, a := range found {
		if a == nil {
			continue
		}
		if acct != nil {
			if r.Log != nil {
				r.Log.Warn("username registered in more than one partition",
					zap.String("username", username),
					zap.String("kept", acct.AccountRole().String()),
					zap.String("ignored", a.AccountRole().String()))
			}
			continue
		}
		acct = a
	}
	if acct == nil {
		return models.ProfileView{}, apierr.Newf(apierr.NotFound, "no profile for username %q", username)
	}

	b := acct.Base()
	role := acct.AccountRole()
	view := models.ProfileView{
		Role:     role,
		UqID:     b.UqID,
		Username: b.Username,
		Summary:  acct.Summary(),
		Contents: []models.Content{},
		Events:   []models.Event{},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := r.Contents.ListByOwner(gctx, b.UqID, role.String())
		if err != nil {
			return err
		}
		for _, c := range items {
			if c.OwnerUqID == b.UqID && models.SameRole(c.OwnerRole, role.String()) {
				view.Contents = append(view.Contents, c)
			}
		}
		return nil
	})
	g.Go(func() error {
		items, err := r.Events.ListByOwner(gctx, b.UqID, role.String())
		if err != nil {
			return err
		}
		for _, e := range items {
			if e.OwnerUqID == b.UqID && models.SameRole(e.OwnerRole, role.String()) {
				view.Events = append(view.Events, e)
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return models.ProfileView{}, apierr.Storage(err)
	}
	return view, nil
}

// SearchUsernames matches usernames by prefix, or exactly when exact is set,
// in every partition. Hits carry the full record and are concatenated in
// declared partition order.
func (r *Resolver) SearchUsernames(ctx context.Context, query string, exact bool) ([]models.SearchHit, error) {
	query = normalize.Username(query)
	if query == "" {
		return nil, apierr.New(apierr.BadInput, "query is required")
	}

	perPartition, err := fanout.Gather(ctx, fanoutTimeout(r.Timeout), r.Dir.All(),
		func(ctx context.Context, p Partition) ([]models.Account, error) {
			return p.Search(ctx, query, exact)
		})
	if err != nil {
		return nil, apierr.Storage(err)
	}

	hits := []models.SearchHit{}
	for _, accts := range perPartition {
		for _, a := range accts {
			b := a.Base()
			hits = append(hits, models.SearchHit{Role: a.AccountRole(), UqID: b.UqID, Username: b.Username, Record: a})
		}
	}
	return hits, nil
}
