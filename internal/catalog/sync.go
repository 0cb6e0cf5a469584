// Package catalog pushes the feature-store registry metadata to a Notion
// database acting as the team's data catalog. One page per feature view;
// the view name is the idempotency key.
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/feature-pipeline/internal/logger"
	"github.com/dvloznov/feature-pipeline/internal/registry"
)

// SyncFeatureViews mirrors the registry's feature views into the catalog
// database:
//  1. Query all existing catalog pages.
//  2. Create pages for new views, update pages for known views.
//  3. Archive pages whose view no longer exists in the registry.
//
// With dryRun set, the function logs what it would change and performs no
// writes.
func SyncFeatureViews(ctx context.Context, client NotionService, databaseID string, reg *registry.Registry, dryRun bool) error {
	log := logger.FromContext(ctx)

	views := reg.FeatureViews()
	exportedAt := time.Now().UTC()

	log.Info().
		Int("feature_views", len(views)).
		Bool("dry_run", dryRun).
		Msg("Starting catalog sync")

	pages, err := queryAllPages(ctx, client, databaseID)
	if err != nil {
		return fmt.Errorf("SyncFeatureViews: %w", err)
	}

	existing := make(map[string]notionapi.Page, len(pages))
	for _, page := range pages {
		if name := extractViewName(page); name != "" {
			existing[name] = page
		}
	}

	known := make(map[string]bool, len(views))
	var created, updated int
	for _, view := range views {
		known[view.Name] = true
		props := FeatureViewToNotionProperties(view, exportedAt)

		if page, ok := existing[view.Name]; ok {
			if dryRun {
				log.Info().Str("view", view.Name).Msg("Would update catalog page")
				continue
			}
			if _, err := client.UpdatePage(ctx, string(page.ID), props); err != nil {
				return fmt.Errorf("SyncFeatureViews: updating view %q: %w", view.Name, err)
			}
			updated++
			continue
		}

		if dryRun {
			log.Info().Str("view", view.Name).Msg("Would create catalog page")
			continue
		}
		if _, err := client.CreatePage(ctx, databaseID, props); err != nil {
			return fmt.Errorf("SyncFeatureViews: creating view %q: %w", view.Name, err)
		}
		created++
	}

	var archived int
	for name, page := range existing {
		if known[name] {
			continue
		}
		if dryRun {
			log.Info().Str("view", name).Msg("Would archive stale catalog page")
			continue
		}
		if err := client.ArchivePage(ctx, string(page.ID)); err != nil {
			return fmt.Errorf("SyncFeatureViews: archiving stale view %q: %w", name, err)
		}
		archived++
	}

	log.Info().
		Int("created", created).
		Int("updated", updated).
		Int("archived", archived).
		Msg("Catalog sync finished")

	return nil
}

// queryAllPages pages through the whole catalog database.
func queryAllPages(ctx context.Context, client NotionService, databaseID string) ([]notionapi.Page, error) {
	var pages []notionapi.Page
	req := &notionapi.DatabaseQueryRequest{PageSize: 100}

	for {
		resp, err := client.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("queryAllPages: %w", err)
		}
		pages = append(pages, resp.Results...)

		if !resp.HasMore {
			return pages, nil
		}
		req.StartCursor = resp.NextCursor
	}
}
