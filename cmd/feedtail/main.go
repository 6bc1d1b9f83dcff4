// feedtail is a terminal client for the notification feed API. It fetches a
// page of notifications with the same filter semantics the dashboard uses,
// or walks the whole feed in infinite mode, optionally marks everything it
// printed as read, and can dump the result as CSV.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/notifeed/notifeed/pkg/feed"
)

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:8080", "API base URL")
		token    = flag.String("token", os.Getenv("NOTIFEED_TOKEN"), "bearer token (defaults to NOTIFEED_TOKEN)")
		userID   = flag.String("user", "", "user id the feed belongs to")
		pageSize = flag.Int("page-size", 20, "notifications per page")
		page     = flag.Int("page", 1, "page to fetch")
		status   = flag.String("status", "all", "read state filter: all, read or unread")
		search   = flag.String("search", "", "full-text search term")
		types    = flag.String("types", "", "comma separated type tags")
		sortBy   = flag.String("sort", "newest", "ordering: newest, oldest or type")
		follow   = flag.Bool("follow", false, "infinite mode: keep loading pages until the feed is exhausted")
		markRead = flag.Bool("mark-read", false, "mark the printed notifications as read")
		csvPath  = flag.String("csv", "", "write the page to this CSV file instead of printing")
		timeout  = flag.Duration("timeout", 15*time.Second, "request timeout")
		verbose  = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	log := logrus.New()
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	if *token == "" {
		log.Fatal("a bearer token is required (-token or NOTIFEED_TOKEN)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client := feed.NewRestyClient(*baseURL, *token)
	defer client.Close()

	store := feed.NewStore()
	filters := feed.DefaultFilters()
	filters.Status = feed.Status(*status)
	filters.Search = *search
	filters.SortBy = feed.Sort(*sortBy)
	if *types != "" {
		filters.Types = strings.Split(*types, ",")
	}
	store.SetFilters(filters)

	orch := feed.NewOrchestrator(client, *userID, *pageSize)
	ctrl := feed.NewController(ctx, store, orch, feed.WithLogger(log))
	defer ctrl.Close()

	if *follow {
		if err := ctrl.SetInfinite(ctx, true); err != nil {
			log.WithError(err).Fatal("fetch failed")
		}
		for ctrl.HasMore() {
			if err := ctrl.LoadMore(ctx); err != nil {
				log.WithError(err).Fatal("fetch failed")
			}
			log.WithField("loaded", len(ctrl.Items())).Debug("Loaded more")
		}
	} else if err := ctrl.SetPage(ctx, *page); err != nil {
		log.WithError(err).Fatal("fetch failed")
	}

	items := ctrl.Items()
	pg := ctrl.Pagination()

	if *csvPath != "" {
		f, err := os.Create(*csvPath)
		if err != nil {
			log.WithError(err).Fatal("cannot create CSV file")
		}
		defer f.Close()
		if err := ctrl.ExportCSV(f); err != nil {
			log.WithError(err).Fatal("CSV export failed")
		}
		fmt.Printf("wrote %d notifications to %s\n", len(items), *csvPath)
	} else {
		printFeed(items, pg, *follow)
	}

	if *markRead {
		for _, n := range items {
			if n.Read {
				continue
			}
			if err := ctrl.MarkAsRead(ctx, n.ID); err != nil {
				log.WithError(err).WithField("id", n.ID).Warn("mark read failed")
			}
		}
	}
}

func printFeed(items []feed.Notification, pg feed.Pagination, followed bool) {
	if len(items) == 0 {
		fmt.Println("no notifications")
		return
	}
	for _, n := range items {
		marker := " "
		if !n.Read {
			marker = "*"
		}
		fmt.Printf("%s %-10s %s  %s\n", marker, n.Type, n.CreatedAt.Local().Format("2006-01-02 15:04"), n.Message)
	}
	if followed {
		fmt.Printf("\n%d of %d total\n", len(items), pg.TotalCount)
		return
	}
	fmt.Printf("\npage %d/%d, %d total\n", pg.CurrentPage, pg.TotalPages, pg.TotalCount)
}
