package feed

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"
)

// Mutations are optimistic: the local collection is patched immediately and
// the remote call follows. Failures are not rolled back; they are recorded on
// LastMutationErr so a caller can surface a refresh affordance.

// MarkAsRead flips a single item to read locally, then persists remotely.
func (c *Controller) MarkAsRead(ctx context.Context, id string) error {
	c.patchLocal(func(n *Notification) {
		if n.ID == id {
			n.Read = true
		}
	})
	err := c.orch.Client().MarkRead(ctx, c.orch.UserID(), id)
	c.recordMutationErr("mark read", err)
	return err
}

// MarkAllAsRead marks the unread subset of the currently loaded view — the
// page or the infinite accumulation, never the full server-side set — and
// issues one batched remote call with exactly those ids.
func (c *Controller) MarkAllAsRead(ctx context.Context) error {
	var ids []string
	for _, n := range c.Items() {
		if !n.Read {
			ids = append(ids, n.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	c.patchLocal(func(n *Notification) { n.Read = true })
	err := c.orch.Client().MarkRead(ctx, c.orch.UserID(), ids...)
	c.recordMutationErr("mark all read", err)
	return err
}

// DeleteNotification removes the item from the local view and deletes it
// remotely.
func (c *Controller) DeleteNotification(ctx context.Context, id string) error {
	c.removeLocal(map[string]bool{id: true})
	err := c.orch.Client().Delete(ctx, c.orch.UserID(), id)
	c.recordMutationErr("delete", err)
	return err
}

// ToggleSelect adds or removes an id from the bulk-action selection.
func (c *Controller) ToggleSelect(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selection[id] {
		delete(c.selection, id)
	} else {
		c.selection[id] = true
	}
}

// Selected returns the currently selected ids.
func (c *Controller) Selected() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0, len(c.selection))
	for id := range c.selection {
		ids = append(ids, id)
	}
	return ids
}

// ClearSelection empties the bulk-action selection.
func (c *Controller) ClearSelection() {
	c.mu.Lock()
	c.selection = make(map[string]bool)
	c.mu.Unlock()
}

// BulkApplied is called after an external bulk-action collaborator reports
// completion: it reloads the active mode and clears the selection.
func (c *Controller) BulkApplied(ctx context.Context) error {
	c.ClearSelection()
	return c.Refresh(ctx)
}

// LastMutationErr returns the most recent remote mutation failure, if any.
func (c *Controller) LastMutationErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastMutationErr
}

// ExportCSV writes the currently loaded items — not the full filtered set —
// as CSV. No network call is made.
func (c *Controller) ExportCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "message", "type", "read", "link", "created_at"}); err != nil {
		return err
	}
	for _, n := range c.Items() {
		record := []string{
			n.ID,
			n.Message,
			n.Type,
			strconv.FormatBool(n.Read),
			n.Link,
			n.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (c *Controller) patchLocal(fn func(*Notification)) {
	if c.Mode() == ModeInfinite {
		c.inf.patch(fn)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		fn(&c.items[i])
	}
}

func (c *Controller) removeLocal(ids map[string]bool) {
	if c.Mode() == ModeInfinite {
		c.inf.remove(ids)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.items[:0]
	for _, n := range c.items {
		if !ids[n.ID] {
			out = append(out, n)
		}
	}
	c.items = out
}

func (c *Controller) recordMutationErr(op string, err error) {
	c.mu.Lock()
	c.lastMutationErr = err
	c.mu.Unlock()
	if err != nil {
		c.log.WithError(err).WithField("op", op).Warn("remote mutation failed")
	}
}
