package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/dmitrijs2005/clouddrive/internal/client/models"
	"github.com/dmitrijs2005/clouddrive/internal/client/router"
)

var errUsage = errors.New("usage")

// Upload sends the local file named by the first argument.
func (a *App) Upload(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: upload <path>")
		return errUsage
	}
	if err := a.enter(ctx, router.PathDashboard); err != nil {
		return err
	}

	path := args[0]
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintln(a.out, "Cannot open file:", err)
		return err
	}
	defer f.Close()

	uploaded, err := a.fileService.Upload(ctx, filepath.Base(path), f)
	if err != nil {
		a.reportRemote("Upload", err)
		return err
	}

	fmt.Fprintf(a.out, "Uploaded %s (id %s, %d bytes)\n", uploaded.Filename, uploaded.ID, uploaded.FileSize)
	return nil
}

// List prints the remote files of the current user.
func (a *App) List(ctx context.Context) error {
	if err := a.enter(ctx, router.PathDashboard); err != nil {
		return err
	}

	files, err := a.fileService.List(ctx)
	if err != nil {
		a.reportRemote("Listing files", err)
		return err
	}

	if len(files) == 0 {
		fmt.Fprintln(a.out, "No files.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSIZE\tCREATED")
	for _, f := range files {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", f.ID, f.Filename, f.FileSize, f.CreatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

// Download saves a remote file. Without an explicit name the remote file
// name is looked up from the listing.
func (a *App) Download(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: download <id> [name]")
		return errUsage
	}
	if err := a.enter(ctx, router.PathDashboard); err != nil {
		return err
	}

	id := models.FileID(args[0])
	name := ""
	if len(args) > 1 {
		name = args[1]
	} else {
		name = a.remoteName(ctx, id)
	}

	path, err := a.fileService.Download(ctx, id, name)
	if err != nil {
		// the service has already notified the user
		return err
	}

	fmt.Fprintln(a.out, "Saved to", path)
	return nil
}

func (a *App) remoteName(ctx context.Context, id models.FileID) string {
	files, err := a.fileService.List(ctx)
	if err == nil {
		for _, f := range files {
			if f.ID == id {
				return f.Filename
			}
		}
	}
	return id.String()
}

// Delete removes a remote file.
func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: delete <id>")
		return errUsage
	}
	if err := a.enter(ctx, router.PathDashboard); err != nil {
		return err
	}

	c, err := a.fileService.Delete(ctx, models.FileID(args[0]))
	if err != nil {
		a.reportRemote("Delete", err)
		return err
	}

	if c.Detail != "" {
		fmt.Fprintln(a.out, c.Detail)
	} else {
		fmt.Fprintln(a.out, "Deleted.")
	}
	return nil
}
