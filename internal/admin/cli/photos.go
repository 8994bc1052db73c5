package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/guestgallery/internal/common"
	"github.com/dmitrijs2005/guestgallery/internal/cryptox"
)

func (a *App) Pending(ctx context.Context) error {
	photos, err := a.photos.ListPending(ctx)
	if err != nil {
		return err
	}
	if len(photos) == 0 {
		fmt.Fprintln(a.out, "No photos waiting for approval")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUPLOADED\tCAPTION\tURL")
	for _, p := range photos {
		caption := ""
		if p.Caption != nil {
			caption = *p.Caption
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.CreatedAt.Local().Format(time.DateTime), caption, p.PhotoURL)
	}
	return tw.Flush()
}

func (a *App) Approve(ctx context.Context, id string) error {
	if err := a.photos.Approve(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Photo %s approved\n", id)
	return nil
}

func (a *App) Reject(ctx context.Context, id string) error {
	if err := a.photos.Reject(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Photo %s rejected\n", id)
	return nil
}

// HashPassword prompts twice for a site password and prints its argon2id
// hash for the site_password_hash setting.
func (a *App) HashPassword(ctx context.Context) error {
	pw, err := GetPassword("Site password: ", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)
	if len(pw) == 0 {
		return fmt.Errorf("password must not be empty")
	}

	again, err := GetPassword("Repeat password: ", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(again)
	if !cryptox.EqualSecret(string(pw), string(again)) {
		return fmt.Errorf("passwords do not match")
	}

	fmt.Fprintln(a.out, cryptox.HashPassword(pw))
	return nil
}
