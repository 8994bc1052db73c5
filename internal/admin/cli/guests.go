package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/guestgallery/internal/server/auth"
	"github.com/dmitrijs2005/guestgallery/internal/server/models"
	"gopkg.in/yaml.v3"
)

// defaultTokenValidity matches the lifetime of the site gate cookie.
const defaultTokenValidity = auth.GateValidity

// guestFile is the layout of an import file:
//
//	guests:
//	  - email: ada@example.com
//	    first_name: Ada
//	    last_name: Lovelace
//	    household_group: lovelace
//	    plus_one_allowed: true
type guestFile struct {
	Guests []*models.Guest `yaml:"guests"`
}

// parseGuests decodes an import file. Unknown keys are rejected so typos do
// not silently drop data.
func parseGuests(r io.Reader) ([]*models.Guest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f guestFile
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("guest file is empty")
		}
		return nil, fmt.Errorf("invalid guest file: %w", err)
	}
	if len(f.Guests) == 0 {
		return nil, fmt.Errorf("guest file lists no guests")
	}
	return f.Guests, nil
}

func (a *App) Import(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	guests, err := parseGuests(f)
	if err != nil {
		return err
	}
	if err := a.guests.Import(ctx, guests); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Imported %d guests\n", len(guests))
	return nil
}

func (a *App) Guests(ctx context.Context) error {
	guests, err := a.guests.List(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "EMAIL\tNAME\tHOUSEHOLD\tPLUS ONE")
	for _, g := range guests {
		household := "-"
		if g.HouseholdGroup != nil {
			household = *g.HouseholdGroup
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", g.Email, g.DisplayName(), household, g.PlusOneAllowed)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d guests\n", len(guests))
	return nil
}

// Token mints a guest session token for an imported guest. hours is
// optional; empty means defaultTokenValidity.
func (a *App) Token(ctx context.Context, email, hours string) error {
	validity := defaultTokenValidity
	if hours = strings.TrimSpace(hours); hours != "" {
		h, err := strconv.Atoi(hours)
		if err != nil || h <= 0 {
			return fmt.Errorf("hours must be a positive number")
		}
		validity = time.Duration(h) * time.Hour
	}

	g, err := a.guests.Resolve(ctx, &models.Session{Email: email})
	if err != nil {
		return fmt.Errorf("guest %s: %w", email, err)
	}

	token, err := auth.GenerateSessionToken(g.Email, []byte(a.config.SessionSecret), validity)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Session token for %s (valid %s):\n%s\n", g.DisplayName(), validity, token)
	return nil
}
