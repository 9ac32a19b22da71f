package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/hillstay/hillstay/internal/domain/model"
	"github.com/hillstay/hillstay/internal/migrate"
)

func printMigrationStatus(w io.Writer, statuses []migrate.Status) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if err := writeln(tw, "VERSION\tAPPLIED"); err != nil {
		return err
	}
	pending := 0
	for _, s := range statuses {
		if !s.Applied {
			pending++
		}
		if err := writef(tw, "%s\t%s\n", s.Version, yesNo(s.Applied)); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return writef(w, "\n%d migrations, %d pending\n", len(statuses), pending)
}

func printProfile(w io.Writer, uid string, doc *model.ProfileDocument) error {
	if doc == nil {
		return writef(w, "No profile stored for %q\n", uid)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	rows := [][2]string{
		{"UID", uid},
		{"Version", strconv.FormatInt(doc.Version, 10)},
		{"Role", orDash(string(doc.UserType))},
		{"Display name", orDash(doc.DisplayName)},
		{"Email", orDash(doc.Email)},
		{"Phone", orDash(doc.PhoneNumber)},
		{"Phone verified", yesNo(doc.PhoneVerified)},
		{"Profession", orDash(doc.Profession)},
		{"Business address", orDash(doc.BusinessAddress)},
		{"License", orDash(doc.LicenseNumber)},
		{"Visited places", orDash(strings.Join(doc.VisitedPlaces, ", "))},
		{"Saved places", orDash(strings.Join(doc.SavedPlaces, ", "))},
		{"Recent bookings", strconv.Itoa(len(doc.RecentBookings))},
		{"Deleted", yesNo(doc.Deleted)},
	}
	if doc.DeletedAt != nil {
		rows = append(rows, [2]string{"Deleted at", doc.DeletedAt.UTC().Format("2006-01-02 15:04:05Z")})
	}
	for _, r := range rows {
		if err := writef(tw, "%s:\t%s\n", r[0], r[1]); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func printListings(w io.Writer, ownerID string, listings []model.Listing) error {
	if len(listings) == 0 {
		return writef(w, "No listings stored for owner %q\n", ownerID)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if err := writeln(tw, "ID\tCATEGORY\tNAME\tLOCATION\tPRICE\tUPDATED"); err != nil {
		return err
	}
	for _, l := range listings {
		updated := "-"
		if !l.UpdatedAt.IsZero() {
			updated = l.UpdatedAt.UTC().Format("2006-01-02 15:04")
		}
		if err := writef(tw, "%s\t%s\t%s\t%s\t%.2f\t%s\n",
			l.ID, orDash(string(l.Category)), l.Name, l.Location, l.Price, updated); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return writef(w, "\n%d listings\n", len(listings))
}

type listingExport struct {
	OwnerID  string          `json:"owner_id"`
	Listings []model.Listing `json:"listings"`
}

func exportListings(w io.Writer, ownerID string, listings []model.Listing) error {
	if listings == nil {
		listings = []model.Listing{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(listingExport{OwnerID: ownerID, Listings: listings})
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func write(w io.Writer, args ...any) error {
	_, err := fmt.Fprint(w, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	if len(args) == 0 {
		_, err := fmt.Fprintln(w)
		return err
	}
	_, err := fmt.Fprintln(w, args...)
	return err
}
