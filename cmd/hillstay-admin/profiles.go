package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hillstay/hillstay/internal/domain/model"
)

type profileGetOptions struct {
	UID     string
	RawJSON bool
}

type profileDeleteOptions struct {
	UID    string
	DryRun bool
	Yes    bool
}

func runProfileGet(cmdCtx *commandContext, args []string) error {
	opts, err := parseProfileGetFlags(args)
	if err != nil {
		return err
	}

	ctx, cancel := commandTimeout(cmdCtx, defaultCommandTimeout)
	defer cancel()

	conns, err := openStores(ctx, cmdCtx)
	if err != nil {
		return err
	}
	defer closeConns(cmdCtx, conns)

	doc, err := conns.Stores.Profiles.Get(ctx, opts.UID)
	if err != nil {
		return fmt.Errorf("get profile: %w", err)
	}
	if opts.RawJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}
	return printProfile(os.Stdout, opts.UID, doc)
}

func runProfileSoftDelete(cmdCtx *commandContext, args []string) error {
	opts, err := parseProfileDeleteFlags(args)
	if err != nil {
		return err
	}
	if confirmErr := confirmAction(softDeleteConfirmOptions{opts}, "soft-delete"); confirmErr != nil {
		return confirmErr
	}

	ctx, cancel := commandTimeout(cmdCtx, defaultCommandTimeout)
	defer cancel()

	conns, err := openStores(ctx, cmdCtx)
	if err != nil {
		return err
	}
	defer closeConns(cmdCtx, conns)

	doc, err := conns.Stores.Profiles.Get(ctx, opts.UID)
	if err != nil {
		return fmt.Errorf("get profile: %w", err)
	}
	if doc == nil {
		return fmt.Errorf("no profile stored for %q", opts.UID)
	}
	if doc.Deleted {
		cmdCtx.Logger.Info("profile already deleted", "uid", opts.UID)
		return nil
	}
	if opts.DryRun {
		return writef(os.Stdout, "Would mark profile %q (version %d) as deleted\n", opts.UID, doc.Version)
	}

	version := doc.Version
	if mergeErr := conns.Stores.Profiles.Merge(ctx, opts.UID, softDeleteFields(time.Now()), model.MergeOptions{
		ExpectedVersion: &version,
	}); mergeErr != nil {
		return fmt.Errorf("soft-delete profile: %w", mergeErr)
	}
	cmdCtx.Logger.Info("profile soft-deleted", "uid", opts.UID)
	return nil
}

func softDeleteFields(now time.Time) map[string]any {
	deleted := true
	at := now.UTC()
	patch := model.ProfilePatch{Deleted: &deleted, DeletedAt: &at, UpdatedAt: &at}
	return patch.Fields()
}

func parseProfileGetFlags(args []string) (profileGetOptions, error) {
	fs := flag.NewFlagSet("profile-get", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts profileGetOptions
	fs.StringVar(&opts.UID, "uid", "", "User id of the profile (required)")
	fs.BoolVar(&opts.RawJSON, "json", false, "Print the stored document as JSON")
	if err := fs.Parse(args); err != nil {
		return profileGetOptions{}, err
	}
	opts.UID = strings.TrimSpace(opts.UID)
	if opts.UID == "" {
		return profileGetOptions{}, errors.New("--uid is required")
	}
	return opts, nil
}

func parseProfileDeleteFlags(args []string) (profileDeleteOptions, error) {
	fs := flag.NewFlagSet("profile-soft-delete", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts profileDeleteOptions
	fs.StringVar(&opts.UID, "uid", "", "User id of the profile (required)")
	fs.BoolVar(&opts.DryRun, "dry-run", false, "Show what would change without writing")
	fs.BoolVar(&opts.Yes, "yes", false, "Skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return profileDeleteOptions{}, err
	}
	opts.UID = strings.TrimSpace(opts.UID)
	if opts.UID == "" {
		return profileDeleteOptions{}, errors.New("--uid is required")
	}
	return opts, nil
}
