package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
)

type ownerOptions struct {
	OwnerID string
	Output  string
}

func runListingsList(cmdCtx *commandContext, args []string) error {
	opts, err := parseOwnerFlags("listings-list", args)
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

	listings, err := conns.Stores.Listings.QueryByOwner(ctx, opts.OwnerID)
	if err != nil {
		return fmt.Errorf("query listings: %w", err)
	}
	return printListings(os.Stdout, opts.OwnerID, listings)
}

func runListingsExport(cmdCtx *commandContext, args []string) error {
	opts, err := parseOwnerFlags("listings-export", args)
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

	listings, err := conns.Stores.Listings.QueryByOwner(ctx, opts.OwnerID)
	if err != nil {
		return fmt.Errorf("query listings: %w", err)
	}

	if opts.Output == "" || opts.Output == "-" {
		return exportListings(os.Stdout, opts.OwnerID, listings)
	}
	f, err := os.Create(opts.Output)
	if err != nil {
		return fmt.Errorf("create %s: %w", opts.Output, err)
	}
	if encErr := exportListings(f, opts.OwnerID, listings); encErr != nil {
		return errors.Join(encErr, f.Close())
	}
	if closeErr := f.Close(); closeErr != nil {
		return fmt.Errorf("close %s: %w", opts.Output, closeErr)
	}
	cmdCtx.Logger.Info("listings exported", "owner_id", opts.OwnerID, "count", len(listings), "path", opts.Output)
	return nil
}

func runCachePurge(cmdCtx *commandContext, args []string) error {
	opts, err := parseOwnerFlags("cache-purge", args)
	if err != nil {
		return err
	}
	if !cmdCtx.Config.ListingCache.Enabled {
		return errors.New("listing cache is disabled (LISTING_CACHE_ENABLED=false)")
	}

	ctx, cancel := commandTimeout(cmdCtx, defaultCommandTimeout)
	defer cancel()

	conns, err := openStores(ctx, cmdCtx)
	if err != nil {
		return err
	}
	defer closeConns(cmdCtx, conns)

	if delErr := conns.Stores.Cache.Delete(ctx, opts.OwnerID); delErr != nil {
		return fmt.Errorf("purge listing cache: %w", delErr)
	}
	cmdCtx.Logger.Info("listing cache purged", "owner_id", opts.OwnerID)
	return nil
}

func parseOwnerFlags(name string, args []string) (ownerOptions, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts ownerOptions
	fs.StringVar(&opts.OwnerID, "owner", "", "Owner user id (required)")
	if name == "listings-export" {
		fs.StringVar(&opts.Output, "out", "-", "File to write, or - for stdout")
	}
	if err := fs.Parse(args); err != nil {
		return ownerOptions{}, err
	}
	opts.OwnerID = strings.TrimSpace(opts.OwnerID)
	if opts.OwnerID == "" {
		return ownerOptions{}, errors.New("--owner is required")
	}
	return opts, nil
}
