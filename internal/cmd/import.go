package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/prolifel/ceker/internal/config"
	"github.com/prolifel/ceker/internal/core/store"
	"github.com/prolifel/ceker/internal/observability"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Bulk import curated list entries from a file",
}

var importBlacklistsCmd = &cobra.Command{
	Use:   "blacklists <file>",
	Short: "Import deny-list domains, one per line",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd, args[0], func(ctx *importContext, values []string) (store.BulkInsertResult, error) {
			return ctx.store.BulkInsertBlacklists(ctx.ctx, values)
		})
	},
}

var importTLDsCmd = &cobra.Command{
	Use:   "tlds <file>",
	Short: "Import recognized domain extensions, one per line",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd, args[0], func(ctx *importContext, values []string) (store.BulkInsertResult, error) {
			return ctx.store.BulkInsertTLDs(ctx.ctx, values)
		})
	},
}

type importContext struct {
	ctx   context.Context
	store *store.Store
}

func runImport(cmd *cobra.Command, path string, insert func(*importContext, []string) (store.BulkInsertResult, error)) error {
	values, err := readLines(path)
	if err != nil {
		return err
	}
	if len(values) == 0 {
		return fmt.Errorf("no entries found in %s", path)
	}

	cfg := config.Get()
	ctx := cmd.Context()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			observability.CLILogger.Warnw("failed to close store", "error", err)
		}
	}()

	result, err := insert(&importContext{ctx: ctx, store: st}, values)
	if err != nil {
		return fmt.Errorf("bulk import failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries (%d duplicates skipped)\n", result.Inserted, result.Duplicates)
	return nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()

	var values []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		values = append(values, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read import file: %w", err)
	}
	return values, nil
}

func init() {
	importCmd.AddCommand(importBlacklistsCmd)
	importCmd.AddCommand(importTLDsCmd)
	rootCmd.AddCommand(importCmd)
}
