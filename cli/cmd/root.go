package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"
	"github.com/wkalt/bintree/catalog"
	"github.com/wkalt/bintree/cli/util"
	"github.com/wkalt/bintree/storage"
	"github.com/wkalt/bintree/treemgr"
	"github.com/wkalt/bintree/util/log"
)

var (
	logLevel    string
	dataDir     string
	storeKind   string
	catalogPath string
	cacheSize   int
	s3Config    storage.S3Config
)

var rootCmd = &cobra.Command{
	Use:   "bintree",
	Short: "Build, inspect and store binary trees",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return log.SetLevel(logLevel)
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func bailf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func checkErr(err error) {
	if err != nil {
		bailf("error: %v", err)
	}
}

func configDir() string {
	if dataDir != "" {
		return dataDir
	}
	home, err := os.UserHomeDir()
	checkErr(err)
	return filepath.Join(home, ".bintree")
}

// openStore returns the storage provider selected by --store.
func openStore(ctx context.Context) (storage.Provider, error) {
	switch storeKind {
	case "dir":
		return storage.NewDirectoryStore(filepath.Join(configDir(), "objects"))
	case "s3":
		return storage.DialS3(ctx, s3Config)
	case "memory":
		return storage.NewMemStore(), nil
	default:
		return nil, fmt.Errorf("unrecognized store %q", storeKind)
	}
}

// openCatalog returns the catalog selected by --catalog, along with a function
// that releases it.
func openCatalog() (catalog.Catalog, func() error, error) {
	if catalogPath == ":memory:" {
		return catalog.NewMemCatalog(), func() error { return nil }, nil
	}
	path := catalogPath
	if path == "" {
		path = filepath.Join(configDir(), "catalog.db")
	}
	if err := util.EnsureDirectoryExists(filepath.Dir(path)); err != nil {
		return nil, nil, fmt.Errorf("failed to create catalog directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	cat, err := catalog.NewSQLCatalog(db)
	if err != nil {
		return nil, nil, errors.Join(err, db.Close())
	}
	return cat, db.Close, nil
}

// withManager opens the configured store and catalog and runs f with a tree
// manager over them.
func withManager(ctx context.Context, f func(*treemgr.TreeManager) error) error {
	store, err := openStore(ctx)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	cat, closeCatalog, err := openCatalog()
	if err != nil {
		return err
	}
	log.Debugw(ctx, "opened tree manager", "store", store.String())
	err = f(treemgr.NewTreeManager(store, cat, treemgr.WithCacheSize(cacheSize)))
	return errors.Join(err, closeCatalog())
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&logLevel, "log-level", "", "warn", "Log level (debug, info, warn, error)")
	flags.StringVarP(&dataDir, "data-dir", "", "", "Data directory (default ~/.bintree)")
	flags.StringVarP(&storeKind, "store", "", "dir", "Object store (dir, s3, memory)")
	flags.StringVarP(&catalogPath, "catalog", "", "", "SQLite catalog path, or :memory: (default <data-dir>/catalog.db)")
	flags.IntVarP(&cacheSize, "cache-size", "", 64, "Number of decoded trees to cache")
	flags.StringVarP(&s3Config.Endpoint, "s3-endpoint", "", "", "S3 endpoint")
	flags.StringVarP(&s3Config.Bucket, "s3-bucket", "", "bintree", "S3 bucket")
	flags.StringVarP(&s3Config.AccessKey, "s3-access-key", "", "", "S3 access key")
	flags.StringVarP(&s3Config.SecretKey, "s3-secret-key", "", "", "S3 secret key")
	flags.BoolVarP(&s3Config.Secure, "s3-secure", "", true, "Use TLS for S3")
}
