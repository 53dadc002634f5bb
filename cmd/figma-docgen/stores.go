package main

import (
	"fmt"

	"github.com/kataras/figma-docgen/pkg/config"
	"github.com/kataras/figma-docgen/pkg/database"
	"github.com/kataras/figma-docgen/pkg/storage"
)

type stores struct {
	session    storage.Store
	repository database.Repository
	db         *database.DB
}

// initStores picks S3 session storage when an artifact endpoint is configured, the local
// output directory otherwise, and opens the analyses database unless it is disabled.
func initStores(cfg *config.Config) (*stores, error) {
	s := new(stores)

	if cfg.Artifact.Enabled {
		s3Store, err := storage.NewS3Store(storage.S3Config{
			Endpoint:  cfg.Artifact.Endpoint,
			Region:    cfg.Artifact.Region,
			AccessKey: cfg.Artifact.AccessKey,
			SecretKey: cfg.Artifact.SecretKey,
			Bucket:    cfg.Artifact.Bucket,
			UseSSL:    cfg.Artifact.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize artifact s3 store: %w", err)
		}
		s.session = s3Store
	} else {
		s.session = storage.NewFileStore(cfg.OutputDir)
	}

	if !cfg.Database.Enabled() {
		return s, nil
	}

	db, err := database.Open(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	cached, err := database.NewCachedRepository(db, database.DefaultCacheSize)
	if err != nil {
		db.Close()
		return nil, err
	}
	s.db = db
	s.repository = cached
	return s, nil
}

// describe names the session storage for the terminal summary.
func (s *stores) describe(cfg *config.Config) string {
	if fileStore, ok := s.session.(*storage.FileStore); ok {
		return fileStore.BaseDir()
	}
	return fmt.Sprintf("s3://%s (%s)", cfg.Artifact.Bucket, cfg.Artifact.Endpoint)
}

func (s *stores) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
