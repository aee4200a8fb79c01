package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/laureon/labtrack/internal/config"
	"github.com/laureon/labtrack/internal/database"
	"github.com/laureon/labtrack/internal/database/repository"
	"github.com/laureon/labtrack/internal/service"
	"github.com/laureon/labtrack/internal/tui"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		log.Fatalf("mkdir db dir: %v", err)
	}

	if err := database.RunMigrations(cfg.Database.Path); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := database.SeedDefaults(ctx, db); err != nil {
		log.Fatalf("seed defaults: %v", err)
	}

	// repositories
	typeRepo := repository.NewLocationTypeRepo(db)
	locRepo := repository.NewLocationRepo(db)
	spaceRepo := repository.NewSpaceRepo(db)
	sampleRepo := repository.NewSampleRepo(db)

	// services
	hierarchy := &service.HierarchyService{Types: typeRepo, Locations: locRepo, Spaces: spaceRepo}
	placement := &service.PlacementService{DB: db, Samples: sampleRepo, Spaces: spaceRepo, Locations: locRepo, Types: typeRepo}
	search := &service.SearchService{Samples: sampleRepo, Spaces: spaceRepo, Locations: locRepo, Hierarchy: hierarchy, PageSize: cfg.UI.PageSize}

	p := tea.NewProgram(tui.New(ctx, cfg,
		tui.Repos{Types: typeRepo, Locations: locRepo, Spaces: spaceRepo, Samples: sampleRepo},
		tui.Services{Hierarchy: hierarchy, Placement: placement, Search: search},
	), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
	}
}
