package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/mbrandt-dev/klassenvote-backend/config"
	"github.com/mbrandt-dev/klassenvote-backend/database"
	"github.com/mbrandt-dev/klassenvote-backend/handlers"
	"github.com/mbrandt-dev/klassenvote-backend/mailer"
	"github.com/mbrandt-dev/klassenvote-backend/media"
	"github.com/mbrandt-dev/klassenvote-backend/repository"
	"github.com/mbrandt-dev/klassenvote-backend/services"
	"github.com/mbrandt-dev/klassenvote-backend/workers"
)

func main() {
	seed := flag.Bool("seed", false, "create sample persons, categories and codes in an empty database")
	seedCodes := flag.Int("seed-codes", 5, "number of voting codes to generate when seeding")
	flag.Parse()

	err := godotenv.Load()
	if err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	storagePaths := []string{cfg.CategoryImagesPath, filepath.Dir(cfg.DatabasePath)}
	for _, p := range storagePaths {
		log.Printf("Ensuring storage directory exists: %s", p)
		if err := os.MkdirAll(p, 0755); err != nil {
			log.Fatalf("FATAL: Failed to create storage directory %s: %v", p, err)
		}
	}

	db, err := database.InitGormDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database: %v", err)
	}
	if err := database.AutoMigrateModels(db); err != nil {
		log.Fatalf("FATAL: Failed to migrate database: %v", err)
	}

	if *seed {
		if err := database.SeedSampleData(db, cfg.CodeLength, cfg.DefaultCodeUses, *seedCodes); err != nil {
			log.Fatalf("FATAL: Failed to seed sample data: %v", err)
		}
	}

	mediaSubDirs := map[media.AssetType]string{
		media.AssetTypeCategoryImage: filepath.Base(cfg.CategoryImagesPath),
	}
	mediaStore, err := media.NewLocalStorage(cfg.MediaStoragePath, mediaSubDirs)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize media store: %v", err)
	}

	personRepo := repository.NewPersonRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	codeRepo := repository.NewGormVotingCodeRepository(db)
	sessionRepo := repository.NewGormVotingSessionRepository(db)
	voteRepo := repository.NewGormVoteRepository(db)
	statRepo := repository.NewGormVoteStatisticRepository(db)
	userRepo := repository.NewGormUserRepository(db)

	codeService := services.NewCodeService(codeRepo, cfg.CodeLength)
	tallyService := services.NewTallyService(voteRepo, statRepo)
	votingService := services.NewVotingService(db, sessionRepo, categoryRepo, tallyService)

	mailgunSender := mailer.NewMailgunSender(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender, cfg.MailgunTemplate)
	log.Printf("Initializing invite mail worker pool (Workers: %d, Queue Size: %d)...", cfg.NumMailWorkers, cfg.MailQueueSize)
	inviteMailer := workers.NewInviteMailer(mailgunSender, cfg.VoteBaseURL, cfg.MailQueueSize, cfg.NumMailWorkers)
	defer inviteMailer.Stop()

	r := chi.NewRouter()

	corsOptions := cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	corsHandler := cors.New(corsOptions)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsHandler.Handler)

	authHandler := handlers.NewAuthHandler(userRepo, cfg)
	voteHandler := handlers.NewVoteHandler(codeService, votingService, personRepo)
	resultsHandler := handlers.NewResultsHandler(categoryRepo, voteRepo, statRepo, sessionRepo, cfg.ResultsTopN)
	adminPersonHandler := handlers.NewAdminPersonHandler(personRepo)
	adminCategoryHandler := handlers.NewAdminCategoryHandler(categoryRepo, mediaStore, cfg.CategoryImageMaxSize)
	adminCodeHandler := handlers.NewAdminCodeHandler(codeRepo, voteRepo, codeService, cfg.DefaultCodeUses)
	inviteHandler := handlers.NewInviteHandler(codeService, inviteMailer)

	requireAuth := handlers.AuthMiddleware(userRepo, cfg.JWTSecret)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)

		r.Route("/vote", func(r chi.Router) {
			r.Post("/redeem", voteHandler.Redeem)
			r.Route("/{code}", func(r chi.Router) {
				r.Get("/session", voteHandler.GetSession)
				r.Post("/step", voteHandler.Step)
			})
		})

		r.Get("/live/count", resultsHandler.LiveCount)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/results", resultsHandler.GetResults)

			r.Route("/admin", func(r chi.Router) {
				r.Route("/people", func(r chi.Router) {
					r.Post("/", adminPersonHandler.CreatePerson)
					r.Get("/", adminPersonHandler.ListPeople)
					r.Route("/{person_id}", func(r chi.Router) {
						r.Get("/", adminPersonHandler.GetPerson)
						r.Put("/", adminPersonHandler.UpdatePerson)
						r.Delete("/", adminPersonHandler.DeletePerson)
					})
				})

				r.Route("/categories", func(r chi.Router) {
					r.Post("/", adminCategoryHandler.CreateCategory)
					r.Get("/", adminCategoryHandler.ListCategories)
					r.Route("/{category_id}", func(r chi.Router) {
						r.Get("/", adminCategoryHandler.GetCategory)
						r.Put("/", adminCategoryHandler.UpdateCategory)
						r.Delete("/", adminCategoryHandler.DeleteCategory)
						r.Put("/image", adminCategoryHandler.UploadCategoryImage)
						r.Delete("/image", adminCategoryHandler.DeleteCategoryImage)
					})
				})

				r.Route("/codes", func(r chi.Router) {
					r.Get("/", adminCodeHandler.ListCodes)
					r.Post("/", adminCodeHandler.GenerateCodes)
					r.Route("/{code_id}", func(r chi.Router) {
						r.Put("/deactivate", adminCodeHandler.DeactivateCode)
						r.Delete("/", adminCodeHandler.DeleteCode)
					})
				})

				r.Post("/invites", inviteHandler.SendInvites)
				r.Delete("/votes/{vote_id}", adminCodeHandler.DeleteVote)
			})
		})

		categoryImagesSubDir := filepath.Base(cfg.CategoryImagesPath)
		r.Get(fmt.Sprintf("/%s/*", categoryImagesSubDir), handlers.AssetServer(cfg.MediaStoragePath, categoryImagesSubDir))
		log.Printf("Registered category image server at /%s/*", categoryImagesSubDir)
	})

	log.Printf("Using database: %s", cfg.DatabasePath)
	log.Printf("Storing category images in: %s", cfg.CategoryImagesPath)
	fmt.Printf("Server starting on http://localhost%s\n", cfg.ListenAddr)
	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}
