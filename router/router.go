package router

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"creatorhub/config"
	projectHandler "creatorhub/internal/project"
	projectRepository "creatorhub/internal/project/repository"
	projectService "creatorhub/internal/project/service"
	scheduleHandler "creatorhub/internal/schedule"
	scheduleRepository "creatorhub/internal/schedule/repository"
	scheduleService "creatorhub/internal/schedule/service"
	studioHandler "creatorhub/internal/studio"
	studioService "creatorhub/internal/studio/service"
	"creatorhub/middleware"
	"creatorhub/pkg/logger"
	"creatorhub/socket"
)

// Setup wires repositories, services and the live-update hub, and returns
// the HTTP handler with the hub the caller must Run.
func Setup(cfg *config.Config, db *sql.DB, ai studioService.Generator) (http.Handler, *socket.Hub, error) {
	presets, err := studioService.LoadCatalog()
	if err != nil {
		return nil, nil, err
	}

	projectRepo := projectRepository.NewProjectRepository(db)
	scheduleRepo := scheduleRepository.NewScheduleRepository(db)

	var (
		projects *projectService.ProjectService
		schedule *scheduleService.ScheduleService
	)
	snapshots := socket.SnapshotFunc(func(ctx context.Context, userID, topic string) (any, error) {
		switch topic {
		case socket.TopicProjects:
			return projects.GetProjects(ctx, userID)
		case socket.TopicScheduled:
			return schedule.GetPosts(ctx, userID)
		}
		return nil, fmt.Errorf("unknown topic %q", topic)
	})
	hub := socket.NewHub(snapshots, projectRepo,
		socket.WithSaveInterval(cfg.Hub.SaveInterval()),
		socket.WithAllowedOrigins(cfg.Server.AllowedOrigins),
	)

	projects = projectService.NewProjectService(projectRepo, hub)
	schedule = scheduleService.NewScheduleService(scheduleRepo, projectRepo, hub)
	studio := studioService.NewStudioService(ai, projects, presets)

	ph := projectHandler.NewProjectHandler(projects)
	sh := scheduleHandler.NewScheduleHandler(schedule)
	ah := studioHandler.NewStudioHandler(studio)

	mux := http.NewServeMux()
	auth := middleware.AuthMiddleware(cfg.Server.JWTSecret)

	// WebSocket
	wsHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value(middleware.UserIDKey).(string)
		socket.ServeWs(hub, w, r, userID)
	})
	mux.Handle("/ws", auth(wsHandler))

	// REST API
	mux.Handle("/api/projects", auth(http.HandlerFunc(ph.GetProjects)))
	mux.Handle("/api/projects/get", auth(http.HandlerFunc(ph.GetProject)))
	mux.Handle("/api/projects/create", auth(http.HandlerFunc(ph.CreateProject)))
	mux.Handle("/api/projects/update", auth(http.HandlerFunc(ph.UpdateProject)))
	mux.Handle("/api/projects/delete", auth(http.HandlerFunc(ph.DeleteProject)))

	mux.Handle("/api/scheduled", auth(http.HandlerFunc(sh.GetPosts)))
	mux.Handle("/api/scheduled/create", auth(http.HandlerFunc(sh.SchedulePost)))
	mux.Handle("/api/scheduled/update", auth(http.HandlerFunc(sh.UpdatePost)))
	mux.Handle("/api/scheduled/delete", auth(http.HandlerFunc(sh.DeletePost)))

	mux.Handle("/api/ai/text", auth(http.HandlerFunc(ah.GenerateText)))
	mux.Handle("/api/ai/vision", auth(http.HandlerFunc(ah.AnalyzeImage)))
	mux.Handle("/api/ai/image", auth(http.HandlerFunc(ah.GenerateImage)))
	mux.Handle("/api/ai/speech", auth(http.HandlerFunc(ah.Synthesize)))
	mux.Handle("/api/ai/books", auth(http.HandlerFunc(ah.RecommendBooks)))
	mux.Handle("/api/ai/draft", auth(http.HandlerFunc(ah.CreateDraft)))
	mux.Handle("/api/ai/presets", auth(http.HandlerFunc(ah.GetPresets)))
	mux.Handle("/api/ai/voices", auth(http.HandlerFunc(ah.GetVoices)))

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	})

	handler := middleware.CORSMiddleware(cfg.Server.AllowedOrigins)(mux)
	return middleware.RequestLogger(logger.Named("http"))(handler), hub, nil
}
