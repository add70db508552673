package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/markdown-cli/internal/aggregate"
	"github.com/sells-group/markdown-cli/internal/engine"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the markdown analytics API",
	Long: `Loads the catalog once and serves every engine operation over
JSON. Filters are query parameters (categories=, seasons=,
comma-separated) applied identically to the product and metric
views of each request.`,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.String("input", "", "catalog CSV or XLSX file")
	f.String("snapshot", "", "stored snapshot ID or name")
	f.Int("port", 0, "server port (default from config)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	input, _ := cmd.Flags().GetString("input")
	snapshot, _ := cmd.Flags().GetString("snapshot")
	port, _ := cmd.Flags().GetInt("port")
	if port == 0 {
		port = cfg.Server.Port
	}

	c, err := loadCatalog(ctx, input, snapshot)
	if err != nil {
		return err
	}
	eng := engine.New(c)

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/summary", handleSummary(eng))
		r.Get("/metrics", handleMetrics(eng))
		r.Get("/revenue/stages", handleRevenueStages(eng))
		r.Get("/revenue/seasons", handleRevenueSeasons(eng))
		r.Get("/best-stage", handleBestStage(eng))
		r.Get("/products/{id}/stages", handleProductStages(eng))
		r.Get("/filters", handleFilters(eng))
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: r,
	}

	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down server")
		srv.Shutdown(ctx)
	}()

	zap.L().Info("starting server",
		zap.Int("port", port),
		zap.Int("products", c.Len()),
		zap.String("catalog_version", c.Version()[:12]),
	)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "server listen")
	}

	return nil
}

// requestView builds the filtered view for a request.
func requestView(eng *engine.Engine, r *http.Request) *engine.View {
	f := engine.ParseFilter(r.URL.Query().Get("categories"), r.URL.Query().Get("seasons"))
	return eng.View(f)
}

func handleSummary(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, requestView(eng, r).Summarize())
	}
}

func handleMetrics(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view := requestView(eng, r)
		respondJSON(w, http.StatusOK, map[string]any{
			"filter":  view.Filter,
			"metrics": view.Metrics,
		})
	}
}

func handleRevenueStages(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, requestView(eng, r).StageTable())
	}
}

func handleRevenueSeasons(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, requestView(eng, r).SeasonTable())
	}
}

func handleBestStage(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rankBy, err := aggregate.ParseRankBy(r.URL.Query().Get("rank_by"))
		if err != nil {
			respondError(w, http.StatusBadRequest, err)
			return
		}
		best, err := requestView(eng, r).BestStagePerProduct(rankBy)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"rank_by":    rankBy,
			"best_stage": best,
		})
	}
}

func handleProductStages(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stages, err := requestView(eng, r).ProductStages(chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, http.StatusNotFound, err)
			return
		}
		respondJSON(w, http.StatusOK, stages)
	}
}

func handleFilters(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		c := eng.Catalog()
		respondJSON(w, http.StatusOK, map[string][]string{
			"categories": c.Categories(),
			"seasons":    c.Seasons(),
		})
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, map[string]string{"error": err.Error()})
}
