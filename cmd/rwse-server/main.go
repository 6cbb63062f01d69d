package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/redis/go-redis/v9"

	"ukplab/rwse/internal/confstore"
	"ukplab/rwse/rwse"
)

func main() {
	cfg, err := rwse.LoadConfig(getenv("RWSE_CONFIG", ""))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	scorer, err := rwse.NewOrtScorer(cfg.Scorer)
	if err != nil {
		log.Fatalf("init scorer: %v", err)
	}
	logger := log.New(os.Stdout, "", log.LstdFlags)
	checker, err := rwse.NewChecker(scorer, cfg, logger)
	if err != nil {
		log.Fatalf("init checker: %v", err)
	}
	defer checker.Close()

	var store *confstore.Store
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvInt("REDIS_DB", 0),
		})
		store = confstore.New(client)
	}

	ctx := context.Background()
	if err := loadInitialSets(ctx, checker, store, cfg.SetsPath, logger); err != nil {
		log.Fatalf("load confusion sets: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/check", handleCheck(checker))
	mux.HandleFunc("/api/v1/correct", handleCorrect(checker))
	mux.HandleFunc("/api/v1/confusion-sets", handleSets(checker, store))

	addr := getenv("HTTP_ADDR", ":8080")
	log.Printf("listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, mux))
}

// loadInitialSets prefers the persisted configuration and falls back to the
// CSV file named in the config.
func loadInitialSets(ctx context.Context, checker *rwse.Checker, store *confstore.Store, setsPath string, logger *log.Logger) error {
	if store != nil {
		groups, err := store.Load(ctx)
		if err != nil {
			return err
		}
		if len(groups) > 0 {
			logger.Printf("loaded %d confusion sets from redis", len(groups))
			return checker.Configure(groups)
		}
	}
	if setsPath != "" {
		return checker.ConfigureFromFile(setsPath)
	}
	logger.Printf("starting without confusion sets; configure via the API")
	return nil
}

type checkRequest struct {
	Word      string  `json:"word"`
	Context   string  `json:"context"`
	Magnitude float64 `json:"magnitude,omitempty"`
}

func handleCheck(checker *rwse.Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var req checkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Word == "" || req.Context == "" {
			writeError(w, http.StatusBadRequest, "word and context are required")
			return
		}
		res, err := checker.Check(r.Context(), req.Word, req.Context)
		if err != nil {
			writeCheckError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func handleCorrect(checker *rwse.Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var req checkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Word == "" || req.Context == "" {
			writeError(w, http.StatusBadRequest, "word and context are required")
			return
		}
		corr, err := checker.Correct(r.Context(), req.Word, req.Context, req.Magnitude)
		if err != nil {
			writeCheckError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, corr)
	}
}

type setsRequest struct {
	Sets [][]string `json:"sets"`
}

func handleSets(checker *rwse.Checker, store *confstore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, setsRequest{Sets: checker.Registry().Sets()})
		case http.MethodPut, http.MethodPost:
			var req setsRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Sets) == 0 {
				writeError(w, http.StatusBadRequest, "sets are required")
				return
			}
			if err := checker.Configure(req.Sets); err != nil {
				writeError(w, http.StatusUnprocessableEntity, err.Error())
				return
			}
			if store != nil {
				if err := store.Save(r.Context(), checker.Registry().Sets()); err != nil {
					log.Printf("persist confusion sets: %v", err)
				}
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		default:
			http.NotFound(w, r)
		}
	}
}

// writeCheckError maps the checker's error taxonomy onto HTTP statuses.
func writeCheckError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, rwse.ErrNotConfigured):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, rwse.ErrUnknownWord):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, rwse.ErrMalformedContext):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, rwse.ErrScorerUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if i, err := strconv.Atoi(v); err == nil {
		return i
	}
	return def
}
