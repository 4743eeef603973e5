// Package main runs the in-memory stub of the hosted document store for
// local development. Point the client at it with:
//
//	MOODTRACK_BASE_URL=http://localhost:8090 \
//	MOODTRACK_API_KEY=<the key printed at startup> moodtrack home
//
// Data lives in memory only and is gone when the process exits. Optionally
// seeds a starter set of mood definitions and activities so the client has
// something to show.
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/sakif/moodtrack/internal/store/storetest"
)

// devAPIKey matches the store's expected 24-character key shape.
const devAPIKey = "0123456789abcdef01234567"

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	port := 8090
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	apiKey := devAPIKey
	if envKey := os.Getenv("STUB_API_KEY"); envKey != "" {
		apiKey = envKey
	}

	srv := storetest.New(apiKey, logger)
	if os.Getenv("STUB_NO_SEED") == "" {
		seed(srv)
	}

	addr := fmt.Sprintf(":%d", port)
	logger.Info("stub store listening",
		slog.String("addr", addr),
		slog.String("apiKey", apiKey),
	)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// seed loads a starter set of moods and linked activities.
func seed(srv *storetest.Server) {
	moodIDs := srv.Seed("moods",
		map[string]any{"moodid": 1, "name": "Happy", "mooddesc": "Feeling good", "icon": "happy-outline", "color": "#ffd700"},
		map[string]any{"moodid": 2, "name": "Sad", "mooddesc": "Feeling down", "icon": "sad-outline", "color": "#4169e1"},
		map[string]any{"moodid": 3, "name": "Angry", "mooddesc": "Feeling frustrated", "icon": "flame-outline", "color": "#dc143c"},
		map[string]any{"moodid": 4, "name": "Calm", "mooddesc": "Feeling at ease", "icon": "leaf-outline", "color": "#2e8b57"},
	)

	srv.Seed("activities",
		map[string]any{"id": 1, "suggestion": "Go for a walk", "mood_id": []any{map[string]any{"_id": moodIDs[0]}}},
		map[string]any{"id": 2, "suggestion": "Share it with a friend", "mood_id": []any{map[string]any{"_id": moodIDs[0]}}},
		map[string]any{"id": 3, "suggestion": "Call someone you trust", "mood_id": []any{map[string]any{"_id": moodIDs[1]}}},
		map[string]any{"id": 4, "suggestion": "Write down what you feel", "mood_id": []any{map[string]any{"_id": moodIDs[1]}}},
		map[string]any{"id": 5, "suggestion": "Take ten deep breaths", "mood_id": []any{map[string]any{"_id": moodIDs[2]}}},
		map[string]any{"id": 6, "suggestion": "Step away for five minutes", "mood_id": []any{map[string]any{"_id": moodIDs[2]}}},
		map[string]any{"id": 7, "suggestion": "Enjoy a cup of tea", "mood_id": []any{map[string]any{"_id": moodIDs[3]}}},
	)
}
