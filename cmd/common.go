package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/sw33tLie/shopscope/internal/utils"
	"github.com/sw33tLie/shopscope/pkg/api"
	"github.com/sw33tLie/shopscope/pkg/session"
	"github.com/sw33tLie/shopscope/pkg/storage"
)

func newAPIClient() (*api.Client, error) {
	return api.NewClient(api.Options{
		BaseURL:  viper.GetString("backend.url"),
		Proxy:    viper.GetString("http.proxy"),
		Retries:  viper.GetInt("http.retries"),
		Timeout:  viper.GetDuration("http.timeout"),
		Username: viper.GetString("backend.username"),
		Password: viper.GetString("backend.password"),
	})
}

func openStorage() (*storage.DB, error) {
	db, err := storage.Open(viper.GetString("storage.path"))
	if err != nil {
		return nil, fmt.Errorf("failed to open local storage: %w", err)
	}
	return db, nil
}

// openSession wires the backend client, local storage and a session.
// The returned cleanup stops background loading and closes storage.
// With keepOnLoadError a failed first load is only logged: the session keeps
// the error as its status and a later Refresh can recover.
func openSession(ctx context.Context, keepOnLoadError bool) (*session.Session, *api.Client, func(), error) {
	client, err := newAPIClient()
	if err != nil {
		return nil, nil, nil, err
	}
	db, err := openStorage()
	if err != nil {
		return nil, nil, nil, err
	}

	sess := session.New(client, db, session.Options{
		ChunkSize: viper.GetInt("loader.chunk_size"),
		CacheTTL:  viper.GetDuration("cache.ttl"),
		Log:       utils.Log,
	})
	cleanup := func() {
		sess.Close()
		db.Close()
	}
	if err := sess.Open(ctx); err != nil {
		if keepOnLoadError {
			utils.Log.Warnf("Starting without products: %v", err)
			return sess, client, cleanup, nil
		}
		cleanup()
		return nil, nil, nil, fmt.Errorf("failed to load products: %w", err)
	}
	return sess, client, cleanup, nil
}
