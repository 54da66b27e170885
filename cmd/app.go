package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/recdash/recdash/internal/utils"
	"github.com/recdash/recdash/pkg/apiclient"
	"github.com/recdash/recdash/pkg/recommendations"
	"github.com/recdash/recdash/pkg/session"
	"github.com/recdash/recdash/pkg/storage"
)

var errNotLoggedIn = errors.New("not logged in, run `recdash login` first")

// app bundles what every command needs: the locked state file, the API client and the session.
type app struct {
	lock    *utils.StateLock
	db      *storage.DB
	client  *apiclient.Client
	svc     *recommendations.Service
	session *session.Store
}

// openApp locks and opens the state file. With wait set it blocks until another
// recdash process releases the state file; otherwise it fails at once.
func openApp(wait bool) (*app, error) {
	statePath, err := utils.GetAbsStatePath(viper.GetString("state.path"))
	if err != nil {
		return nil, fmt.Errorf("could not resolve state path: %w", err)
	}

	lock, err := utils.NewStateLock(statePath)
	if err != nil {
		return nil, err
	}
	if wait {
		err = lock.Lock()
	} else {
		err = lock.TryLock()
	}
	if err != nil {
		return nil, err
	}

	db, err := storage.Open(statePath)
	if err != nil {
		lock.Unlock()
		return nil, fmt.Errorf("failed to open state file: %w", err)
	}

	client, err := apiclient.New(apiclient.Options{
		BaseURL: viper.GetString("api.url"),
		Timeout: viper.GetDuration("api.timeout"),
		Retries: viper.GetInt("api.retries"),
		Proxy:   viper.GetString("api.proxy"),
		Logger:  utils.Log,
	})
	if err != nil {
		db.Close()
		lock.Unlock()
		return nil, err
	}

	svc := recommendations.NewService(client, viper.GetInt("query.page_size"))
	return &app{
		lock:    lock,
		db:      db,
		client:  client,
		svc:     svc,
		session: session.New(db, client),
	}, nil
}

// authenticated restores the stored session and fails when there is none.
func (a *app) authenticated(ctx context.Context) error {
	if err := a.session.Restore(ctx); err != nil {
		return err
	}
	if !a.session.IsAuthenticated() {
		return errNotLoggedIn
	}
	return nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		utils.Log.Warnf("Closing state file: %v", err)
	}
	if err := a.lock.Unlock(); err != nil {
		utils.Log.Warnf("Releasing state lock: %v", err)
	}
}

// apiError turns an API failure into the message a user should read.
func apiError(action string, err error) error {
	return fmt.Errorf("%s: %s", action, apiclient.Message(err))
}
