package ui

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/mvilla/crewcal/internal/server"
)

func (a *App) serveCmd() *cobra.Command {
	var (
		listen     string
		dbPath     string
		writeToken string
		seed       bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the crewcal backend server",
		Long: `Run the HTTP backend the calendar clients talk to.

The server stores the plan in a local SQLite database. With
--write-token set, clients must present the token to modify the plan;
anyone can read it.`,
		Example: `  crewcal serve
  crewcal serve --listen=:8384 --seed
  crewcal serve --write-token=s3cret`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := server.OpenStore(dbPath)
			if err != nil {
				return fmt.Errorf("opening store: %w", err)
			}
			defer store.Close()

			if seed {
				if err := store.Seed(cmd.Context(), time.Now()); err != nil {
					return fmt.Errorf("seeding demo data: %w", err)
				}
			}

			router := server.NewRouter(server.NewHandler(store), server.Config{
				WriteToken: writeToken,
			})

			srv := &http.Server{
				Addr:              listen,
				Handler:           router,
				ReadHeaderTimeout: 5 * time.Second,
			}
			go func() {
				<-cmd.Context().Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			fmt.Printf("crewcal server listening on %s (db: %s)\n", listen, dbPath)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&listen, "listen", a.config.Serve.Listen, "Address to listen on")
	cmd.Flags().StringVar(&dbPath, "db", a.config.Serve.DBPath, "SQLite database path")
	cmd.Flags().StringVar(&writeToken, "write-token", "", "Bearer token required for writes (empty allows all)")
	cmd.Flags().BoolVar(&seed, "seed", false, "Insert demo data into an empty database")
	return cmd
}
