package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lotar-dev/lotar/internal/config"
	"github.com/lotar-dev/lotar/internal/httpapi"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:     "serve",
	GroupID: "workspace",
	Short:   "Run the HTTP/JSON API",
	RunE:    runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&servePort, "port", 0, "Listen port (defaults to server_port from resolved config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	app, err := newAppContext()
	if err != nil {
		return err
	}

	port := servePort
	if port == 0 {
		resolved, err := config.Resolve(app.TasksRoot, "")
		if err != nil {
			return err
		}
		port = resolved.ServerPort
	}

	addr := fmt.Sprintf(":%d", port)
	server := httpapi.NewServer(addr, app.TasksRoot, app.RepoRoot)

	fmt.Printf("Listening on %s (tasks root %s)\n", addr, app.TasksRoot)
	return server.ListenAndServe(cmd.Context())
}
