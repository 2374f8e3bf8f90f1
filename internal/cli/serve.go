package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/matzehuels/systemmap/pkg/server"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tree and layouts over HTTP",
		Long: `Serve the content tree and computed layouts over HTTP.

Routes:
  GET  /healthz
  GET  /api/tree
  GET  /api/layout?expand=a,b&mobile=1&vw=390&vh=844
  POST /api/layout        {"expanded": [...], "viewport": {...}}
  GET  /api/render?format=svg&expand=a
  GET  /api/nodes/{id}
  GET  /api/nodes/{id}/path

The listen address defaults to the [server] section of the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (default: from config)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string) error {
	sess, err := c.newSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	if addr == "" {
		addr = sess.cfg.Server.Addr
	}

	srv, err := server.New(server.Options{
		Runner:         sess.runner,
		Source:         sess.source,
		Logger:         c.Logger,
		AllowedOrigins: sess.cfg.Server.AllowedOrigins,
	})
	if err != nil {
		return err
	}

	c.print().info("Serving %s on %s", sess.source.Name(), StyleHighlight.Render(addr))
	err = srv.ListenAndServe(ctx, addr, sess.cfg.Server.ShutdownTimeout.Duration)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	c.print().success("Server stopped")
	return nil
}
