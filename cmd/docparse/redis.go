package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/docparse/internal/config"
	"github.com/jackzampolin/docparse/internal/home"
	"github.com/jackzampolin/docparse/internal/redisdb"
)

var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "Manage the Redis container",
	Long: `Manage the Redis container used by the redis store backend.

Redis runs in a Docker container with its append-only file persisted
to ~/.docparse/redis/. Set store.backend=redis to keep the saved record
there instead of in ~/.docparse/data/store.json.

Examples:
  docparse redis start   # Start the Redis container
  docparse redis stop    # Stop the container (data preserved)
  docparse redis status  # Check container status
  docparse redis logs    # View container logs`,
}

var redisStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the Redis container",
	Long: `Start the Redis container.

If the container doesn't exist, it will be created and started.
If it exists but is stopped, it will be started.
If it's already running, this is a no-op.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := redisManager()
		if err != nil {
			return err
		}
		defer mgr.Close()

		fmt.Println("Starting Redis...")
		if err := mgr.Start(cmd.Context()); err != nil {
			return fmt.Errorf("failed to start Redis: %w", err)
		}

		fmt.Printf("Redis is running at %s\n", mgr.Addr())
		return nil
	},
}

var redisStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the Redis container",
	Long: `Stop the Redis container.

This stops the container but preserves data. Use 'docparse redis start'
to restart it later.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := redisManager()
		if err != nil {
			return err
		}
		defer mgr.Close()

		fmt.Println("Stopping Redis...")
		if err := mgr.Stop(cmd.Context()); err != nil {
			return fmt.Errorf("failed to stop Redis: %w", err)
		}

		fmt.Println("Redis stopped")
		return nil
	},
}

var redisStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show Redis container status",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		mgr, err := redisManager()
		if err != nil {
			return err
		}
		defer mgr.Close()

		status, err := mgr.Status(ctx)
		if err != nil {
			return fmt.Errorf("failed to get status: %w", err)
		}

		switch status {
		case redisdb.StatusRunning:
			fmt.Printf("Status: %s\n", status)
			fmt.Printf("Addr: %s\n", mgr.Addr())

			if err := redisdb.Ping(ctx, mgr.Addr(), 2*time.Second); err != nil {
				fmt.Printf("Health: unhealthy (%v)\n", err)
			} else {
				fmt.Println("Health: healthy")
			}
		case redisdb.StatusStopped:
			fmt.Printf("Status: %s (use 'docparse redis start' to start)\n", status)
		case redisdb.StatusNotFound:
			fmt.Printf("Status: %s (use 'docparse redis start' to create)\n", status)
		default:
			fmt.Printf("Status: %s\n", status)
		}

		return nil
	},
}

var logsTail string

var redisLogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show Redis container logs",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := redisManager()
		if err != nil {
			return err
		}
		defer mgr.Close()

		logs, err := mgr.Logs(cmd.Context(), logsTail)
		if err != nil {
			return fmt.Errorf("failed to get logs: %w", err)
		}

		fmt.Print(logs)
		return nil
	},
}

var redisRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove the Redis container",
	Long: `Remove the Redis container.

This stops and removes the container. Data in ~/.docparse/redis/
is NOT deleted - only the container is removed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := redisManager()
		if err != nil {
			return err
		}
		defer mgr.Close()

		fmt.Println("Removing Redis container...")
		if err := mgr.Remove(cmd.Context()); err != nil {
			return fmt.Errorf("failed to remove container: %w", err)
		}

		fmt.Println("Redis container removed (data preserved)")
		return nil
	},
}

var redisWaitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Wait for Redis to be ready",
	Long: `Wait for Redis to answer PING.

Useful in scripts to ensure Redis is fully started before
running 'docparse serve'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := redisManager()
		if err != nil {
			return err
		}
		defer mgr.Close()

		timeout, _ := cmd.Flags().GetDuration("timeout")
		fmt.Printf("Waiting for Redis (timeout: %s)...\n", timeout)

		if err := mgr.WaitReady(cmd.Context(), timeout); err != nil {
			return fmt.Errorf("Redis not ready: %w", err)
		}

		fmt.Println("Redis is ready")
		return nil
	},
}

func init() {
	redisCmd.AddCommand(redisStartCmd)
	redisCmd.AddCommand(redisStopCmd)
	redisCmd.AddCommand(redisStatusCmd)
	redisCmd.AddCommand(redisLogsCmd)
	redisCmd.AddCommand(redisRemoveCmd)
	redisCmd.AddCommand(redisWaitCmd)

	redisLogsCmd.Flags().StringVar(&logsTail, "tail", "100", "Number of lines to show from the end")
	redisWaitCmd.Flags().Duration("timeout", 30*time.Second, "Timeout waiting for Redis")

	rootCmd.AddCommand(redisCmd)
}

// redisManager loads home and config, then builds the Docker manager.
func redisManager() (*redisdb.DockerManager, error) {
	h, err := getHome()
	if err != nil {
		return nil, err
	}
	cfgMgr, err := getConfig(h)
	if err != nil {
		return nil, err
	}
	return getDockerManager(h, cfgMgr.Get())
}

// getDockerManager creates a DockerManager from the redis config section.
// The container name defaults to one derived from the home path so
// several homes can run side by side.
func getDockerManager(h *home.Dir, cfg *config.Config) (*redisdb.DockerManager, error) {
	if err := h.EnsureRedisDataDir(); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	name := cfg.Redis.ContainerName
	if name == "" {
		name = redisdb.GenerateContainerName(h.Path())
	}

	return redisdb.NewDockerManager(redisdb.DockerConfig{
		ContainerName: name,
		Image:         cfg.Redis.Image,
		DataPath:      h.RedisDataPath(),
		HostPort:      cfg.Redis.Port,
	})
}
