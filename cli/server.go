package cli

import (
	"fmt"

	"github.com/mobile-next/galleryview/commands"
	"github.com/mobile-next/galleryview/daemon"
	"github.com/mobile-next/galleryview/server"
	"github.com/mobile-next/galleryview/sessions"
	"github.com/spf13/cobra"
)

const defaultServerAddress = "localhost:12000"

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Server management commands",
	Long:  `Commands for managing the galleryview session server.`,
}

var serverStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the galleryview server",
	Long:  `Starts a JSON-RPC server hosting viewer sessions over HTTP (/rpc) and WebSocket (/ws).`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		listenAddr := cmd.Flag("listen").Value.String()
		if listenAddr == "" {
			listenAddr = defaultServerAddress
		}

		// GetBool/GetInt cannot fail for defined flags
		enableCORS, _ := cmd.Flags().GetBool("cors")
		isDaemon, _ := cmd.Flags().GetBool("daemon")
		capacity, _ := cmd.Flags().GetInt("sessions")
		logFile, _ := cmd.Flags().GetString("log-file")

		th, err := loadThresholds()
		if err != nil {
			return err
		}

		if isDaemon && !daemon.IsChild() {
			_, err := daemon.Daemonize(daemon.Options{LogFile: logFile})
			if err != nil {
				return fmt.Errorf("failed to start daemon: %w", err)
			}

			fmt.Printf("Server daemon spawned, attempting to listen on %s\n", listenAddr)
			return nil
		}

		store, err := sessions.NewStore(capacity, th, nil)
		if err != nil {
			return err
		}
		if prev := commands.GetStore(); prev != nil {
			prev.CleanupAll()
		}
		commands.SetStore(store)

		return server.StartServer(listenAddr, enableCORS)
	},
}

var serverKillCmd = &cobra.Command{
	Use:   "kill",
	Short: "Stop the daemonized galleryview server",
	Long:  `Connects to the server and sends a shutdown command via JSON-RPC.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// GetString cannot fail for defined flags
		addr, _ := cmd.Flags().GetString("listen")
		if addr == "" {
			addr = defaultServerAddress
		}

		err := daemon.KillServer(addr)
		if err != nil {
			return err
		}

		fmt.Printf("Server shutdown command sent successfully\n")
		return nil
	},
}

var serverStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a galleryview server is running",
	Long:  `Queries a running server for its live viewer sessions.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// GetString cannot fail for defined flags
		addr, _ := cmd.Flags().GetString("listen")
		if addr == "" {
			addr = defaultServerAddress
		}

		status, err := daemon.ServerStatus(addr)
		if err != nil {
			response := commands.NewErrorResponse(err)
			printJson(response)
			return fmt.Errorf("%s", response.Error)
		}

		printJson(commands.NewSuccessResponse(status))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	// add server subcommands
	serverCmd.AddCommand(serverStartCmd)
	serverCmd.AddCommand(serverKillCmd)
	serverCmd.AddCommand(serverStatusCmd)

	// server start flags
	serverStartCmd.Flags().String("listen", "", "Address to listen on (e.g., 'localhost:12000' or '0.0.0.0:13000')")
	serverStartCmd.Flags().Bool("cors", false, "Enable CORS support")
	serverStartCmd.Flags().BoolP("daemon", "d", false, "Run server in daemon mode (background)")
	serverStartCmd.Flags().Int("sessions", sessions.DefaultCapacity, "Maximum number of live viewer sessions")
	serverStartCmd.Flags().String("log-file", "", "File receiving daemon output (with --daemon)")

	// server kill flags
	serverKillCmd.Flags().String("listen", "", fmt.Sprintf("Address of server to kill (default: %s)", defaultServerAddress))

	// server status flags
	serverStatusCmd.Flags().String("listen", "", fmt.Sprintf("Address of server to query (default: %s)", defaultServerAddress))
}
