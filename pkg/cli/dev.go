package cli

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/withgalaxy/nexp/pkg/server"
)

var (
	devDebounce   time.Duration
	devStatusAddr string
)

var devCmd = &cobra.Command{
	Use:   "dev",
	Short: "Regenerate the server entry on change",
	Long:  `Compile once, then watch the source tree and recompile whenever it changes`,
	Args:  cobra.NoArgs,
	RunE:  runDev,
}

func init() {
	rootCmd.AddCommand(devCmd)
	devCmd.Flags().DurationVar(&devDebounce, "debounce", 0, "quiet period before recompiling (overrides config)")
	devCmd.Flags().StringVar(&devStatusAddr, "status-addr", "", "serve /healthz, /status and /metrics on this address")
}

func runDev(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	debounce := time.Duration(p.Config.Dev.DebounceMs) * time.Millisecond
	if devDebounce > 0 {
		debounce = devDebounce
	}

	srv := server.NewDevServer(p.SrcDir, p.DistDir, p.Filename, debounce, p.options())
	srv.StatusAddr = p.Config.Dev.StatusAddr
	if devStatusAddr != "" {
		srv.StatusAddr = devStatusAddr
	}

	if isUnderDir(p.DistDir, p.SrcDir) {
		p.Logger.Debug("output directory is inside the source tree and will not be watched", "dist", p.DistDir)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Start(ctx)
}
