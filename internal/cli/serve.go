package cli

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mraspaud/kb-solaria/internal/config"
	"github.com/mraspaud/kb-solaria/internal/core"
	"github.com/mraspaud/kb-solaria/internal/model"
	"github.com/mraspaud/kb-solaria/internal/transport"
)

var serveURL string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Connect to the transport and run the core until interrupted",
	Long: `Connects to the websocket transport at --url, applies every inbound
event to the core, and logs a one-line summary of every resulting
snapshot. This is a drive harness for manual verification; a real
deployment wires a UI layer's renderer as the Core observer instead of
the stderr logger used here.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveURL, "url", "ws://localhost:8080/ws", "transport websocket URL")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var c *core.Core
	shim := transport.New(transport.Config{
		URL:     serveURL,
		Backoff: msDurationFromSeconds(cfg.Reconnect.BackoffSeconds),
		OnReconnect: func() {
			if c == nil {
				return
			}
			resyncActiveChannel(c)
		},
	})

	c = core.New(core.Options{
		Config:    cfg,
		Transport: shim,
	})
	shim.SetHandler(c.ApplyEvent)
	shim.OnStatus(func(st transport.Status) {
		log.Printf("transport status: %s", st)
	})

	c.Subscribe(func(snap core.Snapshot) {
		triage, inbox := snap.TriageCount, snap.InboxCount
		log.Printf("snapshot: active=%s triage=%d inbox=%d channels=%d",
			snap.ActiveChannel, triage, inbox, len(snap.Channels))
	})

	shim.Run(ctx)
	return nil
}

func msDurationFromSeconds(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}

// resyncActiveChannel re-emits switch_channel on reconnect for a
// non-synthetic active channel, per spec.md §4.J / §7 "Reconnect".
func resyncActiveChannel(c *core.Core) {
	snap := c.Snapshot()
	view, ok := snap.Channels[snap.ActiveChannel]
	if !ok {
		return
	}
	ch := view.Channel
	if ch.Service == model.ServiceInternal || ch.Service == model.ServiceAggregation {
		return
	}
	c.Transport.Send(transport.Command{
		Type:      transport.CommandSwitchChannel,
		ServiceID: ch.Service,
		ChannelID: ch.ID,
	})
}
